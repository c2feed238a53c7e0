package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"sellout-dashboard/internal/config"
)

func TestNewLoggerTo_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, config.LoggerConfig{Level: "info", Format: "json"})

	logger.Debug("hidden")
	logger.Info("visible", "kind", "sellout")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected a single JSON line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "visible" || entry["service"] != serviceName || entry["kind"] != "sellout" {
		t.Errorf("unexpected entry %v", entry)
	}
}

func TestLoggerFrom(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, config.LoggerConfig{Level: "debug", Format: "json"})

	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithSessionID(ctx, "0123456789abcdef")
	LoggerFrom(ctx, logger).Info("tagged")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatal(err)
	}
	if entry["request_id"] != "req-1" {
		t.Errorf("request_id = %v", entry["request_id"])
	}
	if entry["session"] != "01234567" {
		t.Errorf("session = %v", entry["session"])
	}
}

func TestStartSpan_Parenting(t *testing.T) {
	ctx, parent := StartSpan(context.Background(), "GET /")
	_, child := StartSpan(ctx, "upstream.sellout")

	if child.TraceID != parent.TraceID {
		t.Errorf("child trace %s != parent trace %s", child.TraceID, parent.TraceID)
	}
	if child.ParentID != parent.SpanID {
		t.Errorf("child parent %s != %s", child.ParentID, parent.SpanID)
	}
}

func TestSpan_FinishAndLog(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, config.LoggerConfig{Level: "warn", Format: "json"})

	_, span := StartSpan(context.Background(), "upstream.coloris")
	span.SetTag("kind", "coloris")
	span.SetError(errors.New("boom"))
	span.FinishAndLog(context.Background(), logger)

	if span.Duration == nil {
		t.Fatal("duration should be set")
	}
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed spans should log at warn: %v", err)
	}
	if entry["error"] != "boom" || entry["kind"] != "coloris" {
		t.Errorf("unexpected entry %v", entry)
	}
}
