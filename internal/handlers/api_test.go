package handlers

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"sellout-dashboard/internal/auth"
	"sellout-dashboard/internal/models"
	"sellout-dashboard/internal/services"
	"sellout-dashboard/internal/upstream"
)

type stubSource struct {
	training []models.Training
	coloris  []models.Coloris
	sellout  []models.Sellout
	errs     map[models.DatasetKind]error
}

func (s *stubSource) Training(ctx context.Context, token string, page, perPage int) ([]models.Training, error) {
	return s.training, s.errs[models.KindTraining]
}

func (s *stubSource) Coloris(ctx context.Context, token string, page, perPage int) ([]models.Coloris, error) {
	return s.coloris, s.errs[models.KindColoris]
}

func (s *stubSource) Sellout(ctx context.Context, token string, page, perPage int) ([]models.Sellout, error) {
	return s.sellout, s.errs[models.KindSellout]
}

// countingLoader wraps a real dashboard and counts reloads.
type countingLoader struct {
	dashboard *services.Dashboard
	calls     atomic.Int32
}

func (l *countingLoader) LoadAll(ctx context.Context, key, token string, view *services.ViewState) services.LoadReport {
	l.calls.Add(1)
	return l.dashboard.LoadAll(ctx, key, token, view)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newLoader(src *stubSource) *countingLoader {
	return &countingLoader{
		dashboard: services.NewDashboard(src, services.PageSizes{Training: 50, Coloris: 50, Sellout: 200}, quietLogger()),
	}
}

func testSource() *stubSource {
	sellout := make([]models.Sellout, 0, 12)
	for i := 1; i <= 12; i++ {
		sellout = append(sellout, models.Sellout{
			ID:           int64(i),
			Year:         2024,
			Month:        i,
			ColoristName: "Colorist",
			TotalSellout: models.Float(float64(i * 1000)),
			SelloutTT:    models.Float(float64(i * 500)),
			SelloutRM:    models.Float(float64(i * 100)),
		})
	}
	return &stubSource{
		training: []models.Training{{ID: 1, Month: "Januari", Region: "Jawa"}},
		coloris:  []models.Coloris{{ID: 1, Month: "Januari", Region: "Bali"}},
		sellout:  sellout,
	}
}

func newSession() *auth.Session {
	return auth.NewStore(time.Hour).Create("token", models.User{Username: "admin"})
}

func withSession(r *http.Request, sess *auth.Session) *http.Request {
	return r.WithContext(auth.WithSession(r.Context(), sess))
}

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Success bool            `json:"success"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return env
}

func TestAPIHandlers_HandleHealth(t *testing.T) {
	stats := func() map[string]any {
		return map[string]any{"sessions": 3}
	}
	handlers := NewAPIHandlers(newLoader(testSource()), stats, quietLogger())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	handlers.HandleHealth(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected content-type 'application/json', got %q", ct)
	}

	env := decodeEnvelope(t, w)
	if !env.Success {
		t.Error("expected success to be true")
	}

	var data map[string]any
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
	if data["status"] != "healthy" {
		t.Errorf("expected status 'healthy', got %v", data["status"])
	}
	if data["version"] != version {
		t.Errorf("expected version %q, got %v", version, data["version"])
	}
	if data["sessions"] != float64(3) {
		t.Errorf("expected stats to be merged, got %v", data["sessions"])
	}
}

func TestAPIHandlers_HandleDataset(t *testing.T) {
	loader := newLoader(testSource())
	handlers := NewAPIHandlers(loader, nil, quietLogger())
	sess := newSession()

	req := httptest.NewRequest(http.MethodGet, "/api/sellout", nil)
	req.SetPathValue("kind", "sellout")
	w := httptest.NewRecorder()

	handlers.HandleDataset(w, withSession(req, sess))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}
	if cc := w.Header().Get("Cache-Control"); cc != "private, no-cache" {
		t.Errorf("expected cache-control 'private, no-cache', got %q", cc)
	}

	var resp struct {
		Kind  string           `json:"kind"`
		Total int              `json:"total"`
		Data  []models.Sellout `json:"data"`
	}
	if err := json.Unmarshal(decodeEnvelope(t, w).Data, &resp); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
	if resp.Kind != "sellout" {
		t.Errorf("expected kind 'sellout', got %q", resp.Kind)
	}
	if resp.Total != 12 || len(resp.Data) != 12 {
		t.Errorf("expected 12 rows, got total=%d len=%d", resp.Total, len(resp.Data))
	}

	// A second request is served from the session without reloading.
	w = httptest.NewRecorder()
	handlers.HandleDataset(w, withSession(req, sess))
	if got := loader.calls.Load(); got != 1 {
		t.Errorf("expected 1 load, got %d", got)
	}
}

func TestAPIHandlers_HandleDatasetErrors(t *testing.T) {
	src := testSource()
	src.errs = map[models.DatasetKind]error{
		models.KindColoris: stderrors.New("connection refused"),
		models.KindSellout: fmt.Errorf("fetch sellout: %w", &upstream.APIError{Status: http.StatusForbidden, Message: "403 Forbidden"}),
	}
	handlers := NewAPIHandlers(newLoader(src), nil, quietLogger())

	tests := []struct {
		name           string
		kind           string
		withSession    bool
		expectedStatus int
	}{
		{"unknown kind", "orders", true, http.StatusNotFound},
		{"no session", "training", false, http.StatusUnauthorized},
		{"failed dataset", "coloris", true, http.StatusBadGateway},
		{"forbidden dataset", "sellout", true, http.StatusForbidden},
		{"healthy dataset", "training", true, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/"+tt.kind, nil)
			req.SetPathValue("kind", tt.kind)
			if tt.withSession {
				req = withSession(req, newSession())
			}
			w := httptest.NewRecorder()

			handlers.HandleDataset(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("expected content-type 'application/json', got %q", ct)
			}
			if env := decodeEnvelope(t, w); env.Success != (tt.expectedStatus == http.StatusOK) {
				t.Errorf("unexpected success flag %v", env.Success)
			}
		})
	}
}

func TestAPIHandlers_HandleCharts(t *testing.T) {
	handlers := NewAPIHandlers(newLoader(testSource()), nil, quietLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/charts", nil)
	w := httptest.NewRecorder()

	handlers.HandleCharts(w, withSession(req, newSession()))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp map[string]json.RawMessage
	if err := json.Unmarshal(decodeEnvelope(t, w).Data, &resp); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
	if string(resp["revision"]) != "1" {
		t.Errorf("expected revision 1, got %s", resp["revision"])
	}
	if len(resp["charts"]) == 0 || string(resp["charts"]) == "null" {
		t.Error("expected chart bundles in response")
	}
}
