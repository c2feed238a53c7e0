package upstream

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// envelope is the `{ data, error }` wrapper every endpoint answers with.
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
	Total *int            `json:"total,omitempty"`
	Count *int            `json:"count,omitempty"`
}

func parseEnvelope(body []byte) (*envelope, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w (body %q)", err, snippet(body))
	}
	return &env, nil
}

// decodeList extracts the data array. An `error` field wins over data.
// Records that are not objects are skipped and counted instead of failing
// the whole list.
func decodeList[T any](body []byte) (items []T, skipped int, err error) {
	env, err := parseEnvelope(body)
	if err != nil {
		return nil, 0, err
	}
	if env.Error != "" {
		return nil, 0, &APIError{Message: env.Error}
	}
	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || data[0] != '[' {
		return nil, 0, ErrMalformedEnvelope
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, fmt.Errorf("decode data: %w", err)
	}
	items = make([]T, 0, len(raw))
	for _, rec := range raw {
		if bytes.Equal(bytes.TrimSpace(rec), []byte("null")) {
			skipped++
			continue
		}
		var item T
		if err := json.Unmarshal(rec, &item); err != nil {
			skipped++
			continue
		}
		items = append(items, item)
	}
	return items, skipped, nil
}

func snippet(body []byte) string {
	const max = 256
	s := string(bytes.TrimSpace(body))
	if len(s) > max {
		s = s[:max]
	}
	return s
}
