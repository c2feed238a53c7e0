package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"sellout-dashboard/internal/auth"
	"sellout-dashboard/internal/charts"
	"sellout-dashboard/internal/errors"
	"sellout-dashboard/internal/observability"
)

type ChartHandlers struct {
	renderer *charts.Renderer
	logger   *slog.Logger
}

func NewChartHandlers(renderer *charts.Renderer, logger *slog.Logger) *ChartHandlers {
	return &ChartHandlers{
		renderer: renderer,
		logger:   logger,
	}
}

// HandleChart serves one chart as a standalone page for the dashboard
// iframes. Output is cached per session and data revision.
func (h *ChartHandlers) HandleChart(w http.ResponseWriter, r *http.Request) {
	name, ok := charts.ParseName(r.PathValue("name"))
	if !ok {
		errors.WriteError(w, h.logger, errors.NotFound("Grafik tidak dikenal"), observability.GetRequestID(r.Context()))
		return
	}
	sess, ok := sessionOrRedirect(w, r)
	if !ok {
		return
	}

	snap := sess.View.Snapshot()
	key := fmt.Sprintf("%s:%d", sess.ID, snap.Revision)
	html, err := h.renderer.Render(key, name, snap.Charts)
	if err != nil {
		errors.WriteError(w, h.logger, errors.InternalWrap(err, "Gagal membuat grafik"), observability.GetRequestID(r.Context()))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "private, max-age=300")
	_, _ = w.Write([]byte(html))
}

func sessionOrRedirect(w http.ResponseWriter, r *http.Request) (*auth.Session, bool) {
	sess, ok := auth.SessionFrom(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return nil, false
	}
	return sess, true
}
