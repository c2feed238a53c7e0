package handlers

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"sellout-dashboard/internal/auth"
	"sellout-dashboard/internal/charts"
	"sellout-dashboard/internal/errors"
	"sellout-dashboard/internal/models"
	"sellout-dashboard/internal/observability"
	"sellout-dashboard/internal/services"
	"sellout-dashboard/internal/upstream"
)

const version = "1.0.0"

// StatsFunc reports runtime counters for the health endpoint.
type StatsFunc func() map[string]any

type APIHandlers struct {
	loader Loader
	stats  StatsFunc
	logger *slog.Logger
}

func NewAPIHandlers(loader Loader, stats StatsFunc, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		loader: loader,
		stats:  stats,
		logger: logger,
	}
}

type chartsResponse struct {
	Revision uint64        `json:"revision"`
	Charts   charts.Bundle `json:"charts"`
}

type datasetResponse struct {
	Kind    models.DatasetKind `json:"kind"`
	Total   int                `json:"total"`
	ShowAll bool               `json:"show_all"`
	Data    any                `json:"data"`
}

// HandleCharts returns the chart bundles built from the session's sellout
// rows, loading them first when the session has none yet.
func (h *APIHandlers) HandleCharts(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	snap := h.snapshot(r, sess)

	errors.WriteSuccessWithHeaders(w, chartsResponse{Revision: snap.Revision, Charts: snap.Charts}, map[string]string{
		"Cache-Control": "private, no-cache",
	})
}

// HandleDataset returns the cached rows of one dataset.
func (h *APIHandlers) HandleDataset(w http.ResponseWriter, r *http.Request) {
	kind, ok := models.ParseDatasetKind(r.PathValue("kind"))
	if !ok {
		errors.WriteError(w, h.logger, errors.NotFound("Jenis data tidak dikenal"), observability.GetRequestID(r.Context()))
		return
	}
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	snap := h.snapshot(r, sess)

	var (
		resp = datasetResponse{Kind: kind}
		err  error
	)
	switch kind {
	case models.KindTraining:
		resp.Data, resp.Total, resp.ShowAll, err = sectionData(snap.Training)
	case models.KindColoris:
		resp.Data, resp.Total, resp.ShowAll, err = sectionData(snap.Coloris)
	case models.KindSellout:
		resp.Data, resp.Total, resp.ShowAll, err = sectionData(snap.Sellout)
	}
	if err != nil {
		errors.WriteError(w, h.logger, upstreamError(err, "Error: "+err.Error()), observability.GetRequestID(r.Context()))
		return
	}

	errors.WriteSuccessWithHeaders(w, resp, map[string]string{
		"Cache-Control": "private, no-cache",
	})
}

// upstreamError maps a failed upstream call onto the JSON error envelope.
func upstreamError(err error, message string) *errors.AppError {
	var (
		appErr *errors.AppError
		netErr net.Error
	)
	switch {
	case stderrors.Is(err, upstream.ErrUnauthorized):
		appErr = errors.Unauthorized(noticeExpired)
	case stderrors.Is(err, upstream.ErrForbidden):
		appErr = errors.Forbidden("Akses ditolak: " + err.Error())
	case stderrors.Is(err, context.DeadlineExceeded), stderrors.As(err, &netErr):
		appErr = errors.ServiceUnavailable("Server data tidak dapat dihubungi")
	default:
		return errors.Upstream(err, message)
	}
	appErr.Cause = err
	return appErr
}

func sectionData[T any](sec services.Section[T]) (any, int, bool, error) {
	if sec.Err != nil {
		return nil, 0, false, sec.Err
	}
	rows := sec.Rows
	if rows == nil {
		rows = []T{}
	}
	return rows, len(rows), sec.ShowAll, nil
}

func (h *APIHandlers) snapshot(r *http.Request, sess *auth.Session) services.Snapshot {
	snap := sess.View.Snapshot()
	if snap.Revision == 0 {
		h.loader.LoadAll(r.Context(), sess.ID, sess.Token, sess.View)
		snap = sess.View.Snapshot()
	}
	return snap
}

func (h *APIHandlers) session(w http.ResponseWriter, r *http.Request) (*auth.Session, bool) {
	sess, ok := auth.SessionFrom(r.Context())
	if !ok {
		errors.WriteError(w, h.logger, errors.Unauthorized(noticeExpired), observability.GetRequestID(r.Context()))
		return nil, false
	}
	return sess, true
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   version,
	}
	if h.stats != nil {
		for k, v := range h.stats() {
			healthData[k] = v
		}
	}

	errors.WriteSuccess(w, healthData)
}
