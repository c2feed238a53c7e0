package handlers

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"

	"sellout-dashboard/internal/auth"
	"sellout-dashboard/internal/entry"
	"sellout-dashboard/internal/errors"
	"sellout-dashboard/internal/models"
	"sellout-dashboard/internal/observability"
	"sellout-dashboard/internal/services"
	"sellout-dashboard/internal/ui/templates"
	"sellout-dashboard/internal/upstream"
)

const (
	maxFormMemory = 1 << 20

	noticeSaved      = "Data berhasil disimpan"
	noticeSaveFailed = "Simpan data gagal"
	noticeExpired    = "Sesi berakhir, silakan login kembali"
)

// Loader reloads a session's datasets.
type Loader interface {
	LoadAll(ctx context.Context, key, token string, view *services.ViewState) services.LoadReport
}

// Submitter creates records from manual forms.
type Submitter interface {
	Submit(ctx context.Context, token string, kind models.DatasetKind, form url.Values) error
}

// SessionEnder drops a session whose token the upstream rejected.
type SessionEnder interface {
	Logout(ctx context.Context, id string)
}

type SSEHandlers struct {
	loader    Loader
	submitter Submitter
	sessions  SessionEnder
	logger    *slog.Logger
}

func NewSSEHandlers(loader Loader, submitter Submitter, sessions SessionEnder, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		loader:    loader,
		submitter: submitter,
		sessions:  sessions,
		logger:    logger,
	}
}

type dashboardSignals struct {
	Kind  string `json:"kind"`
	Modal string `json:"modal"`
}

// HandleDashboard loads every dataset and patches the tables and charts.
func (h *SSEHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	report := h.loader.LoadAll(r.Context(), sess.ID, sess.Token, sess.View)

	sse := datastar.NewSSE(w, r)
	notice := templates.NoticeFrom(sess.View.TakeNotice())
	if h.endIfExpired(r.Context(), sess, report) {
		notice = templates.NoticeView{Message: noticeExpired, Level: "error"}
	}
	h.patch(r.Context(), sse, templates.Notice(notice))
	h.patchDashboard(r.Context(), sse, sess.View.Snapshot())
}

// endIfExpired drops the session when any dataset load was rejected with
// 401, so the next request goes back to the login page.
func (h *SSEHandlers) endIfExpired(ctx context.Context, sess *auth.Session, report services.LoadReport) bool {
	if !expired(report) {
		return false
	}
	if h.sessions != nil {
		h.sessions.Logout(ctx, sess.ID)
	}
	return true
}

func expired(report services.LoadReport) bool {
	for _, err := range report.Errors {
		if stderrors.Is(err, upstream.ErrUnauthorized) {
			return true
		}
	}
	return false
}

// HandleToggle flips one table between top 10 and all rows.
func (h *SSEHandlers) HandleToggle(w http.ResponseWriter, r *http.Request) {
	kind, ok := models.ParseDatasetKind(r.PathValue("kind"))
	if !ok {
		errors.WriteError(w, h.logger, errors.NotFound("Jenis data tidak dikenal"), observability.GetRequestID(r.Context()))
		return
	}
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	sess.View.Toggle(kind)

	sse := datastar.NewSSE(w, r)
	h.patch(r.Context(), sse, templates.Table(sess.View.Snapshot().Table(kind)))
}

// HandleModal opens the import, export or manual dialog for the data kind
// selected in the sidebar, or closes it.
func (h *SSEHandlers) HandleModal(w http.ResponseWriter, r *http.Request) {
	action := r.PathValue("action")
	if action == "close" {
		sse := datastar.NewSSE(w, r)
		h.patch(r.Context(), sse, templates.ModalClosed())
		h.patchSignals(sse, map[string]any{"modal": ""})
		return
	}

	modal, ok := templates.NewModal(action, h.selectedKind(r))
	if !ok {
		errors.WriteError(w, h.logger, errors.NotFound("Aksi tidak dikenal"), observability.GetRequestID(r.Context()))
		return
	}

	sse := datastar.NewSSE(w, r)
	h.patch(r.Context(), sse, templates.Modal(modal))
	h.patchSignals(sse, map[string]any{"modal": action})
}

// HandleManual saves a manual entry and refreshes the dashboard.
func (h *SSEHandlers) HandleManual(w http.ResponseWriter, r *http.Request) {
	kind, ok := models.ParseDatasetKind(r.PathValue("kind"))
	if !ok {
		errors.WriteError(w, h.logger, errors.NotFound("Jenis data tidak dikenal"), observability.GetRequestID(r.Context()))
		return
	}
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(maxFormMemory); err != nil && !stderrors.Is(err, http.ErrNotMultipart) {
		errors.WriteError(w, h.logger, errors.BadRequestWrap(err, "Form tidak valid"), observability.GetRequestID(r.Context()))
		return
	}

	err := h.submitter.Submit(r.Context(), sess.Token, kind, r.PostForm)
	var verr *entry.ValidationError
	if stderrors.As(err, &verr) {
		modal, _ := templates.NewModal("manual", kind)
		modal.Error = verr.Error()
		sse := datastar.NewSSE(w, r)
		h.patch(r.Context(), sse, templates.Modal(modal))
		return
	}

	notice := templates.NoticeView{Message: noticeSaved, Level: "success"}
	if err != nil {
		observability.LoggerFrom(r.Context(), h.logger).Warn("manual entry failed", "kind", kind, "error", err)
		notice = templates.NoticeView{Message: noticeSaveFailed, Level: "error"}
	}

	report := h.loader.LoadAll(r.Context(), sess.ID, sess.Token, sess.View)
	if h.endIfExpired(r.Context(), sess, report) {
		notice = templates.NoticeView{Message: noticeExpired, Level: "error"}
	}

	sse := datastar.NewSSE(w, r)
	h.patch(r.Context(), sse, templates.ModalClosed())
	h.patchSignals(sse, map[string]any{"modal": ""})
	h.patch(r.Context(), sse, templates.Notice(notice))
	h.patchDashboard(r.Context(), sse, sess.View.Snapshot())
}

func (h *SSEHandlers) patchDashboard(ctx context.Context, sse *datastar.ServerSentEventGenerator, snap services.Snapshot) {
	for _, view := range snap.Tables() {
		h.patch(ctx, sse, templates.Table(view))
	}
	h.patch(ctx, sse, templates.Charts(templates.NewChartsPanel(snap.Charts, snap.Revision)))
}

func (h *SSEHandlers) patch(ctx context.Context, sse *datastar.ServerSentEventGenerator, c templ.Component) {
	var buf strings.Builder
	if err := c.Render(ctx, &buf); err != nil {
		observability.LoggerFrom(ctx, h.logger).Error("render fragment", "error", err)
		return
	}
	if err := sse.PatchElements(buf.String()); err != nil {
		observability.LoggerFrom(ctx, h.logger).Debug("patch elements", "error", err)
	}
}

func (h *SSEHandlers) patchSignals(sse *datastar.ServerSentEventGenerator, signals map[string]any) {
	data, err := json.Marshal(signals)
	if err != nil {
		h.logger.Error("marshal signals", "error", err)
		return
	}
	if err := sse.PatchSignals(data); err != nil {
		h.logger.Debug("patch signals", "error", err)
	}
}

// selectedKind reads the sidebar selection from the query string or the
// Datastar signals, defaulting to training.
func (h *SSEHandlers) selectedKind(r *http.Request) models.DatasetKind {
	raw := r.URL.Query().Get("kind")
	if raw == "" {
		var signals dashboardSignals
		if err := datastar.ReadSignals(r, &signals); err == nil {
			raw = signals.Kind
		}
	}
	if kind, ok := models.ParseDatasetKind(raw); ok {
		return kind
	}
	return models.KindTraining
}

func (h *SSEHandlers) session(w http.ResponseWriter, r *http.Request) (*auth.Session, bool) {
	sess, ok := auth.SessionFrom(r.Context())
	if !ok {
		errors.WriteError(w, h.logger, errors.Unauthorized(noticeExpired), observability.GetRequestID(r.Context()))
		return nil, false
	}
	return sess, true
}
