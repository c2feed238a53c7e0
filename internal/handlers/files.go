package handlers

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"net/http"

	"sellout-dashboard/internal/entry"
	"sellout-dashboard/internal/errors"
	"sellout-dashboard/internal/models"
	"sellout-dashboard/internal/observability"
	"sellout-dashboard/internal/services"
	"sellout-dashboard/internal/upstream"
)

// Transfer relays spreadsheet imports and exports.
type Transfer interface {
	Import(ctx context.Context, token string, kind models.DatasetKind, filename string, file io.Reader) (string, error)
	Export(ctx context.Context, token string, kind models.DatasetKind) (*upstream.Download, error)
}

type FileHandlers struct {
	transfer Transfer
	logger   *slog.Logger
}

func NewFileHandlers(transfer Transfer, logger *slog.Logger) *FileHandlers {
	return &FileHandlers{
		transfer: transfer,
		logger:   logger,
	}
}

// HandleImport accepts the modal's multipart upload, relays it and sends
// the browser back to the dashboard with the outcome as a notice.
func (h *FileHandlers) HandleImport(w http.ResponseWriter, r *http.Request) {
	kind, ok := models.ParseDatasetKind(r.PathValue("kind"))
	if !ok {
		errors.WriteError(w, h.logger, errors.NotFound("Jenis data tidak dikenal"), observability.GetRequestID(r.Context()))
		return
	}
	sess, ok := sessionOrRedirect(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, entry.MaxUploadSize)
	msg, err := h.importFile(r, sess.Token, kind)
	if err != nil {
		observability.LoggerFrom(r.Context(), h.logger).Warn("import failed", "kind", kind, "error", err)
		if stderrors.Is(err, upstream.ErrUnauthorized) {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		sess.View.SetNotice(services.Notice{Message: entry.ImportFailure(err), Error: true})
	} else {
		sess.View.SetNotice(services.Notice{Message: msg})
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *FileHandlers) importFile(r *http.Request, token string, kind models.DatasetKind) (string, error) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		var tooBig *http.MaxBytesError
		if stderrors.As(err, &tooBig) {
			return "", entry.ErrFileTooLarge
		}
		return "", entry.ErrNoFile
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", entry.ErrNoFile
	}
	defer file.Close()

	return h.transfer.Import(r.Context(), token, kind, header.Filename, file)
}

// HandleExport streams the upstream spreadsheet to the browser.
func (h *FileHandlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	kind, ok := models.ParseDatasetKind(r.PathValue("kind"))
	if !ok {
		errors.WriteError(w, h.logger, errors.NotFound("Jenis data tidak dikenal"), observability.GetRequestID(r.Context()))
		return
	}
	sess, ok := sessionOrRedirect(w, r)
	if !ok {
		return
	}

	dl, err := h.transfer.Export(r.Context(), sess.Token, kind)
	if err != nil {
		if stderrors.Is(err, upstream.ErrUnauthorized) {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		errors.WriteError(w, h.logger, upstreamError(err, "Export gagal"), observability.GetRequestID(r.Context()))
		return
	}
	defer dl.Body.Close()

	w.Header().Set("Content-Type", dl.ContentType)
	w.Header().Set("Content-Disposition", dl.ContentDisposition)
	w.Header().Set("Cache-Control", "no-store")
	n, err := io.Copy(w, dl.Body)
	if err != nil {
		observability.LoggerFrom(r.Context(), h.logger).Warn("export stream interrupted", "kind", kind, "bytes", n, "error", err)
		return
	}
	observability.LoggerFrom(r.Context(), h.logger).Info("export streamed", "kind", kind, "bytes", n)
}
