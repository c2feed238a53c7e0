package entry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"

	"sellout-dashboard/internal/models"
	"sellout-dashboard/internal/observability"
	"sellout-dashboard/internal/upstream"
)

// MaxUploadSize bounds an import upload.
const MaxUploadSize = 20 << 20

var (
	ErrNoFile          = errors.New("pilih file dulu")
	ErrUnsupportedFile = errors.New("file harus berformat .xlsx atau .xls")
	ErrFileTooLarge    = errors.New("ukuran file melebihi 20 MB")
)

var importExtensions = map[string]bool{".xlsx": true, ".xls": true}

// Upstream is the part of the API client that data entry needs.
type Upstream interface {
	Create(ctx context.Context, token string, kind models.DatasetKind, payload any) error
	Import(ctx context.Context, token string, kind models.DatasetKind, filename string, file io.Reader) (int, error)
	Export(ctx context.Context, token string, kind models.DatasetKind) (*upstream.Download, error)
}

// Service relays manual entries, imports and exports to the upstream API.
type Service struct {
	upstream Upstream
	builder  *Builder
	logger   *slog.Logger
}

func NewService(up Upstream, builder *Builder, logger *slog.Logger) *Service {
	if builder == nil {
		builder = NewBuilder(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{upstream: up, builder: builder, logger: logger}
}

// Submit builds the payload for a manual form and creates the record.
func (s *Service) Submit(ctx context.Context, token string, kind models.DatasetKind, form url.Values) error {
	payload, err := s.builder.Build(kind, form)
	if err != nil {
		return err
	}
	if err := s.upstream.Create(ctx, token, kind, payload); err != nil {
		return fmt.Errorf("create %s: %w", kind, err)
	}
	observability.LoggerFrom(ctx, s.logger).Info("record created", "kind", kind)
	return nil
}

// Import uploads a spreadsheet and returns the user-facing result message.
func (s *Service) Import(ctx context.Context, token string, kind models.DatasetKind, filename string, file io.Reader) (string, error) {
	if file == nil || filename == "" {
		return "", ErrNoFile
	}
	if !importExtensions[strings.ToLower(filepath.Ext(filename))] {
		return "", ErrUnsupportedFile
	}

	count, err := s.upstream.Import(ctx, token, kind, filename, file)
	if err != nil {
		return "", fmt.Errorf("import %s: %w", kind, err)
	}
	observability.LoggerFrom(ctx, s.logger).Info("import complete", "kind", kind, "count", count)
	return ImportMessage(count), nil
}

// Export opens the upstream spreadsheet download. The caller closes Body.
func (s *Service) Export(ctx context.Context, token string, kind models.DatasetKind) (*upstream.Download, error) {
	dl, err := s.upstream.Export(ctx, token, kind)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", kind, err)
	}
	return dl, nil
}

func ImportMessage(count int) string {
	return fmt.Sprintf("Import berhasil! %d data berhasil diimport", count)
}

// ImportFailure is the message shown when an import is rejected.
func ImportFailure(err error) string {
	var apiErr *upstream.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return "Import gagal: " + apiErr.Message
	}
	if errors.Is(err, ErrNoFile) || errors.Is(err, ErrUnsupportedFile) || errors.Is(err, ErrFileTooLarge) {
		return "Import gagal: " + err.Error()
	}
	return "Import gagal: Unknown error"
}
