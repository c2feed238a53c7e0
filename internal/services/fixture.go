package services

import (
	"context"
	"encoding/csv"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"sellout-dashboard/internal/models"
)

const (
	batchSize       = 5000
	maxWorkers      = 10
	cacheVersion    = "v1"
	defaultCacheDir = ".cache"
)

var requiredColumns = []string{"tahun", "bulan"}

type fixtureData struct {
	Records      []models.Sellout
	LastModified time.Time
}

// FixtureSource serves sellout rows from a local CSV file and delegates the
// other datasets to an optional base source. It is used for demos and
// offline development.
type FixtureSource struct {
	base             Source
	mu               sync.RWMutex
	records          []models.Sellout
	loadedAt         time.Time
	csvPath          string
	cacheDir         string
	recordsProcessed atomic.Int64
	logger           *slog.Logger
}

type FixtureOption func(*FixtureSource)

// WithCacheDir sets where parsed fixtures are cached. An empty dir disables
// the cache.
func WithCacheDir(dir string) FixtureOption {
	return func(f *FixtureSource) { f.cacheDir = dir }
}

func WithFixtureLogger(logger *slog.Logger) FixtureOption {
	return func(f *FixtureSource) {
		if logger != nil {
			f.logger = logger
		}
	}
}

func NewFixtureSource(base Source, opts ...FixtureOption) *FixtureSource {
	f := &FixtureSource{
		base:     base,
		cacheDir: defaultCacheDir,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *FixtureSource) LoadFromCSV(ctx context.Context, filename string) error {
	f.csvPath = filename

	if cached, err := f.loadFromCache(filename); err == nil {
		info, err := os.Stat(filename)
		if err == nil && info.ModTime().Before(cached.LastModified) {
			f.set(cached.Records, cached.LastModified)
			f.recordsProcessed.Store(int64(len(cached.Records)))
			f.logger.Info("loaded fixture from cache", "records", len(cached.Records))
			return nil
		}
	}

	start := time.Now()
	f.logger.Info("processing fixture csv", "filename", filename)

	records, err := f.streamParseCSV(ctx, filename)
	if err != nil {
		return fmt.Errorf("process csv: %w", err)
	}
	f.set(records, time.Now())
	f.recordsProcessed.Store(int64(len(records)))

	if err := f.saveToCache(filename); err != nil {
		f.logger.Warn("failed to save fixture cache", "error", err)
	}

	duration := time.Since(start)
	f.logger.Info("fixture csv loaded",
		"records", len(records),
		"duration", duration,
		"rate", fmt.Sprintf("%.0f records/sec", float64(len(records))/duration.Seconds()))
	return nil
}

func (f *FixtureSource) set(records []models.Sellout, at time.Time) {
	f.mu.Lock()
	f.records = records
	f.loadedAt = at
	f.mu.Unlock()
}

type csvRow struct {
	line   int
	fields []string
}

func (f *FixtureSource) streamParseCSV(ctx context.Context, filename string) ([]models.Sellout, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := columnIndex(header)
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	var (
		records []models.Sellout
		skipped int
		line    int
	)
	batch := make([]csvRow, 0, batchSize)
	flush := func() error {
		parsed, bad, err := parseBatch(ctx, cols, batch)
		if err != nil {
			return err
		}
		records = append(records, parsed...)
		skipped += bad
		batch = batch[:0]
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			skipped++
			continue
		}
		batch = append(batch, csvRow{line: line, fields: fields})
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}
	if len(batch) > 0 {
		if err := flush(); err != nil {
			return nil, err
		}
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("no valid records found")
	}
	if skipped > 0 {
		f.logger.Warn("skipped invalid fixture rows", "count", skipped)
	}
	return records, nil
}

// parseBatch parses rows concurrently and returns the valid ones in file
// order together with the number of rejected rows.
func parseBatch(ctx context.Context, cols map[string]int, batch []csvRow) ([]models.Sellout, int, error) {
	var g errgroup.Group
	g.SetLimit(maxWorkers)

	parsed := make([]models.Sellout, len(batch))
	valid := make([]bool, len(batch))
	for i, row := range batch {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			rec, err := parseSelloutRow(cols, row)
			if err != nil {
				return nil
			}
			parsed[i] = rec
			valid[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	out := make([]models.Sellout, 0, len(batch))
	for i := range parsed {
		if valid[i] {
			out = append(out, parsed[i])
		}
	}
	return out, len(batch) - len(out), nil
}

func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if name != "" {
			cols[name] = i
		}
	}
	return cols
}

func parseSelloutRow(cols map[string]int, row csvRow) (models.Sellout, error) {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row.fields) {
			return ""
		}
		return strings.TrimSpace(row.fields[i])
	}
	var firstErr error
	measure := func(name string) *float64 {
		raw := field(name)
		if raw == "" {
			return nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("column %s: %w", name, err)
			}
			return nil
		}
		return &v
	}

	year, err := strconv.Atoi(field("tahun"))
	if err != nil {
		return models.Sellout{}, fmt.Errorf("column tahun: %w", err)
	}
	month, err := strconv.Atoi(field("bulan"))
	if err != nil {
		return models.Sellout{}, fmt.Errorf("column bulan: %w", err)
	}
	if month < 1 || month > 12 {
		return models.Sellout{}, fmt.Errorf("column bulan: %d out of range", month)
	}

	id := int64(row.line)
	if raw := field("id"); raw != "" {
		id, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return models.Sellout{}, fmt.Errorf("column id: %w", err)
		}
	}

	rec := models.Sellout{
		ID:             id,
		Year:           year,
		Month:          month,
		Region:         field("reg"),
		Branch:         field("cabang"),
		Outlet:         field("outlet"),
		AreaCover:      field("area_cover"),
		MosSS:          field("mos_ss"),
		ColoristName:   field("nama_colorist"),
		RegistrationNo: field("no_reg"),
		JoinDate:       field("tanggal_bergabung"),
		Tenure:         measure("masa_kerja"),
		SelloutTT:      measure("sellout_tt"),
		SelloutRM:      measure("sellout_rm"),
		Primafix:       measure("primafix"),
		TargetSellout:  measure("target_sellout"),
		Channel:        field("chl"),
		Territory:      field("wilayah"),
		TotalSellout:   measure("total_sellout"),
		Timestamp:      field("timestamp"),
	}
	if firstErr != nil {
		return models.Sellout{}, firstErr
	}
	return rec, nil
}

func (f *FixtureSource) Training(ctx context.Context, token string, page, perPage int) ([]models.Training, error) {
	if f.base == nil {
		return nil, nil
	}
	return f.base.Training(ctx, token, page, perPage)
}

func (f *FixtureSource) Coloris(ctx context.Context, token string, page, perPage int) ([]models.Coloris, error) {
	if f.base == nil {
		return nil, nil
	}
	return f.base.Coloris(ctx, token, page, perPage)
}

// Sellout pages through the loaded fixture rows. A non-positive perPage
// returns every row.
func (f *FixtureSource) Sellout(ctx context.Context, _ string, page, perPage int) ([]models.Sellout, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	if perPage <= 0 {
		return f.records, nil
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * perPage
	if start >= len(f.records) {
		return []models.Sellout{}, nil
	}
	end := min(start+perPage, len(f.records))
	return f.records[start:end], nil
}

func (f *FixtureSource) cacheFilename(csvPath string) string {
	name := strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(csvPath)
	return filepath.Join(f.cacheDir, fmt.Sprintf("%s_%s.gob", name, cacheVersion))
}

func (f *FixtureSource) saveToCache(csvPath string) error {
	if f.cacheDir == "" {
		return nil
	}
	if err := os.MkdirAll(f.cacheDir, 0755); err != nil {
		return err
	}

	file, err := os.Create(f.cacheFilename(csvPath))
	if err != nil {
		return err
	}
	defer file.Close()

	f.mu.RLock()
	defer f.mu.RUnlock()
	return gob.NewEncoder(file).Encode(fixtureData{Records: f.records, LastModified: f.loadedAt})
}

func (f *FixtureSource) loadFromCache(csvPath string) (*fixtureData, error) {
	if f.cacheDir == "" {
		return nil, os.ErrNotExist
	}
	file, err := os.Open(f.cacheFilename(csvPath))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var data fixtureData
	if err := gob.NewDecoder(file).Decode(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Stats reports fixture state for the health endpoint.
func (f *FixtureSource) Stats() map[string]any {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return map[string]any{
		"path":           f.csvPath,
		"record_count":   f.recordsProcessed.Load(),
		"last_processed": f.loadedAt,
	}
}
