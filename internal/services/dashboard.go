package services

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"sellout-dashboard/internal/models"
	"sellout-dashboard/internal/observability"
)

// maxLoadDuration bounds a shared load once it is detached from the
// request that started it.
const maxLoadDuration = 2 * time.Minute

// Source fetches the three dashboard datasets.
type Source interface {
	Training(ctx context.Context, token string, page, perPage int) ([]models.Training, error)
	Coloris(ctx context.Context, token string, page, perPage int) ([]models.Coloris, error)
	Sellout(ctx context.Context, token string, page, perPage int) ([]models.Sellout, error)
}

// PageSizes is the per_page value requested for each dataset.
type PageSizes struct {
	Training int
	Coloris  int
	Sellout  int
}

// Dashboard loads datasets into session view states.
type Dashboard struct {
	source    Source
	pageSizes PageSizes
	loads     singleflight.Group
	logger    *slog.Logger
}

func NewDashboard(source Source, pageSizes PageSizes, logger *slog.Logger) *Dashboard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dashboard{
		source:    source,
		pageSizes: pageSizes,
		logger:    logger,
	}
}

// LoadReport summarizes one LoadAll run.
type LoadReport struct {
	Errors   map[models.DatasetKind]error
	Duration time.Duration
	Revision uint64
}

// Failed lists the datasets that could not be loaded, in display order.
func (r LoadReport) Failed() []models.DatasetKind {
	var failed []models.DatasetKind
	for _, kind := range models.DatasetKinds {
		if r.Errors[kind] != nil {
			failed = append(failed, kind)
		}
	}
	return failed
}

type loadResult struct {
	training    []models.Training
	trainingErr error
	coloris     []models.Coloris
	colorisErr  error
	sellout     []models.Sellout
	selloutErr  error
	finishedAt  time.Time
}

// LoadAll fetches the three datasets concurrently and applies them to view
// once all have finished. A failing dataset never cancels or hides the
// others: its error is recorded on its own section. Concurrent calls with
// the same key share one load, which outlives any single caller: a caller
// whose ctx ends gets a report of ctx.Err() while the load completes for
// the rest.
func (d *Dashboard) LoadAll(ctx context.Context, key, token string, view *ViewState) LoadReport {
	ch := d.loads.DoChan(key, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), maxLoadDuration)
		defer cancel()
		return d.loadAll(loadCtx, token, view), nil
	})

	select {
	case res := <-ch:
		return res.Val.(LoadReport)
	case <-ctx.Done():
		observability.LoggerFrom(ctx, d.logger).Debug("dashboard load abandoned by caller", "error", ctx.Err())
		return abandonedReport(ctx.Err(), view.Revision())
	}
}

func abandonedReport(err error, revision uint64) LoadReport {
	report := LoadReport{
		Errors:   make(map[models.DatasetKind]error, len(models.DatasetKinds)),
		Revision: revision,
	}
	for _, kind := range models.DatasetKinds {
		report.Errors[kind] = err
	}
	return report
}

func (d *Dashboard) loadAll(ctx context.Context, token string, view *ViewState) LoadReport {
	start := time.Now()
	logger := observability.LoggerFrom(ctx, d.logger)

	var (
		g   errgroup.Group
		res loadResult
	)
	g.Go(func() error {
		res.training, res.trainingErr = d.source.Training(ctx, token, 1, d.pageSizes.Training)
		return nil
	})
	g.Go(func() error {
		res.coloris, res.colorisErr = d.source.Coloris(ctx, token, 1, d.pageSizes.Coloris)
		return nil
	})
	g.Go(func() error {
		res.sellout, res.selloutErr = d.source.Sellout(ctx, token, 1, d.pageSizes.Sellout)
		return nil
	})
	_ = g.Wait()
	res.finishedAt = time.Now()

	report := LoadReport{
		Errors: map[models.DatasetKind]error{
			models.KindTraining: res.trainingErr,
			models.KindColoris:  res.colorisErr,
			models.KindSellout:  res.selloutErr,
		},
		Duration: res.finishedAt.Sub(start),
	}
	for _, kind := range report.Failed() {
		logger.Warn("dataset load failed", "kind", kind, "error", report.Errors[kind])
	}

	report.Revision = view.apply(res)
	logger.Info("dashboard loaded",
		"training", len(res.training),
		"coloris", len(res.coloris),
		"sellout", len(res.sellout),
		"failed", len(report.Failed()),
		"duration", report.Duration,
		"revision", report.Revision,
	)
	return report
}
