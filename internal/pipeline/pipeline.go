package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/couchcryptid/quake-data-viewer/internal/domain"
	"github.com/couchcryptid/quake-data-viewer/internal/export"
	"github.com/couchcryptid/quake-data-viewer/internal/observability"
)

// Publisher forwards the records of a successful query downstream.
type Publisher interface {
	Publish(ctx context.Context, r domain.DateRange, table domain.Table) error
}

// Result is the outcome of one date-range query.
type Result struct {
	Range   domain.DateRange
	Records domain.Table
	Summary domain.Summary
}

// Pipeline orchestrates the fetch-extract-publish flow for a date range.
type Pipeline struct {
	source    domain.EventSource
	publisher Publisher
	logger    *slog.Logger
	metrics   *observability.Metrics
	closed    atomic.Bool
}

// New creates a Pipeline. publisher may be nil when publishing is disabled.
func New(source domain.EventSource, publisher Publisher, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		source:    source,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil until Close has been called.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if p.closed.Load() {
		return errors.New("pipeline is shutting down")
	}
	return nil
}

// Close marks the pipeline as no longer ready.
func (p *Pipeline) Close() {
	p.closed.Store(true)
}

// Query fetches the events in r, flattens them into records, summarizes them
// and publishes the records. Every error is terminal: no partial table is
// returned.
func (p *Pipeline) Query(ctx context.Context, r domain.DateRange) (Result, error) {
	return p.query(ctx, r, true)
}

func (p *Pipeline) query(ctx context.Context, r domain.DateRange, publish bool) (Result, error) {
	if err := r.Validate(); err != nil {
		p.metrics.Queries.WithLabelValues("invalid_range").Inc()
		return Result{}, err
	}

	logger := p.logger.With("start", r.Start.Format(domain.DateLayout), "end", r.End.Format(domain.DateLayout))

	fc, err := p.source.Query(ctx, r)
	if err != nil {
		p.metrics.Queries.WithLabelValues("upstream_error").Inc()
		logger.Error("fetch events failed", "error", err)
		var upErr *domain.UpstreamError
		if !errors.As(err, &upErr) {
			err = &domain.UpstreamError{Err: err}
		}
		return Result{}, err
	}

	table, err := domain.Extract(fc)
	if err != nil {
		p.metrics.Queries.WithLabelValues("malformed").Inc()
		logger.Error("extract records failed", "error", err)
		return Result{}, err
	}

	if len(table) == 0 {
		p.metrics.Queries.WithLabelValues("empty").Inc()
		logger.Warn("no events in range")
		return Result{}, domain.ErrNoData
	}

	p.metrics.Queries.WithLabelValues("success").Inc()
	p.metrics.RecordsExtracted.Add(float64(len(table)))
	logger.Info("query complete", "records", len(table))

	if publish {
		p.publish(ctx, r, table, logger)
	}

	return Result{
		Range:   r,
		Records: table,
		Summary: domain.Summarize(table),
	}, nil
}

// Export fetches r the same way as Query and renders the table in format f.
// The records are not published again.
func (p *Pipeline) Export(ctx context.Context, r domain.DateRange, f export.Format) (export.Artifact, error) {
	result, err := p.query(ctx, r, false)
	if err != nil {
		return export.Artifact{}, err
	}

	artifact, err := export.Build(r, result.Records, f)
	if err != nil {
		p.logger.Error("build export failed", "format", f, "error", err)
		return export.Artifact{}, err
	}

	p.metrics.Exports.WithLabelValues(string(f)).Inc()
	p.logger.Info("export built", "file", artifact.FileName, "bytes", len(artifact.Data))
	return artifact, nil
}

// publish is best effort: a failed write is logged and counted but never
// fails the query.
func (p *Pipeline) publish(ctx context.Context, r domain.DateRange, table domain.Table, logger *slog.Logger) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(ctx, r, table); err != nil {
		p.metrics.PublishErrors.Inc()
		logger.Warn("publish records failed", "error", err)
		return
	}
	p.metrics.RecordsPublished.Add(float64(len(table)))
}
