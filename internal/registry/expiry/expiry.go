// Package expiry implements the scheduled sweep that retires unit notes
// whose expiry timestamp has elapsed.
package expiry

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"mhregistry/internal/registry/metrics"
	"mhregistry/internal/registry/store/registration"
	"mhregistry/pkg/domain"
)

const defaultConcurrency = 8

// NoteStore is the slice of the registration store the sweep needs.
type NoteStore interface {
	ListExpirableNotes(ctx context.Context, asOf time.Time) ([]registration.NoteRef, error)
	ExpireNote(ctx context.Context, documentID domain.DocumentID) error
}

// Runner sweeps elapsed notes to EXPIRED.
type Runner struct {
	store       NoteStore
	logger      *slog.Logger
	metrics     *metrics.Metrics
	concurrency int
}

// Option configures the Runner.
type Option func(*Runner)

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithConcurrency bounds the number of concurrent note updates.
func WithConcurrency(n int) Option {
	return func(r *Runner) { r.concurrency = n }
}

// NewRunner constructs a sweep runner.
func NewRunner(store NoteStore, logger *slog.Logger, opts ...Option) *Runner {
	r := &Runner{
		store:       store,
		logger:      logger,
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run expires every ACTIVE note whose expiry has elapsed as of the given
// instant. Failures on individual notes are logged and skipped so one bad
// row never blocks the sweep; the returned count covers successful updates
// only. A failing scan is fatal.
func (r *Runner) Run(ctx context.Context, asOf time.Time) (int, error) {
	refs, err := r.store.ListExpirableNotes(ctx, asOf)
	if err != nil {
		return 0, err
	}
	if len(refs) == 0 {
		r.logger.InfoContext(ctx, "no notes due for expiry", "as_of", asOf)
		return 0, nil
	}

	var expired atomic.Int64
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for _, ref := range refs {
		g.Go(func() error {
			if err := r.store.ExpireNote(gCtx, ref.DocumentID); err != nil {
				r.logger.WarnContext(gCtx, "failed to expire note",
					"mhr_number", ref.MhrNumber,
					"document_id", ref.DocumentID,
					"error", err)
				return nil
			}
			expired.Add(1)
			r.logger.InfoContext(gCtx, "note expired",
				"mhr_number", ref.MhrNumber,
				"document_id", ref.DocumentID)
			return nil
		})
	}
	_ = g.Wait()

	count := int(expired.Load())
	if r.metrics != nil {
		r.metrics.AddNotesExpired(count)
	}
	r.logger.InfoContext(ctx, "expiry sweep complete",
		"as_of", asOf, "due", len(refs), "expired", count)
	return count, nil
}
