package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"dubloom/internal/config"
	"dubloom/internal/language"
	"dubloom/internal/ledger"
	"dubloom/internal/logging"
	"dubloom/internal/marker"
	"dubloom/internal/render"
	"dubloom/internal/runlog"
	"dubloom/internal/services"
	"dubloom/internal/services/studio"
	"dubloom/internal/snapshot"
)

// Summary reports what a batch run did.
type Summary struct {
	Processed int
	Exported  int
	Skipped   int
	Failed    int
}

// Runner walks the batch list sequentially and drives each eligible dubbing
// through render, poll, and export marking.
type Runner struct {
	cfg     *config.Config
	studio  studio.Service
	matcher *marker.Matcher
	poller  *render.Poller
	ledger  *ledger.Ledger
	history *runlog.Store
	logger  *slog.Logger
	lock    *flock.Flock
}

// RunnerOption configures optional Runner behavior.
type RunnerOption func(*Runner)

// WithPoller replaces the default poller, used by tests to inject a clock.
func WithPoller(p *render.Poller) RunnerOption {
	return func(r *Runner) { r.poller = p }
}

// NewRunner constructs a Runner over the given studio service, ledger, and
// attempt history. The history store may be nil, in which case attempts are
// not recorded.
func NewRunner(cfg *config.Config, svc studio.Service, led *ledger.Ledger, history *runlog.Store, logger *slog.Logger, opts ...RunnerOption) (*Runner, error) {
	if cfg == nil || svc == nil || led == nil {
		return nil, errors.New("runner requires config, studio service, and ledger")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	matcher, err := marker.FromConfig(cfg.Markers.Ready, cfg.Markers.Exported)
	if err != nil {
		return nil, fmt.Errorf("build marker matcher: %w", err)
	}

	r := &Runner{
		cfg:     cfg,
		studio:  svc,
		matcher: matcher,
		ledger:  led,
		history: history,
		logger:  logging.NewComponentLogger(logger, "workflow"),
		lock:    flock.New(cfg.LockPath()),
	}
	r.poller = render.NewPoller(svc, cfg.PollInterval(), cfg.RenderTimeout(), logger)

	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

type itemOutcome int

const (
	outcomeSkipped itemOutcome = iota
	outcomeRendered
	outcomeExported
)

// Run processes the configured batch list. Item failures are isolated: a
// failed item is recorded and the run moves on. The returned error is only
// non-nil for run-level problems such as an unreadable batch list or a
// concurrent run holding the lock.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	var summary Summary

	if err := r.cfg.EnsureDirectories(); err != nil {
		return summary, err
	}

	ok, err := r.lock.TryLock()
	if err != nil {
		return summary, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return summary, errors.New("another dubloom run is already in progress")
	}
	defer func() {
		if err := r.lock.Unlock(); err != nil {
			r.logger.Warn("failed to release run lock", logging.Error(err))
		}
	}()

	items, err := LoadBatch(r.cfg.Batch.ListPath, r.cfg.Batch.Offset, r.cfg.Batch.Limit)
	if err != nil {
		return summary, err
	}

	r.logger.Info("batch run started",
		logging.String(logging.FieldEventType, "run_started"),
		logging.Int("item_count", len(items)),
		logging.Int("offset", r.cfg.Batch.Offset),
		logging.Int("limit", r.cfg.Batch.Limit))

	for _, item := range items {
		outcome, err := r.processItem(ctx, item)
		switch {
		case err != nil:
			summary.Failed++
			logging.WithContext(ctx, r.logger).Error("item failed",
				logging.String(logging.FieldItemID, item.DubbingID),
				logging.Bool("retryable", services.IsRetryable(err)),
				logging.Error(err))
		case outcome == outcomeSkipped:
			summary.Skipped++
		case outcome == outcomeExported:
			summary.Processed++
			summary.Exported++
		default:
			summary.Processed++
		}

		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
	}

	r.logger.Info("batch run finished",
		logging.String(logging.FieldEventType, "run_finished"),
		logging.Int("processed", summary.Processed),
		logging.Int("exported", summary.Exported),
		logging.Int("skipped", summary.Skipped),
		logging.Int("failed", summary.Failed))

	return summary, nil
}

func (r *Runner) processItem(ctx context.Context, item Item) (itemOutcome, error) {
	ctx = services.WithItemID(ctx, item.DubbingID)
	ctx = services.WithRequestID(ctx, uuid.NewString())
	logger := logging.WithContext(ctx, r.logger)

	if r.ledger.Completed(item.DubbingID) {
		logger.Info("item already rendered, skipping",
			logging.String(logging.FieldEventType, "item_skipped"))
		return outcomeSkipped, nil
	}

	dub, err := r.studio.GetDubbing(ctx, item.DubbingID)
	if err != nil {
		return outcomeSkipped, fmt.Errorf("fetch dubbing: %w", err)
	}
	title := dub.Name
	if title == "" {
		title = item.Name
	}

	switch r.matcher.Classify(title) {
	case marker.NotReady:
		logger.Info("title not marked ready, skipping",
			logging.String(logging.FieldEventType, "item_skipped"),
			logging.String("title", title))
		return outcomeSkipped, nil
	case marker.AlreadyExported:
		logger.Info("title already marked exported, skipping",
			logging.String(logging.FieldEventType, "item_skipped"),
			logging.String("title", title))
		return outcomeSkipped, nil
	}

	var attemptID int64
	if r.history != nil {
		if attemptID, err = r.history.Begin(ctx, item.DubbingID, title); err != nil {
			logger.Warn("failed to record attempt start", logging.Error(err))
		}
	}

	outcome, entry, err := r.renderItem(ctx, item.DubbingID, title)
	if r.history != nil && attemptID > 0 {
		status := entry.Status
		detail := ""
		if err != nil {
			detail = err.Error()
			if status == "" {
				status = ledger.StatusFailed
			}
		}
		if finishErr := r.history.Finish(ctx, attemptID, entry.RenderJobID, status, detail); finishErr != nil {
			logger.Warn("failed to record attempt outcome", logging.Error(finishErr))
		}
	}
	return outcome, err
}

// renderItem runs the render pipeline for one eligible dubbing. The returned
// entry reflects what was written to the ledger; on errors that happen before
// submission the entry may only hold the pending state.
func (r *Runner) renderItem(ctx context.Context, dubbingID, title string) (itemOutcome, ledger.Entry, error) {
	ctx = services.WithStage(ctx, "render")
	logger := logging.WithContext(ctx, r.logger)

	entry := ledger.Entry{
		ItemID: dubbingID,
		Title:  title,
		Status: ledger.StatusPending,
	}
	if err := r.ledger.Put(entry); err != nil {
		return outcomeSkipped, entry, err
	}

	snap, err := r.studio.EditorLatest(ctx, dubbingID)
	if err != nil {
		return outcomeSkipped, entry, fmt.Errorf("fetch editor snapshot: %w", err)
	}

	payload, err := snapshot.BuildRenderRequest(snap)
	if err != nil {
		// A snapshot with no usable project will not fix itself on retry.
		return outcomeSkipped, entry, services.Wrap(services.ErrValidation, "render", "build request", "rejected editor snapshot", err)
	}

	job, err := r.poller.Run(ctx, dubbingID, payload)
	if job != nil {
		entry.RenderJobID = job.ID
	}
	if err != nil {
		var failed *render.FailedError
		if errors.As(err, &failed) {
			entry.Status = ledger.StatusFailed
			if putErr := r.ledger.Put(entry); putErr != nil {
				logger.Warn("failed to record render failure", logging.Error(putErr))
			}
		}
		return outcomeSkipped, entry, err
	}

	entry.MediaURL = job.MediaURL
	entry.RenderedAt = time.Now().UTC()
	entry.RenderLanguage = language.DisplayName(renderLanguage(job, payload))

	// The export marker on the title is what downstream tooling keys on, so
	// a failed rename leaves the entry at rendered rather than exported.
	entry.Status = ledger.StatusExported
	outcome := outcomeExported
	renamed := r.matcher.ExportedTitle(title)
	if err := r.studio.RenameDubbing(ctx, dubbingID, renamed); err != nil {
		logger.Warn("rename failed, recording as rendered",
			logging.String(logging.FieldEventType, "rename_failed"),
			logging.Error(err))
		entry.Status = ledger.StatusRendered
		outcome = outcomeRendered
	} else {
		entry.Title = renamed
		// Re-read so the ledger carries the name the server actually kept.
		if dub, err := r.studio.GetDubbing(ctx, dubbingID); err == nil && dub.Name != "" {
			entry.Title = dub.Name
		}
	}

	if err := r.ledger.Put(entry); err != nil {
		return outcome, entry, err
	}

	logger.Info("item finished",
		logging.String(logging.FieldEventType, "item_finished"),
		logging.String(logging.FieldJobID, entry.RenderJobID),
		logging.String("status", entry.Status),
		logging.String("media_url", entry.MediaURL))

	return outcome, entry, nil
}

func renderLanguage(job *render.Job, payload *snapshot.RenderRequest) string {
	if job != nil && job.Language != "" {
		return job.Language
	}
	if payload != nil {
		return payload.Data.Language
	}
	return ""
}
