package render

import (
	"context"
	"log/slog"
	"time"

	"dubloom/internal/logging"
	"dubloom/internal/services"
	"dubloom/internal/services/studio"
	"dubloom/internal/snapshot"
)

// Default polling parameters, overridable through config.
const (
	DefaultPollInterval = 5 * time.Second
	DefaultTimeout      = 15 * time.Minute
)

// Backend is the slice of the studio contract the poller needs.
type Backend interface {
	SubmitRender(ctx context.Context, dubbingID string, payload *snapshot.RenderRequest) (*studio.RenderResponse, error)
	InternalMetadata(ctx context.Context, dubbingID string) (*studio.InternalMetadata, error)
}

// Poller submits a render job and drives it to a terminal state.
type Poller struct {
	backend  Backend
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

// Option configures a Poller.
type Option func(*Poller)

// WithClock replaces the wall clock and sleep primitive, letting tests drive
// the timeout deterministically.
func WithClock(now func() time.Time, sleep func(context.Context, time.Duration) error) Option {
	return func(p *Poller) {
		if now != nil {
			p.now = now
		}
		if sleep != nil {
			p.sleep = sleep
		}
	}
}

// NewPoller constructs a poller. Non-positive interval or timeout values fall
// back to the defaults.
func NewPoller(backend Backend, interval, timeout time.Duration, logger *slog.Logger, opts ...Option) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	p := &Poller{
		backend:  backend,
		interval: interval,
		timeout:  timeout,
		logger:   logging.NewComponentLogger(logger, "render"),
		now:      time.Now,
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run submits the payload and polls the status feed until the job succeeds,
// fails, or the timeout elapses. The returned Job carries the last observed
// state even when an error is returned, so callers can record the job id.
func (p *Poller) Run(ctx context.Context, dubbingID string, payload *snapshot.RenderRequest) (*Job, error) {
	logger := logging.WithContext(ctx, p.logger)

	resp, err := p.backend.SubmitRender(ctx, dubbingID, payload)
	if err != nil {
		return nil, err
	}
	jobID := resp.JobID()
	if jobID == "" {
		return nil, services.Wrap(services.ErrValidation, "render", "submit", "", ErrMissingJobID)
	}

	job := &Job{ID: jobID, Status: StatusSubmitted}
	logger.Info("render submitted",
		logging.String(logging.FieldEventType, "render_submitted"),
		logging.String(logging.FieldJobID, jobID))

	start := p.now()
	for p.now().Sub(start) < p.timeout {
		meta, err := p.backend.InternalMetadata(ctx, dubbingID)
		if err != nil {
			return job, err
		}

		candidate := selectCandidate(meta.Renders(), jobID)
		if candidate != nil {
			if candidate.Failed() {
				job.Status = StatusFailed
				return job, &FailedError{JobID: jobID, Detail: candidate.Error}
			}

			if candidate.Progress != nil && *candidate.Progress > job.Progress {
				job.Progress = *candidate.Progress
			}
			logger.Info("render progress",
				logging.String(logging.FieldJobID, jobID),
				logging.Float64("progress", job.Progress))

			if url := candidate.MediaURL(); url != "" && candidate.Progress != nil && *candidate.Progress >= 100 {
				job.Status = StatusSucceeded
				job.MediaURL = url
				job.Language = candidate.Language
				logger.Info("render succeeded",
					logging.String(logging.FieldEventType, "render_succeeded"),
					logging.String(logging.FieldJobID, jobID),
					logging.Duration("elapsed", p.now().Sub(start)))
				return job, nil
			}
		}

		job.Status = StatusPolling
		if err := p.sleep(ctx, p.interval); err != nil {
			return job, err
		}
	}

	job.Status = StatusTimedOut
	return job, &TimeoutError{JobID: jobID, Waited: p.timeout}
}

// selectCandidate picks the feed entry for jobID, falling back to the most
// recently created entry when the feed briefly omits a just-created id.
func selectCandidate(renders map[string]studio.RenderCandidate, jobID string) *studio.RenderCandidate {
	if candidate, ok := renders[jobID]; ok {
		return &candidate
	}
	var newest *studio.RenderCandidate
	for id := range renders {
		candidate := renders[id]
		if newest == nil || candidate.CreatedAtUnix > newest.CreatedAtUnix {
			newest = &candidate
		}
	}
	return newest
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
