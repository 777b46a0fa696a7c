package render_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"dubloom/internal/render"
	"dubloom/internal/services"
	"dubloom/internal/services/studio"
	"dubloom/internal/snapshot"
)

type fakeBackend struct {
	jobID   string
	feeds   []*studio.InternalMetadata
	polls   int
	submits int
}

func (f *fakeBackend) SubmitRender(ctx context.Context, dubbingID string, payload *snapshot.RenderRequest) (*studio.RenderResponse, error) {
	f.submits++
	return &studio.RenderResponse{RenderID: f.jobID}, nil
}

func (f *fakeBackend) InternalMetadata(ctx context.Context, dubbingID string) (*studio.InternalMetadata, error) {
	idx := f.polls
	if idx >= len(f.feeds) {
		idx = len(f.feeds) - 1
	}
	f.polls++
	return f.feeds[idx], nil
}

func feed(entries map[string]studio.RenderCandidate) *studio.InternalMetadata {
	meta := &studio.InternalMetadata{}
	meta.LatestSnapshot.Renders = entries
	return meta
}

func progress(v float64) *float64 { return &v }

// fakeClock advances the wall clock by the slept duration; polling loops
// complete instantly in tests.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.now = c.now.Add(d)
	return nil
}

func newPoller(backend render.Backend, interval, timeout time.Duration) (*render.Poller, *fakeClock) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	p := render.NewPoller(backend, interval, timeout, nil, render.WithClock(clock.Now, clock.Sleep))
	return p, clock
}

func TestRunSucceedsOnlyWithURLAndFullProgress(t *testing.T) {
	backend := &fakeBackend{
		jobID: "job-1",
		feeds: []*studio.InternalMetadata{
			// Full progress but no media yet.
			feed(map[string]studio.RenderCandidate{
				"job-1": {Progress: progress(100)},
			}),
			// Media present but progress short of complete.
			feed(map[string]studio.RenderCandidate{
				"job-1": {Progress: progress(87), Media: &studio.RenderMedia{URL: "https://cdn/out.mp4"}},
			}),
			// Both conditions met.
			feed(map[string]studio.RenderCandidate{
				"job-1": {Progress: progress(100), Media: &studio.RenderMedia{URL: "https://cdn/out.mp4"}, Language: "de"},
			}),
		},
	}

	poller, _ := newPoller(backend, time.Second, time.Minute)
	job, err := poller.Run(context.Background(), "dub-1", &snapshot.RenderRequest{})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if job.Status != render.StatusSucceeded || job.MediaURL != "https://cdn/out.mp4" {
		t.Fatalf("unexpected job: %+v", job)
	}
	if job.Language != "de" {
		t.Fatalf("expected candidate language recorded, got %q", job.Language)
	}
	if backend.polls != 3 {
		t.Fatalf("expected 3 polls, got %d", backend.polls)
	}
}

func TestRunTimesOutAfterDeadline(t *testing.T) {
	backend := &fakeBackend{
		jobID: "job-1",
		feeds: []*studio.InternalMetadata{
			feed(map[string]studio.RenderCandidate{
				"job-1": {Progress: progress(42)},
			}),
		},
	}

	poller, clock := newPoller(backend, time.Second, 3*time.Second)
	job, err := poller.Run(context.Background(), "dub-1", &snapshot.RenderRequest{})

	var timeoutErr *render.TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("expected TimeoutError, got %v", err)
	}
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatal("timeout should classify through services.ErrTimeout")
	}
	if job.Status != render.StatusTimedOut {
		t.Fatalf("unexpected status %q", job.Status)
	}
	// Polls at t=0, 1, 2; the loop condition stops the poll at t=3.
	if backend.polls != 3 {
		t.Fatalf("expected 3 polls before timeout, got %d", backend.polls)
	}
	if got := clock.Now().Unix(); got != 3 {
		t.Fatalf("expected timeout at t=3, got t=%d", got)
	}
}

func TestRunRejectsMissingJobID(t *testing.T) {
	backend := &fakeBackend{jobID: "", feeds: []*studio.InternalMetadata{feed(nil)}}
	poller, _ := newPoller(backend, time.Second, time.Minute)

	_, err := poller.Run(context.Background(), "dub-1", &snapshot.RenderRequest{})
	if !errors.Is(err, render.ErrMissingJobID) {
		t.Fatalf("expected ErrMissingJobID, got %v", err)
	}
	if backend.polls != 0 {
		t.Fatal("should not poll without a job id")
	}
}

func TestRunFallsBackToNewestCandidate(t *testing.T) {
	backend := &fakeBackend{
		jobID: "job-just-created",
		feeds: []*studio.InternalMetadata{
			feed(map[string]studio.RenderCandidate{
				"old":   {CreatedAtUnix: 10, Progress: progress(100), Media: &studio.RenderMedia{URL: "https://cdn/old.mp4"}},
				"newer": {CreatedAtUnix: 20, Progress: progress(100), Media: &studio.RenderMedia{URL: "https://cdn/new.mp4"}},
			}),
		},
	}

	poller, _ := newPoller(backend, time.Second, time.Minute)
	job, err := poller.Run(context.Background(), "dub-1", &snapshot.RenderRequest{})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if job.MediaURL != "https://cdn/new.mp4" {
		t.Fatalf("expected newest candidate to win, got %q", job.MediaURL)
	}
}

func TestRunSurfacesExplicitFailure(t *testing.T) {
	backend := &fakeBackend{
		jobID: "job-1",
		feeds: []*studio.InternalMetadata{
			feed(map[string]studio.RenderCandidate{
				"job-1": {Error: []byte(`{"code":"render_exploded"}`)},
			}),
		},
	}

	poller, _ := newPoller(backend, time.Second, time.Minute)
	job, err := poller.Run(context.Background(), "dub-1", &snapshot.RenderRequest{})

	var failed *render.FailedError
	if !errors.As(err, &failed) {
		t.Fatalf("expected FailedError, got %v", err)
	}
	if !strings.Contains(string(failed.Detail), "render_exploded") {
		t.Fatalf("expected verbatim remote detail, got %s", failed.Detail)
	}
	if job.Status != render.StatusFailed {
		t.Fatalf("unexpected status %q", job.Status)
	}
}

func TestRunIgnoresNullErrorField(t *testing.T) {
	backend := &fakeBackend{
		jobID: "job-1",
		feeds: []*studio.InternalMetadata{
			feed(map[string]studio.RenderCandidate{
				"job-1": {Error: []byte(`null`), Progress: progress(100), Media: &studio.RenderMedia{URL: "https://cdn/out.mp4"}},
			}),
		},
	}

	poller, _ := newPoller(backend, time.Second, time.Minute)
	job, err := poller.Run(context.Background(), "dub-1", &snapshot.RenderRequest{})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if job.Status != render.StatusSucceeded {
		t.Fatalf("null error should not be a failure, got %q", job.Status)
	}
}

func TestRunProgressNeverRegresses(t *testing.T) {
	backend := &fakeBackend{
		jobID: "job-1",
		feeds: []*studio.InternalMetadata{
			feed(map[string]studio.RenderCandidate{"job-1": {Progress: progress(50)}}),
			// Progress momentarily absent, then reported lower.
			feed(map[string]studio.RenderCandidate{"job-1": {}}),
			feed(map[string]studio.RenderCandidate{"job-1": {Progress: progress(30)}}),
			feed(map[string]studio.RenderCandidate{
				"job-1": {Progress: progress(100), Media: &studio.RenderMedia{URL: "https://cdn/out.mp4"}},
			}),
		},
	}

	poller, _ := newPoller(backend, time.Second, time.Minute)
	job, err := poller.Run(context.Background(), "dub-1", &snapshot.RenderRequest{})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if job.Progress != 100 {
		t.Fatalf("expected final progress 100, got %v", job.Progress)
	}
	if backend.polls != 4 {
		t.Fatalf("expected 4 polls, got %d", backend.polls)
	}
}
