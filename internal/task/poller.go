package task

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"adclip/internal/infra"
)

// StatusFunc fetches the current snapshot of a task from its provider.
type StatusFunc func(ctx context.Context, id string) (*Snapshot, error)

// TimeoutError reports that a task outlived its polling deadline. It keeps
// the task id so a caller can resume inspection through the status endpoint.
type TimeoutError struct {
	TaskID   string
	Deadline time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("task %s not terminal after %s", e.TaskID, e.Deadline)
}

// FailureError reports a terminal FAILED or CANCELED task, carrying the raw
// provider payload for the caller to surface.
type FailureError struct {
	TaskID  string
	Status  Status
	Details []byte
}

func (e *FailureError) Error() string {
	return fmt.Sprintf("task %s ended %s", e.TaskID, e.Status)
}

// Options configures a Poller. Zero values fall back to the defaults the
// service ships with.
type Options struct {
	Interval time.Duration
	Jitter   time.Duration
	Deadline time.Duration
	Logger   *infra.Logger
}

// Poller drives a task to a terminal state by fetching status snapshots at a
// jittered interval until success, failure, or a wall-clock deadline. The
// jitter spreads concurrent pollers out so they do not hit the provider in
// lockstep.
type Poller struct {
	interval time.Duration
	jitter   time.Duration
	deadline time.Duration
	logger   infra.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
	randN func(n int64) int64
}

// NewPoller constructs a Poller with sane defaults.
func NewPoller(opts Options) *Poller {
	interval := opts.Interval
	if interval <= 0 {
		interval = 4 * time.Second
	}
	jitter := opts.Jitter
	if jitter < 0 {
		jitter = 0
	}
	deadline := opts.Deadline
	if deadline <= 0 {
		deadline = 8 * time.Minute
	}
	var logger infra.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	} else {
		logger = zerolog.New(io.Discard)
	}
	return &Poller{
		interval: interval,
		jitter:   jitter,
		deadline: deadline,
		logger:   logger,
		now:      time.Now,
		sleep:    sleepContext,
		randN:    rand.Int63n,
	}
}

// WaitInterval returns the next sleep duration: the base interval plus a
// random slice of the jitter range.
func (p *Poller) WaitInterval() time.Duration {
	if p.jitter <= 0 {
		return p.interval
	}
	return p.interval + time.Duration(p.randN(int64(p.jitter)))
}

// PollUntilDone blocks until the task identified by id reaches a terminal
// state or the deadline passes. It returns the successful snapshot, a
// *FailureError for FAILED/CANCELED, a *TimeoutError past the deadline, or
// the fetch error verbatim if a status call itself fails.
func (p *Poller) PollUntilDone(ctx context.Context, id string, fetch StatusFunc) (*Snapshot, error) {
	start := p.now()
	for {
		if elapsed := p.now().Sub(start); elapsed > p.deadline {
			p.logger.Warn().Str("task_id", id).Dur("elapsed", elapsed).Msg("poll deadline exceeded")
			return nil, &TimeoutError{TaskID: id, Deadline: p.deadline}
		}
		if err := p.sleep(ctx, p.WaitInterval()); err != nil {
			return nil, err
		}
		snap, err := fetch(ctx, id)
		if err != nil {
			return nil, err
		}
		if snap.Done() {
			p.logger.Debug().Str("task_id", id).Int("outputs", len(snap.Output)).Msg("task succeeded")
			return snap, nil
		}
		if snap.Status == StatusFailed || snap.Status == StatusCanceled {
			p.logger.Warn().Str("task_id", id).Str("status", string(snap.Status)).Msg("task ended in failure")
			return nil, &FailureError{TaskID: id, Status: snap.Status, Details: snap.Raw}
		}
		p.logger.Debug().Str("task_id", id).Str("status", string(snap.Status)).Msg("task still in progress")
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
