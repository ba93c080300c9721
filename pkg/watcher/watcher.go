package watcher

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/lisabeyy/loofta-pay-public-sub001/pkg/status"
)

const (
	DefaultInterval   = 5 * time.Second  // Poll every 5 seconds
	MinInterval       = time.Second      // Floor to avoid hammering the upstream API
	DefaultMaxBackoff = 60 * time.Second // Longest wait after repeated fetch failures
)

// StatusGetter returns the normalized status of a deposit address
type StatusGetter interface {
	Get(ctx context.Context, depositAddress string) (*status.NormalizedExecutionStatus, error)
}

// Watcher polls a swap until it reaches a terminal state
type Watcher struct {
	getter     StatusGetter
	interval   time.Duration
	maxBackoff time.Duration
	log        *slog.Logger
}

// New creates a watcher polling getter every interval
func New(getter StatusGetter, interval, maxBackoff time.Duration, log *slog.Logger) *Watcher {
	if interval < MinInterval {
		interval = MinInterval
	}
	if maxBackoff < interval {
		maxBackoff = interval
	}
	if log == nil {
		log = slog.Default()
	}
	return &Watcher{
		getter:     getter,
		interval:   interval,
		maxBackoff: maxBackoff,
		log:        log,
	}
}

// Watch polls depositAddress until its status is terminal or ctx is cancelled.
// onUpdate, when set, is called each time the status or updatedAt changes.
// Fetch failures back off exponentially up to the max backoff; any other error stops the watch.
func (w *Watcher) Watch(ctx context.Context, depositAddress string, onUpdate func(*status.NormalizedExecutionStatus)) (*status.NormalizedExecutionStatus, error) {
	var (
		last  *status.NormalizedExecutionStatus
		delay = w.interval
	)

	w.log.Info("watching swap status", slog.String("deposit_address", depositAddress))

	for {
		st, err := w.getter.Get(ctx, depositAddress)
		switch {
		case err == nil:
			delay = w.interval
			if last == nil || last.Status != st.Status || last.UpdatedAt != st.UpdatedAt {
				if onUpdate != nil {
					onUpdate(st)
				}
			}
			last = st
			if status.IsTerminal(st.Status) {
				w.log.Info("swap reached terminal status",
					slog.String("deposit_address", depositAddress),
					slog.String("status", st.Status),
				)
				return st, nil
			}
		case errors.Is(err, status.ErrStatusFetchFailed):
			if ctx.Err() != nil {
				return last, ctx.Err()
			}
			delay = w.backoff(delay)
			w.log.Warn("status fetch failed, backing off",
				slog.String("deposit_address", depositAddress),
				slog.Duration("retry_in", delay),
				slog.Any("error", err),
			)
		default:
			return last, err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			w.log.Info("stopped watching swap status", slog.String("deposit_address", depositAddress))
			return last, ctx.Err()
		case <-timer.C:
		}
	}
}

func (w *Watcher) backoff(current time.Duration) time.Duration {
	next := current * 2
	if next > w.maxBackoff {
		next = w.maxBackoff
	}
	return next
}
