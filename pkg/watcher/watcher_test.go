package watcher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lisabeyy/loofta-pay-public-sub001/pkg/status"
)

type step struct {
	status    string
	updatedAt string
	err       error
}

type scriptedGetter struct {
	mu    sync.Mutex
	steps []step
	calls int
}

func (g *scriptedGetter) Get(_ context.Context, _ string) (*status.NormalizedExecutionStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	s := g.steps[len(g.steps)-1]
	if g.calls < len(g.steps) {
		s = g.steps[g.calls]
	}
	g.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &status.NormalizedExecutionStatus{Status: s.status, UpdatedAt: s.updatedAt}, nil
}

func fastWatcher(g StatusGetter) *Watcher {
	w := New(g, 0, 0, slog.New(slog.NewTextHandler(io.Discard, nil)))
	w.interval = time.Millisecond
	w.maxBackoff = 4 * time.Millisecond
	return w
}

func TestWatch_UntilTerminal(t *testing.T) {
	fetchErr := &status.StatusFetchError{DepositAddress: "addr", Err: errors.New("timeout")}
	g := &scriptedGetter{steps: []step{
		{status: "PENDING_DEPOSIT", updatedAt: "t1"},
		{status: "PENDING_DEPOSIT", updatedAt: "t1"},
		{err: fetchErr},
		{err: fetchErr},
		{status: "PROCESSING", updatedAt: "t2"},
		{status: "SUCCESS", updatedAt: "t3"},
	}}

	var seen []string
	final, err := fastWatcher(g).Watch(context.Background(), "addr", func(st *status.NormalizedExecutionStatus) {
		seen = append(seen, st.Status)
	})
	require.NoError(t, err)
	assert.Equal(t, "SUCCESS", final.Status)
	assert.Equal(t, []string{"PENDING_DEPOSIT", "PROCESSING", "SUCCESS"}, seen)
	assert.Equal(t, 6, g.calls)
}

func TestWatch_StopsOnOtherErrors(t *testing.T) {
	g := &scriptedGetter{steps: []step{{err: status.ErrMissingDepositAddress}}}
	_, err := fastWatcher(g).Watch(context.Background(), "", nil)
	assert.ErrorIs(t, err, status.ErrMissingDepositAddress)
	assert.Equal(t, 1, g.calls)
}

func TestWatch_Cancelled(t *testing.T) {
	g := &scriptedGetter{steps: []step{{status: "PROCESSING", updatedAt: "t"}}}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	last, err := fastWatcher(g).Watch(ctx, "addr", nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	require.NotNil(t, last)
	assert.Equal(t, "PROCESSING", last.Status)
}

func TestNew_ClampsInterval(t *testing.T) {
	w := New(&scriptedGetter{}, time.Millisecond, 0, nil)
	assert.Equal(t, MinInterval, w.interval)
	assert.Equal(t, MinInterval, w.maxBackoff)
}

func TestBackoff(t *testing.T) {
	w := New(&scriptedGetter{}, 2*time.Second, 5*time.Second, nil)
	assert.Equal(t, 4*time.Second, w.backoff(2*time.Second))
	assert.Equal(t, 5*time.Second, w.backoff(4*time.Second))
}
