package housekeeping

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingPruner struct {
	calls atomic.Int32
	err   error
}

func (p *countingPruner) PruneExpired(ctx context.Context) (int64, error) {
	p.calls.Add(1)
	return 2, p.err
}

func TestRun_PrunesUntilCancelled(t *testing.T) {
	pruner := &countingPruner{}
	s := NewService(pruner, nil)
	s.delay = time.Millisecond
	s.interval = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return pruner.calls.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_ErrorsDoNotStopLoop(t *testing.T) {
	pruner := &countingPruner{err: errors.New("database is locked")}
	s := NewService(pruner, nil)
	s.delay = time.Millisecond
	s.interval = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	assert.Eventually(t, func() bool { return pruner.calls.Load() >= 2 }, time.Second, time.Millisecond)
}

func TestRun_CancelledBeforeStart(t *testing.T) {
	pruner := &countingPruner{}
	s := NewService(pruner, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.Run(ctx)

	assert.Equal(t, int32(0), pruner.calls.Load())
}
