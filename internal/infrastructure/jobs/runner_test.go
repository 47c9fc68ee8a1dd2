package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubLease struct {
	released atomic.Int32
}

func (l *stubLease) Release(_ context.Context) error {
	l.released.Add(1)
	return nil
}

type stubLocker struct {
	lease    *stubLease
	err      error
	obtained atomic.Int32
	lastKey  atomic.Value
}

func (l *stubLocker) Obtain(_ context.Context, key string, _ time.Duration) (Lease, error) {
	l.obtained.Add(1)
	l.lastKey.Store(key)
	if l.err != nil {
		return nil, l.err
	}
	return l.lease, nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for !cond() {
		select {
		case <-deadline:
			t.Fatal("condition not met in time")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestRunner(t *testing.T) {
	t.Run("runs job under lease and releases it", func(t *testing.T) {
		locker := &stubLocker{lease: &stubLease{}}
		runner := NewRunner(locker, time.Minute, zap.NewNop())

		var runs atomic.Int32
		runner.Register(Job{
			Name:     "recurring-invoices",
			Interval: 10 * time.Millisecond,
			Run: func(ctx context.Context) error {
				runs.Add(1)
				return nil
			},
		})

		runner.Start(context.Background())
		waitFor(t, func() bool { return runs.Load() >= 2 })
		runner.Stop()

		assert.Equal(t, "jobs:recurring-invoices", locker.lastKey.Load())
		assert.GreaterOrEqual(t, locker.lease.released.Load(), int32(2))
	})

	t.Run("skips tick when lease is held elsewhere", func(t *testing.T) {
		locker := &stubLocker{err: ErrLeaseHeld}
		runner := NewRunner(locker, time.Minute, zap.NewNop())

		var runs atomic.Int32
		runner.Register(Job{
			Name:     "overdue-reminders",
			Interval: 10 * time.Millisecond,
			Run: func(ctx context.Context) error {
				runs.Add(1)
				return nil
			},
		})

		runner.Start(context.Background())
		waitFor(t, func() bool { return locker.obtained.Load() >= 2 })
		runner.Stop()

		assert.Zero(t, runs.Load())
	})

	t.Run("job failure still releases the lease", func(t *testing.T) {
		locker := &stubLocker{lease: &stubLease{}}
		runner := NewRunner(locker, time.Minute, zap.NewNop())

		runner.Register(Job{
			Name:     "recurring-invoices",
			Interval: 10 * time.Millisecond,
			Run: func(ctx context.Context) error {
				return errors.New("sweep failed")
			},
		})

		runner.Start(context.Background())
		waitFor(t, func() bool { return locker.lease.released.Load() >= 1 })
		runner.Stop()
	})

	t.Run("stop halts the loops", func(t *testing.T) {
		locker := &stubLocker{lease: &stubLease{}}
		runner := NewRunner(locker, time.Minute, zap.NewNop())

		var runs atomic.Int32
		runner.Register(Job{
			Name:     "recurring-invoices",
			Interval: 10 * time.Millisecond,
			Run: func(ctx context.Context) error {
				runs.Add(1)
				return nil
			},
		})

		runner.Start(context.Background())
		waitFor(t, func() bool { return runs.Load() >= 1 })
		runner.Stop()

		settled := runs.Load()
		time.Sleep(50 * time.Millisecond)
		assert.Equal(t, settled, runs.Load())
	})
}
