package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrLeaseHeld means another instance currently holds the job lease
var ErrLeaseHeld = errors.New("job lease held by another instance")

// Job is a periodic background task
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Lease is a held distributed lock that must be released after the run
type Lease interface {
	Release(ctx context.Context) error
}

// Locker grants per-job leases so only one instance runs a job at a time
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (Lease, error)
}

// RedisLocker implements Locker on top of redislock
type RedisLocker struct {
	client *redislock.Client
}

// NewRedisLocker creates a new RedisLocker
func NewRedisLocker(rdb redis.UniversalClient) *RedisLocker {
	return &RedisLocker{client: redislock.New(rdb)}
}

// Obtain acquires the lease or returns ErrLeaseHeld
func (l *RedisLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (Lease, error) {
	lock, err := l.client.Obtain(ctx, key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrLeaseHeld
	}
	if err != nil {
		return nil, err
	}
	return lock, nil
}

// Runner drives periodic jobs on ticker loops. Each tick takes a
// distributed lease keyed by job name, so a multi-instance deployment
// runs each sweep exactly once per tick.
type Runner struct {
	locker   Locker
	leaseTTL time.Duration
	logger   *zap.Logger
	jobs     []Job

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// NewRunner creates a new Runner
func NewRunner(locker Locker, leaseTTL time.Duration, logger *zap.Logger) *Runner {
	return &Runner{
		locker:   locker,
		leaseTTL: leaseTTL,
		logger:   logger,
	}
}

// Register adds a job to the runner. Must be called before Start.
func (r *Runner) Register(job Job) {
	r.jobs = append(r.jobs, job)
}

// Start launches one ticker loop per registered job
func (r *Runner) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)

	for _, job := range r.jobs {
		r.wg.Add(1)
		go r.loop(ctx, job)
	}
	r.logger.Info("job runner started", zap.Int("jobs", len(r.jobs)))
}

// Stop cancels all job loops and waits for in-flight runs to finish
func (r *Runner) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
	r.logger.Info("job runner stopped")
}

func (r *Runner) loop(ctx context.Context, job Job) {
	defer r.wg.Done()

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.runOnce(ctx, job)
		}
	}
}

func (r *Runner) runOnce(ctx context.Context, job Job) {
	lease, err := r.locker.Obtain(ctx, "jobs:"+job.Name, r.leaseTTL)
	if errors.Is(err, ErrLeaseHeld) {
		r.logger.Debug("job skipped, lease held elsewhere", zap.String("job", job.Name))
		return
	}
	if err != nil {
		r.logger.Error("job lease acquisition failed",
			zap.String("job", job.Name),
			zap.Error(err),
		)
		return
	}
	defer func() {
		if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
			r.logger.Warn("job lease release failed",
				zap.String("job", job.Name),
				zap.Error(err),
			)
		}
	}()

	start := time.Now()
	if err := job.Run(ctx); err != nil {
		r.logger.Error("job run failed",
			zap.String("job", job.Name),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return
	}
	r.logger.Info("job run completed",
		zap.String("job", job.Name),
		zap.Duration("elapsed", time.Since(start)),
	)
}
