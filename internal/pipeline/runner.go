package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Retry and timeout policy applied at whole-task granularity. Stage
// outputs are not separately checkpointed, so a retry re-runs the task
// from scratch; state writes are overwrite-based and safe to repeat.
const (
	DefaultMaxAttempts    = 3
	DefaultBackoffBase    = 2 * time.Second
	DefaultTaskTimeout    = 300 * time.Second
	DefaultMaxConcurrency = 8
)

// Task is one unit of work for the runner. Run executes the task; Fail
// records a terminal failure with a diagnostic when Run cannot succeed.
type Task struct {
	Kind string
	ID   string
	Run  func(ctx context.Context) error
	Fail func(ctx context.Context, diagnostic string) error
}

// RunnerOptions configures a Runner. Zero values fall back to the
// defaults above.
type RunnerOptions struct {
	MaxAttempts    int
	BackoffBase    time.Duration
	TaskTimeout    time.Duration
	MaxConcurrency int
	Logger         *zap.Logger
}

// Runner executes tasks asynchronously with bounded concurrency,
// bounded retries with exponential backoff and a per-attempt wall-clock
// timeout.
type Runner struct {
	maxAttempts int
	backoffBase time.Duration
	taskTimeout time.Duration
	logger      *zap.Logger

	group *errgroup.Group
	ctx   context.Context

	// sleep is swapped out in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRunner creates a runner. ctx bounds the lifetime of all submitted
// tasks.
func NewRunner(ctx context.Context, opts RunnerOptions) *Runner {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = DefaultBackoffBase
	}
	if opts.TaskTimeout <= 0 {
		opts.TaskTimeout = DefaultTaskTimeout
	}
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = DefaultMaxConcurrency
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(opts.MaxConcurrency)

	return &Runner{
		maxAttempts: opts.MaxAttempts,
		backoffBase: opts.BackoffBase,
		taskTimeout: opts.TaskTimeout,
		logger:      opts.Logger,
		group:       group,
		ctx:         groupCtx,
		sleep:       sleepCtx,
	}
}

// Submit schedules the task for asynchronous execution. It blocks only
// when the concurrency limit is reached.
func (r *Runner) Submit(task Task) {
	r.group.Go(func() error {
		r.execute(task)
		// Task failures are recorded through task.Fail, never allowed
		// to cancel sibling tasks.
		return nil
	})
}

// Wait blocks until all submitted tasks have finished.
func (r *Runner) Wait() {
	_ = r.group.Wait()
}

func (r *Runner) execute(task Task) {
	logger := r.logger.With(zap.String("task", task.Kind), zap.String("id", task.ID))

	var lastErr error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(r.ctx, r.taskTimeout)
		err := task.Run(attemptCtx)
		cancel()

		if err == nil {
			if attempt > 1 {
				logger.Info("task succeeded after retry", zap.Int("attempt", attempt))
			}
			return
		}
		lastErr = err

		if IsTerminal(err) {
			logger.Warn("task failed terminally", zap.Error(err))
			break
		}
		if attempt == r.maxAttempts {
			logger.Warn("task failed, retries exhausted",
				zap.Int("attempts", attempt), zap.Error(err))
			break
		}

		backoff := r.backoffBase * (1 << (attempt - 1))
		logger.Warn("task attempt failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.Error(err))
		if err := r.sleep(r.ctx, backoff); err != nil {
			break
		}
	}

	if task.Fail == nil {
		return
	}
	// The run context may already be cancelled; the failure still has
	// to be recorded for status polling.
	failCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := task.Fail(failCtx, lastErr.Error()); err != nil {
		logger.Error("failed to record task failure", zap.Error(err))
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
