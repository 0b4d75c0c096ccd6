package media

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/sethvargo/go-retry"
	"go.uber.org/multierr"

	"github.com/angelmondragon/postoko-backend/pkg/logger"
	"github.com/angelmondragon/postoko-backend/pkg/metrics"
)

// Deleter removes a stored image.
type Deleter interface {
	Delete(ctx context.Context, stored string) error
}

// Remover queues stored images for removal without blocking the caller.
type Remover interface {
	Remove(ctx context.Context, stored string)
}

// CleanerOptions tunes the background deletion pool.
type CleanerOptions struct {
	Workers      int
	MaxRetries   uint64
	Backoff      time.Duration
	DrainTimeout time.Duration
	Metrics      *metrics.CleanupMetrics
}

// Cleaner deletes orphaned images on a worker pool with bounded retries.
// Failures are logged and counted, never returned.
type Cleaner struct {
	deleter Deleter
	pool    *ants.Pool
	opts    CleanerOptions
	logg    *logger.Logger

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

// NewCleaner starts the worker pool.
func NewCleaner(deleter Deleter, opts CleanerOptions, logg *logger.Logger) (*Cleaner, error) {
	if deleter == nil {
		return nil, errors.New("deleter is required")
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 200 * time.Millisecond
	}
	if opts.DrainTimeout <= 0 {
		opts.DrainTimeout = 10 * time.Second
	}

	// A saturated pool rejects the task and Remove counts it as dropped.
	pool, err := ants.NewPool(opts.Workers,
		ants.WithNonblocking(true),
		ants.WithPanicHandler(func(p any) {
			if logg != nil {
				logg.Error(context.Background(), "asset cleanup panic", fmt.Errorf("panic: %v", p))
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("create cleanup pool: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Cleaner{
		deleter: deleter,
		pool:    pool,
		opts:    opts,
		logg:    logg,
		ctx:     ctx,
		cancel:  cancel,
	}, nil
}

// Remove schedules deletion of stored. The request context only contributes
// log fields; the deletion outlives the request.
func (c *Cleaner) Remove(ctx context.Context, stored string) {
	if stored == "" {
		return
	}
	logCtx := ctx
	if c.logg != nil {
		logCtx = c.logg.WithField(ctx, "image", stored)
	}

	c.wg.Add(1)
	err := c.pool.Submit(func() {
		defer c.wg.Done()
		c.run(logCtx, stored)
	})
	if err != nil {
		c.wg.Done()
		c.opts.Metrics.IncDropped()
		if c.logg != nil {
			c.logg.Warn(c.logg.WithField(logCtx, "error", err.Error()), "asset cleanup not scheduled")
		}
	}
}

func (c *Cleaner) run(logCtx context.Context, stored string) {
	backoff := retry.WithMaxRetries(c.opts.MaxRetries, retry.NewExponential(c.opts.Backoff))
	attempt := 0

	err := retry.Do(c.ctx, backoff, func(ctx context.Context) error {
		attempt++
		if attempt > 1 {
			c.opts.Metrics.IncRetry()
		}
		if err := c.deleter.Delete(ctx, stored); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		c.opts.Metrics.IncFailed()
		if c.logg != nil {
			c.logg.Warn(c.logg.WithFields(logCtx, map[string]any{
				"error":    err.Error(),
				"attempts": attempt,
			}), "asset cleanup failed")
		}
		return
	}

	c.opts.Metrics.IncDeleted()
	if c.logg != nil {
		c.logg.Debug(logCtx, "asset deleted")
	}
}

// Wait blocks until every scheduled deletion has finished.
func (c *Cleaner) Wait() {
	c.wg.Wait()
}

// Close drains in-flight deletions, then releases the pool. Deletions still
// pending after the drain timeout are abandoned.
func (c *Cleaner) Close() error {
	var err error
	c.once.Do(func() {
		done := make(chan struct{})
		go func() {
			c.wg.Wait()
			close(done)
		}()

		timer := time.NewTimer(c.opts.DrainTimeout)
		defer timer.Stop()

		select {
		case <-done:
		case <-timer.C:
			err = multierr.Append(err, fmt.Errorf("asset cleanup drain timed out after %s", c.opts.DrainTimeout))
			c.cancel()
		}

		err = multierr.Append(err, c.pool.ReleaseTimeout(c.opts.DrainTimeout))
		c.cancel()
	})
	return err
}
