package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/civicstate/internal/client/client"
	"github.com/dmitrijs2005/civicstate/internal/logging"
	"github.com/sethvargo/go-retry"
)

const (
	defaultSyncTimeout   = 15 * time.Second
	defaultSyncRetryBase = 200 * time.Millisecond
)

// Syncer runs remote calls in the background. Calls that fail with
// client.ErrUnavailable are retried with exponential backoff; every other
// error ends the attempt. Failures are logged and counted, never returned.
//
// Calls are not ordered relative to each other.
type Syncer struct {
	log     logging.Logger
	retries uint64
	base    time.Duration
	timeout time.Duration

	wg       sync.WaitGroup
	failures atomic.Int64
}

func NewSyncer(log logging.Logger, retries uint64, base time.Duration) *Syncer {
	if base <= 0 {
		base = defaultSyncRetryBase
	}
	return &Syncer{log: log, retries: retries, base: base, timeout: defaultSyncTimeout}
}

// Go starts fn in its own goroutine and returns immediately. fn gets a
// context detached from ctx's cancellation.
func (s *Syncer) Go(ctx context.Context, op, userID string, fn func(ctx context.Context) error) {
	ctx = context.WithoutCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		b := retry.WithMaxRetries(s.retries, retry.NewExponential(s.base))
		err := retry.Do(ctx, b, func(ctx context.Context) error {
			err := fn(ctx)
			if errors.Is(err, client.ErrUnavailable) {
				return retry.RetryableError(err)
			}
			return err
		})
		if err != nil {
			s.failures.Add(1)
			s.log.Warn(ctx, "background sync failed", "op", op, "user_id", userID, "error", err)
			return
		}
		s.log.Debug(ctx, "background sync done", "op", op, "user_id", userID)
	}()
}

// Wait blocks until every call started with Go has finished.
func (s *Syncer) Wait() {
	s.wg.Wait()
}

// Failures counts background calls that gave up.
func (s *Syncer) Failures() int64 {
	return s.failures.Load()
}
