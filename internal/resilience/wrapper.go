package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// ErrServiceUnavailable is the only error Do surfaces when the protected
// call could not produce real data: retries exhausted, timeout, or open
// circuit. The raw fault is logged, never propagated.
var ErrServiceUnavailable = errors.New("service unavailable")

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks an error as not retryable, e.g. a rejected request.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// Config bounds a single protected call: per-attempt timeout, attempt
// count, and the pause between attempts.
type Config struct {
	Timeout     time.Duration
	MaxAttempts int
	Backoff     time.Duration
}

// Wrapper composes a circuit breaker with timeout and retry policies
// around a single remote call target.
type Wrapper struct {
	breaker *Breaker
	cfg     Config
	logger  *zap.Logger
	calls   *prometheus.CounterVec
}

// NewWrapper wires the policies together. calls may be nil; it is labeled
// by outcome (success, failure, rejected, fallback).
func NewWrapper(breaker *Breaker, cfg Config, logger *zap.Logger, calls *prometheus.CounterVec) *Wrapper {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Wrapper{
		breaker: breaker,
		cfg:     cfg,
		logger:  logger,
		calls:   calls,
	}
}

func (w *Wrapper) count(outcome string) {
	if w.calls != nil {
		w.calls.WithLabelValues(outcome).Inc()
	}
}

// Do executes fn under the wrapper's policies and always returns a definite
// value: fn's result on success, otherwise fallback() together with
// ErrServiceUnavailable. Each attempt runs on its own goroutine so a timed
// out call is abandoned rather than awaited.
func Do[T any](ctx context.Context, w *Wrapper, fn func(context.Context) (T, error), fallback func() T) (T, error) {
	var lastErr error

	for attempt := 1; attempt <= w.cfg.MaxAttempts; attempt++ {
		if err := w.breaker.Allow(); err != nil {
			w.count("rejected")
			w.logger.Warn("call rejected by circuit breaker",
				zap.Int("attempt", attempt))
			w.count("fallback")
			return fallback(), ErrServiceUnavailable
		}

		result, err := runAttempt(ctx, w.cfg.Timeout, fn)
		if err == nil {
			w.breaker.RecordSuccess()
			w.count("success")
			return result, nil
		}

		w.breaker.RecordFailure()
		w.count("failure")
		lastErr = err
		w.logger.Warn("protected call failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", w.cfg.MaxAttempts),
			zap.Error(err))

		if IsPermanent(err) {
			break
		}
		if attempt < w.cfg.MaxAttempts {
			select {
			case <-time.After(w.cfg.Backoff):
			case <-ctx.Done():
				lastErr = ctx.Err()
				attempt = w.cfg.MaxAttempts
			}
		}
	}

	w.logger.Warn("protected call exhausted, using fallback",
		zap.Error(lastErr),
		zap.String("circuit_state", w.breaker.State().String()))
	w.count("fallback")
	return fallback(), ErrServiceUnavailable
}

// runAttempt runs fn with a deadline. On timeout the attempt goroutine is
// left to finish on its own; its result is dropped.
func runAttempt[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	attemptCtx := ctx
	cancel := context.CancelFunc(func() {})
	if timeout > 0 {
		attemptCtx, cancel = context.WithTimeout(ctx, timeout)
	}
	defer cancel()

	type outcome struct {
		value T
		err   error
	}
	done := make(chan outcome, 1)

	go func() {
		value, err := fn(attemptCtx)
		done <- outcome{value: value, err: err}
	}()

	select {
	case out := <-done:
		return out.value, out.err
	case <-attemptCtx.Done():
		var zero T
		return zero, fmt.Errorf("call abandoned: %w", attemptCtx.Err())
	}
}
