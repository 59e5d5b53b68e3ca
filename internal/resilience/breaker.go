package resilience

import (
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ErrCircuitOpen is returned by Allow while the breaker rejects calls.
// It never reaches callers of Do; they see ErrServiceUnavailable instead.
var ErrCircuitOpen = errors.New("circuit breaker is open")

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// Breaker is a circuit breaker shared by all concurrent calls to one remote
// target. It trips after a number of consecutive failures, rejects calls for
// a cooldown period, then admits a bounded set of trial calls.
type Breaker struct {
	mu sync.Mutex

	failureThreshold int
	cooldown         time.Duration
	halfOpenMax      int

	state               State
	consecutiveFailures int
	halfOpenInFlight    int
	openedAt            time.Time

	stateGauge prometheus.Gauge
	now        func() time.Time
}

// NewBreaker creates a breaker in the closed state. stateGauge may be nil.
func NewBreaker(failureThreshold int, cooldown time.Duration, halfOpenMax int, stateGauge prometheus.Gauge) *Breaker {
	if failureThreshold < 1 {
		failureThreshold = 1
	}
	if halfOpenMax < 1 {
		halfOpenMax = 1
	}
	b := &Breaker{
		failureThreshold: failureThreshold,
		cooldown:         cooldown,
		halfOpenMax:      halfOpenMax,
		stateGauge:       stateGauge,
		now:              time.Now,
	}
	b.setState(StateClosed)
	return b
}

// Allow reports whether a call may proceed. While open it transitions to
// half-open once the cooldown has elapsed; in half-open it admits at most
// halfOpenMax in-flight trial calls.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.cooldown {
			return ErrCircuitOpen
		}
		b.setState(StateHalfOpen)
		b.halfOpenInFlight = 1
		return nil
	case StateHalfOpen:
		if b.halfOpenInFlight >= b.halfOpenMax {
			return ErrCircuitOpen
		}
		b.halfOpenInFlight++
		return nil
	default:
		return nil
	}
}

// RecordSuccess resets the failure count; a half-open success closes the
// breaker.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateHalfOpen:
		b.setState(StateClosed)
	case StateClosed:
		b.consecutiveFailures = 0
	}
}

// RecordFailure counts a failure; reaching the threshold while closed, or
// any failure while half-open, opens the breaker and restarts the cooldown.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateHalfOpen:
		b.setState(StateOpen)
		b.openedAt = b.now()
	case StateClosed:
		b.consecutiveFailures++
		if b.consecutiveFailures >= b.failureThreshold {
			b.setState(StateOpen)
			b.openedAt = b.now()
		}
	}
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// setState must be called with b.mu held.
func (b *Breaker) setState(s State) {
	b.state = s
	b.consecutiveFailures = 0
	b.halfOpenInFlight = 0
	if b.stateGauge != nil {
		b.stateGauge.Set(float64(s))
	}
}
