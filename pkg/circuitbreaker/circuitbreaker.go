package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitState is the current circuit breaker state.
type CircuitState int

const (
	// Closed lets calls through and counts consecutive failures.
	Closed CircuitState = iota
	// Open rejects calls until the recovery timeout elapses.
	Open
	// HalfOpen lets trial calls through to probe recovery.
	HalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// CircuitBreaker guards calls and opens the circuit after repeated failures.
type CircuitBreaker interface {
	Call(func() error) error
	State() CircuitState
	Reset()
	Metrics() CircuitBreakerMetrics
}

type Config struct {
	FailureThreshold int           // consecutive failures before opening
	RecoveryTimeout  time.Duration // time spent open before probing
	SuccessThreshold int           // half-open successes needed to close

	// IsFailure decides whether an error returned by the guarded call counts
	// against the circuit. Nil counts every non-nil error.
	IsFailure func(error) bool

	// OnStateChange is invoked after every transition, outside the breaker lock.
	OnStateChange func(from, to CircuitState)
}

func DefaultConfig() *Config {
	return &Config{
		FailureThreshold: 5,
		RecoveryTimeout:  30 * time.Second,
		SuccessThreshold: 2,
	}
}

// CircuitBreakerMetrics is a snapshot of the breaker state and counters.
type CircuitBreakerMetrics struct {
	State        CircuitState
	FailureCount int
	SuccessCount int
	LastFailure  time.Time
	NextAttempt  time.Time
}

type transition struct {
	from, to CircuitState
}

type circuitBreaker struct {
	config      Config
	now         func() time.Time
	mutex       sync.RWMutex
	state       CircuitState
	failures    int
	successes   int
	lastFailure time.Time
	nextAttempt time.Time
}

// NewCircuitBreaker copies config, filling zero thresholds from DefaultConfig.
// A nil config uses the defaults.
func NewCircuitBreaker(config *Config) CircuitBreaker {
	return newCircuitBreaker(config, time.Now)
}

func newCircuitBreaker(config *Config, now func() time.Time) *circuitBreaker {
	cfg := *DefaultConfig()
	if config != nil {
		cfg = *config
	}

	defaults := DefaultConfig()
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = defaults.FailureThreshold
	}
	if cfg.RecoveryTimeout <= 0 {
		cfg.RecoveryTimeout = defaults.RecoveryTimeout
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = defaults.SuccessThreshold
	}

	return &circuitBreaker{config: cfg, now: now, state: Closed}
}

func (cb *circuitBreaker) Call(fn func() error) error {
	cb.mutex.Lock()
	allowed, moved := cb.admit()
	cb.mutex.Unlock()
	cb.notify(moved)

	if !allowed {
		return ErrCircuitOpen
	}

	// User code never runs under the lock.
	err := fn()

	cb.mutex.Lock()
	if err != nil && cb.countsAsFailure(err) {
		moved = cb.recordFailure()
	} else {
		moved = cb.recordSuccess()
	}
	cb.mutex.Unlock()
	cb.notify(moved)

	return err
}

// admit moves Open to HalfOpen once the recovery timeout has passed.
func (cb *circuitBreaker) admit() (bool, *transition) {
	var moved *transition
	if cb.state == Open && cb.now().After(cb.nextAttempt) {
		moved = cb.setState(HalfOpen)
		cb.successes = 0
	}
	return cb.state != Open, moved
}

func (cb *circuitBreaker) countsAsFailure(err error) bool {
	if cb.config.IsFailure == nil {
		return true
	}
	return cb.config.IsFailure(err)
}

func (cb *circuitBreaker) recordFailure() *transition {
	cb.failures++
	cb.lastFailure = cb.now()

	if cb.state == HalfOpen || (cb.state == Closed && cb.failures >= cb.config.FailureThreshold) {
		cb.nextAttempt = cb.lastFailure.Add(cb.config.RecoveryTimeout)
		return cb.setState(Open)
	}
	return nil
}

func (cb *circuitBreaker) recordSuccess() *transition {
	cb.failures = 0

	if cb.state != HalfOpen {
		return nil
	}

	cb.successes++
	if cb.successes < cb.config.SuccessThreshold {
		return nil
	}
	cb.successes = 0
	return cb.setState(Closed)
}

func (cb *circuitBreaker) setState(to CircuitState) *transition {
	if cb.state == to {
		return nil
	}
	moved := &transition{from: cb.state, to: to}
	cb.state = to
	return moved
}

func (cb *circuitBreaker) notify(moved *transition) {
	if moved != nil && cb.config.OnStateChange != nil {
		cb.config.OnStateChange(moved.from, moved.to)
	}
}

func (cb *circuitBreaker) State() CircuitState {
	cb.mutex.RLock()
	defer cb.mutex.RUnlock()
	return cb.state
}

func (cb *circuitBreaker) Reset() {
	cb.mutex.Lock()
	moved := cb.setState(Closed)
	cb.failures = 0
	cb.successes = 0
	cb.mutex.Unlock()
	cb.notify(moved)
}

func (cb *circuitBreaker) Metrics() CircuitBreakerMetrics {
	cb.mutex.RLock()
	defer cb.mutex.RUnlock()

	return CircuitBreakerMetrics{
		State:        cb.state,
		FailureCount: cb.failures,
		SuccessCount: cb.successes,
		LastFailure:  cb.lastFailure,
		NextAttempt:  cb.nextAttempt,
	}
}
