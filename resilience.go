package avakit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"
)

// RetryConfig configures retry behavior for failed gateway operations.
type RetryConfig struct {
	// MaxRetries is the maximum number of retry attempts.
	// Set to 0 to disable retries.
	MaxRetries int

	// BaseDelay is the initial delay between retries.
	// Default: 1 second
	BaseDelay time.Duration

	// MaxDelay is the maximum delay between retries.
	// Default: 30 seconds
	MaxDelay time.Duration

	// Multiplier is used for exponential backoff.
	// Each retry delay is multiplied by this factor.
	// Default: 2.0
	Multiplier float64

	// Jitter adds randomness to retry delays to avoid thundering herd.
	// Value between 0.0 and 1.0. Default: 0.1 (10% jitter)
	Jitter float64

	// RetryableErrors determines if an error should trigger a retry.
	// If nil, all errors are considered retryable.
	RetryableErrors func(error) bool
}

// DefaultRetryConfig returns a sensible default retry configuration: only
// transient failures (network, server-side, throttling) are retried.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  1 * time.Second,
		MaxDelay:   30 * time.Second,
		Multiplier: 2.0,
		Jitter:     0.1,
		RetryableErrors: func(err error) bool {
			return errors.Is(err, ErrNetwork) ||
				errors.Is(err, ErrServer) ||
				errors.Is(err, ErrRateLimited)
		},
	}
}

// RetryableOperation represents an operation that can be retried.
type RetryableOperation func() error

// WithRetry executes an operation with retry logic based on the provided
// configuration.
func WithRetry(ctx context.Context, config RetryConfig, op RetryableOperation) error {
	var lastErr error

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		err := op()
		if err == nil {
			return nil
		}

		lastErr = err

		if config.RetryableErrors != nil && !config.RetryableErrors(err) {
			return fmt.Errorf("non-retryable error: %w", err)
		}

		// Don't delay after the last attempt
		if attempt == config.MaxRetries {
			break
		}

		delay := calculateDelay(attempt, config)

		select {
		case <-ctx.Done():
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("operation failed after %d attempts: %w", config.MaxRetries+1, lastErr)
}

// calculateDelay computes the delay for a retry attempt with exponential
// backoff and jitter.
func calculateDelay(attempt int, config RetryConfig) time.Duration {
	delay := float64(config.BaseDelay) * math.Pow(config.Multiplier, float64(attempt))

	if delay > float64(config.MaxDelay) {
		delay = float64(config.MaxDelay)
	}

	if config.Jitter > 0 {
		jitterAmount := delay * config.Jitter
		delay += (2.0 * jitterAmount) - jitterAmount
	}

	return time.Duration(delay)
}

// CircuitBreakerConfig configures circuit breaker behavior.
type CircuitBreakerConfig struct {
	// FailureThreshold is the number of failures that triggers the circuit breaker.
	FailureThreshold int

	// RecoveryTimeout is how long to wait before attempting to recover.
	RecoveryTimeout time.Duration

	// SuccessThreshold is the number of successes needed to close the circuit.
	SuccessThreshold int
}

// CircuitBreakerState represents the current state of the circuit breaker.
type CircuitBreakerState int

const (
	CircuitClosed CircuitBreakerState = iota
	CircuitOpen
	CircuitHalfOpen
)

// CircuitBreaker implements the circuit breaker pattern to prevent cascading
// failures against a struggling backend. Safe for concurrent use.
type CircuitBreaker struct {
	config CircuitBreakerConfig

	mu              sync.Mutex
	state           CircuitBreakerState
	failures        int
	successes       int
	lastFailureTime time.Time
}

// NewCircuitBreaker creates a new circuit breaker with the given configuration.
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{
		config: config,
		state:  CircuitClosed,
	}
}

// ErrCircuitOpen is returned when the circuit breaker rejects an operation.
var ErrCircuitOpen = errors.New("avakit: circuit breaker is open")

// Execute runs an operation through the circuit breaker.
func (cb *CircuitBreaker) Execute(op func() error) error {
	if !cb.shouldAllow() {
		return ErrCircuitOpen
	}

	err := op()

	if err != nil {
		cb.onFailure()
		return err
	}

	cb.onSuccess()
	return nil
}

func (cb *CircuitBreaker) shouldAllow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	switch cb.state {
	case CircuitClosed:
		return true
	case CircuitOpen:
		if time.Since(cb.lastFailureTime) >= cb.config.RecoveryTimeout {
			cb.state = CircuitHalfOpen
			return true
		}
		return false
	case CircuitHalfOpen:
		return true
	default:
		return false
	}
}

func (cb *CircuitBreaker) onFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failures++
	cb.successes = 0
	cb.lastFailureTime = time.Now()

	if cb.failures >= cb.config.FailureThreshold {
		cb.state = CircuitOpen
	}
}

func (cb *CircuitBreaker) onSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.successes++
	cb.failures = 0

	if cb.state == CircuitHalfOpen && cb.successes >= cb.config.SuccessThreshold {
		cb.state = CircuitClosed
	}
}

// State returns the current circuit breaker state.
func (cb *CircuitBreaker) State() CircuitBreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// ResilientGateway wraps a Gateway with retry (and optionally a circuit
// breaker) for its read-only operations. Mutating operations are delegated
// unretried: the SDK cannot know whether a timed-out create actually took
// effect on the backend.
type ResilientGateway struct {
	gateway *Gateway
	config  RetryConfig
	breaker *CircuitBreaker
}

// NewResilientGateway wraps a gateway with retry functionality.
func NewResilientGateway(gateway *Gateway, config RetryConfig) *ResilientGateway {
	return &ResilientGateway{gateway: gateway, config: config}
}

// WithCircuitBreaker adds a circuit breaker in front of every retried
// operation.
func (r *ResilientGateway) WithCircuitBreaker(cb *CircuitBreaker) *ResilientGateway {
	r.breaker = cb
	return r
}

func (r *ResilientGateway) run(ctx context.Context, op func() error) error {
	if r.breaker != nil {
		wrapped := op
		op = func() error { return r.breaker.Execute(wrapped) }
	}
	return WithRetry(ctx, r.config, op)
}

// ListAvatars retries transient failures of Gateway.ListAvatars.
func (r *ResilientGateway) ListAvatars(ctx context.Context) ([]Avatar, error) {
	var avatars []Avatar
	err := r.run(ctx, func() error {
		var err error
		avatars, err = r.gateway.ListAvatars(ctx)
		return err
	})
	return avatars, err
}

// GetAvatar retries transient failures of Gateway.GetAvatar.
func (r *ResilientGateway) GetAvatar(ctx context.Context, id string) (Avatar, error) {
	var avatar Avatar
	err := r.run(ctx, func() error {
		var err error
		avatar, err = r.gateway.GetAvatar(ctx, id)
		return err
	})
	return avatar, err
}

// GetSession retries transient failures of Gateway.GetSession.
func (r *ResilientGateway) GetSession(ctx context.Context, id string) (Session, error) {
	var session Session
	err := r.run(ctx, func() error {
		var err error
		session, err = r.gateway.GetSession(ctx, id)
		return err
	})
	return session, err
}

// GetSessionStatus retries transient failures of Gateway.GetSessionStatus.
func (r *ResilientGateway) GetSessionStatus(ctx context.Context, id string) (SessionStatusInfo, error) {
	var info SessionStatusInfo
	err := r.run(ctx, func() error {
		var err error
		info, err = r.gateway.GetSessionStatus(ctx, id)
		return err
	})
	return info, err
}

// Health retries transient failures of Gateway.Health.
func (r *ResilientGateway) Health(ctx context.Context) (HealthReport, error) {
	var report HealthReport
	err := r.run(ctx, func() error {
		var err error
		report, err = r.gateway.Health(ctx)
		return err
	})
	return report, err
}

// Non-idempotent operations are delegated without retry.

func (r *ResilientGateway) CreateAvatar(ctx context.Context, req CreateAvatarRequest) (Avatar, error) {
	return r.gateway.CreateAvatar(ctx, req)
}

func (r *ResilientGateway) CreateSession(ctx context.Context, req CreateSessionRequest) (Session, error) {
	return r.gateway.CreateSession(ctx, req)
}

func (r *ResilientGateway) EndSession(ctx context.Context, id string) error {
	return r.gateway.EndSession(ctx, id)
}
