package transport

import (
	"math/rand"
	"time"
)

// RetryConfig configures the retry and failover behavior of the dispatcher.
type RetryConfig struct {
	// MaxAttempts is the total attempt budget per dispatched operation,
	// including the first attempt.
	// Default: 3
	MaxAttempts int

	// InitialBackoff is the backoff before the first retry.
	// Default: 1 second
	InitialBackoff time.Duration

	// MaxBackoff caps the backoff between attempts.
	// Default: 30 seconds
	MaxBackoff time.Duration

	// BackoffMultiplier is the exponential growth factor.
	// Default: 2
	BackoffMultiplier float64

	// Jitter randomizes each backoff to 50-100% of its nominal value to
	// avoid retry storms hitting the service in lockstep.
	// Default: true
	Jitter bool

	// RateLimitWait is the wait before the single rate-limit retry when
	// the response carries no retry-after hint.
	// Default: 1 second
	RateLimitWait time.Duration
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:       3,
		InitialBackoff:    time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 2.0,
		Jitter:            true,
		RateLimitWait:     time.Second,
	}
}

// ApplyDefaults sets default values for unset fields.
func (c *RetryConfig) ApplyDefaults() {
	defaults := DefaultRetryConfig()

	if c.MaxAttempts == 0 {
		c.MaxAttempts = defaults.MaxAttempts
	}
	if c.InitialBackoff == 0 {
		c.InitialBackoff = defaults.InitialBackoff
	}
	if c.MaxBackoff == 0 {
		c.MaxBackoff = defaults.MaxBackoff
	}
	if c.BackoffMultiplier == 0 {
		c.BackoffMultiplier = defaults.BackoffMultiplier
	}
	if c.RateLimitWait == 0 {
		c.RateLimitWait = defaults.RateLimitWait
	}
}

// backoffFor returns the wait before the retry following the given
// zero-based attempt number: InitialBackoff doubled per attempt, capped at
// MaxBackoff, with optional 50-100% jitter.
func (c *RetryConfig) backoffFor(attempt int) time.Duration {
	backoff := c.InitialBackoff
	for i := 0; i < attempt; i++ {
		backoff = time.Duration(float64(backoff) * c.BackoffMultiplier)
		if backoff >= c.MaxBackoff {
			backoff = c.MaxBackoff
			break
		}
	}
	if c.Jitter {
		backoff = time.Duration(float64(backoff) * (0.5 + 0.5*rand.Float64()))
	}
	return backoff
}
