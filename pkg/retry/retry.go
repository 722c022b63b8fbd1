// Package retry has utilities to retry operations.
package retry

import (
	"time"
)

type config struct {
	initialInterval time.Duration
	backoff         bool
	maxAttempts     int
}

// Option allows to configure the behavior of retries.
type Option func(*config)

// WithInterval allows to specify a custom interval between retries.
func WithInterval(i time.Duration) Option {
	return func(c *config) {
		c.initialInterval = i
	}
}

// WithBackoff enables exponential backoff on the retry interval, capped at
// five times the initial interval.
func WithBackoff(b bool) Option {
	return func(c *config) {
		c.backoff = b
	}
}

// WithMaxAttempts allows to specify a maximum number of attempts before Do
// gives up and returns the last error.
func WithMaxAttempts(a int) Option {
	return func(c *config) {
		c.maxAttempts = a
	}
}

// Do executes the provided function, retrying on a non-nil error. Without
// WithMaxAttempts it retries until the function succeeds.
func Do(fn func() error, opts ...Option) error {
	cfg := &config{
		initialInterval: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	attempts := 0
	interval := cfg.initialInterval
	maxInterval := 5 * cfg.initialInterval

	for {
		attempts++
		err := fn()
		if err == nil {
			return nil
		}

		if cfg.maxAttempts > 0 && attempts >= cfg.maxAttempts {
			return err
		}

		time.Sleep(interval)
		if cfg.backoff {
			interval *= 2
			if interval > maxInterval {
				interval = maxInterval
			}
		}
	}
}
