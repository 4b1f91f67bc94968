package retry

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
)

const (
	defaultAttempts = 3
	defaultMaxDelay = 2 * time.Second
	defaultDelay    = 200 * time.Millisecond
)

type RetryConfig struct {
	Attempts uint          `env:"ATTEMPTS"`
	Delay    time.Duration `env:"DELAY"`
	MaxDelay time.Duration `env:"MAX_DELAY"`
}

// ToRetryOptions builds retry-go options bound to ctx.
// Errors for which retryable returns false stop the loop immediately.
func (rc *RetryConfig) ToRetryOptions(ctx context.Context, retryable func(error) bool) []retry.Option {
	opts := []retry.Option{
		retry.Context(ctx),
		retry.Attempts(rc.Attempts),
		retry.MaxDelay(rc.MaxDelay),
		retry.Delay(rc.Delay),
		retry.LastErrorOnly(true),
	}

	if retryable != nil {
		opts = append(opts, retry.RetryIf(retryable))
	}

	return opts
}

func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		Attempts: defaultAttempts,
		Delay:    defaultDelay,
		MaxDelay: defaultMaxDelay,
	}
}
