package ai

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Retrying wraps a Generator and retries overloaded and rate-limited calls
// with exponential backoff.
type Retrying struct {
	next      Generator
	attempts  int
	baseDelay time.Duration
	log       zerolog.Logger
	sleep     func(ctx context.Context, d time.Duration) error
}

// RetryOption configures Retrying.
type RetryOption func(*Retrying)

// WithAttempts sets the total number of attempts.
func WithAttempts(n int) RetryOption {
	return func(r *Retrying) {
		if n > 0 {
			r.attempts = n
		}
	}
}

// WithBaseDelay sets the delay before the second attempt. It doubles afterwards.
func WithBaseDelay(d time.Duration) RetryOption {
	return func(r *Retrying) { r.baseDelay = d }
}

// WithLogger logs each retried failure.
func WithLogger(log zerolog.Logger) RetryOption {
	return func(r *Retrying) { r.log = log }
}

// Retry returns next wrapped with the default policy of 3 attempts starting at 1s.
func Retry(next Generator, opts ...RetryOption) *Retrying {
	r := &Retrying{
		next:      next,
		attempts:  3,
		baseDelay: time.Second,
		log:       zerolog.Nop(),
		sleep:     sleepContext,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Generate calls the wrapped generator until it succeeds, fails with a
// non-retryable error, or runs out of attempts.
func (r *Retrying) Generate(ctx context.Context, prompt string) (string, error) {
	delay := r.baseDelay
	var err error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		var text string
		text, err = r.next.Generate(ctx, prompt)
		if err == nil {
			return text, nil
		}
		if !Retryable(err) || attempt == r.attempts {
			return "", err
		}

		r.log.Warn().Err(err).Int("attempt", attempt).Dur("delay", delay).Msg("AI call failed, retrying")
		if serr := r.sleep(ctx, delay); serr != nil {
			return "", err
		}
		delay *= 2
	}
	return "", err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
