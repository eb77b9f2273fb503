// Package ai wraps the external text-generation service.
package ai

import (
	"context"
	"errors"
)

var (
	// ErrOverloaded means the service answered 503 and the call may be retried.
	ErrOverloaded = errors.New("ai: model overloaded")
	// ErrRateLimited means the service answered 429 and the call may be retried.
	ErrRateLimited = errors.New("ai: rate limited")
	// ErrTimeout means the call ran past its deadline.
	ErrTimeout = errors.New("ai: timeout")
	// ErrEmptyResponse means the service answered without any text.
	ErrEmptyResponse = errors.New("ai: empty response")
	// ErrUnavailable means no generator is configured.
	ErrUnavailable = errors.New("ai: unavailable")
)

// Generator turns a prompt into generated text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Disabled is used when no API key is configured; every call fails with
// ErrUnavailable so callers take their deterministic fallbacks.
type Disabled struct{}

// Generate always returns ErrUnavailable.
func (Disabled) Generate(context.Context, string) (string, error) {
	return "", ErrUnavailable
}

// Retryable reports whether err is worth another attempt.
func Retryable(err error) bool {
	return errors.Is(err, ErrOverloaded) || errors.Is(err, ErrRateLimited)
}
