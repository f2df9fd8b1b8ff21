package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrNotConfigured is returned when no provider has an API key
var ErrNotConfigured = errors.New("no LLM provider configured")

// ErrEmptyCompletion is returned when a provider answers 2xx without text
var ErrEmptyCompletion = errors.New("provider returned an empty completion")

// ProviderError is a non-2xx answer from a provider
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: HTTP %d: %s", e.Provider, e.StatusCode, e.Message)
}

// Retryable reports whether another provider might succeed where this one failed
func (e *ProviderError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// ShouldFallback reports whether err warrants trying the secondary provider.
// Transport failures, 5xx and 429 qualify; client errors and caller
// cancellation do not.
func ShouldFallback(ctx context.Context, err error) bool {
	if err == nil || ctx.Err() != nil {
		return false
	}
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr.Retryable()
	}
	return !errors.Is(err, ErrEmptyCompletion)
}
