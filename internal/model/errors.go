package model

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrLedgerCorrupt signals that the persisted seen set could not be
// parsed. Callers must treat it as an empty set plus a warning, never
// as a fatal abort.
var ErrLedgerCorrupt = errors.New("ledger snapshot corrupt")

// ErrSchemaViolation signals that an extraction collaborator returned a
// payload that does not match the expected schema. Definitive: never retried.
var ErrSchemaViolation = errors.New("extraction payload violates schema")

// HTTPError wraps an HTTP status code so retry logic can inspect it.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// IsTransient classifies an error as worth retrying. Transient: network
// failures, per-call timeouts, 429, 5xx. Definitive: cancellation,
// schema violations, remaining 4xx.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) {
		return false
	}
	// A per-call deadline is a timeout, which the retry policy may
	// re-attempt; the caller aborts separately when the outer run
	// context is done.
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	if errors.Is(err, ErrSchemaViolation) || errors.Is(err, ErrLedgerCorrupt) {
		return false
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.StatusCode == 429 {
			return true
		}
		if httpErr.StatusCode >= 500 {
			return true
		}
		return false
	}

	// Non-HTTP errors (network, DNS, etc.) are assumed transient.
	return true
}
