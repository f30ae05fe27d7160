package llm

import (
	"errors"
	"fmt"
	"strings"
)

// QuotaError indicates the provider rejected a call for quota or rate
// reasons. Callers may retry with backoff.
type QuotaError struct {
	Err error
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("quota exceeded: %s", e.Err)
}

func (e *QuotaError) Unwrap() error {
	return e.Err
}

// IsQuota reports whether err is (or wraps) a QuotaError.
func IsQuota(err error) bool {
	var qe *QuotaError
	return errors.As(err, &qe)
}

// classify maps raw provider errors onto the local error taxonomy.
// The OpenAI-compatible client surfaces quota problems only through the
// error message, so this is a string match by necessity.
func classify(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"429", "quota", "rate limit", "rate_limit"} {
		if strings.Contains(msg, marker) {
			return &QuotaError{Err: err}
		}
	}
	return fmt.Errorf("llm call: %w", err)
}
