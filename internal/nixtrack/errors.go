package nixtrack

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnauthorized marks a 401 response: the session token is missing or no longer valid.
	ErrUnauthorized = errors.New("session invalid")
	// ErrNetwork marks transport failures, including the request timeout.
	ErrNetwork = errors.New("network error")
	// ErrEnvelope marks a 2xx response whose envelope reports success=false.
	ErrEnvelope = errors.New("api reported failure")
)

// APIError is returned for non-2xx responses and failed envelopes.
type APIError struct {
	StatusCode int
	Path       string
	// Message is the envelope's message field, verbatim. May be empty.
	Message string
	// Errors holds per-field validation messages when the API sends them.
	Errors map[string][]string

	envelope bool
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api %s returned status %d: %s", e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api %s returned status %d", e.Path, e.StatusCode)
}

func (e *APIError) Unwrap() error {
	switch {
	case e.envelope:
		return ErrEnvelope
	case e.StatusCode == 401:
		return ErrUnauthorized
	}
	return nil
}

// ErrorMessage extracts the user-facing message from err: the API's
// envelope message when present, otherwise fallback.
func ErrorMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if msg := strings.TrimSpace(apiErr.Message); msg != "" {
			return msg
		}
	}
	return fallback
}
