package claude

import (
	"errors"
	"fmt"
)

var (
	// ErrAPIKeyMissing is returned before any I/O when the host has no key configured.
	ErrAPIKeyMissing = errors.New("claude api key not configured, add " + APIKeySetting + " in settings")
	// ErrMalformedResponse is returned when a 2xx body is valid JSON without content[0].text.
	ErrMalformedResponse = errors.New("malformed claude api response")
)

// APIError is a non-2xx reply from the completion endpoint.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("claude api error (%d): %s", e.StatusCode, e.Body)
}
