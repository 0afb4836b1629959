package services

import "fmt"

// APIError is a failure reported by one of the backend services. Message is
// taken from the response body when the backend provided one, otherwise from
// the transport error.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Message)
	}
	return e.Message
}
