package updates

import "fmt"

// NormalizationError is returned when a response cannot be turned into any
// file update at all.
type NormalizationError struct {
	Message string
	Cause   error
}

func (e *NormalizationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("normalization failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("normalization failed: %s", e.Message)
}

func (e *NormalizationError) Unwrap() error {
	return e.Cause
}

// parseFailure means the text is not a structured file update payload.
// It is expected and triggers the plain HTML fallback.
type parseFailure struct {
	reason string
	cause  error
}

func (e *parseFailure) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("not a file update payload: %s: %v", e.reason, e.cause)
	}
	return fmt.Sprintf("not a file update payload: %s", e.reason)
}

func (e *parseFailure) Unwrap() error {
	return e.cause
}
