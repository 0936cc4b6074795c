package generation

import "fmt"

// GenerationError represents a failed call to the generative API.
// It is not retried.
type GenerationError struct {
	Message string
	Model   string
	Cause   error
}

func (e *GenerationError) Error() string {
	msg := e.Message
	if e.Model != "" {
		msg = fmt.Sprintf("%s (model %s)", e.Message, e.Model)
	}
	if e.Cause != nil {
		return fmt.Sprintf("generation failed: %s: %v", msg, e.Cause)
	}
	return fmt.Sprintf("generation failed: %s", msg)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}
