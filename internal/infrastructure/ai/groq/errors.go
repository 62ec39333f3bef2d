package groq

import (
	"fmt"

	"github.com/deliveria/api/internal/ports/outbound"
)

// TransportError covers network failures and non-2xx responses.
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("groq transport failure (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("groq transport failure: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// EnvelopeError means the API answered 2xx but the completion envelope was unusable.
type EnvelopeError struct {
	Err error
}

func (e *EnvelopeError) Error() string {
	return fmt.Sprintf("groq envelope failure: %v", e.Err)
}

func (e *EnvelopeError) Unwrap() error { return e.Err }

// Is lets callers match envelope failures without importing this package.
func (e *EnvelopeError) Is(target error) bool {
	return target == outbound.ErrMalformedEnvelope
}
