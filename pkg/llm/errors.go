package llm

import (
	"errors"
	"fmt"
)

// ErrGeneration marks transport failures and non-success responses from the
// completion endpoint. Checked with errors.Is at the boundary.
var ErrGeneration = errors.New("generation failed")

// MalformedResponseError is a structurally unexpected provider response,
// kept distinct from transport failures. Raw carries the payload shape for
// diagnostics; it is logged, never shown to end users.
type MalformedResponseError struct {
	Raw string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed provider response: %s", e.Raw)
}
