package provider

import (
	"errors"
	"fmt"
)

// Error taxonomy. Transport errors from vendor SDKs are deliberately not
// wrapped here: they propagate unmodified so callers can apply their own
// retry policy.
var (
	// ErrConfig marks configuration-precondition failures, raised before
	// any network I/O and fatal to that call.
	ErrConfig = errors.New("invalid configuration")
	// ErrMalformedPayload marks vendor chunk shapes the adapter does not
	// recognize, or argument buffers that fail to parse at close time.
	// Always fatal to the in-flight stream.
	ErrMalformedPayload = errors.New("malformed vendor payload")
	// ErrToolCallIntegrity marks a tool result referencing a tool call id
	// with no corresponding prior tool call.
	ErrToolCallIntegrity = errors.New("tool call integrity violation")
)

// Configf builds a configuration-precondition error. The message must name
// the offending vendor and feature combination so callers can pick another
// model instead of guessing.
func Configf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfig, fmt.Sprintf(format, args...))
}

// Malformedf builds a malformed-payload error.
func Malformedf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedPayload, fmt.Sprintf(format, args...))
}

// Integrityf builds a tool-call integrity error.
func Integrityf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrToolCallIntegrity, fmt.Sprintf(format, args...))
}
