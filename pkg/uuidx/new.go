// Package uuidx generates time-ordered v7 UUIDs for session and trace
// identifiers.
package uuidx

import "github.com/google/uuid"

// New returns a freshly generated v7 UUID. It panics when the platform's
// entropy source fails.
func New() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}

// NewString returns a freshly generated v7 UUID in canonical string form.
func NewString() string {
	return New().String()
}
