// Package glm adapts GLM's chat-completions-compatible API to the canonical
// protocol. Reasoning arrives as a vendor extension field on the delta, and
// the thinking switch travels as a request-body patch because the standard
// chat-completions surface has no slot for either.
package glm
