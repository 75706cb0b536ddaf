// Package gemini adapts the Gemini API to the canonical protocol. Thought
// signatures travel as opaque bytes that the adapter folds into base64
// signature tokens, and function calls arrive whole, so the streaming
// partial-call protocol is synthesized rather than observed.
package gemini
