// Package anthropic adapts Anthropic's streaming messages API to the
// canonical protocol: thinking blocks with signatures, tool use blocks with
// incrementally streamed JSON input, and explicit prompt cache markers.
package anthropic
