// Package qwen adapts OpenAI-compatible Qwen relays (vLLM, SiliconFlow,
// OpenRouter) to the canonical protocol. Relays disagree on how tool calls
// and reasoning come down the wire, so the adapter handles both the
// structured tool_calls deltas and the text-framed <tool_call> variant, and
// reads reasoning under either extension field name.
package qwen
