// Package provider defines the adapter contract between the canonical
// message protocol and each vendor's streaming API, together with the
// canonical request configuration and the shared error taxonomy.
//
// One adapter exists per vendor family, each in its own subpackage:
//
//   - anthropic: thinking blocks, signatures and explicit cache markers
//   - openai: the Responses API with encrypted reasoning state
//   - glm: chat-completions-compatible with a binary thinking switch
//   - qwen: chat-completions-compatible relays, including text-framed
//     tool calls and relay usage quirks
//   - gemini: parts-based content with thought signatures
//
// Adapters fail fast on configuration the vendor cannot honor and surface
// unrecognized vendor payloads as errors rather than dropping them.
package provider
