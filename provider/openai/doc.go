// Package openai adapts the OpenAI responses API to the canonical protocol.
// Reasoning state is carried as an encrypted item that the adapter folds
// into thinking signatures, so reasoning continuity survives stateless
// replay across turns.
package openai
