package provider

import (
	"context"
	"iter"

	"github.com/Prism-Shadow/AgentHub/messages"
)

// Provider is the contract every vendor adapter implements. All
// vendor-specific event-shape knowledge lives behind this interface; callers
// only ever see canonical types.
//
// StreamingResponse is stateless across invocations: each call owns its own
// tool-call accumulator, so one Provider value is safely shared across
// concurrent, independent conversations. The returned sequence is lazy,
// finite and not restartable; breaking out of the range early releases the
// underlying vendor connection.
type Provider interface {
	// Model identifies the model this adapter drives, for logs and traces.
	Model() string

	// StreamingResponse sends the conversation to the vendor and yields
	// canonical events until the vendor stream ends. Exactly one stop
	// event terminates a successful stream; errors end the sequence
	// immediately.
	StreamingResponse(ctx context.Context, msgs []messages.UniMessage, cfg Config) iter.Seq2[messages.UniEvent, error]
}

// Fail returns a sequence that yields the given error once. Adapters use it
// to surface configuration-precondition failures through the same lazy
// sequence shape as a healthy stream.
func Fail(err error) iter.Seq2[messages.UniEvent, error] {
	return func(yield func(messages.UniEvent, error) bool) {
		yield(messages.UniEvent{}, err)
	}
}

// Collect drains a sequence into a slice of events, stopping at the first
// error. It exists for callers that want the whole turn at once instead of
// consuming increments.
func Collect(ctx context.Context, seq iter.Seq2[messages.UniEvent, error]) ([]messages.UniEvent, error) {
	var events []messages.UniEvent
	for event, err := range seq {
		if err != nil {
			return events, err
		}
		if err := ctx.Err(); err != nil {
			return events, err
		}
		events = append(events, event)
	}
	return events, nil
}
