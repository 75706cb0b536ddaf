// Package messages defines the canonical message and event protocol spoken
// by every provider adapter. It normalizes heterogeneous vendor streaming
// payloads to one shape so the rest of the system never branches on which
// model produced a response.
//
// Design decisions:
//   - Closed union: ContentItem has a fixed set of implementations (text,
//     thinking, image, tool call, partial tool call, tool result) guarded by
//     an unexported marker method
//   - Lossless: every recognized vendor chunk maps to exactly one UniEvent;
//     unrecognized payloads surface as errors instead of being dropped
//   - JSON interop: hand-written marshalers keep the wire shape stable and
//     reject unknown type tags on the way in
//   - Memory efficiency: struct{} padding enforces keyed initialization
//
// Key concepts:
//   - UniMessage: one persisted conversational turn
//   - UniEvent: one streaming increment, classified start/delta/stop/unused
//   - Concat: pure reassembly of an event stream into a UniMessage
//
// Example usage:
//
//	msg := messages.User(messages.Text("What is the weather in Paris?"))
//
//	reply := messages.Concat(events)
//	for _, item := range reply.ContentItems {
//	    if text, ok := item.(messages.TextItem); ok {
//	        fmt.Println(text.Text)
//	    }
//	}
package messages
