// Package agenthub normalizes streaming LLM APIs behind one canonical
// message and event protocol, so applications can switch vendors without
// rewriting their conversation handling.
//
// Design decisions:
//   - One canonical shape: every vendor stream is mapped onto
//     messages.UniEvent sequences, and every conversation onto
//     messages.UniMessage history. Vendor SDK types never leak out of the
//     provider packages.
//   - Lossless round trips: thinking signatures, tool call ids and usage
//     metadata survive the trip through canonical form and back, so any
//     vendor's output can be replayed to any vendor that can express it.
//   - Fail loudly: capability gaps (a vendor that cannot force multiple
//     tools, a relay that rejects images) surface as configuration errors
//     before any network I/O, never as silent truncation.
//   - Streams are lazy: providers expose iter.Seq2 sequences, nothing is
//     buffered unless the caller collects.
//
// Key concepts:
//   - provider.Provider: a routed vendor adapter. Created directly from a
//     provider package or through New, which dispatches on the model name.
//   - Session: a stateful conversation. AppendAndStream forwards events
//     while collecting them, and commits the turn to history only when the
//     stream finishes cleanly.
//   - tracer.Tracer: persistence for conversation snapshots, enabled per
//     request through Config.TraceID.
//
// Example usage:
//
//	session, err := agenthub.NewSession(ctx, "glm-4.7")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	cfg := provider.Config{SystemPrompt: stdx.Ptr("answer briefly")}
//	for event, err := range session.AppendAndStream(ctx, messages.User(messages.Text("hello")), cfg) {
//		if err != nil {
//			log.Fatal(err)
//		}
//		for _, item := range event.ContentItems {
//			if text, ok := item.(messages.TextItem); ok {
//				fmt.Print(text.Text)
//			}
//		}
//	}
package agenthub
