package messages

// Concat reassembles a finite stream of events into a single assistant
// message. It is a pure function: no network access, no mutation of its
// input.
//
// Adjacent text fragments merge into one item while the run is open; a
// fragment that carries a signature closes the run, so the next fragment of
// the same kind starts a new item. Thinking fragments merge by the same
// rule. Partial tool calls never survive reassembly because the adapter
// already superseded each of them with a materialized tool call. Usage is
// merged field by field across events (later populated fields win) and the
// finish reason is taken from the last event that reports one.
func Concat(events []UniEvent) UniMessage {
	var items []ContentItem
	var usage UsageMetadata
	var finish FinishReason

	for _, event := range events {
		for _, item := range event.ContentItems {
			switch it := item.(type) {
			case TextItem:
				if len(items) > 0 {
					if last, ok := items[len(items)-1].(TextItem); ok && last.Signature == "" {
						last.Text += it.Text
						if it.Signature != "" {
							last.Signature = it.Signature
						}
						items[len(items)-1] = last
						continue
					}
				}
				if it.Text != "" || it.Signature != "" {
					items = append(items, it)
				}
			case ThinkingItem:
				if len(items) > 0 {
					if last, ok := items[len(items)-1].(ThinkingItem); ok && last.Signature == "" {
						last.Thinking += it.Thinking
						if it.Signature != "" {
							last.Signature = it.Signature
						}
						items[len(items)-1] = last
						continue
					}
				}
				if it.Thinking != "" || it.Signature != "" {
					items = append(items, it)
				}
			case PartialToolCallItem:
				// superseded by the materialized tool call
			default:
				items = append(items, item)
			}
		}
		if event.Usage != nil {
			usage = usage.Merge(*event.Usage)
		}
		if event.FinishReason != "" {
			finish = event.FinishReason
		}
	}

	msg := UniMessage{
		Role:         RoleAssistant,
		ContentItems: items,
		FinishReason: finish,
	}
	if !usage.IsZero() {
		msg.Usage = &usage
	}
	return msg
}

// EventsOf converts a reassembled message back into a single delta event
// followed by a stop event. It is the inverse direction of Concat for
// consumers that want to replay a stored turn through an event pipeline.
func EventsOf(msg UniMessage) []UniEvent {
	delta := UniEvent{
		Role:         msg.Role,
		EventType:    EventDelta,
		ContentItems: msg.ContentItems,
		Usage:        msg.Usage,
	}
	stop := Stop(msg.FinishReason)
	if msg.FinishReason == "" {
		stop = Stop(FinishUnknown)
	}
	return []UniEvent{delta, stop}
}
