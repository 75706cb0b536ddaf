package provider

import (
	"strings"

	json "github.com/goccy/go-json"

	"github.com/Prism-Shadow/AgentHub/messages"
)

// ToolCallAccumulator drives the canonical tool-call streaming protocol for
// one adapter invocation: an "open" fragment carries the call's name and id,
// "continue" fragments carry only argument text, and "close" parses the
// accumulated buffer into exactly one materialized tool call.
//
// A zero accumulator is ready to use. Accumulators are never shared across
// StreamingResponse invocations.
type ToolCallAccumulator struct {
	name   string
	id     string
	buffer strings.Builder
	open   bool
	_      struct{} // require keyed usage
}

// IsOpen reports whether a call is currently being accumulated.
func (a *ToolCallAccumulator) IsOpen() bool {
	return a.open
}

// Name returns the name of the call being accumulated.
func (a *ToolCallAccumulator) Name() string {
	return a.name
}

// Open starts accumulating a new call and returns the skeleton partial
// event announcing it. Callers must Close or Flush any previous call first.
func (a *ToolCallAccumulator) Open(name, id string) messages.PartialToolCallItem {
	a.name = name
	a.id = id
	a.buffer.Reset()
	a.open = true
	return messages.PartialToolCallItem{Name: name, ToolCallID: id}
}

// Continue appends an argument fragment and returns the fragment-only
// partial event. Name and id stay empty on continuation fragments.
func (a *ToolCallAccumulator) Continue(fragment string) messages.PartialToolCallItem {
	a.buffer.WriteString(fragment)
	return messages.PartialToolCallItem{Arguments: fragment}
}

// Close parses the accumulated argument buffer and returns the materialized
// call. An empty buffer materializes as an empty argument map; a buffer that
// is not valid JSON is a malformed-payload error naming the tool.
func (a *ToolCallAccumulator) Close() (messages.ToolCallItem, error) {
	defer func() {
		a.open = false
		a.name = ""
		a.id = ""
		a.buffer.Reset()
	}()

	args := map[string]any{}
	if raw := strings.TrimSpace(a.buffer.String()); raw != "" {
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			return messages.ToolCallItem{}, Malformedf(
				"tool call %s (%s): arguments are not valid JSON: %v", a.name, a.id, err)
		}
	}
	return messages.ToolCallItem{Name: a.name, Arguments: args, ToolCallID: a.id}, nil
}

// Flush closes the pending call when the vendor signals a boundary
// implicitly, for example by starting the next call without closing the
// previous one. It reports whether there was anything to flush.
func (a *ToolCallAccumulator) Flush() (messages.ToolCallItem, bool, error) {
	if !a.open {
		return messages.ToolCallItem{}, false, nil
	}
	call, err := a.Close()
	return call, true, err
}
