package messages

import (
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Role identifies who authored a message.
type Role string

const (
	// RoleUser marks caller-authored turns, including tool results.
	RoleUser Role = "user"
	// RoleAssistant marks model-authored turns.
	RoleAssistant Role = "assistant"
)

// Valid reports whether the role is one of the canonical roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// EventType classifies a streaming event's position in the response.
type EventType string

const (
	// EventStart is emitted exactly once, before any content.
	EventStart EventType = "start"
	// EventDelta carries an incremental content payload.
	EventDelta EventType = "delta"
	// EventStop is emitted exactly once, after all content.
	EventStop EventType = "stop"
	// EventUnused marks a vendor chunk that is recognized but carries no
	// canonical payload. Consumers skip it; it is never an error.
	EventUnused EventType = "unused"
)

// FinishReason explains why a response stream ended.
type FinishReason string

const (
	// FinishStop means the model completed naturally, including by asking
	// for tool calls.
	FinishStop FinishReason = "stop"
	// FinishLength means the output was cut off by a token limit.
	FinishLength FinishReason = "length"
	// FinishUnknown covers every vendor finish reason with no canonical
	// equivalent. It is deliberately never mapped to FinishStop.
	FinishUnknown FinishReason = "unknown"
)

// UsageMetadata reports token accounting for a response. Every field is
// optional because vendors report usage at different points in the stream,
// or not at all.
type UsageMetadata struct {
	PromptTokens   *int64   `json:"prompt_tokens,omitempty"`
	ThoughtsTokens *int64   `json:"thoughts_tokens,omitempty"`
	ResponseTokens *int64   `json:"response_tokens,omitempty"`
	CachedTokens   *int64   `json:"cached_tokens,omitempty"`
	_              struct{} // require keyed usage
}

// IsZero reports whether no usage field is populated.
func (u UsageMetadata) IsZero() bool {
	return u.PromptTokens == nil && u.ThoughtsTokens == nil &&
		u.ResponseTokens == nil && u.CachedTokens == nil
}

// Merge overlays other onto u field by field. A populated field in other
// wins; nil fields in other leave u's value alone, so disjoint reports from
// different events accumulate instead of clobbering each other.
func (u UsageMetadata) Merge(other UsageMetadata) UsageMetadata {
	if other.PromptTokens != nil {
		u.PromptTokens = other.PromptTokens
	}
	if other.ThoughtsTokens != nil {
		u.ThoughtsTokens = other.ThoughtsTokens
	}
	if other.ResponseTokens != nil {
		u.ResponseTokens = other.ResponseTokens
	}
	if other.CachedTokens != nil {
		u.CachedTokens = other.CachedTokens
	}
	return u
}

// UniMessage is one persisted conversational turn in canonical form.
// ContentItems is ordered and the order is the canonical read order. Usage
// and FinishReason are populated on reassembled assistant turns.
type UniMessage struct {
	Role         Role           `json:"role"`
	ContentItems []ContentItem  `json:"content_items"`
	Usage        *UsageMetadata `json:"usage_metadata,omitempty"`
	FinishReason FinishReason   `json:"finish_reason,omitempty"`
	_            struct{}       // require keyed usage
}

// User creates a user message from the given content items.
func User(items ...ContentItem) UniMessage {
	return UniMessage{Role: RoleUser, ContentItems: items}
}

// Assistant creates an assistant message from the given content items.
func Assistant(items ...ContentItem) UniMessage {
	return UniMessage{Role: RoleAssistant, ContentItems: items}
}

var messageJSON = []byte(`{}`)

// A nil item slice still marshals as an empty array so that every message
// and event, stop events included, round-trips through the wire shape.
func marshalContentItems(items []ContentItem) ([]byte, error) {
	if items == nil {
		return []byte(`[]`), nil
	}
	out, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal content items: %w", err)
	}
	return out, nil
}

// MarshalJSON implements json.Marshaler for UniMessage.
func (m UniMessage) MarshalJSON() ([]byte, error) {
	result, err := sjson.SetBytes(messageJSON, "role", string(m.Role))
	if err != nil {
		return nil, err
	}
	items, err := marshalContentItems(m.ContentItems)
	if err != nil {
		return nil, err
	}
	result, err = sjson.SetRawBytes(result, "content_items", items)
	if err != nil {
		return nil, err
	}
	if m.Usage != nil {
		usage, uerr := json.Marshal(m.Usage)
		if uerr != nil {
			return nil, uerr
		}
		result, err = sjson.SetRawBytes(result, "usage_metadata", usage)
		if err != nil {
			return nil, err
		}
	}
	if m.FinishReason != "" {
		result, err = sjson.SetBytes(result, "finish_reason", string(m.FinishReason))
	}
	return result, err
}

// UnmarshalJSON implements json.Unmarshaler for UniMessage.
func (m *UniMessage) UnmarshalJSON(input []byte) error {
	if !gjson.ValidBytes(input) {
		return fmt.Errorf("invalid json: %s", input)
	}
	role := Role(gjson.GetBytes(input, "role").String())
	if !role.Valid() {
		return fmt.Errorf("unknown message role %q", role)
	}
	m.Role = role
	items := gjson.GetBytes(input, "content_items")
	if !items.Exists() {
		return errors.New("missing required field 'content_items'")
	}
	decoded, err := decodeContentItems(items)
	if err != nil {
		return err
	}
	m.ContentItems = decoded
	if usage := gjson.GetBytes(input, "usage_metadata"); usage.Exists() {
		var u UsageMetadata
		if err := json.Unmarshal([]byte(usage.Raw), &u); err != nil {
			return fmt.Errorf("invalid usage metadata: %w", err)
		}
		m.Usage = &u
	} else {
		m.Usage = nil
	}
	m.FinishReason = FinishReason(gjson.GetBytes(input, "finish_reason").String())
	return nil
}

// UniEvent is one canonical streaming event. Every vendor chunk normalizes
// to exactly one UniEvent; adapters never drop chunks silently.
type UniEvent struct {
	Role         Role           `json:"role"`
	EventType    EventType      `json:"event_type"`
	ContentItems []ContentItem  `json:"content_items"`
	Usage        *UsageMetadata `json:"usage_metadata,omitempty"`
	FinishReason FinishReason   `json:"finish_reason,omitempty"`
	_            struct{}       // require keyed usage
}

// Start creates the stream-opening event.
func Start() UniEvent {
	return UniEvent{Role: RoleAssistant, EventType: EventStart}
}

// Delta creates a content-bearing event.
func Delta(items ...ContentItem) UniEvent {
	return UniEvent{Role: RoleAssistant, EventType: EventDelta, ContentItems: items}
}

// Stop creates the stream-closing event with a finish reason.
func Stop(reason FinishReason) UniEvent {
	return UniEvent{Role: RoleAssistant, EventType: EventStop, FinishReason: reason}
}

// Unused creates a no-payload event for a recognized but content-free
// vendor chunk.
func Unused() UniEvent {
	return UniEvent{Role: RoleAssistant, EventType: EventUnused}
}

var eventJSON = []byte(`{}`)

// MarshalJSON implements json.Marshaler for UniEvent.
func (e UniEvent) MarshalJSON() ([]byte, error) {
	result, err := sjson.SetBytes(eventJSON, "role", string(e.Role))
	if err != nil {
		return nil, err
	}
	result, err = sjson.SetBytes(result, "event_type", string(e.EventType))
	if err != nil {
		return nil, err
	}
	items, err := marshalContentItems(e.ContentItems)
	if err != nil {
		return nil, err
	}
	result, err = sjson.SetRawBytes(result, "content_items", items)
	if err != nil {
		return nil, err
	}
	if e.Usage != nil {
		usage, uerr := json.Marshal(e.Usage)
		if uerr != nil {
			return nil, uerr
		}
		result, err = sjson.SetRawBytes(result, "usage_metadata", usage)
		if err != nil {
			return nil, err
		}
	}
	if e.FinishReason != "" {
		result, err = sjson.SetBytes(result, "finish_reason", string(e.FinishReason))
	}
	return result, err
}

// UnmarshalJSON implements json.Unmarshaler for UniEvent.
func (e *UniEvent) UnmarshalJSON(input []byte) error {
	if !gjson.ValidBytes(input) {
		return fmt.Errorf("invalid json: %s", input)
	}
	role := Role(gjson.GetBytes(input, "role").String())
	if !role.Valid() {
		return fmt.Errorf("unknown event role %q", role)
	}
	e.Role = role
	tpe := EventType(gjson.GetBytes(input, "event_type").String())
	switch tpe {
	case EventStart, EventDelta, EventStop, EventUnused:
		e.EventType = tpe
	default:
		return fmt.Errorf("unknown event type %q", tpe)
	}
	if items := gjson.GetBytes(input, "content_items"); items.Exists() {
		decoded, err := decodeContentItems(items)
		if err != nil {
			return err
		}
		e.ContentItems = decoded
	} else {
		e.ContentItems = nil
	}
	if usage := gjson.GetBytes(input, "usage_metadata"); usage.Exists() {
		var u UsageMetadata
		if err := json.Unmarshal([]byte(usage.Raw), &u); err != nil {
			return fmt.Errorf("invalid usage metadata: %w", err)
		}
		e.Usage = &u
	} else {
		e.Usage = nil
	}
	e.FinishReason = FinishReason(gjson.GetBytes(input, "finish_reason").String())
	return nil
}
