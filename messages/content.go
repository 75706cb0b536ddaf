package messages

import (
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

var jsonNull = []byte(`null`)

// ContentItem is the interface implemented by every canonical content variant.
// The set of implementations is closed: Text, Thinking, ImageURL, ToolCall,
// PartialToolCall and ToolResult.
type ContentItem interface {
	contentItem()
}

// Text creates a text content item without a signature.
func Text(text string) TextItem {
	return TextItem{Text: text}
}

// TextItem is plain input or output text. Signature, when present, is an
// opaque provenance token some vendors attach for continuity across turns.
type TextItem struct {
	Text      string   `json:"text"`
	Signature string   `json:"signature,omitempty"`
	_         struct{} // require keyed usage
}

func (TextItem) contentItem() {}

var textJSON = []byte(`{"type":"text"}`)

// MarshalJSON implements json.Marshaler for TextItem.
func (t TextItem) MarshalJSON() ([]byte, error) {
	result, err := sjson.SetBytes(textJSON, "text", t.Text)
	if err != nil {
		return nil, err
	}
	if t.Signature != "" {
		result, err = sjson.SetBytes(result, "signature", t.Signature)
	}
	return result, err
}

// UnmarshalJSON implements json.Unmarshaler for TextItem.
func (t *TextItem) UnmarshalJSON(input []byte) error {
	text := gjson.GetBytes(input, "text")
	if !text.Exists() {
		return errors.New("missing required field 'text'")
	}
	t.Text = text.String()
	t.Signature = gjson.GetBytes(input, "signature").String()
	return nil
}

// Thinking creates a thinking content item without a signature.
func Thinking(thinking string) ThinkingItem {
	return ThinkingItem{Thinking: thinking}
}

// ThinkingItem is a reasoning fragment. It is never final answer text; some
// vendors require its Signature to replay reasoning state in a later turn.
type ThinkingItem struct {
	Thinking  string   `json:"thinking"`
	Signature string   `json:"signature,omitempty"`
	_         struct{} // require keyed usage
}

func (ThinkingItem) contentItem() {}

var thinkingJSON = []byte(`{"type":"thinking"}`)

// MarshalJSON implements json.Marshaler for ThinkingItem.
func (t ThinkingItem) MarshalJSON() ([]byte, error) {
	result, err := sjson.SetBytes(thinkingJSON, "thinking", t.Thinking)
	if err != nil {
		return nil, err
	}
	if t.Signature != "" {
		result, err = sjson.SetBytes(result, "signature", t.Signature)
	}
	return result, err
}

// UnmarshalJSON implements json.Unmarshaler for ThinkingItem.
func (t *ThinkingItem) UnmarshalJSON(input []byte) error {
	thinking := gjson.GetBytes(input, "thinking")
	if !thinking.Exists() {
		return errors.New("missing required field 'thinking'")
	}
	t.Thinking = thinking.String()
	t.Signature = gjson.GetBytes(input, "signature").String()
	return nil
}

// Image creates an image content item from a URL or data: URI.
func Image(url string) ImageURLItem {
	return ImageURLItem{URL: url}
}

// ImageURLItem carries either an external image URL or a data: URI with
// inline base64 bytes.
type ImageURLItem struct {
	URL string   `json:"image_url"`
	_   struct{} // require keyed usage
}

func (ImageURLItem) contentItem() {}

var imageJSON = []byte(`{"type":"image_url"}`)

// MarshalJSON implements json.Marshaler for ImageURLItem.
func (i ImageURLItem) MarshalJSON() ([]byte, error) {
	return sjson.SetBytes(imageJSON, "image_url", i.URL)
}

// UnmarshalJSON implements json.Unmarshaler for ImageURLItem.
func (i *ImageURLItem) UnmarshalJSON(input []byte) error {
	uri := gjson.GetBytes(input, "image_url")
	if !uri.Exists() {
		return errors.New("missing required field 'image_url'")
	}
	i.URL = uri.String()
	return nil
}

// ToolCallItem is a fully materialized function invocation request: its
// arguments have been accumulated and parsed.
type ToolCallItem struct {
	Name       string         `json:"name"`
	Arguments  map[string]any `json:"arguments"`
	ToolCallID string         `json:"tool_call_id"`
	Signature  string         `json:"signature,omitempty"`
	_          struct{}       // require keyed usage
}

func (ToolCallItem) contentItem() {}

var toolCallJSON = []byte(`{"type":"tool_call"}`)

// MarshalJSON implements json.Marshaler for ToolCallItem.
func (t ToolCallItem) MarshalJSON() ([]byte, error) {
	result, err := sjson.SetBytes(toolCallJSON, "name", t.Name)
	if err != nil {
		return nil, err
	}
	args, err := json.Marshal(t.Arguments)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tool call arguments: %w", err)
	}
	result, err = sjson.SetRawBytes(result, "arguments", args)
	if err != nil {
		return nil, err
	}
	result, err = sjson.SetBytes(result, "tool_call_id", t.ToolCallID)
	if err != nil {
		return nil, err
	}
	if t.Signature != "" {
		result, err = sjson.SetBytes(result, "signature", t.Signature)
	}
	return result, err
}

// UnmarshalJSON implements json.Unmarshaler for ToolCallItem.
func (t *ToolCallItem) UnmarshalJSON(input []byte) error {
	name := gjson.GetBytes(input, "name")
	if !name.Exists() {
		return errors.New("missing required field 'name'")
	}
	t.Name = name.String()

	args := gjson.GetBytes(input, "arguments")
	if !args.Exists() {
		return errors.New("missing required field 'arguments'")
	}
	if err := json.Unmarshal([]byte(args.Raw), &t.Arguments); err != nil {
		return fmt.Errorf("invalid tool call arguments: %w", err)
	}

	id := gjson.GetBytes(input, "tool_call_id")
	if !id.Exists() {
		return errors.New("missing required field 'tool_call_id'")
	}
	t.ToolCallID = id.String()
	t.Signature = gjson.GetBytes(input, "signature").String()
	return nil
}

// PartialToolCallItem is an in-flight tool call whose Arguments is a fragment
// of a JSON text stream, not parseable in isolation. Name and ToolCallID may
// be empty on fragments that only continue Arguments.
type PartialToolCallItem struct {
	Name       string   `json:"name"`
	Arguments  string   `json:"arguments"`
	ToolCallID string   `json:"tool_call_id"`
	Signature  string   `json:"signature,omitempty"`
	_          struct{} // require keyed usage
}

func (PartialToolCallItem) contentItem() {}

var partialToolCallJSON = []byte(`{"type":"partial_tool_call"}`)

// MarshalJSON implements json.Marshaler for PartialToolCallItem.
func (t PartialToolCallItem) MarshalJSON() ([]byte, error) {
	result, err := sjson.SetBytes(partialToolCallJSON, "name", t.Name)
	if err != nil {
		return nil, err
	}
	result, err = sjson.SetBytes(result, "arguments", t.Arguments)
	if err != nil {
		return nil, err
	}
	result, err = sjson.SetBytes(result, "tool_call_id", t.ToolCallID)
	if err != nil {
		return nil, err
	}
	if t.Signature != "" {
		result, err = sjson.SetBytes(result, "signature", t.Signature)
	}
	return result, err
}

// UnmarshalJSON implements json.Unmarshaler for PartialToolCallItem.
func (t *PartialToolCallItem) UnmarshalJSON(input []byte) error {
	args := gjson.GetBytes(input, "arguments")
	if !args.Exists() {
		return errors.New("missing required field 'arguments'")
	}
	t.Name = gjson.GetBytes(input, "name").String()
	t.Arguments = args.String()
	t.ToolCallID = gjson.GetBytes(input, "tool_call_id").String()
	t.Signature = gjson.GetBytes(input, "signature").String()
	return nil
}

// ToolResultText creates a tool result item carrying a plain string result.
func ToolResultText(toolCallID, result string) ToolResultItem {
	return ToolResultItem{
		ToolCallID: toolCallID,
		Result:     ToolResultContent{Content: result},
	}
}

// ToolResultContent represents a tool result that is either a simple string
// or a sequence of text and image parts. It serializes to a JSON string or a
// JSON array accordingly.
type ToolResultContent struct {
	Content string        // Raw string result, used when the result is just text
	Parts   []ContentItem // Text and image parts for multimodal results
	_       struct{}      // require keyed usage
}

// MarshalJSON implements json.Marshaler for ToolResultContent.
func (c ToolResultContent) MarshalJSON() ([]byte, error) {
	if strings.TrimSpace(c.Content) != "" {
		return json.Marshal(c.Content)
	}
	if c.Parts == nil {
		return jsonNull, nil
	}
	return json.Marshal(c.Parts)
}

// UnmarshalJSON implements json.Unmarshaler for ToolResultContent. Only text
// and image_url parts are valid inside a tool result.
func (c *ToolResultContent) UnmarshalJSON(input []byte) error {
	if !gjson.ValidBytes(input) {
		return fmt.Errorf("invalid json: %s", input)
	}
	jv := gjson.ParseBytes(input)
	if jv.IsArray() {
		aj := jv.Array()
		parts := make([]ContentItem, len(aj))
		for idx, ajv := range aj {
			tpe := ajv.Get("type").String()
			switch tpe {
			case "text":
				var part TextItem
				if err := part.UnmarshalJSON([]byte(ajv.Raw)); err != nil {
					return fmt.Errorf("invalid text part at %d: %w", idx, err)
				}
				parts[idx] = part
			case "image_url":
				var part ImageURLItem
				if err := part.UnmarshalJSON([]byte(ajv.Raw)); err != nil {
					return fmt.Errorf("invalid image part at %d: %w", idx, err)
				}
				parts[idx] = part
			default:
				return fmt.Errorf("tool result part at %d has an unknown type %q", idx, tpe)
			}
		}
		c.Parts = parts
		return nil
	}
	c.Content = jv.String()
	return nil
}

// ToolResultItem is the caller's answer to a prior tool call, correlated by
// ToolCallID.
type ToolResultItem struct {
	Result     ToolResultContent `json:"result"`
	ToolCallID string            `json:"tool_call_id"`
	_          struct{}          // require keyed usage
}

func (ToolResultItem) contentItem() {}

var toolResultJSON = []byte(`{"type":"tool_result"}`)

// MarshalJSON implements json.Marshaler for ToolResultItem.
func (t ToolResultItem) MarshalJSON() ([]byte, error) {
	rj, err := json.Marshal(t.Result)
	if err != nil {
		return nil, err
	}
	result, err := sjson.SetRawBytes(toolResultJSON, "result", rj)
	if err != nil {
		return nil, err
	}
	return sjson.SetBytes(result, "tool_call_id", t.ToolCallID)
}

// UnmarshalJSON implements json.Unmarshaler for ToolResultItem.
func (t *ToolResultItem) UnmarshalJSON(input []byte) error {
	result := gjson.GetBytes(input, "result")
	if !result.Exists() {
		return errors.New("missing required field 'result'")
	}
	if err := t.Result.UnmarshalJSON([]byte(result.Raw)); err != nil {
		return fmt.Errorf("invalid tool result: %w", err)
	}
	id := gjson.GetBytes(input, "tool_call_id")
	if !id.Exists() {
		return errors.New("missing required field 'tool_call_id'")
	}
	t.ToolCallID = id.String()
	return nil
}

// decodeContentItems decodes a JSON array of content items into their
// canonical variants. Unknown type tags are an error, never dropped.
func decodeContentItems(jv gjson.Result) ([]ContentItem, error) {
	if !jv.IsArray() {
		return nil, errors.New("content_items must be an array")
	}
	aj := jv.Array()
	if len(aj) == 0 {
		return nil, nil
	}
	items := make([]ContentItem, len(aj))
	for idx, ajv := range aj {
		tpe := ajv.Get("type").String()
		raw := []byte(ajv.Raw)
		switch tpe {
		case "text":
			var item TextItem
			if err := item.UnmarshalJSON(raw); err != nil {
				return nil, fmt.Errorf("invalid text item at %d: %w", idx, err)
			}
			items[idx] = item
		case "thinking":
			var item ThinkingItem
			if err := item.UnmarshalJSON(raw); err != nil {
				return nil, fmt.Errorf("invalid thinking item at %d: %w", idx, err)
			}
			items[idx] = item
		case "image_url":
			var item ImageURLItem
			if err := item.UnmarshalJSON(raw); err != nil {
				return nil, fmt.Errorf("invalid image item at %d: %w", idx, err)
			}
			items[idx] = item
		case "tool_call":
			var item ToolCallItem
			if err := item.UnmarshalJSON(raw); err != nil {
				return nil, fmt.Errorf("invalid tool call item at %d: %w", idx, err)
			}
			items[idx] = item
		case "partial_tool_call":
			var item PartialToolCallItem
			if err := item.UnmarshalJSON(raw); err != nil {
				return nil, fmt.Errorf("invalid partial tool call item at %d: %w", idx, err)
			}
			items[idx] = item
		case "tool_result":
			var item ToolResultItem
			if err := item.UnmarshalJSON(raw); err != nil {
				return nil, fmt.Errorf("invalid tool result item at %d: %w", idx, err)
			}
			items[idx] = item
		default:
			return nil, fmt.Errorf("content item at %d has an unknown type %q", idx, tpe)
		}
	}
	return items, nil
}
