package tracer

import (
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"

	"github.com/Prism-Shadow/AgentHub/messages"
)

const rule = "================================================================================"

// formatHistory renders the conversation the way a person reads it. Partial
// tool calls never appear, only their materialized form does.
func formatHistory(history []messages.UniMessage, cfgView []byte, now time.Time) (string, error) {
	var b strings.Builder
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Conversation History - %s\n", now.Format("2006-01-02 15:04:05"))
	b.WriteString(rule + "\n\n")

	b.WriteString("Configuration:\n")
	gjson.ParseBytes(cfgView).ForEach(func(key, value gjson.Result) bool {
		if key.String() == "trace_id" {
			return true
		}
		fmt.Fprintf(&b, "  %s: %s\n", key.String(), value.String())
		return true
	})
	b.WriteString("\n")

	for i, msg := range history {
		fmt.Fprintf(&b, "[%d] %s:\n", i+1, strings.ToUpper(string(msg.Role)))
		b.WriteString(strings.Repeat("-", len(rule)) + "\n")

		for _, item := range msg.ContentItems {
			if err := formatItem(&b, item); err != nil {
				return "", err
			}
		}

		if msg.Usage != nil && !msg.Usage.IsZero() {
			b.WriteString("\nUsage Metadata:\n")
			formatTokens(&b, "Prompt Tokens", msg.Usage.PromptTokens)
			formatTokens(&b, "Thoughts Tokens", msg.Usage.ThoughtsTokens)
			formatTokens(&b, "Response Tokens", msg.Usage.ResponseTokens)
			formatTokens(&b, "Cached Tokens", msg.Usage.CachedTokens)
		}
		if msg.FinishReason != "" {
			fmt.Fprintf(&b, "\nFinish Reason: %s\n", msg.FinishReason)
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}

func formatItem(b *strings.Builder, item messages.ContentItem) error {
	switch it := item.(type) {
	case messages.TextItem:
		fmt.Fprintf(b, "Text: %s\n", it.Text)
	case messages.ThinkingItem:
		fmt.Fprintf(b, "Thinking: %s\n", it.Thinking)
	case messages.ImageURLItem:
		fmt.Fprintf(b, "Image URL: %s\n", it.URL)
	case messages.ToolCallItem:
		args, err := json.MarshalIndent(it.Arguments, "  ", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintf(b, "Tool Call: %s\n", it.Name)
		fmt.Fprintf(b, "  Arguments: %s\n", args)
		fmt.Fprintf(b, "  Tool Call ID: %s\n", it.ToolCallID)
	case messages.PartialToolCallItem:
		// transcripts only show complete tool calls
	case messages.ToolResultItem:
		fmt.Fprintf(b, "Tool Result (ID: %s): %s\n", it.ToolCallID, it.Result.Content)
		n := 0
		for _, part := range it.Result.Parts {
			switch p := part.(type) {
			case messages.TextItem:
				fmt.Fprintf(b, "  Text: %s\n", p.Text)
			case messages.ImageURLItem:
				n++
				fmt.Fprintf(b, "  Image %d: %s\n", n, p.URL)
			}
		}
	}
	return nil
}

func formatTokens(b *strings.Builder, label string, count *int64) {
	if count == nil {
		return
	}
	fmt.Fprintf(b, "  %s: %d\n", label, *count)
}
