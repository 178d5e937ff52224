package service

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/mnemon/mnemon/pkg/models"
)

const toolContentLimit = 100

// RenderTranscript flattens a message run into plain text for summarization.
// Tool payloads are reduced to shapes or short excerpts so the transcript
// stays bounded no matter how large the tool results were.
func RenderTranscript(msgs []models.Message) string {
	var b strings.Builder
	for i, msg := range msgs {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("[")
		b.WriteString(msg.Role)
		b.WriteString("] ")
		switch {
		case msg.Role == models.RoleAssistant && len(msg.ToolCalls) > 0:
			if msg.Content != "" {
				b.WriteString(msg.Content)
				b.WriteByte(' ')
			}
			parts := make([]string, 0, len(msg.ToolCalls))
			for _, tc := range msg.ToolCalls {
				parts = append(parts, renderToolCall(tc))
			}
			b.WriteString("invokes ")
			b.WriteString(strings.Join(parts, ", "))
		case msg.Role == models.RoleTool:
			b.WriteString(summarizeToolContent(msg.Content))
		default:
			b.WriteString(msg.Content)
		}
	}
	return b.String()
}

// renderToolCall gives a compact call signature like search(query=weather).
func renderToolCall(tc models.ToolCall) string {
	args := map[string]any{}
	if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil || len(args) == 0 {
		return tc.Function.Name + "()"
	}
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, args[k]))
	}
	return fmt.Sprintf("%s(%s)", tc.Function.Name, strings.Join(parts, ", "))
}

// summarizeToolContent reduces a tool result to its shape. JSON objects
// collapse to a key:type mapping; anything else is truncated.
func summarizeToolContent(content string) string {
	trimmed := strings.TrimSpace(content)
	var obj map[string]any
	if err := json.Unmarshal([]byte(trimmed), &obj); err == nil {
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+":"+jsonTypeName(obj[k]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	if runes := []rune(trimmed); len(runes) > toolContentLimit {
		return string(runes[:toolContentLimit]) + "..."
	}
	return trimmed
}

func jsonTypeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return "unknown"
	}
}

// EstimateTokens counts cl100k_base tokens, falling back to a character
// heuristic if the encoding tables are unavailable.
func EstimateTokens(text string) int {
	tkt, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return len(text) / 4
	}
	return len(tkt.Encode(text, nil, nil))
}
