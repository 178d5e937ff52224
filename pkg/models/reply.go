package models

// Reply is the provider-agnostic extraction of one completion response:
// whatever the concrete provider wire format, the relay reduces it to this
// record before anything else sees it.
type Reply struct {
	Text         string      `json:"text"`
	ToolCalls    []ToolCall  `json:"tool_calls,omitempty"`
	FinishReason string      `json:"finish_reason"`
	Usage        *TokenUsage `json:"usage,omitempty"`
}
