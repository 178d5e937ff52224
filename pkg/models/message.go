// Domain records for conversation history.
package models

// Message roles (OpenAI-compatible)
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// FunctionCall is the callable part of a tool call request.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // JSON string
}

// ToolCall is a tool invocation requested by an assistant message.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"` // "function"
	Function FunctionCall `json:"function"`
}

// TokenUsage reports provider token accounting for one completion.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens"`
}

// Message is one entry of a conversation tier. Messages are append-only:
// once written they are never mutated, only moved from the active tier into
// memory by compaction.
//
// Content may be empty for assistant messages that only carry tool calls.
// ToolCalls is set only for assistant messages; ToolCallID only for tool
// result messages; FinishReason and Usage only for assistant messages.
type Message struct {
	Role         string      `json:"role"`
	Content      string      `json:"content"`
	Timestamp    int64       `json:"timestamp"`
	ToolCalls    []ToolCall  `json:"tool_calls,omitempty"`
	ToolCallID   string      `json:"tool_call_id,omitempty"`
	FinishReason string      `json:"finish_reason,omitempty"`
	Usage        *TokenUsage `json:"usage,omitempty"`
}

// SummaryKindCompressed is the only summary kind currently produced.
const SummaryKindCompressed = "compressed"

// Summary is a compacted block of former active messages. Produced only by
// the compactor; immutable once written to the memory tier.
type Summary struct {
	Kind          string `json:"type"`
	Content       string `json:"content"`
	OriginalCount int    `json:"original_count"`
	Timestamp     int64  `json:"timestamp"`
}
