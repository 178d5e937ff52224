package models

// API request/response types for the HTTP layer.

// ToolParam describes one parameter of a caller-supplied tool.
type ToolParam struct {
	Type        string `json:"type"` // string, integer, number, boolean
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

// ToolSpec is a domain tool a client offers for one chat turn. Only the chat
// path forwards these to the provider; compaction requests never carry them.
type ToolSpec struct {
	Name        string                `json:"name"`
	Description string                `json:"description,omitempty"`
	Parameters  map[string]*ToolParam `json:"parameters,omitempty"`
}

// ToolResponse carries the result of a tool call the client executed on the
// device, correlated back to the assistant's request by ToolCallID.
type ToolResponse struct {
	ToolCallID string `json:"tool_call_id"`
	Content    string `json:"content"`
}

// ChatRequest is the body of POST /v1/chat/send.
type ChatRequest struct {
	Conversation string        `json:"conversation"`
	Device       string        `json:"device"`
	Message      string        `json:"message"`
	ToolResponse *ToolResponse `json:"tool_response,omitempty"`
	Tools        []ToolSpec    `json:"tools,omitempty"`
}

// ChatReply is the assistant's answer handed back to the client.
type ChatReply struct {
	Content      string     `json:"content"`
	ToolCalls    []ToolCall `json:"tool_calls"`
	FinishReason string     `json:"finish_reason"`
}

// CreateConversationRequest is the body of POST /v1/create.
type CreateConversationRequest struct {
	Name   string `json:"name"`
	Prompt string `json:"prompt"`
	AI     string `json:"ai"`
	Device string `json:"device"`
}
