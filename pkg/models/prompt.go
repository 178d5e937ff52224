package models

// Prompt is a stored prompt text. The record named "common" is the shared
// prefix prepended to every type-specific prompt.
type Prompt struct {
	Text    string `json:"prompt"`
	Created int64  `json:"created,omitempty"`
	Updated int64  `json:"updated,omitempty"`
}
