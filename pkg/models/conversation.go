package models

// Conversation is the per-conversation metadata record. The conversation id
// is the key of the metadata map, not a field of the record (the on-disk
// format mirrors that).
//
// Countdown always stays within [0, countdown period]; it is restored to the
// full period after every compaction attempt, whether the attempt produced a
// summary or was refused.
type Conversation struct {
	Name                  string `json:"name"`
	PromptRef             string `json:"prompt"`
	ProviderRef           string `json:"ai"`
	DeviceID              string `json:"device"`
	Countdown             int    `json:"interval"`
	Created               int64  `json:"created"`
	Updated               int64  `json:"updated"`
	MessageCount          int    `json:"message_count"`
	LastCompactionAttempt int64  `json:"last_compress_attempt"`
}
