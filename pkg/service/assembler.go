package service

import (
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/mnemon/mnemon/pkg/history"
	"github.com/mnemon/mnemon/pkg/models"
)

// ContextAssembler builds the ordered message sequence sent upstream for a
// chat turn: a window of recent memory summaries, then the full active tier.
// Assembly never mutates the store, so repeated calls with no intervening
// appends produce identical output.
type ContextAssembler struct {
	store        *history.Store
	prompts      *PromptService
	memoryWindow int
}

func NewContextAssembler(store *history.Store, prompts *PromptService, memoryWindow int) *ContextAssembler {
	return &ContextAssembler{
		store:        store,
		prompts:      prompts,
		memoryWindow: memoryWindow,
	}
}

// Build returns the memory window followed by the active tier. Summaries are
// folded in as ordinary user-role entries so providers that reject
// mid-conversation system messages still accept the sequence.
func (a *ContextAssembler) Build(id string) ([]models.Message, error) {
	snap, err := a.store.GetContext(id)
	if err != nil {
		return nil, err
	}

	memory := snap.Memory
	if len(memory) > a.memoryWindow {
		memory = memory[len(memory)-a.memoryWindow:]
	}

	out := make([]models.Message, 0, len(memory)+len(snap.Active))
	for _, sum := range memory {
		out = append(out, models.Message{
			Role:      models.RoleUser,
			Content:   renderSummaryEntry(sum),
			Timestamp: sum.Timestamp,
		})
	}
	out = append(out, snap.Active...)
	return out, nil
}

// BuildPayload prepends the synthesized system entry and converts the
// assembled sequence to the upstream schema. An empty deviceID omits the
// device line.
func (a *ContextAssembler) BuildPayload(id, deviceID string) ([]*schema.Message, error) {
	snap, err := a.store.GetContext(id)
	if err != nil {
		return nil, err
	}
	assembled, err := a.Build(id)
	if err != nil {
		return nil, err
	}

	prompt, err := a.prompts.FullPrompt(snap.Metadata.PromptRef)
	if err != nil {
		return nil, err
	}
	var head strings.Builder
	head.WriteString(prompt)
	if deviceID != "" {
		if head.Len() > 0 {
			head.WriteString("\n\n")
		}
		head.WriteString("[Current device] ")
		head.WriteString(deviceID)
	}

	out := make([]*schema.Message, 0, len(assembled)+1)
	if head.Len() > 0 {
		out = append(out, schema.SystemMessage(head.String()))
	}
	for _, msg := range assembled {
		out = append(out, toSchemaMessage(msg))
	}
	return out, nil
}

func renderSummaryEntry(sum models.Summary) string {
	return fmt.Sprintf("[Earlier conversation, %d messages condensed]\n%s", sum.OriginalCount, sum.Content)
}

func toSchemaMessage(msg models.Message) *schema.Message {
	out := &schema.Message{
		Role:       schemaRole(msg.Role),
		Content:    msg.Content,
		ToolCallID: msg.ToolCallID,
	}
	for _, tc := range msg.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, schema.ToolCall{
			ID:   tc.ID,
			Type: tc.Type,
			Function: schema.FunctionCall{
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			},
		})
	}
	return out
}

func schemaRole(role string) schema.RoleType {
	switch role {
	case models.RoleSystem:
		return schema.System
	case models.RoleAssistant:
		return schema.Assistant
	case models.RoleTool:
		return schema.Tool
	default:
		return schema.User
	}
}
