package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/mnemon/mnemon/pkg/models"
	"github.com/mnemon/mnemon/pkg/utils"
)

const (
	// minCompactableMessages is the floor below which summarization is not
	// worth an upstream call.
	minCompactableMessages = 10

	declineToolName = "no_compress"

	compactionInstruction = `You are a conversation archivist. You will receive a transcript of older
messages from an ongoing conversation. Produce a dense summary that preserves
facts, decisions, names, and open threads so the conversation can continue
without the original messages. Reply with the summary text only.

If the transcript is not suitable for summarization, call ` + declineToolName + ` with a reason instead.`
)

// CompactService produces summaries of aging conversation history. It is
// invoked by the store while the conversation is locked, so it works purely
// on the message slice it is handed and reports the outcome back.
type CompactService struct {
	relay      CompletionRelay
	keepRecent int
	logger     *slog.Logger
}

func NewCompactService(relay CompletionRelay, keepRecent int) *CompactService {
	return &CompactService{
		relay:      relay,
		keepRecent: keepRecent,
		logger:     utils.GetLogger(),
	}
}

func (s *CompactService) Run(ctx context.Context, conversationID string, meta models.Conversation, active []models.Message) models.CompactionResult {
	if len(active) <= minCompactableMessages || len(active) <= s.keepRecent {
		return models.Skipped("too few messages")
	}

	toCompress := active[:len(active)-s.keepRecent]
	transcript := RenderTranscript(toCompress)
	s.logger.Debug("compaction request prepared",
		"conversation", conversationID,
		"messages", len(toCompress),
		"tokens", EstimateTokens(transcript))

	messages := []*schema.Message{
		schema.SystemMessage(compactionInstruction + "\n\n[Current task] compaction-task-" + conversationID),
		schema.UserMessage(transcript),
	}

	reply, err := s.relay.Complete(ctx, meta.ProviderRef, messages, []*schema.ToolInfo{declineTool()})
	if err != nil {
		s.logger.Warn("compaction relay failed", "conversation", conversationID, "error", err)
		return models.Skipped("relay error: " + err.Error())
	}

	if reason, declined := declineReason(reply); declined {
		return models.Skipped(reason)
	}

	text := strings.TrimSpace(reply.Text)
	if text == "" {
		return models.Skipped("empty summary")
	}

	return models.Compacted(&models.Summary{
		Kind:          models.SummaryKindCompressed,
		Content:       text,
		OriginalCount: len(toCompress),
		Timestamp:     time.Now().Unix(),
	})
}

// declineTool is the only capability offered during compaction. The model
// either summarizes in free text or calls this to refuse.
func declineTool() *schema.ToolInfo {
	return &schema.ToolInfo{
		Name: declineToolName,
		Desc: "Decline to compress this transcript. Use when the content is unsuitable for summarization.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"reason": {
				Type:     schema.String,
				Desc:     "Why the transcript should not be compressed.",
				Required: true,
			},
		}),
	}
}

func declineReason(reply *models.Reply) (string, bool) {
	for _, tc := range reply.ToolCalls {
		if tc.Function.Name != declineToolName {
			continue
		}
		var args struct {
			Reason string `json:"reason"`
		}
		if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil || args.Reason == "" {
			return "declined without reason", true
		}
		return args.Reason, true
	}
	return "", false
}
