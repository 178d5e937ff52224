package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/cloudwego/eino/schema"

	"github.com/mnemon/mnemon/pkg/models"
)

type fakeRelay struct {
	reply        *models.Reply
	err          error
	calls        int
	lastProvider string
	lastMessages []*schema.Message
	lastTools    []*schema.ToolInfo
}

func (f *fakeRelay) Complete(_ context.Context, providerID string, messages []*schema.Message, tools []*schema.ToolInfo) (*models.Reply, error) {
	f.calls++
	f.lastProvider = providerID
	f.lastMessages = messages
	f.lastTools = tools
	if f.err != nil {
		return nil, f.err
	}
	return f.reply, nil
}

func activeMessages(n int) []models.Message {
	msgs := make([]models.Message, n)
	for i := range msgs {
		role := models.RoleUser
		if i%2 == 1 {
			role = models.RoleAssistant
		}
		msgs[i] = models.Message{Role: role, Content: fmt.Sprintf("turn %d", i)}
	}
	return msgs
}

func TestCompactSkipsShortHistory(t *testing.T) {
	relay := &fakeRelay{}
	svc := NewCompactService(relay, 5)

	result := svc.Run(context.Background(), "conv", models.Conversation{}, activeMessages(10))

	if result.Compacted {
		t.Fatalf("Run() compacted a 10-message history")
	}
	if result.Reason != "too few messages" {
		t.Fatalf("Reason = %q, want %q", result.Reason, "too few messages")
	}
	if relay.calls != 0 {
		t.Fatalf("relay called %d times for a short history", relay.calls)
	}
}

func TestCompactSuccess(t *testing.T) {
	relay := &fakeRelay{reply: &models.Reply{Text: "  they planned a trip to berlin  "}}
	svc := NewCompactService(relay, 5)

	meta := models.Conversation{ProviderRef: "provider-1"}
	result := svc.Run(context.Background(), "conv", meta, activeMessages(12))

	if !result.Compacted {
		t.Fatalf("Run() skipped: %s", result.Reason)
	}
	if result.Summary.Content != "they planned a trip to berlin" {
		t.Fatalf("Summary.Content = %q, want trimmed text", result.Summary.Content)
	}
	if result.Summary.OriginalCount != 7 {
		t.Fatalf("OriginalCount = %d, want 7", result.Summary.OriginalCount)
	}
	if result.Summary.Kind != models.SummaryKindCompressed {
		t.Fatalf("Kind = %q, want %q", result.Summary.Kind, models.SummaryKindCompressed)
	}
	if relay.lastProvider != "provider-1" {
		t.Fatalf("relay provider = %q, want %q", relay.lastProvider, "provider-1")
	}
	if len(relay.lastTools) != 1 || relay.lastTools[0].Name != declineToolName {
		t.Fatalf("relay offered tools %v, want only %s", relay.lastTools, declineToolName)
	}
	if len(relay.lastMessages) != 2 {
		t.Fatalf("relay got %d messages, want system + transcript", len(relay.lastMessages))
	}
}

func TestCompactDecline(t *testing.T) {
	relay := &fakeRelay{reply: &models.Reply{
		ToolCalls: []models.ToolCall{{
			Function: models.FunctionCall{
				Name:      declineToolName,
				Arguments: `{"reason": "transcript is mid-task"}`,
			},
		}},
	}}
	svc := NewCompactService(relay, 5)

	result := svc.Run(context.Background(), "conv", models.Conversation{}, activeMessages(12))

	if result.Compacted {
		t.Fatalf("Run() compacted despite decline")
	}
	if result.Reason != "transcript is mid-task" {
		t.Fatalf("Reason = %q, want the declared reason", result.Reason)
	}
}

func TestCompactDeclineWithoutReason(t *testing.T) {
	relay := &fakeRelay{reply: &models.Reply{
		ToolCalls: []models.ToolCall{{
			Function: models.FunctionCall{Name: declineToolName, Arguments: "garbage"},
		}},
	}}
	svc := NewCompactService(relay, 5)

	result := svc.Run(context.Background(), "conv", models.Conversation{}, activeMessages(12))
	if result.Compacted || result.Reason != "declined without reason" {
		t.Fatalf("result = %+v, want skip with fallback reason", result)
	}
}

func TestCompactEmptySummary(t *testing.T) {
	relay := &fakeRelay{reply: &models.Reply{Text: "   \n  "}}
	svc := NewCompactService(relay, 5)

	result := svc.Run(context.Background(), "conv", models.Conversation{}, activeMessages(12))
	if result.Compacted || result.Reason != "empty summary" {
		t.Fatalf("result = %+v, want skip on empty summary", result)
	}
}

func TestCompactRelayError(t *testing.T) {
	relay := &fakeRelay{err: errors.New("connection refused")}
	svc := NewCompactService(relay, 5)

	result := svc.Run(context.Background(), "conv", models.Conversation{}, activeMessages(12))
	if result.Compacted {
		t.Fatalf("Run() compacted despite relay error")
	}
	if result.Reason == "" {
		t.Fatalf("Reason empty, want relay error description")
	}
}
