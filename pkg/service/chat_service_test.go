package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/cloudwego/eino/schema"

	"github.com/mnemon/mnemon/pkg/history"
	"github.com/mnemon/mnemon/pkg/models"
)

// scriptedRelay returns a fixed reply and can run a hook mid-completion.
type scriptedRelay struct {
	reply      models.Reply
	onComplete func()
}

func (s *scriptedRelay) Complete(context.Context, string, []*schema.Message, []*schema.ToolInfo) (*models.Reply, error) {
	if s.onComplete != nil {
		s.onComplete()
	}
	r := s.reply
	return &r, nil
}

func newChatFixture(t *testing.T, relay CompletionRelay) (*ChatService, *history.Store, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := history.Open(filepath.Join(dir, "data"), 100, 5)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	prompts := NewPromptService(filepath.Join(dir, "prompts.json"))
	chat := NewChatService(store, NewContextAssembler(store, prompts, 8), relay)

	id, err := store.Create("chat", "common", "provider-1", "dev")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return chat, store, id
}

func TestProcessMessageRecordsToolResultAndUserMessage(t *testing.T) {
	relay := &scriptedRelay{reply: models.Reply{Text: "noted"}}
	chat, store, id := newChatFixture(t, relay)

	reply, err := chat.ProcessMessage(context.Background(), models.ChatRequest{
		Conversation: id,
		Message:      "and what about tomorrow?",
		ToolResponse: &models.ToolResponse{ToolCallID: "call-3", Content: "sunny, 21C"},
	})
	if err != nil {
		t.Fatalf("ProcessMessage() error = %v", err)
	}
	if reply.Content != "noted" {
		t.Fatalf("reply.Content = %q, want %q", reply.Content, "noted")
	}

	active, err := store.GetActive(id)
	if err != nil {
		t.Fatalf("GetActive() error = %v", err)
	}
	if len(active) != 3 {
		t.Fatalf("len(active) = %d, want tool result + user message + reply", len(active))
	}
	if active[0].Role != models.RoleTool || active[0].ToolCallID != "call-3" {
		t.Fatalf("active[0] = %+v, want the tool result first", active[0])
	}
	if active[1].Role != models.RoleUser || active[1].Content != "and what about tomorrow?" {
		t.Fatalf("active[1] = %+v, want the user message second", active[1])
	}
	if active[2].Role != models.RoleAssistant {
		t.Fatalf("active[2] = %+v, want the assistant reply", active[2])
	}
}

func TestProcessMessageRejectsEmptyTurn(t *testing.T) {
	chat, _, id := newChatFixture(t, &scriptedRelay{reply: models.Reply{Text: "x"}})

	if _, err := chat.ProcessMessage(context.Background(), models.ChatRequest{Conversation: id}); err == nil {
		t.Fatalf("ProcessMessage() error = nil, want rejection of an empty turn")
	}
}

func TestProcessMessageReturnsReplyWhenPersistFails(t *testing.T) {
	relay := &scriptedRelay{reply: models.Reply{Text: "last words"}}
	chat, store, id := newChatFixture(t, relay)

	// Drop the conversation while the completion is in flight, so recording
	// the assistant reply fails.
	relay.onComplete = func() {
		if err := store.Delete(id); err != nil {
			t.Errorf("Delete() error = %v", err)
		}
	}

	reply, err := chat.ProcessMessage(context.Background(), models.ChatRequest{
		Conversation: id,
		Message:      "hello",
	})
	if err != nil {
		t.Fatalf("ProcessMessage() error = %v, want the reply despite the failed persist", err)
	}
	if reply.Content != "last words" {
		t.Fatalf("reply.Content = %q, want %q", reply.Content, "last words")
	}
}
