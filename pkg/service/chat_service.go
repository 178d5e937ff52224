package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cloudwego/eino/schema"

	"github.com/mnemon/mnemon/pkg/history"
	"github.com/mnemon/mnemon/pkg/models"
	"github.com/mnemon/mnemon/pkg/utils"
)

// ChatService runs a full chat turn: record the inbound message, assemble
// context, relay it upstream, and record the reply.
type ChatService struct {
	store     *history.Store
	assembler *ContextAssembler
	relay     CompletionRelay
	logger    *slog.Logger
}

func NewChatService(store *history.Store, assembler *ContextAssembler, relay CompletionRelay) *ChatService {
	return &ChatService{
		store:     store,
		assembler: assembler,
		relay:     relay,
		logger:    utils.GetLogger(),
	}
}

func (s *ChatService) ProcessMessage(ctx context.Context, req models.ChatRequest) (*models.ChatReply, error) {
	snap, err := s.store.GetContext(req.Conversation)
	if err != nil {
		return nil, err
	}

	inbound, err := inboundMessages(req)
	if err != nil {
		return nil, err
	}
	for _, msg := range inbound {
		if err := s.store.Append(ctx, req.Conversation, msg); err != nil {
			return nil, err
		}
	}

	device := req.Device
	if device == "" {
		device = snap.Metadata.DeviceID
	}
	payload, err := s.assembler.BuildPayload(req.Conversation, device)
	if err != nil {
		return nil, err
	}

	tools, err := toolInfos(req.Tools)
	if err != nil {
		return nil, err
	}

	reply, err := s.relay.Complete(ctx, snap.Metadata.ProviderRef, payload, tools)
	if err != nil {
		return nil, err
	}

	assistant := models.Message{
		Role:         models.RoleAssistant,
		Content:      reply.Text,
		ToolCalls:    reply.ToolCalls,
		FinishReason: reply.FinishReason,
		Usage:        reply.Usage,
	}
	// The completion already happened; a persistence failure here must not
	// cost the client its reply.
	if err := s.store.Append(ctx, req.Conversation, assistant); err != nil {
		s.logger.Warn("failed to persist assistant reply", "conversation", req.Conversation, "error", err)
	}

	return &models.ChatReply{
		Content:      reply.Text,
		ToolCalls:    reply.ToolCalls,
		FinishReason: reply.FinishReason,
	}, nil
}

// inboundMessages expands one request into the messages to record: the tool
// result first when present, then the user message. A turn may carry both.
func inboundMessages(req models.ChatRequest) ([]models.Message, error) {
	var msgs []models.Message
	if req.ToolResponse != nil {
		if req.ToolResponse.ToolCallID == "" {
			return nil, fmt.Errorf("tool response requires a tool call id")
		}
		msgs = append(msgs, models.Message{
			Role:       models.RoleTool,
			Content:    req.ToolResponse.Content,
			ToolCallID: req.ToolResponse.ToolCallID,
		})
	}
	if req.Message != "" {
		msgs = append(msgs, models.Message{Role: models.RoleUser, Content: req.Message})
	}
	if len(msgs) == 0 {
		return nil, fmt.Errorf("message text is required")
	}
	return msgs, nil
}

func toolInfos(specs []models.ToolSpec) ([]*schema.ToolInfo, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	out := make([]*schema.ToolInfo, 0, len(specs))
	for _, spec := range specs {
		if spec.Name == "" {
			return nil, fmt.Errorf("tool spec missing name")
		}
		params := make(map[string]*schema.ParameterInfo, len(spec.Parameters))
		for name, p := range spec.Parameters {
			dt, err := dataType(p.Type)
			if err != nil {
				return nil, fmt.Errorf("tool %s parameter %s: %w", spec.Name, name, err)
			}
			params[name] = &schema.ParameterInfo{
				Type:     dt,
				Desc:     p.Description,
				Required: p.Required,
			}
		}
		out = append(out, &schema.ToolInfo{
			Name:        spec.Name,
			Desc:        spec.Description,
			ParamsOneOf: schema.NewParamsOneOfByParams(params),
		})
	}
	return out, nil
}

func dataType(t string) (schema.DataType, error) {
	switch t {
	case "string", "":
		return schema.String, nil
	case "number":
		return schema.Number, nil
	case "integer":
		return schema.Integer, nil
	case "boolean":
		return schema.Boolean, nil
	case "array":
		return schema.Array, nil
	case "object":
		return schema.Object, nil
	default:
		return "", fmt.Errorf("unsupported parameter type %q", t)
	}
}
