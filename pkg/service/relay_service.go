package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/ollama"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino-ext/components/model/qwen"
	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"github.com/mnemon/mnemon/pkg/models"
	"github.com/mnemon/mnemon/pkg/utils"
)

// CompletionRelay forwards a prepared message sequence to an upstream model
// endpoint and returns its reply in provider-neutral form.
type CompletionRelay interface {
	Complete(ctx context.Context, providerID string, messages []*schema.Message, tools []*schema.ToolInfo) (*models.Reply, error)
}

// RelayService implements CompletionRelay on top of the eino chat model
// components. Each call resolves the endpoint record, builds a fresh model
// client, and runs a single non-streaming generation under a deadline.
type RelayService struct {
	providers *ProviderService
	timeout   time.Duration
	logger    *slog.Logger
}

func NewRelayService(providers *ProviderService, timeout time.Duration) *RelayService {
	return &RelayService{
		providers: providers,
		timeout:   timeout,
		logger:    utils.GetLogger(),
	}
}

func (s *RelayService) Complete(ctx context.Context, providerID string, messages []*schema.Message, tools []*schema.ToolInfo) (*models.Reply, error) {
	cfg, err := s.providers.Resolve(providerID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	chatModel, err := s.buildChatModel(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if len(tools) > 0 {
		chatModel, err = chatModel.WithTools(tools)
		if err != nil {
			return nil, fmt.Errorf("failed to bind tools: %w", err)
		}
	}

	opts := []einoModel.Option{
		einoModel.WithTemperature(cfg.SamplingTemperature()),
		einoModel.WithTopP(cfg.SamplingTopP()),
		einoModel.WithMaxTokens(cfg.SamplingMaxTokens()),
	}

	start := time.Now()
	resp, err := chatModel.Generate(ctx, messages, opts...)
	if err != nil {
		return nil, fmt.Errorf("upstream generation failed: %w", err)
	}
	s.logger.Debug("relay completed",
		"provider", cfg.Provider,
		"model", cfg.Model,
		"elapsed", time.Since(start),
		"tool_calls", len(resp.ToolCalls))

	return replyFromMessage(resp), nil
}

func (s *RelayService) buildChatModel(ctx context.Context, cfg *models.ProviderConfig) (einoModel.ToolCallingChatModel, error) {
	switch cfg.Provider {
	case "openai", "custom", "siliconflow":
		chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL: cfg.BaseUrl,
			APIKey:  cfg.ApiKey,
			Model:   cfg.Model,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create OpenAI model: %w", err)
		}
		return chatModel, nil

	case "deepseek":
		chatModel, err := deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
			BaseURL: cfg.BaseUrl,
			APIKey:  cfg.ApiKey,
			Model:   cfg.Model,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create DeepSeek model: %w", err)
		}
		return chatModel, nil

	case "anthropic":
		chatModel, err := claude.NewChatModel(ctx, &claude.Config{
			BaseURL:   &cfg.BaseUrl,
			APIKey:    cfg.ApiKey,
			Model:     cfg.Model,
			MaxTokens: cfg.SamplingMaxTokens(),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Claude model: %w", err)
		}
		return chatModel, nil

	case "ollama":
		chatModel, err := ollama.NewChatModel(ctx, &ollama.ChatModelConfig{
			BaseURL: cfg.BaseUrl,
			Model:   cfg.Model,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Ollama model: %w", err)
		}
		return chatModel, nil

	case "google":
		genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.ApiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		chatModel, err := gemini.NewChatModel(ctx, &gemini.Config{
			Client: genaiClient,
			Model:  cfg.Model,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini model: %w", err)
		}
		return chatModel, nil

	case "qwen":
		chatModel, err := qwen.NewChatModel(ctx, &qwen.ChatModelConfig{
			BaseURL: cfg.BaseUrl,
			APIKey:  cfg.ApiKey,
			Model:   cfg.Model,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Qwen model: %w", err)
		}
		return chatModel, nil

	default:
		return nil, fmt.Errorf("unsupported model provider: %s", cfg.Provider)
	}
}

func replyFromMessage(msg *schema.Message) *models.Reply {
	reply := &models.Reply{Text: msg.Content}
	for _, tc := range msg.ToolCalls {
		reply.ToolCalls = append(reply.ToolCalls, models.ToolCall{
			ID:   tc.ID,
			Type: tc.Type,
			Function: models.FunctionCall{
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			},
		})
	}
	if msg.ResponseMeta != nil {
		reply.FinishReason = msg.ResponseMeta.FinishReason
		if u := msg.ResponseMeta.Usage; u != nil {
			reply.Usage = &models.TokenUsage{
				PromptTokens:     u.PromptTokens,
				CompletionTokens: u.CompletionTokens,
				TotalTokens:      u.TotalTokens,
			}
		}
	}
	return reply
}
