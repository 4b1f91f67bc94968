package llm

import (
	"context"
	"strings"

	"github.com/futig/deck-backend/internal/config"
	"github.com/futig/deck-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"
)

const systemPrompt = "You create presentation outlines. Answer with a single JSON object and nothing else."

// OpenAIConnector generates slide content through an OpenAI compatible chat completions API
type OpenAIConnector struct {
	config config.LLMConnectorConfig
	client openai.Client
	logger *zap.Logger
}

func NewOpenAIConnector(cfg config.LLMConnectorConfig, logger *zap.Logger) *OpenAIConnector {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.Token),
		option.WithRequestTimeout(cfg.RequestTimeout),
		option.WithMaxRetries(0),
	}
	if cfg.Url != "" {
		opts = append(opts, option.WithBaseURL(cfg.Url))
	}

	return &OpenAIConnector{
		config: cfg,
		client: openai.NewClient(opts...),
		logger: logger,
	}
}

func (c *OpenAIConnector) Name() string {
	return "openai:" + c.config.Model
}

func (c *OpenAIConnector) Generate(ctx context.Context, req entity.GenerationRequest) entity.GenerationResult {
	ctxzap.Info(ctx, "generating slide content via OpenAI",
		zap.String("model", c.config.Model),
		zap.Int("slide_count", req.SlideCount),
	)

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.config.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(req.Prompt),
		},
		Temperature: openai.Float(c.config.Temperature),
		TopP:        openai.Float(c.config.TopP),
		MaxTokens:   openai.Int(int64(c.config.NumPredict)),
	})
	if err != nil {
		ctxzap.Warn(ctx, "OpenAI unavailable", zap.Error(err))
		return entity.Unavailable("chat completion failed")
	}

	if len(resp.Choices) == 0 {
		ctxzap.Warn(ctx, "OpenAI returned no choices")
		return entity.Unavailable("empty choices")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return entity.Unavailable("empty response")
	}

	ctxzap.Info(ctx, "slide content generated", zap.Int("response_length", len(text)))

	return entity.Generated(text)
}
