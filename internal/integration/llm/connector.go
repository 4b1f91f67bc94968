package llm

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/futig/deck-backend/internal/config"
	"github.com/futig/deck-backend/internal/entity"
	"github.com/futig/deck-backend/internal/integration/common"
	pkghttp "github.com/futig/deck-backend/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Connector talks to a local Ollama server
type Connector struct {
	config    config.LLMConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.LLMConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger, 0),
		config:    cfg,
		logger:    logger,
	}
}

func (c *Connector) Name() string {
	return "ollama:" + c.config.Model
}

// Generate sends the prompt to /api/generate.
// Any transport error, timeout or empty answer yields an Unavailable result.
func (c *Connector) Generate(ctx context.Context, req entity.GenerationRequest) entity.GenerationResult {
	ctxzap.Info(ctx, "generating slide content via Ollama",
		zap.String("model", c.config.Model),
		zap.Int("slide_count", req.SlideCount),
		zap.Int("prompt_length", len(req.Prompt)),
	)

	body := entity.OllamaGenerateRequest{
		Model:  c.config.Model,
		Prompt: req.Prompt,
		Stream: false,
		Options: entity.OllamaOptions{
			Temperature:   c.config.Temperature,
			TopP:          c.config.TopP,
			NumCtx:        c.config.NumCtx,
			NumPredict:    c.config.NumPredict,
			RepeatPenalty: c.config.RepeatPenalty,
		},
	}

	var resp entity.OllamaGenerateResponse
	err := c.connector.DoRequest(ctx, http.MethodPost, c.config.GenerateEndpoint, body, &resp)
	if err != nil {
		reason := describeFailure(err)
		ctxzap.Warn(ctx, "Ollama unavailable", zap.String("reason", reason), zap.Error(err))
		return entity.Unavailable(reason)
	}

	text := strings.TrimSpace(resp.Response)
	if text == "" {
		ctxzap.Warn(ctx, "Ollama returned an empty response")
		return entity.Unavailable("empty response")
	}

	ctxzap.Info(ctx, "slide content generated", zap.Int("response_length", len(text)))

	return entity.Generated(text)
}

func describeFailure(err error) string {
	var httpErr *pkghttp.HTTPError
	if errors.As(err, &httpErr) {
		return "backend error: " + http.StatusText(httpErr.StatusCode)
	}

	var netErr *pkghttp.NetworkError
	if errors.As(err, &netErr) {
		var timeoutErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &timeoutErr) && timeoutErr.Timeout()) {
			return "timeout"
		}
		return "connection failed"
	}

	return "invalid response"
}
