package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/futig/deck-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector returns a canned, schema-valid deck without calling any backend
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) Name() string {
	return "mock"
}

func (m *MockConnector) Generate(ctx context.Context, req entity.GenerationRequest) entity.GenerationResult {
	ctxzap.Info(ctx, "[MOCK] generating slide content", zap.Int("slide_count", req.SlideCount))

	count := req.SlideCount
	if count < 1 {
		count = 1
	}

	doc := entity.SlidesDocument{
		Slides: []entity.RawSlide{{
			SlideType: string(entity.SlideRoleTitle),
			Title:     req.Task,
			Bullets:   []string{},
		}},
	}

	for i := 1; i < count; i++ {
		doc.Slides = append(doc.Slides, entity.RawSlide{
			SlideType: string(entity.SlideRoleContent),
			Title:     fmt.Sprintf("%s: part %d", req.Task, i),
			Bullets: []string{
				fmt.Sprintf("Revenue grew %d%% over the previous quarter", 10+i*5),
				"Customer engagement increased across every channel",
				"Operating costs were reduced through automation",
				"The team expanded into two additional markets",
			},
		})
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return entity.Unavailable(err.Error())
	}

	// Fenced like real model output, so the parser path is exercised
	return entity.Generated("```json\n" + string(data) + "\n```")
}
