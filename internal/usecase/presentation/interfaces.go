package presentation

import (
	"context"

	"github.com/futig/deck-backend/internal/entity"
	"github.com/futig/deck-backend/internal/pipeline"
)

type PipelineRunner interface {
	Run(ctx context.Context, params pipeline.Params) (*pipeline.Result, error)
}

type QuotaService interface {
	CanGenerate(ctx context.Context, userID string) (entity.QuotaDecision, error)
	Reserve(ctx context.Context, userID string) (entity.QuotaDecision, error)
	Release(ctx context.Context, userID string) error
}

type MemoryReporter interface {
	CurrentMB() float64
}
