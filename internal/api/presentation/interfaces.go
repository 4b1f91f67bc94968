package presentation

import (
	"context"

	"github.com/futig/deck-backend/internal/entity"
)

type PresentationUsecase interface {
	Generate(ctx context.Context, req *entity.GenerateRequest) (*entity.Job, error)
	Process(ctx context.Context, jobID string) error
	GetJob(ctx context.Context, jobID string) (*entity.JobDTO, error)
	DownloadPath(ctx context.Context, jobID string) (string, error)
	FileInfo(ctx context.Context, jobID string) (*entity.FileInfoDTO, error)
	Outline(ctx context.Context, jobID string) (entity.Outline, error)
	Designs() []entity.DesignStyleDTO
	Health(ctx context.Context) (*entity.HealthDTO, error)
}
