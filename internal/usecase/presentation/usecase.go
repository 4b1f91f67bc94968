package presentation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/deck-backend/internal/entity"
	"github.com/futig/deck-backend/internal/pipeline"
	"github.com/futig/deck-backend/internal/pkg/validator"
	"github.com/futig/deck-backend/internal/renderer"
	"github.com/futig/deck-backend/internal/repository"
)

const Version = "2.0.0"

// PresentationUsecase tracks generation jobs and drives the pipeline for them
type PresentationUsecase struct {
	jobRepo       repository.JobRepository
	quota         QuotaService
	pipeline      PipelineRunner
	validator     *validator.Validator
	memory        MemoryReporter
	generatorName string
	publicBaseURL string
	logger        *zap.Logger
}

func NewUsecase(
	jobRepo repository.JobRepository,
	quota QuotaService,
	pipeline PipelineRunner,
	validator *validator.Validator,
	memory MemoryReporter,
	generatorName string,
	publicBaseURL string,
	logger *zap.Logger,
) *PresentationUsecase {
	return &PresentationUsecase{
		jobRepo:       jobRepo,
		quota:         quota,
		pipeline:      pipeline,
		validator:     validator,
		memory:        memory,
		generatorName: generatorName,
		publicBaseURL: publicBaseURL,
		logger:        logger,
	}
}

// Generate checks quotas, validates the request and stores a PENDING job.
// One generation is reserved against the user's quota before the job is stored;
// the caller runs Process for the returned job, usually in the background.
func (uc *PresentationUsecase) Generate(ctx context.Context, req *entity.GenerateRequest) (*entity.Job, error) {
	if req.UserID == "" {
		return nil, fmt.Errorf("%w: user_id", entity.ErrMissingField)
	}

	decision, err := uc.quota.CanGenerate(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("check quota: %w", err)
	}
	if !decision.Allowed {
		return nil, quotaRejected(ctx, req.UserID, decision)
	}

	if err := uc.validator.ValidateGenerate(req, decision.MaxSlides); err != nil {
		return nil, err
	}

	if !decision.Visuals && req.VisualPreferences.Any() {
		ctxzap.Debug(ctx, "plan has no visual elements, masking preferences", zap.String("user_id", req.UserID))
		req.VisualPreferences = entity.VisualPreferences{}
	}

	// concurrent requests may have used the quota since the check above
	reserved, err := uc.quota.Reserve(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("reserve quota: %w", err)
	}
	if !reserved.Allowed {
		return nil, quotaRejected(ctx, req.UserID, reserved)
	}

	job, err := uc.jobRepo.CreateJob(ctx, entity.Job{
		ID:                uuid.NewString(),
		UserID:            req.UserID,
		Task:              req.Task,
		URL:               req.URL,
		DesignStyle:       req.DesignStyle,
		VisualPreferences: req.VisualPreferences,
		VisualMode:        req.VisualMode,
		SlideCount:        req.SlideCount,
		Status:            entity.JobStatusPending,
	})
	if err != nil {
		uc.release(ctx, req.UserID)
		return nil, fmt.Errorf("create job: %w", err)
	}

	ctxzap.Info(ctx, "job created",
		zap.String("job_id", job.ID),
		zap.Int("slide_count", job.SlideCount),
		zap.String("design_style", job.DesignStyle),
	)

	return job, nil
}

// Process runs the pipeline for a PENDING job and stores the outcome.
// A FAILED job gives its quota reservation back.
func (uc *PresentationUsecase) Process(ctx context.Context, jobID string) error {
	job, err := uc.jobRepo.GetJobByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("get job: %w", err)
	}

	job.Status = entity.JobStatusProcessing
	if job, err = uc.jobRepo.UpdateJob(ctx, *job); err != nil {
		return fmt.Errorf("mark job processing: %w", err)
	}

	result, runErr := uc.pipeline.Run(ctx, pipeline.Params{
		URL:         job.URL,
		Task:        job.Task,
		DesignStyle: job.DesignStyle,
		Prefs:       job.VisualPreferences,
		Mode:        job.VisualMode,
		SlideCount:  job.SlideCount,
		UserID:      job.UserID,
	})
	if runErr != nil {
		uc.release(ctx, job.UserID)

		msg := runErr.Error()
		job.Status = entity.JobStatusFailed
		job.Error = &msg
		if _, err := uc.jobRepo.UpdateJob(ctx, *job); err != nil {
			return errors.Join(runErr, fmt.Errorf("mark job failed: %w", err))
		}
		ctxzap.Error(ctx, "generation failed", zap.String("job_id", jobID), zap.Error(runErr))
		return runErr
	}

	job.Status = entity.JobStatusDone
	job.OutputPath = &result.Path
	job.DesignStyle = result.DesignStyle
	job.SlideCount = len(result.Records)
	job.Outline = result.Records
	job.Report = &result.Report
	if _, err := uc.jobRepo.UpdateJob(ctx, *job); err != nil {
		return fmt.Errorf("mark job done: %w", err)
	}

	ctxzap.Info(ctx, "generation finished",
		zap.String("job_id", jobID),
		zap.String("path", result.Path),
		zap.Int("slides", len(result.Records)),
		zap.Bool("fallback", result.Fallback),
		zap.String("rating", string(result.Report.Rating)),
	)

	return nil
}

func (uc *PresentationUsecase) GetJob(ctx context.Context, jobID string) (*entity.JobDTO, error) {
	job, err := uc.jobRepo.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return toJobDTO(job, uc.downloadURL(jobID)), nil
}

// DownloadPath returns the deck file of a DONE job
func (uc *PresentationUsecase) DownloadPath(ctx context.Context, jobID string) (string, error) {
	job, err := uc.doneJob(ctx, jobID)
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(*job.OutputPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", entity.ErrFileMissing
		}
		return "", fmt.Errorf("stat output: %w", err)
	}

	return *job.OutputPath, nil
}

func (uc *PresentationUsecase) FileInfo(ctx context.Context, jobID string) (*entity.FileInfoDTO, error) {
	path, err := uc.DownloadPath(ctx, jobID)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat output: %w", err)
	}

	return &entity.FileInfoDTO{
		Filename:    filepath.Base(path),
		Size:        info.Size(),
		SizeMB:      math.Round(float64(info.Size())/(1<<20)*100) / 100,
		CreatedAt:   info.ModTime(),
		DownloadURL: uc.downloadURL(jobID),
	}, nil
}

// Outline returns the slide content of a DONE job
func (uc *PresentationUsecase) Outline(ctx context.Context, jobID string) (entity.Outline, error) {
	job, err := uc.doneJob(ctx, jobID)
	if err != nil {
		return entity.Outline{}, err
	}
	return entity.Outline{Task: job.Task, Slides: job.Outline}, nil
}

func (uc *PresentationUsecase) Designs() []entity.DesignStyleDTO {
	styles := renderer.Styles()
	designs := make([]entity.DesignStyleDTO, 0, len(styles))
	for _, s := range styles {
		designs = append(designs, toDesignStyleDTO(s))
	}
	return designs
}

func (uc *PresentationUsecase) Health(ctx context.Context) (*entity.HealthDTO, error) {
	stats, err := uc.jobRepo.JobStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("job stats: %w", err)
	}

	return &entity.HealthDTO{
		Status:     "healthy",
		Version:    Version,
		Jobs:       stats,
		MemoryMB:   math.Round(uc.memory.CurrentMB()*10) / 10,
		TextEngine: uc.generatorName,
	}, nil
}

func (uc *PresentationUsecase) release(ctx context.Context, userID string) {
	if err := uc.quota.Release(ctx, userID); err != nil {
		ctxzap.Error(ctx, "failed to release usage", zap.String("user_id", userID), zap.Error(err))
	}
}

func quotaRejected(ctx context.Context, userID string, decision entity.QuotaDecision) error {
	ctxzap.Info(ctx, "generation rejected by quota",
		zap.String("user_id", userID),
		zap.String("limit_type", string(decision.LimitType)),
	)
	return fmt.Errorf("%w: %s", entity.ErrQuotaExceeded, decision.Reason)
}

func (uc *PresentationUsecase) doneJob(ctx context.Context, jobID string) (*entity.Job, error) {
	job, err := uc.jobRepo.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	if job.Status != entity.JobStatusDone || job.OutputPath == nil {
		return nil, fmt.Errorf("%w: status %s", entity.ErrJobNotReady, job.Status)
	}
	return job, nil
}

func (uc *PresentationUsecase) downloadURL(jobID string) string {
	return uc.publicBaseURL + "/api/download/" + jobID
}
