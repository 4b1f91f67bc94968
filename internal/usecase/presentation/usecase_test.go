package presentation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/futig/deck-backend/internal/config"
	"github.com/futig/deck-backend/internal/entity"
	"github.com/futig/deck-backend/internal/pipeline"
	"github.com/futig/deck-backend/internal/pkg/validator"
	"github.com/futig/deck-backend/internal/repository"
	"github.com/futig/deck-backend/internal/usecase/user"
)

type fakePipeline struct {
	dir    string
	err    error
	params pipeline.Params
}

func (f *fakePipeline) Run(_ context.Context, params pipeline.Params) (*pipeline.Result, error) {
	f.params = params
	if f.err != nil {
		return nil, f.err
	}

	path := filepath.Join(f.dir, "presentation_"+params.UserID+".pptx")
	if err := os.WriteFile(path, []byte("deck"), 0o600); err != nil {
		return nil, err
	}

	records := []entity.SlideRecord{{Role: entity.SlideRoleTitle, Title: params.Task}}
	for i := 1; i < params.SlideCount; i++ {
		records = append(records, entity.SlideRecord{Role: entity.SlideRoleContent, Title: "Point", Bullets: []string{"a"}})
	}

	return &pipeline.Result{
		Path:        path,
		DesignStyle: params.DesignStyle,
		Records:     records,
		Report:      entity.ResourceReport{Rating: entity.RatingGood},
	}, nil
}

type fakeMemory float64

func (m fakeMemory) CurrentMB() float64 { return float64(m) }

type fixture struct {
	uc       *PresentationUsecase
	users    *user.UserUsecase
	pipeline *fakePipeline
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	users := user.NewUsecase(repository.NewUserMemory(), config.DefaultPlans(),
		config.AdminConfig{Password: "secret", SessionTimeout: time.Hour, PlanUpgrades: true, MaxSlides: 50}, zap.NewNop())
	p := &fakePipeline{dir: t.TempDir()}
	v := validator.NewValidator(config.GenerationConfig{DefaultDesignStyle: "minimal_1", DefaultSlideCount: 3})

	uc := NewUsecase(repository.NewJobMemory(time.Hour), users, p, v, fakeMemory(123.45), "ollama", "http://deck.local", zap.NewNop())
	return &fixture{uc: uc, users: users, pipeline: p}
}

func validRequest() *entity.GenerateRequest {
	return &entity.GenerateRequest{
		UserID: "u1",
		URL:    "https://example.com/article",
		Task:   "Cloud adoption",
		VisualPreferences: entity.VisualPreferences{
			Image: true,
			Chart: true,
		},
	}
}

func TestGenerateAndProcess(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	job, err := f.uc.Generate(ctx, validRequest())
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusPending, job.Status)
	assert.Equal(t, 3, job.SlideCount)
	assert.Equal(t, "minimal_1", job.DesignStyle)
	assert.False(t, job.VisualPreferences.Any(), "free plan must not carry visuals")

	_, err = f.uc.DownloadPath(ctx, job.ID)
	assert.ErrorIs(t, err, entity.ErrJobNotReady)

	require.NoError(t, f.uc.Process(ctx, job.ID))
	assert.Equal(t, "https://example.com/article", f.pipeline.params.URL)

	dto, err := f.uc.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusDone, dto.Status)
	assert.Equal(t, "http://deck.local/api/download/"+job.ID, dto.DownloadURL)
	assert.Equal(t, entity.RatingGood, dto.Rating)

	path, err := f.uc.DownloadPath(ctx, job.ID)
	require.NoError(t, err)
	assert.FileExists(t, path)

	info, err := f.uc.FileInfo(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "presentation_u1.pptx", info.Filename)
	assert.Equal(t, int64(4), info.Size)

	outline, err := f.uc.Outline(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cloud adoption", outline.Task)
	assert.Len(t, outline.Slides, 3)

	stats, err := f.users.Stats(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalUsage)
}

func TestGenerate_PaidPlanKeepsVisuals(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.users.UpdatePlan(ctx, "u1", entity.PlanPro)
	require.NoError(t, err)

	job, err := f.uc.Generate(ctx, validRequest())
	require.NoError(t, err)
	assert.True(t, job.VisualPreferences.Image)
	assert.True(t, job.VisualPreferences.Chart)
}

func TestGenerate_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("slide count above plan maximum", func(t *testing.T) {
		req := validRequest()
		req.SlideCount = 6
		_, err := newFixture(t).uc.Generate(ctx, req)
		assert.ErrorIs(t, err, entity.ErrInvalidParameter)
	})

	t.Run("bad url", func(t *testing.T) {
		req := validRequest()
		req.URL = "ftp://example.com/file"
		_, err := newFixture(t).uc.Generate(ctx, req)
		assert.ErrorIs(t, err, entity.ErrInvalidFormat)
	})

	t.Run("quota exhausted", func(t *testing.T) {
		f := newFixture(t)
		for i := 0; i < 3; i++ {
			_, err := f.users.Reserve(ctx, "u1")
			require.NoError(t, err)
		}
		_, err := f.uc.Generate(ctx, validRequest())
		assert.ErrorIs(t, err, entity.ErrQuotaExceeded)
	})
}

func TestGenerate_BurstStaysWithinQuota(t *testing.T) {
	ctx := context.Background()

	t.Run("sequential", func(t *testing.T) {
		f := newFixture(t)

		accepted := 0
		for i := 0; i < 10; i++ {
			job, err := f.uc.Generate(ctx, validRequest())
			if err != nil {
				assert.ErrorIs(t, err, entity.ErrQuotaExceeded)
				continue
			}
			assert.Equal(t, entity.JobStatusPending, job.Status)
			accepted++
		}
		assert.Equal(t, 3, accepted)

		health, err := f.uc.Health(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, health.Jobs.Total)
	})

	t.Run("concurrent", func(t *testing.T) {
		f := newFixture(t)

		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			accepted int
			rejected int
		)
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := f.uc.Generate(ctx, validRequest())
				mu.Lock()
				defer mu.Unlock()
				if errors.Is(err, entity.ErrQuotaExceeded) {
					rejected++
					return
				}
				if err == nil {
					accepted++
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 3, accepted)
		assert.Equal(t, 7, rejected)

		stats, err := f.users.Stats(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 3, stats.TotalUsage)
	})
}

func TestGenerate_InvalidRequestReservesNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	req := validRequest()
	req.SlideCount = 6
	_, err := f.uc.Generate(ctx, req)
	require.ErrorIs(t, err, entity.ErrInvalidParameter)

	stats, err := f.users.Stats(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, stats.TotalUsage)
}

func TestProcess_FailureMarksJob(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.pipeline.err = errors.Join(entity.ErrExtraction, errors.New("status 404"))

	job, err := f.uc.Generate(ctx, validRequest())
	require.NoError(t, err)

	stats, err := f.users.Stats(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalUsage, "pending job holds a reservation")

	err = f.uc.Process(ctx, job.ID)
	assert.ErrorIs(t, err, entity.ErrExtraction)

	dto, err := f.uc.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusFailed, dto.Status)
	require.NotNil(t, dto.Error)
	assert.Contains(t, *dto.Error, "status 404")
	assert.Empty(t, dto.DownloadURL)

	stats, err = f.users.Stats(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, stats.TotalUsage)
}

func TestDownloadPath_FileMissing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	job, err := f.uc.Generate(ctx, validRequest())
	require.NoError(t, err)
	require.NoError(t, f.uc.Process(ctx, job.ID))

	path, err := f.uc.DownloadPath(ctx, job.ID)
	require.NoError(t, err)
	require.NoError(t, os.Remove(path))

	_, err = f.uc.DownloadPath(ctx, job.ID)
	assert.ErrorIs(t, err, entity.ErrFileMissing)
}

func TestGetJob_NotFound(t *testing.T) {
	_, err := newFixture(t).uc.GetJob(context.Background(), "missing")
	assert.ErrorIs(t, err, entity.ErrJobNotFound)
}

func TestDesignsAndHealth(t *testing.T) {
	f := newFixture(t)

	designs := f.uc.Designs()
	require.NotEmpty(t, designs)
	assert.Equal(t, "minimal_1", designs[0].ID)

	health, err := f.uc.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "ollama", health.TextEngine)
	assert.InDelta(t, 123.5, health.MemoryMB, 0.001)
	assert.Equal(t, 0, health.Jobs.Total)
}
