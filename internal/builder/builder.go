package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/unidoc/unioffice/common/license"
	"go.uber.org/zap"

	"github.com/futig/deck-backend/internal/api"
	"github.com/futig/deck-backend/internal/api/docs"
	presentationapi "github.com/futig/deck-backend/internal/api/presentation"
	userapi "github.com/futig/deck-backend/internal/api/user"
	"github.com/futig/deck-backend/internal/config"
	"github.com/futig/deck-backend/internal/extractor"
	"github.com/futig/deck-backend/internal/governor"
	"github.com/futig/deck-backend/internal/integration/images"
	"github.com/futig/deck-backend/internal/integration/llm"
	"github.com/futig/deck-backend/internal/pipeline"
	"github.com/futig/deck-backend/internal/pkg/logger"
	"github.com/futig/deck-backend/internal/pkg/validator"
	"github.com/futig/deck-backend/internal/renderer"
	"github.com/futig/deck-backend/internal/repository"
	"github.com/futig/deck-backend/internal/usecase/presentation"
	"github.com/futig/deck-backend/internal/usecase/user"
	"github.com/futig/deck-backend/internal/visual"
)

func Build() (*App, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	log.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
		zap.String("storage_driver", cfg.StorageDriver),
	)

	if cfg.UniofficeLicenseKey != "" {
		if err := license.SetMeteredKey(cfg.UniofficeLicenseKey); err != nil {
			return nil, fmt.Errorf("set office license: %w", err)
		}
		log.Info("Office document license configured")
	}

	// Initialize repositories
	db, jobRepo, userRepo, err := setupStorage(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	log.Info("Repositories initialized")

	// Initialize external service connectors (with mock support)
	var generator pipeline.TextGenerator
	var imageSearcher visual.ImageSearcher

	if cfg.EnableMocks {
		log.Info("Using mock connectors for external services")
		generator = llm.NewMockConnector(log)
		imageSearcher = images.NewMockConnector(log)
	} else {
		log.Info("Using real connectors for external services", zap.String("llm_provider", cfg.LLMConnectorCfg.Provider))
		switch cfg.LLMConnectorCfg.Provider {
		case config.LLMProviderOpenAI:
			generator = llm.NewOpenAIConnector(cfg.LLMConnectorCfg, log)
		default:
			generator = llm.NewConnector(cfg.LLMConnectorCfg, log)
		}

		imagesConnector := images.NewConnector(cfg.ImagesConnectorCfg, log)
		if imagesConnector.Configured() {
			imageSearcher = imagesConnector
		} else {
			log.Warn("No stock photo provider configured, image slides will use placeholders")
		}
	}

	// Resource governor keeps the process-wide memory baseline
	gov := governor.New(governor.NewMemoryReader(), governor.Options{
		SlideThresholdMB: cfg.GenerationCfg.SlideThresholdMB,
		CleanupPasses:    cfg.GenerationCfg.CleanupPasses,
	}, log)
	gov.EstablishBaseline()
	log.Info("Memory baseline established", zap.Float64("baseline_mb", gov.BaselineMB()))

	deckPipeline := pipeline.New(
		extractor.NewExtractor(cfg.ExtractorCfg, log),
		generator,
		visual.NewSynthesizer(imageSearcher),
		renderer.New(log),
		gov,
		cfg.OutputDir,
	)
	log.Info("Pipeline initialized", zap.String("output_dir", cfg.OutputDir))

	// Initialize use cases
	userUC := user.NewUsecase(userRepo, cfg.Plans, cfg.AdminCfg, log)
	presentationUC := presentation.NewUsecase(
		jobRepo,
		userUC,
		deckPipeline,
		validator.NewValidator(cfg.GenerationCfg),
		gov,
		generator.Name(),
		cfg.PublicBaseURL,
		log,
	)
	log.Info("Use cases initialized")

	// Setup API handlers
	presentationHandler := presentationapi.NewHandler(presentationUC)
	userHandler := userapi.NewHandler(userUC)
	log.Info("API handlers initialized")

	// Setup router
	router := api.SetupRouter(presentationHandler, userHandler, docs.DefaultSpecPath, log)
	log.Info("HTTP router configured")

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server: server,
		db:     db,
		logger: log,
	}, nil
}

// setupStorage opens the configured job and user stores. The pool is nil for the memory driver.
func setupStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (*pgxpool.Pool, repository.JobRepository, repository.UserRepository, error) {
	if cfg.StorageDriver != config.StoragePostgres {
		return nil, repository.NewJobMemory(cfg.JobTTL), repository.NewUserMemory(), nil
	}

	db, err := setupDatabase(ctx, cfg, log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("setup database: %w", err)
	}

	log.Info("Running database migrations")
	if err := repository.RunMigrations(cfg.DatabaseURL, repository.DefaultMigrationsPath); err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("run migrations: %w", err)
	}
	log.Info("Database migrations completed successfully")

	return db, repository.NewJobPostgres(db), repository.NewUserPostgres(db), nil
}
