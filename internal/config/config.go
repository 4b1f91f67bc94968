package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/futig/deck-backend/internal/entity"
	pkgRetry "github.com/futig/deck-backend/internal/pkg/retry"
	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	LLMProviderOllama = "ollama"
	LLMProviderOpenAI = "openai"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr         string        `env:"SERVER_ADDR,notEmpty"`
	ServerReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	ServerWriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"60s"`
	PublicBaseURL      string        `env:"PUBLIC_BASE_URL"`

	// Storage configuration
	StorageDriver       string        `env:"STORAGE_DRIVER" envDefault:"memory"`
	DatabaseURL         string        `env:"DATABASE_URL"`
	DBMaxConns          int           `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns          int           `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`
	JobTTL              time.Duration `env:"JOB_TTL" envDefault:"24h"`

	// External service configurations
	LLMConnectorCfg    LLMConnectorConfig    `envPrefix:"LLM_"`
	ImagesConnectorCfg ImagesConnectorConfig `envPrefix:"IMAGES_"`
	ExtractorCfg       ExtractorConfig       `envPrefix:"EXTRACT_"`

	// Generation configuration
	GenerationCfg GenerationConfig `envPrefix:"GENERATION_"`

	// Admin configuration
	AdminCfg AdminConfig `envPrefix:"ADMIN_"`

	// Output directory for generated presentations
	OutputDir string `env:"OUTPUT_DIR" envDefault:"output"`

	// Optional metered key for the office document library
	UniofficeLicenseKey string `env:"UNIOFFICE_LICENSE_KEY"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Subscription plans (loaded from JSON file)
	Plans []entity.Plan

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Environment (set from flag, not from env var)
	Environment string
}

type LLMConnectorConfig struct {
	HTTPClientConfig
	Provider         string  `env:"PROVIDER" envDefault:"ollama"`
	Model            string  `env:"MODEL" envDefault:"qwen2.5:7b-instruct"`
	GenerateEndpoint string  `env:"GENERATE_ENDPOINT" envDefault:"/api/generate"`
	Temperature      float64 `env:"TEMPERATURE" envDefault:"0.7"`
	TopP             float64 `env:"TOP_P" envDefault:"0.9"`
	NumCtx           int     `env:"NUM_CTX" envDefault:"2048"`
	NumPredict       int     `env:"NUM_PREDICT" envDefault:"1024"`
	RepeatPenalty    float64 `env:"REPEAT_PENALTY" envDefault:"1.1"`
}

type ImagesConnectorConfig struct {
	HTTPClientConfig
	UnsplashURL    string               `env:"UNSPLASH_URL" envDefault:"https://api.unsplash.com"`
	UnsplashKey    string               `env:"UNSPLASH_ACCESS_KEY"`
	PexelsURL      string               `env:"PEXELS_URL" envDefault:"https://api.pexels.com"`
	PexelsKey      string               `env:"PEXELS_API_KEY"`
	MaxImageSize   int                  `env:"MAX_SIZE" envDefault:"2048"`
	JPEGQuality    int                  `env:"JPEG_QUALITY" envDefault:"85"`
	MaxDownloadMiB int64                `env:"MAX_DOWNLOAD_MIB" envDefault:"15"`
	Retry          pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type ExtractorConfig struct {
	HTTPClientConfig
	UserAgent      string `env:"USER_AGENT" envDefault:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"`
	MaxChars       int    `env:"MAX_CHARS" envDefault:"25000"`
	MinChars       int    `env:"MIN_CHARS" envDefault:"100"`
	MinLineLength  int    `env:"MIN_LINE_LENGTH" envDefault:"20"`
	MaxDownloadMiB int64  `env:"MAX_DOWNLOAD_MIB" envDefault:"10"`
}

type GenerationConfig struct {
	DefaultDesignStyle string  `env:"DEFAULT_DESIGN_STYLE" envDefault:"minimal_1"`
	DefaultSlideCount  int     `env:"DEFAULT_SLIDE_COUNT" envDefault:"3"`
	SlideThresholdMB   float64 `env:"SLIDE_THRESHOLD_MB" envDefault:"500"`
	CleanupPasses      int     `env:"CLEANUP_PASSES" envDefault:"3"`
}

type AdminConfig struct {
	Password       string        `env:"PASSWORD"`
	SessionTimeout time.Duration `env:"SESSION_TIMEOUT" envDefault:"1h"`
	// PlanUpgrades allows switching to paid plans without a payment integration
	PlanUpgrades bool `env:"PLAN_UPGRADES" envDefault:"false"`
	MaxSlides    int  `env:"MAX_SLIDES" envDefault:"50"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL"`
}

// plansFile represents the structure of plans.json
type plansFile struct {
	Plans []entity.Plan `json:"plans"`
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg, err := Parse()
	if err != nil {
		return nil, err
	}

	cfg.Environment = *envFlag

	// Load subscription plans from JSON file
	if err := loadPlans(cfg, filepath.Join("internal", "config", "plans.json")); err != nil {
		return nil, fmt.Errorf("load plans: %w", err)
	}

	return cfg, nil
}

// Parse reads the configuration from the process environment, applies defaults and validates it
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.LLMConnectorCfg.RequestTimeout == 0 {
		cfg.LLMConnectorCfg.RequestTimeout = 120 * time.Second
	}
	if cfg.LLMConnectorCfg.ResponseHeaderTimeout == 0 {
		cfg.LLMConnectorCfg.ResponseHeaderTimeout = cfg.LLMConnectorCfg.RequestTimeout
	}
	if cfg.LLMConnectorCfg.Url == "" && cfg.LLMConnectorCfg.Provider == LLMProviderOllama {
		cfg.LLMConnectorCfg.Url = "http://localhost:11434"
	}

	if cfg.ExtractorCfg.RequestTimeout == 0 {
		cfg.ExtractorCfg.RequestTimeout = 20 * time.Second
	}

	if cfg.ImagesConnectorCfg.RequestTimeout == 0 {
		cfg.ImagesConnectorCfg.RequestTimeout = 15 * time.Second
	}

	retryCfg := &cfg.ImagesConnectorCfg.Retry
	if retryCfg.Attempts == 0 {
		*retryCfg = *pkgRetry.DefaultRetryConfig()
	}

	if len(cfg.Plans) == 0 {
		cfg.Plans = DefaultPlans()
	}
}

func validateConfig(cfg *Config) error {
	var errs []string

	switch cfg.StorageDriver {
	case StorageMemory:
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			errs = append(errs, "DATABASE_URL is required when STORAGE_DRIVER=postgres")
		}
	default:
		errs = append(errs, fmt.Sprintf("STORAGE_DRIVER must be %q or %q, got %q", StorageMemory, StoragePostgres, cfg.StorageDriver))
	}

	// Validate Database configuration
	if cfg.DBMaxConns < 1 || cfg.DBMaxConns > 200 {
		errs = append(errs, fmt.Sprintf("DB_MAX_CONNS must be between 1 and 200, got %d", cfg.DBMaxConns))
	}

	if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
		errs = append(errs, fmt.Sprintf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", cfg.DBMaxConns, cfg.DBMinConns))
	}

	switch cfg.LLMConnectorCfg.Provider {
	case LLMProviderOllama, LLMProviderOpenAI:
	default:
		errs = append(errs, fmt.Sprintf("LLM_PROVIDER must be %q or %q, got %q", LLMProviderOllama, LLMProviderOpenAI, cfg.LLMConnectorCfg.Provider))
	}

	if cfg.LLMConnectorCfg.Provider == LLMProviderOpenAI && cfg.LLMConnectorCfg.Token == "" && !cfg.EnableMocks {
		errs = append(errs, "LLM_TOKEN is required when LLM_PROVIDER=openai")
	}

	if cfg.ExtractorCfg.MaxChars < cfg.ExtractorCfg.MinChars {
		errs = append(errs, fmt.Sprintf("EXTRACT_MAX_CHARS(%d) must not be less than EXTRACT_MIN_CHARS(%d)", cfg.ExtractorCfg.MaxChars, cfg.ExtractorCfg.MinChars))
	}

	if cfg.ImagesConnectorCfg.MaxImageSize < 64 || cfg.ImagesConnectorCfg.MaxImageSize > 8192 {
		errs = append(errs, fmt.Sprintf("IMAGES_MAX_SIZE must be between 64 and 8192, got %d", cfg.ImagesConnectorCfg.MaxImageSize))
	}

	if cfg.ImagesConnectorCfg.JPEGQuality < 1 || cfg.ImagesConnectorCfg.JPEGQuality > 100 {
		errs = append(errs, fmt.Sprintf("IMAGES_JPEG_QUALITY must be between 1 and 100, got %d", cfg.ImagesConnectorCfg.JPEGQuality))
	}

	if cfg.GenerationCfg.DefaultSlideCount < 1 {
		errs = append(errs, fmt.Sprintf("GENERATION_DEFAULT_SLIDE_COUNT must be positive, got %d", cfg.GenerationCfg.DefaultSlideCount))
	}

	if cfg.GenerationCfg.CleanupPasses < 1 || cfg.GenerationCfg.CleanupPasses > 10 {
		errs = append(errs, fmt.Sprintf("GENERATION_CLEANUP_PASSES must be between 1 and 10, got %d", cfg.GenerationCfg.CleanupPasses))
	}

	if cfg.AdminCfg.SessionTimeout < time.Minute {
		errs = append(errs, fmt.Sprintf("ADMIN_SESSION_TIMEOUT must be at least 1m, got %s", cfg.AdminCfg.SessionTimeout))
	}

	if cfg.JobTTL < time.Minute {
		errs = append(errs, fmt.Sprintf("JOB_TTL must be at least 1m, got %s", cfg.JobTTL))
	}

	if len(errs) > 0 {
		return errors.New("configuration validation errors:\n  - " + strings.Join(errs, "\n  - "))
	}

	return nil
}

// DefaultPlans returns the built-in subscription plan table
func DefaultPlans() []entity.Plan {
	return []entity.Plan{
		{
			Name:        entity.PlanFree,
			DisplayName: "Free",
			DailyLimit:  3,
			TotalLimit:  3,
			MaxSlides:   5,
			Features:    []string{"3 presentations", "up to 5 slides", "basic designs"},
		},
		{
			Name:           entity.PlanElite,
			DisplayName:    "Elite",
			DailyLimit:     5,
			MaxSlides:      15,
			VisualElements: true,
			PriceRub:       100,
			Features:       []string{"5 presentations per day", "up to 15 slides", "charts, tables and images"},
		},
		{
			Name:           entity.PlanPro,
			DisplayName:    "Pro",
			DailyLimit:     10,
			MaxSlides:      10,
			VisualElements: true,
			PriceRub:       250,
			Features:       []string{"10 presentations per day", "up to 10 slides", "all designs"},
		},
		{
			Name:           entity.PlanPremium,
			DisplayName:    "Premium",
			DailyLimit:     20,
			MaxSlides:      20,
			VisualElements: true,
			PriceRub:       500,
			Features:       []string{"20 presentations per day", "up to 20 slides", "all designs", "priority processing"},
		},
	}
}

func loadPlans(cfg *Config, path string) error {
	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Printf("Warning: plans file not found at %s, using default plans\n", path)
		cfg.Plans = DefaultPlans()
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read plans file: %w", err)
	}

	if len(data) == 0 {
		return fmt.Errorf("plans file is empty: %s", path)
	}

	var parsed plansFile
	if err := json.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("parse plans JSON: %w", err)
	}

	if len(parsed.Plans) == 0 {
		return fmt.Errorf("plans file contains no plans: %s", path)
	}

	for _, p := range parsed.Plans {
		if err := p.Name.Validate(); err != nil {
			return err
		}
		if p.MaxSlides < 1 {
			return fmt.Errorf("plan %s: max_slides must be positive", p.Name)
		}
	}

	cfg.Plans = parsed.Plans

	fmt.Printf("Loaded %d plans from %s\n", len(cfg.Plans), path)
	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
