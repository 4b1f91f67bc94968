package validator

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/futig/deck-backend/internal/config"
	"github.com/futig/deck-backend/internal/entity"
)

const (
	minURLLength  = 10
	maxTaskLength = 500
)

// Validator checks and normalizes generation requests
type Validator struct {
	cfg config.GenerationConfig
}

func NewValidator(cfg config.GenerationConfig) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateGenerate fills defaults into req and checks it against the caller's slide limit.
// Design style ids are not checked here: an unknown style falls back to the default at render time.
func (v *Validator) ValidateGenerate(req *entity.GenerateRequest, maxSlides int) error {
	req.Task = strings.TrimSpace(req.Task)
	req.URL = strings.TrimSpace(req.URL)

	if req.UserID == "" {
		return fmt.Errorf("%w: user_id", entity.ErrMissingField)
	}
	if req.Task == "" {
		return fmt.Errorf("%w: task", entity.ErrMissingField)
	}
	if len([]rune(req.Task)) > maxTaskLength {
		return fmt.Errorf("%w: task is longer than %d characters", entity.ErrInvalidParameter, maxTaskLength)
	}
	if req.URL == "" {
		return fmt.Errorf("%w: url", entity.ErrMissingField)
	}
	if !strings.HasPrefix(req.URL, "http://") && !strings.HasPrefix(req.URL, "https://") {
		return fmt.Errorf("%w: url must start with http:// or https://", entity.ErrInvalidFormat)
	}
	if len(req.URL) < minURLLength {
		return fmt.Errorf("%w: url is too short", entity.ErrInvalidFormat)
	}

	if req.SlideCount == 0 {
		req.SlideCount = v.cfg.DefaultSlideCount
	}
	if req.SlideCount < 1 || req.SlideCount > maxSlides {
		return fmt.Errorf("%w: slide_count must be between 1 and %d", entity.ErrInvalidParameter, maxSlides)
	}

	if req.DesignStyle == "" {
		req.DesignStyle = v.cfg.DefaultDesignStyle
	}

	if req.VisualMode == "" {
		req.VisualMode = entity.VisualModePattern
	}
	if err := req.VisualMode.Validate(); err != nil {
		return fmt.Errorf("%w: visual_mode must be pattern or auto", entity.ErrInvalidParameter)
	}

	return nil
}

// SanitizeFilename keeps only the base name and strips characters unsafe in headers
func SanitizeFilename(filename string) string {
	filename = filepath.Base(filename)
	replacer := strings.NewReplacer(
		" ", "_",
		"\"", "",
		"(", "",
		")", "",
		"[", "",
		"]", "",
		"{", "",
		"}", "",
	)
	return replacer.Replace(filename)
}
