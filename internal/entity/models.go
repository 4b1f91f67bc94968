package entity

import (
	"fmt"
	"time"
)

type JobStatus string

// Job status represents the lifecycle of a single deck generation request
const (
	JobStatusPending    JobStatus = "PENDING"    // Job accepted, waiting for a worker
	JobStatusProcessing JobStatus = "PROCESSING" // Pipeline is running
	JobStatusDone       JobStatus = "DONE"       // Presentation file is ready
	JobStatusFailed     JobStatus = "FAILED"     // Pipeline surfaced an error
)

func (s JobStatus) IsFinal() bool {
	return s == JobStatusDone || s == JobStatusFailed
}

type Job struct {
	ID                string            `json:"job_id"`
	UserID            string            `json:"user_id"`
	Task              string            `json:"task"`
	URL               string            `json:"url"`
	DesignStyle       string            `json:"design_style"`
	VisualPreferences VisualPreferences `json:"visual_preferences"`
	VisualMode        VisualMode        `json:"visual_mode"`
	SlideCount        int               `json:"slide_count"`
	Status            JobStatus         `json:"status"`
	OutputPath        *string           `json:"output_path,omitempty"`
	Error             *string           `json:"error,omitempty"`
	Outline           []SlideRecord     `json:"outline,omitempty"`
	Report            *ResourceReport   `json:"report,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// JobStats is an aggregate over all stored jobs
type JobStats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Done       int `json:"done"`
	Failed     int `json:"failed"`
}

type PerformanceRating string

const (
	RatingExcellent  PerformanceRating = "EXCELLENT"
	RatingGood       PerformanceRating = "GOOD"
	RatingAcceptable PerformanceRating = "ACCEPTABLE"
	RatingPoor       PerformanceRating = "POOR"
)

// ResourceReport summarizes the resource usage of one pipeline run.
// It is informational only.
type ResourceReport struct {
	TotalTime       time.Duration     `json:"total_time"`
	SlidesProcessed int               `json:"slides_processed"`
	MemoryDeltaMB   float64           `json:"memory_delta_mb"`
	PeakMemoryMB    float64           `json:"peak_memory_mb"`
	Warnings        int               `json:"warnings"`
	TimePerSlide    time.Duration     `json:"time_per_slide"`
	Rating          PerformanceRating `json:"rating"`
}

type PlanName string

const (
	PlanFree    PlanName = "free"
	PlanElite   PlanName = "elite"
	PlanPro     PlanName = "pro"
	PlanPremium PlanName = "premium"
)

func (p PlanName) Validate() error {
	switch p {
	case PlanFree, PlanElite, PlanPro, PlanPremium:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrInvalidPlan, p)
	}
}

// Plan describes the limits of a subscription plan. Zero TotalLimit means unlimited.
type Plan struct {
	Name           PlanName `json:"name"`
	DisplayName    string   `json:"display_name"`
	DailyLimit     int      `json:"daily_limit"`
	TotalLimit     int      `json:"total_limit"`
	MaxSlides      int      `json:"max_slides"`
	VisualElements bool     `json:"visual_elements"`
	PriceRub       int      `json:"price_rub"`
	Features       []string `json:"features"`
}

type User struct {
	ID           string     `json:"user_id"`
	Plan         PlanName   `json:"plan"`
	DailyUsage   int        `json:"daily_usage"`
	TotalUsage   int        `json:"total_usage"`
	LastReset    time.Time  `json:"last_reset"`
	IsAdmin      bool       `json:"is_admin"`
	AdminExpires *time.Time `json:"admin_expires,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type LimitType string

const (
	LimitNone  LimitType = ""
	LimitDaily LimitType = "daily"
	LimitTotal LimitType = "total"
)

// QuotaDecision is the result of a pre-generation quota check
type QuotaDecision struct {
	Allowed   bool      `json:"allowed"`
	Reason    string    `json:"reason,omitempty"`
	LimitType LimitType `json:"limit_type,omitempty"`
	MaxSlides int       `json:"max_slides"`
	Visuals   bool      `json:"visual_elements"`
}
