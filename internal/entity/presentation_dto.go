package entity

import "time"

type GenerateRequest struct {
	UserID            string            `json:"user_id"`
	URL               string            `json:"url"`
	Task              string            `json:"task"`
	DesignStyle       string            `json:"design_style,omitempty"`
	SlideCount        int               `json:"slide_count,omitempty"`
	VisualPreferences VisualPreferences `json:"visual_preferences"`
	VisualMode        VisualMode        `json:"visual_mode,omitempty"`
}

type GenerateResponse struct {
	JobID  string    `json:"job_id"`
	Status JobStatus `json:"status"`
}

type JobDTO struct {
	JobID       string            `json:"job_id"`
	Status      JobStatus         `json:"status"`
	Task        string            `json:"task"`
	DesignStyle string            `json:"design_style"`
	SlideCount  int               `json:"slide_count"`
	DownloadURL string            `json:"download_url,omitempty"`
	Error       *string           `json:"error,omitempty"`
	Rating      PerformanceRating `json:"performance_rating,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

type FileInfoDTO struct {
	Filename    string    `json:"filename"`
	Size        int64     `json:"size"`
	SizeMB      float64   `json:"size_mb"`
	CreatedAt   time.Time `json:"created_at"`
	DownloadURL string    `json:"download_url"`
}

type DesignStyleDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Family     string `json:"family"`
	Title      string `json:"title_color"`
	Body       string `json:"body_color"`
	Accent     string `json:"accent_color"`
	Background string `json:"background_color"`
}

type HealthDTO struct {
	Status     string   `json:"status"`
	Version    string   `json:"version"`
	Jobs       JobStats `json:"jobs"`
	MemoryMB   float64  `json:"memory_mb"`
	TextEngine string   `json:"text_engine"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type OutlineFormat string

const (
	FormatMarkdown OutlineFormat = "markdown"
	FormatDOCX     OutlineFormat = "docx"
	FormatPDF      OutlineFormat = "pdf"
)

func (f OutlineFormat) IsValid() bool {
	switch f {
	case FormatMarkdown, FormatDOCX, FormatPDF:
		return true
	default:
		return false
	}
}

// Outline is the slide content of a finished job, exported without visuals
type Outline struct {
	Task   string        `json:"task"`
	Slides []SlideRecord `json:"slides"`
}
