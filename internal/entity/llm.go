package entity

// GenerationRequest is the bounded input handed to a text generator.
// It is built once per run and consumed exactly once.
type GenerationRequest struct {
	Corpus     string `json:"corpus"`
	Task       string `json:"task"`
	SlideCount int    `json:"slide_count"`
	// Prompt is the rendered instruction text, including the output schema
	Prompt string `json:"prompt"`
}

// GenerationResult is the outcome of a text generation call.
// Unavailable is set when the backend could not be reached or errored;
// callers switch to the deterministic generator on that variant.
type GenerationResult struct {
	Text        string
	Unavailable bool
	Reason      string
}

// Generated builds a successful result
func Generated(text string) GenerationResult {
	return GenerationResult{Text: text}
}

// Unavailable builds a failed result with the reason the backend gave
func Unavailable(reason string) GenerationResult {
	return GenerationResult{Unavailable: true, Reason: reason}
}

// OllamaGenerateRequest is the body of POST /api/generate
type OllamaGenerateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options OllamaOptions `json:"options"`
}

type OllamaOptions struct {
	Temperature   float64 `json:"temperature"`
	TopP          float64 `json:"top_p"`
	NumCtx        int     `json:"num_ctx"`
	NumPredict    int     `json:"num_predict"`
	RepeatPenalty float64 `json:"repeat_penalty"`
}

type OllamaGenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// SlidesDocument is the structured object a generator is asked to emit
type SlidesDocument struct {
	Slides []RawSlide `json:"slides"`
}

// RawSlide is one slide exactly as the generator returned it
type RawSlide struct {
	SlideType string   `json:"slide_type"`
	Title     string   `json:"title"`
	Bullets   []string `json:"bullets"`
}
