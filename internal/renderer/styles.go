package renderer

import (
	"fmt"
	"strings"

	"github.com/futig/deck-backend/internal/entity"
	"github.com/futig/deck-backend/internal/visual"
)

// DefaultStyle is the known-safe style used by the degrade-and-retry render path
const DefaultStyle = "minimal_1"

type GradientDirection string

const (
	GradientNone     GradientDirection = ""
	GradientVertical GradientDirection = "vertical"
	GradientDiagonal GradientDirection = "diagonal"
)

// Style is a named colour scheme. Background holds one colour for a solid fill or two for a gradient.
type Style struct {
	ID         string
	Name       string
	Title      string
	Body       string
	Accent     string
	Background []string
	Direction  GradientDirection
}

// Family is the style id prefix, e.g. "corporate"
func (s Style) Family() string {
	family, _, _ := strings.Cut(s.ID, "_")
	return family
}

// Theme returns the colours visual assets are drawn with
func (s Style) Theme() visual.Theme {
	return visual.Theme{
		Accent:     s.Accent,
		Text:       "#2c3e50",
		Background: "#ffffff",
	}
}

var families = map[string]string{
	"minimal":   "Clean & Simple",
	"corporate": "Professional & Business",
	"tech":      "Modern & Technical",
	"modern":    "Contemporary & Stylish",
	"creative":  "Bold & Artistic",
	"academic":  "Educational & Scholarly",
}

var catalogue = []Style{
	{ID: "minimal_1", Name: "Pure White", Title: "#2c3e50", Body: "#34495e", Accent: "#3498db", Background: []string{"#ffffff"}},
	{ID: "minimal_2", Name: "Soft Gray", Title: "#2c3e50", Body: "#34495e", Accent: "#95a5a6", Background: []string{"#f8f9fa", "#e9ecef"}, Direction: GradientVertical},
	{ID: "minimal_3", Name: "Ivory Elegance", Title: "#8b4513", Body: "#a0522d", Accent: "#daa520", Background: []string{"#fff8dc", "#f5f5dc"}, Direction: GradientVertical},

	{ID: "corporate_1", Name: "Navy Blue", Title: "#ffffff", Body: "#f8f9fa", Accent: "#ffd700", Background: []string{"#1e3a8a", "#3b82f6"}, Direction: GradientDiagonal},
	{ID: "corporate_2", Name: "Deep Blue", Title: "#ffffff", Body: "#f1f5f9", Accent: "#60a5fa", Background: []string{"#1e40af", "#2563eb"}, Direction: GradientVertical},
	{ID: "corporate_3", Name: "Charcoal", Title: "#ffffff", Body: "#e5e7eb", Accent: "#10b981", Background: []string{"#374151", "#4b5563"}, Direction: GradientDiagonal},

	{ID: "tech_1", Name: "Dark Tech", Title: "#ffffff", Body: "#e5e7eb", Accent: "#06b6d4", Background: []string{"#0f172a", "#1e293b"}, Direction: GradientDiagonal},
	{ID: "tech_2", Name: "Cyber Blue", Title: "#ffffff", Body: "#f0f9ff", Accent: "#0ea5e9", Background: []string{"#0c4a6e", "#0369a1"}, Direction: GradientVertical},

	{ID: "modern_1", Name: "Gradient Blue", Title: "#ffffff", Body: "#f8fafc", Accent: "#f59e0b", Background: []string{"#3b82f6", "#8b5cf6"}, Direction: GradientDiagonal},
	{ID: "modern_2", Name: "Sunset Glow", Title: "#ffffff", Body: "#fef3c7", Accent: "#dc2626", Background: []string{"#f59e0b", "#ef4444"}, Direction: GradientDiagonal},

	{ID: "creative_1", Name: "Sunset Orange", Title: "#ffffff", Body: "#fef3c7", Accent: "#dc2626", Background: []string{"#f97316", "#ef4444"}, Direction: GradientDiagonal},
	{ID: "creative_2", Name: "Vibrant Pink", Title: "#ffffff", Body: "#fdf2f8", Accent: "#06b6d4", Background: []string{"#ec4899", "#8b5cf6"}, Direction: GradientDiagonal},

	{ID: "academic_1", Name: "Forest Green", Title: "#ffffff", Body: "#f0fdf4", Accent: "#fbbf24", Background: []string{"#166534", "#15803d"}, Direction: GradientVertical},
	{ID: "academic_2", Name: "Oxford Blue", Title: "#ffffff", Body: "#eff6ff", Accent: "#f59e0b", Background: []string{"#1e3a8a", "#2563eb"}, Direction: GradientVertical},
}

// Lookup returns the style with the given id
func Lookup(id string) (Style, error) {
	for _, s := range catalogue {
		if s.ID == id {
			return s, nil
		}
	}
	return Style{}, fmt.Errorf("%w: %q", entity.ErrUnknownDesignStyle, id)
}

// Styles lists the catalogue in display order
func Styles() []Style {
	out := make([]Style, len(catalogue))
	copy(out, catalogue)
	return out
}

// FamilyName is the human readable description of a style family
func FamilyName(family string) string {
	return families[family]
}
