package entity

import (
	"fmt"
	"time"
)

type SlideRole string

const (
	SlideRoleTitle   SlideRole = "title"
	SlideRoleContent SlideRole = "content"
)

// SlideRecord is a validated, role-tagged content unit produced by parsing generator output.
// Title records never carry bullets; the first bullet the generator gave a title slide is kept as Subtitle.
type SlideRecord struct {
	Role     SlideRole `json:"slide_type"`
	Title    string    `json:"title"`
	Subtitle string    `json:"subtitle,omitempty"`
	Bullets  []string  `json:"bullets"`
}

// ResourceSample is a point-in-time reading of run resource usage
type ResourceSample struct {
	Elapsed         time.Duration
	MemoryDeltaMB   float64
	SlidesProcessed int
}

type VisualKind string

const (
	VisualNone     VisualKind = "none"
	VisualImage    VisualKind = "image"
	VisualChartBar VisualKind = "chart-bar"
	VisualChartPie VisualKind = "chart-pie"
	VisualTable    VisualKind = "table"
)

// VisualMode selects whether keyword overrides may replace the base distribution pattern
type VisualMode string

const (
	VisualModePattern VisualMode = "pattern"
	VisualModeAuto    VisualMode = "auto"
)

func (m VisualMode) Validate() error {
	switch m {
	case VisualModePattern, VisualModeAuto:
		return nil
	default:
		return fmt.Errorf("%w: unknown visual mode %q", ErrValidation, m)
	}
}

// VisualPreferences gates which visual kinds a deck may contain
type VisualPreferences struct {
	Image bool `json:"image"`
	Chart bool `json:"chart"`
	Pie   bool `json:"pie"`
	Table bool `json:"table"`
}

// Any reports whether at least one visual kind is enabled
func (p VisualPreferences) Any() bool {
	return p.Image || p.Chart || p.Pie || p.Table
}

// Allows reports whether the given kind is enabled by the preferences
func (p VisualPreferences) Allows(kind VisualKind) bool {
	switch kind {
	case VisualImage:
		return p.Image
	case VisualChartBar:
		return p.Chart
	case VisualChartPie:
		return p.Pie
	case VisualTable:
		return p.Table
	default:
		return false
	}
}

// Region is a rectangle on the slide canvas, in inches
type Region struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right returns the x coordinate of the right edge
func (r Region) Right() float64 {
	return r.Left + r.Width
}

// Bottom returns the y coordinate of the bottom edge
func (r Region) Bottom() float64 {
	return r.Top + r.Height
}

// IsZero reports whether the region is unset
func (r Region) IsZero() bool {
	return r.Width == 0 && r.Height == 0
}

// SlideLayout holds the computed regions of a single slide.
// Subtitle is set only for title slides; Visual only when a visual is placed.
type SlideLayout struct {
	Title    Region `json:"title"`
	Subtitle Region `json:"subtitle,omitempty"`
	Body     Region `json:"body,omitempty"`
	Visual   Region `json:"visual,omitempty"`
}

// VisualAsset is the binary visual placed into a slide's visual region.
// A placeholder asset carries no bytes and is drawn as a labeled box.
type VisualAsset struct {
	Kind        VisualKind
	Data        []byte
	Placeholder bool
	Label       string
}

// SlideDescription is everything the renderer needs to draw one slide
type SlideDescription struct {
	Index    int
	Role     SlideRole
	Title    string
	Subtitle string
	Bullets  []string
	Layout   SlideLayout
	Visual   *VisualAsset
}

// DeckDescription is the ordered set of slides handed to the renderer
type DeckDescription struct {
	DesignStyle string
	Slides      []SlideDescription
}
