// Package layout computes slide regions on a fixed 16:9 canvas measured in inches.
// Everything here is a pure function of the slide role, the visual flag and the capped content.
package layout

import (
	"strings"

	"github.com/futig/deck-backend/internal/entity"
	"github.com/futig/deck-backend/internal/pkg/textutil"
)

const (
	CanvasWidth  = 13.333
	CanvasHeight = 7.5
	Margin       = 1.5

	// ContentWidth is the canvas width between the side margins
	ContentWidth = CanvasWidth - 2*Margin

	titleSlideTop    = 0.35 * CanvasHeight
	titleSlideHeight = 1.5
	subtitleGap      = 0.3
	subtitleHeight   = 0.8

	contentTitleHeight = 0.8
	bodyGap            = 0.4
	textColumnShare    = 0.55

	visualLeftShare        = 0.60
	visualWidthShare       = 0.35
	visualHeightShare      = 0.50
	placeholderHeightShare = 0.40
	visualTopOffset        = 1.5

	// MaxBodyBullets is the number of bullets drawn on a content slide
	MaxBodyBullets = 4
	// MaxBodyBulletLength includes the bullet marker
	MaxBodyBulletLength = 80

	BulletMarker = "•"
)

// Layout returns the regions for a slide of the given role.
// Title slides always get a subtitle region; Describe drops it when there is no subtitle text.
func Layout(role entity.SlideRole, hasVisual bool) entity.SlideLayout {
	if role == entity.SlideRoleTitle {
		title := entity.Region{
			Left:   Margin,
			Top:    titleSlideTop,
			Width:  ContentWidth,
			Height: titleSlideHeight,
		}
		return entity.SlideLayout{
			Title: title,
			Subtitle: entity.Region{
				Left:   Margin,
				Top:    title.Bottom() + subtitleGap,
				Width:  ContentWidth,
				Height: subtitleHeight,
			},
		}
	}

	title := entity.Region{
		Left:   Margin,
		Top:    Margin,
		Width:  ContentWidth * textColumnShare,
		Height: contentTitleHeight,
	}

	bodyTop := title.Bottom() + bodyGap
	out := entity.SlideLayout{
		Title: title,
		Body: entity.Region{
			Left:   Margin,
			Top:    bodyTop,
			Width:  title.Width,
			Height: CanvasHeight - bodyTop - Margin,
		},
	}

	if hasVisual {
		out.Visual = VisualRegion(false)
	}

	return out
}

// VisualRegion is the right-hand visual area; placeholders are drawn shorter
func VisualRegion(placeholder bool) entity.Region {
	heightShare := visualHeightShare
	if placeholder {
		heightShare = placeholderHeightShare
	}

	return entity.Region{
		Left:   CanvasWidth * visualLeftShare,
		Top:    Margin + visualTopOffset,
		Width:  CanvasWidth * visualWidthShare,
		Height: CanvasHeight * heightShare,
	}
}

// Body keeps the first MaxBodyBullets bullets, adds the marker and truncates long lines
func Body(bullets []string) []string {
	out := make([]string, 0, MaxBodyBullets)
	for _, b := range bullets {
		if len(out) == MaxBodyBullets {
			break
		}
		b = strings.TrimSpace(b)
		if b == "" {
			continue
		}
		if !strings.HasPrefix(b, BulletMarker) {
			b = BulletMarker + " " + b
		}
		out = append(out, textutil.Truncate(b, MaxBodyBulletLength))
	}
	return out
}

// Describe combines a record with its regions
func Describe(index int, rec entity.SlideRecord, hasVisual bool) entity.SlideDescription {
	desc := entity.SlideDescription{
		Index:  index,
		Role:   rec.Role,
		Title:  rec.Title,
		Layout: Layout(rec.Role, hasVisual && rec.Role == entity.SlideRoleContent),
	}

	if rec.Role == entity.SlideRoleTitle {
		if rec.Subtitle != "" {
			desc.Subtitle = rec.Subtitle
		} else {
			desc.Layout.Subtitle = entity.Region{}
		}
		return desc
	}

	desc.Bullets = Body(rec.Bullets)
	return desc
}

// UsePlaceholder shrinks the visual region for a placeholder box
func UsePlaceholder(desc *entity.SlideDescription) {
	desc.Layout.Visual = VisualRegion(true)
}
