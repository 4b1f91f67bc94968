// Package visual assigns a visual kind to every content slide and synthesizes the chart, table and image assets.
package visual

import (
	"strings"

	"github.com/futig/deck-backend/internal/entity"
)

var (
	kindImage = entity.VisualImage
	kindBar   = entity.VisualChartBar
	kindPie   = entity.VisualChartPie
	kindTable = entity.VisualTable
)

// Base patterns by total slide count tier, indexed by content slide position (slide index - 1)
var (
	patternSmall  = []entity.VisualKind{kindImage, kindBar, kindTable, kindPie, kindImage}
	patternMedium = []entity.VisualKind{kindImage, kindBar, kindTable, kindPie, kindImage, kindBar, kindTable, kindPie, kindImage, kindBar}
	patternLarge  = []entity.VisualKind{kindImage, kindBar, kindPie, kindTable, kindImage, kindBar, kindTable, kindPie, kindImage, kindBar, kindPie, kindTable, kindImage, kindBar, kindTable}
	cycleHuge     = []entity.VisualKind{kindImage, kindBar, kindPie, kindTable, kindImage, kindBar, kindTable, kindPie}
	cycleFallback = []entity.VisualKind{kindImage, kindBar, kindTable, kindPie}
)

type keywordRule struct {
	kind     entity.VisualKind
	keywords []string
}

// overrideRules are checked in order; the first rule with a matching keyword wins
var overrideRules = []keywordRule{
	{kind: kindBar, keywords: []string{"revenue", "quarterly", "performance", "growth", "trends", "monthly"}},
	{kind: kindPie, keywords: []string{"distribution", "segment", "channel", "portfolio", "mix"}},
	{kind: kindTable, keywords: []string{"metrics", "kpi", "financial", "summary", "analysis", "competitive"}},
}

// BaseKind returns the pattern assignment for slide index in a deck of total slides.
// It depends only on its arguments; index 0 is the title slide and gets none.
func BaseKind(index, total int) entity.VisualKind {
	if index <= 0 {
		return entity.VisualNone
	}

	pos := index - 1

	var pattern []entity.VisualKind
	switch {
	case total <= 5:
		pattern = patternSmall
	case total <= 10:
		pattern = patternMedium
	case total <= 15:
		pattern = patternLarge
	default:
		return cycleHuge[pos%len(cycleHuge)]
	}

	if index >= total || pos >= len(pattern) {
		return cycleFallback[pos%len(cycleFallback)]
	}

	return pattern[pos]
}

// Allocate assigns the visual kind for a slide.
// In auto mode a keyword match in the slide text replaces the base kind; otherwise the base kind stands.
func Allocate(index, total int, rec entity.SlideRecord, mode entity.VisualMode) entity.VisualKind {
	base := BaseKind(index, total)
	if base == entity.VisualNone || mode != entity.VisualModeAuto {
		return base
	}

	if kind, ok := keywordKind(rec); ok {
		return kind
	}

	return base
}

// Gate drops kinds the caller's preferences disable
func Gate(kind entity.VisualKind, prefs entity.VisualPreferences) entity.VisualKind {
	if !prefs.Allows(kind) {
		return entity.VisualNone
	}
	return kind
}

func keywordKind(rec entity.SlideRecord) (entity.VisualKind, bool) {
	text := slideText(rec)
	for _, rule := range overrideRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.kind, true
			}
		}
	}
	return entity.VisualNone, false
}

func slideText(rec entity.SlideRecord) string {
	return strings.ToLower(rec.Title + " " + strings.Join(rec.Bullets, " "))
}
