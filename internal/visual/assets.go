package visual

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/deck-backend/internal/entity"
)

const defaultImageQuery = "business presentation"

// ImageSearcher finds a photo for a query and returns it ready to embed
type ImageSearcher interface {
	FetchImage(ctx context.Context, query string) ([]byte, error)
}

// queryCategories contribute their first two words to the query when any of their words occurs in the slide
var queryCategories = [][]string{
	{"business", "corporate", "office", "meeting"},
	{"technology", "computer", "digital", "innovation"},
	{"data", "analytics", "chart", "graph", "statistics"},
	{"growth", "success", "achievement", "progress"},
	{"team", "collaboration", "people", "group"},
	{"strategy", "planning", "goals", "vision"},
	{"finance", "money", "investment", "revenue"},
	{"marketing", "advertising", "brand", "customer"},
	{"education", "learning", "training", "knowledge"},
	{"health", "medical", "wellness", "care"},
	{"environment", "nature", "green", "sustainability"},
	{"travel", "journey", "destination", "adventure"},
}

const maxQueryWords = 3

// ImageQuery maps slide text to a stock photo search query of at most three words
func ImageQuery(rec entity.SlideRecord) string {
	text := " " + strings.Join(strings.FieldsFunc(slideText(rec), isSeparator), " ") + " "

	var words []string
	for _, category := range queryCategories {
		for _, w := range category {
			if strings.Contains(text, " "+w+" ") {
				words = append(words, category[:2]...)
				break
			}
		}
		if len(words) >= maxQueryWords {
			break
		}
	}

	if len(words) == 0 {
		return defaultImageQuery
	}
	return strings.Join(firstN(words, maxQueryWords), " ")
}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// Synthesizer produces the visual asset for a slide of a given kind
type Synthesizer struct {
	images ImageSearcher
}

// NewSynthesizer accepts a nil searcher, in which case image slides get a placeholder
func NewSynthesizer(images ImageSearcher) *Synthesizer {
	return &Synthesizer{images: images}
}

// Build returns nil for VisualNone. Any failure yields a placeholder asset rather than an error.
func (s *Synthesizer) Build(ctx context.Context, kind entity.VisualKind, rec entity.SlideRecord, theme Theme) *entity.VisualAsset {
	if kind == entity.VisualNone || kind == "" {
		return nil
	}

	data, err := s.render(ctx, kind, rec, theme)
	if err != nil {
		ctxzap.Extract(ctx).Warn("visual asset failed, using placeholder",
			zap.String("kind", string(kind)),
			zap.String("slide_title", rec.Title),
			zap.Error(err),
		)
		return Placeholder(kind)
	}

	return &entity.VisualAsset{Kind: kind, Data: data}
}

func (s *Synthesizer) render(ctx context.Context, kind entity.VisualKind, rec entity.SlideRecord, theme Theme) ([]byte, error) {
	switch kind {
	case entity.VisualImage:
		if s.images == nil {
			return nil, fmt.Errorf("no image source configured")
		}
		return s.images.FetchImage(ctx, ImageQuery(rec))
	case entity.VisualChartBar:
		return RenderBarChart(BarData(rec), theme)
	case entity.VisualChartPie:
		return RenderPieChart(PieData(rec), theme)
	case entity.VisualTable:
		return RenderTable(ctx, TableFor(rec), theme)
	default:
		return nil, fmt.Errorf("unsupported visual kind %q", kind)
	}
}

// Placeholder is drawn as a labeled box in place of a failed visual
func Placeholder(kind entity.VisualKind) *entity.VisualAsset {
	label := "Visual"
	switch kind {
	case entity.VisualImage:
		label = "Image"
	case entity.VisualChartBar, entity.VisualChartPie:
		label = "Chart"
	case entity.VisualTable:
		label = "Table"
	}
	return &entity.VisualAsset{Kind: kind, Placeholder: true, Label: label + " placeholder"}
}
