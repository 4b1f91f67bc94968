// Package pipeline turns a URL and a topic into a rendered deck.
// Stages run strictly in order: extract, generate, parse, cap, allocate and lay out each slide, render.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/deck-backend/internal/entity"
	"github.com/futig/deck-backend/internal/extractor"
	"github.com/futig/deck-backend/internal/governor"
	"github.com/futig/deck-backend/internal/layout"
	"github.com/futig/deck-backend/internal/pkg/logger"
	"github.com/futig/deck-backend/internal/renderer"
	"github.com/futig/deck-backend/internal/slides"
	"github.com/futig/deck-backend/internal/visual"
)

type ContentExtractor interface {
	Extract(ctx context.Context, url string) (string, error)
}

type TextGenerator interface {
	Name() string
	Generate(ctx context.Context, req entity.GenerationRequest) entity.GenerationResult
}

type AssetBuilder interface {
	Build(ctx context.Context, kind entity.VisualKind, rec entity.SlideRecord, theme visual.Theme) *entity.VisualAsset
}

type DeckRenderer interface {
	Render(ctx context.Context, deck entity.DeckDescription, path string, observe renderer.SlideObserver) error
}

type Params struct {
	URL         string
	Task        string
	DesignStyle string
	Prefs       entity.VisualPreferences
	Mode        entity.VisualMode
	SlideCount  int
	UserID      string
}

type Result struct {
	Path string
	// DesignStyle is the style actually rendered, the default one after a render retry
	DesignStyle string
	Records     []entity.SlideRecord
	Report      entity.ResourceReport
	// Fallback is set when the deterministic generator replaced the text backend
	Fallback bool
}

type Pipeline struct {
	extractor ContentExtractor
	generator TextGenerator
	assets    AssetBuilder
	renderer  DeckRenderer
	governor  *governor.Governor
	outputDir string
	now       func() time.Time
}

func New(
	extractor ContentExtractor,
	generator TextGenerator,
	assets AssetBuilder,
	renderer DeckRenderer,
	gov *governor.Governor,
	outputDir string,
) *Pipeline {
	return &Pipeline{
		extractor: extractor,
		generator: generator,
		assets:    assets,
		renderer:  renderer,
		governor:  gov,
		outputDir: outputDir,
		now:       time.Now,
	}
}

// Run executes the whole pipeline. On success the returned path exists and is non-empty;
// on failure no output file is left behind.
func (p *Pipeline) Run(ctx context.Context, params Params) (_ *Result, err error) {
	ctx = logger.WithAction(ctx, "pipeline.Run")

	if err := extractor.ValidateURL(params.URL); err != nil {
		return nil, err
	}
	if params.Mode == "" {
		params.Mode = entity.VisualModePattern
	}
	if err := params.Mode.Validate(); err != nil {
		return nil, err
	}
	if params.DesignStyle == "" {
		params.DesignStyle = renderer.DefaultStyle
	}
	requested := min(max(params.SlideCount, 1), slides.HardSlideCap)

	tracker := p.governor.NewTracker()
	tracker.Start(ctx, requested)
	result := &Result{}
	defer func() {
		report := tracker.Finish(ctx)
		if err == nil {
			result.Report = report
		}
	}()

	corpus, err := p.extractor.Extract(ctx, params.URL)
	if err != nil {
		return nil, err
	}
	tracker.Sample(ctx, -1, governor.StageExtract)

	req := slides.BuildRequest(corpus, params.Task, requested)
	generated := p.generator.Generate(ctx, req)
	text := generated.Text
	if generated.Unavailable {
		ctxzap.Warn(ctx, "text generator unavailable, using fallback",
			zap.String("generator", p.generator.Name()),
			zap.String("reason", generated.Reason),
		)
		text = slides.Fallback(req)
		result.Fallback = true
	}
	tracker.Sample(ctx, -1, governor.StageGenerate)

	records, err := slides.Parse(text)
	if err != nil {
		return nil, err
	}
	records = slides.Limit(records, requested)
	records = slides.CapForResources(records, p.governor.Sample())
	tracker.Sample(ctx, -1, governor.StageParse)

	ctxzap.Info(ctx, "slide content ready",
		zap.Int("requested", params.SlideCount),
		zap.Int("slides", len(records)),
		zap.Bool("fallback", result.Fallback),
	)

	path, err := p.outputPath(params.UserID)
	if err != nil {
		return nil, err
	}

	style := params.DesignStyle
	deck := p.describe(ctx, records, style, params.Prefs, params.Mode, tracker)
	tracker.SetBudget(governor.RenderBudgetMB(len(records), params.Prefs.Any()))

	renderErr := p.render(ctx, deck, path, tracker)
	if renderErr != nil {
		ctxzap.Warn(ctx, "render failed, retrying with minimal settings",
			zap.String("design_style", style),
			zap.Error(renderErr),
		)

		style = renderer.DefaultStyle
		deck = p.describe(ctx, records, style, entity.VisualPreferences{}, params.Mode, tracker)
		if err := p.render(ctx, deck, path, tracker); err != nil {
			return nil, fmt.Errorf("render retry: %w", errors.Join(err, renderErr))
		}
	}

	result.Path = path
	result.DesignStyle = style
	result.Records = records

	return result, nil
}

// describe allocates, synthesizes and lays out every slide in ascending index order
func (p *Pipeline) describe(
	ctx context.Context,
	records []entity.SlideRecord,
	styleID string,
	prefs entity.VisualPreferences,
	mode entity.VisualMode,
	tracker *governor.Tracker,
) entity.DeckDescription {
	theme := themeFor(styleID)
	deck := entity.DeckDescription{
		DesignStyle: styleID,
		Slides:      make([]entity.SlideDescription, 0, len(records)),
	}

	for i, rec := range records {
		kind := entity.VisualNone
		if rec.Role == entity.SlideRoleContent {
			kind = visual.Gate(visual.Allocate(i, len(records), rec, mode), prefs)
		}

		var asset *entity.VisualAsset
		if kind != entity.VisualNone {
			asset = p.assets.Build(ctx, kind, rec, theme)
		}

		desc := layout.Describe(i, rec, asset != nil)
		desc.Visual = asset
		if asset != nil && asset.Placeholder {
			layout.UsePlaceholder(&desc)
		}
		deck.Slides = append(deck.Slides, desc)

		ctxzap.Debug(ctx, "slide described",
			zap.Int("slide_index", i),
			zap.String("visual", string(kind)),
		)
		tracker.Sample(ctx, i, governor.StageSlide)
	}

	return deck
}

// render draws the deck and removes any partial file on failure
func (p *Pipeline) render(ctx context.Context, deck entity.DeckDescription, path string, tracker *governor.Tracker) error {
	err := p.renderer.Render(ctx, deck, path, func(ctx context.Context, index int) {
		tracker.Sample(ctx, index, governor.StageRender)
	})
	if err == nil {
		var info os.FileInfo
		info, err = os.Stat(path)
		if err == nil && info.Size() == 0 {
			err = fmt.Errorf("%w: empty output file", entity.ErrRender)
		}
	}

	if err != nil {
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			ctxzap.Warn(ctx, "failed to remove partial output", zap.String("path", path), zap.Error(rmErr))
		}
		return err
	}

	return nil
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

func (p *Pipeline) outputPath(userID string) (string, error) {
	if err := os.MkdirAll(p.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	user := unsafeName.ReplaceAllString(userID, "_")
	if user == "" {
		user = "anonymous"
	}

	name := fmt.Sprintf("presentation_%s_%d.pptx", user, p.now().Unix())
	return filepath.Join(p.outputDir, name), nil
}

func themeFor(styleID string) visual.Theme {
	style, err := renderer.Lookup(styleID)
	if err != nil {
		style, _ = renderer.Lookup(renderer.DefaultStyle)
	}
	return style.Theme()
}
