package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/futig/deck-backend/internal/entity"
	"github.com/futig/deck-backend/internal/governor"
	"github.com/futig/deck-backend/internal/renderer"
	"github.com/futig/deck-backend/internal/visual"
)

type fakeExtractor struct {
	text  string
	err   error
	calls int
}

func (f *fakeExtractor) Extract(context.Context, string) (string, error) {
	f.calls++
	return f.text, f.err
}

type fakeGenerator struct {
	result entity.GenerationResult
	calls  int
	last   entity.GenerationRequest
}

func (f *fakeGenerator) Name() string { return "fake" }

func (f *fakeGenerator) Generate(_ context.Context, req entity.GenerationRequest) entity.GenerationResult {
	f.calls++
	f.last = req
	return f.result
}

// fakeRenderer writes a small file, or a partial one followed by an error for the first failures
type fakeRenderer struct {
	failures int
	decks    []entity.DeckDescription
	observed []int
}

func (f *fakeRenderer) Render(ctx context.Context, deck entity.DeckDescription, path string, observe renderer.SlideObserver) error {
	f.decks = append(f.decks, deck)
	if len(f.decks) <= f.failures {
		_ = os.WriteFile(path, []byte("partial"), 0o600)
		return fmt.Errorf("%w: boom", entity.ErrRender)
	}
	for _, s := range deck.Slides {
		observe(ctx, s.Index)
		f.observed = append(f.observed, s.Index)
	}
	return os.WriteFile(path, []byte("pptx"), 0o600)
}

type fakeMemory struct{ mb float64 }

func (f fakeMemory) CurrentMB() (float64, error) { return f.mb, nil }

func deckJSON(n int) string {
	var b strings.Builder
	b.WriteString(`{"slides":[{"slide_type":"title","title":"Topic","bullets":["Subtitle"]}`)
	for i := 1; i < n; i++ {
		fmt.Fprintf(&b, `,{"slide_type":"content","title":"Slide %d","bullets":["Revenue grew %d%%","Second point","Third point"]}`, i, i*10)
	}
	b.WriteString(`]}`)
	return b.String()
}

type fixture struct {
	extractor *fakeExtractor
	generator *fakeGenerator
	renderer  *fakeRenderer
	memory    *fakeMemory
	pipeline  *Pipeline
	dir       string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		extractor: &fakeExtractor{text: strings.Repeat("Cloud computing changes how companies run software. ", 10)},
		generator: &fakeGenerator{result: entity.Generated(deckJSON(5))},
		renderer:  &fakeRenderer{},
		memory:    &fakeMemory{mb: 100},
		dir:       filepath.Join(t.TempDir(), "out"),
	}
	gov := governor.New(f.memory, governor.Options{}, zap.NewNop())
	gov.EstablishBaseline()

	f.pipeline = New(f.extractor, f.generator, visual.NewSynthesizer(nil), f.renderer, gov, f.dir)
	f.pipeline.now = func() time.Time { return time.Unix(1700000000, 0) }
	return f
}

func params() Params {
	return Params{
		URL:         "https://example.com/article",
		Task:        "Cloud",
		DesignStyle: "tech_1",
		Prefs:       entity.VisualPreferences{Chart: true, Table: true, Pie: true},
		SlideCount:  5,
		UserID:      "user 1",
	}
}

func TestRun_Success(t *testing.T) {
	f := newFixture(t)

	res, err := f.pipeline.Run(context.Background(), params())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(f.dir, "presentation_user_1_1700000000.pptx"), res.Path)
	assert.FileExists(t, res.Path)
	assert.Equal(t, "tech_1", res.DesignStyle)
	assert.False(t, res.Fallback)
	require.Len(t, res.Records, 5)
	assert.Equal(t, 5, f.generator.last.SlideCount)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, f.renderer.observed)
	assert.Equal(t, 5, res.Report.SlidesProcessed)

	deck := f.renderer.decks[0]
	assert.Nil(t, deck.Slides[0].Visual)
	// n=5 pattern is image, chart-bar, table, chart-pie; image is disabled
	assert.Nil(t, deck.Slides[1].Visual)
	assert.Equal(t, entity.VisualChartBar, deck.Slides[2].Visual.Kind)
	assert.Equal(t, entity.VisualTable, deck.Slides[3].Visual.Kind)
	assert.Equal(t, entity.VisualChartPie, deck.Slides[4].Visual.Kind)
	for _, s := range deck.Slides[1:] {
		if s.Visual != nil {
			assert.LessOrEqual(t, s.Layout.Body.Right(), s.Layout.Visual.Left)
		}
	}
}

func TestRun_ValidationFailsBeforeAnyWork(t *testing.T) {
	f := newFixture(t)

	p := params()
	p.URL = "ftp://example.com"
	_, err := f.pipeline.Run(context.Background(), p)
	assert.ErrorIs(t, err, entity.ErrValidation)
	assert.Zero(t, f.extractor.calls)
	assert.Zero(t, f.generator.calls)
}

func TestRun_ExtractionFailureSkipsGeneration(t *testing.T) {
	f := newFixture(t)
	f.extractor.err = fmt.Errorf("%w: HTTP 500", entity.ErrExtraction)

	_, err := f.pipeline.Run(context.Background(), params())
	assert.ErrorIs(t, err, entity.ErrExtraction)
	assert.Zero(t, f.generator.calls)
	assert.Empty(t, f.renderer.decks)
}

func TestRun_GeneratorUnavailableUsesFallback(t *testing.T) {
	f := newFixture(t)
	f.generator.result = entity.Unavailable("connection failed")

	res, err := f.pipeline.Run(context.Background(), params())
	require.NoError(t, err)
	assert.True(t, res.Fallback)
	require.Len(t, res.Records, 5)
	assert.Equal(t, entity.SlideRoleTitle, res.Records[0].Role)
	assert.Empty(t, res.Records[0].Bullets)
}

func TestRun_SchemaErrorIsSurfaced(t *testing.T) {
	f := newFixture(t)
	f.generator.result = entity.Generated(`{"pages":[]}`)

	_, err := f.pipeline.Run(context.Background(), params())
	assert.ErrorIs(t, err, entity.ErrSchema)
	assert.Empty(t, f.renderer.decks)
}

func TestRun_CapsToRequestedCount(t *testing.T) {
	f := newFixture(t)
	f.generator.result = entity.Generated(deckJSON(9))

	p := params()
	p.SlideCount = 3
	res, err := f.pipeline.Run(context.Background(), p)
	require.NoError(t, err)
	require.Len(t, res.Records, 3)
	assert.Equal(t, "Slide 2", res.Records[2].Title)
}

func TestRun_CapsForMemoryGrowth(t *testing.T) {
	tests := []struct {
		name      string
		currentMB float64
		want      int
	}{
		{name: "no growth", currentMB: 100, want: 20},
		{name: "above 200MB", currentMB: 350, want: 20},
		{name: "above 300MB", currentMB: 450, want: 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.generator.result = entity.Generated(deckJSON(20))
			f.memory.mb = tt.currentMB

			p := params()
			p.SlideCount = 20
			res, err := f.pipeline.Run(context.Background(), p)
			require.NoError(t, err)

			require.Len(t, res.Records, tt.want)
			assert.Equal(t, fmt.Sprintf("Slide %d", tt.want-1), res.Records[tt.want-1].Title)
			assert.Len(t, f.renderer.decks[0].Slides, tt.want)
		})
	}
}

func TestRun_RenderRetryUsesDefaultStyle(t *testing.T) {
	f := newFixture(t)
	f.renderer.failures = 1

	res, err := f.pipeline.Run(context.Background(), params())
	require.NoError(t, err)

	require.Len(t, f.renderer.decks, 2)
	assert.Equal(t, "tech_1", f.renderer.decks[0].DesignStyle)
	assert.Equal(t, renderer.DefaultStyle, f.renderer.decks[1].DesignStyle)
	for _, s := range f.renderer.decks[1].Slides {
		assert.Nil(t, s.Visual)
	}
	assert.Equal(t, renderer.DefaultStyle, res.DesignStyle)

	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Equal(t, "pptx", string(data))
}

func TestRun_RenderRetryFailureRemovesFile(t *testing.T) {
	f := newFixture(t)
	f.renderer.failures = 2

	_, err := f.pipeline.Run(context.Background(), params())
	require.Error(t, err)
	assert.True(t, errors.Is(err, entity.ErrRender))

	entries, err := os.ReadDir(f.dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
