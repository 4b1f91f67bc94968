package renderer

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unidoc/unioffice/presentation"
	"go.uber.org/zap"

	"github.com/futig/deck-backend/internal/entity"
	"github.com/futig/deck-backend/internal/layout"
	"github.com/futig/deck-backend/internal/visual"
)

func testDeck(style string) entity.DeckDescription {
	title := layout.Describe(0, entity.SlideRecord{Role: entity.SlideRoleTitle, Title: "Cloud", Subtitle: "An overview"}, false)

	rec := entity.SlideRecord{Role: entity.SlideRoleContent, Title: "Market", Bullets: []string{"Alpha 40", "Beta 30", "Gamma 30"}}
	withChart := layout.Describe(1, rec, true)
	withChart.Visual = visual.NewSynthesizer(nil).Build(context.Background(), entity.VisualChartBar, rec, Style{Accent: "#3498db"}.Theme())

	withPlaceholder := layout.Describe(2, rec, true)
	withPlaceholder.Visual = visual.Placeholder(entity.VisualImage)
	layout.UsePlaceholder(&withPlaceholder)

	return entity.DeckDescription{
		DesignStyle: style,
		Slides:      []entity.SlideDescription{title, withChart, withPlaceholder},
	}
}

func skipOnLicense(t *testing.T, err error) {
	t.Helper()
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "license") {
		t.Skipf("unioffice license not configured: %v", err)
	}
}

func TestRender_WritesDeck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.pptx")

	var observed []int
	err := New(zap.NewNop()).Render(context.Background(), testDeck("corporate_1"), path, func(_ context.Context, index int) {
		observed = append(observed, index)
	})
	skipOnLicense(t, err)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2}, observed)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	ppt, err := presentation.Open(path)
	skipOnLicense(t, err)
	require.NoError(t, err)
	assert.Len(t, ppt.Slides(), 3)
	require.NotNil(t, ppt.X().SldSz)
	assert.Equal(t, int32(12191695), ppt.X().SldSz.CxAttr)
	assert.Equal(t, int32(6858000), ppt.X().SldSz.CyAttr)
}

func TestSetSlideSize_WideCanvasInEMU(t *testing.T) {
	ppt := presentation.New()
	setSlideSize(ppt)

	require.NotNil(t, ppt.X().SldSz)
	assert.Equal(t, int32(12191695), ppt.X().SldSz.CxAttr)
	assert.Equal(t, int32(6858000), ppt.X().SldSz.CyAttr)
}

func TestRender_UnknownStyle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.pptx")

	err := New(zap.NewNop()).Render(context.Background(), testDeck("neon_9"), path, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrUnknownDesignStyle)
	assert.ErrorIs(t, err, entity.ErrRender)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRender_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := New(zap.NewNop()).Render(ctx, testDeck(DefaultStyle), filepath.Join(t.TempDir(), "deck.pptx"), nil)
	skipOnLicense(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStyles(t *testing.T) {
	styles := Styles()
	require.Len(t, styles, 14)

	for _, s := range styles {
		assert.NotEmpty(t, FamilyName(s.Family()), s.ID)

		data, err := backgroundPNG(s)
		require.NoError(t, err, s.ID)
		img, err := png.Decode(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, backgroundWidth, img.Bounds().Dx())
	}

	s, err := Lookup(DefaultStyle)
	require.NoError(t, err)
	assert.Equal(t, "Pure White", s.Name)

	_, err = Lookup("")
	assert.ErrorIs(t, err, entity.ErrUnknownDesignStyle)
}
