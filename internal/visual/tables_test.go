package visual

import (
	"bytes"
	"context"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRenderTable_UnreadableFontFallsBackAndLogs(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.ttf")
	prev := tableFontPath
	tableFontPath = func() string { return missing }
	t.Cleanup(func() { tableFontPath = prev })

	core, logs := observer.New(zapcore.DebugLevel)
	ctx := ctxzap.ToContext(context.Background(), zap.New(core))

	data := TableData{
		Title:   "Quarterly results",
		Headers: []string{"Category", "Value", "Performance"},
		Rows:    [][]string{{"Revenue", "120", "High"}, {"Costs", "80", "Medium"}},
	}

	out, err := RenderTable(ctx, data, testTheme)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, assetWidth, img.Bounds().Dx())

	entries := logs.FilterMessage("table font unavailable").All()
	require.Len(t, entries, 1, "the failed face is logged once and not retried")
	assert.Equal(t, missing, entries[0].ContextMap()["path"])
}

func TestRenderTable_RequiresHeaders(t *testing.T) {
	_, err := RenderTable(context.Background(), TableData{}, testTheme)
	assert.Error(t, err)
}
