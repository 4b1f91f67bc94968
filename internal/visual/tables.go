package visual

import (
	"bytes"
	"context"
	"fmt"

	"github.com/fogleman/gg"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/deck-backend/internal/pkg/fonts"
	"github.com/futig/deck-backend/internal/pkg/textutil"
)

// tableFontPath locates the TrueType face used for table text
var tableFontPath = fonts.Resolve

const (
	tablePadding   = 30.0
	tableTitleSize = 26.0
	tableCellSize  = 20.0
	maxCellChars   = 22
)

// RenderTable draws a header row followed by data rows as PNG
func RenderTable(ctx context.Context, data TableData, theme Theme) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("table has no headers")
	}

	dc := gg.NewContext(assetWidth, assetHeight)
	dc.SetHexColor(hexOr(theme.Background, "#ffffff"))
	dc.Clear()

	fontPath := tableFontPath()
	setFace := func(size float64) {
		if fontPath == "" {
			return
		}
		// basicfont stays active when loading fails
		if err := dc.LoadFontFace(fontPath, size); err != nil {
			ctxzap.Debug(ctx, "table font unavailable", zap.String("path", fontPath), zap.Error(err))
			fontPath = ""
		}
	}

	top := tablePadding
	if data.Title != "" {
		setFace(tableTitleSize)
		dc.SetHexColor(hexOr(theme.Text, "#333333"))
		dc.DrawStringAnchored(textutil.Truncate(data.Title, 48), assetWidth/2, top+tableTitleSize/2, 0.5, 0.5)
		top += tableTitleSize + tablePadding
	}

	rows := len(data.Rows) + 1
	cols := len(data.Headers)
	width := float64(assetWidth) - 2*tablePadding
	rowHeight := min((float64(assetHeight)-top-tablePadding)/float64(rows), 90)
	colWidth := width / float64(cols)

	setFace(tableCellSize)
	for r := 0; r < rows; r++ {
		y := top + float64(r)*rowHeight

		switch {
		case r == 0:
			dc.SetHexColor(hexOr(theme.Accent, "#3498db"))
		case r%2 == 0:
			dc.SetHexColor("#f2f2f2")
		default:
			dc.SetHexColor("#ffffff")
		}
		dc.DrawRectangle(tablePadding, y, width, rowHeight)
		dc.Fill()

		cells := data.Headers
		if r > 0 {
			cells = data.Rows[r-1]
		}
		for c := 0; c < cols; c++ {
			text := ""
			if c < len(cells) {
				text = textutil.Truncate(cells[c], maxCellChars)
			}
			if r == 0 {
				dc.SetHexColor("#ffffff")
			} else {
				dc.SetHexColor("#333333")
			}
			x := tablePadding + float64(c)*colWidth
			dc.DrawStringAnchored(text, x+colWidth/2, y+rowHeight/2, 0.5, 0.5)
		}
	}

	dc.SetHexColor("#cccccc")
	dc.SetLineWidth(1)
	for r := 0; r <= rows; r++ {
		y := top + float64(r)*rowHeight
		dc.DrawLine(tablePadding, y, tablePadding+width, y)
	}
	for c := 0; c <= cols; c++ {
		x := tablePadding + float64(c)*colWidth
		dc.DrawLine(x, top, x, top+float64(rows)*rowHeight)
	}
	dc.Stroke()

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode table: %w", err)
	}
	return buf.Bytes(), nil
}

func hexOr(hex, fallback string) string {
	if hex == "" {
		return fallback
	}
	return hex
}
