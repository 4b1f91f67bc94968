package renderer

import (
	"bytes"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/fogleman/gg"
)

const (
	backgroundWidth  = 1333
	backgroundHeight = 750
)

// backgroundPNG paints the style background at 100 px per inch
func backgroundPNG(s Style) ([]byte, error) {
	if len(s.Background) == 0 {
		return nil, fmt.Errorf("style %s has no background", s.ID)
	}

	dc := gg.NewContext(backgroundWidth, backgroundHeight)

	if len(s.Background) == 1 || s.Direction == GradientNone {
		dc.SetHexColor(s.Background[0])
		dc.Clear()
	} else {
		x1, y1 := 0.0, float64(backgroundHeight)
		if s.Direction == GradientDiagonal {
			x1 = backgroundWidth
		}
		grad := gg.NewLinearGradient(0, 0, x1, y1)
		grad.AddColorStop(0, parseHex(s.Background[0]))
		grad.AddColorStop(1, parseHex(s.Background[1]))
		dc.SetFillStyle(grad)
		dc.DrawRectangle(0, 0, backgroundWidth, backgroundHeight)
		dc.Fill()
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode background: %w", err)
	}
	return buf.Bytes(), nil
}

func parseHex(hex string) color.Color {
	v, err := strconv.ParseUint(strings.TrimPrefix(hex, "#"), 16, 32)
	if err != nil {
		return color.White
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}
