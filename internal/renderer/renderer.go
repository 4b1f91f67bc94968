// Package renderer writes a laid-out deck to a .pptx file.
package renderer

import (
	"context"
	"fmt"
	"math"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/unidoc/unioffice/color"
	"github.com/unidoc/unioffice/common"
	"github.com/unidoc/unioffice/measurement"
	"github.com/unidoc/unioffice/presentation"
	"github.com/unidoc/unioffice/schema/soo/dml"
	"github.com/unidoc/unioffice/schema/soo/pml"
	"go.uber.org/zap"

	"github.com/futig/deck-backend/internal/entity"
	"github.com/futig/deck-backend/internal/layout"
)

const (
	emuPerInch = 914400

	fontFamily       = "Calibri"
	titleSlideSize   = 40
	subtitleSize     = 20
	contentTitleSize = 28
	bodySize         = 18
	placeholderSize  = 16
)

// SlideObserver is called after each slide is drawn
type SlideObserver func(ctx context.Context, index int)

type Renderer struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Renderer {
	return &Renderer{logger: logger}
}

// Render draws every slide in order and saves the deck to path.
// An unknown design style fails before anything is drawn.
func (r *Renderer) Render(ctx context.Context, deck entity.DeckDescription, path string, observe SlideObserver) error {
	style, err := Lookup(deck.DesignStyle)
	if err != nil {
		return fmt.Errorf("%w: %w", entity.ErrRender, err)
	}

	ctxzap.Info(ctx, "rendering presentation",
		zap.String("design_style", style.ID),
		zap.Int("slides", len(deck.Slides)),
	)

	ppt := presentation.New()
	setSlideSize(ppt)

	bg, err := backgroundPNG(style)
	if err != nil {
		return fmt.Errorf("%w: %w", entity.ErrRender, err)
	}
	bgRef, err := addImage(ppt, bg)
	if err != nil {
		return fmt.Errorf("%w: background: %w", entity.ErrRender, err)
	}

	for _, desc := range deck.Slides {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", entity.ErrRender, err)
		}

		if err := r.drawSlide(ppt, bgRef, style, desc); err != nil {
			return fmt.Errorf("%w: slide %d: %w", entity.ErrRender, desc.Index, err)
		}

		if observe != nil {
			observe(ctx, desc.Index)
		}
	}

	if err := ppt.SaveToFile(path); err != nil {
		return fmt.Errorf("%w: save %s: %w", entity.ErrRender, path, err)
	}

	ctxzap.Info(ctx, "presentation saved", zap.String("path", path))

	return nil
}

func (r *Renderer) drawSlide(ppt *presentation.Presentation, bgRef common.ImageRef, style Style, desc entity.SlideDescription) error {
	slide := ppt.AddSlide()

	bg := slide.AddImage(bgRef)
	bg.Properties().SetPosition(0, 0)
	bg.Properties().SetSize(inches(layout.CanvasWidth), inches(layout.CanvasHeight))

	if desc.Role == entity.SlideRoleTitle {
		title := addText(slide, desc.Layout.Title)
		writeParagraph(title, desc.Title, titleSlideSize, true, style.Title, dml.ST_TextAlignTypeCtr)

		if desc.Subtitle != "" && !desc.Layout.Subtitle.IsZero() {
			sub := addText(slide, desc.Layout.Subtitle)
			writeParagraph(sub, desc.Subtitle, subtitleSize, false, style.Body, dml.ST_TextAlignTypeCtr)
		}
		return nil
	}

	title := addText(slide, desc.Layout.Title)
	writeParagraph(title, desc.Title, contentTitleSize, true, style.Title, dml.ST_TextAlignTypeL)

	if len(desc.Bullets) > 0 && !desc.Layout.Body.IsZero() {
		body := addText(slide, desc.Layout.Body)
		for _, b := range desc.Bullets {
			writeParagraph(body, b, bodySize, false, style.Body, dml.ST_TextAlignTypeL)
		}
	}

	if desc.Visual == nil || desc.Layout.Visual.IsZero() {
		return nil
	}

	if desc.Visual.Placeholder || len(desc.Visual.Data) == 0 {
		drawPlaceholder(slide, desc.Layout.Visual, desc.Visual.Label, style)
		return nil
	}

	ref, err := addImage(ppt, desc.Visual.Data)
	if err != nil {
		r.logger.Warn("visual could not be embedded, drawing placeholder",
			zap.Int("slide_index", desc.Index),
			zap.String("kind", string(desc.Visual.Kind)),
			zap.Error(err),
		)
		drawPlaceholder(slide, layout.VisualRegion(true), desc.Visual.Label, style)
		return nil
	}

	img := slide.AddImage(ref)
	region := desc.Layout.Visual
	img.Properties().SetPosition(inches(region.Left), inches(region.Top))
	img.Properties().SetSize(inches(region.Width), inches(region.Height))

	return nil
}

func addImage(ppt *presentation.Presentation, data []byte) (common.ImageRef, error) {
	img, err := common.ImageFromBytes(data)
	if err != nil {
		return common.ImageRef{}, fmt.Errorf("read image: %w", err)
	}
	return ppt.AddImage(img)
}

func addText(slide presentation.Slide, region entity.Region) presentation.TextBox {
	tb := slide.AddTextBox()
	tb.Properties().SetPosition(inches(region.Left), inches(region.Top))
	tb.Properties().SetSize(inches(region.Width), inches(region.Height))
	if body := tb.X().TxBody; body != nil && body.BodyPr != nil {
		body.BodyPr.WrapAttr = dml.ST_TextWrappingTypeSquare
	}
	return tb
}

func writeParagraph(tb presentation.TextBox, text string, size float64, bold bool, hex string, align dml.ST_TextAlignType) {
	p := tb.AddParagraph()
	p.Properties().SetAlign(align)

	run := p.AddRun()
	run.SetText(text)
	run.Properties().SetSize(measurement.Distance(size) * measurement.Point)
	run.Properties().SetBold(bold)
	run.Properties().SetFont(fontFamily)
	run.Properties().SetSolidFill(color.FromHex(hex))
}

func drawPlaceholder(slide presentation.Slide, region entity.Region, label string, style Style) {
	if label == "" {
		label = "Visual placeholder"
	}

	box := addText(slide, region)
	box.Properties().SetGeometry(dml.ST_ShapeTypeRoundRect)
	box.Properties().SetSolidFill(color.FromHex("#f0f0f0"))
	box.Properties().LineProperties().SetSolidFill(color.FromHex(style.Accent))
	box.Properties().LineProperties().SetWidth(2 * measurement.Point)

	writeParagraph(box, label, placeholderSize, false, "#7f8c8d", dml.ST_TextAlignTypeCtr)
}

// setSlideSize switches the deck to the 16:9 canvas the layout engine targets
func setSlideSize(ppt *presentation.Presentation) {
	x := ppt.X()
	if x.SldSz == nil {
		x.SldSz = pml.NewCT_SlideSize()
	}
	x.SldSz.CxAttr = int32(math.Round(layout.CanvasWidth * emuPerInch))
	x.SldSz.CyAttr = int32(math.Round(layout.CanvasHeight * emuPerInch))
}

func inches(v float64) measurement.Distance {
	return measurement.Distance(v) * measurement.Inch
}
