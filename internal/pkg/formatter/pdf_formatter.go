package formatter

import (
	"bytes"
	"os"

	"github.com/jung-kurt/gofpdf"

	"github.com/futig/deck-backend/internal/entity"
	"github.com/futig/deck-backend/internal/pkg/fonts"
)

const (
	pdfContentType   = "application/pdf"
	pdfFileExtension = ".pdf"
)

type PDFFormatter struct {
	fontPath func() string
}

func NewPDFFormatter() *PDFFormatter {
	return &PDFFormatter{fontPath: fonts.Resolve}
}

func (mf *PDFFormatter) Format(outline entity.Outline) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	// Core fonts cannot encode UTF-8, so prefer the bundled TrueType font
	fontName := "Arial"
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	// Font bytes are registered directly: gofpdf resolves file names against its font directory,
	// which breaks absolute system paths
	if fontBytes := mf.loadFont(); fontBytes != nil {
		pdf.AddUTF8FontFromBytes(fonts.Name, "", fontBytes)
		pdf.AddUTF8FontFromBytes(fonts.Name, "B", fontBytes)
		pdf.AddUTF8FontFromBytes(fonts.Name, "I", fontBytes)
		fontName = fonts.Name
		tr = func(s string) string { return s }
	}

	pdf.SetFont(fontName, "B", 20)
	pdf.MultiCell(0, 10, tr(heading(outline)), "", "", false)
	pdf.Ln(4)

	for i, rec := range outline.Slides {
		pdf.SetFont(fontName, "B", 14)
		pdf.MultiCell(0, 8, tr(slideHeading(i, rec)), "", "", false)

		if rec.Subtitle != "" {
			pdf.SetFont(fontName, "I", 12)
			pdf.MultiCell(0, 6, tr(rec.Subtitle), "", "", false)
		}

		pdf.SetFont(fontName, "", 12)
		_, lineHeight := pdf.GetFontSize()
		for _, b := range rec.Bullets {
			pdf.SetX(pdf.GetX() + 5)
			pdf.MultiCell(0, lineHeight*1.5, tr("- "+b), "", "", false)
		}
		pdf.Ln(3)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (mf *PDFFormatter) loadFont() []byte {
	path := mf.fontPath()
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		return nil
	}
	return data
}

func (mf *PDFFormatter) ContentType() string {
	return pdfContentType
}

func (mf *PDFFormatter) FileExtension() string {
	return pdfFileExtension
}
