package formatter

import (
	"bytes"

	"github.com/unidoc/unioffice/document"

	"github.com/futig/deck-backend/internal/entity"
)

const (
	docxContentType   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	docxFileExtension = ".docx"
)

type DOCXFormatter struct{}

func NewDOCXFormatter() *DOCXFormatter {
	return &DOCXFormatter{}
}

func (mf *DOCXFormatter) Format(outline entity.Outline) ([]byte, error) {
	doc := document.New()
	defer doc.Close()

	titlePar := doc.AddParagraph()
	titlePar.SetStyle("Title")
	titlePar.AddRun().AddText(heading(outline))

	for i, rec := range outline.Slides {
		slidePar := doc.AddParagraph()
		slidePar.SetStyle("Heading2")
		slidePar.AddRun().AddText(slideHeading(i, rec))

		if rec.Subtitle != "" {
			subRun := doc.AddParagraph().AddRun()
			subRun.Properties().SetItalic(true)
			subRun.AddText(rec.Subtitle)
		}

		for _, b := range rec.Bullets {
			bulletPar := doc.AddParagraph()
			bulletPar.SetStyle("ListBullet")
			bulletPar.AddRun().AddText(b)
		}
	}

	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (mf *DOCXFormatter) ContentType() string {
	return docxContentType
}

func (mf *DOCXFormatter) FileExtension() string {
	return docxFileExtension
}
