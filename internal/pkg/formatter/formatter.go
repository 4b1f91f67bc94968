package formatter

import (
	"fmt"

	"github.com/futig/deck-backend/internal/entity"
)

const baseTitle = "Presentation outline"

type Formatter interface {
	Format(outline entity.Outline) ([]byte, error)
	ContentType() string
	FileExtension() string
}

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Create(format entity.OutlineFormat) (Formatter, error) {
	switch format {
	case entity.FormatMarkdown:
		return NewMarkdownFormatter(), nil
	case entity.FormatDOCX:
		return NewDOCXFormatter(), nil
	case entity.FormatPDF:
		return NewPDFFormatter(), nil
	default:
		return nil, fmt.Errorf("%w: unsupported format %s", entity.ErrInvalidFormat, format)
	}
}

// heading returns the document title: the task when present, otherwise the generic title
func heading(outline entity.Outline) string {
	if outline.Task != "" {
		return outline.Task
	}
	return baseTitle
}

// slideHeading numbers slides from one and marks the title slide
func slideHeading(i int, rec entity.SlideRecord) string {
	if rec.Role == entity.SlideRoleTitle {
		return fmt.Sprintf("%d. %s (title)", i+1, rec.Title)
	}
	return fmt.Sprintf("%d. %s", i+1, rec.Title)
}
