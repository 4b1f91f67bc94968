package formatter

import (
	"bytes"
	"fmt"

	"github.com/futig/deck-backend/internal/entity"
)

const (
	markdownContentType   = "text/markdown; charset=utf-8"
	markdownFileExtension = ".md"
)

type MarkdownFormatter struct{}

func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

func (mf *MarkdownFormatter) Format(outline entity.Outline) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n", heading(outline))

	for i, rec := range outline.Slides {
		fmt.Fprintf(&buf, "\n## %s\n", slideHeading(i, rec))
		if rec.Subtitle != "" {
			fmt.Fprintf(&buf, "\n_%s_\n", rec.Subtitle)
		}
		if len(rec.Bullets) > 0 {
			buf.WriteByte('\n')
		}
		for _, b := range rec.Bullets {
			fmt.Fprintf(&buf, "- %s\n", b)
		}
	}

	return buf.Bytes(), nil
}

func (mf *MarkdownFormatter) ContentType() string {
	return markdownContentType
}

func (mf *MarkdownFormatter) FileExtension() string {
	return markdownFileExtension
}
