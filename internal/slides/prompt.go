package slides

import (
	"strconv"
	"strings"

	"github.com/futig/deck-backend/internal/entity"
	"github.com/futig/deck-backend/internal/pkg/textutil"
)

// MaxPromptCorpus bounds how much extracted text is sent to the generator
const MaxPromptCorpus = 4000

// BuildRequest bounds the corpus and renders the generation prompt with the output schema
func BuildRequest(corpus, task string, slideCount int) entity.GenerationRequest {
	if slideCount < 1 {
		slideCount = 1
	}

	excerpt := strings.TrimSpace(textutil.Clip(corpus, MaxPromptCorpus))
	task = strings.TrimSpace(task)

	return entity.GenerationRequest{
		Corpus:     excerpt,
		Task:       task,
		SlideCount: slideCount,
		Prompt:     renderPrompt(excerpt, task, slideCount),
	}
}

func renderPrompt(excerpt, task string, n int) string {
	count := strconv.Itoa(n)

	var b strings.Builder
	b.WriteString("You are an expert presentation creator. Create a presentation with detailed, informative content.\n\n")
	b.WriteString("TASK: " + task + "\n")
	b.WriteString("SLIDES REQUIRED: " + count + " slides (generate exactly " + count + " unique slides)\n\n")
	b.WriteString("CONTENT TO USE:\n")
	b.WriteString(excerpt)
	b.WriteString("\n\nREQUIREMENTS:\n")
	b.WriteString("1. Slide 1 is a title slide: slide_type \"title\", the main topic as title, an empty bullets list.\n")
	if n > 1 {
		b.WriteString("2. Slides 2-" + count + " are content slides: slide_type \"content\" with a specific, descriptive title.\n")
		b.WriteString("3. Every content slide has 4-6 bullet points with concrete facts, numbers or examples from the content.\n")
		b.WriteString("4. Do not repeat information between slides and do not use generic headings.\n")
	}
	b.WriteString("\nOUTPUT FORMAT (JSON only, no commentary):\n")
	b.WriteString(`{
  "slides": [
    {"slide_type": "title", "title": "Main topic title", "bullets": []},
    {"slide_type": "content", "title": "Specific subtitle based on the content", "bullets": [
      "Detailed point with facts from the source",
      "Point with an example, statistic or real data",
      "Point with a practical application or benefit",
      "Point with a conclusion or actionable insight"
    ]}
  ]
}`)
	b.WriteString("\n\nGENERATE EXACTLY " + count + " SLIDES:\n")

	return b.String()
}
