package slides

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/futig/deck-backend/internal/entity"
	"github.com/futig/deck-backend/internal/pkg/textutil"
)

const (
	fallbackMinLine       = 30
	fallbackMinBulletLine = 40
	fallbackBulletLength  = 150
	fallbackMinBullets    = 4
	fallbackWindow        = 6
	fallbackStride        = 3
	bulletMarker          = "• "
)

// Fallback deterministically builds a schema-valid deck from the request corpus.
// It is used when the text generation backend is unavailable and never fails.
func Fallback(req entity.GenerationRequest) string {
	topic := strings.TrimSpace(req.Task)
	if topic == "" {
		topic = "Your Topic"
	}

	count := max(req.SlideCount, 1)
	lines := corpusLines(req.Corpus)

	doc := entity.SlidesDocument{
		Slides: make([]entity.RawSlide, 0, count),
	}
	doc.Slides = append(doc.Slides, entity.RawSlide{
		SlideType: string(entity.SlideRoleTitle),
		Title:     topic,
		Bullets:   []string{},
	})

	for i := 1; i < count; i++ {
		var bullets []string
		if len(lines) >= fallbackMinBullets {
			bullets = corpusBullets(lines, i, topic)
		} else {
			bullets = genericBullets(topic)
		}

		if len(bullets) > MaxBullets {
			bullets = bullets[:MaxBullets]
		}

		doc.Slides = append(doc.Slides, entity.RawSlide{
			SlideType: string(entity.SlideRoleContent),
			Title:     fallbackTitle(i, topic),
			Bullets:   bullets,
		})
	}

	// Marshalling plain strings cannot fail
	data, _ := json.Marshal(doc)
	return string(data)
}

func corpusLines(corpus string) []string {
	var lines []string
	for _, line := range strings.Split(corpus, "\n") {
		line = strings.TrimSpace(line)
		if textutil.Len(line) > fallbackMinLine {
			lines = append(lines, line)
		}
	}
	return lines
}

// corpusBullets takes a sliding window over the corpus lines so consecutive slides overlap by half
func corpusBullets(lines []string, slide int, topic string) []string {
	start := ((slide - 1) * fallbackStride) % len(lines)
	end := min(start+fallbackWindow, len(lines))

	bullets := make([]string, 0, fallbackWindow)
	for _, line := range lines[start:end] {
		if textutil.Len(line) <= fallbackMinBulletLine {
			continue
		}
		if textutil.Len(line) > fallbackBulletLength {
			line = textutil.Clip(line, fallbackBulletLength) + textutil.Ellipsis
		}
		if !strings.HasPrefix(line, "•") {
			line = bulletMarker + line
		}
		bullets = append(bullets, line)
	}

	for len(bullets) < fallbackMinBullets {
		bullets = append(bullets, bulletMarker+"Additional insights and analysis related to "+strings.ToLower(topic))
	}

	return bullets
}

func genericBullets(topic string) []string {
	lower := strings.ToLower(topic)
	return []string{
		bulletMarker + "Comprehensive analysis of key factors and considerations in " + lower,
		bulletMarker + "Detailed implementation strategies with proven methodologies and best practices",
		bulletMarker + "Real-world examples and practical applications across various industry sectors",
		bulletMarker + "Statistical data showing measurable improvements and performance metrics",
		bulletMarker + "Expert recommendations based on extensive research, testing, and field studies",
	}
}

func fallbackTitle(slide int, topic string) string {
	switch slide {
	case 1:
		return "Introduction to " + topic
	case 2:
		return "Key Components and Features"
	case 3:
		return "Implementation and Best Practices"
	case 4:
		return "Benefits and Applications"
	case 5:
		return "Advanced Strategies and Methods"
	default:
		return fmt.Sprintf("Detailed Analysis - Part %d", slide-5)
	}
}
