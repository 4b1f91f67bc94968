package slides

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/futig/deck-backend/internal/entity"
	"github.com/futig/deck-backend/internal/pkg/textutil"
)

const (
	// MaxBullets is the parse-time bullet cap per content slide
	MaxBullets = 6
	// MaxTitleLength is the title length kept before layout
	MaxTitleLength = 80
	// MaxBulletLength is the bullet length kept at parse time
	MaxBulletLength = 150

	defaultDeckTitle = "Presentation"
)

// Parse turns raw generator output into slide records.
// Slide 0 is always a title record without bullets, regardless of what the generator returned.
func Parse(raw string) ([]entity.SlideRecord, error) {
	body := stripFences(raw)
	if body == "" {
		return nil, fmt.Errorf("%w: empty generator output", entity.ErrSchema)
	}

	var envelope struct {
		Slides json.RawMessage `json:"slides"`
	}
	if err := json.Unmarshal([]byte(body), &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrSchema, err)
	}

	if len(envelope.Slides) == 0 || string(envelope.Slides) == "null" {
		return nil, fmt.Errorf("%w: missing \"slides\" collection", entity.ErrSchema)
	}

	var rawSlides []entity.RawSlide
	if err := json.Unmarshal(envelope.Slides, &rawSlides); err != nil {
		return nil, fmt.Errorf("%w: slides: %v", entity.ErrSchema, err)
	}

	if len(rawSlides) == 0 {
		return nil, fmt.Errorf("%w: no slides generated", entity.ErrSchema)
	}

	records := make([]entity.SlideRecord, 0, len(rawSlides))
	records = append(records, titleRecord(rawSlides[0]))

	for i, rs := range rawSlides[1:] {
		records = append(records, contentRecord(rs, i+2))
	}

	return records, nil
}

func titleRecord(rs entity.RawSlide) entity.SlideRecord {
	title := cleanTitle(rs.Title)
	if title == "" {
		title = defaultDeckTitle
	}

	rec := entity.SlideRecord{
		Role:    entity.SlideRoleTitle,
		Title:   title,
		Bullets: []string{},
	}

	if bullets := cleanBullets(rs.Bullets); len(bullets) > 0 {
		rec.Subtitle = bullets[0]
	}

	return rec
}

func contentRecord(rs entity.RawSlide, number int) entity.SlideRecord {
	title := cleanTitle(rs.Title)
	if title == "" {
		title = "Slide " + strconv.Itoa(number)
	}

	bullets := cleanBullets(rs.Bullets)
	if len(bullets) > MaxBullets {
		bullets = bullets[:MaxBullets]
	}

	return entity.SlideRecord{
		Role:    entity.SlideRoleContent,
		Title:   title,
		Bullets: bullets,
	}
}

func cleanTitle(title string) string {
	return textutil.Truncate(textutil.CollapseSpaces(title), MaxTitleLength)
}

func cleanBullets(raw []string) []string {
	bullets := make([]string, 0, len(raw))
	for _, b := range raw {
		b = textutil.CollapseSpaces(b)
		if b == "" {
			continue
		}
		bullets = append(bullets, textutil.Truncate(b, MaxBulletLength))
	}
	return bullets
}

// stripFences removes surrounding markdown code fences such as ```json ... ```
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)

	start := strings.Index(s, "```")
	brace := strings.IndexByte(s, '{')
	if start >= 0 && (brace < 0 || start < brace) {
		rest := s[start+3:]
		// drop the language tag line
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			rest = rest[nl+1:]
		} else {
			rest = strings.TrimPrefix(rest, "json")
		}
		if end := strings.LastIndex(rest, "```"); end >= 0 {
			rest = rest[:end]
		}
		s = strings.TrimSpace(rest)
	}

	return s
}
