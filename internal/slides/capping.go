package slides

import "github.com/futig/deck-backend/internal/entity"

// HardSlideCap applies regardless of resource state
const HardSlideCap = 30

// CapFor returns the slide ceiling allowed under the sampled memory pressure
func CapFor(sample entity.ResourceSample) int {
	limit := 25
	switch {
	case sample.MemoryDeltaMB > 300:
		limit = 15
	case sample.MemoryDeltaMB > 200:
		limit = 20
	}
	return min(limit, HardSlideCap)
}

// CapForResources drops records beyond the resource ceiling, keeping order
func CapForResources(records []entity.SlideRecord, sample entity.ResourceSample) []entity.SlideRecord {
	return Limit(records, CapFor(sample))
}

// Limit keeps at most n records from the front
func Limit(records []entity.SlideRecord, n int) []entity.SlideRecord {
	if n < 1 {
		n = 1
	}
	if len(records) <= n {
		return records
	}
	return records[:n]
}
