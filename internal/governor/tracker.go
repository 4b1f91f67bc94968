package governor

import (
	"context"
	"time"

	"github.com/futig/deck-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type trackerState int

const (
	stateIdle trackerState = iota
	stateRunning
)

// Stage labels passed to Tracker.Sample
const (
	StageExtract  = "extract"
	StageGenerate = "generate"
	StageParse    = "parse"
	StageSlide    = "slide"
	StageRender   = "render"
)

// Tracker follows one run: Idle -> Running on Start, back to Idle on Finish.
// A run is processed sequentially, so a Tracker is not safe for concurrent use.
type Tracker struct {
	gov        *Governor
	state      trackerState
	startedAt  time.Time
	baselineMB float64
	peakMB     float64
	slideCount int
	processed  int
	warnings   int
	budgetMB   float64
}

// Start switches the tracker to Running and records the run baseline
func (t *Tracker) Start(ctx context.Context, slideCount int) {
	current := t.gov.currentMB()

	t.state = stateRunning
	t.startedAt = time.Now()
	t.baselineMB = current
	t.peakMB = current
	t.slideCount = slideCount
	t.processed = 0
	t.warnings = 0
	t.budgetMB = t.gov.opts.SlideThresholdMB

	ctxzap.Info(ctx, "resource tracking started",
		zap.Int("slide_count", slideCount),
		zap.Float64("baseline_mb", current),
	)
}

// Running reports whether the tracker is between Start and Finish
func (t *Tracker) Running() bool {
	return t.state == stateRunning
}

// SetBudget switches the per-slide memory budget, e.g. when rendering begins
func (t *Tracker) SetBudget(perSlideMB float64) {
	if perSlideMB > 0 {
		t.budgetMB = perSlideMB
	}
}

// Warnings returns the number of budget overruns seen so far
func (t *Tracker) Warnings() int {
	return t.warnings
}

// Sample measures the run so far and reclaims memory when growth per slide exceeds the budget.
// slideIndex is zero based; a negative index samples without counting a slide.
func (t *Tracker) Sample(ctx context.Context, slideIndex int, stage string) entity.ResourceSample {
	if t.state != stateRunning {
		return entity.ResourceSample{}
	}

	current := t.gov.currentMB()
	t.peakMB = max(t.peakMB, current)

	if slideIndex >= 0 {
		t.processed = max(t.processed, slideIndex+1)
	}

	delta := max(current-t.baselineMB, 0)
	sample := entity.ResourceSample{
		Elapsed:         time.Since(t.startedAt),
		MemoryDeltaMB:   delta,
		SlidesProcessed: t.processed,
	}

	perSlide := delta / float64(max(t.processed, 1))
	if perSlide > t.budgetMB {
		t.warnings++
		ctxzap.Warn(ctx, "memory budget exceeded",
			zap.String("stage", stage),
			zap.Int("slide_index", slideIndex),
			zap.Float64("delta_mb", delta),
			zap.Float64("per_slide_mb", perSlide),
			zap.Float64("budget_mb", t.budgetMB),
			zap.Int("warnings", t.warnings),
		)
		t.gov.Cleanup(ctx)
		return sample
	}

	if stage == StageRender && slideIndex >= 0 && (slideIndex+1)%cleanupEvery == 0 {
		t.gov.Cleanup(ctx)
	}

	return sample
}

// Finish returns the run summary and switches the tracker back to Idle
func (t *Tracker) Finish(ctx context.Context) entity.ResourceReport {
	if t.state != stateRunning {
		return entity.ResourceReport{}
	}

	current := t.gov.currentMB()
	t.peakMB = max(t.peakMB, current)
	total := time.Since(t.startedAt)

	processed := max(t.processed, 1)
	perSlide := total / time.Duration(processed)
	delta := max(current-t.baselineMB, 0)

	report := entity.ResourceReport{
		TotalTime:       total,
		SlidesProcessed: t.processed,
		MemoryDeltaMB:   delta,
		PeakMemoryMB:    t.peakMB,
		Warnings:        t.warnings,
		TimePerSlide:    perSlide,
		Rating:          Rate(t.warnings, delta, perSlide),
	}

	t.state = stateIdle

	ctxzap.Info(ctx, "resource tracking finished",
		zap.String("rating", string(report.Rating)),
		zap.Duration("total_time", report.TotalTime),
		zap.Duration("time_per_slide", report.TimePerSlide),
		zap.Float64("memory_delta_mb", report.MemoryDeltaMB),
		zap.Float64("peak_memory_mb", report.PeakMemoryMB),
		zap.Int("warnings", report.Warnings),
	)

	return report
}
