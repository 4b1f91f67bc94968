// Package governor tracks memory and time spent by generation runs and reclaims memory under pressure.
// It is advisory: nothing here returns errors to the pipeline.
package governor

import (
	"context"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"github.com/futig/deck-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	defaultSlideThresholdMB = 500
	defaultCleanupPasses    = 3
	// cleanupEvery forces a reclamation pass every n rendered slides
	cleanupEvery = 5
)

type Options struct {
	// SlideThresholdMB is the per-slide memory growth that triggers cleanup while generating
	SlideThresholdMB float64
	// CleanupPasses is the number of forced GC passes per cleanup
	CleanupPasses int
}

// Governor holds the process-wide memory baseline shared by all runs
type Governor struct {
	mu         sync.RWMutex
	reader     MemoryReader
	baselineMB float64
	opts       Options
	reclaim    func(passes int)
	logger     *zap.Logger
}

func New(reader MemoryReader, opts Options, logger *zap.Logger) *Governor {
	if opts.SlideThresholdMB <= 0 {
		opts.SlideThresholdMB = defaultSlideThresholdMB
	}
	if opts.CleanupPasses <= 0 {
		opts.CleanupPasses = defaultCleanupPasses
	}

	return &Governor{
		reader:  reader,
		opts:    opts,
		reclaim: forceGC,
		logger:  logger,
	}
}

// EstablishBaseline records the process memory after startup
func (g *Governor) EstablishBaseline() {
	runtime.GC()

	current := g.currentMB()

	g.mu.Lock()
	g.baselineMB = current
	g.mu.Unlock()

	g.logger.Info("memory baseline established", zap.Float64("baseline_mb", current))
}

// BaselineMB returns the process-wide baseline
func (g *Governor) BaselineMB() float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.baselineMB
}

// CurrentMB returns the current memory reading, zero if it cannot be read
func (g *Governor) CurrentMB() float64 {
	return g.currentMB()
}

// Sample measures memory growth since the process baseline
func (g *Governor) Sample() entity.ResourceSample {
	delta := g.currentMB() - g.BaselineMB()
	return entity.ResourceSample{MemoryDeltaMB: max(delta, 0)}
}

// Cleanup runs the configured number of forced reclamation passes
func (g *Governor) Cleanup(ctx context.Context) {
	before := g.currentMB()
	g.reclaim(g.opts.CleanupPasses)
	ctxzap.Debug(ctx, "memory cleanup finished",
		zap.Float64("before_mb", before),
		zap.Float64("after_mb", g.currentMB()),
	)
}

// NewTracker creates an idle tracker for a single run
func (g *Governor) NewTracker() *Tracker {
	return &Tracker{gov: g, budgetMB: g.opts.SlideThresholdMB}
}

func (g *Governor) currentMB() float64 {
	mb, err := g.reader.CurrentMB()
	if err != nil {
		g.logger.Debug("memory reading failed", zap.Error(err))
		return 0
	}
	return mb
}

func forceGC(passes int) {
	for i := 0; i < passes; i++ {
		runtime.GC()
	}
	debug.FreeOSMemory()
}

// RenderBudgetMB returns the per-slide memory budget used while rendering a deck
func RenderBudgetMB(slideCount int, visuals bool) float64 {
	var budget float64
	switch {
	case slideCount > 20:
		budget = 40
	case slideCount > 15:
		budget = 60
	case slideCount > 10:
		budget = 80
	default:
		budget = 100
	}
	if visuals {
		budget += 20
	}
	return budget
}

// Rate grades a finished run
func Rate(warnings int, deltaMB float64, perSlide time.Duration) entity.PerformanceRating {
	switch {
	case warnings == 0 && deltaMB < 200 && perSlide < 5*time.Second:
		return entity.RatingExcellent
	case warnings <= 2 && deltaMB < 400 && perSlide < 10*time.Second:
		return entity.RatingGood
	case warnings <= 5 && deltaMB < 600:
		return entity.RatingAcceptable
	default:
		return entity.RatingPoor
	}
}
