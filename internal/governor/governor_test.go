package governor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/futig/deck-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeMemory returns the queued readings in order and repeats the last one
type fakeMemory struct {
	readings []float64
	err      error
}

func (f *fakeMemory) CurrentMB() (float64, error) {
	if f.err != nil {
		return 0, f.err
	}
	v := f.readings[0]
	if len(f.readings) > 1 {
		f.readings = f.readings[1:]
	}
	return v, nil
}

func (f *fakeMemory) set(v ...float64) {
	f.readings = v
}

func newTestGovernor(mem *fakeMemory) (*Governor, *int) {
	gov := New(mem, Options{SlideThresholdMB: 500, CleanupPasses: 3}, zap.NewNop())
	cleanups := 0
	gov.reclaim = func(passes int) {
		cleanups++
	}
	return gov, &cleanups
}

func TestGovernor_SampleUsesProcessBaseline(t *testing.T) {
	mem := &fakeMemory{readings: []float64{100}}
	gov, _ := newTestGovernor(mem)
	gov.EstablishBaseline()

	mem.set(350)
	assert.Equal(t, 250.0, gov.Sample().MemoryDeltaMB)

	mem.set(50)
	assert.Equal(t, 0.0, gov.Sample().MemoryDeltaMB)
}

func TestTracker_IdleSampleIsNoop(t *testing.T) {
	mem := &fakeMemory{readings: []float64{100}}
	gov, cleanups := newTestGovernor(mem)

	tr := gov.NewTracker()
	assert.False(t, tr.Running())
	assert.Equal(t, entity.ResourceSample{}, tr.Sample(context.Background(), 0, StageSlide))
	assert.Equal(t, entity.ResourceReport{}, tr.Finish(context.Background()))
	assert.Zero(t, *cleanups)
}

func TestTracker_CleanupOnBudgetOverrun(t *testing.T) {
	ctx := context.Background()
	mem := &fakeMemory{readings: []float64{100}}
	gov, cleanups := newTestGovernor(mem)

	tr := gov.NewTracker()
	tr.Start(ctx, 3)
	require.True(t, tr.Running())

	mem.set(300)
	s := tr.Sample(ctx, 0, StageSlide)
	assert.Equal(t, 200.0, s.MemoryDeltaMB)
	assert.Equal(t, 1, s.SlidesProcessed)
	assert.Zero(t, tr.Warnings())

	mem.set(1200)
	tr.Sample(ctx, 1, StageSlide)
	assert.Equal(t, 1, tr.Warnings())
	assert.Equal(t, 1, *cleanups)

	mem.set(150)
	report := tr.Finish(ctx)
	assert.False(t, tr.Running())
	assert.Equal(t, 2, report.SlidesProcessed)
	assert.Equal(t, 1, report.Warnings)
	assert.Equal(t, 50.0, report.MemoryDeltaMB)
	assert.GreaterOrEqual(t, report.PeakMemoryMB, 1200.0)
	assert.Equal(t, entity.RatingGood, report.Rating)
}

func TestTracker_RenderBudgetAndPeriodicCleanup(t *testing.T) {
	ctx := context.Background()
	mem := &fakeMemory{readings: []float64{100}}
	gov, cleanups := newTestGovernor(mem)

	tr := gov.NewTracker()
	tr.Start(ctx, 10)
	tr.SetBudget(RenderBudgetMB(10, false))

	mem.set(150)
	for i := 0; i < 10; i++ {
		tr.Sample(ctx, i, StageRender)
	}
	assert.Zero(t, tr.Warnings())
	assert.Equal(t, 2, *cleanups, "one cleanup after every fifth slide")

	mem.set(1200)
	tr.Sample(ctx, 0, StageRender)
	assert.Equal(t, 1, tr.Warnings(), "1100MB over 10 slides exceeds the 100MB budget")
}

func TestTracker_SurvivesReaderErrors(t *testing.T) {
	ctx := context.Background()
	mem := &fakeMemory{err: errors.New("unsupported")}
	gov, _ := newTestGovernor(mem)

	tr := gov.NewTracker()
	tr.Start(ctx, 1)
	tr.Sample(ctx, 0, StageSlide)
	report := tr.Finish(ctx)
	assert.Zero(t, report.MemoryDeltaMB)
	assert.Equal(t, entity.RatingExcellent, report.Rating)
}

func TestRenderBudgetMB(t *testing.T) {
	assert.Equal(t, 100.0, RenderBudgetMB(5, false))
	assert.Equal(t, 120.0, RenderBudgetMB(5, true))
	assert.Equal(t, 80.0, RenderBudgetMB(11, false))
	assert.Equal(t, 60.0, RenderBudgetMB(16, false))
	assert.Equal(t, 60.0, RenderBudgetMB(21, true))
}

func TestRate(t *testing.T) {
	assert.Equal(t, entity.RatingExcellent, Rate(0, 100, time.Second))
	assert.Equal(t, entity.RatingGood, Rate(0, 100, 6*time.Second))
	assert.Equal(t, entity.RatingGood, Rate(2, 399, time.Second))
	assert.Equal(t, entity.RatingAcceptable, Rate(5, 500, time.Minute))
	assert.Equal(t, entity.RatingPoor, Rate(6, 10, time.Second))
	assert.Equal(t, entity.RatingPoor, Rate(0, 700, time.Second))
}

func TestNewMemoryReader(t *testing.T) {
	mb, err := NewMemoryReader().CurrentMB()
	require.NoError(t, err)
	assert.Greater(t, mb, 0.0)
}
