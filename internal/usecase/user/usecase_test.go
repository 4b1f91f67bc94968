package user

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/futig/deck-backend/internal/config"
	"github.com/futig/deck-backend/internal/entity"
	"github.com/futig/deck-backend/internal/repository"
)

func newUsecase(t *testing.T, upgrades bool) *UserUsecase {
	t.Helper()
	return NewUsecase(
		repository.NewUserMemory(),
		config.DefaultPlans(),
		config.AdminConfig{Password: "secret", SessionTimeout: time.Hour, PlanUpgrades: upgrades, MaxSlides: 50},
		zap.NewNop(),
	)
}

func reserve(t *testing.T, uc *UserUsecase, userID string) {
	t.Helper()
	decision, err := uc.Reserve(context.Background(), userID)
	require.NoError(t, err)
	require.True(t, decision.Allowed)
}

func TestCanGenerate_FreePlanLifetimeLimit(t *testing.T) {
	ctx := context.Background()
	uc := newUsecase(t, false)

	decision, err := uc.CanGenerate(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, 5, decision.MaxSlides)
	assert.False(t, decision.Visuals)

	for i := 0; i < 3; i++ {
		reserve(t, uc, "u1")
	}

	decision, err = uc.CanGenerate(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, entity.LimitTotal, decision.LimitType)
}

func TestCanGenerate_DailyLimitResetsNextDay(t *testing.T) {
	ctx := context.Background()
	uc := newUsecase(t, true)

	_, err := uc.UpdatePlan(ctx, "u1", entity.PlanPro)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		reserve(t, uc, "u1")
	}

	decision, err := uc.CanGenerate(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, entity.LimitDaily, decision.LimitType)

	uc.now = func() time.Time { return time.Now().Add(24 * time.Hour) }
	decision, err = uc.CanGenerate(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.True(t, decision.Visuals)
}

func TestUpdatePlan(t *testing.T) {
	ctx := context.Background()

	t.Run("paid plan requires payment", func(t *testing.T) {
		_, err := newUsecase(t, false).UpdatePlan(ctx, "u1", entity.PlanElite)
		assert.ErrorIs(t, err, entity.ErrPaymentRequired)
	})

	t.Run("downgrade to free is allowed", func(t *testing.T) {
		user, err := newUsecase(t, false).UpdatePlan(ctx, "u1", entity.PlanFree)
		require.NoError(t, err)
		assert.Equal(t, entity.PlanFree, user.Plan)
	})

	t.Run("unknown plan", func(t *testing.T) {
		_, err := newUsecase(t, true).UpdatePlan(ctx, "u1", "gold")
		assert.ErrorIs(t, err, entity.ErrInvalidPlan)
	})
}

func TestAdminSession(t *testing.T) {
	ctx := context.Background()
	uc := newUsecase(t, false)

	_, err := uc.ActivateAdmin(ctx, "u1", "wrong")
	assert.ErrorIs(t, err, entity.ErrInvalidAdminLogin)
	assert.False(t, uc.IsAdmin("u1"))

	session, err := uc.ActivateAdmin(ctx, "u1", "secret")
	require.NoError(t, err)
	assert.Equal(t, 3600, session.ExpiresIn)

	for i := 0; i < 5; i++ {
		reserve(t, uc, "u1")
	}
	decision, err := uc.CanGenerate(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, 50, decision.MaxSlides)

	stats, err := uc.Stats(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, stats.IsAdmin)
	assert.Equal(t, adminDisplayName, stats.PlanName)

	existed, err := uc.DeactivateAdmin(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, existed)
	assert.False(t, uc.IsAdmin("u1"))

	existed, err = uc.DeactivateAdmin(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, existed)
}

func TestActivateAdmin_EmptyPasswordDisablesAdmin(t *testing.T) {
	uc := NewUsecase(repository.NewUserMemory(), config.DefaultPlans(), config.AdminConfig{SessionTimeout: time.Hour}, zap.NewNop())
	_, err := uc.ActivateAdmin(context.Background(), "u1", "")
	assert.ErrorIs(t, err, entity.ErrInvalidAdminLogin)
}

func TestReserve_ConcurrentRequestsStayWithinLimit(t *testing.T) {
	ctx := context.Background()
	uc := newUsecase(t, false)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			decision, err := uc.Reserve(ctx, "u1")
			if err != nil || !decision.Allowed {
				return
			}
			mu.Lock()
			accepted++
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, accepted)

	user, err := uc.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, user.TotalUsage)
	assert.Equal(t, 3, user.DailyUsage)
}

func TestReserve_DeniedDoesNotCount(t *testing.T) {
	ctx := context.Background()
	uc := newUsecase(t, false)

	for i := 0; i < 3; i++ {
		reserve(t, uc, "u1")
	}

	decision, err := uc.Reserve(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, entity.LimitTotal, decision.LimitType)

	user, err := uc.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, user.TotalUsage)
}

func TestRelease(t *testing.T) {
	ctx := context.Background()
	uc := newUsecase(t, false)

	for i := 0; i < 3; i++ {
		reserve(t, uc, "u1")
	}
	require.NoError(t, uc.Release(ctx, "u1"))

	user, err := uc.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, user.TotalUsage)
	assert.Equal(t, 2, user.DailyUsage)

	decision, err := uc.CanGenerate(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)

	t.Run("never goes below zero", func(t *testing.T) {
		fresh := newUsecase(t, false)
		require.NoError(t, fresh.Release(ctx, "u2"))

		user, err := fresh.GetUser(ctx, "u2")
		require.NoError(t, err)
		assert.Zero(t, user.TotalUsage)
		assert.Zero(t, user.DailyUsage)
	})
}
