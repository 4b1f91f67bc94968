package user

import (
	"context"
	"crypto/subtle"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/futig/deck-backend/internal/config"
	"github.com/futig/deck-backend/internal/entity"
	"github.com/futig/deck-backend/internal/repository"
)

const adminDisplayName = "Admin"

type adminSession struct {
	ID        string
	ExpiresAt time.Time
}

// UserUsecase implements plans, quotas and admin sessions
type UserUsecase struct {
	users    repository.UserRepository
	plans    []entity.Plan
	admin    config.AdminConfig
	sessions *cache.Cache
	// mu serializes read-modify-write cycles on usage counters
	mu     sync.Mutex
	now    func() time.Time
	logger *zap.Logger
}

func NewUsecase(
	users repository.UserRepository,
	plans []entity.Plan,
	admin config.AdminConfig,
	logger *zap.Logger,
) *UserUsecase {
	return &UserUsecase{
		users:    users,
		plans:    plans,
		admin:    admin,
		sessions: cache.New(admin.SessionTimeout, time.Minute),
		now:      time.Now,
		logger:   logger,
	}
}

// Plans lists the configured subscription plans
func (uc *UserUsecase) Plans() []entity.Plan {
	return uc.plans
}

func (uc *UserUsecase) plan(name entity.PlanName) (entity.Plan, error) {
	for _, p := range uc.plans {
		if p.Name == name {
			return p, nil
		}
	}
	return entity.Plan{}, fmt.Errorf("%w: %s", entity.ErrInvalidPlan, name)
}

// GetUser returns the user, creating it on the free plan and resetting daily usage on a new calendar day
func (uc *UserUsecase) GetUser(ctx context.Context, userID string) (*entity.User, error) {
	user, err := uc.users.GetOrCreateUser(ctx, userID, entity.PlanFree)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	if !sameDay(user.LastReset, uc.now()) {
		user.DailyUsage = 0
		user.LastReset = uc.now()
		user, err = uc.users.UpdateUser(ctx, *user)
		if err != nil {
			return nil, fmt.Errorf("reset daily usage: %w", err)
		}
		ctxzap.Debug(ctx, "daily usage reset", zap.String("user_id", userID))
	}

	return user, nil
}

// CanGenerate decides whether the user may start another generation without reserving anything.
// Admins bypass quotas and get the admin slide limit with visuals enabled.
func (uc *UserUsecase) CanGenerate(ctx context.Context, userID string) (entity.QuotaDecision, error) {
	decision, _, err := uc.decide(ctx, userID)
	return decision, err
}

// Reserve checks the quota and counts one generation against it in a single step,
// so concurrent requests cannot overrun the limits. A reservation for a run that
// does not produce a presentation is returned with Release.
func (uc *UserUsecase) Reserve(ctx context.Context, userID string) (entity.QuotaDecision, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	decision, user, err := uc.decide(ctx, userID)
	if err != nil || !decision.Allowed {
		return decision, err
	}

	user.DailyUsage++
	user.TotalUsage++
	if _, err := uc.users.UpdateUser(ctx, *user); err != nil {
		return entity.QuotaDecision{}, fmt.Errorf("reserve usage: %w", err)
	}

	ctxzap.Info(ctx, "usage reserved",
		zap.String("user_id", userID),
		zap.Int("daily_usage", user.DailyUsage),
		zap.Int("total_usage", user.TotalUsage),
	)

	return decision, nil
}

// Release gives back a reservation made by Reserve
func (uc *UserUsecase) Release(ctx context.Context, userID string) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	user, err := uc.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	// the daily counter may already have been reset since the reservation
	if user.DailyUsage > 0 {
		user.DailyUsage--
	}
	if user.TotalUsage > 0 {
		user.TotalUsage--
	}
	if _, err := uc.users.UpdateUser(ctx, *user); err != nil {
		return fmt.Errorf("release usage: %w", err)
	}

	ctxzap.Info(ctx, "usage released",
		zap.String("user_id", userID),
		zap.Int("daily_usage", user.DailyUsage),
		zap.Int("total_usage", user.TotalUsage),
	)

	return nil
}

func (uc *UserUsecase) decide(ctx context.Context, userID string) (entity.QuotaDecision, *entity.User, error) {
	user, err := uc.GetUser(ctx, userID)
	if err != nil {
		return entity.QuotaDecision{}, nil, err
	}

	if uc.IsAdmin(userID) {
		return entity.QuotaDecision{
			Allowed:   true,
			Reason:    "admin mode",
			MaxSlides: uc.admin.MaxSlides,
			Visuals:   true,
		}, user, nil
	}

	plan, err := uc.plan(user.Plan)
	if err != nil {
		return entity.QuotaDecision{}, nil, err
	}

	decision := entity.QuotaDecision{
		Allowed:   true,
		MaxSlides: plan.MaxSlides,
		Visuals:   plan.VisualElements,
	}

	switch {
	case plan.TotalLimit > 0 && user.TotalUsage >= plan.TotalLimit:
		decision.Allowed = false
		decision.LimitType = entity.LimitTotal
		decision.Reason = fmt.Sprintf("lifetime limit of %d presentations reached on the %s plan, upgrade to continue",
			plan.TotalLimit, plan.DisplayName)
	case user.DailyUsage >= plan.DailyLimit:
		decision.Allowed = false
		decision.LimitType = entity.LimitDaily
		decision.Reason = fmt.Sprintf("daily limit of %d presentations reached, try again tomorrow or upgrade your plan",
			plan.DailyLimit)
	}

	return decision, user, nil
}

// UpdatePlan switches the user's plan. Downgrading to free is always allowed;
// paid plans are granted only while plan upgrades are enabled in config.
func (uc *UserUsecase) UpdatePlan(ctx context.Context, userID string, name entity.PlanName) (*entity.User, error) {
	if err := name.Validate(); err != nil {
		return nil, err
	}
	if _, err := uc.plan(name); err != nil {
		return nil, err
	}

	if name != entity.PlanFree && !uc.admin.PlanUpgrades {
		return nil, entity.ErrPaymentRequired
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	user, err := uc.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	oldPlan := user.Plan
	user.Plan = name
	if name != entity.PlanFree {
		user.DailyUsage = 0
	}

	user, err = uc.users.UpdateUser(ctx, *user)
	if err != nil {
		return nil, fmt.Errorf("update plan: %w", err)
	}

	ctxzap.Info(ctx, "plan updated",
		zap.String("user_id", userID),
		zap.String("from", string(oldPlan)),
		zap.String("to", string(name)),
	)

	return user, nil
}

// ActivateAdmin opens an admin session for the user when the password matches
func (uc *UserUsecase) ActivateAdmin(ctx context.Context, userID, password string) (*entity.AdminSessionDTO, error) {
	if uc.admin.Password == "" || subtle.ConstantTimeCompare([]byte(password), []byte(uc.admin.Password)) != 1 {
		ctxzap.Warn(ctx, "failed admin login attempt", zap.String("user_id", userID))
		return nil, entity.ErrInvalidAdminLogin
	}

	session := adminSession{
		ID:        uuid.NewString(),
		ExpiresAt: uc.now().Add(uc.admin.SessionTimeout),
	}
	uc.sessions.Set(userID, session, uc.admin.SessionTimeout)

	if err := uc.storeAdminFlag(ctx, userID, &session.ExpiresAt); err != nil {
		return nil, err
	}

	ctxzap.Info(ctx, "admin mode activated",
		zap.String("user_id", userID),
		zap.String("session_id", session.ID),
		zap.Duration("timeout", uc.admin.SessionTimeout),
	)

	return &entity.AdminSessionDTO{
		UserID:    userID,
		IsAdmin:   true,
		ExpiresIn: int(uc.admin.SessionTimeout.Seconds()),
	}, nil
}

// DeactivateAdmin closes the user's admin session and reports whether one existed
func (uc *UserUsecase) DeactivateAdmin(ctx context.Context, userID string) (bool, error) {
	if _, ok := uc.sessions.Get(userID); !ok {
		return false, nil
	}
	uc.sessions.Delete(userID)

	if err := uc.storeAdminFlag(ctx, userID, nil); err != nil {
		return true, err
	}

	ctxzap.Info(ctx, "admin mode deactivated", zap.String("user_id", userID))
	return true, nil
}

// IsAdmin reports whether the user has an unexpired admin session
func (uc *UserUsecase) IsAdmin(userID string) bool {
	_, ok := uc.sessions.Get(userID)
	return ok
}

// Stats returns usage and effective limits; admins see the unlimited admin plan
func (uc *UserUsecase) Stats(ctx context.Context, userID string) (*entity.UserStatsDTO, error) {
	user, err := uc.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	plan, err := uc.plan(user.Plan)
	if err != nil {
		return nil, err
	}

	stats := &entity.UserStatsDTO{
		UserID:         user.ID,
		Plan:           user.Plan,
		PlanName:       plan.DisplayName,
		DailyUsage:     user.DailyUsage,
		DailyLimit:     plan.DailyLimit,
		TotalUsage:     user.TotalUsage,
		TotalLimit:     plan.TotalLimit,
		MaxSlides:      plan.MaxSlides,
		VisualElements: plan.VisualElements,
	}

	if uc.IsAdmin(userID) {
		stats.IsAdmin = true
		stats.PlanName = adminDisplayName
		stats.DailyLimit = 0
		stats.TotalLimit = 0
		stats.MaxSlides = uc.admin.MaxSlides
		stats.VisualElements = true
	}

	return stats, nil
}

func (uc *UserUsecase) storeAdminFlag(ctx context.Context, userID string, expires *time.Time) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	user, err := uc.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	user.IsAdmin = expires != nil
	user.AdminExpires = expires
	if _, err := uc.users.UpdateUser(ctx, *user); err != nil {
		return fmt.Errorf("store admin flag: %w", err)
	}
	return nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Local().Date()
	by, bm, bd := b.Local().Date()
	return ay == by && am == bm && ad == bd
}
