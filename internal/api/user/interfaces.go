package user

import (
	"context"

	"github.com/futig/deck-backend/internal/entity"
)

type UserUsecase interface {
	Plans() []entity.Plan
	Stats(ctx context.Context, userID string) (*entity.UserStatsDTO, error)
	UpdatePlan(ctx context.Context, userID string, plan entity.PlanName) (*entity.User, error)
	ActivateAdmin(ctx context.Context, userID, password string) (*entity.AdminSessionDTO, error)
	DeactivateAdmin(ctx context.Context, userID string) (bool, error)
}
