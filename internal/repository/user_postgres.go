package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/futig/deck-backend/internal/entity"
)

const userColumns = `id, plan, daily_usage, total_usage, last_reset, is_admin, admin_expires, created_at, updated_at`

// UserPostgres implements UserRepository using PostgreSQL
type UserPostgres struct {
	db *pgxpool.Pool
}

func NewUserPostgres(db *pgxpool.Pool) *UserPostgres {
	return &UserPostgres{db: db}
}

func (r *UserPostgres) GetOrCreateUser(ctx context.Context, id string, plan entity.PlanName) (*entity.User, error) {
	// The no-op update makes RETURNING yield the existing row on conflict
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (id, plan) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET id = EXCLUDED.id
		RETURNING `+userColumns,
		id, string(plan),
	)

	user, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("get or create user: %w", err)
	}
	return user, nil
}

func (r *UserPostgres) GetUser(ctx context.Context, id string) (*entity.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (r *UserPostgres) UpdateUser(ctx context.Context, user entity.User) (*entity.User, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE users
		SET plan = $2, daily_usage = $3, total_usage = $4, last_reset = $5,
			is_admin = $6, admin_expires = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns,
		user.ID, string(user.Plan), user.DailyUsage, user.TotalUsage, user.LastReset,
		user.IsAdmin, user.AdminExpires,
	)

	result, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return result, nil
}
