package repository

import (
	"context"

	"github.com/futig/deck-backend/internal/entity"
)

// JobRepository stores generation jobs
type JobRepository interface {
	CreateJob(ctx context.Context, job entity.Job) (*entity.Job, error)
	GetJobByID(ctx context.Context, id string) (*entity.Job, error)
	UpdateJob(ctx context.Context, job entity.Job) (*entity.Job, error)
	JobStats(ctx context.Context) (entity.JobStats, error)
}

// UserRepository stores users with their plan and usage counters
type UserRepository interface {
	// GetOrCreateUser returns the user, creating it on the given plan when absent
	GetOrCreateUser(ctx context.Context, id string, plan entity.PlanName) (*entity.User, error)
	GetUser(ctx context.Context, id string) (*entity.User, error)
	UpdateUser(ctx context.Context, user entity.User) (*entity.User, error)
}

var (
	_ JobRepository  = &JobMemory{}
	_ JobRepository  = &JobPostgres{}
	_ UserRepository = &UserMemory{}
	_ UserRepository = &UserPostgres{}
)

func countStatus(stats *entity.JobStats, status entity.JobStatus, n int) {
	stats.Total += n
	switch status {
	case entity.JobStatusPending:
		stats.Pending += n
	case entity.JobStatusProcessing:
		stats.Processing += n
	case entity.JobStatusDone:
		stats.Done += n
	case entity.JobStatusFailed:
		stats.Failed += n
	}
}
