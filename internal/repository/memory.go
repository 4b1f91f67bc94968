package repository

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/futig/deck-backend/internal/entity"
)

const cleanupInterval = 10 * time.Minute

// JobMemory keeps jobs in process memory and forgets them after the TTL
type JobMemory struct {
	jobs *cache.Cache
	now  func() time.Time
}

func NewJobMemory(ttl time.Duration) *JobMemory {
	return &JobMemory{
		jobs: cache.New(ttl, cleanupInterval),
		now:  time.Now,
	}
}

func (r *JobMemory) CreateJob(_ context.Context, job entity.Job) (*entity.Job, error) {
	now := r.now()
	job.CreatedAt = now
	job.UpdatedAt = now

	r.jobs.SetDefault(job.ID, job)
	return &job, nil
}

func (r *JobMemory) GetJobByID(_ context.Context, id string) (*entity.Job, error) {
	v, ok := r.jobs.Get(id)
	if !ok {
		return nil, entity.ErrJobNotFound
	}
	job := v.(entity.Job)
	return &job, nil
}

// UpdateJob replaces the stored job and restarts its TTL
func (r *JobMemory) UpdateJob(_ context.Context, job entity.Job) (*entity.Job, error) {
	if _, ok := r.jobs.Get(job.ID); !ok {
		return nil, entity.ErrJobNotFound
	}

	job.UpdatedAt = r.now()
	r.jobs.SetDefault(job.ID, job)
	return &job, nil
}

func (r *JobMemory) JobStats(_ context.Context) (entity.JobStats, error) {
	var stats entity.JobStats
	for _, item := range r.jobs.Items() {
		countStatus(&stats, item.Object.(entity.Job).Status, 1)
	}
	return stats, nil
}

// UserMemory keeps users in process memory without expiry
type UserMemory struct {
	mu    sync.Mutex
	users *cache.Cache
	now   func() time.Time
}

func NewUserMemory() *UserMemory {
	return &UserMemory{
		users: cache.New(cache.NoExpiration, 0),
		now:   time.Now,
	}
}

func (r *UserMemory) GetOrCreateUser(_ context.Context, id string, plan entity.PlanName) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.users.Get(id); ok {
		user := v.(entity.User)
		return &user, nil
	}

	now := r.now()
	user := entity.User{
		ID:        id,
		Plan:      plan,
		LastReset: now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.users.Set(id, user, cache.NoExpiration)
	return &user, nil
}

func (r *UserMemory) GetUser(_ context.Context, id string) (*entity.User, error) {
	v, ok := r.users.Get(id)
	if !ok {
		return nil, entity.ErrUserNotFound
	}
	user := v.(entity.User)
	return &user, nil
}

func (r *UserMemory) UpdateUser(_ context.Context, user entity.User) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users.Get(user.ID); !ok {
		return nil, entity.ErrUserNotFound
	}

	user.UpdatedAt = r.now()
	r.users.Set(user.ID, user, cache.NoExpiration)
	return &user, nil
}
