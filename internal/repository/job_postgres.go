package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/futig/deck-backend/internal/entity"
)

const jobColumns = `id, user_id, task, url, design_style, visual_preferences, visual_mode, slide_count,
	status, output_path, error, outline, report, created_at, updated_at`

// JobPostgres implements JobRepository using PostgreSQL
type JobPostgres struct {
	db *pgxpool.Pool
}

func NewJobPostgres(db *pgxpool.Pool) *JobPostgres {
	return &JobPostgres{db: db}
}

func (r *JobPostgres) CreateJob(ctx context.Context, job entity.Job) (*entity.Job, error) {
	jobID, err := uuid.Parse(job.ID)
	if err != nil {
		return nil, fmt.Errorf("parse job ID: %w", err)
	}

	params, err := toJobParams(job)
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO jobs (id, user_id, task, url, design_style, visual_preferences, visual_mode, slide_count,
			status, output_path, error, outline, report)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+jobColumns,
		pgtype.UUID{Bytes: jobID, Valid: true}, job.UserID, job.Task, job.URL, job.DesignStyle, params.prefs, string(job.VisualMode), job.SlideCount,
		string(job.Status), job.OutputPath, job.Error, params.outline, params.report,
	)

	result, err := scanJob(row)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	return result, nil
}

func (r *JobPostgres) GetJobByID(ctx context.Context, id string) (*entity.Job, error) {
	jobID, err := uuid.Parse(id)
	if err != nil {
		return nil, entity.ErrJobNotFound
	}

	result, err := scanJob(r.db.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, pgtype.UUID{Bytes: jobID, Valid: true}))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrJobNotFound
		}
		return nil, fmt.Errorf("get job: %w", err)
	}
	return result, nil
}

func (r *JobPostgres) UpdateJob(ctx context.Context, job entity.Job) (*entity.Job, error) {
	jobID, err := uuid.Parse(job.ID)
	if err != nil {
		return nil, entity.ErrJobNotFound
	}

	params, err := toJobParams(job)
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRow(ctx, `
		UPDATE jobs
		SET design_style = $2, visual_preferences = $3, slide_count = $4, status = $5,
			output_path = $6, error = $7, outline = $8, report = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING `+jobColumns,
		pgtype.UUID{Bytes: jobID, Valid: true}, job.DesignStyle, params.prefs, job.SlideCount, string(job.Status),
		job.OutputPath, job.Error, params.outline, params.report,
	)

	result, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrJobNotFound
		}
		return nil, fmt.Errorf("update job: %w", err)
	}
	return result, nil
}

func (r *JobPostgres) JobStats(ctx context.Context) (entity.JobStats, error) {
	var stats entity.JobStats

	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM jobs GROUP BY status`)
	if err != nil {
		return stats, fmt.Errorf("job stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return stats, fmt.Errorf("scan job stats: %w", err)
		}
		countStatus(&stats, entity.JobStatus(status), count)
	}

	return stats, rows.Err()
}
