package repository

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/futig/deck-backend/internal/entity"
)

type jobParams struct {
	prefs   []byte
	outline []byte
	report  []byte
}

func toJobParams(job entity.Job) (jobParams, error) {
	var (
		params jobParams
		err    error
	)

	if params.prefs, err = json.Marshal(job.VisualPreferences); err != nil {
		return params, fmt.Errorf("marshal visual preferences: %w", err)
	}
	if job.Outline != nil {
		if params.outline, err = json.Marshal(job.Outline); err != nil {
			return params, fmt.Errorf("marshal outline: %w", err)
		}
	}
	if job.Report != nil {
		if params.report, err = json.Marshal(job.Report); err != nil {
			return params, fmt.Errorf("marshal report: %w", err)
		}
	}

	return params, nil
}

func scanJob(row pgx.Row) (*entity.Job, error) {
	var (
		id         pgtype.UUID
		job        entity.Job
		mode       string
		status     string
		outputPath pgtype.Text
		errText    pgtype.Text
		prefs      []byte
		outline    []byte
		report     []byte
	)

	err := row.Scan(
		&id, &job.UserID, &job.Task, &job.URL, &job.DesignStyle, &prefs, &mode, &job.SlideCount,
		&status, &outputPath, &errText, &outline, &report, &job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	job.ID = uuid.UUID(id.Bytes).String()
	job.VisualMode = entity.VisualMode(mode)
	job.Status = entity.JobStatus(status)

	if outputPath.Valid {
		job.OutputPath = &outputPath.String
	}
	if errText.Valid {
		job.Error = &errText.String
	}

	if len(prefs) > 0 {
		if err := json.Unmarshal(prefs, &job.VisualPreferences); err != nil {
			return nil, fmt.Errorf("unmarshal visual preferences: %w", err)
		}
	}
	if len(outline) > 0 {
		if err := json.Unmarshal(outline, &job.Outline); err != nil {
			return nil, fmt.Errorf("unmarshal outline: %w", err)
		}
	}
	if len(report) > 0 {
		job.Report = &entity.ResourceReport{}
		if err := json.Unmarshal(report, job.Report); err != nil {
			return nil, fmt.Errorf("unmarshal report: %w", err)
		}
	}

	return &job, nil
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var (
		user         entity.User
		plan         string
		adminExpires pgtype.Timestamptz
	)

	err := row.Scan(
		&user.ID, &plan, &user.DailyUsage, &user.TotalUsage, &user.LastReset,
		&user.IsAdmin, &adminExpires, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.Plan = entity.PlanName(plan)
	if adminExpires.Valid {
		user.AdminExpires = &adminExpires.Time
	}

	return &user, nil
}
