package presentation

import (
	"github.com/futig/deck-backend/internal/entity"
	"github.com/futig/deck-backend/internal/renderer"
)

func toJobDTO(job *entity.Job, downloadURL string) *entity.JobDTO {
	dto := &entity.JobDTO{
		JobID:       job.ID,
		Status:      job.Status,
		Task:        job.Task,
		DesignStyle: job.DesignStyle,
		SlideCount:  job.SlideCount,
		Error:       job.Error,
		CreatedAt:   job.CreatedAt,
		UpdatedAt:   job.UpdatedAt,
	}
	if job.Status == entity.JobStatusDone {
		dto.DownloadURL = downloadURL
		if job.Report != nil {
			dto.Rating = job.Report.Rating
		}
	}
	return dto
}

func toDesignStyleDTO(s renderer.Style) entity.DesignStyleDTO {
	return entity.DesignStyleDTO{
		ID:         s.ID,
		Name:       s.Name,
		Family:     renderer.FamilyName(s.Family()),
		Title:      s.Title,
		Body:       s.Body,
		Accent:     s.Accent,
		Background: s.Background[0],
	}
}
