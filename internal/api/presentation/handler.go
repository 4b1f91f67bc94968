package presentation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/deck-backend/internal/entity"
	"github.com/futig/deck-backend/internal/pkg/formatter"
	"github.com/futig/deck-backend/internal/pkg/logger"
	"github.com/futig/deck-backend/internal/pkg/response"
	"github.com/futig/deck-backend/internal/pkg/validator"
)

const pptxContentType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

type Handler struct {
	usecase PresentationUsecase
}

func NewHandler(usecase PresentationUsecase) *Handler {
	return &Handler{usecase: usecase}
}

// Generate handles POST /api/generate - Start deck generation
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Generate")
	requestID := chimiddleware.GetReqID(ctx)

	var req entity.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	job, err := h.usecase.Generate(ctx, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	go func() {
		bgCtx := logger.AddFields(ctxzap.ToContext(context.Background(), ctxzap.Extract(ctx)),
			zap.String("request_id", requestID),
			zap.String("job_id", job.ID),
			zap.String("user_id", job.UserID),
			zap.String("action", "Generate-async"),
		)

		ctxzap.Info(bgCtx, "processing generation job")

		if err := h.usecase.Process(bgCtx, job.ID); err != nil {
			ctxzap.Error(bgCtx, "generation job failed", zap.Error(err))
			return
		}

		ctxzap.Info(bgCtx, "generation job finished")
	}()

	response.Accepted(w, entity.GenerateResponse{
		JobID:  job.ID,
		Status: job.Status,
	})
}

// GetJob handles GET /api/job/{id} - Get job state
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("job_id", jobID),
		zap.String("action", "GetJob"),
	)

	job, err := h.usecase.GetJob(ctx, jobID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Debug(ctx, "job fetched", zap.String("status", string(job.Status)))
	response.Success(w, job)
}

// GetOutline handles GET /api/job/{id}/outline?format= - Export the slide outline
func (h *Handler) GetOutline(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("job_id", jobID),
		zap.String("action", "GetOutline"),
	)

	formatParam := r.URL.Query().Get("format")
	if formatParam == "" {
		formatParam = string(entity.FormatMarkdown)
	}

	format := entity.OutlineFormat(formatParam)
	if !format.IsValid() {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid format parameter",
			fmt.Errorf("format must be one of: markdown, docx, pdf"))
		return
	}

	outline, err := h.usecase.Outline(ctx, jobID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	fmtr, err := formatter.NewFactory().Create(format)
	if err != nil {
		h.respondError(ctx, w, http.StatusNotImplemented, "format not implemented", err)
		return
	}

	data, err := fmtr.Format(outline)
	if err != nil {
		h.respondError(ctx, w, http.StatusInternalServerError, "failed to format outline", err)
		return
	}

	ctxzap.Info(ctx, "outline exported", zap.String("format", string(format)))
	response.Attachment(w, fmtr.ContentType(), "outline-"+jobID+fmtr.FileExtension(), data)
}

// Download handles GET /api/download/{id} - Download the deck file
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("job_id", jobID),
		zap.String("action", "Download"),
	)

	path, err := h.usecase.DownloadPath(ctx, jobID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	f, err := os.Open(path)
	if err != nil {
		h.handleUsecaseError(ctx, w, fmt.Errorf("%w: %w", entity.ErrFileMissing, err))
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		h.respondError(ctx, w, http.StatusInternalServerError, "failed to read presentation", err)
		return
	}

	filename := validator.SanitizeFilename(filepath.Base(path))
	w.Header().Set("Content-Type", pptxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))

	ctxzap.Info(ctx, "serving presentation", zap.String("filename", filename), zap.Int64("size", info.Size()))
	http.ServeContent(w, r, filename, info.ModTime(), f)
}

// FileInfo handles GET /api/file-info/{id} - Describe the deck file
func (h *Handler) FileInfo(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("job_id", jobID),
		zap.String("action", "FileInfo"),
	)

	info, err := h.usecase.FileInfo(ctx, jobID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, info)
}

// Designs handles GET /api/designs - List design styles
func (h *Handler) Designs(w http.ResponseWriter, r *http.Request) {
	response.Success(w, map[string]any{
		"designs": h.usecase.Designs(),
	})
}

// Health handles GET /health and GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Health")

	health, err := h.usecase.Health(ctx)
	if err != nil {
		h.respondError(ctx, w, http.StatusServiceUnavailable, "service unhealthy", err)
		return
	}

	response.Success(w, health)
}

func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	ctxzap.Error(ctx, message, zap.Error(err))
	response.Error(w, status, message)
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	if errors.Is(err, entity.ErrJobNotFound) || errors.Is(err, entity.ErrFileMissing) {
		h.respondError(ctx, w, http.StatusNotFound, "resource not found", err)
	} else if errors.Is(err, entity.ErrInvalidParameter) || errors.Is(err, entity.ErrInvalidFormat) || errors.Is(err, entity.ErrMissingField) || errors.Is(err, entity.ErrValidation) {
		h.respondError(ctx, w, http.StatusBadRequest, err.Error(), err)
	} else if errors.Is(err, entity.ErrJobNotReady) {
		h.respondError(ctx, w, http.StatusConflict, "presentation not ready", err)
	} else if errors.Is(err, entity.ErrQuotaExceeded) {
		h.respondError(ctx, w, http.StatusTooManyRequests, err.Error(), err)
	} else {
		h.respondError(ctx, w, http.StatusInternalServerError, "internal server error", err)
	}
}
