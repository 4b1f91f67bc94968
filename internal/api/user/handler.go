package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/deck-backend/internal/entity"
	"github.com/futig/deck-backend/internal/pkg/logger"
	"github.com/futig/deck-backend/internal/pkg/response"
)

type Handler struct {
	usecase UserUsecase
}

func NewHandler(usecase UserUsecase) *Handler {
	return &Handler{usecase: usecase}
}

// Plans handles GET /api/plans - List subscription plans
func (h *Handler) Plans(w http.ResponseWriter, r *http.Request) {
	response.Success(w, map[string]any{
		"plans": h.usecase.Plans(),
	})
}

// Stats handles GET /api/user/{id} - Get usage and limits
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("user_id", userID),
		zap.String("action", "UserStats"),
	)

	stats, err := h.usecase.Stats(ctx, userID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, stats)
}

// UpdatePlan handles POST /api/user/{id}/plan - Switch subscription plan
func (h *Handler) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("user_id", userID),
		zap.String("action", "UpdatePlan"),
	)

	var req entity.UpdatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	user, err := h.usecase.UpdatePlan(ctx, userID, req.Plan)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, user)
}

// ActivateAdmin handles POST /api/admin/activate - Open an admin session
func (h *Handler) ActivateAdmin(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ActivateAdmin")

	var req entity.AdminActivateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.UserID == "" {
		h.handleUsecaseError(ctx, w, fmt.Errorf("%w: user_id", entity.ErrMissingField))
		return
	}

	session, err := h.usecase.ActivateAdmin(ctx, req.UserID, req.Password)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, session)
}

// DeactivateAdmin handles POST /api/admin/deactivate - Close an admin session
func (h *Handler) DeactivateAdmin(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "DeactivateAdmin")

	var req entity.AdminDeactivateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.UserID == "" {
		h.handleUsecaseError(ctx, w, fmt.Errorf("%w: user_id", entity.ErrMissingField))
		return
	}

	existed, err := h.usecase.DeactivateAdmin(ctx, req.UserID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "admin deactivate requested", zap.Bool("had_session", existed))
	response.Success(w, entity.AdminSessionDTO{UserID: req.UserID})
}

func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	ctxzap.Error(ctx, message, zap.Error(err))
	response.Error(w, status, message)
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	if errors.Is(err, entity.ErrUserNotFound) {
		h.respondError(ctx, w, http.StatusNotFound, "resource not found", err)
	} else if errors.Is(err, entity.ErrInvalidPlan) || errors.Is(err, entity.ErrMissingField) || errors.Is(err, entity.ErrInvalidParameter) {
		h.respondError(ctx, w, http.StatusBadRequest, err.Error(), err)
	} else if errors.Is(err, entity.ErrPaymentRequired) {
		h.respondError(ctx, w, http.StatusPaymentRequired, err.Error(), err)
	} else if errors.Is(err, entity.ErrInvalidAdminLogin) {
		h.respondError(ctx, w, http.StatusUnauthorized, "invalid admin password", err)
	} else {
		h.respondError(ctx, w, http.StatusInternalServerError, "internal server error", err)
	}
}
