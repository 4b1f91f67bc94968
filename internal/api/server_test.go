package api

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	presentationapi "github.com/futig/deck-backend/internal/api/presentation"
	userapi "github.com/futig/deck-backend/internal/api/user"
	"github.com/futig/deck-backend/internal/config"
	"github.com/futig/deck-backend/internal/repository"
	"github.com/futig/deck-backend/internal/usecase/user"
)

func TestSetupRouter(t *testing.T) {
	spec := filepath.Join(t.TempDir(), "swagger.yaml")
	require.NoError(t, os.WriteFile(spec, []byte("openapi: 3.0.3\n"), 0o600))

	users := user.NewUsecase(repository.NewUserMemory(), config.DefaultPlans(),
		config.AdminConfig{SessionTimeout: time.Hour}, zap.NewNop())
	router := SetupRouter(presentationapi.NewHandler(nil), userapi.NewHandler(users), spec, zap.NewNop())

	t.Run("preflight", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/generate", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("swagger yaml", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs/swagger.yaml", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "openapi")
	})

	t.Run("plans", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/plans", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"name":"free"`)
	})
}
