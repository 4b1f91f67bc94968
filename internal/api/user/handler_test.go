package user

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/futig/deck-backend/internal/config"
	"github.com/futig/deck-backend/internal/entity"
	"github.com/futig/deck-backend/internal/repository"
	userusecase "github.com/futig/deck-backend/internal/usecase/user"
)

func newServer(t *testing.T, upgrades bool) *httptest.Server {
	t.Helper()
	uc := userusecase.NewUsecase(repository.NewUserMemory(), config.DefaultPlans(),
		config.AdminConfig{Password: "secret", SessionTimeout: time.Hour, PlanUpgrades: upgrades, MaxSlides: 50}, zap.NewNop())

	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(uc))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestPlans(t *testing.T) {
	srv := newServer(t, false)

	resp, err := http.Get(srv.URL + "/api/plans")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Plans []entity.Plan `json:"plans"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Plans, 4)
}

func TestStats_NewUserStartsOnFree(t *testing.T) {
	srv := newServer(t, false)

	resp, err := http.Get(srv.URL + "/api/user/u1")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats entity.UserStatsDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, entity.PlanFree, stats.Plan)
	assert.Equal(t, 5, stats.MaxSlides)
}

func TestUpdatePlan(t *testing.T) {
	assert.Equal(t, http.StatusPaymentRequired, post(t, newServer(t, false).URL+"/api/user/u1/plan", `{"plan":"pro"}`).StatusCode)
	assert.Equal(t, http.StatusOK, post(t, newServer(t, true).URL+"/api/user/u1/plan", `{"plan":"pro"}`).StatusCode)
	assert.Equal(t, http.StatusBadRequest, post(t, newServer(t, true).URL+"/api/user/u1/plan", `{"plan":"gold"}`).StatusCode)
}

func TestAdminActivation(t *testing.T) {
	srv := newServer(t, false)

	assert.Equal(t, http.StatusUnauthorized, post(t, srv.URL+"/api/admin/activate", `{"user_id":"u1","password":"nope"}`).StatusCode)
	assert.Equal(t, http.StatusBadRequest, post(t, srv.URL+"/api/admin/activate", `{"password":"secret"}`).StatusCode)

	resp := post(t, srv.URL+"/api/admin/activate", `{"user_id":"u1","password":"secret"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var session entity.AdminSessionDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&session))
	assert.True(t, session.IsAdmin)
	assert.Equal(t, 3600, session.ExpiresIn)

	assert.Equal(t, http.StatusOK, post(t, srv.URL+"/api/admin/deactivate", `{"user_id":"u1"}`).StatusCode)
}
