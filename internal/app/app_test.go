package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/kotlens/kotlens/internal/config"
	"github.com/kotlens/kotlens/internal/test_utils"
	"github.com/kotlens/kotlens/internal/utils"
	"github.com/kotlens/kotlens/pkg/analysis"
	"github.com/kotlens/kotlens/pkg/auth"
	"github.com/kotlens/kotlens/pkg/digest"
	"github.com/kotlens/kotlens/pkg/digest_run"
	"github.com/kotlens/kotlens/pkg/kot"
	"github.com/kotlens/kotlens/pkg/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type appFixture struct {
	router http.Handler
	deps   *Dependencies
	sender *digest.SenderStub
}

func setupApp(t *testing.T) appFixture {
	t.Helper()
	cfg := config.Application{
		Auth: config.Auth{Password: "s3cret", SessionSecret: "test-secret", SessionMaxAge: 8},
		Mail: config.Mail{From: "KOT Analysis <noreply@example.com>", To: "hr@example.com"},
	}
	clock := &utils.MockClock{FixedNow: time.Date(2024, 6, 20, 9, 0, 0, 0, time.FixedZone("JST", 9*60*60))}
	client := kot.NewClientStub()
	client.SetEmployees(test_utils.Employees())
	client.AddWorkings(
		test_utils.OvertimeRecord("e1", 2024, 6, 50),
		test_utils.OvertimeRecord("e2", 2024, 6, 10),
	)
	sender := digest.NewSenderStub()

	deps, err := wireDependencies(cfg, clock, client, snapshot.NewMemoryRepository(), digest_run.NewMemoryRepository(), sender)
	require.NoError(t, err)
	t.Cleanup(deps.Close)

	r := mux.NewRouter()
	SetupMiddleware(r, deps, cfg)
	RegisterRoutes(r, deps, cfg)
	return appFixture{router: r, deps: deps, sender: sender}
}

func (f appFixture) serve(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func (f appFixture) login(t *testing.T) []*http.Cookie {
	t.Helper()
	body, _ := json.Marshal(auth.LoginRequest{Password: "s3cret"})
	rr := f.serve(httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rr.Code)
	return rr.Result().Cookies()
}

func TestRoutes(t *testing.T) {
	t.Run("should answer health without a session", func(t *testing.T) {
		f := setupApp(t)

		rr := f.serve(httptest.NewRequest(http.MethodGet, "/api/health", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"status":"ok","message":"KOT Analysis Server is running"}`, rr.Body.String())
	})

	t.Run("should protect the analysis", func(t *testing.T) {
		f := setupApp(t)

		rr := f.serve(httptest.NewRequest(http.MethodGet, "/api/analysis", nil))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("should serve the analysis of the current month to a logged in user", func(t *testing.T) {
		// given
		f := setupApp(t)
		req := httptest.NewRequest(http.MethodGet, "/api/analysis", nil)
		for _, c := range f.login(t) {
			req.AddCookie(c)
		}

		// when
		rr := f.serve(req)

		// then
		require.Equal(t, http.StatusOK, rr.Code)
		var body analysis.AnalysisDTO
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, 2024, body.Period.Year)
		assert.Equal(t, 6, body.Period.Month)
		assert.Len(t, body.Employees, 2)
		assert.Equal(t, 1, body.Summary.Caution)
		assert.Equal(t, 1, body.Summary.Safe)
	})

	t.Run("should send the report with the bearer password and list the run", func(t *testing.T) {
		// given
		f := setupApp(t)
		send := httptest.NewRequest(http.MethodPost, "/api/admin/send-report", nil)
		send.Header.Set("Authorization", "Bearer s3cret")

		// when
		rr := f.serve(send)

		// then
		require.Equal(t, http.StatusOK, rr.Code)
		require.Len(t, f.sender.Sent(), 1)

		list := httptest.NewRequest(http.MethodGet, "/api/admin/digest-runs", nil)
		for _, c := range f.login(t) {
			list.AddCookie(c)
		}
		rr = f.serve(list)
		require.Equal(t, http.StatusOK, rr.Code)
		var runs []digest_run.RunDTO
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &runs))
		require.Len(t, runs, 1)
		assert.Equal(t, digest_run.StatusSent, runs[0].Status)
	})

	t.Run("should keep the report trigger closed without credentials", func(t *testing.T) {
		f := setupApp(t)

		rr := f.serve(httptest.NewRequest(http.MethodPost, "/api/admin/send-report", nil))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Empty(t, f.sender.Sent())
	})
}

func TestDependencies_NewScheduler(t *testing.T) {
	t.Run("should schedule in the configured timezone", func(t *testing.T) {
		// given
		f := setupApp(t)

		// when
		scheduler, err := f.deps.NewScheduler(config.Schedule{Cron: "0 9 * * 5", Timezone: "Asia/Tokyo"})

		// then
		require.NoError(t, err)
		next := scheduler.Next(time.Date(2024, 6, 19, 0, 0, 0, 0, time.UTC))
		assert.True(t, time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC).Equal(next), "next run at %s", next)
	})

	t.Run("should reject an unknown timezone", func(t *testing.T) {
		f := setupApp(t)

		_, err := f.deps.NewScheduler(config.Schedule{Cron: "0 9 * * 5", Timezone: "Mars/Olympus"})

		assert.Error(t, err)
	})
}
