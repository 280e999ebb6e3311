package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/luminher/luminher-api/internal/client"
	"github.com/luminher/luminher-api/internal/guard"
	"github.com/luminher/luminher-api/internal/models"
	"github.com/luminher/luminher-api/internal/session"
)

type fakeAPI struct {
	ensure    *models.EnsureAdminResult
	ensureErr error
	users     *models.UserPage
	plans     []client.PlanSummary
	rated     float64
	removed   string
	calls     int
}

func (f *fakeAPI) EnsureAdminClaim(context.Context) (*models.EnsureAdminResult, error) {
	f.calls++
	if f.ensureErr != nil {
		return nil, f.ensureErr
	}
	if f.ensure == nil {
		return &models.EnsureAdminResult{}, nil
	}
	return f.ensure, nil
}

func (f *fakeAPI) ListUsers(context.Context, models.ListUsersRequest) (*models.UserPage, error) {
	f.calls++
	return f.users, nil
}

func (f *fakeAPI) CreateUser(context.Context, models.CreateUserRequest) (string, error) {
	f.calls++
	return "new-uid", nil
}

func (f *fakeAPI) DeleteUser(context.Context, string) error { f.calls++; return nil }

func (f *fakeAPI) SetUserRole(context.Context, string, bool) error { f.calls++; return nil }

func (f *fakeAPI) GenerateResetLink(context.Context, string) (string, error) {
	f.calls++
	return "https://example.test/reset", nil
}

func (f *fakeAPI) SharePlan(context.Context, models.SharePlanRequest) (string, error) {
	f.calls++
	return "plan-1", nil
}

func (f *fakeAPI) ListSharedPlans(context.Context) ([]client.PlanSummary, error) {
	f.calls++
	return f.plans, nil
}

func (f *fakeAPI) RatePlan(_ context.Context, _ string, value float64) (float64, int, error) {
	f.calls++
	f.rated = value
	return 4.5, 2, nil
}

func (f *fakeAPI) RemovePlan(_ context.Context, id string) error {
	f.calls++
	f.removed = id
	return nil
}

func (f *fakeAPI) Metrics(context.Context) (*models.UserMetrics, error) {
	f.calls++
	return &models.UserMetrics{TotalUsers: 7, AdminUsers: 2}, nil
}

func (f *fakeAPI) DailySignups(context.Context) (*models.DailySignups, error) {
	f.calls++
	return &models.DailySignups{
		Range:  models.DateRange{Start: "2023-12-22", End: "2024-01-20"},
		Series: []models.DayCount{{Date: "2024-01-20", Count: 3}},
	}, nil
}

type harness struct {
	api   *fakeAPI
	store *session.Store
	out   *bytes.Buffer
}

func newHarness(t *testing.T, user *session.User) *harness {
	t.Helper()
	store := session.NewStore(session.NewMemoryPersister(), zap.NewNop())
	if user != nil {
		require.NoError(t, store.SignIn(*user))
	}
	return &harness{api: &fakeAPI{}, store: store, out: &bytes.Buffer{}}
}

func (h *harness) run(t *testing.T, args ...string) error {
	t.Helper()
	app := &App{
		Store:  h.store,
		Guard:  guard.New(h.store, guard.DefaultRoutes),
		API:    h.api,
		Out:    h.out,
		Logger: zap.NewNop(),
	}
	cmd := NewRootCmd(app, "test")
	cmd.SetArgs(args)
	cmd.SetErr(&bytes.Buffer{})
	return cmd.ExecuteContext(context.Background())
}

func idToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("unverified"))
	require.NoError(t, err)
	return raw
}

func TestUserFromIDToken(t *testing.T) {
	u, err := userFromIDToken(idToken(t, jwt.MapClaims{
		"sub": "uid-1", "email": "ana@example.com", "name": "Ana", "admin": true,
	}))
	require.NoError(t, err)
	assert.Equal(t, "uid-1", u.UID)
	assert.Equal(t, "ana@example.com", u.Email)
	assert.Equal(t, "Ana", u.Name)
	assert.True(t, u.Admin)

	u, err = userFromIDToken(idToken(t, jwt.MapClaims{"user_id": "uid-2", "sub": "ignored"}))
	require.NoError(t, err)
	assert.Equal(t, "uid-2", u.UID)

	_, err = userFromIDToken("  ")
	assert.Error(t, err)
	_, err = userFromIDToken("not-a-jwt")
	assert.Error(t, err)
	_, err = userFromIDToken(idToken(t, jwt.MapClaims{"email": "x@example.com"}))
	assert.Error(t, err)
}

func TestLogin(t *testing.T) {
	t.Run("syncs admin role from the server", func(t *testing.T) {
		h := newHarness(t, nil)
		h.api.ensure = &models.EnsureAdminResult{Updated: true, Admin: true}

		err := h.run(t, "login", "--id-token", idToken(t, jwt.MapClaims{"sub": "boss", "email": "boss@admin.com"}))
		require.NoError(t, err)

		snap := h.store.Current()
		require.True(t, snap.Authenticated())
		assert.Equal(t, "boss", snap.User.Name)
		assert.True(t, snap.IsAdmin())
		assert.Contains(t, h.out.String(), "Signed in as boss <boss@admin.com> (admin)")
		assert.Contains(t, h.out.String(), "Admin role granted")
	})

	t.Run("keeps the session when the claim sync fails", func(t *testing.T) {
		h := newHarness(t, nil)
		h.api.ensureErr = errors.New("offline")

		err := h.run(t, "login", "--id-token", idToken(t, jwt.MapClaims{"sub": "alice", "email": "alice@example.com"}))
		require.NoError(t, err)
		assert.Equal(t, session.RoleUser, h.store.Current().Role)
	})

	t.Run("blocked while signed in", func(t *testing.T) {
		h := newHarness(t, &session.User{UID: "alice", Email: "alice@example.com"})

		err := h.run(t, "login", "--id-token", idToken(t, jwt.MapClaims{"sub": "other"}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), guard.ReasonAlreadySignedIn)
		assert.Equal(t, "alice", h.store.Current().User.UID)
		assert.Zero(t, h.api.calls)
	})
}

func TestLogoutAndWhoami(t *testing.T) {
	h := newHarness(t, &session.User{UID: "alice", Email: "alice@example.com"})

	require.NoError(t, h.run(t, "whoami"))
	assert.Contains(t, h.out.String(), "alice <alice@example.com>")
	assert.Contains(t, h.out.String(), "role: user")

	h.out.Reset()
	require.NoError(t, h.run(t, "logout"))
	assert.False(t, h.store.Current().Authenticated())

	h.out.Reset()
	require.NoError(t, h.run(t, "whoami"))
	assert.Equal(t, "Not signed in.\n", h.out.String())
}

func TestGuardedCommands(t *testing.T) {
	tests := []struct {
		name   string
		user   *session.User
		args   []string
		reason string
	}{
		{"users while signed out", nil, []string{"users", "ls"}, guard.ReasonSignInRequired},
		{"users as a regular user", &session.User{UID: "alice"}, []string{"users", "ls"}, guard.ReasonAdminRequired},
		{"metrics as a regular user", &session.User{UID: "alice"}, []string{"metrics"}, guard.ReasonAdminRequired},
		{"plans while signed out", nil, []string{"plans", "ls"}, guard.ReasonSignInRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.user)
			err := h.run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.reason)
			assert.Zero(t, h.api.calls, "blocked commands never reach the API")
		})
	}
}

func TestAdminCommands(t *testing.T) {
	created := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	h := newHarness(t, &session.User{UID: "root", Email: "root@admin.com", Admin: true})
	h.api.users = &models.UserPage{
		Users:         []*models.UserRecord{{UID: "u1", Email: "u1@example.com", CreatedAt: &created}},
		NextPageToken: "2",
	}

	require.NoError(t, h.run(t, "users", "ls", "--page-size", "1"))
	assert.Contains(t, h.out.String(), "u1@example.com")
	assert.Contains(t, h.out.String(), "2024-01-02")
	assert.Contains(t, h.out.String(), "--page-token 2")

	h.out.Reset()
	require.NoError(t, h.run(t, "metrics"))
	assert.Contains(t, h.out.String(), "Total users: 7")
	assert.Contains(t, h.out.String(), "Admin users: 2")

	h.out.Reset()
	require.NoError(t, h.run(t, "signups"))
	assert.Contains(t, h.out.String(), "2023-12-22 .. 2024-01-20")
}

func TestPlanCommands(t *testing.T) {
	h := newHarness(t, &session.User{UID: "alice", Email: "alice@example.com"})

	require.NoError(t, h.run(t, "plans", "ls"))
	assert.Contains(t, h.out.String(), "No shared plans yet.")

	h.api.plans = []client.PlanSummary{{ID: "p1", Title: "Walk", OwnerName: "alice", Average: 4, Count: 1}}
	h.out.Reset()
	require.NoError(t, h.run(t, "plans", "ls"))
	assert.Contains(t, h.out.String(), "Walk")

	h.out.Reset()
	require.NoError(t, h.run(t, "plans", "rate", "p1", "7"))
	assert.Equal(t, 7.0, h.api.rated)
	assert.Contains(t, h.out.String(), "average 4.50 over 2")

	assert.Error(t, h.run(t, "plans", "rate", "p1", "lots"))

	require.NoError(t, h.run(t, "plans", "remove", "p1"))
	assert.Equal(t, "p1", h.api.removed)
}
