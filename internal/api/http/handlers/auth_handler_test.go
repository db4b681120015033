package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/task-manager/internal/api/http/handlers"
	"github.com/spec-kit/task-manager/internal/auth"
	"github.com/spec-kit/task-manager/internal/domain"
	"github.com/spec-kit/task-manager/internal/observability"
	"github.com/spec-kit/task-manager/internal/service"
)

type fakeUserStore struct {
	byID    map[string]*domain.User
	byEmail map[string]*domain.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]*domain.User),
	}
}

func (s *fakeUserStore) Create(_ context.Context, user *domain.User) error {
	if _, exists := s.byEmail[user.Email]; exists {
		return errors.New("duplicate email")
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	stored := *user
	s.byID[user.ID] = &stored
	s.byEmail[user.Email] = &stored
	return nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := s.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	user, ok := s.byEmail[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

// newAuthApp wires the real gate, resolver, token manager and auth handler
// over an in-memory user store.
func newAuthApp(t *testing.T) *fiber.App {
	t.Helper()

	store := newFakeUserStore()
	tokens := auth.NewTokenManager("handler-test-secret", time.Hour, auth.TokenDependencies{Store: store})
	cookies := auth.NewCookieManager(time.Hour, false)
	gate := auth.NewGate(auth.NewIdentityResolver(tokens), cookies, auth.NewRouteTable(), observability.NewMetrics(), zap.NewNop())
	authService := service.NewAuthService(store, tokens, bcrypt.MinCost)
	handler := handlers.NewAuthHandler(authService, cookies)

	app := fiber.New()
	app.Use(gate.Handle)
	app.Post("/api/auth/register", handler.Register)
	app.Post("/api/auth/login", handler.Login)
	app.Post("/api/auth/logout", handler.Logout)
	app.Get("/api/auth/me", handler.Me)
	return app
}

func jsonRequest(method, target, payload string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func parseBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func findSessionCookie(resp *http.Response) *http.Cookie {
	for _, cookie := range resp.Cookies() {
		if cookie.Name == auth.CookieName {
			return cookie
		}
	}
	return nil
}

func TestRegisterLoginMeFlow(t *testing.T) {
	t.Parallel()
	app := newAuthApp(t)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/auth/register",
		`{"name":"A","email":"a@b.com","password":"pass1234"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	cookie := findSessionCookie(resp)
	require.NotNil(t, cookie, "registration must set the session cookie")
	require.NotEmpty(t, cookie.Value)

	// Replay the cookie on a protected endpoint.
	me := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	me.AddCookie(&http.Cookie{Name: auth.CookieName, Value: cookie.Value})
	resp, err = app.Test(me)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	user, ok := parseBody(t, resp)["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "a@b.com", user["email"])
	assert.Equal(t, "A", user["name"])
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	t.Parallel()
	app := newAuthApp(t)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/auth/register",
		`{"name":"A","email":"a@b.com","password":"pass1234"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/auth/login",
		`{"email":"a@b.com","password":"wrong"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, parseBody(t, resp), "error")
	assert.Nil(t, findSessionCookie(resp), "failed login must not set a cookie")
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	t.Parallel()
	app := newAuthApp(t)

	payload := `{"name":"A","email":"a@b.com","password":"pass1234"}`
	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/auth/register", payload))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/auth/register", payload))
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestLogoutClearsCookie(t *testing.T) {
	t.Parallel()
	app := newAuthApp(t)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/auth/register",
		`{"name":"A","email":"a@b.com","password":"pass1234"}`))
	require.NoError(t, err)
	session := findSessionCookie(resp)
	require.NotNil(t, session)

	logout := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	logout.AddCookie(&http.Cookie{Name: auth.CookieName, Value: session.Value})
	resp, err = app.Test(logout)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	cleared := findSessionCookie(resp)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.True(t, cleared.Expires.Before(time.Now()))
}

func TestMeWithoutCookie(t *testing.T) {
	t.Parallel()
	app := newAuthApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, parseBody(t, resp), "error")
}
