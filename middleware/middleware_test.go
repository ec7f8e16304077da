package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"competition-system/models"
	"competition-system/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	users map[string]*models.User
}

func (f fakeResolver) ResolveCredential(_ context.Context, token string) (*models.User, error) {
	switch token {
	case "expired":
		return nil, services.ErrInvalidToken
	case "down":
		return nil, fmt.Errorf("%w: connection refused", services.ErrStorageUnavailable)
	}
	if u, ok := f.users[token]; ok {
		return u, nil
	}
	return nil, services.ErrUserNotFound
}

type recorder struct {
	kinds    []string
	requests int
}

func (r *recorder) ServiceError(kind string) { r.kinds = append(r.kinds, kind) }

func (r *recorder) ObserveRequest(string, string, int, time.Duration) { r.requests++ }

func newApp(rec *recorder) *fiber.App {
	onError := ErrorHandler(rec)
	app := fiber.New(fiber.Config{ErrorHandler: onError})
	app.Use(RequestLogger(rec, onError))

	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("database password is hunter2")
	})

	resolver := fakeResolver{users: map[string]*models.User{"good": {ID: 1, Username: "alice"}}}
	secured := app.Group("/", RequireUser(resolver))
	secured.Get("/users/me", func(c *fiber.Ctx) error {
		return c.JSON(CurrentUser(c))
	})
	return app
}

func body(t *testing.T, r io.Reader) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(r).Decode(&out))
	return out
}

func TestRequireUser(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantError  string
	}{
		{"missing header", "", fiber.StatusUnauthorized, "not authenticated"},
		{"wrong scheme", "Basic abc", fiber.StatusUnauthorized, "not authenticated"},
		{"invalid token", "Bearer expired", fiber.StatusForbidden, "could not validate credentials"},
		{"deleted user", "Bearer ghost", fiber.StatusNotFound, "user not found"},
		{"storage down", "Bearer down", fiber.StatusServiceUnavailable, "storage unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newApp(&recorder{})
			req := httptest.NewRequest("GET", "/users/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantError, body(t, resp.Body)["error"])
		})
	}
}

func TestRequireUserStoresUser(t *testing.T) {
	rec := &recorder{}
	app := newApp(rec)
	req := httptest.NewRequest("GET", "/users/me", nil)
	req.Header.Set("Authorization", "bearer good")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "alice", body(t, resp.Body)["username"])
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	assert.Equal(t, 1, rec.requests)
}

func TestErrorHandlerHidesUnexpectedErrors(t *testing.T) {
	rec := &recorder{}
	app := newApp(rec)

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "internal server error", body(t, resp.Body)["error"])
	assert.Empty(t, rec.kinds)
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{services.ErrCompetitionNotFound, fiber.StatusNotFound},
		{services.ErrNoPartialContribution, fiber.StatusNotFound},
		{services.ErrUserNotFound, fiber.StatusNotFound},
		{services.ErrEmailTaken, fiber.StatusConflict},
		{services.ErrInvalidMode, fiber.StatusBadRequest},
		{services.ErrPasswordTooLong, fiber.StatusBadRequest},
		{fmt.Errorf("%w: value too long for type character varying(255)", services.ErrInvalidValue), fiber.StatusBadRequest},
		{services.ErrInvalidCredentials, fiber.StatusUnauthorized},
		{services.ErrInvalidToken, fiber.StatusForbidden},
		{fmt.Errorf("%w: timeout", services.ErrStorageUnavailable), fiber.StatusServiceUnavailable},
		{fiber.ErrMethodNotAllowed, fiber.StatusMethodNotAllowed},
		{errors.New("other"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorStatus(tt.err))
		})
	}
}

func TestErrorHandlerSetsAuthenticateHeader(t *testing.T) {
	rec := &recorder{}
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(rec)})
	app.Post("/token", func(c *fiber.Ctx) error { return services.ErrInvalidCredentials })

	resp, err := app.Test(httptest.NewRequest("POST", "/token", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))
	assert.Equal(t, []string{"invalid_credentials"}, rec.kinds)
}
