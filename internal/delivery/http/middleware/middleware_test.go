package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"skillgap/internal/pkg/jwt"
	"skillgap/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(logger logrus.FieldLogger) *fiber.App {
	app := fiber.New()
	app.Use(NewAccessLogMiddleware(logger).Middleware())
	app.Use(NewErrorMiddleware(logger).Middleware())
	return app
}

func decode(t *testing.T, resp *http.Response) response.Envelope {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env response.Envelope
	require.NoError(t, json.Unmarshal(body, &env))
	return env
}

func TestErrorMiddleware_RendersAppError(t *testing.T) {
	logger, _ := test.NewNullLogger()
	app := newTestApp(logger)
	app.Get("/missing", func(c fiber.Ctx) error {
		return NewAppError(fiber.StatusNotFound, "Employee not found", nil, errors.New("no rows"))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	env := decode(t, resp)
	assert.Equal(t, "Employee not found", env.Message)
	assert.NotEmpty(t, env.RequestID)
	assert.Equal(t, env.RequestID, resp.Header.Get(HeaderRequestID))
}

func TestErrorMiddleware_HidesInternalErrors(t *testing.T) {
	logger, hook := test.NewNullLogger()
	app := newTestApp(logger)
	app.Get("/boom", func(c fiber.Ctx) error {
		return NewAppError(fiber.StatusInternalServerError, "pq: connection refused", nil, errors.New("dial tcp"))
	})
	app.Get("/plain", func(c fiber.Ctx) error {
		return errors.New("something else")
	})

	for _, path := range []string{"/boom", "/plain"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, response.MessageInternalServerError, decode(t, resp).Message)
	}

	var failures int
	for _, e := range hook.AllEntries() {
		if e.Message == "request failed" {
			failures++
		}
	}
	assert.Equal(t, 2, failures)
}

func TestErrorMiddleware_RecoversPanics(t *testing.T) {
	logger, hook := test.NewNullLogger()
	app := newTestApp(logger)
	app.Get("/panic", func(c fiber.Ctx) error {
		panic("nil map")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/panic", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var found bool
	for _, e := range hook.AllEntries() {
		if e.Message == "panic recovered" {
			found = true
			assert.Equal(t, logrus.ErrorLevel, e.Level)
		}
	}
	assert.True(t, found)
}

func TestAccessLog_PropagatesRequestID(t *testing.T) {
	logger, hook := test.NewNullLogger()
	app := newTestApp(logger)
	app.Get("/ok", func(c fiber.Ctx) error {
		return response.Success(c, fiber.StatusOK, "", nil)
	})

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, "abc-123", resp.Header.Get(HeaderRequestID))
	assert.Equal(t, "abc-123", decode(t, resp).RequestID)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "http access", entry.Message)
	assert.Equal(t, "abc-123", entry.Data["request_id"])
	assert.Equal(t, http.StatusOK, entry.Data["status"])
}

func TestAuthMiddleware(t *testing.T) {
	svc := jwt.NewHMACService("secret", time.Minute)
	userID := uuid.New()
	valid, err := svc.GenerateAccessToken(userID, "hr@example.com", "hr")
	require.NoError(t, err)

	logger, _ := test.NewNullLogger()
	app := newTestApp(logger)
	app.Use(NewAuthMiddleware(svc).Middleware())
	app.Get("/me", func(c fiber.Ctx) error {
		return response.Success(c, fiber.StatusOK, "", c.Locals(CtxUserIDKey).(uuid.UUID).String())
	})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + valid, http.StatusUnauthorized},
		{"garbage", "Bearer not-a-token", http.StatusUnauthorized},
		{"valid", "Bearer " + valid, http.StatusOK},
		{"lowercase scheme", "bearer " + valid, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
			if tt.want == http.StatusOK {
				assert.Equal(t, userID.String(), decode(t, resp).Data)
			}
		})
	}
}
