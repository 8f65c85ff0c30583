package revalidate

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(cfg Config, refresh func(ctx context.Context) error) *fiber.App {
	if refresh == nil {
		refresh = func(ctx context.Context) error { return nil }
	}
	app := fiber.New()
	app.Post("/revalidate", NewHandler(cfg, refresh).Handle)
	return app
}

func doJSON(t *testing.T, app *fiber.App, body string, header map[string]string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/revalidate", strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestBearerModeAcceptsMatchingToken(t *testing.T) {
	app := newTestApp(Config{Mode: AuthBearer, BearerSecret: "cron-secret"}, nil)

	resp := doJSON(t, app, "", map[string]string{"Authorization": "Bearer cron-secret"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestBearerModeRejectsWrongToken(t *testing.T) {
	app := newTestApp(Config{Mode: AuthBearer, BearerSecret: "cron-secret"}, nil)

	resp := doJSON(t, app, "", map[string]string{"Authorization": "Bearer nope"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// A body secret must not satisfy bearer mode.
	resp = doJSON(t, app, `{"secret":"cron-secret"}`, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestBodyModeAcceptsMatchingSecret(t *testing.T) {
	app := newTestApp(Config{Mode: AuthBody, BodySecret: "reval-secret"}, nil)

	resp := doJSON(t, app, `{"secret":"reval-secret"}`, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestBodyModeRejectsMissingOrWrongSecret(t *testing.T) {
	app := newTestApp(Config{Mode: AuthBody, BodySecret: "reval-secret"}, nil)

	resp := doJSON(t, app, `{}`, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, app, `{"secret":"wrong"}`, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, app, "", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAnyModeAcceptsEitherScheme(t *testing.T) {
	cfg := Config{Mode: AuthAny, BearerSecret: "cron-secret", BodySecret: "reval-secret"}
	app := newTestApp(cfg, nil)

	resp := doJSON(t, app, "", map[string]string{"Authorization": "Bearer cron-secret"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, `{"secret":"reval-secret"}`, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, `{"secret":"wrong"}`, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestEmptyConfiguredSecretAlwaysRejects(t *testing.T) {
	app := newTestApp(Config{Mode: AuthBearer}, nil)

	resp := doJSON(t, app, "", map[string]string{"Authorization": "Bearer "})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRefreshFailureReturns500(t *testing.T) {
	app := newTestApp(
		Config{Mode: AuthBearer, BearerSecret: "cron-secret"},
		func(ctx context.Context) error { return errors.New("upstream down") },
	)

	resp := doJSON(t, app, "", map[string]string{"Authorization": "Bearer cron-secret"})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestRefreshRunsOnlyWhenAuthorized(t *testing.T) {
	calls := 0
	app := newTestApp(
		Config{Mode: AuthBearer, BearerSecret: "cron-secret"},
		func(ctx context.Context) error { calls++; return nil },
	)

	doJSON(t, app, "", map[string]string{"Authorization": "Bearer nope"})
	assert.Zero(t, calls)

	doJSON(t, app, "", map[string]string{"Authorization": "Bearer cron-secret"})
	assert.Equal(t, 1, calls)
}
