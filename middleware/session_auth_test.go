package middleware

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"token-claim-service/models"
	"token-claim-service/services"

	"github.com/gofiber/fiber/v2"
)

type fakeValidator struct {
	sessions map[string]*models.Session
	err      error
}

func (f *fakeValidator) Validate(ctx context.Context, token string) (*models.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	sess, ok := f.sessions[token]
	if !ok {
		return nil, services.ErrNotAuthenticated
	}
	return sess, nil
}

func newTestApp(v SessionValidator) *fiber.App {
	app := fiber.New()
	whoami := func(c *fiber.Ctx) error {
		return c.SendString(UserID(c) + "/" + SessionID(c))
	}
	app.Get("/s/me", SessionAuthMiddleware(v), whoami)
	app.Get("/stream", StreamAuthMiddleware(v), whoami)
	return app
}

func TestSessionAuthMiddleware(t *testing.T) {
	v := &fakeValidator{sessions: map[string]*models.Session{
		"good": {ID: "sess-1", UserID: "user-1"},
	}}
	app := newTestApp(v)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{name: "valid bearer", header: "Bearer good", status: fiber.StatusOK},
		{name: "missing header", header: "", status: fiber.StatusUnauthorized},
		{name: "no bearer prefix", header: "good", status: fiber.StatusUnauthorized},
		{name: "unknown token", header: "Bearer bad", status: fiber.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/s/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			if resp.StatusCode != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, resp.StatusCode)
			}
		})
	}
}

func TestStreamAuthMiddleware(t *testing.T) {
	v := &fakeValidator{sessions: map[string]*models.Session{
		"good": {ID: "sess-1", UserID: "user-1"},
	}}
	app := newTestApp(v)

	resp, err := app.Test(httptest.NewRequest("GET", "/stream?token=good", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	resp, _ = app.Test(httptest.NewRequest("GET", "/stream", nil))
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}
}

func TestSessionAuthMiddleware_StoreFailure(t *testing.T) {
	app := newTestApp(&fakeValidator{err: &services.StoreError{Op: "load session", Err: errors.New("down")}})

	req := httptest.NewRequest("GET", "/s/me", nil)
	req.Header.Set("Authorization", "Bearer good")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
}
