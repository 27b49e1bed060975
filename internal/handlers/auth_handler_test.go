package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/Mayckon02/shapebot-ai/internal/models"
	"github.com/Mayckon02/shapebot-ai/internal/services"
)

type stubSessionService struct {
	user      *models.User
	token     string
	err       error
	lastEmail string
	lastName  string
	loggedOut int64
}

func (s *stubSessionService) Register(_ context.Context, name, email, _ string) (*models.User, string, error) {
	s.lastName = name
	s.lastEmail = email
	return s.user, s.token, s.err
}

func (s *stubSessionService) Login(_ context.Context, email, _ string) (*models.User, string, error) {
	s.lastEmail = email
	return s.user, s.token, s.err
}

func (s *stubSessionService) GetUser(_ context.Context, _ int64) (*models.User, error) {
	return s.user, s.err
}

func (s *stubSessionService) Logout(_ context.Context, userID int64) error {
	s.loggedOut = userID
	return s.err
}

type stubProfileReader struct {
	profile *models.UserProfile
	err     error
}

func (s *stubProfileReader) GetProfile(_ context.Context, _ int64) (*models.UserProfile, error) {
	return s.profile, s.err
}

func withUser(app *fiber.App, userID string) {
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		return c.Next()
	})
}

func TestLoginNormalizesEmail(t *testing.T) {
	service := &stubSessionService{
		user:  &models.User{ID: 1, Email: "maria@example.com", Name: "maria", Plan: models.PlanFree},
		token: "jwt-token",
	}
	handler := NewAuthHandler(service, &stubProfileReader{err: services.ErrNotFound})

	app := fiber.New()
	app.Post("/api/auth/login", handler.Login)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"  Maria@Example.COM ","password":"whatever"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastEmail != "maria@example.com" {
		t.Fatalf("expected lowercased email, got %q", service.lastEmail)
	}

	var body struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if body.Token != "jwt-token" || body.User.ID != 1 {
		t.Fatalf("unexpected response: %+v", body)
	}
}

func TestLoginRejectsMalformedEmail(t *testing.T) {
	handler := NewAuthHandler(&stubSessionService{}, &stubProfileReader{})

	app := fiber.New()
	app.Post("/api/auth/login", handler.Login)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"not-an-email","password":"x"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestRegisterConflict(t *testing.T) {
	service := &stubSessionService{err: services.ErrEmailTaken}
	handler := NewAuthHandler(service, &stubProfileReader{})

	app := fiber.New()
	app.Post("/api/auth/register", handler.Register)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(`{"name":"Maria","email":"maria@example.com","password":"secret123"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestMeReportsOnboardingState(t *testing.T) {
	service := &stubSessionService{user: &models.User{ID: 7, Email: "maria@example.com", Plan: models.PlanFree}}
	profiles := &stubProfileReader{profile: &models.UserProfile{UserID: 7, WeightKG: 90}}
	handler := NewAuthHandler(service, profiles)

	app := fiber.New()
	withUser(app, "7")
	app.Get("/api/auth/me", handler.Me)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		OnboardingComplete bool                `json:"onboarding_complete"`
		Profile            *models.UserProfile `json:"profile"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !body.OnboardingComplete || body.Profile == nil {
		t.Fatalf("expected completed onboarding, got %+v", body)
	}
}

func TestMeWithoutProfile(t *testing.T) {
	service := &stubSessionService{user: &models.User{ID: 7, Email: "maria@example.com", Plan: models.PlanFree}}
	handler := NewAuthHandler(service, &stubProfileReader{err: services.ErrNotFound})

	app := fiber.New()
	withUser(app, "7")
	app.Get("/api/auth/me", handler.Me)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	var body struct {
		OnboardingComplete bool `json:"onboarding_complete"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if body.OnboardingComplete {
		t.Fatal("expected onboarding_complete false")
	}
}

func TestLogoutDeletesAccount(t *testing.T) {
	service := &stubSessionService{}
	handler := NewAuthHandler(service, &stubProfileReader{})

	app := fiber.New()
	withUser(app, "9")
	app.Post("/api/auth/logout", handler.Logout)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.loggedOut != 9 {
		t.Fatalf("expected logout for user 9, got %d", service.loggedOut)
	}
}

func TestParseUserIDRejectsGarbage(t *testing.T) {
	handler := NewAuthHandler(&stubSessionService{}, &stubProfileReader{})

	app := fiber.New()
	withUser(app, "abc")
	app.Get("/api/auth/me", handler.Me)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}
