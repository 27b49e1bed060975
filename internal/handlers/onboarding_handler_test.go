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
	"github.com/Mayckon02/shapebot-ai/internal/repository"
	"github.com/Mayckon02/shapebot-ai/internal/services"
)

type stubProfileService struct {
	profile   *models.UserProfile
	err       error
	lastInput repository.SaveProfileInput
}

func (s *stubProfileService) SaveProfile(_ context.Context, userID int64, input repository.SaveProfileInput) (*models.UserProfile, error) {
	s.lastInput = input
	if s.err != nil {
		return nil, s.err
	}
	return &models.UserProfile{UserID: userID, WeightKG: input.WeightKG}, nil
}

func (s *stubProfileService) GetProfile(_ context.Context, _ int64) (*models.UserProfile, error) {
	return s.profile, s.err
}

func TestSaveProfileForwardsAllFields(t *testing.T) {
	service := &stubProfileService{}
	handler := NewOnboardingHandler(service)

	app := fiber.New()
	withUser(app, "3")
	app.Post("/api/v1/users/onboarding", handler.SaveProfile)

	body := `{
		"weight_kg": 92.5,
		"height_cm": 178,
		"age": 34,
		"target_loss_kg": 12,
		"duration_weeks": 16,
		"diet_description": "muito fast food",
		"activity_level": "sedentario",
		"has_gym_access": true,
		"daily_training_minutes": 45,
		"restrictions": "sem lactose",
		"primary_goal": "perder_peso"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/onboarding", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastInput.ActivityLevel != "sedentario" || service.lastInput.Restrictions != "sem lactose" || !service.lastInput.HasGymAccess {
		t.Fatalf("unexpected forwarded input: %+v", service.lastInput)
	}
}

func TestSaveProfileInvalidAnswers(t *testing.T) {
	service := &stubProfileService{err: services.ErrInvalidInput}
	handler := NewOnboardingHandler(service)

	app := fiber.New()
	withUser(app, "3")
	app.Post("/api/v1/users/onboarding", handler.SaveProfile)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/onboarding", strings.NewReader(`{"age": -1}`))
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

func TestGetProfileNotFound(t *testing.T) {
	service := &stubProfileService{err: services.ErrNotFound}
	handler := NewOnboardingHandler(service)

	app := fiber.New()
	withUser(app, "3")
	app.Get("/api/v1/users/profile", handler.GetProfile)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/users/profile", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if payload.Error != "Profile not found" {
		t.Fatalf("unexpected error: %q", payload.Error)
	}
}
