package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/Mayckon02/shapebot-ai/internal/models"
	"github.com/Mayckon02/shapebot-ai/internal/repository"
	"github.com/Mayckon02/shapebot-ai/internal/services"
)

type profileService interface {
	SaveProfile(ctx context.Context, userID int64, input repository.SaveProfileInput) (*models.UserProfile, error)
	GetProfile(ctx context.Context, userID int64) (*models.UserProfile, error)
}

type OnboardingHandler struct {
	profiles profileService
}

func NewOnboardingHandler(profiles profileService) *OnboardingHandler {
	return &OnboardingHandler{profiles: profiles}
}

type onboardingRequest struct {
	WeightKG             float64 `json:"weight_kg"`
	HeightCM             float64 `json:"height_cm"`
	Age                  int     `json:"age"`
	TargetLossKG         float64 `json:"target_loss_kg"`
	DurationWeeks        int     `json:"duration_weeks"`
	DietDescription      string  `json:"diet_description"`
	ActivityLevel        string  `json:"activity_level"`
	HasGymAccess         bool    `json:"has_gym_access"`
	DailyTrainingMinutes int     `json:"daily_training_minutes"`
	Restrictions         string  `json:"restrictions"`
	PrimaryGoal          string  `json:"primary_goal"`
}

// SaveProfile persists the finished onboarding questionnaire. The wizard
// submits the whole thing at once; there is no partial save.
func (h *OnboardingHandler) SaveProfile(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req onboardingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	profile, err := h.profiles.SaveProfile(c.Context(), userID, repository.SaveProfileInput{
		WeightKG:             req.WeightKG,
		HeightCM:             req.HeightCM,
		Age:                  req.Age,
		TargetLossKG:         req.TargetLossKG,
		DurationWeeks:        req.DurationWeeks,
		DietDescription:      req.DietDescription,
		ActivityLevel:        req.ActivityLevel,
		HasGymAccess:         req.HasGymAccess,
		DailyTrainingMinutes: req.DailyTrainingMinutes,
		Restrictions:         req.Restrictions,
		PrimaryGoal:          req.PrimaryGoal,
	})
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "All onboarding fields are required"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save profile"})
	}

	return c.JSON(fiber.Map{"profile": profile})
}

func (h *OnboardingHandler) GetProfile(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	profile, err := h.profiles.GetProfile(c.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch profile"})
	}

	return c.JSON(fiber.Map{"profile": profile})
}
