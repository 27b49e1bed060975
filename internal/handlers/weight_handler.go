package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/Mayckon02/shapebot-ai/internal/models"
	"github.com/Mayckon02/shapebot-ai/internal/services"
)

type weightService interface {
	AddWeight(ctx context.Context, userID int64, weightKG float64) (*models.WeightEntry, error)
	ListWeights(ctx context.Context, userID int64) ([]models.WeightEntry, error)
	Progress(ctx context.Context, userID int64) (*services.ProgressSummary, error)
	GetProfile(ctx context.Context, userID int64) (*models.UserProfile, error)
}

type WeightHandler struct {
	profiles weightService
}

func NewWeightHandler(profiles weightService) *WeightHandler {
	return &WeightHandler{profiles: profiles}
}

type addWeightRequest struct {
	WeightKG float64 `json:"weight_kg"`
}

func (h *WeightHandler) AddWeight(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req addWeightRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	entry, err := h.profiles.AddWeight(c.Context(), userID, req.WeightKG)
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Weight must be positive"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to log weight"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"entry": entry})
}

func (h *WeightHandler) ListWeights(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	entries, err := h.profiles.ListWeights(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch weight log"})
	}

	return c.JSON(fiber.Map{"entries": entries})
}

// Dashboard bundles the profile, the weight log and the progress summary for
// the progress screen.
func (h *WeightHandler) Dashboard(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	profile, err := h.profiles.GetProfile(c.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Complete onboarding first"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch profile"})
	}

	entries, err := h.profiles.ListWeights(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch weight log"})
	}

	progress, err := h.profiles.Progress(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to compute progress"})
	}

	return c.JSON(fiber.Map{
		"profile":  profile,
		"entries":  entries,
		"progress": progress,
	})
}
