package handlers

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/Mayckon02/shapebot-ai/internal/models"
	"github.com/Mayckon02/shapebot-ai/internal/services"
)

type checkoutService interface {
	Plans() []services.Plan
	CreatePixPayment(ctx context.Context, userID int64, input services.CheckoutInput) (*models.Payment, error)
	GetPayment(ctx context.Context, userID, paymentID int64) (*models.Payment, error)
	Retry(ctx context.Context, userID, paymentID int64) (*models.Payment, error)
}

type CheckoutHandler struct {
	service checkoutService
}

func NewCheckoutHandler(service checkoutService) *CheckoutHandler {
	return &CheckoutHandler{service: service}
}

func (h *CheckoutHandler) ListPlans(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"plans": h.service.Plans()})
}

func (h *CheckoutHandler) CreatePix(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req services.CheckoutInput
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	intent, err := h.service.CreatePixPayment(c.Context(), userID, req)
	if err != nil {
		var validation *services.ValidationError
		switch {
		case errors.As(err, &validation):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": validation.Fields})
		case errors.Is(err, services.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown plan"})
		case errors.Is(err, services.ErrPaymentGateway):
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Payment gateway unavailable"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create payment"})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"payment": intent})
}

func (h *CheckoutHandler) GetPayment(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	paymentID, err := parsePaymentID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payment id"})
	}

	intent, err := h.service.GetPayment(c.Context(), userID, paymentID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Payment not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch payment"})
	}

	return c.JSON(fiber.Map{"payment": intent})
}

func (h *CheckoutHandler) Retry(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	paymentID, err := parsePaymentID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payment id"})
	}

	intent, err := h.service.Retry(c.Context(), userID, paymentID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Payment not found"})
		case errors.Is(err, services.ErrInvalidStateTransition):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Payment is not retryable"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retry payment"})
		}
	}

	return c.JSON(fiber.Map{"payment": intent})
}

func parsePaymentID(c *fiber.Ctx) (int64, error) {
	paymentID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || paymentID <= 0 {
		return 0, errors.New("invalid payment id")
	}
	return paymentID, nil
}
