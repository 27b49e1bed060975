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

type stubCheckoutService struct {
	plans     []services.Plan
	payment   *models.Payment
	err       error
	lastInput services.CheckoutInput
	lastID    int64
}

func (s *stubCheckoutService) Plans() []services.Plan {
	return s.plans
}

func (s *stubCheckoutService) CreatePixPayment(_ context.Context, _ int64, input services.CheckoutInput) (*models.Payment, error) {
	s.lastInput = input
	return s.payment, s.err
}

func (s *stubCheckoutService) GetPayment(_ context.Context, _ int64, paymentID int64) (*models.Payment, error) {
	s.lastID = paymentID
	return s.payment, s.err
}

func (s *stubCheckoutService) Retry(_ context.Context, _ int64, paymentID int64) (*models.Payment, error) {
	s.lastID = paymentID
	return s.payment, s.err
}

func TestCreatePixReturnsPayment(t *testing.T) {
	service := &stubCheckoutService{
		payment: &models.Payment{
			ID:          11,
			UserID:      4,
			Plan:        models.PlanStandard,
			AmountCents: 2990,
			Status:      models.PaymentProcessing,
			PixCode:     "00020126pix",
		},
	}
	handler := NewCheckoutHandler(service)

	app := fiber.New()
	withUser(app, "4")
	app.Post("/api/v1/checkout/pix", handler.CreatePix)

	body := `{"plan":"standard","name":"Maria Silva","email":"maria@example.com","cpf":"12345678900","phone":"11987654321","page_url":"https://shapebot.app/?utm_source=fb"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/pix", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastInput.Plan != "standard" || service.lastInput.PageURL != "https://shapebot.app/?utm_source=fb" {
		t.Fatalf("unexpected forwarded input: %+v", service.lastInput)
	}

	var payload struct {
		Payment models.Payment `json:"payment"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if payload.Payment.Status != models.PaymentProcessing || payload.Payment.AmountCents != 2990 {
		t.Fatalf("unexpected payment: %+v", payload.Payment)
	}
}

func TestCreatePixValidationErrorsPerField(t *testing.T) {
	service := &stubCheckoutService{
		err: &services.ValidationError{Fields: map[string]string{
			"cpf":   "CPF deve ter 11 dígitos",
			"phone": "Telefone inválido",
		}},
	}
	handler := NewCheckoutHandler(service)

	app := fiber.New()
	withUser(app, "4")
	app.Post("/api/v1/checkout/pix", handler.CreatePix)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/pix", strings.NewReader(`{"plan":"standard"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	var payload struct {
		Errors map[string]string `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if payload.Errors["cpf"] != "CPF deve ter 11 dígitos" {
		t.Fatalf("unexpected errors: %+v", payload.Errors)
	}
}

func TestCreatePixGatewayDown(t *testing.T) {
	service := &stubCheckoutService{err: services.ErrPaymentGateway}
	handler := NewCheckoutHandler(service)

	app := fiber.New()
	withUser(app, "4")
	app.Post("/api/v1/checkout/pix", handler.CreatePix)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/pix", strings.NewReader(`{"plan":"standard"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.StatusCode)
	}
}

func TestGetPaymentNotFound(t *testing.T) {
	service := &stubCheckoutService{err: services.ErrNotFound}
	handler := NewCheckoutHandler(service)

	app := fiber.New()
	withUser(app, "4")
	app.Get("/api/v1/checkout/payments/:id", handler.GetPayment)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/checkout/payments/99", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if service.lastID != 99 {
		t.Fatalf("expected payment id forwarded, got %d", service.lastID)
	}
}

func TestRetryNotRetryable(t *testing.T) {
	service := &stubCheckoutService{err: services.ErrInvalidStateTransition}
	handler := NewCheckoutHandler(service)

	app := fiber.New()
	withUser(app, "4")
	app.Post("/api/v1/checkout/payments/:id/retry", handler.Retry)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/checkout/payments/7/retry", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestRetryBadID(t *testing.T) {
	handler := NewCheckoutHandler(&stubCheckoutService{})

	app := fiber.New()
	withUser(app, "4")
	app.Post("/api/v1/checkout/payments/:id/retry", handler.Retry)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/checkout/payments/abc/retry", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestListPlans(t *testing.T) {
	service := &stubCheckoutService{plans: []services.Plan{{ID: models.PlanStandard, PriceCents: 2990}}}
	handler := NewCheckoutHandler(service)

	app := fiber.New()
	withUser(app, "4")
	app.Get("/api/v1/checkout/plans", handler.ListPlans)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/checkout/plans", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
