package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"

	"github.com/Mayckon02/shapebot-ai/internal/attribution"
	"github.com/Mayckon02/shapebot-ai/internal/models"
	"github.com/Mayckon02/shapebot-ai/internal/payment"
	"github.com/Mayckon02/shapebot-ai/internal/repository"
	"github.com/Mayckon02/shapebot-ai/pkg/logger"
	"github.com/Mayckon02/shapebot-ai/pkg/utils"
)

type Plan struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	PriceCents         int64    `json:"price_cents"`
	OriginalPriceCents int64    `json:"original_price_cents"`
	Period             string   `json:"period"`
	Popular            bool     `json:"popular"`
	Features           []string `json:"features"`
}

var planCatalog = []Plan{
	{
		ID:                 models.PlanStandard,
		Name:               "Plano Padrão",
		PriceCents:         2990,
		OriginalPriceCents: 4990,
		Period:             "mensal",
		Popular:            true,
		Features: []string{
			"Mensagens ilimitadas com ShapeBot AI",
			"Planos alimentares personalizados",
			"Treinos adaptados ao seu perfil",
			"Acompanhamento diário de progresso",
			"Suporte prioritário via chat",
			"Acesso a comunidade exclusiva",
		},
	},
	{
		ID:                 models.PlanPremium,
		Name:               "Plano Premium",
		PriceCents:         5990,
		OriginalPriceCents: 9990,
		Period:             "mensal",
		Popular:            false,
		Features: []string{
			"Tudo do Plano Padrão",
			"Relatórios semanais detalhados",
			"Conteúdos exclusivos e receitas",
			"Consultoria personalizada mensal",
			"Acesso antecipado a novidades",
			"Suporte via WhatsApp direto",
			"Planos para ocasiões especiais",
		},
	},
}

// ValidationError carries per-field messages for the checkout form.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

type CheckoutInput struct {
	Plan    string `json:"plan" validate:"required"`
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	CPF     string `json:"cpf" validate:"required,cpf"`
	Phone   string `json:"phone" validate:"required,brphone"`
	PageURL string `json:"page_url"`
}

type pixGateway interface {
	CreatePixPayment(ctx context.Context, input payment.CreatePixInput) (*payment.PixPayment, error)
}

type paymentStore interface {
	Create(ctx context.Context, input repository.CreatePaymentInput) (*models.Payment, error)
	AttachGatewayResult(ctx context.Context, id int64, gatewayID, pixCode, pixQRCode string) (*models.Payment, error)
	UpdateStatusIfCurrent(ctx context.Context, id int64, current, next string) (*models.Payment, error)
	GetByIDForUser(ctx context.Context, id, userID int64) (*models.Payment, error)
}

type planUpdater interface {
	UpdatePlan(ctx context.Context, id int64, plan string) (*models.User, error)
}

type purchaseTracker interface {
	TrackPurchase(ctx context.Context, input attribution.PurchaseInput) error
}

// PaymentNotifier pushes payment status changes to connected clients.
type PaymentNotifier interface {
	NotifyPaymentStatus(userID int64, paymentID int64, status, plan string)
}

type CheckoutService struct {
	payments paymentStore
	users    planUpdater
	gateway  pixGateway
	watcher  *payment.Watcher
	tracker  purchaseTracker
	notifier PaymentNotifier
	validate *validator.Validate
	log      *logger.Logger
	appURL   string
	now      func() time.Time

	mu    sync.Mutex
	tasks map[int64]*payment.Task
}

func NewCheckoutService(
	payments paymentStore,
	users planUpdater,
	gateway pixGateway,
	watcher *payment.Watcher,
	tracker purchaseTracker,
	notifier PaymentNotifier,
	appURL string,
	log *logger.Logger,
) *CheckoutService {
	validate := validator.New()
	_ = validate.RegisterValidation("cpf", func(fl validator.FieldLevel) bool {
		return len(utils.Digits(fl.Field().String())) == 11
	})
	_ = validate.RegisterValidation("brphone", func(fl validator.FieldLevel) bool {
		digits := len(utils.Digits(fl.Field().String()))
		return digits == 10 || digits == 11
	})

	return &CheckoutService{
		payments: payments,
		users:    users,
		gateway:  gateway,
		watcher:  watcher,
		tracker:  tracker,
		notifier: notifier,
		validate: validate,
		log:      log,
		appURL:   appURL,
		now:      time.Now,
		tasks:    make(map[int64]*payment.Task),
	}
}

func (s *CheckoutService) Plans() []Plan {
	return planCatalog
}

func (s *CheckoutService) planByID(id string) *Plan {
	for i := range planCatalog {
		if planCatalog[i].ID == id {
			return &planCatalog[i]
		}
	}
	return nil
}

// CreatePixPayment opens a payment intent, submits the PIX charge to the
// gateway and starts watching it. The caller gets the intent back in
// processing state with the PIX code and QR attached.
func (s *CheckoutService) CreatePixPayment(ctx context.Context, userID int64, input CheckoutInput) (*models.Payment, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	plan := s.planByID(input.Plan)
	if plan == nil {
		return nil, ErrInvalidInput
	}

	params := attribution.ExtractParams(input.PageURL)
	rawParams, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}

	externalID := fmt.Sprintf("shapebot_%d", s.now().UnixMilli())

	created, err := s.payments.Create(ctx, repository.CreatePaymentInput{
		UserID:      userID,
		ExternalID:  externalID,
		Plan:        plan.ID,
		AmountCents: plan.PriceCents,
		Status:      models.PaymentPending,
		UTMParams:   rawParams,
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.payments.UpdateStatusIfCurrent(ctx, created.ID, models.PaymentPending, models.PaymentProcessing); err != nil {
		return nil, err
	}

	customer := payment.Customer{
		Name:  input.Name,
		Email: input.Email,
		CPF:   utils.Digits(input.CPF),
		Phone: utils.Digits(input.Phone),
	}

	charge, err := s.gateway.CreatePixPayment(ctx, payment.CreatePixInput{
		Customer:    customer,
		AmountCents: plan.PriceCents,
		Items: []payment.Item{
			{Title: plan.Name, PriceCents: plan.PriceCents},
		},
		ExternalID:  externalID,
		PostbackURL: s.appURL + "/webhook/payment",
	})
	if err != nil {
		s.log.Errorf("pix charge failed for payment %d: %v", created.ID, err)
		if _, updateErr := s.payments.UpdateStatusIfCurrent(ctx, created.ID, models.PaymentProcessing, models.PaymentError); updateErr != nil {
			s.log.Errorf("could not mark payment %d as failed: %v", created.ID, updateErr)
		}
		return nil, fmt.Errorf("%w: %v", ErrPaymentGateway, err)
	}

	qr := charge.PixQRCode
	if qr == "" && charge.PixCode != "" {
		qr, err = payment.QRCodePNG(charge.PixCode)
		if err != nil {
			s.log.Warnf("qr render failed for payment %d: %v", created.ID, err)
			qr = ""
		}
	}

	updated, err := s.payments.AttachGatewayResult(ctx, created.ID, charge.ID, charge.PixCode, qr)
	if err != nil {
		return nil, err
	}

	s.watch(updated, customer, params)

	return updated, nil
}

// watch starts the polling loop for an open charge and registers its handle
// so shutdown can stop it. Callbacks run on the poller goroutine and must not
// call Task.Stop.
func (s *CheckoutService) watch(intent *models.Payment, customer payment.Customer, params attribution.UTMParams) {
	paymentID := intent.ID
	userID := intent.UserID
	plan := intent.Plan

	task := s.watcher.Start(context.Background(), intent.GatewayID, payment.Callbacks{
		OnApproved: func(charge *payment.PixPayment) {
			defer s.dropTask(paymentID)
			s.completePayment(paymentID, userID, plan, customer, params)
		},
		OnFailed: func(status string) {
			defer s.dropTask(paymentID)
			s.failPayment(paymentID, userID, plan, status)
		},
	})

	s.mu.Lock()
	s.tasks[paymentID] = task
	s.mu.Unlock()
}

// completePayment settles an approved charge exactly once. The compare-and-set
// on processing makes a second approval signal a no-op.
func (s *CheckoutService) completePayment(paymentID, userID int64, plan string, customer payment.Customer, params attribution.UTMParams) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	settled, err := s.payments.UpdateStatusIfCurrent(ctx, paymentID, models.PaymentProcessing, models.PaymentSuccess)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return
		}
		s.log.Errorf("could not settle payment %d: %v", paymentID, err)
		return
	}

	if !models.ValidPlan(plan) {
		s.log.Errorf("payment %d settled with unknown plan %q, user %d left unchanged", paymentID, plan, userID)
	} else if _, err := s.users.UpdatePlan(ctx, userID, plan); err != nil {
		s.log.Errorf("plan upgrade failed for user %d after payment %d: %v", userID, paymentID, err)
	}

	if err := s.tracker.TrackPurchase(ctx, attribution.PurchaseInput{
		OrderID:     settled.GatewayID,
		Status:      attribution.StatusPaid,
		ProductID:   plan,
		ProductName: s.planName(plan),
		AmountCents: settled.AmountCents,
		Customer: attribution.OrderCustomer{
			Name:     customer.Name,
			Email:    customer.Email,
			Phone:    customer.Phone,
			Document: customer.CPF,
		},
		Params:     params,
		CreatedAt:  settled.CreatedAt,
		ApprovedAt: s.now(),
	}); err != nil {
		s.log.Errorf("attribution push failed for payment %d: %v", paymentID, err)
	}

	s.notifier.NotifyPaymentStatus(userID, paymentID, models.PaymentSuccess, plan)
	s.log.Infof("payment %d settled, user %d upgraded to %s", paymentID, userID, plan)
}

func (s *CheckoutService) failPayment(paymentID, userID int64, plan, reason string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := s.payments.UpdateStatusIfCurrent(ctx, paymentID, models.PaymentProcessing, models.PaymentError); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return
		}
		s.log.Errorf("could not mark payment %d as failed: %v", paymentID, err)
		return
	}

	s.notifier.NotifyPaymentStatus(userID, paymentID, models.PaymentError, plan)
	s.log.Infof("payment %d failed: %s", paymentID, reason)
}

func (s *CheckoutService) planName(id string) string {
	if plan := s.planByID(id); plan != nil {
		return plan.Name
	}
	return id
}

func (s *CheckoutService) GetPayment(ctx context.Context, userID, paymentID int64) (*models.Payment, error) {
	intent, err := s.payments.GetByIDForUser(ctx, paymentID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return intent, nil
}

// Retry reopens a failed intent so the client can submit the charge again.
// Only the error state is retryable.
func (s *CheckoutService) Retry(ctx context.Context, userID, paymentID int64) (*models.Payment, error) {
	intent, err := s.GetPayment(ctx, userID, paymentID)
	if err != nil {
		return nil, err
	}
	if !models.ValidPaymentTransition(intent.Status, models.PaymentPending) {
		return nil, ErrInvalidStateTransition
	}

	reopened, err := s.payments.UpdateStatusIfCurrent(ctx, paymentID, models.PaymentError, models.PaymentPending)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}
	return reopened, nil
}

func (s *CheckoutService) dropTask(paymentID int64) {
	s.mu.Lock()
	delete(s.tasks, paymentID)
	s.mu.Unlock()
}

// Shutdown stops every open polling loop and waits for each to exit.
func (s *CheckoutService) Shutdown() {
	s.mu.Lock()
	tasks := make([]*payment.Task, 0, len(s.tasks))
	for id, task := range s.tasks {
		tasks = append(tasks, task)
		delete(s.tasks, id)
	}
	s.mu.Unlock()

	for _, task := range tasks {
		task.Stop()
	}
}

func (s *CheckoutService) validateInput(input CheckoutInput) error {
	err := s.validate.Struct(input)
	if err == nil {
		return nil
	}

	var invalid validator.ValidationErrors
	if !errors.As(err, &invalid) {
		return err
	}

	fields := make(map[string]string, len(invalid))
	for _, fieldErr := range invalid {
		fields[fieldKey(fieldErr.Field())] = fieldMessage(fieldErr)
	}
	return &ValidationError{Fields: fields}
}

func fieldKey(field string) string {
	switch field {
	case "Plan":
		return "plan"
	case "Name":
		return "name"
	case "Email":
		return "email"
	case "CPF":
		return "cpf"
	case "Phone":
		return "phone"
	default:
		return field
	}
}

func fieldMessage(fieldErr validator.FieldError) string {
	switch fieldErr.Field() {
	case "Plan":
		return "Plano é obrigatório"
	case "Name":
		return "Nome é obrigatório"
	case "Email":
		if fieldErr.Tag() == "required" {
			return "Email é obrigatório"
		}
		return "Email inválido"
	case "CPF":
		if fieldErr.Tag() == "required" {
			return "CPF é obrigatório"
		}
		return "CPF deve ter 11 dígitos"
	case "Phone":
		if fieldErr.Tag() == "required" {
			return "Telefone é obrigatório"
		}
		return "Telefone inválido"
	default:
		return "Campo inválido"
	}
}
