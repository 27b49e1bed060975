package repository

import (
	"context"
	"encoding/json"

	"github.com/Mayckon02/shapebot-ai/internal/models"
)

type PaymentRepository struct {
	db DBTX
}

func NewPaymentRepository(db DBTX) *PaymentRepository {
	return &PaymentRepository{db: db}
}

type CreatePaymentInput struct {
	UserID      int64
	ExternalID  string
	Plan        string
	AmountCents int64
	Status      string
	UTMParams   json.RawMessage
}

func (r *PaymentRepository) Create(ctx context.Context, input CreatePaymentInput) (*models.Payment, error) {
	query := `
		INSERT INTO payments (user_id, external_id, plan, amount_cents, status, utm_params)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, user_id, gateway_id, external_id, plan, amount_cents, status,
			pix_code, pix_qr_code, utm_params, created_at, updated_at
	`

	var payment models.Payment
	err := r.db.QueryRow(ctx, query,
		input.UserID, input.ExternalID, input.Plan, input.AmountCents, input.Status, input.UTMParams,
	).Scan(
		&payment.ID, &payment.UserID, &payment.GatewayID, &payment.ExternalID,
		&payment.Plan, &payment.AmountCents, &payment.Status,
		&payment.PixCode, &payment.PixQRCode, &payment.UTMParams,
		&payment.CreatedAt, &payment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// AttachGatewayResult records the gateway-assigned id and PIX payload after a
// successful transaction.purchase call.
func (r *PaymentRepository) AttachGatewayResult(ctx context.Context, id int64, gatewayID, pixCode, pixQRCode string) (*models.Payment, error) {
	query := `
		UPDATE payments
		SET gateway_id = $2, pix_code = $3, pix_qr_code = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING id, user_id, gateway_id, external_id, plan, amount_cents, status,
			pix_code, pix_qr_code, utm_params, created_at, updated_at
	`

	var payment models.Payment
	err := r.db.QueryRow(ctx, query, id, gatewayID, pixCode, pixQRCode).Scan(
		&payment.ID, &payment.UserID, &payment.GatewayID, &payment.ExternalID,
		&payment.Plan, &payment.AmountCents, &payment.Status,
		&payment.PixCode, &payment.PixQRCode, &payment.UTMParams,
		&payment.CreatedAt, &payment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// UpdateStatusIfCurrent moves the intent from one status to another only if
// it is still in the expected one; pgx.ErrNoRows signals a lost race or an
// illegal transition attempt.
func (r *PaymentRepository) UpdateStatusIfCurrent(ctx context.Context, id int64, current, next string) (*models.Payment, error) {
	query := `
		UPDATE payments
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING id, user_id, gateway_id, external_id, plan, amount_cents, status,
			pix_code, pix_qr_code, utm_params, created_at, updated_at
	`

	var payment models.Payment
	err := r.db.QueryRow(ctx, query, id, current, next).Scan(
		&payment.ID, &payment.UserID, &payment.GatewayID, &payment.ExternalID,
		&payment.Plan, &payment.AmountCents, &payment.Status,
		&payment.PixCode, &payment.PixQRCode, &payment.UTMParams,
		&payment.CreatedAt, &payment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) GetByIDForUser(ctx context.Context, id int64, userID int64) (*models.Payment, error) {
	query := `
		SELECT id, user_id, gateway_id, external_id, plan, amount_cents, status,
			pix_code, pix_qr_code, utm_params, created_at, updated_at
		FROM payments
		WHERE id = $1 AND user_id = $2
	`

	var payment models.Payment
	err := r.db.QueryRow(ctx, query, id, userID).Scan(
		&payment.ID, &payment.UserID, &payment.GatewayID, &payment.ExternalID,
		&payment.Plan, &payment.AmountCents, &payment.Status,
		&payment.PixCode, &payment.PixQRCode, &payment.UTMParams,
		&payment.CreatedAt, &payment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}
