package models

import (
	"encoding/json"
	"time"
)

// Payment intent statuses. Transitions are monotonic toward a terminal
// state; the only way back is a manual retry from error to pending.
const (
	PaymentPending    = "pending"
	PaymentProcessing = "processing"
	PaymentSuccess    = "success"
	PaymentError      = "error"
)

type Payment struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"user_id"`
	GatewayID   string          `json:"gateway_id"`
	ExternalID  string          `json:"external_id"`
	Plan        string          `json:"plan"`
	AmountCents int64           `json:"amount_cents"`
	Status      string          `json:"status"`
	PixCode     string          `json:"pix_code,omitempty"`
	PixQRCode   string          `json:"pix_qr_code,omitempty"`
	UTMParams   json.RawMessage `json:"utm_params,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func TerminalPaymentStatus(status string) bool {
	return status == PaymentSuccess || status == PaymentError
}

// ValidPaymentTransition enforces the monotonic state machine. The manual
// error -> pending retry is the single allowed regression.
func ValidPaymentTransition(from, to string) bool {
	switch from {
	case PaymentPending:
		return to == PaymentProcessing
	case PaymentProcessing:
		return to == PaymentSuccess || to == PaymentError
	case PaymentError:
		return to == PaymentPending
	default:
		return false
	}
}
