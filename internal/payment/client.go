package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Gateway statuses consumed by the polling loop. Anything else means the
// charge is still open.
const (
	GatewayApproved = "APPROVED"
	GatewayRejected = "REJECTED"
	GatewayExpired  = "EXPIRED"
)

type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	CPF   string `json:"cpf"`
	Phone string `json:"phone"`
}

type Item struct {
	Title      string `json:"title"`
	PriceCents int64  `json:"unitPrice"`
}

type CreatePixInput struct {
	Customer    Customer
	AmountCents int64
	Items       []Item
	ExternalID  string
	PostbackURL string
}

// PixPayment is the gateway's view of a charge.
type PixPayment struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	PixCode    string `json:"pixCode"`
	PixQRCode  string `json:"pixQrCode"`
	Amount     int64  `json:"amount"`
	ApprovedAt string `json:"approvedAt"`
}

type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

func NewClient(baseURL, secretKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		secretKey:  secretKey,
		httpClient: http.DefaultClient,
	}
}

func (c *Client) CreatePixPayment(ctx context.Context, input CreatePixInput) (*PixPayment, error) {
	items := make([]map[string]any, 0, len(input.Items))
	for _, item := range input.Items {
		items = append(items, map[string]any{
			"unitPrice": item.PriceCents,
			"title":     item.Title,
			"quantity":  1,
			"tangible":  false,
		})
	}

	payload := map[string]any{
		"name":          input.Customer.Name,
		"email":         input.Customer.Email,
		"cpf":           input.Customer.CPF,
		"phone":         input.Customer.Phone,
		"paymentMethod": "PIX",
		"amount":        input.AmountCents,
		"traceable":     true,
		"items":         items,
		"externalId":    input.ExternalID,
		"postbackUrl":   input.PostbackURL,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal purchase payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transaction.purchase", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build purchase request: %w", err)
	}
	req.Header.Set("Authorization", c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("create pix payment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		responseBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("create pix payment: status %d: %s", resp.StatusCode, strings.TrimSpace(string(responseBody)))
	}

	var result PixPayment
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode purchase response: %w", err)
	}
	if result.ID == "" {
		return nil, fmt.Errorf("purchase response missing payment id")
	}

	return &result, nil
}

func (c *Client) GetPaymentStatus(ctx context.Context, id string) (*PixPayment, error) {
	statusURL := fmt.Sprintf("%s/transaction.getPayment?id=%s", c.baseURL, url.QueryEscape(id))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, statusURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build status request: %w", err)
	}
	req.Header.Set("Authorization", c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get payment status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		responseBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("get payment status: status %d: %s", resp.StatusCode, strings.TrimSpace(string(responseBody)))
	}

	var result PixPayment
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode status response: %w", err)
	}

	return &result, nil
}
