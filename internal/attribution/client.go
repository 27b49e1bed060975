package attribution

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// UTMParams holds the tracking parameters captured on the visitor's landing
// URL. Absent keys stay nil so they serialize as null, which is what the
// attribution platform expects.
type UTMParams struct {
	Src         *string `json:"src"`
	Sck         *string `json:"sck"`
	UTMSource   *string `json:"utm_source"`
	UTMCampaign *string `json:"utm_campaign"`
	UTMMedium   *string `json:"utm_medium"`
	UTMContent  *string `json:"utm_content"`
	UTMTerm     *string `json:"utm_term"`
}

var trackedKeys = []string{"src", "sck", "utm_source", "utm_campaign", "utm_medium", "utm_content", "utm_term"}

// ExtractParams pulls the tracked query parameters out of a page URL.
func ExtractParams(pageURL string) UTMParams {
	var params UTMParams

	parsed, err := url.Parse(pageURL)
	if err != nil {
		return params
	}
	query := parsed.Query()

	fields := map[string]**string{
		"src":          &params.Src,
		"sck":          &params.Sck,
		"utm_source":   &params.UTMSource,
		"utm_campaign": &params.UTMCampaign,
		"utm_medium":   &params.UTMMedium,
		"utm_content":  &params.UTMContent,
		"utm_term":     &params.UTMTerm,
	}
	for _, key := range trackedKeys {
		if query.Has(key) {
			value := query.Get(key)
			*fields[key] = &value
		}
	}

	return params
}

const (
	StatusPaid           = "paid"
	StatusWaitingPayment = "waiting_payment"
)

const (
	platformName    = "ShapeBot AI"
	timestampLayout = "2006-01-02 15:04:05"
	gatewayFeeShare = 0.05
)

type OrderCustomer struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Phone    string  `json:"phone"`
	Document string  `json:"document"`
	Country  string  `json:"country"`
	IP       *string `json:"ip"`
}

type OrderProduct struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	PlanID       *string `json:"planId"`
	PlanName     *string `json:"planName"`
	Quantity     int     `json:"quantity"`
	PriceInCents int64   `json:"priceInCents"`
}

type OrderCommission struct {
	TotalPriceInCents     int64 `json:"totalPriceInCents"`
	GatewayFeeInCents     int64 `json:"gatewayFeeInCents"`
	UserCommissionInCents int64 `json:"userCommissionInCents"`
}

type Order struct {
	OrderID            string          `json:"orderId"`
	Platform           string          `json:"platform"`
	PaymentMethod      string          `json:"paymentMethod"`
	Status             string          `json:"status"`
	CreatedAt          string          `json:"createdAt"`
	ApprovedDate       *string         `json:"approvedDate"`
	RefundedAt         *string         `json:"refundedAt"`
	Customer           OrderCustomer   `json:"customer"`
	Products           []OrderProduct  `json:"products"`
	TrackingParameters UTMParams       `json:"trackingParameters"`
	Commission         OrderCommission `json:"commission"`
	IsTest             bool            `json:"isTest"`
}

type PurchaseInput struct {
	OrderID     string
	Status      string
	ProductID   string
	ProductName string
	AmountCents int64
	Customer    OrderCustomer
	Params      UTMParams
	CreatedAt   time.Time
	ApprovedAt  time.Time
}

type Client struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
	now        func() time.Time
}

func NewClient(baseURL, apiToken string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiToken:   apiToken,
		httpClient: http.DefaultClient,
		now:        time.Now,
	}
}

// BuildOrder assembles the conversion payload. The fee split rounds the
// platform's cut and gives the remainder to the seller so the parts always
// sum to the total.
func BuildOrder(input PurchaseInput) Order {
	fee := int64(math.Round(float64(input.AmountCents) * gatewayFeeShare))

	order := Order{
		OrderID:       input.OrderID,
		Platform:      platformName,
		PaymentMethod: "pix",
		Status:        input.Status,
		CreatedAt:     input.CreatedAt.UTC().Format(timestampLayout),
		Customer:      input.Customer,
		Products: []OrderProduct{
			{
				ID:           input.ProductID,
				Name:         input.ProductName,
				Quantity:     1,
				PriceInCents: input.AmountCents,
			},
		},
		TrackingParameters: input.Params,
		Commission: OrderCommission{
			TotalPriceInCents:     input.AmountCents,
			GatewayFeeInCents:     fee,
			UserCommissionInCents: input.AmountCents - fee,
		},
		IsTest: false,
	}
	order.Customer.Country = "BR"

	if input.Status == StatusPaid {
		approved := input.ApprovedAt.UTC().Format(timestampLayout)
		order.ApprovedDate = &approved
	}

	return order
}

// TrackPurchase pushes one order event to the attribution platform.
func (c *Client) TrackPurchase(ctx context.Context, input PurchaseInput) error {
	if input.CreatedAt.IsZero() {
		input.CreatedAt = c.now()
	}
	if input.Status == StatusPaid && input.ApprovedAt.IsZero() {
		input.ApprovedAt = c.now()
	}

	order := BuildOrder(input)

	body, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("marshal order payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-token", c.apiToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("track purchase: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		responseBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("track purchase: status %d: %s", resp.StatusCode, strings.TrimSpace(string(responseBody)))
	}

	return nil
}
