package razorpayx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/developerboi1/tourclean/pkg/config"
	pkgerrors "github.com/developerboi1/tourclean/pkg/errors"
	"github.com/developerboi1/tourclean/pkg/logger"
)

const idempotencyHeader = "X-Payout-Idempotency"

var (
	errKeyRequired           = errors.New("razorpayx key id and secret are required")
	errAccountRequired       = errors.New("razorpayx account number is required")
	errWebhookSecretRequired = errors.New("razorpayx webhook secret is required")
	errLoggerRequired        = errors.New("razorpayx logger is required")
)

// Client wraps the RazorpayX payout REST surface with centralized auth,
// logging, idempotency, and error mapping.
type Client struct {
	http          *http.Client
	baseURL       string
	keyID         string
	keySecret     string
	accountNumber string
	webhookSecret string
	currency      string
	logger        *logger.Logger
}

// NewClient initializes the RazorpayX wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.RazorpayXConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	keyID := strings.TrimSpace(cfg.KeyID)
	keySecret := strings.TrimSpace(cfg.KeySecret)
	if keyID == "" || keySecret == "" {
		return nil, errKeyRequired
	}
	if strings.TrimSpace(cfg.AccountNumber) == "" {
		return nil, errAccountRequired
	}
	if strings.TrimSpace(cfg.WebhookSecret) == "" {
		return nil, errWebhookSecretRequired
	}

	c := &Client{
		http:          &http.Client{Timeout: cfg.RequestTimeout},
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		keyID:         keyID,
		keySecret:     keySecret,
		accountNumber: cfg.AccountNumber,
		webhookSecret: cfg.WebhookSecret,
		currency:      cfg.Currency,
		logger:        logg,
	}

	logg.Info(ctx, "razorpayx client initialized")
	return c, nil
}

// SigningSecret returns the RazorpayX webhook secret.
func (c *Client) SigningSecret() string {
	if c == nil {
		return ""
	}
	return c.webhookSecret
}

// Currency reports the configured payout currency.
func (c *Client) Currency() string {
	if c == nil {
		return ""
	}
	return c.currency
}

// NewIdempotencyKey returns a unique key for payout operations.
func (c *Client) NewIdempotencyKey(prefix string) string {
	key := strings.TrimSpace(prefix)
	if key == "" {
		key = "tc"
	}
	return fmt.Sprintf("%s-%s", key, uuid.NewString())
}

// Contact is the RazorpayX beneficiary record a fund account hangs off.
type Contact struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	ContactType string `json:"type"`
	ReferenceID string `json:"reference_id,omitempty"`
}

// ContactCreateParams describes a new payout contact.
type ContactCreateParams struct {
	Name        string
	Email       string
	ReferenceID string
}

// CreateContact registers a beneficiary contact with RazorpayX.
func (c *Client) CreateContact(ctx context.Context, params ContactCreateParams) (*Contact, error) {
	body := map[string]any{
		"name": params.Name,
		"type": "customer",
	}
	if params.Email != "" {
		body["email"] = params.Email
	}
	if params.ReferenceID != "" {
		body["reference_id"] = params.ReferenceID
	}

	c.log(ctx, "request", "create_contact", map[string]any{"reference_id": params.ReferenceID})

	var contact Contact
	if err := c.do(ctx, http.MethodPost, "/contacts", body, "", &contact); err != nil {
		c.log(ctx, "error", "create_contact", map[string]any{"error": err.Error()})
		return nil, err
	}

	c.log(ctx, "response", "create_contact", map[string]any{"contact_id": contact.ID})
	return &contact, nil
}

// FundAccount is a payout destination attached to a contact.
type FundAccount struct {
	ID          string `json:"id"`
	ContactID   string `json:"contact_id"`
	AccountType string `json:"account_type"`
	Active      bool   `json:"active"`
}

// FundAccountCreateParams describes a new payout destination. Exactly one of
// VPA and Bank is set, matching the cashout method.
type FundAccountCreateParams struct {
	ContactID string
	VPA       string
	Bank      *BankAccount
}

// BankAccount holds bank transfer destination details.
type BankAccount struct {
	Name          string `json:"name"`
	IFSC          string `json:"ifsc"`
	AccountNumber string `json:"account_number"`
}

// CreateFundAccount attaches a payout destination to an existing contact.
func (c *Client) CreateFundAccount(ctx context.Context, params FundAccountCreateParams) (*FundAccount, error) {
	body := map[string]any{
		"contact_id": params.ContactID,
	}
	switch {
	case params.VPA != "":
		body["account_type"] = "vpa"
		body["vpa"] = map[string]string{"address": params.VPA}
	case params.Bank != nil:
		body["account_type"] = "bank_account"
		body["bank_account"] = params.Bank
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "fund account requires a vpa or bank destination")
	}

	c.log(ctx, "request", "create_fund_account", map[string]any{"contact_id": params.ContactID})

	var account FundAccount
	if err := c.do(ctx, http.MethodPost, "/fund_accounts", body, "", &account); err != nil {
		c.log(ctx, "error", "create_fund_account", map[string]any{"error": err.Error()})
		return nil, err
	}

	c.log(ctx, "response", "create_fund_account", map[string]any{
		"fund_account_id": account.ID,
		"account_type":    account.AccountType,
	})
	return &account, nil
}

// Payout is the RazorpayX payout resource.
type Payout struct {
	ID            string `json:"id"`
	FundAccountID string `json:"fund_account_id"`
	AmountPaise   int64  `json:"amount"`
	Currency      string `json:"currency"`
	Status        string `json:"status"`
	UTR           string `json:"utr,omitempty"`
	Mode          string `json:"mode"`
	ReferenceID   string `json:"reference_id"`
	FailureReason string `json:"failure_reason,omitempty"`
}

// PayoutCreateParams describes a payout to an existing fund account.
// ReferenceID carries the cashout request id so webhooks can be correlated
// back without a gateway-side lookup.
type PayoutCreateParams struct {
	FundAccountID  string
	AmountPaise    int64
	Mode           string
	ReferenceID    string
	Narration      string
	IdempotencyKey string
}

// CreatePayout initiates a payout. RazorpayX dedupes retries on the
// idempotency header, so callers should reuse the key when retrying.
func (c *Client) CreatePayout(ctx context.Context, params PayoutCreateParams) (*Payout, error) {
	if params.AmountPaise <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payout amount must be positive")
	}
	body := map[string]any{
		"account_number":       c.accountNumber,
		"fund_account_id":      params.FundAccountID,
		"amount":               params.AmountPaise,
		"currency":             c.currency,
		"mode":                 params.Mode,
		"purpose":              "payout",
		"queue_if_low_balance": true,
		"reference_id":         params.ReferenceID,
	}
	if params.Narration != "" {
		body["narration"] = params.Narration
	}

	idemKey := c.ensureIdempotencyKey("payout.create", params.IdempotencyKey)
	c.log(ctx, "request", "create_payout", map[string]any{
		"fund_account_id": params.FundAccountID,
		"amount":          params.AmountPaise,
		"reference_id":    params.ReferenceID,
	})

	var payout Payout
	if err := c.do(ctx, http.MethodPost, "/payouts", body, idemKey, &payout); err != nil {
		c.log(ctx, "error", "create_payout", map[string]any{"error": err.Error()})
		return nil, err
	}

	c.log(ctx, "response", "create_payout", map[string]any{
		"payout_id": payout.ID,
		"status":    payout.Status,
	})
	return &payout, nil
}

// GetPayout fetches the current payout state, used by reconciliation.
func (c *Client) GetPayout(ctx context.Context, payoutID string) (*Payout, error) {
	c.log(ctx, "request", "get_payout", map[string]any{"payout_id": payoutID})

	var payout Payout
	if err := c.do(ctx, http.MethodGet, "/payouts/"+payoutID, nil, "", &payout); err != nil {
		c.log(ctx, "error", "get_payout", map[string]any{"error": err.Error()})
		return nil, err
	}

	c.log(ctx, "response", "get_payout", map[string]any{
		"payout_id": payout.ID,
		"status":    payout.Status,
	})
	return &payout, nil
}

type apiErrorBody struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body any, idemKey string, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding razorpayx request")
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building razorpayx request")
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Content-Type", "application/json")
	if idemKey != "" {
		req.Header.Set(idempotencyHeader, idemKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "razorpayx request failed")
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading razorpayx response")
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return c.mapAPIError(resp.StatusCode, payload)
	}

	if out != nil {
		if err := json.Unmarshal(payload, out); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding razorpayx response")
		}
	}
	return nil
}

func (c *Client) mapAPIError(status int, payload []byte) error {
	var parsed apiErrorBody
	_ = json.Unmarshal(payload, &parsed)

	description := parsed.Error.Description
	if description == "" {
		description = fmt.Sprintf("razorpayx returned status %d", status)
	}

	code := domainCodeForStatus(status)
	if strings.EqualFold(parsed.Error.Code, "BAD_REQUEST_ERROR") && strings.Contains(strings.ToLower(description), "idempotency") {
		code = pkgerrors.CodeIdempotency
	}
	return pkgerrors.New(code, description)
}

func domainCodeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return pkgerrors.CodeValidation
	case http.StatusUnauthorized, http.StatusForbidden:
		return pkgerrors.CodeUnauthorized
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusConflict:
		return pkgerrors.CodeConflict
	case http.StatusTooManyRequests:
		return pkgerrors.CodeRateLimit
	default:
		return pkgerrors.CodeDependency
	}
}

func (c *Client) ensureIdempotencyKey(prefix, provided string) string {
	if strings.TrimSpace(provided) != "" {
		return provided
	}
	return c.NewIdempotencyKey(prefix)
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = c.redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("razorpayx %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("razorpayx %s", phase))
	}
}

func (c *Client) redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"secret", "token", "account_number", "vpa", "ifsc", "email", "phone"} {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}
