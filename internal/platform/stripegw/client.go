package stripegw

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/athletelink/athletelink-backend/internal/platform/apierr"
	"github.com/athletelink/athletelink-backend/internal/platform/envutil"
	"github.com/athletelink/athletelink-backend/internal/platform/logger"
)

type Config struct {
	SecretKey  string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

func ConfigFromEnv() Config {
	timeoutSec := envutil.Int("STRIPE_TIMEOUT_SECONDS", 30)
	maxRetries := envutil.Int("STRIPE_MAX_RETRIES", 3)
	return Config{
		SecretKey:  strings.TrimSpace(os.Getenv("STRIPE_SECRET_KEY")),
		BaseURL:    strings.TrimSpace(os.Getenv("STRIPE_BASE_URL")),
		Timeout:    time.Duration(timeoutSec) * time.Second,
		MaxRetries: maxRetries,
	}
}

func NewFromEnv(log *logger.Logger) (Gateway, error) {
	return New(log, ConfigFromEnv())
}

func New(log *logger.Logger, cfg Config) (Gateway, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.SecretKey) == "" {
		return nil, fmt.Errorf("missing STRIPE_SECRET_KEY")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.stripe.com"
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	return &client{
		log:        log.With("client", "StripeGateway"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
}

// --- wire types ---

type apiError struct {
	Type        string `json:"type"`
	Code        string `json:"code"`
	Message     string `json:"message"`
	DeclineCode string `json:"decline_code"`
}

type apiErrorEnvelope struct {
	Error apiError `json:"error"`
}

type intentWire struct {
	ID           string `json:"id"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	Status       string `json:"status"`
	TransferData struct {
		Destination string `json:"destination"`
	} `json:"transfer_data"`
	ApplicationFeeAmount int64 `json:"application_fee_amount"`
}

type payoutWire struct {
	ID          string `json:"id"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Status      string `json:"status"`
	Method      string `json:"method"`
	ArrivalDate int64  `json:"arrival_date"`
}

type accountWire struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	Country        string `json:"country"`
	ChargesEnabled bool   `json:"charges_enabled"`
	PayoutsEnabled bool   `json:"payouts_enabled"`
}

type balanceWire struct {
	Available []struct {
		Amount int64 `json:"amount"`
	} `json:"available"`
	Pending []struct {
		Amount int64 `json:"amount"`
	} `json:"pending"`
}

func (c *client) CreatePaymentIntent(ctx context.Context, req CreatePaymentIntentRequest) (*PaymentIntent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(req.Amount, 10))
	form.Set("currency", strings.ToLower(strings.TrimSpace(req.Currency)))
	form.Set("transfer_data[destination]", req.DestinationAccount)
	form.Set("application_fee_amount", strconv.FormatInt(req.ApplicationFee, 10))
	if req.DealRef != "" {
		form.Set("metadata[deal_id]", req.DealRef)
	}

	var wire intentWire
	if err := c.do(ctx, "POST", "/v1/payment_intents", form, &wire); err != nil {
		return nil, err
	}
	return intentFromWire(&wire), nil
}

func (c *client) ConfirmPaymentIntent(ctx context.Context, intentRef, paymentMethodRef string) (*PaymentIntent, error) {
	form := url.Values{}
	if paymentMethodRef != "" {
		form.Set("payment_method", paymentMethodRef)
	}
	var wire intentWire
	path := "/v1/payment_intents/" + url.PathEscape(intentRef) + "/confirm"
	if err := c.do(ctx, "POST", path, form, &wire); err != nil {
		return nil, err
	}
	return intentFromWire(&wire), nil
}

func (c *client) CreatePayout(ctx context.Context, req CreatePayoutRequest) (*Payout, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(req.Amount, 10))
	form.Set("currency", strings.ToLower(strings.TrimSpace(req.Currency)))
	if req.Method != "" {
		form.Set("method", req.Method)
	}

	var wire payoutWire
	if err := c.doOnAccount(ctx, "POST", "/v1/payouts", req.AccountRef, form, &wire); err != nil {
		return nil, err
	}
	out := &Payout{
		ID:       wire.ID,
		Amount:   wire.Amount,
		Currency: wire.Currency,
		Status:   wire.Status,
		Method:   wire.Method,
	}
	if wire.ArrivalDate > 0 {
		at := time.Unix(wire.ArrivalDate, 0).UTC()
		out.ArrivalDate = &at
	}
	return out, nil
}

func (c *client) GetAccountBalance(ctx context.Context, accountRef string) (*Balance, error) {
	var wire balanceWire
	if err := c.doOnAccount(ctx, "GET", "/v1/balance", accountRef, nil, &wire); err != nil {
		return nil, err
	}
	out := &Balance{}
	for _, a := range wire.Available {
		out.Available += a.Amount
	}
	for _, p := range wire.Pending {
		out.Pending += p.Amount
	}
	return out, nil
}

func (c *client) CreateConnectedAccount(ctx context.Context, req CreateAccountRequest) (*Account, error) {
	form := url.Values{}
	form.Set("type", "express")
	form.Set("email", strings.TrimSpace(req.Email))
	if req.Country != "" {
		form.Set("country", strings.ToUpper(strings.TrimSpace(req.Country)))
	}
	form.Set("capabilities[transfers][requested]", "true")

	var wire accountWire
	if err := c.do(ctx, "POST", "/v1/accounts", form, &wire); err != nil {
		return nil, err
	}
	return accountFromWire(&wire), nil
}

func (c *client) UpdateConnectedAccount(ctx context.Context, accountRef string, req UpdateAccountRequest) (*Account, error) {
	form := url.Values{}
	if req.Email != nil {
		form.Set("email", strings.TrimSpace(*req.Email))
	}
	var wire accountWire
	path := "/v1/accounts/" + url.PathEscape(accountRef)
	if err := c.do(ctx, "POST", path, form, &wire); err != nil {
		return nil, err
	}
	return accountFromWire(&wire), nil
}

func intentFromWire(w *intentWire) *PaymentIntent {
	return &PaymentIntent{
		ID:                 w.ID,
		Amount:             w.Amount,
		Currency:           w.Currency,
		ApplicationFee:     w.ApplicationFeeAmount,
		DestinationAccount: w.TransferData.Destination,
		Status:             w.Status,
	}
}

func accountFromWire(w *accountWire) *Account {
	return &Account{
		ID:             w.ID,
		Email:          w.Email,
		Country:        w.Country,
		ChargesEnabled: w.ChargesEnabled,
		PayoutsEnabled: w.PayoutsEnabled,
	}
}

// ---------- HTTP / retry helpers ----------

func (c *client) do(ctx context.Context, method, path string, form url.Values, out any) error {
	return c.doOnAccount(ctx, method, path, "", form, out)
}

func (c *client) doOnAccount(ctx context.Context, method, path, accountRef string, form url.Values, out any) error {
	backoff := 500 * time.Millisecond

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return apierr.Wrap(apierr.KindGatewayUnavailable, ctx.Err(), "payment gateway request canceled")
		}
		retryable, err := c.doOnce(ctx, method, path, accountRef, form, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable || attempt == c.cfg.MaxRetries {
			return err
		}
		c.log.Warn("Stripe request retrying",
			"path", path,
			"attempt", attempt+1,
			"max_retries", c.cfg.MaxRetries,
			"sleep", backoff.String(),
			"error", err.Error(),
		)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return apierr.Wrap(apierr.KindGatewayUnavailable, ctx.Err(), "payment gateway request canceled")
		}
		backoff *= 2
	}
	return lastErr
}

func (c *client) doOnce(ctx context.Context, method, path, accountRef string, form url.Values, out any) (retryable bool, err error) {
	var body io.Reader
	if form != nil && method != "GET" {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return false, apierr.Wrap(apierr.KindGatewayUnavailable, err, "build payment gateway request")
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.SecretKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if accountRef != "" {
		req.Header.Set("Stripe-Account", accountRef)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Network errors and timeouts are ambiguous outcomes.
		return true, apierr.Wrap(apierr.KindGatewayUnavailable, err, "payment gateway unreachable")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return true, apierr.Wrap(apierr.KindGatewayUnavailable, err, "read payment gateway response")
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out != nil {
			if err := json.Unmarshal(raw, out); err != nil {
				return false, apierr.Wrap(apierr.KindGatewayUnavailable, err, "decode payment gateway response")
			}
		}
		return false, nil
	}

	var envelope apiErrorEnvelope
	_ = json.Unmarshal(raw, &envelope)

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return true, apierr.New(apierr.KindGatewayUnavailable, "payment gateway error (%d): %s", resp.StatusCode, envelope.Error.Message)
	}
	if envelope.Error.Type == "card_error" || resp.StatusCode == http.StatusPaymentRequired {
		reason := envelope.Error.DeclineCode
		if reason == "" {
			reason = envelope.Error.Code
		}
		if reason == "" {
			reason = envelope.Error.Message
		}
		return false, apierr.New(apierr.KindGatewayDeclined, "%s", reason)
	}
	return false, apierr.New(apierr.KindGatewayUnavailable, "payment gateway rejected request (%d): %s", resp.StatusCode, envelope.Error.Message)
}
