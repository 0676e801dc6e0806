package stripegw

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultWebhookTolerance bounds how stale a signed webhook timestamp may be.
const DefaultWebhookTolerance = 5 * time.Minute

// Event is the parsed webhook envelope. Object carries the raw JSON of the
// event's primary object (payment intent, payout, account, charge).
type Event struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Object json.RawMessage
}

type eventWire struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

type EventPaymentIntent struct {
	ID               string `json:"id"`
	Amount           int64  `json:"amount"`
	Currency         string `json:"currency"`
	Status           string `json:"status"`
	LastPaymentError struct {
		Code        string `json:"code"`
		DeclineCode string `json:"decline_code"`
		Message     string `json:"message"`
	} `json:"last_payment_error"`
}

type EventPayout struct {
	ID             string `json:"id"`
	Amount         int64  `json:"amount"`
	Status         string `json:"status"`
	FailureCode    string `json:"failure_code"`
	FailureMessage string `json:"failure_message"`
}

type EventAccount struct {
	ID             string `json:"id"`
	ChargesEnabled bool   `json:"charges_enabled"`
	PayoutsEnabled bool   `json:"payouts_enabled"`
}

type EventCharge struct {
	ID             string `json:"id"`
	PaymentIntent  string `json:"payment_intent"`
	AmountRefunded int64  `json:"amount_refunded"`
	Refunded       bool   `json:"refunded"`
}

// VerifyWebhookSignature checks a Stripe-Signature header value against the
// payload: header format "t=<unix>,v1=<hex hmac>[,v1=...]", signed string
// "<t>.<payload>" keyed with the endpoint secret. Any valid v1 entry within
// tolerance accepts.
func VerifyWebhookSignature(payload []byte, header, secret string, tolerance time.Duration, now time.Time) error {
	if strings.TrimSpace(secret) == "" {
		return fmt.Errorf("webhook secret not configured")
	}
	if tolerance <= 0 {
		tolerance = DefaultWebhookTolerance
	}

	var ts int64
	var sigs []string
	for _, part := range strings.Split(header, ",") {
		k, v, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch k {
		case "t":
			parsed, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return fmt.Errorf("malformed signature timestamp")
			}
			ts = parsed
		case "v1":
			sigs = append(sigs, v)
		}
	}
	if ts == 0 || len(sigs) == 0 {
		return fmt.Errorf("malformed signature header")
	}

	at := time.Unix(ts, 0)
	if now.Sub(at) > tolerance || at.Sub(now) > tolerance {
		return fmt.Errorf("signature timestamp outside tolerance")
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(ts, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	want := mac.Sum(nil)

	for _, s := range sigs {
		got, err := hex.DecodeString(s)
		if err != nil {
			continue
		}
		if hmac.Equal(got, want) {
			return nil
		}
	}
	return fmt.Errorf("no matching v1 signature")
}

// SignWebhookPayload produces a Stripe-Signature header for a payload. Used
// by tests and the local event injector.
func SignWebhookPayload(payload []byte, secret string, at time.Time) string {
	ts := strconv.FormatInt(at.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(payload)
	return "t=" + ts + ",v1=" + hex.EncodeToString(mac.Sum(nil))
}

// ParseEvent decodes a webhook body into an Event.
func ParseEvent(payload []byte) (*Event, error) {
	var wire eventWire
	if err := json.Unmarshal(payload, &wire); err != nil {
		return nil, fmt.Errorf("decode webhook event: %w", err)
	}
	if wire.ID == "" || wire.Type == "" {
		return nil, fmt.Errorf("webhook event missing id or type")
	}
	return &Event{ID: wire.ID, Type: wire.Type, Object: wire.Data.Object}, nil
}
