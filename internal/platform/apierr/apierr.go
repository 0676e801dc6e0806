package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the stable machine-readable class of an expected failure.
// Callers branch on kinds, never on message text.
type Kind string

const (
	KindNotFound                   Kind = "not_found"
	KindInvalidStatus              Kind = "invalid_status"
	KindAlreadyProcessed           Kind = "already_processed"
	KindPayoutAccountNotConfigured Kind = "payout_account_not_configured"
	KindPayoutsNotEnabled          Kind = "payouts_not_enabled"
	KindInsufficientFunds          Kind = "insufficient_funds"
	KindGatewayDeclined            Kind = "gateway_declined"
	KindGatewayUnavailable         Kind = "gateway_unavailable"
	KindInvalidArgument            Kind = "invalid_argument"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the kind from any error in the chain; unrecognized errors
// surface as gateway_unavailable so storage-layer detail never leaks upward.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindGatewayUnavailable
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

func HTTPStatus(kind Kind) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidStatus, KindAlreadyProcessed:
		return http.StatusConflict
	case KindPayoutAccountNotConfigured, KindPayoutsNotEnabled, KindInsufficientFunds, KindInvalidArgument:
		return http.StatusUnprocessableEntity
	case KindGatewayDeclined:
		return http.StatusPaymentRequired
	case KindGatewayUnavailable:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
