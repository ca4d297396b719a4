package terminal

import (
	"errors"
	"fmt"
)

// PaymentError represents a payment-specific error
type PaymentError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *PaymentError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Common error codes
const (
	ErrCodeProviderMissing     = "provider_missing"
	ErrCodeUserRejected        = "user_rejected"
	ErrCodeSignatureRejected   = "signature_rejected"
	ErrCodeWalletDisconnected  = "wallet_disconnected"
	ErrCodeNetworkSwitchFailed = "network_switch_failed"
	ErrCodeConfigUnavailable   = "config_unavailable"
	ErrCodePaymentRejected     = "payment_rejected"
	ErrCodeUnknownFailure      = "unknown_failure"
)

// NewPaymentError creates a new payment error
func NewPaymentError(code, message string, details map[string]interface{}) *PaymentError {
	return &PaymentError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// CodeOf extracts the payment error code from err, unwrapping as needed.
// Returns ErrCodeUnknownFailure for errors that are not PaymentErrors.
func CodeOf(err error) string {
	var pe *PaymentError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ErrCodeUnknownFailure
}

// IsCode reports whether err carries the given payment error code.
func IsCode(err error, code string) bool {
	var pe *PaymentError
	return errors.As(err, &pe) && pe.Code == code
}
