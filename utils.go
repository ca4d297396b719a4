package terminal

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"regexp"
)

// Base64 regex pattern - requires at least one character
var base64Regex = regexp.MustCompile(`^[A-Za-z0-9+/]+={0,2}$`)

// EncodePaymentHeader serializes a payment payload into the X-Payment
// header value: base64 of its JSON form. The encoding is pure and
// invertible; DecodePaymentHeader reproduces the exact payload.
func EncodePaymentHeader(p PaymentPayload) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payment payload: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// DecodePaymentHeader validates and decodes an X-Payment header value.
// It checks the base64 format, the JSON structure and the required payload
// fields before returning the decoded payload.
func DecodePaymentHeader(header string) (PaymentPayload, error) {
	if header == "" {
		return PaymentPayload{}, fmt.Errorf("payment header is empty")
	}
	if !base64Regex.MatchString(header) {
		return PaymentPayload{}, fmt.Errorf("invalid payment header format: not valid base64")
	}

	data, err := base64.StdEncoding.DecodeString(header)
	if err != nil {
		return PaymentPayload{}, fmt.Errorf("invalid payment header format: base64 decoding failed - %v", err)
	}

	var payload PaymentPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return PaymentPayload{}, fmt.Errorf("invalid payment header format: not valid JSON - %v", err)
	}

	if err := ValidatePaymentPayload(payload); err != nil {
		return PaymentPayload{}, err
	}

	return payload, nil
}
