package terminal

import (
	"encoding/base64"
	"reflect"
	"testing"
)

func samplePayload() PaymentPayload {
	return PaymentPayload{
		X402Version: ProtocolVersion,
		Scheme:      SchemeExact,
		Network:     "base-sepolia",
		Payload: ExactPayload{
			Signature: "0x1b2c3d",
			Authorization: Authorization{
				From:        "0x857b06519E91e3A54538791bDbb0E22373e36b66",
				To:          "0x209693Bc6afc0C5328bA36FaF03C514EF312287C",
				Value:       "20000",
				ValidAfter:  "0",
				ValidBefore: "1700086400",
				Nonce:       "0xabf1e2d3c4b5a6978011223344556677889900aabbccddeeff00112233445566",
				Token:       "0x036CbD53842c5426634e7929541eC2318f3dCF7e",
			},
		},
	}
}

func TestEncodeDecodePaymentHeaderRoundTrip(t *testing.T) {
	original := samplePayload()

	header, err := EncodePaymentHeader(original)
	if err != nil {
		t.Fatalf("EncodePaymentHeader failed: %v", err)
	}
	if _, err := base64.StdEncoding.DecodeString(header); err != nil {
		t.Fatalf("header is not valid base64: %v", err)
	}

	decoded, err := DecodePaymentHeader(header)
	if err != nil {
		t.Fatalf("DecodePaymentHeader failed: %v", err)
	}
	if !reflect.DeepEqual(decoded, original) {
		t.Errorf("round trip mismatch:\nencoded %+v\ndecoded %+v", original, decoded)
	}
}

func TestDecodePaymentHeaderRejectsMalformed(t *testing.T) {
	valid, err := EncodePaymentHeader(samplePayload())
	if err != nil {
		t.Fatalf("EncodePaymentHeader failed: %v", err)
	}

	tests := []struct {
		name   string
		header string
	}{
		{"empty header", ""},
		{"not base64", "not-valid-base64!!!"},
		{"base64 of non-JSON", base64.StdEncoding.EncodeToString([]byte("hello world"))},
		{"base64 of wrong JSON", base64.StdEncoding.EncodeToString([]byte(`{"foo":"bar"}`))},
		{"truncated header", valid[:len(valid)/2] + "!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodePaymentHeader(tt.header); err == nil {
				t.Errorf("expected error for %q, got none", tt.name)
			}
		})
	}
}

func TestValidatePaymentPayload(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*PaymentPayload)
		wantErr bool
	}{
		{"valid payload", func(p *PaymentPayload) {}, false},
		{"wrong version", func(p *PaymentPayload) { p.X402Version = 2 }, true},
		{"wrong scheme", func(p *PaymentPayload) { p.Scheme = "upto" }, true},
		{"missing network", func(p *PaymentPayload) { p.Network = "" }, true},
		{"missing signature", func(p *PaymentPayload) { p.Payload.Signature = "" }, true},
		{"missing from", func(p *PaymentPayload) { p.Payload.Authorization.From = "" }, true},
		{"missing token", func(p *PaymentPayload) { p.Payload.Authorization.Token = "" }, true},
		{"missing value", func(p *PaymentPayload) { p.Payload.Authorization.Value = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := samplePayload()
			tt.mutate(&p)
			err := ValidatePaymentPayload(p)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePaymentPayload() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
