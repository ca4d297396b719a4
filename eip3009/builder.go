// Package eip3009 builds and signs single-use, time-boxed EIP-3009
// transfer-with-authorization messages against the configured token,
// scoped to the connected wallet.
package eip3009

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	terminal "github.com/0xmeta/terminal-go"
	"github.com/0xmeta/terminal-go/wallet"
)

// ValidityWindowSeconds is the lifetime of a fresh authorization. The
// authorization is valid immediately (validAfter = 0, matching the
// facilitator's wire expectations) and expires one day after construction.
const ValidityWindowSeconds = 86400

// Builder produces signed transfer authorizations. It performs no retries;
// every failure is surfaced to the caller, which decides whether to start a
// fresh attempt with a fresh nonce.
type Builder struct {
	provider wallet.Provider
	tokens   TokenMetadataReader
	now      func() time.Time
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithClock overrides the wall clock used for the validity window.
func WithClock(now func() time.Time) BuilderOption {
	return func(b *Builder) {
		b.now = now
	}
}

// NewBuilder creates a builder that signs through the given provider and
// reads token metadata through the given reader.
func NewBuilder(provider wallet.Provider, tokens TokenMetadataReader, opts ...BuilderOption) *Builder {
	b := &Builder{
		provider: provider,
		tokens:   tokens,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build assembles and signs an authorization transferring the session's
// total price from payer to the treasury. Token name and version are read
// on-chain per call: the builder has no guarantee the token address is
// stable between requests, so domain fields are never cached. The returned
// signature is the provider's output, unmodified.
func (b *Builder) Build(ctx context.Context, cfg terminal.NetworkConfig, payer string) (terminal.Authorization, string, error) {
	if payer == "" || b.provider == nil {
		return terminal.Authorization{}, "", terminal.NewPaymentError(
			terminal.ErrCodeWalletDisconnected, "no wallet connected", nil)
	}

	from := common.HexToAddress(payer).Hex()
	to := common.HexToAddress(cfg.TreasuryWallet).Hex()
	token := common.HexToAddress(cfg.USDCAddress).Hex()

	tokenName, err := b.tokens.TokenName(ctx, token)
	if err != nil {
		return terminal.Authorization{}, "", fmt.Errorf("failed to read token name: %w", err)
	}
	tokenVersion, err := b.tokens.TokenVersion(ctx, token)
	if err != nil {
		return terminal.Authorization{}, "", fmt.Errorf("failed to read token version: %w", err)
	}

	nonce, err := NewNonce()
	if err != nil {
		return terminal.Authorization{}, "", err
	}

	chainID, err := ParseChainID(cfg.ChainID)
	if err != nil {
		return terminal.Authorization{}, "", err
	}

	validBefore := b.now().Unix() + ValidityWindowSeconds
	auth := terminal.Authorization{
		From:        from,
		To:          to,
		Value:       cfg.TotalPriceUSDCWei,
		ValidAfter:  "0",
		ValidBefore: strconv.FormatInt(validBefore, 10),
		Nonce:       nonce,
		Token:       token,
	}

	request, err := signRequestJSON(auth, chainID, tokenName, tokenVersion)
	if err != nil {
		return terminal.Authorization{}, "", err
	}

	// May suspend indefinitely while the human decides in the wallet UI.
	raw, err := b.provider.Request(ctx, wallet.MethodSignTypedData, from, request)
	if err != nil {
		return terminal.Authorization{}, "", mapSigningError(err)
	}

	var signature string
	if err := json.Unmarshal(raw, &signature); err != nil {
		return terminal.Authorization{}, "", fmt.Errorf("malformed signature response: %w", err)
	}

	return auth, signature, nil
}

// signTypedDataRequest is the JSON body of an eth_signTypedData_v4 call.
// Values are carried as decimal strings and hex, the encoding wallets
// render for human review.
type signTypedDataRequest struct {
	Types       apitypes.Types    `json:"types"`
	PrimaryType string            `json:"primaryType"`
	Domain      signDomain        `json:"domain"`
	Message     map[string]string `json:"message"`
}

type signDomain struct {
	Name              string `json:"name"`
	Version           string `json:"version"`
	ChainID           uint64 `json:"chainId"`
	VerifyingContract string `json:"verifyingContract"`
}

func signRequestJSON(auth terminal.Authorization, chainID uint64, tokenName, tokenVersion string) (string, error) {
	req := signTypedDataRequest{
		Types:       TransferWithAuthorizationTypes,
		PrimaryType: PrimaryType,
		Domain: signDomain{
			Name:              tokenName,
			Version:           tokenVersion,
			ChainID:           chainID,
			VerifyingContract: auth.Token,
		},
		Message: map[string]string{
			"from":        auth.From,
			"to":          auth.To,
			"value":       auth.Value,
			"validAfter":  auth.ValidAfter,
			"validBefore": auth.ValidBefore,
			"nonce":       auth.Nonce,
		},
	}
	data, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal typed data: %w", err)
	}
	return string(data), nil
}

// ParseChainID parses a hex chain id ("0x2105") into its decimal value.
func ParseChainID(chainID string) (uint64, error) {
	parsed, err := strconv.ParseUint(strings.TrimPrefix(chainID, "0x"), 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid chain id %q: %w", chainID, err)
	}
	return parsed, nil
}

func mapSigningError(err error) error {
	var pe *wallet.ProviderError
	if errors.As(err, &pe) && pe.Code == wallet.CodeUserRejectedRequest {
		return terminal.NewPaymentError(terminal.ErrCodeSignatureRejected, pe.Message, nil)
	}
	return terminal.NewPaymentError(terminal.ErrCodeUnknownFailure,
		fmt.Sprintf("typed data signing failed: %v", err), nil)
}
