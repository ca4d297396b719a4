package eip3009_test

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	terminal "github.com/0xmeta/terminal-go"
	"github.com/0xmeta/terminal-go/eip3009"
	"github.com/0xmeta/terminal-go/signers/local"
	"github.com/0xmeta/terminal-go/wallet"
)

// testKey is a throwaway development key.
const testKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

type fakeTokenReader struct {
	name     string
	version  string
	err      error
	requests int
}

func (f *fakeTokenReader) TokenName(ctx context.Context, token string) (string, error) {
	f.requests++
	return f.name, f.err
}

func (f *fakeTokenReader) TokenVersion(ctx context.Context, token string) (string, error) {
	return f.version, f.err
}

func testConfig() terminal.NetworkConfig {
	return terminal.NetworkConfig{
		Network:            "base-sepolia",
		ChainID:            "0x14a34",
		FacilitatorBaseURL: "https://x402.org/facilitator",
		TreasuryWallet:     "0x209693bc6afc0c5328ba36faf03c514ef312287c",
		USDCAddress:        "0x036cbd53842c5426634e7929541ec2318f3dcf7e",
		TotalPriceUSDCWei:  "20000",
		TotalPriceUSDC:     "0.02",
	}
}

func newTestBuilder(t *testing.T, tokens eip3009.TokenMetadataReader) (*eip3009.Builder, *local.Signer) {
	t.Helper()
	signer, err := local.NewSignerFromPrivateKey(testKey)
	if err != nil {
		t.Fatalf("failed to create signer: %v", err)
	}
	builder := eip3009.NewBuilder(signer, tokens,
		eip3009.WithClock(func() time.Time { return time.Unix(1700000000, 0) }))
	return builder, signer
}

func TestBuildAuthorizationFields(t *testing.T) {
	tokens := &fakeTokenReader{name: "USDC", version: "2"}
	builder, signer := newTestBuilder(t, tokens)
	cfg := testConfig()

	auth, signature, err := builder.Build(context.Background(), cfg, signer.Address())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if auth.From != signer.Address() {
		t.Errorf("from = %s, want %s", auth.From, signer.Address())
	}
	if auth.To != "0x209693Bc6afc0C5328bA36FaF03C514EF312287C" {
		t.Errorf("to is not checksummed: %s", auth.To)
	}
	if auth.Token != "0x036CbD53842c5426634e7929541eC2318f3dCF7e" {
		t.Errorf("token is not checksummed: %s", auth.Token)
	}
	if auth.Value != "20000" {
		t.Errorf("value = %s, want 20000", auth.Value)
	}
	if auth.ValidAfter != "0" {
		t.Errorf("validAfter = %s, want 0", auth.ValidAfter)
	}

	validBefore, err := strconv.ParseInt(auth.ValidBefore, 10, 64)
	if err != nil {
		t.Fatalf("validBefore is not a decimal integer: %s", auth.ValidBefore)
	}
	if got := validBefore - 1700000000; got != eip3009.ValidityWindowSeconds {
		t.Errorf("validity window = %d seconds, want %d", got, eip3009.ValidityWindowSeconds)
	}

	if len(auth.Nonce) != 66 || auth.Nonce[:2] != "0x" {
		t.Errorf("nonce %q is not 32-byte 0x hex", auth.Nonce)
	}
	if signature == "" {
		t.Error("signature is empty")
	}
}

func TestBuildSignatureRecoversToPayer(t *testing.T) {
	tokens := &fakeTokenReader{name: "USDC", version: "2"}
	builder, signer := newTestBuilder(t, tokens)

	auth, signature, err := builder.Build(context.Background(), testConfig(), signer.Address())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	digest, err := eip3009.HashAuthorization(auth, big.NewInt(84532), "USDC", "2")
	if err != nil {
		t.Fatalf("HashAuthorization failed: %v", err)
	}

	sig, err := hexutil.Decode(signature)
	if err != nil {
		t.Fatalf("signature is not hex: %v", err)
	}
	if len(sig) != 65 {
		t.Fatalf("signature length = %d, want 65", len(sig))
	}
	if sig[64] != 27 && sig[64] != 28 {
		t.Fatalf("signature v = %d, want 27 or 28", sig[64])
	}

	// Undo the Ethereum v offset for recovery.
	recoverable := append([]byte{}, sig...)
	recoverable[64] -= 27
	pubkey, err := crypto.SigToPub(digest, recoverable)
	if err != nil {
		t.Fatalf("failed to recover public key: %v", err)
	}
	if got := crypto.PubkeyToAddress(*pubkey).Hex(); got != signer.Address() {
		t.Errorf("recovered address %s, want %s", got, signer.Address())
	}
}

func TestBuildFreshNoncePerAttempt(t *testing.T) {
	tokens := &fakeTokenReader{name: "USDC", version: "2"}
	builder, signer := newTestBuilder(t, tokens)

	first, _, err := builder.Build(context.Background(), testConfig(), signer.Address())
	if err != nil {
		t.Fatal(err)
	}
	second, _, err := builder.Build(context.Background(), testConfig(), signer.Address())
	if err != nil {
		t.Fatal(err)
	}
	if first.Nonce == second.Nonce {
		t.Errorf("consecutive attempts reused nonce %s", first.Nonce)
	}
	if tokens.requests != 2 {
		t.Errorf("token metadata read %d times, want once per attempt", tokens.requests)
	}
}

func TestBuildWithoutPayer(t *testing.T) {
	tokens := &fakeTokenReader{name: "USDC", version: "2"}
	builder, _ := newTestBuilder(t, tokens)

	_, _, err := builder.Build(context.Background(), testConfig(), "")
	if err == nil {
		t.Fatal("expected error for empty payer")
	}
	if !terminal.IsCode(err, terminal.ErrCodeWalletDisconnected) {
		t.Errorf("error code = %s, want %s", terminal.CodeOf(err), terminal.ErrCodeWalletDisconnected)
	}
}

func TestBuildTokenMetadataFailure(t *testing.T) {
	tokens := &fakeTokenReader{err: fmt.Errorf("rpc unreachable")}
	builder, signer := newTestBuilder(t, tokens)

	if _, _, err := builder.Build(context.Background(), testConfig(), signer.Address()); err == nil {
		t.Fatal("expected error when token metadata read fails")
	}
}

func TestBuildMapsSignerRejection(t *testing.T) {
	tokens := &fakeTokenReader{name: "USDC", version: "2"}
	builder, _ := newTestBuilder(t, tokens)

	// A payer address the signer does not manage triggers a 4001 rejection.
	stranger := "0x0000000000000000000000000000000000000001"
	_, _, err := builder.Build(context.Background(), testConfig(), stranger)
	if err == nil {
		t.Fatal("expected error for unmanaged payer")
	}
	if !terminal.IsCode(err, terminal.ErrCodeSignatureRejected) {
		t.Errorf("error code = %s, want %s", terminal.CodeOf(err), terminal.ErrCodeSignatureRejected)
	}
}

type rejectingProvider struct{}

func (rejectingProvider) Request(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error) {
	switch method {
	case wallet.MethodSignTypedData:
		return nil, &wallet.ProviderError{Code: wallet.CodeUserRejectedRequest, Message: "User rejected the request."}
	default:
		return json.Marshal(nil)
	}
}

func (rejectingProvider) On(event string, handler func(json.RawMessage)) {}

func TestBuildUserRejectsSignature(t *testing.T) {
	tokens := &fakeTokenReader{name: "USDC", version: "2"}
	builder := eip3009.NewBuilder(rejectingProvider{}, tokens)

	_, _, err := builder.Build(context.Background(), testConfig(), "0x0000000000000000000000000000000000000001")
	if err == nil {
		t.Fatal("expected rejection error")
	}
	if !terminal.IsCode(err, terminal.ErrCodeSignatureRejected) {
		t.Errorf("error code = %s, want %s", terminal.CodeOf(err), terminal.ErrCodeSignatureRejected)
	}
}
