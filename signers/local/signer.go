// Package local implements the wallet provider interface on top of an ECDSA
// private key. It stands in for a browser wallet in headless use: account
// queries resolve to the key's address and typed-data signing happens
// in-process with no human prompt.
package local

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/0xmeta/terminal-go/eip3009"
	"github.com/0xmeta/terminal-go/wallet"
)

// Signer is a wallet.Provider backed by a private key.
type Signer struct {
	mu         sync.Mutex
	privateKey *ecdsa.PrivateKey
	address    common.Address
	chainID    string
	handlers   map[string][]func(json.RawMessage)
}

// NewSignerFromPrivateKey creates a signer from a hex-encoded private key,
// with or without the 0x prefix.
func NewSignerFromPrivateKey(privateKeyHex string) (*Signer, error) {
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return &Signer{
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(privateKey.PublicKey),
		handlers:   make(map[string][]func(json.RawMessage)),
	}, nil
}

// Address returns the signer's checksummed address.
func (s *Signer) Address() string {
	return s.address.Hex()
}

// Request dispatches a provider method. Unsupported methods fail rather
// than silently succeed, so protocol drift is caught early.
func (s *Signer) Request(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch method {
	case wallet.MethodRequestAccounts, wallet.MethodAccounts:
		return json.Marshal([]string{s.address.Hex()})

	case wallet.MethodSignTypedData:
		return s.signTypedData(params)

	case wallet.MethodSwitchChain:
		return s.switchChain(params)

	case wallet.MethodAddChain:
		// A key-backed signer has no chain registry; registering is a no-op.
		return json.Marshal(nil)

	default:
		return nil, fmt.Errorf("unsupported provider method: %s", method)
	}
}

// On registers an event handler. A local signer emits no events on its own;
// Emit lets hosts simulate provider signals.
func (s *Signer) On(event string, handler func(json.RawMessage)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[event] = append(s.handlers[event], handler)
}

// Emit delivers an event payload to all registered handlers.
func (s *Signer) Emit(event string, payload json.RawMessage) {
	s.mu.Lock()
	handlers := append([]func(json.RawMessage){}, s.handlers[event]...)
	s.mu.Unlock()

	for _, h := range handlers {
		h(payload)
	}
}

func (s *Signer) signTypedData(params []interface{}) (json.RawMessage, error) {
	if len(params) != 2 {
		return nil, fmt.Errorf("eth_signTypedData_v4 expects [address, typedData], got %d params", len(params))
	}
	from, ok := params[0].(string)
	if !ok {
		return nil, fmt.Errorf("eth_signTypedData_v4 address must be a string")
	}
	if common.HexToAddress(from) != s.address {
		return nil, &wallet.ProviderError{
			Code:    wallet.CodeUserRejectedRequest,
			Message: fmt.Sprintf("address %s is not managed by this signer", from),
		}
	}
	typedDataJSON, ok := params[1].(string)
	if !ok {
		return nil, fmt.Errorf("eth_signTypedData_v4 typed data must be a JSON string")
	}

	var typedData apitypes.TypedData
	if err := json.Unmarshal([]byte(typedDataJSON), &typedData); err != nil {
		return nil, fmt.Errorf("malformed typed data: %w", err)
	}

	digest, err := eip3009.HashTypedData(typedData)
	if err != nil {
		return nil, err
	}

	signature, err := crypto.Sign(digest, s.privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign: %w", err)
	}
	// Recovery id 0/1 -> Ethereum v 27/28
	signature[64] += 27

	return json.Marshal(hexutil.Encode(signature))
}

func (s *Signer) switchChain(params []interface{}) (json.RawMessage, error) {
	if len(params) != 1 {
		return nil, fmt.Errorf("wallet_switchEthereumChain expects one param, got %d", len(params))
	}

	data, err := json.Marshal(params[0])
	if err != nil {
		return nil, err
	}
	var sw wallet.SwitchChainParams
	if err := json.Unmarshal(data, &sw); err != nil {
		return nil, fmt.Errorf("malformed switch chain params: %w", err)
	}

	s.mu.Lock()
	s.chainID = sw.ChainID
	s.mu.Unlock()
	return json.Marshal(nil)
}

// ChainID returns the last chain the signer was switched to.
func (s *Signer) ChainID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chainID
}

var _ wallet.Provider = (*Signer)(nil)
