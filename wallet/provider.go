// Package wallet manages the connection lifecycle to an injected wallet
// provider: connect, silent session restore, network switching and
// provider-level account/chain events.
package wallet

import (
	"context"
	"encoding/json"
	"fmt"
)

// Standard provider request methods.
const (
	MethodRequestAccounts = "eth_requestAccounts"
	MethodAccounts        = "eth_accounts"
	MethodSignTypedData   = "eth_signTypedData_v4"
	MethodSwitchChain     = "wallet_switchEthereumChain"
	MethodAddChain        = "wallet_addEthereumChain"
)

// Provider event names.
const (
	EventAccountsChanged = "accountsChanged"
	EventChainChanged    = "chainChanged"
)

// EIP-1193 provider error codes the connector reacts to.
const (
	CodeUserRejectedRequest = 4001
	CodeUnrecognizedChain   = 4902
)

// Provider is the capability interface over an injected wallet provider.
// Request performs a JSON-RPC style call and may suspend indefinitely while
// a human decides on a prompt; implementations must honor ctx cancellation
// for their own I/O but are not required to abort an open prompt. On
// registers an event handler for provider-level signals; the raw event
// payload is the JSON-encoded event argument (an account list for
// accountsChanged, a chain id string for chainChanged).
type Provider interface {
	Request(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error)
	On(event string, handler func(json.RawMessage))
}

// ProviderError is an EIP-1193 error returned by a provider request,
// carrying the numeric code wallets use to describe rejections.
type ProviderError struct {
	Code    int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error %d: %s", e.Code, e.Message)
}

// SwitchChainParams is the single parameter of wallet_switchEthereumChain.
type SwitchChainParams struct {
	ChainID string `json:"chainId"`
}

// NativeCurrency describes a chain's native asset for wallet_addEthereumChain.
type NativeCurrency struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

// AddChainParams is the single parameter of wallet_addEthereumChain.
type AddChainParams struct {
	ChainID           string         `json:"chainId"`
	ChainName         string         `json:"chainName"`
	NativeCurrency    NativeCurrency `json:"nativeCurrency"`
	RPCURLs           []string       `json:"rpcUrls"`
	BlockExplorerURLs []string       `json:"blockExplorerUrls"`
}

// ShortenAddress renders an address as "0x1234...abcd" for display.
func ShortenAddress(addr string) string {
	if len(addr) < 10 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}
