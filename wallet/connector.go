package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	terminal "github.com/0xmeta/terminal-go"
)

// ConnectionState is the connector's view of the wallet session. It is
// owned exclusively by the Connector and mutated only by connect,
// disconnect and provider account/chain events.
type ConnectionState struct {
	Connected bool
	Address   string
	ChainID   string
}

// Connector owns the lifecycle of a single injected wallet provider:
// detection, connection, silent restore across reloads, network switching
// and provider event handling.
type Connector struct {
	mu       sync.Mutex
	provider Provider
	sessions SessionStore
	log      *zap.Logger
	reload   func()
	state    ConnectionState
	restored bool
}

// ConnectorOption configures a Connector.
type ConnectorOption func(*Connector)

// WithSessionStore sets the durable session store. Defaults to an
// in-memory store.
func WithSessionStore(store SessionStore) ConnectorOption {
	return func(c *Connector) {
		c.sessions = store
	}
}

// WithLogger sets the connector's logger. Defaults to a nop logger.
func WithLogger(log *zap.Logger) ConnectorOption {
	return func(c *Connector) {
		c.log = log
	}
}

// WithReloadFunc sets the callback invoked when the provider reports a
// chain change. Signing depends on a consistent chain, so the host is
// expected to tear down and rebuild its session context.
func WithReloadFunc(reload func()) ConnectorOption {
	return func(c *Connector) {
		c.reload = reload
	}
}

// NewConnector creates a connector for the given provider. A nil provider
// is allowed and reported by IsProviderAvailable; every other operation
// then fails with a provider_missing error.
func NewConnector(provider Provider, opts ...ConnectorOption) *Connector {
	c := &Connector{
		provider: provider,
		sessions: NewMemorySessionStore(),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if provider != nil {
		provider.On(EventAccountsChanged, c.handleAccountsChanged)
		provider.On(EventChainChanged, c.handleChainChanged)
	}
	return c
}

// IsProviderAvailable reports whether an injected provider is present.
// Pure capability check, no side effects.
func (c *Connector) IsProviderAvailable() bool {
	return c.provider != nil
}

// State returns a copy of the current connection state.
func (c *Connector) State() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Address returns the connected account address, or "" when disconnected.
func (c *Connector) Address() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Address
}

// IsConnected reports whether a wallet session is active.
func (c *Connector) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Connected
}

// Connect requests account access from the provider and, on success,
// records the primary account and persists the durable session flag so a
// later load can restore without prompting.
func (c *Connector) Connect(ctx context.Context) (string, error) {
	if c.provider == nil {
		return "", terminal.NewPaymentError(terminal.ErrCodeProviderMissing,
			"no wallet provider found, install a wallet extension", nil)
	}

	raw, err := c.provider.Request(ctx, MethodRequestAccounts)
	if err != nil {
		return "", mapProviderError(err, terminal.ErrCodeUserRejected)
	}

	accounts, err := decodeAccounts(raw)
	if err != nil {
		return "", err
	}
	if len(accounts) == 0 {
		return "", terminal.NewPaymentError(terminal.ErrCodeUnknownFailure,
			"no accounts returned by provider", nil)
	}

	c.mu.Lock()
	c.state = ConnectionState{Connected: true, Address: accounts[0], ChainID: c.state.ChainID}
	c.mu.Unlock()

	if err := c.sessions.SetConnected(true); err != nil {
		c.log.Warn("failed to persist session flag", zap.Error(err))
	}

	c.log.Info("wallet connected", zap.String("address", ShortenAddress(accounts[0])))
	return accounts[0], nil
}

// RestoreSession restores a prior wallet session without prompting. It is
// guarded to run at most once per process: repeat calls are no-ops. When
// the durable flag is set and the provider confirms an authorized account,
// connected state is restored; otherwise the flag is cleared.
func (c *Connector) RestoreSession(ctx context.Context) error {
	c.mu.Lock()
	if c.restored {
		c.mu.Unlock()
		return nil
	}
	c.restored = true
	c.mu.Unlock()

	wasConnected, err := c.sessions.WasConnected()
	if err != nil {
		return fmt.Errorf("failed to read session flag: %w", err)
	}
	if !wasConnected || c.provider == nil {
		return nil
	}

	raw, err := c.provider.Request(ctx, MethodAccounts)
	if err != nil {
		c.log.Warn("session restore query failed", zap.Error(err))
		return nil
	}

	accounts, err := decodeAccounts(raw)
	if err != nil || len(accounts) == 0 {
		// Authorization is gone; a future connect must prompt again.
		if clearErr := c.sessions.SetConnected(false); clearErr != nil {
			c.log.Warn("failed to clear session flag", zap.Error(clearErr))
		}
		return nil
	}

	c.mu.Lock()
	c.state = ConnectionState{Connected: true, Address: accounts[0], ChainID: c.state.ChainID}
	c.mu.Unlock()

	c.log.Info("wallet session restored", zap.String("address", ShortenAddress(accounts[0])))
	return nil
}

// SwitchNetwork asks the provider to switch to the configured chain. When
// the chain is unknown to the provider (code 4902), it falls back to
// registering the chain with its RPC URL, native currency and explorer;
// the provider then retries the switch implicitly.
func (c *Connector) SwitchNetwork(ctx context.Context, cfg terminal.NetworkConfig) error {
	if c.provider == nil {
		return terminal.NewPaymentError(terminal.ErrCodeProviderMissing,
			"no wallet provider found, install a wallet extension", nil)
	}

	_, err := c.provider.Request(ctx, MethodSwitchChain, SwitchChainParams{ChainID: cfg.ChainID})
	if err != nil {
		var pe *ProviderError
		switch {
		case errors.As(err, &pe) && pe.Code == CodeUnrecognizedChain:
			if addErr := c.addChain(ctx, cfg); addErr != nil {
				return addErr
			}
		case errors.As(err, &pe) && pe.Code == CodeUserRejectedRequest:
			return terminal.NewPaymentError(terminal.ErrCodeUserRejected,
				"network switch rejected", nil)
		default:
			return terminal.NewPaymentError(terminal.ErrCodeNetworkSwitchFailed,
				fmt.Sprintf("failed to switch network: %v", err), nil)
		}
	}

	c.mu.Lock()
	c.state.ChainID = cfg.ChainID
	c.mu.Unlock()
	return nil
}

func (c *Connector) addChain(ctx context.Context, cfg terminal.NetworkConfig) error {
	params := AddChainParams{
		ChainID:           cfg.ChainID,
		ChainName:         chainName(cfg.Network),
		NativeCurrency:    NativeCurrency{Name: "ETH", Symbol: "ETH", Decimals: 18},
		RPCURLs:           []string{cfg.RPCURL},
		BlockExplorerURLs: []string{cfg.BlockExplorer},
	}
	if _, err := c.provider.Request(ctx, MethodAddChain, params); err != nil {
		return terminal.NewPaymentError(terminal.ErrCodeNetworkSwitchFailed,
			fmt.Sprintf("failed to register network %s: %v", cfg.Network, err), nil)
	}
	return nil
}

// Disconnect clears local connection state and the durable flag. The
// provider-side authorization cannot be revoked through the standard
// interface and is left intact.
func (c *Connector) Disconnect() {
	c.mu.Lock()
	c.state = ConnectionState{}
	c.mu.Unlock()

	if err := c.sessions.SetConnected(false); err != nil {
		c.log.Warn("failed to clear session flag", zap.Error(err))
	}
	c.log.Info("wallet disconnected")
}

func (c *Connector) handleAccountsChanged(raw json.RawMessage) {
	accounts, err := decodeAccounts(raw)
	if err != nil {
		c.log.Warn("malformed accountsChanged event", zap.Error(err))
		return
	}

	if len(accounts) == 0 {
		c.mu.Lock()
		c.state = ConnectionState{}
		c.mu.Unlock()
		if err := c.sessions.SetConnected(false); err != nil {
			c.log.Warn("failed to clear session flag", zap.Error(err))
		}
		c.log.Info("provider reported zero accounts, session cleared")
		return
	}

	c.mu.Lock()
	c.state.Connected = true
	c.state.Address = accounts[0]
	c.mu.Unlock()
	c.log.Info("active account changed", zap.String("address", ShortenAddress(accounts[0])))
}

func (c *Connector) handleChainChanged(raw json.RawMessage) {
	var chainID string
	if err := json.Unmarshal(raw, &chainID); err == nil && chainID != "" {
		c.mu.Lock()
		c.state.ChainID = chainID
		c.mu.Unlock()
	}

	c.log.Info("chain changed, session context must be rebuilt", zap.String("chainId", chainID))
	if c.reload != nil {
		c.reload()
	}
}

func decodeAccounts(raw json.RawMessage) ([]string, error) {
	var accounts []string
	if err := json.Unmarshal(raw, &accounts); err != nil {
		return nil, fmt.Errorf("malformed accounts response: %w", err)
	}
	return accounts, nil
}

// mapProviderError converts an EIP-1193 rejection into the matching typed
// error; anything else becomes an unknown failure.
func mapProviderError(err error, rejectionCode string) error {
	var pe *ProviderError
	if errors.As(err, &pe) && pe.Code == CodeUserRejectedRequest {
		return terminal.NewPaymentError(rejectionCode, pe.Message, nil)
	}
	return terminal.NewPaymentError(terminal.ErrCodeUnknownFailure, err.Error(), nil)
}

func chainName(network string) string {
	if network == "base" {
		return "Base"
	}
	return "Base Sepolia"
}
