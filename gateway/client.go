// Package gateway is the sole network boundary of the client: it fetches
// the session configuration and exchanges payment proofs for gated news
// content.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	terminal "github.com/0xmeta/terminal-go"
)

// Protocol fee added to every unlock, on top of the server-supplied price.
const (
	FeeUSDC      = 0.01
	FeeBaseUnits = 10000
)

// DefaultTimeout is the default HTTP client timeout
const DefaultTimeout = 30 * time.Second

// PaymentHeader carries the base64 payment payload on gated requests.
const PaymentHeader = "X-Payment"

// Client talks to the news gateway.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the client's logger. Defaults to a nop logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient creates a gateway client for the given base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// configResponse tolerates numeric or string price_usdc_wei on the wire.
type configResponse struct {
	FacilitatorBaseURL string      `json:"facilitator_base_url"`
	TreasuryWallet     string      `json:"treasury_wallet"`
	USDCAddress        string      `json:"usdc_address"`
	PriceUSDCWei       json.Number `json:"price_usdc_wei"`
	PriceUSDC          float64     `json:"price_usdc"`
	Network            string      `json:"network"`
	ChainID            string      `json:"chain_id"`
	RPCURL             string      `json:"rpc_url"`
	BlockExplorer      string      `json:"block_explorer"`
}

// GetConfig fetches the network and pricing configuration. The total price
// fields are derived here, client-side, on every fetch by adding the fixed
// protocol fee; they are never accepted pre-computed from the server. A
// response without a facilitator URL is rejected outright.
func (c *Client) GetConfig(ctx context.Context) (terminal.NetworkConfig, error) {
	var wire configResponse
	if err := c.getJSON(ctx, c.baseURL+"/api/config", "", &wire); err != nil {
		return terminal.NetworkConfig{}, terminal.NewPaymentError(
			terminal.ErrCodeConfigUnavailable,
			fmt.Sprintf("failed to fetch config: %v", err), nil)
	}

	if wire.FacilitatorBaseURL == "" {
		return terminal.NetworkConfig{}, terminal.NewPaymentError(
			terminal.ErrCodeConfigUnavailable,
			"config response missing facilitator_base_url", nil)
	}

	priceWei, err := strconv.ParseInt(wire.PriceUSDCWei.String(), 10, 64)
	if err != nil {
		return terminal.NetworkConfig{}, terminal.NewPaymentError(
			terminal.ErrCodeConfigUnavailable,
			fmt.Sprintf("config response has malformed price_usdc_wei: %v", err), nil)
	}

	return terminal.NetworkConfig{
		FacilitatorBaseURL: wire.FacilitatorBaseURL,
		TreasuryWallet:     wire.TreasuryWallet,
		USDCAddress:        wire.USDCAddress,
		PriceUSDCWei:       strconv.FormatInt(priceWei, 10),
		PriceUSDC:          wire.PriceUSDC,
		TotalPriceUSDCWei:  strconv.FormatInt(priceWei+FeeBaseUnits, 10),
		TotalPriceUSDC:     fmt.Sprintf("%.2f", wire.PriceUSDC+FeeUSDC),
		Network:            wire.Network,
		ChainID:            wire.ChainID,
		RPCURL:             wire.RPCURL,
		BlockExplorer:      wire.BlockExplorer,
	}, nil
}

// GetNews fetches a category's gated feed, presenting the payment payload
// in the X-Payment header. A non-success status is surfaced as a payment
// rejection carrying the server-supplied detail when present.
func (c *Client) GetNews(ctx context.Context, category string, payload terminal.PaymentPayload) (terminal.NewsResponse, error) {
	header, err := terminal.EncodePaymentHeader(payload)
	if err != nil {
		return terminal.NewsResponse{}, err
	}
	return c.fetchNews(ctx, category, header)
}

// GetFreeNews fetches a category's feed without a payment header. Only the
// designated free categories are served this way by the gateway.
func (c *Client) GetFreeNews(ctx context.Context, category string) (terminal.NewsResponse, error) {
	return c.fetchNews(ctx, category, "")
}

func (c *Client) fetchNews(ctx context.Context, category string, paymentHeader string) (terminal.NewsResponse, error) {
	url := fmt.Sprintf("%s/news/%s", c.baseURL, category)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return terminal.NewsResponse{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if paymentHeader != "" {
		req.Header.Set(PaymentHeader, paymentHeader)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return terminal.NewsResponse{}, fmt.Errorf("news request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := "payment verification failed"
		var body struct {
			Detail string `json:"detail"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Detail != "" {
			detail = body.Detail
		}
		c.log.Warn("gateway rejected request",
			zap.String("category", category),
			zap.Int("status", resp.StatusCode),
			zap.String("detail", detail))
		return terminal.NewsResponse{}, terminal.NewPaymentError(
			terminal.ErrCodePaymentRejected, detail,
			map[string]interface{}{"status": resp.StatusCode, "category": category})
	}

	var news terminal.NewsResponse
	if err := json.NewDecoder(resp.Body).Decode(&news); err != nil {
		return terminal.NewsResponse{}, fmt.Errorf("malformed news response: %w", err)
	}
	return news, nil
}

func (c *Client) getJSON(ctx context.Context, url string, paymentHeader string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if paymentHeader != "" {
		req.Header.Set(PaymentHeader, paymentHeader)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
