// Package terminal contains the wire types and protocol primitives for the
// 0xMeta Terminal content-unlock pipeline. It implements the client side of
// the x402 v1 micropayment scheme: a signed EIP-3009 transfer authorization
// is encoded into an X-Payment header and exchanged for gated news content.
package terminal

import "fmt"

// ProtocolVersion is the x402 protocol version spoken by this client.
const ProtocolVersion = 1

// SchemeExact is the only payment scheme the gateway accepts.
const SchemeExact = "exact"

// Authorization is an EIP-3009 TransferWithAuthorization message plus the
// token contract it is scoped to. All addresses are checksummed, numeric
// fields are decimal-string integers and the nonce is 32 random bytes
// hex-encoded. An Authorization is single-use: a fresh nonce is generated
// per payment attempt and the struct is never persisted.
type Authorization struct {
	From        string `json:"from"`
	To          string `json:"to"`
	Value       string `json:"value"`
	ValidAfter  string `json:"validAfter"`
	ValidBefore string `json:"validBefore"`
	Nonce       string `json:"nonce"`
	Token       string `json:"token"`
}

// ExactPayload pairs an authorization with its EIP-712 signature.
type ExactPayload struct {
	Authorization Authorization `json:"authorization"`
	Signature     string        `json:"signature"`
}

// PaymentPayload is the x402 v1 payment proof submitted to the gateway.
// It is transient: assembled for one request, base64-of-JSON encoded into
// the X-Payment header and then discarded.
type PaymentPayload struct {
	X402Version int          `json:"x402Version"`
	Scheme      string       `json:"scheme"`
	Network     string       `json:"network"`
	Payload     ExactPayload `json:"payload"`
}

// NetworkConfig is the server-supplied network and pricing configuration.
// It is fetched once and treated as immutable for the session. The
// TotalPrice* fields are derived client-side by adding the protocol fee and
// are never persisted pre-computed.
type NetworkConfig struct {
	FacilitatorBaseURL string  `json:"facilitator_base_url"`
	TreasuryWallet     string  `json:"treasury_wallet"`
	USDCAddress        string  `json:"usdc_address"`
	PriceUSDCWei       string  `json:"price_usdc_wei"`
	PriceUSDC          float64 `json:"price_usdc"`
	TotalPriceUSDCWei  string  `json:"total_price_usdc_wei"`
	TotalPriceUSDC     string  `json:"total_price_usdc"`
	Network            string  `json:"network"`
	ChainID            string  `json:"chain_id"`
	RPCURL             string  `json:"rpc_url"`
	BlockExplorer      string  `json:"block_explorer"`
}

// ApiNewsItem is one raw feed entry as returned by the gateway.
type ApiNewsItem struct {
	Source       string   `json:"source"`
	Title        string   `json:"title,omitempty"`
	Text         string   `json:"text"`
	LongContext  string   `json:"long_context,omitempty"`
	ShortContext string   `json:"short_context,omitempty"`
	Timestamp    int64    `json:"timestamp"`
	Tokens       []string `json:"tokens,omitempty"`
	Categories   []string `json:"categories,omitempty"`
	URL          string   `json:"url,omitempty"`
}

// NewsResponse is the raw gated feed for one category: structured articles
// plus social posts.
type NewsResponse struct {
	CryptoNews []ApiNewsItem `json:"cryptonews"`
	Twitter    []ApiNewsItem `json:"twitter"`
}

// Sentiment classification for a display item.
const (
	SentimentBullish = "bullish"
	SentimentBearish = "bearish"
	SentimentNeutral = "neutral"
)

// NewsItem is a normalized display item, ready for the unlock cache and the
// interface layer.
type NewsItem struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Source    string   `json:"source"`
	Time      string   `json:"time"`
	Sentiment string   `json:"sentiment"`
	URL       string   `json:"url"`
	Tags      []string `json:"tags,omitempty"`
	Summary   string   `json:"summary,omitempty"`
}

// ColumnData is one dashboard column: a category's items plus sentiment
// tallies used by the column header.
type ColumnData struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Items        []NewsItem `json:"items"`
	BullishCount int        `json:"bullishCount"`
	BearishCount int        `json:"bearishCount"`
	NeutralCount int        `json:"neutralCount"`
}

// ValidatePaymentPayload performs basic validation on a payment payload
func ValidatePaymentPayload(p PaymentPayload) error {
	if p.X402Version != ProtocolVersion {
		return fmt.Errorf("unsupported x402 version: %d", p.X402Version)
	}
	if p.Scheme != SchemeExact {
		return fmt.Errorf("unsupported payment scheme: %q", p.Scheme)
	}
	if p.Network == "" {
		return fmt.Errorf("payment network is required")
	}
	if p.Payload.Signature == "" {
		return fmt.Errorf("payment signature is required")
	}
	a := p.Payload.Authorization
	if a.From == "" || a.To == "" || a.Token == "" {
		return fmt.Errorf("authorization addresses are required")
	}
	if a.Value == "" || a.Nonce == "" {
		return fmt.Errorf("authorization value and nonce are required")
	}
	return nil
}
