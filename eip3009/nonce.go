package eip3009

import (
	"crypto/rand"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// NonceSize is the EIP-3009 nonce length in bytes.
const NonceSize = 32

// NewNonce generates a single-use authorization nonce: 32 cryptographically
// random bytes, hex-encoded with a 0x prefix. Nonces are never reused; the
// token contract consumes each one exactly once.
func NewNonce() (string, error) {
	buf := make([]byte, NonceSize)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	return hexutil.Encode(buf), nil
}
