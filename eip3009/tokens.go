package eip3009

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// TokenMetadataReader reads the on-chain human-readable name and version of
// the token contract, the two required fields of the EIP-712 signing domain.
type TokenMetadataReader interface {
	TokenName(ctx context.Context, token string) (string, error)
	TokenVersion(ctx context.Context, token string) (string, error)
}

// Minimal ERC-20 metadata surface: the two read-only functions EIP-3009
// tokens expose for domain construction.
const tokenMetadataABI = `[
	{"constant":true,"inputs":[],"name":"name","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[],"name":"version","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"}
]`

// ContractReader reads token metadata through an Ethereum JSON-RPC endpoint.
type ContractReader struct {
	client   *ethclient.Client
	tokenABI abi.ABI
}

// NewContractReader dials the given RPC endpoint and returns a reader.
func NewContractReader(rpcURL string) (*ContractReader, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial rpc endpoint: %w", err)
	}
	return NewContractReaderWithClient(client)
}

// NewContractReaderWithClient wraps an existing ethclient.
func NewContractReaderWithClient(client *ethclient.Client) (*ContractReader, error) {
	parsed, err := abi.JSON(strings.NewReader(tokenMetadataABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token ABI: %w", err)
	}
	return &ContractReader{client: client, tokenABI: parsed}, nil
}

// TokenName reads the token contract's name().
func (r *ContractReader) TokenName(ctx context.Context, token string) (string, error) {
	return r.readString(ctx, token, "name")
}

// TokenVersion reads the token contract's version().
func (r *ContractReader) TokenVersion(ctx context.Context, token string) (string, error) {
	return r.readString(ctx, token, "version")
}

func (r *ContractReader) readString(ctx context.Context, token string, function string) (string, error) {
	data, err := r.tokenABI.Pack(function)
	if err != nil {
		return "", fmt.Errorf("failed to pack %s call: %w", function, err)
	}

	addr := common.HexToAddress(token)
	result, err := r.client.CallContract(ctx, ethereum.CallMsg{To: &addr, Data: data}, nil)
	if err != nil {
		return "", fmt.Errorf("%s call failed: %w", function, err)
	}

	outputs, err := r.tokenABI.Unpack(function, result)
	if err != nil {
		return "", fmt.Errorf("failed to unpack %s result: %w", function, err)
	}
	if len(outputs) != 1 {
		return "", fmt.Errorf("unexpected %s output arity: %d", function, len(outputs))
	}
	value, ok := outputs[0].(string)
	if !ok {
		return "", fmt.Errorf("unexpected %s output type %T", function, outputs[0])
	}
	return value, nil
}

var _ TokenMetadataReader = (*ContractReader)(nil)
