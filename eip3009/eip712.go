package eip3009

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	terminal "github.com/0xmeta/terminal-go"
)

// PrimaryType is the EIP-712 primary type of an EIP-3009 authorization.
const PrimaryType = "TransferWithAuthorization"

// TransferWithAuthorizationTypes are the EIP-712 type definitions shared by
// the signing request and the digest computation.
var TransferWithAuthorizationTypes = apitypes.Types{
	"EIP712Domain": {
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
		{Name: "chainId", Type: "uint256"},
		{Name: "verifyingContract", Type: "address"},
	},
	PrimaryType: {
		{Name: "from", Type: "address"},
		{Name: "to", Type: "address"},
		{Name: "value", Type: "uint256"},
		{Name: "validAfter", Type: "uint256"},
		{Name: "validBefore", Type: "uint256"},
		{Name: "nonce", Type: "bytes32"},
	},
}

// TypedData assembles the full EIP-712 typed data for an authorization,
// with the token contract as verifying contract. The same structure is
// serialized into the eth_signTypedData_v4 request and hashed for local
// signing, keeping both paths byte-identical.
func TypedData(
	auth terminal.Authorization,
	chainID *big.Int,
	tokenName string,
	tokenVersion string,
) (apitypes.TypedData, error) {
	value, ok := new(big.Int).SetString(auth.Value, 10)
	if !ok {
		return apitypes.TypedData{}, fmt.Errorf("invalid authorization value: %s", auth.Value)
	}
	validAfter, ok := new(big.Int).SetString(auth.ValidAfter, 10)
	if !ok {
		return apitypes.TypedData{}, fmt.Errorf("invalid validAfter: %s", auth.ValidAfter)
	}
	validBefore, ok := new(big.Int).SetString(auth.ValidBefore, 10)
	if !ok {
		return apitypes.TypedData{}, fmt.Errorf("invalid validBefore: %s", auth.ValidBefore)
	}
	nonceBytes, err := hexutil.Decode(auth.Nonce)
	if err != nil {
		return apitypes.TypedData{}, fmt.Errorf("invalid nonce: %w", err)
	}

	return apitypes.TypedData{
		Types:       TransferWithAuthorizationTypes,
		PrimaryType: PrimaryType,
		Domain: apitypes.TypedDataDomain{
			Name:              tokenName,
			Version:           tokenVersion,
			ChainId:           (*math.HexOrDecimal256)(chainID),
			VerifyingContract: auth.Token,
		},
		Message: apitypes.TypedDataMessage{
			"from":        common.HexToAddress(auth.From).Hex(),
			"to":          common.HexToAddress(auth.To).Hex(),
			"value":       value,
			"validAfter":  validAfter,
			"validBefore": validBefore,
			"nonce":       nonceBytes,
		},
	}, nil
}

// HashAuthorization computes the EIP-712 digest of an authorization:
// keccak256("\x19\x01" + domainSeparator + structHash). The digest is what
// a wallet signs and what signature verification recovers against.
func HashAuthorization(
	auth terminal.Authorization,
	chainID *big.Int,
	tokenName string,
	tokenVersion string,
) ([]byte, error) {
	typedData, err := TypedData(auth, chainID, tokenName, tokenVersion)
	if err != nil {
		return nil, err
	}
	return HashTypedData(typedData)
}

// HashTypedData hashes arbitrary typed data per EIP-712.
func HashTypedData(typedData apitypes.TypedData) ([]byte, error) {
	dataHash, err := typedData.HashStruct(typedData.PrimaryType, typedData.Message)
	if err != nil {
		return nil, fmt.Errorf("failed to hash struct: %w", err)
	}

	domainSeparator, err := typedData.HashStruct("EIP712Domain", typedData.Domain.Map())
	if err != nil {
		return nil, fmt.Errorf("failed to hash domain: %w", err)
	}

	// EIP-712 digest: 0x19 0x01 <domainSeparator> <dataHash>
	rawData := []byte{0x19, 0x01}
	rawData = append(rawData, domainSeparator...)
	rawData = append(rawData, dataHash...)
	return crypto.Keccak256(rawData), nil
}
