package permit

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/vialabs/payorder/types"
)

// TypedData converts permit data into the go-ethereum typed-data form wallets
// sign.
func TypedData(data *types.PermitData) (apitypes.TypedData, error) {
	if data == nil {
		return apitypes.TypedData{}, fmt.Errorf("permit data is nil")
	}

	typed := apitypes.Types{}
	for name, fields := range data.Types {
		entries := make([]apitypes.Type, 0, len(fields))
		for _, field := range fields {
			entries = append(entries, apitypes.Type{Name: field.Name, Type: field.Type})
		}
		typed[name] = entries
	}

	value, ok := new(big.Int).SetString(data.Message.Value, 10)
	if !ok {
		return apitypes.TypedData{}, fmt.Errorf("invalid permit value %q", data.Message.Value)
	}
	nonce, ok := new(big.Int).SetString(data.Message.Nonce, 10)
	if !ok {
		return apitypes.TypedData{}, fmt.Errorf("invalid permit nonce %q", data.Message.Nonce)
	}
	deadline, ok := new(big.Int).SetString(data.Message.Deadline, 10)
	if !ok {
		return apitypes.TypedData{}, fmt.Errorf("invalid permit deadline %q", data.Message.Deadline)
	}

	return apitypes.TypedData{
		Types:       typed,
		PrimaryType: "Permit",
		Domain: apitypes.TypedDataDomain{
			Name:              data.Domain.Name,
			Version:           data.Domain.Version,
			ChainId:           math.NewHexOrDecimal256(data.Domain.ChainID),
			VerifyingContract: data.Domain.VerifyingContract,
		},
		Message: apitypes.TypedDataMessage{
			"owner":    data.Message.Owner,
			"spender":  data.Message.Spender,
			"value":    (*math.HexOrDecimal256)(value),
			"nonce":    (*math.HexOrDecimal256)(nonce),
			"deadline": (*math.HexOrDecimal256)(deadline),
		},
	}, nil
}

// Digest computes the EIP-712 signing digest for permit data.
func Digest(data *types.PermitData) ([]byte, error) {
	typed, err := TypedData(data)
	if err != nil {
		return nil, err
	}

	domainSeparator, err := typed.HashStruct("EIP712Domain", typed.Domain.Map())
	if err != nil {
		return nil, fmt.Errorf("hash domain: %w", err)
	}
	messageHash, err := typed.HashStruct(typed.PrimaryType, typed.Message)
	if err != nil {
		return nil, fmt.Errorf("hash message: %w", err)
	}

	return crypto.Keccak256([]byte("\x19\x01"), domainSeparator, messageHash), nil
}
