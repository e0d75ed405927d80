package clients

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/vialabs/payorder/types"
)

var _ ChainReader = (*EVMClient)(nil)

// erc20ReadABI covers the read surface the permit builder touches. version()
// and eip712Domain() are optional extensions; calls to tokens that lack them
// revert and the caller falls back.
const erc20ReadABI = `[
  {"name":"balanceOf","type":"function","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"name":"nonces","type":"function","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"name":"name","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
  {"name":"version","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
  {"name":"eip712Domain","type":"function","stateMutability":"view","inputs":[],"outputs":[
    {"name":"fields","type":"bytes1"},
    {"name":"name","type":"string"},
    {"name":"version","type":"string"},
    {"name":"chainId","type":"uint256"},
    {"name":"verifyingContract","type":"address"},
    {"name":"salt","type":"bytes32"},
    {"name":"extensions","type":"uint256[]"}]}
]`

// EVMClient reads token state over JSON-RPC.
type EVMClient struct {
	chainID  int64
	rpcURL   string
	client   *ethclient.Client
	tokenABI abi.ABI
}

// NewEVMClient connects to an EVM chain's RPC endpoint.
func NewEVMClient(chainID int64, rpcURL string) (*EVMClient, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC for chain %d: %w", chainID, err)
	}

	tokenABI, err := abi.JSON(strings.NewReader(erc20ReadABI))
	if err != nil {
		return nil, fmt.Errorf("parse token ABI: %w", err)
	}

	return &EVMClient{
		chainID:  chainID,
		rpcURL:   rpcURL,
		client:   client,
		tokenABI: tokenABI,
	}, nil
}

// ChainID implements ChainReader.
func (e *EVMClient) ChainID() int64 {
	return e.chainID
}

// Close implements ChainReader.
func (e *EVMClient) Close() {
	e.client.Close()
}

// call packs a method, performs eth_call and unpacks the outputs.
func (e *EVMClient) call(ctx context.Context, token, method string, args ...interface{}) ([]interface{}, error) {
	contract := common.HexToAddress(token)

	input, err := e.tokenABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	output, err := e.client.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: input}, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s on %s: %w", method, token, err)
	}
	if len(output) == 0 {
		return nil, fmt.Errorf("call %s on %s: empty result", method, token)
	}

	values, err := e.tokenABI.Unpack(method, output)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return values, nil
}

// BalanceOf implements ChainReader.
func (e *EVMClient) BalanceOf(ctx context.Context, token, owner string) (*big.Int, error) {
	values, err := e.call(ctx, token, "balanceOf", common.HexToAddress(owner))
	if err != nil {
		return nil, err
	}

	balance, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("balanceOf returned unexpected type %T", values[0])
	}
	return balance, nil
}

// PermitNonce implements ChainReader.
func (e *EVMClient) PermitNonce(ctx context.Context, token, owner string) (*big.Int, error) {
	values, err := e.call(ctx, token, "nonces", common.HexToAddress(owner))
	if err != nil {
		return nil, err
	}

	nonce, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("nonces returned unexpected type %T", values[0])
	}
	return nonce, nil
}

// SigningDomain implements ChainReader via the EIP-5267 eip712Domain() read.
func (e *EVMClient) SigningDomain(ctx context.Context, token string) (*types.PermitDomain, error) {
	values, err := e.call(ctx, token, "eip712Domain")
	if err != nil {
		return nil, err
	}
	if len(values) < 5 {
		return nil, fmt.Errorf("eip712Domain returned %d values", len(values))
	}

	name, _ := values[1].(string)
	version, _ := values[2].(string)
	chainID, ok := values[3].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("eip712Domain chainId has unexpected type %T", values[3])
	}
	verifying, ok := values[4].(common.Address)
	if !ok {
		return nil, fmt.Errorf("eip712Domain verifyingContract has unexpected type %T", values[4])
	}

	return &types.PermitDomain{
		Name:              name,
		Version:           version,
		ChainID:           chainID.Int64(),
		VerifyingContract: strings.ToLower(verifying.Hex()),
	}, nil
}

// TokenName implements ChainReader.
func (e *EVMClient) TokenName(ctx context.Context, token string) (string, error) {
	values, err := e.call(ctx, token, "name")
	if err != nil {
		return "", err
	}

	name, ok := values[0].(string)
	if !ok {
		return "", fmt.Errorf("name returned unexpected type %T", values[0])
	}
	return name, nil
}

// TokenVersion implements ChainReader.
func (e *EVMClient) TokenVersion(ctx context.Context, token string) (string, error) {
	values, err := e.call(ctx, token, "version")
	if err != nil {
		return "", err
	}

	version, ok := values[0].(string)
	if !ok {
		return "", fmt.Errorf("version returned unexpected type %T", values[0])
	}
	return version, nil
}
