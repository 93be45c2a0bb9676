// Package evm reads pool state, token metadata and aggregator quotes from an EVM chain.
package evm

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// ErrBadResponse marks call output that does not decode against the ABI.
var ErrBadResponse = errors.New("bad contract response")

// revertCode is the JSON-RPC error code geth uses for reverts carrying data.
const revertCode = 3

// ContractCaller is the subset of ethclient.Client used for read-only calls.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

var _ ContractCaller = (*ethclient.Client)(nil)

func Dial(ctx context.Context, rpcURL string) (*ethclient.Client, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", rpcURL, err)
	}
	return client, nil
}

// call packs method, executes it against to at block (nil for latest) and unpacks the outputs.
func call(ctx context.Context, caller ContractCaller, timeout time.Duration, to common.Address, contract abi.ABI, method string, block *big.Int, args ...interface{}) ([]interface{}, error) {
	data, err := contract.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	resp, err := caller.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, block)
	if err != nil {
		return nil, fmt.Errorf("call %s on %s: %w", method, to.Hex(), err)
	}
	values, err := contract.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("%w: unpack %s from %s: %v", ErrBadResponse, method, to.Hex(), err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: %s on %s returned no values", ErrBadResponse, method, to.Hex())
	}
	return values, nil
}

// isContractFailure reports whether err came from the contract itself (a
// revert or undecodable output) rather than from the transport or the node.
func isContractFailure(err error) bool {
	if errors.Is(err, ErrBadResponse) {
		return true
	}
	var rpcErr rpc.Error
	if !errors.As(err, &rpcErr) {
		return false
	}
	return rpcErr.ErrorCode() == revertCode || strings.Contains(rpcErr.Error(), "execution reverted")
}
