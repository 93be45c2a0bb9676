package evm

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

const factoryABIJSON = `[
  {"inputs": [], "name": "allPairsLength", "outputs": [{"type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [{"type": "uint256"}], "name": "allPairs", "outputs": [{"type": "address"}], "stateMutability": "view", "type": "function"},
  {"inputs": [{"type": "address"}, {"type": "address"}], "name": "getPair", "outputs": [{"type": "address"}], "stateMutability": "view", "type": "function"}
]`

const pairABIJSON = `[
  {"inputs": [], "name": "token0", "outputs": [{"type": "address"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "token1", "outputs": [{"type": "address"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "getReserves", "outputs": [{"name": "reserve0", "type": "uint112"}, {"name": "reserve1", "type": "uint112"}, {"name": "blockTimestampLast", "type": "uint32"}], "stateMutability": "view", "type": "function"}
]`

const erc20ABIJSON = `[
  {"inputs": [], "name": "decimals", "outputs": [{"type": "uint8"}], "stateMutability": "view", "type": "function"}
]`

const oneSplitABIJSON = `[
  {"inputs": [{"name": "fromToken", "type": "address"}, {"name": "destToken", "type": "address"}, {"name": "amount", "type": "uint256"}, {"name": "parts", "type": "uint256"}, {"name": "flags", "type": "uint256"}],
   "name": "getExpectedReturn",
   "outputs": [{"name": "returnAmount", "type": "uint256"}, {"name": "distribution", "type": "uint256[]"}],
   "stateMutability": "view", "type": "function"}
]`

var (
	FactoryABI  = mustParseABI(factoryABIJSON)
	PairABI     = mustParseABI(pairABIJSON)
	ERC20ABI    = mustParseABI(erc20ABIJSON)
	OneSplitABI = mustParseABI(oneSplitABIJSON)
)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("parse abi: %v", err))
	}
	return parsed
}

func asAddress(v interface{}) (common.Address, error) {
	addr, ok := v.(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("unexpected type %T, want address", v)
	}
	return addr, nil
}

func asBigInt(v interface{}) (*big.Int, error) {
	n, ok := v.(*big.Int)
	if !ok || n == nil {
		return nil, fmt.Errorf("unexpected type %T, want uint", v)
	}
	return n, nil
}
