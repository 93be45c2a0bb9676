package evm

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/hxuan190/price-oracle/internal/services/market"
)

const DefaultOneSplitParts = 10

// OneSplitSource quotes pairs through a 1inch OneSplit getExpectedReturn view.
type OneSplitSource struct {
	caller  ContractCaller
	address common.Address
	parts   int64
	timeout time.Duration
}

func NewOneSplitSource(caller ContractCaller, address common.Address, timeout time.Duration) *OneSplitSource {
	return &OneSplitSource{
		caller:  caller,
		address: address,
		parts:   DefaultOneSplitParts,
		timeout: timeout,
	}
}

func (s *OneSplitSource) Quote(ctx context.Context, tokenIn, tokenOut common.Address, amountIn *big.Int) (*big.Int, error) {
	values, err := call(ctx, s.caller, s.timeout, s.address, OneSplitABI, "getExpectedReturn", nil,
		tokenIn, tokenOut, amountIn, big.NewInt(s.parts), big.NewInt(0))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", market.ErrQuoteUnavailable, err)
	}
	out, err := asBigInt(values[0])
	if err != nil {
		return nil, fmt.Errorf("%w: returnAmount: %v", market.ErrQuoteUnavailable, err)
	}
	if out.Sign() == 0 {
		return nil, fmt.Errorf("%w: %s -> %s: zero return", market.ErrQuoteUnavailable, tokenIn.Hex(), tokenOut.Hex())
	}
	return out, nil
}
