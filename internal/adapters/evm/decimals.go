package evm

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru"

	"github.com/hxuan190/price-oracle/internal/metrics"
	"github.com/hxuan190/price-oracle/internal/services/market"
)

// DecimalsReader reads ERC20 decimals() and caches the result; decimals are immutable.
type DecimalsReader struct {
	caller  ContractCaller
	timeout time.Duration
	cache   *lru.Cache
}

func NewDecimalsReader(caller ContractCaller, size int, timeout time.Duration) (*DecimalsReader, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create decimals cache: %w", err)
	}
	return &DecimalsReader{caller: caller, timeout: timeout, cache: cache}, nil
}

// Seed records known decimals without a chain read.
func (r *DecimalsReader) Seed(token common.Address, decimals uint8) {
	r.cache.Add(token, decimals)
	metrics.DecimalsCacheSize.Set(float64(r.cache.Len()))
}

func (r *DecimalsReader) Decimals(ctx context.Context, token common.Address) (uint8, error) {
	if v, ok := r.cache.Get(token); ok {
		return v.(uint8), nil
	}

	values, err := call(ctx, r.caller, r.timeout, token, ERC20ABI, "decimals", nil)
	if err != nil {
		if isContractFailure(err) {
			return 0, fmt.Errorf("%w: %s: %v", market.ErrUnknownToken, token.Hex(), err)
		}
		return 0, fmt.Errorf("read decimals of %s: %w", token.Hex(), err)
	}
	decimals, ok := values[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("%w: %s: decimals returned %T", market.ErrUnknownToken, token.Hex(), values[0])
	}

	r.Seed(token, decimals)
	return decimals, nil
}
