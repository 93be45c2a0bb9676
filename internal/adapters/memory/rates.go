package memory

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/hxuan190/price-oracle/internal/services/market"
)

type rate struct {
	num *big.Int
	den *big.Int
}

// RateSource is a fixed-rate aggregator price source.
type RateSource struct {
	mu    sync.RWMutex
	rates map[[2]common.Address]rate
}

func NewRateSource() *RateSource {
	return &RateSource{rates: make(map[[2]common.Address]rate)}
}

// SetRate makes tokenIn -> tokenOut return amountIn * num / den in native units.
func (s *RateSource) SetRate(tokenIn, tokenOut common.Address, num, den *big.Int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates[[2]common.Address{tokenIn, tokenOut}] = rate{num: new(big.Int).Set(num), den: new(big.Int).Set(den)}
}

func (s *RateSource) Remove(tokenIn, tokenOut common.Address) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rates, [2]common.Address{tokenIn, tokenOut})
}

func (s *RateSource) Quote(_ context.Context, tokenIn, tokenOut common.Address, amountIn *big.Int) (*big.Int, error) {
	s.mu.RLock()
	r, ok := s.rates[[2]common.Address{tokenIn, tokenOut}]
	s.mu.RUnlock()
	if !ok || r.den.Sign() == 0 {
		return nil, fmt.Errorf("%w: %s -> %s", market.ErrQuoteUnavailable, tokenIn.Hex(), tokenOut.Hex())
	}
	out := new(big.Int).Mul(amountIn, r.num)
	return out.Quo(out, r.den), nil
}
