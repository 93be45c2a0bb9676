package market

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/hxuan190/price-oracle/internal/domain"
)

type MarketRegistry struct {
	quoters    []PoolQuoter
	validators []PoolValidator
}

func NewMarketRegistry() *MarketRegistry {
	return &MarketRegistry{
		quoters:    make([]PoolQuoter, 0),
		validators: make([]PoolValidator, 0),
	}
}

// NewDefaultMarketRegistry wires the constant-product quoters for the internal
// and uniswap venues and, when source is non-nil, the aggregator quoter.
func NewDefaultMarketRegistry(fee FeeFraction, uniswapSpot bool, source PriceSource) (*MarketRegistry, error) {
	internal, err := NewConstantProductQuoter(fee, ModeAmountOut, domain.VenueInternal)
	if err != nil {
		return nil, err
	}

	uniswapMode := ModeAmountOut
	if uniswapSpot {
		uniswapMode = ModeSpot
	}
	uniswap, err := NewConstantProductQuoter(fee, uniswapMode, domain.VenueUniswap)
	if err != nil {
		return nil, err
	}

	r := NewMarketRegistry()
	r.RegisterQuoter(internal)
	r.RegisterQuoter(uniswap)
	r.RegisterValidator(NewConstantProductValidator(domain.VenueInternal, domain.VenueUniswap))
	if source != nil {
		r.RegisterQuoter(NewAggregatorQuoter(source))
		r.RegisterValidator(NewAggregatorValidator())
	}
	return r, nil
}

func (r *MarketRegistry) RegisterQuoter(quoter PoolQuoter) {
	r.quoters = append(r.quoters, quoter)
}

func (r *MarketRegistry) RegisterValidator(validator PoolValidator) {
	r.validators = append(r.validators, validator)
}

func (r *MarketRegistry) GetQuote(ctx context.Context, pool *domain.Pool, tokenIn common.Address, amountIn *big.Int) (*domain.SwapQuote, error) {
	for _, quoter := range r.quoters {
		if quoter.SupportsVenue(pool.Venue) {
			return quoter.Quote(ctx, pool, tokenIn, amountIn)
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrNoQuoter, pool.Venue)
}

func (r *MarketRegistry) SupportsVenue(venue domain.Venue) bool {
	for _, quoter := range r.quoters {
		if quoter.SupportsVenue(venue) {
			return true
		}
	}
	return false
}

func (r *MarketRegistry) IsPoolReady(pool *domain.Pool) bool {
	for _, validator := range r.validators {
		if validator.SupportsVenue(pool.Venue) {
			return validator.IsReady(pool)
		}
	}
	return pool.HasLiquidity()
}
