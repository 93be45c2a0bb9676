package market

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/hxuan190/price-oracle/internal/domain"
	"github.com/hxuan190/price-oracle/internal/metrics"
)

// AggregatorQuoter prices aggregator venue pools through an external PriceSource.
// The pool only names the pair; reserves are not consulted.
type AggregatorQuoter struct {
	source PriceSource
}

func NewAggregatorQuoter(source PriceSource) *AggregatorQuoter {
	return &AggregatorQuoter{source: source}
}

func (q *AggregatorQuoter) SupportsVenue(venue domain.Venue) bool {
	return venue == domain.VenueAggregator
}

func (q *AggregatorQuoter) Quote(ctx context.Context, pool *domain.Pool, tokenIn common.Address, amountIn *big.Int) (*domain.SwapQuote, error) {
	if !pool.Has(tokenIn) {
		return nil, fmt.Errorf("%w: %s", ErrTokenNotInPool, tokenIn.Hex())
	}
	tokenOut := pool.Other(tokenIn)

	out, err := q.source.Quote(ctx, tokenIn, tokenOut, amountIn)
	if err != nil {
		metrics.AggregatorQuotes.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: %s -> %s: %v", ErrQuoteUnavailable, tokenIn.Hex(), tokenOut.Hex(), err)
	}
	if out == nil || out.Sign() <= 0 {
		metrics.AggregatorQuotes.WithLabelValues("empty").Inc()
		return nil, fmt.Errorf("%w: %s -> %s: empty return", ErrQuoteUnavailable, tokenIn.Hex(), tokenOut.Hex())
	}

	metrics.AggregatorQuotes.WithLabelValues("ok").Inc()
	return &domain.SwapQuote{
		Pool:      pool,
		TokenIn:   tokenIn,
		TokenOut:  tokenOut,
		AmountIn:  new(big.Int).Set(amountIn),
		AmountOut: new(big.Int).Set(out),
	}, nil
}

// AggregatorValidator admits every listed aggregator pair; availability is
// only known once the source is asked for a quote.
type AggregatorValidator struct{}

func NewAggregatorValidator() *AggregatorValidator {
	return &AggregatorValidator{}
}

func (v *AggregatorValidator) IsReady(pool *domain.Pool) bool {
	return pool.TokenA != pool.TokenB
}

func (v *AggregatorValidator) SupportsVenue(venue domain.Venue) bool {
	return venue == domain.VenueAggregator
}
