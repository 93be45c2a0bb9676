package market

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/hxuan190/price-oracle/internal/domain"
)

var (
	ErrPoolNotFound       = errors.New("pool not found")
	ErrPoolUnavailable    = errors.New("pool has no liquidity")
	ErrTokenNotInPool     = errors.New("token not in pool")
	ErrQuoteUnavailable   = errors.New("quote unavailable")
	ErrNoQuoter           = errors.New("no quoter for venue")
	ErrUnknownToken       = errors.New("unknown token")
	ErrVenueNotConfigured = errors.New("venue not configured")
	ErrInvalidFeeFraction = errors.New("invalid fee fraction")
)

type PoolQuoter interface {
	// Quote returns the output of selling amountIn of tokenIn into pool.
	Quote(ctx context.Context, pool *domain.Pool, tokenIn common.Address, amountIn *big.Int) (*domain.SwapQuote, error)

	SupportsVenue(venue domain.Venue) bool
}

// PoolValidator decides whether a pool may appear as a routing edge.
type PoolValidator interface {
	IsReady(pool *domain.Pool) bool

	SupportsVenue(venue domain.Venue) bool
}

// PoolSource is the pool registry of one or more venues.
type PoolSource interface {
	// Pools returns every pool of venue with reserves read at call time.
	Pools(ctx context.Context, venue domain.Venue) ([]*domain.Pool, error)

	// FindPool returns ErrPoolNotFound when no pool trades the pair on venue.
	FindPool(ctx context.Context, tokenA, tokenB common.Address, venue domain.Venue) (*domain.Pool, error)
}

type TokenMetadata interface {
	Decimals(ctx context.Context, token common.Address) (uint8, error)
}

// PriceSource is an external aggregator that quotes arbitrary pairs.
type PriceSource interface {
	// Quote returns ErrQuoteUnavailable when the pair cannot be priced.
	Quote(ctx context.Context, tokenIn, tokenOut common.Address, amountIn *big.Int) (*big.Int, error)
}
