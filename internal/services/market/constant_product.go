package market

import (
	"context"
	"fmt"
	"math/big"
	"slices"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/hxuan190/price-oracle/internal/domain"
	"github.com/hxuan190/price-oracle/internal/services/decimals"
)

// QuoteMode selects how a constant-product pool is evaluated.
type QuoteMode uint8

const (
	// ModeAmountOut prices an actual swap including fee and slippage.
	ModeAmountOut QuoteMode = iota
	// ModeSpot prices at the marginal reserve ratio, fee free.
	ModeSpot
)

func (m QuoteMode) String() string {
	if m == ModeSpot {
		return "spot"
	}
	return "amount-out"
}

// FeeFraction is the share of the input that reaches the pool, e.g. 997/1000.
type FeeFraction struct {
	Numerator   uint64
	Denominator uint64
}

// DefaultFee is the standard 0.3% constant-product fee.
var DefaultFee = FeeFraction{Numerator: 997, Denominator: 1000}

func (f FeeFraction) Validate() error {
	if f.Denominator == 0 || f.Numerator == 0 || f.Numerator > f.Denominator {
		return fmt.Errorf("%w: %d/%d", ErrInvalidFeeFraction, f.Numerator, f.Denominator)
	}
	return nil
}

type ConstantProductQuoter struct {
	fee    FeeFraction
	mode   QuoteMode
	venues []domain.Venue

	u256FeeNum *uint256.Int
	u256FeeDen *uint256.Int
}

func NewConstantProductQuoter(fee FeeFraction, mode QuoteMode, venues ...domain.Venue) (*ConstantProductQuoter, error) {
	if err := fee.Validate(); err != nil {
		return nil, err
	}
	return &ConstantProductQuoter{
		fee:        fee,
		mode:       mode,
		venues:     venues,
		u256FeeNum: uint256.NewInt(fee.Numerator),
		u256FeeDen: uint256.NewInt(fee.Denominator),
	}, nil
}

func (q *ConstantProductQuoter) SupportsVenue(venue domain.Venue) bool {
	return slices.Contains(q.venues, venue)
}

func (q *ConstantProductQuoter) Quote(_ context.Context, pool *domain.Pool, tokenIn common.Address, amountIn *big.Int) (*domain.SwapQuote, error) {
	if !pool.Has(tokenIn) {
		return nil, fmt.Errorf("%w: %s", ErrTokenNotInPool, tokenIn.Hex())
	}
	if !pool.HasLiquidity() {
		return nil, fmt.Errorf("%w: %s", ErrPoolUnavailable, pool.Address.Hex())
	}

	reserveIn, reserveOut := pool.ReservesFor(tokenIn)
	out, err := q.amountOut(amountIn, reserveIn, reserveOut)
	if err != nil {
		return nil, fmt.Errorf("pool %s: %w", pool.Address.Hex(), err)
	}

	return &domain.SwapQuote{
		Pool:      pool,
		TokenIn:   tokenIn,
		TokenOut:  pool.Other(tokenIn),
		AmountIn:  new(big.Int).Set(amountIn),
		AmountOut: out,
	}, nil
}

func (q *ConstantProductQuoter) amountOut(amountIn, reserveIn, reserveOut *big.Int) (*big.Int, error) {
	x, err := toU256(amountIn)
	if err != nil {
		return nil, err
	}
	rIn, err := toU256(reserveIn)
	if err != nil {
		return nil, err
	}
	rOut, err := toU256(reserveOut)
	if err != nil {
		return nil, err
	}
	if x.IsZero() {
		return new(big.Int), nil
	}

	if q.mode == ModeSpot {
		return spotAmountOut(x, rIn, rOut)
	}
	return constantProductAmountOut(x, rIn, rOut, q.u256FeeNum, q.u256FeeDen)
}

// constantProductAmountOut computes floor(rOut*x*fn / (rIn*fd + x*fn)),
// the exact form of (rIn+x')(rOut-y) = rIn*rOut with x' = x*fn/fd.
func constantProductAmountOut(x, rIn, rOut, feeNum, feeDen *uint256.Int) (*big.Int, error) {
	xWithFee, overflow := new(uint256.Int).MulOverflow(x, feeNum)
	if overflow {
		return nil, decimals.ErrOverflow
	}
	numerator, overflow := new(uint256.Int).MulOverflow(xWithFee, rOut)
	if overflow {
		return nil, decimals.ErrOverflow
	}
	denominator, overflow := new(uint256.Int).MulOverflow(rIn, feeDen)
	if overflow {
		return nil, decimals.ErrOverflow
	}
	if _, overflow = denominator.AddOverflow(denominator, xWithFee); overflow {
		return nil, decimals.ErrOverflow
	}
	return numerator.Div(numerator, denominator).ToBig(), nil
}

func spotAmountOut(x, rIn, rOut *uint256.Int) (*big.Int, error) {
	numerator, overflow := new(uint256.Int).MulOverflow(x, rOut)
	if overflow {
		return nil, decimals.ErrOverflow
	}
	return numerator.Div(numerator, rIn).ToBig(), nil
}

func toU256(v *big.Int) (*uint256.Int, error) {
	if v == nil {
		return new(uint256.Int), nil
	}
	if v.Sign() < 0 {
		return nil, decimals.ErrNegativeAmount
	}
	out, overflow := uint256.FromBig(v)
	if overflow {
		return nil, decimals.ErrOverflow
	}
	return out, nil
}

// ConstantProductValidator admits pools with both reserves non-zero.
type ConstantProductValidator struct {
	venues []domain.Venue
}

func NewConstantProductValidator(venues ...domain.Venue) *ConstantProductValidator {
	return &ConstantProductValidator{venues: venues}
}

func (v *ConstantProductValidator) IsReady(pool *domain.Pool) bool {
	return pool.HasLiquidity()
}

func (v *ConstantProductValidator) SupportsVenue(venue domain.Venue) bool {
	return slices.Contains(v.venues, venue)
}
