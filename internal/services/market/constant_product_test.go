package market

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hxuan190/price-oracle/internal/domain"
	"github.com/hxuan190/price-oracle/internal/services/decimals"
)

var (
	tokenX = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	tokenY = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	tokenZ = common.HexToAddress("0x00000000000000000000000000000000000000c3")
)

func newPool(addr string, venue domain.Venue, a, b common.Address, ra, rb int64) *domain.Pool {
	return &domain.Pool{
		Address:  common.HexToAddress(addr),
		Venue:    venue,
		TokenA:   a,
		TokenB:   b,
		ReserveA: big.NewInt(ra),
		ReserveB: big.NewInt(rb),
	}
}

func TestConstantProductAmountOut(t *testing.T) {
	q, err := NewConstantProductQuoter(DefaultFee, ModeAmountOut, domain.VenueInternal)
	require.NoError(t, err)

	pool := newPool("0x01", domain.VenueInternal, tokenX, tokenY, 1_000_000, 2_000_000)

	tests := []struct {
		name     string
		tokenIn  common.Address
		amountIn int64
		want     int64
	}{
		// 2_000_000*1000*997 / (1_000_000*1000 + 1000*997)
		{"a to b", tokenX, 1000, 1992},
		// 1_000_000*1000*997 / (2_000_000*1000 + 1000*997)
		{"b to a", tokenY, 1000, 498},
		{"zero input", tokenX, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote, err := q.Quote(context.Background(), pool, tt.tokenIn, big.NewInt(tt.amountIn))
			require.NoError(t, err)
			assert.Equal(t, tt.want, quote.AmountOut.Int64())
			assert.Equal(t, pool.Other(tt.tokenIn), quote.TokenOut)
		})
	}
}

func TestConstantProductSpot(t *testing.T) {
	q, err := NewConstantProductQuoter(DefaultFee, ModeSpot, domain.VenueUniswap)
	require.NoError(t, err)

	// 400 X per 1 Y
	rx, _ := new(big.Int).SetString("400000000000000000000", 10)
	ry := decimals.One()
	pool := &domain.Pool{Address: common.HexToAddress("0x02"), Venue: domain.VenueUniswap, TokenA: tokenX, TokenB: tokenY, ReserveA: rx, ReserveB: ry}

	quote, err := q.Quote(context.Background(), pool, tokenX, decimals.One())
	require.NoError(t, err)
	assert.Equal(t, "2500000000000000", quote.AmountOut.String())
}

func TestConstantProductMonotonic(t *testing.T) {
	for _, mode := range []QuoteMode{ModeAmountOut, ModeSpot} {
		q, err := NewConstantProductQuoter(DefaultFee, mode, domain.VenueInternal)
		require.NoError(t, err)
		pool := newPool("0x03", domain.VenueInternal, tokenX, tokenY, 11_000_000, 23_000_000_000)

		prev := big.NewInt(0)
		for in := int64(1); in < 50_000_000; in = in*3 + 7 {
			quote, err := q.Quote(context.Background(), pool, tokenX, big.NewInt(in))
			require.NoError(t, err)
			assert.GreaterOrEqual(t, quote.AmountOut.Cmp(prev), 0, "mode=%v amountIn=%d", mode, in)
			prev = quote.AmountOut
		}
	}
}

func TestConstantProductNeverDrainsPool(t *testing.T) {
	q, err := NewConstantProductQuoter(DefaultFee, ModeAmountOut, domain.VenueInternal)
	require.NoError(t, err)
	pool := newPool("0x04", domain.VenueInternal, tokenX, tokenY, 10, 10)

	quote, err := q.Quote(context.Background(), pool, tokenX, big.NewInt(1_000_000_000))
	require.NoError(t, err)
	assert.Equal(t, -1, quote.AmountOut.Cmp(pool.ReserveB))
}

func TestConstantProductUnavailable(t *testing.T) {
	q, err := NewConstantProductQuoter(DefaultFee, ModeAmountOut, domain.VenueInternal)
	require.NoError(t, err)

	empty := newPool("0x05", domain.VenueInternal, tokenX, tokenY, 0, 100)
	_, err = q.Quote(context.Background(), empty, tokenX, big.NewInt(1))
	assert.ErrorIs(t, err, ErrPoolUnavailable)

	pool := newPool("0x06", domain.VenueInternal, tokenX, tokenY, 100, 100)
	_, err = q.Quote(context.Background(), pool, tokenZ, big.NewInt(1))
	assert.ErrorIs(t, err, ErrTokenNotInPool)
}

func TestConstantProductOverflow(t *testing.T) {
	q, err := NewConstantProductQuoter(DefaultFee, ModeAmountOut, domain.VenueInternal)
	require.NoError(t, err)

	huge := new(big.Int).Lsh(big.NewInt(1), 200)
	pool := &domain.Pool{Address: common.HexToAddress("0x07"), Venue: domain.VenueInternal, TokenA: tokenX, TokenB: tokenY, ReserveA: huge, ReserveB: huge}

	_, err = q.Quote(context.Background(), pool, tokenX, huge)
	assert.ErrorIs(t, err, decimals.ErrOverflow)
}

func TestFeeFractionValidate(t *testing.T) {
	assert.NoError(t, DefaultFee.Validate())
	assert.ErrorIs(t, FeeFraction{Numerator: 1, Denominator: 0}.Validate(), ErrInvalidFeeFraction)
	assert.ErrorIs(t, FeeFraction{Numerator: 1001, Denominator: 1000}.Validate(), ErrInvalidFeeFraction)

	_, err := NewConstantProductQuoter(FeeFraction{}, ModeSpot)
	assert.ErrorIs(t, err, ErrInvalidFeeFraction)
}

func BenchmarkConstantProductQuote(b *testing.B) {
	q, _ := NewConstantProductQuoter(DefaultFee, ModeAmountOut, domain.VenueInternal)
	pool := newPool("0x08", domain.VenueInternal, tokenX, tokenY, 1_000_000_000, 2_000_000_000)
	amountIn := big.NewInt(1_000_000)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = q.Quote(context.Background(), pool, tokenX, amountIn)
	}
}
