package oracle

import (
	"context"
	"math/big"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/hxuan190/price-oracle/internal/adapters/memory"
	"github.com/hxuan190/price-oracle/internal/domain"
	"github.com/hxuan190/price-oracle/internal/services/market"
	"github.com/hxuan190/price-oracle/internal/services/router"
)

var (
	usdx   = common.HexToAddress("0x1000000000000000000000000000000000000001")
	usdy   = common.HexToAddress("0x1000000000000000000000000000000000000002")
	usdz   = common.HexToAddress("0x1000000000000000000000000000000000000003")
	usdzz  = common.HexToAddress("0x1000000000000000000000000000000000000004")
	akita  = common.HexToAddress("0x1000000000000000000000000000000000000005")
	weth   = common.HexToAddress("0x1000000000000000000000000000000000000006")
	wbtc   = common.HexToAddress("0x1000000000000000000000000000000000000007")
	lonely = common.HexToAddress("0x10000000000000000000000000000000000000ff")
)

// units returns n whole tokens at the given precision.
func units(n int64, dec int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(dec), nil))
}

func cpPool(addr string, venue domain.Venue, a common.Address, ra *big.Int, b common.Address, rb *big.Int) *domain.Pool {
	return &domain.Pool{Address: common.HexToAddress(addr), Venue: venue, TokenA: a, TokenB: b, ReserveA: ra, ReserveB: rb}
}

type fixture struct {
	registry *memory.Registry
	rates    *memory.RateSource
	source   *countingSource
	oracle   *Oracle
}

// countingSource counts pool universe reads and can run a hook after each read.
type countingSource struct {
	inner     *memory.Registry
	reads     atomic.Int32
	afterRead func()
}

func (s *countingSource) Pools(ctx context.Context, venue domain.Venue) ([]*domain.Pool, error) {
	s.reads.Add(1)
	pools, err := s.inner.Pools(ctx, venue)
	if s.afterRead != nil {
		s.afterRead()
	}
	return pools, err
}

func (s *countingSource) FindPool(ctx context.Context, a, b common.Address, venue domain.Venue) (*domain.Pool, error) {
	return s.inner.FindPool(ctx, a, b, venue)
}

// newFixture reproduces the mixed-precision token set and pools used to
// exercise the oracle: two uniswap pairs, six internal pairs and one
// aggregator pair.
func newFixture(t testing.TB) *fixture {
	t.Helper()

	reg := memory.NewRegistry()
	for _, tok := range []domain.Token{
		{Address: usdx, Symbol: "USDX", Decimals: 18},
		{Address: usdy, Symbol: "USDY", Decimals: 8},
		{Address: usdz, Symbol: "USDZ", Decimals: 6},
		{Address: usdzz, Symbol: "USDZZ", Decimals: 6},
		{Address: akita, Symbol: "AKITA", Decimals: 8},
		{Address: weth, Symbol: "WETH", Decimals: 18},
		{Address: wbtc, Symbol: "WBTC", Decimals: 8},
		{Address: lonely, Symbol: "LONE", Decimals: 18},
	} {
		reg.AddToken(tok)
	}

	reg.AddPools([]*domain.Pool{
		// three providers at 100:101 each
		cpPool("0xa1", domain.VenueUniswap, weth, units(300, 18), usdz, units(303, 6)),
		cpPool("0xa2", domain.VenueUniswap, usdx, units(400, 18), weth, units(1, 18)),

		cpPool("0xb1", domain.VenueInternal, usdz, units(11, 6), usdx, units(23, 18)),
		cpPool("0xb2", domain.VenueInternal, usdzz, units(12, 6), usdx, units(400, 18)),
		cpPool("0xb3", domain.VenueInternal, usdzz, units(3, 6), usdy, units(41, 8)),
		cpPool("0xb4", domain.VenueInternal, wbtc, units(59, 8), usdy, units(2, 8)),
		cpPool("0xb5", domain.VenueInternal, weth, units(5, 18), usdzz, units(2, 6)),
		cpPool("0xb6", domain.VenueInternal, weth, units(1, 18), akita, units(33, 8)),

		{Address: common.HexToAddress("0xc1"), Venue: domain.VenueAggregator, TokenA: wbtc, TokenB: usdx},
	})

	rates := memory.NewRateSource()
	// 1 WBTC (1e8) -> 32000 USDX (32000e18)
	rates.SetRate(wbtc, usdx, units(32000, 18), units(1, 8))

	src := &countingSource{inner: reg}
	reader := market.NewReader()
	reader.Register(src, domain.AllVenues...)

	registry, err := market.NewDefaultMarketRegistry(market.DefaultFee, true, rates)
	require.NoError(t, err)

	r := router.NewRouter(reader, registry, router.Config{
		MaxHops:   router.DefaultMaxHops,
		HubTokens: []common.Address{weth},
	})

	return &fixture{
		registry: reg,
		rates:    rates,
		source:   src,
		oracle:   New(r, registry, reg, Config{RouteVenue: domain.VenueInternal}),
	}
}

func mustBig(t testing.TB, s string) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(s, 10)
	require.True(t, ok, s)
	return v
}
