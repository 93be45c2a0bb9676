package oracle

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hxuan190/price-oracle/internal/adapters/memory"
	"github.com/hxuan190/price-oracle/internal/config"
	"github.com/hxuan190/price-oracle/internal/domain"
	"github.com/hxuan190/price-oracle/internal/services/decimals"
	"github.com/hxuan190/price-oracle/internal/services/market"
	"github.com/hxuan190/price-oracle/internal/services/router"
)

var allSelectors = []domain.VenueSelector{
	domain.SelectInternal,
	domain.SelectUniswap,
	domain.SelectAggregator,
	domain.SelectBest,
}

func TestUniswapPrices(t *testing.T) {
	f := newFixture(t)

	res, err := f.oracle.GetCoinPrices(context.Background(), []common.Address{usdx, usdz, weth}, []common.Address{weth}, domain.SelectUniswap)
	require.NoError(t, err)
	require.Len(t, res, 3)

	// 0.0025, 300/303 and identity
	assert.GreaterOrEqual(t, res[0].Price.Cmp(mustBig(t, "2500000000000000")), 0)
	assert.Equal(t, 1, res[1].Price.Cmp(mustBig(t, "990000000000000000")))
	assert.GreaterOrEqual(t, res[2].Price.Cmp(mustBig(t, "999900000000000000")), 0)

	assert.Equal(t, "2500000000000000", res[0].Price.String())
	assert.Equal(t, "990099009900990099", res[1].Price.String())
	assert.Equal(t, domain.VenueUniswap, res[1].Venue)
	assert.Equal(t, weth, res[1].Quote)
}

func TestAggregatorPrices(t *testing.T) {
	f := newFixture(t)

	res, err := f.oracle.GetCoinPrices(context.Background(), []common.Address{usdx, wbtc}, []common.Address{usdx}, domain.SelectAggregator)
	require.NoError(t, err)
	require.Len(t, res, 2)

	assert.Equal(t, decimals.One(), res[0].Price)
	assert.Equal(t, units(32000, 18), res[1].Price)
	assert.Equal(t, domain.VenueAggregator, res[1].Venue)
}

func TestInternalPrices(t *testing.T) {
	f := newFixture(t)

	res, err := f.oracle.GetCoinPrices(context.Background(), []common.Address{usdx, usdz, weth}, []common.Address{usdx, usdz}, domain.SelectInternal)
	require.NoError(t, err)
	require.Len(t, res, 3)

	assert.Equal(t, decimals.One(), res[0].Price)
	assert.Equal(t, decimals.One(), res[1].Price)
	assert.Equal(t, "10752997205388249629", res[2].Price.String())
	assert.Equal(t, usdx, res[2].Quote)
	assert.Equal(t, []common.Address{weth, usdzz, usdx}, res[2].Path)
}

func TestBaseTokenPrices(t *testing.T) {
	f := newFixture(t)
	base := []common.Address{usdx, usdy, usdz, usdzz, akita, weth, wbtc}

	res, err := f.oracle.GetCoinPrices(context.Background(), base, base, domain.SelectInternal)
	require.NoError(t, err)
	require.Len(t, res, len(base))
	for i, r := range res {
		assert.Equal(t, base[i], r.Token)
		assert.Equal(t, decimals.One(), r.Price)
	}
}

func TestFourHopRoute(t *testing.T) {
	f := newFixture(t)

	route, err := f.oracle.CalcRoute(context.Background(), usdz, wbtc)
	require.NoError(t, err)
	require.Equal(t, 4, route.Len())
	assert.Equal(t, []common.Address{usdz, usdx, usdzz, usdy, wbtc}, route.Tokens())

	pools := route.Pools()
	for i, addr := range []string{"0xb1", "0xb2", "0xb3", "0xb4"} {
		assert.Equal(t, common.HexToAddress(addr), pools[i].Address)
	}

	res, err := f.oracle.GetCoinPrices(context.Background(), []common.Address{usdz}, []common.Address{wbtc}, domain.SelectInternal)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, 1, res[0].Price.Sign())
	assert.Equal(t, "16224723580000000000", res[0].Price.String())
}

func TestAkitaPrice(t *testing.T) {
	f := newFixture(t)

	route, err := f.oracle.CalcRoute(context.Background(), akita, usdx)
	require.NoError(t, err)
	assert.Equal(t, []common.Address{akita, weth, usdzz, usdx}, route.Tokens())

	res, err := f.oracle.GetCoinPrices(context.Background(), []common.Address{akita}, []common.Address{usdx}, domain.SelectInternal)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "386031056837620211", res[0].Price.String())
}

func TestIdentityForEverySelector(t *testing.T) {
	f := newFixture(t)

	for _, sel := range allSelectors {
		for _, tok := range []common.Address{usdx, wbtc, lonely} {
			res, err := f.oracle.GetCoinPrices(context.Background(), []common.Address{tok}, []common.Address{tok}, sel)
			require.NoError(t, err)
			require.Len(t, res, 1)
			assert.Equal(t, decimals.One(), res[0].Price, "selector=%v token=%s", sel, tok.Hex())
		}
	}
}

func TestDisconnectedIsZero(t *testing.T) {
	f := newFixture(t)

	for _, sel := range allSelectors {
		res, err := f.oracle.GetCoinPrices(context.Background(), []common.Address{lonely, usdx}, []common.Address{akita}, sel)
		require.NoError(t, err, "selector=%v", sel)
		require.Len(t, res, 2)
		assert.True(t, res[0].IsZero(), "selector=%v", sel)
		assert.Equal(t, lonely, res[0].Token)
	}
}

func TestHopCapYieldsZero(t *testing.T) {
	f := newFixture(t)
	reader := market.NewReader()
	reader.Register(f.registry, domain.AllVenues...)
	registry, err := market.NewDefaultMarketRegistry(market.DefaultFee, true, f.rates)
	require.NoError(t, err)

	short := New(router.NewRouter(reader, registry, router.Config{MaxHops: 3}), registry, f.registry, Config{})

	res, err := short.GetCoinPrices(context.Background(), []common.Address{usdz}, []common.Address{wbtc}, domain.SelectInternal)
	require.NoError(t, err)
	assert.True(t, res[0].IsZero())

	_, err = short.CalcRoute(context.Background(), usdz, wbtc)
	assert.ErrorIs(t, err, router.ErrNoRoute)
}

func TestQuoteOrderPreference(t *testing.T) {
	f := newFixture(t)

	// weth reaches both; the caller's first quote wins
	res, err := f.oracle.GetCoinPrices(context.Background(), []common.Address{weth}, []common.Address{usdz, usdx}, domain.SelectInternal)
	require.NoError(t, err)
	assert.Equal(t, usdz, res[0].Quote)

	res, err = f.oracle.GetCoinPrices(context.Background(), []common.Address{weth}, []common.Address{lonely, usdx}, domain.SelectInternal)
	require.NoError(t, err)
	assert.Equal(t, usdx, res[0].Quote)
}

func TestBestModeFallsThrough(t *testing.T) {
	f := newFixture(t)

	res, err := f.oracle.GetCoinPrices(context.Background(), []common.Address{usdx}, []common.Address{weth}, domain.SelectBest)
	require.NoError(t, err)
	assert.Equal(t, domain.VenueInternal, res[0].Venue)
	assert.Equal(t, 1, res[0].Price.Sign())

	// drain the only internal pool touching weth on the usdx side
	require.NoError(t, f.registry.SetReserves(common.HexToAddress("0xb5"), big.NewInt(0), big.NewInt(0)))

	res, err = f.oracle.GetCoinPrices(context.Background(), []common.Address{usdx}, []common.Address{weth}, domain.SelectBest)
	require.NoError(t, err)
	assert.Equal(t, domain.VenueUniswap, res[0].Venue)
	assert.Equal(t, "2500000000000000", res[0].Price.String())

	res, err = f.oracle.GetCoinPrices(context.Background(), []common.Address{usdx}, []common.Address{weth}, domain.SelectInternal)
	require.NoError(t, err)
	assert.True(t, res[0].IsZero())
}

func TestBestModeAggregatorUnavailable(t *testing.T) {
	f := newFixture(t)
	f.oracle.cfg.VenuePriority = []domain.Venue{domain.VenueAggregator, domain.VenueInternal}

	res, err := f.oracle.GetCoinPrices(context.Background(), []common.Address{wbtc}, []common.Address{usdx}, domain.SelectBest)
	require.NoError(t, err)
	assert.Equal(t, domain.VenueAggregator, res[0].Venue)

	f.rates.Remove(wbtc, usdx)

	res, err = f.oracle.GetCoinPrices(context.Background(), []common.Address{wbtc}, []common.Address{usdx}, domain.SelectBest)
	require.NoError(t, err)
	assert.Equal(t, domain.VenueInternal, res[0].Venue)
	assert.Equal(t, 1, res[0].Price.Sign())

	res, err = f.oracle.GetCoinPrices(context.Background(), []common.Address{wbtc}, []common.Address{usdx}, domain.SelectAggregator)
	require.NoError(t, err)
	assert.True(t, res[0].IsZero())
}

func TestInvalidSelectorRejectedBeforeSearch(t *testing.T) {
	f := newFixture(t)

	_, err := f.oracle.GetCoinPrices(context.Background(), []common.Address{usdx}, []common.Address{weth}, domain.VenueSelector(9))
	assert.ErrorIs(t, err, domain.ErrInvalidVenueSelector)
	assert.Zero(t, f.source.reads.Load())
}

func TestOneSnapshotPerVenue(t *testing.T) {
	f := newFixture(t)

	_, err := f.oracle.GetCoinPrices(context.Background(), []common.Address{usdz, akita, weth, wbtc}, []common.Address{usdx}, domain.SelectInternal)
	require.NoError(t, err)
	assert.Equal(t, int32(1), f.source.reads.Load())
}

func TestSnapshotConsistentUnderMutation(t *testing.T) {
	want, err := newFixture(t).oracle.GetCoinPrices(context.Background(), []common.Address{usdz}, []common.Address{usdx}, domain.SelectInternal)
	require.NoError(t, err)

	f := newFixture(t)
	mutated := false
	f.source.afterRead = func() {
		if mutated {
			return
		}
		mutated = true
		require.NoError(t, f.registry.SetReserves(common.HexToAddress("0xb1"), units(1, 6), units(1, 18)))
	}

	res, err := f.oracle.GetCoinPrices(context.Background(), []common.Address{usdz, usdz}, []common.Address{usdx}, domain.SelectInternal)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, want[0].Price, res[0].Price)
	assert.Equal(t, res[0].Price, res[1].Price)

	// the next call observes the new reserves
	next, err := f.oracle.GetCoinPrices(context.Background(), []common.Address{usdz}, []common.Address{usdx}, domain.SelectInternal)
	require.NoError(t, err)
	assert.NotEqual(t, want[0].Price, next[0].Price)
}

func TestEdgeInputs(t *testing.T) {
	f := newFixture(t)

	res, err := f.oracle.GetCoinPrices(context.Background(), nil, []common.Address{usdx}, domain.SelectBest)
	require.NoError(t, err)
	assert.Empty(t, res)

	res, err = f.oracle.GetCoinPrices(context.Background(), []common.Address{usdz, weth}, nil, domain.SelectBest)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.True(t, res[0].IsZero())
	assert.True(t, res[1].IsZero())
}

func TestOverflowPropagates(t *testing.T) {
	reg := memory.NewRegistry()
	a := common.HexToAddress("0xaa")
	b := common.HexToAddress("0xbb")
	reg.AddToken(domain.Token{Address: a, Decimals: 18})
	reg.AddToken(domain.Token{Address: b, Decimals: 18})
	huge := new(big.Int).Lsh(big.NewInt(1), 200)
	reg.AddPool(cpPool("0xab", domain.VenueInternal, a, huge, b, huge))

	reader := market.NewReader()
	reader.Register(reg, domain.VenueInternal)
	registry, err := market.NewDefaultMarketRegistry(market.DefaultFee, false, nil)
	require.NoError(t, err)
	o := New(router.NewRouter(reader, registry, router.Config{}), registry, reg, Config{})

	_, err = o.GetCoinPrices(context.Background(), []common.Address{a}, []common.Address{b}, domain.SelectInternal)
	assert.ErrorIs(t, err, decimals.ErrOverflow)
}

func TestMissingMetadataYieldsZero(t *testing.T) {
	f := newFixture(t)
	stray := common.HexToAddress("0xdead")
	f.registry.AddPool(cpPool("0xd1", domain.VenueInternal, stray, units(1, 18), usdx, units(1, 18)))

	inputs := []common.Address{usdz, stray}
	quotes := []common.Address{usdx}

	want, err := f.oracle.GetCoinPrices(context.Background(), []common.Address{usdz}, quotes, domain.SelectBest)
	require.NoError(t, err)

	prices, err := f.oracle.GetCoinPrices(context.Background(), inputs, quotes, domain.SelectBest)
	require.NoError(t, err)
	require.Len(t, prices, 2)
	assert.Equal(t, want[0].Price.String(), prices[0].Price.String())
	assert.True(t, prices[1].IsZero())
	assert.Equal(t, stray, prices[1].Token)

	prices, err = f.oracle.GetCoinPrices(context.Background(), []common.Address{stray}, quotes, domain.SelectInternal)
	require.NoError(t, err)
	assert.True(t, prices[0].IsZero())
}

func TestCalcRouteDeterministic(t *testing.T) {
	f := newFixture(t)

	first, err := f.oracle.CalcRoute(context.Background(), akita, wbtc)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := f.oracle.CalcRoute(context.Background(), akita, wbtc)
		require.NoError(t, err)
		assert.Equal(t, first.Tokens(), again.Tokens())
	}
	assert.LessOrEqual(t, first.Len(), router.DefaultMaxHops)
}

func TestCalcRouteOnVenue(t *testing.T) {
	f := newFixture(t)

	route, err := f.oracle.CalcRouteOn(context.Background(), usdx, usdz, domain.VenueUniswap)
	require.NoError(t, err)
	assert.Equal(t, []common.Address{usdx, weth, usdz}, route.Tokens())

	_, err = f.oracle.CalcRouteOn(context.Background(), usdx, usdz, domain.Venue(42))
	assert.ErrorIs(t, err, domain.ErrUnknownVenue)
}

func BenchmarkGetCoinPrices(b *testing.B) {
	f := newFixture(b)
	inputs := []common.Address{usdz, akita, weth, wbtc}
	quotes := []common.Address{usdx}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = f.oracle.GetCoinPrices(context.Background(), inputs, quotes, domain.SelectBest)
	}
}

func TestNewFromConfig(t *testing.T) {
	f := newFixture(t)
	reader := market.NewReader()
	reader.Register(f.registry, domain.AllVenues...)

	conf := &config.OracleConfig{
		MaxHops:        4,
		FeeNumerator:   997,
		FeeDenominator: 1000,
		HubTokens:      []common.Address{weth},
		VenuePriority:  []domain.Venue{domain.VenueAggregator, domain.VenueInternal},
		RouteVenue:     domain.VenueInternal,
		UniswapSpot:    true,
	}
	o, err := NewFromConfig(reader, f.registry, f.rates, conf)
	require.NoError(t, err)

	res, err := o.GetCoinPrices(context.Background(), []common.Address{weth}, []common.Address{usdx, usdz}, domain.SelectBest)
	require.NoError(t, err)
	assert.Equal(t, "10752997205388249629", res[0].Price.String())
	assert.Equal(t, domain.VenueInternal, res[0].Venue)

	conf.FeeNumerator = 0
	_, err = NewFromConfig(reader, f.registry, f.rates, conf)
	assert.ErrorIs(t, err, market.ErrInvalidFeeFraction)
}
