// Package oracle derives normalized cross-venue token prices by routing through
// AMM pools and folding per-hop quotes into one 18-decimal price per token.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"slices"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hxuan190/price-oracle/internal/config"
	"github.com/hxuan190/price-oracle/internal/domain"
	"github.com/hxuan190/price-oracle/internal/metrics"
	"github.com/hxuan190/price-oracle/internal/services/decimals"
	"github.com/hxuan190/price-oracle/internal/services/market"
	"github.com/hxuan190/price-oracle/internal/services/router"
)

type Config struct {
	// VenuePriority is the order SelectBest tries venues in.
	VenuePriority []domain.Venue
	// RouteVenue is the venue CalcRoute searches.
	RouteVenue domain.Venue
}

type Oracle struct {
	router   *router.Router
	registry *market.MarketRegistry
	meta     market.TokenMetadata
	cfg      Config
	logger   zerolog.Logger
}

func New(r *router.Router, registry *market.MarketRegistry, meta market.TokenMetadata, cfg Config) *Oracle {
	if len(cfg.VenuePriority) == 0 {
		cfg.VenuePriority = domain.AllVenues
	}
	return &Oracle{
		router:   r,
		registry: registry,
		meta:     meta,
		cfg:      cfg,
		logger:   log.With().Str("component", "oracle").Logger(),
	}
}

// NewFromConfig builds the default quoter registry and router over reader and
// returns an oracle configured by conf.
func NewFromConfig(reader *market.Reader, meta market.TokenMetadata, prices market.PriceSource, conf *config.OracleConfig) (*Oracle, error) {
	registry, err := market.NewDefaultMarketRegistry(
		market.FeeFraction{Numerator: conf.FeeNumerator, Denominator: conf.FeeDenominator},
		conf.UniswapSpot,
		prices,
	)
	if err != nil {
		return nil, err
	}
	r := router.NewRouter(reader, registry, router.Config{
		MaxHops:   conf.MaxHops,
		HubTokens: conf.HubTokens,
	})
	return New(r, registry, meta, Config{
		VenuePriority: conf.VenuePriority,
		RouteVenue:    conf.RouteVenue,
	}), nil
}

func (o *Oracle) SetLogger(logger zerolog.Logger) {
	o.logger = logger
}

// GetCoinPrices returns one result per input token, in input order. Inputs that
// reach no quote token get a zero price rather than an error; only an invalid
// selector, arithmetic bounds violations, and failing collaborators are errors.
func (o *Oracle) GetCoinPrices(ctx context.Context, inputs, quotes []common.Address, selector domain.VenueSelector) ([]domain.PriceResult, error) {
	start := time.Now()
	defer func() {
		metrics.PriceQueryDuration.WithLabelValues(selector.String()).Observe(time.Since(start).Seconds())
	}()

	if err := selector.Validate(); err != nil {
		metrics.PriceQueries.WithLabelValues("invalid", "rejected").Inc()
		return nil, err
	}

	venues := selector.Venues(o.cfg.VenuePriority)
	q := o.newQuery(ctx)

	results := make([]domain.PriceResult, len(inputs))
	for i, input := range inputs {
		res, err := q.price(input, quotes, venues)
		if err != nil {
			metrics.PriceQueries.WithLabelValues(selector.String(), "error").Inc()
			o.logger.Error().Err(err).Str("token", input.Hex()).Str("selector", selector.String()).Msg("price query failed")
			return nil, fmt.Errorf("price %s: %w", input.Hex(), err)
		}
		results[i] = res
	}

	metrics.PriceQueries.WithLabelValues(selector.String(), "ok").Inc()
	return results, nil
}

// CalcRoute returns the route GetCoinPrices would walk from src to dst on the
// configured route venue.
func (o *Oracle) CalcRoute(ctx context.Context, src, dst common.Address) (*domain.Route, error) {
	return o.CalcRouteOn(ctx, src, dst, o.cfg.RouteVenue)
}

func (o *Oracle) CalcRouteOn(ctx context.Context, src, dst common.Address, venue domain.Venue) (*domain.Route, error) {
	if !venue.Valid() {
		return nil, fmt.Errorf("%w: %d", domain.ErrUnknownVenue, venue)
	}
	return o.router.CalcRoute(ctx, src, dst, venue)
}

// query carries per-call state: one snapshot per venue and memoized decimals.
type query struct {
	ctx      context.Context
	o        *Oracle
	graphs   map[domain.Venue]*router.Graph
	decimals map[common.Address]uint8
}

func (o *Oracle) newQuery(ctx context.Context) *query {
	return &query{
		ctx:      ctx,
		o:        o,
		graphs:   make(map[domain.Venue]*router.Graph),
		decimals: make(map[common.Address]uint8),
	}
}

func (q *query) graph(venue domain.Venue) (*router.Graph, error) {
	if g, ok := q.graphs[venue]; ok {
		return g, nil
	}
	g, err := q.o.router.Graph(q.ctx, venue)
	if errors.Is(err, market.ErrVenueNotConfigured) {
		q.o.logger.Debug().Str("venue", venue.String()).Msg("venue not configured, treating as empty")
		g = router.NewGraph(venue, nil, nil, nil)
	} else if err != nil {
		return nil, err
	}
	q.graphs[venue] = g
	return g, nil
}

func (q *query) tokenDecimals(token common.Address) (uint8, error) {
	if d, ok := q.decimals[token]; ok {
		return d, nil
	}
	d, err := q.o.meta.Decimals(q.ctx, token)
	if err != nil {
		return 0, err
	}
	if d > decimals.MaxDecimals {
		return 0, fmt.Errorf("%w: %s has %d", decimals.ErrDecimalsOutOfRange, token.Hex(), d)
	}
	q.decimals[token] = d
	return d, nil
}

func (q *query) price(input common.Address, quotes []common.Address, venues []domain.Venue) (domain.PriceResult, error) {
	if slices.Contains(quotes, input) {
		metrics.PriceResults.WithLabelValues(venues[0].String(), "identity").Inc()
		return domain.PriceResult{
			Token: input,
			Quote: input,
			Venue: venues[0],
			Price: decimals.One(),
			Path:  []common.Address{input},
		}, nil
	}

	for _, venue := range venues {
		res, err := q.priceOn(venue, input, quotes)
		if err != nil {
			return domain.PriceResult{}, err
		}
		if !res.IsZero() {
			metrics.PriceResults.WithLabelValues(venue.String(), "priced").Inc()
			return res, nil
		}
		metrics.PriceResults.WithLabelValues(venue.String(), "zero").Inc()
	}

	q.o.logger.Debug().Str("token", input.Hex()).Msg("no quote token reachable")
	return domain.ZeroPrice(input), nil
}

// priceOn routes input to the first reachable quote token on venue and walks
// the route. A zero result means the venue could not price the token.
func (q *query) priceOn(venue domain.Venue, input common.Address, quotes []common.Address) (domain.PriceResult, error) {
	g, err := q.graph(venue)
	if err != nil {
		return domain.PriceResult{}, err
	}

	var route *domain.Route
	for _, quote := range quotes {
		route, err = g.FindRoute(input, quote, q.o.router.MaxHops())
		if err == nil {
			break
		}
		if !errors.Is(err, router.ErrNoRoute) {
			return domain.PriceResult{}, err
		}
	}
	if route == nil {
		return domain.ZeroPrice(input), nil
	}

	price, err := q.walk(route)
	if isUnavailable(err) {
		q.o.logger.Debug().Err(err).Str("token", input.Hex()).Str("venue", venue.String()).Msg("route segment unavailable")
		return domain.ZeroPrice(input), nil
	}
	if err != nil {
		return domain.PriceResult{}, err
	}

	metrics.RouteHops.Observe(float64(route.Len()))
	return domain.PriceResult{
		Token: input,
		Quote: route.Destination,
		Venue: venue,
		Price: price,
		Path:  route.Tokens(),
	}, nil
}

// walk carries one reference unit of the source token through every hop,
// converting to native precision for each quote and back afterwards.
func (q *query) walk(route *domain.Route) (*big.Int, error) {
	amount := decimals.One()
	for _, hop := range route.Hops {
		decIn, err := q.tokenDecimals(hop.TokenIn)
		if err != nil {
			return nil, err
		}
		decOut, err := q.tokenDecimals(hop.TokenOut)
		if err != nil {
			return nil, err
		}

		nativeIn, err := decimals.FromReference(amount, decIn)
		if err != nil {
			return nil, err
		}
		if nativeIn.Sign() == 0 {
			return new(big.Int), nil
		}

		quote, err := q.o.registry.GetQuote(q.ctx, hop.Pool, hop.TokenIn, nativeIn)
		if err != nil {
			return nil, err
		}

		amount, err = decimals.ToReference(quote.AmountOut, decOut)
		if err != nil {
			return nil, err
		}
		if amount.Sign() == 0 {
			return amount, nil
		}
	}
	return amount, nil
}

func isUnavailable(err error) bool {
	return errors.Is(err, market.ErrQuoteUnavailable) ||
		errors.Is(err, market.ErrPoolUnavailable) ||
		errors.Is(err, market.ErrNoQuoter) ||
		errors.Is(err, market.ErrUnknownToken)
}
