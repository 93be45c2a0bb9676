package router

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/hxuan190/price-oracle/internal/domain"
	"github.com/hxuan190/price-oracle/internal/metrics"
	"github.com/hxuan190/price-oracle/internal/services/market"
)

var (
	ErrNoRoute = errors.New("no route found")
)

type Config struct {
	// MaxHops is the maximum number of pools in a route.
	MaxHops int
	// HubTokens are preferred intermediates, highest priority first.
	HubTokens []common.Address
}

// Router builds per-query graphs from fresh snapshots and searches them.
type Router struct {
	reader  *market.Reader
	checker PoolReadyChecker
	cfg     Config
}

func NewRouter(reader *market.Reader, checker PoolReadyChecker, cfg Config) *Router {
	if cfg.MaxHops <= 0 || cfg.MaxHops > DefaultMaxHops {
		cfg.MaxHops = DefaultMaxHops
	}
	return &Router{reader: reader, checker: checker, cfg: cfg}
}

func (r *Router) MaxHops() int {
	return r.cfg.MaxHops
}

func (r *Router) HubTokens() []common.Address {
	return r.cfg.HubTokens
}

// Graph snapshots venue and indexes its ready pools.
func (r *Router) Graph(ctx context.Context, venue domain.Venue) (*Graph, error) {
	snap, err := r.reader.Snapshot(ctx, venue)
	if err != nil {
		return nil, err
	}
	return r.GraphFromSnapshot(snap), nil
}

func (r *Router) GraphFromSnapshot(snap *market.Snapshot) *Graph {
	return NewGraph(snap.Venue(), snap.Pools(), r.checker, r.cfg.HubTokens)
}

// CalcRoute finds the route from src to dst on venue using current pool state.
func (r *Router) CalcRoute(ctx context.Context, src, dst common.Address, venue domain.Venue) (*domain.Route, error) {
	g, err := r.Graph(ctx, venue)
	if err != nil {
		metrics.RouteRequests.WithLabelValues(venue.String(), "error").Inc()
		return nil, err
	}

	route, err := g.FindRoute(src, dst, r.cfg.MaxHops)
	if err != nil {
		metrics.RouteRequests.WithLabelValues(venue.String(), "no_route").Inc()
		return nil, fmt.Errorf("%s -> %s on %v: %w", src.Hex(), dst.Hex(), venue, err)
	}
	metrics.RouteRequests.WithLabelValues(venue.String(), "ok").Inc()
	return route, nil
}
