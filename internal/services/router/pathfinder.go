package router

import (
	"slices"

	"github.com/ethereum/go-ethereum/common"

	"github.com/hxuan190/price-oracle/internal/domain"
)

// DefaultMaxHops caps a route at four pools, i.e. three intermediate tokens.
const DefaultMaxHops = 4

// FindRoute returns a shortest route from src to dst that uses at most maxHops
// pools. Among equal-length routes the one whose intermediates rank best wins:
// intermediates are compared best-first by hub priority, then in path order.
func (g *Graph) FindRoute(src, dst common.Address, maxHops int) (*domain.Route, error) {
	if src == dst {
		return domain.IdentityRoute(src, g.venue), nil
	}
	if maxHops < 1 || !g.HasToken(src) || !g.HasToken(dst) {
		return nil, ErrNoRoute
	}

	fromSrc := g.distances(src, dst, maxHops)
	length, ok := fromSrc[dst]
	if !ok {
		return nil, ErrNoRoute
	}
	toDst := g.distances(dst, src, length)

	var best []common.Address
	path := make([]common.Address, 1, length+1)
	path[0] = src

	// Walk only tokens lying on some shortest route; every complete walk has
	// exactly length hops.
	var walk func(current common.Address)
	walk = func(current common.Address) {
		depth := len(path) - 1
		if current == dst {
			if best == nil || g.compareRoutes(path, best) < 0 {
				best = slices.Clone(path)
			}
			return
		}
		for _, next := range g.Neighbors(current) {
			if d, ok := fromSrc[next]; !ok || d != depth+1 {
				continue
			}
			if d, ok := toDst[next]; !ok || d != length-depth-1 {
				continue
			}
			path = append(path, next)
			walk(next)
			path = path[:len(path)-1]
		}
	}
	walk(src)

	return g.buildRoute(best), nil
}

// distances runs a breadth-first search from origin and returns the hop count
// of every token reached within limit hops. The search stops at the level that
// reaches target.
func (g *Graph) distances(origin, target common.Address, limit int) map[common.Address]int {
	dist := map[common.Address]int{origin: 0}
	frontier := []common.Address{origin}
	for depth := 1; depth <= limit && len(frontier) > 0; depth++ {
		var next []common.Address
		for _, token := range frontier {
			for _, n := range g.Neighbors(token) {
				if _, seen := dist[n]; seen {
					continue
				}
				dist[n] = depth
				next = append(next, n)
			}
		}
		if _, found := dist[target]; found {
			break
		}
		frontier = next
	}
	return dist
}

// compareRoutes orders two equal-length token paths by their intermediates:
// first as sets sorted by hub priority, then in path order.
func (g *Graph) compareRoutes(a, b []common.Address) int {
	ia, ib := a[1:len(a)-1], b[1:len(b)-1]
	sa := slices.SortedFunc(slices.Values(ia), g.compareTokens)
	sb := slices.SortedFunc(slices.Values(ib), g.compareTokens)
	if c := slices.CompareFunc(sa, sb, g.compareTokens); c != 0 {
		return c
	}
	return slices.CompareFunc(ia, ib, g.compareTokens)
}

// buildRoute takes the deepest pool for each consecutive token pair.
func (g *Graph) buildRoute(tokens []common.Address) *domain.Route {
	hops := make([]domain.Hop, len(tokens)-1)
	for i := range hops {
		hops[i] = domain.Hop{
			Pool:     g.PoolsForPair(tokens[i], tokens[i+1])[0],
			TokenIn:  tokens[i],
			TokenOut: tokens[i+1],
		}
	}
	return &domain.Route{
		Source:      tokens[0],
		Destination: tokens[len(tokens)-1],
		Venue:       g.venue,
		Hops:        hops,
	}
}
