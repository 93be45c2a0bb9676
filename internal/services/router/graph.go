package router

import (
	"bytes"
	"slices"

	"github.com/ethereum/go-ethereum/common"

	"github.com/hxuan190/price-oracle/internal/domain"
)

type adjMap = map[common.Address]map[common.Address][]*domain.Pool

// PoolReadyChecker checks if a pool may be used as a routing edge
type PoolReadyChecker interface {
	IsPoolReady(pool *domain.Pool) bool
}

// Graph is the token graph of one venue, built once per query and never mutated.
type Graph struct {
	venue domain.Venue
	adj   adjMap

	// neighbors holds each token's adjacent tokens in expansion order
	neighbors map[common.Address][]common.Address
	hubRank   map[common.Address]int
	poolCount int
}

// NewGraph indexes the ready pools. Hubs are preferred intermediates, highest priority first.
func NewGraph(venue domain.Venue, pools []*domain.Pool, checker PoolReadyChecker, hubs []common.Address) *Graph {
	g := &Graph{
		venue:     venue,
		adj:       make(adjMap),
		neighbors: make(map[common.Address][]common.Address),
		hubRank:   make(map[common.Address]int, len(hubs)),
	}
	for i, h := range hubs {
		if _, ok := g.hubRank[h]; !ok {
			g.hubRank[h] = i
		}
	}

	for _, pool := range pools {
		if pool.Venue != venue || pool.TokenA == pool.TokenB {
			continue
		}
		if !isPoolReady(checker, pool) {
			continue
		}
		g.addEdge(pool.TokenA, pool.TokenB, pool)
		g.addEdge(pool.TokenB, pool.TokenA, pool)
		g.poolCount++
	}

	for from, edges := range g.adj {
		next := make([]common.Address, 0, len(edges))
		for to, pools := range edges {
			sortPoolsByOutputLiquidity(pools, from)
			next = append(next, to)
		}
		slices.SortFunc(next, g.compareTokens)
		g.neighbors[from] = next
	}
	return g
}

func isPoolReady(checker PoolReadyChecker, pool *domain.Pool) bool {
	if checker != nil {
		return checker.IsPoolReady(pool)
	}
	return pool.HasLiquidity()
}

func (g *Graph) addEdge(from, to common.Address, pool *domain.Pool) {
	if g.adj[from] == nil {
		g.adj[from] = make(map[common.Address][]*domain.Pool)
	}
	g.adj[from][to] = append(g.adj[from][to], pool)
}

// compareTokens orders hubs first by priority, then everything else by address.
func (g *Graph) compareTokens(a, b common.Address) int {
	ra, aHub := g.hubRank[a]
	rb, bHub := g.hubRank[b]
	switch {
	case aHub && bHub:
		return ra - rb
	case aHub:
		return -1
	case bHub:
		return 1
	default:
		return bytes.Compare(a.Bytes(), b.Bytes())
	}
}

// sortPoolsByOutputLiquidity puts the deepest pool first; address breaks ties.
func sortPoolsByOutputLiquidity(pools []*domain.Pool, inputToken common.Address) {
	if len(pools) <= 1 {
		return
	}
	slices.SortFunc(pools, func(a, b *domain.Pool) int {
		ra, rb := a.OutputReserve(inputToken), b.OutputReserve(inputToken)
		if ra != nil && rb != nil {
			if c := rb.Cmp(ra); c != 0 {
				return c
			}
		}
		return bytes.Compare(a.Address.Bytes(), b.Address.Bytes())
	})
}

func (g *Graph) Venue() domain.Venue {
	return g.venue
}

func (g *Graph) PoolCount() int {
	return g.poolCount
}

func (g *Graph) TokenCount() int {
	return len(g.adj)
}

func (g *Graph) HasToken(token common.Address) bool {
	_, ok := g.adj[token]
	return ok
}

// Neighbors returns tokens adjacent to token in search order.
func (g *Graph) Neighbors(token common.Address) []common.Address {
	return g.neighbors[token]
}

// PoolsForPair returns pools trading from -> to, deepest output first.
func (g *Graph) PoolsForPair(from, to common.Address) []*domain.Pool {
	if edges, ok := g.adj[from]; ok {
		return edges[to]
	}
	return nil
}
