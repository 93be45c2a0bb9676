// Package memory holds pool and token state in process memory.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"slices"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/hxuan190/price-oracle/internal/domain"
	"github.com/hxuan190/price-oracle/internal/services/market"
)

// Registry is a concurrency-safe pool registry and token metadata store.
// Reads copy state under one lock, so a Pools call never mixes old and new reserves.
type Registry struct {
	mu     sync.RWMutex
	pools  map[common.Address]*domain.Pool
	tokens map[common.Address]domain.Token
}

func NewRegistry() *Registry {
	return &Registry{
		pools:  make(map[common.Address]*domain.Pool),
		tokens: make(map[common.Address]domain.Token),
	}
}

func (r *Registry) AddToken(token domain.Token) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token.Address] = token
}

// AddPool stores a copy of pool, replacing any pool at the same address.
func (r *Registry) AddPool(pool *domain.Pool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pools[pool.Address] = pool.Clone()
}

func (r *Registry) AddPools(pools []*domain.Pool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pools {
		r.pools[p.Address] = p.Clone()
	}
}

func (r *Registry) RemovePool(address common.Address) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pools, address)
}

// SetReserves replaces both reserves of a pool atomically.
func (r *Registry) SetReserves(address common.Address, reserveA, reserveB *big.Int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	pool, ok := r.pools[address]
	if !ok {
		return fmt.Errorf("%w: %s", market.ErrPoolNotFound, address.Hex())
	}
	pool.ReserveA = new(big.Int).Set(reserveA)
	pool.ReserveB = new(big.Int).Set(reserveB)
	return nil
}

func (r *Registry) Pools(_ context.Context, venue domain.Venue) ([]*domain.Pool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pools := make([]*domain.Pool, 0, len(r.pools))
	for _, p := range r.pools {
		if p.Venue == venue {
			pools = append(pools, p.Clone())
		}
	}
	sortByAddress(pools)
	return pools, nil
}

// AllPools returns copies of every pool, ordered by address.
func (r *Registry) AllPools() []*domain.Pool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pools := make([]*domain.Pool, 0, len(r.pools))
	for _, p := range r.pools {
		pools = append(pools, p.Clone())
	}
	sortByAddress(pools)
	return pools
}

func (r *Registry) Pool(address common.Address) (*domain.Pool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.pools[address]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

func (r *Registry) FindPool(ctx context.Context, tokenA, tokenB common.Address, venue domain.Venue) (*domain.Pool, error) {
	pools, err := r.Pools(ctx, venue)
	if err != nil {
		return nil, err
	}
	for _, p := range pools {
		if p.Has(tokenA) && p.Has(tokenB) && tokenA != tokenB {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s/%s on %v", market.ErrPoolNotFound, tokenA.Hex(), tokenB.Hex(), venue)
}

func (r *Registry) Decimals(_ context.Context, token common.Address) (uint8, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tokens[token]
	if !ok {
		return 0, fmt.Errorf("%w: %s", market.ErrUnknownToken, token.Hex())
	}
	return t.Decimals, nil
}

func (r *Registry) Tokens() []domain.Token {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tokens := make([]domain.Token, 0, len(r.tokens))
	for _, t := range r.tokens {
		tokens = append(tokens, t)
	}
	slices.SortFunc(tokens, func(a, b domain.Token) int {
		return bytes.Compare(a.Address.Bytes(), b.Address.Bytes())
	})
	return tokens
}

func sortByAddress(pools []*domain.Pool) {
	slices.SortFunc(pools, func(a, b *domain.Pool) int {
		return bytes.Compare(a.Address.Bytes(), b.Address.Bytes())
	})
}
