package evm

import (
	"context"
	"fmt"
	"math/big"
	"slices"
	"time"

	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru"

	"github.com/hxuan190/price-oracle/internal/domain"
	"github.com/hxuan190/price-oracle/internal/services/market"
)

const DefaultMaxPairs = 2000

// FactorySource enumerates UniswapV2-style pair factories, one per venue.
// All reads of a Pools call are pinned to the block current when it started.
type FactorySource struct {
	caller    ContractCaller
	factories map[domain.Venue]common.Address
	maxPairs  int
	timeout   time.Duration

	// pair address -> [2]common.Address; pair tokens never change
	pairTokens *lru.Cache
}

func NewFactorySource(caller ContractCaller, factories map[domain.Venue]common.Address, maxPairs int, timeout time.Duration) (*FactorySource, error) {
	if maxPairs <= 0 {
		maxPairs = DefaultMaxPairs
	}
	cache, err := lru.New(max(1, maxPairs*len(factories)))
	if err != nil {
		return nil, fmt.Errorf("failed to create pair cache: %w", err)
	}
	return &FactorySource{
		caller:     caller,
		factories:  factories,
		maxPairs:   maxPairs,
		timeout:    timeout,
		pairTokens: cache,
	}, nil
}

func (s *FactorySource) Venues() []domain.Venue {
	venues := make([]domain.Venue, 0, len(s.factories))
	for v := range s.factories {
		venues = append(venues, v)
	}
	slices.Sort(venues)
	return venues
}

func (s *FactorySource) Pools(ctx context.Context, venue domain.Venue) ([]*domain.Pool, error) {
	factory, ok := s.factories[venue]
	if !ok {
		return nil, fmt.Errorf("%w: %v", market.ErrVenueNotConfigured, venue)
	}

	head, err := s.caller.BlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("read block number: %w", err)
	}
	block := new(big.Int).SetUint64(head)

	values, err := call(ctx, s.caller, s.timeout, factory, FactoryABI, "allPairsLength", block)
	if err != nil {
		return nil, err
	}
	total, err := asBigInt(values[0])
	if err != nil {
		return nil, fmt.Errorf("allPairsLength: %w", err)
	}

	count := s.maxPairs
	if total.IsInt64() && total.Int64() < int64(count) {
		count = int(total.Int64())
	}

	pools := make([]*domain.Pool, 0, count)
	for i := 0; i < count; i++ {
		values, err := call(ctx, s.caller, s.timeout, factory, FactoryABI, "allPairs", block, big.NewInt(int64(i)))
		if err != nil {
			return nil, err
		}
		pair, err := asAddress(values[0])
		if err != nil {
			return nil, fmt.Errorf("allPairs(%d): %w", i, err)
		}
		pool, err := s.readPair(ctx, venue, pair, block)
		if err != nil {
			return nil, err
		}
		pools = append(pools, pool)
	}
	return pools, nil
}

func (s *FactorySource) FindPool(ctx context.Context, tokenA, tokenB common.Address, venue domain.Venue) (*domain.Pool, error) {
	factory, ok := s.factories[venue]
	if !ok {
		return nil, fmt.Errorf("%w: %v", market.ErrVenueNotConfigured, venue)
	}

	values, err := call(ctx, s.caller, s.timeout, factory, FactoryABI, "getPair", nil, tokenA, tokenB)
	if err != nil {
		return nil, err
	}
	pair, err := asAddress(values[0])
	if err != nil {
		return nil, fmt.Errorf("getPair: %w", err)
	}
	if pair == (common.Address{}) {
		return nil, fmt.Errorf("%w: %s/%s on %v", market.ErrPoolNotFound, tokenA.Hex(), tokenB.Hex(), venue)
	}
	return s.readPair(ctx, venue, pair, nil)
}

func (s *FactorySource) readPair(ctx context.Context, venue domain.Venue, pair common.Address, block *big.Int) (*domain.Pool, error) {
	tokens, err := s.tokensOf(ctx, pair, block)
	if err != nil {
		return nil, err
	}

	values, err := call(ctx, s.caller, s.timeout, pair, PairABI, "getReserves", block)
	if err != nil {
		return nil, err
	}
	if len(values) < 2 {
		return nil, fmt.Errorf("getReserves on %s: short output", pair.Hex())
	}
	reserve0, err := asBigInt(values[0])
	if err != nil {
		return nil, fmt.Errorf("reserve0: %w", err)
	}
	reserve1, err := asBigInt(values[1])
	if err != nil {
		return nil, fmt.Errorf("reserve1: %w", err)
	}

	return &domain.Pool{
		Address:  pair,
		Venue:    venue,
		TokenA:   tokens[0],
		TokenB:   tokens[1],
		ReserveA: reserve0,
		ReserveB: reserve1,
	}, nil
}

func (s *FactorySource) tokensOf(ctx context.Context, pair common.Address, block *big.Int) ([2]common.Address, error) {
	if v, ok := s.pairTokens.Get(pair); ok {
		return v.([2]common.Address), nil
	}

	var tokens [2]common.Address
	for i, method := range []string{"token0", "token1"} {
		values, err := call(ctx, s.caller, s.timeout, pair, PairABI, method, block)
		if err != nil {
			return tokens, err
		}
		tokens[i], err = asAddress(values[0])
		if err != nil {
			return tokens, fmt.Errorf("%s: %w", method, err)
		}
	}
	s.pairTokens.Add(pair, tokens)
	return tokens, nil
}
