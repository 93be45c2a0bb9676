package evm

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/hxuan190/price-oracle/internal/domain"
	"github.com/hxuan190/price-oracle/internal/services/market"
)

// ListedPairs is the pool registry of the aggregator venue: a fixed list of
// pairs the external aggregator is asked about. Pools carry no reserves.
type ListedPairs struct {
	pools []*domain.Pool
}

func NewListedPairs(pairs [][2]common.Address) *ListedPairs {
	lp := &ListedPairs{pools: make([]*domain.Pool, 0, len(pairs))}
	for _, p := range pairs {
		key := domain.NewPairKey(p[0], p[1])
		lp.pools = append(lp.pools, &domain.Pool{
			Address: PairAddress(p[0], p[1]),
			Venue:   domain.VenueAggregator,
			TokenA:  key.Lo,
			TokenB:  key.Hi,
		})
	}
	return lp
}

// PairAddress derives a stable pseudo address for an aggregator pair, independent of order.
func PairAddress(tokenA, tokenB common.Address) common.Address {
	key := domain.NewPairKey(tokenA, tokenB)
	return common.BytesToAddress(crypto.Keccak256(key.Lo.Bytes(), key.Hi.Bytes())[12:])
}

func (l *ListedPairs) Pools(_ context.Context, venue domain.Venue) ([]*domain.Pool, error) {
	if venue != domain.VenueAggregator {
		return nil, nil
	}
	out := make([]*domain.Pool, len(l.pools))
	for i, p := range l.pools {
		out[i] = p.Clone()
	}
	return out, nil
}

func (l *ListedPairs) FindPool(_ context.Context, tokenA, tokenB common.Address, venue domain.Venue) (*domain.Pool, error) {
	if venue == domain.VenueAggregator && tokenA != tokenB {
		want := domain.NewPairKey(tokenA, tokenB)
		for _, p := range l.pools {
			if p.PairKey() == want {
				return p.Clone(), nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %s/%s on %v", market.ErrPoolNotFound, tokenA.Hex(), tokenB.Hex(), venue)
}
