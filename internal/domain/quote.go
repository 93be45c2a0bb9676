package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

type SwapQuote struct {
	Pool      *Pool
	TokenIn   common.Address
	TokenOut  common.Address
	AmountIn  *big.Int
	AmountOut *big.Int
}

type Hop struct {
	Pool     *Pool
	TokenIn  common.Address
	TokenOut common.Address
}

// Route is an ordered walk of pools from Source to Destination.
// A route without hops is the identity route and only exists when Source == Destination.
type Route struct {
	Source      common.Address
	Destination common.Address
	Venue       Venue
	Hops        []Hop
}

func IdentityRoute(token common.Address, venue Venue) *Route {
	return &Route{Source: token, Destination: token, Venue: venue}
}

func (r *Route) IsIdentity() bool {
	return len(r.Hops) == 0
}

func (r *Route) Len() int {
	return len(r.Hops)
}

func (r *Route) Pools() []*Pool {
	pools := make([]*Pool, len(r.Hops))
	for i, h := range r.Hops {
		pools[i] = h.Pool
	}
	return pools
}

// Tokens returns the visited tokens including both endpoints.
func (r *Route) Tokens() []common.Address {
	tokens := make([]common.Address, 0, len(r.Hops)+1)
	tokens = append(tokens, r.Source)
	for _, h := range r.Hops {
		tokens = append(tokens, h.TokenOut)
	}
	return tokens
}

// PriceResult is the price of one unit of Token in Quote at 18 decimals.
// A zero Price means no quote token was reachable.
type PriceResult struct {
	Token common.Address   `json:"token"`
	Quote common.Address   `json:"quote"`
	Venue Venue            `json:"venue"`
	Price *big.Int         `json:"price"`
	Path  []common.Address `json:"path,omitempty"`
}

func ZeroPrice(token common.Address) PriceResult {
	return PriceResult{Token: token, Price: new(big.Int)}
}

func (p PriceResult) IsZero() bool {
	return p.Price == nil || p.Price.Sign() == 0
}
