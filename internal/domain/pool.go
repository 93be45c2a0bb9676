package domain

import (
	"bytes"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Venue tags which pricing formula applies to a pool.
type Venue uint8

const (
	VenueInternal Venue = iota
	VenueUniswap
	VenueAggregator
)

// AllVenues lists every concrete venue in default priority order.
var AllVenues = []Venue{VenueInternal, VenueUniswap, VenueAggregator}

func (v Venue) String() string {
	switch v {
	case VenueInternal:
		return "internal"
	case VenueUniswap:
		return "uniswap"
	case VenueAggregator:
		return "aggregator"
	default:
		return "UNKNOWN"
	}
}

func (v Venue) Valid() bool {
	return v <= VenueAggregator
}

// ParseVenue accepts the names returned by Venue.String.
func ParseVenue(name string) (Venue, error) {
	for _, v := range AllVenues {
		if v.String() == name {
			return v, nil
		}
	}
	return 0, ErrUnknownVenue
}

func (v Venue) MarshalText() ([]byte, error) {
	if !v.Valid() {
		return nil, ErrUnknownVenue
	}
	return []byte(v.String()), nil
}

func (v *Venue) UnmarshalText(text []byte) error {
	parsed, err := ParseVenue(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

type Pool struct {
	Address  common.Address `json:"address"`
	Venue    Venue          `json:"venue"`
	TokenA   common.Address `json:"tokenA"`
	TokenB   common.Address `json:"tokenB"`
	ReserveA *big.Int       `json:"reserveA"`
	ReserveB *big.Int       `json:"reserveB"`
}

func (p *Pool) Has(token common.Address) bool {
	return p.TokenA == token || p.TokenB == token
}

// Other returns the token on the opposite side of the pool from token.
func (p *Pool) Other(token common.Address) common.Address {
	if p.TokenA == token {
		return p.TokenB
	}
	return p.TokenA
}

// ReservesFor orders the reserves as (input side, output side) for a swap of tokenIn.
func (p *Pool) ReservesFor(tokenIn common.Address) (*big.Int, *big.Int) {
	if p.TokenA == tokenIn {
		return p.ReserveA, p.ReserveB
	}
	return p.ReserveB, p.ReserveA
}

// OutputReserve returns the reserve paid out when tokenIn is sold into the pool.
func (p *Pool) OutputReserve(tokenIn common.Address) *big.Int {
	_, out := p.ReservesFor(tokenIn)
	return out
}

// HasLiquidity reports whether both reserves are strictly positive.
func (p *Pool) HasLiquidity() bool {
	return p.ReserveA != nil && p.ReserveB != nil && p.ReserveA.Sign() > 0 && p.ReserveB.Sign() > 0
}

// Clone deep-copies the pool so later reserve mutation on the source is not observed.
func (p *Pool) Clone() *Pool {
	cp := *p
	if p.ReserveA != nil {
		cp.ReserveA = new(big.Int).Set(p.ReserveA)
	}
	if p.ReserveB != nil {
		cp.ReserveB = new(big.Int).Set(p.ReserveB)
	}
	return &cp
}

// PairKey is the order-independent identity of a token pair.
type PairKey struct {
	Lo common.Address
	Hi common.Address
}

func NewPairKey(a, b common.Address) PairKey {
	if bytes.Compare(a.Bytes(), b.Bytes()) > 0 {
		a, b = b, a
	}
	return PairKey{Lo: a, Hi: b}
}

func (p *Pool) PairKey() PairKey {
	return NewPairKey(p.TokenA, p.TokenB)
}

type Token struct {
	Address  common.Address `json:"address"`
	Symbol   string         `json:"symbol,omitempty"`
	Decimals uint8          `json:"decimals"`
}
