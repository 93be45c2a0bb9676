package domain

import (
	"fmt"
	"strconv"
)

// VenueSelector picks the pool universe a price query may search.
type VenueSelector uint8

const (
	SelectInternal VenueSelector = iota
	SelectUniswap
	SelectAggregator
	SelectBest
)

func (s VenueSelector) String() string {
	switch s {
	case SelectInternal:
		return "internal"
	case SelectUniswap:
		return "uniswap"
	case SelectAggregator:
		return "aggregator"
	case SelectBest:
		return "best"
	default:
		return fmt.Sprintf("selector(%d)", uint8(s))
	}
}

func (s VenueSelector) Validate() error {
	if s > SelectBest {
		return fmt.Errorf("%w: %d", ErrInvalidVenueSelector, uint8(s))
	}
	return nil
}

// ParseVenueSelector converts a raw caller value, rejecting anything outside the enum.
func ParseVenueSelector(raw int) (VenueSelector, error) {
	if raw < 0 || raw > int(SelectBest) {
		return 0, fmt.Errorf("%w: %d", ErrInvalidVenueSelector, raw)
	}
	return VenueSelector(raw), nil
}

// ParseVenueSelectorName accepts either a selector name or its numeric value.
func ParseVenueSelectorName(name string) (VenueSelector, error) {
	for s := SelectInternal; s <= SelectBest; s++ {
		if s.String() == name {
			return s, nil
		}
	}
	if raw, err := strconv.Atoi(name); err == nil {
		return ParseVenueSelector(raw)
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidVenueSelector, name)
}

// Venues expands the selector into the venues to try, in order.
// priority is only consulted for SelectBest.
func (s VenueSelector) Venues(priority []Venue) []Venue {
	switch s {
	case SelectInternal:
		return []Venue{VenueInternal}
	case SelectUniswap:
		return []Venue{VenueUniswap}
	case SelectAggregator:
		return []Venue{VenueAggregator}
	case SelectBest:
		if len(priority) == 0 {
			return AllVenues
		}
		return priority
	default:
		return nil
	}
}
