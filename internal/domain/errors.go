package domain

import "errors"

var (
	ErrInvalidVenueSelector = errors.New("invalid venue selector")
	ErrUnknownVenue         = errors.New("unknown venue")
)
