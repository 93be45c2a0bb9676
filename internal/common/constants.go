// Package common contains common constants and variables used across services
package common

import "time"

const (
	// MaxPriceTokens bounds the input and quote lists of a single price request.
	MaxPriceTokens = 64

	RequestTimeout = 10 * time.Second
)
