package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/andrew-solarstorm/go-packages/common"
	gethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/hxuan190/price-oracle/internal/domain"
)

// MaxRouteHops is the longest route the router accepts, counted in pools.
const MaxRouteHops = 4

// DefaultHubTokens are mainnet WETH, USDC, USDT and DAI, in preference order.
var DefaultHubTokens = []string{
	"0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2",
	"0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
	"0xdAC17F958D2ee523a2206206994597C13D831ec7",
	"0x6B175474E89094C44Da98b954EedeAC495271d0F",
}

type OracleConfig struct {
	// MaxHops caps the number of pools in a route.
	MaxHops int

	// FeeNumerator/FeeDenominator is the share of input reaching a constant-product pool.
	FeeNumerator   uint64
	FeeDenominator uint64

	// HubTokens are preferred routing intermediates, highest priority first.
	HubTokens []gethcommon.Address

	// VenuePriority is the order best-of mode tries venues in.
	VenuePriority []domain.Venue

	// RouteVenue is the venue calcRoute searches.
	RouteVenue domain.Venue

	// UniswapSpot prices the uniswap venue at its reserve ratio instead of amount out.
	UniswapSpot bool
}

func (c *OracleConfig) Key() string {
	return ORACLE_CONFIG_KEY
}

func (c *OracleConfig) Load() error {
	c.MaxHops = common.GetEnvOrDefaultInt("ORACLE_MAX_HOPS", MaxRouteHops)
	feeNum := common.GetEnvOrDefaultInt("ORACLE_FEE_NUMERATOR", 997)
	feeDen := common.GetEnvOrDefaultInt("ORACLE_FEE_DENOMINATOR", 1000)
	if feeNum < 0 || feeDen < 0 {
		return fmt.Errorf("invalid oracle config: negative fee %d/%d", feeNum, feeDen)
	}
	c.FeeNumerator = uint64(feeNum)
	c.FeeDenominator = uint64(feeDen)
	c.UniswapSpot = common.GetEnvOrDefault("ORACLE_UNISWAP_SPOT", "true") == "true"

	return c.apply(
		splitList(os.Getenv("ORACLE_HUB_TOKENS")),
		splitList(common.GetEnvOrDefault("ORACLE_VENUE_PRIORITY", "internal,uniswap,aggregator")),
		common.GetEnvOrDefault("ORACLE_ROUTE_VENUE", "internal"),
	)
}

// apply parses the list-valued settings and validates the result.
func (c *OracleConfig) apply(hubs, priority []string, routeVenue string) error {
	if len(hubs) == 0 {
		hubs = DefaultHubTokens
	}
	addrs, err := ParseAddresses(hubs)
	if err != nil {
		return fmt.Errorf("hub tokens: %w", err)
	}
	c.HubTokens = addrs

	c.VenuePriority = make([]domain.Venue, 0, len(priority))
	for _, name := range priority {
		v, err := domain.ParseVenue(strings.TrimSpace(name))
		if err != nil {
			return fmt.Errorf("venue priority: %w: %q", err, name)
		}
		c.VenuePriority = append(c.VenuePriority, v)
	}

	c.RouteVenue, err = domain.ParseVenue(routeVenue)
	if err != nil {
		return fmt.Errorf("route venue: %w", err)
	}
	return c.Validate()
}

func (c *OracleConfig) Validate() error {
	if c.MaxHops < 1 || c.MaxHops > MaxRouteHops {
		return fmt.Errorf("invalid oracle config: max hops %d outside 1..%d", c.MaxHops, MaxRouteHops)
	}
	if c.FeeDenominator == 0 || c.FeeNumerator == 0 || c.FeeNumerator > c.FeeDenominator {
		return fmt.Errorf("invalid oracle config: fee %d/%d", c.FeeNumerator, c.FeeDenominator)
	}
	if len(c.VenuePriority) == 0 {
		return errors.New("invalid oracle config: empty venue priority")
	}
	seen := make(map[domain.Venue]struct{}, len(c.VenuePriority))
	for _, v := range c.VenuePriority {
		if _, dup := seen[v]; dup {
			return fmt.Errorf("invalid oracle config: venue %v listed twice", v)
		}
		seen[v] = struct{}{}
	}
	return nil
}

// ParseAddresses parses hex addresses, rejecting malformed entries.
func ParseAddresses(raw []string) ([]gethcommon.Address, error) {
	out := make([]gethcommon.Address, 0, len(raw))
	for _, s := range raw {
		if !gethcommon.IsHexAddress(s) {
			return nil, fmt.Errorf("invalid address %q", s)
		}
		out = append(out, gethcommon.HexToAddress(s))
	}
	return out, nil
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
