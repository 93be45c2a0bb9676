package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/andrew-solarstorm/go-packages/common"
	gethcommon "github.com/ethereum/go-ethereum/common"
)

// TokenPair is an aggregator pair listed for routing.
type TokenPair struct {
	TokenA gethcommon.Address
	TokenB gethcommon.Address
}

type RPCConfig struct {
	RPCUrl string

	// InternalFactory and UniswapFactory are UniswapV2-style pair factories.
	InternalFactory gethcommon.Address
	UniswapFactory  gethcommon.Address

	// OneSplit is the aggregator contract; zero disables the aggregator venue.
	OneSplit        gethcommon.Address
	AggregatorPairs []TokenPair

	DecimalsCacheSize int
	CallTimeout       time.Duration
}

func (r *RPCConfig) Key() string {
	return RPC_CONFIG_KEY
}

func (r *RPCConfig) Load() error {
	r.RPCUrl = os.Getenv("RPC_URL")
	r.InternalFactory = gethcommon.HexToAddress(os.Getenv("INTERNAL_FACTORY"))
	r.UniswapFactory = gethcommon.HexToAddress(os.Getenv("UNISWAP_FACTORY"))
	r.OneSplit = gethcommon.HexToAddress(os.Getenv("ONESPLIT_ADDRESS"))
	r.DecimalsCacheSize = common.GetEnvOrDefaultInt("RPC_DECIMALS_CACHE_SIZE", 4096)
	r.CallTimeout = time.Duration(common.GetEnvOrDefaultInt("RPC_CALL_TIMEOUT_MS", 5000)) * time.Millisecond

	pairs, err := ParseTokenPairs(os.Getenv("AGGREGATOR_PAIRS"))
	if err != nil {
		return fmt.Errorf("AGGREGATOR_PAIRS: %w", err)
	}
	r.AggregatorPairs = pairs
	return nil
}

// Validate is only called when pool state is read over RPC.
func (r *RPCConfig) Validate() error {
	if r.RPCUrl == "" {
		return errors.New("invalid rpc config: RPC_URL is empty")
	}
	if r.InternalFactory == (gethcommon.Address{}) && r.UniswapFactory == (gethcommon.Address{}) {
		return errors.New("invalid rpc config: no factory configured")
	}
	if r.DecimalsCacheSize <= 0 {
		return errors.New("invalid rpc config: decimals cache size must be positive")
	}
	return nil
}

// ParseTokenPairs parses "tokenA:tokenB,tokenC:tokenD".
func ParseTokenPairs(raw string) ([]TokenPair, error) {
	var pairs []TokenPair
	for _, entry := range splitList(raw) {
		parts := strings.Split(entry, ":")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid pair %q", entry)
		}
		addrs, err := ParseAddresses([]string{strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])})
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, TokenPair{TokenA: addrs[0], TokenB: addrs[1]})
	}
	return pairs, nil
}
