package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/hxuan190/price-oracle/internal/common"
	"github.com/hxuan190/price-oracle/internal/config"
	"github.com/hxuan190/price-oracle/internal/http"
	"github.com/hxuan190/price-oracle/internal/oracle"
)

// @title Price Oracle API
// @version 1.0
// @description Cross-venue AMM price oracle. Prices tokens by routing through constant-product pools
// @description and an external aggregator, and normalizes every result to 18 decimals.
// @description
// @description ## - Venues
// @description | Selector | Venue | Pricing |
// @description |---|---|---|
// @description | 0 | internal | amount out with 0.3% fee |
// @description | 1 | uniswap | spot reserve ratio |
// @description | 2 | aggregator | external quote |
// @description | 3 | best | first non-zero of internal, uniswap, aggregator |
// @description
// @description ## - Usage Tips
// @description - Prices are fixed point with 18 decimals: "1000000000000000000" = 1 quote token
// @description - A price of "0" means no quote token is reachable within the hop limit
// @description - Quote tokens are tried in the order given
// @description - **Rate Limit**: 10 requests/second per IP (burst: 20) by default
// @BasePath /
// @schemes https http
// @tag.name price
// @tag.description Normalized token prices
// @tag.name route
// @tag.description Pool routes between two tokens
// @tag.name pools
// @tag.description Pool universe inspection

func main() {
	// load env
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Error().Err(err).Msg("failed to load env")
		return
	}

	general := &config.GeneralConfig{}
	if err := general.Load(); err != nil {
		log.Error().Err(err).Msg("invalid general config")
		return
	}
	common.InitLogger(general.LogLevel, general.Env)

	// di container config
	conf := container.NewConf(
		general,
		&config.OracleConfig{},
		&config.StoreConfig{},
		&config.RPCConfig{},
	)

	// di container
	dic, err := container.New(
		// config
		conf,

		// services
		&oracle.Service{},

		&http.HTTPService{},
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to create di container")
		return
	}

	// Run() waits for SIGINT/SIGTERM
	if err := dic.Run(); err != nil {
		log.Error().Err(err).Msg("failed to run di container")
		return
	}

	log.Info().Msg("Shutting down services...")
	if err := dic.Stop(); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
	log.Info().Msg("Shutdown complete")
}
