package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hxuan190/price-oracle/internal/adapters/memory"
	"github.com/hxuan190/price-oracle/internal/adapters/persistence"
	"github.com/hxuan190/price-oracle/internal/common"
	"github.com/hxuan190/price-oracle/internal/config"
	"github.com/hxuan190/price-oracle/internal/domain"
	"github.com/hxuan190/price-oracle/internal/oracle"
	"github.com/hxuan190/price-oracle/internal/services/market"
)

// backend is an oracle over either a fixture file or the bolt pool store.
type backend struct {
	oracle  *oracle.Oracle
	reader  *market.Reader
	storage *persistence.Storage
}

func loadConfig(cmd *cobra.Command) (config.CLIConfig, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadCLI(cfgFile, cmd.Flags())
	if err != nil {
		return config.CLIConfig{}, err
	}
	common.InitLogger(cfg.LogLevel, "dev")
	return cfg, nil
}

func openBackend(cfg config.CLIConfig) (*backend, error) {
	b := &backend{reader: market.NewReader()}

	var meta market.TokenMetadata
	if cfg.Fixture != "" {
		registry, err := loadFixture(cfg.Fixture)
		if err != nil {
			return nil, err
		}
		b.reader.Register(registry, domain.AllVenues...)
		meta = registry
	} else {
		storage, err := persistence.NewStorage(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		b.storage = storage
		b.reader.Register(storage, domain.AllVenues...)
		meta = storage
	}

	// No aggregator is reachable offline; aggregator prices read as zero.
	o, err := oracle.NewFromConfig(b.reader, meta, memory.NewRateSource(), &cfg.Oracle)
	if err != nil {
		b.Close()
		return nil, err
	}
	b.oracle = o
	return b, nil
}

func (b *backend) Close() {
	if b.storage != nil {
		b.storage.Close()
	}
}

func loadFixture(path string) (*memory.Registry, error) {
	tokens, pools, err := readFixture(path)
	if err != nil {
		return nil, err
	}
	registry := memory.NewRegistry()
	for _, t := range tokens {
		registry.AddToken(t)
	}
	registry.AddPools(pools)
	return registry, nil
}

func readFixture(path string) ([]domain.Token, []*domain.Pool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read fixture: %w", err)
	}
	return persistence.DecodeFixture(data)
}
