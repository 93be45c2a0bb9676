package config

import (
	"fmt"

	"github.com/andrew-solarstorm/go-packages/common"
)

const (
	PoolSourceBolt = "bolt"
	PoolSourceRPC  = "rpc"
)

type StoreConfig struct {
	// DBPath is the path to the BoltDB file holding pools and token metadata.
	// Default: "./data/oracle.db"
	DBPath string

	// PoolSource selects where pool state is read from: "bolt" or "rpc".
	// Default: "bolt"
	PoolSource string
}

func (c *StoreConfig) Key() string {
	return STORE_CONFIG_KEY
}

func (c *StoreConfig) Load() error {
	c.DBPath = common.GetEnvOrDefault("ORACLE_DB_PATH", "./data/oracle.db")
	c.PoolSource = common.GetEnvOrDefault("ORACLE_POOL_SOURCE", PoolSourceBolt)
	return c.Validate()
}

func (c *StoreConfig) Validate() error {
	switch c.PoolSource {
	case PoolSourceBolt, PoolSourceRPC:
		return nil
	default:
		return fmt.Errorf("invalid store config: unknown pool source %q", c.PoolSource)
	}
}
