package config

import (
	"errors"
	"time"

	"github.com/andrew-solarstorm/go-packages/common"
)

type ServerEnv = string

var (
	DevEnv     ServerEnv = "dev"
	StagingEnv ServerEnv = "staging"
	ProdEnv    ServerEnv = "prod"
)

const (
	GENERAL_CONFIG_KEY = "general-config"
	RPC_CONFIG_KEY     = "rpc-config"
	ORACLE_CONFIG_KEY  = "oracle-config"
	STORE_CONFIG_KEY   = "store-config"
)

type GeneralConfig struct {
	HTTPPort string
	HTTPHost string
	Env      string
	LogLevel string

	// RateLimit is the sustained requests per second allowed per client IP.
	RateLimit int
	RateBurst int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

func (gc *GeneralConfig) Key() string {
	return GENERAL_CONFIG_KEY
}

func (gc *GeneralConfig) Load() error {
	gc.HTTPPort = common.GetEnvOrDefault("HTTP_PORT", "8080")
	gc.HTTPHost = common.GetEnvOrDefault("HTTP_HOST", "localhost")
	gc.Env = common.GetEnvOrDefault("ENV", "dev")
	gc.LogLevel = common.GetEnvOrDefault("LOG_LEVEL", "INFO")
	gc.RateLimit = common.GetEnvOrDefaultInt("HTTP_RATE_LIMIT", 10)
	gc.RateBurst = common.GetEnvOrDefaultInt("HTTP_RATE_BURST", 20)
	gc.ReadTimeout = time.Duration(common.GetEnvOrDefaultInt("HTTP_READ_TIMEOUT_MS", 5000)) * time.Millisecond
	gc.WriteTimeout = time.Duration(common.GetEnvOrDefaultInt("HTTP_WRITE_TIMEOUT_MS", 15000)) * time.Millisecond
	gc.ShutdownTimeout = time.Duration(common.GetEnvOrDefaultInt("HTTP_SHUTDOWN_TIMEOUT_MS", 5000)) * time.Millisecond
	return gc.Validate()
}

func (gc *GeneralConfig) Validate() error {
	if gc.HTTPPort == "" || gc.HTTPHost == "" || gc.Env == "" {
		return errors.New("invalid server config")
	}
	if gc.RateLimit <= 0 || gc.RateBurst <= 0 {
		return errors.New("invalid rate limit config")
	}
	if gc.ReadTimeout <= 0 || gc.WriteTimeout <= 0 || gc.ShutdownTimeout <= 0 {
		return errors.New("invalid http timeout config")
	}
	return nil
}
