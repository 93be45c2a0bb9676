package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// CLIConfig holds configuration for oraclectl commands.
type CLIConfig struct {
	DBPath   string
	Fixture  string
	LogLevel string
	Oracle   OracleConfig
}

// LoadCLI merges config file, ORACLECTL_ environment variables, and flags into CLIConfig.
func LoadCLI(cfgFile string, flags *pflag.FlagSet) (CLIConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("ORACLECTL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("db", "./data/oracle.db")
	v.SetDefault("log-level", "info")
	v.SetDefault("max-hops", 4)
	v.SetDefault("fee-numerator", 997)
	v.SetDefault("fee-denominator", 1000)
	v.SetDefault("uniswap-spot", true)
	v.SetDefault("venue-priority", []string{"internal", "uniswap", "aggregator"})
	v.SetDefault("route-venue", "internal")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return CLIConfig{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return CLIConfig{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("oraclectl")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return CLIConfig{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := CLIConfig{
		DBPath:   v.GetString("db"),
		Fixture:  v.GetString("fixture"),
		LogLevel: v.GetString("log-level"),
		Oracle: OracleConfig{
			MaxHops:        v.GetInt("max-hops"),
			FeeNumerator:   v.GetUint64("fee-numerator"),
			FeeDenominator: v.GetUint64("fee-denominator"),
			UniswapSpot:    v.GetBool("uniswap-spot"),
		},
	}
	if err := cfg.Oracle.apply(flatten(v.GetStringSlice("hub-tokens")), flatten(v.GetStringSlice("venue-priority")), v.GetString("route-venue")); err != nil {
		return CLIConfig{}, err
	}
	return cfg, nil
}

// flatten splits comma separated entries; env values arrive as one element.
func flatten(values []string) []string {
	var out []string
	for _, v := range values {
		out = append(out, splitList(v)...)
	}
	return out
}
