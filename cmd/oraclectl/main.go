package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "oraclectl",
		Short:        "Offline price oracle tooling",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Import a JSON pool fixture into the pool store",
		RunE:  runImport,
	}
	importCmd.Flags().String("db", "./data/oracle.db", "pool store path")
	importCmd.Flags().String("fixture", "", "fixture JSON path")
	importCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(importCmd)

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write the pool store as a JSON fixture to stdout",
		RunE:  runExport,
	}
	exportCmd.Flags().String("db", "./data/oracle.db", "pool store path")
	exportCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(exportCmd)

	pricesCmd := &cobra.Command{
		Use:   "prices",
		Short: "Print normalized prices of input tokens",
		RunE:  runPrices,
	}
	addOracleFlags(pricesCmd.Flags())
	pricesCmd.Flags().StringSlice("inputs", nil, "input token addresses (comma-separated)")
	pricesCmd.Flags().StringSlice("quotes", nil, "quote token addresses in preference order (comma-separated)")
	pricesCmd.Flags().String("venue", "best", "venue selector (internal, uniswap, aggregator, best or 0-3)")
	root.AddCommand(pricesCmd)

	routeCmd := &cobra.Command{
		Use:   "route",
		Short: "Print the fewest-hop pool route between two tokens",
		RunE:  runRoute,
	}
	addOracleFlags(routeCmd.Flags())
	routeCmd.Flags().String("from", "", "source token address")
	routeCmd.Flags().String("to", "", "destination token address")
	routeCmd.Flags().String("venue", "", "venue to search, defaults to route-venue")
	root.AddCommand(routeCmd)

	poolsCmd := &cobra.Command{
		Use:   "pools",
		Short: "List the pools of one venue",
		RunE:  runPools,
	}
	addOracleFlags(poolsCmd.Flags())
	poolsCmd.Flags().String("venue", "internal", "venue (internal, uniswap, aggregator)")
	root.AddCommand(poolsCmd)

	pairCmd := &cobra.Command{
		Use:   "pair",
		Short: "Print the pool trading two tokens on one venue",
		RunE:  runPair,
	}
	addOracleFlags(pairCmd.Flags())
	pairCmd.Flags().String("token-a", "", "first token address")
	pairCmd.Flags().String("token-b", "", "second token address")
	pairCmd.Flags().String("venue", "internal", "venue (internal, uniswap, aggregator)")
	root.AddCommand(pairCmd)

	return root
}

func addOracleFlags(flags *pflag.FlagSet) {
	flags.String("db", "./data/oracle.db", "pool store path")
	flags.String("fixture", "", "read pools from a fixture JSON file instead of the store")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.Int("max-hops", 4, "maximum pools per route")
	flags.Uint64("fee-numerator", 997, "internal venue fee numerator")
	flags.Uint64("fee-denominator", 1000, "internal venue fee denominator")
	flags.Bool("uniswap-spot", true, "price uniswap pools at the spot reserve ratio")
	flags.StringSlice("hub-tokens", nil, "tokens preferred as route intermediates (comma-separated)")
	flags.StringSlice("venue-priority", []string{"internal", "uniswap", "aggregator"}, "venue order for the best selector")
	flags.String("route-venue", "internal", "venue searched by route when --venue is empty")
}
