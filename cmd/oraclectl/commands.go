package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/bytedance/sonic"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hxuan190/price-oracle/internal/adapters/persistence"
	"github.com/hxuan190/price-oracle/internal/config"
	"github.com/hxuan190/price-oracle/internal/domain"
)

type priceLine struct {
	Token     string   `json:"token"`
	Quote     string   `json:"quote,omitempty"`
	Venue     string   `json:"venue,omitempty"`
	Price     string   `json:"price"`
	Available bool     `json:"available"`
	Path      []string `json:"path,omitempty"`
}

type hopLine struct {
	Pool     string `json:"pool"`
	TokenIn  string `json:"tokenIn"`
	TokenOut string `json:"tokenOut"`
}

type routeLine struct {
	Source      string    `json:"source"`
	Destination string    `json:"destination"`
	Venue       string    `json:"venue"`
	Hops        []hopLine `json:"hops"`
}

func runImport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Fixture == "" {
		return fmt.Errorf("fixture path is required")
	}

	tokens, pools, err := readFixture(cfg.Fixture)
	if err != nil {
		return err
	}

	storage, err := persistence.NewStorage(cfg.DBPath)
	if err != nil {
		return err
	}
	defer storage.Close()

	if err := storage.SaveTokenBatch(tokens); err != nil {
		return fmt.Errorf("save tokens: %w", err)
	}
	if err := storage.SavePoolBatch(pools); err != nil {
		return fmt.Errorf("save pools: %w", err)
	}

	log.Info().
		Int("tokens", len(tokens)).
		Int("pools", len(pools)).
		Str("db", cfg.DBPath).
		Msg("fixture imported")
	return nil
}

func runExport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	storage, err := persistence.NewStorage(cfg.DBPath)
	if err != nil {
		return err
	}
	defer storage.Close()

	tokens, err := storage.LoadAllTokens()
	if err != nil {
		return err
	}
	pools, err := storage.LoadAllPools()
	if err != nil {
		return err
	}

	data, err := persistence.EncodeFixture(tokens, pools)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

func runPrices(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	inputNames, _ := cmd.Flags().GetStringSlice("inputs")
	quoteNames, _ := cmd.Flags().GetStringSlice("quotes")
	venueName, _ := cmd.Flags().GetString("venue")

	inputs, err := config.ParseAddresses(inputNames)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("at least one input token is required")
	}
	quotes, err := config.ParseAddresses(quoteNames)
	if err != nil {
		return err
	}
	selector, err := domain.ParseVenueSelectorName(venueName)
	if err != nil {
		return err
	}

	b, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, err := b.oracle.GetCoinPrices(ctx, inputs, quotes, selector)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, r := range results {
		line := priceLine{
			Token:     r.Token.Hex(),
			Price:     "0",
			Available: !r.IsZero(),
		}
		if line.Available {
			line.Quote = r.Quote.Hex()
			line.Venue = r.Venue.String()
			line.Price = r.Price.String()
			line.Path = hexList(r.Path)
		}
		if err := writeLine(out, line); err != nil {
			return err
		}
	}
	return nil
}

func runRoute(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	venueName, _ := cmd.Flags().GetString("venue")

	if from == "" || to == "" {
		return fmt.Errorf("--from and --to are required")
	}
	addrs, err := config.ParseAddresses([]string{from, to})
	if err != nil {
		return err
	}

	venue := cfg.Oracle.RouteVenue
	if venueName != "" {
		if venue, err = domain.ParseVenue(venueName); err != nil {
			return err
		}
	}

	b, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	route, err := b.oracle.CalcRouteOn(ctx, addrs[0], addrs[1], venue)
	if err != nil {
		return err
	}

	line := routeLine{
		Source:      route.Source.Hex(),
		Destination: route.Destination.Hex(),
		Venue:       route.Venue.String(),
		Hops:        make([]hopLine, 0, len(route.Hops)),
	}
	for _, h := range route.Hops {
		line.Hops = append(line.Hops, hopLine{
			Pool:     h.Pool.Address.Hex(),
			TokenIn:  h.TokenIn.Hex(),
			TokenOut: h.TokenOut.Hex(),
		})
	}
	return writeLine(cmd.OutOrStdout(), line)
}

func runPools(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	venueName, _ := cmd.Flags().GetString("venue")
	venue, err := domain.ParseVenue(venueName)
	if err != nil {
		return err
	}

	b, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	snap, err := b.reader.Snapshot(cmd.Context(), venue)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, p := range snap.Pools() {
		line := persistence.PoolToStored(p)
		if err := writeLine(out, line); err != nil {
			return err
		}
	}
	return nil
}

func writeLine(w io.Writer, v any) error {
	data, err := sonic.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func hexList(addrs []common.Address) []string {
	out := make([]string, len(addrs))
	for i, a := range addrs {
		out[i] = a.Hex()
	}
	return out
}

func runPair(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	tokenA, _ := cmd.Flags().GetString("token-a")
	tokenB, _ := cmd.Flags().GetString("token-b")
	venueName, _ := cmd.Flags().GetString("venue")

	if tokenA == "" || tokenB == "" {
		return fmt.Errorf("--token-a and --token-b are required")
	}
	addrs, err := config.ParseAddresses([]string{tokenA, tokenB})
	if err != nil {
		return err
	}
	venue, err := domain.ParseVenue(venueName)
	if err != nil {
		return err
	}

	b, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	pool, err := b.reader.FindPool(cmd.Context(), addrs[0], addrs[1], venue)
	if err != nil {
		return err
	}
	return writeLine(cmd.OutOrStdout(), persistence.PoolToStored(pool))
}
