// ====================================
// File: cmd/mintpop/main.go
// ====================================
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/xofe/mintpop/internal/amount"
	"github.com/xofe/mintpop/internal/app"
	"github.com/xofe/mintpop/internal/config"
	"github.com/xofe/mintpop/internal/logger"
	"github.com/xofe/mintpop/internal/mint"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to config file (optional)")
		mintFlag   = flag.String("mint", "", "token mint address to inspect")
		amountFlag = flag.String("amount", "", "SOL amount to quote (optional)")
		debug      = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logCfg := logger.DefaultConfig()
	logCfg.Development = *debug || cfg.DebugLogging
	log, err := logger.New(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	address, err := mint.Validate(*mintFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, "usage: mintpop -mint <address> [-amount <sol>]")
		os.Exit(2)
	}

	runner, err := app.NewRunner(cfg, log)
	if err != nil {
		log.Fatal("failed to initialize", zap.Error(err))
	}
	defer runner.Close()

	ctx, cancel := runner.WatchSignals(context.Background())
	defer cancel()

	snap, q, err := runner.Inspect(ctx, address, *amountFlag)
	if err != nil {
		log.Fatal("inspect failed", zap.Error(err))
	}

	fmt.Printf("%s (%s)\n", snap.Token.Symbol, snap.Token.Name)
	fmt.Printf("price: $%s\n", amount.FormatUSD(snap.Price.UsdPrice))
	if snap.Price.SolPrice > 0 {
		fmt.Printf("price: %s SOL\n", amount.FormatReference(snap.Price.SolPrice))
	}
	if snap.Volume > 0 {
		fmt.Printf("24h volume: $%s\n", amount.FormatUSD(snap.Volume))
	}
	if len(snap.Series) > 0 {
		first, last := snap.Series[0].P, snap.Series[len(snap.Series)-1].P
		fmt.Printf("24h chart: %d points, %s -> %s\n",
			len(snap.Series), amount.FormatUSD(first), amount.FormatUSD(last))
	}

	if q != nil {
		out, convErr := amount.FromBaseUnits(q.OutAmount, snap.Token.Decimals)
		if convErr != nil {
			out = q.OutAmount
		}
		fmt.Printf("quote: %s SOL -> %s %s (impact %s%%)\n",
			*amountFlag, out, snap.Token.Symbol, q.PriceImpactPct)
	}
}
