// internal/app/runner.go
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/xofe/mintpop/internal/chart"
	"github.com/xofe/mintpop/internal/config"
	"github.com/xofe/mintpop/internal/logger"
	"github.com/xofe/mintpop/internal/price"
	"github.com/xofe/mintpop/internal/quote"
	"github.com/xofe/mintpop/internal/session"
	"github.com/xofe/mintpop/internal/settings"
	"github.com/xofe/mintpop/internal/signer"
	"github.com/xofe/mintpop/internal/swap"
	"github.com/xofe/mintpop/internal/token"
	"github.com/xofe/mintpop/internal/tui"
	"github.com/xofe/mintpop/internal/upstream/gecko"
	"github.com/xofe/mintpop/internal/upstream/jupiter"
)

// Runner owns the wired-up service graph and its lifecycle.
type Runner struct {
	logger   *logger.Logger
	activity *logger.RingBuffer
	cfg      *config.Config

	jup   *jupiter.Client
	gecko *gecko.Client

	tokens *token.Service
	prices *price.Service
	charts *chart.Service
	quoter *quote.Orchestrator
	gate   *swap.Gate
	wallet signer.Wallet
	store  *settings.Store

	shutdownCh chan os.Signal
}

// NewRunner builds every service from the config. The wallet defaults to an
// unconnected bridge: wallet calls fail with a wallet-not-detected timeout
// until a transport serves it.
func NewRunner(cfg *config.Config, log *logger.Logger) (*Runner, error) {
	// Mirror Info-and-up lines into the activity pane before any service
	// captures the logger.
	activity := logger.NewRingBuffer(64)
	log.Attach(activity.Core(zapcore.InfoLevel))

	store, err := settings.NewStore(cfg.SettingsPath, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("open settings: %w", err)
	}

	jup := jupiter.NewClient(jupiter.Config{
		BaseURL:             cfg.QuoteBaseURL,
		TokenListURL:        cfg.TokenListURL,
		SearchURL:           cfg.TokenSearchURL,
		RateLimit:           cfg.QuoteRateLimit,
		Timeout:             cfg.HTTPTimeout,
		PriorityFeeLamports: cfg.PriorityFeeLamports,
	}, log.Logger)

	gck := gecko.NewClient(gecko.Config{
		BaseURL:   cfg.ChartBaseURL,
		RateLimit: cfg.ChartRateLimit,
		Timeout:   cfg.HTTPTimeout,
	}, log.Logger)

	bridge := signer.NewBridgeWallet()

	return &Runner{
		logger:     log,
		activity:   activity,
		cfg:        cfg,
		jup:        jup,
		gecko:      gck,
		tokens:     token.NewService(jup, log.Logger),
		prices:     price.NewService(jup, log.Logger),
		charts:     chart.NewService(gck, log.Logger),
		quoter:     quote.NewOrchestrator(jup, cfg.ReferenceMint, log.Logger),
		gate:       swap.NewGate(jup, log.Logger),
		wallet:     signer.NewTimeoutWallet(bridge, log.Logger),
		store:      store,
		shutdownCh: make(chan os.Signal, 1),
	}, nil
}

// Deps returns the collaborators a popup session needs.
func (r *Runner) Deps() session.Deps {
	return session.Deps{
		Tokens:        r.tokens,
		Prices:        r.prices,
		Charts:        r.charts,
		Quoter:        r.quoter,
		Gate:          r.gate,
		Wallet:        r.wallet,
		ReferenceMint: r.cfg.ReferenceMint,
		Logger:        r.logger.WithComponent("session"),
	}
}

// Settings returns the persisted per-installation record.
func (r *Runner) Settings() *settings.Store {
	return r.store
}

// NewPopupModel creates the interactive popup UI bound to this runner's
// services.
func (r *Runner) NewPopupModel() *tui.Model {
	return tui.NewModel(r.Deps(), r.cfg.SlippageBps, r.activity, r.logger.Logger)
}

// Inspect is the one-shot CLI flow: open a session for the mint, load the
// popup snapshot and, when amountStr is non-empty, fetch a quote for it.
func (r *Runner) Inspect(ctx context.Context, mintAddress, amountStr string) (session.Snapshot, *jupiter.Quote, error) {
	if !r.store.Get().Enabled {
		return session.Snapshot{}, nil, fmt.Errorf("disabled in settings (%s)", r.cfg.SettingsPath)
	}

	log := r.logger.WithMint(mintAddress)

	sess := session.New(mintAddress, r.Deps())
	defer sess.Close()

	snap, err := sess.Load(ctx)
	if err != nil {
		log.Warn("snapshot load failed", zap.Error(err))
		return session.Snapshot{}, nil, err
	}
	log.Info("snapshot loaded",
		zap.String("symbol", snap.Token.Symbol),
		zap.Float64("price_usd", snap.Price.UsdPrice))

	var q *jupiter.Quote
	if amountStr != "" {
		q, err = sess.RequestQuote(ctx, amountStr, r.cfg.SlippageBps)
		if err != nil {
			log.Warn("quote failed", zap.Error(err))
			return snap, nil, err
		}
	}
	return snap, q, nil
}

// WatchSignals cancels the returned context on SIGINT/SIGTERM.
func (r *Runner) WatchSignals(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	signal.Notify(r.shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-r.shutdownCh:
			r.logger.Info("signal received", zap.String("signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// Close releases the HTTP clients and flushes logs.
func (r *Runner) Close() {
	r.jup.Close()
	r.gecko.Close()
	if err := r.logger.Sync(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to sync logger: %v\n", err)
	}
}
