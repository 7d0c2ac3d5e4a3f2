// internal/price/price.go
package price

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xofe/mintpop/internal/cache"
	"github.com/xofe/mintpop/internal/upstream/jupiter"
)

// ErrPriceUnavailable means upstream returned no usable numeric price.
var ErrPriceUnavailable = errors.New("price unavailable")

// WrappedSOLMint is the reference asset all prices are denominated against.
const WrappedSOLMint = "So11111111111111111111111111111111111111112"

// TTL is how long a price snapshot stays live. Price is volatile, so this is
// much shorter than the metadata TTL.
const TTL = 15 * time.Second

// Snapshot is a cached price observation for one mint.
type Snapshot struct {
	UsdPrice    float64
	SolPrice    float64
	SolPriceUSD float64
	FetchedAt   time.Time
}

// API is the slice of the Jupiter client the service needs.
type API interface {
	GetPrice(ctx context.Context, mint string) (jupiter.PriceEntry, error)
}

// Service resolves and caches USD and SOL-denominated token prices. Stale
// snapshots are served when a refresh fails; a slightly old price beats an
// empty tooltip.
type Service struct {
	api    API
	cache  *cache.Cache[Snapshot]
	logger *zap.Logger
}

// NewService creates a price service with its own cache instance.
func NewService(api API, logger *zap.Logger) *Service {
	return &Service{
		api:    api,
		cache:  cache.New[Snapshot]("price", TTL, true, logger),
		logger: logger.Named("price"),
	}
}

// Get returns the current price snapshot for mint.
func (s *Service) Get(ctx context.Context, mintAddress string) (Snapshot, error) {
	return s.cache.Get(ctx, mintAddress, func(ctx context.Context) (Snapshot, error) {
		return s.fetch(ctx, mintAddress)
	})
}

func (s *Service) fetch(ctx context.Context, mintAddress string) (Snapshot, error) {
	var tokenUSD, solUSD float64

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		entry, err := s.api.GetPrice(gCtx, mintAddress)
		if err != nil {
			return err
		}
		v, ok := selectPrice(entry)
		if !ok {
			return ErrPriceUnavailable
		}
		tokenUSD = v
		return nil
	})
	g.Go(func() error {
		entry, err := s.api.GetPrice(gCtx, WrappedSOLMint)
		if err != nil {
			return err
		}
		v, ok := selectPrice(entry)
		if !ok {
			return ErrPriceUnavailable
		}
		solUSD = v
		return nil
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	if solUSD <= 0 {
		return Snapshot{}, ErrPriceUnavailable
	}

	snap := Snapshot{
		UsdPrice:    tokenUSD,
		SolPrice:    tokenUSD / solUSD,
		SolPriceUSD: solUSD,
		FetchedAt:   time.Now(),
	}
	s.logger.Debug("price fetched",
		zap.String("mint", mintAddress),
		zap.Float64("usd", snap.UsdPrice),
		zap.Float64("sol", snap.SolPrice))
	return snap, nil
}

// selectPrice picks whichever price field upstream populated.
func selectPrice(entry jupiter.PriceEntry) (float64, bool) {
	switch {
	case entry.UsdPrice != nil:
		return *entry.UsdPrice, true
	case entry.Price != nil:
		return *entry.Price, true
	default:
		return 0, false
	}
}
