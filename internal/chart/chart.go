// internal/chart/chart.go
package chart

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/xofe/mintpop/internal/cache"
	"github.com/xofe/mintpop/internal/upstream/gecko"
)

const (
	// PoolTTL is the lifetime of a mint → pool resolution.
	PoolTTL = 5 * time.Minute
	// SeriesTTL is the lifetime of a fetched chart series.
	SeriesTTL = 60 * time.Second

	// Window is the trailing period a series covers.
	Window = 24 * time.Hour

	// Thresholds below which a pool is considered too illiquid to chart.
	minReserveUSD  = 1000.0
	minVolume24USD = 100.0
)

// ErrNoLiquidPool means no pool passed the liquidity/volume thresholds.
var ErrNoLiquidPool = errors.New("no liquid pool found for token")

// Point is one chart sample: close price at a millisecond timestamp.
type Point struct {
	T int64   `json:"t"`
	P float64 `json:"p"`
}

// Series is a time-ascending sequence of points within the trailing window.
type Series []Point

// PoolInfo is the resolved main trading pool for a mint.
type PoolInfo struct {
	Address   string
	Volume24h float64
}

// API is the slice of the GeckoTerminal client the service needs.
type API interface {
	TokenPools(ctx context.Context, mint string) ([]gecko.Pool, error)
	OHLCV(ctx context.Context, poolAddress, interval string) ([]gecko.Candle, error)
}

// Service resolves tokens to their main pool and serves 24h price series.
// Both caches tolerate upstream failure by serving stale data; a slightly old
// chart is strictly better than none, and the free-tier rate limit (30/min)
// makes refresh failures routine.
type Service struct {
	api         API
	poolCache   *cache.Cache[PoolInfo]
	seriesCache *cache.Cache[Series]
	logger      *zap.Logger
	now         func() time.Time
}

// NewService creates a chart service with its own cache instances.
func NewService(api API, logger *zap.Logger) *Service {
	return &Service{
		api:         api,
		poolCache:   cache.New[PoolInfo]("pool", PoolTTL, true, logger),
		seriesCache: cache.New[Series]("chart", SeriesTTL, true, logger),
		logger:      logger.Named("chart"),
		now:         time.Now,
	}
}

// ResolvePool maps a mint to its most liquid pool above the thresholds.
func (s *Service) ResolvePool(ctx context.Context, mintAddress string) (PoolInfo, error) {
	return s.poolCache.Get(ctx, mintAddress, func(ctx context.Context) (PoolInfo, error) {
		pools, err := s.api.TokenPools(ctx, mintAddress)
		if err != nil {
			return PoolInfo{}, err
		}

		best := PoolInfo{}
		bestReserve := 0.0
		for _, p := range pools {
			if p.ReserveUSD <= minReserveUSD || p.Volume24h <= minVolume24USD {
				continue
			}
			if p.ReserveUSD > bestReserve {
				bestReserve = p.ReserveUSD
				best = PoolInfo{Address: p.Address, Volume24h: p.Volume24h}
			}
		}
		if best.Address == "" {
			return PoolInfo{}, ErrNoLiquidPool
		}

		s.logger.Debug("resolved main pool",
			zap.String("mint", mintAddress),
			zap.String("pool", best.Address),
			zap.Float64("reserve_usd", bestReserve))
		return best, nil
	})
}

// GetSeries returns the trailing 24h close-price series for a mint at the
// given candle interval. The cache key is (mint, interval).
func (s *Service) GetSeries(ctx context.Context, mintAddress, interval string) (Series, error) {
	key := mintAddress + "_" + interval
	return s.seriesCache.Get(ctx, key, func(ctx context.Context) (Series, error) {
		pool, err := s.ResolvePool(ctx, mintAddress)
		if err != nil {
			return nil, err
		}

		candles, err := s.api.OHLCV(ctx, pool.Address, interval)
		if err != nil {
			return nil, err
		}
		return s.normalize(candles), nil
	})
}

// Volume24h returns the main pool's 24h trade volume in USD.
func (s *Service) Volume24h(ctx context.Context, mintAddress string) (float64, error) {
	pool, err := s.ResolvePool(ctx, mintAddress)
	if err != nil {
		return 0, err
	}
	return pool.Volume24h, nil
}

// normalize filters candles to the trailing window, drops unusable prices and
// returns the series in ascending time order with millisecond timestamps.
func (s *Service) normalize(candles []gecko.Candle) Series {
	timeTo := s.now().Unix()
	timeFrom := timeTo - int64(Window/time.Second)

	series := make(Series, 0, len(candles))
	for _, c := range candles {
		if c.Timestamp < timeFrom || c.Timestamp > timeTo {
			continue
		}
		if math.IsNaN(c.Close) || c.Close <= 0 {
			continue
		}
		series = append(series, Point{T: c.Timestamp * 1000, P: c.Close})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].T < series[j].T })
	return series
}

// Prices extracts just the price values, oldest first. Convenient for
// sparkline rendering.
func (s Series) Prices() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.P
	}
	return out
}
