package chart

import (
	"context"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xofe/mintpop/internal/upstream/gecko"
)

type fakeAPI struct {
	pools    []gecko.Pool
	poolsErr error
	candles  []gecko.Candle
	ohlcvErr error

	poolCalls  atomic.Int32
	ohlcvCalls atomic.Int32
}

func (f *fakeAPI) TokenPools(ctx context.Context, mint string) ([]gecko.Pool, error) {
	f.poolCalls.Add(1)
	return f.pools, f.poolsErr
}

func (f *fakeAPI) OHLCV(ctx context.Context, poolAddress, interval string) ([]gecko.Candle, error) {
	f.ohlcvCalls.Add(1)
	return f.candles, f.ohlcvErr
}

func TestResolvePoolPicksMostLiquid(t *testing.T) {
	api := &fakeAPI{pools: []gecko.Pool{
		{Address: "low", ReserveUSD: 5000, Volume24h: 500},
		{Address: "high", ReserveUSD: 90000, Volume24h: 2000},
		{Address: "illiquid", ReserveUSD: 500, Volume24h: 50000},
		{Address: "quiet", ReserveUSD: 80000, Volume24h: 10},
	}}
	s := NewService(api, zap.NewNop())

	pool, err := s.ResolvePool(context.Background(), "SomeMint")
	require.NoError(t, err)
	assert.Equal(t, "high", pool.Address)
	assert.InDelta(t, 2000, pool.Volume24h, 1e-9)
}

func TestResolvePoolNoLiquidPool(t *testing.T) {
	api := &fakeAPI{pools: []gecko.Pool{
		{Address: "dust", ReserveUSD: 10, Volume24h: 1},
	}}
	s := NewService(api, zap.NewNop())

	_, err := s.ResolvePool(context.Background(), "SomeMint")
	assert.ErrorIs(t, err, ErrNoLiquidPool)
}

func TestGetSeriesNormalizes(t *testing.T) {
	now := time.Unix(1700086400, 0)
	old := now.Add(-25 * time.Hour).Unix()    // outside the window
	recent := now.Add(-1 * time.Hour).Unix()  // inside
	recent2 := now.Add(-30 * time.Minute).Unix()

	api := &fakeAPI{
		pools: []gecko.Pool{{Address: "pool1", ReserveUSD: 90000, Volume24h: 2000}},
		candles: []gecko.Candle{
			{Timestamp: recent2, Close: 1.2}, // out of order on purpose
			{Timestamp: old, Close: 1.0},
			{Timestamp: recent, Close: 1.1},
			{Timestamp: recent, Close: 0},              // non-positive dropped
			{Timestamp: recent, Close: math.NaN()},     // NaN dropped
			{Timestamp: recent, Close: -3},             // negative dropped
		},
	}
	s := NewService(api, zap.NewNop())
	s.now = func() time.Time { return now }

	series, err := s.GetSeries(context.Background(), "SomeMint", "minute")
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, recent*1000, series[0].T)
	assert.InDelta(t, 1.1, series[0].P, 1e-9)
	assert.Equal(t, recent2*1000, series[1].T)
	assert.InDelta(t, 1.2, series[1].P, 1e-9)
	assert.Equal(t, []float64{1.1, 1.2}, series.Prices())
}

func TestGetSeriesCachedPerMintAndInterval(t *testing.T) {
	api := &fakeAPI{
		pools:   []gecko.Pool{{Address: "pool1", ReserveUSD: 90000, Volume24h: 2000}},
		candles: []gecko.Candle{},
	}
	s := NewService(api, zap.NewNop())

	_, err := s.GetSeries(context.Background(), "SomeMint", "minute")
	require.NoError(t, err)
	_, err = s.GetSeries(context.Background(), "SomeMint", "minute")
	require.NoError(t, err)
	assert.Equal(t, int32(1), api.ohlcvCalls.Load())

	// A different interval is a different cache key.
	_, err = s.GetSeries(context.Background(), "SomeMint", "hour")
	require.NoError(t, err)
	assert.Equal(t, int32(2), api.ohlcvCalls.Load())
}

func TestGetSeriesPropagatesErrors(t *testing.T) {
	api := &fakeAPI{pools: []gecko.Pool{{Address: "dust", ReserveUSD: 1, Volume24h: 1}}}
	s := NewService(api, zap.NewNop())

	// Pool resolution failure surfaces through GetSeries.
	_, err := s.GetSeries(context.Background(), "SomeMint", "minute")
	assert.ErrorIs(t, err, ErrNoLiquidPool)

	// OHLCV failure with no prior cache entry surfaces too.
	api.pools = []gecko.Pool{{Address: "pool1", ReserveUSD: 90000, Volume24h: 2000}}
	api.ohlcvErr = &gecko.StatusError{Status: 429}
	_, err = s.GetSeries(context.Background(), "OtherMint", "minute")
	var se *gecko.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 429, se.Status)
}

func TestVolume24h(t *testing.T) {
	api := &fakeAPI{pools: []gecko.Pool{{Address: "pool1", ReserveUSD: 90000, Volume24h: 1234.5}}}
	s := NewService(api, zap.NewNop())

	vol, err := s.Volume24h(context.Background(), "SomeMint")
	require.NoError(t, err)
	assert.InDelta(t, 1234.5, vol, 1e-9)
}
