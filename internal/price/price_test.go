package price

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xofe/mintpop/internal/upstream/jupiter"
)

type fakeAPI struct {
	entries map[string]jupiter.PriceEntry
	err     error
	calls   atomic.Int32
}

func (f *fakeAPI) GetPrice(ctx context.Context, mint string) (jupiter.PriceEntry, error) {
	f.calls.Add(1)
	if f.err != nil {
		return jupiter.PriceEntry{}, f.err
	}
	return f.entries[mint], nil
}

func fp(v float64) *float64 { return &v }

func TestGetComputesSolPrice(t *testing.T) {
	api := &fakeAPI{entries: map[string]jupiter.PriceEntry{
		"SomeMint":      {UsdPrice: fp(2.5)},
		WrappedSOLMint:  {UsdPrice: fp(125.0)},
	}}
	s := NewService(api, zap.NewNop())

	snap, err := s.Get(context.Background(), "SomeMint")
	require.NoError(t, err)
	assert.InDelta(t, 2.5, snap.UsdPrice, 1e-9)
	assert.InDelta(t, 0.02, snap.SolPrice, 1e-9)
	assert.InDelta(t, 125.0, snap.SolPriceUSD, 1e-9)
	assert.False(t, snap.FetchedAt.IsZero())
}

func TestGetFallsBackToPriceField(t *testing.T) {
	api := &fakeAPI{entries: map[string]jupiter.PriceEntry{
		"SomeMint":     {Price: fp(1.5)},
		WrappedSOLMint: {Price: fp(150.0)},
	}}
	s := NewService(api, zap.NewNop())

	snap, err := s.Get(context.Background(), "SomeMint")
	require.NoError(t, err)
	assert.InDelta(t, 1.5, snap.UsdPrice, 1e-9)
	assert.InDelta(t, 0.01, snap.SolPrice, 1e-9)
}

func TestGetPriceUnavailable(t *testing.T) {
	api := &fakeAPI{entries: map[string]jupiter.PriceEntry{
		WrappedSOLMint: {UsdPrice: fp(150.0)},
	}}
	s := NewService(api, zap.NewNop())

	_, err := s.Get(context.Background(), "UnknownMint")
	assert.ErrorIs(t, err, ErrPriceUnavailable)
}

func TestGetServesCachedSnapshot(t *testing.T) {
	api := &fakeAPI{entries: map[string]jupiter.PriceEntry{
		"SomeMint":     {UsdPrice: fp(2.5)},
		WrappedSOLMint: {UsdPrice: fp(125.0)},
	}}
	s := NewService(api, zap.NewNop())

	_, err := s.Get(context.Background(), "SomeMint")
	require.NoError(t, err)
	calls := api.calls.Load()

	_, err = s.Get(context.Background(), "SomeMint")
	require.NoError(t, err)
	assert.Equal(t, calls, api.calls.Load(), "second get must be served from cache")
}

func TestGetPropagatesUpstreamError(t *testing.T) {
	wantErr := errors.New("network down")
	s := NewService(&fakeAPI{err: wantErr}, zap.NewNop())

	_, err := s.Get(context.Background(), "SomeMint")
	assert.ErrorIs(t, err, wantErr)
}
