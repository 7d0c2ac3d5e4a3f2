package token

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

const bonkMint = "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"

type fakeAPI struct {
	list      []jupiter.TokenInfo
	listErr   error
	search    []jupiter.TokenInfo
	searchErr error

	listCalls   atomic.Int32
	searchCalls atomic.Int32
}

func (f *fakeAPI) TokenList(ctx context.Context) ([]jupiter.TokenInfo, error) {
	f.listCalls.Add(1)
	return f.list, f.listErr
}

func (f *fakeAPI) Search(ctx context.Context, query string) ([]jupiter.TokenInfo, error) {
	f.searchCalls.Add(1)
	return f.search, f.searchErr
}

func TestGetFromTokenList(t *testing.T) {
	api := &fakeAPI{list: []jupiter.TokenInfo{
		{Address: bonkMint, Symbol: "BONK", Name: "Bonk", Decimals: 5},
	}}
	s := NewService(api, zap.NewNop())

	d := s.Get(context.Background(), bonkMint)
	assert.Equal(t, "BONK", d.Symbol)
	assert.Equal(t, "Bonk", d.Name)
	assert.Equal(t, 5, d.Decimals)
	assert.Equal(t, "list", d.Source)
	assert.Equal(t, int32(0), api.searchCalls.Load(), "search must not run on a direct hit")
}

func TestGetFallsBackToSearch(t *testing.T) {
	api := &fakeAPI{
		list:   nil, // mint not in the list
		search: []jupiter.TokenInfo{{Address: bonkMint, Symbol: "BONK", Name: "Bonk", Decimals: 5}},
	}
	s := NewService(api, zap.NewNop())

	d := s.Get(context.Background(), bonkMint)
	assert.Equal(t, "BONK", d.Symbol)
	assert.Equal(t, "search", d.Source)
	assert.Equal(t, int32(1), api.searchCalls.Load())
}

func TestGetSynthesizesWhenAllStrategiesMiss(t *testing.T) {
	api := &fakeAPI{
		listErr:   errors.New("list down"),
		searchErr: errors.New("search down"),
	}
	s := NewService(api, zap.NewNop())

	d := s.Get(context.Background(), bonkMint)
	assert.Equal(t, "DEZX", d.Symbol)
	assert.Equal(t, "Token DEZX", d.Name)
	assert.Equal(t, 6, d.Decimals)
	assert.Equal(t, "synthesized", d.Source)
}

func TestSynthesizedDescriptorNotCached(t *testing.T) {
	api := &fakeAPI{
		listErr:   errors.New("list down"),
		searchErr: errors.New("search down"),
	}
	s := NewService(api, zap.NewNop())

	_ = s.Get(context.Background(), bonkMint)

	// Upstream recovers; the next get must try again instead of serving the
	// placeholder from cache.
	api.listErr = nil
	api.list = []jupiter.TokenInfo{{Address: bonkMint, Symbol: "BONK", Name: "Bonk", Decimals: 5}}

	d := s.Get(context.Background(), bonkMint)
	assert.Equal(t, "BONK", d.Symbol)
}

func TestGetCachesRealDescriptor(t *testing.T) {
	api := &fakeAPI{list: []jupiter.TokenInfo{
		{Address: bonkMint, Symbol: "BONK", Name: "Bonk", Decimals: 5},
	}}
	s := NewService(api, zap.NewNop())

	_ = s.Get(context.Background(), bonkMint)
	_ = s.Get(context.Background(), bonkMint)
	assert.Equal(t, int32(1), api.listCalls.Load())
}

func TestDefaultsForSparseEntries(t *testing.T) {
	api := &fakeAPI{list: []jupiter.TokenInfo{{Address: bonkMint}}}
	s := NewService(api, zap.NewNop())

	d := s.Get(context.Background(), bonkMint)
	assert.Equal(t, "Unknown", d.Symbol)
	assert.Equal(t, "Unknown Token", d.Name)
	assert.Equal(t, 6, d.Decimals)
}

func TestSynthesize(t *testing.T) {
	d := Synthesize(bonkMint)
	require.Equal(t, "DEZX", d.Symbol)
	assert.Equal(t, 6, d.Decimals)
}
