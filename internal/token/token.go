// internal/token/token.go
package token

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xofe/mintpop/internal/cache"
	"github.com/xofe/mintpop/internal/upstream/jupiter"
)

// TTL is how long a descriptor stays live. Metadata barely changes, so it is
// cached far longer than price.
const TTL = 5 * time.Minute

// fallbackDecimals is assumed when a token cannot be resolved at all.
const fallbackDecimals = 6

// ErrNotFound means no lookup strategy produced a descriptor.
var ErrNotFound = errors.New("token not found")

// Descriptor is the display metadata for one mint.
type Descriptor struct {
	Symbol    string
	Name      string
	Decimals  int
	Source    string // "list", "search" or "synthesized"
	FetchedAt time.Time
}

// API is the slice of the Jupiter client the service needs.
type API interface {
	TokenList(ctx context.Context) ([]jupiter.TokenInfo, error)
	Search(ctx context.Context, query string) ([]jupiter.TokenInfo, error)
}

// Service resolves token metadata through an ordered list of strategies:
// direct token-list lookup, then the search API, then a synthesized
// placeholder. The placeholder always succeeds because metadata is cosmetic;
// it is never cached so a later lookup can still find the real thing.
type Service struct {
	api        API
	cache      *cache.Cache[Descriptor]
	strategies []strategy
	logger     *zap.Logger
}

type strategy struct {
	name string
	fn   func(ctx context.Context, mintAddress string) (Descriptor, error)
}

// NewService creates a metadata service with its own cache instance.
func NewService(api API, logger *zap.Logger) *Service {
	s := &Service{
		api:    api,
		cache:  cache.New[Descriptor]("token-metadata", TTL, false, logger),
		logger: logger.Named("token"),
	}
	s.strategies = []strategy{
		{name: "list", fn: s.lookupList},
		{name: "search", fn: s.lookupSearch},
	}
	return s
}

// Get returns the descriptor for mintAddress. It never fails: when every
// upstream strategy misses, a synthesized descriptor is returned instead.
func (s *Service) Get(ctx context.Context, mintAddress string) Descriptor {
	d, err := s.cache.Get(ctx, mintAddress, func(ctx context.Context) (Descriptor, error) {
		return s.resolve(ctx, mintAddress)
	})
	if err != nil {
		s.logger.Debug("all lookup strategies failed, synthesizing descriptor",
			zap.String("mint", mintAddress),
			zap.Error(err))
		return Synthesize(mintAddress)
	}
	return d
}

// resolve runs the lookup strategies in order and returns the first hit.
func (s *Service) resolve(ctx context.Context, mintAddress string) (Descriptor, error) {
	var errs []error
	for _, st := range s.strategies {
		d, err := st.fn(ctx, mintAddress)
		if err == nil {
			d.Source = st.name
			d.FetchedAt = time.Now()
			return d, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", st.name, err))
	}
	return Descriptor{}, errors.Join(errs...)
}

func (s *Service) lookupList(ctx context.Context, mintAddress string) (Descriptor, error) {
	tokens, err := s.api.TokenList(ctx)
	if err != nil {
		return Descriptor{}, err
	}
	for _, t := range tokens {
		if t.Address == mintAddress {
			return fromInfo(t), nil
		}
	}
	return Descriptor{}, ErrNotFound
}

func (s *Service) lookupSearch(ctx context.Context, mintAddress string) (Descriptor, error) {
	candidates, err := s.api.Search(ctx, mintAddress)
	if err != nil {
		return Descriptor{}, err
	}
	if len(candidates) == 0 {
		return Descriptor{}, ErrNotFound
	}
	return fromInfo(candidates[0]), nil
}

// Synthesize builds a placeholder descriptor from the mint address itself:
// first four characters upper-cased, default decimals.
func Synthesize(mintAddress string) Descriptor {
	symbol := mintAddress
	if len(symbol) > 4 {
		symbol = symbol[:4]
	}
	symbol = strings.ToUpper(symbol)
	return Descriptor{
		Symbol:    symbol,
		Name:      "Token " + symbol,
		Decimals:  fallbackDecimals,
		Source:    "synthesized",
		FetchedAt: time.Now(),
	}
}

func fromInfo(t jupiter.TokenInfo) Descriptor {
	d := Descriptor{
		Symbol:   t.Symbol,
		Name:     t.Name,
		Decimals: t.Decimals,
	}
	if d.Symbol == "" {
		d.Symbol = "Unknown"
	}
	if d.Name == "" {
		d.Name = "Unknown Token"
	}
	if d.Decimals == 0 {
		d.Decimals = fallbackDecimals
	}
	return d
}
