// internal/session/session.go
package session

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xofe/mintpop/internal/amount"
	"github.com/xofe/mintpop/internal/chart"
	"github.com/xofe/mintpop/internal/logger"
	"github.com/xofe/mintpop/internal/price"
	"github.com/xofe/mintpop/internal/quote"
	"github.com/xofe/mintpop/internal/sequence"
	"github.com/xofe/mintpop/internal/signer"
	"github.com/xofe/mintpop/internal/token"
	"github.com/xofe/mintpop/internal/upstream/jupiter"
)

// referenceDecimals is the decimal count of the reference asset the buy flow
// spends (wrapped SOL).
const referenceDecimals = 9

var (
	// ErrClosed means the popup behind this session is gone; the result must
	// be discarded, not rendered.
	ErrClosed = errors.New("session closed")
	// ErrStale means a newer request was issued before this one completed.
	ErrStale = errors.New("request superseded by a newer one")
	// ErrNoQuote means Buy was called before any successful quote.
	ErrNoQuote = errors.New("no quote fetched yet")
)

// Tokens resolves token metadata. Descriptor lookup never fails; it degrades
// to a synthesized placeholder.
type Tokens interface {
	Get(ctx context.Context, mintAddress string) token.Descriptor
}

// Prices resolves the USD/reference price snapshot for a mint.
type Prices interface {
	Get(ctx context.Context, mintAddress string) (price.Snapshot, error)
}

// Charts resolves the 24h series and volume for a mint.
type Charts interface {
	GetSeries(ctx context.Context, mintAddress, interval string) (chart.Series, error)
	Volume24h(ctx context.Context, mintAddress string) (float64, error)
}

// Quoter fetches validated swap quotes.
type Quoter interface {
	Quote(ctx context.Context, inputMint, outputMint, amountBaseUnits, mode string, slippageBps int) (*jupiter.Quote, error)
}

// Confirmer is the swap confirmation gate.
type Confirmer interface {
	ConfirmAndBuild(ctx context.Context, q *jupiter.Quote, currentAmount string, decimals int, signerPublicKey string) (string, error)
}

// Snapshot is everything a freshly opened popup renders.
type Snapshot struct {
	Token  token.Descriptor
	Price  price.Snapshot
	Series chart.Series // empty when no liquid pool exists
	Volume float64      // zero when no liquid pool exists
}

// Deps are the collaborators a session needs.
type Deps struct {
	Tokens        Tokens
	Prices        Prices
	Charts        Charts
	Quoter        Quoter
	Gate          Confirmer
	Wallet        signer.Wallet
	ReferenceMint string
	Logger        *zap.Logger
}

// Session is the state of one open popup for one token. Quote requests are
// tagged with a per-session sequence id so a slow response never overwrites
// a fresher one, and closing the session discards everything still in
// flight.
type Session struct {
	mint string
	deps Deps
	seq  sequence.Sequencer

	mu        sync.Mutex
	closed    bool
	lastQuote *jupiter.Quote
}

// New opens a session for the given mint.
func New(mintAddress string, deps Deps) *Session {
	return &Session{
		mint: mintAddress,
		deps: deps,
	}
}

// Mint returns the token this session is about.
func (s *Session) Mint() string { return s.mint }

// Load fetches everything the popup shows up front. Metadata, price, chart
// and volume are fetched concurrently. A missing chart (no liquid pool, or a
// chart upstream failure) is not fatal; a missing price is.
func (s *Session) Load(ctx context.Context) (Snapshot, error) {
	var snap Snapshot

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		snap.Token = s.deps.Tokens.Get(ctx, s.mint)
		return nil
	})
	g.Go(func() error {
		p, err := s.deps.Prices.Get(ctx, s.mint)
		if err != nil {
			return err
		}
		snap.Price = p
		return nil
	})
	g.Go(func() error {
		series, err := s.deps.Charts.GetSeries(ctx, s.mint, "minute")
		if err != nil {
			s.deps.Logger.Debug("chart unavailable", zap.String("mint", s.mint), zap.Error(err))
			return nil
		}
		snap.Series = series
		return nil
	})
	g.Go(func() error {
		vol, err := s.deps.Charts.Volume24h(ctx, s.mint)
		if err != nil {
			return nil
		}
		snap.Volume = vol
		return nil
	})

	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	if s.isClosed() {
		return Snapshot{}, ErrClosed
	}
	return snap, nil
}

// RequestQuote converts the user-typed reference-asset amount and fetches a
// quote for it. The result is returned only if no newer request was issued
// while this one was in flight and the session is still open; otherwise the
// completed response is discarded with ErrStale/ErrClosed. A successful
// quote is remembered for Buy.
func (s *Session) RequestQuote(ctx context.Context, amountStr string, slippageBps int) (*jupiter.Quote, error) {
	id := s.seq.Next()

	baseUnits, err := amount.ToBaseUnits(amountStr, referenceDecimals)
	if err != nil {
		return nil, err
	}

	q, err := s.deps.Quoter.Quote(ctx, s.deps.ReferenceMint, s.mint, baseUnits, quote.ModeExactIn, slippageBps)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	if !s.seq.IsLatest(id) {
		return nil, ErrStale
	}
	if err != nil {
		return nil, err
	}
	s.lastQuote = q
	return q, nil
}

// Buy confirms the last quote against the amount currently in the input box
// and, if it still matches, signs and submits the built transaction. Every
// log line of one buy shares a correlation id.
func (s *Session) Buy(ctx context.Context, currentAmount string) (signer.Receipt, error) {
	s.mu.Lock()
	q := s.lastQuote
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return signer.Receipt{}, ErrClosed
	}
	if q == nil {
		return signer.Receipt{}, ErrNoQuote
	}

	opLog := logger.Operation(s.deps.Logger, "buy").With(zap.String("mint", s.mint))

	pubkey, err := s.deps.Wallet.PublicKey(ctx)
	if err != nil {
		opLog.Warn("wallet public key unavailable", zap.Error(err))
		return signer.Receipt{}, err
	}

	tx, err := s.deps.Gate.ConfirmAndBuild(ctx, q, currentAmount, referenceDecimals, pubkey)
	if err != nil {
		opLog.Warn("buy rejected at confirmation", zap.Error(err))
		return signer.Receipt{}, err
	}

	receipt, err := s.deps.Wallet.SignAndSend(ctx, tx)
	if err != nil {
		opLog.Warn("signing failed", zap.Error(err))
		return signer.Receipt{}, err
	}
	opLog.Info("buy executed", zap.String("signature", receipt.Signature))
	return receipt, nil
}

// Close ends the session: pending completions are discarded and the
// sequencer resets so ids are never reused across popups.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.lastQuote = nil
	s.seq.Reset()
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
