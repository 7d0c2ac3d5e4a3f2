// internal/swap/gate.go
package swap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/xofe/mintpop/internal/amount"
	"github.com/xofe/mintpop/internal/upstream/jupiter"
)

var (
	// ErrAmountMismatch means the user's current input no longer matches the
	// quote they are confirming. The confirmation is dead; a fresh quote is
	// required. Silently substituting the new amount into the old quote
	// would authorize an unintended spend.
	ErrAmountMismatch = errors.New("amount changed since quote, fetch a new quote")
	// ErrInvalidPublicKey means the signer public key is not a valid key.
	ErrInvalidPublicKey = errors.New("invalid signer public key")
)

// Builder turns a verified quote into an unsigned transaction. Implemented
// by the aggregator client.
type Builder interface {
	BuildSwap(ctx context.Context, quote json.RawMessage, userPublicKey string) (string, error)
}

// Gate is the last check before a spend. It recomputes the base-unit amount
// from the user's input at confirmation time and refuses to build a
// transaction against a quote for any other amount. All failures are
// terminal for the attempt; there is no retry here.
type Gate struct {
	builder Builder
	logger  *zap.Logger
}

// NewGate creates a confirmation gate around the given transaction builder.
func NewGate(builder Builder, logger *zap.Logger) *Gate {
	return &Gate{builder: builder, logger: logger.Named("swap")}
}

// ConfirmAndBuild verifies that q still quotes exactly the amount the user
// has typed, then requests an unsigned transaction for signerPublicKey.
// Returns the base64 transaction blob from the builder unmodified.
func (g *Gate) ConfirmAndBuild(ctx context.Context, q *jupiter.Quote, currentAmount string, decimals int, signerPublicKey string) (string, error) {
	if _, err := solana.PublicKeyFromBase58(signerPublicKey); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}

	expected, err := amount.ToBaseUnits(currentAmount, decimals)
	if err != nil {
		return "", fmt.Errorf("recompute amount: %w", err)
	}
	if expected != q.InAmount {
		g.logger.Warn("blocking confirmation on stale quote",
			zap.String("expected", expected),
			zap.String("quoted", q.InAmount))
		return "", fmt.Errorf("%w: expected %s, quote has %s", ErrAmountMismatch, expected, q.InAmount)
	}

	tx, err := g.builder.BuildSwap(ctx, q.Raw, signerPublicKey)
	if err != nil {
		return "", fmt.Errorf("build swap: %w", err)
	}
	g.logger.Info("swap transaction built",
		zap.String("in_amount", q.InAmount),
		zap.String("out_amount", q.OutAmount))
	return tx, nil
}
