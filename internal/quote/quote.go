// internal/quote/quote.go
package quote

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xofe/mintpop/internal/cache"
	"github.com/xofe/mintpop/internal/mint"
	"github.com/xofe/mintpop/internal/upstream/jupiter"
)

// Swap modes accepted by the upstream aggregator.
const (
	ModeExactIn  = "ExactIn"
	ModeExactOut = "ExactOut"
)

// TTL is short on purpose: a quote is an exchange-rate promise, valid only
// briefly. It exists to coalesce bursts (a user re-rendering the same amount)
// rather than to avoid network traffic.
const TTL = 5 * time.Second

var (
	// ErrSameMint means input and output mints are identical.
	ErrSameMint = errors.New("input and output mints must differ")
	// ErrInvalidAmount means the amount is not a positive integer digit-string.
	ErrInvalidAmount = errors.New("amount must be a positive integer in base units")
	// ErrUnknownMode means the swap mode is neither ExactIn nor ExactOut.
	ErrUnknownMode = errors.New("unknown swap mode")
	// ErrWrongInputMint means ExactIn was requested with an input token other
	// than the configured reference asset.
	ErrWrongInputMint = errors.New("exact-in swaps must spend the reference asset")
	// ErrNoRouteFound translates the upstream "no route" response into
	// something a user can act on.
	ErrNoRouteFound = errors.New("no route found (pool not indexed yet or illiquid)")
	// ErrAmountMismatch means the upstream quote's inAmount does not equal the
	// requested amount. Such a quote must never reach a spend.
	ErrAmountMismatch = errors.New("quote input amount does not match requested amount")
)

var baseUnitsRe = regexp.MustCompile(`^\d+$`)

// API is the slice of the aggregator client the orchestrator needs.
type API interface {
	Quote(ctx context.Context, req jupiter.QuoteRequest) (*jupiter.Quote, error)
}

// Orchestrator validates quote parameters, fetches quotes through a short
// TTL cache keyed by the canonical request, and enforces the inAmount
// invariant before a quote is handed to any caller.
type Orchestrator struct {
	api           API
	cache         *cache.Cache[*jupiter.Quote]
	referenceMint string
	logger        *zap.Logger
}

// NewOrchestrator creates an orchestrator. referenceMint is the asset
// ExactIn swaps spend (the wrapped native mint in production).
func NewOrchestrator(api API, referenceMint string, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		api:           api,
		cache:         cache.New[*jupiter.Quote]("quote", TTL, false, logger),
		referenceMint: referenceMint,
		logger:        logger.Named("quote"),
	}
}

// Quote fetches a swap quote for amountBaseUnits of inputMint into
// outputMint. The returned quote always satisfies
// quote.InAmount == amountBaseUnits; callers that later spend against the
// quote are expected to re-check that anyway.
func (o *Orchestrator) Quote(ctx context.Context, inputMint, outputMint, amountBaseUnits, mode string, slippageBps int) (*jupiter.Quote, error) {
	if _, err := mint.Validate(inputMint); err != nil {
		return nil, fmt.Errorf("input mint: %w", err)
	}
	if _, err := mint.Validate(outputMint); err != nil {
		return nil, fmt.Errorf("output mint: %w", err)
	}
	if inputMint == outputMint {
		return nil, ErrSameMint
	}
	if !baseUnitsRe.MatchString(amountBaseUnits) || isZeroDigits(amountBaseUnits) {
		return nil, ErrInvalidAmount
	}
	switch mode {
	case ModeExactIn:
		if inputMint != o.referenceMint {
			return nil, ErrWrongInputMint
		}
	case ModeExactOut:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}

	req := jupiter.QuoteRequest{
		InputMint:   inputMint,
		OutputMint:  outputMint,
		Amount:      amountBaseUnits,
		SwapMode:    mode,
		SlippageBps: slippageBps,
	}

	q, err := o.cache.Get(ctx, req.CacheKey(), func(ctx context.Context) (*jupiter.Quote, error) {
		return o.api.Quote(ctx, req)
	})
	if err != nil {
		return nil, translateError(err)
	}

	if q.InAmount != amountBaseUnits {
		o.logger.Warn("rejecting quote with mismatched input amount",
			zap.String("requested", amountBaseUnits),
			zap.String("quoted", q.InAmount))
		return nil, fmt.Errorf("%w: requested %s, quoted %s", ErrAmountMismatch, amountBaseUnits, q.InAmount)
	}

	o.logger.Debug("quote fetched",
		zap.String("input_mint", inputMint),
		zap.String("output_mint", outputMint),
		zap.String("in_amount", q.InAmount),
		zap.String("out_amount", q.OutAmount))
	return q, nil
}

// translateError maps known upstream failures to friendlier classifications.
func translateError(err error) error {
	var ue *jupiter.UpstreamError
	if errors.As(err, &ue) && strings.Contains(ue.Message, "Could not find any route") {
		return ErrNoRouteFound
	}
	return err
}

func isZeroDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != '0' {
			return false
		}
	}
	return true
}
