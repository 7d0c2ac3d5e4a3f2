// internal/signer/signer.go
package signer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Interaction timeouts. Key retrieval is near-instant when a wallet is
// present, so a short timeout doubles as wallet detection. Signing waits for
// a human to click through the wallet's approval UI.
const (
	PublicKeyTimeout = 2 * time.Second
	SignTimeout      = 30 * time.Second
)

// ErrTimeout means the wallet did not answer in time. For key retrieval this
// usually means no wallet is installed or connected.
var ErrTimeout = errors.New("wallet not detected or not responding, reconnect and retry")

// Receipt is the outcome of a submitted transaction.
type Receipt struct {
	Signature   string
	ExplorerURL string
}

// Wallet is the external signer: an opaque request/response transport
// reduced to two async calls.
type Wallet interface {
	PublicKey(ctx context.Context) (string, error)
	SignAndSend(ctx context.Context, txBase64 string) (Receipt, error)
}

// ExplorerURL builds the explorer link for a transaction signature.
func ExplorerURL(signature string) string {
	return fmt.Sprintf("https://solana.fm/tx/%s?cluster=mainnet", signature)
}

// TimeoutWallet wraps a Wallet with per-call deadlines and maps deadline
// expiry to ErrTimeout.
type TimeoutWallet struct {
	inner  Wallet
	logger *zap.Logger

	publicKeyTimeout time.Duration
	signTimeout      time.Duration
}

// NewTimeoutWallet wraps inner with the standard interaction timeouts.
func NewTimeoutWallet(inner Wallet, logger *zap.Logger) *TimeoutWallet {
	return &TimeoutWallet{
		inner:            inner,
		logger:           logger.Named("signer"),
		publicKeyTimeout: PublicKeyTimeout,
		signTimeout:      SignTimeout,
	}
}

func (w *TimeoutWallet) PublicKey(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, w.publicKeyTimeout)
	defer cancel()

	key, err := w.inner.PublicKey(ctx)
	if err != nil {
		return "", w.classify("get public key", err)
	}
	return key, nil
}

func (w *TimeoutWallet) SignAndSend(ctx context.Context, txBase64 string) (Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, w.signTimeout)
	defer cancel()

	receipt, err := w.inner.SignAndSend(ctx, txBase64)
	if err != nil {
		return Receipt{}, w.classify("sign and send", err)
	}
	if receipt.ExplorerURL == "" {
		receipt.ExplorerURL = ExplorerURL(receipt.Signature)
	}
	w.logger.Info("transaction submitted", zap.String("signature", receipt.Signature))
	return receipt, nil
}

func (w *TimeoutWallet) classify(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		w.logger.Warn("wallet interaction timed out", zap.String("op", op))
		return ErrTimeout
	}
	return fmt.Errorf("%s: %w", op, err)
}

// request is one pending exchange over the bridge.
type request struct {
	kind    string // "publicKey" or "signAndSend"
	payload string
	reply   chan response
}

type response struct {
	value   string
	receipt Receipt
	err     error
}

// BridgeWallet adapts a message-passing transport (one request channel, one
// reply channel per request) to the Wallet interface. The remote side reads
// Requests and answers each request's reply channel exactly once.
type BridgeWallet struct {
	// Requests is consumed by the transport glue that talks to the actual
	// wallet process.
	requests chan request
}

// NewBridgeWallet creates an unconnected bridge. Serve must be driven by a
// transport before any call completes.
func NewBridgeWallet() *BridgeWallet {
	return &BridgeWallet{requests: make(chan request)}
}

// Serve runs handler for each incoming request until ctx is done. handler
// returns either a public key string or a receipt depending on the request
// kind. Intended to be run by the transport side, or by a fake in tests.
func (b *BridgeWallet) Serve(ctx context.Context, handler func(kind, payload string) (string, Receipt, error)) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-b.requests:
			value, receipt, err := handler(req.kind, req.payload)
			req.reply <- response{value: value, receipt: receipt, err: err}
		}
	}
}

func (b *BridgeWallet) exchange(ctx context.Context, kind, payload string) (response, error) {
	req := request{kind: kind, payload: payload, reply: make(chan response, 1)}
	select {
	case b.requests <- req:
	case <-ctx.Done():
		return response{}, ctx.Err()
	}
	select {
	case resp := <-req.reply:
		return resp, resp.err
	case <-ctx.Done():
		return response{}, ctx.Err()
	}
}

func (b *BridgeWallet) PublicKey(ctx context.Context) (string, error) {
	resp, err := b.exchange(ctx, "publicKey", "")
	if err != nil {
		return "", err
	}
	return resp.value, nil
}

func (b *BridgeWallet) SignAndSend(ctx context.Context, txBase64 string) (Receipt, error) {
	resp, err := b.exchange(ctx, "signAndSend", txBase64)
	if err != nil {
		return Receipt{}, err
	}
	return resp.receipt, nil
}
