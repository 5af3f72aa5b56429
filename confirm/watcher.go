package confirm

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/scatkit/jitobundle/pkg"
)

var ErrBlockHeightExceeded = errors.New("block height exceeded")

type Outcome int

const (
	Watching Outcome = iota
	Confirmed
	Expired
	Errored
)

func (o Outcome) String() string {
	switch o {
	case Watching:
		return "watching"
	case Confirmed:
		return "confirmed"
	case Expired:
		return "expired"
	case Errored:
		return "errored"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

type Result struct {
	Signature solana.Signature
	Outcome   Outcome
	Err       error
}

// Watcher races a signature confirmation against blockhash expiry.
// It only observes: it never retries or resubmits.
type Watcher struct {
	signatures SignatureWaiter
	expiry     ExpiryAwaiter
	commitment rpc.CommitmentType
	logger     *zap.Logger
}

func NewWatcher(signatures SignatureWaiter, expiry ExpiryAwaiter, commitment rpc.CommitmentType, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		signatures: signatures,
		expiry:     expiry,
		commitment: commitment,
		logger:     logger,
	}
}

const (
	confirmationWait = iota
	expiryWait
)

// Watch blocks until sig is confirmed, its blockhash expires, or a wait fails.
func (w *Watcher) Watch(ctx context.Context, sig solana.Signature, lastValidBlockHeight uint64) Result {
	winner, _, err := pkg.Race[struct{}](ctx,
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, w.signatures.AwaitSignature(ctx, sig, w.commitment)
		},
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, w.expiry.AwaitExpiry(ctx, lastValidBlockHeight)
		},
	)

	res := Result{Signature: sig}
	switch {
	case err != nil:
		res.Outcome, res.Err = Errored, err
	case winner == confirmationWait:
		res.Outcome = Confirmed
	case winner == expiryWait:
		res.Outcome = Expired
		res.Err = fmt.Errorf("signature %s: %w (last valid height %d)", sig, ErrBlockHeightExceeded, lastValidBlockHeight)
	}

	w.report(res)
	return res
}

func (w *Watcher) report(res Result) {
	switch res.Outcome {
	case Confirmed:
		w.logger.Info("transaction confirmed", zap.Stringer("signature", res.Signature), zap.String("commitment", string(w.commitment)))
	case Expired:
		w.logger.Warn("transaction expired before confirmation", zap.Stringer("signature", res.Signature), zap.Error(res.Err))
	default:
		w.logger.Error("unexpected error while confirming transaction", zap.Stringer("signature", res.Signature), zap.Error(res.Err))
	}
}

// Pending is a watch running in the background.
type Pending struct {
	done   chan struct{}
	cancel context.CancelFunc
	result Result
}

// Start launches Watch in its own goroutine and returns immediately.
func (w *Watcher) Start(ctx context.Context, sig solana.Signature, lastValidBlockHeight uint64) *Pending {
	ctx, cancel := context.WithCancel(ctx)
	p := &Pending{
		done:   make(chan struct{}),
		cancel: cancel,
		result: Result{Signature: sig, Outcome: Watching},
	}
	go func() {
		defer cancel()
		res := w.Watch(ctx, sig, lastValidBlockHeight)
		p.result = res
		close(p.done)
	}()
	return p
}

// Done is closed once the watch has settled.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Cancel aborts both waits. The watch settles as Errored unless it already finished.
func (p *Pending) Cancel() {
	p.cancel()
}

func (p *Pending) Wait() Result {
	<-p.done
	return p.result
}
