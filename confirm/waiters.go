package confirm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"
)

var ErrHeartbeatStopped = errors.New("block height heartbeat stopped")

// TransactionError is reported when the signature was observed but the transaction failed on chain.
type TransactionError struct {
	Signature solana.Signature
	Err       interface{}
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction %s failed: %v", e.Signature, e.Err)
}

type SignatureWaiter interface {
	AwaitSignature(ctx context.Context, sig solana.Signature, commitment rpc.CommitmentType) error
}

type ExpiryAwaiter interface {
	AwaitExpiry(ctx context.Context, lastValidBlockHeight uint64) error
}

// WSSignatureWaiter waits for a signature notification on a websocket subscription.
type WSSignatureWaiter struct {
	Client *ws.Client
}

func (w *WSSignatureWaiter) AwaitSignature(ctx context.Context, sig solana.Signature, commitment rpc.CommitmentType) error {
	sub, err := w.Client.SignatureSubscribe(sig, commitment)
	if err != nil {
		return fmt.Errorf("signature subscribe: %w", err)
	}
	defer sub.Unsubscribe()

	result, err := sub.Recv(ctx)
	if err != nil {
		return err
	}
	if result != nil && result.Value.Err != nil {
		return &TransactionError{Signature: sig, Err: result.Value.Err}
	}
	return nil
}

type BlockHeightGetter interface {
	GetBlockHeight(ctx context.Context, commitment rpc.CommitmentType) (uint64, error)
}

// Heartbeat signals that the chain may have advanced. The channel closes when the source stops.
type Heartbeat interface {
	Beats(ctx context.Context) (<-chan struct{}, error)
}

type TickerHeartbeat struct {
	Interval time.Duration
}

func (h TickerHeartbeat) Beats(ctx context.Context) (<-chan struct{}, error) {
	if h.Interval <= 0 {
		return nil, fmt.Errorf("invalid heartbeat interval %v", h.Interval)
	}
	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		ticker := time.NewTicker(h.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()
	return out, nil
}

// SlotHeartbeat beats on every slot notification.
type SlotHeartbeat struct {
	Client *ws.Client
}

func (h *SlotHeartbeat) Beats(ctx context.Context) (<-chan struct{}, error) {
	sub, err := h.Client.SlotSubscribe()
	if err != nil {
		return nil, fmt.Errorf("slot subscribe: %w", err)
	}
	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer sub.Unsubscribe()
		for {
			if _, err := sub.Recv(ctx); err != nil {
				return
			}
			select {
			case out <- struct{}{}:
			default:
			}
		}
	}()
	return out, nil
}

// BlockHeightWaiter returns once the chain's block height passes lastValidBlockHeight.
type BlockHeightWaiter struct {
	Heights    BlockHeightGetter
	Heartbeat  Heartbeat
	Commitment rpc.CommitmentType
}

func (w *BlockHeightWaiter) AwaitExpiry(ctx context.Context, lastValidBlockHeight uint64) error {
	beats, err := w.Heartbeat.Beats(ctx)
	if err != nil {
		return err
	}

	for {
		height, err := w.Heights.GetBlockHeight(ctx, w.Commitment)
		if err != nil {
			return fmt.Errorf("get block height: %w", err)
		}
		if height > lastValidBlockHeight {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-beats:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return ErrHeartbeatStopped
			}
		}
	}
}
