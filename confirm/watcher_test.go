package confirm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// gate blocks a wait until it is released or its context ends.
type gate struct {
	release   chan error
	mu        sync.Mutex
	cancelled bool
}

func newGate() *gate {
	return &gate{release: make(chan error, 1)}
}

func (g *gate) wait(ctx context.Context) error {
	select {
	case err := <-g.release:
		return err
	case <-ctx.Done():
		g.mu.Lock()
		g.cancelled = true
		g.mu.Unlock()
		return ctx.Err()
	}
}

func (g *gate) wasCancelled() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cancelled
}

type fakeSignatures struct {
	*gate
	sig        solana.Signature
	commitment rpc.CommitmentType
}

func (f *fakeSignatures) AwaitSignature(ctx context.Context, sig solana.Signature, commitment rpc.CommitmentType) error {
	f.sig, f.commitment = sig, commitment
	return f.wait(ctx)
}

type fakeExpiry struct {
	*gate
	lastValid uint64
}

func (f *fakeExpiry) AwaitExpiry(ctx context.Context, lastValidBlockHeight uint64) error {
	f.lastValid = lastValidBlockHeight
	return f.wait(ctx)
}

var testSig = solana.Signature{1, 2, 3, 4}

func newTestWatcher(t *testing.T) (*Watcher, *fakeSignatures, *fakeExpiry, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	sigs := &fakeSignatures{gate: newGate()}
	exp := &fakeExpiry{gate: newGate()}
	return NewWatcher(sigs, exp, rpc.CommitmentConfirmed, zap.New(core)), sigs, exp, logs
}

func TestWatchConfirmedFirst(t *testing.T) {
	w, sigs, exp, logs := newTestWatcher(t)
	sigs.release <- nil

	res := w.Watch(context.Background(), testSig, 500)
	assert.Equal(t, Confirmed, res.Outcome)
	assert.Equal(t, testSig, res.Signature)
	assert.NoError(t, res.Err)
	assert.Equal(t, testSig, sigs.sig)
	assert.Equal(t, rpc.CommitmentConfirmed, sigs.commitment)
	assert.True(t, exp.wasCancelled(), "expiry wait is cancelled once confirmation wins")
	assert.Equal(t, 1, logs.FilterMessage("transaction confirmed").Len())
}

func TestWatchExpiredFirst(t *testing.T) {
	w, sigs, exp, logs := newTestWatcher(t)
	exp.release <- nil

	res := w.Watch(context.Background(), testSig, 500)
	assert.Equal(t, Expired, res.Outcome)
	assert.ErrorIs(t, res.Err, ErrBlockHeightExceeded)
	assert.Equal(t, uint64(500), exp.lastValid)
	assert.True(t, sigs.wasCancelled())
	assert.Equal(t, 1, logs.FilterMessage("transaction expired before confirmation").Len())
}

func TestWatchUnexpectedError(t *testing.T) {
	w, sigs, _, logs := newTestWatcher(t)
	boom := errors.New("websocket closed")
	sigs.release <- boom

	res := w.Watch(context.Background(), testSig, 500)
	assert.Equal(t, Errored, res.Outcome)
	assert.ErrorIs(t, res.Err, boom)
	assert.NotErrorIs(t, res.Err, ErrBlockHeightExceeded)
	assert.Equal(t, 1, logs.FilterLevelExact(zap.ErrorLevel).Len())
}

func TestWatchTransactionFailure(t *testing.T) {
	w, sigs, _, _ := newTestWatcher(t)
	sigs.release <- &TransactionError{Signature: testSig, Err: map[string]any{"InstructionError": []any{0, "Custom"}}}

	res := w.Watch(context.Background(), testSig, 500)
	assert.Equal(t, Errored, res.Outcome)
	var txErr *TransactionError
	assert.ErrorAs(t, res.Err, &txErr)
}

func TestStartDoesNotBlock(t *testing.T) {
	w, sigs, _, _ := newTestWatcher(t)

	pending := w.Start(context.Background(), testSig, 500)
	select {
	case <-pending.Done():
		t.Fatal("watch settled before any wait resolved")
	default:
	}

	sigs.release <- nil
	res := pending.Wait()
	assert.Equal(t, Confirmed, res.Outcome)

	select {
	case <-pending.Done():
	default:
		t.Fatal("done should be closed after Wait")
	}
}

func TestPendingCancelAbortsBothWaits(t *testing.T) {
	w, sigs, exp, _ := newTestWatcher(t)

	pending := w.Start(context.Background(), testSig, 500)
	pending.Cancel()
	res := pending.Wait()

	assert.Equal(t, Errored, res.Outcome)
	assert.ErrorIs(t, res.Err, context.Canceled)
	assert.True(t, sigs.wasCancelled())
	assert.True(t, exp.wasCancelled())
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "watching", Watching.String())
	assert.Equal(t, "confirmed", Confirmed.String())
	assert.Equal(t, "expired", Expired.String())
	assert.Equal(t, "errored", Errored.String())
	assert.Equal(t, "Outcome(9)", Outcome(9).String())
}

type fakeHeights struct {
	mu      sync.Mutex
	heights []uint64
	calls   int
	err     error
}

func (f *fakeHeights) GetBlockHeight(ctx context.Context, commitment rpc.CommitmentType) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	h := f.heights[min(f.calls, len(f.heights)-1)]
	f.calls++
	return h, nil
}

type chanHeartbeat chan struct{}

func (c chanHeartbeat) Beats(ctx context.Context) (<-chan struct{}, error) {
	return c, nil
}

func TestBlockHeightWaiterReturnsPastLastValid(t *testing.T) {
	beats := make(chanHeartbeat, 3)
	for i := 0; i < 3; i++ {
		beats <- struct{}{}
	}
	heights := &fakeHeights{heights: []uint64{10, 11, 12}}
	w := &BlockHeightWaiter{Heights: heights, Heartbeat: beats, Commitment: rpc.CommitmentConfirmed}

	require.NoError(t, w.AwaitExpiry(context.Background(), 11))
	assert.Equal(t, 3, heights.calls, "height equal to last valid is still valid")
}

func TestBlockHeightWaiterPropagatesRPCError(t *testing.T) {
	boom := errors.New("connection refused")
	w := &BlockHeightWaiter{Heights: &fakeHeights{err: boom}, Heartbeat: make(chanHeartbeat)}

	assert.ErrorIs(t, w.AwaitExpiry(context.Background(), 11), boom)
}

func TestBlockHeightWaiterHeartbeatStopped(t *testing.T) {
	beats := make(chanHeartbeat)
	close(beats)
	w := &BlockHeightWaiter{Heights: &fakeHeights{heights: []uint64{1}}, Heartbeat: beats}

	assert.ErrorIs(t, w.AwaitExpiry(context.Background(), 11), ErrHeartbeatStopped)
}

func TestBlockHeightWaiterCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w := &BlockHeightWaiter{Heights: &fakeHeights{heights: []uint64{1}}, Heartbeat: make(chanHeartbeat)}

	assert.ErrorIs(t, w.AwaitExpiry(ctx, 11), context.Canceled)
}

func TestTickerHeartbeat(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	beats, err := TickerHeartbeat{Interval: time.Millisecond}.Beats(ctx)
	require.NoError(t, err)

	select {
	case <-beats:
	case <-time.After(time.Second):
		t.Fatal("no beat")
	}

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-beats:
			return !ok
		default:
			return false
		}
	}, time.Second, time.Millisecond)

	_, err = TickerHeartbeat{}.Beats(context.Background())
	assert.Error(t, err)
}

func TestWatcherWithBlockHeightWaiter(t *testing.T) {
	sigs := &fakeSignatures{gate: newGate()}
	expiry := &BlockHeightWaiter{
		Heights:   &fakeHeights{heights: []uint64{100, 200, 301}},
		Heartbeat: TickerHeartbeat{Interval: time.Millisecond},
	}
	w := NewWatcher(sigs, expiry, rpc.CommitmentConfirmed, nil)

	res := w.Watch(context.Background(), testSig, 300)
	assert.Equal(t, Expired, res.Outcome)
	assert.True(t, sigs.wasCancelled())
}
