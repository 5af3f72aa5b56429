package pkg

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

var ErrNoWaits = errors.New("race: nothing to wait on")

// Wait is one condition taking part in a Race. It must return once ctx is done.
type Wait[T any] func(ctx context.Context) (T, error)

type raceResult[T any] struct {
	index int
	value T
	err   error
}

// Race runs every wait concurrently and reports the first one to return,
// whether it succeeded or failed. The remaining waits are cancelled and
// joined before Race returns, so no goroutine outlives the call.
// If ctx is cancelled before any wait returns, the winner is -1.
func Race[T any](ctx context.Context, waits ...Wait[T]) (winner int, value T, err error) {
	if len(waits) == 0 {
		return -1, value, ErrNoWaits
	}

	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan raceResult[T], len(waits))
	var g errgroup.Group
	for i, wait := range waits {
		i, wait := i, wait
		g.Go(func() error {
			v, err := wait(raceCtx)
			results <- raceResult[T]{index: i, value: v, err: err}
			return nil
		})
	}

	select {
	case first := <-results:
		winner, value, err = first.index, first.value, first.err
	case <-ctx.Done():
		winner, err = -1, ctx.Err()
	}

	cancel()
	// Wait errors travel through results; g only joins the goroutines.
	_ = g.Wait()
	return winner, value, err
}
