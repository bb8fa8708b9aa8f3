package batch

import (
	"context"
	"sync"
)

// ForEachMatch runs fn once per match ID with up to workers goroutines.
// Matches are independent units of work. The first error cancels the context
// handed to the remaining calls and is returned; calls that already
// completed stay committed.
func ForEachMatch(ctx context.Context, matchIDs []int64, workers int, fn func(ctx context.Context, matchID int64) error) error {
	if len(matchIDs) == 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers > len(matchIDs) {
		workers = len(matchIDs)
	}

	// Sequential path keeps strict match order for the default single worker.
	if workers == 1 {
		for _, id := range matchIDs {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(ctx, id); err != nil {
				return err
			}
		}
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := make(chan int64, len(matchIDs))
	for _, id := range matchIDs {
		ch <- id
	}
	close(ch)

	var (
		once     sync.Once
		firstErr error
		wg       sync.WaitGroup
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range ch {
				if ctx.Err() != nil {
					return
				}
				if err := fn(ctx, id); err != nil {
					once.Do(func() {
						firstErr = err
						cancel()
					})
					return
				}
			}
		}()
	}
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}
