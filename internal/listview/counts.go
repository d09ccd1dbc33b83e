package listview

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Counts runs count once per id with at most limit queries in flight. The
// first failure cancels the rest and fails the whole call.
func Counts(ctx context.Context, ids []uint, limit int, count func(ctx context.Context, id uint) (int64, error)) (map[uint]int64, error) {
	out := make(map[uint]int64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	if limit < 1 {
		limit = 1
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			n, err := count(gctx, id)
			if err != nil {
				return err
			}
			mu.Lock()
			out[id] = n
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
