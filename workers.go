package pointcloud

import "golang.org/x/sync/errgroup"

// minChunk is the smallest index range worth handing to its own goroutine.
const minChunk = 512

// forEachChunk calls fn over [0, n) split into at most workers disjoint
// ranges. Each index belongs to exactly one range, so fn may write its own
// slots without locking. Runs inline when workers <= 1 or n is small.
func forEachChunk(workers, n int, fn func(lo, hi int)) {
	if n <= 0 {
		return
	}
	if workers <= 1 || n < 2*minChunk {
		fn(0, n)
		return
	}
	chunk := max((n+workers-1)/workers, minChunk)

	var g errgroup.Group
	g.SetLimit(workers)
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() error {
			fn(lo, hi)
			return nil
		})
	}
	_ = g.Wait()
}
