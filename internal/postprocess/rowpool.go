package postprocess

import (
	"context"
	"runtime"
	"sync"

	"github.com/shellrec/shellrec/internal/workerpool"
)

// rowPool fans independent per-row (or per-column) convolution work out
// across a small worker pool instead of one goroutine per row, mirroring
// the pool C7 already uses to parallelize across whole frames. A fresh
// workerpool.Pool is spun up per pass since each pass's row count differs
// (horizontal passes iterate rows, vertical passes iterate columns) and a
// pool cannot accept submissions again once drained.
type rowPool struct {
	workers int
}

func newRowPool() *rowPool {
	workers := runtime.NumCPU()
	if workers < 1 {
		workers = 1
	}
	return &rowPool{workers: workers}
}

// forEachRow calls fn(i) for i in [0, n) and waits for every call to finish.
func (p *rowPool) forEachRow(n int, fn func(i int)) {
	pool := workerpool.New(p.workers, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		i := i
		if !pool.Submit(func() {
			defer wg.Done()
			fn(i)
		}) {
			// Queue briefly full: run inline rather than dropping the row.
			fn(i)
			wg.Done()
		}
	}
	wg.Wait()
	pool.StopAccepting()
	pool.Drain(context.Background())
}
