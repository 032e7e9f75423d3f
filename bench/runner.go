package bench

import (
	"fmt"
	"sync"
	"time"

	"github.com/dsalloc/dsalloc/concurrency/gopool"
)

// RunConcurrent replays the same trace through n independently-constructed
// allocators at once, one per goroutine dispatched through a gopool.GoPool,
// and returns one Result per worker in no particular order. newAllocator is
// called once per worker — never share one Allocator across workers, since
// the heap, buddy and bitmap comparators in this package are not safe for
// concurrent use.
func RunConcurrent(name string, n int, newAllocator func() (Allocator, error), tr *Trace) ([]Result, error) {
	if n <= 0 {
		return nil, fmt.Errorf("bench: n must be > 0, got %d", n)
	}

	pool := gopool.NewGoPool(fmt.Sprintf("bench-%s", name), &gopool.Option{
		MaxIdleWorkers: n,
		WorkerMaxAge:   time.Minute,
		TaskChanBuffer: n,
	})

	results := make([]Result, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	wg.Add(n)

	for i := 0; i < n; i++ {
		i := i
		pool.Go(func() {
			defer wg.Done()
			a, err := newAllocator()
			if err != nil {
				errs[i] = err
				return
			}
			results[i] = Replay(fmt.Sprintf("%s[%d]", name, i), a, tr)
			if c, ok := a.(Closer); ok {
				errs[i] = c.Close()
			}
		})
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return results, err
		}
	}
	return results, nil
}
