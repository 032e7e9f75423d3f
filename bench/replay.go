package bench

import "time"

// Result reports how one allocator fared replaying one trace.
type Result struct {
	Allocator     string
	Ops           int
	Duration      time.Duration
	OpsPerSec     float64
	Allocs        int
	Frees         int
	Reallocs      int
	FailedAllocs  int // Alloc returned nil — out of memory or rejected request
	PeakLiveBytes int64
}

// Replay drives a through every operation in tr, in order, and measures
// wall-clock throughput and the peak number of live payload bytes held at
// once. A failed allocation (nil result) is counted and the trace
// continues — a realistic allocator may be asked for more than a fixed
// arena can give, and the rest of the trace should still run.
func Replay(name string, a Allocator, tr *Trace) Result {
	live := make(map[int][]byte, tr.Len())
	var liveBytes, peak int64
	var allocs, frees, reallocs, failed int

	start := time.Now()
	tr.Do(func(op *Op) {
		switch op.Kind {
		case OpAlloc:
			allocs++
			b := a.Alloc(op.Size)
			if b == nil {
				failed++
				return
			}
			live[op.ID] = b
			liveBytes += int64(len(b))
			if liveBytes > peak {
				peak = liveBytes
			}

		case OpFree:
			frees++
			b, ok := live[op.Ref]
			if !ok {
				return
			}
			a.Free(b)
			liveBytes -= int64(len(b))
			delete(live, op.Ref)

		case OpRealloc:
			reallocs++
			if old, ok := live[op.Ref]; ok {
				a.Free(old)
				liveBytes -= int64(len(old))
				delete(live, op.Ref)
			}
			b := a.Alloc(op.Size)
			if b == nil {
				failed++
				return
			}
			live[op.ID] = b
			liveBytes += int64(len(b))
			if liveBytes > peak {
				peak = liveBytes
			}
		}
	})
	dur := time.Since(start)

	ops := allocs + frees + reallocs
	var opsPerSec float64
	if dur > 0 {
		opsPerSec = float64(ops) / dur.Seconds()
	}

	return Result{
		Allocator:     name,
		Ops:           ops,
		Duration:      dur,
		OpsPerSec:     opsPerSec,
		Allocs:        allocs,
		Frees:         frees,
		Reallocs:      reallocs,
		FailedAllocs:  failed,
		PeakLiveBytes: peak,
	}
}
