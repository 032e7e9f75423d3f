package heap

import (
	"fmt"

	"github.com/dsalloc/dsalloc/internal/xfnv"
)

// Abort is called, in addition to Check returning a non-nil error, whenever
// an invariant violation is found. It defaults to panic and exists so
// tests can intercept a violation without crashing the test binary.
var Abort = func(msg string) { panic(msg) }

// Check walks the entire block sequence and every free list, verifying the
// invariants a correct heap must hold at any quiescent point (never mid-call):
// alignment, free-block header/footer agreement, no two adjacent free
// blocks, prologue/epilogue intact, next(B).prev_alloc == B.alloc for every
// block, and that the heap-walk free count matches the list-walk free
// count. lineno is folded into the diagnostic only, identifying the call
// site (the teacher's style of a debug-build checker invoked with
// __LINE__; here it's just whatever the caller passes).
func (h *Heap) Check(lineno int) error {
	if err := h.checkWalk(); err != nil {
		return h.fail(lineno, err)
	}
	if err := h.checkLists(); err != nil {
		return h.fail(lineno, err)
	}
	return nil
}

func (h *Heap) fail(lineno int, cause error) error {
	digest := h.digest()
	msg := fmt.Sprintf("heap: invariant violation at check(%d): %v [digest=%x]", lineno, cause, digest)
	Abort(msg)
	return fmt.Errorf("%s", msg)
}

func (h *Heap) checkWalk() error {
	hp := h.prologue
	if blockSize(hp) != dwordSize || !blockAlloc(hp) {
		return fmt.Errorf("prologue corrupt: size=%d alloc=%v", blockSize(hp), blockAlloc(hp))
	}
	if hdrWord(hp) != hdrWord(footerPtr(hp, dwordSize)) {
		return fmt.Errorf("prologue header/footer mismatch")
	}

	walkFreeCount := 0
	prevFree := false

	for {
		size := blockSize(hp)
		if size%dwordSize != 0 {
			return fmt.Errorf("block at %p has unaligned size %d", hp, size)
		}
		if uintptr(payloadPtr(hp))%dwordSize != 0 {
			return fmt.Errorf("block at %p has unaligned payload", hp)
		}

		alloc := blockAlloc(hp)
		if !alloc {
			if prevFree {
				return fmt.Errorf("two adjacent free blocks at or before %p", hp)
			}
			if hdrWord(hp) != hdrWord(footerPtr(hp, size)) {
				return fmt.Errorf("free block at %p: header/footer mismatch", hp)
			}
			walkFreeCount++
		}

		if hp == h.epilogue {
			break
		}

		next := nextBlock(hp)
		if blockPrevAlloc(next) != alloc {
			return fmt.Errorf("block at %p: next.prev_alloc does not match this block's alloc bit", hp)
		}

		prevFree = !alloc
		hp = next
	}

	if blockSize(h.epilogue) != 0 || !blockAlloc(h.epilogue) {
		return fmt.Errorf("epilogue corrupt: size=%d alloc=%v", blockSize(h.epilogue), blockAlloc(h.epilogue))
	}

	h.checkFreeCount = walkFreeCount
	return nil
}

func (h *Heap) checkLists() error {
	lo := h.ptr(h.arena.Lo())
	hi := h.ptr(h.arena.Hi())

	listFreeCount := 0
	for i := 0; i < binCount; i++ {
		b := h.bins[i]
		for hp := h.free[i]; hp != nil; hp = freeListNext(hp) {
			if uintptr(hp) < uintptr(lo) || uintptr(hp) >= uintptr(hi) {
				return fmt.Errorf("list %d: block at %p out of heap range", i, hp)
			}
			if blockAlloc(hp) {
				return fmt.Errorf("list %d: block at %p is marked allocated", i, hp)
			}
			size := blockSize(hp)
			if b.exact {
				if size != b.upper {
					return fmt.Errorf("list %d: block at %p has size %d, want exactly %d", i, hp, size, b.upper)
				}
			} else if size > b.upper {
				return fmt.Errorf("list %d: block at %p has size %d exceeding bound %d", i, hp, size, b.upper)
			}
			listFreeCount++
		}
	}

	if listFreeCount != h.checkFreeCount {
		return fmt.Errorf("free count mismatch: heap walk found %d, list walk found %d", h.checkFreeCount, listFreeCount)
	}
	return nil
}

// digest folds every header and footer word in the heap into one number,
// purely to make two corrupt-heap diagnostics distinguishable from each
// other in a log; it proves nothing and is never compared across runs.
func (h *Heap) digest() uint64 {
	hp := h.prologue
	var words []byte
	for {
		size := blockSize(hp)
		words = append(words, (*[4]byte)(hp)[:]...)
		if !blockAlloc(hp) && size > 0 {
			words = append(words, (*[4]byte)(footerPtr(hp, size))[:]...)
		}
		if hp == h.epilogue {
			break
		}
		hp = nextBlock(hp)
	}
	return xfnv.Hash(words)
}
