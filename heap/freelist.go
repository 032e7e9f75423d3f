package heap

import (
	"math"
	"unsafe"
)

// binCount is the number of segregated free lists, L1 through L15.
const binCount = 15

// bin describes one segregated free list's admission rule. A block of a
// given size is classified into the first (smallest-index) bin whose rule
// it satisfies, scanning in table order — this single rule set is used
// both to pick the list a freed block is inserted into and to pick the
// starting list a fit search begins at (see fit.go), per spec: the two
// are the same classification.
type bin struct {
	upper int  // inclusive upper bound; math.MaxInt for the unbounded tail bin
	exact bool // true for the two size-specific bins (L4, L5)
}

// binTable builds the fifteen-entry bin table from Options. L1 (upper
// bound 12) can never hold a block — the minimum free block is 16 bytes —
// and is kept anyway: dropping it would change nothing observable, and
// the bin table is easier to read with all fifteen spec'd lists present.
func binTable(o Options) [binCount]bin {
	return [binCount]bin{
		{upper: 12, exact: false},               // L1 — vestigial, never matches
		{upper: 16, exact: false},                // L2
		{upper: 20, exact: false},                // L3
		{upper: o.ExactBinSizeA, exact: true},     // L4 (64)
		{upper: o.ExactBinSizeB, exact: true},     // L5 (112)
		{upper: 120, exact: false},                // L6
		{upper: 256, exact: false},                // L7
		{upper: 448, exact: false},                // L8
		{upper: 512, exact: false},                // L9
		{upper: 1024, exact: false},               // L10
		{upper: 2048, exact: false},               // L11
		{upper: 3072, exact: false},               // L12
		{upper: 4096, exact: false},               // L13
		{upper: 8192, exact: false},               // L14
		{upper: math.MaxInt, exact: false},        // L15
	}
}

// classify returns the index of the bin a block of the given size belongs
// to: the smallest-index bin whose rule the size satisfies. Used both to
// choose where a freed block is inserted and where a fit search starts.
func (h *Heap) classify(size int) int {
	for i, b := range h.bins {
		if b.exact {
			if size == b.upper {
				return i
			}
			continue
		}
		if size <= b.upper {
			return i
		}
	}
	// unreachable: the last bin's upper bound is math.MaxInt.
	return binCount - 1
}

// insertFree pushes hp onto the head of the list matching its own size.
// hp must already be written as a free block (see writeFreeBlock).
func (h *Heap) insertFree(hp unsafe.Pointer) {
	i := h.classify(blockSize(hp))
	setFreeListNext(hp, h.free[i])
	h.free[i] = hp
}

// deleteFree removes hp from the free list matching its given size. hp
// must currently be a member of that list. size is passed explicitly
// because callers sometimes need to delete a block using its size from
// before an in-place shrink (the coalescer, mid-merge).
func (h *Heap) deleteFree(hp unsafe.Pointer, size int) {
	i := h.classify(size)
	cur := h.free[i]
	if cur == hp {
		h.free[i] = freeListNext(hp)
		return
	}
	for cur != nil {
		next := freeListNext(cur)
		if next == hp {
			setFreeListNext(cur, freeListNext(hp))
			return
		}
		cur = next
	}
}
