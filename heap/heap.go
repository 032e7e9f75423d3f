// Package heap implements a single-process dynamic storage allocator over
// a private, reserved arena: boundary-tag blocks, a segregated free-list
// index, and immediate coalescing, in the style of a textbook malloc built
// for a single thread at a time. A *Heap is not safe for concurrent use;
// callers that need concurrency run one Heap per worker (see package
// bench) rather than share one across goroutines.
package heap

import (
	"unsafe"

	"github.com/dsalloc/dsalloc/internal/sbrkheap"
)

// Stats reports running counters about a Heap's lifetime usage.
type Stats struct {
	BytesRequested uint64 // sum of every n passed to Alloc/Realloc/Zalloc
	BytesInUse     uint64 // payload bytes currently allocated
	HeapBytes      int64  // current size of the managed region, prologue to epilogue
	PeakHeapBytes  int64  // high-water mark of HeapBytes
	AllocCount     uint64
	FreeCount      uint64
	ExtendCount    uint64
}

// Heap is one allocator instance over one reserved arena.
type Heap struct {
	opts Options
	bins [binCount]bin

	arena *sbrkheap.Arena

	free     [binCount]unsafe.Pointer
	prologue unsafe.Pointer // header of the doubleword allocated sentinel block
	epilogue unsafe.Pointer // header of the zero-size allocated sentinel block

	stats          Stats
	checkFreeCount int // scratch, written by checkWalk and read by checkLists
}

// New constructs a Heap backed by a freshly reserved arena. A nil o uses
// DefaultOptions(). The arena is seeded with alignment padding, a prologue
// and an epilogue, then extended once by one chunk, exactly as a process
// image starts with an empty heap and grows it on first use.
func New(o *Options) (*Heap, error) {
	opts := DefaultOptions()
	if o != nil {
		opts = *o
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	arena, err := sbrkheap.New(opts.MaxHeapBytes)
	if err != nil {
		return nil, err
	}

	h := &Heap{
		opts:  opts,
		bins:  binTable(opts),
		arena: arena,
	}

	// Padding word (so the first real payload is doubleword-aligned),
	// prologue header+footer, epilogue header: 4 + 8 + 4 bytes.
	base, err := arena.Sbrk(2 * dwordSize)
	if err != nil {
		return nil, err
	}
	origin := h.ptr(base) // the padding word
	h.prologue = unsafe.Add(origin, wordSize)
	writeAllocBlock(h.prologue, dwordSize, true)
	setHdrWord(footerPtr(h.prologue, dwordSize), hdrWord(h.prologue))
	h.epilogue = unsafe.Add(h.prologue, dwordSize)
	writeAllocBlock(h.epilogue, 0, true)

	if _, err := h.extend(opts.ChunkSize / wordSize); err != nil {
		return nil, err
	}
	return h, nil
}

// ptr converts an arena-relative byte offset, as returned by Arena.Sbrk,
// into an absolute pointer into the arena's backing memory.
func (h *Heap) ptr(off int) unsafe.Pointer { return unsafe.Add(h.arena.Base(), off) }

// Close releases the Heap's arena. The Heap must not be used afterwards.
func (h *Heap) Close() error { return h.arena.Close() }

// Stats returns a snapshot of the Heap's running counters.
func (h *Heap) Stats() Stats { return h.stats }
