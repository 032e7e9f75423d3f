package bench

import (
	"github.com/bytedance/gopkg/lang/mcache"

	"github.com/dsalloc/dsalloc/cache/mempool"
	"github.com/dsalloc/dsalloc/heap"
	"github.com/dsalloc/dsalloc/internal/hack"
	"github.com/dsalloc/dsalloc/unsafex/malloc"
)

// HeapAllocator adapts *heap.Heap's unsafe.Pointer-based API to the
// []byte-based Allocator interface every comparator in this package
// shares, so the same replay loop can drive any of them.
type HeapAllocator struct {
	H *heap.Heap
}

// NewHeapAllocator builds the allocator under test, backed by a freshly
// reserved arena sized by opts (nil for heap.DefaultOptions()).
func NewHeapAllocator(opts *heap.Options) (*HeapAllocator, error) {
	h, err := heap.New(opts)
	if err != nil {
		return nil, err
	}
	return &HeapAllocator{H: h}, nil
}

func (a *HeapAllocator) Alloc(size int) []byte {
	p := a.H.Alloc(size)
	if p == nil {
		return nil
	}
	return hack.MakeSlice(p, size, size)
}

func (a *HeapAllocator) Free(block []byte) {
	if len(block) == 0 {
		return
	}
	a.H.Free(hack.DataPtr(block))
}

func (a *HeapAllocator) Close() error { return a.H.Close() }

// MempoolAllocator wraps the sync.Pool-backed, power-of-two size-classed
// allocator in package mempool: Go's own GC and allocator doing the work,
// compared head to head against heap's hand-managed arena.
type MempoolAllocator struct{}

func (MempoolAllocator) Alloc(size int) []byte { return mempool.Malloc(size) }
func (MempoolAllocator) Free(block []byte)     { mempool.Free(block) }

// McacheAllocator wraps bytedance/gopkg's size-classed byte cache, a
// second, independently-tuned take on the same GC-backed strategy as
// MempoolAllocator.
type McacheAllocator struct{}

func (McacheAllocator) Alloc(size int) []byte { return mcache.Malloc(size) }
func (McacheAllocator) Free(block []byte)     { mcache.Free(block) }

// NewBuddyAllocator builds a power-of-two buddy-system comparator over its
// own arena. *malloc.BuddyAllocator already satisfies Allocator.
func NewBuddyAllocator(arenaSize int) (*malloc.BuddyAllocator, error) {
	return malloc.NewBuddyAllocator(make([]byte, arenaSize))
}

// NewBitmapAllocator builds a fixed-block bitmap comparator over its own
// arena. *malloc.BitmapAllocator already satisfies Allocator.
func NewBitmapAllocator(arenaSize int) (*malloc.BitmapAllocator, error) {
	return malloc.NewBitmapAllocator(make([]byte, arenaSize))
}
