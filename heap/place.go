package heap

import "unsafe"

// place carves an asize-byte allocation out of the free block at hp, which
// must already have been removed from its free list by the caller. It
// returns the header pointer of the resulting allocated block — which is
// hp itself unless the large-request branch below shifts the allocation to
// the block's high address.
//
// Below SplitThreshold bytes, the allocation is placed at hp's low address
// and any remainder becomes a new free block above it; this keeps small,
// frequently-churned allocations at stable low addresses. At or above
// SplitThreshold, the allocation is placed at hp's high address instead,
// and the untouched low-address remainder stays free and back in its bin
// without having to move — right-sizing for a large request that is
// unlikely to be reused, without paging in memory it won't touch on the
// low end.
//
// If the remainder in either case would be smaller than minBlockSize, the
// whole block is allocated instead: splitting it would produce a free
// block too small to carry its own header, footer and free-list link.
func (h *Heap) place(hp unsafe.Pointer, asize int) unsafe.Pointer {
	csize := blockSize(hp)
	prevAlloc := blockPrevAlloc(hp)

	if csize-asize < minBlockSize {
		writeAllocBlock(hp, csize, prevAlloc)
		setPrevAllocBit(nextBlock(hp), true)
		return hp
	}

	if asize < h.opts.SplitThreshold {
		writeAllocBlock(hp, asize, prevAlloc)
		rem := unsafe.Add(hp, asize)
		writeFreeBlock(rem, csize-asize, true)
		h.insertFree(rem)
		setPrevAllocBit(nextBlock(rem), false)
		return hp
	}

	remSize := csize - asize
	writeFreeBlock(hp, remSize, prevAlloc)
	h.insertFree(hp)
	allocHp := unsafe.Add(hp, remSize)
	writeAllocBlock(allocHp, asize, false)
	setPrevAllocBit(nextBlock(allocHp), true)
	return allocHp
}
