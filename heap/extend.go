package heap

import "unsafe"

// extend grows the managed region by at least words 4-byte words, rounding
// up to an even word count so the new block stays doubleword-aligned. The
// new block's header overwrites the old epilogue's 4-byte slot — the old
// epilogue was always the last word before the arena's current break, so
// that slot is exactly where the new block begins — a fresh epilogue is
// written at the new top of heap, and the new block is run through the
// coalescer in case the block before the old epilogue was free. Returns the
// header pointer of the resulting free block.
func (h *Heap) extend(words int) (unsafe.Pointer, error) {
	if words%2 != 0 {
		words++
	}
	size := words * wordSize

	if _, err := h.arena.Sbrk(size); err != nil {
		return nil, err
	}

	newHp := h.epilogue
	prevAlloc := blockPrevAlloc(newHp)
	writeFreeBlock(newHp, size, prevAlloc)

	newEpilogue := unsafe.Add(newHp, size)
	writeAllocBlock(newEpilogue, 0, false)
	h.epilogue = newEpilogue

	h.stats.HeapBytes += int64(size)
	if h.stats.HeapBytes > h.stats.PeakHeapBytes {
		h.stats.PeakHeapBytes = h.stats.HeapBytes
	}
	h.stats.ExtendCount++

	return h.coalesce(newHp), nil
}
