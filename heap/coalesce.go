package heap

import "unsafe"

// coalesce merges hp with its immediate free neighbours, if any, inserts
// the resulting block into its free list, and returns its header pointer.
//
// Preconditions: hp is a free block (header/footer already written by the
// caller) not currently in any free list. hp's own prevAlloc bit is
// accurate. The successor's prevAlloc bit has already been cleared by the
// caller (Free does this before calling coalesce; extend's freshly
// written epilogue is born with prevAlloc already false) — coalesce never
// needs to write a neighbour's prevAlloc bit for a neighbour it does not
// absorb, because that neighbour's bit already reflects hp being free.
func (h *Heap) coalesce(hp unsafe.Pointer) unsafe.Pointer {
	prevFree := !blockPrevAlloc(hp)
	size := blockSize(hp)
	nextHp := unsafe.Add(hp, size)
	nextFree := !blockAlloc(nextHp)

	switch {
	case !prevFree && !nextFree: // A, A
		h.insertFree(hp)
		return hp

	case !prevFree && nextFree: // A, F
		nextSize := blockSize(nextHp)
		h.deleteFree(nextHp, nextSize)
		newSize := size + nextSize
		writeFreeBlock(hp, newSize, true)
		h.insertFree(hp)
		return hp

	case prevFree && !nextFree: // F, A
		prevHp := prevBlock(hp)
		prevSize := blockSize(prevHp)
		prevPrevAlloc := blockPrevAlloc(prevHp)
		h.deleteFree(prevHp, prevSize)
		newSize := prevSize + size
		writeFreeBlock(prevHp, newSize, prevPrevAlloc)
		h.insertFree(prevHp)
		return prevHp

	default: // F, F
		prevHp := prevBlock(hp)
		prevSize := blockSize(prevHp)
		prevPrevAlloc := blockPrevAlloc(prevHp)
		nextSize := blockSize(nextHp)
		h.deleteFree(prevHp, prevSize)
		h.deleteFree(nextHp, nextSize)
		newSize := prevSize + size + nextSize
		writeFreeBlock(prevHp, newSize, prevPrevAlloc)
		h.insertFree(prevHp)
		return prevHp
	}
}
