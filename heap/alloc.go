package heap

import (
	"math/bits"
	"unsafe"
)

// adjustedSize computes the block size needed to satisfy a payload request
// of n bytes: header plus payload, rounded up to the doubleword alignment,
// floored at the minimum block size.
func adjustedSize(n int) int {
	asize := roundUp8(n + wordSize)
	if asize < minBlockSize {
		return minBlockSize
	}
	return asize
}

// Alloc returns a pointer to at least n writable bytes, or nil if n <= 0 or
// the heap cannot grow to satisfy the request. The returned pointer is
// 8-aligned and owned by the caller until passed to Free or Realloc.
func (h *Heap) Alloc(n int) unsafe.Pointer {
	if n <= 0 {
		return nil
	}
	asize := adjustedSize(n)

	hp := h.findFit(asize)
	if hp == nil {
		words := asize
		if h.opts.ChunkSize > words {
			words = h.opts.ChunkSize
		}
		words /= wordSize
		grown, err := h.extend(words)
		if err != nil {
			return nil
		}
		hp = grown
		h.deleteFree(hp, blockSize(hp))
	} else {
		h.deleteFree(hp, blockSize(hp))
	}

	allocHp := h.place(hp, asize)

	h.stats.BytesRequested += uint64(n)
	h.stats.BytesInUse += uint64(blockSize(allocHp) - wordSize)
	h.stats.AllocCount++

	return payloadPtr(allocHp)
}

// Free returns the block at p to the heap. p must be a pointer previously
// returned by Alloc, Realloc or Zalloc on this Heap and not already freed;
// violating that is undefined behaviour, not a reported error. A nil p is
// a no-op.
func (h *Heap) Free(p unsafe.Pointer) {
	if p == nil {
		return
	}
	hp := headerFromPayload(p)
	prevAlloc := blockPrevAlloc(hp)
	size := blockSize(hp)

	h.stats.BytesInUse -= uint64(size - wordSize)
	h.stats.FreeCount++

	writeFreeBlock(hp, size, prevAlloc)
	setPrevAllocBit(nextBlock(hp), false)
	h.coalesce(hp)
}

// Realloc resizes the allocation at p to n bytes, preserving the leading
// min(n, old payload bytes) of its content. n == 0 frees p and returns nil.
// p == nil behaves like Alloc(n).
func (h *Heap) Realloc(p unsafe.Pointer, n int) unsafe.Pointer {
	if n == 0 {
		h.Free(p)
		return nil
	}
	if p == nil {
		return h.Alloc(n)
	}

	hp := headerFromPayload(p)
	oldPayloadBytes := blockSize(hp) - wordSize

	newP := h.Alloc(n)
	if newP == nil {
		return nil
	}

	copyBytes := n
	if oldPayloadBytes < copyBytes {
		copyBytes = oldPayloadBytes
	}
	if copyBytes > 0 {
		src := unsafe.Slice((*byte)(p), copyBytes)
		dst := unsafe.Slice((*byte)(newP), copyBytes)
		copy(dst, src)
	}
	h.Free(p)
	return newP
}

// Zalloc allocates space for c elements of n bytes each and zeroes it,
// rejecting a c*n product that would overflow an int rather than silently
// wrapping to a too-small allocation.
func (h *Heap) Zalloc(c, n int) unsafe.Pointer {
	if c <= 0 || n <= 0 {
		return nil
	}
	hi, lo := bits.Mul64(uint64(c), uint64(n))
	if hi != 0 || lo > uint64(maxInt) {
		return nil
	}
	total := int(lo)

	p := h.Alloc(total)
	if p == nil {
		return nil
	}
	buf := unsafe.Slice((*byte)(p), total)
	for i := range buf {
		buf[i] = 0
	}
	return p
}

const maxInt = int(^uint(0) >> 1)
