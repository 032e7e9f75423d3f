package heap

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
)

func TestClassifyWorkedExamples(t *testing.T) {
	h := &Heap{opts: DefaultOptions()}
	h.bins = binTable(h.opts)

	l4 := 3
	l5 := 4
	l6 := 5

	assert.Equal(t, l6, h.classify(50), "50 falls through the exact bins into L6")
	assert.Equal(t, l4, h.classify(64), "64 matches the L4 exact bin")
	assert.Equal(t, l5, h.classify(112), "112 matches the L5 exact bin")
	assert.Equal(t, l6, h.classify(65), "65 misses both exact bins, falls into L6")
	assert.Equal(t, l6, h.classify(120), "120 is L6's own upper bound")
}

func TestInsertAndDeleteFreeRoundTrip(t *testing.T) {
	h := &Heap{opts: DefaultOptions()}
	h.bins = binTable(h.opts)

	backing := make([]byte, 256)
	hp := unsafe.Pointer(&backing[0])
	writeFreeBlock(hp, 64, true)

	h.insertFree(hp)
	i := h.classify(64)
	assert.Equal(t, hp, h.free[i])

	h.deleteFree(hp, 64)
	assert.Nil(t, h.free[i])
}
