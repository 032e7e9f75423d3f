package sbrkheap

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsBadSize(t *testing.T) {
	_, err := New(0)
	assert.Error(t, err)
	_, err = New(-1)
	assert.Error(t, err)
}

func TestSbrkMonotonic(t *testing.T) {
	a, err := New(1 << 20)
	require.NoError(t, err)
	defer a.Close()

	off1, err := a.Sbrk(16)
	require.NoError(t, err)
	assert.Equal(t, 0, off1)
	assert.Equal(t, 16, a.Hi())

	off2, err := a.Sbrk(4096)
	require.NoError(t, err)
	assert.Equal(t, 16, off2)
	assert.Equal(t, 16+4096, a.Hi())
}

func TestSbrkOutOfMemory(t *testing.T) {
	a, err := New(64)
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Sbrk(32)
	require.NoError(t, err)

	_, err = a.Sbrk(64)
	assert.ErrorIs(t, err, ErrOutOfMemory)

	// heap must be unaffected by the failed grow
	assert.Equal(t, 32, a.Hi())
}

func TestSbrkRejectsNegative(t *testing.T) {
	a, err := New(1024)
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Sbrk(-1)
	assert.Error(t, err)
}

func TestArenaMemoryIsWritable(t *testing.T) {
	a, err := New(4096)
	require.NoError(t, err)
	defer a.Close()

	off, err := a.Sbrk(64)
	require.NoError(t, err)

	p := (*byte)(unsafe.Add(a.Base(), off))
	*p = 0xAB
	assert.Equal(t, byte(0xAB), *p)
}
