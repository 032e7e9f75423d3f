// Package sbrkheap is the external heap primitive: a single contiguous
// virtual address range that grows by a monotonically increasing break,
// modeled on sbrk(2). It is the one collaborator the block allocator in
// package heap treats as opaque.
package sbrkheap

import (
	"errors"
	"fmt"
	"unsafe"
)

// ErrOutOfMemory is returned by Sbrk when growing the arena would exceed
// the reservation passed to New.
var ErrOutOfMemory = errors.New("sbrkheap: out of memory")

// Arena is a reserved virtual address range with a monotonic break offset.
// The zero value is not usable; construct with New.
type Arena struct {
	mem  []byte
	brk  int
	base unsafe.Pointer
}

// New reserves a virtual address range of maxSize bytes and returns an
// Arena with its break at offset 0. maxSize bounds the total heap this
// arena can ever grow to; it does not count against working-set bytes
// until Sbrk actually advances the break into it.
func New(maxSize int) (*Arena, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("sbrkheap: maxSize must be > 0, got %d", maxSize)
	}
	b, err := mmapReserve(maxSize)
	if err != nil {
		return nil, err
	}
	return &Arena{mem: b, base: unsafe.Pointer(&b[0])}, nil
}

// Sbrk extends the arena by n bytes and returns the offset of the first
// new byte, mirroring sbrk(2). n must be >= 0. Returns ErrOutOfMemory if
// the reservation passed to New would be exceeded.
func (a *Arena) Sbrk(n int) (int, error) {
	if n < 0 {
		return 0, fmt.Errorf("sbrkheap: negative increment %d", n)
	}
	if n > len(a.mem)-a.brk {
		return 0, ErrOutOfMemory
	}
	off := a.brk
	a.brk += n
	return off, nil
}

// Lo returns the lowest valid offset in the arena (always 0).
func (a *Arena) Lo() int { return 0 }

// Hi returns the offset one past the last byte ever handed out by Sbrk.
func (a *Arena) Hi() int { return a.brk }

// Base returns a pointer to byte 0 of the arena. Valid offsets into the
// arena may be added to Base with unsafe.Add by callers in package heap,
// which owns the block layout living inside this memory.
func (a *Arena) Base() unsafe.Pointer { return a.base }

// Close releases the underlying OS mapping. The Arena must not be used
// afterward.
func (a *Arena) Close() error {
	if a.mem == nil {
		return nil
	}
	err := munmap(a.base, len(a.mem))
	a.mem = nil
	a.base = nil
	a.brk = 0
	return err
}
