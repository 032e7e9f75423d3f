package bench

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dsalloc/dsalloc/container/ring"
)

// Trace is a fixed, ordered sequence of operations read once and replayed
// against one or more allocators.
type Trace struct {
	ops *ring.Ring[Op]
}

// Len returns the number of operations in the trace.
func (t *Trace) Len() int { return t.ops.Len() }

// Do calls f once per operation, in trace order.
func (t *Trace) Do(f func(op *Op)) { t.ops.Do(f) }

// At returns the operation at position i, for resuming a replay that was
// interrupted partway through.
func (t *Trace) At(i int) (*Op, bool) {
	item, ok := t.ops.Get(i)
	if !ok {
		return nil, false
	}
	return item.Pointer(), true
}

// ParseTrace reads a trace in this package's line-oriented format:
//
//	a <id> <size>       allocate <size> bytes, remembered under <id>
//	f <id>              free the allocation remembered under <id>
//	r <id> <ref> <size> free <ref> (if it is live) and allocate <size> bytes
//	                    under the new <id>, the realloc idiom's "old, new"
//	                    pair since a single slot can be resized many times
//
// Blank lines and lines starting with # are ignored. Unlike the teacher
// corpus's binary .rep trace format, this one is plain text — there is no
// reference trace corpus to stay bug-compatible with here, so legibility
// won over compactness.
func ParseTrace(r io.Reader) (*Trace, error) {
	var ops []Op
	sc := bufio.NewScanner(r)
	lineno := 0
	for sc.Scan() {
		lineno++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		op, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("trace line %d: %w", lineno, err)
		}
		ops = append(ops, op)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return &Trace{ops: ring.NewFromSlice(ops)}, nil
}

func parseLine(line string) (Op, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Op{}, fmt.Errorf("empty line")
	}
	switch fields[0] {
	case "a":
		if len(fields) != 3 {
			return Op{}, fmt.Errorf("want 'a <id> <size>', got %q", line)
		}
		id, err := strconv.Atoi(fields[1])
		if err != nil {
			return Op{}, err
		}
		size, err := strconv.Atoi(fields[2])
		if err != nil {
			return Op{}, err
		}
		return Op{Kind: OpAlloc, ID: id, Size: size}, nil

	case "f":
		if len(fields) != 2 {
			return Op{}, fmt.Errorf("want 'f <id>', got %q", line)
		}
		ref, err := strconv.Atoi(fields[1])
		if err != nil {
			return Op{}, err
		}
		return Op{Kind: OpFree, Ref: ref}, nil

	case "r":
		if len(fields) != 4 {
			return Op{}, fmt.Errorf("want 'r <id> <ref> <size>', got %q", line)
		}
		id, err := strconv.Atoi(fields[1])
		if err != nil {
			return Op{}, err
		}
		ref, err := strconv.Atoi(fields[2])
		if err != nil {
			return Op{}, err
		}
		size, err := strconv.Atoi(fields[3])
		if err != nil {
			return Op{}, err
		}
		return Op{Kind: OpRealloc, ID: id, Ref: ref, Size: size}, nil

	default:
		return Op{}, fmt.Errorf("unknown op %q", fields[0])
	}
}
