package bench

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAllocator backs every block with its own Go slice, so Replay can be
// tested without depending on any real comparator.
type fakeAllocator struct {
	live int
}

func (a *fakeAllocator) Alloc(size int) []byte {
	a.live++
	return make([]byte, size)
}

func (a *fakeAllocator) Free(block []byte) {
	a.live--
}

func TestReplayCountsOpsAndPeakBytes(t *testing.T) {
	tr, err := ParseTrace(strings.NewReader(
		"a 1 100\na 2 50\nf 1\nr 3 2 200\nf 3\n",
	))
	require.NoError(t, err)

	a := &fakeAllocator{}
	res := Replay("fake", a, tr)

	assert.Equal(t, 5, res.Ops)
	assert.Equal(t, 2, res.Allocs)
	assert.Equal(t, 2, res.Frees)
	assert.Equal(t, 1, res.Reallocs)
	assert.Equal(t, 0, res.FailedAllocs)
	// live bytes go 100, 150, 50, then the realloc frees op2's 50 and
	// allocates 200: peak is 200, reached right after the realloc.
	assert.EqualValues(t, 200, res.PeakLiveBytes)
	assert.Equal(t, 0, a.live)
}

type failingAllocator struct{}

func (failingAllocator) Alloc(size int) []byte { return nil }
func (failingAllocator) Free(block []byte)     {}

func TestReplaySurvivesFailedAllocs(t *testing.T) {
	tr, err := ParseTrace(strings.NewReader("a 1 8\na 2 8\n"))
	require.NoError(t, err)

	res := Replay("failing", failingAllocator{}, tr)
	assert.Equal(t, 2, res.FailedAllocs)
	assert.EqualValues(t, 0, res.PeakLiveBytes)
}

func TestReplayFreeOfUnknownIDIsNoop(t *testing.T) {
	tr, err := ParseTrace(strings.NewReader("f 99\n"))
	require.NoError(t, err)

	a := &fakeAllocator{}
	assert.NotPanics(t, func() { Replay("fake", a, tr) })
}
