// Command tracebench replays a recorded allocation trace against one or
// more of package bench's comparators and prints throughput and peak
// utilization for each.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/bytedance/gopkg/lang/dirtmake"

	"github.com/dsalloc/dsalloc/bench"
	"github.com/dsalloc/dsalloc/heap"
)

func main() {
	tracePath := flag.String("trace", "", "path to a trace file (required)")
	which := flag.String("allocators", "heap,mempool,mcache,buddy,bitmap", "comma-separated allocators to run")
	concurrency := flag.Int("concurrency", 1, "number of independent replays to run per allocator")
	arenaSize := flag.Int("arena", 1<<24, "arena size in bytes for the buddy and bitmap comparators")
	flag.Parse()

	if *tracePath == "" {
		log.Fatal("tracebench: -trace is required")
	}

	tr, err := loadTrace(*tracePath)
	if err != nil {
		log.Fatalf("tracebench: %v", err)
	}

	names := strings.Split(*which, ",")
	for _, name := range names {
		name = strings.TrimSpace(name)
		newAllocator, err := allocatorFactory(name, *arenaSize)
		if err != nil {
			log.Fatalf("tracebench: %v", err)
		}

		results, err := bench.RunConcurrent(name, *concurrency, newAllocator, tr)
		if err != nil {
			log.Fatalf("tracebench: %s: %v", name, err)
		}
		for _, r := range results {
			fmt.Printf("%-16s ops=%d %.0f ops/sec peak=%d bytes failed=%d\n",
				r.Allocator, r.Ops, r.OpsPerSec, r.PeakLiveBytes, r.FailedAllocs)
		}
	}
}

// loadTrace reads the whole trace file into a buffer before parsing it.
// The buffer is about to be overwritten byte-for-byte by the read, so
// dirtmake.Bytes skips the zero-fill a plain make([]byte, n) would pay for
// nothing — the same tradeoff bufiox's own buffer growth makes.
func loadTrace(path string) (*bench.Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	buf := dirtmake.Bytes(int(info.Size()), int(info.Size()))
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	return bench.ParseTrace(bytes.NewReader(buf[:n]))
}

func allocatorFactory(name string, arenaSize int) (func() (bench.Allocator, error), error) {
	switch name {
	case "heap":
		return func() (bench.Allocator, error) {
			opts := heap.DefaultOptions()
			return bench.NewHeapAllocator(&opts)
		}, nil
	case "mempool":
		return func() (bench.Allocator, error) {
			return bench.MempoolAllocator{}, nil
		}, nil
	case "mcache":
		return func() (bench.Allocator, error) {
			return bench.McacheAllocator{}, nil
		}, nil
	case "buddy":
		return func() (bench.Allocator, error) {
			return bench.NewBuddyAllocator(arenaSize)
		}, nil
	case "bitmap":
		return func() (bench.Allocator, error) {
			return bench.NewBitmapAllocator(arenaSize)
		}, nil
	default:
		return nil, fmt.Errorf("unknown allocator %q", name)
	}
}
