// Command fibmem-demo exercises a fib.Manager over an in-process region,
// the way the source library's own test harness did: allocate a handful
// of blocks, report the allocator's queries, then drain everything and
// confirm the allocator settles back into its correctly-empty state.
package main

import (
	"flag"
	"log"
	"sync"

	"github.com/cbehopkins/fibmem/fib"
)

func main() {
	regionSize := flag.Int("region", 1<<20, "byte size of the backing region")
	minBlock := flag.Int("min-block", 128, "minimum technical block size")
	alignment := flag.Int("alignment", 8, "user alignment, a power of two")
	indexDiff := flag.Int("index-difference", 3, "Fibonacci index difference D")
	exact := flag.Bool("exact", true, "prefer exact-fit splits over first-fit")
	flag.Parse()

	cfg := fib.Config{
		MinBlockSize:    *minBlock,
		Alignment:       *alignment,
		IndexDifference: *indexDiff,
		Exact:           *exact,
	}

	region := make([]byte, *regionSize)
	var mu sync.Mutex
	mgr, err := fib.New(region, cfg, &mu)
	if err != nil {
		log.Fatalf("fib.New failed: %v", err)
	}

	log.Printf("classes=%d alignment=%d maxUserBlockSize=%d", mgr.ClassCount(), mgr.Alignment(), mgr.MaxUserBlockSize())
	log.Printf("correctly empty: %v", mgr.IsCorrectEmpty())

	var ptrs []fib.Ptr
	sizes := []int{32, 128, 512, 2048, 64}
	for _, s := range sizes {
		p, err := mgr.Allocate(s)
		if err != nil {
			log.Fatalf("Allocate(%d) failed: %v", s, err)
		}
		buf := mgr.Bytes(p, s)
		for i := range buf {
			buf[i] = byte(i)
		}
		ptrs = append(ptrs, p)
		log.Printf("allocated %d bytes, freeSpace now %d", s, mgr.FreeSpace())
	}

	log.Printf("maxFreeUserBlockSize=%d", mgr.MaxFreeUserBlockSize())

	for _, p := range ptrs {
		if err := mgr.Deallocate(p); err != nil {
			log.Fatalf("Deallocate failed: %v", err)
		}
	}

	log.Printf("correctly empty after drain: %v", mgr.IsCorrectEmpty())
}
