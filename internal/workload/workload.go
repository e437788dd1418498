// Package workload implements the two test-driver scenarios described by
// the heap package's testable properties: concurrent insertion followed by
// either concurrent or sequential draining. It exists outside the heap
// package itself because the driver - spawning worker goroutines, owning
// random data generation - is an external collaborator of the core data
// structure, not part of it.
package workload

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/dijkstracula/concurrent-heap"
	"golang.org/x/sync/errgroup"
)

// RandomPriorities returns n random integers drawn uniformly from
// [min, max], inclusive, using rng as the source.
func RandomPriorities(n, min, max int, rng *rand.Rand) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = min + rng.IntN(max-min+1)
	}
	return out
}

// InsertConcurrently spawns threadCount goroutines, each generating
// chunkSize random priorities from its own PCG source seeded off seed and
// its goroutine index, and inserting them into h with value == priority
// and tag == the goroutine's index. It returns the full inserted multiset
// once every goroutine has joined.
func InsertConcurrently(ctx context.Context, h *heap.Heap[int], threadCount, chunkSize, min, max int, seed uint64) ([]int, error) {
	var mu sync.Mutex
	var inserted []int

	g, _ := errgroup.WithContext(ctx)
	for t := 0; t < threadCount; t++ {
		tag := t
		g.Go(func() error {
			rng := rand.New(rand.NewPCG(seed, uint64(tag)))
			data := RandomPriorities(chunkSize, min, max, rng)

			mu.Lock()
			inserted = append(inserted, data...)
			mu.Unlock()

			for _, v := range data {
				h.Insert(v, v, tag)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return inserted, nil
}

// RunSequentialPop runs the "concurrent insert, sequential pop" scenario:
// threadCount goroutines concurrently insert chunkSize random priorities
// each, then - once every inserter has joined - the calling goroutine pops
// the heap to exhaustion. It returns the full inserted multiset and the
// popped sequence, which should match sorted descending.
func RunSequentialPop(ctx context.Context, h *heap.Heap[int], threadCount, chunkSize, min, max int, seed uint64) (inserted, popped []int, err error) {
	inserted, err = InsertConcurrently(ctx, h, threadCount, chunkSize, min, max, seed)
	if err != nil {
		return nil, nil, err
	}

	for {
		v, ok := h.Pop()
		if !ok {
			break
		}
		popped = append(popped, v)
	}
	return inserted, popped, nil
}

// RunConcurrentPop runs the "concurrent insert, concurrent pop" scenario:
// threadCount goroutines concurrently insert chunkSize random priorities
// each; once they've joined, threadCount-1 goroutines each pop chunkSize
// items concurrently. One chunk's worth of entries is deliberately left in
// the heap, mirroring the reference driver, so IsHeapValid has non-trivial
// structure left to check afterwards.
func RunConcurrentPop(ctx context.Context, h *heap.Heap[int], threadCount, chunkSize, min, max int, seed uint64) (inserted []int, err error) {
	inserted, err = InsertConcurrently(ctx, h, threadCount, chunkSize, min, max, seed)
	if err != nil {
		return nil, err
	}

	g, _ := errgroup.WithContext(ctx)
	for t := 0; t < threadCount-1; t++ {
		g.Go(func() error {
			for i := 0; i < chunkSize; i++ {
				h.Pop()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return inserted, nil
}
