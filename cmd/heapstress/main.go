// Command heapstress is the external test driver for the concurrent heap:
// it is not part of the core library (see the heap package's doc comment),
// only a reusable harness for exercising it under load.
//
// It runs one of the two scenarios described by the heap package's
// testable properties - concurrent-insert-then-concurrent-pop, or
// concurrent-insert-then-sequential-pop - asserting structural validity at
// quiescent points, and in the sequential-pop case asserting the popped
// sequence is the inserted multiset sorted descending. It exits 0 on
// success and non-zero on assertion failure, matching the spec's CLI
// contract.
package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	heap "github.com/dijkstracula/concurrent-heap"
	"github.com/dijkstracula/concurrent-heap/internal/workload"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type runFlags struct {
	capacity int
	threads  int
	min      int
	max      int
	seed     int64
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &runFlags{}

	root := &cobra.Command{
		Use:   "heapstress",
		Short: "Stress-test driver for the concurrent fixed-capacity max-priority heap",
	}
	root.PersistentFlags().IntVar(&flags.capacity, "capacity", (1<<15)-1, "requested heap capacity (rounded up to a power of two)")
	root.PersistentFlags().IntVar(&flags.threads, "threads", 4, "number of concurrent worker goroutines")
	root.PersistentFlags().IntVar(&flags.min, "min", 1, "minimum random priority (inclusive)")
	root.PersistentFlags().IntVar(&flags.max, "max", 1000, "maximum random priority (inclusive)")
	root.PersistentFlags().Int64Var(&flags.seed, "seed", 1, "PRNG seed for workload generation")

	root.AddCommand(newSequentialPopCmd(flags))
	root.AddCommand(newConcurrentPopCmd(flags))

	return root
}

func newSequentialPopCmd(flags *runFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "sequential-pop",
		Short: "Concurrent insert, then sequential pop to exhaustion; asserts sorted-descending order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSequentialPop(cmd.Context(), flags)
		},
	}
}

func newConcurrentPopCmd(flags *runFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "concurrent-pop",
		Short: "Concurrent insert, then concurrent pop of all but one worker's chunk",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConcurrentPop(cmd.Context(), flags)
		},
	}
}

func newLogger() *zap.Logger {
	logger, err := zap.NewDevelopment()
	if err != nil {
		logger = zap.NewNop()
	}
	return logger
}

func runSequentialPop(ctx context.Context, flags *runFlags) error {
	logger := newLogger()
	defer logger.Sync() //nolint:errcheck

	h, err := heap.New[int](flags.capacity, heap.WithLogger[int](logger))
	if err != nil {
		return err
	}

	chunkSize := h.Capacity() / flags.threads
	logger.Info("inserting", zap.Int("capacity", h.Capacity()), zap.Int("threads", flags.threads), zap.Int("chunkSize", chunkSize))

	inserted, err := workload.InsertConcurrently(ctx, h, flags.threads, chunkSize, flags.min, flags.max, uint64(flags.seed))
	if err != nil {
		return err
	}

	if !h.IsHeapValid() {
		return fmt.Errorf("heap invalid after concurrent insert")
	}

	var popped []int
	for {
		v, ok := h.Pop()
		if !ok {
			break
		}
		popped = append(popped, v)
	}
	if !h.IsEmpty() {
		return fmt.Errorf("heap not empty after draining")
	}

	sort.Sort(sort.Reverse(sort.IntSlice(inserted)))
	if !equalInts(inserted, popped) {
		return fmt.Errorf("popped sequence did not match sorted-descending input: got %d items, want %d", len(popped), len(inserted))
	}

	logger.Info("sequential-pop OK", zap.Int("count", len(popped)))
	fmt.Println("OK")
	return nil
}

func runConcurrentPop(ctx context.Context, flags *runFlags) error {
	logger := newLogger()
	defer logger.Sync() //nolint:errcheck

	h, err := heap.New[int](flags.capacity, heap.WithLogger[int](logger))
	if err != nil {
		return err
	}

	chunkSize := h.Capacity() / flags.threads
	logger.Info("inserting", zap.Int("capacity", h.Capacity()), zap.Int("threads", flags.threads), zap.Int("chunkSize", chunkSize))

	if _, err := workload.RunConcurrentPop(ctx, h, flags.threads, chunkSize, flags.min, flags.max, uint64(flags.seed)); err != nil {
		return err
	}

	if !h.IsHeapValid() {
		return fmt.Errorf("heap invalid after concurrent pop")
	}
	want := chunkSize
	if got := h.Len(); got != want {
		return fmt.Errorf("heap has %d entries remaining, want %d", got, want)
	}

	logger.Info("concurrent-pop OK", zap.Int("remaining", h.Len()))
	fmt.Println("OK")
	return nil
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
