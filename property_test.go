package heap

import (
	"sort"
	"testing"

	"pgregory.net/rapid"
)

// Property: for any n >= 0, n increments followed by n decrements returns
// the counter to its zero state. (spec testable property #4)
func TestPropertyCounterRoundTrip(t *testing.T) {
	rapid.Check(t, func(tt *rapid.T) {
		n := rapid.IntRange(0, 500).Draw(tt, "n")

		c := newBitReversedCounter()
		for i := 0; i < n; i++ {
			c.increment()
		}
		for i := 0; i < n; i++ {
			c.decrement()
		}

		if c.count != 0 || c.reversed != 0 || c.highBit != -1 {
			tt.Fatalf("counter did not return to zero state after %d round trips: %+v", n, c)
		}
	})
}

// Property: after k consecutive increments from zero, the sequence of
// returned indices is a permutation of 1..k. (spec testable property #5)
func TestPropertyCounterDistinctness(t *testing.T) {
	rapid.Check(t, func(tt *rapid.T) {
		k := rapid.IntRange(1, 500).Draw(tt, "k")

		c := newBitReversedCounter()
		seen := make(map[int]bool, k)
		for i := 0; i < k; i++ {
			r := c.increment()
			if seen[r] {
				tt.Fatalf("index %d produced twice within %d increments", r, k)
			}
			if r < 1 || r > k {
				tt.Fatalf("index %d out of range [1,%d]", r, k)
			}
			seen[r] = true
		}
	})
}

// Property: inserting any multiset of priorities single-threaded, then
// popping to exhaustion, yields the multiset sorted descending. (the
// single-threaded analogue of spec testable property #3)
func TestPropertySequentialSortEquivalence(t *testing.T) {
	rapid.Check(t, func(tt *rapid.T) {
		values := rapid.SliceOfN(rapid.IntRange(-1000, 1000), 0, 200).Draw(tt, "values")

		h, err := New[int](len(values) + 1)
		if err != nil {
			tt.Fatal(err)
		}
		for _, v := range values {
			h.Insert(v, v, 0)
		}
		if !h.IsHeapValid() {
			tt.Fatal("heap invalid after sequential insert")
		}

		want := append([]int(nil), values...)
		sort.Sort(sort.Reverse(sort.IntSlice(want)))

		var got []int
		for {
			v, ok := h.Pop()
			if !ok {
				break
			}
			got = append(got, v)
		}

		if len(got) != len(want) {
			tt.Fatalf("popped %d items, want %d", len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				tt.Fatalf("mismatch at %d: got %d want %d (got=%v want=%v)", i, got[i], want[i], got, want)
			}
		}
	})
}
