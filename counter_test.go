package heap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBitReversedCounterSequenceCapacity15(t *testing.T) {
	want := []int{1, 2, 3, 4, 6, 5, 7, 8, 12, 10, 14, 9, 13, 11, 15}

	c := newBitReversedCounter()
	got := make([]int, 0, len(want))
	for i := 0; i < len(want); i++ {
		got = append(got, c.increment())
	}

	assert.Equal(t, want, got)
}

func TestBitReversedCounterRoundTrip(t *testing.T) {
	for n := 0; n <= 64; n++ {
		c := newBitReversedCounter()
		for i := 0; i < n; i++ {
			c.increment()
		}
		for i := 0; i < n; i++ {
			c.decrement()
		}

		require.Equalf(t, 0, c.count, "count mismatch after %d increments+decrements", n)
		require.Equalf(t, 0, c.reversed, "reversed mismatch after %d increments+decrements", n)
		require.Equalf(t, -1, c.highBit, "highBit mismatch after %d increments+decrements", n)
	}
}

func TestBitReversedCounterDistinctness(t *testing.T) {
	for k := 1; k <= 64; k++ {
		c := newBitReversedCounter()
		seen := make(map[int]bool, k)
		for i := 0; i < k; i++ {
			r := c.increment()
			assert.Falsef(t, seen[r], "duplicate reversed value %d after %d increments", r, k)
			assert.GreaterOrEqual(t, r, 1)
			assert.LessOrEqual(t, r, k)
			seen[r] = true
		}
		assert.Len(t, seen, k)
	}
}
