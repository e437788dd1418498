package heap

import (
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
)

// Heap is a concurrent fixed-capacity max-priority heap. Many goroutines
// may call Insert and Pop on the same Heap simultaneously; see the package
// doc comment for the locking discipline that makes this safe.
//
// The zero value is not usable; construct with New.
type Heap[T any] struct {
	capacity int // usable indices are 1..=capacity

	nodes     []node[T]
	nodeLocks []*nodeLock

	structureLock sync.Mutex
	counter       bitReversedCounter

	logger *zap.Logger
}

// nextPow2 rounds n up to the smallest power of two that is >= n.
//
// This deliberately differs from the reference C++ implementation, whose
// rounding loop always performs one extra doubling even when n is already
// an exact power of two (so New(16) there would yield a capacity of 32).
// That costs a full tree level for no benefit, so this port rounds tight:
// New(16) yields a capacity of 16. See DESIGN.md's Open Question log.
func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// New constructs a Heap able to hold at least requestedCapacity entries,
// rounding up to the next power of two (see nextPow2).
func New[T any](requestedCapacity int, opts ...Option[T]) (*Heap[T], error) {
	if requestedCapacity <= 0 {
		return nil, fmt.Errorf("heap.New(%d): %w", requestedCapacity, ErrInvalidCapacity)
	}

	capacity := nextPow2(requestedCapacity)

	h := &Heap[T]{
		capacity:  capacity,
		nodes:     make([]node[T], capacity+1),
		nodeLocks: make([]*nodeLock, capacity+1),
		counter:   newBitReversedCounter(),
		logger:    zap.NewNop(),
	}
	for i := range h.nodes {
		h.nodes[i].clear()
		h.nodeLocks[i] = newNodeLock()
	}

	for _, opt := range opts {
		opt(h)
	}

	return h, nil
}

// Capacity returns the heap's usable capacity (a power of two), which may
// be larger than the value originally passed to New.
func (h *Heap[T]) Capacity() int {
	return h.capacity
}

// IsEmpty reports whether the heap currently holds no entries.
func (h *Heap[T]) IsEmpty() bool {
	h.structureLock.Lock()
	defer h.structureLock.Unlock()
	return h.counter.count == 0
}

// Len reports the number of entries currently held by the heap. Like
// IsEmpty, this is a snapshot: concurrent Insert/Pop calls may change it
// immediately after it's observed.
func (h *Heap[T]) Len() int {
	h.structureLock.Lock()
	defer h.structureLock.Unlock()
	return h.counter.count
}

// Insert adds value to the heap with the given priority, tagged with tag
// (an opaque integer identifying the calling thread/owner, used only to
// let concurrent Insert calls recognize each other's in-flight entries
// during hand-off).
//
// Insert does not check the heap for overflow: inserting beyond
// Capacity() entries is undefined behavior, matching the reference
// implementation this package ports. In practice the counter will hand out
// an index beyond the backing array and this call will panic with an
// index-out-of-range, rather than silently corrupting memory the way the
// original C++ does - callers that need a hard capacity guarantee should
// track their own insert count against Capacity().
func (h *Heap[T]) Insert(value T, priority, tag int) {
	h.structureLock.Lock()
	i := h.counter.increment()
	h.nodeLocks[i].lock()
	h.structureLock.Unlock()

	h.nodes[i].set(value, priority, tag, transit)
	h.nodeLocks[i].unlock()

	for i > 1 {
		parent := i / 2
		lockPair(h.nodeLocks[parent], h.nodeLocks[i])

		switch {
		case h.nodes[parent].status == available && h.nodes[i].status == transit && h.nodes[i].tag == tag:
			if h.nodes[i].priority > h.nodes[parent].priority {
				h.nodes[i], h.nodes[parent] = h.nodes[parent], h.nodes[i]
				h.nodeLocks[parent].unlock()
				h.nodeLocks[i].unlock()
				i = parent
			} else {
				h.nodes[i].status = available
				h.nodeLocks[parent].unlock()
				h.nodeLocks[i].unlock()
				i = 0
			}
		case h.nodes[parent].status == empty:
			// Reachable only under specific concurrent-pop timings: the
			// parent was transiently emptied by a pop that passed through
			// it. Terminate here and let a later operation self-heal, per
			// the ported protocol.
			h.logger.Debug("insert: parent emptied mid-percolate, terminating",
				zap.Int("tag", tag), zap.Int("index", i), zap.Int("parent", parent))
			h.nodeLocks[parent].unlock()
			h.nodeLocks[i].unlock()
			i = 0
		case h.nodes[i].status == transit && h.nodes[i].tag != tag:
			// Another thread's in-flight entry met ours on the way up.
			// Hand off: keep climbing without swapping, letting the true
			// owner's transit entry continue to bubble past us later.
			h.logger.Debug("insert: hand-off",
				zap.Int("tag", tag), zap.Int("owner", h.nodes[i].tag), zap.Int("index", i), zap.Int("parent", parent))
			h.nodeLocks[parent].unlock()
			h.nodeLocks[i].unlock()
			i = parent
		default:
			// Not one of the documented transitions; retry this pair once
			// released, matching the reference implementation's lack of a
			// final else clause here.
			h.nodeLocks[parent].unlock()
			h.nodeLocks[i].unlock()
		}
	}

	if i == 1 {
		h.nodeLocks[1].lock()
		if h.nodes[1].status == transit && h.nodes[1].tag == tag {
			h.nodes[1].status = available
		}
		h.nodeLocks[1].unlock()
	}
}

// Pop removes and returns the entry with the largest priority. The second
// return value is false (with the first a zero T) if the heap was empty.
func (h *Heap[T]) Pop() (T, bool) {
	var zero T

	h.structureLock.Lock()
	if h.counter.count == 0 {
		h.structureLock.Unlock()
		return zero, false
	}
	bottom := h.counter.reversed
	h.counter.decrement()
	h.structureLock.Unlock()

	cur := h.nodeLocks[1]
	cur.lock()

	value := h.nodes[1].value
	h.nodes[1], h.nodes[bottom] = h.nodes[bottom], h.nodes[1]
	h.nodes[1].status = available
	h.nodes[bottom].clear()

	i := 1
	for i < h.capacity/2 {
		left, right := 2*i, 2*i+1
		lockPair(h.nodeLocks[left], h.nodeLocks[right])

		if h.nodes[left].status == empty {
			h.nodeLocks[left].unlock()
			h.nodeLocks[right].unlock()
			break
		}

		var chosen int
		if h.nodes[right].status == empty || h.nodes[left].priority > h.nodes[right].priority {
			chosen = left
			h.nodeLocks[right].unlock()
		} else {
			chosen = right
			h.nodeLocks[left].unlock()
		}

		if h.nodes[chosen].priority > h.nodes[i].priority {
			h.nodes[i], h.nodes[chosen] = h.nodes[chosen], h.nodes[i]
			cur.unlock()
			cur = h.nodeLocks[chosen]
			i = chosen
		} else {
			h.nodeLocks[chosen].unlock()
			break
		}
	}
	cur.unlock()

	return value, true
}

// IsHeapValid scans the tree and reports whether the heap property holds.
// It treats the first empty slot it encounters as the end of the heap and
// returns true immediately, since bit-reversed allocation does not keep
// the shape property's contiguous-prefix guarantee mid-flight. It is not
// safe to call concurrently with Insert/Pop; it exists for use in tests at
// quiescent points, per the package's testable properties.
func (h *Heap[T]) IsHeapValid() bool {
	for i := 2; i <= h.capacity; i++ {
		if h.nodes[i].status == empty {
			return true
		}
		if h.nodes[i].priority > h.nodes[i/2].priority {
			return false
		}
	}
	return true
}

// Dump writes a column-formatted snapshot of every slot's tag, priority,
// and value to w, for debugging at quiescent points. Like IsHeapValid, it
// is not safe to call concurrently with Insert/Pop.
func (h *Heap[T]) Dump(w io.Writer) {
	fmt.Fprintln(w)
	for i := 0; i <= h.capacity; i++ {
		fmt.Fprintf(w, "%4d", i)
	}
	fmt.Fprintln(w)

	for i := 0; i <= h.capacity; i++ {
		fmt.Fprintf(w, "%4d", h.nodes[i].tag)
	}
	fmt.Fprintln(w)

	for i := 0; i <= h.capacity; i++ {
		fmt.Fprintf(w, "%4d", h.nodes[i].priority)
	}
	fmt.Fprintln(w)

	for i := 0; i <= h.capacity; i++ {
		if h.nodes[i].status == empty {
			fmt.Fprintf(w, "%4s", "N/A")
		} else {
			fmt.Fprintf(w, "%4v", h.nodes[i].value)
		}
	}
	fmt.Fprintln(w)
}
