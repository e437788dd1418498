// Copyright 2020 Nathan Taylor (nbtaylor@gmail.com)
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies
// of the Software, and to permit persons to whom the Software is furnished to do
// so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package heap implements a concurrent fixed-capacity max-priority heap: an
// array-backed binary tree that supports parallel Insert and Pop from many
// goroutines at once, with correctness equivalent to a sequential binary
// heap in every quiescent state.
//
// The design has three moving parts.
//
// First, a bit-reversed insertion counter (counter.go) hands out leaf
// indices in an order that spreads concurrent inserters across widely
// separated subtrees, so their percolate-up walks don't collide until they
// approach the root.
//
// Second, each array slot gets its own lock (lock.go) instead of one lock
// for the whole tree. Insert walks leaf-to-root holding two of these locks
// at a time: the current node plus its parent. Pop walks root-to-leaf
// holding the current node's lock, briefly takes both children's locks
// together, and then releases the child it does not descend into. Picking
// up two locks at once uses an atomic pair-acquisition primitive rather
// than a naively ordered pair of blocking locks, so no traversal can be
// caught holding one lock while waiting forever on the other.
//
// Third, a per-node status (status.go) of empty, available, or transit
// lets one thread publish a node before it has percolated into a
// heap-consistent position, and lets other threads passing through that
// node during their own traversal recognize and step around the in-flight
// entry rather than corrupting it.
//
// The structure lock - a single mutex guarding the counter - is held only
// for the instant it takes to allocate or retire an index; it is never held
// while walking the tree, which is what lets many Insert and Pop calls
// proceed concurrently in the first place.
package heap
