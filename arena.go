package treearena

import (
	"iter"
	"sync/atomic"
)

// Arena owns a forest of Node[T] values. Appends reserve a dense Index,
// publish the Node into its Slot, and — if a parent was given — splice the
// new node onto the parent's child list, all without taking a lock. Once
// published, a Node's address never moves for the Arena's lifetime.
//
// Storage is a boxcar/sharded-slab-style bucket table: a fixed-length array
// of lazily-allocated, geometrically-sized buckets, chosen specifically so
// that growing the arena never relocates an already-published Node.
type Arena[T any] struct {
	buckets []bucket[T]

	_     cachePad
	index atomic.Uintptr
	_     cachePad
	count atomic.Uintptr
}

// NewArena constructs an empty arena: every bucket starts unallocated and
// both counters start at zero.
func NewArena[T any]() *Arena[T] {
	return &Arena[T]{buckets: make([]bucket[T], Buckets)}
}

// NewArenaWithCapacity constructs an arena with every bucket up to and
// including the one covering min(capacity, MaxIndex) already allocated.
func NewArenaWithCapacity[T any](capacity int) *Arena[T] {
	a := NewArena[T]()

	clamped := clampToMaxIndex(capacity)
	loc := locationOf(clamped)

	for i := 0; i <= loc.bucket; i++ {
		a.buckets[i].ensure(Capacity(i))
	}

	return a
}

func clampToMaxIndex(n int) uint {
	if n < 0 {
		return 0
	}

	if uint(n) > MaxIndex {
		return MaxIndex
	}

	return uint(n)
}

// Reserve ensures every bucket covering [0, min(Count()+additional, MaxIndex)]
// is allocated. Idempotent, and safe to call concurrently with pushes and
// with other Reserve calls: bucket.ensure's CAS prevents double-allocation.
func (a *Arena[T]) Reserve(additional int) {
	if additional < 0 {
		additional = 0
	}

	base := uint(a.count.Load())

	target := base + uint(additional)
	if target < base || target > MaxIndex {
		target = MaxIndex
	}

	loc := locationOf(target)
	b := loc.bucket

	for {
		a.buckets[b].ensure(Capacity(b))

		if b == 0 {
			break
		}

		b--
	}
}

// Get returns the node published at idx, or (nil, false) if idx was never
// published on this arena (including if idx came from a different arena
// entirely).
func (a *Arena[T]) Get(idx Index) (*Node[T], bool) {
	if idx.IsZero() {
		return nil, false
	}

	raw := idx.Raw()
	if raw > MaxIndex {
		return nil, false
	}

	loc := locationOf(raw)

	entries, ok := a.buckets[loc.bucket].entriesIfAllocated()
	if !ok {
		return nil, false
	}

	return entries[loc.entry].get(idx)
}

// MustGet returns the node published at idx, panicking InvalidIndex if idx
// is not currently Active in this arena.
func (a *Arena[T]) MustGet(idx Index) *Node[T] {
	node, ok := a.Get(idx)
	if !ok {
		panicInvalidIndex(idx)
	}

	return node
}

// Contains reports whether node was published by this arena, checked by
// identity (looking node.Index() up and comparing pointers), not equality.
func (a *Arena[T]) Contains(node *Node[T]) bool {
	if node == nil {
		return false
	}

	found, ok := a.Get(node.Index())

	return ok && found == node
}

// Count returns the number of nodes currently published.
func (a *Arena[T]) Count() int {
	return int(a.count.Load())
}

// Capacity returns the sum of Capacity(b) over every bucket that has been
// allocated so far. Non-decreasing across the arena's lifetime.
func (a *Arena[T]) Capacity() int {
	total := 0

	for b := range a.buckets {
		if a.buckets[b].isAllocated() {
			total += Capacity(b)
		}
	}

	return total
}

// checkParent panics ForeignParent if parent is non-nil and does not belong
// to this arena.
func (a *Arena[T]) checkParent(parent *Node[T]) {
	if parent != nil && !a.Contains(parent) {
		panicForeignParent()
	}
}

// Push appends a new node holding value, as a root if parent is nil or as a
// child of parent otherwise. Panics ForeignParent if parent is not nil and
// does not belong to this arena.
func (a *Arena[T]) Push(parent *Node[T], value T) *Node[T] {
	return a.PushWith(parent, func(Index) T { return value })
}

// PushWith appends a new node whose value is produced from the freshly
// reserved index, permitting self-referential payloads.
func (a *Arena[T]) PushWith(parent *Node[T], f func(Index) T) *Node[T] {
	a.checkParent(parent)

	idx := a.nextIndex()

	return a.addNode(parent, idx, f(idx))
}

// PushIndex appends a new node as a child of the node published at parent.
// Panics InvalidIndex if parent is not a valid index of this arena.
func (a *Arena[T]) PushIndex(parent Index, value T) *Node[T] {
	return a.Push(a.MustGet(parent), value)
}

// PushAll reserves len(values) contiguous indices atomically, then returns
// an iterator that publishes one node per call to Next. Panics
// CapacityOverflow up front if the reservation would exceed MaxIndex.
func (a *Arena[T]) PushAll(parent *Node[T], values []T) *PushIter[T] {
	a.checkParent(parent)

	origin := a.reserveRange(len(values))

	return &PushIter[T]{arena: a, parent: parent, origin: origin, values: values}
}

// nextIndex atomically reserves the next index, rolling the counter back
// and panicking CapacityOverflow if that would exceed MaxIndex.
func (a *Arena[T]) nextIndex() Index {
	raw := uint(a.index.Add(1) - 1)
	if raw > MaxIndex {
		a.index.Add(^uintptr(0))
		panicCapacityOverflow(raw)
	}

	return indexFromRaw(raw)
}

// reserveRange atomically reserves a contiguous range of n indices via a
// compare-and-swap retry loop, returning the first index in the range.
// Panics CapacityOverflow if the reservation would exceed MaxIndex.
func (a *Arena[T]) reserveRange(n int) uint {
	for {
		cur := uint(a.index.Load())

		next := cur + uint(n)
		if next < cur || next > MaxIndex+1 {
			panicCapacityOverflow(next - 1)
		}

		if a.index.CompareAndSwap(uintptr(cur), uintptr(next)) {
			return cur
		}
	}
}

// addNode writes value into the slot at idx, installing parent as its link
// if given, and bumps the live count. idx must be unique and parent, if
// non-nil, must belong to this arena — both are guaranteed by every caller
// above.
func (a *Arena[T]) addNode(parent *Node[T], idx Index, value T) *Node[T] {
	loc := locationOf(idx.Raw())
	entries := a.buckets[loc.bucket].ensure(Capacity(loc.bucket))
	slot := &entries[loc.entry]

	node := slot.publish(Node[T]{index: idx, parent: parent, Value: value}, parent)

	a.count.Add(1)

	return node
}

// PushIter lazily publishes the nodes reserved by a PushAll call, one per
// call to Next; its length is exact and known up front.
type PushIter[T any] struct {
	arena  *Arena[T]
	parent *Node[T]
	origin uint
	values []T
	i      int
}

// Len returns the number of nodes not yet published by this iterator.
func (p *PushIter[T]) Len() int {
	return len(p.values) - p.i
}

// Next publishes and returns the next reserved node, or (nil, false) once
// every value has been published.
func (p *PushIter[T]) Next() (*Node[T], bool) {
	if p.i >= len(p.values) {
		return nil, false
	}

	idx := indexFromRaw(p.origin + uint(p.i))
	node := p.arena.addNode(p.parent, idx, p.values[p.i])
	p.i++

	return node, true
}

// Seq adapts the iterator to a standard iter.Seq for range-over-func use.
func (p *PushIter[T]) Seq() iter.Seq[*Node[T]] {
	return func(yield func(*Node[T]) bool) {
		for {
			node, ok := p.Next()
			if !ok {
				return
			}

			if !yield(node) {
				return
			}
		}
	}
}
