package treearena

import "sync/atomic"

// bucket is a lazily-allocated, fixed-size array of Slots. Its entries
// pointer transitions from nil to a valid pointer exactly once; the winner
// of that one-shot race is the array every future lookup, push, and
// capacity report uses for the rest of the Arena's lifetime.
//
// A losing goroutine's freshly make()'d slice is simply unreferenced after
// the failed CompareAndSwap; the garbage collector reclaims it, so there is
// no explicit dealloc step here.
type bucket[T any] struct {
	entries atomic.Pointer[[]Slot[T]]
}

// ensure returns this bucket's entries slice, allocating it on first use.
// num is the slice length for this bucket (Capacity(bucketIndex)); it is the
// caller's responsibility to always pass the correct length for a given
// bucket.
func (b *bucket[T]) ensure(num int) []Slot[T] {
	if existing := b.entries.Load(); existing != nil {
		return *existing
	}

	fresh := make([]Slot[T], num)
	if b.entries.CompareAndSwap(nil, &fresh) {
		return fresh
	}

	// Lost the race: discard our allocation and use the winner's.
	return *b.entries.Load()
}

// isAllocated reports whether this bucket has ever been allocated.
func (b *bucket[T]) isAllocated() bool {
	return b.entries.Load() != nil
}

// entriesIfAllocated returns the bucket's slice and true if it has been
// allocated, or (nil, false) otherwise — used by lookups that must not
// allocate on a miss.
func (b *bucket[T]) entriesIfAllocated() ([]Slot[T], bool) {
	p := b.entries.Load()
	if p == nil {
		return nil, false
	}

	return *p, true
}
