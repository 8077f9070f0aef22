package treearena

import "math/bits"

// These are derived from the target's native word width (bits.UintSize).
// They cannot be untyped Go constants because computing them needs
// bits.LeadingZeros, which is not a constant expression, so they are
// initialized once at package load instead.
var (
	// Slots is the base unit of the bucket size series: bucket 0 holds
	// exactly Slots entries.
	Slots = bits.UintSize

	// ZeroSlot is the number of logical slots skipped before bucket 0 begins;
	// it keeps bucket 0 a full power of two wide.
	ZeroSlot = Slots - 1

	// ZeroBucket is the bit-shift of bucket 0's capacity.
	ZeroBucket = Slots - bits.LeadingZeros(uint(ZeroSlot))

	// Buckets is the number of buckets the arena's bucket table holds.
	Buckets = Slots - 1 - ZeroBucket

	// MaxIndex is the largest Index raw value an Arena can ever publish.
	MaxIndex = uint(maxInt()) - uint(Slots)
)

func maxInt() int {
	return int(^uint(0) >> 1)
}

// Capacity returns the number of slots held by the given bucket. Buckets
// form a doubling series: Capacity(0) == Slots, Capacity(1) == 2*Slots, and
// so on, such that the cumulative sum across all Buckets buckets equals
// MaxIndex+1.
func Capacity(bucket int) int {
	return 1 << (bucket + ZeroBucket)
}

// location is the (bucket, entry) pair a raw index decomposes into. It is
// unexported: callers only ever need the bucket/entry pair internally, to
// reach into Arena.buckets; the rest of the API works in terms of Index.
type location struct {
	bucket int
	entry  int
}

// locationOf computes the (bucket, entry) pair for raw, a zero-based slot
// number already checked to be <= MaxIndex.
func locationOf(raw uint) location {
	n := raw + uint(ZeroSlot)
	b := bucketOf(n)

	return location{
		bucket: b,
		entry:  int(n) - (Capacity(b) - 1),
	}
}

// bucketOf returns the bucket that n - ZeroSlot belongs to, where n is
// already offset by ZeroSlot (n == raw + ZeroSlot).
func bucketOf(n uint) int {
	return Buckets - bits.LeadingZeros(n+1)
}
