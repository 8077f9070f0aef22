package treearena

import (
	"fmt"
	"runtime"
)

// Category classifies the programming-error taxonomy an Arena can raise.
// None of these are recoverable conditions in the usual Go sense: this is a
// low-level substrate, and policy belongs to higher layers, so every
// Category here is surfaced as a panic rather than a returned error.
type Category string

const (
	// CategoryCapacity marks an index-space exhaustion failure.
	CategoryCapacity Category = "CAPACITY_OVERFLOW"
	// CategoryIndex marks a lookup against an index that was promised valid.
	CategoryIndex Category = "INVALID_INDEX"
	// CategoryParent marks a parent reference from a foreign Arena.
	CategoryParent Category = "FOREIGN_PARENT"
	// CategoryInvariant marks an internal invariant violation (a bug in
	// this package, not in caller code).
	CategoryInvariant Category = "INTERNAL_INVARIANT_VIOLATION"
	// CategoryAllocation marks a bucket allocation the OS refused. Unlike
	// the other four categories, this package never raises it itself: a
	// failing make([]Slot[T], n) in bucket.go surfaces as an unrecoverable
	// Go runtime fatal error (out of memory), not a panic a caller can
	// recover from, so there is no call site that constructs a Fault with
	// this category. It is kept in the taxonomy for callers pattern-
	// matching on Category, and because a future allocator-aware backend
	// could raise it as a recoverable Fault.
	CategoryAllocation Category = "ALLOCATION_FAILURE"
)

// Fault is the structured value every treearena panic carries: a category,
// a stable code, a human message, and the caller that raised it. A
// recover() can branch on Category instead of string-matching panic text.
type Fault struct {
	Category Category
	Code     string
	Message  string
	Caller   string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("[%s:%s] %s (at %s)", f.Category, f.Code, f.Message, f.Caller)
}

func newFault(category Category, code, message string) *Fault {
	caller := "unknown"

	if pc, _, _, ok := runtime.Caller(2); ok {
		if fn := runtime.FuncForPC(pc); fn != nil {
			caller = fn.Name()
		}
	}

	return &Fault{Category: category, Code: code, Message: message, Caller: caller}
}

func panicCapacityOverflow(attempted uint) {
	panic(newFault(CategoryCapacity, "CAPACITY_OVERFLOW",
		fmt.Sprintf("pushing would require index %d, which exceeds MaxIndex (%d)", attempted, MaxIndex)))
}

func panicInvalidIndex(idx Index) {
	panic(newFault(CategoryIndex, "INVALID_INDEX",
		fmt.Sprintf("index %s is not published in this arena", idx)))
}

func panicForeignParent() {
	panic(newFault(CategoryParent, "FOREIGN_PARENT",
		"parent node does not belong to this arena"))
}

func panicInvariant(message string) {
	panic(newFault(CategoryInvariant, "INTERNAL_INVARIANT_VIOLATION", message))
}
