package treearena

import "fmt"

// Index is a dense logical identifier for a node published into an Arena.
//
// The zero value of Index never refers to a published node: internally the
// index is stored offset by one, so a zero-valued Index is cheaply
// distinguishable from every valid one without a separate boolean flag.
type Index struct {
	// v holds index+1; v == 0 means "no index".
	v uint
}

// indexFromRaw builds the Index that refers to the given zero-based slot
// number. Callers must have already checked raw <= MaxIndex.
func indexFromRaw(raw uint) Index {
	return Index{v: raw + 1}
}

// Raw returns the zero-based slot number this Index refers to.
func (i Index) Raw() uint {
	return i.v - 1
}

// IsZero reports whether i is the zero value (never a valid published index).
func (i Index) IsZero() bool {
	return i.v == 0
}

func (i Index) String() string {
	if i.IsZero() {
		return "Index(none)"
	}

	return fmt.Sprintf("Index(%d)", i.Raw())
}
