package treearena

import (
	"fmt"
	"sync"
	"testing"
)

// TestSimpleThreeChildParent verifies a three-child parent yields children
// in reverse-insertion order with correct parent links.
func TestSimpleThreeChildParent(t *testing.T) {
	a := NewArena[string]()
	root := a.Push(nil, "root")
	one := a.Push(root, "one")
	two := a.Push(root, "two")
	three := a.Push(root, "three")

	if a.Count() != 4 {
		t.Fatalf("Count() = %d, want 4", a.Count())
	}

	var got []string

	it := root.Children()

	for {
		n, ok := it.Next()
		if !ok {
			break
		}

		got = append(got, n.Value)
	}

	want := []string{"three", "two", "one"}
	if len(got) != len(want) {
		t.Fatalf("children = %v, want %v", got, want)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("children = %v, want %v", got, want)
		}
	}

	if three.Parent().Value != "root" || two.Parent().Value != "root" || one.Parent().Value != "root" {
		t.Fatal("every child's parent should be root")
	}
}

// TestParallelInsert verifies two goroutines pushing under the same shared
// parent both succeed and both appear in its child list.
func TestParallelInsert(t *testing.T) {
	a := NewArena[int]()
	root := a.Push(nil, 0)

	var n1, n2 *Node[int]

	var wg sync.WaitGroup

	wg.Add(2)

	go func() {
		defer wg.Done()
		n1 = a.Push(root, 1)
	}()

	go func() {
		defer wg.Done()
		n2 = a.Push(root, 2)
	}()

	wg.Wait()

	if a.Count() != 3 {
		t.Fatalf("Count() = %d, want 3", a.Count())
	}

	seen := map[int]bool{}
	for it := root.Children(); ; {
		n, ok := it.Next()
		if !ok {
			break
		}

		if n.Parent() != root {
			t.Fatal("child's parent is not root")
		}

		seen[n.Value] = true
	}

	if !seen[1] || !seen[2] || len(seen) != 2 {
		t.Fatalf("root children values = %v, want {1, 2}", seen)
	}

	if n1 == nil || n2 == nil {
		t.Fatal("both pushes should have returned non-nil nodes")
	}
}

// TestDeepAncestorChain verifies a 1,000-node linear chain yields a correct,
// complete ancestor walk from the deepest node back to the root.
func TestDeepAncestorChain(t *testing.T) {
	const depth = 1000

	a := NewArena[int]()

	var parent *Node[int]

	nodes := make([]*Node[int], depth)
	for i := 0; i < depth; i++ {
		nodes[i] = a.Push(parent, i)
		parent = nodes[i]
	}

	last := nodes[depth-1]

	var ancestors []int
	for it := last.Ancestors(); ; {
		n, ok := it.Next()
		if !ok {
			break
		}

		ancestors = append(ancestors, n.Value)
	}

	if len(ancestors) != depth-1 {
		t.Fatalf("len(ancestors) = %d, want %d", len(ancestors), depth-1)
	}

	for i, v := range ancestors {
		want := depth - 2 - i
		if v != want {
			t.Fatalf("ancestors[%d] = %d, want %d", i, v, want)
		}
	}
}

// TestChildrenOrder verifies Children() yields siblings in strict
// reverse-insertion order regardless of push interleaving with a grandchild.
func TestChildrenOrder(t *testing.T) {
	a := NewArena[int]()
	root := a.Push(nil, 0)
	c := a.Push(root, 2)
	b := a.Push(root, 1)
	x := a.Push(root, 0)

	a.Push(c, 3)

	want := []*Node[int]{x, b, c}

	i := 0

	for it := root.Children(); ; i++ {
		n, ok := it.Next()
		if !ok {
			break
		}

		if n.Value != i {
			t.Fatalf("children()[%d].Value = %d, want %d", i, n.Value, i)
		}

		if n != want[i] {
			t.Fatalf("children()[%d] pointer mismatch", i)
		}
	}

	if i != 3 {
		t.Fatalf("saw %d children, want 3", i)
	}
}

// TestReserveVsWithCapacityParity verifies Reserve and NewArenaWithCapacity
// land on the same bucket boundary for every capacity across several
// geometric steps.
func TestReserveVsWithCapacityParity(t *testing.T) {
	a := NewArena[struct{}]()

	check := func(k int, want int) {
		t.Helper()
		a.Reserve(k)

		if a.Capacity() != want {
			t.Fatalf("after Reserve(%d): Capacity() = %d, want %d", k, a.Capacity(), want)
		}

		if got := NewArenaWithCapacity[struct{}](k).Capacity(); got != want {
			t.Fatalf("NewArenaWithCapacity(%d).Capacity() = %d, want %d", k, got, want)
		}
	}

	for i := 0; i < Slots; i++ {
		check(i, Slots)
	}

	for i := Slots; i < Slots*3; i++ {
		check(i, Slots*3)
	}

	for i := Slots * 3; i < Slots*7; i++ {
		check(i, Slots*7)
	}
}

func TestForeignParentPanics(t *testing.T) {
	a1 := NewArena[int]()
	a2 := NewArena[int]()

	foreign := a1.Push(nil, 1)

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic pushing with a foreign parent")
		}

		fault, ok := r.(*Fault)
		if !ok || fault.Category != CategoryParent {
			t.Fatalf("panic value = %#v, want a ForeignParent Fault", r)
		}
	}()

	a2.Push(foreign, 2)
}

func TestInvalidIndexPanics(t *testing.T) {
	a := NewArena[int]()
	a.Push(nil, 1)

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic looking up an unpublished index")
		}

		fault, ok := r.(*Fault)
		if !ok || fault.Category != CategoryIndex {
			t.Fatalf("panic value = %#v, want an InvalidIndex Fault", r)
		}
	}()

	a.MustGet(indexFromRaw(999))
}

// TestCapacityOverflowPanics drives the counter past the boundary directly
// rather than actually publishing MaxIndex+1 nodes, which would need the
// top bucket's full 2^62-slot allocation — more memory than any test
// machine has. The index counter is an unexported field this in-package
// test can set up front; the overflow check in nextIndex happens before any
// bucket is touched, so no allocation is attempted either way.
func TestCapacityOverflowPanics(t *testing.T) {
	a := NewArena[int]()
	a.index.Store(uintptr(MaxIndex) + 1)

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic pushing past MaxIndex")
		}

		fault, ok := r.(*Fault)
		if !ok || fault.Category != CategoryCapacity {
			t.Fatalf("panic value = %#v, want a CapacityOverflow Fault", r)
		}

		if a.Count() != 0 {
			t.Fatalf("Count() after failed push = %d, want unchanged 0", a.Count())
		}

		if got := uint(a.index.Load()); got != MaxIndex+1 {
			t.Fatalf("index counter after rollback = %d, want unchanged %d", got, MaxIndex+1)
		}
	}()

	a.Push(nil, 2)
}

// TestPushAllReservesContiguousRange verifies a single PushAll call
// reserves one contiguous run of indices up front, with every published
// node then falling into that exact run in order.
func TestPushAllReservesContiguousRange(t *testing.T) {
	a := NewArena[int]()
	root := a.Push(nil, -1)

	values := []int{10, 20, 30, 40}
	it := a.PushAll(root, values)

	if it.Len() != len(values) {
		t.Fatalf("Len() = %d, want %d", it.Len(), len(values))
	}

	var got []*Node[int]

	for {
		n, ok := it.Next()
		if !ok {
			break
		}

		got = append(got, n)
	}

	if len(got) != len(values) {
		t.Fatalf("published %d nodes, want %d", len(got), len(values))
	}

	for i, n := range got {
		if n.Value != values[i] {
			t.Fatalf("node %d value = %d, want %d", i, n.Value, values[i])
		}

		if i > 0 && got[i].Index().Raw() != got[i-1].Index().Raw()+1 {
			t.Fatalf("reserved indices are not contiguous: %d then %d", got[i-1].Index().Raw(), got[i].Index().Raw())
		}
	}
}

// TestReserveAheadPushDoesNotReallocate verifies addresses handed out while
// pushing under a pre-reserved capacity stay stable.
func TestReserveAheadPushDoesNotReallocate(t *testing.T) {
	a := NewArenaWithCapacity[string](10_000)

	var parent *Node[string]

	nodes := make([]*Node[string], 100)
	for i := 0; i < 100; i++ {
		n := a.Push(parent, fmt.Sprintf("%d", i))
		nodes[i] = n
		parent = n
	}

	for i, n := range nodes {
		want := fmt.Sprintf("%d", i)
		if n.Value != want {
			t.Fatalf("node %d value = %q, want %q", i, n.Value, want)
		}

		got, ok := a.Get(n.Index())
		if !ok || got != n {
			t.Fatalf("node %d address changed across Get()", i)
		}
	}
}

func TestCrossThreadReadWhileWriting(t *testing.T) {
	const total = 2000

	a := NewArena[int]()
	root := a.Push(nil, -1)

	var wg sync.WaitGroup

	wg.Add(1)

	badRead := false

	stop := make(chan struct{})

	go func() {
		defer wg.Done()

		for {
			select {
			case <-stop:
				return
			default:
			}

			for it := root.Children(); ; {
				n, ok := it.Next()
				if !ok {
					break
				}

				if n == nil {
					badRead = true
				}
			}
		}
	}()

	for i := 0; i < total; i++ {
		a.Push(root, i)
	}

	close(stop)
	wg.Wait()

	if badRead {
		t.Fatal("walker observed a nil node mid-walk")
	}

	if a.Count() != total+1 {
		t.Fatalf("Count() = %d, want %d", a.Count(), total+1)
	}
}
