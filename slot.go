package treearena

import "sync/atomic"

// slotState is the three-value tag a Slot's atomic state holds. The
// encoding is chosen so every transition sets bits and never clears them:
// Uninit(0b00) -> Middle(0b01) -> Active(0b11).
type slotState uint32

const (
	slotUninit slotState = 0b00
	slotMiddle slotState = 0b01
	slotActive slotState = 0b11
)

// Slot is one storage cell inside a Bucket: an atomic state tag guarding a
// Node value. Bucket allocates a whole array of these zero-valued, which is
// precisely what makes every Slot's initial state observably slotUninit
// without a single per-slot write.
type Slot[T any] struct {
	state atomic.Uint32
	node  Node[T]
}

// publish transitions the slot from Uninit to Active, writing node into
// place and, if parent is non-nil, splicing the freshly-stored node onto
// parent's child list before the final Active store. Caller guarantees the
// slot is currently Uninit and that node.index identifies this exact slot.
//
// The sequence is:
//  1. store Middle (Release)
//  2. write the node's fields
//  3. splice onto the parent's child list, which writes the new node's
//     `next` field before its own CAS succeeds
//  4. store Active (Release)
func (s *Slot[T]) publish(node Node[T], parent *Node[T]) *Node[T] {
	s.state.Store(uint32(slotMiddle))

	s.node = node
	if parent != nil {
		parent.addChild(&s.node)
	}

	s.state.Store(uint32(slotActive))

	return &s.node
}

// get returns the slot's Node if it has reached Active, spinning briefly if
// a publish is still in flight (Middle) and reporting absent if the slot was
// never published (Uninit). idx is supplied by the caller rather than read
// from s.node: s.node's fields are not safe to read until Active has been
// observed, so nothing here may touch s.node before that.
func (s *Slot[T]) get(idx Index) (*Node[T], bool) {
	switch slotState(s.state.Load()) {
	case slotUninit:
		return nil, false
	case slotActive:
		return &s.node, true
	default:
		active := spinWait(idx, func() (settled bool, active bool) {
			switch slotState(s.state.Load()) {
			case slotActive:
				return true, true
			case slotUninit:
				panicInvariant("slot regressed from Middle to Uninit")

				return true, false
			default:
				return false, false
			}
		})
		if !active {
			return nil, false
		}

		return &s.node, true
	}
}
