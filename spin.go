package treearena

import "runtime"

// spinIterationsBeforeYield bounds how many bare spin-loop iterations a
// reader does before cooperatively yielding the P. Spinning a short, fixed
// number of times first avoids handing off the P for the common case where
// the racing publisher finishes in a handful of cycles, falling back to
// runtime.Gosched() for the rare longer wait.
const spinIterationsBeforeYield = 32

// SpinProbe is an optional, test-only observation hook invoked every time a
// reader has to wait on a Slot that is still in the Middle state. Production
// callers never need it; it exists so tests can assert the spin path is
// actually exercised under contention without relying on timing. Install one
// arena-wide with SetSpinProbe.
type SpinProbe interface {
	// OnSpin is called once per spin iteration a reader performs while
	// waiting for idx's slot to leave the Middle state.
	OnSpin(idx Index)
}

var activeSpinProbe SpinProbe

// SetSpinProbe installs probe as the process-wide spin observer, returning
// the previously installed probe (nil if none). Intended for tests only;
// production code should leave this unset.
func SetSpinProbe(probe SpinProbe) SpinProbe {
	prev := activeSpinProbe
	activeSpinProbe = probe

	return prev
}

// spinWait busy-waits, invoking poll until it reports the slot has left the
// Middle state. poll returns (settled, active): settled is true once the slot is
// no longer Middle, and active reports whether it settled into Active
// (false means it somehow went back to Uninit, an invariant violation).
func spinWait(idx Index, poll func() (settled bool, active bool)) bool {
	for n := 0; ; n++ {
		if activeSpinProbe != nil {
			activeSpinProbe.OnSpin(idx)
		}

		settled, active := poll()
		if settled {
			return active
		}

		if n < spinIterationsBeforeYield {
			spinHint()
		} else {
			runtime.Gosched()
		}
	}
}

// spinHint is a cheap busy-wait: Go exposes no portable PAUSE-instruction
// hint outside the runtime package, so a short empty loop stands in for one.
func spinHint() {
	for i := 0; i < 8; i++ {
	}
}
