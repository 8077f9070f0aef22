package treearena

import "golang.org/x/sys/cpu"

// cachePad pins a field after it onto its own cache line, preventing false
// sharing between hot atomic counters accessed by different goroutines.
// golang.org/x/sys/cpu.CacheLinePad gets the pad size right on architectures
// where a line isn't 64 bytes (e.g. ppc64).
type cachePad = cpu.CacheLinePad
