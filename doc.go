// Package treearena implements a concurrent, append-only arena for
// tree-shaped node graphs. Multiple goroutines may append nodes, read
// previously published nodes, and walk the forest concurrently without a
// lock: addresses returned by Arena.Push/Arena.Get never move, and every
// node reachable from a published Index is guaranteed fully initialized,
// links included.
//
// Node removal, relocation, rebalancing, persistence, cross-arena
// references, and whole-arena insertion-order iteration are out of scope —
// this package is the storage substrate, not a general tree library.
package treearena
