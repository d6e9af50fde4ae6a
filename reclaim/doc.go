// Package reclaim provides lock-free epoch-based memory reclamation for
// shared pointers.
//
// The package answers the question lock-free data structures cannot answer
// on their own: once a value has been unlinked from a shared pointer, when
// is it safe to actually destroy it? Another goroutine may still be
// dereferencing the old value it loaded a moment earlier. Epoch-based
// reclamation defers destruction until every reader that could have seen
// the value has provably moved on, without locks, without a collector
// thread, and without blocking any participant.
//
// # Quick Start
//
//	package main
//
//	import "github.com/kolkov/epochguard/reclaim"
//
//	type config struct{ limit int }
//
//	func main() {
//		slot := reclaim.NewAtomic(&config{limit: 10})
//
//		w := reclaim.AcquireWorker()
//		defer w.Release()
//
//		// Read side: the guard keeps *cfg valid until released.
//		cfg, g := reclaim.Load(w, slot)
//		_ = cfg.limit
//		g.Release()
//
//		// Write side: the displaced value is destroyed later, once no
//		// reader can still hold it.
//		reclaim.Swap(w, slot, config{limit: 20}, reclaim.DropBox{})
//	}
//
// # How It Works
//
// A process-wide epoch counter ticks forward only by consensus. Every
// operation starts by scanning the registration list: if any participant
// is still announced on an older epoch, the counter stays put; otherwise
// one compare-and-swap moves it forward by exactly one. Each worker
// announces the epoch it observed for the duration of its operation, so
// the counter can never advance past an active reader.
//
// Values displaced by [Swap] are not destroyed immediately. They age
// through two per-slot generation buffers, each stamped with the epoch at
// which it was opened. When the retiring goroutine notices the global
// epoch has moved past its current buffer it rotates: current becomes
// previous, and whatever was in previous is now two epochs old — meaning
// at least one full epoch advance has drained every reader that could have
// observed it — and is destroyed on the spot, by the same goroutine that
// retired it.
//
// # API Overview
//
//   - Participation: [AcquireWorker], [Worker.Release]
//   - Reading: [Load], [Guard.Release]
//   - Writing: [Swap]
//   - Slots: [NewAtomic], [Atomic]
//   - Strategies: [DropBox], [DropInPlace], [Func]
//   - Introspection: [GetStats], [GetInfo], [Version]
//   - Isolated domains (tests, embedded engines): [NewDomain],
//     [AcquireWorkerIn]
//
// # Caller Contract
//
// The engine cannot detect misuse; these are preconditions, not checked
// errors:
//
//   - A pointer obtained from [Load] must not be dereferenced after its
//     guard is released.
//   - The strategy passed to a slot's swaps must match how values for that
//     slot are constructed — all boxed, or all owned in place.
//   - A Worker is exclusive: one goroutine at a time, and a goroutine must
//     not interleave operations on two Workers it holds simultaneously.
//
// # Performance Characteristics
//
// Every operation is a bounded number of atomic loads plus at most one
// compare-and-swap retry loop bounded by contention. There are no locks,
// no blocking waits, and no background goroutines. Registration records
// are never freed: the list grows to the high-water mark of concurrent
// workers and is recycled through a per-slot free flag, which is what
// makes traversal ABA-proof.
package reclaim
