// Package reclaim provides the public API for epoch-based reclamation.
//
// See doc.go for detailed documentation and examples.
package reclaim

import (
	"github.com/kolkov/epochguard/internal/reclaim/engine"
	"github.com/kolkov/epochguard/internal/reclaim/registry"
	"github.com/kolkov/epochguard/internal/reclaim/strategy"
)

// Worker is an exclusively held participation handle; every load and swap
// goes through one. See [AcquireWorker].
type Worker = engine.Worker

// Guard marks a critical section opened by [Load]; releasing it is what
// allows writers to eventually destroy the value read under it.
type Guard = engine.Guard

// Atomic is a shared pointer slot operated on through [Load] and [Swap].
type Atomic[T any] = engine.Atomic[T]

// Domain is an independent reclamation domain. Most programs only ever use
// the package-level default; isolated domains exist for tests and for
// embedding several independent engines in one process.
type Domain = registry.Domain

// Stats is a snapshot of a domain's counters. See [GetStats].
type Stats = registry.Stats

// Reclaimer is the capability that destroys a retired value.
type Reclaimer = strategy.Reclaimer

// DropBox is the strategy for values boxed behind a single heap
// indirection, which is how [Swap] constructs everything it publishes.
type DropBox = strategy.DropBox

// DropInPlace is the strategy for values owned directly inside a larger
// allocation; it destroys in place and releases no storage.
type DropInPlace = strategy.DropInPlace

// Func adapts a plain function to a [Reclaimer]. This is the natural shape
// for instrumented strategies in tests and harnesses.
type Func = strategy.Func

// defaultDomain is the process-wide domain used by AcquireWorker. It lives
// for the life of the process, like every registration inside it.
var defaultDomain = registry.NewDomain()

// AcquireWorker claims a registration slot in the default domain.
//
// The returned Worker must be released when the holder is done; releasing
// returns the slot to the pool for any other goroutine to claim. Slots are
// created on demand and never destroyed, so steady-state acquisition
// allocates nothing.
func AcquireWorker() *Worker {
	return engine.Acquire(defaultDomain)
}

// AcquireWorkerIn claims a registration slot in an explicit domain
// created by [NewDomain].
func AcquireWorkerIn(d *Domain) *Worker {
	return engine.Acquire(d)
}

// NewDomain creates an isolated reclamation domain at epoch 0.
//
// Workers, slots and epochs from different domains are completely
// independent. A slot must only ever be operated on by workers of one
// domain; mixing domains on a slot voids every safety guarantee.
func NewDomain() *Domain {
	return registry.NewDomain()
}

// NewAtomic returns a slot publishing v as its initial value.
//
// Construct the initial value the same way swapped-in values will be
// constructed, so a single strategy matches everything the slot holds.
func NewAtomic[T any](v *T) *Atomic[T] {
	return engine.NewAtomic(v)
}

// Load opens a critical section on w and reads the slot.
//
// The returned pointer is valid for exactly as long as the guard is held.
// Always release the guard, on every path:
//
//	v, g := reclaim.Load(w, slot)
//	defer g.Release()
//
// A held guard pins the global epoch for the whole domain, so release as
// soon as the value is no longer needed.
func Load[T any](w *Worker, slot *Atomic[T]) (*T, Guard) {
	return engine.Load(w, slot)
}

// Swap publishes v into the slot and retires the displaced value under
// rec, to be destroyed once it has aged out of w's generation buffers.
//
// The operation is lock-free: a compare-and-swap retry loop bounded only
// by contention, reusing one heap allocation across retries. It returns
// with w quiesced; no guard is involved on the write side.
func Swap[T any](w *Worker, slot *Atomic[T], v T, rec Reclaimer) {
	engine.Swap(w, slot, v, rec)
}

// GetStats returns a snapshot of the default domain's counters.
//
// The Retired and Reclaimed counters make leak checks cheap: after enough
// swaps to rotate every worker's generations twice, Reclaimed catches up
// to Retired minus whatever is still pending in live buffers.
func GetStats() Stats {
	return defaultDomain.Stats()
}
