// Package strategy defines the reclamation capability attached to every
// retired value.
//
// A retired value is handed to the engine as an opaque pointer; the engine
// cannot know how that value was constructed, so the caller attaches a
// Reclaimer that does. When the value rotates out of its generation buffers
// the engine invokes the Reclaimer exactly once, on the same goroutine that
// retired the value.
//
// Two built-in variants cover the two construction models the engine
// supports:
//   - [DropBox] for values the engine boxed behind a single heap
//     indirection (every value passed to Swap).
//   - [DropInPlace] for values owned directly inside a larger allocation.
//
// The strategy passed to a slot's swaps must be consistent with how values
// for that slot are constructed. The engine does not verify this; a
// mismatch applies the wrong destruction method.
package strategy

import "unsafe"

// Reclaimer destroys a retired value given only an opaque pointer to it.
//
// Reclaim is called exactly once per retired value, by the goroutine that
// retired it, after at least one full global-epoch advance has drained
// every reader that could still observe the value. It therefore never races
// with a reader of the value it destroys.
type Reclaimer interface {
	Reclaim(p unsafe.Pointer)
}

// Func adapts an ordinary function to a Reclaimer.
//
// This is the form instrumented strategies take in tests and the stress
// harness: wrap a closure that records the destruction, then delegate to a
// built-in variant if storage handling is needed.
type Func func(p unsafe.Pointer)

// Reclaim invokes f.
func (f Func) Reclaim(p unsafe.Pointer) { f(p) }

// DropBox reclaims values that were allocated behind a single heap
// indirection, which is how the engine boxes every value passed to a swap.
//
// The optional Destructor runs first, while the box is still intact.
// Destruction of the storage itself needs no further action in Go: the
// generation buffer entry held the last strong reference to the box, and
// dropping that entry releases it to the garbage collector.
type DropBox struct {
	// Destructor, if non-nil, runs once against the boxed value before the
	// reference is dropped. Use it to close handles or return buffers the
	// value owns.
	Destructor func(p unsafe.Pointer)
}

// Reclaim runs the destructor, if any. The caller drops the entry holding
// p afterwards, which is what actually frees the box.
func (d DropBox) Reclaim(p unsafe.Pointer) {
	if d.Destructor != nil {
		d.Destructor(p)
	}
}

// DropInPlace reclaims values owned directly in place, typically inside a
// larger allocation (an arena slab, a pooled record, a field of a
// longer-lived struct). The destructor runs against the value where it
// sits; no storage is released, because the surrounding allocation owns it.
type DropInPlace struct {
	// Destructor, if non-nil, runs once against the value in place.
	Destructor func(p unsafe.Pointer)
}

// Reclaim runs the destructor, if any, without releasing storage.
func (d DropInPlace) Reclaim(p unsafe.Pointer) {
	if d.Destructor != nil {
		d.Destructor(p)
	}
}
