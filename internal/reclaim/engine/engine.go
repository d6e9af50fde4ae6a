// Package engine ties the reclamation protocol together: the worker handle,
// the critical-section guard, and the load/swap operations on shared
// pointer slots.
//
// The flow of every operation is the same: attempt one epoch transition,
// announce the resulting epoch on the worker's registration, do the actual
// pointer work, and quiesce. Loads stretch the announcement across the
// lifetime of the returned guard; swaps quiesce before returning, after
// routing the displaced value into the worker's generation buffers.
package engine

import (
	"sync/atomic"
	"unsafe"

	"github.com/kolkov/epochguard/internal/reclaim/registry"
	"github.com/kolkov/epochguard/internal/reclaim/retire"
	"github.com/kolkov/epochguard/internal/reclaim/strategy"
)

// Atomic is a shared pointer slot that many workers may load and swap
// concurrently. The zero value holds nil.
//
// All access to the stored pointer must go through [Load] and [Swap]; the
// slot itself carries no protection, the epoch protocol around it does.
type Atomic[T any] struct {
	p atomic.Pointer[T]
}

// NewAtomic returns a slot publishing v as its initial value. The initial
// value should be constructed the same way swapped-in values are, so one
// reclamation strategy fits everything the slot ever holds.
func NewAtomic[T any](v *T) *Atomic[T] {
	a := &Atomic[T]{}
	a.p.Store(v)
	return a
}

// Worker is an exclusively held handle to one registration slot, the
// ticket required for every load and swap.
//
// A Worker is not tied to an OS thread or goroutine identity — any
// goroutine may acquire any free slot — but while held it must be used by
// one goroutine only. Acquiring a second Worker on a goroutine that is
// already mid-operation on another is a misuse the engine does not detect.
type Worker struct {
	dom *registry.Domain
	reg *registry.Registration
}

// Acquire claims a registration slot in d and returns the handle to it.
func Acquire(d *registry.Domain) *Worker {
	return &Worker{dom: d, reg: d.Acquire()}
}

// Release returns the worker's slot to the pool. The worker must not be
// used afterwards, and no guard obtained from it may still be held.
func (w *Worker) Release() {
	w.dom.Release(w.reg)
}

// Domain returns the reclamation domain the worker belongs to.
func (w *Worker) Domain() *registry.Domain { return w.dom }

// Guard marks a critical section. While a guard is live, the pointer
// returned alongside it stays valid: the worker's announced epoch pins the
// global counter, which keeps the value out of any reclaimable generation.
//
// Release the guard as soon as the value is no longer needed; a held guard
// stalls epoch advancement for the whole domain. Release is idempotent, so
// a deferred release composes with an early explicit one.
type Guard struct {
	reg *registry.Registration
}

// Release ends the critical section by resetting the registration's
// announced epoch to the sentinel. The value loaded under this guard must
// not be dereferenced afterwards.
func (g *Guard) Release() {
	if g.reg != nil {
		g.reg.Quiesce()
		g.reg = nil
	}
}

// Load opens a critical section and reads the slot.
//
// The returned pointer is valid until the guard is released, no longer. It
// must not be stored, and it may be destroyed at any point after release,
// so callers needing the value past the guard must copy it while the guard
// is held.
func Load[T any](w *Worker, slot *Atomic[T]) (*T, Guard) {
	e := w.dom.TryAdvance()
	w.reg.Announce(int64(e))
	v := slot.p.Load()
	return v, Guard{reg: w.reg}
}

// Swap publishes v into the slot and retires the displaced value.
//
// The value is boxed behind one heap indirection, built once and reused
// across compare-and-swap retries. On success the displaced pointer enters
// the worker's generation buffers under rec, to be destroyed after it has
// aged out of both; a displaced nil retires nothing. rec must match how
// every value in this slot is constructed.
//
// Each successful completion branch quiesces the worker before returning;
// nothing runs after the retry loop.
func Swap[T any](w *Worker, slot *Atomic[T], v T, rec strategy.Reclaimer) {
	e := w.dom.TryAdvance()
	w.reg.Announce(int64(e))
	boxed := &v
	current := slot.p.Load()
	for {
		if slot.p.CompareAndSwap(current, boxed) {
			w.retire(unsafe.Pointer(current), rec, int64(e))
			w.reg.Quiesce()
			return
		}
		current = slot.p.Load()
	}
}

// retire routes one displaced pointer into the worker's generation
// buffers, rotating first if the recent bucket's stamp lags the epoch this
// swap announced.
func (w *Worker) retire(p unsafe.Pointer, rec strategy.Reclaimer, e int64) {
	gens := w.reg.Generations()
	if gens.RecentStamp() < e {
		w.rotate(p, rec)
		return
	}
	if entry, ok := retire.NewEntry(p, rec); ok {
		gens.Append(entry)
		w.dom.NoteRetired(1)
	}
}

// rotate opens a fresh current generation seeded with the entry being
// retired and destroys everything that is now two epochs old.
//
// Entries reaching the stale bucket were retired at least one full epoch
// advance ago, and the advance protocol never moves the counter past an
// active reader, so no outstanding reader can still observe them. The
// destruction loop runs entirely on this goroutine against this worker's
// own buffers; no other thread is involved.
func (w *Worker) rotate(p unsafe.Pointer, rec strategy.Reclaimer) {
	g := int64(w.dom.Epoch())
	seed, seeded := retire.NewEntry(p, rec)
	if seeded {
		w.dom.NoteRetired(1)
	}
	stale := w.reg.Generations().Rotate(g, seed, seeded)
	for _, entry := range stale {
		entry.Reclaim()
	}
	w.dom.NoteReclaimed(len(stale))
}
