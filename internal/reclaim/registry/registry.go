// Package registry implements the process-wide side of the reclamation
// protocol: the global epoch counter and the lock-free list of
// participation records.
//
// Registrations are appended at the head of a singly linked list and are
// never removed or deallocated. Reuse is purely logical, through a per-slot
// free flag. Because a slot's address is never recycled, a pointer obtained
// from the list is valid forever and the usual ABA hazards of lock-free
// list manipulation cannot arise.
//
// The epoch counter advances by consensus: any participant about to start
// an operation scans the whole list, and only if no participant is pinned
// to an older epoch does it attempt a single compare-and-swap increment.
// The counter therefore never moves past the epoch announced by an active
// critical section, which is the invariant the whole scheme rests on.
package registry

import (
	"sync/atomic"

	"github.com/kolkov/epochguard/internal/reclaim/retire"
)

// EpochIdle is the local-epoch sentinel meaning "not currently inside a
// critical section". Any non-negative local epoch pins the global counter.
const EpochIdle int64 = -1

// Registration is one slot in the participation list.
//
// The free flag and local epoch are shared state: the flag is contended by
// acquirers, the local epoch is written by the exclusive holder and read
// by every advancing scanner. The generation buffers are private to the
// exclusive holder and deliberately survive release, so a goroutine that
// re-acquires the slot later continues draining what earlier tenants
// retired.
type Registration struct {
	// local is the epoch announced for the slot's current operation, or
	// EpochIdle between operations. Read concurrently by TryAdvance.
	local atomic.Int64

	// next links toward older registrations. Written once before the slot
	// is published, immutable afterwards.
	next atomic.Pointer[Registration]

	// free is true while no Worker holds the slot.
	free atomic.Bool

	// gens holds the slot's two live generation buffers. Accessed only by
	// the exclusive holder, never concurrently.
	gens retire.Generations
}

// Next returns the following registration in the list, nil at the tail.
func (r *Registration) Next() *Registration { return r.next.Load() }

// Local returns the slot's announced epoch, EpochIdle if none.
func (r *Registration) Local() int64 { return r.local.Load() }

// Announce publishes e as the slot's current epoch, opening a critical
// section as far as every advancing scanner is concerned.
func (r *Registration) Announce(e int64) { r.local.Store(e) }

// Quiesce resets the slot's announced epoch to the sentinel, marking the
// end of the critical section.
func (r *Registration) Quiesce() { r.local.Store(EpochIdle) }

// Generations exposes the slot's generation buffers to its exclusive
// holder.
func (r *Registration) Generations() *retire.Generations { return &r.gens }

// Stats is a snapshot of a domain's monotonic counters.
type Stats struct {
	// Epoch is the current value of the global epoch counter.
	Epoch uint64

	// Registrations is the number of slots ever created. The list never
	// shrinks, so this is also its current length.
	Registrations uint64

	// Retired counts values handed to the deferred-destruction machinery.
	Retired uint64

	// Reclaimed counts values whose strategy has run. Always lags Retired
	// by whatever is still pending in live generation buffers.
	Reclaimed uint64
}

// Domain is one independent reclamation domain: an epoch counter plus the
// registration list. Workers from different domains share nothing.
//
// A Domain must be created by NewDomain and must outlive every Worker and
// slot that uses it; in typical use there is exactly one per process, for
// the life of the process.
type Domain struct {
	epoch atomic.Uint64
	head  atomic.Pointer[Registration]

	regs      atomic.Uint64
	retired   atomic.Uint64
	reclaimed atomic.Uint64
}

// NewDomain returns an empty domain at epoch 0 with no registrations.
func NewDomain() *Domain { return &Domain{} }

// Epoch returns the current global epoch.
func (d *Domain) Epoch() uint64 { return d.epoch.Load() }

// Head returns the most recently inserted registration, nil if none.
func (d *Domain) Head() *Registration { return d.head.Load() }

// Acquire claims a registration slot for exclusive use.
//
// It first rescans the list for a slot whose free flag it can flip; a
// single compare-and-swap per candidate, with contention simply moving the
// scan to the next candidate. Only when the whole list is claimed does it
// push a new slot, via the classic lock-free head insertion. A losing push
// abandons its node to the garbage collector and retries the acquisition
// from the scan, because the race it lost may also have freed a slot.
func (d *Domain) Acquire() *Registration {
	for {
		if r := d.claim(); r != nil {
			return r
		}
		if r := d.push(); r != nil {
			return r
		}
	}
}

func (d *Domain) claim() *Registration {
	for r := d.head.Load(); r != nil; r = r.next.Load() {
		if r.free.CompareAndSwap(true, false) {
			r.local.Store(EpochIdle)
			return r
		}
	}
	return nil
}

func (d *Domain) push() *Registration {
	current := d.head.Load()
	n := &Registration{}
	n.local.Store(EpochIdle)
	n.next.Store(current)
	if d.head.CompareAndSwap(current, n) {
		d.regs.Add(1)
		return n
	}
	return nil
}

// Release returns a slot to the pool. Only the free flag changes: the
// local epoch was already quiesced by the last operation, and the
// generation buffers keep their contents for the next tenant.
func (d *Domain) Release(r *Registration) { r.free.Store(true) }

// TryAdvance attempts one epoch transition and returns the epoch the
// calling operation should announce.
//
// It reads the counter once, then walks the full registration list. A slot
// announcing any epoch other than the sentinel or the value just read is
// mid-operation on a strictly older epoch; advancing past it would let its
// retired values be destroyed under it, so the walk aborts and the
// unchanged count is returned. A clean walk earns one compare-and-swap of
// count to count+1. Losing that CAS is fine: the winner can only have
// moved the counter to exactly count+1, so count+1 is returned either way.
func (d *Domain) TryAdvance() uint64 {
	count := d.epoch.Load()
	for r := d.head.Load(); r != nil; r = r.next.Load() {
		local := r.local.Load()
		if local == EpochIdle || local == int64(count) {
			continue
		}
		return count
	}
	d.epoch.CompareAndSwap(count, count+1)
	return count + 1
}

// NoteRetired records n values entering the deferred-destruction pipeline.
func (d *Domain) NoteRetired(n int) { d.retired.Add(uint64(n)) }

// NoteReclaimed records n values whose strategy has run.
func (d *Domain) NoteReclaimed(n int) { d.reclaimed.Add(uint64(n)) }

// Stats returns a point-in-time snapshot of the domain's counters.
func (d *Domain) Stats() Stats {
	return Stats{
		Epoch:         d.epoch.Load(),
		Registrations: d.regs.Load(),
		Retired:       d.retired.Load(),
		Reclaimed:     d.reclaimed.Load(),
	}
}
