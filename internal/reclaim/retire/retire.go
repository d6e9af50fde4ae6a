// Package retire implements the thread-local side of deferred destruction:
// retired-entry records and the two-generation buffers they age through.
//
// Every registration owns a [Generations] pair. Retired values enter the
// recent bucket; when the owning worker notices the global epoch has moved
// past the recent bucket's stamp it rotates, and whatever had already aged
// into the previous bucket — now two epochs old — is returned for
// destruction. Nothing in this package synchronizes: a Generations pair is
// only ever touched by the goroutine that exclusively holds its
// registration.
package retire

import (
	"unsafe"

	"github.com/kolkov/epochguard/internal/reclaim/strategy"
)

// StampNone marks a generation bucket that has never been opened.
const StampNone int64 = -1

// Entry is one retired value awaiting destruction: the opaque pointer plus
// the strategy that knows how to destroy it.
//
// While an Entry lives in a generation buffer it holds the last strong
// reference to the retired value, keeping the garbage collector away until
// the strategy has run.
type Entry struct {
	ptr unsafe.Pointer
	rec strategy.Reclaimer
}

// NewEntry builds an entry for p. A nil pointer yields no entry: there is
// nothing to destroy when a slot's displaced value was never set.
func NewEntry(p unsafe.Pointer, rec strategy.Reclaimer) (Entry, bool) {
	if p == nil {
		return Entry{}, false
	}
	return Entry{ptr: p, rec: rec}, true
}

// Reclaim invokes the entry's strategy on its pointer.
func (e Entry) Reclaim() { e.rec.Reclaim(e.ptr) }

// Pointer returns the retired pointer. The engine never looks inside an
// entry; instrumentation does.
func (e Entry) Pointer() unsafe.Pointer { return e.ptr }

// generation is one bucket of retired entries, stamped with the global
// epoch in effect when the bucket was opened.
type generation struct {
	stamp   int64
	entries []Entry
}

// Generations is the pair of live buckets owned by one registration:
// recent (entries retired since the last rotation) and previous (one
// rotation older). The zero value is ready to use, both buckets unopened.
type Generations struct {
	recent   generation
	previous generation
}

// NewGenerations returns an empty pair with both stamps at StampNone.
func NewGenerations() *Generations {
	return &Generations{
		recent:   generation{stamp: StampNone},
		previous: generation{stamp: StampNone},
	}
}

// RecentStamp reports the epoch at which the recent bucket was opened,
// StampNone if it never was. The owning worker compares this against the
// epoch it just announced to decide whether a rotation is due.
func (g *Generations) RecentStamp() int64 { return g.recent.stamp }

// Append adds an entry to the recent bucket without rotating.
func (g *Generations) Append(e Entry) {
	g.recent.entries = append(g.recent.entries, e)
}

// Rotate ages both buckets and returns the entries that fell out.
//
// The recent bucket is replaced by a fresh one stamped now, seeded with
// the entry being retired by the caller (if seeded is true — the displaced
// pointer may have been nil). The displaced recent contents become the new
// previous bucket, stamped now-1. The old previous contents are two epochs
// behind the global counter and are returned for immediate destruction by
// the caller.
//
// The seed lands in the freshly opened bucket, never in the one being
// destroyed; callers must preserve that ordering.
func (g *Generations) Rotate(now int64, seed Entry, seeded bool) []Entry {
	var fresh []Entry
	if seeded {
		fresh = append(fresh, seed)
	}
	displaced := g.recent.entries
	g.recent = generation{stamp: now, entries: fresh}

	stale := g.previous.entries
	g.previous = generation{stamp: now - 1, entries: displaced}
	return stale
}

// Pending reports how many entries are waiting in the two live buckets.
func (g *Generations) Pending() int {
	return len(g.recent.entries) + len(g.previous.entries)
}
