package reclaim_test

import (
	"sync/atomic"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/kolkov/epochguard/reclaim"
)

// TestDefaultDomainRoundTrip smoke-tests the facade against the
// process-wide default domain.
func TestDefaultDomainRoundTrip(t *testing.T) {
	w := reclaim.AcquireWorker()
	defer w.Release()

	v0 := "before"
	slot := reclaim.NewAtomic(&v0)

	v, g := reclaim.Load(w, slot)
	require.Equal(t, "before", *v)
	g.Release()

	reclaim.Swap(w, slot, "after", reclaim.DropBox{})

	v, g = reclaim.Load(w, slot)
	defer g.Release()
	require.Equal(t, "after", *v)
}

// TestIsolatedDomain tests that explicit domains keep their own epoch and
// counters, independent of the default.
func TestIsolatedDomain(t *testing.T) {
	d := reclaim.NewDomain()
	w := reclaim.AcquireWorkerIn(d)
	defer w.Release()

	var destroyed atomic.Int32
	counting := reclaim.Func(func(unsafe.Pointer) { destroyed.Add(1) })

	v0 := 0
	slot := reclaim.NewAtomic(&v0)
	for i := 1; i <= 4; i++ {
		reclaim.Swap(w, slot, i, counting)
	}

	stats := d.Stats()
	require.Equal(t, uint64(4), stats.Retired)
	require.Equal(t, stats.Reclaimed, uint64(destroyed.Load()))
	require.Equal(t, uint64(1), stats.Registrations)
	require.Positive(t, stats.Epoch)
}

// TestGuardReleaseIdempotent tests that a double release is a no-op, so a
// deferred release composes with an early explicit one.
func TestGuardReleaseIdempotent(t *testing.T) {
	d := reclaim.NewDomain()
	w := reclaim.AcquireWorkerIn(d)
	defer w.Release()

	v0 := 1
	slot := reclaim.NewAtomic(&v0)

	_, g := reclaim.Load(w, slot)
	g.Release()
	g.Release()

	// The epoch must be free to advance after the double release.
	before := d.Stats().Epoch
	reclaim.Swap(w, slot, 2, reclaim.DropBox{})
	require.Greater(t, d.Stats().Epoch, before)
}

// TestGetInfo tests the version surface.
func TestGetInfo(t *testing.T) {
	info := reclaim.GetInfo()
	require.Equal(t, reclaim.Version, info.Version)
	require.True(t, info.LockFree)
	require.NotEmpty(t, info.Algorithm)
}

// TestGetStats tests that default-domain counters move with activity.
func TestGetStats(t *testing.T) {
	before := reclaim.GetStats()

	w := reclaim.AcquireWorker()
	defer w.Release()
	v0 := 0
	slot := reclaim.NewAtomic(&v0)
	reclaim.Swap(w, slot, 1, reclaim.DropBox{})

	after := reclaim.GetStats()
	require.GreaterOrEqual(t, after.Epoch, before.Epoch)
	require.Greater(t, after.Retired, before.Retired)
}
