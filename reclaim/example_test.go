package reclaim_test

import (
	"fmt"
	"unsafe"

	"github.com/kolkov/epochguard/reclaim"
)

// Example demonstrates the basic read/write cycle on a shared pointer
// slot.
func Example() {
	type config struct{ limit int }

	slot := reclaim.NewAtomic(&config{limit: 10})

	w := reclaim.AcquireWorker()
	defer w.Release()

	cfg, g := reclaim.Load(w, slot)
	fmt.Println("limit:", cfg.limit)
	g.Release()

	reclaim.Swap(w, slot, config{limit: 20}, reclaim.DropBox{})

	cfg, g = reclaim.Load(w, slot)
	fmt.Println("limit:", cfg.limit)
	g.Release()

	// Output:
	// limit: 10
	// limit: 20
}

// Example_instrumentedStrategy shows how to observe destruction with a
// custom strategy, the way the drop-count harness does.
func Example_instrumentedStrategy() {
	d := reclaim.NewDomain()
	w := reclaim.AcquireWorkerIn(d)
	defer w.Release()

	destroyed := 0
	counting := reclaim.Func(func(p unsafe.Pointer) {
		destroyed++
	})

	v0 := 0
	slot := reclaim.NewAtomic(&v0)

	// Each swap retires the displaced value; destruction happens only
	// once a value has aged out of both generation buffers.
	for i := 1; i <= 4; i++ {
		reclaim.Swap(w, slot, i, counting)
	}

	fmt.Println("destroyed:", destroyed)

	// Output:
	// destroyed: 2
}
