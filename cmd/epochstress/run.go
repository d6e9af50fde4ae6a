package main

import (
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kolkov/epochguard/reclaim"
)

// runConfig carries the knobs of one stress run.
type runConfig struct {
	workers int
	swaps   int
	rounds  int
}

func newRunCommand(logger *zap.Logger) *cobra.Command {
	cfg := runConfig{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run drop-count stress rounds against a fresh domain each round",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.workers < 1 || cfg.swaps < 1 || cfg.rounds < 1 {
				return errors.New("workers, swaps and rounds must all be at least 1")
			}
			for round := 0; round < cfg.rounds; round++ {
				if err := runRound(logger, round, cfg); err != nil {
					return errors.Wrapf(err, "round %d", round)
				}
			}
			logger.Info("all rounds passed",
				zap.Int("rounds", cfg.rounds),
				zap.Int("workers", cfg.workers),
				zap.Int("swaps", cfg.swaps))
			return nil
		},
	}
	cmd.Flags().IntVar(&cfg.workers, "workers", 15, "concurrent workers per round")
	cmd.Flags().IntVar(&cfg.swaps, "swaps", 3, "swaps per worker per round")
	cmd.Flags().IntVar(&cfg.rounds, "rounds", 10, "independent rounds to run")
	return cmd
}

// payload is the instrumented value swapped through the shared slot: each
// instance counts how often its strategy ran.
type payload struct {
	round int
	drops *atomic.Int32
}

// runRound performs one full stress round on an isolated domain and
// verifies the drop counts afterwards.
func runRound(logger *zap.Logger, round int, cfg runConfig) error {
	dom := reclaim.NewDomain()
	counting := reclaim.Func(func(p unsafe.Pointer) {
		(*payload)(p).drops.Add(1)
	})

	var (
		mu       sync.Mutex
		counters []*atomic.Int32
	)
	track := func() payload {
		c := new(atomic.Int32)
		mu.Lock()
		counters = append(counters, c)
		mu.Unlock()
		return payload{round: round, drops: c}
	}

	initial := track()
	slot := reclaim.NewAtomic(&initial)

	start := time.Now()
	var g errgroup.Group
	for i := 0; i < cfg.workers; i++ {
		g.Go(func() error {
			w := reclaim.AcquireWorkerIn(dom)
			defer w.Release()

			v, guard := reclaim.Load(w, slot)
			destroyed := v.drops.Load()
			guard.Release()
			if destroyed != 0 {
				return errors.Errorf("loaded a destroyed payload (drops=%d)", destroyed)
			}

			for j := 0; j < cfg.swaps; j++ {
				reclaim.Swap(w, slot, track(), counting)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	preDrain := len(counters)
	drain(dom, slot, counting, track)

	var destroyed, double int
	for _, c := range counters[:preDrain] {
		switch n := c.Load(); {
		case n == 1:
			destroyed++
		case n > 1:
			double++
		}
	}
	stats := dom.Stats()
	logger.Info("round complete",
		zap.Int("round", round),
		zap.Duration("elapsed", time.Since(start)),
		zap.Uint64("epoch", stats.Epoch),
		zap.Uint64("registrations", stats.Registrations),
		zap.Uint64("retired", stats.Retired),
		zap.Uint64("reclaimed", stats.Reclaimed),
		zap.Int("destroyed", destroyed))

	if double > 0 {
		return errors.Errorf("%d payloads destroyed more than once", double)
	}
	if destroyed != preDrain {
		return errors.Errorf("leak: %d of %d pre-drain payloads never destroyed",
			preDrain-destroyed, preDrain)
	}
	return nil
}

// drain rotates every registration's generation buffers past everything
// retired during the round: hold every slot at once, then swap three
// times per slot with the epoch free to advance between operations. Three
// is exactly enough for the value published at drain start, which the
// first swap seeds into a freshly rotated buffer.
func drain(dom *reclaim.Domain, slot *reclaim.Atomic[payload],
	counting reclaim.Reclaimer, track func() payload) {
	const rotations = 3

	// Every slot is free once the round's goroutines have released, so
	// acquiring one worker per registration claims the whole pool.
	workers := make([]*reclaim.Worker, dom.Stats().Registrations)
	for i := range workers {
		workers[i] = reclaim.AcquireWorkerIn(dom)
	}
	for _, w := range workers {
		for j := 0; j < rotations; j++ {
			reclaim.Swap(w, slot, track(), counting)
		}
	}
	for _, w := range workers {
		w.Release()
	}
}
