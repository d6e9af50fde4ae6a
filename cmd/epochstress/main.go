// Package main implements the epochstress harness.
//
// epochstress drives the reclamation engine the way a hostile consumer
// would: many goroutines hammering one shared pointer slot with loads and
// swaps, every payload instrumented to count its own destruction. After a
// drain pass it checks the two properties the engine promises:
//
//  1. Destroy-once: no payload's strategy ran more than once.
//  2. Eventual reclamation: every payload displaced before the drain was
//     destroyed, and the domain's retired/reclaimed books balance.
//
// Usage:
//
//	epochstress run --workers 15 --swaps 3 --rounds 10
//
// A violation exits non-zero, which makes the harness usable from CI and
// under the race detector.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck // stderr sync failure is unreportable

	root := &cobra.Command{
		Use:          "epochstress",
		Short:        "Stress harness for the epochguard reclamation engine",
		SilenceUsage: true,
	}
	root.AddCommand(newRunCommand(logger))

	if err := root.Execute(); err != nil {
		logger.Error("harness failed", zap.Error(err))
		os.Exit(1)
	}
}
