// Command loomdemo spawns a batch of entities, runs a small schedule
// against them for a fixed number of ticks, and prints the resulting
// query output plus world stats -- the outer integration glue spec.md
// §1 deliberately keeps out of the core library.
package main

import (
	"fmt"
	"os"

	"github.com/loomware/loom"
	"github.com/spf13/cobra"
)

type position struct{ X, Y float64 }
type velocity struct{ X, Y float64 }

var (
	entityCount int
	tickCount   int
	parallel    bool
)

func main() {
	root := &cobra.Command{
		Use:   "loomdemo",
		Short: "Run a small loom ECS simulation and print the results",
		RunE:  run,
	}
	root.Flags().IntVar(&entityCount, "entities", 10, "number of entities to spawn")
	root.Flags().IntVar(&tickCount, "ticks", 3, "number of schedule executions")
	root.Flags().BoolVar(&parallel, "parallel", false, "run each batch's systems concurrently")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	w := loom.NewWorld()
	posC := loom.NewComponent[position]()
	velC := loom.NewComponent[velocity]()

	for i := 0; i < entityCount; i++ {
		_, err := loom.NewEntityBuilder().
			Add(loom.With(posC, position{X: 0, Y: 0})).
			Add(loom.With(velC, velocity{X: float64(i % 3), Y: 1})).
			Spawn(w)
		if err != nil {
			return err
		}
	}

	movement := loom.System1(
		"movement",
		loom.UseQuery(loom.Query2(loom.Write[position]{C: posC}, loom.Read[velocity]{C: velC})),
		func(ctx *loom.ExecContext, q *loom.Query[loom.Pair[*position, velocity]]) error {
			for pair := range q.Iter(ctx.World) {
				pair.A.X += pair.B.X
				pair.A.Y += pair.B.Y
			}
			return nil
		},
	)

	report := loom.System1(
		"report",
		loom.UseQuery(loom.Query1[position](loom.Read[position]{C: posC})),
		func(ctx *loom.ExecContext, q *loom.Query[position]) error {
			n := 0
			for range q.Iter(ctx.World) {
				n++
			}
			fmt.Printf("generation %d: %d entities with position\n", ctx.World.Generation(), n)
			return nil
		},
	)

	schedule := loom.NewSchedule().WithSystem(movement).WithSystem(report)

	for i := 0; i < tickCount; i++ {
		w.AdvanceTick()
		var err error
		if parallel {
			err = schedule.ExecutePar(w)
		} else {
			err = schedule.ExecuteSeq(w)
		}
		if err != nil {
			return err
		}
	}

	st := w.Stats()
	fmt.Print(st.String())
	return nil
}
