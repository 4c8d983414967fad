package loom

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Schedule holds an ordered list of systems and runs them in access-conflict
// batches, per spec.md §4.9.
type Schedule struct {
	systems []*System
	init    InitContext
}

// NewSchedule returns an empty schedule.
func NewSchedule() *Schedule { return &Schedule{} }

// WithSystem appends s to the schedule, preserving the order systems were
// added in.
func (s *Schedule) WithSystem(sys *System) *Schedule {
	s.systems = append(s.systems, sys)
	return s
}

// batch groups systems scheduled to run together.
type batch struct {
	systems []*System
}

// batches partitions s.systems into conflict-free groups: each system, in
// declared order, joins the earliest batch none of whose systems its
// access set conflicts with, or opens a new batch at the end. Systems keep
// their declared order within a batch, but a system can land in an
// earlier batch than one declared before it.
func (s *Schedule) batches(w *World) []batch {
	var out []batch
	for _, sys := range s.systems {
		sys.ensureStaged(&s.init)
		access := sys.Access(w)
		placed := false
		for i := range out {
			if batchConflicts(out[i].systems, access, w) {
				continue
			}
			out[i].systems = append(out[i].systems, sys)
			placed = true
			break
		}
		if !placed {
			out = append(out, batch{systems: []*System{sys}})
		}
	}
	return out
}

func batchConflicts(existing []*System, access []Access, w *World) bool {
	for _, other := range existing {
		if ConflictsAny(other.Access(w), access) {
			return true
		}
	}
	return false
}

func batchSystemNames(bt batch) []string {
	names := make([]string, len(bt.systems))
	for i, sys := range bt.systems {
		names[i] = sys.Name()
	}
	return names
}

func logBatch(w *World, index int, bt batch) {
	w.logger.Debug("schedule batch",
		zap.Int("batch", index),
		zap.Int("systems", len(bt.systems)),
		zap.Strings("names", batchSystemNames(bt)),
	)
}

func runSystemLogged(w *World, ctx *ExecContext, sys *System) error {
	start := time.Now()
	err := sys.Run(ctx)
	w.logger.Debug("system run",
		zap.String("system", sys.Name()),
		zap.Duration("duration", time.Since(start)),
		zap.Error(err),
	)
	return err
}

// ExecuteSeq runs the batches in order and each batch's systems one after
// another, draining the command buffer after each system.
func (s *Schedule) ExecuteSeq(w *World) error {
	commands := NewCommandBuffer()
	for i, bt := range s.batches(w) {
		logBatch(w, i, bt)
		for _, sys := range bt.systems {
			ctx := &ExecContext{World: w, Commands: commands}
			if err := runSystemLogged(w, ctx, sys); err != nil {
				return err
			}
			if err := commands.Apply(w); err != nil {
				return ScheduleError{SystemName: sys.Name(), Err: err}
			}
		}
	}
	return nil
}

// ExecutePar runs each batch's systems concurrently via
// golang.org/x/sync/errgroup, draining the shared command buffer between
// batches. Systems already started in a batch run to completion; once they
// have all finished, the first error any of them returned aborts the
// schedule.
func (s *Schedule) ExecutePar(w *World) error {
	for i, bt := range s.batches(w) {
		logBatch(w, i, bt)
		commands := NewCommandBuffer()
		g, _ := errgroup.WithContext(context.Background())
		for _, sys := range bt.systems {
			sys := sys
			g.Go(func() error {
				ctx := &ExecContext{World: w, Commands: commands}
				return runSystemLogged(w, ctx, sys)
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		if err := commands.Apply(w); err != nil {
			return err
		}
	}
	return nil
}
