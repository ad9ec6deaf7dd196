package scheduler

import (
	"testing"

	"ubfuzz/internal/config"
	"ubfuzz/internal/generator"
	"ubfuzz/internal/program"
	"ubfuzz/internal/rng"
	"ubfuzz/internal/strategy"
)

func newSeedProgram(t *testing.T) *program.Program {
	t.Helper()
	source := rng.New(5)
	p := generator.Generate(source, config.DefaultLangOpts())
	grow := strategy.New("grow")
	grow.Scale = 20
	generator.Mutate(p, source, grow, 1)
	return p
}

func scoreByNodeCount(p *program.Program) (int, bool) {
	n := p.CountNodes()
	return n, n > 40
}

func TestStepGrowsTheQueueUpToQueueSize(t *testing.T) {
	opts := config.DefaultSchedulerOptions()
	opts.QueueSize = 4
	opts.MutatorScale = 10
	opts.MaxRunLimit = 20

	var hits []*program.Program
	s := New(opts, config.DefaultLangOpts(), nil, scoreByNodeCount, func(p *program.Program) {
		hits = append(hits, p)
	})

	for i := 0; i < 30; i++ {
		s.Step()
	}

	snap := s.Snapshot()
	if snap.QueueSize > opts.QueueSize {
		t.Fatalf("queue grew past QueueSize: got %d, want <= %d", snap.QueueSize, opts.QueueSize)
	}
	if snap.StepCount != 30 {
		t.Fatalf("expected 30 recorded steps, got %d", snap.StepCount)
	}
}

func TestStepStopsAfterHitWhenConfigured(t *testing.T) {
	opts := config.DefaultSchedulerOptions()
	opts.MutatorScale = 15
	opts.MaxRunLimit = 30
	opts.StopAfterHit = true

	s := New(opts, config.DefaultLangOpts(), nil, scoreByNodeCount, nil)

	sawDone := false
	for i := 0; i < 200; i++ {
		_, done := s.Step()
		if done {
			sawDone = true
			break
		}
	}
	if !sawDone {
		t.Fatal("expected StopAfterHit to eventually halt the scheduler")
	}
}

func TestSnapshotReflectsHitCount(t *testing.T) {
	opts := config.DefaultSchedulerOptions()
	opts.MutatorScale = 15
	opts.MaxRunLimit = 30

	s := New(opts, config.DefaultLangOpts(), nil, scoreByNodeCount, nil)
	for i := 0; i < 50; i++ {
		s.Step()
	}
	snap := s.Snapshot()
	if snap.HitCount < 0 || snap.HitCount > snap.StepCount {
		t.Fatalf("hit count %d inconsistent with step count %d", snap.HitCount, snap.StepCount)
	}
}

func TestReducerNeverAcceptsANonShrinkingClone(t *testing.T) {
	opts := config.DefaultSchedulerOptions()
	opts.Seed = 2
	opts.ReducerTries = 5

	seed := newSeedProgram(t)

	always := func(p *program.Program) bool { return true }
	r := NewReducer(seed, opts, always)

	before := r.Current().CountNodes()
	for {
		shrunk, done := r.Step()
		after := r.Current().CountNodes()
		if after > before || (shrunk && after == before) {
			t.Fatalf("reducer accepted a clone that did not shrink: %d -> %d", before, after)
		}
		before = after
		if done {
			break
		}
	}
}
