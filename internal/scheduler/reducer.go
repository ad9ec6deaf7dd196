package scheduler

import (
	"ubfuzz/internal/config"
	"ubfuzz/internal/generator"
	"ubfuzz/internal/program"
	"ubfuzz/internal/rng"
	"ubfuzz/internal/strategy"
)

// InterestingFunc reports whether p still reproduces the finding being
// reduced (spec.md §4.H's Reducer).
type InterestingFunc func(*program.Program) bool

// Reducer is a Scheduler variant seeded with a single program and an
// "interesting" predicate instead of a scored population (spec.md §4.H).
type Reducer struct {
	opts        config.SchedulerOptions
	interesting InterestingFunc
	rng         *rng.Source

	strategies []*strategy.Strategy
	rrIndex    int

	current   *program.Program
	failCount int
}

// NewReducer seeds a Reducer with p. Callers are expected to have already
// confirmed p is interesting; the Reducer never re-checks the seed itself,
// only every candidate shrink.
func NewReducer(p *program.Program, opts config.SchedulerOptions, interesting InterestingFunc) *Reducer {
	return &Reducer{
		opts:        opts,
		interesting: interesting,
		rng:         rng.New(opts.Seed),
		strategies:  strategy.MakeReductionStrategies(),
		current:     p,
	}
}

// Current returns the smallest interesting program found so far.
func (r *Reducer) Current() *program.Program { return r.current }

func (r *Reducer) nextStrategy() *strategy.Strategy {
	strat := r.strategies[r.rrIndex]
	r.rrIndex = (r.rrIndex + 1) % len(r.strategies)
	return strat
}

// Step asks generator.Reduce for one shrink attempt (spec.md §4.H's
// Reducer loop), accepting the candidate only if it is still interesting
// and strictly smaller by count_nodes. It returns whether this step
// shrunk the program, and whether the reducer has now hit reducerTries
// consecutive failures and should halt.
func (r *Reducer) Step() (shrunk bool, done bool) {
	clone := r.current.Clone()
	strat := r.nextStrategy()
	child := r.rng.SpawnChild()
	generator.Reduce(clone, child, strat)

	if r.interesting(clone) && clone.CountNodes() < r.current.CountNodes() {
		r.current = clone
		r.failCount = 0
		return true, false
	}

	r.failCount++
	tries := r.opts.ReducerTries
	if tries <= 0 {
		tries = config.DefaultSchedulerOptions().ReducerTries
	}
	return false, r.failCount >= tries
}
