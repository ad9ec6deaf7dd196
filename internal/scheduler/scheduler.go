// Package scheduler implements the feedback-driven scheduler and reducer
// of spec.md §4.H: a bounded priority queue of candidate programs, driven
// by an externally supplied feedback callback, plus the reducer's
// shrink-until-it-stops-shrinking loop.
//
// Structurally this follows the teacher's internal/database.DBManager
// (db_manager.go): a small manager struct guarding its mutable state
// behind a sync.Mutex, even though spec.md §5 makes step() itself
// single-threaded — the mutex exists only so a concurrently-running
// monitor snapshot reader never observes a torn queue.
package scheduler

import (
	"container/heap"
	"context"
	"strings"
	"sync"
	"time"

	"ubfuzz/internal/config"
	"ubfuzz/internal/corpusdb"
	"ubfuzz/internal/generator"
	"ubfuzz/internal/printer"
	"ubfuzz/internal/program"
	"ubfuzz/internal/rng"
	"ubfuzz/internal/strategy"
)

// FeedbackFunc scores a candidate program and reports whether it counts as
// a hit. It is the external collaborator spec.md §1 calls out as the
// core's only window onto the oracle.
type FeedbackFunc func(*program.Program) (score int, interesting bool)

// OutputFunc persists an interesting candidate outside the core
// (spec.md §6.4). May be nil.
type OutputFunc func(*program.Program)

// strategyStat tracks one strategy's exponential moving average hit rate
// (spec.md §4.H: "the strategy with the best recent hit rate gets a
// bias").
type strategyStat struct {
	strat   *strategy.Strategy
	hitRate float32
}

const emaAlpha = 0.2

// Scheduler maintains the bounded priority queue and drives step() per
// spec.md §4.H.
type Scheduler struct {
	opts    config.SchedulerOptions
	langOpts config.LangOpts
	feedback FeedbackFunc
	output   OutputFunc

	rng *rng.Source

	mu        sync.Mutex
	queue     candidateQueue
	nextSeq   int
	stats     []strategyStat
	rrIndex   int
	hitCount  int
	stepCount int

	corpus corpusdb.Store
	events chan<- StepEvent
}

// StepEvent is one step's outcome, broadcast to the live monitor
// (SPEC_FULL's domain stack: internal/monitor drains these over a plain Go
// channel and fans them out to connected websocket clients). The scheduler
// itself never blocks on a slow or absent subscriber.
type StepEvent struct {
	Step        int    `json:"step"`
	Score       int    `json:"score"`
	Interesting bool   `json:"interesting"`
	QueueSize   int    `json:"queueSize"`
	Strategy    string `json:"strategy"`
}

// SetCorpus attaches a corpus database. Every candidate admitted into the
// queue, and every hit, is persisted through it. A nil Store (the default)
// disables persistence entirely — spec.md §6.4 keeps this outside the
// core's contract.
func (s *Scheduler) SetCorpus(store corpusdb.Store) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.corpus = store
}

// SetEvents attaches a channel that receives a StepEvent after every Step.
// The send is non-blocking: a full or nil channel silently drops the event
// rather than stalling the scheduler, which spec.md §5 requires to stay
// single-threaded and synchronous.
func (s *Scheduler) SetEvents(ch chan<- StepEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = ch
}

func (s *Scheduler) saveCandidate(p *program.Program, score int, originSeed int64, hit bool, decisions []strategy.Decision) {
	if s.corpus == nil {
		return
	}
	var buf strings.Builder
	if err := printer.Print(p, &buf); err != nil {
		return
	}
	names := make([]string, 0, len(decisions))
	for _, d := range decisions {
		if d.Taken {
			names = append(names, d.Site.String())
		}
	}
	rec := corpusdb.CandidateRecord{
		ProgramText: buf.String(),
		Score:       score,
		OriginSeed:  originSeed,
		Decisions:   strings.Join(names, ","),
		Hit:         hit,
		InsertedAt:  time.Now(),
	}
	// Best effort: a corpus write failure never aborts the scheduler,
	// mirroring OutputFunc's fire-and-forget contract.
	_ = s.corpus.SaveCandidate(context.Background(), rec)
}

func (s *Scheduler) emit(ev StepEvent) {
	if s.events == nil {
		return
	}
	select {
	case s.events <- ev:
	default:
	}
}

// New constructs a Scheduler seeded with one freshly generated program
// (spec.md §4.H's implicit initial population of one), scored through
// feedback before the first step ever runs.
func New(opts config.SchedulerOptions, langOpts config.LangOpts, strategies []*strategy.Strategy, feedback FeedbackFunc, output OutputFunc) *Scheduler {
	if len(strategies) == 0 {
		strategies = strategy.MakeMutateStrategies()
	}
	s := &Scheduler{
		opts:     opts,
		langOpts: langOpts,
		feedback: feedback,
		output:   output,
		rng:      rng.New(opts.Seed),
	}
	for _, st := range strategies {
		s.stats = append(s.stats, strategyStat{strat: st})
	}

	seed := generator.Generate(s.rng, langOpts)
	score, interesting := feedback(seed)
	if interesting && output != nil {
		output(seed)
	}
	heap.Push(&s.queue, s.newCandidate(seed, score, opts.Seed))
	return s
}

func (s *Scheduler) newCandidate(p *program.Program, score int, originSeed int64) *Candidate {
	c := &Candidate{Program: p, Score: score, OriginSeed: originSeed, seq: s.nextSeq}
	s.nextSeq++
	return c
}

// pickSeed selects a queue entry weighted toward higher score, ties broken
// by insertion order (spec.md §4.H step 1). Every candidate gets
// Score+1 weight so a zero-scoring program is still reachable.
func (s *Scheduler) pickSeed() *Candidate {
	ordered := make([]*Candidate, len(s.queue))
	copy(ordered, s.queue)
	// Stable by seq so equal-weight candidates resolve to "earliest wins".
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0 && ordered[j].seq < ordered[j-1].seq; j-- {
			ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
		}
	}

	total := 0
	for _, c := range ordered {
		total += c.Score + 1
	}
	draw := int(s.rng.Below(uint32(total)))
	for _, c := range ordered {
		draw -= c.Score + 1
		if draw < 0 {
			return c
		}
	}
	return ordered[len(ordered)-1]
}

// pickStrategy round-robins across the configured strategies, but lets the
// strategy with the best recent hit rate preempt the rotation with
// probability equal to its own EMA hit rate (spec.md §4.H: "the strategy
// with the best recent hit rate gets a bias").
func (s *Scheduler) pickStrategy() int {
	best, bestRate := -1, float32(0)
	for i, st := range s.stats {
		if st.hitRate > bestRate {
			best, bestRate = i, st.hitRate
		}
	}
	if best >= 0 && s.rng.SuccessChance(bestRate) {
		return best
	}
	idx := s.rrIndex
	s.rrIndex = (s.rrIndex + 1) % len(s.stats)
	return idx
}

func (s *Scheduler) recordOutcome(idx int, interesting bool) {
	hit := float32(0)
	if interesting {
		hit = 1
	}
	st := &s.stats[idx]
	st.hitRate = st.hitRate + emaAlpha*(hit-st.hitRate)
}

// Step runs one scheduler iteration (spec.md §4.H). It returns whether
// this step produced a hit, and whether the scheduler's stop condition
// (StopAfterHit / StopAfter) has now been met.
func (s *Scheduler) Step() (interesting bool, done bool) {
	s.mu.Lock()
	seed := s.pickSeed()
	strategyIdx := s.pickStrategy()
	strat := s.stats[strategyIdx].strat
	s.mu.Unlock()

	clone := seed.Program.Clone()

	// "Up to MaxRunLimit tries until the program is accepted" (spec.md
	// §4.H step 2): generator.Mutate never signals rejection on its own
	// (an invariant violation is fatal, not recoverable), so "accepted"
	// here means a try that actually recorded at least one taken
	// decision — a no-op draw just gets retried against the same clone.
	limit := s.opts.MaxRunLimit
	if limit <= 0 {
		limit = config.DefaultSchedulerOptions().MaxRunLimit
	}
	scale := s.opts.MutatorScale
	if scale == 0 {
		scale = config.DefaultSchedulerOptions().MutatorScale
	}
	var decisions []strategy.Decision
	for try := 0; try < limit; try++ {
		child := s.rng.SpawnChild()
		decisions = generator.Mutate(clone, child, strat, scale)
		if len(decisions) > 0 {
			break
		}
	}

	score, hit := s.feedback(clone)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stepCount++
	s.recordOutcome(strategyIdx, hit)
	if hit {
		s.hitCount++
		if s.output != nil {
			s.output(clone)
		}
		s.saveCandidate(clone, score, seed.OriginSeed, hit, decisions)
	}

	queueSize := s.opts.QueueSize
	if queueSize <= 0 {
		queueSize = config.DefaultSchedulerOptions().QueueSize
	}
	if len(s.queue) < queueSize || score > s.queue.floor() {
		heap.Push(&s.queue, s.newCandidate(clone, score, seed.OriginSeed))
		for len(s.queue) > queueSize {
			heap.Pop(&s.queue)
		}
		if !hit {
			s.saveCandidate(clone, score, seed.OriginSeed, hit, decisions)
		}
	}

	done = (s.opts.StopAfterHit && hit) || (s.opts.StopAfter > 0 && s.hitCount >= s.opts.StopAfter)
	s.emit(StepEvent{
		Step:        s.stepCount,
		Score:       score,
		Interesting: hit,
		QueueSize:   len(s.queue),
		Strategy:    strat.Name,
	})
	return hit, done
}

// Snapshot is a point-in-time, lock-free-to-read copy of the scheduler's
// progress, for the live monitor (spec.md's SPEC_FULL domain stack).
type Snapshot struct {
	QueueSize int
	HitCount  int
	StepCount int
	BestScore int
}

// Snapshot returns the scheduler's current state under lock.
func (s *Scheduler) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	best := 0
	for _, c := range s.queue {
		if c.Score > best {
			best = c.Score
		}
	}
	return Snapshot{
		QueueSize: len(s.queue),
		HitCount:  s.hitCount,
		StepCount: s.stepCount,
		BestScore: best,
	}
}
