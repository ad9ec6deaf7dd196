// Package strategy implements the named probability vectors over decision
// sites that drive the generator/mutator (spec.md §4.F).
package strategy

import "ubfuzz/internal/rng"

// DefaultWeight is every site's weight before a preset overrides it
// (spec.md §4.F).
const DefaultWeight float32 = 0.5

// Strategy is (name, vector<f32> indexed by decision site, scale), per
// spec.md §4.F.
type Strategy struct {
	Name   string
	Scale  uint32
	values [numSites]float32
}

// New returns a Strategy with every site at DefaultWeight and scale 1.
func New(name string) *Strategy {
	s := &Strategy{Name: name, Scale: 1}
	for i := range s.values {
		s.values[i] = DefaultWeight
	}
	return s
}

// Set assigns site's weight.
func (s *Strategy) Set(site Site, weight float32) {
	s.values[site] = weight
}

// Get returns site's weight.
func (s *Strategy) Get(site Site) float32 {
	return s.values[site]
}

// Clone returns an independent copy of s.
func (s *Strategy) Clone() *Strategy {
	clone := *s
	return &clone
}

// Decision is one recorded (site, taken) pair from a mutate call
// (spec.md §9 "Strategy recording").
type Decision struct {
	Site  Site
	Taken bool
}

// Instance binds a Strategy to an RNG source and records, for every
// consulted site, whether the decision was taken (spec.md §4.F).
type Instance struct {
	Strategy  *Strategy
	Rng       *rng.Source
	Decisions []Decision
}

// NewInstance binds strat to source. The instance owns no global state —
// recorded decisions live only on this value (spec.md §9).
func NewInstance(strat *Strategy, source *rng.Source) *Instance {
	return &Instance{Strategy: strat, Rng: source}
}

// Decision draws a Bernoulli(strategy[site]) and records whether it was
// taken.
func (i *Instance) Decision(site Site) bool {
	taken := i.Rng.SuccessChance(i.Strategy.Get(site))
	i.Decisions = append(i.Decisions, Decision{Site: site, Taken: taken})
	return taken
}

// TakenDecisions returns only the sites that were consulted and taken, in
// order — useful for correlating a finding with the decisions that
// produced it (spec.md §9).
func (i *Instance) TakenDecisions() []Site {
	var out []Site
	for _, d := range i.Decisions {
		if d.Taken {
			out = append(out, d.Site)
		}
	}
	return out
}
