package scheduler

import (
	"container/heap"

	"ubfuzz/internal/program"
)

// Candidate is one (program, score, origin_seed) entry in the bounded
// priority queue, per spec.md §4.H.
type Candidate struct {
	Program    *program.Program
	Score      int
	OriginSeed int64

	// seq is the candidate's insertion order, used both to break weighted
	// selection ties (spec.md §4.H step 1: "ties broken by insertion
	// order") and as the heap's secondary sort key so Pop is deterministic
	// when two candidates share a Score.
	seq int
}

// candidateQueue is a min-heap on Score (ties on seq), so popping the root
// always evicts the least interesting candidate — exactly the operation
// spec.md §4.H step 5 needs ("evict lowest-score to maintain Q").
type candidateQueue []*Candidate

func (q candidateQueue) Len() int { return len(q) }

func (q candidateQueue) Less(i, j int) bool {
	if q[i].Score != q[j].Score {
		return q[i].Score < q[j].Score
	}
	return q[i].seq < q[j].seq
}

func (q candidateQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *candidateQueue) Push(x any) {
	*q = append(*q, x.(*Candidate))
}

func (q *candidateQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}

// floor returns the current lowest score in the queue, or 0 if empty. The
// heap invariant already keeps the minimum at the root.
func (q candidateQueue) floor() int {
	if len(q) == 0 {
		return 0
	}
	return q[0].Score
}

var _ heap.Interface = (*candidateQueue)(nil)
