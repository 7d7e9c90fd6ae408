package graph

import (
	"math"

	"github.com/forge-ml/forge/internal/parallel"
)

const secondsPerDay = 86400

// decayMultiplierFloor mirrors tensor.ApplyDecay: a multiplier this small
// is treated as exact zero so decayed-out edges compare equal to pruned
// ones instead of carrying denormalized dust.
const decayMultiplierFloor = 1e-7

// ApplyDecay multiplies every edge's weight by exp(-lambda * age_days),
// where age_days = max(0, (now-last_modified)/secondsPerDay). Each node's
// outgoing edges are decayed under that node's own lock; since every
// edge is independently owned by exactly one node (the A->B edge lives
// on A, the B->A edge lives on B), no pair-locking is needed here even
// though AccumulateEdge requires it.
func (g *Graph) ApplyDecay(pool *parallel.Pool, lambda float64, now int64) {
	g.ParallelScan(pool, func(n *Node) {
		n.mu.Lock()
		for _, e := range n.edges {
			ageDays := float64(now-e.LastModified) / secondsPerDay
			if ageDays < 0 {
				ageDays = 0
			}
			mult := math.Exp(-lambda * ageDays)
			if mult < decayMultiplierFloor {
				mult = 0
			}
			e.Weight *= mult
		}
		n.mu.Unlock()
	})
}
