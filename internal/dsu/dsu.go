// Package dsu implements a parallel disjoint-set-union (union-find) over
// a dense [0, n) index space, used by internal/csr to compute connected
// components across a CSR snapshot's edges concurrently. Grounded on the
// teacher's internal/parallel worker-pool idiom for the fan-out shape;
// the union-find algorithm itself (path-splitting Find, ordinal-locked
// Union with union-by-rank) has no teacher analogue and is built fresh
// from the spec's Section 5 concurrency invariants.
package dsu

import "sync"

// DSU is a disjoint-set-union over the dense index space [0, n). The
// zero value is not usable; construct with New.
type DSU struct {
	parent []int32
	rank   []int8
	mu     []sync.Mutex
}

// New returns a DSU with n singleton sets, one per index.
func New(n int) *DSU {
	d := &DSU{
		parent: make([]int32, n),
		rank:   make([]int8, n),
		mu:     make([]sync.Mutex, n),
	}
	for i := range d.parent {
		d.parent[i] = int32(i)
	}
	return d
}

// Find returns the representative of x's set, path-splitting as it
// walks: every visited node's parent pointer is advanced to its
// grandparent, so repeated calls flatten the tree without ever taking a
// lock. Path-splitting is safe under concurrent Union calls because it
// only ever redirects a pointer to a value it already observed as an
// ancestor; it cannot introduce a cycle or point somewhere that was
// never true.
func (d *DSU) Find(x int32) int32 {
	for d.parent[x] != x {
		next := d.parent[x]
		gp := d.parent[next]
		d.parent[x] = gp
		x = next
	}
	return x
}

// Union merges the sets containing a and b. The two candidate roots'
// mutexes are taken in ascending index order so that two goroutines
// unioning the same pair of sets from either direction can never
// deadlock; after acquiring both locks, each root is re-resolved with
// Find in case a concurrent Union already merged one of them into a
// different tree, and the merge is retried from scratch if so.
func (d *DSU) Union(a, b int32) {
	for {
		ra, rb := d.Find(a), d.Find(b)
		if ra == rb {
			return
		}
		lo, hi := ra, rb
		if hi < lo {
			lo, hi = hi, lo
		}
		d.mu[lo].Lock()
		d.mu[hi].Lock()

		// Re-verify under lock: a concurrent union may have already
		// re-rooted a or b since the unlocked Find above.
		if d.Find(a) != ra || d.Find(b) != rb {
			d.mu[hi].Unlock()
			d.mu[lo].Unlock()
			continue
		}

		switch {
		case d.rank[ra] < d.rank[rb]:
			d.parent[ra] = rb
		case d.rank[ra] > d.rank[rb]:
			d.parent[rb] = ra
		default:
			d.parent[rb] = ra
			d.rank[ra]++
		}
		d.mu[hi].Unlock()
		d.mu[lo].Unlock()
		return
	}
}

// Groups returns the connected components as slices of member indices,
// keyed by nothing in particular: callers that need a stable order
// should sort the result or each inner slice themselves.
func (d *DSU) Groups() [][]int32 {
	byRoot := make(map[int32][]int32)
	for i := range d.parent {
		r := d.Find(int32(i))
		byRoot[r] = append(byRoot[r], int32(i))
	}
	out := make([][]int32, 0, len(byRoot))
	for _, members := range byRoot {
		out = append(out, members)
	}
	return out
}
