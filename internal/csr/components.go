package csr

import (
	"sort"

	"github.com/forge-ml/forge/internal/dsu"
	"github.com/forge-ml/forge/internal/parallel"
	"github.com/forge-ml/forge/internal/tensor"
)

// EdgePredicate decides whether an edge should participate in connected
// components, given its endpoints' indices, weight, and last-modified
// timestamp. A nil predicate includes every edge.
type EdgePredicate func(fromIdx, toIdx int32, weight float64, lastModified int64) bool

// ConnectedComponents partitions the snapshot's nodes into connected
// components, fanning the union-find pass for each row out across pool.
// Edges failing predicate (when non-nil) are skipped, so e.g. passing a
// minimum-weight predicate computes components of the "strong" subgraph
// only — the weak-bridge edges below the threshold never union their
// endpoints. Components are returned as node ids, each group sorted, and
// groups sorted by their smallest id, for deterministic output.
func ConnectedComponents[T tensor.Numeric](s *Snapshot[T], pool *parallel.Pool, predicate EdgePredicate) [][]string {
	d := dsu.New(s.NodeCount)

	pool.For(s.NodeCount, func(i int) {
		start, end := s.RowPtr[i], s.RowPtr[i+1]
		for k := start; k < end; k++ {
			j := s.ColIdx[k]
			if predicate != nil && !predicate(int32(i), j, float64(s.Weights[k]), s.LastModified[k]) {
				continue
			}
			d.Union(int32(i), j)
		}
	})

	return groupsToIDs(s, d.Groups())
}

// SequentialComponents is a single-threaded BFS reference implementation
// of ConnectedComponents, used in tests to establish parity with the
// parallel DSU-based pass.
func SequentialComponents[T tensor.Numeric](s *Snapshot[T], predicate EdgePredicate) [][]string {
	visited := make([]bool, s.NodeCount)
	var groups [][]int32

	for start := 0; start < s.NodeCount; start++ {
		if visited[start] {
			continue
		}
		queue := []int32{int32(start)}
		visited[start] = true
		var members []int32

		for len(queue) > 0 {
			i := queue[0]
			queue = queue[1:]
			members = append(members, i)

			rowStart, rowEnd := s.RowPtr[i], s.RowPtr[i+1]
			for k := rowStart; k < rowEnd; k++ {
				j := s.ColIdx[k]
				if predicate != nil && !predicate(i, j, float64(s.Weights[k]), s.LastModified[k]) {
					continue
				}
				if !visited[j] {
					visited[j] = true
					queue = append(queue, j)
				}
			}
		}
		groups = append(groups, members)
	}

	return groupsToIDs(s, groups)
}

func groupsToIDs[T tensor.Numeric](s *Snapshot[T], groups [][]int32) [][]string {
	out := make([][]string, 0, len(groups))
	for _, members := range groups {
		ids := make([]string, len(members))
		for i, idx := range members {
			ids[i] = s.IndexToID[idx]
		}
		sort.Strings(ids)
		out = append(out, ids)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) == 0 || len(out[j]) == 0 {
			return len(out[i]) < len(out[j])
		}
		return out[i][0] < out[j][0]
	})
	return out
}
