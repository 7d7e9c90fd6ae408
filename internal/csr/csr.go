// Package csr compiles a graph.Graph into an immutable Compressed Sparse
// Row snapshot: parallel row_ptr/col_idx/weights/last_modified arrays,
// a topology hash over them, and zero-copy access to the weights as a
// tensor row for downstream differentiable computation. Grounded on the
// teacher's internal/tensor.Storage aliasing (a Tensor never owns its
// buffer outright; View shares one) and internal/serialization's
// buffer-layout conventions, generalized from a flat tensor buffer to a
// sparse adjacency layout the teacher never needed.
package csr

import (
	"sort"

	"github.com/forge-ml/forge/internal/graph"
	"github.com/forge-ml/forge/internal/parallel"
	"github.com/forge-ml/forge/internal/tensor"
	"github.com/forge-ml/forge/internal/tophash"
)

// Snapshot is an immutable compiled view of a graph at one point in
// time. Every slice is exactly edge_count long except RowPtr, which is
// node_count+1, and IndexToID, which is node_count long.
type Snapshot[T tensor.Numeric] struct {
	NodeCount int
	EdgeCount int

	RowPtr       []int32
	ColIdx       []int32
	Weights      []T
	LastModified []int64

	IndexToID []string
	IDToIndex map[string]int32
}

// rowEdge is an intermediate per-row record built before the CSR arrays
// are assembled, kept sorted by the neighbor's assigned index so the
// compiled arrays — and therefore the topology hash — are deterministic
// regardless of ingestion order or goroutine scheduling.
type rowEdge struct {
	colIdx       int32
	weight       float64
	lastModified int64
}

// Compile produces a Snapshot of g. Nodes are assigned indices by
// ascending id (graph.Graph.SortedNodes' order), and each row's edges
// are assigned column positions by ascending neighbor index, making the
// output byte-identical across two structurally identical graphs
// regardless of insertion order. Callers are responsible for quiescing
// ingestion (no concurrent AccumulateEdge/RemoveNode) before compiling;
// Compile itself does not lock the graph, it only reads each node's
// edges under that node's own mutex via Node.Edges.
func Compile[T tensor.Numeric](g *graph.Graph, pool *parallel.Pool) *Snapshot[T] {
	nodes := g.SortedNodes()
	n := len(nodes)

	indexToID := make([]string, n)
	idToIndex := make(map[string]int32, n)
	for i, node := range nodes {
		indexToID[i] = node.ID
		idToIndex[node.ID] = int32(i)
	}

	rows := make([][]rowEdge, n)
	pool.For(n, func(i int) {
		edges := nodes[i].Edges()
		row := make([]rowEdge, 0, len(edges))
		for target, e := range edges {
			idx, ok := idToIndex[target]
			if !ok {
				continue // target removed after this node's edge snapshot was read
			}
			row = append(row, rowEdge{colIdx: idx, weight: e.Weight, lastModified: e.LastModified})
		}
		sort.Slice(row, func(a, b int) bool { return row[a].colIdx < row[b].colIdx })
		rows[i] = row
	})

	rowPtr := make([]int32, n+1)
	for i := 0; i < n; i++ {
		rowPtr[i+1] = rowPtr[i] + int32(len(rows[i]))
	}
	edgeCount := int(rowPtr[n])

	colIdx := make([]int32, edgeCount)
	weights := make([]T, edgeCount)
	lastModified := make([]int64, edgeCount)
	pool.For(n, func(i int) {
		base := rowPtr[i]
		for j, re := range rows[i] {
			colIdx[int(base)+j] = re.colIdx
			weights[int(base)+j] = T(re.weight)
			lastModified[int(base)+j] = re.lastModified
		}
	})

	return &Snapshot[T]{
		NodeCount:    n,
		EdgeCount:    edgeCount,
		RowPtr:       rowPtr,
		ColIdx:       colIdx,
		Weights:      weights,
		LastModified: lastModified,
		IndexToID:    indexToID,
		IDToIndex:    idToIndex,
	}
}

// WeightsAsTensor returns a 1xEdgeCount tensor view aliasing the
// snapshot's Weights buffer directly: writes through the tensor (e.g. an
// in-place ApplyDecay) are visible in s.Weights and vice versa, with no
// copy.
func (s *Snapshot[T]) WeightsAsTensor() *tensor.Tensor[T] {
	storage := tensor.NewStorage(s.Weights)
	return tensor.View[T](storage, 1, s.EdgeCount, s.EdgeCount, 1, 0)
}

// TopologyHash fingerprints the snapshot's row_ptr, col_idx, and weights
// arrays (in that order) as raw little-endian bytes, with weights narrowed
// to float32 first. Two snapshots with identical structure and weights,
// compiled from graphs built in different orders, produce the same digest;
// any structural difference, or any weight difference that survives the
// narrowing to float32, produces a divergent one.
func (s *Snapshot[T]) TopologyHash() [32]byte {
	return tophash.SumConcat(int32sToBytes(s.RowPtr), int32sToBytes(s.ColIdx), weightsToBytes(s.Weights))
}
