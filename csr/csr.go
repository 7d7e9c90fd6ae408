// Copyright 2026 Forge Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package csr provides the public API for compiling a graph into an
// immutable Compressed Sparse Row snapshot: deterministic row_ptr/
// col_idx/weights/last_modified arrays, a zero-copy tensor alias of the
// weights buffer, a topology hash, and parallel (with a sequential
// reference implementation) connected components.
package csr

import (
	"github.com/forge-ml/forge/internal/csr"
	"github.com/forge-ml/forge/internal/graph"
	"github.com/forge-ml/forge/internal/parallel"
	"github.com/forge-ml/forge/internal/tensor"
)

// Snapshot is an immutable compiled view of a graph at one point in
// time.
type Snapshot[T tensor.Numeric] = csr.Snapshot[T]

// EdgePredicate decides whether an edge should participate in connected
// components. A nil predicate includes every edge.
type EdgePredicate = csr.EdgePredicate

// Compile produces a Snapshot of g, deterministic regardless of
// ingestion order: nodes are indexed by ascending id, and each row's
// edges are ordered by ascending neighbor index.
func Compile[T tensor.Numeric](g *graph.Graph, pool *parallel.Pool) *Snapshot[T] {
	return csr.Compile[T](g, pool)
}

// ConnectedComponents partitions s's nodes into connected components
// using a parallel disjoint-set-union pass fanned out across pool,
// skipping any edge for which predicate (when non-nil) returns false.
func ConnectedComponents[T tensor.Numeric](s *Snapshot[T], pool *parallel.Pool, predicate EdgePredicate) [][]string {
	return csr.ConnectedComponents(s, pool, predicate)
}

// SequentialComponents is a single-threaded BFS reference
// implementation of ConnectedComponents, for parity testing.
func SequentialComponents[T tensor.Numeric](s *Snapshot[T], predicate EdgePredicate) [][]string {
	return csr.SequentialComponents(s, predicate)
}
