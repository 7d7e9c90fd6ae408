// Copyright 2026 Forge Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package graph provides the public API for the concurrent keyed
// weighted multigraph: get-or-add nodes, accumulate directed-and-mirrored
// edge weights under deterministic ordinal locking, remove nodes with
// reciprocal edge cleanup, decay edges by age, and fan work out across
// nodes via an injected worker pool.
package graph

import (
	"github.com/forge-ml/forge/internal/graph"
	"github.com/forge-ml/forge/internal/parallel"
)

// Node is a single vertex: an id, caller-supplied payload, and its
// outgoing edges.
type Node = graph.Node

// Edge is one directed weight record: accumulated weight and the most
// recent write timestamp seen for it.
type Edge = graph.Edge

// Graph is a concurrent keyed weighted multigraph. The zero value is not
// usable; construct with New.
type Graph = graph.Graph

// Sentinel errors, matchable with errors.Is.
var (
	ErrInvalidID   = graph.ErrInvalidID
	ErrNodeMissing = graph.ErrNodeMissing
)

// New returns an empty Graph ready for concurrent use.
func New() *Graph {
	return graph.New()
}

// ParallelProject invokes selector once per node, fanned out across
// pool, returning the results in ascending-id order.
func ParallelProject[R any](g *Graph, pool *parallel.Pool, selector func(*Node) R) []R {
	return graph.ParallelProject(g, pool, selector)
}
