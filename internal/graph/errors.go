// Package graph implements the concurrent keyed weighted multigraph: the
// store that ingestion writes into and compile_csr reads a snapshot from.
// Grounded on the teacher's internal/tensor concurrency-free design plus
// internal/parallel for fan-out; the per-node mutex and ordinal lock
// ordering scheme has no direct teacher analogue (the teacher's tensors
// are single-threaded-write) and is built fresh from the spec's Section 4
// concurrency invariants, using sync.Map the way the standard library
// documents it: a map of stable keys read far more often than the key set
// changes.
package graph

import "errors"

// ErrInvalidID is returned when a node id is empty or all whitespace.
var ErrInvalidID = errors.New("graph: invalid node id")

// ErrNodeMissing is returned when an operation references a node id that
// is not present in the graph.
var ErrNodeMissing = errors.New("graph: node missing")
