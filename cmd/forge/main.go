// Package main provides the forge CLI: a small demo binary that builds a
// random graph, compiles it to CSR, and exercises the core library end
// to end.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/forge-ml/forge/csr"
	"github.com/forge-ml/forge/graph"
	"github.com/forge-ml/forge/internal/parallel"
	"github.com/forge-ml/forge/tensor"
)

const version = "v0.1.0-dev"

func main() {
	var (
		nodes   = flag.Int("nodes", 50, "number of nodes in the demo graph")
		edges   = flag.Int("edges", 200, "number of random edges to accumulate")
		seed    = flag.Int64("seed", 1, "random seed")
		showVer = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVer {
		fmt.Printf("forge %s\n", version)
		return
	}

	if *nodes <= 0 || *edges < 0 {
		fmt.Fprintln(os.Stderr, "forge: -nodes must be positive and -edges must be non-negative")
		os.Exit(1)
	}

	g := buildRandomGraph(*nodes, *edges, *seed)

	pool := parallel.New(parallel.DefaultConfig())
	snapshot := csr.Compile[float32](g, pool)

	components := csr.ConnectedComponents(snapshot, pool, nil)
	fmt.Printf("nodes=%d edges=%d components=%d\n", snapshot.NodeCount, snapshot.EdgeCount, len(components))

	if snapshot.EdgeCount > 0 {
		weights := snapshot.WeightsAsTensor()
		activated := tensor.ReLU(weights)
		fmt.Printf("weights: min=%.4f max=%.4f (post-ReLU)\n", minRow(activated), maxRow(activated))
	}

	hash := snapshot.TopologyHash()
	fmt.Printf("topology hash: %X\n", hash)
}

func buildRandomGraph(nodeCount, edgeCount int, seed int64) *graph.Graph {
	g := graph.New()
	ids := make([]string, nodeCount)
	for i := range ids {
		ids[i] = fmt.Sprintf("n%d", i)
		if _, err := g.GetOrAddNode(ids[i], nil); err != nil {
			panic(err)
		}
	}

	rng := rand.New(rand.NewSource(seed))
	now := time.Now().Unix()
	for i := 0; i < edgeCount; i++ {
		from := ids[rng.Intn(nodeCount)]
		to := ids[rng.Intn(nodeCount)]
		weight := rng.Float64() * 5
		if err := g.AccumulateEdge(from, to, weight, now); err != nil {
			panic(err)
		}
	}
	return g
}

func minRow(t *tensor.Tensor[float32]) float32 {
	min := t.At(0, 0)
	for j := 1; j < t.Cols(); j++ {
		if v := t.At(0, j); v < min {
			min = v
		}
	}
	return min
}

func maxRow(t *tensor.Tensor[float32]) float32 {
	max := t.At(0, 0)
	for j := 1; j < t.Cols(); j++ {
		if v := t.At(0, j); v > max {
			max = v
		}
	}
	return max
}
