package graph

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/forge-ml/forge/internal/parallel"
)

func TestGetOrAddNodeStableIdentity(t *testing.T) {
	g := New()
	a, err := g.GetOrAddNode("a", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := g.GetOrAddNode("a", "ignored-on-second-insert")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != b {
		t.Fatal("expected the same *Node for repeated get_or_add_node calls")
	}
}

func TestGetOrAddNodeInvalidID(t *testing.T) {
	g := New()
	if _, err := g.GetOrAddNode("   ", nil); !errors.Is(err, ErrInvalidID) {
		t.Errorf("expected ErrInvalidID, got %v", err)
	}
	if _, err := g.GetOrAddNode("", nil); !errors.Is(err, ErrInvalidID) {
		t.Errorf("expected ErrInvalidID, got %v", err)
	}
}

func TestAccumulateEdgeMissingNode(t *testing.T) {
	g := New()
	if _, err := g.GetOrAddNode("a", nil); err != nil {
		t.Fatal(err)
	}
	if err := g.AccumulateEdge("a", "b", 1, 0); !errors.Is(err, ErrNodeMissing) {
		t.Errorf("expected ErrNodeMissing, got %v", err)
	}
}

func TestAccumulateEdgeSymmetricAndMonotoneTimestamp(t *testing.T) {
	g := New()
	g.GetOrAddNode("a", nil)
	g.GetOrAddNode("b", nil)

	if err := g.AccumulateEdge("a", "b", 2.5, 100); err != nil {
		t.Fatal(err)
	}
	if err := g.AccumulateEdge("a", "b", 1.5, 50); err != nil {
		t.Fatal(err)
	}

	a, _ := g.GetNode("a")
	b, _ := g.GetNode("b")

	ab := a.Edges()["b"]
	ba := b.Edges()["a"]

	if ab.Weight != 4 || ba.Weight != 4 {
		t.Errorf("expected symmetric weight 4, got a->b=%v b->a=%v", ab.Weight, ba.Weight)
	}
	if ab.LastModified != 100 || ba.LastModified != 100 {
		t.Errorf("expected last_modified to stay at the max timestamp seen (100), got a->b=%d b->a=%d", ab.LastModified, ba.LastModified)
	}
}

func TestAccumulateEdgeSelfLoop(t *testing.T) {
	g := New()
	g.GetOrAddNode("a", nil)
	if err := g.AccumulateEdge("a", "a", 3, 1); err != nil {
		t.Fatal(err)
	}
	a, _ := g.GetNode("a")
	if w := a.Edges()["a"].Weight; w != 3 {
		t.Errorf("expected self-loop weight 3, got %v", w)
	}
}

// TestConcurrentAccumulateSameDirection is S3: 1000 concurrent
// accumulate_edge(a, b, +1.0) calls must leave weight exactly 1000.0.
func TestConcurrentAccumulateSameDirection(t *testing.T) {
	g := New()
	g.GetOrAddNode("a", nil)
	g.GetOrAddNode("b", nil)

	const n = 1000
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			if err := g.AccumulateEdge("a", "b", 1.0, 1); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	a, _ := g.GetNode("a")
	if w := a.Edges()["b"].Weight; w != float64(n) {
		t.Errorf("got weight %v, want %v", w, float64(n))
	}
}

// TestConcurrentAccumulateBothDirections is S4: 10,000 goroutines
// accumulating a->b and 10,000 accumulating b->a concurrently must
// complete deadlock-free in well under 5s and leave both directions at
// 20,000.
func TestConcurrentAccumulateBothDirections(t *testing.T) {
	g := New()
	g.GetOrAddNode("a", nil)
	g.GetOrAddNode("b", nil)

	const n = 10000
	var wg sync.WaitGroup
	wg.Add(2 * n)

	done := make(chan struct{})
	go func() {
		for i := 0; i < n; i++ {
			go func() {
				defer wg.Done()
				_ = g.AccumulateEdge("a", "b", 1.0, 1)
			}()
			go func() {
				defer wg.Done()
				_ = g.AccumulateEdge("b", "a", 1.0, 1)
			}()
		}
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("accumulate_edge deadlocked or exceeded the 5s budget")
	}

	a, _ := g.GetNode("a")
	b, _ := g.GetNode("b")
	want := float64(2 * n)
	if w := a.Edges()["b"].Weight; w != want {
		t.Errorf("a->b: got %v, want %v", w, want)
	}
	if w := b.Edges()["a"].Weight; w != want {
		t.Errorf("b->a: got %v, want %v", w, want)
	}
}

func TestRemoveNodeSnipsReciprocalEdges(t *testing.T) {
	g := New()
	g.GetOrAddNode("a", nil)
	g.GetOrAddNode("b", nil)
	g.GetOrAddNode("c", nil)
	g.AccumulateEdge("a", "b", 1, 1)
	g.AccumulateEdge("a", "c", 1, 1)

	if !g.RemoveNode("a") {
		t.Fatal("expected RemoveNode to report removal")
	}
	if g.RemoveNode("a") {
		t.Fatal("expected second RemoveNode on the same id to report false")
	}
	if _, ok := g.TryGetNode("a"); ok {
		t.Fatal("expected a to be gone from the index")
	}

	b, _ := g.GetNode("b")
	if _, present := b.Edges()["a"]; present {
		t.Error("expected b's reciprocal edge to a to be removed")
	}
	c, _ := g.GetNode("c")
	if _, present := c.Edges()["a"]; present {
		t.Error("expected c's reciprocal edge to a to be removed")
	}
}

func TestRemoveNodeConcurrentBothSides(t *testing.T) {
	g := New()
	g.GetOrAddNode("a", nil)
	g.GetOrAddNode("b", nil)
	g.AccumulateEdge("a", "b", 1, 1)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); g.RemoveNode("a") }()
	go func() { defer wg.Done(); g.RemoveNode("b") }()
	wg.Wait()

	if _, ok := g.TryGetNode("a"); ok {
		t.Error("expected a removed")
	}
	if _, ok := g.TryGetNode("b"); ok {
		t.Error("expected b removed")
	}
}

func TestApplyDecayPerEdge(t *testing.T) {
	g := New()
	g.GetOrAddNode("a", nil)
	g.GetOrAddNode("b", nil)
	g.AccumulateEdge("a", "b", 10, 0)

	pool := parallel.New(parallel.SerialConfig())
	g.ApplyDecay(pool, 0.0, 0)

	a, _ := g.GetNode("a")
	if w := a.Edges()["b"].Weight; w != 10 {
		t.Errorf("zero elapsed time should leave weight unchanged, got %v", w)
	}

	g.ApplyDecay(pool, 1e9, secondsPerDay)
	a, _ = g.GetNode("a")
	if w := a.Edges()["b"].Weight; w != 0 {
		t.Errorf("expected decay multiplier to clamp to 0, got %v", w)
	}
}

func TestParallelProjectOrderedByID(t *testing.T) {
	g := New()
	g.GetOrAddNode("c", nil)
	g.GetOrAddNode("a", nil)
	g.GetOrAddNode("b", nil)

	pool := parallel.New(parallel.DefaultConfig())
	ids := ParallelProject(g, pool, func(n *Node) string { return n.ID })

	want := []string{"a", "b", "c"}
	for i, id := range want {
		if ids[i] != id {
			t.Errorf("index %d: got %q, want %q", i, ids[i], id)
		}
	}
}
