package graph

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/forge-ml/forge/internal/parallel"
)

// Edge is one directed weight record owned by a Node: the accumulated
// weight and the most recent write timestamp seen for it.
type Edge struct {
	Target       string
	Weight       float64
	LastModified int64
}

// Node is a single vertex: an id, caller-supplied payload, and the set of
// outgoing edges it owns. A Node's mutex guards its own edges map only;
// operations touching two nodes take both mutexes in ascending id order.
type Node struct {
	ID   string
	Data any

	mu    sync.Mutex
	edges map[string]*Edge
}

// Edges returns a snapshot copy of n's outgoing edges, safe to range over
// without holding any lock.
func (n *Node) Edges() map[string]Edge {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make(map[string]Edge, len(n.edges))
	for k, e := range n.edges {
		out[k] = *e
	}
	return out
}

// Graph is a concurrent keyed weighted multigraph. The zero value is not
// usable; construct with New.
type Graph struct {
	nodes sync.Map // string id -> *Node
}

// New returns an empty Graph ready for concurrent use.
func New() *Graph {
	return &Graph{}
}

// GetOrAddNode atomically inserts a node for id if absent, or returns the
// existing one unchanged. The returned pointer is the stable identity for
// id: concurrent callers racing on the same id always observe the same
// *Node.
func (g *Graph) GetOrAddNode(id string, data any) (*Node, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidID
	}
	fresh := &Node{ID: id, Data: data, edges: make(map[string]*Edge)}
	actual, _ := g.nodes.LoadOrStore(id, fresh)
	return actual.(*Node), nil
}

// TryGetNode looks up id without failing when it is absent.
func (g *Graph) TryGetNode(id string) (*Node, bool) {
	v, ok := g.nodes.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*Node), true
}

// GetNode looks up id, failing with ErrNodeMissing when absent.
func (g *Graph) GetNode(id string) (*Node, error) {
	n, ok := g.TryGetNode(id)
	if !ok {
		return nil, fmt.Errorf("graph: get node %q: %w", id, ErrNodeMissing)
	}
	return n, nil
}

// order returns a and b sorted so that pair-locking always proceeds in
// the same direction regardless of call order, preventing deadlock
// between two goroutines accumulating the same edge in opposite
// directions.
func order(a, b *Node) (first, second *Node) {
	if b.ID < a.ID {
		return b, a
	}
	return a, b
}

// AccumulateEdge adds delta to the weight of the from->to edge and,
// unless from == to, the symmetric to->from edge, advancing each edge's
// last-modified timestamp to max(existing, timestamp). Both edges move
// atomically with respect to any other Accumulate/Remove touching either
// node: the two node mutexes are taken in ascending id order so that two
// goroutines accumulating the same pair from opposite directions can
// never deadlock.
func (g *Graph) AccumulateEdge(from, to string, delta float64, timestamp int64) error {
	fromNode, err := g.GetNode(from)
	if err != nil {
		return err
	}
	toNode, err := g.GetNode(to)
	if err != nil {
		return err
	}

	if from == to {
		fromNode.mu.Lock()
		bumpEdge(fromNode, to, delta, timestamp)
		fromNode.mu.Unlock()
		return nil
	}

	first, second := order(fromNode, toNode)
	first.mu.Lock()
	second.mu.Lock()
	bumpEdge(fromNode, to, delta, timestamp)
	bumpEdge(toNode, from, delta, timestamp)
	second.mu.Unlock()
	first.mu.Unlock()
	return nil
}

// bumpEdge applies delta/timestamp to n's edge toward target. The caller
// must hold n.mu.
func bumpEdge(n *Node, target string, delta float64, timestamp int64) {
	e := n.edges[target]
	if e == nil {
		e = &Edge{Target: target}
		n.edges[target] = e
	}
	e.Weight += delta
	if timestamp > e.LastModified {
		e.LastModified = timestamp
	}
}

// RemoveNode deletes id and every edge referencing it, returning false if
// id was already absent. id is unindexed first so no new edge can reach
// it, then each neighbor's reciprocal entry is snipped under the same
// ordinal pair-lock AccumulateEdge uses, re-checking presence under lock
// since a concurrent RemoveNode of the same neighbor may have already
// cleared it.
func (g *Graph) RemoveNode(id string) bool {
	v, loaded := g.nodes.LoadAndDelete(id)
	if !loaded {
		return false
	}
	node := v.(*Node)

	node.mu.Lock()
	neighbors := make([]string, 0, len(node.edges))
	for target := range node.edges {
		neighbors = append(neighbors, target)
	}
	node.mu.Unlock()

	for _, nbID := range neighbors {
		if nbID == id {
			continue
		}
		nb, ok := g.TryGetNode(nbID)
		if !ok {
			continue
		}
		first, second := order(node, nb)
		first.mu.Lock()
		second.mu.Lock()
		if _, present := nb.edges[id]; present {
			delete(nb.edges, id)
		}
		second.mu.Unlock()
		first.mu.Unlock()
	}
	return true
}

// Len returns the current node count.
func (g *Graph) Len() int {
	n := 0
	g.nodes.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// SortedNodes returns every node, ordered by ascending id. Compilation
// and projection both rely on this for deterministic output.
func (g *Graph) SortedNodes() []*Node {
	out := make([]*Node, 0, g.Len())
	g.nodes.Range(func(_, v any) bool {
		out = append(out, v.(*Node))
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ParallelScan invokes action once per node, fanned out across pool.
func (g *Graph) ParallelScan(pool *parallel.Pool, action func(*Node)) {
	nodes := g.SortedNodes()
	pool.For(len(nodes), func(i int) {
		action(nodes[i])
	})
}

// ParallelProject invokes selector once per node, fanned out across pool,
// and returns the results in ascending-id order.
func ParallelProject[R any](g *Graph, pool *parallel.Pool, selector func(*Node) R) []R {
	nodes := g.SortedNodes()
	out := make([]R, len(nodes))
	pool.For(len(nodes), func(i int) {
		out[i] = selector(nodes[i])
	})
	return out
}
