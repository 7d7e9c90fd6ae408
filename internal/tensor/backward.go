package tensor

import "fmt"

// Backward computes gradients for the DAG rooted at t.
//
// Algorithm:
//  1. Build a topological order by DFS over the input-list relation
//     (leaves first, root last), using a visited set keyed by tensor
//     identity.
//  2. Seed the root's gradient: if seed is nil, fill it with ones (the
//     implicit dL/dL = 1 of a scalar loss); otherwise copy seed
//     element-by-element into the root's gradient buffer. Backward never
//     inspects the root's existing gradient to decide whether to seed —
//     callers that want partial/sparse upstream gradients pass them
//     explicitly (see DESIGN.md on the zero-grad seeding heuristic).
//  3. Walk the topological order in reverse (root first, leaves last),
//     invoking each tensor's backward closure. Gradients accumulate
//     additively into input gradient buffers; the engine never clears a
//     gradient buffer on its own.
func Backward[T Numeric](t *Tensor[T], seed []T) error {
	if seed != nil && len(seed) != t.rows*t.cols {
		return fmt.Errorf("tensor.Backward: seed has %d elements, root has shape (%d, %d)", len(seed), t.rows, t.cols)
	}

	order := topoOrder(t)

	if seed == nil {
		for i := 0; i < t.rows; i++ {
			for j := 0; j < t.cols; j++ {
				t.SetGrad(i, j, 1)
			}
		}
	} else {
		k := 0
		for i := 0; i < t.rows; i++ {
			for j := 0; j < t.cols; j++ {
				t.SetGrad(i, j, seed[k])
				k++
			}
		}
	}

	for i := len(order) - 1; i >= 0; i-- {
		order[i].backward()
	}

	return nil
}

// topoOrder returns the tensors reachable from root via the input-list
// relation, in dependency order (a tensor appears only after every tensor
// it depends on). Reversing this order gives the order backward closures
// must run in: root first, so that by the time a tensor's own closure
// runs, every consumer that could contribute to its gradient has already
// run.
func topoOrder[T Numeric](root *Tensor[T]) []*Tensor[T] {
	visited := make(map[*Tensor[T]]bool)
	var order []*Tensor[T]

	var visit func(*Tensor[T])
	visit = func(node *Tensor[T]) {
		if visited[node] {
			return
		}
		visited[node] = true
		for _, in := range node.inputs {
			visit(in)
		}
		order = append(order, node)
	}
	visit(root)

	return order
}
