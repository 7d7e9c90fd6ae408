package tensor

import "fmt"

// MatMul computes C = A @ B for A(n,m) and B(m,p), returning C(n,p).
// Forward uses a strided triple loop (correctness is defined by this
// reference; a production backend may substitute a BLAS call).
//
// Backward, on receiving C.grad, accumulates:
//
//	A.grad += C.grad @ B^T
//	B.grad += A^T @ C.grad
func MatMul[T Numeric](a, b *Tensor[T]) (*Tensor[T], error) {
	if a.cols != b.rows {
		return nil, newShapeMismatch("matmul",
			"a.cols == b.rows",
			fmt.Sprintf("a=(%d,%d) b=(%d,%d)", a.rows, a.cols, b.rows, b.cols))
	}

	n, m, p := a.rows, a.cols, b.cols
	out, err := New[T](n, p, nil)
	if err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			var sum T
			for k := 0; k < m; k++ {
				sum += a.At(i, k) * b.At(k, j)
			}
			out.Set(i, j, sum)
		}
	}

	out.inputs = []*Tensor[T]{a, b}
	out.backward = func() {
		// A.grad[i,k] += sum_j C.grad[i,j] * B[k,j]
		for i := 0; i < n; i++ {
			for k := 0; k < m; k++ {
				var sum T
				for j := 0; j < p; j++ {
					sum += out.GradAt(i, j) * b.At(k, j)
				}
				a.AddGrad(i, k, sum)
			}
		}
		// B.grad[k,j] += sum_i A[i,k] * C.grad[i,j]
		for k := 0; k < m; k++ {
			for j := 0; j < p; j++ {
				var sum T
				for i := 0; i < n; i++ {
					sum += a.At(i, k) * out.GradAt(i, j)
				}
				b.AddGrad(k, j, sum)
			}
		}
	}

	return out, nil
}

// broadcastDim returns the output dimension for a single axis given both
// operand dimensions, following the rule: equal dims pass through, a
// dimension of 1 takes on the other operand's size, anything else is
// incompatible.
func broadcastDim(op string, aDim, bDim int) (int, error) {
	switch {
	case aDim == bDim:
		return aDim, nil
	case aDim == 1:
		return bDim, nil
	case bDim == 1:
		return aDim, nil
	default:
		return 0, newBroadcastIncompatible(op,
			"dims equal, or one of them 1",
			fmt.Sprintf("%d vs %d", aDim, bDim))
	}
}

// bcastIndex maps an output-space index back into an operand's index
// space: a singleton dimension always contributes index 0.
func bcastIndex(dim, idx int) int {
	if dim == 1 {
		return 0
	}
	return idx
}

// Add computes A + B with NumPy-style broadcasting: if shapes match
// exactly it is a plain element-wise add; otherwise each output dimension
// is the max of the two operand dimensions, and an operand contributes its
// single row/column wherever its own size is 1.
//
// Backward sums each output gradient cell into every input cell it was
// broadcast from — broadcasting naturally reduces along expanded
// dimensions.
func Add[T Numeric](a, b *Tensor[T]) (*Tensor[T], error) {
	outRows, err := broadcastDim("add", a.rows, b.rows)
	if err != nil {
		return nil, err
	}
	outCols, err := broadcastDim("add", a.cols, b.cols)
	if err != nil {
		return nil, err
	}

	out, err := New[T](outRows, outCols, nil)
	if err != nil {
		return nil, err
	}

	for i := 0; i < outRows; i++ {
		ai := bcastIndex(a.rows, i)
		bi := bcastIndex(b.rows, i)
		for j := 0; j < outCols; j++ {
			aj := bcastIndex(a.cols, j)
			bj := bcastIndex(b.cols, j)
			out.Set(i, j, a.At(ai, aj)+b.At(bi, bj))
		}
	}

	out.inputs = []*Tensor[T]{a, b}
	out.backward = func() {
		for i := 0; i < outRows; i++ {
			ai := bcastIndex(a.rows, i)
			bi := bcastIndex(b.rows, i)
			for j := 0; j < outCols; j++ {
				aj := bcastIndex(a.cols, j)
				bj := bcastIndex(b.cols, j)
				g := out.GradAt(i, j)
				a.AddGrad(ai, aj, g)
				b.AddGrad(bi, bj, g)
			}
		}
	}

	return out, nil
}

// ReLU computes element-wise max(0, x). Backward routes gradient only
// where the forward output is strictly positive (the output, not the
// input — the two agree everywhere except at zero, where the gradient is
// defined as 0).
func ReLU[T Numeric](x *Tensor[T]) *Tensor[T] {
	out, err := New[T](x.rows, x.cols, nil)
	if err != nil {
		panic(err) // shape already validated by x
	}

	for i := 0; i < x.rows; i++ {
		for j := 0; j < x.cols; j++ {
			v := x.At(i, j)
			if v > 0 {
				out.Set(i, j, v)
			}
		}
	}

	out.inputs = []*Tensor[T]{x}
	out.backward = func() {
		for i := 0; i < x.rows; i++ {
			for j := 0; j < x.cols; j++ {
				if out.At(i, j) > 0 {
					x.AddGrad(i, j, out.GradAt(i, j))
				}
			}
		}
	}

	return out
}

// Tanh computes element-wise hyperbolic tangent. Backward uses
// localGrad = 1 - t^2 where t is the forward output.
func Tanh[T Numeric](x *Tensor[T]) *Tensor[T] {
	out, err := New[T](x.rows, x.cols, nil)
	if err != nil {
		panic(err)
	}

	for i := 0; i < x.rows; i++ {
		for j := 0; j < x.cols; j++ {
			out.Set(i, j, tanhT(x.At(i, j)))
		}
	}

	out.inputs = []*Tensor[T]{x}
	out.backward = func() {
		for i := 0; i < x.rows; i++ {
			for j := 0; j < x.cols; j++ {
				t := out.At(i, j)
				local := T(1) - t*t
				x.AddGrad(i, j, out.GradAt(i, j)*local)
			}
		}
	}

	return out
}

// ApplyDecay multiplies x in place by exp(-lambda * max(0, elapsed)),
// where elapsed is expressed in the same unit the caller uses everywhere
// else in the system (days, to match graph.Graph.ApplyDecay — see
// DESIGN.md). When the multiplier falls below 1e-7 it is clamped to zero
// to avoid propagating sub-normal values. This is an in-place,
// non-differentiable operation: it does not touch the gradient buffer and
// is never recorded on the autograd graph.
func ApplyDecay[T Numeric](x *Tensor[T], lambda, elapsed float64) {
	age := elapsed
	if age < 0 {
		age = 0
	}
	mult := expT[T](-lambda * age)
	if mult < 1e-7 {
		mult = 0
	}
	m := T(mult)
	for i := 0; i < x.rows; i++ {
		for j := 0; j < x.cols; j++ {
			x.Set(i, j, x.At(i, j)*m)
		}
	}
}
