// Package tensor implements the core of the engine: a flat, strided
// storage buffer and a rank-2 Tensor view over it that records enough of
// its own construction to support reverse-mode automatic differentiation.
//
// A Tensor never owns a second copy of its data for views: a transpose
// shares the same underlying Storage, and the CSR weight alias (see the
// csr package) wraps the snapshot's weights slice without copying it.
package tensor

import "fmt"

// Numeric is the scalar type constraint for Storage and Tensor. 32-bit is
// the default for compute-bound workloads; 64-bit is available where
// precision matters more than footprint (graph decay). The topology hash
// and the persisted format narrow weights to 32-bit either way.
type Numeric interface {
	~float32 | ~float64
}

// Storage is a flat contiguous buffer of scalars plus a parallel gradient
// buffer of identical length. Both are zero-initialized unless seeded, and
// share a single lifetime: there is no way to free one without the other.
type Storage[T Numeric] struct {
	Data []T
	Grad []T
}

func newStorage[T Numeric](data []T) *Storage[T] {
	return &Storage[T]{
		Data: data,
		Grad: make([]T, len(data)),
	}
}

// NewStorage wraps data as a Storage without copying it, allocating a
// fresh zero-filled gradient buffer of the same length. Used to alias an
// externally owned buffer — e.g. a CSR snapshot's weights array — as
// tensor storage.
func NewStorage[T Numeric](data []T) *Storage[T] {
	return newStorage(data)
}

// Tensor is a strided view over a Storage with an autograd record: the
// list of input tensors that produced it, and a backward closure that
// distributes its (already-accumulated) gradient into those inputs.
//
// Leaves — tensors created directly by a caller rather than by an
// operation — have an empty input list and a no-op backward closure.
type Tensor[T Numeric] struct {
	storage               *Storage[T]
	rows, cols             int
	rowStride, colStride   int
	offset                 int
	inputs                 []*Tensor[T]
	backward               func()
}

// New creates an owning Tensor: it allocates a zero-filled buffer (or
// adopts the caller-provided one) and a zero-filled gradient buffer of
// identical length, with row-major strides [cols, 1]. The returned tensor
// is a leaf.
func New[T Numeric](rows, cols int, data []T) (*Tensor[T], error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("tensor.New: invalid shape (%d, %d): dimensions must be positive", rows, cols)
	}
	n := rows * cols
	if data == nil {
		data = make([]T, n)
	} else if len(data) != n {
		return nil, fmt.Errorf("tensor.New: shape (%d, %d) requires %d elements, got %d", rows, cols, n, len(data))
	}

	return &Tensor[T]{
		storage:   newStorage(data),
		rows:      rows,
		cols:      cols,
		rowStride: cols,
		colStride: 1,
		backward:  func() {},
	}, nil
}

// View creates a Tensor sharing both the data and gradient buffers of an
// existing Storage, with caller-supplied shape and strides. Transpose and
// the CSR weight alias are built from this. The returned tensor is a leaf:
// its own backward is a no-op, since writes through it land in the shared
// Storage directly.
func View[T Numeric](storage *Storage[T], rows, cols, rowStride, colStride, offset int) *Tensor[T] {
	return &Tensor[T]{
		storage:   storage,
		rows:      rows,
		cols:      cols,
		rowStride: rowStride,
		colStride: colStride,
		offset:    offset,
		backward:  func() {},
	}
}

// Wrap adopts an existing flat buffer as a Tensor's storage without
// copying, building a fresh zero-filled gradient buffer alongside it. It
// behaves exactly like New, including its shape and length checks. The CSR
// weight alias does not use Wrap; it is built from NewStorage and View.
func Wrap[T Numeric](rows, cols int, data []T) (*Tensor[T], error) {
	return New(rows, cols, data)
}

// Rows returns the number of rows.
func (t *Tensor[T]) Rows() int { return t.rows }

// Cols returns the number of columns.
func (t *Tensor[T]) Cols() int { return t.cols }

// Strides returns (rowStride, colStride).
func (t *Tensor[T]) Strides() (int, int) { return t.rowStride, t.colStride }

// Storage returns the tensor's underlying Storage, for callers that need
// to alias it (e.g. the CSR snapshot handing its weights buffer back out).
func (t *Tensor[T]) Storage() *Storage[T] { return t.storage }

// Inputs returns the tensors this one was computed from. Empty for leaves.
func (t *Tensor[T]) Inputs() []*Tensor[T] { return t.inputs }

// addr computes the flat storage index for (i, j): offset + i*rowStride + j*colStride.
func (t *Tensor[T]) addr(i, j int) int {
	return t.offset + i*t.rowStride + j*t.colStride
}

// At returns the element at (i, j). Panics on out-of-range indices.
func (t *Tensor[T]) At(i, j int) T {
	t.checkBounds("At", i, j)
	return t.storage.Data[t.addr(i, j)]
}

// Set writes the element at (i, j). Panics on out-of-range indices.
func (t *Tensor[T]) Set(i, j int, v T) {
	t.checkBounds("Set", i, j)
	t.storage.Data[t.addr(i, j)] = v
}

// GradAt returns the accumulated gradient at (i, j).
func (t *Tensor[T]) GradAt(i, j int) T {
	t.checkBounds("GradAt", i, j)
	return t.storage.Grad[t.addr(i, j)]
}

// AddGrad accumulates delta into the gradient at (i, j).
func (t *Tensor[T]) AddGrad(i, j int, delta T) {
	t.checkBounds("AddGrad", i, j)
	t.storage.Grad[t.addr(i, j)] += delta
}

// SetGrad overwrites the gradient at (i, j).
func (t *Tensor[T]) SetGrad(i, j int, v T) {
	t.checkBounds("SetGrad", i, j)
	t.storage.Grad[t.addr(i, j)] = v
}

// ZeroGrad zeroes the entire gradient buffer backing this tensor. The
// engine never does this on its own caller must call it explicitly
// between training iterations.
func (t *Tensor[T]) ZeroGrad() {
	g := t.storage.Grad
	for i := range g {
		g[i] = 0
	}
}

func (t *Tensor[T]) checkBounds(op string, i, j int) {
	if i < 0 || i >= t.rows || j < 0 || j >= t.cols {
		panic(fmt.Sprintf("tensor.%s: index (%d, %d) out of bounds for shape (%d, %d)", op, i, j, t.rows, t.cols))
	}
}

// Transpose returns a zero-copy view with rows and columns (and strides)
// swapped: shape (cols, rows), strides (colStride, rowStride). It shares
// the same Storage, so writes through either tensor are visible through
// the other — (A^T)^T aliases the original data and strides exactly.
func (t *Tensor[T]) Transpose() *Tensor[T] {
	out := &Tensor[T]{
		storage:   t.storage,
		rows:      t.cols,
		cols:      t.rows,
		rowStride: t.colStride,
		colStride: t.rowStride,
		offset:    t.offset,
		inputs:    []*Tensor[T]{t},
		backward:  func() {},
	}
	return out
}

// String renders a short human-readable summary.
func (t *Tensor[T]) String() string {
	return fmt.Sprintf("Tensor(%d, %d)", t.rows, t.cols)
}
