// Copyright 2026 Forge Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for the rank-2 differentiable
// tensor engine: a strided view over a shared Storage buffer, with
// broadcasting arithmetic, matmul, activations, and reverse-mode
// autograd.
//
// Example:
//
//	a, _ := tensor.New[float64](1, 2, []float64{2, 3})
//	b, _ := tensor.New[float64](2, 1, []float64{4, 5})
//	c, _ := tensor.MatMul(a, b)      // c = [[23]]
//	_ = tensor.Backward(c, nil)      // a.grad = [[4, 5]], b.grad = [[2], [3]]
package tensor

import (
	"github.com/forge-ml/forge/internal/tensor"
)

// Numeric is the scalar type constraint for Storage and Tensor: float32
// (the default for compute-bound workloads) or float64 (for scientific
// and graph-decay use where precision matters more than footprint).
type Numeric = tensor.Numeric

// Storage is a flat contiguous data buffer plus a parallel gradient
// buffer of identical length.
type Storage[T Numeric] = tensor.Storage[T]

// Tensor is a strided view over a Storage, carrying an autograd record
// (input tensors and a backward closure).
type Tensor[T Numeric] = tensor.Tensor[T]

// New creates an owning leaf tensor with row-major strides, allocating a
// zero-filled buffer or adopting the caller-provided one.
func New[T Numeric](rows, cols int, data []T) (*Tensor[T], error) {
	return tensor.New[T](rows, cols, data)
}

// View creates a tensor sharing an existing Storage's data and gradient
// buffers, with caller-supplied shape and strides.
func View[T Numeric](storage *Storage[T], rows, cols, rowStride, colStride, offset int) *Tensor[T] {
	return tensor.View[T](storage, rows, cols, rowStride, colStride, offset)
}

// Wrap adopts an existing flat buffer as a tensor's storage without
// copying data, building a fresh gradient buffer alongside it.
func Wrap[T Numeric](rows, cols int, data []T) (*Tensor[T], error) {
	return tensor.Wrap[T](rows, cols, data)
}

// MatMul computes A @ B, failing with ErrShapeMismatch when the inner
// dimensions disagree.
func MatMul[T Numeric](a, b *Tensor[T]) (*Tensor[T], error) {
	return tensor.MatMul(a, b)
}

// Add computes A + B with NumPy-style broadcasting, failing with
// ErrBroadcastIncompatible when an operand dimension is neither 1 nor the
// output dimension.
func Add[T Numeric](a, b *Tensor[T]) (*Tensor[T], error) {
	return tensor.Add(a, b)
}

// ReLU computes element-wise max(0, x).
func ReLU[T Numeric](x *Tensor[T]) *Tensor[T] {
	return tensor.ReLU(x)
}

// Tanh computes element-wise hyperbolic tangent.
func Tanh[T Numeric](x *Tensor[T]) *Tensor[T] {
	return tensor.Tanh(x)
}

// ApplyDecay multiplies x in place by exp(-lambda * max(0, elapsed)),
// clamping the multiplier to zero below 1e-7. Non-differentiable: it is
// never recorded on the autograd graph.
func ApplyDecay[T Numeric](x *Tensor[T], lambda, elapsed float64) {
	tensor.ApplyDecay(x, lambda, elapsed)
}

// Backward runs reverse-mode automatic differentiation rooted at t. A nil
// seed implicitly seeds the root's gradient with ones (dL/dL = 1 for a
// scalar loss); a non-nil seed is copied in row-major order.
func Backward[T Numeric](t *Tensor[T], seed []T) error {
	return tensor.Backward(t, seed)
}

// Sentinel errors for shape failures, matchable with errors.Is.
var (
	ErrShapeMismatch         = tensor.ErrShapeMismatch
	ErrBroadcastIncompatible = tensor.ErrBroadcastIncompatible
)

// ShapeError carries structured detail about a shape failure.
type ShapeError = tensor.ShapeError
