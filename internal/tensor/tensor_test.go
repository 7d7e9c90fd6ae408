package tensor

import (
	"errors"
	"math"
	"testing"
)

func assertClose(t *testing.T, got, want float64, msg string) {
	t.Helper()
	if math.Abs(got-want) > 1e-5 {
		t.Errorf("%s: got %v, want %v", msg, got, want)
	}
}

// S1 — scalar-as-tensor backprop: a=[[2]], b=[[-3]], c=[[10]]; e = (a*b)+c.
func TestScalarBackprop(t *testing.T) {
	a, _ := New[float64](1, 1, []float64{2})
	b, _ := New[float64](1, 1, []float64{-3})
	c, _ := New[float64](1, 1, []float64{10})

	ab, err := MatMul(a, b)
	if err != nil {
		t.Fatalf("matmul: %v", err)
	}
	e, err := Add(ab, c)
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	assertClose(t, e.At(0, 0), 4, "e.data")

	if err := Backward(e, nil); err != nil {
		t.Fatalf("backward: %v", err)
	}

	assertClose(t, a.GradAt(0, 0), -3, "a.grad")
	assertClose(t, b.GradAt(0, 0), 2, "b.grad")
	assertClose(t, c.GradAt(0, 0), 1, "c.grad")
}

// S2 — MatMul gradients: A=[[2,3]] (1x2), B=[[4],[5]] (2x1).
func TestMatMulGradients(t *testing.T) {
	a, _ := New[float64](1, 2, []float64{2, 3})
	b, _ := New[float64](2, 1, []float64{4, 5})

	c, err := MatMul(a, b)
	if err != nil {
		t.Fatalf("matmul: %v", err)
	}
	assertClose(t, c.At(0, 0), 23, "c.data")

	if err := Backward(c, nil); err != nil {
		t.Fatalf("backward: %v", err)
	}

	assertClose(t, a.GradAt(0, 0), 4, "a.grad[0,0]")
	assertClose(t, a.GradAt(0, 1), 5, "a.grad[0,1]")
	assertClose(t, b.GradAt(0, 0), 2, "b.grad[0,0]")
	assertClose(t, b.GradAt(1, 0), 3, "b.grad[1,0]")
}

func TestMatMulShapeMismatch(t *testing.T) {
	a, _ := New[float64](1, 2, nil)
	b, _ := New[float64](3, 1, nil)

	_, err := MatMul(a, b)
	if err == nil {
		t.Fatal("expected shape mismatch error")
	}
	if !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("expected ErrShapeMismatch, got %v", err)
	}
}

func TestMatMulScalarBehavesAsMultiplication(t *testing.T) {
	a, _ := New[float64](1, 1, []float64{6})
	b, _ := New[float64](1, 1, []float64{7})

	c, err := MatMul(a, b)
	if err != nil {
		t.Fatalf("matmul: %v", err)
	}
	assertClose(t, c.At(0, 0), 42, "scalar matmul")

	if err := Backward(c, nil); err != nil {
		t.Fatalf("backward: %v", err)
	}
	assertClose(t, a.GradAt(0, 0), 7, "a.grad")
	assertClose(t, b.GradAt(0, 0), 6, "b.grad")
}

func TestAddBroadcastRowVector(t *testing.T) {
	// (1, 3) + (2, 3) -> (2, 3); gradient into the (1,3) operand sums across rows.
	a, _ := New[float64](1, 3, []float64{1, 2, 3})
	b, _ := New[float64](2, 3, []float64{10, 10, 10, 20, 20, 20})

	c, err := Add(a, b)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if c.Rows() != 2 || c.Cols() != 3 {
		t.Fatalf("unexpected broadcast shape (%d, %d)", c.Rows(), c.Cols())
	}
	assertClose(t, c.At(0, 0), 11, "c[0,0]")
	assertClose(t, c.At(1, 0), 21, "c[1,0]")

	if err := Backward(c, nil); err != nil {
		t.Fatalf("backward: %v", err)
	}
	// Each column of a receives gradient 1 from both broadcast rows: 1+1=2.
	for j := 0; j < 3; j++ {
		assertClose(t, a.GradAt(0, j), 2, "a.grad broadcast-summed")
	}
	for i := 0; i < 2; i++ {
		for j := 0; j < 3; j++ {
			assertClose(t, b.GradAt(i, j), 1, "b.grad")
		}
	}
}

func TestAddBroadcastIncompatible(t *testing.T) {
	a, _ := New[float64](3, 4, nil)
	b, _ := New[float64](3, 5, nil)

	_, err := Add(a, b)
	if err == nil {
		t.Fatal("expected broadcast error")
	}
	if !errors.Is(err, ErrBroadcastIncompatible) {
		t.Errorf("expected ErrBroadcastIncompatible, got %v", err)
	}
}

func TestReLUGradient(t *testing.T) {
	x, _ := New[float64](1, 3, []float64{-1, 0, 2})
	y := ReLU(x)

	assertClose(t, y.At(0, 0), 0, "relu(-1)")
	assertClose(t, y.At(0, 1), 0, "relu(0)")
	assertClose(t, y.At(0, 2), 2, "relu(2)")

	if err := Backward(y, nil); err != nil {
		t.Fatalf("backward: %v", err)
	}
	assertClose(t, x.GradAt(0, 0), 0, "grad at negative input")
	assertClose(t, x.GradAt(0, 1), 0, "grad at zero input")
	assertClose(t, x.GradAt(0, 2), 1, "grad at positive input")
}

func TestTanhGradient(t *testing.T) {
	x, _ := New[float64](1, 1, []float64{0})
	y := Tanh(x)
	assertClose(t, y.At(0, 0), 0, "tanh(0)")

	if err := Backward(y, nil); err != nil {
		t.Fatalf("backward: %v", err)
	}
	// d/dx tanh(x) at x=0 is 1 - 0^2 = 1.
	assertClose(t, x.GradAt(0, 0), 1, "tanh'(0)")
}

func TestTransposeAliasesStorage(t *testing.T) {
	x, _ := New[float64](2, 3, []float64{1, 2, 3, 4, 5, 6})
	xt := x.Transpose()
	xtt := xt.Transpose()

	if xtt.Rows() != x.Rows() || xtt.Cols() != x.Cols() {
		t.Fatalf("(x^T)^T shape mismatch: got (%d,%d)", xtt.Rows(), xtt.Cols())
	}

	// Mutate through the transpose; must be visible through x and (x^T)^T.
	xt.Set(2, 1, 99)
	assertClose(t, x.At(1, 2), 99, "mutation via transpose visible on original")
	assertClose(t, xtt.At(1, 2), 99, "mutation via transpose visible on double-transpose")
}

func TestApplyDecayZeroAgeLeavesWeightUnchanged(t *testing.T) {
	x, _ := New[float64](1, 1, []float64{10})
	ApplyDecay(x, 0.005, 0)
	assertClose(t, x.At(0, 0), 10, "decay at age 0")
}

func TestApplyDecayHalfLife(t *testing.T) {
	x, _ := New[float64](1, 1, []float64{10})
	halfLife := math.Log(2) / 0.005
	ApplyDecay(x, 0.005, halfLife)
	got := x.At(0, 0)
	if math.Abs(got-5.0) > 0.1 {
		t.Errorf("half-life decay: got %v, want ~5.0", got)
	}
}

func TestApplyDecayClampsSubnormalToZero(t *testing.T) {
	x, _ := New[float64](1, 1, []float64{10})
	ApplyDecay(x, 5, 100) // exp(-500) is far below the 1e-7 floor
	assertClose(t, x.At(0, 0), 0, "decay clamp")
}

func TestZeroGrad(t *testing.T) {
	x, _ := New[float64](1, 1, []float64{1})
	y := ReLU(x)
	_ = Backward(y, nil)
	if x.GradAt(0, 0) == 0 {
		t.Fatal("expected non-zero grad before ZeroGrad")
	}
	x.ZeroGrad()
	assertClose(t, x.GradAt(0, 0), 0, "grad after ZeroGrad")
}

func TestBackwardExplicitSeed(t *testing.T) {
	x, _ := New[float64](1, 2, []float64{1, 2})
	y := ReLU(x)

	if err := Backward(y, []float64{0, 5}); err != nil {
		t.Fatalf("backward: %v", err)
	}
	assertClose(t, x.GradAt(0, 0), 0, "seeded-zero gradient stays zero")
	assertClose(t, x.GradAt(0, 1), 5, "seeded gradient propagates")
}
