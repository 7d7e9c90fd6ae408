package tophash

import "testing"

func TestSumConcatMatchesManualConcat(t *testing.T) {
	a := []byte("row_ptr")
	b := []byte("col_idx")
	c := []byte("weights")

	got := SumConcat(a, b, c)
	want := Sum(append(append(append([]byte{}, a...), b...), c...))

	if got != want {
		t.Errorf("SumConcat diverged from manual concatenation")
	}
}

func TestSumConcatSensitiveToSmallChange(t *testing.T) {
	a := []byte{0x01, 0x02}
	b := []byte{0x03, 0x04}
	c1 := []byte{0x05, 0x06}
	c2 := []byte{0x05, 0x07}

	h1 := SumConcat(a, b, c1)
	h2 := SumConcat(a, b, c2)

	if h1 == h2 {
		t.Fatal("expected divergent digests for differing input")
	}
}

func TestHexIsUppercase(t *testing.T) {
	sum := Sum([]byte("forge"))
	hex := Hex(sum)
	for _, r := range hex {
		if r >= 'a' && r <= 'f' {
			t.Fatalf("expected uppercase hex, got %q", hex)
		}
	}
	if len(hex) != 64 {
		t.Errorf("expected 64 hex characters, got %d", len(hex))
	}
}
