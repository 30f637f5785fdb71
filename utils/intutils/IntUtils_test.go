package intutils

import (
	"math"
	"testing"
)

func TestProducts(t *testing.T) {
	tests := []struct {
		name string
		f    func() (int, error)
		want int
	}{
		{"prod", func() (int, error) { return Prod(2, 3, 4) }, 24},
		{"empty prod", func() (int, error) { return Prod() }, 1},
		{"pow", func() (int, error) { return Pow(3, 4) }, 81},
		{"pow zero", func() (int, error) { return Pow(5, 0) }, 1},
		{"falling factorial", func() (int, error) {
			return FallingFactorial(6, 3)
		}, 120},
		{"falling factorial k > n", func() (int, error) {
			return FallingFactorial(2, 3)
		}, 0},
	}

	for _, test := range tests {
		got, err := test.f()
		if err != nil {
			t.Errorf("%v: %v", test.name, err)
			continue
		}
		if got != test.want {
			t.Errorf("%v: want %v, have %v", test.name, test.want, got)
		}
	}

	if _, err := Mul(math.MaxInt/2+1, 2); err == nil {
		t.Errorf("mul: expected overflow error")
	}
	if _, err := Pow(10, 40); err == nil {
		t.Errorf("pow: expected overflow error")
	}
}

func TestRavelUnravel(t *testing.T) {
	maxes := []int{2, 3, 4}
	for scalar := 0; scalar < 24; scalar++ {
		index, err := Unravel(scalar, maxes)
		if err != nil {
			t.Fatalf("unravel(%v): %v", scalar, err)
		}
		got, err := Ravel(index, maxes)
		if err != nil {
			t.Fatalf("ravel(%v): %v", index, err)
		}
		if got != scalar {
			t.Errorf("ravel(unravel(%v)) = %v", scalar, got)
		}
	}

	if index, _ := Unravel(5, maxes); index[0] != 0 || index[1] != 1 ||
		index[2] != 1 {
		t.Errorf("unravel(5): want [0 1 1], have %v", index)
	}
	if _, err := Ravel([]int{0, 3, 0}, maxes); err == nil {
		t.Errorf("ravel: expected error for index out of range")
	}
	if _, err := Unravel(24, maxes); err == nil {
		t.Errorf("unravel: expected error for scalar out of range")
	}
}

func TestSelectComplement(t *testing.T) {
	if got := Select([]int{5, 6, 7, 8}, []int{3, 1}); got[0] != 8 ||
		got[1] != 6 {
		t.Errorf("select: want [8 6], have %v", got)
	}

	got := Complement(5, []int{3, 0})
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 4 {
		t.Errorf("complement: want [1 2 4], have %v", got)
	}
	if got := Complement(2, []int{0, 1}); len(got) != 0 {
		t.Errorf("complement: want [], have %v", got)
	}
}
