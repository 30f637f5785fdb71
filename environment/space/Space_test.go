package space

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
)

func TestDiscrete(t *testing.T) {
	d := NewDiscrete(5, 1)

	if d.N() != 5 || d.Len() != 1 {
		t.Errorf("size: want (5, 1), have (%v, %v)", d.N(), d.Len())
	}

	for i := 0; i < 100; i++ {
		if s := d.Sample(); !d.Contains(s) {
			t.Fatalf("sample %v not contained", s.AtVec(0))
		}
	}

	tests := []struct {
		x    *mat.VecDense
		want bool
	}{
		{mat.NewVecDense(1, []float64{0}), true},
		{mat.NewVecDense(1, []float64{4}), true},
		{mat.NewVecDense(1, []float64{5}), false},
		{mat.NewVecDense(1, []float64{-1}), false},
		{mat.NewVecDense(1, []float64{1.5}), false},
		{mat.NewVecDense(2, []float64{1, 1}), false},
	}
	for _, test := range tests {
		if got := d.Contains(test.x); got != test.want {
			t.Errorf("contains(%v): want %v, have %v", test.x.RawVector().Data,
				test.want, got)
		}
	}
}

func TestDiscreteSampleN(t *testing.T) {
	d := NewDiscrete(6, 2)

	samples, err := d.SampleN(6, false)
	if err != nil {
		t.Fatalf("sampleN: %v", err)
	}
	seen := make(map[int]bool)
	for _, s := range samples {
		if seen[s] || !d.ContainsIndex(s) {
			t.Errorf("sampling without replacement gave %v", samples)
			break
		}
		seen[s] = true
	}

	samples, err = d.SampleN(20, true)
	if err != nil {
		t.Fatalf("sampleN: %v", err)
	}
	if len(samples) != 20 {
		t.Errorf("sampling with replacement: want 20 samples, have %v",
			len(samples))
	}

	if _, err := d.SampleN(7, false); err == nil {
		t.Errorf("sampleN: expected error sampling 7 of 6 without " +
			"replacement")
	}
	if samples, err := d.SampleN(0, false); err != nil || len(samples) != 0 {
		t.Errorf("sampleN(0): want no samples, have %v, %v", samples, err)
	}
}

func TestDiscreteSampleWeighted(t *testing.T) {
	d := NewDiscrete(4, 3)

	for i := 0; i < 100; i++ {
		s, err := d.SampleWeighted([]float64{0, 0, 1, 0})
		if err != nil {
			t.Fatalf("sampleWeighted: %v", err)
		}
		if s != 2 {
			t.Fatalf("sampleWeighted: want 2, have %v", s)
		}
	}

	bad := [][]float64{{1, 1}, {-1, 1, 1, 1}, {0, 0, 0, 0}}
	for _, weights := range bad {
		if _, err := d.SampleWeighted(weights); err == nil {
			t.Errorf("sampleWeighted(%v): expected error", weights)
		}
	}
}

func TestSeedReproducible(t *testing.T) {
	spaces := []Space{
		NewDiscrete(10, 1),
		NewMultiDiscrete([]int{3, 4, 5}, 1),
		NewSymmetricBox(3, 2, 1),
		NewSymmetricBox(3, math.Inf(1), 1),
	}

	for _, s := range spaces {
		s.Seed(7)
		first := s.Sample()
		s.Seed(7)
		second := s.Sample()
		if !mat.Equal(first, second) {
			t.Errorf("reseeding: %v != %v", first.RawVector().Data,
				second.RawVector().Data)
		}
	}
}

func TestMultiDiscrete(t *testing.T) {
	m := NewMultiDiscrete([]int{2, 3}, 4)

	if m.Len() != 2 {
		t.Errorf("len: want 2, have %v", m.Len())
	}
	for i := 0; i < 100; i++ {
		if s := m.Sample(); !m.Contains(s) {
			t.Fatalf("sample %v not contained", s.RawVector().Data)
		}
	}

	tests := []struct {
		x    []float64
		want bool
	}{
		{[]float64{1, 2}, true},
		{[]float64{2, 0}, false},
		{[]float64{0, 3}, false},
		{[]float64{0, 0.5}, false},
		{[]float64{0}, false},
	}
	for _, test := range tests {
		x := mat.NewVecDense(len(test.x), test.x)
		if got := m.Contains(x); got != test.want {
			t.Errorf("contains(%v): want %v, have %v", test.x, test.want, got)
		}
	}

	sizes := m.Sizes()
	sizes[0] = 10
	if m.Sizes()[0] != 2 {
		t.Errorf("modifying returned sizes modified the space")
	}
}

func TestBox(t *testing.T) {
	b := NewBox([]r1.Interval{{Min: -1, Max: 1}, {Min: 0, Max: 5}}, 3)
	if !b.Bounded() {
		t.Errorf("bounded box reported unbounded")
	}
	for i := 0; i < 100; i++ {
		if s := b.Sample(); !b.Contains(s) {
			t.Fatalf("sample %v not contained", s.RawVector().Data)
		}
	}

	tests := []struct {
		x    []float64
		want bool
	}{
		{[]float64{-1, 5}, true},
		{[]float64{0, 2.5}, true},
		{[]float64{1.1, 2}, false},
		{[]float64{0, math.NaN()}, false},
		{[]float64{0}, false},
	}
	for _, test := range tests {
		x := mat.NewVecDense(len(test.x), test.x)
		if got := b.Contains(x); got != test.want {
			t.Errorf("contains(%v): want %v, have %v", test.x, test.want, got)
		}
	}
}

func TestUnboundedBox(t *testing.T) {
	b := NewBox([]r1.Interval{
		{Min: math.Inf(-1), Max: math.Inf(1)},
		{Min: 2, Max: math.Inf(1)},
		{Min: math.Inf(-1), Max: -3},
	}, 5)
	if b.Bounded() {
		t.Errorf("unbounded box reported bounded")
	}

	for i := 0; i < 200; i++ {
		s := b.Sample()
		if !b.Contains(s) {
			t.Fatalf("sample %v not contained", s.RawVector().Data)
		}
	}
}

func TestNewBoxPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("newBox: expected panic for min > max")
		}
	}()
	NewBox([]r1.Interval{{Min: 1, Max: 0}}, 0)
}
