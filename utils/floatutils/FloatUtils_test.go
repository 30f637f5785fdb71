package floatutils

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r1"
)

func TestClipSlice(t *testing.T) {
	intervals := []r1.Interval{{Min: -1, Max: 1}, {Min: 0, Max: 2}}

	values := []float64{0.5, 1}
	if ClipSlice(values, intervals) {
		t.Errorf("clipSlice: values in bounds were clipped")
	}

	values = []float64{-3, 2.5}
	if !ClipSlice(values, intervals) {
		t.Errorf("clipSlice: values out of bounds were not clipped")
	}
	if values[0] != -1 || values[1] != 2 {
		t.Errorf("clipSlice: want [-1 2], have %v", values)
	}
}

func TestFactorials(t *testing.T) {
	want := []float64{1, 2, 6, 24}
	got := Factorials(4)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("factorials: want %v, have %v", want, got)
			break
		}
	}
}

func TestNaNs(t *testing.T) {
	nans := NaNs(3)
	if len(nans) != 3 || !math.IsNaN(nans[2]) || !AnyNaN(nans) {
		t.Errorf("naNs: have %v", nans)
	}
	if AnyNaN([]float64{1, 2}) {
		t.Errorf("anyNaN: no NaN in [1 2]")
	}
}
