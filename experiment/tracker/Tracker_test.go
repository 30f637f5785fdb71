package tracker

import (
	"path/filepath"
	"testing"

	ts "github.com/samuelfneumann/mdpplayground/timestep"
	"gonum.org/v1/gonum/mat"
)

// episode returns the TimeSteps of an episode with the given rewards
func episode(rewards ...float64) []ts.TimeStep {
	obs := mat.NewVecDense(1, nil)
	steps := []ts.TimeStep{ts.New(ts.First, 0, 1, obs, 0)}
	for i, r := range rewards {
		stepType := ts.Mid
		if i == len(rewards)-1 {
			stepType = ts.Last
		}
		steps = append(steps, ts.New(stepType, r, 1, obs, i+1))
	}
	return steps
}

func TestReturnAndEpisodeLength(t *testing.T) {
	dir := t.TempDir()
	r := NewReturn(filepath.Join(dir, "return.bin"))
	l := NewEpisodeLength(filepath.Join(dir, "length.bin"))

	var steps []ts.TimeStep
	steps = append(steps, episode(1, 2, 3)...)
	steps = append(steps, episode(-1)...)
	steps = append(steps, episode(5, 5)[:2]...)
	for _, step := range steps {
		r.Track(step)
		l.Track(step)
	}

	wantReturns := []float64{6, -1}
	wantLengths := []float64{3, 1}
	if got := r.Returns(); !equal(got, wantReturns) {
		t.Errorf("returns: want %v, have %v", wantReturns, got)
	}
	if got := l.Lengths(); !equal(got, wantLengths) {
		t.Errorf("lengths: want %v, have %v", wantLengths, got)
	}

	if err := r.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := l.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	data, err := LoadData(filepath.Join(dir, "return.bin"))
	if err != nil {
		t.Fatalf("loadData: %v", err)
	}
	if !equal(data, wantReturns) {
		t.Errorf("loaded returns: want %v, have %v", wantReturns, data)
	}
	data, err = LoadData(filepath.Join(dir, "length.bin"))
	if err != nil {
		t.Fatalf("loadData: %v", err)
	}
	if !equal(data, wantLengths) {
		t.Errorf("loaded lengths: want %v, have %v", wantLengths, data)
	}

	if _, err := LoadData(filepath.Join(dir, "missing.bin")); err == nil {
		t.Errorf("loadData: expected error for missing file")
	}
}

func TestReturnPanicsOnGap(t *testing.T) {
	r := NewReturn("")
	steps := episode(1, 2, 3)

	defer func() {
		if recover() == nil {
			t.Errorf("track: expected panic for non-sequential timesteps")
		}
	}()
	r.Track(steps[0])
	r.Track(steps[2])
}

func equal(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
