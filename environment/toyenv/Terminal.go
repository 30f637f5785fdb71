package toyenv

import (
	"github.com/samuelfneumann/mdpplayground/environment/space"
	"github.com/samuelfneumann/mdpplayground/utils/matutils"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
)

// terminalStates returns the n largest states of a relevant state space
// of the given size, largest first
func terminalStates(n, size int) []int {
	states := make([]int, n)
	for i := range states {
		states[i] = size - 1 - i
	}
	return states
}

// initialWeights returns the weights of the initial state distribution
// over a relevant state space of the given size whose top numTerminal
// states are terminal: uniform over the non-terminal states
func initialWeights(size, numTerminal int) []float64 {
	weights := make([]float64, size)
	nonTerminal := size - numTerminal
	for i := 0; i < nonTerminal; i++ {
		weights[i] = 1.0 / float64(nonTerminal)
	}
	return weights
}

// uniformWeights returns the weights of a uniform distribution over n
// states
func uniformWeights(n int) []float64 {
	weights := make([]float64, n)
	for i := range weights {
		weights[i] = 1.0 / float64(n)
	}
	return weights
}

// terminalRegion is the union of axis-aligned boxes around the terminal
// points of a continuous environment, in the relevant dimensions
type terminalRegion struct {
	boxes    []*space.Box
	relevant []int
}

// newTerminalRegion returns a new terminalRegion with a box of the
// given edge length centred at each of centres
func newTerminalRegion(centres [][]float64, edge float64, relevant []int,
	seed uint64) *terminalRegion {
	boxes := make([]*space.Box, len(centres))
	for i, centre := range centres {
		bounds := make([]r1.Interval, len(centre))
		for j, c := range centre {
			bounds[j] = r1.Interval{Min: c - edge/2, Max: c + edge/2}
		}
		boxes[i] = space.NewBox(bounds, seed)
	}
	return &terminalRegion{boxes: boxes, relevant: copyInts(relevant)}
}

// contains returns whether the relevant dimensions of state lie in any
// terminal box
func (t *terminalRegion) contains(state mat.Vector) bool {
	if len(t.boxes) == 0 {
		return false
	}

	relevant := mat.NewVecDense(len(t.relevant),
		matutils.SelectVec(matutils.RawVec(state), t.relevant))
	for _, box := range t.boxes {
		if box.Contains(relevant) {
			return true
		}
	}
	return false
}
