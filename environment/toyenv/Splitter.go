package toyenv

import (
	"fmt"

	"github.com/samuelfneumann/mdpplayground/utils/intutils"
	"github.com/samuelfneumann/mdpplayground/utils/matutils"
	"gonum.org/v1/gonum/mat"
)

// Scalars holds the scalar indices of the relevant and irrelevant parts
// of a discrete state and action. Irrelevant indices are NotAState if
// the space has no irrelevant dimensions.
type Scalars struct {
	State, Action                     int
	IrrelevantState, IrrelevantAction int
}

// dims describes how one multi-discrete space splits into relevant and
// irrelevant dimensions
type dims struct {
	size                    int
	relevant, irrelevant    []int
	relevantMaxes, irrMaxes []int
}

// split returns the scalar indices of the relevant and irrelevant parts
// of v
func (d dims) split(v mat.Vector) (rel, irr int, err error) {
	if v.Len() != d.size {
		return 0, 0, fmt.Errorf("split: expected vector of length %d, got %d",
			d.size, v.Len())
	}
	index, err := matutils.VecInts(v)
	if err != nil {
		return 0, 0, fmt.Errorf("split: %w", err)
	}

	rel, err = intutils.Ravel(intutils.Select(index, d.relevant),
		d.relevantMaxes)
	if err != nil {
		return 0, 0, fmt.Errorf("split: %w", err)
	}

	irr = NotAState
	if len(d.irrelevant) > 0 {
		irr, err = intutils.Ravel(intutils.Select(index, d.irrelevant),
			d.irrMaxes)
		if err != nil {
			return 0, 0, fmt.Errorf("split: %w", err)
		}
	}
	return rel, irr, nil
}

// combine is the inverse of split
func (d dims) combine(rel, irr int) (*mat.VecDense, error) {
	index := make([]int, d.size)

	relIndex, err := intutils.Unravel(rel, d.relevantMaxes)
	if err != nil {
		return nil, fmt.Errorf("combine: relevant: %w", err)
	}
	for i, dim := range d.relevant {
		index[dim] = relIndex[i]
	}

	if len(d.irrelevant) > 0 {
		irrIndex, err := intutils.Unravel(irr, d.irrMaxes)
		if err != nil {
			return nil, fmt.Errorf("combine: irrelevant: %w", err)
		}
		for i, dim := range d.irrelevant {
			index[dim] = irrIndex[i]
		}
	}

	return matutils.IntsVec(index...), nil
}

// Splitter converts between the combined representation of discrete
// states and actions seen outside the environment and the scalar
// indices of their relevant and irrelevant parts used inside it.
//
// Scalar indices are computed with a mixed radix in which the last of
// the selected dimensions varies fastest. For simple discrete spaces,
// the conversion is the identity.
type Splitter struct {
	state, action dims
}

// NewSplitter returns a new Splitter for the discrete spaces of r
func NewSplitter(r Resolved) (*Splitter, error) {
	if !r.Discrete() {
		return nil, fmt.Errorf("newSplitter: spaces must be discrete")
	}
	return &Splitter{
		state: dims{
			size:          len(r.StateSpaceSize),
			relevant:      copyInts(r.StateSpaceRelevantIndices),
			irrelevant:    copyInts(r.StateSpaceIrrelevantIndices),
			relevantMaxes: copyInts(r.RelevantStateSpaceMaxes),
			irrMaxes:      copyInts(r.IrrelevantStateSpaceMaxes),
		},
		action: dims{
			size:          len(r.ActionSpaceSize),
			relevant:      copyInts(r.ActionSpaceRelevantIndices),
			irrelevant:    copyInts(r.ActionSpaceIrrelevantIndices),
			relevantMaxes: copyInts(r.RelevantActionSpaceMaxes),
			irrMaxes:      copyInts(r.IrrelevantActionSpaceMaxes),
		},
	}, nil
}

// SplitState returns the relevant and irrelevant scalar indices of a
// combined state
func (s *Splitter) SplitState(state mat.Vector) (rel, irr int, err error) {
	rel, irr, err = s.state.split(state)
	if err != nil {
		return 0, 0, fmt.Errorf("splitState: %w", err)
	}
	return rel, irr, nil
}

// SplitAction returns the relevant and irrelevant scalar indices of a
// combined action
func (s *Splitter) SplitAction(action mat.Vector) (rel, irr int, err error) {
	rel, irr, err = s.action.split(action)
	if err != nil {
		return 0, 0, fmt.Errorf("splitAction: %w", err)
	}
	return rel, irr, nil
}

// CombineState returns the combined state with the given relevant and
// irrelevant scalar indices
func (s *Splitter) CombineState(rel, irr int) (*mat.VecDense, error) {
	state, err := s.state.combine(rel, irr)
	if err != nil {
		return nil, fmt.Errorf("combineState: %w", err)
	}
	return state, nil
}

// CombineAction returns the combined action with the given relevant
// and irrelevant scalar indices
func (s *Splitter) CombineAction(rel, irr int) (*mat.VecDense, error) {
	action, err := s.action.combine(rel, irr)
	if err != nil {
		return nil, fmt.Errorf("combineAction: %w", err)
	}
	return action, nil
}

// ToScalar splits a combined state and action into scalar indices
func (s *Splitter) ToScalar(state, action mat.Vector) (Scalars, error) {
	var sc Scalars
	var err error

	sc.State, sc.IrrelevantState, err = s.SplitState(state)
	if err != nil {
		return Scalars{}, fmt.Errorf("toScalar: %w", err)
	}
	sc.Action, sc.IrrelevantAction, err = s.SplitAction(action)
	if err != nil {
		return Scalars{}, fmt.Errorf("toScalar: %w", err)
	}
	return sc, nil
}

// ToCombined is the inverse of ToScalar
func (s *Splitter) ToCombined(sc Scalars) (state, action *mat.VecDense,
	err error) {
	state, err = s.CombineState(sc.State, sc.IrrelevantState)
	if err != nil {
		return nil, nil, fmt.Errorf("toCombined: %w", err)
	}
	action, err = s.CombineAction(sc.Action, sc.IrrelevantAction)
	if err != nil {
		return nil, nil, fmt.Errorf("toCombined: %w", err)
	}
	return state, action, nil
}
