package environment

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// SpecType determines what kind of specification a Spec is. A Spec can
// specify the layout of an action, an observation, a discount, or a
// reward.
type SpecType int

const (
	Action SpecType = iota
	Observation
	Discount
	Reward
)

func (s SpecType) String() string {
	switch s {
	case Action:
		return "Action"
	case Observation:
		return "Observation"
	case Discount:
		return "Discount"
	case Reward:
		return "Reward"
	default:
		return fmt.Sprintf("SpecType(%d)", int(s))
	}
}

// Cardinality determines whether the values a Spec describes are
// discrete or continuous
type Cardinality string

const (
	Continuous Cardinality = "Continuous"
	Discrete   Cardinality = "Discrete"
)

// Spec describes the type, shape, and bounds of an action, observation,
// discount, or reward in an environment. Bounds are inclusive.
type Spec struct {
	Shape      mat.Vector
	Type       SpecType
	LowerBound mat.Vector
	UpperBound mat.Vector
	Cardinality
}

// NewSpec constructs a new environment specification. The shape
// argument outlines the shape of the data described by the
// specification, and t what the specification describes. NewSpec
// panics if the bounds do not match the shape.
func NewSpec(shape mat.Vector, t SpecType, lowerBound,
	upperBound mat.Vector, cardinality Cardinality) Spec {
	if shape.Len() != lowerBound.Len() {
		panic(fmt.Sprintf("newSpec: shape length %v must match lower "+
			"bounds length %v", shape.Len(), lowerBound.Len()))
	}
	if shape.Len() != upperBound.Len() {
		panic(fmt.Sprintf("newSpec: shape length %v must match upper "+
			"bounds length %v", shape.Len(), upperBound.Len()))
	}
	return Spec{shape, t, lowerBound, upperBound, cardinality}
}

// NewDiscreteSpec returns the Spec of a multi-discrete space in which
// dimension i takes the values 0, 1, ..., sizes[i]-1
func NewDiscreteSpec(t SpecType, sizes ...int) Spec {
	upper := make([]float64, len(sizes))
	for i, size := range sizes {
		if size <= 0 {
			panic(fmt.Sprintf("newDiscreteSpec: size %d of dimension %d "+
				"must be positive", size, i))
		}
		upper[i] = float64(size - 1)
	}
	return NewBoundedSpec(t, make([]float64, len(sizes)), upper, Discrete)
}

// NewBoundedSpec returns the Spec of values lying between lower and
// upper in each dimension. Bounds may be infinite.
func NewBoundedSpec(t SpecType, lower, upper []float64,
	cardinality Cardinality) Spec {
	if len(lower) == 0 {
		panic("newBoundedSpec: spec must have at least one dimension")
	}
	return NewSpec(mat.NewVecDense(len(lower), nil), t,
		mat.NewVecDense(len(lower), lower), mat.NewVecDense(len(upper), upper),
		cardinality)
}

// NewScalarSpec returns the Spec of a single continuous value in
// [lower, upper], such as a reward or discount
func NewScalarSpec(t SpecType, lower, upper float64) Spec {
	return NewBoundedSpec(t, []float64{lower}, []float64{upper}, Continuous)
}

// Contains returns whether v has the shape of the Spec and lies within
// its bounds. Values of discrete Specs must also be integers.
func (s Spec) Contains(v mat.Vector) bool {
	if v.Len() != s.Shape.Len() {
		return false
	}
	for i := 0; i < v.Len(); i++ {
		x := v.AtVec(i)
		if math.IsNaN(x) || x < s.LowerBound.AtVec(i) ||
			x > s.UpperBound.AtVec(i) {
			return false
		}
		if s.Cardinality == Discrete && x != math.Trunc(x) {
			return false
		}
	}
	return true
}
