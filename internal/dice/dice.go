// Package dice implements a weighted discrete sampler over a fixed set of
// face labels. Faces are generic: any ordered, comparable type works, so a
// die can carry strings, ints or floats.
package dice

import (
	"cmp"
	"errors"
	"fmt"
	"math"

	"github.com/dicelab/montecarlo/internal/engine"
)

// ErrValidation indicates malformed input: duplicate or empty faces, a bad
// weight, or a non-positive roll count.
var ErrValidation = errors.New("validation failed")

// ErrUnknownFace indicates a face label not present in the die's face set.
var ErrUnknownFace = errors.New("unknown face")

// FaceWeight is one (face, weight) pair of a die snapshot.
type FaceWeight[F cmp.Ordered] struct {
	Face   F
	Weight float64
}

// Die is a weighted random-outcome generator. The face set is fixed at
// creation; weights start at 1.0 and can be changed one face at a time.
// A Die keeps no memory of past rolls.
//
// A Die is not safe for concurrent use: callers must not interleave
// ChangeWeight with an in-progress Roll on the same instance.
type Die[F cmp.Ordered] struct {
	faces   []F
	weights map[F]float64
	src     engine.Source
}

// New creates a die over the given faces, each weighted 1.0, drawing from
// a crypto/rand entropy source.
func New[F cmp.Ordered](faces []F) (*Die[F], error) {
	return NewWithSource(faces, engine.EntropySource{})
}

// NewWithSource creates a die that draws from the provided source. Seeded
// sources make rolls reproducible.
func NewWithSource[F cmp.Ordered](faces []F, src engine.Source) (*Die[F], error) {
	if len(faces) == 0 {
		return nil, fmt.Errorf("%w: face set must not be empty", ErrValidation)
	}
	if src == nil {
		return nil, fmt.Errorf("%w: nil random source", ErrValidation)
	}

	weights := make(map[F]float64, len(faces))
	for _, f := range faces {
		if _, dup := weights[f]; dup {
			return nil, fmt.Errorf("%w: duplicate face %v", ErrValidation, f)
		}
		weights[f] = 1.0
	}

	d := &Die[F]{
		faces:   make([]F, len(faces)),
		weights: weights,
		src:     src,
	}
	copy(d.faces, faces)
	return d, nil
}

// ChangeWeight sets the weight of a single face. A zero weight keeps the
// face listed but makes it undrawable. The die is unchanged on error.
func (d *Die[F]) ChangeWeight(face F, weight float64) error {
	if _, ok := d.weights[face]; !ok {
		return fmt.Errorf("%w: %v", ErrUnknownFace, face)
	}
	if math.IsNaN(weight) || math.IsInf(weight, 0) {
		return fmt.Errorf("%w: weight must be a finite number, got %v", ErrValidation, weight)
	}
	if weight < 0 {
		return fmt.Errorf("%w: weight must be non-negative, got %v", ErrValidation, weight)
	}
	d.weights[face] = weight
	return nil
}

// Roll draws times faces, each with probability proportional to the
// current weights. Draws are independent and the die is not mutated.
func (d *Die[F]) Roll(times int) ([]F, error) {
	if times < 1 {
		return nil, fmt.Errorf("%w: roll count must be positive, got %d", ErrValidation, times)
	}

	// Cumulative partition over the ordered face set. Zero-weight faces
	// contribute empty intervals and can never be selected.
	cumulative := make([]float64, len(d.faces))
	total := 0.0
	for i, f := range d.faces {
		total += d.weights[f]
		cumulative[i] = total
	}
	if total <= 0 {
		return nil, fmt.Errorf("%w: all face weights are zero", ErrValidation)
	}

	out := make([]F, times)
	for n := 0; n < times; n++ {
		x := d.src.Float64() * total
		out[n] = d.faces[locate(cumulative, x)]
	}
	return out, nil
}

// locate returns the index of the first interval whose upper bound
// exceeds x. Float rounding can push x to the very top of the partition;
// in that case the last non-empty interval wins.
func locate(cumulative []float64, x float64) int {
	for i, upper := range cumulative {
		if x < upper {
			return i
		}
	}
	return lastPositive(cumulative)
}

// lastPositive returns the index of the last interval with non-zero width.
func lastPositive(cumulative []float64) int {
	last := 0
	prev := 0.0
	for i, upper := range cumulative {
		if upper > prev {
			last = i
		}
		prev = upper
	}
	return last
}

// Show returns the die's current state as (face, weight) pairs in original
// face-set order. The snapshot is a copy; mutating it has no effect.
func (d *Die[F]) Show() []FaceWeight[F] {
	out := make([]FaceWeight[F], len(d.faces))
	for i, f := range d.faces {
		out[i] = FaceWeight[F]{Face: f, Weight: d.weights[f]}
	}
	return out
}

// Faces returns a copy of the ordered face set.
func (d *Die[F]) Faces() []F {
	out := make([]F, len(d.faces))
	copy(out, d.faces)
	return out
}
