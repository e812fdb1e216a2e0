// Package game orchestrates synchronized rolls across an ordered list of
// dice and stores one results table per play.
package game

import (
	"cmp"
	"errors"
	"fmt"

	"github.com/dicelab/montecarlo/internal/dice"
)

// ErrNotPlayed indicates that results were requested before any play.
var ErrNotPlayed = errors.New("no game has been played yet")

// Form selects the layout of a results table.
type Form string

const (
	// FormWide lays out one row per roll with one column per die.
	FormWide Form = "wide"
	// FormNarrow lays out one row per (roll, die, face) triple.
	FormNarrow Form = "narrow"
)

// WideRow is one roll in wide layout. Roll indices start at 1; Faces is
// ordered by die position.
type WideRow[F cmp.Ordered] struct {
	Roll  int `json:"roll"`
	Faces []F `json:"faces"`
}

// NarrowRow is a single cell of the results table in long format. Die
// positions start at 0.
type NarrowRow[F cmp.Ordered] struct {
	Roll int `json:"roll"`
	Die  int `json:"die"`
	Face F   `json:"face"`
}

// Table is a view of the most recent play. Exactly one of Wide or Narrow
// is populated, matching Form.
type Table[F cmp.Ordered] struct {
	Form   Form           `json:"form"`
	Wide   []WideRow[F]   `json:"wide,omitempty"`
	Narrow []NarrowRow[F] `json:"narrow,omitempty"`
}

// Game rolls a fixed ordered list of dice together. Dice may be shared
// across games and need not share a face set. Only the most recent play's
// results are retained.
type Game[F cmp.Ordered] struct {
	dice    []*dice.Die[F]
	results [][]F
}

// New creates a game over a non-empty ordered list of dice.
func New[F cmp.Ordered](d []*dice.Die[F]) (*Game[F], error) {
	if len(d) == 0 {
		return nil, fmt.Errorf("%w: game requires at least one die", dice.ErrValidation)
	}
	g := &Game[F]{dice: make([]*dice.Die[F], len(d))}
	copy(g.dice, d)
	return g, nil
}

// NumDice returns the number of dice in the game.
func (g *Game[F]) NumDice() int {
	return len(g.dice)
}

// Play rolls every die numRolls times and replaces the stored results
// wholesale. Row i holds one simultaneous draw from each die, in die
// order. Nothing is stored if any roll fails.
func (g *Game[F]) Play(numRolls int) error {
	if numRolls < 1 {
		return fmt.Errorf("%w: roll count must be positive, got %d", dice.ErrValidation, numRolls)
	}

	columns := make([][]F, len(g.dice))
	for i, d := range g.dice {
		rolls, err := d.Roll(numRolls)
		if err != nil {
			return fmt.Errorf("die %d: %w", i, err)
		}
		columns[i] = rolls
	}

	rows := make([][]F, numRolls)
	for r := 0; r < numRolls; r++ {
		row := make([]F, len(g.dice))
		for c := range g.dice {
			row[c] = columns[c][r]
		}
		rows[r] = row
	}
	g.results = rows
	return nil
}

// Results returns the raw wide rows of the most recent play. The returned
// slices are copies.
func (g *Game[F]) Results() ([][]F, error) {
	if g.results == nil {
		return nil, ErrNotPlayed
	}
	out := make([][]F, len(g.results))
	for i, row := range g.results {
		out[i] = make([]F, len(row))
		copy(out[i], row)
	}
	return out, nil
}

// Show returns the most recent play in the requested layout.
func (g *Game[F]) Show(form Form) (Table[F], error) {
	if form != FormWide && form != FormNarrow {
		return Table[F]{}, fmt.Errorf("%w: unknown form %q, use %q or %q",
			dice.ErrValidation, form, FormWide, FormNarrow)
	}
	if g.results == nil {
		return Table[F]{}, ErrNotPlayed
	}

	if form == FormWide {
		wide := make([]WideRow[F], len(g.results))
		for i, row := range g.results {
			faces := make([]F, len(row))
			copy(faces, row)
			wide[i] = WideRow[F]{Roll: i + 1, Faces: faces}
		}
		return Table[F]{Form: FormWide, Wide: wide}, nil
	}

	narrow := make([]NarrowRow[F], 0, len(g.results)*len(g.dice))
	for i, row := range g.results {
		for c, face := range row {
			narrow = append(narrow, NarrowRow[F]{Roll: i + 1, Die: c, Face: face})
		}
	}
	return Table[F]{Form: FormNarrow, Narrow: narrow}, nil
}
