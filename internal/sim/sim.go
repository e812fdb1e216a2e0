// Package sim runs one-shot dice simulations: it builds dice and a game
// from a declarative spec, plays, and collects the full analyzer output
// into a single report. The HTTP API, CLI and script runner all go
// through this package.
package sim

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/dicelab/montecarlo/internal/analysis"
	"github.com/dicelab/montecarlo/internal/dice"
	"github.com/dicelab/montecarlo/internal/engine"
	"github.com/dicelab/montecarlo/internal/game"
)

// SeedModeSeeded and SeedModeEntropy record which randomness source a run
// used.
const (
	SeedModeSeeded  = "seeded"
	SeedModeEntropy = "entropy"
)

// DieSpec declares one die: its faces and optional weight overrides for a
// subset of them (every other face keeps weight 1.0).
type DieSpec struct {
	Faces   []string           `json:"faces"`
	Weights map[string]float64 `json:"weights,omitempty"`
}

// Spec declares a complete simulation run.
type Spec struct {
	Dice     []DieSpec `json:"dice"`
	NumRolls int       `json:"num_rolls"`
	// Seed makes the run reproducible. Empty means entropy.
	Seed string `json:"seed,omitempty"`
}

// FaceProb is one face of a die with its weight and normalized draw
// probability. Probability is a fixed-precision decimal string so report
// output is stable across platforms.
type FaceProb struct {
	Face        string  `json:"face"`
	Weight      float64 `json:"weight"`
	Probability string  `json:"probability"`
}

// DieReport is the post-override state of one die.
type DieReport struct {
	Faces []FaceProb `json:"faces"`
}

// Report is the complete outcome of a run.
type Report struct {
	NumDice        int                              `json:"num_dice"`
	NumRolls       int                              `json:"num_rolls"`
	SeedMode       string                           `json:"seed_mode"`
	Dice           []DieReport                      `json:"dice"`
	Rows           []game.WideRow[string]           `json:"rows"`
	Jackpots       int                              `json:"jackpots"`
	FaceCounts     analysis.FaceCountTable[string]  `json:"face_counts"`
	Combos         []analysis.ComboCount[string]    `json:"combos"`
	Perms          []analysis.PermCount[string]     `json:"perms"`
	DistinctCombos int                              `json:"distinct_combos"`
	DistinctPerms  int                              `json:"distinct_perms"`
}

const probPlaces = 6

// Run executes the spec and returns a full report. Validation failures
// across dice are aggregated so the caller sees every problem at once.
func Run(spec Spec) (*Report, error) {
	if len(spec.Dice) == 0 {
		return nil, fmt.Errorf("%w: at least one die is required", dice.ErrValidation)
	}
	if spec.NumRolls < 1 {
		return nil, fmt.Errorf("%w: num_rolls must be positive, got %d", dice.ErrValidation, spec.NumRolls)
	}

	dies := make([]*dice.Die[string], 0, len(spec.Dice))
	var buildErr error
	for i, ds := range spec.Dice {
		d, err := buildDie(ds, spec.Seed, i)
		if err != nil {
			buildErr = multierr.Append(buildErr, fmt.Errorf("die %d: %w", i, err))
			continue
		}
		dies = append(dies, d)
	}
	if buildErr != nil {
		return nil, buildErr
	}

	g, err := game.New(dies)
	if err != nil {
		return nil, err
	}
	if err := g.Play(spec.NumRolls); err != nil {
		return nil, err
	}

	a := analysis.New(g)
	jackpots, err := a.Jackpot()
	if err != nil {
		return nil, err
	}
	faceCounts, err := a.FaceCounts()
	if err != nil {
		return nil, err
	}
	combos, err := a.ComboCounts()
	if err != nil {
		return nil, err
	}
	perms, err := a.PermCounts()
	if err != nil {
		return nil, err
	}
	table, err := g.Show(game.FormWide)
	if err != nil {
		return nil, err
	}

	seedMode := SeedModeEntropy
	if spec.Seed != "" {
		seedMode = SeedModeSeeded
	}

	reports := make([]DieReport, len(dies))
	for i, d := range dies {
		reports[i] = describeDie(d)
	}

	return &Report{
		NumDice:        len(dies),
		NumRolls:       spec.NumRolls,
		SeedMode:       seedMode,
		Dice:           reports,
		Rows:           table.Wide,
		Jackpots:       jackpots,
		FaceCounts:     faceCounts,
		Combos:         combos,
		Perms:          perms,
		DistinctCombos: len(combos),
		DistinctPerms:  len(perms),
	}, nil
}

// buildDie constructs one die from its spec and applies weight overrides.
// Seeded runs derive an independent stream per die position so dice do
// not share draws.
func buildDie(ds DieSpec, seed string, position int) (*dice.Die[string], error) {
	var src engine.Source = engine.EntropySource{}
	if seed != "" {
		src = engine.NewHashSource(fmt.Sprintf("%s:die:%d", seed, position))
	}

	d, err := dice.NewWithSource(ds.Faces, src)
	if err != nil {
		return nil, err
	}

	// Sorted override order keeps aggregated errors deterministic.
	overridden := make([]string, 0, len(ds.Weights))
	for f := range ds.Weights {
		overridden = append(overridden, f)
	}
	slices.Sort(overridden)

	var werr error
	for _, f := range overridden {
		if err := d.ChangeWeight(f, ds.Weights[f]); err != nil {
			werr = multierr.Append(werr, err)
		}
	}
	if werr != nil {
		return nil, werr
	}
	return d, nil
}

// describeDie snapshots a die with normalized per-face probabilities.
func describeDie(d *dice.Die[string]) DieReport {
	snapshot := d.Show()
	total := decimal.Zero
	for _, fw := range snapshot {
		total = total.Add(decimal.NewFromFloat(fw.Weight))
	}

	faces := make([]FaceProb, len(snapshot))
	for i, fw := range snapshot {
		prob := "0"
		if total.IsPositive() {
			prob = decimal.NewFromFloat(fw.Weight).
				DivRound(total, probPlaces).
				StringFixed(probPlaces)
		}
		faces[i] = FaceProb{Face: fw.Face, Weight: fw.Weight, Probability: prob}
	}
	return DieReport{Faces: faces}
}
