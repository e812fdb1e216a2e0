// Package analysis computes combinatorial statistics over a game's most
// recent results table: jackpot frequency, per-roll face tallies, and
// distinct combination and permutation counts.
package analysis

import (
	"cmp"
	"slices"

	"github.com/dicelab/montecarlo/internal/game"
)

// FaceCountTable tallies face occurrences per roll. Faces holds every
// distinct face appearing anywhere in the results, sorted; Counts has one
// row per roll with a cell per face (0 where absent).
type FaceCountTable[F cmp.Ordered] struct {
	Faces  []F     `json:"faces"`
	Counts [][]int `json:"counts"`
}

// ComboCount is the occurrence count of one order-independent multiset of
// faces. Faces is in canonical sorted order.
type ComboCount[F cmp.Ordered] struct {
	Faces []F `json:"faces"`
	Count int `json:"count"`
}

// PermCount is the occurrence count of one order-dependent face sequence,
// in die-position order.
type PermCount[F cmp.Ordered] struct {
	Faces []F `json:"faces"`
	Count int `json:"count"`
}

// Analyzer derives statistics from one game. It holds a read-only
// reference and re-reads the results table on every call, so a re-played
// game is always analyzed fresh. Nothing in the game or its dice is
// mutated.
type Analyzer[F cmp.Ordered] struct {
	game *game.Game[F]
}

// New binds an analyzer to a game.
func New[F cmp.Ordered](g *game.Game[F]) *Analyzer[F] {
	return &Analyzer[F]{game: g}
}

// Jackpot counts rolls where every die produced the same face. A
// single-die game trivially counts every roll.
func (a *Analyzer[F]) Jackpot() (int, error) {
	rows, err := a.game.Results()
	if err != nil {
		return 0, err
	}

	jackpots := 0
	for _, row := range rows {
		same := true
		for _, face := range row[1:] {
			if face != row[0] {
				same = false
				break
			}
		}
		if same {
			jackpots++
		}
	}
	return jackpots, nil
}

// FaceCounts tallies, for each roll, how often each distinct face value
// appears across that roll's dice.
func (a *Analyzer[F]) FaceCounts() (FaceCountTable[F], error) {
	rows, err := a.game.Results()
	if err != nil {
		return FaceCountTable[F]{}, err
	}

	seen := make(map[F]bool)
	for _, row := range rows {
		for _, face := range row {
			seen[face] = true
		}
	}
	faces := make([]F, 0, len(seen))
	for f := range seen {
		faces = append(faces, f)
	}
	slices.Sort(faces)

	index := make(map[F]int, len(faces))
	for i, f := range faces {
		index[f] = i
	}

	counts := make([][]int, len(rows))
	for r, row := range rows {
		counts[r] = make([]int, len(faces))
		for _, face := range row {
			counts[r][index[face]]++
		}
	}
	return FaceCountTable[F]{Faces: faces, Counts: counts}, nil
}

// ComboCounts counts distinct order-independent multisets of faces across
// all rolls. Two rolls with the same faces in different die order are the
// same combination.
func (a *Analyzer[F]) ComboCounts() ([]ComboCount[F], error) {
	rows, err := a.game.Results()
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		slices.Sort(row)
	}

	grouped := groupRows(rows)
	out := make([]ComboCount[F], len(grouped))
	for i, g := range grouped {
		out[i] = ComboCount[F](g)
	}
	return out, nil
}

// PermCounts counts distinct ordered face sequences across all rolls. Die
// order matters, so the distinct-key count is always at least as large as
// ComboCounts' for the same results.
func (a *Analyzer[F]) PermCounts() ([]PermCount[F], error) {
	rows, err := a.game.Results()
	if err != nil {
		return nil, err
	}

	grouped := groupRows(rows)
	out := make([]PermCount[F], len(grouped))
	for i, g := range grouped {
		out[i] = PermCount[F](g)
	}
	return out, nil
}

type rowCount[F cmp.Ordered] struct {
	Faces []F
	Count int
}

// groupRows counts identical rows. Sorting the rows lexicographically
// first means equal rows are adjacent and grouping is a single pass with
// no hashing of variable-length keys. Output order is count descending,
// ties broken by ascending face sequence, so results are deterministic.
func groupRows[F cmp.Ordered](rows [][]F) []rowCount[F] {
	slices.SortFunc(rows, slices.Compare)

	var groups []rowCount[F]
	for _, row := range rows {
		if n := len(groups); n > 0 && slices.Equal(groups[n-1].Faces, row) {
			groups[n-1].Count++
			continue
		}
		groups = append(groups, rowCount[F]{Faces: row, Count: 1})
	}

	slices.SortFunc(groups, func(a, b rowCount[F]) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return slices.Compare(a.Faces, b.Faces)
	})
	return groups
}
