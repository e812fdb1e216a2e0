// Command montecarlo runs a dice simulation from the command line and
// prints the results table and analyzer report.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/dicelab/montecarlo/internal/sim"
)

func main() {
	var (
		faces   = flag.String("faces", "1,2,3,4,5,6", "comma-separated face labels, shared by all dice")
		numDice = flag.Int("dice", 2, "number of dice")
		rolls   = flag.Int("rolls", 100, "number of rolls")
		seed    = flag.String("seed", "", "seed for a reproducible run (empty = entropy)")
		weights = flag.String("weights", "", "weight overrides as face=weight pairs, comma-separated, applied to every die")
		table   = flag.Bool("table", false, "print the full results table")
	)
	flag.Parse()

	overrides, err := parseWeights(*weights)
	if err != nil {
		log.Fatalf("weights: %v", err)
	}

	spec := sim.Spec{NumRolls: *rolls, Seed: *seed}
	faceList := strings.Split(*faces, ",")
	for i := 0; i < *numDice; i++ {
		spec.Dice = append(spec.Dice, sim.DieSpec{Faces: faceList, Weights: overrides})
	}

	report, err := sim.Run(spec)
	if err != nil {
		log.Fatalf("simulation: %v", err)
	}

	printReport(os.Stdout, report, *table)
}

// parseWeights parses "H=3,T=0.5" into a weight map.
func parseWeights(raw string) (map[string]float64, error) {
	if raw == "" {
		return nil, nil
	}
	out := make(map[string]float64)
	for _, pair := range strings.Split(raw, ",") {
		face, val, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("malformed pair %q, want face=weight", pair)
		}
		w, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil, fmt.Errorf("weight of %q: %w", face, err)
		}
		out[face] = w
	}
	return out, nil
}

func printReport(w *os.File, report *sim.Report, fullTable bool) {
	fmt.Fprintf(w, "dice: %d  rolls: %d  mode: %s\n\n", report.NumDice, report.NumRolls, report.SeedMode)

	for i, d := range report.Dice {
		fmt.Fprintf(w, "die %d:\n", i)
		for _, fp := range d.Faces {
			fmt.Fprintf(w, "  %-8s weight=%-8g p=%s\n", fp.Face, fp.Weight, fp.Probability)
		}
	}

	if fullTable {
		fmt.Fprintln(w, "\nresults:")
		for _, row := range report.Rows {
			fmt.Fprintf(w, "  %4d  %s\n", row.Roll, strings.Join(row.Faces, "  "))
		}
	}

	fmt.Fprintf(w, "\njackpots: %d / %d\n", report.Jackpots, report.NumRolls)
	fmt.Fprintf(w, "distinct combinations: %d\n", report.DistinctCombos)
	fmt.Fprintf(w, "distinct permutations: %d\n", report.DistinctPerms)

	fmt.Fprintln(w, "\ntop combinations:")
	limit := len(report.Combos)
	if limit > 10 {
		limit = 10
	}
	for _, c := range report.Combos[:limit] {
		fmt.Fprintf(w, "  %-24s %d\n", strings.Join(c.Faces, " "), c.Count)
	}
}
