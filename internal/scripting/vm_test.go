package scripting

import (
	"strings"
	"testing"
	"time"
)

func TestRunScenario(t *testing.T) {
	vm := NewVM("scenario_seed")

	src := `
		var d1 = newDie(["1", "2", "3", "4", "5", "6"]);
		var d2 = newDie(["1", "2", "3", "4", "5", "6"]);
		var g = newGame([d1, d2]);
		g.play(50);
		var a = analyze(g);
		result = {
			jackpots: a.jackpot(),
			distinctCombos: a.comboCounts().length,
			distinctPerms: a.permCounts().length
		};
	`

	res, err := vm.Run(src, 0)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	out, ok := res.Value.(map[string]any)
	if !ok {
		t.Fatalf("result exported as %T, want map", res.Value)
	}

	jackpots, ok := out["jackpots"].(int64)
	if !ok {
		t.Fatalf("jackpots exported as %T, want int64", out["jackpots"])
	}
	if jackpots < 0 || jackpots > 50 {
		t.Errorf("jackpots = %d, want within [0, 50]", jackpots)
	}

	combos := out["distinctCombos"].(int64)
	perms := out["distinctPerms"].(int64)
	if perms < combos {
		t.Errorf("distinct perms (%d) < distinct combos (%d)", perms, combos)
	}
}

func TestRunChangeWeight(t *testing.T) {
	vm := NewVM("weighted")

	src := `
		var d = newDie(["A", "B"]);
		d.changeWeight("A", 1000);
		var rolls = d.roll(200);
		var heavy = 0;
		for (var i = 0; i < rolls.length; i++) {
			if (rolls[i] === "A") heavy++;
		}
		result = heavy;
	`

	res, err := vm.Run(src, 0)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	heavy := res.Value.(int64)
	if heavy < 190 {
		t.Errorf("heavy face drawn %d/200 times, expected near 200", heavy)
	}
}

func TestRunScriptError(t *testing.T) {
	vm := NewVM("")

	if _, err := vm.Run(`newDie([]);`, 0); err == nil {
		t.Error("Run() with empty face set should fail")
	}
}

func TestRunUnknownFaceThrows(t *testing.T) {
	vm := NewVM("")

	src := `
		var d = newDie(["H", "T"]);
		var threw = false;
		try {
			d.changeWeight("Z", 2);
		} catch (e) {
			threw = true;
		}
		result = threw;
	`

	res, err := vm.Run(src, 0)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.Value != true {
		t.Error("changeWeight on unknown face should throw a catchable error")
	}
}

func TestRunTimeout(t *testing.T) {
	vm := NewVM("")

	_, err := vm.Run(`while (true) {}`, 100*time.Millisecond)
	if err == nil {
		t.Fatal("Run() of infinite loop should time out")
	}
	if !strings.Contains(err.Error(), "timed out") {
		t.Errorf("error = %v, want timeout", err)
	}
}

func TestRunLogs(t *testing.T) {
	vm := NewVM("")

	res, err := vm.Run(`log("hello", 42); console.log("world");`, 0)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if len(res.Logs) != 2 {
		t.Fatalf("got %d log entries, want 2", len(res.Logs))
	}
	if res.Logs[0].Message != "hello 42" {
		t.Errorf("first log = %q, want %q", res.Logs[0].Message, "hello 42")
	}
	if res.Logs[1].Message != "world" {
		t.Errorf("second log = %q, want %q", res.Logs[1].Message, "world")
	}
}

func TestSandboxBlocksDangerousGlobals(t *testing.T) {
	vm := NewVM("")

	res, err := vm.Run(`result = [typeof require, typeof fetch, typeof eval];`, 0)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	kinds, ok := res.Value.([]any)
	if !ok {
		t.Fatalf("result exported as %T, want slice", res.Value)
	}
	for i, k := range kinds {
		if k != "undefined" {
			t.Errorf("blocked global %d has type %v, want undefined", i, k)
		}
	}
}

func TestSeededScriptsReproduce(t *testing.T) {
	src := `
		var g = newGame([newDie(["H", "T"]), newDie(["H", "T"])]);
		g.play(40);
		result = analyze(g).jackpot();
	`

	first, err := NewVM("same_seed").Run(src, 0)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	second, err := NewVM("same_seed").Run(src, 0)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if first.Value != second.Value {
		t.Errorf("Seeded scripts diverge: %v != %v", first.Value, second.Value)
	}
}
