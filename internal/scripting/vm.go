// Package scripting runs user-supplied scenario scripts against the dice
// core. Scripts build dice and games through injected host bindings, so a
// full scenario with custom weights and analysis can be described in a
// few lines of JavaScript instead of Go.
package scripting

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dop251/goja"

	"github.com/dicelab/montecarlo/internal/analysis"
	"github.com/dicelab/montecarlo/internal/dice"
	"github.com/dicelab/montecarlo/internal/engine"
	"github.com/dicelab/montecarlo/internal/game"
)

// DefaultTimeout bounds a script run when the caller does not supply one.
const DefaultTimeout = 5 * time.Second

// LogEntry is a single log message emitted by the script.
type LogEntry struct {
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
}

// Result is the outcome of a script run: the exported value of the
// script's `result` global plus any log output.
type Result struct {
	Value any        `json:"value"`
	Logs  []LogEntry `json:"logs"`
}

// VM wraps a goja runtime with sandbox restrictions and the dice host
// bindings injected. A VM runs one script and is not safe for concurrent
// use.
type VM struct {
	runtime *goja.Runtime

	// Seed derives per-die deterministic streams; empty means entropy.
	seed    string
	dieSeq  int
	logs    []LogEntry
	logsMu  sync.Mutex
	maxLogs int
}

// NewVM creates a sandboxed runtime. A non-empty seed makes every die the
// script creates reproducible.
func NewVM(seed string) *VM {
	vm := &VM{
		runtime: goja.New(),
		seed:    seed,
		maxLogs: 500,
	}
	vm.runtime.SetFieldNameMapper(goja.UncapFieldNameMapper())
	vm.injectGlobals()
	return vm
}

// Run executes the script source and returns the exported `result`
// global. Runaway scripts are interrupted after the timeout.
func (vm *VM) Run(source string, timeout time.Duration) (*Result, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	done := make(chan error, 1)
	go func() {
		_, err := vm.runtime.RunString(source)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return nil, fmt.Errorf("script execution error: %w", err)
		}
	case <-time.After(timeout):
		vm.runtime.Interrupt("script execution timeout")
		<-done
		return nil, fmt.Errorf("script timed out after %v", timeout)
	}

	out := &Result{Logs: vm.snapshotLogs()}
	if v := vm.runtime.Get("result"); v != nil && !goja.IsUndefined(v) && !goja.IsNull(v) {
		out.Value = v.Export()
	}
	return out, nil
}

// injectGlobals registers newDie, newGame, analyze, log, and console.log,
// and blocks dangerous globals.
func (vm *VM) injectGlobals() {
	vm.runtime.Set("newDie", vm.newDie)
	vm.runtime.Set("newGame", vm.newGame)
	vm.runtime.Set("analyze", vm.analyze)

	vm.runtime.Set("log", func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = arg.String()
		}
		msg := strings.Join(parts, " ")

		vm.logsMu.Lock()
		if len(vm.logs) >= vm.maxLogs {
			vm.logs = vm.logs[1:]
		}
		vm.logs = append(vm.logs, LogEntry{Time: time.Now(), Message: msg})
		vm.logsMu.Unlock()

		return goja.Undefined()
	})

	console := vm.runtime.NewObject()
	console.Set("log", vm.runtime.Get("log"))
	vm.runtime.Set("console", console)

	// No I/O or dynamic code from inside a scenario.
	vm.runtime.Set("require", goja.Undefined())
	vm.runtime.Set("fetch", goja.Undefined())
	vm.runtime.Set("XMLHttpRequest", goja.Undefined())
	vm.runtime.Set("eval", goja.Undefined())
	vm.runtime.Set("Function", goja.Undefined())
}

func (vm *VM) snapshotLogs() []LogEntry {
	vm.logsMu.Lock()
	defer vm.logsMu.Unlock()
	out := make([]LogEntry, len(vm.logs))
	copy(out, vm.logs)
	return out
}

// throw raises err as a JS exception inside the runtime.
func (vm *VM) throw(err error) {
	panic(vm.runtime.NewGoError(err))
}

func (vm *VM) newDie(faces []string) *scriptDie {
	var src engine.Source = engine.EntropySource{}
	if vm.seed != "" {
		src = engine.NewHashSource(fmt.Sprintf("%s:die:%d", vm.seed, vm.dieSeq))
		vm.dieSeq++
	}

	d, err := dice.NewWithSource(faces, src)
	if err != nil {
		vm.throw(err)
	}
	return &scriptDie{vm: vm, die: d}
}

func (vm *VM) newGame(dies []*scriptDie) *scriptGame {
	inner := make([]*dice.Die[string], len(dies))
	for i, d := range dies {
		if d == nil {
			vm.throw(fmt.Errorf("%w: die %d is not a die object", dice.ErrValidation, i))
		}
		inner[i] = d.die
	}

	g, err := game.New(inner)
	if err != nil {
		vm.throw(err)
	}
	return &scriptGame{vm: vm, game: g}
}

func (vm *VM) analyze(g *scriptGame) *scriptAnalyzer {
	if g == nil {
		vm.throw(fmt.Errorf("%w: analyze requires a game object", dice.ErrValidation))
	}
	return &scriptAnalyzer{vm: vm, analyzer: analysis.New(g.game)}
}

// scriptDie exposes a Die to scripts as d.changeWeight / d.roll / d.show.
type scriptDie struct {
	vm  *VM
	die *dice.Die[string]
}

func (d *scriptDie) ChangeWeight(face string, weight float64) {
	if err := d.die.ChangeWeight(face, weight); err != nil {
		d.vm.throw(err)
	}
}

func (d *scriptDie) Roll(times int) []string {
	rolls, err := d.die.Roll(times)
	if err != nil {
		d.vm.throw(err)
	}
	return rolls
}

func (d *scriptDie) Show() []dice.FaceWeight[string] {
	return d.die.Show()
}

// scriptGame exposes a Game to scripts as g.play / g.show.
type scriptGame struct {
	vm   *VM
	game *game.Game[string]
}

func (g *scriptGame) Play(numRolls int) {
	if err := g.game.Play(numRolls); err != nil {
		g.vm.throw(err)
	}
}

func (g *scriptGame) Show(form string) game.Table[string] {
	table, err := g.game.Show(game.Form(form))
	if err != nil {
		g.vm.throw(err)
	}
	return table
}

// scriptAnalyzer exposes an Analyzer to scripts.
type scriptAnalyzer struct {
	vm       *VM
	analyzer *analysis.Analyzer[string]
}

func (a *scriptAnalyzer) Jackpot() int {
	n, err := a.analyzer.Jackpot()
	if err != nil {
		a.vm.throw(err)
	}
	return n
}

func (a *scriptAnalyzer) FaceCounts() analysis.FaceCountTable[string] {
	t, err := a.analyzer.FaceCounts()
	if err != nil {
		a.vm.throw(err)
	}
	return t
}

func (a *scriptAnalyzer) ComboCounts() []analysis.ComboCount[string] {
	c, err := a.analyzer.ComboCounts()
	if err != nil {
		a.vm.throw(err)
	}
	return c
}

func (a *scriptAnalyzer) PermCounts() []analysis.PermCount[string] {
	p, err := a.analyzer.PermCounts()
	if err != nil {
		a.vm.throw(err)
	}
	return p
}
