// Package benchmarks provides microbenchmark programs and a harness for
// calibrating the out-of-order core model.
package benchmarks

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/Printf-PedroCardoso/Pipeline-simulator/asm"
	"github.com/Printf-PedroCardoso/Pipeline-simulator/emu"
	"github.com/Printf-PedroCardoso/Pipeline-simulator/timing/core"
)

// maxBenchmarkCycles caps a benchmark run so a wrong redirect can never
// hang the harness.
const maxBenchmarkCycles = 1_000_000

// Result holds the timing results for a single benchmark run.
type Result struct {
	// Name identifies the benchmark.
	Name string `json:"name"`

	// Description explains what the benchmark measures.
	Description string `json:"description"`

	// Cycles is the total cycle count from the timing simulator.
	Cycles uint64 `json:"cycles"`

	// Committed is the number of retired instructions.
	Committed uint64 `json:"committed"`

	// IPC is committed instructions per cycle.
	IPC float64 `json:"ipc"`

	// Flushes is the number of mispredict flushes.
	Flushes uint64 `json:"flushes"`

	// BranchAccuracyPercent is the predictor accuracy.
	BranchAccuracyPercent float64 `json:"branch_accuracy_percent,omitempty"`

	// ICacheMisses and DCacheMisses are the per-cache miss counts.
	ICacheMisses uint64 `json:"icache_misses,omitempty"`
	DCacheMisses uint64 `json:"dcache_misses,omitempty"`
}

// Benchmark defines a single microbenchmark program.
type Benchmark struct {
	// Name identifies the benchmark.
	Name string

	// Description explains what the benchmark measures.
	Description string

	// Source is the assembly text of the program.
	Source string

	// Setup seeds architectural state before the run.
	Setup func(regFile *emu.RegFile, memory *emu.Memory)

	// Check validates architectural state after the run; it returns an
	// error describing the first mismatch.
	Check func(regFile *emu.RegFile, memory *emu.Memory) error
}

// Run executes the benchmark and returns its timing results.
func Run(b Benchmark) (Result, error) {
	prog, err := asm.ParseString(b.Source)
	if err != nil {
		return Result{}, fmt.Errorf("benchmark %s: %w", b.Name, err)
	}

	regFile := &emu.RegFile{}
	memory := emu.NewMemory()
	if b.Setup != nil {
		b.Setup(regFile, memory)
	}

	c := core.NewCore(regFile, memory, prog)
	if !c.Run(maxBenchmarkCycles) {
		return Result{}, fmt.Errorf("benchmark %s: cycle limit reached", b.Name)
	}

	if b.Check != nil {
		if err := b.Check(regFile, memory); err != nil {
			return Result{}, fmt.Errorf("benchmark %s: %w", b.Name, err)
		}
	}

	stats := c.Stats()
	return Result{
		Name:                  b.Name,
		Description:           b.Description,
		Cycles:                stats.Cycles,
		Committed:             stats.Committed,
		IPC:                   stats.IPC,
		Flushes:               stats.Flushes,
		BranchAccuracyPercent: stats.BranchAccuracy,
		ICacheMisses:          stats.L1I.Misses,
		DCacheMisses:          stats.L1D.Misses,
	}, nil
}

// RunAll executes every benchmark, stopping at the first failure.
func RunAll(benchmarks []Benchmark) ([]Result, error) {
	results := make([]Result, 0, len(benchmarks))
	for _, b := range benchmarks {
		r, err := Run(b)
		if err != nil {
			return results, err
		}
		results = append(results, r)
	}
	return results, nil
}

// PrintResults writes a human-readable results table.
func PrintResults(w io.Writer, results []Result) {
	fmt.Fprintf(w, "%-24s %10s %10s %7s %8s\n",
		"benchmark", "cycles", "committed", "ipc", "flushes")
	for _, r := range results {
		fmt.Fprintf(w, "%-24s %10d %10d %7.3f %8d\n",
			r.Name, r.Cycles, r.Committed, r.IPC, r.Flushes)
	}
}

// WriteJSON writes the results as indented JSON.
func WriteJSON(w io.Writer, results []Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}
