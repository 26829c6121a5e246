package benchmarks

import (
	"fmt"
	"strings"

	"github.com/Printf-PedroCardoso/Pipeline-simulator/emu"
)

// Microbenchmarks returns the standard calibration set. Each benchmark
// targets one characteristic of the core: issue throughput, rename
// pressure, memory ordering, or branch prediction.
func Microbenchmarks() []Benchmark {
	return []Benchmark{
		arithmeticSequential(),
		dependencyChain(),
		memoryRoundTrips(),
		branchTaken(),
	}
}

// arithmeticSequential measures issue throughput with independent ADDIs:
// a two-wide core should approach IPC 2 in steady state.
func arithmeticSequential() Benchmark {
	var src strings.Builder
	for i := 0; i < 5; i++ {
		src.WriteString("addi x1, x1, 1\n")
		src.WriteString("addi x2, x2, 1\n")
		src.WriteString("addi x3, x3, 1\n")
		src.WriteString("addi x4, x4, 1\n")
	}
	return Benchmark{
		Name:        "arithmetic_sequential",
		Description: "20 independent ADDIs across 4 registers - issue throughput",
		Source:      src.String(),
		Check: func(regFile *emu.RegFile, memory *emu.Memory) error {
			for reg := uint8(1); reg <= 4; reg++ {
				if got := regFile.Read(reg); got != 5 {
					return fmt.Errorf("x%d = %d, want 5", reg, got)
				}
			}
			return nil
		},
	}
}

// dependencyChain measures the serialising effect of RAW hazards through
// the rename machinery.
func dependencyChain() Benchmark {
	src := strings.Repeat("addi x1, x1, 1\n", 20)
	return Benchmark{
		Name:        "dependency_chain",
		Description: "20 dependent ADDIs (x1 = x1 + 1) - rename and forward path",
		Source:      src,
		Check: func(regFile *emu.RegFile, memory *emu.Memory) error {
			if got := regFile.Read(1); got != 20 {
				return fmt.Errorf("x1 = %d, want 20", got)
			}
			return nil
		},
	}
}

// memoryRoundTrips stores and reloads through the LSQ at sequential
// addresses, exercising store-at-commit ordering.
func memoryRoundTrips() Benchmark {
	var src strings.Builder
	src.WriteString("addi x1, x0, 42\n")
	for i := 0; i < 8; i++ {
		src.WriteString(fmt.Sprintf("sw x1, %d(x0)\n", i*4))
		src.WriteString(fmt.Sprintf("lw x2, %d(x0)\n", i*4))
	}
	return Benchmark{
		Name:        "memory_round_trips",
		Description: "8 store/load pairs at sequential addresses - LSQ ordering",
		Source:      src.String(),
		Check: func(regFile *emu.RegFile, memory *emu.Memory) error {
			if got := regFile.Read(2); got != 42 {
				return fmt.Errorf("x2 = %d, want 42", got)
			}
			if got := memory.Read32(28); got != 42 {
				return fmt.Errorf("memory[28] = %d, want 42", got)
			}
			return nil
		},
	}
}

// branchTaken runs eight always-taken branches, each at its own PC. Each
// one meets a fresh weakly-not-taken counter, so every branch mispredicts
// and flushes: the benchmark measures mispredict recovery.
func branchTaken() Benchmark {
	var src strings.Builder
	// Each always-taken branch skips over an addi that would corrupt x3.
	for i := 0; i < 8; i++ {
		src.WriteString("beq x0, x0, 8\n")
		src.WriteString("addi x3, x3, 1\n")
	}
	src.WriteString("addi x4, x0, 7\n")
	return Benchmark{
		Name:        "branch_taken",
		Description: "8 always-taken branches over poison ADDIs - mispredict recovery",
		Source:      src.String(),
		Check: func(regFile *emu.RegFile, memory *emu.Memory) error {
			if got := regFile.Read(3); got != 0 {
				return fmt.Errorf("x3 = %d, want 0 (skipped path executed)", got)
			}
			if got := regFile.Read(4); got != 7 {
				return fmt.Errorf("x4 = %d, want 7", got)
			}
			return nil
		},
	}
}
