// Package main provides the command-line driver for the out-of-order
// core simulator: it parses an assembly file, runs it to completion, and
// prints the performance report.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Printf-PedroCardoso/Pipeline-simulator/asm"
	"github.com/Printf-PedroCardoso/Pipeline-simulator/emu"
	"github.com/Printf-PedroCardoso/Pipeline-simulator/timing/core"
	"github.com/Printf-PedroCardoso/Pipeline-simulator/timing/latency"
	"github.com/Printf-PedroCardoso/Pipeline-simulator/timing/pipeline"
)

var (
	configPath = flag.String("config", "", "Path to timing configuration JSON file")
	maxCycles  = flag.Uint64("cycles", 1_000_000, "Cycle limit (0 = no limit)")
	trace      = flag.Bool("trace", false, "Print the cycle-tagged event log while running")
	verbose    = flag.Bool("v", false, "Print the final register file")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: oosim [options] <program.s>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	programPath := flag.Arg(0)

	f, err := os.Open(programPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening program: %v\n", err)
		os.Exit(1)
	}
	prog, err := asm.Parse(f, 0)
	f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing program: %v\n", err)
		os.Exit(1)
	}

	var opts []pipeline.Option
	if *configPath != "" {
		timingConfig, err := latency.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading timing config: %v\n", err)
			os.Exit(1)
		}
		if err := timingConfig.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid timing config: %v\n", err)
			os.Exit(1)
		}
		opts = append(opts, pipeline.WithLatencyTable(latency.NewTableWithConfig(timingConfig)))
	}
	if *trace {
		opts = append(opts, pipeline.WithTrace(os.Stdout))
	}

	regFile := &emu.RegFile{}
	memory := emu.NewMemory()
	c := core.NewCore(regFile, memory, prog, opts...)

	halted := c.Run(*maxCycles)
	if !halted {
		fmt.Fprintf(os.Stderr, "Cycle limit reached after %d cycles\n", *maxCycles)
	}

	printStats(c)

	if *verbose {
		printRegisters(regFile)
	}
}

func printStats(c *core.Core) {
	stats := c.Stats()

	fmt.Printf("Cycles:               %d\n", stats.Cycles)
	fmt.Printf("Committed:            %d\n", stats.Committed)
	fmt.Printf("IPC:                  %.3f\n", stats.IPC)
	fmt.Printf("Flushes:              %d\n", stats.Flushes)
	fmt.Printf("ROB occupancy:        mean %.2f, max %d\n",
		stats.MeanROBOccupancy, stats.MaxROBOccupancy)
	fmt.Printf("RS occupancy:         mean %.2f, max %d\n",
		stats.MeanRSOccupancy, stats.MaxRSOccupancy)
	fmt.Printf("Branch accuracy:      %.1f%%\n", stats.BranchAccuracy)
	fmt.Printf("L1I:                  %d accesses, %d hits, %d misses\n",
		stats.L1I.Accesses, stats.L1I.Hits, stats.L1I.Misses)
	fmt.Printf("L1D:                  %d accesses, %d hits, %d misses\n",
		stats.L1D.Accesses, stats.L1D.Hits, stats.L1D.Misses)
}

func printRegisters(regFile *emu.RegFile) {
	fmt.Println("\nRegisters:")
	snapshot := regFile.Snapshot()
	for i, v := range snapshot {
		if v != 0 {
			fmt.Printf("  x%-2d = %d\n", i, v)
		}
	}
}
