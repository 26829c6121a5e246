// Package core provides the top-level core model: it wraps the
// out-of-order pipeline and aggregates its counters with the cache and
// branch predictor statistics into one report.
package core

import (
	"github.com/Printf-PedroCardoso/Pipeline-simulator/emu"
	"github.com/Printf-PedroCardoso/Pipeline-simulator/insts"
	"github.com/Printf-PedroCardoso/Pipeline-simulator/timing/cache"
	"github.com/Printf-PedroCardoso/Pipeline-simulator/timing/pipeline"
)

// Stats holds the combined performance report for the core.
type Stats struct {
	// Cycles is the total number of cycles simulated.
	Cycles uint64
	// Committed is the number of instructions retired.
	Committed uint64
	// IPC is committed instructions per cycle.
	IPC float64
	// Flushes is the number of mispredict flushes.
	Flushes uint64

	// MeanROBOccupancy and MaxROBOccupancy describe ROB pressure.
	MeanROBOccupancy float64
	MaxROBOccupancy  int
	// MeanRSOccupancy is the combined mean occupancy of both
	// reservation-station pools; MaxRSOccupancy is the larger of the two
	// pools' individual maxima.
	MeanRSOccupancy float64
	MaxRSOccupancy  int

	// BranchAccuracy is the predictor accuracy in percent.
	BranchAccuracy float64

	// L1I and L1D are the per-cache counters.
	L1I cache.Statistics
	L1D cache.Statistics
}

// Core wraps the pipeline and its architectural state.
type Core struct {
	// Pipeline is the underlying out-of-order pipeline.
	Pipeline *pipeline.Pipeline

	regFile *emu.RegFile
	memory  *emu.Memory
}

// NewCore creates a core executing the given program over the given
// register file and memory. Options pass through to the pipeline.
func NewCore(regFile *emu.RegFile, memory *emu.Memory, program *insts.Program, opts ...pipeline.Option) *Core {
	return &Core{
		Pipeline: pipeline.NewPipeline(regFile, memory, program, opts...),
		regFile:  regFile,
		memory:   memory,
	}
}

// Step advances the core by one cycle.
func (c *Core) Step() {
	c.Pipeline.Step()
}

// Run executes until the core halts or limit cycles elapse (0 = no
// limit). Returns true if the core halted.
func (c *Core) Run(limit uint64) bool {
	return c.Pipeline.Run(limit)
}

// Halted reports whether the core has drained.
func (c *Core) Halted() bool {
	return c.Pipeline.Halted()
}

// RegFile returns the architectural register file.
func (c *Core) RegFile() *emu.RegFile {
	return c.regFile
}

// Memory returns main memory.
func (c *Core) Memory() *emu.Memory {
	return c.memory
}

// Reset clears all core state.
func (c *Core) Reset() {
	c.memory.Reset()
	c.Pipeline.Reset()
}

// Stats aggregates the pipeline, predictor, and cache counters.
func (c *Core) Stats() Stats {
	pipeStats := c.Pipeline.Stats()

	maxRS := pipeStats.ALUOccupancyMax
	if pipeStats.LSOccupancyMax > maxRS {
		maxRS = pipeStats.LSOccupancyMax
	}

	return Stats{
		Cycles:           pipeStats.Cycles,
		Committed:        pipeStats.Committed,
		IPC:              pipeStats.IPC(),
		Flushes:          pipeStats.Flushes,
		MeanROBOccupancy: pipeStats.MeanROBOccupancy(),
		MaxROBOccupancy:  pipeStats.ROBOccupancyMax,
		MeanRSOccupancy:  pipeStats.MeanALUOccupancy() + pipeStats.MeanLSOccupancy(),
		MaxRSOccupancy:   maxRS,
		BranchAccuracy:   c.Pipeline.Predictor().Stats().Accuracy(),
		L1I:              c.Pipeline.ICache().Stats(),
		L1D:              c.Pipeline.DCache().Stats(),
	}
}
