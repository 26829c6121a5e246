// Package pipeline implements the out-of-order core model: Tomasulo
// renaming against a reorder buffer, ALU and load/store reservation
// stations, an in-order load/store queue, a gshare branch predictor, and
// the per-cycle controller tying them together.
//
// One Step call advances the simulated clock by exactly one cycle. The
// stages run in reverse program order — Commit, then Execute with result
// broadcast, then fused Fetch/Issue — so a result broadcast in cycle N
// is not visible to commit before cycle N+1, and a station issued in
// cycle N cannot fire in the same cycle. That ordering is what emulates
// the latched hardware; there is no other concurrency in the model.
package pipeline

import (
	"fmt"
	"io"

	"github.com/Printf-PedroCardoso/Pipeline-simulator/emu"
	"github.com/Printf-PedroCardoso/Pipeline-simulator/insts"
	"github.com/Printf-PedroCardoso/Pipeline-simulator/timing/cache"
	"github.com/Printf-PedroCardoso/Pipeline-simulator/timing/latency"
)

// logLimit bounds the retained event log; older entries are dropped.
const logLimit = 4096

// Config holds the structural parameters of the core.
type Config struct {
	// ROBSize is the reorder buffer capacity.
	ROBSize int
	// IssueWidth is the number of issue slots per cycle.
	IssueWidth int
	// CommitWidth is the number of in-order commits per cycle.
	CommitWidth int
	// ALUStations is the size of the arithmetic reservation-station pool.
	ALUStations int
	// LSStations is the size of the load/store reservation-station pool.
	LSStations int
}

// DefaultConfig returns the default core parameters: ROB 32, two-wide
// issue and commit, 8 ALU stations, 4 load/store stations.
func DefaultConfig() Config {
	return Config{
		ROBSize:     32,
		IssueWidth:  2,
		CommitWidth: 2,
		ALUStations: 8,
		LSStations:  4,
	}
}

// Statistics holds pipeline performance counters.
type Statistics struct {
	// Cycles is the total number of cycles simulated.
	Cycles uint64
	// Committed is the number of instructions retired.
	Committed uint64
	// Issued is the number of instructions allocated into the ROB.
	Issued uint64
	// Discarded is the number of issued instructions thrown away by
	// flushes. Committed + Discarded + live ROB entries always equals
	// Issued.
	Discarded uint64
	// Flushes is the number of pipeline flushes on mispredict.
	Flushes uint64

	// Occupancy accumulators, sampled once per cycle.
	ROBOccupancySum uint64
	ROBOccupancyMax int
	ALUOccupancySum uint64
	ALUOccupancyMax int
	LSOccupancySum  uint64
	LSOccupancyMax  int
	LSQOccupancySum uint64
	LSQOccupancyMax int
}

// IPC returns committed instructions per cycle.
func (s Statistics) IPC() float64 {
	if s.Cycles == 0 {
		return 0
	}
	return float64(s.Committed) / float64(s.Cycles)
}

// MeanROBOccupancy returns the average ROB occupancy per cycle.
func (s Statistics) MeanROBOccupancy() float64 { return s.mean(s.ROBOccupancySum) }

// MeanALUOccupancy returns the average ALU-pool occupancy per cycle.
func (s Statistics) MeanALUOccupancy() float64 { return s.mean(s.ALUOccupancySum) }

// MeanLSOccupancy returns the average load/store-pool occupancy per cycle.
func (s Statistics) MeanLSOccupancy() float64 { return s.mean(s.LSOccupancySum) }

// MeanLSQOccupancy returns the average LSQ occupancy per cycle.
func (s Statistics) MeanLSQOccupancy() float64 { return s.mean(s.LSQOccupancySum) }

func (s Statistics) mean(sum uint64) float64 {
	if s.Cycles == 0 {
		return 0
	}
	return float64(sum) / float64(s.Cycles)
}

// Option is a functional option for configuring the Pipeline.
type Option func(*Pipeline)

// WithConfig overrides the structural parameters.
func WithConfig(config Config) Option {
	return func(p *Pipeline) {
		p.config = config
	}
}

// WithLatencyTable sets a custom latency table.
func WithLatencyTable(table *latency.Table) Option {
	return func(p *Pipeline) {
		p.latencies = table
	}
}

// WithGshareConfig overrides the branch predictor configuration.
func WithGshareConfig(config GshareConfig) Option {
	return func(p *Pipeline) {
		p.predictor = NewGshare(config)
	}
}

// WithCacheConfigs overrides the L1 cache configurations.
func WithCacheConfigs(l1i, l1d cache.Config) Option {
	return func(p *Pipeline) {
		p.icache = cache.New(l1i)
		p.dcache = cache.New(l1d)
	}
}

// WithTrace mirrors the cycle-tagged event log to w as it is produced.
func WithTrace(w io.Writer) Option {
	return func(p *Pipeline) {
		p.trace = w
	}
}

// Pipeline is the out-of-order core model.
type Pipeline struct {
	config Config

	rob     *ROB
	rat     *RAT
	aluPool *StationPool
	lsPool  *StationPool
	lsq     *LSQ

	predictor *Gshare
	icache    *cache.Cache
	dcache    *cache.Cache
	latencies *latency.Table

	regFile *emu.RegFile
	memory  *emu.Memory
	program *insts.Program

	pc uint32

	stats Statistics
	log   []string
	trace io.Writer
}

// NewPipeline creates a core over the given architectural state and
// program, with default parameters unless overridden by options.
func NewPipeline(regFile *emu.RegFile, memory *emu.Memory, program *insts.Program, opts ...Option) *Pipeline {
	p := &Pipeline{
		config:    DefaultConfig(),
		predictor: NewGshare(DefaultGshareConfig()),
		icache:    cache.New(cache.DefaultL1IConfig()),
		dcache:    cache.New(cache.DefaultL1DConfig()),
		latencies: latency.NewTable(),
		regFile:   regFile,
		memory:    memory,
		program:   program,
	}

	for _, opt := range opts {
		opt(p)
	}

	p.rob = NewROB(p.config.ROBSize)
	p.rat = NewRAT()
	p.aluPool = NewStationPool("ALU", p.config.ALUStations)
	p.lsPool = NewStationPool("LS", p.config.LSStations)
	p.lsq = NewLSQ()

	return p
}

// PC returns the current fetch address.
func (p *Pipeline) PC() uint32 {
	return p.pc
}

// SetPC redirects fetch to the given address.
func (p *Pipeline) SetPC(pc uint32) {
	p.pc = pc
}

// Stats returns the pipeline counters.
func (p *Pipeline) Stats() Statistics {
	return p.stats
}

// Predictor returns the branch predictor.
func (p *Pipeline) Predictor() *Gshare {
	return p.predictor
}

// ICache returns the L1 instruction cache.
func (p *Pipeline) ICache() *cache.Cache {
	return p.icache
}

// DCache returns the L1 data cache.
func (p *Pipeline) DCache() *cache.Cache {
	return p.dcache
}

// Log returns the retained cycle-tagged event log.
func (p *Pipeline) Log() []string {
	out := make([]string, len(p.log))
	copy(out, p.log)
	return out
}

// ROBSnapshot returns copies of the live ROB entries in program order.
func (p *Pipeline) ROBSnapshot() []ROBEntry {
	return p.rob.Snapshot()
}

// RATSnapshot returns a copy of the register alias table.
func (p *Pipeline) RATSnapshot() [emu.NumRegs]Mapping {
	return p.rat.Snapshot()
}

// ALUStationsSnapshot returns copies of the arithmetic stations.
func (p *Pipeline) ALUStationsSnapshot() []Station {
	return p.aluPool.Snapshot()
}

// LSStationsSnapshot returns copies of the load/store stations.
func (p *Pipeline) LSStationsSnapshot() []Station {
	return p.lsPool.Snapshot()
}

// LSQSnapshot returns copies of the LSQ entries in program order.
func (p *Pipeline) LSQSnapshot() []LSQEntry {
	return p.lsq.Snapshot()
}

// Halted reports whether the core has drained: the ROB is empty and
// there is no instruction at the current PC.
func (p *Pipeline) Halted() bool {
	if !p.rob.Empty() {
		return false
	}
	_, ok := p.program.At(p.pc)
	return !ok
}

// Step advances the simulated clock by one cycle: Commit, then Execute
// with broadcast, then fused Fetch/Issue. A flush at commit aborts the
// remainder of the cycle.
func (p *Pipeline) Step() {
	p.stats.Cycles++

	flushed := p.commit()
	if !flushed {
		p.execute()
		p.issue()
	}

	p.sampleOccupancy()
}

// Run steps until the core halts or limit cycles elapse (0 = no limit).
// Returns true if the core halted.
func (p *Pipeline) Run(limit uint64) bool {
	for !p.Halted() {
		if limit > 0 && p.stats.Cycles >= limit {
			return false
		}
		p.Step()
	}
	return true
}

// RunCycles steps the core for n cycles or until it halts. Returns true
// if the core is still running.
func (p *Pipeline) RunCycles(n uint64) bool {
	for i := uint64(0); i < n && !p.Halted(); i++ {
		p.Step()
	}
	return !p.Halted()
}

// Reset clears all speculative and architectural state, keeping the
// program and configuration.
func (p *Pipeline) Reset() {
	p.rob = NewROB(p.config.ROBSize)
	p.rat = NewRAT()
	p.aluPool = NewStationPool("ALU", p.config.ALUStations)
	p.lsPool = NewStationPool("LS", p.config.LSStations)
	p.lsq = NewLSQ()
	p.predictor.Reset()
	p.icache.Reset()
	p.dcache.Reset()
	p.regFile.Reset()
	p.pc = 0
	p.stats = Statistics{}
	p.log = nil
}

// commit retires up to CommitWidth ready instructions from the ROB
// head, in program order. Returns true when a mispredict flushed the
// pipeline, which aborts the rest of the cycle.
func (p *Pipeline) commit() bool {
	for i := 0; i < p.config.CommitWidth; i++ {
		flushed, committed := p.commitOne()
		if flushed {
			return true
		}
		if !committed {
			return false
		}
	}
	return false
}

// commitOne retires the ROB head if it is ready, reporting whether a
// flush occurred and whether an instruction retired.
func (p *Pipeline) commitOne() (flushed, committed bool) {
	head := p.rob.Head()
	if head == nil || !head.Ready {
		return false, false
	}

	if head.Inst.IsBranch() {
		actual := head.Result == 1
		p.predictor.Update(head.PC, actual)
		if actual != head.PredictedTaken {
			p.logf("mispredict %s at pc=0x%x: predicted taken=%v actual taken=%v, flushing to 0x%x",
				head.Inst, head.PC, head.PredictedTaken, actual, head.Target)
			p.flush(head.Target)
			return true, false
		}
	}

	if head.Inst.IsMem() {
		lq := p.lsq.Head()
		if lq == nil || lq.Tag != head.Tag || !lq.MemReady {
			// LSQ head not ready: the commit stalls this cycle.
			return false, false
		}
		if lq.IsStore {
			p.dcache.Write(lq.Addr)
			p.memory.Write32(lq.Addr, lq.Value)
		}
		p.lsq.PopHead()
	}

	if head.Inst.WritesReg() {
		p.regFile.Write(head.Dest, head.Result)
		p.rat.ClearIf(head.Dest, head.Tag)
	}

	// A station scanned before its producer completed has not captured
	// the result yet; hand it over before the tag leaves the ROB.
	wake := func(st *Station) {
		if st.Qj == head.Tag {
			st.Vj, st.Qj = head.Result, NoTag
		}
		if st.Qk == head.Tag {
			st.Vk, st.Qk = head.Result, NoTag
		}
	}
	p.aluPool.Each(wake)
	p.lsPool.Each(wake)

	p.rob.PopHead()
	p.stats.Committed++
	return false, true
}

// execute runs the wake-up, countdown, and completion pass over every
// busy station: the ALU pool first, then the load/store pool. Writing
// the result and ready flag onto the ROB entry is the broadcast; any
// later wake-up in this cycle or the next may observe it.
func (p *Pipeline) execute() {
	p.aluPool.Each(p.executeStation)
	p.lsPool.Each(p.executeStation)
}

func (p *Pipeline) executeStation(st *Station) {
	// Operand capture from completed producers.
	if st.Qj != NoTag {
		if producer, ok := p.rob.Lookup(st.Qj); ok && producer.Ready {
			st.Vj = producer.Result
			st.Qj = NoTag
		}
	}
	if st.Qk != NoTag {
		if producer, ok := p.rob.Lookup(st.Qk); ok && producer.Ready {
			st.Vk = producer.Result
			st.Qk = NoTag
		}
	}
	if !st.OperandsReady() {
		return
	}

	if st.Remaining > 0 {
		// The effective address resolves on the first execution cycle.
		if st.Remaining == st.Total && st.Inst.IsMem() {
			st.Addr = uint32(st.Vj + st.Inst.Imm)
			st.AddrValid = true
		}
		// A load holds its final cycle until no older store is queued:
		// its memory read must not pass an uncommitted store.
		if st.Inst.IsLoad() && st.Remaining == 1 && p.lsq.HasOlderStore(st.Dest) {
			return
		}
		st.Remaining--
	}

	if st.Remaining == 0 {
		p.complete(st)
	}
}

// complete computes the station's result and broadcasts it onto the
// owning ROB entry, then frees the station.
func (p *Pipeline) complete(st *Station) {
	entry, ok := p.rob.Lookup(st.Dest)
	if !ok {
		// The owning entry vanished in a flush; free the orphan.
		st.clear()
		return
	}

	inst := st.Inst
	var result int32

	switch {
	case inst.IsLoad():
		p.dcache.Read(st.Addr)
		result = p.memory.Read32(st.Addr)
		lq := p.lsq.ByTag(st.Dest)
		lq.Addr = st.Addr
		lq.AddrKnown = true
		lq.MemReady = true

	case inst.IsStore():
		result = st.Vk
		lq := p.lsq.ByTag(st.Dest)
		lq.Addr = st.Addr
		lq.AddrKnown = true
		lq.Value = st.Vk
		lq.MemReady = true

	case inst.IsBranch():
		if emu.BranchTaken(inst.Op, st.Vj, st.Vk) {
			result = 1
			entry.Target = inst.PC + uint32(inst.Imm)
		} else {
			result = 0
			entry.Target = inst.PC + 4
		}

	default:
		result = emu.ALUResult(inst.Op, st.Vj, st.Vk, inst.Imm)
	}

	entry.Result = result
	entry.Ready = true
	st.clear()
}

// issue fetches and dispatches up to IssueWidth instructions, stopping
// at the first structural hazard or missing instruction.
func (p *Pipeline) issue() {
	for slot := 0; slot < p.config.IssueWidth; slot++ {
		if p.rob.Full() {
			return
		}
		inst, ok := p.program.At(p.pc)
		if !ok {
			return
		}

		pool := p.aluPool
		if inst.IsMem() {
			pool = p.lsPool
		}
		st := pool.Alloc()
		if st == nil {
			return
		}

		// Fetch accounting; an I-miss does not stall issue in this model.
		p.icache.Read(inst.PC)

		entry := p.rob.Alloc(inst)
		p.stats.Issued++

		st.Op = inst.Op
		st.Inst = inst
		st.Dest = entry.Tag
		st.Vj, st.Qj = p.renameSource(inst.Rs1)
		st.Vk, st.Qk = p.renameSource(inst.Rs2)
		lat := p.latencies.ForOp(inst.Op)
		st.Total = lat
		st.Remaining = lat

		if inst.IsMem() {
			p.lsq.Push(entry.Tag, inst.IsStore())
		}
		if inst.WritesReg() {
			p.rat.Rename(inst.Rd, entry.Tag)
		}

		switch {
		case inst.IsBranch():
			predicted := p.predictor.Predict(inst.PC)
			st.PredictedTaken = predicted
			entry.PredictedTaken = predicted
			if predicted {
				p.pc = inst.PC + uint32(inst.Imm)
			} else {
				p.pc = inst.PC + 4
			}
		case inst.Op == insts.OpJAL:
			p.pc = inst.PC + uint32(inst.Imm)
		default:
			p.pc = inst.PC + 4
		}
	}
}

// renameSource resolves a source register to a captured value or a
// pending producer tag. A producer that already broadcast its result is
// read directly from the ROB, keeping the in-flight forward path.
func (p *Pipeline) renameSource(reg uint8) (int32, Tag) {
	if reg == 0 {
		return 0, NoTag
	}
	if tag, renamed := p.rat.Lookup(reg).Renamed(); renamed {
		if producer, ok := p.rob.Lookup(tag); ok && producer.Ready {
			return producer.Result, NoTag
		}
		return 0, tag
	}
	return p.regFile.Read(reg), NoTag
}

// flush discards every speculative artifact and redirects fetch. The
// architectural register file is untouched: its contents are the
// committed state by construction.
func (p *Pipeline) flush(target uint32) {
	p.stats.Discarded += uint64(p.rob.Len())
	p.rob.Flush()
	p.aluPool.Flush()
	p.lsPool.Flush()
	p.lsq.Flush()
	p.rat.FlushAll()
	p.pc = target
	p.stats.Flushes++
}

func (p *Pipeline) sampleOccupancy() {
	s := &p.stats

	rob := p.rob.Len()
	s.ROBOccupancySum += uint64(rob)
	if rob > s.ROBOccupancyMax {
		s.ROBOccupancyMax = rob
	}

	alu := p.aluPool.BusyCount()
	s.ALUOccupancySum += uint64(alu)
	if alu > s.ALUOccupancyMax {
		s.ALUOccupancyMax = alu
	}

	ls := p.lsPool.BusyCount()
	s.LSOccupancySum += uint64(ls)
	if ls > s.LSOccupancyMax {
		s.LSOccupancyMax = ls
	}

	lsq := p.lsq.Len()
	s.LSQOccupancySum += uint64(lsq)
	if lsq > s.LSQOccupancyMax {
		s.LSQOccupancyMax = lsq
	}
}

// logf appends a cycle-tagged entry to the event log and mirrors it to
// the trace writer when one is set.
func (p *Pipeline) logf(format string, args ...interface{}) {
	msg := fmt.Sprintf("[cycle %d] %s", p.stats.Cycles, fmt.Sprintf(format, args...))
	if len(p.log) >= logLimit {
		p.log = p.log[1:]
	}
	p.log = append(p.log, msg)
	if p.trace != nil {
		fmt.Fprintln(p.trace, msg)
	}
}
