package pipeline

import (
	"github.com/Printf-PedroCardoso/Pipeline-simulator/insts"
)

// Station is one reservation-station entry. Operands are either captured
// values (Vj/Vk with the matching Q cleared to NoTag) or pending producer
// tags. The station may begin its countdown once both tags are clear.
type Station struct {
	// Busy marks the station allocated.
	Busy bool

	// Op is the opcode of the held instruction.
	Op insts.Op

	// Vj and Vk are the captured operand values.
	Vj int32
	Vk int32

	// Qj and Qk are pending producer tags; NoTag means captured.
	Qj Tag
	Qk Tag

	// Dest is the ROB tag this station produces.
	Dest Tag

	// Remaining and Total are the execution countdown state.
	Remaining uint64
	Total     uint64

	// Inst is the held instruction.
	Inst *insts.Instruction

	// Addr is the computed effective address (memory ops only).
	Addr uint32
	// AddrValid marks Addr as computed.
	AddrValid bool

	// PredictedTaken records the issue-time prediction (branches only).
	PredictedTaken bool
}

// OperandsReady reports whether both operand tags are cleared.
func (s *Station) OperandsReady() bool {
	return s.Qj == NoTag && s.Qk == NoTag
}

// clear resets the station to free.
func (s *Station) clear() {
	*s = Station{}
}

// StationPool is a fixed pool of reservation stations for one
// functional-unit class.
type StationPool struct {
	name     string
	stations []Station
}

// NewStationPool creates a pool of size free stations.
func NewStationPool(name string, size int) *StationPool {
	return &StationPool{
		name:     name,
		stations: make([]Station, size),
	}
}

// Name returns the pool's display name.
func (p *StationPool) Name() string {
	return p.name
}

// Size returns the number of stations in the pool.
func (p *StationPool) Size() int {
	return len(p.stations)
}

// Alloc returns the first free station, marked busy, or nil when the
// pool is exhausted.
func (p *StationPool) Alloc() *Station {
	for i := range p.stations {
		if !p.stations[i].Busy {
			p.stations[i].Busy = true
			return &p.stations[i]
		}
	}
	return nil
}

// BusyCount returns the number of allocated stations.
func (p *StationPool) BusyCount() int {
	n := 0
	for i := range p.stations {
		if p.stations[i].Busy {
			n++
		}
	}
	return n
}

// Each calls fn for every busy station, in pool order.
func (p *StationPool) Each(fn func(*Station)) {
	for i := range p.stations {
		if p.stations[i].Busy {
			fn(&p.stations[i])
		}
	}
}

// Flush frees every station.
func (p *StationPool) Flush() {
	for i := range p.stations {
		p.stations[i].clear()
	}
}

// Snapshot returns a copy of all stations, free ones included.
func (p *StationPool) Snapshot() []Station {
	out := make([]Station, len(p.stations))
	copy(out, p.stations)
	return out
}
