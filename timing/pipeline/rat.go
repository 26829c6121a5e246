package pipeline

import (
	"github.com/Printf-PedroCardoso/Pipeline-simulator/emu"
)

// Mapping is a register alias table entry: either the value lives in the
// architectural file, or the register is renamed to the most recent
// in-flight producer's tag.
type Mapping struct {
	renamed bool
	tag     Tag
}

// Architectural returns the committed-state mapping.
func Architectural() Mapping {
	return Mapping{}
}

// RenamedTo returns a mapping naming the producer tag.
func RenamedTo(tag Tag) Mapping {
	return Mapping{renamed: true, tag: tag}
}

// Renamed returns the producer tag and true when the register is
// renamed, or NoTag and false when the value is architectural.
func (m Mapping) Renamed() (Tag, bool) {
	if !m.renamed {
		return NoTag, false
	}
	return m.tag, true
}

// RAT is the register alias table. x0 is pinned architectural: it is
// never renamed.
type RAT struct {
	entries [emu.NumRegs]Mapping
}

// NewRAT creates a table with every register architectural.
func NewRAT() *RAT {
	return &RAT{}
}

// Lookup returns the mapping for a register.
func (t *RAT) Lookup(reg uint8) Mapping {
	if reg >= emu.NumRegs {
		return Architectural()
	}
	return t.entries[reg]
}

// Rename points the register at a new producer tag. Renames of x0 are
// discarded.
func (t *RAT) Rename(reg uint8, tag Tag) {
	if reg == 0 || reg >= emu.NumRegs {
		return
	}
	t.entries[reg] = RenamedTo(tag)
}

// ClearIf reverts the register to architectural only when it still names
// the given tag; a younger producer's rename is left in place.
func (t *RAT) ClearIf(reg uint8, tag Tag) {
	if reg == 0 || reg >= emu.NumRegs {
		return
	}
	if cur, ok := t.entries[reg].Renamed(); ok && cur == tag {
		t.entries[reg] = Architectural()
	}
}

// FlushAll reverts every register to architectural. No uncommitted tag
// outlives a flush, so the committed register file is the whole state.
func (t *RAT) FlushAll() {
	t.entries = [emu.NumRegs]Mapping{}
}

// Snapshot returns a copy of all mappings.
func (t *RAT) Snapshot() [emu.NumRegs]Mapping {
	return t.entries
}
