// Package latency provides instruction timing lookups for the
// cycle-accurate core model. Latencies are per functional-unit class and
// can be overridden through a JSON TimingConfig.
package latency

import (
	"github.com/Printf-PedroCardoso/Pipeline-simulator/insts"
)

// Table provides instruction latency lookups.
type Table struct {
	config *TimingConfig
}

// NewTable creates a latency table with the default timing values.
func NewTable() *Table {
	return &Table{config: DefaultTimingConfig()}
}

// NewTableWithConfig creates a latency table with a custom configuration.
func NewTableWithConfig(config *TimingConfig) *Table {
	return &Table{config: config}
}

// Config returns the underlying timing configuration.
func (t *Table) Config() *TimingConfig {
	return t.config
}

// ForOp returns the execution latency in cycles for the given opcode.
func (t *Table) ForOp(op insts.Op) uint64 {
	switch op {
	case insts.OpLW:
		return t.config.LoadLatency
	case insts.OpSW:
		return t.config.StoreLatency
	case insts.OpBEQ, insts.OpBNE:
		return t.config.BranchLatency
	default:
		return t.config.ALULatency
	}
}
