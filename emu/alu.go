package emu

import "github.com/Printf-PedroCardoso/Pipeline-simulator/insts"

// ALUResult computes the result of an arithmetic or logic operation on
// the captured operands, with 32-bit two's-complement semantics. SLT is
// a signed compare. Ops that produce no ALU result return 0.
func ALUResult(op insts.Op, vj, vk, imm int32) int32 {
	switch op {
	case insts.OpADD:
		return vj + vk
	case insts.OpSUB:
		return vj - vk
	case insts.OpAND:
		return vj & vk
	case insts.OpOR:
		return vj | vk
	case insts.OpXOR:
		return vj ^ vk
	case insts.OpSLT:
		if vj < vk {
			return 1
		}
		return 0
	case insts.OpADDI:
		return vj + imm
	}
	return 0
}

// BranchTaken evaluates a conditional branch on the captured operands.
func BranchTaken(op insts.Op, vj, vk int32) bool {
	switch op {
	case insts.OpBEQ:
		return vj == vk
	case insts.OpBNE:
		return vj != vk
	}
	return false
}
