package insts

// Program is an addressable store mapping a PC to the instruction at that
// address. Fetch consults it every issue slot; a PC with no instruction
// simply stops fetch, so a program needs no explicit terminator.
type Program struct {
	byPC  map[uint32]*Instruction
	order []*Instruction
}

// NewProgram creates an empty program store.
func NewProgram() *Program {
	return &Program{byPC: make(map[uint32]*Instruction)}
}

// Add places an instruction at its PC, replacing any previous instruction
// at the same address.
func (p *Program) Add(inst *Instruction) {
	if old, exists := p.byPC[inst.PC]; exists {
		for i, o := range p.order {
			if o == old {
				p.order[i] = inst
			}
		}
	} else {
		p.order = append(p.order, inst)
	}
	p.byPC[inst.PC] = inst
}

// At returns the instruction at the given PC.
func (p *Program) At(pc uint32) (*Instruction, bool) {
	inst, ok := p.byPC[pc]
	return inst, ok
}

// Len returns the number of stored instructions.
func (p *Program) Len() int {
	return len(p.byPC)
}

// Instructions returns the stored instructions in insertion order.
func (p *Program) Instructions() []*Instruction {
	out := make([]*Instruction, len(p.order))
	copy(out, p.order)
	return out
}

// Builder assembles a Program from consecutive instructions, assigning
// PCs in 4-byte steps. Tests use it to avoid tracking addresses by hand.
type Builder struct {
	prog *Program
	pc   uint32
}

// NewBuilder creates a builder starting at PC 0.
func NewBuilder() *Builder {
	return &Builder{prog: NewProgram()}
}

// Append adds the next instruction at the current PC and advances by 4.
func (b *Builder) Append(text string, op Op, rd, rs1, rs2 uint8, imm int32) *Builder {
	b.prog.Add(New(b.pc, text, op, rd, rs1, rs2, imm))
	b.pc += 4
	return b
}

// Program returns the assembled program.
func (b *Builder) Program() *Program {
	return b.prog
}
