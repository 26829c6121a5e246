package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Printf-PedroCardoso/Pipeline-simulator/insts"
)

var _ = Describe("Instruction", func() {
	It("should classify memory operations", func() {
		lw := insts.New(0, "lw x1, 0(x2)", insts.OpLW, 1, 2, 0, 0)
		sw := insts.New(4, "sw x1, 0(x2)", insts.OpSW, 0, 2, 1, 0)
		add := insts.New(8, "add x3, x1, x2", insts.OpADD, 3, 1, 2, 0)

		Expect(lw.IsLoad()).To(BeTrue())
		Expect(lw.IsMem()).To(BeTrue())
		Expect(sw.IsStore()).To(BeTrue())
		Expect(sw.IsMem()).To(BeTrue())
		Expect(add.IsMem()).To(BeFalse())
	})

	It("should classify branches and jumps", func() {
		beq := insts.New(0, "", insts.OpBEQ, 0, 1, 2, 8)
		jal := insts.New(4, "", insts.OpJAL, 0, 0, 0, 16)

		Expect(beq.IsBranch()).To(BeTrue())
		Expect(beq.IsJump()).To(BeFalse())
		Expect(jal.IsJump()).To(BeTrue())
		Expect(jal.IsBranch()).To(BeFalse())
	})

	It("should report register-writing ops", func() {
		add := insts.New(0, "", insts.OpADD, 3, 1, 2, 0)
		sw := insts.New(4, "", insts.OpSW, 0, 2, 1, 0)
		beq := insts.New(8, "", insts.OpBEQ, 0, 1, 2, 8)
		lw := insts.New(12, "", insts.OpLW, 5, 2, 0, 0)

		Expect(add.WritesReg()).To(BeTrue())
		Expect(lw.WritesReg()).To(BeTrue())
		Expect(sw.WritesReg()).To(BeFalse())
		Expect(beq.WritesReg()).To(BeFalse())
	})

	It("should not report a write for rd = x0", func() {
		addi := insts.New(0, "addi x0, x0, 99", insts.OpADDI, 0, 0, 0, 99)
		Expect(addi.WritesReg()).To(BeFalse())
	})

	It("should render mnemonics", func() {
		Expect(insts.OpADDI.String()).To(Equal("addi"))
		Expect(insts.OpBNE.String()).To(Equal("bne"))
	})
})

var _ = Describe("Program", func() {
	It("should store and fetch by PC", func() {
		prog := insts.NewProgram()
		prog.Add(insts.New(0, "nop", insts.OpNOP, 0, 0, 0, 0))
		prog.Add(insts.New(4, "nop", insts.OpNOP, 0, 0, 0, 0))

		inst, ok := prog.At(4)
		Expect(ok).To(BeTrue())
		Expect(inst.PC).To(Equal(uint32(4)))

		_, ok = prog.At(8)
		Expect(ok).To(BeFalse())
		Expect(prog.Len()).To(Equal(2))
	})

	It("should assign sequential PCs through the builder", func() {
		prog := insts.NewBuilder().
			Append("addi x1, x0, 5", insts.OpADDI, 1, 0, 0, 5).
			Append("addi x2, x0, 7", insts.OpADDI, 2, 0, 0, 7).
			Program()

		first, ok := prog.At(0)
		Expect(ok).To(BeTrue())
		Expect(first.Imm).To(Equal(int32(5)))

		second, ok := prog.At(4)
		Expect(ok).To(BeTrue())
		Expect(second.Imm).To(Equal(int32(7)))
	})
})
