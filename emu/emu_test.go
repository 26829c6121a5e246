package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Printf-PedroCardoso/Pipeline-simulator/emu"
	"github.com/Printf-PedroCardoso/Pipeline-simulator/insts"
)

var _ = Describe("RegFile", func() {
	var regFile *emu.RegFile

	BeforeEach(func() {
		regFile = &emu.RegFile{}
	})

	It("should read back written values", func() {
		regFile.Write(5, 1234)
		Expect(regFile.Read(5)).To(Equal(int32(1234)))
	})

	It("should keep x0 at zero", func() {
		regFile.Write(0, 99)
		Expect(regFile.Read(0)).To(Equal(int32(0)))
	})

	It("should ignore out-of-range registers", func() {
		regFile.Write(40, 7)
		Expect(regFile.Read(40)).To(Equal(int32(0)))
	})

	It("should clear on reset", func() {
		regFile.Write(3, 3)
		regFile.Reset()
		Expect(regFile.Read(3)).To(Equal(int32(0)))
	})
})

var _ = Describe("Memory", func() {
	var memory *emu.Memory

	BeforeEach(func() {
		memory = emu.NewMemory()
	})

	It("should read back written words", func() {
		memory.Write32(0x40, -7)
		Expect(memory.Read32(0x40)).To(Equal(int32(-7)))
	})

	It("should address by byte and access by word", func() {
		memory.Write32(8, 11)
		Expect(memory.Read32(8)).To(Equal(int32(11)))
		Expect(memory.Read32(12)).To(Equal(int32(0)))
	})

	It("should drop out-of-range accesses", func() {
		memory.Write32(4 * emu.MemoryWords, 5)
		Expect(memory.Read32(4 * emu.MemoryWords)).To(Equal(int32(0)))
	})
})

var _ = Describe("ALUResult", func() {
	It("should compute arithmetic ops", func() {
		Expect(emu.ALUResult(insts.OpADD, 5, 7, 0)).To(Equal(int32(12)))
		Expect(emu.ALUResult(insts.OpSUB, 5, 7, 0)).To(Equal(int32(-2)))
		Expect(emu.ALUResult(insts.OpADDI, 5, 0, -3)).To(Equal(int32(2)))
	})

	It("should compute logic ops", func() {
		Expect(emu.ALUResult(insts.OpAND, 0b1100, 0b1010, 0)).To(Equal(int32(0b1000)))
		Expect(emu.ALUResult(insts.OpOR, 0b1100, 0b1010, 0)).To(Equal(int32(0b1110)))
		Expect(emu.ALUResult(insts.OpXOR, 0b1100, 0b1010, 0)).To(Equal(int32(0b0110)))
	})

	It("should compare signed for SLT", func() {
		Expect(emu.ALUResult(insts.OpSLT, -1, 1, 0)).To(Equal(int32(1)))
		Expect(emu.ALUResult(insts.OpSLT, 1, -1, 0)).To(Equal(int32(0)))
	})

	It("should wrap in two's complement", func() {
		Expect(emu.ALUResult(insts.OpADD, 2147483647, 1, 0)).To(Equal(int32(-2147483648)))
	})

	It("should produce 0 for non-ALU ops", func() {
		Expect(emu.ALUResult(insts.OpJAL, 1, 2, 3)).To(Equal(int32(0)))
	})
})

var _ = Describe("BranchTaken", func() {
	It("should evaluate beq and bne", func() {
		Expect(emu.BranchTaken(insts.OpBEQ, 4, 4)).To(BeTrue())
		Expect(emu.BranchTaken(insts.OpBEQ, 4, 5)).To(BeFalse())
		Expect(emu.BranchTaken(insts.OpBNE, 4, 5)).To(BeTrue())
		Expect(emu.BranchTaken(insts.OpBNE, 4, 4)).To(BeFalse())
	})

	It("should be false for non-branches", func() {
		Expect(emu.BranchTaken(insts.OpADD, 1, 1)).To(BeFalse())
	})
})
