// Package asm parses assembly text into the decoded program store the
// core consumes. It covers the simulated subset of RV32I; anything else
// is a parse error surfaced before the core runs.
//
// Accepted forms, one instruction per line, with '#' or ';' comments:
//
//	add  rd, rs1, rs2        (also sub, and, or, xor, slt)
//	addi rd, rs1, imm
//	lw   rd, imm(rs1)
//	sw   rs2, imm(rs1)
//	beq  rs1, rs2, imm       (also bne; imm is a byte offset from the PC)
//	jal  rd, imm
//	nop
package asm

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/Printf-PedroCardoso/Pipeline-simulator/insts"
)

// Parse reads assembly text and produces a program with PCs assigned in
// 4-byte steps from base.
func Parse(r io.Reader, base uint32) (*insts.Program, error) {
	prog := insts.NewProgram()
	pc := base

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := stripComment(scanner.Text())
		if strings.TrimSpace(line) == "" {
			continue
		}

		inst, err := parseLine(line, pc)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNo)
		}
		prog.Add(inst)
		pc += 4
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading source")
	}

	return prog, nil
}

// ParseString parses assembly from a string with PCs starting at 0.
func ParseString(src string) (*insts.Program, error) {
	return Parse(strings.NewReader(src), 0)
}

func stripComment(line string) string {
	if i := strings.IndexAny(line, "#;"); i >= 0 {
		return line[:i]
	}
	return line
}

var mnemonics = map[string]insts.Op{
	"add":  insts.OpADD,
	"sub":  insts.OpSUB,
	"and":  insts.OpAND,
	"or":   insts.OpOR,
	"xor":  insts.OpXOR,
	"slt":  insts.OpSLT,
	"addi": insts.OpADDI,
	"lw":   insts.OpLW,
	"sw":   insts.OpSW,
	"beq":  insts.OpBEQ,
	"bne":  insts.OpBNE,
	"jal":  insts.OpJAL,
	"jalr": insts.OpJALR,
	"nop":  insts.OpNOP,
}

func parseLine(line string, pc uint32) (*insts.Instruction, error) {
	text := strings.Join(strings.Fields(line), " ")

	fields := strings.SplitN(text, " ", 2)
	mnemonic := strings.ToLower(fields[0])
	op, ok := mnemonics[mnemonic]
	if !ok {
		return nil, errors.Errorf("unknown mnemonic %q", mnemonic)
	}

	var operands []string
	if len(fields) == 2 {
		for _, o := range strings.Split(fields[1], ",") {
			operands = append(operands, strings.TrimSpace(o))
		}
	}

	switch op {
	case insts.OpNOP, insts.OpJALR:
		// jalr is reserved and treated as a nop by the core.
		if len(operands) != 0 && op == insts.OpNOP {
			return nil, errors.Errorf("nop takes no operands")
		}
		return insts.New(pc, text, op, 0, 0, 0, 0), nil

	case insts.OpADD, insts.OpSUB, insts.OpAND, insts.OpOR, insts.OpXOR, insts.OpSLT:
		rd, rs1, rs2, err := threeRegs(operands)
		if err != nil {
			return nil, err
		}
		return insts.New(pc, text, op, rd, rs1, rs2, 0), nil

	case insts.OpADDI:
		if len(operands) != 3 {
			return nil, errors.Errorf("addi needs rd, rs1, imm")
		}
		rd, err := reg(operands[0])
		if err != nil {
			return nil, err
		}
		rs1, err := reg(operands[1])
		if err != nil {
			return nil, err
		}
		imm, err := immediate(operands[2])
		if err != nil {
			return nil, err
		}
		return insts.New(pc, text, op, rd, rs1, 0, imm), nil

	case insts.OpLW:
		if len(operands) != 2 {
			return nil, errors.Errorf("lw needs rd, imm(rs1)")
		}
		rd, err := reg(operands[0])
		if err != nil {
			return nil, err
		}
		imm, rs1, err := memOperand(operands[1])
		if err != nil {
			return nil, err
		}
		return insts.New(pc, text, op, rd, rs1, 0, imm), nil

	case insts.OpSW:
		if len(operands) != 2 {
			return nil, errors.Errorf("sw needs rs2, imm(rs1)")
		}
		rs2, err := reg(operands[0])
		if err != nil {
			return nil, err
		}
		imm, rs1, err := memOperand(operands[1])
		if err != nil {
			return nil, err
		}
		return insts.New(pc, text, op, 0, rs1, rs2, imm), nil

	case insts.OpBEQ, insts.OpBNE:
		if len(operands) != 3 {
			return nil, errors.Errorf("%s needs rs1, rs2, imm", mnemonic)
		}
		rs1, err := reg(operands[0])
		if err != nil {
			return nil, err
		}
		rs2, err := reg(operands[1])
		if err != nil {
			return nil, err
		}
		imm, err := immediate(operands[2])
		if err != nil {
			return nil, err
		}
		return insts.New(pc, text, op, 0, rs1, rs2, imm), nil

	case insts.OpJAL:
		if len(operands) != 2 {
			return nil, errors.Errorf("jal needs rd, imm")
		}
		rd, err := reg(operands[0])
		if err != nil {
			return nil, err
		}
		imm, err := immediate(operands[1])
		if err != nil {
			return nil, err
		}
		return insts.New(pc, text, op, rd, 0, 0, imm), nil
	}

	return nil, errors.Errorf("unhandled mnemonic %q", mnemonic)
}

func threeRegs(operands []string) (rd, rs1, rs2 uint8, err error) {
	if len(operands) != 3 {
		return 0, 0, 0, errors.Errorf("need rd, rs1, rs2")
	}
	if rd, err = reg(operands[0]); err != nil {
		return
	}
	if rs1, err = reg(operands[1]); err != nil {
		return
	}
	rs2, err = reg(operands[2])
	return
}

func reg(s string) (uint8, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if !strings.HasPrefix(s, "x") {
		return 0, errors.Errorf("bad register %q", s)
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil || n < 0 || n > 31 {
		return 0, errors.Errorf("bad register %q", s)
	}
	return uint8(n), nil
}

func immediate(s string) (int32, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 0, 32)
	if err != nil {
		return 0, errors.Errorf("bad immediate %q", s)
	}
	return int32(n), nil
}

// memOperand parses the imm(rs1) form used by loads and stores.
func memOperand(s string) (int32, uint8, error) {
	open := strings.IndexByte(s, '(')
	end := strings.IndexByte(s, ')')
	if open < 0 || end < open {
		return 0, 0, errors.Errorf("bad memory operand %q", s)
	}
	immText := strings.TrimSpace(s[:open])
	if immText == "" {
		immText = "0"
	}
	imm, err := immediate(immText)
	if err != nil {
		return 0, 0, err
	}
	rs1, err := reg(s[open+1 : end])
	if err != nil {
		return 0, 0, err
	}
	return imm, rs1, nil
}
