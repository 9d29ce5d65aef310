package um

import (
	"fmt"
)

// Op is a machine opcode, taken from the top 4 bits of an instruction word.
type Op int

//go:generate go tool stringer -linecomment -type=Op
const (
	OP_CMOV  = Op(0)  // cmov
	OP_INDEX = Op(1)  // index
	OP_AMEND = Op(2)  // amend
	OP_ADD   = Op(3)  // add
	OP_MUL   = Op(4)  // mul
	OP_DIV   = Op(5)  // div
	OP_NAND  = Op(6)  // nand
	OP_HALT  = Op(7)  // halt
	OP_ALLOC = Op(8)  // alloc
	OP_FREE  = Op(9)  // free
	OP_OUT   = Op(10) // out
	OP_IN    = Op(11) // in
	OP_LOAD  = Op(12) // load
	OP_CONST = Op(13) // const
)

// OP_COUNT is the number of defined opcodes.
const OP_COUNT = Op(14)

// CONST_MAX is the exclusive upper bound of a const immediate.
const CONST_MAX = uint32(1) << 25

// Inst is a single 32-bit instruction word.
type Inst uint32

// Op returns the opcode of the instruction word.
func (in Inst) Op() Op {
	return Op(uint32(in) >> 28)
}

// Decode returns the three register selectors of a standard instruction.
func (in Inst) Decode() (a, b, c int) {
	a = int((uint32(in) >> 6) & 7)
	b = int((uint32(in) >> 3) & 7)
	c = int(uint32(in) & 7)
	return
}

// ConstDecode returns the register selector and the 25-bit immediate of
// a const instruction.
func (in Inst) ConstDecode() (a int, value uint32) {
	a = int((uint32(in) >> 25) & 7)
	value = uint32(in) & (CONST_MAX - 1)
	return
}

// MakeInst creates a standard three-operand instruction.
func MakeInst(op Op, a, b, c int) Inst {
	return Inst((uint32(op) << 28) | (uint32(a&7) << 6) | (uint32(b&7) << 3) | uint32(c&7))
}

// MakeInstConst creates a const instruction.
func MakeInstConst(a int, value uint32) Inst {
	return Inst((uint32(OP_CONST) << 28) | (uint32(a&7) << 25) | (value & (CONST_MAX - 1)))
}

// String returns the assembly language representation of this instruction.
func (in Inst) String() (out string) {
	op := in.Op()
	a, b, c := in.Decode()

	switch op {
	case OP_CONST:
		reg, value := in.ConstDecode()
		out = fmt.Sprintf("%v r%d %#x", op, reg, value)
	case OP_HALT:
		out = op.String()
	case OP_ALLOC, OP_LOAD:
		out = fmt.Sprintf("%v r%d r%d", op, b, c)
	case OP_FREE, OP_OUT, OP_IN:
		out = fmt.Sprintf("%v r%d", op, c)
	case OP_CMOV, OP_INDEX, OP_AMEND, OP_ADD, OP_MUL, OP_DIV, OP_NAND:
		out = fmt.Sprintf("%v r%d r%d r%d", op, a, b, c)
	default:
		out = fmt.Sprintf("0x%08x", uint32(in))
	}

	return
}
