package um

import (
	"iter"
)

// Opcode represents a line of assembled code with its source location
// and generated instructions.
type Opcode struct {
	LineNo    int
	Ip        int
	Words     []string
	Codes     []Inst
	LinkLabel string
}

// Program is an assembled listing.
type Program struct {
	Opcodes []Opcode
}

// Debug locates an instruction pointer in the listing.
type Debug struct {
	*Opcode
	Index int
}

func (prog *Program) Debug(ip uint32) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if ip >= uint32(op.Ip) && ip < uint32(op.Ip)+uint32(len(op.Codes)) {
			index := int(ip - uint32(op.Ip))
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  index,
			}
			break
		}
	}

	return
}

// Binary returns the flat word image of the listing, suitable for the
// program segment.
func (prog *Program) Binary() (bins []uint32) {
	for _, code := range prog.Codes() {
		bins = append(bins, uint32(code))
	}

	return
}

// Codes iterates over every instruction of the listing with its
// instruction pointer.
func (prog *Program) Codes() iter.Seq2[uint32, Inst] {
	return func(yield func(ip uint32, code Inst) bool) {
		for _, op := range prog.Opcodes {
			ip := uint32(op.Ip)
			for n, code := range op.Codes {
				if !yield(ip+uint32(n), code) {
					return
				}
			}
		}
	}
}
