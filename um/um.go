package um

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/uvm/io"
	"github.com/ezrec/uvm/mem"
)

// Channel is an I/O channel interface.
type Channel io.Channel

// State is the execution state of the machine.
type State int

//go:generate go tool stringer -linecomment -type=State
const (
	STATE_RUNNING = State(0) // running
	STATE_HALTED  = State(1) // halted
	STATE_FAULTED = State(2) // faulted
)

var _um_defines = map[string]string{
	"EOF":       fmt.Sprintf("0x%x", ^uint32(0)),
	"CONST_MAX": fmt.Sprintf("0x%x", CONST_MAX),
	"REGISTERS": "8",
}

// Um is the simulation context for a single Universal Machine.
type Um struct {
	Verbose bool // Set to enable verbose logging.

	Mem *mem.Store // Segmented memory fabric.

	Ip       uint32    // Current instruction pointer.
	Register [8]uint32 // Register bank.

	In  Channel // Input channel, consumed by the in opcode.
	Out Channel // Output channel, fed by the out opcode.

	Ticks int // Instructions executed counter.

	state State
}

// NewUm creates a new machine with an empty memory fabric.
func NewUm() (um *Um) {
	um = &Um{
		Mem: mem.NewStore(),
	}

	return
}

// Defines for the machine
func (um *Um) Defines() iter.Seq2[string, string] {
	return maps.All(_um_defines)
}

// State returns the current execution state.
func (um *Um) State() State {
	return um.state
}

// String returns the current machine state as a string.
func (um *Um) String() (text string) {
	text = fmt.Sprintf("   ip: %04X_%04X\n", um.Ip>>16, um.Ip&0xffff)
	for n, val := range um.Register {
		text += fmt.Sprintf("   r%d: %04X_%04X\n", n, val>>16, val&0xffff)
	}

	return
}

// Boot installs words as the program segment and resets the machine
// state. Any previously live segments are released.
//   - Clears the registers and counters.
//   - Sets the instruction pointer to zero.
//   - Enters the running state.
func (um *Um) Boot(words []uint32) {
	if um.Verbose {
		log.Printf("uvm: boot %d words", len(words))
	}

	clear(um.Register[:])
	um.Ip = 0
	um.Ticks = 0
	um.state = STATE_RUNNING

	um.Mem = mem.NewStore()
	um.Mem.InstallProgram(words)
}

// Tick executes a single machine cycle: fetch, advance, decode,
// execute. A fault leaves the machine in the faulted state and is
// returned wrapped with the instruction pointer of the faulting
// instruction.
func (um *Um) Tick() (done bool, err error) {
	ip := um.Ip

	defer func() {
		if err != nil {
			um.state = STATE_FAULTED
			err = &Fault{Ip: ip, Err: err}
		}
	}()

	prog := um.Mem.Program()
	if uint64(ip) >= uint64(len(prog)) {
		err = ErrIpBounds(ip)
		return
	}

	inst := Inst(prog[ip])
	um.Ip = ip + 1
	um.Ticks++

	done, err = um.Execute(inst)

	return
}

// Execute executes a single decoded instruction.
func (um *Um) Execute(inst Inst) (done bool, err error) {
	if um.Verbose {
		log.Printf("%08x: %v", um.Ip-1, inst)
	}

	a, b, c := inst.Decode()
	reg := &um.Register

	switch inst.Op() {
	case OP_CMOV:
		if reg[c] != 0 {
			reg[a] = reg[b]
		}
	case OP_INDEX:
		var word uint32
		word, err = um.Mem.Load(reg[b], reg[c])
		if err != nil {
			return
		}
		reg[a] = word
	case OP_AMEND:
		err = um.Mem.Store(reg[a], reg[b], reg[c])
	case OP_ADD:
		reg[a] = reg[b] + reg[c]
	case OP_MUL:
		reg[a] = reg[b] * reg[c]
	case OP_DIV:
		if reg[c] == 0 {
			err = ErrDivideByZero
			return
		}
		reg[a] = reg[b] / reg[c]
	case OP_NAND:
		reg[a] = ^(reg[b] & reg[c])
	case OP_HALT:
		um.state = STATE_HALTED
		done = true
	case OP_ALLOC:
		reg[b] = um.Mem.Allocate(reg[c])
	case OP_FREE:
		err = um.Mem.Abandon(reg[c])
	case OP_OUT:
		if reg[c] > 0xff {
			err = ErrOutputRange(reg[c])
			return
		}
		err = um.Out.WriteByte(byte(reg[c]))
		if err != nil {
			err = errors.Join(ErrHostIo, err)
		}
	case OP_IN:
		var value byte
		var eof bool
		value, eof, err = um.In.ReadByte()
		switch {
		case err != nil:
			err = errors.Join(ErrHostIo, err)
		case eof:
			reg[c] = ^uint32(0)
		default:
			reg[c] = uint32(value)
		}
	case OP_LOAD:
		// The jump-only fast path when the source is the program
		// segment itself. Otherwise the source segment is copied,
		// so it remains live and independently mutable.
		if reg[b] != 0 {
			var words []uint32
			words, err = um.Mem.Duplicate(reg[b])
			if err != nil {
				return
			}
			um.Mem.InstallProgram(words)
		}
		um.Ip = reg[c]
	case OP_CONST:
		n, value := inst.ConstDecode()
		reg[n] = value
	default:
		err = ErrIllegalInstruction(inst)
	}

	return
}

// Run executes the dispatch loop until the program halts, a fault
// occurs, or the context is cancelled. Cancellation is observed at the
// fetch boundary between instructions.
func (um *Um) Run(ctx context.Context) (err error) {
	for {
		err = ctx.Err()
		if err != nil {
			return
		}

		var done bool
		done, err = um.Tick()
		if done || err != nil {
			return
		}
	}
}
