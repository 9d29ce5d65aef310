// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"iter"
	"maps"

	"github.com/ezrec/uvm/internal"
	"github.com/ezrec/uvm/io"
	"github.com/ezrec/uvm/um"
)

var _emulator_defines = map[string]string{
	"SEG_PROGRAM": "0",
}

// Emulator state. Machine + tape channel + program listing.
type Emulator struct {
	Verbose bool        // If set, enables verbose logging.
	*um.Um              // Reference to the machine simulation.
	Program *um.Program // Reference to the currently running program listing.

	Tape io.Tape // Tape IO channel.
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Um:      um.NewUm(),
		Program: &um.Program{},
	}

	emu.Um.In = &emu.Tape
	emu.Um.Out = &emu.Tape

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Um.Defines(),
		emu.Tape.Defines(),
	)
}

// Reset boots the machine from the assembled program listing.
func (emu *Emulator) Reset() (err error) {
	emu.Um.Verbose = emu.Verbose

	emu.Um.Boot(emu.Program.Binary())

	return
}

// Load boots the machine from a flat word image.
func (emu *Emulator) Load(words []uint32) {
	emu.Um.Verbose = emu.Verbose

	emu.Um.Boot(words)
}

// Ticks returns the total instructions executed since a boot.
func (emu *Emulator) Ticks() int {
	return emu.Um.Ticks
}

// Ip returns current instruction pointer.
func (emu *Emulator) Ip() int {
	return int(emu.Um.Ip)
}

// Code returns the current instruction code.
func (emu *Emulator) Code() um.Inst {
	prog := emu.Um.Mem.Program()
	if uint64(emu.Um.Ip) >= uint64(len(prog)) {
		return um.Inst(0)
	}

	return um.Inst(prog[emu.Um.Ip])
}

// LineNo returns the current line number for the executing opcode,
// when a program listing is loaded.
func (emu *Emulator) LineNo() int {
	dbg := emu.Program.Debug(emu.Um.Ip)
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.Opcode.LineNo
}

// Tick performs a single tick of the emulator.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set machine verbosity
	emu.Um.Verbose = emu.Verbose

	lineno := emu.LineNo()

	done, err = emu.Um.Tick()
	if err != nil && lineno != 0 {
		err = &ErrRuntime{LineNo: lineno, Err: err}
	}

	return
}

// Run ticks the emulator until the program halts, a fault occurs, or
// the context is cancelled.
func (emu *Emulator) Run(ctx context.Context) (err error) {
	for {
		err = ctx.Err()
		if err != nil {
			return
		}

		var done bool
		done, err = emu.Tick()
		if done || err != nil {
			return
		}
	}
}
