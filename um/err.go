package um

import (
	"errors"

	"github.com/ezrec/uvm/translate"
)

var f = translate.From

var (
	// Machine faults
	ErrDivideByZero = errors.New(f("divide by zero"))
	ErrHostIo       = errors.New(f("host i/o"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrMacroSyntax        = errors.New(f(".macro syntax"))
	ErrMacroNesting       = errors.New(f(".macro in .macro prohibited"))
	ErrMacroDuplicate     = errors.New(f(".macro duplicated"))
	ErrMacroLonely        = errors.New(f(".macro without .endm"))
	ErrMacroLonelyEndm    = errors.New(f(".endm without .macro"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeValueMissing = errors.New(f("value missing"))
	ErrRegisterInvalid    = errors.New(f("register invalid"))
	ErrInstructionInvalid = errors.New(f("instruction invalid"))
)

// ErrIllegalInstruction indicates an instruction word with an undefined
// opcode value.
type ErrIllegalInstruction Inst

func (ei ErrIllegalInstruction) Error() string {
	return f("illegal instruction 0x%08x", uint32(ei))
}

func (ei ErrIllegalInstruction) Is(err error) (ok bool) {
	_, ok = err.(ErrIllegalInstruction)
	return
}

// ErrIpBounds indicates a fetch past the end of the program segment.
type ErrIpBounds uint32

func (ei ErrIpBounds) Error() string {
	return f("instruction pointer 0x%08x beyond program segment", uint32(ei))
}

func (ei ErrIpBounds) Is(err error) (ok bool) {
	_, ok = err.(ErrIpBounds)
	return
}

// ErrOutputRange indicates an out operand above 255.
type ErrOutputRange uint32

func (eo ErrOutputRange) Error() string {
	return f("output value 0x%08x exceeds one byte", uint32(eo))
}

func (eo ErrOutputRange) Is(err error) (ok bool) {
	_, ok = err.(ErrOutputRange)
	return
}

// ErrConstRange indicates a const immediate that does not fit in 25 bits.
type ErrConstRange uint32

func (ec ErrConstRange) Error() string {
	return f("constant 0x%08x exceeds 25 bits", uint32(ec))
}

func (ec ErrConstRange) Is(err error) (ok bool) {
	_, ok = err.(ErrConstRange)
	return
}

// Fault wraps a machine error with the instruction pointer of the
// faulting instruction.
type Fault struct {
	Ip  uint32
	Err error
}

func (fa *Fault) Error() string {
	return f("fault at 0x%08x: %v", fa.Ip, fa.Err)
}

func (fa *Fault) Unwrap() error {
	return fa.Err
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseCharacter string

func (err ErrParseCharacter) Error() string {
	return f("'%v' is not a character", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

type ErrMacro struct {
	Macro string
	Line  int
	Err   error
}

func (err ErrMacro) Error() string {
	return f("macro %v line %v %v", err.Macro, err.Line, err.Err.Error())
}

func (err ErrMacro) Unwrap() error {
	return err.Err
}
