package mem

import (
	"errors"

	"github.com/ezrec/uvm/translate"
)

var f = translate.From

var (
	// Store errors
	ErrSegmentZero = errors.New(f("cannot abandon the program segment"))
)

// ErrSegment indicates use of an identifier that names no live segment.
type ErrSegment uint32

func (es ErrSegment) Error() string {
	return f("segment 0x%08x not live", uint32(es))
}

func (es ErrSegment) Is(err error) (ok bool) {
	_, ok = err.(ErrSegment)
	return
}

// ErrBounds indicates an offset beyond the end of a live segment.
type ErrBounds struct {
	Id     uint32
	Offset uint32
	Length uint32
}

func (eb ErrBounds) Error() string {
	return f("offset 0x%08x out of bounds for segment 0x%08x of %d words", eb.Offset, eb.Id, eb.Length)
}

func (eb ErrBounds) Is(err error) (ok bool) {
	_, ok = err.(ErrBounds)
	return
}
