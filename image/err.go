package image

import (
	"github.com/ezrec/uvm/translate"
)

var f = translate.From

// ErrSize indicates an image whose byte length is not a positive
// multiple of 4.
type ErrSize int

func (es ErrSize) Error() string {
	return f("image size %d is not a positive multiple of 4 bytes", int(es))
}

func (es ErrSize) Is(err error) (ok bool) {
	_, ok = err.(ErrSize)
	return
}
