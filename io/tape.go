package io

import (
	"io"
	"iter"
	"maps"
)

// Tape provides sequential I/O operations for reading and writing byte
// streams. It wraps an io.Reader for input and io.Writer for output,
// issuing exactly one byte per channel call.
type Tape struct {
	Input  io.Reader
	Output io.Writer
}

var _ Channel = (*Tape)(nil)

// Defines returns an iter of defines for the channel.
func (tc *Tape) Defines() iter.Seq2[string, string] {
	return maps.All(map[string]string{})
}

// Rewind is not possible on a tape.
func (tc *Tape) Rewind() {
}

// ReadByte reads a single byte from the input stream. End of the
// stream is reported as eof rather than an error.
func (tc *Tape) ReadByte() (value byte, eof bool, err error) {
	if tc.Input == nil {
		eof = true
		return
	}

	var one [1]byte
	for {
		var n int
		n, err = tc.Input.Read(one[:])
		if n > 0 {
			value = one[0]
			err = nil
			return
		}
		if err == io.EOF {
			eof = true
			err = nil
			return
		}
		if err != nil {
			return
		}
	}
}

// WriteByte writes a single byte to the output stream.
func (tc *Tape) WriteByte(value byte) (err error) {
	_, err = tc.Output.Write([]byte{value})

	return
}
