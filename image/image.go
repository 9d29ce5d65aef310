// Package image reads and writes Universal Machine program images.
// An image is a flat binary file whose length is a positive multiple
// of 4; each 4-byte group is one 32-bit instruction word in big-endian
// byte order, regardless of host byte order.
package image

import (
	"encoding/binary"
	"io"
	"os"
)

// Read decodes a program image from r.
func Read(r io.Reader) (words []uint32, err error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return
	}

	if len(data) == 0 || len(data)%4 != 0 {
		err = ErrSize(len(data))
		return
	}

	words = make([]uint32, len(data)/4)
	for n := range words {
		words[n] = binary.BigEndian.Uint32(data[n*4:])
	}

	return
}

// Write encodes a program image to w.
func Write(w io.Writer, words []uint32) (err error) {
	var one [4]byte
	for _, word := range words {
		binary.BigEndian.PutUint32(one[:], word)
		_, err = w.Write(one[:])
		if err != nil {
			return
		}
	}

	return
}

// ReadFile decodes the program image in the file at path.
func ReadFile(path string) (words []uint32, err error) {
	inf, err := os.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()

	words, err = Read(inf)

	return
}

// WriteFile encodes a program image into the file at path.
func WriteFile(path string, words []uint32) (err error) {
	ouf, err := os.Create(path)
	if err != nil {
		return
	}
	defer ouf.Close()

	err = Write(ouf, words)

	return
}
