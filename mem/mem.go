// Package mem implements the segmented memory fabric for the Universal
// Machine. A segment is a fixed-length array of 32-bit words named by an
// opaque 32-bit identifier. Identifier 0 always names the active program
// segment; all other identifiers are issued by Allocate and reclaimed by
// Abandon.
package mem

import (
	"slices"
)

// Store owns every live segment of a single machine instance.
//
// Segments live in a dense slice indexed by identifier, with a free
// list of abandoned identifiers. Allocate, Abandon, and indexed access
// are O(1), and the identifier space is bounded by the peak number of
// simultaneously live segments.
type Store struct {
	segments [][]uint32
	free     []uint32
}

// NewStore creates a store whose program segment is not yet installed.
func NewStore() (st *Store) {
	st = &Store{
		segments: make([][]uint32, 1, 64),
	}

	return
}

// InstallProgram installs words as the program segment, taking
// ownership. Any previous program segment is released.
func (st *Store) InstallProgram(words []uint32) {
	st.segments[0] = words
}

// Program returns the live program segment.
func (st *Store) Program() []uint32 {
	return st.segments[0]
}

// Live reports whether id names a live segment.
func (st *Store) Live(id uint32) bool {
	return uint64(id) < uint64(len(st.segments)) && st.segments[id] != nil
}

// Allocate creates a zero-filled segment of size words and returns its
// identifier. Abandoned identifiers are reused before the identifier
// space grows.
func (st *Store) Allocate(size uint32) (id uint32) {
	seg := make([]uint32, size)

	if n := len(st.free); n > 0 {
		id = st.free[n-1]
		st.free = st.free[:n-1]
		st.segments[id] = seg
		return
	}

	id = uint32(len(st.segments))
	st.segments = append(st.segments, seg)

	return
}

// Abandon releases the segment named by id and queues the identifier
// for reuse.
func (st *Store) Abandon(id uint32) (err error) {
	if id == 0 {
		err = ErrSegmentZero
		return
	}
	if !st.Live(id) {
		err = ErrSegment(id)
		return
	}

	st.segments[id] = nil
	st.free = append(st.free, id)

	return
}

// Load returns the word at offset in segment id.
func (st *Store) Load(id uint32, offset uint32) (word uint32, err error) {
	if !st.Live(id) {
		err = ErrSegment(id)
		return
	}

	seg := st.segments[id]
	if uint64(offset) >= uint64(len(seg)) {
		err = ErrBounds{Id: id, Offset: offset, Length: uint32(len(seg))}
		return
	}

	word = seg[offset]

	return
}

// Store writes word at offset in segment id.
func (st *Store) Store(id uint32, offset uint32, word uint32) (err error) {
	if !st.Live(id) {
		err = ErrSegment(id)
		return
	}

	seg := st.segments[id]
	if uint64(offset) >= uint64(len(seg)) {
		err = ErrBounds{Id: id, Offset: offset, Length: uint32(len(seg))}
		return
	}

	seg[offset] = word

	return
}

// Duplicate returns an owned copy of the words of segment id.
func (st *Store) Duplicate(id uint32) (words []uint32, err error) {
	if !st.Live(id) {
		err = ErrSegment(id)
		return
	}

	words = slices.Clone(st.segments[id])
	if words == nil {
		words = []uint32{}
	}

	return
}

// Length returns the word count of segment id.
func (st *Store) Length(id uint32) (length uint32, err error) {
	if !st.Live(id) {
		err = ErrSegment(id)
		return
	}

	length = uint32(len(st.segments[id]))

	return
}
