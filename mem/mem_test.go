package mem

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllocateZeroFill(t *testing.T) {
	assert := assert.New(t)

	st := NewStore()

	id := st.Allocate(16)
	assert.NotEqual(uint32(0), id)
	assert.True(st.Live(id))

	length, err := st.Length(id)
	assert.NoError(err)
	assert.Equal(uint32(16), length)

	for offset := range uint32(16) {
		word, err := st.Load(id, offset)
		assert.NoError(err)
		assert.Equal(uint32(0), word)
	}
}

func TestAllocateFresh(t *testing.T) {
	assert := assert.New(t)

	st := NewStore()
	st.InstallProgram([]uint32{0})

	seen := map[uint32]bool{0: true}
	for range 64 {
		id := st.Allocate(1)
		assert.False(seen[id])
		seen[id] = true
	}
}

func TestAbandonReuse(t *testing.T) {
	assert := assert.New(t)

	st := NewStore()

	a := st.Allocate(4)
	b := st.Allocate(4)
	assert.NotEqual(a, b)

	assert.NoError(st.Abandon(b))
	assert.False(st.Live(b))

	c := st.Allocate(2)
	assert.Equal(b, c)

	length, err := st.Length(c)
	assert.NoError(err)
	assert.Equal(uint32(2), length)

	word, err := st.Load(c, 0)
	assert.NoError(err)
	assert.Equal(uint32(0), word)
}

func TestAbandonFaults(t *testing.T) {
	assert := assert.New(t)

	st := NewStore()

	assert.ErrorIs(st.Abandon(0), ErrSegmentZero)
	assert.ErrorIs(st.Abandon(42), ErrSegment(42))

	id := st.Allocate(1)
	assert.NoError(st.Abandon(id))
	assert.ErrorIs(st.Abandon(id), ErrSegment(id))
}

func TestLoadStoreBounds(t *testing.T) {
	assert := assert.New(t)

	st := NewStore()

	id := st.Allocate(3)
	assert.NoError(st.Store(id, 2, 0xcafe))

	word, err := st.Load(id, 2)
	assert.NoError(err)
	assert.Equal(uint32(0xcafe), word)

	_, err = st.Load(id, 3)
	assert.ErrorIs(err, ErrBounds{})

	err = st.Store(id, 0xffffffff, 1)
	assert.ErrorIs(err, ErrBounds{})

	_, err = st.Load(99, 0)
	assert.ErrorIs(err, ErrSegment(99))
}

func TestDuplicateIndependence(t *testing.T) {
	assert := assert.New(t)

	st := NewStore()

	id := st.Allocate(2)
	assert.NoError(st.Store(id, 0, 1111))
	assert.NoError(st.Store(id, 1, 2222))

	words, err := st.Duplicate(id)
	assert.NoError(err)
	assert.Equal([]uint32{1111, 2222}, words)

	// Mutating the copy must not touch the source.
	words[0] = 3333
	word, err := st.Load(id, 0)
	assert.NoError(err)
	assert.Equal(uint32(1111), word)

	_, err = st.Duplicate(7)
	assert.ErrorIs(err, ErrSegment(7))
}

func TestInstallProgramReplaces(t *testing.T) {
	assert := assert.New(t)

	st := NewStore()

	st.InstallProgram([]uint32{1, 2, 3})
	assert.Equal([]uint32{1, 2, 3}, st.Program())
	assert.True(st.Live(0))

	st.InstallProgram([]uint32{9})
	assert.Equal([]uint32{9}, st.Program())

	word, err := st.Load(0, 0)
	assert.NoError(err)
	assert.Equal(uint32(9), word)
}
