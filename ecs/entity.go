package ecs

import (
	"math"
	"strconv"
)

const (
	// IndexMask selects the 30 index bits of an Entity.
	IndexMask uint32 = 0x3FFFFFFF
	// GenerationMask selects the generation after shifting by GenerationShift.
	GenerationMask uint32 = 0x3
	// GenerationShift is the bit offset of the generation field.
	GenerationShift = 30
)

// Null is the reserved handle that is never valid.
const Null = Entity(math.MaxUint32)

// Entity encodes a reusable slot index (lower 30 bits) and a recycling
// generation (upper 2 bits).
//
// The generation only has four values. An index recycled four times
// produces a handle equal to the one it started with, so a stale handle kept
// across that many recycles is considered valid again.
type Entity uint32

// NewEntity creates an Entity from an index and a generation. Both values are
// truncated to their field width.
func NewEntity(index uint32, generation uint32) Entity {
	return Entity((generation&GenerationMask)<<GenerationShift | index&IndexMask)
}

// Index extracts the slot index.
func (e Entity) Index() uint32 {
	return uint32(e) & IndexMask
}

// Generation extracts the recycling generation.
func (e Entity) Generation() uint32 {
	return (uint32(e) >> GenerationShift) & GenerationMask
}

// IsNull reports whether e is the Null handle.
func (e Entity) IsNull() bool {
	return e == Null
}

func (e Entity) String() string {
	if e == Null {
		return "null"
	}
	return strconv.FormatUint(uint64(e.Index()), 10) + "v" + strconv.FormatUint(uint64(e.Generation()), 10)
}
