// Package pool implements a fixed-slot allocator backed by a caller-supplied
// byte slab. Every slot is the same size; a singly-linked freelist is
// threaded through the first machine word of each free slot, exactly as
// described for the allocator's own free-set bookkeeping: no slot is ever
// obtained from the host allocator after New returns.
package pool

import (
	"encoding/binary"
	"errors"
)

var (
	// ErrSlabTooSmall is returned when the supplied slab cannot hold even
	// the sentinel slot.
	ErrSlabTooSmall = errors.New("pool: slab too small for one slot")

	// ErrSlotTooSmall is returned when slotSize cannot hold the intrusive
	// freelist word.
	ErrSlotTooSmall = errors.New("pool: slot size smaller than a machine word")

	// ErrExhausted is returned by Alloc when every slot is in use.
	ErrExhausted = errors.New("pool: no free slots")

	// ErrNotAllocated is returned by Free when the slot index is outside the
	// usable slots of the slab. Freeing a slot that is already free is not
	// detected.
	ErrNotAllocated = errors.New("pool: slot not currently allocated")
)

const wordSize = 8

// Allocator hands out fixed-size slots from a caller-supplied slab. One
// slot is never allocated: it is a sentinel so that "pool is empty" is a
// single index comparison, never a length scan.
type Allocator struct {
	slab     []byte
	slotSize int
	count    int // usable slots, i.e. len(slab)/slotSize - 1 (sentinel excluded)
	first    int32
	sentinel int32
	inUse    int
}

// New carves slab into fixed-size slots and threads the initial freelist
// through them. slotSize must be at least one machine word (8 bytes); slab
// must be large enough for at least two slots (one usable, one sentinel).
func New(slab []byte, slotSize int) (*Allocator, error) {
	if slotSize < wordSize {
		return nil, ErrSlotTooSmall
	}
	total := len(slab) / slotSize
	if total < 2 {
		return nil, ErrSlabTooSmall
	}

	a := &Allocator{
		slab:     slab,
		slotSize: slotSize,
		count:    total - 1,
		sentinel: int32(total - 1),
	}
	for i := 0; i < total-1; i++ {
		binary.LittleEndian.PutUint64(a.slotBytes(int32(i)), uint64(i+1))
	}
	a.first = 0
	return a, nil
}

// Cap returns the number of usable (non-sentinel) slots.
func (a *Allocator) Cap() int { return a.count }

// Len returns the number of slots currently allocated.
func (a *Allocator) Len() int { return a.inUse }

func (a *Allocator) slotBytes(idx int32) []byte {
	off := int(idx) * a.slotSize
	return a.slab[off : off+a.slotSize]
}

// Alloc removes the head of the freelist and returns its index. The
// returned slot's bytes are not cleared; the caller owns and interprets
// them entirely until Free is called.
func (a *Allocator) Alloc() (int32, error) {
	if a.first == a.sentinel {
		return 0, ErrExhausted
	}
	idx := a.first
	a.first = int32(binary.LittleEndian.Uint64(a.slotBytes(idx)))
	a.inUse++
	return idx, nil
}

// Free pushes slot idx back onto the head of the freelist. The caller must
// not free the same slot twice or an index it never received from Alloc.
func (a *Allocator) Free(idx int32) error {
	if idx < 0 || idx >= int32(a.count) {
		return ErrNotAllocated
	}
	binary.LittleEndian.PutUint64(a.slotBytes(idx), uint64(a.first))
	a.first = idx
	a.inUse--
	return nil
}

// Slot returns the raw bytes backing slot idx, for the caller to interpret
// once the slot has been allocated via Alloc.
func (a *Allocator) Slot(idx int32) []byte {
	return a.slotBytes(idx)
}

// SlabSize returns the number of bytes a slab must have to host poolSize
// usable slots of the given slotSize (including the one sentinel slot).
func SlabSize(poolSize, slotSize int) int {
	return (poolSize + 1) * slotSize
}
