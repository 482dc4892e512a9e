package fib

import "encoding/binary"

// Header is the decoded form of the 32-bit word that begins every
// technical block, live or free.
type Header struct {
	// Buddy records this block's own role in the split that produced it:
	// false = left (smaller) child, true = right (larger) child.
	Buddy bool

	// Memory carries one of the parent's bits down through the split: the
	// left child stores the parent's Buddy bit and the right child stores
	// the parent's Memory bit, so that a multi-level coalesce can rebuild
	// the merged parent's header without walking back up an explicit tree.
	Memory bool

	// Index is the block's current size class.
	Index int
}

const (
	headerBuddyBit  uint32 = 1 << 31
	headerMemoryBit uint32 = 1 << 30
	headerIndexMask uint32 = headerMemoryBit - 1
)

// encodeHeader packs h into the 4-byte header word.
func encodeHeader(h Header) uint32 {
	w := uint32(h.Index) & headerIndexMask
	if h.Buddy {
		w |= headerBuddyBit
	}
	if h.Memory {
		w |= headerMemoryBit
	}
	return w
}

// decodeHeader unpacks a header word.
func decodeHeader(w uint32) Header {
	return Header{
		Buddy:  w&headerBuddyBit != 0,
		Memory: w&headerMemoryBit != 0,
		Index:  int(w & headerIndexMask),
	}
}

// putHeader writes h to the first headerSizeBytes bytes of block.
func putHeader(block []byte, h Header) {
	binary.LittleEndian.PutUint32(block, encodeHeader(h))
}

// getHeader reads the header from the first headerSizeBytes bytes of block.
func getHeader(block []byte) Header {
	return decodeHeader(binary.LittleEndian.Uint32(block))
}

// headerSizeBytes is the on-disk size of a block header word. Alignment A
// is always >= 4, so the header always fits in the leading A bytes of a
// technical block with room to spare for A > 4.
const headerSizeBytes = 4
