package fib

import (
	"encoding/binary"

	"github.com/cbehopkins/fibmem/nodesize"
	"github.com/cbehopkins/fibmem/pool"
)

const (
	nodeNextOffset = 0
	nodeAddrOffset = 8
)

const nilNode int32 = -1

// freeSetNode is a witness type describing the logical shape of one
// free-set node (a next-index link plus the free address it names), fed
// to nodesize so the layout planner sizes the shared pool the same way
// it would size a pool backing any other ordered-container node, rather
// than by a hand-picked constant.
type freeSetNode struct {
	Next int32
	Addr int64
}

// freeSetNodeSize is the byte footprint the layout planner reserves per
// free-set node. It is measured, not hardcoded (§6.3): nodesize.Of
// includes the bookkeeping overhead of the ordered container it models
// free-set membership on, so the slot ends up somewhat larger than the
// 16 bytes freeset.go's fixed-offset encode/decode actually touches
// (nodeNextOffset, nodeAddrOffset); the unused tail bytes are slack, not
// a correctness concern, since pool slots only need to be at least as
// large as the widest offset written into them.
var freeSetNodeSize = nodesize.Of[freeSetNode]()

// freeSets holds one ordered-by-address linked list per size class. Every
// node comes from a single pool allocator shared across all classes,
// sized by the layout planner to F[N-2-D] slots: the maximum number of
// free blocks that can exist simultaneously across the whole region.
type freeSets struct {
	pool  *pool.Allocator
	heads []int32
	sizes []int
}

func newFreeSets(region []byte, lay *layout) (*freeSets, error) {
	slab := region[lay.poolOffset : lay.poolOffset+(lay.poolCount+1)*lay.poolSlotSize]
	p, err := pool.New(slab, lay.poolSlotSize)
	if err != nil {
		return nil, err
	}
	heads := make([]int32, lay.N)
	for i := range heads {
		heads[i] = nilNode
	}
	return &freeSets{pool: p, heads: heads, sizes: make([]int, lay.N)}, nil
}

func (fs *freeSets) nodeNext(idx int32) int32 {
	return int32(binary.LittleEndian.Uint64(fs.pool.Slot(idx)[nodeNextOffset:]))
}

func (fs *freeSets) setNodeNext(idx int32, next int32) {
	binary.LittleEndian.PutUint64(fs.pool.Slot(idx)[nodeNextOffset:], uint64(uint32(next)))
}

func (fs *freeSets) nodeAddr(idx int32) int {
	return int(binary.LittleEndian.Uint64(fs.pool.Slot(idx)[nodeAddrOffset:]))
}

func (fs *freeSets) setNodeAddr(idx int32, addr int) {
	binary.LittleEndian.PutUint64(fs.pool.Slot(idx)[nodeAddrOffset:], uint64(addr))
}

// empty reports whether class k's free set has no members.
func (fs *freeSets) empty(k int) bool {
	return fs.heads[k] == nilNode
}

// size returns the number of addresses currently free in class k.
func (fs *freeSets) size(k int) int {
	return fs.sizes[k]
}

// insert adds addr to class k's set, keeping the list sorted ascending by
// address so the lowest free address is always the head.
func (fs *freeSets) insert(k int, addr int) error {
	idx, err := fs.pool.Alloc()
	if err != nil {
		return err
	}
	fs.setNodeAddr(idx, addr)

	var prev int32 = nilNode
	cur := fs.heads[k]
	for cur != nilNode && fs.nodeAddr(cur) < addr {
		prev = cur
		cur = fs.nodeNext(cur)
	}
	fs.setNodeNext(idx, cur)
	if prev == nilNode {
		fs.heads[k] = idx
	} else {
		fs.setNodeNext(prev, idx)
	}
	fs.sizes[k]++
	return nil
}

// peekLowest returns the lowest address currently free in class k without
// removing it.
func (fs *freeSets) peekLowest(k int) (int, bool) {
	idx := fs.heads[k]
	if idx == nilNode {
		return 0, false
	}
	return fs.nodeAddr(idx), true
}

// popLowest removes and returns the lowest address currently free in
// class k, for allocation site selection (§4.4 step 3).
func (fs *freeSets) popLowest(k int) (int, bool) {
	idx := fs.heads[k]
	if idx == nilNode {
		return 0, false
	}
	addr := fs.nodeAddr(idx)
	fs.heads[k] = fs.nodeNext(idx)
	_ = fs.pool.Free(idx)
	fs.sizes[k]--
	return addr, true
}

// erase removes addr from class k's set, if present, for buddy lookup
// during deallocation.
func (fs *freeSets) erase(k int, addr int) bool {
	var prev int32 = nilNode
	cur := fs.heads[k]
	for cur != nilNode {
		a := fs.nodeAddr(cur)
		if a == addr {
			if prev == nilNode {
				fs.heads[k] = fs.nodeNext(cur)
			} else {
				fs.setNodeNext(prev, fs.nodeNext(cur))
			}
			_ = fs.pool.Free(cur)
			fs.sizes[k]--
			return true
		}
		if a > addr {
			break
		}
		prev = cur
		cur = fs.nodeNext(cur)
	}
	return false
}
