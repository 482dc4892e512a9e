package fib

import (
	"encoding/binary"
	"sort"
)

// Ptr is an opaque handle to a live allocation: an offset into the region
// the Manager was constructed over, pointing at the first byte of user
// payload (block + alignment). It is meaningful only to the Manager that
// produced it, an offset-based handle rather than a raw memory pointer.
type Ptr int64

// NullPtr is the value returned on allocation failure. Deallocate
// treats it as a no-op.
const NullPtr Ptr = -1

// Manager is a Fibonacci-buddy allocator placed over a single
// caller-supplied region. The Fibonacci table, the direction table, and
// the free-set node pool are written inside that region. Outside it, on
// the Go heap, the Manager keeps scalar fields, a copy of the Fibonacci
// table (the one Allocate and Deallocate read), and the per-class
// free-set head and count arrays.
type Manager struct {
	region []byte
	cfg    Config
	lay    *layout
	dir    *direction
	fs     *freeSets
	lock   Locker

	freeSpace int
}

// New places a Manager into region according to cfg. region is not copied;
// the Manager reads and writes it directly for the rest of its lifetime
// and never calls into the host allocator again. lock may be nil, in
// which case the caller guarantees single-threaded use.
func New(region []byte, cfg Config, lock Locker) (*Manager, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	lay, err := planLayout(cfg, len(region))
	if err != nil {
		return nil, err
	}

	for i, v := range lay.F {
		binary.LittleEndian.PutUint32(region[lay.fibOffset+i*fibEntrySize:], uint32(v))
	}

	dir := newDirection(region, lay)
	dir.fill(lay.N, cfg.IndexDifference, cfg.Exact)

	fs, err := newFreeSets(region, lay)
	if err != nil {
		return nil, err
	}

	m := &Manager{region: region, cfg: cfg, lay: lay, dir: dir, fs: fs, lock: lock}

	root := lay.dataOffset
	m.setHeader(root, Header{Buddy: false, Memory: false, Index: lay.N - 1})
	if err := fs.insert(lay.N-1, root); err != nil {
		return nil, err
	}
	m.freeSpace = m.userSize(lay.N - 1)

	return m, nil
}

func (m *Manager) header(addr int) Header {
	return getHeader(m.region[addr : addr+headerSizeBytes])
}

func (m *Manager) setHeader(addr int, h Header) {
	putHeader(m.region[addr:addr+headerSizeBytes], h)
}

func (m *Manager) userSize(k int) int {
	return m.lay.B*m.lay.F[k] - m.cfg.Alignment
}

func (m *Manager) lockMu() {
	if m.lock != nil {
		m.lock.Lock()
	}
}

func (m *Manager) unlockMu() {
	if m.lock != nil {
		m.lock.Unlock()
	}
}

// selectSource picks the free-set class to serve a request rounded to
// class j, per the exact/first-fit policy in cfg.
func (m *Manager) selectSource(j int) (int, bool) {
	if m.cfg.Exact {
		for i := j; i < m.lay.N; i++ {
			if !m.fs.empty(i) && m.dir.get(i, j).Exact {
				return i, true
			}
		}
	}
	for i := j; i < m.lay.N; i++ {
		if !m.fs.empty(i) {
			return i, true
		}
	}
	return 0, false
}

// Allocate serves a request for size bytes of user payload, returning a
// handle to the allocation or a failure with state left unchanged.
func (m *Manager) Allocate(size int) (Ptr, error) {
	if size <= 0 {
		return NullPtr, ErrInvalidSize
	}
	sizeWithHeader := size + m.cfg.Alignment
	if sizeWithHeader <= size {
		return NullPtr, ErrInvalidSize
	}

	m.lockMu()
	defer m.unlockMu()

	unitBlocks := (sizeWithHeader + m.lay.B - 1) / m.lay.B
	j := sort.SearchInts(m.lay.F, unitBlocks)
	if j >= m.lay.N {
		return NullPtr, ErrTooLarge
	}

	i, ok := m.selectSource(j)
	if !ok {
		return NullPtr, ErrOutOfMemory
	}

	addr, _ := m.fs.popLowest(i)
	m.freeSpace -= m.userSize(i)

	parent := addr
	k := i
	D := m.cfg.IndexDifference
	for k > j {
		c := m.dir.get(k, j)
		if c.Dir == dirHere {
			break
		}
		parentHeader := m.header(parent)
		L := k - D - 1
		R := k - 1
		leftAddr := parent
		rightAddr := parent + m.lay.B*m.lay.F[L]

		m.setHeader(leftAddr, Header{Buddy: false, Memory: parentHeader.Buddy, Index: L})
		m.setHeader(rightAddr, Header{Buddy: true, Memory: parentHeader.Memory, Index: R})

		if c.Dir == dirLeft {
			if err := m.fs.insert(R, rightAddr); err != nil {
				return NullPtr, err
			}
			m.freeSpace += m.userSize(R)
			parent, k = leftAddr, L
		} else {
			if err := m.fs.insert(L, leftAddr); err != nil {
				return NullPtr, err
			}
			m.freeSpace += m.userSize(L)
			parent, k = rightAddr, R
		}
	}

	return Ptr(parent + m.cfg.Alignment), nil
}

// Deallocate returns the allocation referenced by p to its free set,
// coalescing with buddies as far up the split tree as they are also free.
// A NullPtr is a no-op. A p whose block lies outside the data region, is
// not aligned, or carries a header naming no valid size class is rejected
// with ErrInvalidPointer and leaves all state unchanged; any other p that
// Allocate did not return is not detected.
func (m *Manager) Deallocate(p Ptr) error {
	if p == NullPtr {
		return nil
	}

	m.lockMu()
	defer m.unlockMu()

	block := int(p) - m.cfg.Alignment
	if block < m.lay.dataOffset || block >= m.lay.dataOffset+m.lay.dataSize {
		return ErrInvalidPointer
	}
	if (block-m.lay.dataOffset)%m.cfg.Alignment != 0 {
		return ErrInvalidPointer
	}

	h := m.header(block)
	if h.Index < 0 || h.Index >= m.lay.N {
		return ErrInvalidPointer
	}

	k := h.Index
	buddyBit := h.Buddy
	memoryBit := h.Memory
	D := m.cfg.IndexDifference
	B := m.lay.B
	F := m.lay.F

	for k < m.lay.N-1 {
		var buddyClass, parentClass, buddyAddr, parentAddr int
		if buddyBit {
			buddyClass = k - D
			if buddyClass < 0 {
				break
			}
			buddyAddr = block - B*F[buddyClass]
			parentClass = k + 1
			parentAddr = buddyAddr
		} else {
			buddyClass = k + D
			if buddyClass >= m.lay.N {
				break
			}
			buddyAddr = block + B*F[k]
			parentClass = k + D + 1
			parentAddr = block
		}
		if buddyAddr < m.lay.dataOffset || buddyAddr >= m.lay.dataOffset+m.lay.dataSize {
			break
		}
		if !m.fs.erase(buddyClass, buddyAddr) {
			break
		}
		m.freeSpace -= m.userSize(buddyClass)

		buddyHeader := m.header(buddyAddr)
		var newBuddy, newMemory bool
		if buddyBit {
			// block is the right (larger) child; buddy is the left child,
			// which starts at the parent's own address.
			newMemory = memoryBit
			newBuddy = buddyHeader.Memory
		} else {
			// block is the left child; buddy is the right child.
			newBuddy = memoryBit
			newMemory = buddyHeader.Memory
		}

		block, k = parentAddr, parentClass
		buddyBit, memoryBit = newBuddy, newMemory
		m.setHeader(block, Header{Buddy: buddyBit, Memory: memoryBit, Index: k})
	}

	if err := m.fs.insert(k, block); err != nil {
		return err
	}
	m.freeSpace += m.userSize(k)
	return nil
}

// Bytes returns the user-payload view of a live allocation. The returned
// slice aliases the region directly; callers must not retain it past the
// matching Deallocate.
func (m *Manager) Bytes(p Ptr, size int) []byte {
	off := int(p)
	return m.region[off : off+size]
}

// FreeSpace returns the total user-visible bytes currently free across
// every size class.
func (m *Manager) FreeSpace() int {
	m.lockMu()
	defer m.unlockMu()
	return m.freeSpace
}

// MaxUserBlockSize returns the user payload capacity of the largest size
// class the region supports.
func (m *Manager) MaxUserBlockSize() int {
	m.lockMu()
	defer m.unlockMu()
	return m.userSize(m.lay.N - 1)
}

// MaxFreeUserBlockSize returns the user payload capacity of the largest
// size class with at least one free block, or 0 if the allocator is full.
func (m *Manager) MaxFreeUserBlockSize() int {
	m.lockMu()
	defer m.unlockMu()
	for k := m.lay.N - 1; k >= 0; k-- {
		if !m.fs.empty(k) {
			return m.userSize(k)
		}
	}
	return 0
}

// Alignment returns the configured user alignment A.
func (m *Manager) Alignment() int {
	return m.cfg.Alignment
}

// ClassCount returns the number of size classes N the layout planner
// settled on for this region.
func (m *Manager) ClassCount() int {
	return m.lay.N
}

// IsCorrectEmpty reports whether the allocator is in the single fully
// merged state: exactly one free block, at the root address, occupying
// the whole data region, with every other size class empty.
func (m *Manager) IsCorrectEmpty() bool {
	m.lockMu()
	defer m.unlockMu()

	top := m.lay.N - 1
	if m.fs.size(top) != 1 {
		return false
	}
	for k := 0; k < top; k++ {
		if m.fs.size(k) != 0 {
			return false
		}
	}
	addr, ok := m.fs.peekLowest(top)
	if !ok || addr != m.lay.dataOffset {
		return false
	}
	return m.freeSpace == m.userSize(top)
}
