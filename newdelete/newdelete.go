// Package newdelete is the thin typed-construction façade that sits on
// top of a fib.Manager: allocate raw storage, construct a value into it,
// and on the matching Delete, deallocate it. It carries no algorithmic
// content of its own.
//
// T must be a flat, pointer-free type (structs of numeric/array fields,
// not types holding slices, maps, strings, or other pointers). The
// allocator's region is plain []byte, outside the Go garbage collector's
// view of pointers; storing a Go pointer inside it would let the
// collector free or move the pointee out from under a live allocation.
package newdelete

import (
	"unsafe"

	"github.com/cbehopkins/fibmem/fib"
)

// New allocates storage for one T through mgr, copies v into it, and
// returns a pointer aliasing that storage. The returned pointer is valid
// only until the matching Delete(mgr, ptr) call, and only while mgr's
// backing region is not reused for something else via unsafe means.
func New[T any](mgr *fib.Manager, v T) (*T, fib.Ptr, error) {
	var zero T
	size := int(unsafe.Sizeof(zero))
	p, err := mgr.Allocate(size)
	if err != nil {
		return nil, fib.NullPtr, err
	}
	buf := mgr.Bytes(p, size)
	typed := (*T)(unsafe.Pointer(&buf[0]))
	*typed = v
	return typed, p, nil
}

// Delete deallocates a value previously constructed with New. Go has no
// user-visible destructor call to make first; dropping the last
// reference to the returned *T is the Go equivalent of the source
// design's destruct-then-deallocate.
func Delete[T any](mgr *fib.Manager, p fib.Ptr) error {
	return mgr.Deallocate(p)
}

// NewArray allocates storage for n contiguous Ts through mgr and returns
// a slice aliasing that storage, each element zero-valued.
func NewArray[T any](mgr *fib.Manager, n int) ([]T, fib.Ptr, error) {
	var zero T
	elemSize := int(unsafe.Sizeof(zero))
	p, err := mgr.Allocate(elemSize * n)
	if err != nil {
		return nil, fib.NullPtr, err
	}
	buf := mgr.Bytes(p, elemSize*n)
	clear(buf)
	typed := unsafe.Slice((*T)(unsafe.Pointer(&buf[0])), n)
	return typed, p, nil
}

// DeleteArray deallocates a slice previously constructed with NewArray.
func DeleteArray[T any](mgr *fib.Manager, p fib.Ptr) error {
	return mgr.Deallocate(p)
}
