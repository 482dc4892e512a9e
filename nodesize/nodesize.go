// Package nodesize measures the per-element footprint of an ordered Go
// container, the way the layout planner needs to know it before sizing a
// pool of free-set nodes. The source this is ported from measures a live
// node by substituting a recording allocator into an
// allocator-aware C++ container and reading back the single allocation a
// push/insert performs; Go's container/list has no allocator injection
// point to substitute, so the footprint is instead derived directly from
// the node's memory layout.
package nodesize

import (
	"container/list"
	"reflect"
	"unsafe"
)

// elementOverhead is the portion of a container/list.Element occupied by
// its own next/prev/list bookkeeping, exclusive of the Value field.
func elementOverhead() int {
	var elem list.Element
	return int(unsafe.Sizeof(elem)) - int(unsafe.Sizeof(elem.Value))
}

// Of reports the byte footprint a container/list element holding a value
// of type T would occupy: list bookkeeping plus the value's own size.
func Of[T any]() int {
	var zero T
	return elementOverhead() + int(unsafe.Sizeof(zero))
}

// OfValue is Of's dynamic-typed counterpart, for callers that only have a
// reflect.Value or an interface value in hand rather than a static type
// parameter.
func OfValue(v any) int {
	return elementOverhead() + int(reflect.TypeOf(v).Size())
}
