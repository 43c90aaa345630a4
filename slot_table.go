package depot

import (
	"math"
	"reflect"
	"unsafe"
)

// column is the type-erased face of a slotTable. The concrete table is picked
// once, at registration, by the component token that knows T.
type column interface {
	len() int
	capacity() int
	setGrowth(f float64)
	reallocations() int

	owner(slot int) Handle
	setOwner(slot int, h Handle)

	insertValue(owner Handle, v any) (int, bool)
	insertBytes(owner Handle, raw []byte) int
	detachValue(v any) any
	removeAt(slot int) (moved Handle, ok bool)

	pointer(slot int) unsafe.Pointer
	value(slot int) any
	read(slot int) any

	elemSize() int
	rawCopyable() bool
	clear()
}

type slot[T any] struct {
	data  T
	owner Handle
}

// slotTable stores one component type densely. buf has len == capacity and
// only the first n entries are live.
type slotTable[T any] struct {
	buf          []slot[T]
	n            int
	growthFactor float64
	reallocs     int
	size         int
	raw          bool
}

var _ column = &slotTable[struct{}]{}

func newSlotTable[T any](capacity int, growthFactor float64) *slotTable[T] {
	if capacity < 0 {
		capacity = 0
	}
	var zero T
	typ := reflect.TypeOf(&zero).Elem()
	return &slotTable[T]{
		buf:          make([]slot[T], capacity),
		growthFactor: growthFactor,
		size:         int(typ.Size()),
		raw:          !hasPointers(typ),
	}
}

func (st *slotTable[T]) len() int            { return st.n }
func (st *slotTable[T]) capacity() int       { return len(st.buf) }
func (st *slotTable[T]) setGrowth(f float64) { st.growthFactor = f }
func (st *slotTable[T]) reallocations() int  { return st.reallocs }
func (st *slotTable[T]) elemSize() int       { return st.size }
func (st *slotTable[T]) rawCopyable() bool   { return st.raw }

func (st *slotTable[T]) owner(i int) Handle {
	return st.buf[i].owner
}

func (st *slotTable[T]) setOwner(i int, h Handle) {
	st.buf[i].owner = h
}

func (st *slotTable[T]) at(i int) *T {
	return &st.buf[i].data
}

func (st *slotTable[T]) insert(owner Handle, v T) int {
	if st.n >= len(st.buf) {
		st.refit(int(math.Ceil(float64(len(st.buf)) * st.growthFactor)))
	}
	i := st.n
	st.buf[i] = slot[T]{data: v, owner: owner}
	st.n++
	return i
}

func (st *slotTable[T]) insertValue(owner Handle, v any) (int, bool) {
	switch val := v.(type) {
	case T:
		return st.insert(owner, val), true
	case *T:
		if val == nil {
			return -1, false
		}
		return st.insert(owner, *val), true
	}
	return -1, false
}

// detachValue turns a *T into a T so the payload no longer aliases the caller
func (st *slotTable[T]) detachValue(v any) any {
	if p, ok := v.(*T); ok && p != nil {
		return *p
	}
	return v
}

// insertBytes copies raw into a fresh slot. The caller has verified that T is
// pointer-free and that len(raw) == elemSize().
func (st *slotTable[T]) insertBytes(owner Handle, raw []byte) int {
	var zero T
	i := st.insert(owner, zero)
	if st.size > 0 {
		dst := unsafe.Slice((*byte)(unsafe.Pointer(&st.buf[i].data)), st.size)
		copy(dst, raw)
	}
	return i
}

func (st *slotTable[T]) removeAt(i int) (Handle, bool) {
	last := st.n - 1
	moved, ok := InvalidHandle, false
	if i != last {
		st.buf[i] = st.buf[last]
		moved, ok = st.buf[i].owner, true
	}
	st.buf[last] = slot[T]{}
	st.n--

	if float64(st.n) < float64(len(st.buf))/st.growthFactor {
		st.refit(int(math.Ceil(float64(len(st.buf)) / st.growthFactor)))
	}
	return moved, ok
}

// refit relocates the live slots into a buffer of the given capacity. The old
// buffer is only dropped once the copy has completed.
func (st *slotTable[T]) refit(capacity int) {
	if capacity < st.n {
		capacity = st.n
	}
	if capacity <= st.n && st.n == len(st.buf) {
		capacity = st.n + 1
	}
	if capacity == len(st.buf) {
		return
	}
	next := make([]slot[T], capacity)
	copy(next, st.buf[:st.n])
	st.buf = next
	st.reallocs++
}

func (st *slotTable[T]) pointer(i int) unsafe.Pointer {
	return unsafe.Pointer(&st.buf[i].data)
}

func (st *slotTable[T]) value(i int) any {
	return &st.buf[i].data
}

func (st *slotTable[T]) read(i int) any {
	return st.buf[i].data
}

func (st *slotTable[T]) clear() {
	clear(st.buf)
	st.n = 0
}

func hasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.Map, reflect.Slice,
		reflect.String, reflect.Chan, reflect.Func, reflect.Interface:
		return true
	case reflect.Array:
		return t.Len() > 0 && hasPointers(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if hasPointers(t.Field(i).Type) {
				return true
			}
		}
	}
	return false
}
