package depot

import (
	"reflect"

	"github.com/TheBitDrifter/table"
)

var _ Component = AccessibleComponent[struct{}]{}

// AccessibleComponent is the typed token for component type T
// It provides typed access to the slots of T in any storage it is registered with
type AccessibleComponent[T any] struct {
	table.ElementType
}

func (c AccessibleComponent[T]) elementType() table.ElementType {
	return c.ElementType
}

func (c AccessibleComponent[T]) reflectType() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func (c AccessibleComponent[T]) newColumn(capacity int, growthFactor float64) column {
	return newSlotTable[T](capacity, growthFactor)
}

// IDFor returns the type id T was registered under in sto
func (c AccessibleComponent[T]) IDFor(sto Storage) (TypeID, bool) {
	return sto.TypeOf(c)
}

// Register registers T with sto under name
func (c AccessibleComponent[T]) Register(sto Storage, name string, capacity int) (TypeID, error) {
	return sto.Register(c, name, capacity)
}

// Add attaches v to the entity at h
func (c AccessibleComponent[T]) Add(sto Storage, h Handle, v T) error {
	s := sto.(*storage)
	id, err := s.idFor("Add", c)
	if err != nil {
		return err
	}
	return s.addComponent("Add", h, id, func(ti *typeInfo) (int, error) {
		return ti.col.(*slotTable[T]).insert(h, v), nil
	})
}

// Remove detaches T from the entity at h
func (c AccessibleComponent[T]) Remove(sto Storage, h Handle) error {
	s := sto.(*storage)
	id, err := s.idFor("Remove", c)
	if err != nil {
		return err
	}
	return s.removeComponent("Remove", h, id)
}

// Get returns a mutable pointer to the entity's T. Any failure is fatal. The
// pointer is only valid until the next structural change of T.
func (c AccessibleComponent[T]) Get(sto Storage, h Handle) *T {
	s := sto.(*storage)
	id, ok := s.TypeOf(c)
	if !ok {
		s.fatal("Get", ComponentTypeUnregisteredError{Type: c.reflectType().String()})
	}
	ti, i := s.mustSlot("Get", h, id, true)
	return ti.col.(*slotTable[T]).at(i)
}

// GetByGUID resolves g and returns a mutable pointer to the entity's T
func (c AccessibleComponent[T]) GetByGUID(sto Storage, g GUID) *T {
	s := sto.(*storage)
	h, ok := s.core.entities.lookup(g)
	if !ok {
		s.fatal("GetByGUID", GUIDNotFoundError{GUID: g})
	}
	return c.Get(sto, h)
}

// Read returns a copy of the entity's T. Unlike Get it is permitted on
// read-only types.
func (c AccessibleComponent[T]) Read(sto Storage, h Handle) T {
	s := sto.(*storage)
	id, ok := s.TypeOf(c)
	if !ok {
		s.fatal("Read", ComponentTypeUnregisteredError{Type: c.reflectType().String()})
	}
	ti, i := s.mustSlot("Read", h, id, false)
	return *ti.col.(*slotTable[T]).at(i)
}

// Has reports whether the entity at h carries T
func (c AccessibleComponent[T]) Has(sto Storage, h Handle) bool {
	s := sto.(*storage)
	id, ok := s.TypeOf(c)
	if !ok || !s.core.entities.valid(h) {
		return false
	}
	_, found := s.core.entities.slotOf(h, id)
	return found
}

// OnAdd installs the add hook for T, replacing any previous one
func (c AccessibleComponent[T]) OnAdd(sto Storage, fn func(Storage, Handle, *T)) error {
	id, ok := sto.TypeOf(c)
	if !ok {
		return sto.(*storage).warn("OnAdd", ComponentTypeUnregisteredError{Type: c.reflectType().String()})
	}
	return sto.SetAddHook(id, func(s Storage, h Handle, v any) {
		fn(s, h, v.(*T))
	})
}

// OnRemove installs the remove hook for T, replacing any previous one
func (c AccessibleComponent[T]) OnRemove(sto Storage, fn func(Storage, Handle, *T)) error {
	id, ok := sto.TypeOf(c)
	if !ok {
		return sto.(*storage).warn("OnRemove", ComponentTypeUnregisteredError{Type: c.reflectType().String()})
	}
	return sto.SetRemoveHook(id, func(s Storage, h Handle, v any) {
		fn(s, h, v.(*T))
	})
}
