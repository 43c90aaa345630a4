package depot

import (
	"fmt"
	"unsafe"
)

// addComponent runs every precondition of an attach before insert touches the
// slot table; insert itself must not mutate anything when it returns an error.
func (s *storage) addComponent(op string, h Handle, id TypeID, insert func(*typeInfo) (int, error)) error {
	if s.Restricted() {
		return s.warn(op, s.restriction())
	}
	reg := s.core.entities
	if !reg.valid(h) {
		return s.warn(op, EntityNotFoundError{Handle: h})
	}
	ti, err := s.lookup(id)
	if err != nil {
		return s.warn(op, err)
	}
	if s.lockedFor(ti) {
		return s.warn(op, ComponentTypeLockedError{Name: ti.name})
	}
	if _, exists := reg.slotOf(h, id); exists {
		return s.warn(op, ComponentExistsError{Name: ti.name, Handle: h})
	}
	if ti.singular && ti.col.len() > 0 {
		return s.warn(op, SingularComponentError{Name: ti.name, Count: ti.col.len()})
	}

	slot, err := insert(ti)
	if err != nil {
		return s.warn(op, err)
	}
	reg.attach(h, id, ti.bit, slot)

	if ti.onAdd != nil {
		ti.onAdd(s, h, ti.col.value(slot))
	}
	return nil
}

func (s *storage) removeComponent(op string, h Handle, id TypeID) error {
	if s.Restricted() {
		return s.warn(op, s.restriction())
	}
	reg := s.core.entities
	if !reg.valid(h) {
		return s.warn(op, EntityNotFoundError{Handle: h})
	}
	ti, err := s.lookup(id)
	if err != nil {
		return s.warn(op, err)
	}
	slot, ok := reg.slotOf(h, id)
	if !ok {
		return s.warn(op, ComponentNotFoundError{Name: ti.name, Handle: h})
	}
	if s.lockedFor(ti) {
		return s.warn(op, ComponentTypeLockedError{Name: ti.name})
	}
	s.detach(h, ti, slot)
	return nil
}

// detach fires the remove hook, swap-removes the slot and repairs the index of
// whichever entity owned the slot that moved into its place.
func (s *storage) detach(h Handle, ti *typeInfo, slot int) {
	reg := s.core.entities
	if ti.onRemove != nil {
		ti.onRemove(s, h, ti.col.value(slot))
		var ok bool
		if slot, ok = reg.slotOf(h, ti.id); !ok {
			return
		}
	}
	if moved, ok := ti.col.removeAt(slot); ok {
		reg.setSlot(moved, ti.id, slot)
	}
	reg.detach(h, ti.id, ti.bit)
}

// mustSlot resolves the slot behind (h, id) for a caller that will dereference
// it unconditionally. Every failure is fatal.
func (s *storage) mustSlot(op string, h Handle, id TypeID, mutable bool) (*typeInfo, int) {
	reg := s.core.entities
	if !reg.valid(h) {
		s.fatal(op, EntityNotFoundError{Handle: h})
	}
	ti, err := s.lookup(id)
	if err != nil {
		s.fatal(op, err)
	}
	slot, ok := reg.slotOf(h, id)
	if !ok {
		s.fatal(op, ComponentNotFoundError{Name: ti.name, Handle: h})
	}
	if mutable && ti.readOnly {
		s.fatal(op, ComponentTypeReadOnlyError{Name: ti.name})
	}
	if s.lockedFor(ti) {
		s.fatal(op, ComponentTypeLockedError{Name: ti.name})
	}
	return ti, slot
}

// AddComponent attaches an erased value, either T or *T, to the entity at h
func (s *storage) AddComponent(h Handle, id TypeID, value any) error {
	return s.addComponent("AddComponent", h, id, func(ti *typeInfo) (int, error) {
		slot, ok := ti.col.insertValue(h, value)
		if !ok {
			return -1, ComponentValueError{Name: ti.name, Got: fmt.Sprintf("%T", value)}
		}
		return slot, nil
	})
}

// AddComponentBytes attaches a component copied byte-for-byte from raw. Only
// pointer-free component types accept raw bytes.
func (s *storage) AddComponentBytes(h Handle, id TypeID, raw []byte) error {
	return s.addComponent("AddComponentBytes", h, id, func(ti *typeInfo) (int, error) {
		if !ti.col.rawCopyable() {
			return -1, ComponentNotRawError{Name: ti.name}
		}
		if len(raw) != ti.col.elemSize() {
			return -1, ComponentSizeError{Name: ti.name, Want: ti.col.elemSize(), Got: len(raw)}
		}
		return ti.col.insertBytes(h, raw), nil
	})
}

func (s *storage) RemoveComponent(h Handle, id TypeID) error {
	return s.removeComponent("RemoveComponent", h, id)
}

// MustRemoveComponent is RemoveComponent for callers with no way to handle a
// failure: every precondition violation is fatal.
func (s *storage) MustRemoveComponent(h Handle, id TypeID) {
	if s.Restricted() {
		s.fatal("MustRemoveComponent", s.restriction())
	}
	ti, slot := s.mustSlot("MustRemoveComponent", h, id, true)
	s.detach(h, ti, slot)
}

// Component returns a pointer to the payload boxed as any (*T)
func (s *storage) Component(h Handle, id TypeID) any {
	ti, slot := s.mustSlot("Component", h, id, true)
	return ti.col.value(slot)
}

// ComponentPointer returns the raw address of the payload. It is invalidated
// by the next structural change of the type.
func (s *storage) ComponentPointer(h Handle, id TypeID) unsafe.Pointer {
	ti, slot := s.mustSlot("ComponentPointer", h, id, true)
	return ti.col.pointer(slot)
}

// ReadComponent returns a copy of the payload boxed as any (T)
func (s *storage) ReadComponent(h Handle, id TypeID) any {
	ti, slot := s.mustSlot("ReadComponent", h, id, false)
	return ti.col.read(slot)
}
