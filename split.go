package depot

import "github.com/TheBitDrifter/mask"

// Split hands out a view with exclusive access to ids and read access to every
// type that is read-only right now. The requested types stay locked, and the
// root restricted, until KillChildren. On failure nothing is locked and the
// receiver is returned.
func (s *storage) Split(ids ...TypeID) (Storage, error) {
	if s.view {
		return s, s.warn("Split", ViewError{Op: "Split"})
	}

	granted := make([]*typeInfo, 0, len(ids))
	var writable mask.Mask
	for _, id := range ids {
		ti, err := s.lookup(id)
		if err != nil {
			return s, s.warn("Split", err)
		}
		if ti.holder != nil {
			return s, s.warn("Split", ComponentTypeLockedError{Name: ti.name})
		}
		granted = append(granted, ti)
		writable.Mark(ti.bit)
	}

	visible := writable
	for id := range s.typeIDs() {
		if ti, _ := s.info(id); ti.readOnly {
			visible.Mark(ti.bit)
		}
	}

	child := &storage{
		core:     s.core,
		view:     true,
		parent:   s,
		visible:  visible,
		writable: writable,
	}
	for _, ti := range granted {
		ti.holder = child
	}
	s.children = append(s.children, child)
	return child, nil
}

// KillChildren drops every view, releases every lock and lifts the
// restriction. Every goroutine using a view must have returned first.
func (s *storage) KillChildren() error {
	if s.view {
		return s.warn("KillChildren", ViewError{Op: "KillChildren"})
	}
	for _, child := range s.children {
		child.parent = nil
	}
	s.children = s.children[:0]
	for id := range s.typeIDs() {
		ti, _ := s.info(id)
		ti.holder = nil
	}
	s.settle()
	return nil
}

// disjoint reports whether no two of the bit sets share a bit
func disjoint(sets [][]uint32) bool {
	var union mask.Mask
	for _, bits := range sets {
		var m mask.Mask
		for _, bit := range bits {
			m.Mark(bit)
		}
		if union.ContainsAny(m) {
			return false
		}
		for _, bit := range bits {
			union.Mark(bit)
		}
	}
	return true
}
