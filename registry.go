package depot

import (
	"iter"

	iter_util "github.com/TheBitDrifter/util/iter"
)

func (s *storage) Register(c Component, name string, capacity int) (TypeID, error) {
	if s.Restricted() {
		return 0, s.warn("Register", s.restriction())
	}
	typ := c.reflectType()
	if _, exists := s.core.byType[typ]; exists {
		return 0, s.warn("Register", ComponentTypeExistsError{Name: typ.String()})
	}
	if name == "" {
		name = typ.String()
	}
	if capacity <= 0 {
		capacity = s.core.initialCapacity
	}

	ti := &typeInfo{
		name: name,
		typ:  typ,
		elem: c.elementType(),
		col:  c.newColumn(capacity, s.core.growthFactor),
	}
	idx, err := s.core.types.Register(name, ti)
	if err != nil {
		return 0, s.warn("Register", err)
	}
	s.core.schema.Register(ti.elem)
	ti.id = TypeID(idx)
	// mask bits are dense per storage, unlike schema rows
	ti.bit = uint32(idx)
	s.core.byType[typ] = ti.id
	return ti.id, nil
}

// Unregister detaches the type from every owner, without firing hooks, and
// drops it from the catalog. Its id is never handed out again.
func (s *storage) Unregister(id TypeID) error {
	if s.Restricted() {
		return s.warn("Unregister", s.restriction())
	}
	ti, err := s.lookup(id)
	if err != nil {
		return s.warn("Unregister", err)
	}
	for i := ti.col.len() - 1; i >= 0; i-- {
		s.core.entities.detach(ti.col.owner(i), id, ti.bit)
	}
	ti.col.clear()
	s.core.types.Forget(ti.name)
	delete(s.core.byType, ti.typ)
	return nil
}

func (s *storage) TypeOf(c Component) (TypeID, bool) {
	id, ok := s.core.byType[c.reflectType()]
	return id, ok
}

func (s *storage) TypeIDsOf(components ...Component) ([]TypeID, error) {
	ids := make([]TypeID, 0, len(components))
	for _, c := range components {
		id, err := s.idFor("TypeIDsOf", c)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *storage) TypeIDByName(name string) (TypeID, bool) {
	idx, ok := s.core.types.GetIndex(name)
	if !ok {
		return 0, false
	}
	if _, visible := s.info(TypeID(idx)); !visible {
		return 0, false
	}
	return TypeID(idx), true
}

func (s *storage) TypeName(id TypeID) (string, bool) {
	ti, ok := s.info(id)
	if !ok {
		return "", false
	}
	return ti.name, true
}

// typeIDs yields every type this storage may see, in registration order
func (s *storage) typeIDs() iter.Seq[TypeID] {
	return func(yield func(TypeID) bool) {
		for i := 0; i < s.core.types.Len(); i++ {
			if _, ok := s.info(TypeID(i)); !ok {
				continue
			}
			if !yield(TypeID(i)) {
				return
			}
		}
	}
}

func (s *storage) ComponentTypeIDs() []TypeID {
	return iter_util.Collect(s.typeIDs())
}

func (s *storage) RowIndexFor(c Component) (uint32, bool) {
	id, ok := s.TypeOf(c)
	if !ok {
		return 0, false
	}
	ti, ok := s.info(id)
	if !ok {
		return 0, false
	}
	return ti.bit, true
}

func (s *storage) ComponentCount(id TypeID) int {
	ti, ok := s.info(id)
	if !ok {
		return 0
	}
	return ti.col.len()
}

func (s *storage) ComponentCapacity(id TypeID) int {
	ti, ok := s.info(id)
	if !ok {
		return 0
	}
	return ti.col.capacity()
}

func (s *storage) SetReadOnly(id TypeID) error {
	return s.setReadOnly("SetReadOnly", id, true)
}

func (s *storage) SetReadWrite(id TypeID) error {
	return s.setReadOnly("SetReadWrite", id, false)
}

func (s *storage) setReadOnly(op string, id TypeID, readOnly bool) error {
	ti, err := s.mutableType(op, id)
	if err != nil {
		return err
	}
	ti.readOnly = readOnly
	return nil
}

func (s *storage) SetSingular(id TypeID) error {
	ti, err := s.mutableType("SetSingular", id)
	if err != nil {
		return err
	}
	if n := ti.col.len(); n > 1 {
		return s.warn("SetSingular", SingularComponentError{Name: ti.name, Count: n})
	}
	ti.singular = true
	return nil
}

func (s *storage) SetGrowthFactor(id TypeID, f float64) error {
	ti, err := s.mutableType("SetGrowthFactor", id)
	if err != nil {
		return err
	}
	if f <= 1 {
		return s.warn("SetGrowthFactor", GrowthFactorError{Factor: f})
	}
	ti.col.setGrowth(f)
	return nil
}

func (s *storage) SetAddHook(id TypeID, hook Hook) error {
	ti, err := s.mutableType("SetAddHook", id)
	if err != nil {
		return err
	}
	ti.onAdd = hook
	return nil
}

func (s *storage) SetRemoveHook(id TypeID, hook Hook) error {
	ti, err := s.mutableType("SetRemoveHook", id)
	if err != nil {
		return err
	}
	ti.onRemove = hook
	return nil
}

// mutableType resolves a descriptor whose metadata the caller is about to change
func (s *storage) mutableType(op string, id TypeID) (*typeInfo, error) {
	if s.Restricted() {
		return nil, s.warn(op, s.restriction())
	}
	ti, err := s.lookup(id)
	if err != nil {
		return nil, s.warn(op, err)
	}
	if s.lockedFor(ti) {
		return nil, s.warn(op, ComponentTypeLockedError{Name: ti.name})
	}
	return ti, nil
}
