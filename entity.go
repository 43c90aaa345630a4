package depot

import (
	"encoding/binary"

	"github.com/TheBitDrifter/mask"
	"github.com/google/uuid"
)

type componentRef struct {
	id   TypeID
	slot int
}

type entityRecord struct {
	guid GUID
	// signature marks the bit (TypeID) of every attached type
	signature mask.Mask
	// components in attachment order
	components []componentRef
}

// entityRegistry is the dense entity array plus the GUID index. Both always
// hold exactly one entry per live entity.
type entityRegistry struct {
	dense  []entityRecord
	byGUID map[GUID]Handle
}

func newEntityRegistry() *entityRegistry {
	return &entityRegistry{
		byGUID: make(map[GUID]Handle),
	}
}

func (r *entityRegistry) len() int {
	return len(r.dense)
}

func (r *entityRegistry) valid(h Handle) bool {
	return h >= 0 && int(h) < len(r.dense)
}

func (r *entityRegistry) lookup(g GUID) (Handle, bool) {
	h, ok := r.byGUID[g]
	return h, ok
}

func (r *entityRegistry) slotOf(h Handle, id TypeID) (int, bool) {
	for _, ref := range r.dense[h].components {
		if ref.id == id {
			return ref.slot, true
		}
	}
	return -1, false
}

func (r *entityRegistry) setSlot(h Handle, id TypeID, slot int) {
	refs := r.dense[h].components
	for i := range refs {
		if refs[i].id == id {
			refs[i].slot = slot
			return
		}
	}
}

func (r *entityRegistry) attach(h Handle, id TypeID, bit uint32, slot int) {
	rec := &r.dense[h]
	rec.components = append(rec.components, componentRef{id: id, slot: slot})
	rec.signature.Mark(bit)
}

func (r *entityRegistry) detach(h Handle, id TypeID, bit uint32) {
	rec := &r.dense[h]
	for i, ref := range rec.components {
		if ref.id == id {
			rec.components = append(rec.components[:i], rec.components[i+1:]...)
			break
		}
	}
	rec.signature.Unmark(bit)
}

func (r *entityRegistry) push(g GUID) Handle {
	r.dense = append(r.dense, entityRecord{guid: g})
	h := Handle(len(r.dense) - 1)
	r.byGUID[g] = h
	return h
}

// swapRemove moves the last entity into h and truncates. It reports the handle
// the moved entity used to have so the caller can repair slot owners.
func (r *entityRegistry) swapRemove(h Handle) (Handle, bool) {
	last := Handle(len(r.dense) - 1)
	guid := r.dense[h].guid
	moved := false
	if h != last {
		r.dense[h] = r.dense[last]
		r.byGUID[r.dense[h].guid] = h
		moved = true
	}
	delete(r.byGUID, guid)
	r.dense[last] = entityRecord{}
	r.dense = r.dense[:last]
	return last, moved
}

// generateGUID draws a non-zero GUID not currently in use. reserved covers
// GUIDs promised to queued operations.
func (r *entityRegistry) generateGUID(reserved func(GUID) bool) GUID {
	for {
		u := uuid.New()
		g := GUID(binary.LittleEndian.Uint64(u[:8]))
		if g == 0 {
			continue
		}
		if _, taken := r.byGUID[g]; taken {
			continue
		}
		if reserved != nil && reserved(g) {
			continue
		}
		return g
	}
}

// AddEntity creates an entity. A zero guid is replaced by a generated one.
func (s *storage) AddEntity(guid GUID) (Entity, error) {
	if s.Restricted() {
		return Entity{Handle: InvalidHandle}, s.warn("AddEntity", s.restriction())
	}
	if guid == 0 {
		guid = s.core.entities.generateGUID(s.core.queue.reserved)
	} else if _, exists := s.core.entities.lookup(guid); exists {
		return Entity{Handle: InvalidHandle}, s.warn("AddEntity", GUIDExistsError{GUID: guid})
	}
	h := s.core.entities.push(guid)
	return Entity{Handle: h, GUID: guid}, nil
}

func (s *storage) NewEntities(n int) ([]Entity, error) {
	if s.Restricted() {
		return nil, s.warn("NewEntities", s.restriction())
	}
	entities := make([]Entity, 0, n)
	for i := 0; i < n; i++ {
		en, err := s.AddEntity(0)
		if err != nil {
			return entities, err
		}
		entities = append(entities, en)
	}
	return entities, nil
}

// RemoveEntity detaches every component of h, newest first, then moves the
// last entity into h.
func (s *storage) RemoveEntity(h Handle) error {
	if s.Restricted() {
		return s.warn("RemoveEntity", s.restriction())
	}
	reg := s.core.entities
	if !reg.valid(h) {
		return s.warn("RemoveEntity", EntityNotFoundError{Handle: h})
	}

	attached := make([]TypeID, len(reg.dense[h].components))
	for i, ref := range reg.dense[h].components {
		attached[i] = ref.id
	}
	for i := len(attached) - 1; i >= 0; i-- {
		ti, ok := s.info(attached[i])
		if !ok {
			continue
		}
		if slot, ok := reg.slotOf(h, ti.id); ok {
			s.detach(h, ti, slot)
		}
	}

	if _, moved := reg.swapRemove(h); moved {
		for _, ref := range reg.dense[h].components {
			if ti, ok := s.info(ref.id); ok {
				ti.col.setOwner(ref.slot, h)
			}
		}
	}
	return nil
}

func (s *storage) RemoveEntityByGUID(g GUID) error {
	h, ok := s.core.entities.lookup(g)
	if !ok {
		return s.warn("RemoveEntityByGUID", GUIDNotFoundError{GUID: g})
	}
	return s.RemoveEntity(h)
}

// Resolve maps a GUID to its current handle, or InvalidHandle
func (s *storage) Resolve(g GUID) (Handle, error) {
	h, ok := s.core.entities.lookup(g)
	if !ok {
		return InvalidHandle, s.warn("Resolve", GUIDNotFoundError{GUID: g})
	}
	return h, nil
}

func (s *storage) GUIDOf(h Handle) (GUID, error) {
	if !s.core.entities.valid(h) {
		return 0, s.warn("GUIDOf", EntityNotFoundError{Handle: h})
	}
	return s.core.entities.dense[h].guid, nil
}

func (s *storage) Entity(h Handle) (Entity, error) {
	g, err := s.GUIDOf(h)
	if err != nil {
		return Entity{Handle: InvalidHandle}, err
	}
	return Entity{Handle: h, GUID: g}, nil
}

func (s *storage) EntityCount() int {
	return s.core.entities.len()
}

// ComponentsOf lists the types attached to h in attachment order
func (s *storage) ComponentsOf(h Handle) []TypeID {
	if !s.core.entities.valid(h) {
		return nil
	}
	refs := s.core.entities.dense[h].components
	ids := make([]TypeID, 0, len(refs))
	for _, ref := range refs {
		ids = append(ids, ref.id)
	}
	return ids
}

// Clear removes every entity, last first
func (s *storage) Clear() error {
	if s.Restricted() {
		return s.warn("Clear", s.restriction())
	}
	for h := Handle(s.core.entities.len() - 1); h >= 0; h-- {
		if err := s.RemoveEntity(h); err != nil {
			return err
		}
	}
	return nil
}
