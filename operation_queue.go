package depot

import (
	"sync"

	"go.uber.org/zap"
)

type operation struct {
	typ   operationType
	guid  GUID
	id    TypeID
	value any
}

type operationType int

const (
	opCreate operationType = iota
	opDestroy
	opAddComponent
	opRemoveComponent
)

// opQueue collects structural changes requested while the root is
// restricted. The root and every view share one queue, and views run on
// their own goroutines, so every access goes through mu.
type opQueue struct {
	mu             sync.Mutex
	createOps      []operation
	componentOps   []operation
	destroyOps     []operation
	pendingCreate  map[GUID]struct{}
	pendingDestroy map[GUID]struct{}
}

func newOpQueue() *opQueue {
	return &opQueue{
		pendingCreate:  make(map[GUID]struct{}),
		pendingDestroy: make(map[GUID]struct{}),
	}
}

// reserved reports whether g has been promised to a queued create
func (q *opQueue) reserved(g GUID) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.pendingCreate[g]
	return ok
}

func (q *opQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.createOps) + len(q.componentOps) + len(q.destroyOps)
}

func (q *opQueue) enqueueOp(op operation) {
	switch op.typ {
	case opCreate:
		q.createOps = append(q.createOps, op)
		q.pendingCreate[op.guid] = struct{}{}
	case opDestroy:
		if _, queued := q.pendingDestroy[op.guid]; queued {
			return
		}
		q.destroyOps = append(q.destroyOps, op)
		q.pendingDestroy[op.guid] = struct{}{}
	case opAddComponent, opRemoveComponent:
		q.componentOps = append(q.componentOps, op)
	}
}

// drain hands back the queued operations and empties the queue
func (q *opQueue) drain() (creates, components, destroys []operation, doomed map[GUID]struct{}) {
	q.mu.Lock()
	defer q.mu.Unlock()
	creates, components, destroys = q.createOps, q.componentOps, q.destroyOps
	doomed = q.pendingDestroy
	q.createOps, q.componentOps, q.destroyOps = nil, nil, nil
	q.pendingCreate = make(map[GUID]struct{})
	q.pendingDestroy = make(map[GUID]struct{})
	return creates, components, destroys, doomed
}

// processOperationQueue applies everything queued while the root was
// restricted: creates, then component changes, then destroys. Component
// changes aimed at an entity that is about to be destroyed are dropped.
// A failing operation is logged by the call that rejects it and the rest
// still run.
func (s *storage) processOperationQueue() {
	if s.core.queue.len() == 0 {
		return
	}
	creates, components, destroys, doomed := s.core.queue.drain()

	failed := 0
	for _, op := range creates {
		if _, err := s.AddEntity(op.guid); err != nil {
			failed++
		}
	}
	for _, op := range components {
		if _, skip := doomed[op.guid]; skip {
			continue
		}
		h, err := s.Resolve(op.guid)
		if err == nil {
			switch op.typ {
			case opAddComponent:
				err = s.AddComponent(h, op.id, op.value)
			case opRemoveComponent:
				err = s.RemoveComponent(h, op.id)
			}
		}
		if err != nil {
			failed++
		}
	}
	for _, op := range destroys {
		if err := s.RemoveEntityByGUID(op.guid); err != nil {
			failed++
		}
	}

	s.core.log.Debug("applied queued operations",
		zap.Int("creates", len(creates)),
		zap.Int("components", len(components)),
		zap.Int("destroys", len(destroys)),
		zap.Int("failed", failed))
}

// EnqueueAddEntity creates an entity now, or reserves its GUID and creates it
// once the root is unrestricted. A zero guid is replaced by a generated one.
func (s *storage) EnqueueAddEntity(guid GUID) (GUID, error) {
	if !s.Restricted() {
		en, err := s.AddEntity(guid)
		return en.GUID, err
	}
	q := s.core.queue
	q.mu.Lock()
	defer q.mu.Unlock()
	if guid == 0 {
		guid = s.core.entities.generateGUID(func(g GUID) bool {
			_, taken := q.pendingCreate[g]
			return taken
		})
	} else {
		_, live := s.core.entities.lookup(guid)
		_, queued := q.pendingCreate[guid]
		if live || queued {
			return 0, s.warn("EnqueueAddEntity", GUIDExistsError{GUID: guid})
		}
	}
	q.enqueueOp(operation{typ: opCreate, guid: guid})
	return guid, nil
}

// EnqueueRemoveEntity removes the entity now, or once the root is unrestricted.
// Queuing the same GUID twice removes it once.
func (s *storage) EnqueueRemoveEntity(g GUID) error {
	if !s.Restricted() {
		return s.RemoveEntityByGUID(g)
	}
	q := s.core.queue
	q.mu.Lock()
	defer q.mu.Unlock()
	q.enqueueOp(operation{typ: opDestroy, guid: g})
	return nil
}

// EnqueueAddComponent attaches value (T or *T) now, or once the root is
// unrestricted. A *T is copied when queued.
func (s *storage) EnqueueAddComponent(g GUID, id TypeID, value any) error {
	if !s.Restricted() {
		h, err := s.Resolve(g)
		if err != nil {
			return err
		}
		return s.AddComponent(h, id, value)
	}
	if int(id) < s.core.types.Len() {
		if ti := *s.core.types.GetItem32(uint32(id)); ti != nil {
			value = ti.col.detachValue(value)
		}
	}
	q := s.core.queue
	q.mu.Lock()
	defer q.mu.Unlock()
	q.enqueueOp(operation{typ: opAddComponent, guid: g, id: id, value: value})
	return nil
}

func (s *storage) EnqueueRemoveComponent(g GUID, id TypeID) error {
	if !s.Restricted() {
		h, err := s.Resolve(g)
		if err != nil {
			return err
		}
		return s.RemoveComponent(h, id)
	}
	q := s.core.queue
	q.mu.Lock()
	defer q.mu.Unlock()
	q.enqueueOp(operation{typ: opRemoveComponent, guid: g, id: id})
	return nil
}
