package depot

import (
	"reflect"

	"github.com/TheBitDrifter/mask"
	"github.com/TheBitDrifter/table"
	"go.uber.org/zap"
)

var _ Storage = &storage{}

// core is everything a root storage shares with its views: the canonical type
// catalog, the entity registry and the deferred operation queue.
type core struct {
	schema          table.Schema
	types           Cache[*typeInfo]
	byType          map[reflect.Type]TypeID
	entities        *entityRegistry
	queue           *opQueue
	log             *zap.Logger
	growthFactor    float64
	initialCapacity int
}

// storage is either the root of a store or a split view of it. Views share
// the core with their parent and are limited to the types in their masks.
type storage struct {
	core *core

	view     bool
	parent   *storage
	children []*storage
	visible  mask.Mask
	writable mask.Mask

	iterating int
	held      int

	batches   map[BatchID]*batch
	nextBatch BatchID
}

func newStorage(schema table.Schema, opts Options) *storage {
	opts = opts.withDefaults()
	c := &core{
		schema:          schema,
		types:           FactoryNewCache[*typeInfo](int(MaxComponentTypes)),
		byType:          make(map[reflect.Type]TypeID),
		entities:        newEntityRegistry(),
		queue:           newOpQueue(),
		log:             opts.Logger,
		growthFactor:    opts.GrowthFactor,
		initialCapacity: opts.InitialCapacity,
	}
	return &storage{
		core:      c,
		batches:   make(map[BatchID]*batch),
		nextBatch: 1,
	}
}

func (s *storage) IsView() bool {
	return s.view
}

// Restricted reports whether entity-structural mutation is currently rejected:
// always for views, and for the root while views are outstanding, a parallel
// iteration is in flight, or the storage is locked.
func (s *storage) Restricted() bool {
	return s.view || len(s.children) > 0 || s.iterating > 0 || s.held > 0
}

func (s *storage) Locked() bool {
	return s.Restricted()
}

// Lock restricts the storage until the matching Unlock
func (s *storage) Lock() {
	s.held++
}

// Unlock releases one Lock and applies queued operations once the storage is
// no longer restricted
func (s *storage) Unlock() {
	if s.held == 0 {
		return
	}
	s.held--
	s.settle()
}

// settle flushes the deferred queue when the root has become unrestricted
func (s *storage) settle() {
	if s.view || s.Restricted() {
		return
	}
	s.processOperationQueue()
}

// info returns the descriptor for id if this storage may see it
func (s *storage) info(id TypeID) (*typeInfo, bool) {
	if int(id) >= s.core.types.Len() {
		return nil, false
	}
	ti := *s.core.types.GetItem32(uint32(id))
	if ti == nil {
		return nil, false
	}
	if s.view && !hasBit(s.visible, ti.bit) {
		return nil, false
	}
	return ti, true
}

func (s *storage) lookup(id TypeID) (*typeInfo, error) {
	ti, ok := s.info(id)
	if !ok {
		return nil, ComponentTypeNotFoundError{ID: id}
	}
	return ti, nil
}

// lockedFor reports whether ti is held by a storage other than s
func (s *storage) lockedFor(ti *typeInfo) bool {
	return ti.holder != nil && ti.holder != s
}

func (s *storage) idFor(op string, c Component) (TypeID, error) {
	id, ok := s.TypeOf(c)
	if !ok {
		return 0, s.warn(op, ComponentTypeUnregisteredError{Type: c.reflectType().String()})
	}
	return id, nil
}

func hasBit(m mask.Mask, bit uint32) bool {
	var single mask.Mask
	single.Mark(bit)
	return m.ContainsAll(single)
}

// restriction explains why Restricted reports true. A storage that is only
// held by Lock reports LockedStorageError.
func (s *storage) restriction() error {
	if !s.view && len(s.children) == 0 && s.iterating == 0 && s.held > 0 {
		return LockedStorageError{}
	}
	return RestrictedStorageError{}
}
