package depot

import (
	"iter"
	"unsafe"

	"github.com/TheBitDrifter/mask"
)

// Handle is the volatile dense index of an entity. It changes when another
// entity is removed; hold a GUID for anything longer-lived than one operation.
type Handle int

const InvalidHandle Handle = -1

// GUID is the stable identifier of an entity. Zero asks AddEntity to generate one.
type GUID uint64

// TypeID identifies a registered component type. Ids follow registration
// order and are never reused.
type TypeID uint32

// BatchID identifies a system batch.
type BatchID uint64

// MaxComponentTypes bounds the catalog. A type's mask bit is its TypeID, and
// ids are never reused, so at most this many types can ever be registered
// with one storage.
const MaxComponentTypes = mask.MaxBits

// Entity pairs the two identities of an entity at the time it was returned.
type Entity struct {
	Handle Handle
	GUID   GUID
}

// SystemFunc is the body of a system. It receives either the root storage
// (when it runs alone in its group) or a split view.
type SystemFunc func(sto Storage)

type Storage interface {
	// Entities
	AddEntity(guid GUID) (Entity, error)
	NewEntities(n int) ([]Entity, error)
	RemoveEntity(h Handle) error
	RemoveEntityByGUID(g GUID) error
	Resolve(g GUID) (Handle, error)
	GUIDOf(h Handle) (GUID, error)
	Entity(h Handle) (Entity, error)
	EntityCount() int
	ComponentsOf(h Handle) []TypeID
	Clear() error

	// Component types
	Register(c Component, name string, capacity int) (TypeID, error)
	Unregister(id TypeID) error
	TypeOf(c Component) (TypeID, bool)
	TypeIDsOf(components ...Component) ([]TypeID, error)
	TypeIDByName(name string) (TypeID, bool)
	TypeName(id TypeID) (string, bool)
	ComponentTypeIDs() []TypeID
	RowIndexFor(c Component) (uint32, bool)
	ComponentCount(id TypeID) int
	ComponentCapacity(id TypeID) int
	SetReadOnly(id TypeID) error
	SetReadWrite(id TypeID) error
	SetSingular(id TypeID) error
	SetGrowthFactor(id TypeID, f float64) error
	SetAddHook(id TypeID, hook Hook) error
	SetRemoveHook(id TypeID, hook Hook) error

	// Type-erased component access
	AddComponent(h Handle, id TypeID, value any) error
	AddComponentBytes(h Handle, id TypeID, raw []byte) error
	RemoveComponent(h Handle, id TypeID) error
	MustRemoveComponent(h Handle, id TypeID)
	Component(h Handle, id TypeID) any
	ComponentPointer(h Handle, id TypeID) unsafe.Pointer
	ReadComponent(h Handle, id TypeID) any

	// Isolation
	Split(ids ...TypeID) (Storage, error)
	KillChildren() error
	IsView() bool
	Restricted() bool
	Locked() bool
	Lock()
	Unlock()

	// Deferred structural operations
	EnqueueAddEntity(guid GUID) (GUID, error)
	EnqueueRemoveEntity(g GUID) error
	EnqueueAddComponent(g GUID, id TypeID, value any) error
	EnqueueRemoveComponent(g GUID, id TypeID) error

	// Systems
	AddBatch() BatchID
	AddSystem(batch BatchID, name string, fn SystemFunc, ids ...TypeID) error
	AddExclusiveSystem(batch BatchID, name string, fn SystemFunc) error
	RemoveBatch(batch BatchID) error
	BatchGroups(batch BatchID) ([][]string, error)
	RunBatch(batch BatchID) error
}

type Query interface {
	QueryNode
	And(items ...interface{}) QueryNode
	Or(items ...interface{}) QueryNode
	Not(items ...interface{}) QueryNode
}

type QueryNode interface {
	Evaluate(signature mask.Mask, storage Storage) bool
}

type iCursor interface {
	Entities() iter.Seq2[int, Handle]
	Next() bool
}

type Cache[T any] interface {
	GetIndex(string) (int, bool)
	GetItem(int) *T
	GetItem32(uint32) *T
	Register(string, T) (int, error)
	Forget(string) bool
	Len() int
}

// Warning: internal Dependencies abound!
type Cursor struct {
	// The query to filter entities
	query QueryNode

	// The storage to iterate over
	storage *storage

	// Current iteration state
	handle      Handle
	entityIndex int

	// Initialization state
	initialized bool
	matched     []Handle
}

type SimpleCache[T any] struct {
	items       []T
	itemIndices map[string]int
	maxCapacity int
}
