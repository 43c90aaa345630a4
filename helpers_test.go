package depot

import (
	"testing"

	"github.com/TheBitDrifter/table"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type Position struct {
	X float64
	Y float64
}

type Velocity struct {
	X float64
	Y float64
}

type Health struct {
	Value int
}

type Name struct {
	Value string
}

// fixture is a storage with Position, Velocity and Health registered, in that
// order, logging into an observer. Fatal logs panic instead of exiting.
type fixture struct {
	sto  Storage
	logs *observer.ObservedLogs

	position AccessibleComponent[Position]
	velocity AccessibleComponent[Velocity]
	health   AccessibleComponent[Health]

	posID    TypeID
	velID    TypeID
	healthID TypeID
}

func newObservedStorage(t *testing.T) (Storage, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core, zap.WithFatalHook(zapcore.WriteThenPanic))
	sto := Factory.NewStorageWithOptions(table.Factory.NewSchema(), Options{Logger: logger})
	return sto, logs
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	sto, logs := newObservedStorage(t)
	f := &fixture{
		sto:      sto,
		logs:     logs,
		position: FactoryNewComponent[Position](),
		velocity: FactoryNewComponent[Velocity](),
		health:   FactoryNewComponent[Health](),
	}
	var err error
	if f.posID, err = f.position.Register(sto, "position", 0); err != nil {
		t.Fatalf("register position: %v", err)
	}
	if f.velID, err = f.velocity.Register(sto, "velocity", 0); err != nil {
		t.Fatalf("register velocity: %v", err)
	}
	if f.healthID, err = f.health.Register(sto, "health", 0); err != nil {
		t.Fatalf("register health: %v", err)
	}
	return f
}

// spawn creates n entities carrying Position and Velocity
func (f *fixture) spawn(t *testing.T, n int) []Entity {
	t.Helper()
	entities, err := f.sto.NewEntities(n)
	if err != nil {
		t.Fatalf("NewEntities: %v", err)
	}
	for _, en := range entities {
		if err := f.position.Add(f.sto, en.Handle, Position{}); err != nil {
			t.Fatalf("add position: %v", err)
		}
		if err := f.velocity.Add(f.sto, en.Handle, Velocity{}); err != nil {
			t.Fatalf("add velocity: %v", err)
		}
	}
	return entities
}

func (f *fixture) warnings(msg string) int {
	return f.logs.FilterMessage(msg).Len()
}

// checkConsistency verifies that slot owners and entity records point at
// each other and that the GUID index matches the dense array.
func checkConsistency(t *testing.T, sto Storage) {
	t.Helper()
	s := sto.(*storage)
	reg := s.core.entities

	if len(reg.byGUID) != len(reg.dense) {
		t.Fatalf("GUID index has %d entries, dense array %d", len(reg.byGUID), len(reg.dense))
	}
	for h, rec := range reg.dense {
		if got, ok := reg.byGUID[rec.guid]; !ok || got != Handle(h) {
			t.Errorf("GUID %d resolves to %d, expected %d", rec.guid, got, h)
		}
		for _, ref := range rec.components {
			ti, ok := s.info(ref.id)
			if !ok {
				t.Errorf("entity %d references unknown type %d", h, ref.id)
				continue
			}
			if owner := ti.col.owner(ref.slot); owner != Handle(h) {
				t.Errorf("slot %d of %s is owned by %d, expected %d", ref.slot, ti.name, owner, h)
			}
		}
	}
	for id := range s.typeIDs() {
		ti, _ := s.info(id)
		for i := 0; i < ti.col.len(); i++ {
			owner := ti.col.owner(i)
			if !reg.valid(owner) {
				t.Errorf("slot %d of %s is owned by removed entity %d", i, ti.name, owner)
				continue
			}
			if slot, ok := reg.slotOf(owner, id); !ok || slot != i {
				t.Errorf("entity %d maps %s to slot %d, expected %d", owner, ti.name, slot, i)
			}
		}
	}
}
