package depot

import (
	"testing"
)

// TestQueryOperations tests And/Or/Not queries over entity signatures
func TestQueryOperations(t *testing.T) {
	f := newFixture(t)
	name := FactoryNewComponent[Name]()
	if _, err := name.Register(f.sto, "name", 0); err != nil {
		t.Fatalf("register name: %v", err)
	}

	// 3 with position, 2 with position+velocity, 1 with velocity+health, 1 bare
	layout := [][]Component{
		{f.position}, {f.position}, {f.position},
		{f.position, f.velocity}, {f.position, f.velocity},
		{f.velocity, f.health},
		{},
	}
	for _, comps := range layout {
		en, err := f.sto.AddEntity(0)
		if err != nil {
			t.Fatalf("AddEntity: %v", err)
		}
		for _, c := range comps {
			id, _ := f.sto.TypeOf(c)
			var value any
			switch c.(type) {
			case AccessibleComponent[Position]:
				value = Position{}
			case AccessibleComponent[Velocity]:
				value = Velocity{}
			case AccessibleComponent[Health]:
				value = Health{}
			}
			if err := f.sto.AddComponent(en.Handle, id, value); err != nil {
				t.Fatalf("AddComponent: %v", err)
			}
		}
	}

	tests := []struct {
		name  string
		build func(q Query) QueryNode
		want  int
	}{
		{
			name:  "And single",
			build: func(q Query) QueryNode { return q.And(f.position) },
			want:  5,
		},
		{
			name:  "And pair",
			build: func(q Query) QueryNode { return q.And(f.position, f.velocity) },
			want:  2,
		},
		{
			name:  "Or",
			build: func(q Query) QueryNode { return q.Or(f.position, f.health) },
			want:  6,
		},
		{
			name:  "Not",
			build: func(q Query) QueryNode { return q.Not(f.velocity) },
			want:  4,
		},
		{
			name:  "And with nested Not",
			build: func(q Query) QueryNode { return q.And(f.position, q.Not(f.velocity)) },
			want:  3,
		},
		{
			name:  "Or of nested Ands",
			build: func(q Query) QueryNode { return q.Or(q.And(f.velocity, f.health), q.And(f.position, f.velocity)) },
			want:  3,
		},
		{
			name:  "Registered but unused",
			build: func(q Query) QueryNode { return q.And(name) },
			want:  0,
		},
		{
			name:  "Unregistered never matches",
			build: func(q Query) QueryNode { return q.And(f.position, FactoryNewComponent[struct{ Tag int }]()) },
			want:  0,
		},
		{
			name:  "Not of nested node only",
			build: func(q Query) QueryNode { return q.Not(q.And(f.velocity)) },
			want:  4,
		},
		{
			name:  "Not of unregistered matches all",
			build: func(q Query) QueryNode { return q.Not(FactoryNewComponent[struct{ Tag int }]()) },
			want:  7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Factory.NewQuery()
			node := tt.build(q)
			cursor := Factory.NewCursor(node, f.sto)
			if got := cursor.TotalMatched(); got != tt.want {
				t.Errorf("TotalMatched() = %d, expected %d", got, tt.want)
			}
			count := 0
			for cursor.Next() {
				count++
			}
			if count != tt.want {
				t.Errorf("Next() visited %d entities, expected %d", count, tt.want)
			}
			if f.sto.Restricted() {
				t.Error("storage still restricted after the walk")
			}
		})
	}
}

func TestEmptyQuery(t *testing.T) {
	f := newFixture(t)
	f.spawn(t, 2)
	if Factory.NewQuery().Evaluate(f.sto.(*storage).core.entities.dense[0].signature, f.sto) {
		t.Error("a query without nodes matched")
	}
}

// TestCursorLocksStorage tests that the storage is locked while a cursor walks it
func TestCursorLocksStorage(t *testing.T) {
	f := newFixture(t)
	f.spawn(t, 3)

	cursor := Factory.NewCursor(Factory.NewQuery().And(f.position), f.sto)
	for cursor.Next() {
		if _, err := f.sto.AddEntity(0); err == nil {
			t.Fatal("AddEntity succeeded during a cursor walk")
		}
		if g, err := f.sto.GUIDOf(cursor.Handle()); err == nil {
			f.sto.EnqueueRemoveEntity(g)
		}
	}
	if f.sto.Locked() {
		t.Fatal("storage still locked after the walk")
	}
	if f.sto.EntityCount() != 0 {
		t.Errorf("%d entities left, expected the queued removals to apply", f.sto.EntityCount())
	}
}

func TestCursorEntities(t *testing.T) {
	f := newFixture(t)
	entities := f.spawn(t, 4)
	f.position.Remove(f.sto, entities[2].Handle)

	cursor := Factory.NewCursor(Factory.NewQuery().And(f.position), f.sto)

	var handles []Handle
	for i, h := range cursor.Entities() {
		if i != len(handles) {
			t.Errorf("index %d, expected %d", i, len(handles))
		}
		handles = append(handles, h)
	}
	want := []Handle{0, 1, 3}
	if len(handles) != len(want) {
		t.Fatalf("visited %v, expected %v", handles, want)
	}
	for i := range want {
		if handles[i] != want[i] {
			t.Errorf("visited %v, expected %v", handles, want)
		}
	}

	// breaking early releases the lock
	for range cursor.Entities() {
		break
	}
	if f.sto.Locked() {
		t.Error("storage still locked after breaking out of Entities")
	}

	if got := cursor.Handles(); len(got) != 3 {
		t.Errorf("Handles() = %v, expected 3 handles", got)
	}
	if cursor.RemainingInStorage() != 0 || cursor.Handle() != InvalidHandle {
		t.Error("cursor was not reset after Handles")
	}
}
