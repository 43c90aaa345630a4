package depot

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitGrantsExclusiveAccess(t *testing.T) {
	f := newFixture(t)
	en := f.spawn(t, 1)[0]

	view, err := f.sto.Split(f.posID)
	require.NoError(t, err)
	require.True(t, view.IsView())
	require.True(t, view.Restricted())
	require.True(t, f.sto.Restricted())

	require.NotPanics(t, func() { f.position.Get(view, en.Handle).X = 3 })

	// locked for the root, invisible to the view
	require.Panics(t, func() { f.position.Get(f.sto, en.Handle) })
	require.Panics(t, func() { f.velocity.Get(view, en.Handle) })

	_, ok := view.TypeName(f.velID)
	require.False(t, ok)
	require.Equal(t, []TypeID{f.posID}, view.ComponentTypeIDs())

	require.NoError(t, f.sto.KillChildren())
	require.False(t, f.sto.Restricted())
	require.Equal(t, 3.0, f.position.Read(f.sto, en.Handle).X)
}

func TestSplitSeesReadOnlyTypes(t *testing.T) {
	f := newFixture(t)
	en := f.spawn(t, 1)[0]
	require.NoError(t, f.health.Add(f.sto, en.Handle, Health{Value: 7}))
	require.NoError(t, f.sto.SetReadOnly(f.healthID))

	view, err := f.sto.Split(f.posID)
	require.NoError(t, err)

	require.Equal(t, 7, f.health.Read(view, en.Handle).Value)
	require.Panics(t, func() { f.health.Get(view, en.Handle) })

	// read-only types can be shared by several views
	other, err := f.sto.Split(f.velID)
	require.NoError(t, err)
	require.Equal(t, 7, f.health.Read(other, en.Handle).Value)
	require.NoError(t, f.sto.KillChildren())
}

func TestSplitLockedType(t *testing.T) {
	f := newFixture(t)

	view, err := f.sto.Split(f.posID, f.velID)
	require.NoError(t, err)

	got, err := f.sto.Split(f.healthID, f.velID)
	require.ErrorAs(t, err, &ComponentTypeLockedError{})
	require.Same(t, f.sto, got)

	// a failed split locks nothing
	third, err := f.sto.Split(f.healthID)
	require.NoError(t, err)
	require.NotSame(t, view, third)
	require.NoError(t, f.sto.KillChildren())
}

func TestSplitUnknownType(t *testing.T) {
	f := newFixture(t)
	got, err := f.sto.Split(f.posID, 42)
	require.ErrorAs(t, err, &ComponentTypeNotFoundError{})
	require.Same(t, f.sto, got)
	require.False(t, f.sto.Restricted())
}

func TestViewIsRestricted(t *testing.T) {
	f := newFixture(t)
	en := f.spawn(t, 1)[0]
	view, err := f.sto.Split(f.posID, f.healthID)
	require.NoError(t, err)

	_, err = view.AddEntity(0)
	require.ErrorAs(t, err, &RestrictedStorageError{})

	err = f.health.Add(view, en.Handle, Health{Value: 1})
	require.ErrorAs(t, err, &RestrictedStorageError{})
	require.Equal(t, 2, f.warnings("storage is restricted"))

	_, err = view.Split(f.posID)
	require.ErrorAs(t, err, &ViewError{})
	require.ErrorAs(t, view.KillChildren(), &ViewError{})

	// the root is restricted too while the view lives
	_, err = f.sto.AddEntity(0)
	require.ErrorAs(t, err, &RestrictedStorageError{})
	require.NoError(t, f.sto.KillChildren())
	_, err = f.sto.AddEntity(0)
	require.NoError(t, err)
}

func TestViewForEachInvisibleType(t *testing.T) {
	f := newFixture(t)
	f.spawn(t, 3)
	view, err := f.sto.Split(f.posID)
	require.NoError(t, err)

	err = ForEach(view, f.velocity, 1, func(Handle, *Velocity) {})
	require.ErrorAs(t, err, &ComponentTypeNotFoundError{})
	require.Equal(t, 1, f.warnings(ComponentTypeNotFoundError{ID: f.velID}.Error()))
	require.NoError(t, f.sto.KillChildren())
}

func TestDisjoint(t *testing.T) {
	tests := []struct {
		name string
		sets [][]uint32
		want bool
	}{
		{"Empty", nil, true},
		{"Single set", [][]uint32{{1, 2, 3}}, true},
		{"Disjoint", [][]uint32{{0, 1}, {2}, {3, 40}}, true},
		{"Overlap", [][]uint32{{0, 1}, {2}, {1}}, false},
		{"Overlap in high bits", [][]uint32{{50}, {50, 4}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := disjoint(tt.sets); got != tt.want {
				t.Errorf("disjoint(%v) = %v, expected %v", tt.sets, got, tt.want)
			}
		})
	}
}
