package depot

import (
	"sync/atomic"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestForEachThreads tests that every slot is visited exactly once for any
// thread count, including counts above the number of slots
func TestForEachThreads(t *testing.T) {
	for threads := 0; threads <= 12; threads++ {
		f := newFixture(t)
		entities := f.spawn(t, 10)

		var visits atomic.Int32
		err := ForEach(f.sto, f.position, threads, func(_ Handle, p *Position) {
			p.X++
			visits.Add(1)
		})
		require.NoError(t, err)
		require.Equal(t, int32(10), visits.Load(), "threads=%d", threads)
		require.False(t, f.sto.Restricted())

		for _, en := range entities {
			require.Equal(t, 1.0, f.position.Read(f.sto, en.Handle).X, "threads=%d", threads)
		}
	}
}

func TestForEachSerialOrder(t *testing.T) {
	f := newFixture(t)
	f.spawn(t, 5)

	var seen []Handle
	require.NoError(t, ForEach(f.sto, f.position, 1, func(h Handle, _ *Position) {
		seen = append(seen, h)
	}))
	require.Equal(t, []Handle{0, 1, 2, 3, 4}, seen)
}

func TestForEachRestrictsWhileParallel(t *testing.T) {
	f := newFixture(t)
	f.spawn(t, 8)

	var rejected atomic.Int32
	require.NoError(t, ForEach(f.sto, f.position, 4, func(Handle, *Position) {
		if !f.sto.Restricted() {
			return
		}
		rejected.Add(1)
	}))
	require.Equal(t, int32(8), rejected.Load())
	require.False(t, f.sto.Restricted())
}

func TestForEach2SkipsMissingSecondary(t *testing.T) {
	f := newFixture(t)
	entities, err := f.sto.NewEntities(6)
	require.NoError(t, err)
	for i, en := range entities {
		require.NoError(t, f.position.Add(f.sto, en.Handle, Position{}))
		if i%2 == 0 {
			require.NoError(t, f.velocity.Add(f.sto, en.Handle, Velocity{X: float64(i)}))
		}
	}

	for _, threads := range []int{1, 3} {
		var visits atomic.Int32
		require.NoError(t, ForEach2(f.sto, f.position, f.velocity, threads, func(_ Handle, p *Position, v *Velocity) {
			p.X = v.X
			visits.Add(1)
		}))
		require.Equal(t, int32(3), visits.Load())
	}
	for i, en := range entities {
		want := 0.0
		if i%2 == 0 {
			want = float64(i)
		}
		require.Equal(t, want, f.position.Read(f.sto, en.Handle).X)
	}
}

func TestForEach3(t *testing.T) {
	f := newFixture(t)
	entities := f.spawn(t, 4)
	require.NoError(t, f.health.Add(f.sto, entities[1].Handle, Health{Value: 10}))
	require.NoError(t, f.health.Add(f.sto, entities[2].Handle, Health{Value: 20}))

	var total atomic.Int64
	require.NoError(t, ForEach3(f.sto, f.health, f.position, f.velocity, 2, func(_ Handle, hp *Health, p *Position, v *Velocity) {
		p.Y = float64(hp.Value)
		v.Y = -float64(hp.Value)
		total.Add(int64(hp.Value))
	}))
	require.Equal(t, int64(30), total.Load())
	require.Equal(t, 20.0, f.position.Read(f.sto, entities[2].Handle).Y)
	require.Equal(t, -10.0, f.velocity.Read(f.sto, entities[1].Handle).Y)
	require.Zero(t, f.position.Read(f.sto, entities[0].Handle).Y)
}

func TestForEachIDs(t *testing.T) {
	f := newFixture(t)
	entities := f.spawn(t, 5)

	require.NoError(t, ForEachIDs(f.sto, []TypeID{f.velID, f.posID}, 3, func(h Handle, ptrs []unsafe.Pointer) {
		v := (*Velocity)(ptrs[0])
		p := (*Position)(ptrs[1])
		v.X = float64(h)
		p.X = v.X * 2
	}))
	for _, en := range entities {
		require.Equal(t, float64(en.Handle)*2, f.position.Read(f.sto, en.Handle).X)
	}

	err := ForEachIDs(f.sto, []TypeID{f.posID, 99}, 1, func(Handle, []unsafe.Pointer) {
		t.Error("visited an entity despite an unknown type")
	})
	require.ErrorAs(t, err, &ComponentTypeNotFoundError{})
}

func TestForEachLockedType(t *testing.T) {
	f := newFixture(t)
	f.spawn(t, 2)
	_, err := f.sto.Split(f.posID)
	require.NoError(t, err)

	err = ForEach(f.sto, f.position, 1, func(Handle, *Position) {})
	require.ErrorAs(t, err, &ComponentTypeLockedError{})
	require.NoError(t, f.sto.KillChildren())
}

func TestForEachDefersStructuralChanges(t *testing.T) {
	f := newFixture(t)
	f.spawn(t, 10)

	require.NoError(t, ForEach(f.sto, f.position, 4, func(h Handle, _ *Position) {
		if h%2 == 0 {
			return
		}
		g, err := f.sto.GUIDOf(h)
		assert.NoError(t, err)
		assert.NoError(t, f.sto.EnqueueRemoveEntity(g))
	}))
	require.Equal(t, 5, f.sto.EntityCount())
	checkConsistency(t, f.sto)
}
