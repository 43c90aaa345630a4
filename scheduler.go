package depot

import (
	"errors"

	"github.com/TheBitDrifter/mask"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type system struct {
	name      string
	ids       []TypeID
	bits      []uint32
	exclusive bool
	run       SystemFunc
}

// group is a set of systems whose declared types are pairwise disjoint
type group struct {
	systems   []system
	union     mask.Mask
	exclusive bool
}

type batch struct {
	groups []group
}

// AddBatch creates an empty batch. Creating a batch on a restricted storage is fatal.
func (s *storage) AddBatch() BatchID {
	if s.Restricted() {
		s.fatal("AddBatch", s.restriction())
	}
	id := s.nextBatch
	s.nextBatch++
	s.batches[id] = &batch{}
	return id
}

// AddSystem places fn into the first group of the batch whose declared types
// are disjoint from ids, or into a new group. A system that declares no types
// is exclusive.
func (s *storage) AddSystem(id BatchID, name string, fn SystemFunc, ids ...TypeID) error {
	b, ok := s.batches[id]
	if !ok {
		return s.warn("AddSystem", BatchNotFoundError{ID: id})
	}
	if len(ids) == 0 {
		s.core.log.Debug("system declares no component types, scheduling it exclusively",
			zap.String("system", name))
		b.groups = append(b.groups, group{
			systems:   []system{{name: name, exclusive: true, run: fn}},
			exclusive: true,
		})
		return nil
	}

	sys := system{name: name, ids: ids, run: fn}
	var declared mask.Mask
	for _, tid := range ids {
		ti, err := s.lookup(tid)
		if err != nil {
			return s.warn("AddSystem", err)
		}
		sys.bits = append(sys.bits, ti.bit)
		declared.Mark(ti.bit)
	}

	for i := range b.groups {
		g := &b.groups[i]
		if g.exclusive || g.union.ContainsAny(declared) {
			continue
		}
		g.systems = append(g.systems, sys)
		for _, bit := range sys.bits {
			g.union.Mark(bit)
		}
		return nil
	}
	b.groups = append(b.groups, group{systems: []system{sys}, union: declared})
	return nil
}

// AddExclusiveSystem appends fn in a group of its own that nothing else joins
func (s *storage) AddExclusiveSystem(id BatchID, name string, fn SystemFunc) error {
	return s.AddSystem(id, name, fn)
}

func (s *storage) RemoveBatch(id BatchID) error {
	if _, ok := s.batches[id]; !ok {
		return s.warn("RemoveBatch", BatchNotFoundError{ID: id})
	}
	delete(s.batches, id)
	return nil
}

// BatchGroups lists the system names of every group in execution order
func (s *storage) BatchGroups(id BatchID) ([][]string, error) {
	b, ok := s.batches[id]
	if !ok {
		return nil, s.warn("BatchGroups", BatchNotFoundError{ID: id})
	}
	groups := make([][]string, len(b.groups))
	for i, g := range b.groups {
		names := make([]string, len(g.systems))
		for j, sys := range g.systems {
			names[j] = sys.name
		}
		groups[i] = names
	}
	return groups, nil
}

// RunBatch runs the groups of a batch in order. A lone system runs inline on
// the root; larger groups get one view and one goroutine per system, joined
// before the views are killed and the next group starts.
func (s *storage) RunBatch(id BatchID) error {
	b, ok := s.batches[id]
	if !ok {
		return s.warn("RunBatch", BatchNotFoundError{ID: id})
	}
	if s.Restricted() {
		return s.warn("RunBatch", s.restriction())
	}

	for i, g := range b.groups {
		if len(g.systems) == 1 {
			g.systems[0].run(s)
			continue
		}
		if err := s.runGroup(i, g); err != nil {
			return err
		}
	}
	return nil
}

func (s *storage) runGroup(index int, g group) error {
	sets := make([][]uint32, len(g.systems))
	for i, sys := range g.systems {
		sets[i] = sys.bits
	}
	if !disjoint(sets) {
		return s.warn("RunBatch", SystemConflictError{Group: index})
	}

	views := make([]Storage, len(g.systems))
	for i, sys := range g.systems {
		view, err := s.Split(sys.ids...)
		if err != nil {
			return errors.Join(err, s.KillChildren())
		}
		views[i] = view
	}

	var eg errgroup.Group
	for i, sys := range g.systems {
		view := views[i]
		run := sys.run
		eg.Go(func() error {
			run(view)
			return nil
		})
	}
	err := eg.Wait()
	return errors.Join(err, s.KillChildren())
}
