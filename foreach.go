package depot

import (
	"unsafe"

	"github.com/TheBitDrifter/mask"
	"golang.org/x/sync/errgroup"
)

// iteration is a validated request to walk the slots of infos[0], visiting
// the owners that carry every type in required.
type iteration struct {
	infos    []*typeInfo
	required mask.Mask
}

func (s *storage) prepare(op string, ids []TypeID) (iteration, error) {
	it := iteration{infos: make([]*typeInfo, len(ids))}
	for i, id := range ids {
		ti, err := s.lookup(id)
		if err != nil {
			return it, s.warn(op, err)
		}
		if ti.readOnly {
			return it, s.warn(op, ComponentTypeReadOnlyError{Name: ti.name})
		}
		if s.lockedFor(ti) {
			return it, s.warn(op, ComponentTypeLockedError{Name: ti.name})
		}
		it.infos[i] = ti
		it.required.Mark(ti.bit)
	}
	return it, nil
}

// run drives visit over the primary slot range. With one thread (or at most
// one slot) it walks in slot order on the caller's goroutine. Otherwise the
// range is cut into contiguous chunks, the storage is restricted and each
// chunk gets its own goroutine; chunks are joined before run returns.
func (s *storage) run(it iteration, threads int, visit func(h Handle, slot int)) error {
	if len(it.infos) == 0 {
		return nil
	}
	primary := it.infos[0].col
	reg := s.core.entities
	filtered := len(it.infos) > 1
	accept := func(h Handle) bool {
		return !filtered || reg.dense[h].signature.ContainsAll(it.required)
	}

	n := primary.len()
	if threads > n {
		threads = n
	}
	if threads <= 1 {
		for j := 0; j < primary.len(); j++ {
			if h := primary.owner(j); accept(h) {
				visit(h, j)
			}
		}
		return nil
	}

	s.iterating++
	chunk, remainder := n/threads, n%threads
	var eg errgroup.Group
	start := 0
	for i := 0; i < threads; i++ {
		end := start + chunk
		if i < remainder {
			end++
		}
		lo, hi := start, end
		eg.Go(func() error {
			for j := lo; j < hi; j++ {
				if h := primary.owner(j); accept(h) {
					visit(h, j)
				}
			}
			return nil
		})
		start = end
	}
	err := eg.Wait()
	s.iterating--
	s.settle()
	return err
}

// slotIn returns the slot of id on h. The caller has already checked that h
// carries id.
func slotIn(reg *entityRegistry, h Handle, id TypeID) int {
	slot, _ := reg.slotOf(h, id)
	return slot
}

// ForEach calls fn for every A in slot order, or across threads goroutines
func ForEach[A any](sto Storage, a AccessibleComponent[A], threads int, fn func(Handle, *A)) error {
	s := sto.(*storage)
	ids, err := s.TypeIDsOf(a)
	if err != nil {
		return err
	}
	it, err := s.prepare("ForEach", ids)
	if err != nil {
		return err
	}
	colA := it.infos[0].col.(*slotTable[A])
	return s.run(it, threads, func(h Handle, slot int) {
		fn(h, colA.at(slot))
	})
}

// ForEach2 calls fn for every entity carrying both A and B, driven by A's slots
func ForEach2[A, B any](sto Storage, a AccessibleComponent[A], b AccessibleComponent[B], threads int, fn func(Handle, *A, *B)) error {
	s := sto.(*storage)
	ids, err := s.TypeIDsOf(a, b)
	if err != nil {
		return err
	}
	it, err := s.prepare("ForEach2", ids)
	if err != nil {
		return err
	}
	reg := s.core.entities
	colA := it.infos[0].col.(*slotTable[A])
	colB := it.infos[1].col.(*slotTable[B])
	idB := ids[1]
	return s.run(it, threads, func(h Handle, slot int) {
		fn(h, colA.at(slot), colB.at(slotIn(reg, h, idB)))
	})
}

// ForEach3 calls fn for every entity carrying A, B and C, driven by A's slots
func ForEach3[A, B, C any](sto Storage, a AccessibleComponent[A], b AccessibleComponent[B], c AccessibleComponent[C], threads int, fn func(Handle, *A, *B, *C)) error {
	s := sto.(*storage)
	ids, err := s.TypeIDsOf(a, b, c)
	if err != nil {
		return err
	}
	it, err := s.prepare("ForEach3", ids)
	if err != nil {
		return err
	}
	reg := s.core.entities
	colA := it.infos[0].col.(*slotTable[A])
	colB := it.infos[1].col.(*slotTable[B])
	colC := it.infos[2].col.(*slotTable[C])
	idB, idC := ids[1], ids[2]
	return s.run(it, threads, func(h Handle, slot int) {
		fn(h, colA.at(slot), colB.at(slotIn(reg, h, idB)), colC.at(slotIn(reg, h, idC)))
	})
}

// ForEachIDs is the type-erased form: fn receives one payload pointer per id,
// in the order the ids were given.
func ForEachIDs(sto Storage, ids []TypeID, threads int, fn func(Handle, []unsafe.Pointer)) error {
	s := sto.(*storage)
	it, err := s.prepare("ForEachIDs", ids)
	if err != nil {
		return err
	}
	reg := s.core.entities
	return s.run(it, threads, func(h Handle, slot int) {
		ptrs := make([]unsafe.Pointer, len(it.infos))
		ptrs[0] = it.infos[0].col.pointer(slot)
		for i := 1; i < len(it.infos); i++ {
			ptrs[i] = it.infos[i].col.pointer(slotIn(reg, h, it.infos[i].id))
		}
		fn(h, ptrs)
	})
}
