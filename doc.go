/*
Package depot provides a component storage engine for entity-component
simulations, with a scheduler that runs non-conflicting systems in parallel.

Every component type lives in its own densely packed slot table. Entities are
dense records (addressed by a volatile Handle) that point at their slots, and
each entity also carries a stable GUID.

Core Concepts:

  - Entity: a dense record with a stable GUID and a volatile Handle.
  - Component: a typed token created by FactoryNewComponent and registered per storage.
  - View: a storage produced by Split with exclusive access to a set of types.
  - Batch: an ordered list of groups; systems in a group run concurrently on their own views.
  - Query: a way to find entities with specific component combinations.

Basic Usage:

	schema := table.Factory.NewSchema()
	sto := depot.Factory.NewStorage(schema)

	position := depot.FactoryNewComponent[Position]()
	velocity := depot.FactoryNewComponent[Velocity]()
	position.Register(sto, "position", 0)
	velocity.Register(sto, "velocity", 0)

	en, _ := sto.AddEntity(0)
	position.Add(sto, en.Handle, Position{})
	velocity.Add(sto, en.Handle, Velocity{X: 1})

	posID, _ := position.IDFor(sto)
	velID, _ := velocity.IDFor(sto)

	b := sto.AddBatch()
	sto.AddSystem(b, "move", func(view depot.Storage) {
		depot.ForEach2(view, position, velocity, 4, func(h depot.Handle, p *Position, v *Velocity) {
			p.X += v.X
		})
	}, posID, velID)
	sto.RunBatch(b)

Structural changes (creating or removing entities, attaching or detaching
components) are rejected while a storage is restricted. Use the Enqueue
methods to defer them until the root storage is unrestricted again.
*/
package depot
