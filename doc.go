/*
Package ecsgrid provides an Entity-Component-System (ECS) runtime built
for simulations whose per-frame work decomposes into many short,
independent functions operating over homogeneous slices of data.

Components are plain Go data types registered with a World. Entities
are assembled from bundles of components. Systems are ordinary
functions whose parameters are typed access handles (ReadView,
WriteView, UniqueRead, UniqueWrite); the World dispatches them across
an injected worker pool and hands back a completion Token.

Unlike archetype-based ECS designs, ecsgrid stores each component type
in its own paged column addressed directly by entity id ("column of
columns"), not grouped by archetype. This trades some iteration
locality for cheap concurrent access at cell granularity while the
backing storage grows: reads take only shared (read) locks on the
page vector and the cell.

Core Concepts:

  - Entity: a dense, recyclable integer id.
  - Component: a registered data type, assigned a permanent bit
    position at registration time.
  - Column: paged storage of one component type, indexed by entity id.
  - Bitmask: per-entity set of owned component bits.
  - View: a typed, scoped access handle constructed for one system call.
  - System: a user function whose parameters are access handles.

Basic Usage:

	pool := workerpool.New(workerpool.Options{})
	pool.Start()
	world := ecsgrid.Factory.NewWorld(pool)

	ecsgrid.Register[Position](world)
	ecsgrid.Register[Velocity](world)

	ecsgrid.AddEntity2(world, Position{X: 1}, Velocity{X: 2})

	token, _ := ecsgrid.RunSystem2(world, func(pos ecsgrid.WriteView[Position], vel ecsgrid.ReadView[Velocity]) {
		for e, p := range pos.All() {
			v, ok := vel.Get(e)
			if !ok {
				continue
			}
			g := p.Write()
			r := v.Read()
			g.Value().X += r.Value().X
			r.Release()
			g.Release()
		}
	})
	ecsgrid.Wait(token)

ecsgrid is the underlying ECS for simulation drivers but also works as
a standalone library.
*/
package ecsgrid
