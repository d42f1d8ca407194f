package ecs

// Commands is a deferred command buffer owned by a single system. Creations
// and deletions queued here become visible only when World.Flush applies the
// buffer at the tick barrier.
type Commands struct {
	spawns   []func(EntityID)
	destroys []EntityID
}

func NewCommands() *Commands {
	return &Commands{
		spawns:   make([]func(EntityID), 0, 16),
		destroys: make([]EntityID, 0, 16),
	}
}

// Spawn queues an entity creation. build receives the new id at the barrier
// and attaches the entity's components.
func (c *Commands) Spawn(build func(EntityID)) {
	c.spawns = append(c.spawns, build)
}

// Destroy queues id for removal at the barrier.
func (c *Commands) Destroy(id EntityID) {
	c.destroys = append(c.destroys, id)
}

// Pending returns the number of queued creations and deletions.
func (c *Commands) Pending() (spawns, destroys int) {
	return len(c.spawns), len(c.destroys)
}

func (c *Commands) reset() {
	clear(c.spawns)
	c.spawns = c.spawns[:0]
	c.destroys = c.destroys[:0]
}

// FlushResult reports what a barrier applied.
type FlushResult struct {
	Created []EntityID
	Deleted []EntityID
	// Missing lists deletions whose target was already gone.
	Missing []EntityID
}

// World is the top-level ECS container. It owns the entity pool and the
// component registry. Structural changes made during a tick go through
// Commands buffers and are applied by Flush.
type World struct {
	pool     *EntityPool
	registry *Registry
}

func NewWorld() *World {
	return &World{
		pool:     NewEntityPool(),
		registry: NewRegistry(),
	}
}

func (w *World) Pool() *EntityPool   { return w.pool }
func (w *World) Registry() *Registry { return w.registry }

// CreateEntity allocates an id immediately. Only valid outside a tick.
func (w *World) CreateEntity() EntityID {
	return w.pool.Create()
}

func (w *World) Alive(id EntityID) bool {
	return w.pool.Alive(id)
}

// Len returns the number of live entities.
func (w *World) Len() int { return w.pool.Len() }

// Flush applies the given buffers in order: every deletion from every buffer
// first, then every creation. Buffers are emptied afterwards.
func (w *World) Flush(buffers ...*Commands) FlushResult {
	var res FlushResult
	for _, b := range buffers {
		for _, id := range b.destroys {
			if !w.pool.Destroy(id) {
				res.Missing = append(res.Missing, id)
				continue
			}
			w.registry.RemoveAll(id)
			res.Deleted = append(res.Deleted, id)
		}
	}
	for _, b := range buffers {
		for _, build := range b.spawns {
			id := w.pool.Create()
			build(id)
			res.Created = append(res.Created, id)
		}
		b.reset()
	}
	return res
}

// Clear destroys every entity and empties every store.
func (w *World) Clear() {
	w.pool.DestroyAll()
	w.registry.ClearAll()
}
