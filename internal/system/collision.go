package system

import (
	"time"

	"github.com/l1jgo/asteroids/internal/component"
	"github.com/l1jgo/asteroids/internal/core/ecs"
	"github.com/l1jgo/asteroids/internal/core/event"
	coresys "github.com/l1jgo/asteroids/internal/core/system"
	"github.com/l1jgo/asteroids/internal/world"
)

// CollisionSystem finds overlapping colliders through a grid rebuilt every
// tick. Asteroid/bullet pairs become destroy events on the collision
// channel; an asteroid touching the ship raises one GameOver on the bus.
//
// Every asteroid a bullet overlaps is destroyed, not just the first found.
// An entity is reported at most once per tick.
type CollisionSystem struct {
	ws     *world.State
	radius float64
	grid   *world.Grid

	destroyed map[ecs.EntityID]struct{}
	events    []event.CollisionEvent
}

func NewCollisionSystem(ws *world.State, radius float64) *CollisionSystem {
	return &CollisionSystem{
		ws:        ws,
		radius:    radius,
		grid:      world.NewGrid(2 * radius),
		destroyed: make(map[ecs.EntityID]struct{}),
	}
}

func (s *CollisionSystem) Name() string         { return "collision" }
func (s *CollisionSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *CollisionSystem) Access() coresys.Access {
	return coresys.Access{
		Reads:  []coresys.Resource{world.ResTransform, world.ResCollider, world.ResScore},
		Writes: []coresys.Resource{world.ResCollisions},
	}
}

func (s *CollisionSystem) Update(_ time.Duration) {
	s.grid.Reset()
	ecs.Each2(s.ws.Transforms, s.ws.Colliders, func(id ecs.EntityID, tr *component.Transform, c *component.Collider) {
		s.grid.Insert(world.Proxy{ID: id, Pos: tr.Pos, Tag: c.Tag})
	})

	clear(s.destroyed)
	s.events = s.events[:0]
	shipHit := false

	s.grid.Pairs(2*s.radius, func(a, b world.Proxy) {
		switch pairKind(a.Tag, b.Tag) {
		case pairBulletAsteroid:
			s.destroy(a.ID)
			s.destroy(b.ID)
		case pairShipAsteroid:
			shipHit = true
		}
	})

	if len(s.events) > 0 {
		s.ws.Collisions.Write(s.events...)
	}
	if shipHit {
		event.Emit(s.ws.Bus, event.GameOver{Score: s.ws.Score.Value})
	}
}

func (s *CollisionSystem) destroy(id ecs.EntityID) {
	if _, dup := s.destroyed[id]; dup {
		return
	}
	s.destroyed[id] = struct{}{}
	s.events = append(s.events, event.CollisionEvent{Entity: id})
}

type pairClass int

const (
	pairIgnored pairClass = iota
	pairBulletAsteroid
	pairShipAsteroid
)

// pairKind classifies a tag pair in either order. Same-tag and ship/bullet
// pairs do not interact.
func pairKind(a, b component.ColliderTag) pairClass {
	if a > b {
		a, b = b, a
	}
	switch {
	case a == component.TagBullet && b == component.TagAsteroid:
		return pairBulletAsteroid
	case a == component.TagShip && b == component.TagAsteroid:
		return pairShipAsteroid
	default:
		return pairIgnored
	}
}
