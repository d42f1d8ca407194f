package world

import (
	"github.com/l1jgo/asteroids/internal/component"
	"github.com/l1jgo/asteroids/internal/core/ecs"
)

// ShipParams configures the player ship.
type ShipParams struct {
	Acceleration   float64
	TurnRate       float64
	MaxVelocity    float64
	ReloadInterval float64
}

// SpawnShip creates the ship at the arena centre facing up. Only valid
// outside a tick, at session start.
func (s *State) SpawnShip(p ShipParams) ecs.EntityID {
	id := s.ECS.CreateEntity()
	s.Transforms.Set(id, component.Transform{Pos: s.Arena.Center()})
	s.Physicals.Set(id, component.Physical{MaxVelocity: p.MaxVelocity})
	s.Ships.Set(id, component.Ship{
		Acceleration:   p.Acceleration,
		TurnRate:       p.TurnRate,
		ReloadInterval: p.ReloadInterval,
	})
	s.Colliders.Set(id, component.Collider{Tag: component.TagShip})
	s.Sprites.Set(id, component.Sprite{Sheet: component.SheetShip})
	return id
}

// BuildBullet returns a creation callback for Commands.Spawn. The velocity
// is clamped to maxVelocity before it is stored.
func (s *State) BuildBullet(at component.Transform, vel component.Vec2, maxVelocity float64) func(ecs.EntityID) {
	vel = vel.ClampLen(maxVelocity)
	return func(id ecs.EntityID) {
		s.Transforms.Set(id, at)
		s.Physicals.Set(id, component.Physical{Velocity: vel, MaxVelocity: maxVelocity})
		s.Colliders.Set(id, component.Collider{Tag: component.TagBullet})
		s.Sprites.Set(id, component.Sprite{Sheet: component.SheetBullet})
	}
}

// BuildAsteroid returns a creation callback for an asteroid. variant picks
// the sprite frame.
func (s *State) BuildAsteroid(pos component.Vec2, vel component.Vec2, maxVelocity, spin float64, variant int) func(ecs.EntityID) {
	vel = vel.ClampLen(maxVelocity)
	return func(id ecs.EntityID) {
		s.Transforms.Set(id, component.Transform{Pos: pos})
		s.Physicals.Set(id, component.Physical{Velocity: vel, MaxVelocity: maxVelocity, Rotation: spin})
		s.Colliders.Set(id, component.Collider{Tag: component.TagAsteroid})
		s.Sprites.Set(id, component.Sprite{Sheet: component.SheetAsteroid, Frame: variant})
	}
}

// BuildExplosion returns a creation callback for an explosion at frame 0.
func (s *State) BuildExplosion(at component.Transform, frameTime float64) func(ecs.EntityID) {
	return func(id ecs.EntityID) {
		s.Transforms.Set(id, at)
		s.Explosions.Set(id, component.Explosion{TimeToUpdate: frameTime})
		s.Sprites.Set(id, component.Sprite{Sheet: component.SheetExplosion})
	}
}
