package world

import (
	"github.com/l1jgo/asteroids/internal/component"
	"github.com/l1jgo/asteroids/internal/core/ecs"
	"github.com/l1jgo/asteroids/internal/core/event"
	coresys "github.com/l1jgo/asteroids/internal/core/system"
)

// Resource names used in system access declarations.
const (
	ResTransform  coresys.Resource = "transform"
	ResPhysical   coresys.Resource = "physical"
	ResShip       coresys.Resource = "ship"
	ResCollider   coresys.Resource = "collider"
	ResSprite     coresys.Resource = "sprite"
	ResExplosion  coresys.Resource = "explosion"
	ResInput      coresys.Resource = "input"
	ResRand       coresys.Resource = "rand"
	ResScore      coresys.Resource = "score"
	ResCollisions coresys.Resource = "collision_events"
	ResEntities   coresys.Resource = "entities" // pool liveness, written only by the barrier
)

// Arena is the playfield rectangle [0,Width]×[0,Height].
type Arena struct {
	Width     float64
	Height    float64
	WrapInset float64
}

// Contains reports whether p lies inside the arena, edges included.
func (a Arena) Contains(p component.Vec2) bool {
	return p.X >= 0 && p.Y >= 0 && p.X <= a.Width && p.Y <= a.Height
}

// Center returns the middle of the arena.
func (a Arena) Center() component.Vec2 {
	return component.Vec2{X: a.Width * 0.5, Y: a.Height * 0.5}
}

// Input is the per-tick snapshot of the player's controls. Absent axes read
// as zero.
type Input struct {
	Accelerate float64 // [-1,1]
	Rotate     float64 // [-1,1]
	Shoot      bool
}

// Score is the session score and the text shown for it.
type Score struct {
	Value int
	Text  string
}

// State owns the entity store, every component table and the shared
// resources systems read and write. Systems only touch the tables their
// access declaration names.
type State struct {
	ECS *ecs.World

	Transforms *ecs.Store[component.Transform]
	Physicals  *ecs.Store[component.Physical]
	Ships      *ecs.Store[component.Ship]
	Colliders  *ecs.Store[component.Collider]
	Sprites    *ecs.Store[component.Sprite]
	Explosions *ecs.Store[component.Explosion]

	Arena   Arena
	Input   Input
	Rand    Rand
	Score   Score
	Elapsed float64 // seconds simulated this session

	// Collisions carries destroy events from the collision system to the
	// deletion system within a tick.
	Collisions *event.Channel[event.CollisionEvent]
	// Bus carries host-facing events; dispatched at the tick barrier.
	Bus *event.Bus
}

func NewState(arena Arena, rnd Rand) *State {
	w := ecs.NewWorld()
	reg := w.Registry()
	return &State{
		ECS:        w,
		Transforms: ecs.Track[component.Transform](reg),
		Physicals:  ecs.Track[component.Physical](reg),
		Ships:      ecs.Track[component.Ship](reg),
		Colliders:  ecs.Track[component.Collider](reg),
		Sprites:    ecs.Track[component.Sprite](reg),
		Explosions: ecs.Track[component.Explosion](reg),
		Arena:      arena,
		Rand:       rnd,
		Score:      Score{Text: "0"},
		Collisions: event.NewChannel[event.CollisionEvent](),
		Bus:        event.NewBus(),
	}
}

// Reset tears down every entity and zeroes the session resources.
func (s *State) Reset() {
	s.ECS.Clear()
	s.Input = Input{}
	s.Score = Score{Text: "0"}
	s.Elapsed = 0
}

// ShipID returns the live ship, if any.
func (s *State) ShipID() (ecs.EntityID, bool) {
	var found ecs.EntityID
	ok := false
	s.Ships.Each(func(id ecs.EntityID, _ *component.Ship) {
		if !ok {
			found, ok = id, true
		}
	})
	return found, ok
}

// CountTag returns how many colliders carry tag.
func (s *State) CountTag(tag component.ColliderTag) int {
	n := 0
	s.Colliders.Each(func(_ ecs.EntityID, c *component.Collider) {
		if c.Tag == tag {
			n++
		}
	})
	return n
}
