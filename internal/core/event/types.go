package event

import "github.com/l1jgo/asteroids/internal/core/ecs"

// CollisionEvent names an entity the collision pass marked as destroyed.
type CollisionEvent struct {
	Entity ecs.EntityID
}

// Host-facing events, delivered through Bus after the tick barrier.

// GameOver asks the hosting state machine to leave the play state.
type GameOver struct {
	Score int
}

type BulletFired struct {
	X, Y float64
}

type AsteroidDestroyed struct {
	X, Y  float64
	Score int
}

type ExplosionFinished struct {
	EntityID ecs.EntityID
}
