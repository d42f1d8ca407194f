package system

import (
	"time"

	"github.com/l1jgo/asteroids/internal/component"
	"github.com/l1jgo/asteroids/internal/core/ecs"
	coresys "github.com/l1jgo/asteroids/internal/core/system"
	"github.com/l1jgo/asteroids/internal/world"
)

// PhysicsSystem integrates translation and orientation from Physical.
type PhysicsSystem struct {
	ws *world.State
}

func NewPhysicsSystem(ws *world.State) *PhysicsSystem {
	return &PhysicsSystem{ws: ws}
}

func (s *PhysicsSystem) Name() string         { return "physics" }
func (s *PhysicsSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *PhysicsSystem) Access() coresys.Access {
	return coresys.Access{
		Reads:  []coresys.Resource{world.ResPhysical},
		Writes: []coresys.Resource{world.ResTransform},
	}
}

func (s *PhysicsSystem) Update(dt time.Duration) {
	delta := dt.Seconds()
	ecs.Each2(s.ws.Transforms, s.ws.Physicals, func(_ ecs.EntityID, tr *component.Transform, ph *component.Physical) {
		tr.Pos = tr.Pos.Add(ph.Velocity.Scale(delta))
		tr.Rotation += ph.Rotation * delta
	})
}
