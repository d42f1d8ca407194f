package system

import (
	"time"

	"github.com/l1jgo/asteroids/internal/component"
	"github.com/l1jgo/asteroids/internal/config"
	"github.com/l1jgo/asteroids/internal/core/ecs"
	"github.com/l1jgo/asteroids/internal/core/event"
	coresys "github.com/l1jgo/asteroids/internal/core/system"
	"github.com/l1jgo/asteroids/internal/world"
)

// ShipControlSystem turns the input snapshot into ship thrust, turning and
// bullets. Bullets are queued and appear after the barrier.
type ShipControlSystem struct {
	ws     *world.State
	cmds   *ecs.Commands
	bullet config.BulletConfig
}

func NewShipControlSystem(ws *world.State, bullet config.BulletConfig) *ShipControlSystem {
	return &ShipControlSystem{ws: ws, cmds: ecs.NewCommands(), bullet: bullet}
}

func (s *ShipControlSystem) Name() string            { return "ship_control" }
func (s *ShipControlSystem) Phase() coresys.Phase    { return coresys.PhaseUpdate }
func (s *ShipControlSystem) Commands() *ecs.Commands { return s.cmds }

func (s *ShipControlSystem) Access() coresys.Access {
	return coresys.Access{
		Reads:  []coresys.Resource{world.ResInput, world.ResTransform},
		Writes: []coresys.Resource{world.ResPhysical, world.ResShip},
	}
}

func (s *ShipControlSystem) Update(dt time.Duration) {
	delta := dt.Seconds()
	in := s.ws.Input
	ecs.Each3(s.ws.Ships, s.ws.Transforms, s.ws.Physicals,
		func(_ ecs.EntityID, ship *component.Ship, tr *component.Transform, ph *component.Physical) {
			forward := component.Forward(tr.Rotation)
			ph.Velocity = ph.Velocity.Add(forward.Scale(delta * in.Accelerate * ship.Acceleration)).ClampLen(ph.MaxVelocity)
			// Overwritten each tick; no carry-over from the last one.
			ph.Rotation = in.Rotate * delta * ship.TurnRate

			if ship.ReloadTimer <= 0 && in.Shoot {
				vel := ph.Velocity.Add(forward.Scale(s.bullet.MuzzleSpeed))
				s.cmds.Spawn(s.ws.BuildBullet(*tr, vel, s.bullet.MaxVelocity))
				ship.ReloadTimer = ship.ReloadInterval
				event.Emit(s.ws.Bus, event.BulletFired{X: tr.Pos.X, Y: tr.Pos.Y})
				return
			}
			ship.ReloadTimer = max(0, ship.ReloadTimer-delta)
		})
}
