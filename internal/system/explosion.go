package system

import (
	"time"

	"github.com/l1jgo/asteroids/internal/component"
	"github.com/l1jgo/asteroids/internal/core/ecs"
	"github.com/l1jgo/asteroids/internal/core/event"
	coresys "github.com/l1jgo/asteroids/internal/core/system"
	"github.com/l1jgo/asteroids/internal/world"
)

// ExplosionSystem steps explosion animations and removes finished ones.
type ExplosionSystem struct {
	ws        *world.State
	cmds      *ecs.Commands
	frameTime float64
}

func NewExplosionSystem(ws *world.State, frameTime float64) *ExplosionSystem {
	return &ExplosionSystem{ws: ws, cmds: ecs.NewCommands(), frameTime: frameTime}
}

func (s *ExplosionSystem) Name() string            { return "explosion" }
func (s *ExplosionSystem) Phase() coresys.Phase    { return coresys.PhaseUpdate }
func (s *ExplosionSystem) Commands() *ecs.Commands { return s.cmds }

func (s *ExplosionSystem) Access() coresys.Access {
	return coresys.Access{
		Writes: []coresys.Resource{world.ResExplosion, world.ResSprite},
	}
}

func (s *ExplosionSystem) Update(dt time.Duration) {
	delta := dt.Seconds()
	ecs.Each2(s.ws.Explosions, s.ws.Sprites, func(id ecs.EntityID, ex *component.Explosion, sp *component.Sprite) {
		if ex.TimeToUpdate > 0 {
			ex.TimeToUpdate -= delta
			return
		}
		if ex.FrameCount >= component.ExplosionFrameLimit {
			s.cmds.Destroy(id)
			event.Emit(s.ws.Bus, event.ExplosionFinished{EntityID: id})
			return
		}
		ex.FrameCount++
		sp.Frame++
		ex.TimeToUpdate = s.frameTime
	})
}
