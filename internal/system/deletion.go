package system

import (
	"strconv"
	"time"

	"github.com/l1jgo/asteroids/internal/component"
	"github.com/l1jgo/asteroids/internal/core/ecs"
	"github.com/l1jgo/asteroids/internal/core/event"
	coresys "github.com/l1jgo/asteroids/internal/core/system"
	"github.com/l1jgo/asteroids/internal/world"
)

// DeletionSystem consumes collision events. Every event deletes its entity;
// bullets also leave an explosion behind and score a point.
type DeletionSystem struct {
	ws        *world.State
	cmds      *ecs.Commands
	reader    event.ReaderID
	frameTime float64
}

// NewDeletionSystem registers its reader on the collision channel, so it
// must be created before the first tick.
func NewDeletionSystem(ws *world.State, frameTime float64) *DeletionSystem {
	return &DeletionSystem{
		ws:        ws,
		cmds:      ecs.NewCommands(),
		reader:    ws.Collisions.RegisterReader(),
		frameTime: frameTime,
	}
}

func (s *DeletionSystem) Name() string            { return "deletion" }
func (s *DeletionSystem) Phase() coresys.Phase    { return coresys.PhaseUpdate }
func (s *DeletionSystem) Commands() *ecs.Commands { return s.cmds }
func (s *DeletionSystem) After() []string         { return []string{"collision"} }

func (s *DeletionSystem) Access() coresys.Access {
	return coresys.Access{
		Reads:  []coresys.Resource{world.ResTransform, world.ResCollider},
		Writes: []coresys.Resource{world.ResScore, world.ResCollisions},
	}
}

func (s *DeletionSystem) Update(_ time.Duration) {
	for _, ev := range s.ws.Collisions.Read(s.reader) {
		if c, ok := s.ws.Colliders.Get(ev.Entity); ok && c.Tag == component.TagBullet {
			if tr, ok := s.ws.Transforms.Get(ev.Entity); ok {
				s.cmds.Spawn(s.ws.BuildExplosion(*tr, s.frameTime))
				s.ws.Score.Value++
				s.ws.Score.Text = strconv.Itoa(s.ws.Score.Value)
				event.Emit(s.ws.Bus, event.AsteroidDestroyed{X: tr.Pos.X, Y: tr.Pos.Y, Score: s.ws.Score.Value})
			}
		}
		// Deleting something another stage already removed is reported by
		// the barrier, not here.
		s.cmds.Destroy(ev.Entity)
	}
}
