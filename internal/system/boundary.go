package system

import (
	"time"

	"github.com/l1jgo/asteroids/internal/component"
	"github.com/l1jgo/asteroids/internal/core/ecs"
	coresys "github.com/l1jgo/asteroids/internal/core/system"
	"github.com/l1jgo/asteroids/internal/world"
)

// BoundarySystem wraps moving entities around the arena edges and culls
// bullets that leave it.
type BoundarySystem struct {
	ws   *world.State
	cmds *ecs.Commands
}

func NewBoundarySystem(ws *world.State) *BoundarySystem {
	return &BoundarySystem{ws: ws, cmds: ecs.NewCommands()}
}

func (s *BoundarySystem) Name() string            { return "boundary" }
func (s *BoundarySystem) Phase() coresys.Phase    { return coresys.PhaseUpdate }
func (s *BoundarySystem) Commands() *ecs.Commands { return s.cmds }

func (s *BoundarySystem) Access() coresys.Access {
	return coresys.Access{
		Reads:  []coresys.Resource{world.ResPhysical, world.ResCollider},
		Writes: []coresys.Resource{world.ResTransform},
	}
}

func (s *BoundarySystem) Update(_ time.Duration) {
	arena := s.ws.Arena
	ecs.Each2(s.ws.Transforms, s.ws.Physicals, func(id ecs.EntityID, tr *component.Transform, _ *component.Physical) {
		if c, ok := s.ws.Colliders.Get(id); ok && c.Tag == component.TagBullet {
			if !arena.Contains(tr.Pos) {
				s.cmds.Destroy(id)
			}
			return
		}
		tr.Pos.X = wrap(tr.Pos.X, arena.Width, arena.WrapInset)
		tr.Pos.Y = wrap(tr.Pos.Y, arena.Height, arena.WrapInset)
	})
}

// wrap moves v to the opposite side, inset from the edge, once it leaves
// [0, size]. In-range values are returned unchanged.
func wrap(v, size, inset float64) float64 {
	switch {
	case v < 0:
		return size - inset
	case v > size:
		return inset
	default:
		return v
	}
}
