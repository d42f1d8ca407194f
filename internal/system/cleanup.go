package system

import (
	"time"

	"github.com/l1jgo/asteroids/internal/core/ecs"
	coresys "github.com/l1jgo/asteroids/internal/core/system"
	"github.com/l1jgo/asteroids/internal/world"
	"go.uber.org/zap"
)

// Commander is implemented by systems that defer entity creation or
// deletion through a command buffer.
type Commander interface {
	Commands() *ecs.Commands
}

// CleanupSystem is the tick barrier. It applies every command buffer in
// registration order, then delivers the events the tick emitted on the bus.
// Phase Cleanup.
type CleanupSystem struct {
	ws      *world.State
	buffers []*ecs.Commands
	log     *zap.Logger

	last ecs.FlushResult
}

func NewCleanupSystem(ws *world.State, log *zap.Logger, buffers ...*ecs.Commands) *CleanupSystem {
	return &CleanupSystem{ws: ws, buffers: buffers, log: log}
}

func (s *CleanupSystem) Name() string         { return "cleanup" }
func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Access() coresys.Access {
	return coresys.Access{
		Writes: []coresys.Resource{world.ResEntities},
	}
}

// Last returns what the most recent barrier applied.
func (s *CleanupSystem) Last() ecs.FlushResult { return s.last }

func (s *CleanupSystem) Update(_ time.Duration) {
	s.last = s.ws.ECS.Flush(s.buffers...)
	for _, id := range s.last.Missing {
		s.log.Warn("delete of missing entity",
			zap.Uint32("index", id.Index()),
			zap.Uint32("generation", id.Generation()))
	}
	s.ws.Bus.SwapBuffers()
	s.ws.Bus.DispatchAll()
}
