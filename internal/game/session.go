package game

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/l1jgo/asteroids/internal/config"
	"github.com/l1jgo/asteroids/internal/core/ecs"
	"github.com/l1jgo/asteroids/internal/core/event"
	coresys "github.com/l1jgo/asteroids/internal/core/system"
	"github.com/l1jgo/asteroids/internal/scripting"
	"github.com/l1jgo/asteroids/internal/system"
	"github.com/l1jgo/asteroids/internal/world"
	"go.uber.org/zap"
)

// Session is one play-through: from Start until the host stops it after a
// GameOver. It owns the world state and the system runner, and never changes
// host state itself.
type Session struct {
	cfg      *config.Config
	rnd      world.Rand
	variants int
	lua      *scripting.Engine
	base     *zap.Logger
	log      *zap.Logger // base tagged with the session id

	id      uuid.UUID
	ws      *world.State
	runner  *coresys.Runner
	cleanup *system.CleanupSystem
	over    bool
	ticks   uint64
}

// NewSession prepares a session. variants is the asteroid sprite variant
// count; lua may be nil.
func NewSession(cfg *config.Config, rnd world.Rand, variants int, lua *scripting.Engine, log *zap.Logger) *Session {
	return &Session{
		cfg:      cfg,
		rnd:      rnd,
		variants: variants,
		lua:      lua,
		base:     log,
		log:      log,
	}
}

// Start resets the score, spawns the ship at the arena centre and builds a
// fresh system schedule.
func (s *Session) Start() error {
	s.id = uuid.New()
	s.log = s.base.With(zap.String("session", s.id.String()))
	s.over = false
	s.ticks = 0

	s.ws = world.NewState(world.Arena{
		Width:     s.cfg.Arena.Width,
		Height:    s.cfg.Arena.Height,
		WrapInset: s.cfg.Arena.WrapInset,
	}, s.rnd)
	s.ws.SpawnShip(world.ShipParams{
		Acceleration:   s.cfg.Ship.Acceleration,
		TurnRate:       s.cfg.Ship.TurnRate,
		MaxVelocity:    s.cfg.Ship.MaxVelocity,
		ReloadInterval: s.cfg.Ship.ReloadInterval,
	})

	systems := []coresys.System{
		system.NewShipControlSystem(s.ws, s.cfg.Bullet),
		system.NewPhysicsSystem(s.ws),
		system.NewBoundarySystem(s.ws),
		system.NewSpawnSystem(s.ws, s.cfg.Spawner, s.variants, s.lua, s.log),
		system.NewCollisionSystem(s.ws, s.cfg.Collision.Radius),
		system.NewDeletionSystem(s.ws, s.cfg.Explosion.FrameTime),
		system.NewExplosionSystem(s.ws, s.cfg.Explosion.FrameTime),
	}
	runner := coresys.NewRunner(s.cfg.Game.Workers, s.log)
	var buffers []*ecs.Commands
	for _, sys := range systems {
		runner.Register(sys)
		if c, ok := sys.(system.Commander); ok {
			buffers = append(buffers, c.Commands())
		}
	}
	s.cleanup = system.NewCleanupSystem(s.ws, s.log, buffers...)
	runner.Register(s.cleanup)
	if err := runner.Build(); err != nil {
		return fmt.Errorf("build systems: %w", err)
	}
	s.runner = runner

	event.Subscribe(s.ws.Bus, func(e event.GameOver) {
		if s.over {
			return
		}
		s.over = true
		s.log.Info("ship destroyed",
			zap.Int("score", e.Score),
			zap.Uint64("ticks", s.ticks))
	})

	s.log.Info("session started",
		zap.Int("workers", s.cfg.Game.Workers),
		zap.Any("batches", runner.Batches()))
	return nil
}

// Update runs one tick with the given input snapshot. It does nothing before
// Start or after Stop.
func (s *Session) Update(dt time.Duration, in world.Input) {
	if s.runner == nil {
		return
	}
	s.ws.Input = in
	s.ws.Elapsed += dt.Seconds()
	s.ticks++
	s.runner.Tick(dt)
}

// Stop tears down every entity and the schedule.
func (s *Session) Stop() {
	if s.ws == nil {
		return
	}
	s.log.Info("session stopped",
		zap.Int("score", s.ws.Score.Value),
		zap.Uint64("ticks", s.ticks))
	s.ws.Reset()
	s.runner = nil
	s.cleanup = nil
}

// Over reports whether a GameOver was raised. The host decides what to do.
func (s *Session) Over() bool { return s.over }

// ID identifies the session in logs.
func (s *Session) ID() uuid.UUID { return s.id }

// State exposes the world for rendering and event subscriptions. Only read
// it between ticks.
func (s *Session) State() *world.State { return s.ws }

// Score returns the current score, or zero before Start.
func (s *Session) Score() int {
	if s.ws == nil {
		return 0
	}
	return s.ws.Score.Value
}

// Batches returns the system schedule, for diagnostics.
func (s *Session) Batches() [][]string {
	if s.runner == nil {
		return nil
	}
	return s.runner.Batches()
}

// LastFlush reports what the most recent tick barrier applied.
func (s *Session) LastFlush() ecs.FlushResult {
	if s.cleanup == nil {
		return ecs.FlushResult{}
	}
	return s.cleanup.Last()
}
