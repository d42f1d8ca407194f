package system

import (
	"time"

	"github.com/l1jgo/asteroids/internal/component"
	"github.com/l1jgo/asteroids/internal/config"
	"github.com/l1jgo/asteroids/internal/core/ecs"
	coresys "github.com/l1jgo/asteroids/internal/core/system"
	"github.com/l1jgo/asteroids/internal/scripting"
	"github.com/l1jgo/asteroids/internal/world"
	"go.uber.org/zap"
)

// maxSpawnAttempts bounds rejection sampling. A clearance the arena cannot
// satisfy would otherwise spin forever.
const maxSpawnAttempts = 100_000

// SpawnSystem periodically queues an asteroid at a safe distance from the
// ship. The interval is average_spawn_time plus a uniform roll, or whatever
// the Lua spawn_interval hook returns when one is loaded.
type SpawnSystem struct {
	ws       *world.State
	cmds     *ecs.Commands
	cfg      config.SpawnerConfig
	variants int
	lua      *scripting.Engine // nil = built-in interval
	log      *zap.Logger

	timeToSpawn float64
}

// NewSpawnSystem creates the spawner. variants is the number of asteroid
// sprite variants; lua may be nil.
func NewSpawnSystem(ws *world.State, cfg config.SpawnerConfig, variants int, lua *scripting.Engine, log *zap.Logger) *SpawnSystem {
	return &SpawnSystem{
		ws:          ws,
		cmds:        ecs.NewCommands(),
		cfg:         cfg,
		variants:    max(1, variants),
		lua:         lua,
		log:         log,
		timeToSpawn: cfg.InitialDelay,
	}
}

func (s *SpawnSystem) Name() string            { return "spawn" }
func (s *SpawnSystem) Phase() coresys.Phase    { return coresys.PhaseUpdate }
func (s *SpawnSystem) Commands() *ecs.Commands { return s.cmds }

func (s *SpawnSystem) Access() coresys.Access {
	return coresys.Access{
		Reads:  []coresys.Resource{world.ResTransform, world.ResShip, world.ResCollider, world.ResScore},
		Writes: []coresys.Resource{world.ResRand},
	}
}

// TimeToSpawn returns the current countdown in seconds.
func (s *SpawnSystem) TimeToSpawn() float64 { return s.timeToSpawn }

func (s *SpawnSystem) Update(dt time.Duration) {
	s.timeToSpawn -= dt.Seconds()
	if s.timeToSpawn > 0 {
		return
	}
	// The countdown only resets once a ship was found, so a session
	// without one spawns as soon as it has one.
	ecs.Each2(s.ws.Ships, s.ws.Transforms, func(_ ecs.EntityID, _ *component.Ship, tr *component.Transform) {
		s.spawnNear(tr.Pos)
		s.timeToSpawn = s.nextInterval()
	})
}

func (s *SpawnSystem) spawnNear(ship component.Vec2) {
	rnd := s.ws.Rand
	arena := s.ws.Arena
	clearance := s.cfg.DistanceToShip

	var pos component.Vec2
	attempts := 0
	for {
		attempts++
		pos = component.Vec2{X: rnd.Float64() * arena.Width, Y: rnd.Float64() * arena.Height}
		if pos.Sub(ship).Len() > clearance {
			break
		}
		if attempts >= maxSpawnAttempts {
			// The batch is dropped; Update still consumes the interval.
			s.log.Warn("asteroid spawn skipped, no clear point found",
				zap.Int("attempts", attempts),
				zap.Float64("clearance", clearance))
			return
		}
	}
	if attempts > 1 {
		s.log.Debug("asteroid spawn resampled",
			zap.Int("attempts", attempts),
			zap.Float64("x", pos.X),
			zap.Float64("y", pos.Y))
	}

	mv := s.cfg.MaxVelocity
	vel := component.Vec2{X: uniform(rnd, -mv, mv), Y: uniform(rnd, -mv, mv)}
	spin := uniform(rnd, -s.cfg.MaxRotation, s.cfg.MaxRotation)
	variant := int(rnd.Uint32() % uint32(s.variants))

	s.cmds.Spawn(s.ws.BuildAsteroid(pos, vel, s.cfg.AsteroidMaxSpeed, spin, variant))
}

func (s *SpawnSystem) nextInterval() float64 {
	roll := s.ws.Rand.Float64()
	if s.lua != nil {
		if v, ok := s.lua.SpawnInterval(scripting.SpawnContext{
			Score:     s.ws.Score.Value,
			Asteroids: s.ws.CountTag(component.TagAsteroid),
			Average:   s.cfg.AverageSpawnTime,
			Roll:      roll,
			Elapsed:   s.ws.Elapsed,
		}); ok {
			return v
		}
	}
	return s.cfg.AverageSpawnTime + roll
}

func uniform(rnd world.Rand, lo, hi float64) float64 {
	return lo + rnd.Float64()*(hi-lo)
}
