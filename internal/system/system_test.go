package system

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/l1jgo/asteroids/internal/component"
	"github.com/l1jgo/asteroids/internal/config"
	"github.com/l1jgo/asteroids/internal/core/ecs"
	"github.com/l1jgo/asteroids/internal/core/event"
	"github.com/l1jgo/asteroids/internal/scripting"
	"github.com/l1jgo/asteroids/internal/world"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const tick = 100 * time.Millisecond

// seqRand replays a fixed sequence of floats.
type seqRand struct {
	floats []float64
	i      int
	u      uint32
}

func (r *seqRand) Float64() float64 {
	v := r.floats[r.i%len(r.floats)]
	r.i++
	return v
}

func (r *seqRand) Uint32() uint32 {
	r.u++
	return r.u
}

func newState(t *testing.T, rnd world.Rand) (*world.State, *config.Config) {
	t.Helper()
	cfg := config.Default()
	if rnd == nil {
		rnd = world.NewSeededRand(1, 2)
	}
	ws := world.NewState(world.Arena{
		Width:     cfg.Arena.Width,
		Height:    cfg.Arena.Height,
		WrapInset: cfg.Arena.WrapInset,
	}, rnd)
	return ws, cfg
}

func spawnShip(ws *world.State, cfg *config.Config) ecs.EntityID {
	return ws.SpawnShip(world.ShipParams{
		Acceleration:   cfg.Ship.Acceleration,
		TurnRate:       cfg.Ship.TurnRate,
		MaxVelocity:    cfg.Ship.MaxVelocity,
		ReloadInterval: cfg.Ship.ReloadInterval,
	})
}

// place creates a collidable entity directly, outside any tick.
func place(ws *world.State, tag component.ColliderTag, x, y float64) ecs.EntityID {
	id := ws.ECS.CreateEntity()
	ws.Transforms.Set(id, component.Transform{Pos: component.Vec2{X: x, Y: y}})
	ws.Physicals.Set(id, component.Physical{MaxVelocity: 100})
	ws.Colliders.Set(id, component.Collider{Tag: tag})
	return id
}

func TestShipControlThenPhysics(t *testing.T) {
	ws, cfg := newState(t, nil)
	ship := spawnShip(ws, cfg)
	control := NewShipControlSystem(ws, cfg.Bullet)
	physics := NewPhysicsSystem(ws)

	ws.Input = world.Input{Accelerate: 1}
	control.Update(tick)

	ph, _ := ws.Physicals.Get(ship)
	require.InDelta(t, 0, ph.Velocity.X, 1e-9)
	require.InDelta(t, 8, ph.Velocity.Y, 1e-9)

	physics.Update(tick)
	tr, _ := ws.Transforms.Get(ship)
	require.InDelta(t, 150, tr.Pos.X, 1e-9)
	require.InDelta(t, 150.8, tr.Pos.Y, 1e-9)
}

func TestShipRotationIsOverwritten(t *testing.T) {
	ws, cfg := newState(t, nil)
	ship := spawnShip(ws, cfg)
	control := NewShipControlSystem(ws, cfg.Bullet)

	ws.Input = world.Input{Rotate: 1}
	control.Update(tick)
	ph, _ := ws.Physicals.Get(ship)
	require.InDelta(t, 0.1*180, ph.Rotation, 1e-9)

	ws.Input = world.Input{}
	control.Update(tick)
	ph, _ = ws.Physicals.Get(ship)
	require.Zero(t, ph.Rotation)
}

func TestVelocityClamp(t *testing.T) {
	ws, cfg := newState(t, nil)
	spawnShip(ws, cfg)
	control := NewShipControlSystem(ws, cfg.Bullet)
	physics := NewPhysicsSystem(ws)
	boundary := NewBoundarySystem(ws)

	for i := 0; i < 200; i++ {
		ws.Input = world.Input{
			Accelerate: 1,
			Rotate:     math.Sin(float64(i) / 7),
			Shoot:      i%3 == 0,
		}
		control.Update(tick)
		physics.Update(tick)
		boundary.Update(tick)
		ws.ECS.Flush(control.Commands(), boundary.Commands())

		ecs.Each2(ws.Transforms, ws.Physicals, func(_ ecs.EntityID, _ *component.Transform, ph *component.Physical) {
			require.LessOrEqual(t, ph.Velocity.Len(), ph.MaxVelocity+1e-9)
		})
	}
}

func TestReloadGating(t *testing.T) {
	ws, cfg := newState(t, nil)
	spawnShip(ws, cfg)
	control := NewShipControlSystem(ws, cfg.Bullet)
	ws.Input = world.Input{Shoot: true}

	bullets := func() int {
		n, _ := control.Commands().Pending()
		return n
	}

	// 0.2s between the first and third tick is inside the 0.25s reload.
	for i := 0; i < 3; i++ {
		control.Update(tick)
	}
	require.Equal(t, 1, bullets())

	control.Update(tick) // countdown floors at zero
	require.Equal(t, 1, bullets())

	control.Update(tick)
	require.Equal(t, 2, bullets())
}

func TestBulletVelocity(t *testing.T) {
	t.Run("muzzle speed along heading", func(t *testing.T) {
		ws, cfg := newState(t, nil)
		spawnShip(ws, cfg)
		control := NewShipControlSystem(ws, cfg.Bullet)
		ws.Input = world.Input{Shoot: true}
		control.Update(tick)

		res := ws.ECS.Flush(control.Commands())
		require.Len(t, res.Created, 1)
		ph, ok := ws.Physicals.Get(res.Created[0])
		require.True(t, ok)
		require.InDelta(t, 0, ph.Velocity.X, 1e-9)
		require.InDelta(t, 150, ph.Velocity.Y, 1e-9)
		require.Equal(t, 200.0, ph.MaxVelocity)
		require.Zero(t, ph.Rotation)
		c, _ := ws.Colliders.Get(res.Created[0])
		require.Equal(t, component.TagBullet, c.Tag)
	})

	t.Run("clamped when inheriting ship speed", func(t *testing.T) {
		ws, cfg := newState(t, nil)
		ship := spawnShip(ws, cfg)
		ph, _ := ws.Physicals.Get(ship)
		ph.Velocity = component.Vec2{Y: 100}
		control := NewShipControlSystem(ws, cfg.Bullet)
		ws.Input = world.Input{Shoot: true}
		control.Update(tick)

		res := ws.ECS.Flush(control.Commands())
		bullet, _ := ws.Physicals.Get(res.Created[0])
		require.InDelta(t, 200, bullet.Velocity.Len(), 1e-9)
	})
}

func TestBoundary(t *testing.T) {
	t.Run("wraps ship with inset", func(t *testing.T) {
		ws, cfg := newState(t, nil)
		ship := spawnShip(ws, cfg)
		boundary := NewBoundarySystem(ws)
		tr, _ := ws.Transforms.Get(ship)

		tr.Pos = component.Vec2{X: -1, Y: 150}
		boundary.Update(tick)
		require.Equal(t, component.Vec2{X: 299.5, Y: 150}, tr.Pos)

		tr.Pos = component.Vec2{X: 301, Y: 310}
		boundary.Update(tick)
		require.Equal(t, component.Vec2{X: 0.5, Y: 0.5}, tr.Pos)

		// In bounds: repeated passes change nothing.
		for i := 0; i < 3; i++ {
			boundary.Update(tick)
			require.Equal(t, component.Vec2{X: 0.5, Y: 0.5}, tr.Pos)
		}
	})

	t.Run("wraps asteroids too", func(t *testing.T) {
		ws, _ := newState(t, nil)
		rock := place(ws, component.TagAsteroid, 150, -3)
		NewBoundarySystem(ws).Update(tick)
		tr, _ := ws.Transforms.Get(rock)
		require.Equal(t, component.Vec2{X: 150, Y: 299.5}, tr.Pos)
	})

	t.Run("culls bullets strictly outside", func(t *testing.T) {
		ws, _ := newState(t, nil)
		edge := place(ws, component.TagBullet, 300, 0)
		out := place(ws, component.TagBullet, 150, 300.01)
		boundary := NewBoundarySystem(ws)
		boundary.Update(tick)

		res := ws.ECS.Flush(boundary.Commands())
		require.Equal(t, []ecs.EntityID{out}, res.Deleted)
		require.True(t, ws.ECS.Alive(edge))
		require.False(t, ws.Transforms.Has(out))
	})
}

func TestSpawnClearance(t *testing.T) {
	ws, cfg := newState(t, world.NewRand("clearance"))
	ship := spawnShip(ws, cfg)
	shipPos, _ := ws.Transforms.Get(ship)
	spawn := NewSpawnSystem(ws, cfg.Spawner, 3, nil, zap.NewNop())

	for trial := 0; trial < 1000; trial++ {
		// Longer than any interval, so every update fires once.
		spawn.Update(2 * time.Second)
		res := ws.ECS.Flush(spawn.Commands())
		require.Len(t, res.Created, 1, "trial %d", trial)

		id := res.Created[0]
		tr, _ := ws.Transforms.Get(id)
		require.Greater(t, tr.Pos.Sub(shipPos.Pos).Len(), 200.0, "trial %d", trial)
		require.True(t, ws.Arena.Contains(tr.Pos))

		ph, _ := ws.Physicals.Get(id)
		require.LessOrEqual(t, math.Abs(ph.Velocity.X), 60.0)
		require.LessOrEqual(t, math.Abs(ph.Velocity.Y), 60.0)
		require.LessOrEqual(t, math.Abs(ph.Rotation), 5.0)
		require.Equal(t, 100.0, ph.MaxVelocity)

		sp, _ := ws.Sprites.Get(id)
		require.Less(t, sp.Frame, 3)

		require.GreaterOrEqual(t, spawn.TimeToSpawn(), 0.5)
		require.Less(t, spawn.TimeToSpawn(), 1.5)
	}
}

func TestSpawnTiming(t *testing.T) {
	t.Run("initial delay", func(t *testing.T) {
		ws, cfg := newState(t, nil)
		spawnShip(ws, cfg)
		spawn := NewSpawnSystem(ws, cfg.Spawner, 3, nil, zap.NewNop())

		spawn.Update(time.Second)
		n, _ := spawn.Commands().Pending()
		require.Zero(t, n)

		spawn.Update(time.Second)
		n, _ = spawn.Commands().Pending()
		require.Equal(t, 1, n)
	})

	t.Run("no ship is a no-op", func(t *testing.T) {
		ws, cfg := newState(t, nil)
		spawn := NewSpawnSystem(ws, cfg.Spawner, 3, nil, zap.NewNop())

		spawn.Update(3 * time.Second)
		n, _ := spawn.Commands().Pending()
		require.Zero(t, n)
		require.LessOrEqual(t, spawn.TimeToSpawn(), 0.0)

		spawnShip(ws, cfg)
		spawn.Update(0)
		n, _ = spawn.Commands().Pending()
		require.Equal(t, 1, n)
	})

	t.Run("resampled draws", func(t *testing.T) {
		// First point lands on the ship, second in a corner.
		rnd := &seqRand{floats: []float64{0.5, 0.5, 0.01, 0.01, 0.5, 0.5, 0.5, 0.25}}
		ws, cfg := newState(t, rnd)
		spawnShip(ws, cfg)
		spawn := NewSpawnSystem(ws, cfg.Spawner, 3, nil, zap.NewNop())

		spawn.Update(2 * time.Second)
		res := ws.ECS.Flush(spawn.Commands())
		require.Len(t, res.Created, 1)
		tr, _ := ws.Transforms.Get(res.Created[0])
		require.InDelta(t, 3, tr.Pos.X, 1e-9)
		require.InDelta(t, 3, tr.Pos.Y, 1e-9)
		ph, _ := ws.Physicals.Get(res.Created[0])
		require.Equal(t, component.Vec2{}, ph.Velocity)
		require.Zero(t, ph.Rotation)
		require.InDelta(t, 0.75, spawn.TimeToSpawn(), 1e-9)
	})

	t.Run("lua interval", func(t *testing.T) {
		ws, cfg := newState(t, nil)
		spawnShip(ws, cfg)
		ws.Score.Value = 2
		lua, err := scripting.NewEngineFromString(`
function spawn_interval(ctx)
  return 3 + ctx.score
end
`, zap.NewNop())
		require.NoError(t, err)
		defer lua.Close()

		spawn := NewSpawnSystem(ws, cfg.Spawner, 3, lua, zap.NewNop())
		spawn.Update(2 * time.Second)
		require.InDelta(t, 5, spawn.TimeToSpawn(), 1e-9)
	})

	t.Run("attempt cap drops the batch and consumes the interval", func(t *testing.T) {
		// Every draw lands on the ship.
		rnd := &seqRand{floats: []float64{0.5}}
		ws, cfg := newState(t, rnd)
		spawnShip(ws, cfg)
		core, logs := observer.New(zapcore.WarnLevel)
		spawn := NewSpawnSystem(ws, cfg.Spawner, 3, nil, zap.New(core))

		spawn.Update(2 * time.Second)
		n, _ := spawn.Commands().Pending()
		require.Zero(t, n)
		require.Equal(t, 1, logs.FilterMessage("asteroid spawn skipped, no clear point found").Len())
		require.InDelta(t, cfg.Spawner.AverageSpawnTime+0.5, spawn.TimeToSpawn(), 1e-9)
	})

	t.Run("shipped script keeps the base interval", func(t *testing.T) {
		rnd := &seqRand{floats: []float64{0.01, 0.01, 0.5, 0.5, 0.5, 0.3}}
		ws, cfg := newState(t, rnd)
		spawnShip(ws, cfg)
		for i := 0; i < 41; i++ {
			place(ws, component.TagAsteroid, float64(i), 290)
		}
		ws.Score.Value = 50

		lua, err := scripting.NewEngine(filepath.Join("..", "..", cfg.Scripting.Dir), zap.NewNop())
		require.NoError(t, err)
		defer lua.Close()

		spawn := NewSpawnSystem(ws, cfg.Spawner, 3, lua, zap.NewNop())
		spawn.Update(2 * time.Second)
		require.InDelta(t, cfg.Spawner.AverageSpawnTime+0.3, spawn.TimeToSpawn(), 1e-9)
	})
}

func TestCollisionClassification(t *testing.T) {
	t.Run("bullet and asteroid", func(t *testing.T) {
		ws, cfg := newState(t, nil)
		ship := spawnShip(ws, cfg)
		tr, _ := ws.Transforms.Get(ship)
		tr.Pos = component.Vec2{X: 1150, Y: 1150}
		bullet := place(ws, component.TagBullet, 100, 100)
		rock := place(ws, component.TagAsteroid, 106, 108)

		reader := ws.Collisions.RegisterReader()
		overs := 0
		event.Subscribe(ws.Bus, func(event.GameOver) { overs++ })

		NewCollisionSystem(ws, cfg.Collision.Radius).Update(tick)
		ws.Bus.SwapBuffers()
		ws.Bus.DispatchAll()

		require.Equal(t, []event.CollisionEvent{{Entity: bullet}, {Entity: rock}}, ws.Collisions.Read(reader))
		require.Zero(t, overs)
	})

	t.Run("ship and asteroid", func(t *testing.T) {
		ws, cfg := newState(t, nil)
		ship := spawnShip(ws, cfg)
		tr, _ := ws.Transforms.Get(ship)
		place(ws, component.TagAsteroid, tr.Pos.X+3, tr.Pos.Y-4)
		place(ws, component.TagAsteroid, tr.Pos.X-5, tr.Pos.Y)

		reader := ws.Collisions.RegisterReader()
		var overs []event.GameOver
		event.Subscribe(ws.Bus, func(e event.GameOver) { overs = append(overs, e) })
		ws.Score.Value = 7

		NewCollisionSystem(ws, cfg.Collision.Radius).Update(tick)
		ws.Bus.SwapBuffers()
		ws.Bus.DispatchAll()

		require.Empty(t, ws.Collisions.Read(reader))
		require.Equal(t, []event.GameOver{{Score: 7}}, overs)
	})

	t.Run("ignored pairs", func(t *testing.T) {
		ws, cfg := newState(t, nil)
		ship := spawnShip(ws, cfg)
		tr, _ := ws.Transforms.Get(ship)
		place(ws, component.TagBullet, tr.Pos.X, tr.Pos.Y+1)
		place(ws, component.TagBullet, tr.Pos.X, tr.Pos.Y+2)
		place(ws, component.TagAsteroid, 20, 20)
		place(ws, component.TagAsteroid, 21, 20)

		reader := ws.Collisions.RegisterReader()
		overs := 0
		event.Subscribe(ws.Bus, func(event.GameOver) { overs++ })

		NewCollisionSystem(ws, cfg.Collision.Radius).Update(tick)
		ws.Bus.SwapBuffers()
		ws.Bus.DispatchAll()

		require.Empty(t, ws.Collisions.Read(reader))
		require.Zero(t, overs)
	})

	t.Run("bullet hits every overlapping asteroid once", func(t *testing.T) {
		ws, cfg := newState(t, nil)
		bullet := place(ws, component.TagBullet, 50, 50)
		a := place(ws, component.TagAsteroid, 55, 50)
		b := place(ws, component.TagAsteroid, 45, 50)
		place(ws, component.TagAsteroid, 61, 50) // 11 units away

		reader := ws.Collisions.RegisterReader()
		NewCollisionSystem(ws, cfg.Collision.Radius).Update(tick)

		require.Equal(t, []event.CollisionEvent{{Entity: bullet}, {Entity: a}, {Entity: b}}, ws.Collisions.Read(reader))
	})

	t.Run("touching counts", func(t *testing.T) {
		ws, cfg := newState(t, nil)
		place(ws, component.TagBullet, 0, 0)
		place(ws, component.TagAsteroid, 10, 0)

		reader := ws.Collisions.RegisterReader()
		NewCollisionSystem(ws, cfg.Collision.Radius).Update(tick)
		require.Len(t, ws.Collisions.Read(reader), 2)
	})
}

func TestPairKind(t *testing.T) {
	tests := []struct {
		a, b component.ColliderTag
		want pairClass
	}{
		{component.TagBullet, component.TagAsteroid, pairBulletAsteroid},
		{component.TagAsteroid, component.TagBullet, pairBulletAsteroid},
		{component.TagShip, component.TagAsteroid, pairShipAsteroid},
		{component.TagAsteroid, component.TagShip, pairShipAsteroid},
		{component.TagShip, component.TagBullet, pairIgnored},
		{component.TagBullet, component.TagShip, pairIgnored},
		{component.TagAsteroid, component.TagAsteroid, pairIgnored},
		{component.TagBullet, component.TagBullet, pairIgnored},
	}
	for _, tt := range tests {
		t.Run(tt.a.String()+"/"+tt.b.String(), func(t *testing.T) {
			require.Equal(t, tt.want, pairKind(tt.a, tt.b))
		})
	}
}

func TestDeletionScoring(t *testing.T) {
	ws, cfg := newState(t, nil)
	deletion := NewDeletionSystem(ws, cfg.Explosion.FrameTime)
	bullet := place(ws, component.TagBullet, 40, 60)
	rock := place(ws, component.TagAsteroid, 44, 60)

	var destroyed []event.AsteroidDestroyed
	event.Subscribe(ws.Bus, func(e event.AsteroidDestroyed) { destroyed = append(destroyed, e) })

	ws.Collisions.Write(event.CollisionEvent{Entity: bullet}, event.CollisionEvent{Entity: rock})
	deletion.Update(tick)
	require.Equal(t, 1, ws.Score.Value)
	require.Equal(t, "1", ws.Score.Text)

	res := ws.ECS.Flush(deletion.Commands())
	require.Equal(t, []ecs.EntityID{bullet, rock}, res.Deleted)
	require.Len(t, res.Created, 1)
	ex := res.Created[0]
	require.True(t, ws.Explosions.Has(ex))
	tr, _ := ws.Transforms.Get(ex)
	require.Equal(t, component.Vec2{X: 40, Y: 60}, tr.Pos)

	ws.Bus.SwapBuffers()
	ws.Bus.DispatchAll()
	require.Equal(t, []event.AsteroidDestroyed{{X: 40, Y: 60, Score: 1}}, destroyed)

	// Events are consumed exactly once.
	deletion.Update(tick)
	require.Equal(t, 1, ws.Score.Value)
	spawns, destroys := deletion.Commands().Pending()
	require.Zero(t, spawns)
	require.Zero(t, destroys)
}

func TestDeleteOfMissingIsWarned(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	ws, cfg := newState(t, nil)
	boundary := NewBoundarySystem(ws)
	deletion := NewDeletionSystem(ws, cfg.Explosion.FrameTime)
	cleanup := NewCleanupSystem(ws, zap.New(core), boundary.Commands(), deletion.Commands())

	// Bullet leaves the arena and is hit in the same tick.
	bullet := place(ws, component.TagBullet, 299, 150)
	place(ws, component.TagAsteroid, 295, 150)
	tr, _ := ws.Transforms.Get(bullet)
	tr.Pos.X = 301

	NewCollisionSystem(ws, cfg.Collision.Radius).Update(tick)
	boundary.Update(tick)
	deletion.Update(tick)
	cleanup.Update(tick)

	require.Equal(t, []ecs.EntityID{bullet}, cleanup.Last().Missing)
	require.Len(t, cleanup.Last().Deleted, 2)
	require.Equal(t, 1, logs.FilterMessage("delete of missing entity").Len())
	require.Equal(t, 1, ws.Score.Value)
}

func TestExplosionTermination(t *testing.T) {
	ws, cfg := newState(t, nil)
	cmds := ecs.NewCommands()
	cmds.Spawn(ws.BuildExplosion(component.Transform{Pos: component.Vec2{X: 10, Y: 10}}, cfg.Explosion.FrameTime))
	id := ws.ECS.Flush(cmds).Created[0]

	explosion := NewExplosionSystem(ws, cfg.Explosion.FrameTime)
	cleanup := NewCleanupSystem(ws, zap.NewNop(), explosion.Commands())
	finished := 0
	event.Subscribe(ws.Bus, func(e event.ExplosionFinished) {
		require.Equal(t, id, e.EntityID)
		finished++
	})

	lastFrame := 0
	ticks := 0
	for ws.ECS.Alive(id) {
		require.Less(t, ticks, 100, "explosion never finished")
		sp, _ := ws.Sprites.Get(id)
		lastFrame = sp.Frame
		explosion.Update(tick)
		cleanup.Update(tick)
		ticks++
	}

	require.Equal(t, 10, ticks)
	require.GreaterOrEqual(t, float64(ticks)*tick.Seconds(), 0.4)
	require.Equal(t, component.ExplosionFrameLimit, lastFrame)
	require.Equal(t, 1, finished)
	require.False(t, ws.Sprites.Has(id))
}
