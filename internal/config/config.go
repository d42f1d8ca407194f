package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Game      GameConfig      `toml:"game"`
	Arena     ArenaConfig     `toml:"arena"`
	Ship      ShipConfig      `toml:"ship"`
	Bullet    BulletConfig    `toml:"bullet"`
	Spawner   SpawnerConfig   `toml:"spawner"`
	Collision CollisionConfig `toml:"collision"`
	Explosion ExplosionConfig `toml:"explosion"`
	Logging   LoggingConfig   `toml:"logging"`
	Scripting ScriptingConfig `toml:"scripting"`
	Assets    AssetsConfig    `toml:"assets"`
	Audio     AudioConfig     `toml:"audio"`
	Input     InputConfig     `toml:"input"`
}

type GameConfig struct {
	Seed     string        `toml:"seed"`      // empty = seeded from the clock
	TickRate time.Duration `toml:"tick_rate"` // host frame interval
	Workers  int           `toml:"workers"`   // goroutines for parallel systems
}

type ArenaConfig struct {
	Width     float64 `toml:"width"`
	Height    float64 `toml:"height"`
	WrapInset float64 `toml:"wrap_inset"` // distance from the opposite edge after a wrap
}

type ShipConfig struct {
	Acceleration   float64 `toml:"acceleration"`
	TurnRate       float64 `toml:"turn_rate"`
	MaxVelocity    float64 `toml:"max_velocity"`
	ReloadInterval float64 `toml:"reload_interval"` // seconds
}

type BulletConfig struct {
	MuzzleSpeed float64 `toml:"muzzle_speed"`
	MaxVelocity float64 `toml:"max_velocity"`
}

type SpawnerConfig struct {
	InitialDelay     float64 `toml:"initial_delay"`      // seconds before the first asteroid
	AverageSpawnTime float64 `toml:"average_spawn_time"` // base of the randomized interval
	MaxVelocity      float64 `toml:"max_velocity"`       // per-axis velocity bound
	AsteroidMaxSpeed float64 `toml:"asteroid_max_speed"`
	MaxRotation      float64 `toml:"max_rotation"`
	DistanceToShip   float64 `toml:"distance_to_ship"`
}

type CollisionConfig struct {
	Radius float64 `toml:"radius"` // per-entity interaction radius
}

type ExplosionConfig struct {
	FrameTime float64 `toml:"frame_time"` // seconds per animation frame
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
	File   string `toml:"file"`   // empty = stderr
}

type ScriptingConfig struct {
	Dir string `toml:"dir"` // directory of .lua files; empty disables scripting
}

type AssetsConfig struct {
	Sprites string `toml:"sprites"` // sprite catalog YAML
}

type AudioConfig struct {
	Enabled bool    `toml:"enabled"`
	Volume  float64 `toml:"volume"` // 0.0-1.0
}

type InputConfig struct {
	HoldTime time.Duration `toml:"hold_time"` // how long a key press keeps an axis held
}

// Load reads a TOML file on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return defaults()
}

// Validate rejects values the simulation cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Arena.Width <= 0 || c.Arena.Height <= 0 {
		errs = append(errs, fmt.Errorf("arena must have positive size, got %gx%g", c.Arena.Width, c.Arena.Height))
	}
	if c.Arena.WrapInset < 0 || c.Arena.WrapInset*2 > c.Arena.Width || c.Arena.WrapInset*2 > c.Arena.Height {
		errs = append(errs, fmt.Errorf("arena wrap_inset %g out of range", c.Arena.WrapInset))
	}
	if c.Collision.Radius <= 0 {
		errs = append(errs, fmt.Errorf("collision radius must be positive, got %g", c.Collision.Radius))
	}
	if c.Explosion.FrameTime <= 0 {
		errs = append(errs, fmt.Errorf("explosion frame_time must be positive, got %g", c.Explosion.FrameTime))
	}
	if c.Ship.MaxVelocity <= 0 || c.Bullet.MaxVelocity <= 0 || c.Spawner.AsteroidMaxSpeed <= 0 {
		errs = append(errs, errors.New("max velocities must be positive"))
	}
	if c.Ship.ReloadInterval < 0 {
		errs = append(errs, fmt.Errorf("ship reload_interval must not be negative, got %g", c.Ship.ReloadInterval))
	}
	if c.Spawner.DistanceToShip < 0 {
		errs = append(errs, fmt.Errorf("spawner distance_to_ship must not be negative, got %g", c.Spawner.DistanceToShip))
	}
	if c.Game.Workers < 1 {
		errs = append(errs, fmt.Errorf("game workers must be at least 1, got %d", c.Game.Workers))
	}
	if c.Game.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("game tick_rate must be positive, got %s", c.Game.TickRate))
	}
	return errors.Join(errs...)
}

func defaults() *Config {
	return &Config{
		Game: GameConfig{
			TickRate: 16 * time.Millisecond,
			Workers:  4,
		},
		Arena: ArenaConfig{
			Width:     300,
			Height:    300,
			WrapInset: 0.5,
		},
		Ship: ShipConfig{
			Acceleration:   80,
			TurnRate:       180,
			MaxVelocity:    100,
			ReloadInterval: 0.25,
		},
		Bullet: BulletConfig{
			MuzzleSpeed: 150,
			MaxVelocity: 200,
		},
		Spawner: SpawnerConfig{
			InitialDelay:     2,
			AverageSpawnTime: 0.5,
			MaxVelocity:      60,
			AsteroidMaxSpeed: 100,
			MaxRotation:      5,
			DistanceToShip:   200,
		},
		Collision: CollisionConfig{
			Radius: 5,
		},
		Explosion: ExplosionConfig{
			FrameTime: 0.1,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Scripting: ScriptingConfig{
			Dir: "scripts",
		},
		Assets: AssetsConfig{
			Sprites: "data/yaml/sprites.yaml",
		},
		Audio: AudioConfig{
			Enabled: false,
			Volume:  0.5,
		},
		Input: InputConfig{
			HoldTime: 120 * time.Millisecond,
		},
	}
}
