package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/l1jgo/asteroids/internal/audio"
	"github.com/l1jgo/asteroids/internal/component"
	"github.com/l1jgo/asteroids/internal/config"
	"github.com/l1jgo/asteroids/internal/data"
	"github.com/l1jgo/asteroids/internal/game"
	"github.com/l1jgo/asteroids/internal/input"
	"github.com/l1jgo/asteroids/internal/render"
	"github.com/l1jgo/asteroids/internal/scripting"
	"github.com/l1jgo/asteroids/internal/world"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config
	path, err := configPath(os.Args[1:])
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	// 3. Load assets and scripts
	sprites, err := data.LoadSpriteTable(cfg.Assets.Sprites)
	if err != nil {
		return fmt.Errorf("load sprites: %w", err)
	}
	log.Info("sprites loaded", zap.Int("sheets", sprites.Count()))

	lua, err := scripting.NewEngine(cfg.Scripting.Dir, log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer lua.Close()

	player := audio.NewPlayer(cfg.Audio, log)
	if cfg.Audio.Enabled {
		if err := player.Init(); err != nil {
			log.Warn("audio disabled", zap.Error(err))
		}
	}
	defer player.Close()

	// 4. Terminal
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("new screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()
	screen.HideCursor()

	session := game.NewSession(cfg, world.NewRand(cfg.Game.Seed), sprites.Variants(component.SheetAsteroid), lua, log)
	h := newHost(session, render.NewRenderer(screen, sprites), input.NewControls(cfg.Input.HoldTime), player, cfg.Game.TickRate, log)

	// 5. Main loop
	events := make(chan tcell.Event, 64)
	quit := make(chan struct{})
	go screen.ChannelEvents(events, quit)
	defer close(quit)

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Game.TickRate)
	defer ticker.Stop()

	log.Info("asteroids started",
		zap.String("config", path),
		zap.Duration("tick", cfg.Game.TickRate),
		zap.Int("workers", cfg.Game.Workers))

	h.draw()
	last := time.Now()
	for {
		select {
		case ev := <-events:
			if _, ok := ev.(*tcell.EventResize); ok {
				screen.Sync()
				continue
			}
			done, err := h.handleEvent(ev)
			if err != nil {
				return err
			}
			if done {
				log.Info("asteroids stopped")
				return nil
			}
		case now := <-ticker.C:
			h.tick(now, now.Sub(last))
			last = now
		case sig := <-shutdownCh:
			log.Info("shutdown signal", zap.String("signal", sig.String()))
			session.Stop()
			return nil
		}
	}
}

// configPath resolves the config file: -config wins, then
// ASTEROIDS_CONFIG, then the bundled default.
func configPath(args []string) (string, error) {
	fs := flag.NewFlagSet("asteroids", flag.ContinueOnError)
	path := fs.String("config", envOr("ASTEROIDS_CONFIG", "config/asteroids.toml"), "path to the TOML config file")
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	return *path, nil
}

// envOr returns the environment variable key, or def when it is unset.
func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		if cfg.File != "" {
			zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		}
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	// The terminal belongs to the game while it runs.
	if cfg.File != "" {
		zapCfg.OutputPaths = []string{cfg.File}
		zapCfg.ErrorOutputPaths = []string{cfg.File}
	}

	return zapCfg.Build()
}
