package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for difficulty tuning hooks.
// Systems may run on worker goroutines, so every call takes mu.
type Engine struct {
	mu  sync.Mutex
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given directory.
// A missing directory yields an engine with no hooks defined.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	if scriptsDir == "" {
		return e, nil
	}
	if err := e.loadDir(scriptsDir); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load scripts: %w", err)
	}
	return e, nil
}

// NewEngineFromString loads a single chunk of Lua source. Used by tests and
// tools that embed their scripts.
func NewEngineFromString(src string, log *zap.Logger) (*Engine, error) {
	e, err := NewEngine("", log)
	if err != nil {
		return nil, err
	}
	if err := e.vm.DoString(src); err != nil {
		e.vm.Close()
		return nil, fmt.Errorf("load script: %w", err)
	}
	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// SpawnContext is passed to the spawn_interval hook.
type SpawnContext struct {
	Score     int
	Asteroids int     // live asteroids
	Average   float64 // configured average_spawn_time
	Roll      float64 // uniform [0,1) drawn for this interval
	Elapsed   float64 // seconds since the session started
}

// SpawnInterval calls the Lua spawn_interval function. ok is false when the
// hook is not defined or fails, in which case the caller uses its default.
func (e *Engine) SpawnInterval(ctx SpawnContext) (seconds float64, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	fn := e.vm.GetGlobal("spawn_interval")
	if fn == lua.LNil {
		return 0, false
	}

	t := e.vm.NewTable()
	t.RawSetString("score", lua.LNumber(ctx.Score))
	t.RawSetString("asteroids", lua.LNumber(ctx.Asteroids))
	t.RawSetString("average", lua.LNumber(ctx.Average))
	t.RawSetString("roll", lua.LNumber(ctx.Roll))
	t.RawSetString("elapsed", lua.LNumber(ctx.Elapsed))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua spawn_interval error", zap.Error(err))
		return 0, false
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	n, isNum := result.(lua.LNumber)
	if !isNum {
		e.log.Error("lua spawn_interval returned non-number", zap.String("type", result.Type().String()))
		return 0, false
	}
	if float64(n) <= 0 {
		e.log.Warn("lua spawn_interval returned non-positive interval", zap.Float64("seconds", float64(n)))
		return 0, false
	}
	return float64(n), true
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vm.Close()
}
