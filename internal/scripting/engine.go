package scripting

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

//go:embed lua/*.lua
var builtinScripts embed.FS

// Engine wraps a single gopher-lua VM holding the stat formulas.
// Calls are serialized; the VM itself is not goroutine-safe.
type Engine struct {
	mu  sync.Mutex
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine with the built-in scripts, then loads any
// .lua files from overrideDir on top. An empty overrideDir is allowed.
func NewEngine(overrideDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState()
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	entries, err := builtinScripts.ReadDir("lua")
	if err != nil {
		vm.Close()
		return nil, fmt.Errorf("read builtin scripts: %w", err)
	}
	for _, entry := range entries {
		src, err := builtinScripts.ReadFile("lua/" + entry.Name())
		if err != nil {
			vm.Close()
			return nil, fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		if err := vm.DoString(string(src)); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s: %w", entry.Name(), err)
		}
	}

	if overrideDir != "" {
		if err := e.loadDir(overrideDir); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load override scripts: %w", err)
		}
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

// HealthContext holds the inputs of calc_max_health.
type HealthContext struct {
	Level          int
	Class          int
	BaseHealth     int
	HealthPerLevel int
	Stamina        int // equipment + talents + auras
}

// PowerContext holds the inputs of calc_max_power.
type PowerContext struct {
	Level int
	Class int
	Power int // power index
	Base  int // class base pool for this power
}

// CalcMaxHealth calls the Lua calc_max_health function. Falls back to the
// class base on script errors so a character can always log in.
func (e *Engine) CalcMaxHealth(ctx HealthContext) uint32 {
	fallback := max(ctx.BaseHealth, 1)
	v := e.callTable("calc_max_health", fallback, map[string]int{
		"level":            ctx.Level,
		"class":            ctx.Class,
		"base_health":      ctx.BaseHealth,
		"health_per_level": ctx.HealthPerLevel,
		"stamina":          ctx.Stamina,
	})
	return uint32(max(v, 1))
}

// CalcMaxPower calls the Lua calc_max_power function.
func (e *Engine) CalcMaxPower(ctx PowerContext) uint32 {
	v := e.callTable("calc_max_power", ctx.Base, map[string]int{
		"level": ctx.Level,
		"class": ctx.Class,
		"power": ctx.Power,
		"base":  ctx.Base,
	})
	return uint32(max(v, 0))
}

// CalcSobriety returns the drunk value left after elapsed offline seconds.
func (e *Engine) CalcSobriety(drunk, elapsed int) uint8 {
	v := e.callTable("calc_sobriety", 0, map[string]int{
		"drunk":   drunk,
		"elapsed": elapsed,
	})
	return uint8(min(max(v, 0), 100))
}

// callTable calls a global Lua function with one context table argument and
// returns its numeric result, or fallback on any error.
func (e *Engine) callTable(name string, fallback int, fields map[string]int) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		e.log.Error("lua function not found", zap.String("name", name))
		return fallback
	}

	t := e.vm.NewTable()
	for k, v := range fields {
		t.RawSetString(k, lua.LNumber(v))
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua call error", zap.String("func", name), zap.Error(err))
		return fallback
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)
	n, ok := result.(lua.LNumber)
	if !ok {
		e.log.Error("lua function returned non-number", zap.String("func", name))
		return fallback
	}
	return int(n)
}

// Close releases the VM.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vm.Close()
}
