package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for scripted combat formulas. The VM is
// not goroutine-safe, so calls are serialised; pooled systems may share one
// Engine. A nil *Engine is valid and always uses the built-in fallback.
type Engine struct {
	mu  sync.Mutex
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given directory.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	e := newEngine(log)

	// Load core scripts first, then feature scripts
	for _, sub := range []string{"core", "combat"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			e.vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}
	return e, nil
}

// NewEngineFromSource creates an engine from inline Lua source.
func NewEngineFromSource(src string, log *zap.Logger) (*Engine, error) {
	e := newEngine(log)
	if err := e.vm.DoString(src); err != nil {
		e.vm.Close()
		return nil, fmt.Errorf("load inline script: %w", err)
	}
	return e, nil
}

func newEngine(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	return &Engine{vm: vm, log: log}
}

func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vm.Close()
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

// AttackContext holds pre-packed data for one attacker/target pair.
type AttackContext struct {
	AttackerName    string
	AttackerFaction string
	AttackerDamage  int
	TargetName      string
	TargetFaction   string
	TargetHealth    int
	Round           int
}

// AttackResult is returned by the Lua calc_attack function.
type AttackResult struct {
	IsHit  bool
	Damage int
}

// CalcAttack calls the Lua calc_attack function. Without a script, or when the
// script fails, the attacker's base damage always hits.
func (e *Engine) CalcAttack(ctx AttackContext) AttackResult {
	fallback := AttackResult{IsHit: true, Damage: ctx.AttackerDamage}
	if e == nil {
		return fallback
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	fn := e.vm.GetGlobal("calc_attack")
	if fn == lua.LNil {
		return fallback
	}

	t := e.vm.NewTable()
	atk := e.vm.NewTable()
	atk.RawSetString("name", lua.LString(ctx.AttackerName))
	atk.RawSetString("faction", lua.LString(ctx.AttackerFaction))
	atk.RawSetString("damage", lua.LNumber(ctx.AttackerDamage))
	t.RawSetString("attacker", atk)

	tgt := e.vm.NewTable()
	tgt.RawSetString("name", lua.LString(ctx.TargetName))
	tgt.RawSetString("faction", lua.LString(ctx.TargetFaction))
	tgt.RawSetString("health", lua.LNumber(ctx.TargetHealth))
	t.RawSetString("target", tgt)
	t.RawSetString("round", lua.LNumber(ctx.Round))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua calc_attack error", zap.Error(err))
		return fallback
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		e.log.Error("lua calc_attack returned non-table")
		return fallback
	}
	dmg := int(lua.LVAsNumber(rt.RawGetString("damage")))
	if dmg < 0 {
		dmg = 0
	}
	return AttackResult{
		IsHit:  rt.RawGetString("is_hit") == lua.LTrue,
		Damage: dmg,
	}
}
