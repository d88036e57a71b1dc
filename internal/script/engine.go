package script

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Super-StarX/INIValidator/internal/ctxlog"
	"github.com/Super-StarX/INIValidator/internal/diag"
	"github.com/Super-StarX/INIValidator/internal/ini"
	lua "github.com/yuin/gopher-lua"
)

// DefaultTimeout bounds a single validate call.
const DefaultTimeout = 2 * time.Second

const validateFunc = "validate"

// ErrStateClosed is returned by calls on a closed Engine.
var ErrStateClosed = errors.New("script engine is closed")

// SectionSource resolves section names for get_section. *ini.Document
// implements it.
type SectionSource interface {
	Section(name string) (*ini.Section, bool)
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout sets the per-call execution timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// Engine holds one Lua state and the validators loaded into it. It is safe
// for concurrent use; calls are serialised.
type Engine struct {
	L       *lua.LState
	timeout time.Duration

	mu       sync.Mutex
	scripts  map[string]*lua.LFunction
	sections SectionSource
	closed   bool
}

// New creates an engine and loads every *.lua file in dir. A missing
// directory yields an engine with no scripts. Scripts that fail to load are
// logged and skipped.
func New(ctx context.Context, dir string, opts ...Option) (*Engine, error) {
	logger := ctxlog.FromContext(ctx)

	e := &Engine{timeout: DefaultTimeout, scripts: make(map[string]*lua.LFunction)}
	for _, opt := range opts {
		opt(e)
	}
	e.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(e.L)
	e.L.SetGlobal("get_section", e.L.NewFunction(e.getSection))

	if dir == "" {
		return e, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Debug("Scripts directory not found, script types disabled.", "path", dir)
			return e, nil
		}
		e.L.Close()
		return nil, fmt.Errorf("failed to read scripts directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".lua") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		typeName := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if err := e.load(typeName, path); err != nil {
			logger.Warn("Skipping script.", "path", path, "error", err)
			continue
		}
		logger.Debug("Loaded script.", "type", typeName, "path", path)
	}
	return e, nil
}

// LoadString registers source as the validator of typeName.
func (e *Engine) LoadString(typeName, source string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrStateClosed
	}
	fn, err := e.L.LoadString(source)
	if err != nil {
		return err
	}
	return e.install(typeName, fn)
}

func (e *Engine) load(typeName, path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn, err := e.L.LoadFile(path)
	if err != nil {
		return err
	}
	return e.install(typeName, fn)
}

// install runs chunk in a fresh environment that falls back to the shared
// globals and keeps the validate function it defines.
func (e *Engine) install(typeName string, chunk *lua.LFunction) error {
	L := e.L
	env := L.NewTable()
	meta := L.NewTable()
	meta.RawSetString("__index", L.Get(lua.GlobalsIndex))
	L.SetMetatable(env, meta)
	chunk.Env = env

	L.Push(chunk)
	if err := e.protect(func() error { return L.PCall(0, 0, nil) }); err != nil {
		return err
	}
	fn, ok := env.RawGetString(validateFunc).(*lua.LFunction)
	if !ok {
		return fmt.Errorf("script for %q does not define function %s", typeName, validateFunc)
	}
	e.scripts[typeName] = fn
	return nil
}

// SetSections sets the document get_section reads from.
func (e *Engine) SetSections(src SectionSource) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sections = src
}

// Supports reports whether a script handles typeName.
func (e *Engine) Supports(typeName string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.scripts[typeName]
	return ok
}

// Types returns the handled type names, sorted.
func (e *Engine) Types() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.scripts))
	for t := range e.scripts {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Validate runs the script of typeName. A diag.SeverityOff result means the
// value passed.
func (e *Engine) Validate(sec *ini.Section, key, value, typeName string) (diag.Severity, string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return diag.SeverityOff, "", ErrStateClosed
	}
	fn, ok := e.scripts[typeName]
	if !ok {
		return diag.SeverityOff, "", fmt.Errorf("no script for type %q", typeName)
	}

	L := e.L
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()
	L.SetContext(ctx)
	defer L.RemoveContext()

	top := L.GetTop()
	defer L.SetTop(top)

	err := e.protect(func() error {
		return L.CallByParam(lua.P{Fn: fn, NRet: 2, Protect: true},
			sectionTable(L, sec), lua.LString(key), lua.LString(value), lua.LString(typeName))
	})
	if err != nil {
		return diag.SeverityOff, "", fmt.Errorf("script %s: %w", typeName, err)
	}
	return interpret(L.Get(-2), L.Get(-1))
}

// Close releases the Lua state. Further calls return ErrStateClosed.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	e.L.Close()
}

func (e *Engine) getSection(L *lua.LState) int {
	name := L.CheckString(1)
	// The engine lock is held by the Validate call that is running us.
	if e.sections == nil {
		L.Push(lua.LNil)
		return 1
	}
	sec, ok := e.sections.Section(name)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(sectionTable(L, sec))
	return 1
}

func (e *Engine) protect(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// interpret maps the two return values of validate, in either order.
func interpret(a, b lua.LValue) (diag.Severity, string, error) {
	var code lua.LNumber
	var msg string
	hasCode := false
	for _, v := range []lua.LValue{a, b} {
		switch x := v.(type) {
		case lua.LNumber:
			if !hasCode {
				code, hasCode = x, true
			}
		case lua.LString:
			if msg == "" {
				msg = string(x)
			}
		case *lua.LNilType:
		default:
			return diag.SeverityOff, "", fmt.Errorf("unexpected %s result from validate", v.Type())
		}
	}
	if !hasCode {
		if msg == "" {
			return diag.SeverityOff, "", nil
		}
		return diag.SeverityError, msg, nil
	}
	switch {
	case code <= 0:
		return diag.SeverityOff, "", nil
	case code == 1:
		return diag.SeverityInfo, msg, nil
	case code == 2:
		return diag.SeverityWarning, msg, nil
	default:
		return diag.SeverityError, msg, nil
	}
}

func sectionTable(L *lua.LState, sec *ini.Section) *lua.LTable {
	t := L.NewTable()
	if sec == nil {
		return t
	}
	for _, k := range sec.Keys() {
		v, _ := sec.Get(k)
		t.RawSetString(k, lua.LString(v.Text))
	}
	return t
}

// openSafeLibraries opens base, table, string and math only.
func openSafeLibraries(L *lua.LState) {
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
}
