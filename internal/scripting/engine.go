package scripting

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"github.com/l1jgo/scenegraph/internal/scene"
)

// Engine compiles Lua script files and caches the compiled programs by path.
// A cached program is reused while the file content hash is unchanged.
// Single-goroutine access only (scene update loop).
type Engine struct {
	cache map[string]*Program
	log   *zap.Logger
}

// NewEngine creates an engine with an empty program cache.
func NewEngine(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		cache: make(map[string]*Program),
		log:   log,
	}
}

// CompileOrLoad returns the compiled program for the file at path, compiling
// it when it is new or its content changed.
func (e *Engine) CompileOrLoad(path string) (scene.ScriptProgram, error) {
	p, err := e.compile(path)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (e *Engine) compile(path string) (*Program, error) {
	path = filepath.Clean(path)
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script %s: %w", path, err)
	}
	sum := blake2b.Sum256(src)
	if p, ok := e.cache[path]; ok && p.sum == sum {
		return p, nil
	}

	chunk, err := parse.Parse(bytes.NewReader(src), path)
	if err != nil {
		return nil, fmt.Errorf("parse script %s: %w", path, err)
	}
	proto, err := lua.Compile(chunk, path)
	if err != nil {
		return nil, fmt.Errorf("compile script %s: %w", path, err)
	}

	p := &Program{path: path, sum: sum, proto: proto, log: e.log}
	e.cache[path] = p
	e.log.Debug("compiled lua script", zap.String("file", path))
	return p, nil
}

// Cached returns the number of programs in the cache.
func (e *Engine) Cached() int { return len(e.cache) }

// Program is a compiled script. Each Instantiate runs it in a fresh VM.
type Program struct {
	path  string
	sum   [blake2b.Size256]byte
	proto *lua.FunctionProto
	log   *zap.Logger
}

func (p *Program) Path() string { return p.path }

// Instantiate binds the program to an entity and runs its top-level chunk,
// which defines the on_create, on_update and on_destroy hooks.
func (p *Program) Instantiate(s *scene.Scene, ent scene.Entity) (scene.ScriptInstance, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	inst := &Instance{
		vm:     vm,
		scene:  s,
		entity: ent,
		log:    p.log.With(zap.String("script", p.path)),
	}
	inst.bind()

	vm.Push(vm.NewFunctionFromProto(p.proto))
	if err := vm.PCall(0, lua.MultRet, nil); err != nil {
		vm.Close()
		return nil, fmt.Errorf("run script %s: %w", p.path, err)
	}
	return inst, nil
}
