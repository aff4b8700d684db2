package scripting

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/l1jgo/scenegraph/internal/scene"
)

// Instance is one script VM bound to one entity.
type Instance struct {
	vm     *lua.LState
	scene  *scene.Scene
	entity scene.Entity
	log    *zap.Logger
	closed bool
}

func (i *Instance) Create() error { return i.call("on_create") }

func (i *Instance) Update(dt float64) error { return i.call("on_update", lua.LNumber(dt)) }

// Destroy runs on_destroy and closes the VM. Later calls are no-ops.
func (i *Instance) Destroy() error {
	if i.closed {
		return nil
	}
	err := i.call("on_destroy")
	i.vm.Close()
	i.closed = true
	return err
}

// call runs a global hook in protected mode. Missing hooks are skipped.
func (i *Instance) call(name string, args ...lua.LValue) error {
	if i.closed {
		return nil
	}
	fn := i.vm.GetGlobal(name)
	if fn.Type() != lua.LTFunction {
		return nil
	}
	if err := i.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, args...); err != nil {
		return fmt.Errorf("lua %s: %w", name, err)
	}
	return nil
}

// bind installs the entity table and the log function.
func (i *Instance) bind() {
	vm := i.vm
	ent := vm.NewTable()
	vm.SetFuncs(ent, map[string]lua.LGFunction{
		"name":            i.luaName,
		"translation":     i.luaTranslation,
		"set_translation": i.luaSetTranslation,
		"rotation":        i.luaRotation,
		"set_rotation":    i.luaSetRotation,
		"destroy":         i.luaDestroy,
	})
	vm.SetGlobal("entity", ent)
	vm.SetGlobal("log", vm.NewFunction(i.luaLog))
}

func (i *Instance) transform(L *lua.LState) *scene.TransformComponent {
	t, ok := scene.Get[scene.TransformComponent](i.scene, i.entity)
	if !ok {
		L.RaiseError("entity is gone or has no transform")
		return nil
	}
	return t
}

func (i *Instance) luaName(L *lua.LState) int {
	L.Push(lua.LString(i.scene.Name(i.entity)))
	return 1
}

func (i *Instance) luaTranslation(L *lua.LState) int {
	t := i.transform(L)
	L.Push(lua.LNumber(t.Translation.X()))
	L.Push(lua.LNumber(t.Translation.Y()))
	L.Push(lua.LNumber(t.Translation.Z()))
	return 3
}

func (i *Instance) luaSetTranslation(L *lua.LState) int {
	t := i.transform(L)
	x := float64(L.CheckNumber(1))
	y := float64(L.CheckNumber(2))
	z := float64(L.OptNumber(3, lua.LNumber(t.Translation.Z())))
	t.Translation[0], t.Translation[1], t.Translation[2] = x, y, z
	i.scene.SyncBody(i.entity)
	return 0
}

func (i *Instance) luaRotation(L *lua.LState) int {
	t := i.transform(L)
	L.Push(lua.LNumber(t.Rotation.Z()))
	return 1
}

func (i *Instance) luaSetRotation(L *lua.LState) int {
	t := i.transform(L)
	t.Rotation[2] = float64(L.CheckNumber(1))
	i.scene.SyncBody(i.entity)
	return 0
}

func (i *Instance) luaDestroy(L *lua.LState) int {
	i.scene.QueueKill(i.entity)
	return 0
}

func (i *Instance) luaLog(L *lua.LState) int {
	i.log.Info(L.CheckString(1), zap.String("entity", i.scene.Name(i.entity)))
	return 0
}
