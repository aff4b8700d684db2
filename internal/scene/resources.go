package scene

import (
	"github.com/l1jgo/scenegraph/internal/assets"
	"github.com/l1jgo/scenegraph/internal/data"
)

// AssetManager resolves asset paths to numeric IDs and back.
type AssetManager interface {
	LoadTexture(path string) (assets.ID, error)
	LoadFont(path string) (assets.ID, error)
	Path(id assets.ID) (string, bool)
}

// ScriptLoader compiles script files, caching as it sees fit.
type ScriptLoader interface {
	CompileOrLoad(path string) (ScriptProgram, error)
}

// ScriptProgram is a compiled script that can be bound to entities.
type ScriptProgram interface {
	Path() string
	Instantiate(s *Scene, e Entity) (ScriptInstance, error)
}

// ScriptInstance is one running script bound to one entity.
type ScriptInstance interface {
	Create() error
	Update(dt float64) error
	Destroy() error
}

// MaterialSource looks up physics materials by name.
type MaterialSource interface {
	Material(name string) (data.Material, bool)
}

// Resources are the collaborators a scene loads assets, scripts and materials
// through. Any of them may be nil; references then resolve to sentinels.
type Resources struct {
	Assets    AssetManager
	Materials MaterialSource
	Scripts   ScriptLoader
	BaseDir   string // document paths are relative to this directory
}
