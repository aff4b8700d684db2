package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/l1jgo/scenegraph/internal/assets"
	"github.com/l1jgo/scenegraph/internal/config"
	"github.com/l1jgo/scenegraph/internal/data"
	"github.com/l1jgo/scenegraph/internal/logging"
	"github.com/l1jgo/scenegraph/internal/scene"
	"github.com/l1jgo/scenegraph/internal/scripting"
)

// DefaultConfigPath is used when neither a flag nor SCENEGRAPH_CONFIG names one.
const DefaultConfigPath = "config/scenegraph.toml"

// Env holds the process-wide collaborators a scene is built from.
type Env struct {
	Config    *config.Config
	Log       *zap.Logger
	Assets    *assets.Manager
	Materials *data.MaterialTable
	Scripts   *scripting.Engine
}

// ConfigPath picks the config file: explicit flag, then SCENEGRAPH_CONFIG,
// then the default.
func ConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if p := os.Getenv("SCENEGRAPH_CONFIG"); p != "" {
		return p
	}
	return DefaultConfigPath
}

// LoadConfig reads the config file. A missing default file falls back to
// built-in defaults; a missing explicit file is an error.
func LoadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if path == DefaultConfigPath && errors.Is(err, fs.ErrNotExist) {
		return config.Defaults(), nil
	}
	return nil, err
}

// NewEnv builds the logger and the resource collaborators.
func NewEnv(cfg *config.Config) (*Env, error) {
	log, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	materials := data.NewMaterialTable()
	if cfg.Assets.Materials != "" {
		loaded, err := data.LoadMaterialTable(cfg.Assets.Materials)
		switch {
		case err == nil:
			materials = loaded
		case errors.Is(err, fs.ErrNotExist):
			log.Warn("materials file missing, using defaults", zap.String("path", cfg.Assets.Materials))
		default:
			return nil, fmt.Errorf("load materials: %w", err)
		}
	}

	return &Env{
		Config:    cfg,
		Log:       log,
		Assets:    assets.NewManager(log.Named("assets")),
		Materials: materials,
		Scripts:   scripting.NewEngine(log.Named("scripts")),
	}, nil
}

// Resources returns the collaborators in the form a scene takes them.
func (e *Env) Resources() scene.Resources {
	return scene.Resources{
		Assets:    e.Assets,
		Materials: e.Materials,
		Scripts:   e.Scripts,
		BaseDir:   e.Config.Scene.BaseDir,
	}
}

// NewScene creates an empty scene wired to the environment.
func (e *Env) NewScene() *scene.Scene {
	return scene.New(e.Resources(), e.Config.Physics, e.Log.Named("scene"))
}

// LoadScene creates a scene and fills it from the document at path.
func (e *Env) LoadScene(path string) (*scene.Scene, error) {
	s := e.NewScene()
	if err := scene.NewSerializer(s).DeserializeFile(path); err != nil {
		return nil, fmt.Errorf("load scene %s: %w", path, err)
	}
	return s, nil
}
