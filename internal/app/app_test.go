package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/l1jgo/scenegraph/internal/config"
)

func TestConfigPathPrecedence(t *testing.T) {
	t.Setenv("SCENEGRAPH_CONFIG", "")
	if got := ConfigPath(""); got != DefaultConfigPath {
		t.Errorf("default = %q", got)
	}
	t.Setenv("SCENEGRAPH_CONFIG", "env.toml")
	if got := ConfigPath(""); got != "env.toml" {
		t.Errorf("env = %q", got)
	}
	if got := ConfigPath("flag.toml"); got != "flag.toml" {
		t.Errorf("flag = %q", got)
	}
}

func TestLoadConfigMissing(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("missing explicit config accepted")
	}
}

func TestEnvLoadsScene(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "scene.yaml")
	if err := os.WriteFile(doc, []byte("Gravity: [0, -1]\nEntities:\n  - Name: Box\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	mats := filepath.Join(dir, "materials.yaml")
	if err := os.WriteFile(mats, []byte("Ice:\n  Friction: 0.01\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Defaults()
	cfg.Scene.BaseDir = dir
	cfg.Assets.Materials = mats
	cfg.Logging.Level = "error"
	env, err := NewEnv(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := env.Materials.Material("Ice"); !ok {
		t.Error("materials not loaded")
	}

	s, err := env.LoadScene(doc)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.FindByName("Box"); !ok {
		t.Error("scene entity missing")
	}
	if s.Gravity().Y() != -1 {
		t.Errorf("gravity = %v", s.Gravity())
	}

	cfg.Assets.Materials = filepath.Join(dir, "absent.yaml")
	if _, err := NewEnv(cfg); err != nil {
		t.Errorf("missing materials file should fall back: %v", err)
	}
}
