package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenegraph.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[physics]
gravity = [0.0, -20.0]
fixed_step = "10ms"
sub_steps = 2

[logging]
level = "debug"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Physics.Gravity != [2]float64{0, -20} {
		t.Errorf("gravity = %v, want [0 -20]", cfg.Physics.Gravity)
	}
	if cfg.Physics.FixedStep != 10*time.Millisecond {
		t.Errorf("fixed step = %s, want 10ms", cfg.Physics.FixedStep)
	}
	if cfg.Physics.SubSteps != 2 {
		t.Errorf("sub steps = %d, want 2", cfg.Physics.SubSteps)
	}
	// Untouched sections keep their defaults.
	if cfg.Physics.MaxStepsPerUpdate != 8 {
		t.Errorf("max steps = %d, want default 8", cfg.Physics.MaxStepsPerUpdate)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "console" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
}

func TestLoadRejectsBadPhysics(t *testing.T) {
	path := writeConfig(t, "[physics]\nsub_steps = 0\n")
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for sub_steps = 0")
	}
	if !strings.Contains(err.Error(), "sub_steps") {
		t.Errorf("error %q should name the field", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestDefaultsFixedStep(t *testing.T) {
	cfg := Defaults()
	if cfg.Physics.FixedStep != time.Second/60 {
		t.Errorf("default fixed step = %s", cfg.Physics.FixedStep)
	}
	if err := cfg.validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}
