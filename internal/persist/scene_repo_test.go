package persist

import (
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/l1jgo/scenegraph/internal/config"
)

func TestChecksum(t *testing.T) {
	a := Checksum([]byte("Entities: []\n"))
	if len(a) != 64 {
		t.Fatalf("checksum length = %d, want 64 hex chars", len(a))
	}
	if a != Checksum([]byte("Entities: []\n")) {
		t.Error("checksum not deterministic")
	}
	if a == Checksum([]byte("Entities: [ ]\n")) {
		t.Error("different documents share a checksum")
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	files, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Fatal("no migrations embedded")
	}
	raw, err := fs.ReadFile(migrations, files[0])
	if err != nil {
		t.Fatal(err)
	}
	src := string(raw)
	if !strings.Contains(src, "-- +goose Up") || !strings.Contains(src, "-- +goose Down") {
		t.Error("migration lacks goose annotations")
	}
}

func TestPoolConfig(t *testing.T) {
	cfg := config.Defaults().Database
	cfg.MaxOpenConns = 3
	cfg.MaxIdleConns = 5
	pc, err := poolConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if pc.MaxConns != 3 {
		t.Errorf("MaxConns = %d, want 3", pc.MaxConns)
	}
	if pc.MinConns != 0 {
		t.Errorf("MinConns = %d, idle count above the pool size must be ignored", pc.MinConns)
	}
	if pc.MaxConnLifetime != 30*time.Minute {
		t.Errorf("MaxConnLifetime = %s", pc.MaxConnLifetime)
	}
	if pc.ConnConfig.RuntimeParams["application_name"] != "scenegraph" {
		t.Error("application_name not set")
	}

	cfg.DSN = "postgres://%zz"
	if _, err := poolConfig(cfg); err == nil {
		t.Error("bad dsn accepted")
	}
}
