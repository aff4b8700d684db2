package assets

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// ID is a numeric asset handle. Zero means "no asset".
type ID uint32

// Kind tells textures and fonts apart in the registry.
type Kind uint8

const (
	KindTexture Kind = iota + 1
	KindFont
)

func (k Kind) String() string {
	switch k {
	case KindTexture:
		return "texture"
	case KindFont:
		return "font"
	}
	return "unknown"
}

type entry struct {
	kind Kind
	path string
}

// Manager maps asset files to numeric IDs and back. Decoding is the
// renderer's job; the manager only checks that the file exists and keeps
// the path so documents can be written with relative paths again.
// One Manager per scene context; nothing here is process global.
type Manager struct {
	byPath  map[string]ID
	entries map[ID]entry
	next    ID
	log     *zap.Logger
}

func NewManager(log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		byPath:  make(map[string]ID),
		entries: make(map[ID]entry),
		next:    1,
		log:     log,
	}
}

// LoadTexture registers a texture file and returns its ID. Loading the same
// path twice returns the same ID.
func (m *Manager) LoadTexture(path string) (ID, error) {
	return m.load(KindTexture, path)
}

// LoadFont registers a font file and returns its ID.
func (m *Manager) LoadFont(path string) (ID, error) {
	return m.load(KindFont, path)
}

func (m *Manager) load(kind Kind, path string) (ID, error) {
	key := filepath.Clean(path)
	if id, ok := m.byPath[key]; ok {
		if e := m.entries[id]; e.kind != kind {
			return 0, fmt.Errorf("load %s %s: already registered as %s", kind, key, e.kind)
		}
		return id, nil
	}
	info, err := os.Stat(key)
	if err != nil {
		return 0, fmt.Errorf("load %s: %w", kind, err)
	}
	if info.IsDir() {
		return 0, fmt.Errorf("load %s %s: is a directory", kind, key)
	}
	id := m.next
	m.next++
	m.byPath[key] = id
	m.entries[id] = entry{kind: kind, path: key}
	m.log.Debug("asset registered",
		zap.String("kind", kind.String()),
		zap.String("path", key),
		zap.Uint32("id", uint32(id)))
	return id, nil
}

// Path is the reverse lookup used by the serializer.
func (m *Manager) Path(id ID) (string, bool) {
	e, ok := m.entries[id]
	if !ok {
		return "", false
	}
	return e.path, true
}

// Count returns the number of registered assets.
func (m *Manager) Count() int {
	return len(m.entries)
}
