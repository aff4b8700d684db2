package data

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Material holds the physical surface properties a collider refers to by name.
// Only Density, Friction, Restitution, Sensor and UpdateBodyMass affect the
// simulation; the event and rolling flags are carried for round-tripping.
type Material struct {
	Name                  string  `yaml:"-"`
	Density               float64 `yaml:"Density"`
	Friction              float64 `yaml:"Friction"`
	Restitution           float64 `yaml:"Restitution"`
	RollingResistance     float64 `yaml:"RollingResistance"`
	DebugColor            uint32  `yaml:"DebugColor"`
	Sensor                bool    `yaml:"Sensor"`
	EnableContactEvents   bool    `yaml:"EnableContactEvents"`
	EnableHitEvents       bool    `yaml:"EnableHitEvents"`
	EnablePreSolveEvents  bool    `yaml:"EnablePreSolveEvents"`
	InvokeContactCreation bool    `yaml:"InvokeContactCreation"`
	UpdateBodyMass        bool    `yaml:"UpdateBodyMass"`
}

// DefaultMaterial is used by colliders with no material or an unknown one.
func DefaultMaterial() Material {
	return Material{
		Name:                "Default",
		Density:             1,
		Friction:            0.6,
		Restitution:         0,
		EnableContactEvents: true,
		UpdateBodyMass:      true,
	}
}

// MaterialTable holds all materials indexed by name.
type MaterialTable struct {
	materials map[string]*Material
}

// NewMaterialTable returns an empty table.
func NewMaterialTable() *MaterialTable {
	return &MaterialTable{materials: make(map[string]*Material)}
}

// LoadMaterialTable loads a materials document (name -> properties) from a YAML file.
func LoadMaterialTable(path string) (*MaterialTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read materials: %w", err)
	}
	return ParseMaterialTable(raw)
}

// ParseMaterialTable decodes a materials document.
func ParseMaterialTable(raw []byte) (*MaterialTable, error) {
	var f map[string]Material
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse materials: %w", err)
	}
	t := NewMaterialTable()
	for name, m := range f {
		m.Name = name
		t.Set(m)
	}
	return t, nil
}

// Set adds or replaces a material.
func (t *MaterialTable) Set(m Material) {
	cp := m
	t.materials[m.Name] = &cp
}

// Material returns a material by name.
func (t *MaterialTable) Material(name string) (Material, bool) {
	if t == nil {
		return Material{}, false
	}
	m, ok := t.materials[name]
	if !ok {
		return Material{}, false
	}
	return *m, true
}

// Names returns the material names in sorted order.
func (t *MaterialTable) Names() []string {
	names := make([]string, 0, len(t.materials))
	for name := range t.materials {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of loaded materials.
func (t *MaterialTable) Count() int {
	return len(t.materials)
}

// Marshal encodes the table back into a materials document.
func (t *MaterialTable) Marshal() ([]byte, error) {
	out := make(map[string]Material, len(t.materials))
	for name, m := range t.materials {
		out[name] = *m
	}
	raw, err := yaml.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("marshal materials: %w", err)
	}
	return raw, nil
}
