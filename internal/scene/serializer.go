package scene

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/l1jgo/scenegraph/internal/assets"
)

// anonymousName stands in for the missing name of anonymous entities.
const anonymousName = "<anonymous>"

// sceneDoc is the top-level scene document.
type sceneDoc struct {
	Gravity  mgl64.Vec2  `yaml:"Gravity,flow"`
	Entities []entityDoc `yaml:"Entities"`
}

type entityDoc struct {
	Name                      string                     `yaml:"Name"`
	ID                        string                     `yaml:"ID"`
	TransformComponent        *TransformComponent        `yaml:"TransformComponent,omitempty"`
	SpriteRendererComponent   *spriteDoc                 `yaml:"SpriteRendererComponent,omitempty"`
	CircleRendererComponent   *CircleRendererComponent   `yaml:"CircleRendererComponent,omitempty"`
	TextRendererComponent     *textDoc                   `yaml:"TextRendererComponent,omitempty"`
	RigidBodyComponent        *RigidBodyComponent        `yaml:"RigidBodyComponent,omitempty"`
	BoxCollider2DComponent    *BoxCollider2DComponent    `yaml:"BoxCollider2DComponent,omitempty"`
	CircleCollider2DComponent *CircleCollider2DComponent `yaml:"CircleCollider2DComponent,omitempty"`
	ScriptComponent           *scriptDoc                 `yaml:"ScriptComponent,omitempty"`
	Children                  []entityDoc                `yaml:"Children,omitempty"`
}

type spriteDoc struct {
	Color        mgl64.Vec4 `yaml:"Color,flow"`
	TilingFactor float64    `yaml:"TilingFactor"`
	Texture      string     `yaml:"Texture,omitempty"`
}

type textDoc struct {
	Text        string     `yaml:"Text"`
	Color       mgl64.Vec4 `yaml:"Color,flow"`
	Font        string     `yaml:"Font,omitempty"`
	Kerning     float64    `yaml:"Kerning"`
	LineSpacing float64    `yaml:"LineSpacing"`
}

type scriptDoc struct {
	Path string `yaml:"Path"`
}

// Serializer converts a scene to and from its YAML document.
type Serializer struct {
	scene *Scene
	log   *zap.Logger
}

func NewSerializer(s *Scene) *Serializer {
	return &Serializer{scene: s, log: s.log}
}

// Serialize writes every entity in display order: named roots, then
// anonymous entities in creation order, each followed by its children.
func (z *Serializer) Serialize() ([]byte, error) {
	doc := sceneDoc{Gravity: z.scene.gravity}
	for _, e := range z.scene.Roots() {
		doc.Entities = append(doc.Entities, z.entity(e))
	}
	out, err := yaml.Marshal(&doc)
	if err != nil {
		return nil, fmt.Errorf("marshal scene: %w", err)
	}
	return out, nil
}

// SerializeFile writes the scene document to path.
func (z *Serializer) SerializeFile(path string) error {
	out, err := z.Serialize()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write scene: %w", err)
	}
	return nil
}

func (z *Serializer) entity(e Entity) entityDoc {
	s := z.scene
	d := entityDoc{Name: s.Name(e), ID: s.ID(e).String()}
	if d.Name == "" {
		d.Name = anonymousName
	}
	if t, ok := Get[TransformComponent](s, e); ok {
		c := *t
		d.TransformComponent = &c
	}
	if sp, ok := Get[SpriteRendererComponent](s, e); ok {
		d.SpriteRendererComponent = &spriteDoc{
			Color:        sp.Color,
			TilingFactor: sp.TilingFactor,
			Texture:      z.assetPath(e, sp.Texture),
		}
	}
	if c, ok := Get[CircleRendererComponent](s, e); ok {
		cc := *c
		d.CircleRendererComponent = &cc
	}
	if tx, ok := Get[TextRendererComponent](s, e); ok {
		d.TextRendererComponent = &textDoc{
			Text:        tx.Text,
			Color:       tx.Color,
			Font:        z.assetPath(e, tx.Font),
			Kerning:     tx.Kerning,
			LineSpacing: tx.LineSpacing,
		}
	}
	if rb, ok := Get[RigidBodyComponent](s, e); ok {
		c := *rb
		d.RigidBodyComponent = &c
	}
	if bc, ok := Get[BoxCollider2DComponent](s, e); ok {
		c := *bc
		d.BoxCollider2DComponent = &c
	}
	if cc, ok := Get[CircleCollider2DComponent](s, e); ok {
		c := *cc
		d.CircleCollider2DComponent = &c
	}
	if sc, ok := Get[ScriptComponent](s, e); ok {
		path := sc.Path
		if sc.Program != nil {
			path = sc.Program.Path()
		}
		d.ScriptComponent = &scriptDoc{Path: z.relative(path)}
	}
	for _, c := range s.Children(e) {
		d.Children = append(d.Children, z.entity(c))
	}
	return d
}

func (z *Serializer) assetPath(e Entity, id assets.ID) string {
	if id == 0 || z.scene.res.Assets == nil {
		return ""
	}
	p, ok := z.scene.res.Assets.Path(id)
	if !ok {
		z.log.Warn("asset id has no path", zap.String("entity", z.scene.label(e)), zap.Uint32("id", uint32(id)))
		return ""
	}
	return z.relative(p)
}

func (z *Serializer) relative(p string) string {
	if p == "" {
		return ""
	}
	if base := z.scene.res.BaseDir; base != "" {
		if rel, err := filepath.Rel(base, p); err == nil {
			p = rel
		}
	}
	return filepath.ToSlash(p)
}

func (z *Serializer) resolve(p string) string {
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) || z.scene.res.BaseDir == "" {
		return p
	}
	return filepath.Join(z.scene.res.BaseDir, p)
}

// DeserializeFile reads a scene document from path and appends its entities.
func (z *Serializer) DeserializeFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read scene: %w", err)
	}
	return z.Deserialize(raw)
}

// Deserialize appends the document's entities to the scene. Problems inside
// a single entity are logged and loading continues; only a document that is
// not a scene at all is an error.
func (z *Serializer) Deserialize(raw []byte) error {
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return fmt.Errorf("parse scene: %w", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 || root.Content[0].Kind != yaml.MappingNode {
		return fmt.Errorf("parse scene: %w", errNotScene)
	}
	top := root.Content[0]

	var entities *yaml.Node
	for i := 0; i+1 < len(top.Content); i += 2 {
		key, val := top.Content[i], top.Content[i+1]
		switch key.Value {
		case "Gravity":
			var g mgl64.Vec2
			if err := val.Decode(&g); err != nil {
				return fmt.Errorf("parse scene gravity (line %d): %w", val.Line, err)
			}
			z.scene.gravity = g
		case "Entities":
			if val.Kind != yaml.SequenceNode && !isNull(val) {
				return fmt.Errorf("parse scene: Entities (line %d) is not a list", val.Line)
			}
			entities = val
		}
	}
	if entities == nil {
		return nil
	}
	for _, n := range entities.Content {
		z.loadEntity(n, 0)
	}
	return nil
}

var errNotScene = errors.New("document is not a scene mapping")

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

func (z *Serializer) loadEntity(n *yaml.Node, parent Entity) {
	s := z.scene
	if n.Kind != yaml.MappingNode {
		z.log.Error("entity is not a mapping, skipping", zap.Int("line", n.Line))
		return
	}

	var name, rawID string
	var children *yaml.Node
	for i := 0; i+1 < len(n.Content); i += 2 {
		switch n.Content[i].Value {
		case "Name":
			name = n.Content[i+1].Value
		case "ID":
			rawID = n.Content[i+1].Value
		case "Children":
			children = n.Content[i+1]
		}
	}
	name = normalizeName(name)
	if name == anonymousName {
		name = ""
	}

	id, err := uuid.Parse(rawID)
	if err != nil || id == uuid.Nil {
		if rawID != "" {
			z.log.Warn("invalid entity id, generating a new one",
				zap.String("entity", name), zap.String("id", rawID), zap.Int("line", n.Line))
		}
		id = uuid.New()
	}
	if _, taken := s.ids[id]; taken {
		z.log.Warn("duplicate entity id, generating a new one", zap.String("entity", name), zap.Int("line", n.Line))
		id = uuid.New()
	}

	var e Entity
	switch {
	case name == "" && parent != 0:
		z.log.Error("anonymous entity cannot be a child, skipping subtree",
			zap.String("parent", s.label(parent)), zap.Int("line", n.Line))
		return
	case name == "":
		e = s.create("", id)
		s.anonymous = append(s.anonymous, e)
	case !s.NameAvailable(name):
		z.log.Error("duplicate entity name, skipping subtree", zap.String("entity", name), zap.Int("line", n.Line))
		return
	default:
		e = s.create(name, id)
		s.rootOrder = append(s.rootOrder, name)
		if parent != 0 {
			if err := s.SetChild(parent, e, false); err != nil {
				z.log.Error("attach child", zap.String("entity", name), zap.Error(err))
			}
		}
	}

	label := s.label(e)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		switch key.Value {
		case "Name", "ID", "Children":
			continue
		}
		if err := z.loadComponent(e, key.Value, val); err != nil {
			z.log.Error("malformed component, skipping the rest of the entity",
				zap.String("entity", label), zap.String("section", key.Value),
				zap.Int("line", val.Line), zap.Error(err))
			break
		}
	}

	if children == nil || isNull(children) {
		return
	}
	if children.Kind != yaml.SequenceNode {
		z.log.Error("children is not a list", zap.String("entity", label), zap.Int("line", children.Line))
		return
	}
	for _, c := range children.Content {
		z.loadEntity(c, e)
	}
}

// loadComponent decodes one component section. Missing fields keep the
// component defaults.
func (z *Serializer) loadComponent(e Entity, section string, n *yaml.Node) error {
	s := z.scene
	switch section {
	case "TransformComponent":
		c := IdentityTransform()
		if t, ok := Get[TransformComponent](s, e); ok {
			c = *t
		}
		if err := n.Decode(&c); err != nil {
			return err
		}
		Add(s, e, c)
	case "SpriteRendererComponent":
		def := defaultSprite()
		d := spriteDoc{Color: def.Color, TilingFactor: def.TilingFactor}
		if err := n.Decode(&d); err != nil {
			return err
		}
		Add(s, e, SpriteRendererComponent{
			Color:        d.Color,
			TilingFactor: d.TilingFactor,
			Texture:      z.loadAsset(e, d.Texture, assets.KindTexture),
		})
	case "CircleRendererComponent":
		c := defaultCircle()
		if err := n.Decode(&c); err != nil {
			return err
		}
		Add(s, e, c)
	case "TextRendererComponent":
		def := defaultText()
		d := textDoc{Color: def.Color}
		if err := n.Decode(&d); err != nil {
			return err
		}
		Add(s, e, TextRendererComponent{
			Text:        d.Text,
			Color:       d.Color,
			Font:        z.loadAsset(e, d.Font, assets.KindFont),
			Kerning:     d.Kerning,
			LineSpacing: d.LineSpacing,
		})
	case "RigidBodyComponent":
		c := defaultRigidBody()
		if err := n.Decode(&c); err != nil {
			return err
		}
		Add(s, e, c)
	case "BoxCollider2DComponent":
		c := defaultBoxCollider()
		if err := n.Decode(&c); err != nil {
			return err
		}
		Add(s, e, c)
	case "CircleCollider2DComponent":
		c := defaultCircleCollider()
		if err := n.Decode(&c); err != nil {
			return err
		}
		Add(s, e, c)
	case "ScriptComponent":
		var d scriptDoc
		if err := n.Decode(&d); err != nil {
			return err
		}
		Add(s, e, z.loadScript(e, d.Path))
	default:
		z.log.Warn("unknown component section ignored",
			zap.String("entity", s.label(e)), zap.String("section", section), zap.Int("line", n.Line))
	}
	return nil
}

func (z *Serializer) loadAsset(e Entity, rel string, kind assets.Kind) assets.ID {
	if rel == "" {
		return 0
	}
	am := z.scene.res.Assets
	if am == nil {
		z.log.Error("no asset manager, leaving asset unset",
			zap.String("entity", z.scene.label(e)), zap.String("path", rel))
		return 0
	}
	path := z.resolve(rel)
	var id assets.ID
	var err error
	if kind == assets.KindFont {
		id, err = am.LoadFont(path)
	} else {
		id, err = am.LoadTexture(path)
	}
	if err != nil {
		z.log.Error("load asset", zap.String("entity", z.scene.label(e)),
			zap.Stringer("kind", kind), zap.String("path", path), zap.Error(err))
		return 0
	}
	return id
}

func (z *Serializer) loadScript(e Entity, rel string) ScriptComponent {
	if rel == "" {
		return ScriptComponent{}
	}
	path := z.resolve(rel)
	sc := ScriptComponent{Path: path}
	if z.scene.res.Scripts == nil {
		z.log.Error("no script loader, leaving script unbound",
			zap.String("entity", z.scene.label(e)), zap.String("path", rel))
		return sc
	}
	prog, err := z.scene.res.Scripts.CompileOrLoad(path)
	if err != nil {
		z.log.Error("load script", zap.String("entity", z.scene.label(e)),
			zap.String("path", path), zap.Error(err))
		return sc
	}
	sc.Program = prog
	return sc
}
