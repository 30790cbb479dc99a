package systems

import (
	"fmt"
	"sort"

	"github.com/mmalewski/Mech-Importer/engine/assets"
	"github.com/mmalewski/Mech-Importer/engine/assets/loaders"
	"github.com/mmalewski/Mech-Importer/engine/core"
	"github.com/mmalewski/Mech-Importer/engine/scene"
)

/** @brief The shader every imported material uses. */
const DefaultShaderName string = "principled"

// MaterialSet maps material names to built materials for one model.
type MaterialSet struct {
	byName map[string]*scene.Material
}

func NewMaterialSet() *MaterialSet {
	return &MaterialSet{byName: make(map[string]*scene.Material)}
}

func (s *MaterialSet) Put(m *scene.Material) {
	s.byName[m.Name] = m
}

func (s *MaterialSet) Get(name string) (*scene.Material, bool) {
	if s == nil {
		return nil, false
	}
	m, ok := s.byName[name]
	return m, ok
}

func (s *MaterialSet) Has(name string) bool {
	_, ok := s.Get(name)
	return ok
}

// Names returns the material names sorted.
func (s *MaterialSet) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.byName))
	for n := range s.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (s *MaterialSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.byName)
}

// ShadingSystem turns a material record into a shaded material.
type ShadingSystem interface {
	BuildMaterial(rec loaders.MaterialRecord) (*scene.Material, error)
}

// PrincipledShading wires the record's textures into a principled surface
// shader. Slots whose texture file is missing are left unwired.
type PrincipledShading struct {
	textures assets.TextureProber
}

func NewPrincipledShading(textures assets.TextureProber) *PrincipledShading {
	return &PrincipledShading{textures: textures}
}

type socketInfo struct {
	socket     string
	colorSpace string
	normalMap  bool
}

var slotSockets = map[loaders.SlotKind]socketInfo{
	loaders.SlotDiffuse:  {socket: "Base Color", colorSpace: "sRGB"},
	loaders.SlotSpecular: {socket: "Specular", colorSpace: "Non-Color"},
	loaders.SlotBumpmap:  {socket: "Normal", colorSpace: "Non-Color", normalMap: true},
}

func (ps *PrincipledShading) BuildMaterial(rec loaders.MaterialRecord) (*scene.Material, error) {
	if rec.Name == "" {
		return nil, fmt.Errorf("material record without a name")
	}
	m := &scene.Material{Name: rec.Name, Shader: DefaultShaderName}
	for _, kind := range loaders.SlotKinds {
		path, ok := rec.TextureSlots[kind]
		if !ok {
			continue
		}
		info, err := ps.textures.Probe(path)
		if err != nil {
			core.LogDebug("material '%s': %s texture skipped: %s", rec.Name, kind, err)
			continue
		}
		s := slotSockets[kind]
		m.Inputs = append(m.Inputs, scene.TextureInput{
			Socket:     s.socket,
			Path:       info.Path,
			ColorSpace: s.colorSpace,
			NormalMap:  s.normalMap,
			Width:      info.Width,
			Height:     info.Height,
		})
	}
	return m, nil
}

// MaterialSystem loads material descriptors into material sets.
type MaterialSystem struct {
	shading ShadingSystem
}

func NewMaterialSystem(shading ShadingSystem) *MaterialSystem {
	return &MaterialSystem{shading: shading}
}

// Load parses the descriptor at path and builds every material in name
// order. The returned error wraps core.ErrDescriptorNotFound or
// core.ErrMalformedDescriptor; materials the shading system rejects are
// logged and left out.
func (ms *MaterialSystem) Load(path string, paths loaders.Paths) (*MaterialSet, error) {
	records, err := loaders.ParseMaterials(path, paths)
	if err != nil {
		return NewMaterialSet(), err
	}
	names := make([]string, 0, len(records))
	for name := range records {
		names = append(names, name)
	}
	sort.Strings(names)

	set := NewMaterialSet()
	for _, name := range names {
		m, err := ms.shading.BuildMaterial(records[name])
		if err != nil {
			core.LogError("material '%s': %s", name, err)
			continue
		}
		set.Put(m)
	}
	core.LogInfo("loaded %d materials from %s", set.Len(), path)
	return set, nil
}
