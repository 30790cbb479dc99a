package loaders

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mmalewski/Mech-Importer/engine/core"
)

// element is a generic XML tree. Descriptors are searched for elements by name
// at any depth, so they are decoded into this shape instead of fixed structs.
type element struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []element  `xml:",any"`
}

func (e *element) attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// walk visits e and its descendants depth first in document order. Returning
// false from fn skips the element's children.
func (e *element) walk(fn func(*element) bool) {
	if !fn(e) {
		return
	}
	for i := range e.Children {
		e.Children[i].walk(fn)
	}
}

// findAll returns every element called name, in document order.
func (e *element) findAll(name string) []*element {
	var out []*element
	e.walk(func(el *element) bool {
		if el.XMLName.Local == name {
			out = append(out, el)
		}
		return true
	})
	return out
}

// readDescriptor loads and decodes an XML descriptor, mapping failures onto
// core.ErrDescriptorNotFound and core.ErrMalformedDescriptor.
func readDescriptor(path string) (*element, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", core.ErrDescriptorNotFound, path)
		}
		return nil, fmt.Errorf("%w: read %s: %v", core.ErrDescriptorNotFound, path, err)
	}
	var root element
	if err := xml.NewDecoder(bytes.NewReader(raw)).Decode(&root); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", core.ErrMalformedDescriptor, path, err)
	}
	return &root, nil
}

// Paths resolves asset references found in descriptors. References are written
// relative to the game's object root and carry the authoring tool's
// extensions, which are swapped for the exported ones.
type Paths struct {
	BaseDir    string
	MeshExt    string
	TextureExt string
}

// Mesh resolves an attachment Binding to an importable mesh file.
func (p Paths) Mesh(ref string) string {
	return p.resolve(ref, p.MeshExt)
}

// Texture resolves a material Texture File.
func (p Paths) Texture(ref string) string {
	return p.resolve(ref, p.TextureExt)
}

func (p Paths) resolve(ref, ext string) string {
	ref = filepath.FromSlash(strings.ReplaceAll(ref, `\`, "/"))
	ref = strings.TrimSuffix(ref, filepath.Ext(ref))
	if ext != "" {
		ref += "." + strings.TrimPrefix(ext, ".")
	}
	if filepath.IsAbs(ref) {
		return ref
	}
	return filepath.Join(p.BaseDir, ref)
}

// ModelPaths is the fixed file layout around one model descriptor:
//
//	<base>/objects/mechs/<mech>/<mech>.cdf
//	<base>/objects/mechs/<mech>/body/<mech>.dae
//	<base>/objects/mechs/<mech>/body/<mech>_body.mtl
//	<base>/objects/mechs/<mech>/cockpit_standard/<mech>_a_cockpit_standard.mtl
type ModelPaths struct {
	Descriptor       string
	Mech             string
	MechDir          string
	BodyDir          string
	Skeleton         string
	Materials        string
	CockpitMaterials string
	Paths
}

func ResolveModelPaths(descriptor, meshExt, textureExt string) (ModelPaths, error) {
	abs, err := filepath.Abs(descriptor)
	if err != nil {
		return ModelPaths{}, fmt.Errorf("%w: %s: %v", core.ErrDescriptorNotFound, descriptor, err)
	}
	mechDir := filepath.Dir(abs)
	mech := strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs))
	bodyDir := filepath.Join(mechDir, "body")
	meshExt = strings.TrimPrefix(meshExt, ".")
	return ModelPaths{
		Descriptor:       abs,
		Mech:             mech,
		MechDir:          mechDir,
		BodyDir:          bodyDir,
		Skeleton:         filepath.Join(bodyDir, mech+"."+meshExt),
		Materials:        filepath.Join(bodyDir, mech+"_body.mtl"),
		CockpitMaterials: filepath.Join(mechDir, "cockpit_standard", mech+"_a_cockpit_standard.mtl"),
		Paths: Paths{
			BaseDir:    filepath.Clean(filepath.Join(mechDir, "..", "..", "..")),
			MeshExt:    meshExt,
			TextureExt: textureExt,
		},
	}, nil
}

// NormalizeBoneName applies the skeleton importer's naming, spaces become
// underscores.
func NormalizeBoneName(name string) string {
	return strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
}
