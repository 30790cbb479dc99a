package loaders

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mmalewski/Mech-Importer/engine/core"
	"github.com/mmalewski/Mech-Importer/engine/math"
	"github.com/mmalewski/Mech-Importer/engine/scene"
)

var (
	ErrNoGeometry = errors.New("collada: document has no nodes")
	ErrNoJoints   = errors.New("collada: document has no joints")
	// ErrBadPrimitive marks polygon data that does not match its index list.
	ErrBadPrimitive = errors.New("collada: malformed primitive")
)

// Collada is the subset of a COLLADA 1.4 document the importer reads.
type Collada struct {
	Geometries   []Geometry        `xml:"library_geometries>geometry"`
	Materials    []ColladaMaterial `xml:"library_materials>material"`
	Controllers  []Controller      `xml:"library_controllers>controller"`
	VisualScenes []VisualScene     `xml:"library_visual_scenes>visual_scene"`
}

// Geometry represents Collada's geometry
type Geometry struct {
	Mesh Mesh   `xml:"mesh"`
	ID   string `xml:"id,attr"`
	Name string `xml:"name,attr"`
}

// Mesh contains all the primitive data
type Mesh struct {
	Source    []Source    `xml:"source"`
	Vertices  Vertices    `xml:"vertices"`
	Triangles []Triangles `xml:"triangles"`
	Polylists []Triangles `xml:"polylist"`
}

// Source links to other sources where data is present
type Source struct {
	ID     string `xml:"id,attr"`
	Floats Floats `xml:"float_array"`
	// technique_common define accessing rules, add if needed
}

// Floats is the array of floats
type Floats struct {
	ID   string
	Data []float32
}

// UnmarshalXML unmarshals the array of floats
func (f *Floats) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for _, attr := range start.Attr {
		switch attr.Name.Local {
		case "id":
			f.ID = attr.Value
		}
	}
	var raw string
	if err := d.DecodeElement(&raw, &start); err != nil {
		return err
	}
	for _, r := range strings.Fields(raw) {
		num, err := strconv.ParseFloat(r, 32)
		if err != nil {
			return err
		}
		f.Data = append(f.Data, float32(num))
	}
	return nil
}

// Vertices contains the list of vertices
type Vertices struct {
	ID     string  `xml:"id,attr"`
	Inputs []Input `xml:"input"`
}

// Triangles holds a <triangles> or <polylist> primitive. VCount is only set
// for polylists.
type Triangles struct {
	Count    int     `xml:"count,attr"`
	Material string  `xml:"material,attr"`
	Inputs   []Input `xml:"input"`
	VCount   []int
	Index    []int
}

// UnmarshalXML parses the index list
func (t *Triangles) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for _, attr := range start.Attr {
		switch attr.Name.Local {
		case "count":
			num, err := strconv.Atoi(attr.Value)
			if err != nil {
				return err
			}
			t.Count = num
		case "material":
			t.Material = attr.Value
		}
	}

	for {
		token, err := d.Token()
		if err != nil {
			return err
		}

		switch el := token.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "input":
				var input Input
				err := d.DecodeElement(&input, &el)
				if err != nil {
					return err
				}
				t.Inputs = append(t.Inputs, input)
			case "p", "vcount":
				ints, err := decodeInts(d, el)
				if err != nil {
					return err
				}
				if el.Name.Local == "p" {
					t.Index = ints
				} else {
					t.VCount = ints
				}
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			if el == start.End() {
				return nil
			}
		}
	}
}

func decodeInts(d *xml.Decoder, el xml.StartElement) ([]int, error) {
	var raw string
	if err := d.DecodeElement(&raw, &el); err != nil {
		return nil, err
	}
	fields := strings.Fields(raw)
	ints := make([]int, 0, len(fields))
	for _, r := range fields {
		num, err := strconv.Atoi(r)
		if err != nil {
			return nil, err
		}
		ints = append(ints, num)
	}
	return ints, nil
}

// Input is Collada'a input type
type Input struct {
	Semantic string `xml:"semantic,attr"`
	Source   string `xml:"source,attr"`
	Offset   uint   `xml:"offset,attr"`
}

type ColladaMaterial struct {
	ID   string `xml:"id,attr"`
	Name string `xml:"name,attr"`
}

type Controller struct {
	ID   string `xml:"id,attr"`
	Skin struct {
		Source string `xml:"source,attr"`
	} `xml:"skin"`
}

type VisualScene struct {
	ID    string        `xml:"id,attr"`
	Name  string        `xml:"name,attr"`
	Nodes []ColladaNode `xml:"node"`
}

type ColladaNode struct {
	ID                  string             `xml:"id,attr"`
	Name                string             `xml:"name,attr"`
	SID                 string             `xml:"sid,attr"`
	Type                string             `xml:"type,attr"`
	Matrix              *Floats            `xml:"matrix"`
	Translate           *Floats            `xml:"translate"`
	InstanceGeometry    []InstanceGeometry `xml:"instance_geometry"`
	InstanceControllers []InstanceGeometry `xml:"instance_controller"`
	Children            []ColladaNode      `xml:"node"`
}

// InstanceGeometry covers <instance_geometry> and <instance_controller>.
type InstanceGeometry struct {
	URL       string             `xml:"url,attr"`
	Materials []InstanceMaterial `xml:"bind_material>technique_common>instance_material"`
}

type InstanceMaterial struct {
	Symbol string `xml:"symbol,attr"`
	Target string `xml:"target,attr"`
}

func (n *ColladaNode) label() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID
}

func (n *ColladaNode) isJoint() bool {
	return strings.EqualFold(n.Type, "JOINT")
}

// local returns the node transform. COLLADA matrices are row major.
func (n *ColladaNode) local() math.Mat4 {
	if n.Matrix != nil && len(n.Matrix.Data) == 16 {
		var m math.Mat4
		copy(m[:], n.Matrix.Data)
		return m.Transpose()
	}
	if n.Translate != nil && len(n.Translate.Data) == 3 {
		t := n.Translate.Data
		return mgl32.Translate3D(t[0], t[1], t[2])
	}
	return mgl32.Ident4()
}

// DecodeCollada reads a .dae file.
func DecodeCollada(path string) (*Collada, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("collada: read %s: %w", path, err)
	}
	var doc Collada
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("collada: parse %s: %w", path, err)
	}
	return &doc, nil
}

// ColladaImporter turns COLLADA documents into detached scene nodes. Nothing
// is linked into a scene here; callers decide when the nodes become visible.
type ColladaImporter struct{}

func NewColladaImporter() *ColladaImporter {
	return &ColladaImporter{}
}

// ImportMesh returns one node per visual scene node in document order. Joint
// nodes are skipped, their children are not.
func (ci *ColladaImporter) ImportMesh(path string) ([]*scene.Node, error) {
	doc, err := DecodeCollada(path)
	if err != nil {
		return nil, err
	}
	b := &meshBuilder{doc: doc}
	var nodes []*scene.Node
	for _, vs := range doc.VisualScenes {
		for i := range vs.Nodes {
			if nodes, err = b.visit(&vs.Nodes[i], mgl32.Ident4(), nil, nodes); err != nil {
				return nil, fmt.Errorf("collada: %s: %w", path, err)
			}
		}
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoGeometry, path)
	}
	core.LogDebug("imported %d nodes from %s", len(nodes), filepath.Base(path))
	return nodes, nil
}

type meshBuilder struct {
	doc *Collada
}

func (b *meshBuilder) visit(cn *ColladaNode, parentWorld math.Mat4, parent *scene.Node, out []*scene.Node) ([]*scene.Node, error) {
	var err error
	world := parentWorld.Mul4(cn.local())
	if cn.isJoint() {
		for i := range cn.Children {
			if out, err = b.visit(&cn.Children[i], world, parent, out); err != nil {
				return nil, err
			}
		}
		return out, nil
	}

	node := scene.NewNode(cn.label(), scene.NodeEmpty)
	node.World = world
	node.SetParent(parent)
	mesh, err := b.mesh(cn)
	if err != nil {
		return nil, fmt.Errorf("node '%s': %w", node.Name, err)
	}
	if mesh != nil {
		node.Type = scene.NodeMesh
		node.Mesh = mesh
	}
	out = append(out, node)
	for i := range cn.Children {
		if out, err = b.visit(&cn.Children[i], world, node, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// mesh builds the first geometry instanced by cn, directly or through a skin
// controller.
func (b *meshBuilder) mesh(cn *ColladaNode) (*scene.Mesh, error) {
	instances := append([]InstanceGeometry{}, cn.InstanceGeometry...)
	for _, ic := range cn.InstanceControllers {
		for _, c := range b.doc.Controllers {
			if c.ID == strings.TrimPrefix(ic.URL, "#") {
				instances = append(instances, InstanceGeometry{URL: c.Skin.Source, Materials: ic.Materials})
			}
		}
	}
	for _, inst := range instances {
		g := b.geometry(inst.URL)
		if g == nil {
			continue
		}
		return buildMesh(g, b.materialNames(inst.Materials))
	}
	return nil, nil
}

func (b *meshBuilder) geometry(url string) *Geometry {
	id := strings.TrimPrefix(url, "#")
	for i := range b.doc.Geometries {
		if b.doc.Geometries[i].ID == id {
			return &b.doc.Geometries[i]
		}
	}
	return nil
}

// materialNames maps primitive material symbols to library material names.
func (b *meshBuilder) materialNames(bound []InstanceMaterial) map[string]string {
	names := make(map[string]string, len(bound))
	for _, im := range bound {
		target := strings.TrimPrefix(im.Target, "#")
		name := target
		for _, m := range b.doc.Materials {
			if m.ID == target && m.Name != "" {
				name = m.Name
			}
		}
		names[im.Symbol] = name
	}
	return names
}

func buildMesh(g *Geometry, materialNames map[string]string) (*scene.Mesh, error) {
	mesh := &scene.Mesh{Name: g.Name}
	if mesh.Name == "" {
		mesh.Name = g.ID
	}

	if pos := findSource(g.Mesh.Source, positionSource(g.Mesh.Vertices)); pos != nil {
		data := pos.Floats.Data
		for i := 0; i+2 < len(data); i += 3 {
			mesh.Vertices = append(mesh.Vertices, math.Vec3{data[i], data[i+1], data[i+2]})
		}
	}

	slotIndex := make(map[string]int)
	prims := append(append([]Triangles{}, g.Mesh.Triangles...), g.Mesh.Polylists...)
	for _, p := range prims {
		if p.Material != "" {
			if _, ok := slotIndex[p.Material]; !ok {
				slotIndex[p.Material] = len(mesh.Materials)
				name := materialNames[p.Material]
				if name == "" {
					name = p.Material
				}
				mesh.Materials = append(mesh.Materials, &scene.MaterialSlot{Name: name})
			}
		}
		polys, err := faces(p, uint32(len(mesh.Vertices)))
		if err != nil {
			return nil, fmt.Errorf("geometry '%s': %w", mesh.Name, err)
		}
		mesh.Faces = append(mesh.Faces, polys...)
	}
	mesh.Edges = edgesOf(mesh.Faces)
	return mesh, nil
}

func positionSource(v Vertices) string {
	for _, in := range v.Inputs {
		if in.Semantic == "POSITION" {
			return in.Source
		}
	}
	return ""
}

// findSource matches by id, ignoring the leading '#'.
func findSource(sources []Source, ref string) *Source {
	id := strings.TrimPrefix(ref, "#")
	for i := range sources {
		if sources[i].ID == id {
			return &sources[i]
		}
	}
	return nil
}

// faces extracts the vertex indices of each polygon. Indices outside the
// vertex array drop the polygon; a vertex count that is not positive or runs
// past the index list fails the primitive.
func faces(p Triangles, vertexCount uint32) ([][]uint32, error) {
	stride := 0
	vertexOffset := -1
	for _, in := range p.Inputs {
		if int(in.Offset)+1 > stride {
			stride = int(in.Offset) + 1
		}
		if in.Semantic == "VERTEX" {
			vertexOffset = int(in.Offset)
		}
	}
	if stride == 0 || vertexOffset < 0 {
		return nil, nil
	}

	counts := p.VCount
	if counts == nil {
		counts = make([]int, len(p.Index)/(stride*3))
		for i := range counts {
			counts[i] = 3
		}
	}

	var out [][]uint32
	cursor := 0
	for i, n := range counts {
		if n <= 0 {
			return nil, fmt.Errorf("%w: polygon %d has vertex count %d", ErrBadPrimitive, i, n)
		}
		if n > (len(p.Index)-cursor)/stride {
			return nil, fmt.Errorf("%w: polygon %d needs %d vertices, %d indices left", ErrBadPrimitive, i, n, len(p.Index)-cursor)
		}
		face := make([]uint32, 0, n)
		valid := true
		for k := 0; k < n; k++ {
			idx := p.Index[cursor+k*stride+vertexOffset]
			if idx < 0 || uint32(idx) >= vertexCount {
				valid = false
			}
			face = append(face, uint32(idx))
		}
		cursor += n * stride
		if valid {
			out = append(out, face)
		}
	}
	return out, nil
}

// edgesOf lists each undirected face edge once, in first seen order.
func edgesOf(faces [][]uint32) [][2]uint32 {
	seen := make(map[[2]uint32]bool)
	var edges [][2]uint32
	for _, f := range faces {
		for i := range f {
			a, b := f[i], f[(i+1)%len(f)]
			if a > b {
				a, b = b, a
			}
			e := [2]uint32{a, b}
			if !seen[e] {
				seen[e] = true
				edges = append(edges, e)
			}
		}
	}
	return edges
}

// ImportSkeleton builds an armature node from the JOINT hierarchy of a
// document. The node is named after the file.
func (ci *ColladaImporter) ImportSkeleton(path string) (*scene.Node, error) {
	doc, err := DecodeCollada(path)
	if err != nil {
		return nil, err
	}
	arm := scene.NewArmature()
	for _, vs := range doc.VisualScenes {
		for i := range vs.Nodes {
			if err := addJoints(arm, &vs.Nodes[i], mgl32.Ident4(), ""); err != nil {
				return nil, fmt.Errorf("collada: %s: %w", path, err)
			}
		}
	}
	if arm.Len() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoJoints, path)
	}
	assignTails(arm)

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	core.LogDebug("imported skeleton '%s' with %d bones", name, arm.Len())
	return scene.NewArmatureNode(name, arm), nil
}

func addJoints(arm *scene.Armature, cn *ColladaNode, parentWorld math.Mat4, parentBone string) error {
	world := parentWorld.Mul4(cn.local())
	next := parentBone
	if cn.isJoint() {
		bone := &scene.Bone{
			Name:            NormalizeBoneName(cn.label()),
			Parent:          parentBone,
			Head:            math.Translation(world),
			Deform:          true,
			InheritRotation: true,
		}
		if err := arm.AddBone(bone); err != nil {
			return err
		}
		next = bone.Name
	}
	for i := range cn.Children {
		if err := addJoints(arm, &cn.Children[i], world, next); err != nil {
			return err
		}
	}
	return nil
}

const minBoneLength = 0.05

// assignTails connects each bone to its only child, or to the mean of its
// children heads. Leaves continue their parent's direction at half its length.
func assignTails(arm *scene.Armature) {
	for _, b := range arm.Bones() {
		children := arm.Children(b.Name)
		if len(children) > 0 {
			var sum math.Vec3
			for _, c := range children {
				sum = sum.Add(c.Head)
			}
			mean := sum.Mul(1 / float32(len(children)))
			if mean.Sub(b.Head).Len() >= minBoneLength {
				b.Tail = mean
				continue
			}
		}
		b.Tail = leafTail(arm, b)
	}
}

func leafTail(arm *scene.Armature, b *scene.Bone) math.Vec3 {
	if p, ok := arm.Bone(b.Parent); ok {
		dir := b.Head.Sub(p.Head)
		if l := dir.Len(); l >= minBoneLength {
			return b.Head.Add(dir.Normalize().Mul(mgl32.Clamp(l*0.5, minBoneLength, l)))
		}
	}
	return b.Head.Add(math.AxisUp.Mul(minBoneLength * 2))
}
