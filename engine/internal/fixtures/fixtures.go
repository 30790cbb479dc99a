// Package fixtures writes small model trees (descriptors, COLLADA skeletons and
// parts) for tests.
package fixtures

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Joint is a skeleton joint with its head in world space.
type Joint struct {
	Name     string
	Head     [3]float32
	Children []Joint
}

// Biped returns a Bip01 style skeleton. Joint names use spaces the way the
// game's exporter writes them. With reverseKnees the calves sit behind the
// feet on the depth axis; withElbows adds the extra elbow joints.
func Biped(reverseKnees, withElbows bool) Joint {
	calfDepth := float32(0.2)
	if reverseKnees {
		calfDepth = -0.5
	}
	leg := func(side string, x float32) Joint {
		return Joint{Name: "Bip01 " + side + " Thigh", Head: [3]float32{x, 0, 2}, Children: []Joint{
			{Name: "Bip01 " + side + " Calf", Head: [3]float32{x, calfDepth, 1}, Children: []Joint{
				{Name: "Bip01 " + side + " Foot", Head: [3]float32{x, 0, 0.1}},
			}},
		}}
	}
	arm := func(side string, x float32) Joint {
		hand := Joint{Name: "Bip01 " + side + " Hand", Head: [3]float32{x * 2.2, 0, 3}}
		forearm := Joint{Name: "Bip01 " + side + " Forearm", Head: [3]float32{x * 1.8, 0, 3}, Children: []Joint{hand}}
		if withElbows {
			forearm.Children = append(forearm.Children, Joint{Name: "Bip01 " + side + " Elbow", Head: [3]float32{x * 1.8, 0.1, 3}})
		}
		return Joint{Name: "Bip01 " + side + " UpperArm", Head: [3]float32{x * 1.2, 0, 3}, Children: []Joint{forearm}}
	}
	return Joint{Name: "Bip01", Head: [3]float32{0, 0, 0}, Children: []Joint{
		{Name: "Bip01 Pelvis", Head: [3]float32{0, 0, 2}, Children: []Joint{
			{Name: "Bip01 Pitch", Head: [3]float32{0, 0, 2.2}, Children: []Joint{
				{Name: "Bip01 Spine", Head: [3]float32{0, 0, 2.6}, Children: []Joint{
					arm("R", -0.5),
					arm("L", 0.5),
				}},
			}},
			leg("R", -0.4),
			leg("L", 0.4),
		}},
	}}
}

const colladaHeader = `<?xml version="1.0" encoding="utf-8"?>
<COLLADA xmlns="http://www.collada.org/2005/11/COLLADASchema" version="1.4.1">
`

func translation(x, y, z float32) string {
	return fmt.Sprintf("1 0 0 %g 0 1 0 %g 0 0 1 %g 0 0 0 1", x, y, z)
}

// SkeletonDAE renders root as a JOINT hierarchy under an armature node.
func SkeletonDAE(root Joint) string {
	var b strings.Builder
	b.WriteString(colladaHeader)
	b.WriteString(`<library_visual_scenes><visual_scene id="Scene" name="Scene">
<node id="Armature" name="Armature" type="NODE">
<matrix sid="transform">` + translation(0, 0, 0) + `</matrix>
`)
	writeJoint(&b, root, [3]float32{})
	b.WriteString("</node>\n</visual_scene></library_visual_scenes>\n</COLLADA>\n")
	return b.String()
}

func writeJoint(b *strings.Builder, j Joint, parent [3]float32) {
	id := strings.ReplaceAll(j.Name, " ", "_")
	fmt.Fprintf(b, `<node id="%s" name="%s" sid="%s" type="JOINT"><matrix sid="transform">%s</matrix>`+"\n",
		id, j.Name, id, translation(j.Head[0]-parent[0], j.Head[1]-parent[1], j.Head[2]-parent[2]))
	for _, c := range j.Children {
		writeJoint(b, c, j.Head)
	}
	b.WriteString("</node>\n")
}

// Part describes a single cube part file.
type Part struct {
	Node string
	// Slot is the material name the part was authored with.
	Slot string
	// Holder wraps the mesh node in an empty of that name.
	Holder string
	// Extra adds a second mesh node after the first.
	Extra string
	// ExtraSlot binds the Extra node to its own material; empty reuses Slot.
	ExtraSlot string
	// VCount, when set, writes the faces as a polylist with this vcount
	// text instead of triangles.
	VCount string
}

// PartDAE renders p as a unit cube mesh.
func PartDAE(p Part) string {
	var b strings.Builder
	b.WriteString(colladaHeader)
	b.WriteString(`<library_materials><material id="slot-material" name="` + p.Slot + `"/>`)
	if p.ExtraSlot != "" {
		b.WriteString(`<material id="extra-material" name="` + p.ExtraSlot + `"/>`)
	}
	b.WriteString(`</library_materials>
<library_geometries><geometry id="cube-mesh" name="cube"><mesh>
<source id="cube-mesh-positions"><float_array id="cube-mesh-positions-array" count="24">
-1 -1 -1 1 -1 -1 1 1 -1 -1 1 -1
-1 -1 1 1 -1 1 1 1 1 -1 1 1</float_array>
<technique_common><accessor source="#cube-mesh-positions-array" count="8" stride="3"/></technique_common></source>
<vertices id="cube-mesh-vertices"><input semantic="POSITION" source="#cube-mesh-positions"/></vertices>
`)
	const cubeIndices = "0 2 1 0 3 2 4 5 6 4 6 7 0 1 5 0 5 4 1 2 6 1 6 5 2 3 7 2 7 6 3 0 4 3 4 7"
	if p.VCount != "" {
		b.WriteString(`<polylist material="slot-material" count="12"><input semantic="VERTEX" source="#cube-mesh-vertices" offset="0"/>
<vcount>` + p.VCount + `</vcount><p>` + cubeIndices + `</p></polylist>`)
	} else {
		b.WriteString(`<triangles material="slot-material" count="12"><input semantic="VERTEX" source="#cube-mesh-vertices" offset="0"/>
<p>` + cubeIndices + `</p></triangles>`)
	}
	b.WriteString(`
</mesh></geometry></library_geometries>
<library_visual_scenes><visual_scene id="Scene" name="Scene">
`)
	mesh := func(name, target string) string {
		return `<node id="` + name + `" name="` + name + `" type="NODE"><matrix sid="transform">` + translation(0, 0, 0) + `</matrix>
<instance_geometry url="#cube-mesh"><bind_material><technique_common>
<instance_material symbol="slot-material" target="#` + target + `"/>
</technique_common></bind_material></instance_geometry></node>
`
	}
	if p.Holder != "" {
		b.WriteString(`<node id="` + p.Holder + `" name="` + p.Holder + `" type="NODE">` + "\n")
	}
	b.WriteString(mesh(p.Node, "slot-material"))
	if p.Holder != "" {
		b.WriteString("</node>\n")
	}
	if p.Extra != "" {
		target := "slot-material"
		if p.ExtraSlot != "" {
			target = "extra-material"
		}
		b.WriteString(mesh(p.Extra, target))
	}
	b.WriteString("</visual_scene></library_visual_scenes>\n</COLLADA>\n")
	return b.String()
}

// Attachment is one descriptor entry; empty fields are left out.
type Attachment struct {
	AName    string
	Rotation string
	Position string
	BoneName string
	Binding  string
	Flags    string
}

func DescriptorXML(atts []Attachment) string {
	var b strings.Builder
	b.WriteString("<CharacterDefinition>\n <Model File=\"objects/mechs/model.chr\"/>\n <AttachmentList>\n")
	for _, a := range atts {
		b.WriteString("  <Attachment Type=\"CA_BONE\"")
		for _, kv := range [][2]string{
			{"AName", a.AName}, {"Rotation", a.Rotation}, {"Position", a.Position},
			{"BoneName", a.BoneName}, {"Binding", a.Binding}, {"Flags", a.Flags},
		} {
			if kv[1] != "" {
				fmt.Fprintf(&b, " %s=%q", kv[0], kv[1])
			}
		}
		b.WriteString("/>\n")
	}
	b.WriteString(" </AttachmentList>\n</CharacterDefinition>\n")
	return b.String()
}

// MaterialsXML renders a material library with one sub material per name,
// each referencing diffuse, specular and normal textures under texDir.
func MaterialsXML(texDir string, names ...string) string {
	var b strings.Builder
	b.WriteString("<Material MtlFlags=\"524544\">\n <SubMaterials>\n")
	for _, n := range names {
		fmt.Fprintf(&b, `  <Material Name="%s" MtlFlags="524416" Shader="MechCockpit">
   <Textures>
    <Texture Map="Diffuse" File="%s/%s_diff.tif"/>
    <Texture Map="Specular" File="%s/%s_spec.tif"/>
    <Texture Map="Bumpmap" File="%s/%s_ddna.tif"/>
    <Texture Map="Detail" File="%s/detail.tif"/>
   </Textures>
  </Material>
`, n, texDir, n, texDir, n, texDir, n, texDir)
	}
	b.WriteString(" </SubMaterials>\n</Material>\n")
	return b.String()
}

// Model is a model tree rooted at Base:
// Base/objects/mechs/<Mech>/<Mech>.cdf.
type Model struct {
	Base       string
	Mech       string
	Dir        string
	Descriptor string
}

func NewModel(t testing.TB, mech string) Model {
	t.Helper()
	base := t.TempDir()
	dir := filepath.Join(base, "objects", "mechs", mech)
	if err := os.MkdirAll(filepath.Join(dir, "body"), 0o755); err != nil {
		t.Fatal(err)
	}
	return Model{Base: base, Mech: mech, Dir: dir, Descriptor: filepath.Join(dir, mech+".cdf")}
}

// Rel is the game path of a file in the model directory, as descriptors
// reference it.
func (m Model) Rel(parts ...string) string {
	return strings.Join(append([]string{"objects", "mechs", m.Mech}, parts...), "/")
}

// Write stores content at a game path relative to Base.
func (m Model) Write(t testing.TB, rel, content string) string {
	t.Helper()
	path := filepath.Join(m.Base, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func (m Model) WriteSkeleton(t testing.TB, root Joint) string {
	return m.Write(t, m.Rel("body", m.Mech+".dae"), SkeletonDAE(root))
}

func (m Model) WriteDescriptor(t testing.TB, atts []Attachment) string {
	return m.Write(t, m.Rel(m.Mech+".cdf"), DescriptorXML(atts))
}

func (m Model) WriteMaterials(t testing.TB, names ...string) string {
	return m.Write(t, m.Rel("body", m.Mech+"_body.mtl"), MaterialsXML(m.Rel("body"), names...))
}

// WritePart stores a part under body/<name>.dae and returns the Binding
// value that references it (with the authoring extension).
func (m Model) WritePart(t testing.TB, name string, p Part) string {
	m.Write(t, m.Rel("body", name+".dae"), PartDAE(p))
	return m.Rel("body", name+".cga")
}
