package loaders_test

import (
	"encoding/xml"
	"errors"
	"path/filepath"
	"testing"

	"github.com/mmalewski/Mech-Importer/engine/assets/loaders"
	"github.com/mmalewski/Mech-Importer/engine/internal/fixtures"
	"github.com/mmalewski/Mech-Importer/engine/math"
	"github.com/mmalewski/Mech-Importer/engine/scene"
)

func TestTrianglesDecode(t *testing.T) {
	x := `<triangles count="2" material="hull"><input semantic="VERTEX" source="#v" offset="0"/><input semantic="NORMAL" source="#n" offset="1"/><p>0 0 1 1 2 2 2 0 3 1 0 2</p></triangles>`

	var tris loaders.Triangles
	if err := xml.Unmarshal([]byte(x), &tris); err != nil {
		t.Fatal(err)
	}
	if tris.Count != 2 {
		t.Errorf("count: got %d", tris.Count)
	}
	if tris.Material != "hull" {
		t.Errorf("material: got %q", tris.Material)
	}
	if len(tris.Inputs) != 2 || tris.Inputs[1].Offset != 1 {
		t.Errorf("inputs: got %+v", tris.Inputs)
	}
	if len(tris.Index) != 12 {
		t.Errorf("index: got %d values", len(tris.Index))
	}
}

func TestPolylistDecode(t *testing.T) {
	x := `<polylist count="1" material="m"><input semantic="VERTEX" source="#v" offset="0"/><vcount>4</vcount><extra/><p>0 1 2 3</p></polylist>`

	var poly loaders.Triangles
	if err := xml.Unmarshal([]byte(x), &poly); err != nil {
		t.Fatal(err)
	}
	if len(poly.VCount) != 1 || poly.VCount[0] != 4 {
		t.Errorf("vcount: got %v", poly.VCount)
	}
	if len(poly.Index) != 4 {
		t.Errorf("index: got %v", poly.Index)
	}
}

func TestInputDecode(t *testing.T) {
	x := `<input semantic="VERTEX" source="#cube-mesh-vertices" offset="2"/>`

	var in loaders.Input
	if err := xml.Unmarshal([]byte(x), &in); err != nil {
		t.Fatal(err)
	}
	if in.Semantic != "VERTEX" || in.Source != "#cube-mesh-vertices" || in.Offset != 2 {
		t.Errorf("got %+v", in)
	}
}

func TestFloatsDecode(t *testing.T) {
	x := `<float_array id="pos" count="6">
		1 2.5 -3
		0 0 1e-2</float_array>`

	var f loaders.Floats
	if err := xml.Unmarshal([]byte(x), &f); err != nil {
		t.Fatal(err)
	}
	want := []float32{1, 2.5, -3, 0, 0, 0.01}
	if f.ID != "pos" || len(f.Data) != len(want) {
		t.Fatalf("got %+v", f)
	}
	for i := range want {
		if f.Data[i] != want[i] {
			t.Errorf("value %d: got %v want %v", i, f.Data[i], want[i])
		}
	}
}

func TestImportMesh(t *testing.T) {
	m := fixtures.NewModel(t, "griffin")
	m.WritePart(t, "arm", fixtures.Part{Node: "arm_mesh", Slot: "griffin_body", Holder: "arm_root", Extra: "arm_lod"})
	path := filepath.Join(m.Dir, "body", "arm.dae")

	nodes, err := loaders.NewColladaImporter().ImportMesh(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 3 {
		t.Fatalf("got %d nodes", len(nodes))
	}
	if nodes[0].Name != "arm_root" || nodes[0].Type != scene.NodeEmpty {
		t.Errorf("holder: got %s (%s)", nodes[0].Name, nodes[0].Type)
	}
	mesh := nodes[1]
	if mesh.Name != "arm_mesh" || mesh.Type != scene.NodeMesh || mesh.Parent != "arm_root" {
		t.Fatalf("mesh node: got %s (%s) parent %q", mesh.Name, mesh.Type, mesh.Parent)
	}
	if len(mesh.Mesh.Vertices) != 8 || len(mesh.Mesh.Faces) != 12 {
		t.Errorf("geometry: %d vertices, %d faces", len(mesh.Mesh.Vertices), len(mesh.Mesh.Faces))
	}
	if len(mesh.Mesh.Edges) != 18 {
		t.Errorf("edges: got %d", len(mesh.Mesh.Edges))
	}
	if mesh.Mesh.SlotName(0) != "griffin_body" {
		t.Errorf("slot: got %q", mesh.Mesh.SlotName(0))
	}
	if mesh.ParentNode != nodes[0] {
		t.Errorf("mesh parent node: got %v", mesh.ParentNode)
	}
	if nodes[2].Parent != "" || nodes[2].ParentNode != nil {
		t.Errorf("extra node should be top level, parent %q", nodes[2].Parent)
	}
}

func TestImportMeshExtraSlot(t *testing.T) {
	m := fixtures.NewModel(t, "griffin")
	m.WritePart(t, "gun", fixtures.Part{Node: "gun_mesh", Slot: "griffin_body", Extra: "gun_barrel", ExtraSlot: "weapon_generic"})

	nodes, err := loaders.NewColladaImporter().ImportMesh(filepath.Join(m.Dir, "body", "gun.dae"))
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 2 {
		t.Fatalf("got %d nodes", len(nodes))
	}
	if got := nodes[0].Mesh.SlotName(0); got != "griffin_body" {
		t.Errorf("first slot: got %q", got)
	}
	if got := nodes[1].Mesh.SlotName(0); got != "weapon_generic" {
		t.Errorf("second slot: got %q", got)
	}
}

func TestImportMeshPolylist(t *testing.T) {
	cases := []struct {
		name   string
		vcount string
		faces  int
		bad    bool
	}{
		{"triangles", "3 3 3 3 3 3 3 3 3 3 3 3", 12, false},
		{"quads", "4 4 4 4 4 4 4 4 4", 9, false},
		{"negative count", "-3", 0, true},
		{"zero count", "3 0 3", 0, true},
		{"runs past the indices", "3 3 40", 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := fixtures.NewModel(t, "griffin")
			m.WritePart(t, "arm", fixtures.Part{Node: "arm_mesh", Slot: "griffin_body", VCount: tc.vcount})

			nodes, err := loaders.NewColladaImporter().ImportMesh(filepath.Join(m.Dir, "body", "arm.dae"))
			if tc.bad {
				if !errors.Is(err, loaders.ErrBadPrimitive) {
					t.Fatalf("got %v, want ErrBadPrimitive", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got := len(nodes[0].Mesh.Faces); got != tc.faces {
				t.Errorf("faces: got %d want %d", got, tc.faces)
			}
		})
	}
}

func TestImportMeshMissingFile(t *testing.T) {
	_, err := loaders.NewColladaImporter().ImportMesh(filepath.Join(t.TempDir(), "none.dae"))
	if err == nil {
		t.Fatal("expected an error")
	}
}

func TestImportSkeleton(t *testing.T) {
	m := fixtures.NewModel(t, "griffin")
	path := m.WriteSkeleton(t, fixtures.Biped(false, true))

	node, err := loaders.NewColladaImporter().ImportSkeleton(path)
	if err != nil {
		t.Fatal(err)
	}
	if node.Name != "griffin" || node.Type != scene.NodeArmature {
		t.Fatalf("got %s (%s)", node.Name, node.Type)
	}
	arm := node.Armature
	if arm.Len() != 18 {
		t.Errorf("bones: got %d", arm.Len())
	}

	calf, ok := arm.Bone("Bip01_R_Calf")
	if !ok {
		t.Fatal("Bip01_R_Calf missing")
	}
	if calf.Parent != "Bip01_R_Thigh" {
		t.Errorf("calf parent: got %q", calf.Parent)
	}
	if !calf.Head.ApproxEqual(math.Vec3{-0.4, 0.2, 1}) {
		t.Errorf("calf head: got %v", calf.Head)
	}
	if !calf.Tail.ApproxEqual(math.Vec3{-0.4, 0, 0.1}) {
		t.Errorf("calf tail: got %v", calf.Tail)
	}

	for _, b := range arm.Bones() {
		if b.Length() < 0.049 {
			t.Errorf("%s is shorter than the minimum: %v", b.Name, b.Length())
		}
		if !b.Deform || !b.InheritRotation {
			t.Errorf("%s: unexpected flags", b.Name)
		}
	}
}

func TestImportSkeletonWithoutJoints(t *testing.T) {
	m := fixtures.NewModel(t, "griffin")
	path := m.Write(t, m.Rel("body", "griffin.dae"), fixtures.PartDAE(fixtures.Part{Node: "hull", Slot: "s"}))

	_, err := loaders.NewColladaImporter().ImportSkeleton(path)
	if !errors.Is(err, loaders.ErrNoJoints) {
		t.Fatalf("got %v", err)
	}
}
