package systems

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mmalewski/Mech-Importer/engine/assets/loaders"
	"github.com/mmalewski/Mech-Importer/engine/core"
	"github.com/mmalewski/Mech-Importer/engine/internal/fixtures"
	"github.com/mmalewski/Mech-Importer/engine/math"
	"github.com/mmalewski/Mech-Importer/engine/scene"
	. "github.com/smartystreets/goconvey/convey"
)

type binderFixture struct {
	model    fixtures.Model
	scene    *scene.Scene
	armature *scene.Node
	set      *MaterialSet
	binder   *GeometryBinder
}

func newBinderFixture(t *testing.T) *binderFixture {
	m := fixtures.NewModel(t, "griffin")
	importer := loaders.NewColladaImporter()
	armature, err := importer.ImportSkeleton(m.WriteSkeleton(t, fixtures.Biped(false, false)))
	if err != nil {
		t.Fatal(err)
	}
	sc := scene.New()
	sc.Link(armature)

	set := NewMaterialSet()
	for _, name := range []string{"griffin_body", "griffin_variant", "griffin_generic"} {
		set.Put(&scene.Material{Name: name, Shader: DefaultShaderName})
	}
	return &binderFixture{
		model:    m,
		scene:    sc,
		armature: armature,
		set:      set,
		binder:   NewGeometryBinder(importer, NewClassifier(DefaultWeaponTokens)),
	}
}

func (f *binderFixture) record(t *testing.T, name, bone string, p fixtures.Part) loaders.AttachmentRecord {
	f.model.WritePart(t, name, p)
	return loaders.AttachmentRecord{
		Name:        name,
		Rotation:    mgl32.QuatRotate(mgl32.DegToRad(90), math.AxisUp),
		Position:    math.Vec3{1, 2, 3},
		BoneName:    bone,
		BindingPath: filepath.Join(f.model.Dir, "body", name+".dae"),
	}
}

func TestBind(t *testing.T) {
	Convey("Given an imported skeleton and a material set", t, func() {
		f := newBinderFixture(t)

		Convey("When a body part is bound", func() {
			rec := f.record(t, "torso", "Bip01_Spine", fixtures.Part{Node: "torso_mesh", Slot: "griffin_body", Holder: "torso_root"})
			part, diags, err := f.binder.Bind(f.scene, f.armature, "griffin", rec, f.set)

			So(err, ShouldBeNil)
			So(diags, ShouldBeEmpty)

			Convey("Then the first mesh node is the primary and sits at the attachment transform", func() {
				So(part.Primary.Name, ShouldEqual, "torso_mesh")
				So(part.Primary.World.ApproxEqualThreshold(math.Compose(rec.Rotation, rec.Position), 1e-5), ShouldBeTrue)
				So(part.Primary.Parent, ShouldEqual, "griffin")
				So(part.Primary.ParentBone, ShouldEqual, "Bip01_Spine")
			})

			Convey("Then the mesh is weighted to its bone", func() {
				g := part.Primary.Mesh.VertexGroup("Bip01_Spine")
				So(len(g.Indices), ShouldEqual, 8)
				So(g.Weights[7], ShouldEqual, 1)
			})

			Convey("Then the body material is bound and all nodes are linked", func() {
				So(part.Primary.Mesh.Materials[0].Material.Name, ShouldEqual, "griffin_body")
				So(part.Primary.Class, ShouldEqual, ClassBody)
				So(len(f.scene.Nodes()), ShouldEqual, 3)
			})
		})

		Convey("When a weapon part with a generic slot is bound", func() {
			rec := f.record(t, "ac20_barrel", "Bip01_R_Forearm", fixtures.Part{Node: "barrel", Slot: "weapon_generic"})
			part, _, err := f.binder.Bind(f.scene, f.armature, "griffin", rec, f.set)

			So(err, ShouldBeNil)
			So(part.Guess.Class, ShouldEqual, ClassVariant)
			So(part.Primary.Mesh.Materials[0].Material.Name, ShouldEqual, "griffin_generic")
			So(part.Primary.Class, ShouldEqual, ClassGeneric)
		})

		Convey("When a weapon part carries a second mesh with its own slot", func() {
			rec := f.record(t, "ac20_mount", "Bip01_R_Forearm", fixtures.Part{
				Node: "mount", Slot: "griffin_body", Extra: "mount_barrel", ExtraSlot: "weapon_generic",
			})
			part, diags, err := f.binder.Bind(f.scene, f.armature, "griffin", rec, f.set)

			So(err, ShouldBeNil)
			So(diags, ShouldBeEmpty)
			So(len(part.Nodes), ShouldEqual, 2)
			primary, extra := part.Nodes[0], part.Nodes[1]

			Convey("Then both meshes are weighted to the bone", func() {
				for _, n := range part.Nodes {
					So(len(n.Mesh.VertexGroup("Bip01_R_Forearm").Indices), ShouldEqual, 8)
				}
			})

			Convey("Then each mesh resolves its material from its own slot", func() {
				So(primary.Mesh.Materials[0].Material.Name, ShouldEqual, "griffin_variant")
				So(primary.Class, ShouldEqual, ClassVariant)
				So(extra.Mesh.Materials[0].Material.Name, ShouldEqual, "griffin_generic")
				So(extra.Class, ShouldEqual, ClassGeneric)
			})
		})

		Convey("When the part file has a malformed polygon list", func() {
			rec := f.record(t, "hip", "Bip01_Pelvis", fixtures.Part{Node: "hip", Slot: "griffin_body", VCount: "-3"})
			part, diags, err := f.binder.Bind(f.scene, f.armature, "griffin", rec, f.set)

			So(part, ShouldBeNil)
			So(errors.Is(err, core.ErrPartImportFailed), ShouldBeTrue)
			So(diags.Count(core.ErrPartImportFailed), ShouldEqual, 1)
			So(len(f.scene.Nodes()), ShouldEqual, 1)
		})

		Convey("When the bone does not exist", func() {
			rec := f.record(t, "tail", "Bip01_Tail", fixtures.Part{Node: "tail", Slot: "griffin_body"})
			part, diags, err := f.binder.Bind(f.scene, f.armature, "griffin", rec, f.set)

			So(part, ShouldBeNil)
			So(errors.Is(err, core.ErrMissingBone), ShouldBeTrue)
			So(diags.Count(core.ErrMissingBone), ShouldEqual, 1)
			So(len(f.scene.Nodes()), ShouldEqual, 1)
		})

		Convey("When the part file is missing", func() {
			rec := f.record(t, "leg", "Bip01_L_Thigh", fixtures.Part{Node: "leg", Slot: "griffin_body"})
			rec.BindingPath = filepath.Join(f.model.Dir, "body", "nope.dae")
			_, diags, err := f.binder.Bind(f.scene, f.armature, "griffin", rec, f.set)

			So(errors.Is(err, core.ErrPartImportFailed), ShouldBeTrue)
			So(diags.Count(core.ErrPartImportFailed), ShouldEqual, 1)
			So(len(f.scene.Nodes()), ShouldEqual, 1)
		})

		Convey("When the class material is missing", func() {
			rec := f.record(t, "head_cockpit_glass", "Bip01_Spine", fixtures.Part{Node: "glass", Slot: "griffin_window"})
			part, diags, err := f.binder.Bind(f.scene, f.armature, "griffin", rec, f.set)

			So(err, ShouldBeNil)
			So(diags.Count(core.ErrMissingMaterial), ShouldEqual, 1)
			So(part.Primary.Mesh.Materials[0].Material, ShouldBeNil)
			So(part.Primary.Class, ShouldEqual, ClassWindow)
		})

		Convey("When binding a whole list", func() {
			records := []loaders.AttachmentRecord{
				f.record(t, "cockpit", "Bip01_Spine", fixtures.Part{Node: "pit", Slot: "griffin_body"}),
				f.record(t, "tail", "Bip01_Tail", fixtures.Part{Node: "tail", Slot: "griffin_body"}),
				f.record(t, "left_leg", "Bip01_L_Thigh", fixtures.Part{Node: "left_leg", Slot: "griffin_body"}),
				f.record(t, "right_leg", "Bip01_R_Thigh", fixtures.Part{Node: "right_leg", Slot: "griffin_body"}),
			}
			parts, diags := f.binder.BindAll(f.scene, f.armature, "griffin", records, f.set)

			Convey("Then the cockpit is skipped and failures do not stop later parts", func() {
				So(len(parts), ShouldEqual, 2)
				So(parts[0].Record.Name, ShouldEqual, "left_leg")
				So(parts[1].Record.Name, ShouldEqual, "right_leg")
				So(len(diags), ShouldEqual, 1)
				_, linked := f.scene.Node("pit")
				So(linked, ShouldBeFalse)
			})
		})
	})
}

func TestPlaceCarriesDescendants(t *testing.T) {
	holder := scene.NewNode("holder", scene.NodeEmpty)
	primary := scene.NewMeshNode("body", &scene.Mesh{})
	primary.SetParent(holder)
	child := scene.NewNode("socket", scene.NodeEmpty)
	child.SetParent(primary)
	child.World = mgl32.Translate3D(0, 0, 1)
	other := scene.NewNode("other", scene.NodeEmpty)

	place([]*scene.Node{holder, primary, child, other}, primary, mgl32.Translate3D(5, 0, 0))

	if got := child.Location(); !got.ApproxEqual(math.Vec3{5, 0, 1}) {
		t.Errorf("child: got %v", got)
	}
	if got := holder.Location(); !got.ApproxEqual(math.Vec3{}) {
		t.Errorf("holder moved to %v", got)
	}
	if got := other.Location(); !got.ApproxEqual(math.Vec3{}) {
		t.Errorf("unrelated node moved to %v", got)
	}
}

func TestPlaceWithRepeatedNames(t *testing.T) {
	first := scene.NewMeshNode("x", &scene.Mesh{})
	child := scene.NewNode("x_socket", scene.NodeEmpty)
	child.SetParent(first)
	child.World = mgl32.Translate3D(0, 0, 1)
	second := scene.NewNode("x", scene.NodeEmpty)
	stray := scene.NewNode("x_light", scene.NodeEmpty)
	stray.SetParent(second)

	place([]*scene.Node{first, child, second, stray}, first, mgl32.Translate3D(5, 0, 0))

	if got := child.Location(); !got.ApproxEqual(math.Vec3{5, 0, 1}) {
		t.Errorf("child: got %v", got)
	}
	if got := stray.Location(); !got.ApproxEqual(math.Vec3{}) {
		t.Errorf("node under the second x moved to %v", got)
	}
}
