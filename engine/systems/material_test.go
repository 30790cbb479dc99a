package systems

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mmalewski/Mech-Importer/engine/assets/loaders"
	"github.com/mmalewski/Mech-Importer/engine/internal/fixtures"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMaterialSystemLoad(t *testing.T) {
	Convey("Given a material library where only the diffuse textures exist", t, func() {
		m := fixtures.NewModel(t, "griffin")
		path := m.WriteMaterials(t, "griffin_variant", "griffin_body")
		for _, name := range []string{"griffin_body", "griffin_variant"} {
			So(os.WriteFile(filepath.Join(m.Dir, "body", name+"_diff.dds"), []byte("DDS "), 0o644), ShouldBeNil)
		}
		mp, err := loaders.ResolveModelPaths(m.Descriptor, "dae", "dds")
		So(err, ShouldBeNil)

		set, err := NewMaterialSystem(NewPrincipledShading(&loaders.TextureLoader{})).Load(path, mp.Paths)

		Convey("Then every material is built in name order", func() {
			So(err, ShouldBeNil)
			So(set.Names(), ShouldResemble, []string{"griffin_body", "griffin_variant"})
		})

		Convey("Then only present textures are wired", func() {
			mat, ok := set.Get("griffin_body")
			So(ok, ShouldBeTrue)
			So(mat.Shader, ShouldEqual, DefaultShaderName)
			So(len(mat.Inputs), ShouldEqual, 1)
			in, ok := mat.Input("Base Color")
			So(ok, ShouldBeTrue)
			So(in.ColorSpace, ShouldEqual, "sRGB")
			So(in.Path, ShouldEqual, filepath.Join(m.Dir, "body", "griffin_body_diff.dds"))
		})
	})

	Convey("Given a normal map texture", t, func() {
		dir := t.TempDir()
		bump := filepath.Join(dir, "n.dds")
		So(os.WriteFile(bump, []byte("DDS "), 0o644), ShouldBeNil)

		mat, err := NewPrincipledShading(&loaders.TextureLoader{}).BuildMaterial(loaders.MaterialRecord{
			Name:         "griffin_body",
			TextureSlots: map[loaders.SlotKind]string{loaders.SlotBumpmap: bump},
		})

		So(err, ShouldBeNil)
		in, ok := mat.Input("Normal")
		So(ok, ShouldBeTrue)
		So(in.NormalMap, ShouldBeTrue)
		So(in.ColorSpace, ShouldEqual, "Non-Color")
	})

	Convey("Given a missing material library", t, func() {
		set, err := NewMaterialSystem(NewPrincipledShading(&loaders.TextureLoader{})).Load(filepath.Join(t.TempDir(), "x.mtl"), loaders.Paths{})
		So(err, ShouldNotBeNil)
		So(set.Len(), ShouldEqual, 0)
	})
}
