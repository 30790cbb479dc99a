package systems

import (
	"fmt"

	"github.com/mmalewski/Mech-Importer/engine/assets"
	"github.com/mmalewski/Mech-Importer/engine/assets/loaders"
	"github.com/mmalewski/Mech-Importer/engine/core"
	"github.com/mmalewski/Mech-Importer/engine/math"
	"github.com/mmalewski/Mech-Importer/engine/scene"
)

// CockpitAttachment is the attachment name of the cockpit interior, which is
// not part of the exterior model.
const CockpitAttachment = "cockpit"

// BoundPart is a geometry part that made it into the scene.
type BoundPart struct {
	Record  loaders.AttachmentRecord
	Primary *scene.Node
	Nodes   []*scene.Node
	Guess   Provisional
}

// GeometryBinder imports the geometry parts of a model and rigidly binds
// each to its bone.
type GeometryBinder struct {
	importer   assets.MeshImporter
	classifier *Classifier
}

func NewGeometryBinder(importer assets.MeshImporter, classifier *Classifier) *GeometryBinder {
	return &GeometryBinder{
		importer:   importer,
		classifier: classifier,
	}
}

// BindAll binds records in order and collects what went wrong. A failing part
// never stops the others.
func (gb *GeometryBinder) BindAll(sc *scene.Scene, armature *scene.Node, mech string, records []loaders.AttachmentRecord, set *MaterialSet) ([]BoundPart, core.Diagnostics) {
	var (
		parts []BoundPart
		diags core.Diagnostics
	)
	for _, rec := range records {
		if rec.Name == CockpitAttachment {
			core.LogDebug("skipping cockpit attachment")
			continue
		}
		part, partDiags, err := gb.Bind(sc, armature, mech, rec, set)
		diags.Append(partDiags...)
		if err != nil {
			continue
		}
		parts = append(parts, *part)
	}
	core.LogInfo("bound %d of %d parts", len(parts), len(records))
	return parts, diags
}

// Bind imports and binds one part. Nodes are linked into sc only when the
// part succeeds as a whole; the returned error is the MissingBone or
// PartImportFailed diagnostic that stopped it. Missing materials do not stop
// a part and come back as diagnostics only.
func (gb *GeometryBinder) Bind(sc *scene.Scene, armature *scene.Node, mech string, rec loaders.AttachmentRecord, set *MaterialSet) (*BoundPart, core.Diagnostics, error) {
	var diags core.Diagnostics
	fail := func(kind error, err error) (*BoundPart, core.Diagnostics, error) {
		diags.Add(kind, rec.Name, err)
		return nil, diags, diags[len(diags)-1]
	}

	if armature == nil || armature.Armature == nil {
		return fail(core.ErrMissingBone, fmt.Errorf("no armature for bone '%s'", rec.BoneName))
	}
	bone, ok := armature.Armature.Bone(rec.BoneName)
	if !ok {
		return fail(core.ErrMissingBone, fmt.Errorf("bone '%s' not in skeleton", rec.BoneName))
	}
	if rec.BindingPath == "" {
		return fail(core.ErrPartImportFailed, fmt.Errorf("attachment has no binding"))
	}
	nodes, err := gb.importer.ImportMesh(rec.BindingPath)
	if err != nil {
		return fail(core.ErrPartImportFailed, err)
	}
	if len(nodes) == 0 {
		return fail(core.ErrPartImportFailed, fmt.Errorf("%s produced no nodes", rec.BindingPath))
	}

	guess := gb.classifier.Classify(rec.Name, mech)
	primary := primaryNode(nodes)
	place(nodes, primary, math.Compose(rec.Rotation, rec.Position))
	primary.SetParentBone(armature, bone)

	for _, n := range nodes {
		n.Class = guess.Class
		if n.Type != scene.NodeMesh || n.Mesh == nil {
			continue
		}
		n.Mesh.VertexGroup(bone.Name).AssignAll(len(n.Mesh.Vertices), 1.0)

		res := guess.Confirm(n.Mesh.SlotName(0), set)
		n.Class = res.Class
		mat, ok := set.Get(res.Key)
		if !ok {
			diags.Add(core.ErrMissingMaterial, n.Name, fmt.Errorf("no material '%s' for part '%s'", res.Key, rec.Name))
			continue
		}
		slot := n.Mesh.EnsureSlot(0)
		slot.Name = mat.Name
		slot.Material = mat
	}

	sc.Link(nodes...)
	core.LogDebug("bound '%s' to bone '%s' (%d nodes)", rec.Name, bone.Name, len(nodes))
	return &BoundPart{Record: rec, Primary: primary, Nodes: nodes, Guess: guess}, diags, nil
}

// primaryNode is the first node that is not an empty, or the first node.
func primaryNode(nodes []*scene.Node) *scene.Node {
	for _, n := range nodes {
		if n.Type != scene.NodeEmpty {
			return n
		}
	}
	return nodes[0]
}

// place moves primary to world and carries its imported descendants along.
func place(nodes []*scene.Node, primary *scene.Node, world math.Mat4) {
	delta := world.Mul4(primary.World.Inv())
	moved := map[*scene.Node]bool{primary: true}
	primary.World = world
	for _, n := range nodes {
		if n == primary || !moved[n.ParentNode] {
			continue
		}
		n.World = delta.Mul4(n.World)
		moved[n] = true
	}
}
