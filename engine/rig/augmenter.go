package rig

import (
	"fmt"

	"github.com/mmalewski/Mech-Importer/engine/core"
	"github.com/mmalewski/Mech-Importer/engine/math"
	"github.com/mmalewski/Mech-Importer/engine/scene"
)

// Options sizes the control layer. Offsets are in skeleton units, so they
// follow the authored scale of the model.
type Options struct {
	Names            BoneNames
	ProxySize        float32
	KneePoleOffset   float32
	ElbowPoleOffset  float32
	TargetTailLength float32
	WidgetLayer      int
}

func DefaultOptions() Options {
	return Options{
		Names:            DefaultBoneNames(),
		ProxySize:        0.25,
		KneePoleOffset:   4.0,
		ElbowPoleOffset:  1.0,
		TargetTailLength: 1.0,
		WidgetLayer:      19,
	}
}

type role uint8

const (
	roleTarget role = iota
	rolePole
)

// control is one planned control bone.
type control struct {
	name   string
	source string
	role   role
	offset math.Vec3
}

// Augmenter adds IK control bones and proxy shapes to a skeleton.
type Augmenter struct {
	opts Options
}

func NewAugmenter(opts Options) *Augmenter {
	return &Augmenter{opts: opts}
}

// BendSign tells which way the knees bend: +1 when the calf head sits at or in
// front of the foot head on the depth axis, -1 for reverse jointed legs. The
// right leg is measured first; ok is false when neither leg can be measured.
func (a *Augmenter) BendSign(arm *scene.Armature) (sign float32, ok bool) {
	n := a.opts.Names
	for _, side := range Sides {
		calf, okCalf := arm.Bone(n.Limb(n.Calf, side))
		foot, okFoot := arm.Bone(n.Limb(n.Foot, side))
		if !okCalf || !okFoot {
			continue
		}
		if calf.Head.Dot(math.AxisDepth) < foot.Head.Dot(math.AxisDepth) {
			return -1, true
		}
		return 1, true
	}
	return 1, false
}

// plan lists the control bones in creation order.
func (a *Augmenter) plan(sign float32) []control {
	n := a.opts.Names
	knee := math.AxisDepth.Mul(sign * a.opts.KneePoleOffset)
	elbow := math.AxisDepth.Mul(-a.opts.ElbowPoleOffset)

	var out []control
	for _, s := range Sides {
		out = append(out, control{name: FootIK(s), source: n.Limb(n.Foot, s), role: roleTarget})
	}
	for _, s := range Sides {
		out = append(out, control{name: KneeIK(s), source: n.Limb(n.Calf, s), role: rolePole, offset: knee})
	}
	for _, s := range Sides {
		out = append(out,
			control{name: HandIK(s), source: n.Limb(n.Hand, s), role: roleTarget},
			control{name: ElbowIK(s), source: n.Limb(n.Forearm, s), role: rolePole, offset: elbow},
		)
	}
	return out
}

// Augment creates or repositions the control bones of armNode's skeleton
// and their proxy shapes. Running it again on the same skeleton changes
// nothing but positions.
func (a *Augmenter) Augment(sc *scene.Scene, armNode *scene.Node) core.Diagnostics {
	var diags core.Diagnostics
	if armNode == nil || armNode.Armature == nil {
		diags.Add(core.ErrMissingBone, "armature", fmt.Errorf("no skeleton to augment"))
		return diags
	}
	arm := armNode.Armature
	n := a.opts.Names

	sign, ok := a.BendSign(arm)
	if !ok {
		core.LogWarn("no calf/foot pair found, assuming forward bending knees")
	}
	core.LogDebug("knee bend sign %+.0f", sign)

	parent := ""
	if arm.Has(n.Root) {
		parent = n.Root
	}

	for _, c := range a.plan(sign) {
		src, ok := arm.Bone(c.source)
		if !ok {
			diags.Add(core.ErrMissingBone, c.source, fmt.Errorf("needed for control bone '%s'", c.name))
			continue
		}
		head, tail := a.placement(c, src)
		bone, exists := arm.Bone(c.name)
		if !exists {
			bone = &scene.Bone{Name: c.name, InheritRotation: true}
			if err := arm.AddBone(bone); err != nil {
				diags.Add(core.ErrMissingBone, c.name, err)
				continue
			}
		}
		bone.Parent = parent
		bone.Head = head
		bone.Tail = tail
		bone.Deform = false
		bone.Control = true

		shape := ShapeCube
		if c.role == rolePole {
			shape = ShapeSphere
		}
		a.proxy(sc, armNode, bone, shape)
	}

	if root, ok := arm.Bone(n.Root); ok {
		a.proxy(sc, armNode, root, ShapeCompass)
	} else {
		diags.Add(core.ErrMissingBone, n.Root, fmt.Errorf("root has no proxy"))
	}
	for _, s := range Sides {
		if foot, ok := arm.Bone(n.Limb(n.Foot, s)); ok {
			a.proxy(sc, armNode, foot, ShapeCircle)
		}
	}
	sc.SetLayerHidden(a.opts.WidgetLayer, true)
	return diags
}

func (a *Augmenter) placement(c control, src *scene.Bone) (head, tail math.Vec3) {
	if c.role == rolePole {
		return src.Head.Add(c.offset), src.Tail.Add(c.offset)
	}
	head = src.Head
	return head, head.Add(math.AxisUp.Mul(a.opts.TargetTailLength))
}

// proxy creates the display shape for bone, or moves the existing one to the
// bone's rest pose.
func (a *Augmenter) proxy(sc *scene.Scene, armNode *scene.Node, bone *scene.Bone, shape Shape) {
	name := ProxyName(bone.Name)
	world := armNode.World.Mul4(bone.Matrix())
	node, ok := sc.Node(name)
	if !ok {
		node = scene.NewMeshNode(name, shape.Mesh(a.opts.ProxySize))
		sc.Link(node)
	}
	node.World = world
	node.Layer = a.opts.WidgetLayer
	node.Class = ""
	bone.CustomShape = node.Name
}
