package scene

import (
	"errors"
	"fmt"

	"github.com/mmalewski/Mech-Importer/engine/math"
)

var ErrDuplicateBone = errors.New("bone already exists")

type ConstraintKind uint8

const (
	ConstraintCopyRotation ConstraintKind = iota
	ConstraintIK
)

func (k ConstraintKind) String() string {
	if k == ConstraintIK {
		return "ik"
	}
	return "copy_rotation"
}

type Space uint8

const (
	SpaceWorld Space = iota
	SpaceLocal
)

func (s Space) String() string {
	if s == SpaceLocal {
		return "local"
	}
	return "world"
}

type Constraint struct {
	Kind        ConstraintKind
	Target      string
	ChainLength int
	OwnerSpace  Space
	TargetSpace Space
}

// Bone positions are in armature space, in rest pose.
type Bone struct {
	Name            string
	Parent          string
	Head            math.Vec3
	Tail            math.Vec3
	Deform          bool
	InheritRotation bool
	// Control marks bones added by rig augmentation.
	Control bool
	// CustomShape names the node drawn in place of the bone.
	CustomShape string
	Constraints []Constraint
}

func (b *Bone) Length() float32 {
	return b.Tail.Sub(b.Head).Len()
}

func (b *Bone) Matrix() math.Mat4 {
	return math.BoneMatrix(b.Head, b.Tail)
}

// SetConstraint adds c, replacing a constraint of the same kind and target.
func (b *Bone) SetConstraint(c Constraint) {
	for i := range b.Constraints {
		if b.Constraints[i].Kind == c.Kind && b.Constraints[i].Target == c.Target {
			b.Constraints[i] = c
			return
		}
	}
	b.Constraints = append(b.Constraints, c)
}

// Armature is an ordered bone collection with a name index.
type Armature struct {
	bones []*Bone
	index map[string]int
}

func NewArmature() *Armature {
	return &Armature{index: make(map[string]int)}
}

func (a *Armature) AddBone(b *Bone) error {
	if _, ok := a.index[b.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateBone, b.Name)
	}
	a.index[b.Name] = len(a.bones)
	a.bones = append(a.bones, b)
	return nil
}

func (a *Armature) Bone(name string) (*Bone, bool) {
	i, ok := a.index[name]
	if !ok {
		return nil, false
	}
	return a.bones[i], true
}

func (a *Armature) Has(name string) bool {
	_, ok := a.index[name]
	return ok
}

// Bones returns the bones in insertion order.
func (a *Armature) Bones() []*Bone {
	return a.bones
}

func (a *Armature) Len() int {
	return len(a.bones)
}

// Children returns the direct children of name in insertion order.
func (a *Armature) Children(name string) []*Bone {
	var out []*Bone
	for _, b := range a.bones {
		if b.Parent == name {
			out = append(out, b)
		}
	}
	return out
}
