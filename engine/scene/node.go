package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/mmalewski/Mech-Importer/engine/math"
)

type NodeType uint8

const (
	NodeEmpty NodeType = iota
	NodeMesh
	NodeArmature
)

func (t NodeType) String() string {
	switch t {
	case NodeMesh:
		return "mesh"
	case NodeArmature:
		return "armature"
	default:
		return "empty"
	}
}

// Node is an object in the scene. Parent, ParentBone and a bone's CustomShape
// refer to other objects by name. ParentNode is the parent object itself and
// keeps Parent correct when Link renames it.
type Node struct {
	ID    uint32
	Name  string
	Type  NodeType
	World math.Mat4

	Parent        string
	ParentNode    *Node
	ParentBone    string
	ParentInverse math.Mat4

	Layer int
	// Class is the material class the layer was chosen from, empty when the
	// node was not classified.
	Class string

	Mesh     *Mesh
	Armature *Armature
}

func NewNode(name string, t NodeType) *Node {
	return &Node{
		Name:          name,
		Type:          t,
		World:         mgl32.Ident4(),
		ParentInverse: mgl32.Ident4(),
	}
}

func NewMeshNode(name string, mesh *Mesh) *Node {
	n := NewNode(name, NodeMesh)
	n.Mesh = mesh
	return n
}

func NewArmatureNode(name string, arm *Armature) *Node {
	n := NewNode(name, NodeArmature)
	n.Armature = arm
	return n
}

// SetParent parents n to p without touching its world transform. A nil p makes
// n top level.
func (n *Node) SetParent(p *Node) {
	n.ParentNode = p
	n.Parent = ""
	if p != nil {
		n.Parent = p.Name
	}
}

// Location is the translation part of the world matrix.
func (n *Node) Location() math.Vec3 {
	return math.Translation(n.World)
}

// SetParentBone parents n to bone of the armature node arm, keeping the
// current world transform. The inverse of the bone's tail frame is stored the
// same way an interactive "parent to bone" does.
func (n *Node) SetParentBone(arm *Node, bone *Bone) {
	n.SetParent(arm)
	n.ParentBone = bone.Name
	frame := arm.World.Mul4(math.BoneTailMatrix(bone.Head, bone.Tail))
	n.ParentInverse = frame.Inv()
}
