package scene

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mmalewski/Mech-Importer/engine/math"
	"github.com/pierrec/lz4/v4"
)

// Snapshot is the serialisable form of a scene, written by the CLI so a run
// can be inspected or diffed without the host application.
type Snapshot struct {
	Nodes     []NodeSnapshot     `json:"nodes"`
	Bones     []BoneSnapshot     `json:"bones,omitempty"`
	Materials []MaterialSnapshot `json:"materials,omitempty"`
	Hidden    []int              `json:"hidden_layers,omitempty"`
}

type NodeSnapshot struct {
	Name       string       `json:"name"`
	Type       string       `json:"type"`
	Layer      int          `json:"layer"`
	Class      string       `json:"class,omitempty"`
	Parent     string       `json:"parent,omitempty"`
	ParentBone string       `json:"parent_bone,omitempty"`
	Location   [3]float32   `json:"location"`
	Rotation   [4]float32   `json:"rotation_wxyz"`
	Mesh       *MeshSummary `json:"mesh,omitempty"`
}

type MeshSummary struct {
	Vertices     int      `json:"vertices"`
	Edges        int      `json:"edges"`
	Faces        int      `json:"faces"`
	Slots        []string `json:"slots,omitempty"`
	VertexGroups []string `json:"vertex_groups,omitempty"`
}

type BoneSnapshot struct {
	Name            string               `json:"name"`
	Parent          string               `json:"parent,omitempty"`
	Head            [3]float32           `json:"head"`
	Tail            [3]float32           `json:"tail"`
	Deform          bool                 `json:"deform"`
	InheritRotation bool                 `json:"inherit_rotation"`
	Control         bool                 `json:"control,omitempty"`
	CustomShape     string               `json:"custom_shape,omitempty"`
	Constraints     []ConstraintSnapshot `json:"constraints,omitempty"`
}

type ConstraintSnapshot struct {
	Kind        string `json:"kind"`
	Target      string `json:"target"`
	ChainLength int    `json:"chain_length,omitempty"`
	OwnerSpace  string `json:"owner_space"`
	TargetSpace string `json:"target_space"`
}

type MaterialSnapshot struct {
	Name   string         `json:"name"`
	Shader string         `json:"shader"`
	Inputs []TextureInput `json:"inputs,omitempty"`
}

func (s *Scene) Snapshot() Snapshot {
	var snap Snapshot
	for _, n := range s.nodes {
		q, loc := math.Decompose(n.World)
		ns := NodeSnapshot{
			Name:       n.Name,
			Type:       n.Type.String(),
			Layer:      n.Layer,
			Class:      n.Class,
			Parent:     n.Parent,
			ParentBone: n.ParentBone,
			Location:   loc,
			Rotation:   [4]float32{q.W, q.V.X(), q.V.Y(), q.V.Z()},
		}
		if m := n.Mesh; m != nil {
			sum := &MeshSummary{Vertices: len(m.Vertices), Edges: len(m.Edges), Faces: len(m.Faces)}
			for i := range m.Materials {
				sum.Slots = append(sum.Slots, m.SlotName(i))
			}
			for _, g := range m.VertexGroups {
				sum.VertexGroups = append(sum.VertexGroups, g.Name)
			}
			ns.Mesh = sum
		}
		snap.Nodes = append(snap.Nodes, ns)
		if n.Armature != nil {
			for _, b := range n.Armature.Bones() {
				snap.Bones = append(snap.Bones, boneSnapshot(b))
			}
		}
	}
	for _, m := range s.Materials() {
		snap.Materials = append(snap.Materials, MaterialSnapshot{Name: m.Name, Shader: m.Shader, Inputs: m.Inputs})
	}
	for i := 0; i < MaxLayers; i++ {
		if s.hidden[i] {
			snap.Hidden = append(snap.Hidden, i)
		}
	}
	return snap
}

func boneSnapshot(b *Bone) BoneSnapshot {
	bs := BoneSnapshot{
		Name:            b.Name,
		Parent:          b.Parent,
		Head:            b.Head,
		Tail:            b.Tail,
		Deform:          b.Deform,
		InheritRotation: b.InheritRotation,
		Control:         b.Control,
		CustomShape:     b.CustomShape,
	}
	for _, c := range b.Constraints {
		bs.Constraints = append(bs.Constraints, ConstraintSnapshot{
			Kind:        c.Kind.String(),
			Target:      c.Target,
			ChainLength: c.ChainLength,
			OwnerSpace:  c.OwnerSpace.String(),
			TargetSpace: c.TargetSpace.String(),
		})
	}
	return bs
}

// WriteSnapshot writes the scene as indented JSON. Paths ending in ".lz4" are
// lz4 frame compressed.
func (s *Scene) WriteSnapshot(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("scene: create %s: %w", path, err)
	}
	defer f.Close()

	var w io.Writer = f
	var zw *lz4.Writer
	if strings.HasSuffix(path, ".lz4") {
		zw = lz4.NewWriter(f)
		w = zw
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.Snapshot()); err != nil {
		return fmt.Errorf("scene: encode %s: %w", path, err)
	}
	if zw != nil {
		if err := zw.Close(); err != nil {
			return fmt.Errorf("scene: compress %s: %w", path, err)
		}
	}
	return f.Close()
}

// ReadSnapshot loads a file written by WriteSnapshot.
func ReadSnapshot(path string) (Snapshot, error) {
	var snap Snapshot
	f, err := os.Open(path)
	if err != nil {
		return snap, fmt.Errorf("scene: open %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".lz4") {
		r = lz4.NewReader(f)
	}
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return snap, fmt.Errorf("scene: decode %s: %w", path, err)
	}
	return snap, nil
}
