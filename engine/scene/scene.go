package scene

import (
	"fmt"
	"sort"

	"github.com/mmalewski/Mech-Importer/engine/core"
)

// MaxLayers is the number of display layers a scene offers.
const MaxLayers = 20

// Scene is the in-memory object store for one import run. Nodes keep their
// link order; names are unique.
type Scene struct {
	ids    *core.IdentifierPool
	nodes  []*Node
	byName map[string]*Node
	hidden [MaxLayers]bool
}

func New() *Scene {
	return &Scene{
		ids:    core.NewIdentifierPool(),
		byName: make(map[string]*Node),
	}
}

// Link adds a batch of nodes. Names already taken get the next free ".NNN"
// suffix, and Parent is refreshed from ParentNode so children follow the
// node they were imported under.
func (s *Scene) Link(nodes ...*Node) {
	for _, n := range nodes {
		n.Name = s.uniqueName(n.Name)
		n.ID = s.ids.Acquire(n)
		s.nodes = append(s.nodes, n)
		s.byName[n.Name] = n
	}
	for _, n := range nodes {
		if n.ParentNode != nil {
			n.Parent = n.ParentNode.Name
		}
	}
}

// Unlink removes n from the scene. Unknown nodes are ignored.
func (s *Scene) Unlink(n *Node) {
	if s.byName[n.Name] != n {
		return
	}
	delete(s.byName, n.Name)
	for i, m := range s.nodes {
		if m == n {
			s.nodes = append(s.nodes[:i], s.nodes[i+1:]...)
			break
		}
	}
	if err := s.ids.Release(n.ID); err != nil {
		core.LogWarn("%s", err)
	}
}

func (s *Scene) uniqueName(name string) string {
	if _, taken := s.byName[name]; !taken {
		return name
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s.%03d", name, i)
		if _, taken := s.byName[candidate]; !taken {
			return candidate
		}
	}
}

func (s *Scene) Node(name string) (*Node, bool) {
	n, ok := s.byName[name]
	return n, ok
}

// Nodes returns all nodes in link order.
func (s *Scene) Nodes() []*Node {
	return s.nodes
}

// Armature returns the first armature node.
func (s *Scene) Armature() (*Node, bool) {
	for _, n := range s.nodes {
		if n.Type == NodeArmature {
			return n, true
		}
	}
	return nil, false
}

func (s *Scene) SetLayerHidden(layer int, hidden bool) {
	if layer < 0 || layer >= MaxLayers {
		return
	}
	s.hidden[layer] = hidden
}

func (s *Scene) LayerHidden(layer int) bool {
	if layer < 0 || layer >= MaxLayers {
		return false
	}
	return s.hidden[layer]
}

// NodesOnLayer returns the nodes placed on layer, in link order.
func (s *Scene) NodesOnLayer(layer int) []*Node {
	var out []*Node
	for _, n := range s.nodes {
		if n.Layer == layer {
			out = append(out, n)
		}
	}
	return out
}

// Materials returns every distinct material bound to a mesh slot, by name.
func (s *Scene) Materials() []*Material {
	seen := make(map[string]*Material)
	for _, n := range s.nodes {
		if n.Mesh == nil {
			continue
		}
		for _, slot := range n.Mesh.Materials {
			if slot != nil && slot.Material != nil {
				seen[slot.Material.Name] = slot.Material
			}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]*Material, len(names))
	for i, name := range names {
		out[i] = seen[name]
	}
	return out
}
