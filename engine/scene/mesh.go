package scene

import "github.com/mmalewski/Mech-Importer/engine/math"

type Mesh struct {
	Name         string
	Vertices     []math.Vec3
	Edges        [][2]uint32
	Faces        [][]uint32
	Materials    []*MaterialSlot
	VertexGroups []*VertexGroup
}

// MaterialSlot keeps the authored slot name even when no material is bound.
type MaterialSlot struct {
	Name     string
	Material *Material
}

type VertexGroup struct {
	Name    string
	Indices []uint32
	Weights []float32
}

// SlotName returns the authored name of slot i, or "" when there is none.
func (m *Mesh) SlotName(i int) string {
	if i < 0 || i >= len(m.Materials) || m.Materials[i] == nil {
		return ""
	}
	if m.Materials[i].Material != nil && m.Materials[i].Name == "" {
		return m.Materials[i].Material.Name
	}
	return m.Materials[i].Name
}

// EnsureSlot grows the slot list so that slot i exists and returns it.
func (m *Mesh) EnsureSlot(i int) *MaterialSlot {
	for len(m.Materials) <= i {
		m.Materials = append(m.Materials, &MaterialSlot{})
	}
	if m.Materials[i] == nil {
		m.Materials[i] = &MaterialSlot{}
	}
	return m.Materials[i]
}

// VertexGroup returns the group called name, creating it when needed.
func (m *Mesh) VertexGroup(name string) *VertexGroup {
	for _, g := range m.VertexGroups {
		if g.Name == name {
			return g
		}
	}
	g := &VertexGroup{Name: name}
	m.VertexGroups = append(m.VertexGroups, g)
	return g
}

// AssignAll replaces the group's contents with every vertex of an n vertex
// mesh at weight.
func (g *VertexGroup) AssignAll(n int, weight float32) {
	g.Indices = make([]uint32, n)
	g.Weights = make([]float32, n)
	for i := 0; i < n; i++ {
		g.Indices[i] = uint32(i)
		g.Weights[i] = weight
	}
}

func (m *Mesh) Extents() math.Extents3D {
	return math.CalculateExtents(m.Vertices)
}
