package rig

import (
	"github.com/mmalewski/Mech-Importer/engine/math"
	"github.com/mmalewski/Mech-Importer/engine/scene"
)

// Shape is a unit sized wireframe in bone space (the bone runs along +Y).
type Shape struct {
	Kind     string
	Vertices []math.Vec3
	Edges    [][2]uint32
}

const (
	hf = 0.5
	dg = 0.35355339 // hf * cos(45°)
	cs = 0.70710678 // cos(45°)
)

var ShapeCube = Shape{
	Kind: "cube",
	Vertices: []math.Vec3{
		{-hf, -hf, -hf}, {hf, -hf, -hf}, {hf, hf, -hf}, {-hf, hf, -hf},
		{-hf, -hf, hf}, {hf, -hf, hf}, {hf, hf, hf}, {-hf, hf, hf},
	},
	Edges: [][2]uint32{
		{0, 1}, {1, 2}, {2, 3}, {3, 0},
		{4, 5}, {5, 6}, {6, 7}, {7, 4},
		{0, 4}, {1, 5}, {2, 6}, {3, 7},
	},
}

// ShapeSphere is three orthogonal rings.
var ShapeSphere = Shape{
	Kind: "sphere",
	Vertices: []math.Vec3{
		{hf, 0, 0}, {dg, dg, 0}, {0, hf, 0}, {-dg, dg, 0}, {-hf, 0, 0}, {-dg, -dg, 0}, {0, -hf, 0}, {dg, -dg, 0},
		{hf, 0, 0}, {dg, 0, dg}, {0, 0, hf}, {-dg, 0, dg}, {-hf, 0, 0}, {-dg, 0, -dg}, {0, 0, -hf}, {dg, 0, -dg},
		{0, hf, 0}, {0, dg, dg}, {0, 0, hf}, {0, -dg, dg}, {0, -hf, 0}, {0, -dg, -dg}, {0, 0, -hf}, {0, dg, -dg},
	},
	Edges: [][2]uint32{
		{0, 1}, {1, 2}, {2, 3}, {3, 4}, {4, 5}, {5, 6}, {6, 7}, {7, 0},
		{8, 9}, {9, 10}, {10, 11}, {11, 12}, {12, 13}, {13, 14}, {14, 15}, {15, 8},
		{16, 17}, {17, 18}, {18, 19}, {19, 20}, {20, 21}, {21, 22}, {22, 23}, {23, 16},
	},
}

// ShapeCircle lies across the bone.
var ShapeCircle = Shape{
	Kind: "circle",
	Vertices: []math.Vec3{
		{1, 0, 0}, {cs, 0, cs}, {0, 0, 1}, {-cs, 0, cs}, {-1, 0, 0}, {-cs, 0, -cs}, {0, 0, -1}, {cs, 0, -cs},
	},
	Edges: [][2]uint32{
		{0, 1}, {1, 2}, {2, 3}, {3, 4}, {4, 5}, {5, 6}, {6, 7}, {7, 0},
	},
}

// ShapeCompass is a circle with four pointers, used for the root.
var ShapeCompass = Shape{
	Kind: "compass",
	Vertices: []math.Vec3{
		{1, 0, 0}, {cs, 0, cs}, {0, 0, 1}, {-cs, 0, cs}, {-1, 0, 0}, {-cs, 0, -cs}, {0, 0, -1}, {cs, 0, -cs},
		{1.5, 0, 0}, {0, 0, 1.5}, {-1.5, 0, 0}, {0, 0, -1.5},
	},
	Edges: [][2]uint32{
		{0, 1}, {1, 2}, {2, 3}, {3, 4}, {4, 5}, {5, 6}, {6, 7}, {7, 0},
		{0, 8}, {2, 9}, {4, 10}, {6, 11},
	},
}

// Mesh returns a wireframe copy of s scaled by size. It has no faces.
func (s Shape) Mesh(size float32) *scene.Mesh {
	m := &scene.Mesh{
		Name:     "WGT_" + s.Kind,
		Vertices: make([]math.Vec3, len(s.Vertices)),
		Edges:    append([][2]uint32(nil), s.Edges...),
	}
	for i, v := range s.Vertices {
		m.Vertices[i] = v.Mul(size)
	}
	return m
}
