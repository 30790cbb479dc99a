package math

import (
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/exp/constraints"
)

// The scene works in single precision, column-major, right-handed Z-up
// coordinates. These aliases keep call sites short.
type (
	Vec3 = mgl32.Vec3
	Vec4 = mgl32.Vec4
	Quat = mgl32.Quat
	Mat3 = mgl32.Mat3
	Mat4 = mgl32.Mat4
)

var (
	// AxisUp is the world up direction, used for target bone tails.
	AxisUp = Vec3{0, 0, 1}
	// AxisDepth is the front/back axis that the knee bend heuristic measures.
	AxisDepth = Vec3{0, 1, 0}
	// AxisBone is the local axis a bone points along.
	AxisBone = Vec3{0, 1, 0}
)

/**
 * @brief Represents the extents of a 3d object.
 */
type Extents3D struct {
	/** @brief The minimum extents of the object. */
	Min Vec3
	/** @brief The maximum extents of the object. */
	Max Vec3
}

func (e Extents3D) Size() Vec3 {
	return e.Max.Sub(e.Min)
}

func (e Extents3D) Center() Vec3 {
	return e.Min.Add(e.Max).Mul(0.5)
}

// Clamp limits v to [low, high].
func Clamp[T constraints.Ordered](v, low, high T) T {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}
