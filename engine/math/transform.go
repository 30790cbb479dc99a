package math

import "github.com/go-gl/mathgl/mgl32"

// Compose builds the world matrix T * R of a part from its bind rotation and
// position. Scale is always 1. The quaternion is normalised first; a zero
// quaternion yields the identity rotation.
func Compose(rotation Quat, position Vec3) Mat4 {
	r := rotation.Normalize().Mat4()
	return mgl32.Translate3D(position.X(), position.Y(), position.Z()).Mul4(r)
}

// Decompose splits a rigid transform produced by Compose back into rotation and
// translation. Any scale in m is ignored.
func Decompose(m Mat4) (Quat, Vec3) {
	return mgl32.Mat4ToQuat(m).Normalize(), Translation(m)
}

// Translation returns the translation column of m.
func Translation(m Mat4) Vec3 {
	return m.Col(3).Vec3()
}

// TransformPoint applies m to p as a position (w = 1).
func TransformPoint(m Mat4, p Vec3) Vec3 {
	return mgl32.TransformCoordinate(p, m)
}
