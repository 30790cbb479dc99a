package math

import "github.com/go-gl/mathgl/mgl32"

// CalculateExtents returns the axis aligned bounds of vertices.
func CalculateExtents(vertices []Vec3) Extents3D {
	if len(vertices) == 0 {
		return Extents3D{}
	}
	ext := Extents3D{Min: vertices[0], Max: vertices[0]}
	for _, v := range vertices[1:] {
		for i := 0; i < 3; i++ {
			if v[i] < ext.Min[i] {
				ext.Min[i] = v[i]
			}
			if v[i] > ext.Max[i] {
				ext.Max[i] = v[i]
			}
		}
	}
	return ext
}

// BoneOrientation rotates the local bone axis (+Y) onto head->tail. Degenerate
// bones keep the identity rotation.
func BoneOrientation(head, tail Vec3) Quat {
	dir := tail.Sub(head)
	if dir.Len() < mgl32.Epsilon {
		return mgl32.QuatIdent()
	}
	return mgl32.QuatBetweenVectors(AxisBone, dir.Normalize())
}

// BoneMatrix is the rest matrix of a bone: oriented along head->tail and
// located at head.
func BoneMatrix(head, tail Vec3) Mat4 {
	return Compose(BoneOrientation(head, tail), head)
}

// BoneTailMatrix is BoneMatrix moved to the tail. Objects parented to a bone
// are relative to this frame.
func BoneTailMatrix(head, tail Vec3) Mat4 {
	return Compose(BoneOrientation(head, tail), tail)
}
