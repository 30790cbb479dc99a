package math_test

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mmalewski/Mech-Importer/engine/math"
)

func TestComposeIdentity(t *testing.T) {
	m := math.Compose(mgl32.QuatIdent(), math.Vec3{})
	if m != mgl32.Ident4() {
		t.Fatalf("identity compose: got %v", m)
	}
}

func TestComposeTranslationColumn(t *testing.T) {
	q := mgl32.QuatRotate(mgl32.DegToRad(37), math.Vec3{1, 2, 3}.Normalize())
	p := math.Vec3{1.5, -2.25, 7}
	m := math.Compose(q, p)

	if got := m.Col(3); got != (math.Vec4{1.5, -2.25, 7, 1}) {
		t.Errorf("translation column: got %v", got)
	}
	if !m.Mat3().ApproxEqualThreshold(q.Mat4().Mat3(), 1e-6) {
		t.Errorf("rotation block: got %v want %v", m.Mat3(), q.Mat4().Mat3())
	}
	if m.Row(3) != (math.Vec4{0, 0, 0, 1}) {
		t.Errorf("bottom row: got %v", m.Row(3))
	}
}

func TestComposeKnownPairs(t *testing.T) {
	cases := []struct {
		name     string
		rotation string
		position string
		in       math.Vec3
		want     math.Vec3
	}{
		{"identity", "1,0,0,0", "0,0,0", math.Vec3{1, 2, 3}, math.Vec3{1, 2, 3}},
		{"quarter turn about z", "0.70710678,0,0,0.70710678", "0,0,0", math.Vec3{1, 0, 0}, math.Vec3{0, 1, 0}},
		{"half turn about x", "0,1,0,0", "0,0,2", math.Vec3{0, 1, 0}, math.Vec3{0, -1, 2}},
		{"translation only", "1,0,0,0", "-1.5, 0.25, 3", math.Vec3{}, math.Vec3{-1.5, 0.25, 3}},
	}
	for _, c := range cases {
		q, err := math.ParseQuaternionWXYZ(c.rotation)
		if err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
		p, err := math.ParseVec3(c.position)
		if err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
		got := math.TransformPoint(math.Compose(q, p), c.in)
		if !got.ApproxEqualThreshold(c.want, 1e-5) {
			t.Errorf("%s: got %v want %v", c.name, got, c.want)
		}
	}
}

func TestComposeNormalisesRotation(t *testing.T) {
	q := mgl32.Quat{W: 2, V: math.Vec3{}}
	if m := math.Compose(q, math.Vec3{}); !m.ApproxEqual(mgl32.Ident4()) {
		t.Errorf("scaled identity quaternion should compose to identity, got %v", m)
	}
	if m := math.Compose(mgl32.Quat{}, math.Vec3{}); !m.ApproxEqual(mgl32.Ident4()) {
		t.Errorf("zero quaternion should compose to identity, got %v", m)
	}
}

func TestDecomposeRoundTrip(t *testing.T) {
	q := mgl32.QuatRotate(mgl32.DegToRad(120), math.Vec3{0, 0, 1})
	p := math.Vec3{3, 4, 5}
	gotQ, gotP := math.Decompose(math.Compose(q, p))
	if !gotP.ApproxEqual(p) {
		t.Errorf("position: got %v want %v", gotP, p)
	}
	if !gotQ.OrientationEqualThreshold(q, 1e-5) {
		t.Errorf("rotation: got %v want %v", gotQ, q)
	}
}

func TestParseQuaternionOrder(t *testing.T) {
	q, err := math.ParseQuaternionWXYZ(" 0.5, 0.1,0.2 ,0.3")
	if err != nil {
		t.Fatal(err)
	}
	if q.W != 0.5 || q.V != (math.Vec3{0.1, 0.2, 0.3}) {
		t.Errorf("components in wrong order: %v", q)
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := math.ParseQuaternionWXYZ("1,0,0"); !errors.Is(err, math.ErrComponentCount) {
		t.Errorf("want component count error, got %v", err)
	}
	if _, err := math.ParseVec3("1,a,0"); err == nil {
		t.Error("want parse error for non numeric component")
	}
}

func TestBoneMatrixPointsAlongBone(t *testing.T) {
	head := math.Vec3{0, 0, 1}
	tail := math.Vec3{0, 0, 3}
	m := math.BoneMatrix(head, tail)
	got := math.TransformPoint(m, math.Vec3{0, 2, 0})
	if !got.ApproxEqualThreshold(tail, 1e-5) {
		t.Errorf("bone axis should reach the tail: got %v", got)
	}
}

func TestClamp(t *testing.T) {
	if math.Clamp(25, 0, 19) != 19 || math.Clamp(-1, 0, 19) != 0 || math.Clamp(0.5, 0.0, 1.0) != 0.5 {
		t.Error("clamp out of range")
	}
}
