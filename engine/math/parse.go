package math

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

var ErrComponentCount = errors.New("wrong number of components")

// ParseQuaternionWXYZ parses "w,x,y,z". Components are comma separated and may
// be padded with spaces.
func ParseQuaternionWXYZ(s string) (Quat, error) {
	v, err := parseFloats(s, 4)
	if err != nil {
		return mgl32.QuatIdent(), fmt.Errorf("quaternion %q: %w", s, err)
	}
	return Quat{W: v[0], V: Vec3{v[1], v[2], v[3]}}, nil
}

// ParseVec3 parses "x,y,z".
func ParseVec3(s string) (Vec3, error) {
	v, err := parseFloats(s, 3)
	if err != nil {
		return Vec3{}, fmt.Errorf("vector %q: %w", s, err)
	}
	return Vec3{v[0], v[1], v[2]}, nil
}

func parseFloats(s string, n int) ([]float32, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("%w: want %d, got %d", ErrComponentCount, n, len(parts))
	}
	out := make([]float32, n)
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(f)
	}
	return out, nil
}
