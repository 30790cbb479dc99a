// Package rig synthesises the IK control layer of a biped skeleton: control
// bones, their proxy shapes and the constraints that drive the limbs.
package rig

import "strings"

type Side uint8

const (
	Right Side = iota
	Left
)

// Sides is the order every per-side step runs in.
var Sides = []Side{Right, Left}

// Suffix is the side suffix of control bone names, ".R" or ".L".
func (s Side) Suffix() string {
	if s == Left {
		return ".L"
	}
	return ".R"
}

func (s Side) String() string {
	if s == Left {
		return "left"
	}
	return "right"
}

// SidePlaceholder is replaced by the side letter in limb name templates.
const SidePlaceholder = "{side}"

// BoneNames describes the skeleton's naming convention. Limb names are
// templates containing SidePlaceholder.
type BoneNames struct {
	Root        string
	Pelvis      string
	PelvisPitch string
	Thigh       string
	Calf        string
	Foot        string
	UpperArm    string
	Forearm     string
	Hand        string
	Elbow       string
	RightLetter string
	LeftLetter  string
}

func DefaultBoneNames() BoneNames {
	return BoneNames{
		Root:        "Bip01",
		Pelvis:      "Bip01_Pelvis",
		PelvisPitch: "Bip01_Pitch",
		Thigh:       "Bip01_{side}_Thigh",
		Calf:        "Bip01_{side}_Calf",
		Foot:        "Bip01_{side}_Foot",
		UpperArm:    "Bip01_{side}_UpperArm",
		Forearm:     "Bip01_{side}_Forearm",
		Hand:        "Bip01_{side}_Hand",
		Elbow:       "Bip01_{side}_Elbow",
		RightLetter: "R",
		LeftLetter:  "L",
	}
}

// Limb expands a limb template for side.
func (n BoneNames) Limb(template string, side Side) string {
	letter := n.RightLetter
	if side == Left {
		letter = n.LeftLetter
	}
	return strings.ReplaceAll(template, SidePlaceholder, letter)
}

// Control bone names.
func FootIK(s Side) string  { return "Foot_IK" + s.Suffix() }
func KneeIK(s Side) string  { return "Knee_IK" + s.Suffix() }
func HandIK(s Side) string  { return "Hand_IK" + s.Suffix() }
func ElbowIK(s Side) string { return "Elbow_IK" + s.Suffix() }

// ProxyName is the scene node drawn for bone.
func ProxyName(bone string) string {
	return "WGT_" + bone
}
