package rig

import (
	"fmt"

	"github.com/mmalewski/Mech-Importer/engine/core"
	"github.com/mmalewski/Mech-Importer/engine/scene"
)

// ConstraintBinding asks the solver to constrain Owner towards Target.
type ConstraintBinding struct {
	Owner       string
	Target      string
	Kind        scene.ConstraintKind
	ChainLength int
	Space       scene.Space
}

func (b ConstraintBinding) String() string {
	if b.Kind == scene.ConstraintIK {
		return fmt.Sprintf("ik %s -> %s (chain %d)", b.Owner, b.Target, b.ChainLength)
	}
	return fmt.Sprintf("%s %s -> %s (%s)", b.Kind, b.Owner, b.Target, b.Space)
}

// Solver applies bindings to an armature.
type Solver interface {
	Apply(arm *scene.Armature, b ConstraintBinding) error
}

// ArmatureSolver records constraints on the owner bone. Re-applying a binding
// replaces the earlier constraint of the same kind and target.
type ArmatureSolver struct{}

func (ArmatureSolver) Apply(arm *scene.Armature, b ConstraintBinding) error {
	owner, ok := arm.Bone(b.Owner)
	if !ok {
		return fmt.Errorf("%w: %s", core.ErrMissingBone, b.Owner)
	}
	owner.SetConstraint(scene.Constraint{
		Kind:        b.Kind,
		Target:      b.Target,
		ChainLength: b.ChainLength,
		OwnerSpace:  b.Space,
		TargetSpace: b.Space,
	})
	return nil
}

// Wirer connects the control layer to the skeleton.
type Wirer struct {
	names  BoneNames
	solver Solver
}

func NewWirer(names BoneNames, solver Solver) *Wirer {
	if solver == nil {
		solver = ArmatureSolver{}
	}
	return &Wirer{names: names, solver: solver}
}

// Bindings lists the constraints for arm in application order: pelvis
// first, then hands, upper arms, calves and thighs, right before left.
func (w *Wirer) Bindings(arm *scene.Armature) []ConstraintBinding {
	n := w.names
	out := []ConstraintBinding{{
		Owner:  n.PelvisPitch,
		Target: n.Pelvis,
		Kind:   scene.ConstraintCopyRotation,
		Space:  scene.SpaceLocal,
	}}
	for _, s := range Sides {
		chain := 3
		if arm.Has(n.Limb(n.Elbow, s)) {
			chain = 5
		}
		out = append(out, ik(n.Limb(n.Hand, s), HandIK(s), chain))
	}
	for _, s := range Sides {
		out = append(out, ik(n.Limb(n.UpperArm, s), ElbowIK(s), 1))
	}
	for _, s := range Sides {
		out = append(out, ik(n.Limb(n.Calf, s), FootIK(s), 2))
	}
	for _, s := range Sides {
		out = append(out, ik(n.Limb(n.Thigh, s), KneeIK(s), 1))
	}
	return out
}

func ik(owner, target string, chain int) ConstraintBinding {
	return ConstraintBinding{
		Owner:       owner,
		Target:      target,
		Kind:        scene.ConstraintIK,
		ChainLength: chain,
		Space:       scene.SpaceWorld,
	}
}

// Wire applies Bindings and turns off rotation inheritance on the hand,
// elbow and foot controls. Bindings whose bones are missing are skipped.
func (w *Wirer) Wire(arm *scene.Armature) core.Diagnostics {
	var diags core.Diagnostics
	for _, b := range w.Bindings(arm) {
		missing := ""
		switch {
		case !arm.Has(b.Owner):
			missing = b.Owner
		case !arm.Has(b.Target):
			missing = b.Target
		}
		if missing != "" {
			diags.Add(core.ErrMissingBone, missing, fmt.Errorf("skipped %s", b))
			continue
		}
		if err := w.solver.Apply(arm, b); err != nil {
			diags.Add(core.ErrMissingBone, b.Owner, err)
			continue
		}
		core.LogDebug("wired %s", b)
	}
	for _, s := range Sides {
		for _, name := range []string{HandIK(s), ElbowIK(s), FootIK(s)} {
			if bone, ok := arm.Bone(name); ok {
				bone.InheritRotation = false
			}
		}
	}
	return diags
}
