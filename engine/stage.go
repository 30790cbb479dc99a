package engine

type Stage uint8

const (
	// Nothing imported yet
	StageNotStarted Stage = iota
	// The skeleton is in the scene
	StageSkeletonImported
	// Material descriptors were processed, successfully or not
	StageMaterialsLoaded
	// Every attachment was bound or diagnosed
	StageGeometryBound
	// Control bones, proxies and constraints are in place
	StageRigAugmented
	// The run finished
	StageComplete
	// The skeleton could not be imported, nothing else ran
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageNotStarted:
		return "not_started"
	case StageSkeletonImported:
		return "skeleton_imported"
	case StageMaterialsLoaded:
		return "materials_loaded"
	case StageGeometryBound:
		return "geometry_bound"
	case StageRigAugmented:
		return "rig_augmented"
	case StageComplete:
		return "complete"
	case StageFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// CanAdvance reports whether a run may move from s to next. Runs only move
// forward one stage at a time; Failed is only reachable before the skeleton
// is imported.
func (s Stage) CanAdvance(next Stage) bool {
	if next == StageFailed {
		return s == StageNotStarted
	}
	return s < StageComplete && next == s+1
}

// Terminal reports whether no further transition is possible.
func (s Stage) Terminal() bool {
	return s == StageComplete || s == StageFailed
}
