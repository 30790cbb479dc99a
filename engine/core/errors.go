package core

import (
	"errors"
)

// Failure kinds of an import run. Only ErrSkeletonImportFailed aborts a run,
// the rest are collected as diagnostics.
var (
	ErrDescriptorNotFound   = errors.New("descriptor not found")
	ErrMalformedDescriptor  = errors.New("malformed descriptor")
	ErrSkeletonImportFailed = errors.New("skeleton import failed")
	ErrPartImportFailed     = errors.New("part import failed")
	ErrMissingBone          = errors.New("missing bone")
	ErrMissingMaterial      = errors.New("missing material")
)
