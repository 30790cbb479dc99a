package assets

import (
	"github.com/mmalewski/Mech-Importer/engine/assets/loaders"
	"github.com/mmalewski/Mech-Importer/engine/scene"
)

// MeshImporter loads a part file and returns the nodes it creates, detached
// from any scene.
type MeshImporter interface {
	ImportMesh(path string) ([]*scene.Node, error)
}

// SkeletonImporter loads the skeleton file of a model as an armature node.
type SkeletonImporter interface {
	ImportSkeleton(path string) (*scene.Node, error)
}

// Importer covers both; the COLLADA loader is the default.
type Importer interface {
	MeshImporter
	SkeletonImporter
}

// TextureProber reports on texture files referenced by materials.
type TextureProber interface {
	Probe(path string) (loaders.TextureInfo, error)
}

var (
	_ Importer      = (*loaders.ColladaImporter)(nil)
	_ TextureProber = (*loaders.TextureLoader)(nil)
)
