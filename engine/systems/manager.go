package systems

import (
	"github.com/mmalewski/Mech-Importer/engine/assets"
	"github.com/mmalewski/Mech-Importer/engine/assets/loaders"
)

type SystemManagerConfig struct {
	Importer     assets.Importer
	Shading      ShadingSystem
	WeaponTokens []string
	// QueueSize bounds pending jobs; imports always run on one worker.
	QueueSize int
}

// SystemManager owns the systems an import run is made of.
type SystemManager struct {
	importer       assets.Importer
	classifier     *Classifier
	materialSystem *MaterialSystem
	binder         *GeometryBinder
	jobSystem      *JobSystem
}

func NewSystemManager(config SystemManagerConfig) (*SystemManager, error) {
	importer := config.Importer
	if importer == nil {
		importer = loaders.NewColladaImporter()
	}
	shading := config.Shading
	if shading == nil {
		shading = NewPrincipledShading(&loaders.TextureLoader{})
	}
	js, err := NewJobSystem(1, config.QueueSize)
	if err != nil {
		return nil, err
	}
	classifier := NewClassifier(config.WeaponTokens)
	return &SystemManager{
		importer:       importer,
		classifier:     classifier,
		materialSystem: NewMaterialSystem(shading),
		binder:         NewGeometryBinder(importer, classifier),
		jobSystem:      js,
	}, nil
}

func (sm *SystemManager) Importer() assets.Importer {
	return sm.importer
}

func (sm *SystemManager) Classifier() *Classifier {
	return sm.classifier
}

func (sm *SystemManager) MaterialSystem() *MaterialSystem {
	return sm.materialSystem
}

func (sm *SystemManager) Binder() *GeometryBinder {
	return sm.binder
}

func (sm *SystemManager) JobSystem() *JobSystem {
	return sm.jobSystem
}

func (sm *SystemManager) Shutdown() error {
	return sm.jobSystem.Shutdown()
}
