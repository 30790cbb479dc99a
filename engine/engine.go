package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/mmalewski/Mech-Importer/engine/assets"
	"github.com/mmalewski/Mech-Importer/engine/assets/loaders"
	"github.com/mmalewski/Mech-Importer/engine/config"
	"github.com/mmalewski/Mech-Importer/engine/core"
	"github.com/mmalewski/Mech-Importer/engine/rig"
	"github.com/mmalewski/Mech-Importer/engine/scene"
	"github.com/mmalewski/Mech-Importer/engine/systems"
)

// Report is the outcome of one import run.
type Report struct {
	RunID      string
	Descriptor string
	Mech       string
	Stage      Stage
	// Reason is set when Stage is StageFailed.
	Reason      error
	Diagnostics core.Diagnostics

	Scene            *scene.Scene
	Armature         *scene.Node
	Materials        *systems.MaterialSet
	CockpitMaterials *systems.MaterialSet
	Parts            []systems.BoundPart

	Duration time.Duration
}

// ControlBones counts the bones the rig step added.
func (r *Report) ControlBones() int {
	if r.Armature == nil || r.Armature.Armature == nil {
		return 0
	}
	n := 0
	for _, b := range r.Armature.Armature.Bones() {
		if b.Control {
			n++
		}
	}
	return n
}

// run tracks the stage of a single import.
type run struct {
	report *Report
	events *core.EventBus
}

func (r *run) advance(to Stage) {
	if !r.report.Stage.CanAdvance(to) {
		// programming error in the pipeline order
		panic(fmt.Sprintf("invalid stage transition %s -> %s", r.report.Stage, to))
	}
	core.LogDebug("[%s] %s -> %s", r.report.Mech, r.report.Stage, to)
	r.report.Stage = to
	r.events.Fire(core.EventStageChanged, r, core.EventContext{RunID: r.report.RunID, Mech: r.report.Mech, Stage: to.String()})
}

type Option func(*Engine)

// WithImporter replaces the COLLADA importer.
func WithImporter(importer assets.Importer) Option {
	return func(e *Engine) {
		e.importer = importer
	}
}

// WithShading replaces the principled shading system.
func WithShading(shading systems.ShadingSystem) Option {
	return func(e *Engine) {
		e.shading = shading
	}
}

// WithSolver replaces the constraint solver.
func WithSolver(solver rig.Solver) Option {
	return func(e *Engine) {
		e.solver = solver
	}
}

func WithMetrics(m *core.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithEvents publishes stage changes, diagnostics and finished runs on bus.
func WithEvents(bus *core.EventBus) Option {
	return func(e *Engine) {
		e.events = bus
	}
}

// Engine assembles rigged models from descriptors.
type Engine struct {
	config    *config.Config
	importer  assets.Importer
	shading   systems.ShadingSystem
	solver    rig.Solver
	metrics   *core.Metrics
	events    *core.EventBus
	systems   *systems.SystemManager
	augmenter *rig.Augmenter
	wirer     *rig.Wirer
}

func New(cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.New()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		config: cfg,
	}
	for _, opt := range opts {
		opt(e)
	}

	sm, err := systems.NewSystemManager(systems.SystemManagerConfig{
		Importer:     e.importer,
		Shading:      e.shading,
		WeaponTokens: cfg.WeaponTokens,
		QueueSize:    16,
	})
	if err != nil {
		core.LogError("%s", err)
		return nil, err
	}
	e.systems = sm
	e.importer = sm.Importer()

	rigOpts := cfg.RigOptions()
	e.augmenter = rig.NewAugmenter(rigOpts)
	e.wirer = rig.NewWirer(rigOpts.Names, e.solver)
	return e, nil
}

func (e *Engine) Metrics() *core.Metrics {
	return e.metrics
}

// Import runs the whole pipeline for one model descriptor. The error is only
// non-nil when the skeleton could not be imported; the report is always
// returned and lists every recoverable problem. Each call owns its scene;
// concurrent calls share nothing but the read-only configuration.
func (e *Engine) Import(descriptor string) (*Report, error) {
	clock := core.NewClock()
	clock.Start()
	report := &Report{
		RunID:      core.NewRunID(),
		Descriptor: descriptor,
		Stage:      StageNotStarted,
		Scene:      scene.New(),
	}
	r := &run{report: report, events: e.events}
	defer e.finish(report, clock)

	paths, err := loaders.ResolveModelPaths(descriptor, e.config.MeshExt, e.config.TextureExt)
	if err != nil {
		return e.fail(r, err)
	}
	report.Descriptor = paths.Descriptor
	report.Mech = paths.Mech
	core.LogInfo("[%s] importing %s (run %s)", paths.Mech, paths.Descriptor, report.RunID)

	// skeleton
	armature, err := e.importer.ImportSkeleton(paths.Skeleton)
	if err != nil {
		return e.fail(r, err)
	}
	report.Scene.Link(armature)
	report.Armature = armature
	r.advance(StageSkeletonImported)

	// materials
	report.Materials = e.loadMaterials(report, paths.Materials, paths.Paths)
	if e.config.CockpitMaterials {
		report.CockpitMaterials = e.loadMaterials(report, paths.CockpitMaterials, paths.Paths)
	}
	r.advance(StageMaterialsLoaded)

	// geometry
	list, err := loaders.ParseAttachments(paths.Descriptor, paths.Paths)
	if err != nil {
		report.Diagnostics.Add(descriptorKind(err), paths.Descriptor, err)
	}
	for _, s := range list.Skipped {
		report.Diagnostics.Add(core.ErrMalformedDescriptor, fmt.Sprintf("attachment #%d %s", s.Index, s.Name), s.Err)
	}
	parts, diags := e.systems.Binder().BindAll(report.Scene, armature, paths.Mech, list.Records, report.Materials)
	report.Parts = parts
	report.Diagnostics.Append(diags...)
	e.classifyLayers(parts)
	r.advance(StageGeometryBound)

	// rig
	report.Diagnostics.Append(e.augmenter.Augment(report.Scene, armature)...)
	report.Diagnostics.Append(e.wirer.Wire(armature.Armature)...)
	r.advance(StageRigAugmented)

	r.advance(StageComplete)
	return report, nil
}

func (e *Engine) fail(r *run, cause error) (*Report, error) {
	err := fmt.Errorf("%w: %v", core.ErrSkeletonImportFailed, cause)
	r.report.Diagnostics.Add(core.ErrSkeletonImportFailed, r.report.Mech, cause)
	r.advance(StageFailed)
	r.report.Reason = err
	core.LogError("[%s] %s", r.report.Mech, err)
	return r.report, err
}

func (e *Engine) finish(report *Report, clock *core.Clock) {
	clock.Stop()
	report.Duration = clock.Elapsed()
	e.metrics.ObserveRun(core.RunSample{
		Stage:        report.Stage.String(),
		Duration:     report.Duration,
		Diagnostics:  report.Diagnostics,
		PartsBound:   len(report.Parts),
		ControlBones: report.ControlBones(),
	})
	for i := range report.Diagnostics {
		e.events.Fire(core.EventDiagnostic, e, core.EventContext{RunID: report.RunID, Mech: report.Mech, Stage: report.Stage.String(), Diagnostic: &report.Diagnostics[i]})
	}
	e.events.Fire(core.EventRunFinished, e, core.EventContext{RunID: report.RunID, Mech: report.Mech, Stage: report.Stage.String()})
	core.LogInfo("[%s] %s in %s: %d parts, %d diagnostics", report.Mech, report.Stage, report.Duration.Round(time.Millisecond), len(report.Parts), len(report.Diagnostics))
}

// loadMaterials never fails the run; an unreadable descriptor leaves an
// empty set and a diagnostic.
func (e *Engine) loadMaterials(report *Report, path string, paths loaders.Paths) *systems.MaterialSet {
	set, err := e.systems.MaterialSystem().Load(path, paths)
	if err != nil {
		report.Diagnostics.Add(descriptorKind(err), path, err)
	}
	return set
}

// classifyLayers puts every bound node on the layer of its material class.
func (e *Engine) classifyLayers(parts []systems.BoundPart) {
	for _, p := range parts {
		for _, n := range p.Nodes {
			n.Layer = e.config.LayerFor(n.Class)
		}
	}
}

func descriptorKind(err error) error {
	if errors.Is(err, core.ErrMalformedDescriptor) {
		return core.ErrMalformedDescriptor
	}
	return core.ErrDescriptorNotFound
}

// Submit queues an import on the engine's single worker. Runs submitted
// this way execute one at a time in submit order.
// done is called exactly once, with a nil report if the import panicked.
func (e *Engine) Submit(descriptor string, done func(*Report, error)) {
	reported := false
	e.systems.JobSystem().Submit(systems.JobTask{
		Name: descriptor,
		Run: func() error {
			report, err := e.Import(descriptor)
			reported = true
			if done != nil {
				done(report, err)
			}
			return err
		},
		OnFailure: func(err error) {
			if !reported && done != nil {
				done(nil, err)
			}
		},
	})
}

// Shutdown waits for queued imports and stops the worker.
func (e *Engine) Shutdown() error {
	return e.systems.Shutdown()
}
