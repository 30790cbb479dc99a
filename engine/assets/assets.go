package assets

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mmalewski/Mech-Importer/engine/assets/loaders"
	"github.com/mmalewski/Mech-Importer/engine/core"
)

var ErrWatcherClosed = errors.New("asset watcher already closed")

type AssetType uint8

const (
	AssetNone AssetType = iota
	AssetDescriptor
	AssetMaterial
	AssetMesh
	AssetTexture
)

type AssetInfo struct {
	Path     string
	Type     AssetType
	LastSeen time.Time
}

// AssetManager watches the directories of model descriptors and reports which
// model needs a re-import when one of its files changes.
type AssetManager struct {
	assets map[string]AssetInfo
	// model directory -> descriptor path
	models map[string]string
	// bound part file outside its model directory -> descriptor path
	parts   map[string]string
	meshExt string

	mutex sync.RWMutex

	debounce time.Duration
	pending  map[string]*time.Timer

	fsnotify *fsnotify.Watcher
	isClosed bool
	changes  chan string
	errors   chan error
}

func NewAssetManager(meshExt string) (*AssetManager, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &AssetManager{
		assets:   make(map[string]AssetInfo),
		models:   make(map[string]string),
		parts:    make(map[string]string),
		meshExt:  "." + strings.TrimPrefix(strings.ToLower(meshExt), "."),
		debounce: 250 * time.Millisecond,
		pending:  make(map[string]*time.Timer),
		fsnotify: fsWatch,
		changes:  make(chan string, 16),
		errors:   make(chan error, 16),
	}, nil
}

// Watch starts watching the directory tree of a model descriptor, plus the
// directories of part files its attachments bind from elsewhere.
func (am *AssetManager) Watch(descriptor string) error {
	if am.isClosed {
		return ErrWatcherClosed
	}
	abs, err := filepath.Abs(descriptor)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	am.mutex.Lock()
	am.models[dir] = abs
	am.mutex.Unlock()
	if err := am.watchRecursive(dir, false); err != nil {
		return err
	}
	am.watchBindings(abs)
	return nil
}

// watchBindings follows the part files a descriptor binds. A descriptor that
// does not parse is left to the next import to report.
func (am *AssetManager) watchBindings(descriptor string) {
	paths, err := loaders.ResolveModelPaths(descriptor, am.meshExt, "")
	if err != nil {
		return
	}
	list, err := loaders.ParseAttachments(descriptor, paths.Paths)
	if err != nil {
		core.LogDebug("not following bindings of %s: %s", descriptor, err)
		return
	}
	for _, rec := range list.Records {
		if rec.BindingPath == "" {
			continue
		}
		if owner, ok := am.modelFor(rec.BindingPath); ok && owner == descriptor {
			continue
		}
		am.mutex.Lock()
		am.parts[rec.BindingPath] = descriptor
		am.mutex.Unlock()
		if err := am.fsnotify.Add(filepath.Dir(rec.BindingPath)); err != nil {
			core.LogWarn("watch %s: %s", filepath.Dir(rec.BindingPath), err)
		}
	}
}

// Changes delivers descriptor paths whose model changed on disk.
func (am *AssetManager) Changes() <-chan string {
	return am.changes
}

func (am *AssetManager) Errors() <-chan error {
	return am.errors
}

// Assets returns the tracked files in path order.
func (am *AssetManager) Assets() []AssetInfo {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	out := make([]AssetInfo, 0, len(am.assets))
	for _, a := range am.assets {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Run processes file system events until ctx is done, then closes the
// watcher and both channels.
func (am *AssetManager) Run(ctx context.Context) {
	defer am.close()
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			am.handleEvent(e)

		case e, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("%s", e)
			select {
			case am.errors <- e:
			default:
			}

		case <-ctx.Done():
			return
		}
	}
}

func (am *AssetManager) handleEvent(e fsnotify.Event) {
	s, err := os.Stat(e.Name)
	if err == nil && s.IsDir() {
		if e.Op&fsnotify.Create != 0 {
			if err := am.watchRecursive(e.Name, false); err != nil {
				core.LogWarn("watch %s: %s", e.Name, err)
			}
		}
		return
	}
	if e.Op&fsnotify.Remove != 0 {
		am.removeAsset(e.Name)
		return
	}
	if e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
		if am.handleFileEvent(e.Name) {
			am.schedule(e.Name)
		}
		if d, ok := am.modelFor(e.Name); ok && d == e.Name {
			am.watchBindings(d)
		}
	}
}

// schedule queues a re-import of the model owning path once events settle.
func (am *AssetManager) schedule(path string) {
	descriptor, ok := am.modelFor(path)
	if !ok {
		return
	}
	am.mutex.Lock()
	defer am.mutex.Unlock()
	if am.isClosed {
		return
	}
	if t, ok := am.pending[descriptor]; ok {
		t.Reset(am.debounce)
		return
	}
	am.pending[descriptor] = time.AfterFunc(am.debounce, func() {
		am.mutex.Lock()
		defer am.mutex.Unlock()
		delete(am.pending, descriptor)
		if am.isClosed {
			return
		}
		core.LogInfo("change detected for %s", filepath.Base(descriptor))
		select {
		case am.changes <- descriptor:
		default:
			core.LogWarn("re-import queue full, dropping %s", descriptor)
		}
	})
}

// modelFor finds the descriptor binding path, or else the one whose directory
// is the deepest parent of path.
func (am *AssetManager) modelFor(path string) (string, bool) {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	if d, ok := am.parts[path]; ok {
		return d, true
	}
	best, descriptor := "", ""
	for dir, d := range am.models {
		if (path == dir || strings.HasPrefix(path, dir+string(filepath.Separator))) && len(dir) > len(best) {
			best, descriptor = dir, d
		}
	}
	return descriptor, best != ""
}

// watchRecursive adds all directories under the given one to the watch list.
func (am *AssetManager) watchRecursive(path string, unWatch bool) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if unWatch {
				return am.fsnotify.Remove(walkPath)
			}
			return am.fsnotify.Add(walkPath)
		}
		am.handleFileEvent(walkPath)
		return nil
	})
}

// handleFileEvent records path and reports whether it is a model file.
func (am *AssetManager) handleFileEvent(path string) bool {
	assetType := am.determineAssetType(path)
	if assetType == AssetNone {
		return false
	}
	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.assets[path] = AssetInfo{
		Path:     path,
		Type:     assetType,
		LastSeen: time.Now(),
	}
	return true
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(path string) {
	am.mutex.Lock()
	defer am.mutex.Unlock()
	delete(am.assets, path)
}

func (am *AssetManager) close() {
	am.mutex.Lock()
	defer am.mutex.Unlock()
	if am.isClosed {
		return
	}
	am.isClosed = true
	for _, t := range am.pending {
		t.Stop()
	}
	am.fsnotify.Close()
	close(am.changes)
	close(am.errors)
}

func (am *AssetManager) determineAssetType(path string) AssetType {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".cdf":
		return AssetDescriptor
	case ".mtl":
		return AssetMaterial
	case ".dds", ".tif", ".tiff", ".tga", ".png", ".jpg":
		return AssetTexture
	case ".dae", am.meshExt:
		return AssetMesh
	default:
		return AssetNone
	}
}
