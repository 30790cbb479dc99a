package assets

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mmalewski/Mech-Importer/engine/internal/fixtures"
)

func TestDetermineAssetType(t *testing.T) {
	am, err := NewAssetManager("obj")
	if err != nil {
		t.Fatal(err)
	}
	defer am.close()

	cases := map[string]AssetType{
		"griffin.cdf":       AssetDescriptor,
		"griffin_body.MTL":  AssetMaterial,
		"griffin_diff.dds":  AssetTexture,
		"body/arm.dae":      AssetMesh,
		"body/arm.obj":      AssetMesh,
		"notes.txt":         AssetNone,
		"body/arm.cga":      AssetNone,
		"griffin.cdf.swp~":  AssetNone,
		"cockpit/glass.tif": AssetTexture,
	}
	for path, want := range cases {
		if got := am.determineAssetType(path); got != want {
			t.Errorf("%s: got %d want %d", path, got, want)
		}
	}
}

func TestModelFor(t *testing.T) {
	am, err := NewAssetManager("dae")
	if err != nil {
		t.Fatal(err)
	}
	defer am.close()

	outer := filepath.Join("/data", "objects", "mechs")
	inner := filepath.Join(outer, "griffin")
	am.models[outer] = filepath.Join(outer, "all.cdf")
	am.models[inner] = filepath.Join(inner, "griffin.cdf")

	if d, ok := am.modelFor(filepath.Join(inner, "body", "arm.dae")); !ok || d != filepath.Join(inner, "griffin.cdf") {
		t.Errorf("nested path: got %q %v", d, ok)
	}
	if d, ok := am.modelFor(filepath.Join(outer, "griffinx", "a.dae")); !ok || d != filepath.Join(outer, "all.cdf") {
		t.Errorf("sibling prefix: got %q %v", d, ok)
	}
	if _, ok := am.modelFor(filepath.Join("/elsewhere", "a.dae")); ok {
		t.Error("unrelated path matched a model")
	}
}

func TestWatchReportsChangedModel(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "griffin")
	if err := os.MkdirAll(filepath.Join(dir, "body"), 0o755); err != nil {
		t.Fatal(err)
	}
	descriptor := filepath.Join(dir, "griffin.cdf")
	if err := os.WriteFile(descriptor, []byte("<CharacterDefinition/>"), 0o644); err != nil {
		t.Fatal(err)
	}

	am, err := NewAssetManager("dae")
	if err != nil {
		t.Fatal(err)
	}
	am.debounce = 20 * time.Millisecond
	if err := am.Watch(descriptor); err != nil {
		t.Fatal(err)
	}
	if got := am.Assets(); len(got) != 1 || got[0].Type != AssetDescriptor {
		t.Fatalf("initial scan: got %+v", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		am.Run(ctx)
		close(done)
	}()

	if err := os.WriteFile(filepath.Join(dir, "body", "arm.dae"), []byte("<COLLADA/>"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-am.Changes():
		abs, _ := filepath.Abs(descriptor)
		if got != abs {
			t.Errorf("got %q want %q", got, abs)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()
	<-done
	for range am.Changes() {
		// drain re-imports queued by the trailing write events
	}
	if err := am.Watch(descriptor); err != ErrWatcherClosed {
		t.Errorf("watch after close: got %v", err)
	}
}

func TestWatchFollowsSharedPartFiles(t *testing.T) {
	m := fixtures.NewModel(t, "griffin")
	shared := m.Write(t, "objects/mechs/shared/gun.dae", fixtures.PartDAE(fixtures.Part{Node: "gun", Slot: "weapon_generic"}))
	unrelated := filepath.Join(filepath.Dir(shared), "other.dae")
	descriptor := m.WriteDescriptor(t, []fixtures.Attachment{
		{AName: "ac20_gun", BoneName: "Bip01 R Forearm", Binding: "objects/mechs/shared/gun.cga"},
	})

	am, err := NewAssetManager("dae")
	if err != nil {
		t.Fatal(err)
	}
	am.debounce = 20 * time.Millisecond
	if err := am.Watch(descriptor); err != nil {
		t.Fatal(err)
	}
	abs, _ := filepath.Abs(descriptor)
	if d, ok := am.modelFor(shared); !ok || d != abs {
		t.Fatalf("shared part owner: got %q %v", d, ok)
	}
	if _, ok := am.modelFor(unrelated); ok {
		t.Fatal("unbound sibling file matched a model")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		am.Run(ctx)
		close(done)
	}()

	if err := os.WriteFile(shared, []byte("<COLLADA/>"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-am.Changes():
		if got != abs {
			t.Errorf("got %q want %q", got, abs)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported for the shared part")
	}

	cancel()
	<-done
	for range am.Changes() {
	}
}
