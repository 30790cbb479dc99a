/*
mechrig assembles rigged mech models from their attachment descriptors.

	mechrig [flags] <model.cdf>...
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mmalewski/Mech-Importer/engine"
	"github.com/mmalewski/Mech-Importer/engine/assets"
	"github.com/mmalewski/Mech-Importer/engine/config"
	"github.com/mmalewski/Mech-Importer/engine/core"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "config file (.toml, .yaml); defaults to $"+config.EnvConfigFile)
	out := flag.String("out", "", "write a scene snapshot here (.json, .json.lz4)")
	metricsPath := flag.String("metrics", "", "write Prometheus metrics to this textfile")
	logLevel := flag.String("log-level", "", "debug, info, warn or error")
	watch := flag.Bool("watch", false, "re-import models when their files change")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <model.cdf>...\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		return 2
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		core.LogWarn(".env: %s", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		core.LogError("%s", err)
		return 2
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *out != "" {
		cfg.Output.Scene = *out
	}
	if *metricsPath != "" {
		cfg.Output.Metrics = *metricsPath
	}
	core.SetLogLevel(cfg.LogLevel)

	var (
		mu     sync.Mutex
		failed int
	)
	events := core.NewEventBus()
	events.Register(core.EventRunFinished, "exit-status", func(_ core.EventCode, _, _ interface{}, data core.EventContext) bool {
		if data.Stage == engine.StageFailed.String() {
			mu.Lock()
			failed++
			mu.Unlock()
		}
		return false
	})

	metrics := core.NewMetrics()
	eng, err := engine.New(cfg, engine.WithMetrics(metrics), engine.WithEvents(events))
	if err != nil {
		core.LogError("%s", err)
		return 2
	}

	descriptors := flag.Args()
	done := func(report *engine.Report, err error) {
		mu.Lock()
		defer mu.Unlock()
		printReport(report)
		if cfg.Output.Scene != "" && report.Scene != nil && err == nil {
			path := outputPath(cfg.Output.Scene, report.Mech, len(descriptors) > 1)
			if werr := report.Scene.WriteSnapshot(path); werr != nil {
				core.LogError("%s", werr)
			} else {
				core.LogInfo("[%s] scene written to %s", report.Mech, path)
			}
		}
		if cfg.Output.Metrics != "" {
			if werr := metrics.WriteTextfile(cfg.Output.Metrics); werr != nil {
				core.LogError("%s", werr)
			}
		}
	}

	for _, d := range descriptors {
		eng.Submit(d, done)
	}

	if *watch {
		if err := watchModels(eng, cfg, descriptors, done); err != nil {
			core.LogError("%s", err)
		}
	}

	if err := eng.Shutdown(); err != nil {
		core.LogError("%s", err)
	}
	if failed > 0 {
		return 1
	}
	return 0
}

// watchModels re-submits models whose files change until interrupted.
func watchModels(eng *engine.Engine, cfg *config.Config, descriptors []string, done func(*engine.Report, error)) error {
	am, err := assets.NewAssetManager(cfg.MeshExt)
	if err != nil {
		return err
	}
	for _, d := range descriptors {
		if err := am.Watch(d); err != nil {
			return fmt.Errorf("watch %s: %w", d, err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()
	go am.Run(ctx)

	core.LogInfo("watching %d models, press ctrl+c to stop", len(descriptors))
	for descriptor := range am.Changes() {
		eng.Submit(descriptor, done)
	}
	return nil
}

func printReport(r *engine.Report) {
	fmt.Printf("%s  %-12s %-10s parts=%d control_bones=%d diagnostics=%d  %s\n",
		r.RunID[:8], r.Mech, r.Stage, len(r.Parts), r.ControlBones(), len(r.Diagnostics), r.Duration.Round(1e6))
	for _, d := range r.Diagnostics {
		fmt.Printf("    %s\n", d.Error())
	}
}

// outputPath keeps snapshots of several models apart: scene.json.lz4 becomes
// scene.<mech>.json.lz4.
func outputPath(path, mech string, multi bool) string {
	if !multi || mech == "" {
		return path
	}
	dir, base := filepath.Split(path)
	if i := strings.Index(base, "."); i > 0 {
		return filepath.Join(dir, base[:i]+"."+mech+base[i:])
	}
	return filepath.Join(dir, base+"."+mech)
}
