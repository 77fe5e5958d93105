package generator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/eic/datamodel-glue/internal/codegen/common"
	"github.com/eic/datamodel-glue/internal/codegen/scanner"
)

// DefaultDebounce is how long Watch waits for a burst of filesystem events
// (e.g. a data-model reinstall) to settle before regenerating.
const DefaultDebounce = 250 * time.Millisecond

const relevantOps = fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename

// IsRelevantEvent reports whether ev can change the generated header.
func IsRelevantEvent(ev fsnotify.Event) bool {
	return ev.Op&relevantOps != 0 && scanner.IsCollectionHeader(filepath.Base(ev.Name))
}

// Watch generates once, then regenerates every time a collection header in
// root's namespace directory is added, removed, renamed or rewritten. A
// namespace directory that is removed and recreated is watched again; if
// <root>/include itself disappears Watch returns an IOError. Each run
// is reported to onRun (which may be nil). Generation failures after the first
// successful setup are logged and do not stop the watch. Watch returns when ctx
// is cancelled.
func (g *Generator) Watch(ctx context.Context, root string, debounce time.Duration, onRun func(*GeneratedFile, error)) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	run := func() {
		gf, err := g.Generate(root)
		if err != nil {
			g.logger.Error("Generation failed", "error", err)
		}
		if onRun != nil {
			onRun(gf, err)
		}
	}

	gf, err := g.Generate(root)
	if errors.Is(err, common.ErrConfiguration) {
		return err
	}
	if err != nil {
		g.logger.Error("Generation failed", "error", err)
	}

	watcher, werr := fsnotify.NewWatcher()
	if werr != nil {
		return fmt.Errorf("failed to create watcher: %w", werr)
	}
	defer watcher.Close()

	// The include directory is watched too, so a namespace directory that is
	// removed and recreated (a reinstall) gets its watch back.
	includeDir := filepath.Clean(filepath.Join(root, "include"))
	dir := filepath.Clean(scanner.IncludeDir(root, g.opts.Namespace))
	for _, d := range []string{includeDir, dir} {
		if werr := watcher.Add(d); werr != nil {
			return &common.IOError{Op: "watch", Path: d, Err: werr}
		}
	}
	if onRun != nil {
		onRun(gf, err)
	}
	g.logger.Info("Watching collection headers", "dir", dir, "debounce", debounce)

	var (
		timer   *time.Timer
		trigger <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
		} else {
			timer.Reset(debounce)
		}
		trigger = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			g.logger.Info("Stopped watching", "dir", dir)
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return errors.New("watcher event channel closed")
			}
			switch name := filepath.Clean(ev.Name); {
			case name == includeDir && ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				return &common.IOError{Op: "watch", Path: includeDir, Err: fs.ErrNotExist}
			case name == dir && ev.Op.Has(fsnotify.Create):
				// headers written before the watch is re-added are picked up
				// by the scan that schedule triggers
				if werr := watcher.Add(dir); werr != nil {
					g.logger.Error("Failed to watch recreated namespace directory", "dir", dir, "error", werr)
					continue
				}
				g.logger.Info("Namespace directory recreated", "dir", dir)
				schedule()
			case name == dir && ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				g.logger.Warn("Namespace directory removed, waiting for it to reappear", "dir", dir)
			case IsRelevantEvent(ev):
				g.logger.Debug("Collection header changed", "file", ev.Name, "op", ev.Op.String())
				schedule()
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return errors.New("watcher error channel closed")
			}
			g.logger.Warn("Watcher error", "error", werr)
		case <-trigger:
			trigger = nil
			run()
		}
	}
}
