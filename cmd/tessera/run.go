package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/tesserawm/tessera/internal/command"
	cfgpkg "github.com/tesserawm/tessera/internal/config"
	"github.com/tesserawm/tessera/internal/eventpump"
	"github.com/tesserawm/tessera/internal/geom"
	"github.com/tesserawm/tessera/internal/handle"
	"github.com/tesserawm/tessera/internal/hotkeys"
	"github.com/tesserawm/tessera/internal/layout"
	"github.com/tesserawm/tessera/internal/wm"
)

func newRunCommand(verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the window manager in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(*verbose)
		},
	}
}

// run wires config -> backend -> eventpump -> wm -> command.Dispatcher
// and blocks in the pump's event loop until a quit is requested.
// Per spec.md §6, it returns a non-nil error only on initialization
// failure (hook install, no monitors); Cobra turns that into exit
// code 1, and a clean quit returns nil (exit code 0).
func run(verbose bool) error {
	logger := newLogger(verbose)

	cfg, err := cfgpkg.Load()
	if err != nil {
		return fmt.Errorf("run: load config: %w", err)
	}

	backend, err := newBackend()
	if err != nil {
		return fmt.Errorf("run: open backend: %w", err)
	}

	monitors, err := backend.Monitors()
	if err != nil {
		return fmt.Errorf("run: enumerate monitors: %w", err)
	}
	if len(monitors) == 0 {
		return fmt.Errorf("run: no monitors detected")
	}

	ignore := eventpump.NewIgnoreConfig(cfg.Ignore.Classes, cfg.Ignore.Processes, cfg.Ignore.Titles, cfg.Ignore.ToolWindowAllow, cfg.Ignore.Shell)
	reg := hotkeys.New(backend)

	var mgr *wm.Manager
	handlerFn := func(ev eventpump.Event) {
		switch ev.Kind {
		case eventpump.WindowAdded:
			mi := monitorForWindow(ev.Window, monitors)
			mgr.AddWindow(ev.Window, mi, false)
		case eventpump.WindowRemoved:
			mgr.RemoveWindow(ev.Window)
		}
	}

	pump := eventpump.New(backend, ignore, reg, handlerFn, logger)
	mgr = wm.New(pump, monitors, cfg.WorkspaceCount, logger)
	applyLayoutDefaults(mgr, cfg)

	dispatcher := command.New(mgr, pump, func() { logger.Info("tessera: shutting down") }, logger)
	cfgpkg.BindHotkeys(cfg, reg, dispatcher, logger)

	if err := pump.Scan(); err != nil {
		return fmt.Errorf("run: initial window scan: %w", err)
	}
	mgr.RetileAll()

	started := make(chan error, 1)
	go func() {
		// Locked to its own OS thread: on Windows the WinEvent hook and
		// its message queue are thread-affine, and Stop's PostThreadMessage
		// must reach the exact thread that is blocked in PeekMessageW here.
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		started <- nil
		if err := backend.Start(); err != nil {
			logger.Error("backend event source stopped", "error", err)
		}
	}()
	<-started

	pump.Run()
	return nil
}

// monitorForWindow returns the index of the monitor whose full rect
// contains win's bounds' top-left corner, or 0 if none does.
func monitorForWindow(win handle.Window, monitors []geom.Monitor) int {
	attrs, ok := win.Attrs()
	if !ok {
		return 0
	}
	x, y := attrs.Bounds.X, attrs.Bounds.Y
	for i, m := range monitors {
		if x >= m.FullRect.Left() && x < m.FullRect.Right() && y >= m.FullRect.Top() && y < m.FullRect.Bottom() {
			return i
		}
	}
	return 0
}

// applyLayoutDefaults seeds every layout variant with the global
// gap/master_ratio, then overlays any per-layout override from cfg.
func applyLayoutDefaults(mgr *wm.Manager, cfg *cfgpkg.Config) {
	for _, name := range layout.Names() {
		ratio, gap := cfg.MasterRatio, cfg.Gap
		if d, ok := cfg.Layouts[name]; ok {
			if d.MasterRatio != 0 {
				ratio = d.MasterRatio
			}
			if d.Gap != 0 {
				gap = d.Gap
			}
		}
		mgr.SetLayoutParams(name, ratio, gap)
	}
}
