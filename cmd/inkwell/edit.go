package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/inkwell/internal/catalog"
	"github.com/dshills/inkwell/internal/config"
	"github.com/dshills/inkwell/internal/host"
	"github.com/dshills/inkwell/internal/schedule"
	"github.com/dshills/inkwell/internal/tui"
)

// runEdit opens a line-text file in the terminal editor. Saving writes the
// line text back. With -catalog, links are refreshed whenever the catalog
// file changes.
func runEdit(e *env, args []string) error {
	flags := e.newFlags("edit", "[-catalog file] [-log file] file")
	catalogPath := flags.String("catalog", "", "Catalog file (YAML or JSON)")
	logPath := flags.String("log", "", "Write the log to this file instead of discarding it")
	if err := parseFlags(flags, args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		return fmt.Errorf("%w: edit takes exactly one file", errUsage)
	}
	path := flags.Arg(0)

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	snap, err := loadCatalog(*catalogPath)
	if err != nil {
		return err
	}

	// The screen owns the terminal, so the log goes to a file or nowhere.
	var logOut io.Writer = io.Discard
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		logOut = f
	}
	e.log.SetOutput(logOut)

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize screen: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse()
	screen.EnableFocus()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return e.edit(ctx, screen, path, string(data), snap, *catalogPath)
}

func (e *env) edit(ctx context.Context, screen tcell.Screen, path, text string, snap catalog.Snapshot, catalogPath string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loop := schedule.NewLoop(schedule.WithFrameInterval(e.settings.Timing.Frame.Duration))
	ed, err := tui.New(screen, loop,
		tui.WithLogger(e.log),
		tui.WithSettings(e.settings),
		tui.WithPath(path),
	)
	if err != nil {
		return err
	}
	if err := ed.Open(config.LoadConfig{
		DocumentID:  path,
		LineText:    text,
		Catalog:     snap,
		Preferences: e.settings.Preferences,
	}); err != nil {
		return err
	}

	if catalogPath != "" {
		w, err := catalog.NewWatcher(catalogPath,
			catalog.WithDebounce(e.settings.Timing.CatalogDebounce.Duration),
			catalog.WithWatcherLogger(e.log),
		)
		if err != nil {
			return err
		}
		defer w.Close()
		go func() {
			for u := range w.Updates() {
				err := loop.Do(ctx, func() {
					if u.Err != nil {
						ed.Session().Bridge().Diagnostic(host.Diagnostic{
							Severity: host.SeverityWarning,
							Message:  "catalog reload failed",
							Err:      u.Err,
						})
						return
					}
					ed.UpdateCatalog(u.Snapshot)
				})
				if err != nil {
					return
				}
			}
		}()
	}

	e.log.Info("editing %s", path)
	return ed.Run(ctx, loop)
}
