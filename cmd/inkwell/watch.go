package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dshills/inkwell/internal/catalog"
	"github.com/dshills/inkwell/internal/config"
	"github.com/dshills/inkwell/internal/host"
	"github.com/dshills/inkwell/internal/schedule"
	"github.com/dshills/inkwell/internal/session"
)

// runWatch loads a document, then re-annotates it each time the catalog
// file changes. Host reports are written to stdout as JSON lines, one
// requestSave line per catalog revision.
func runWatch(e *env, args []string) error {
	fs := e.newFlags("watch", "-catalog file [file]")
	catalogPath := fs.String("catalog", "", "Catalog file (YAML or JSON)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *catalogPath == "" {
		return fmt.Errorf("%w: -catalog is required", errUsage)
	}
	in, err := e.readInput(fs.Args())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return e.watch(ctx, in, *catalogPath)
}

func (e *env) watch(ctx context.Context, in, catalogPath string) error {
	snap, err := catalog.Load(catalogPath)
	if err != nil {
		return err
	}

	out := host.NewJSONLines(e.stdout,
		host.WithStaticField("command", "watch"),
		host.WithTimestamps(time.Now),
	)
	loop := schedule.NewLoop(schedule.WithFrameInterval(e.settings.Timing.Frame.Duration))
	s := session.New(loop,
		session.WithHost(out),
		session.WithLogger(e.log),
		session.WithSettings(e.settings),
	)
	if err := s.Load(config.LoadConfig{
		LineText:    in,
		Catalog:     snap,
		Preferences: e.settings.Preferences,
	}); err != nil {
		return err
	}
	s.RequestSave()

	w, err := catalog.NewWatcher(catalogPath,
		catalog.WithDebounce(e.settings.Timing.CatalogDebounce.Duration),
		catalog.WithWatcherLogger(e.log),
	)
	if err != nil {
		return err
	}
	defer w.Close()

	loopErr := make(chan error, 1)
	go func() {
		loopErr <- loop.Run(ctx)
	}()
	e.log.Info("watching %s", catalogPath)

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-loopErr:
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		case u, ok := <-w.Updates():
			if !ok {
				return nil
			}
			err := loop.Do(ctx, func() {
				if u.Err != nil {
					s.Bridge().Diagnostic(host.Diagnostic{
						Severity: host.SeverityWarning,
						Message:  "catalog reload failed",
						Err:      u.Err,
					})
					return
				}
				s.UpdateCatalog(u.Snapshot)
				s.RequestSave()
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			if err := out.Err(); err != nil {
				return fmt.Errorf("writing events: %w", err)
			}
		}
	}
}
