package main

import (
	"fmt"
	"strings"

	"github.com/dshills/inkwell/internal/catalog"
	"github.com/dshills/inkwell/internal/config"
	"github.com/dshills/inkwell/internal/document"
	"github.com/dshills/inkwell/internal/find"
	"github.com/dshills/inkwell/internal/linker"
	"github.com/dshills/inkwell/internal/markup"
	"github.com/dshills/inkwell/internal/schedule"
	"github.com/dshills/inkwell/internal/session"
)

func runConvert(e *env, args []string) error {
	fs := e.newFlags("convert", "-to line|markup [file]")
	to := fs.String("to", "markup", "Target form: line or markup")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	in, err := e.readInput(fs.Args())
	if err != nil {
		return err
	}

	switch *to {
	case "markup":
		fmt.Fprintln(e.stdout, markup.Render(markup.ToDisplayForm(in)))
	case "line":
		frag, err := markup.Parse(in)
		if err != nil {
			return err
		}
		fmt.Fprintln(e.stdout, markup.ToLineForm(frag))
	default:
		return fmt.Errorf("%w: -to must be line or markup, got %q", errUsage, *to)
	}
	return nil
}

// loadCatalog reads the catalog named by a -catalog flag. An empty path
// yields an empty catalog.
func loadCatalog(path string) (catalog.Snapshot, error) {
	if path == "" {
		return catalog.Snapshot{}, nil
	}
	return catalog.Load(path)
}

// openSession loads input into a fresh session on a manual scheduler.
// Markup input is recognised by a leading '<'.
func (e *env) openSession(in, catalogPath string) (*session.Session, error) {
	snap, err := loadCatalog(catalogPath)
	if err != nil {
		return nil, err
	}
	s := session.New(schedule.NewManual(),
		session.WithLogger(e.log),
		session.WithSettings(e.settings),
	)
	cfg := config.LoadConfig{Catalog: snap, Preferences: e.settings.Preferences}
	if strings.HasPrefix(strings.TrimSpace(in), "<") {
		cfg.Snapshot = in
	} else {
		cfg.LineText = strings.TrimSuffix(in, "\n")
	}
	if err := s.Load(cfg); err != nil {
		return nil, err
	}
	return s, nil
}

func runAnnotate(e *env, args []string) error {
	fs := e.newFlags("annotate", "-catalog file [file]")
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
	s, err := e.openSession(in, *catalogPath)
	if err != nil {
		return err
	}
	fmt.Fprintln(e.stdout, s.Snapshot())
	return nil
}

func runFind(e *env, args []string) error {
	fs := e.newFlags("find", "-q query [-catalog file] [file]")
	query := fs.String("q", "", "Query (case-insensitive)")
	catalogPath := fs.String("catalog", "", "Catalog file, to annotate before searching")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *query == "" {
		return fmt.Errorf("%w: -q is required", errUsage)
	}
	in, err := e.readInput(fs.Args())
	if err != nil {
		return err
	}
	s, err := e.openSession(in, *catalogPath)
	if err != nil {
		return err
	}

	f := s.Find()
	f.Open(*query)
	doc := s.Document()
	for i, m := range f.Session().Set.Matches() {
		fmt.Fprintf(e.stdout, "%d\t%s\t%s\n", i+1, m.Position(), excerpt(doc, m))
	}
	fmt.Fprintln(e.stdout, f.Status())
	f.Close()
	return nil
}

// excerpt returns the run holding m with the match bracketed.
func excerpt(doc *document.Document, m find.Match) string {
	text, ok := doc.RunText(m.Run)
	if !ok {
		return ""
	}
	end := m.Offset + m.Len
	return text[:m.Offset] + "[" + text[m.Offset:end] + "]" + text[end:]
}

func runSweep(e *env, args []string) error {
	fs := e.newFlags("sweep", "-catalog file [snapshot]")
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
	snap, err := catalog.Load(*catalogPath)
	if err != nil {
		return err
	}
	frag, err := markup.Parse(in)
	if err != nil {
		return err
	}
	doc := document.New(frag)
	removed := linker.SweepStale(doc, snap.Index())
	e.log.Info("removed %d stale markers", removed)
	fmt.Fprintln(e.stdout, markup.Render(doc.Root()))
	return nil
}
