// Package main is the entry point for the inkwell command.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dshills/inkwell/internal/config"
	"github.com/dshills/inkwell/internal/logging"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// errUsage marks errors caused by bad arguments.
var errUsage = errors.New("usage error")

// globalOptions are the flags accepted before the command name.
type globalOptions struct {
	ConfigPath string
	LogLevel   string
}

// env is what a command runs with.
type env struct {
	settings config.Settings
	log      *logging.Logger
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
}

type command struct {
	name    string
	summary string
	run     func(e *env, args []string) error
}

var commands = []command{
	{"convert", "convert between line text and markup", runConvert},
	{"annotate", "link known mentions in line text or markup", runAnnotate},
	{"find", "list the matches of a query", runFind},
	{"sweep", "remove markers that no longer resolve", runSweep},
	{"watch", "re-annotate whenever the catalog changes", runWatch},
	{"edit", "edit a line-text file in the terminal", runEdit},
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("inkwell", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts globalOptions
	var showVersion bool
	fs.StringVar(&opts.ConfigPath, "config", defaultConfigPath(), "Path to configuration file")
	fs.StringVar(&opts.ConfigPath, "c", defaultConfigPath(), "Path to configuration file (shorthand)")
	fs.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.BoolVar(&showVersion, "version", false, "Show version information")
	fs.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "inkwell - prose editing engine tools\n\n")
		fmt.Fprintf(stderr, "Usage: inkwell [options] <command> [command options] [file]\n\n")
		fmt.Fprintf(stderr, "Commands:\n")
		for _, c := range commands {
			fmt.Fprintf(stderr, "  %-10s %s\n", c.name, c.summary)
		}
		fmt.Fprintf(stderr, "\nOptions:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  inkwell convert -to markup chapter.txt\n")
		fmt.Fprintf(stderr, "  inkwell annotate -catalog world.yaml chapter.txt\n")
		fmt.Fprintf(stderr, "  inkwell find -q \"Lake\" chapter.txt\n")
		fmt.Fprintf(stderr, "  inkwell watch -catalog world.yaml chapter.txt\n")
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if showVersion {
		fmt.Fprintf(stdout, "inkwell %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return 0
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return 2
	}
	cmd, ok := lookupCommand(rest[0])
	if !ok {
		fmt.Fprintf(stderr, "Error: unknown command %q\n", rest[0])
		fs.Usage()
		return 2
	}

	e, err := setup(opts, stdin, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if err := cmd.run(e, rest[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %s: %v\n", cmd.name, err)
		if errors.Is(err, errUsage) {
			return 2
		}
		return 1
	}
	return 0
}

func lookupCommand(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "inkwell", "config.toml")
}

// setup loads settings (file, then environment, then flags) and builds the
// logger.
func setup(opts globalOptions, stdin io.Reader, stdout, stderr io.Writer) (*env, error) {
	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if err := settings.ApplyEnv(os.LookupEnv); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}

	if opts.LogLevel != "" {
		switch opts.LogLevel {
		case "debug", "info", "warn", "error":
			settings.Logging.Level = opts.LogLevel
		default:
			return nil, fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", opts.LogLevel)
		}
	}

	log := logging.New(logging.Config{
		Level:  logging.ParseLevel(settings.Logging.Level),
		Output: stderr,
		Prefix: "inkwell",
	})
	return &env{
		settings: settings,
		log:      log,
		stdin:    stdin,
		stdout:   stdout,
		stderr:   stderr,
	}, nil
}

// readInput reads the single optional file argument, or stdin.
func (e *env) readInput(args []string) (string, error) {
	switch len(args) {
	case 0:
		data, err := io.ReadAll(e.stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	case 1:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("%w: expected at most one file, got %d", errUsage, len(args))
	}
}

// newFlags creates a command flag set that reports errors instead of
// exiting.
func (e *env) newFlags(name, usage string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	fs.Usage = func() {
		fmt.Fprintf(e.stderr, "Usage: inkwell %s %s\n\nOptions:\n", name, usage)
		fs.PrintDefaults()
	}
	return fs
}

// parseFlags parses command flags, marking failures as usage errors.
func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	return nil
}
