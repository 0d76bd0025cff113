package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "INKWELL_"

// Load reads a TOML settings file over the defaults. A missing file yields
// the defaults. The result is validated.
func Load(path string) (Settings, error) {
	s := Default()
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return Parse(path, data)
}

// LoadFromReader reads TOML settings from r over the defaults.
func LoadFromReader(r io.Reader) (Settings, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Default(), fmt.Errorf("reading config: %w", err)
	}
	return Parse("<reader>", data)
}

// Parse decodes TOML settings over the defaults. Decoding failures are
// returned as *ParseError.
func Parse(source string, data []byte) (Settings, error) {
	s := Default()
	if err := toml.Unmarshal(data, &s); err != nil {
		pe := &ParseError{Path: source, Message: err.Error(), Err: err}
		var de *toml.DecodeError
		if errors.As(err, &de) {
			pe.Line, pe.Column = de.Position()
		}
		return Default(), pe
	}
	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// envSetter applies one environment value.
type envSetter func(s *Settings, v string) error

// envMapping maps environment variables to settings.
var envMapping = map[string]envSetter{
	EnvPrefix + "LOG_LEVEL": func(s *Settings, v string) error {
		s.Logging.Level = v
		return nil
	},
	EnvPrefix + "DOC_CHANGED_DELAY":  durationSetter(func(s *Settings) *Duration { return &s.Timing.DocChanged }),
	EnvPrefix + "FIND_REFRESH_DELAY": durationSetter(func(s *Settings) *Duration { return &s.Timing.FindRefresh }),
	EnvPrefix + "HOVER_DELAY":        durationSetter(func(s *Settings) *Duration { return &s.Timing.HoverIntent }),
	EnvPrefix + "FRAME_INTERVAL":     durationSetter(func(s *Settings) *Duration { return &s.Timing.Frame }),
	EnvPrefix + "CATALOG_DEBOUNCE":   durationSetter(func(s *Settings) *Duration { return &s.Timing.CatalogDebounce }),
	EnvPrefix + "HIGHLIGHT_CAP":      intSetter(func(s *Settings) *int { return &s.Find.HighlightCap }),
	EnvPrefix + "SCROLL_CLEARANCE":   intSetter(func(s *Settings) *int { return &s.Find.ScrollClearance }),
	EnvPrefix + "LINK_FOLLOW": func(s *Settings, v string) error {
		return s.Preferences.LinkFollow.UnmarshalText([]byte(v))
	},
	EnvPrefix + "LINK_VISUAL": func(s *Settings, v string) error {
		return s.Preferences.LinkVisual.UnmarshalText([]byte(v))
	},
	EnvPrefix + "HIGHLIGHT_LINKS": func(s *Settings, v string) error {
		b, err := parseBool(v)
		if err != nil {
			return err
		}
		s.Preferences.HighlightLinksWhileModifier = b
		return nil
	},
}

func durationSetter(field func(*Settings) *Duration) envSetter {
	return func(s *Settings, v string) error {
		return field(s).UnmarshalText([]byte(v))
	}
}

func intSetter(field func(*Settings) *int) envSetter {
	return func(s *Settings, v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return err
		}
		*field(s) = n
		return nil
	}
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "yes", "on", "1":
		return true, nil
	case "false", "no", "off", "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", v)
}

// EnvVars returns the recognized environment variable names, sorted.
func EnvVars() []string {
	names := make([]string, 0, len(envMapping))
	for k := range envMapping {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// ApplyEnv applies environment overrides using lookup (os.LookupEnv in
// production). Empty values are treated as set. Every bad value is
// reported; good ones are still applied.
func (s *Settings) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	var errs []error
	for _, name := range EnvVars() {
		v, ok := lookup(name)
		if !ok {
			continue
		}
		if err := envMapping[name](s, v); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	return s.Validate()
}
