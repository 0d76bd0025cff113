package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Duration is a time.Duration that reads and writes as "250ms" text.
type Duration struct {
	time.Duration
}

// Dur wraps d.
func Dur(d time.Duration) Duration {
	return Duration{Duration: d}
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// LinkFollow selects which click follows a link.
type LinkFollow uint8

const (
	// FollowModifierClick follows links on click with the modifier held.
	FollowModifierClick LinkFollow = iota
	// FollowClick follows links on plain click.
	FollowClick
	// FollowNone never follows links.
	FollowNone
)

// String returns the canonical preference value.
func (f LinkFollow) String() string {
	switch f {
	case FollowClick:
		return "click"
	case FollowModifierClick:
		return "modifierClick"
	case FollowNone:
		return "none"
	default:
		return "unknown"
	}
}

// ParseLinkFollow parses a link-follow preference. The legacy "ctrlClick"
// is accepted as modifierClick.
func ParseLinkFollow(s string) (LinkFollow, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "click":
		return FollowClick, nil
	case "modifierclick", "modifier+click", "ctrlclick", "ctrl+click":
		return FollowModifierClick, nil
	case "none", "off":
		return FollowNone, nil
	}
	return FollowModifierClick, fmt.Errorf("%w: link follow %q", ErrUnknownPreference, s)
}

// MarshalText implements encoding.TextMarshaler.
func (f LinkFollow) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *LinkFollow) UnmarshalText(b []byte) error {
	v, err := ParseLinkFollow(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// Follows reports whether a click with the given modifier state follows a
// link.
func (f LinkFollow) Follows(modifier bool) bool {
	switch f {
	case FollowClick:
		return true
	case FollowModifierClick:
		return modifier
	default:
		return false
	}
}

// LinkVisual selects how link markers are drawn.
type LinkVisual uint8

const (
	// VisualFull always draws link chrome.
	VisualFull LinkVisual = iota
	// VisualReveal draws link chrome only while the modifier is held.
	VisualReveal
	// VisualMinimal draws links as plain text.
	VisualMinimal
)

// String returns the canonical preference value.
func (v LinkVisual) String() string {
	switch v {
	case VisualFull:
		return "full"
	case VisualReveal:
		return "reveal"
	case VisualMinimal:
		return "minimal"
	default:
		return "unknown"
	}
}

// ParseLinkVisual parses a link visual preference. The legacy "ctrlReveal"
// is accepted as reveal.
func ParseLinkVisual(s string) (LinkVisual, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "full":
		return VisualFull, nil
	case "reveal", "ctrlreveal", "modifierreveal":
		return VisualReveal, nil
	case "minimal":
		return VisualMinimal, nil
	}
	return VisualFull, fmt.Errorf("%w: link visual %q", ErrUnknownPreference, s)
}

// MarshalText implements encoding.TextMarshaler.
func (v LinkVisual) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *LinkVisual) UnmarshalText(b []byte) error {
	p, err := ParseLinkVisual(string(b))
	if err != nil {
		return err
	}
	*v = p
	return nil
}

// Preferences are the per-user link preferences.
type Preferences struct {
	LinkFollow                  LinkFollow `toml:"link_follow"`
	LinkVisual                  LinkVisual `toml:"link_visual"`
	HighlightLinksWhileModifier bool       `toml:"highlight_links_while_modifier"`
}

// DefaultPreferences returns the preferences used when none are given.
func DefaultPreferences() Preferences {
	return Preferences{
		LinkFollow:                  FollowModifierClick,
		LinkVisual:                  VisualFull,
		HighlightLinksWhileModifier: true,
	}
}

// LinksVisible reports whether link chrome is drawn given the modifier
// state.
func (p Preferences) LinksVisible(modifier bool) bool {
	switch p.LinkVisual {
	case VisualFull:
		return true
	case VisualReveal:
		return modifier
	default:
		return modifier && p.HighlightLinksWhileModifier
	}
}

// Logging holds logging settings.
type Logging struct {
	Level string `toml:"level"`
}

// Timing holds the delays of the deferral mechanisms.
type Timing struct {
	DocChanged      Duration `toml:"doc_changed"`
	FindRefresh     Duration `toml:"find_refresh"`
	HoverIntent     Duration `toml:"hover_intent"`
	Frame           Duration `toml:"frame"`
	CatalogDebounce Duration `toml:"catalog_debounce"`
}

// Find holds find engine limits.
type Find struct {
	HighlightCap    int `toml:"highlight_cap"`
	ScrollClearance int `toml:"scroll_clearance"`
}

// Settings is the complete engine configuration.
type Settings struct {
	Logging     Logging     `toml:"logging"`
	Timing      Timing      `toml:"timing"`
	Find        Find        `toml:"find"`
	Preferences Preferences `toml:"preferences"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		Logging: Logging{Level: "info"},
		Timing: Timing{
			DocChanged:      Dur(250 * time.Millisecond),
			FindRefresh:     Dur(60 * time.Millisecond),
			HoverIntent:     Dur(250 * time.Millisecond),
			Frame:           Dur(16 * time.Millisecond),
			CatalogDebounce: Dur(100 * time.Millisecond),
		},
		Find: Find{
			HighlightCap:    500,
			ScrollClearance: 48,
		},
		Preferences: DefaultPreferences(),
	}
}

// Validate checks that every delay is positive and every limit is in range.
// All problems are reported, joined.
func (s Settings) Validate() error {
	var errs []error
	durations := []struct {
		path string
		d    Duration
	}{
		{"timing.doc_changed", s.Timing.DocChanged},
		{"timing.find_refresh", s.Timing.FindRefresh},
		{"timing.hover_intent", s.Timing.HoverIntent},
		{"timing.frame", s.Timing.Frame},
		{"timing.catalog_debounce", s.Timing.CatalogDebounce},
	}
	for _, d := range durations {
		if d.d.Duration <= 0 {
			errs = append(errs, &ValidationError{Path: d.path, Message: "must be positive"})
		}
	}
	if s.Find.HighlightCap < 0 {
		errs = append(errs, &ValidationError{Path: "find.highlight_cap", Message: "must not be negative"})
	}
	if s.Find.ScrollClearance < 0 {
		errs = append(errs, &ValidationError{Path: "find.scroll_clearance", Message: "must not be negative"})
	}
	return errors.Join(errs...)
}
