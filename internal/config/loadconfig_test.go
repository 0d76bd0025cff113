package config

import (
	"errors"
	"testing"
)

func TestParseLoadConfig(t *testing.T) {
	data := `{
		"docType": "chapter",
		"docId": "12",
		"versionId": 3,
		"markdown": "Line one\n\nLine three",
		"html": "<div>Line one</div>",
		"worldIndex": [{"id": 5, "title": "John", "aliases": ["Johnny"]}],
		"candidates": [{"id": 8, "text": "old mill"}],
		"prefs": {"linkFollowMode": "click", "showWikilinks": "ctrlReveal", "highlightLinksWhileCtrl": false}
	}`

	cfg, err := ParseLoadConfig([]byte(data), DefaultPreferences())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DocType != "chapter" || cfg.DocumentID != "12" || cfg.VersionID != 3 {
		t.Errorf("unexpected identity: %+v", cfg)
	}
	if cfg.LineText != "Line one\n\nLine three" {
		t.Errorf("unexpected line text %q", cfg.LineText)
	}
	if !cfg.HasSnapshot() || cfg.Snapshot != "<div>Line one</div>" {
		t.Errorf("unexpected snapshot %q", cfg.Snapshot)
	}
	if len(cfg.Catalog.Items) != 1 || cfg.Catalog.Items[0].ID != 5 {
		t.Errorf("unexpected items: %+v", cfg.Catalog.Items)
	}
	if len(cfg.Catalog.Candidates) != 1 || cfg.Catalog.Candidates[0].ID != 8 {
		t.Errorf("unexpected candidates: %+v", cfg.Catalog.Candidates)
	}
	p := cfg.Preferences
	if p.LinkFollow != FollowClick || p.LinkVisual != VisualReveal || p.HighlightLinksWhileModifier {
		t.Errorf("unexpected preferences: %+v", p)
	}
}

func TestParseLoadConfigAlternateKeys(t *testing.T) {
	data := `{"docId": 7, "versionId": "4", "lineText": "abc", "snapshot": "", "worldItems": []}`
	cfg, err := ParseLoadConfig([]byte(data), DefaultPreferences())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DocumentID != "7" || cfg.VersionID != 4 || cfg.LineText != "abc" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.HasSnapshot() {
		t.Error("empty snapshot should not count")
	}
	if cfg.Preferences != DefaultPreferences() {
		t.Errorf("missing prefs should keep base, got %+v", cfg.Preferences)
	}
}

func TestParseLoadConfigMalformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{docId:`},
		{"array", `[1, 2]`},
		{"string", `"hello"`},
		{"version type", `{"versionId": true}`},
		{"version text", `{"versionId": "three"}`},
		{"markdown type", `{"markdown": 12}`},
		{"html type", `{"html": {"a": 1}}`},
		{"world index type", `{"worldIndex": "John"}`},
		{"prefs type", `{"prefs": [1]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLoadConfig([]byte(tt.data), DefaultPreferences())
			if !errors.Is(err, ErrMalformedConfig) {
				t.Errorf("expected ErrMalformedConfig, got %v", err)
			}
		})
	}
}

func TestParsePreferencesUnknownValuesKeepBase(t *testing.T) {
	cfg, err := ParseLoadConfig([]byte(`{"prefs": {"linkFollowMode": "tripleClick", "showWikilinks": "neon"}}`), DefaultPreferences())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Preferences != DefaultPreferences() {
		t.Errorf("expected base preferences, got %+v", cfg.Preferences)
	}
}
