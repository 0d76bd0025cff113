package config

import (
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/dshills/inkwell/internal/catalog"
)

// LoadConfig is the configuration a host passes when it opens a document.
type LoadConfig struct {
	DocType    string
	DocumentID string
	VersionID  int64

	// LineText is the stored line form of the document.
	LineText string

	// Snapshot is the structured (HTML) snapshot. When present it takes
	// precedence over LineText.
	Snapshot string

	Catalog     catalog.Snapshot
	Preferences Preferences
}

// HasSnapshot reports whether a structured snapshot was supplied.
func (c LoadConfig) HasSnapshot() bool {
	return c.Snapshot != ""
}

// ParseLoadConfig reads a load configuration object:
//
//	{"docType": "chapter", "docId": "12", "versionId": 3,
//	 "markdown": "...", "html": "...",
//	 "worldIndex": [...], "candidates": [...], "prefs": {...}}
//
// "lineText", "snapshot" and "worldItems" are accepted as alternative
// keys. Preferences missing from the object keep the values in base.
func ParseLoadConfig(data []byte, base Preferences) (LoadConfig, error) {
	if !gjson.ValidBytes(data) {
		return LoadConfig{}, fmt.Errorf("%w: invalid JSON", ErrMalformedConfig)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return LoadConfig{}, fmt.Errorf("%w: expected an object", ErrMalformedConfig)
	}

	cfg := LoadConfig{
		DocType:     root.Get("docType").String(),
		DocumentID:  field(root, "docId", "documentId").String(),
		Preferences: base,
	}

	var err error
	if cfg.VersionID, err = versionOf(field(root, "versionId")); err != nil {
		return LoadConfig{}, err
	}
	if cfg.LineText, err = stringOf(field(root, "lineText", "markdown"), "lineText"); err != nil {
		return LoadConfig{}, err
	}
	if cfg.Snapshot, err = stringOf(field(root, "snapshot", "structuredSnapshot", "html", "htmlSnapshot"), "snapshot"); err != nil {
		return LoadConfig{}, err
	}
	if cfg.Catalog.Items, err = catalog.ItemsFromJSON(field(root, "worldItems", "worldIndex")); err != nil {
		return LoadConfig{}, fmt.Errorf("%w: %w", ErrMalformedConfig, err)
	}
	if cfg.Catalog.Candidates, err = catalog.CandidatesFromJSON(field(root, "candidates", "candidateMentions")); err != nil {
		return LoadConfig{}, fmt.Errorf("%w: %w", ErrMalformedConfig, err)
	}
	if cfg.Preferences, err = ParsePreferences(field(root, "prefs", "preferences"), base); err != nil {
		return LoadConfig{}, err
	}
	return cfg, nil
}

// ParsePreferences reads a preferences object over base. Unknown values
// leave the base value in place.
func ParsePreferences(r gjson.Result, base Preferences) (Preferences, error) {
	p := base
	if !r.Exists() || r.Type == gjson.Null {
		return p, nil
	}
	if !r.IsObject() {
		return p, fmt.Errorf("%w: prefs must be an object", ErrMalformedConfig)
	}
	if v := field(r, "linkFollow", "linkFollowMode"); v.Exists() {
		if f, err := ParseLinkFollow(v.String()); err == nil {
			p.LinkFollow = f
		}
	}
	if v := field(r, "linkVisual", "showWikilinks"); v.Exists() {
		if lv, err := ParseLinkVisual(v.String()); err == nil {
			p.LinkVisual = lv
		}
	}
	if v := field(r, "highlightLinksWhileModifier", "highlightLinksWhileCtrl"); v.Exists() {
		p.HighlightLinksWhileModifier = v.Bool()
	}
	return p, nil
}

func field(r gjson.Result, keys ...string) gjson.Result {
	for _, k := range keys {
		if v := r.Get(k); v.Exists() {
			return v
		}
	}
	return gjson.Result{}
}

func versionOf(v gjson.Result) (int64, error) {
	switch v.Type {
	case gjson.Null:
		return 0, nil
	case gjson.Number:
		return v.Int(), nil
	case gjson.String:
		if v.String() == "" {
			return 0, nil
		}
		n, err := strconv.ParseInt(v.String(), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: versionId %q", ErrMalformedConfig, v.String())
		}
		return n, nil
	}
	return 0, fmt.Errorf("%w: versionId must be a number", ErrMalformedConfig)
}

func stringOf(v gjson.Result, name string) (string, error) {
	switch v.Type {
	case gjson.Null:
		return "", nil
	case gjson.String:
		return v.String(), nil
	}
	return "", fmt.Errorf("%w: %s must be a string", ErrMalformedConfig, name)
}
