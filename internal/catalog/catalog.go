package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/dshills/inkwell/internal/alias"
)

// Snapshot is one immutable view of the catalog.
type Snapshot struct {
	Items      []alias.WorldItem
	Candidates []alias.Candidate
}

// Index builds the alias index for the snapshot.
func (s Snapshot) Index() *alias.Index {
	return alias.Build(s.Items, s.Candidates)
}

// Empty reports whether the snapshot holds nothing.
func (s Snapshot) Empty() bool {
	return len(s.Items) == 0 && len(s.Candidates) == 0
}

// Load reads a catalog file. The format is chosen by extension; files with
// another extension are parsed as JSON when valid, else as YAML.
func Load(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ParseJSON(data)
	case ".yaml", ".yml":
		return ParseYAML(data)
	}
	if gjson.ValidBytes(data) {
		return ParseJSON(data)
	}
	s, err := ParseYAML(data)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	return s, nil
}

// ParseJSON parses a JSON catalog. The top level is either an array of
// world items or an object with "worldIndex" (or "worldItems") and
// "candidates".
func ParseJSON(data []byte) (Snapshot, error) {
	if !gjson.ValidBytes(data) {
		return Snapshot{}, fmt.Errorf("%w: invalid JSON", ErrMalformedCatalog)
	}
	root := gjson.ParseBytes(data)
	if root.IsArray() {
		items, err := ItemsFromJSON(root)
		return Snapshot{Items: items}, err
	}
	if !root.IsObject() {
		return Snapshot{}, fmt.Errorf("%w: expected object or array", ErrMalformedCatalog)
	}

	var s Snapshot
	var err error
	if s.Items, err = ItemsFromJSON(first(root, "worldIndex", "worldItems", "items")); err != nil {
		return Snapshot{}, err
	}
	if s.Candidates, err = CandidatesFromJSON(first(root, "candidates", "candidateMentions")); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}

// ItemsFromJSON converts a JSON array of world items. A missing value
// yields no items.
//
//	[{"id": 1, "title": "John Smith",
//	  "aliases": ["Johnny", {"id": 7, "text": "John", "caseSensitive": true}]}]
func ItemsFromJSON(r gjson.Result) ([]alias.WorldItem, error) {
	if !r.Exists() || r.Type == gjson.Null {
		return nil, nil
	}
	if !r.IsArray() {
		return nil, fmt.Errorf("%w: world items must be an array", ErrMalformedCatalog)
	}

	var items []alias.WorldItem
	var err error
	i := -1
	r.ForEach(func(_, v gjson.Result) bool {
		i++
		if !v.IsObject() {
			err = fmt.Errorf("%w: world item %d is not an object", ErrMalformedCatalog, i)
			return false
		}
		item := alias.WorldItem{
			ID:    first(v, "id", "worldItemId", "entityId").Int(),
			Title: first(v, "title", "name").String(),
		}
		if item.ID == 0 {
			err = fmt.Errorf("%w: world item %d has no id", ErrMalformedCatalog, i)
			return false
		}
		first(v, "aliases").ForEach(func(_, a gjson.Result) bool {
			switch {
			case a.Type == gjson.String:
				item.Aliases = append(item.Aliases, alias.Alias{Text: a.String()})
			case a.IsObject():
				item.Aliases = append(item.Aliases, alias.Alias{
					ID:            first(a, "id", "aliasId").Int(),
					Text:          first(a, "text", "alias", "surface").String(),
					CaseSensitive: a.Get("caseSensitive").Bool(),
				})
			}
			return true
		})
		items = append(items, item)
		return true
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// CandidatesFromJSON converts a JSON array of candidate mentions.
//
//	[{"id": 3, "text": "the old mill", "entityId": 12}]
func CandidatesFromJSON(r gjson.Result) ([]alias.Candidate, error) {
	if !r.Exists() || r.Type == gjson.Null {
		return nil, nil
	}
	if !r.IsArray() {
		return nil, fmt.Errorf("%w: candidates must be an array", ErrMalformedCatalog)
	}

	var out []alias.Candidate
	var err error
	i := -1
	r.ForEach(func(_, v gjson.Result) bool {
		i++
		if !v.IsObject() {
			err = fmt.Errorf("%w: candidate %d is not an object", ErrMalformedCatalog, i)
			return false
		}
		c := alias.Candidate{
			ID:            first(v, "id", "candidateId").Int(),
			Text:          first(v, "text", "surface", "alias").String(),
			EntityID:      first(v, "entityId", "worldItemId").Int(),
			CaseSensitive: v.Get("caseSensitive").Bool(),
		}
		if c.ID == 0 {
			err = fmt.Errorf("%w: candidate %d has no id", ErrMalformedCatalog, i)
			return false
		}
		out = append(out, c)
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// first returns the first of keys present in r.
func first(r gjson.Result, keys ...string) gjson.Result {
	for _, k := range keys {
		if v := r.Get(k); v.Exists() {
			return v
		}
	}
	return gjson.Result{}
}

type yamlCatalog struct {
	WorldItems []yamlItem      `yaml:"worldItems"`
	WorldIndex []yamlItem      `yaml:"worldIndex"`
	Candidates []yamlCandidate `yaml:"candidates"`
}

type yamlItem struct {
	ID      int64       `yaml:"id"`
	Title   string      `yaml:"title"`
	Aliases []yamlAlias `yaml:"aliases"`
}

type yamlAlias struct {
	ID            int64  `yaml:"id"`
	Text          string `yaml:"text"`
	CaseSensitive bool   `yaml:"caseSensitive"`
}

// UnmarshalYAML accepts a bare string as an alias without an id.
func (a *yamlAlias) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		a.Text = n.Value
		return nil
	}
	type plain yamlAlias
	return n.Decode((*plain)(a))
}

type yamlCandidate struct {
	ID            int64  `yaml:"id"`
	Text          string `yaml:"text"`
	EntityID      int64  `yaml:"entityId"`
	CaseSensitive bool   `yaml:"caseSensitive"`
}

// ParseYAML parses a YAML catalog.
//
//	worldItems:
//	  - id: 1
//	    title: Lake Watery
//	    aliases: [Lake, {id: 4, text: The Lake}]
//	candidates:
//	  - {id: 9, text: old mill}
func ParseYAML(data []byte) (Snapshot, error) {
	var doc yamlCatalog
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrMalformedCatalog, err)
	}

	var s Snapshot
	for i, it := range append(doc.WorldItems, doc.WorldIndex...) {
		if it.ID == 0 {
			return Snapshot{}, fmt.Errorf("%w: world item %d has no id", ErrMalformedCatalog, i)
		}
		item := alias.WorldItem{ID: it.ID, Title: it.Title}
		for _, a := range it.Aliases {
			item.Aliases = append(item.Aliases, alias.Alias{ID: a.ID, Text: a.Text, CaseSensitive: a.CaseSensitive})
		}
		s.Items = append(s.Items, item)
	}
	for i, c := range doc.Candidates {
		if c.ID == 0 {
			return Snapshot{}, fmt.Errorf("%w: candidate %d has no id", ErrMalformedCatalog, i)
		}
		s.Candidates = append(s.Candidates, alias.Candidate{
			ID:            c.ID,
			Text:          c.Text,
			EntityID:      c.EntityID,
			CaseSensitive: c.CaseSensitive,
		})
	}
	return s, nil
}
