package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const jsonCatalog = `{
  "worldIndex": [
    {"id": 1, "title": "John Smith", "aliases": ["Johnny", {"id": 7, "text": "John", "caseSensitive": true}]},
    {"worldItemId": 2, "name": "Lake Watery", "aliases": [{"aliasId": 4, "alias": "Lake"}]}
  ],
  "candidates": [
    {"id": 9, "text": "old mill", "entityId": 2},
    {"candidateId": 10, "surface": "the tower"}
  ]
}`

const yamlCatalogText = `
worldItems:
  - id: 1
    title: John Smith
    aliases:
      - Johnny
      - id: 7
        text: John
        caseSensitive: true
candidates:
  - {id: 9, text: old mill, entityId: 2}
`

func TestParseJSON(t *testing.T) {
	s, err := ParseJSON([]byte(jsonCatalog))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Items) != 2 || len(s.Candidates) != 2 {
		t.Fatalf("expected 2 items and 2 candidates, got %d and %d", len(s.Items), len(s.Candidates))
	}

	john := s.Items[0]
	if john.ID != 1 || john.Title != "John Smith" || len(john.Aliases) != 2 {
		t.Errorf("unexpected first item: %+v", john)
	}
	if john.Aliases[0].Text != "Johnny" || john.Aliases[0].ID != 0 {
		t.Errorf("expected bare alias Johnny, got %+v", john.Aliases[0])
	}
	if a := john.Aliases[1]; a.ID != 7 || a.Text != "John" || !a.CaseSensitive {
		t.Errorf("unexpected object alias: %+v", a)
	}

	lake := s.Items[1]
	if lake.ID != 2 || lake.Title != "Lake Watery" || lake.Aliases[0].ID != 4 || lake.Aliases[0].Text != "Lake" {
		t.Errorf("alternate keys not honoured: %+v", lake)
	}

	if c := s.Candidates[0]; c.ID != 9 || c.Text != "old mill" || c.EntityID != 2 {
		t.Errorf("unexpected candidate: %+v", c)
	}
	if c := s.Candidates[1]; c.ID != 10 || c.Text != "the tower" || c.EntityID != 0 {
		t.Errorf("unexpected candidate: %+v", c)
	}
}

func TestParseJSONArray(t *testing.T) {
	s, err := ParseJSON([]byte(`[{"id": 3, "title": "Mira"}]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Items) != 1 || s.Items[0].Title != "Mira" {
		t.Errorf("unexpected items: %+v", s.Items)
	}
	if s.Index().Len() != 1 {
		t.Errorf("expected title entry in index, got %d entries", s.Index().Len())
	}
}

func TestParseJSONMalformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid", `{"worldIndex": [`},
		{"scalar", `42`},
		{"items not array", `{"worldIndex": {"id": 1}}`},
		{"item not object", `{"worldIndex": [1]}`},
		{"item without id", `{"worldIndex": [{"title": "x"}]}`},
		{"candidate without id", `{"candidates": [{"text": "x"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJSON([]byte(tt.data))
			if !errors.Is(err, ErrMalformedCatalog) {
				t.Errorf("expected ErrMalformedCatalog, got %v", err)
			}
		})
	}
}

func TestParseJSONEmptyObject(t *testing.T) {
	s, err := ParseJSON([]byte(`{}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.Empty() {
		t.Errorf("expected empty snapshot, got %+v", s)
	}
}

func TestParseYAML(t *testing.T) {
	s, err := ParseYAML([]byte(yamlCatalogText))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Items) != 1 || len(s.Items[0].Aliases) != 2 {
		t.Fatalf("unexpected items: %+v", s.Items)
	}
	if a := s.Items[0].Aliases[0]; a.Text != "Johnny" || a.ID != 0 {
		t.Errorf("expected scalar alias, got %+v", a)
	}
	if a := s.Items[0].Aliases[1]; a.ID != 7 || !a.CaseSensitive {
		t.Errorf("unexpected mapping alias: %+v", a)
	}
	if len(s.Candidates) != 1 || s.Candidates[0].EntityID != 2 {
		t.Errorf("unexpected candidates: %+v", s.Candidates)
	}
}

func TestParseYAMLMalformed(t *testing.T) {
	for _, data := range []string{"worldItems: [", "worldItems:\n  - title: no id\n"} {
		if _, err := ParseYAML([]byte(data)); !errors.Is(err, ErrMalformedCatalog) {
			t.Errorf("ParseYAML(%q): expected ErrMalformedCatalog, got %v", data, err)
		}
	}
}

func TestLoadByExtension(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "catalog.json")
	yamlPath := filepath.Join(dir, "catalog.yaml")
	otherPath := filepath.Join(dir, "catalog.txt")
	if err := os.WriteFile(jsonPath, []byte(jsonCatalog), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(yamlPath, []byte(yamlCatalogText), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(otherPath, []byte(jsonCatalog), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, p := range []string{jsonPath, yamlPath, otherPath} {
		s, err := Load(p)
		if err != nil {
			t.Errorf("Load(%s): %v", filepath.Base(p), err)
			continue
		}
		if len(s.Items) == 0 {
			t.Errorf("Load(%s): no items", filepath.Base(p))
		}
	}

	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWatcherReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")
	if err := os.WriteFile(path, []byte(`[]`), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(path, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte(jsonCatalog), 0o644); err != nil {
		t.Fatal(err)
	}

	// A write can surface as several events; partial reads show up as
	// errors and are followed by a good reload.
	deadline := time.After(5 * time.Second)
	for {
		select {
		case u := <-w.Updates():
			if u.Err == nil && len(u.Snapshot.Items) == 2 {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for reload")
		}
	}
}

func TestWatcherCloseTwice(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	if err := os.WriteFile(path, []byte(yamlCatalogText), 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("first close: %v", err)
	}
	if err := w.Close(); !errors.Is(err, ErrWatcherClosed) {
		t.Errorf("expected ErrWatcherClosed, got %v", err)
	}
	if _, ok := <-w.Updates(); ok {
		t.Error("updates channel should be closed")
	}
}
