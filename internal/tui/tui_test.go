package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/inkwell/internal/alias"
	"github.com/dshills/inkwell/internal/catalog"
	"github.com/dshills/inkwell/internal/config"
	"github.com/dshills/inkwell/internal/document"
	"github.com/dshills/inkwell/internal/schedule"
)

func world() catalog.Snapshot {
	return catalog.Snapshot{Items: []alias.WorldItem{
		{ID: 3, Title: "John"},
	}}
}

func newEditor(t *testing.T, width, height int, opts ...Option) (*Editor, *schedule.Manual, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("")
	if err := screen.Init(); err != nil {
		t.Fatalf("screen init failed: %v", err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(width, height)

	m := schedule.NewManual()
	e, err := New(screen, m, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return e, m, screen
}

func open(t *testing.T, e *Editor, text string, snap catalog.Snapshot, prefs config.Preferences) {
	t.Helper()
	err := e.Open(config.LoadConfig{
		DocumentID:  "doc-1",
		LineText:    text,
		Catalog:     snap,
		Preferences: prefs,
	})
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
}

func key(k tcell.Key) *tcell.EventKey {
	return tcell.NewEventKey(k, 0, tcell.ModNone)
}

func typeText(e *Editor, s string) {
	for _, r := range s {
		e.Handle(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
	}
}

func rowText(screen tcell.SimulationScreen, y int) string {
	w, _ := screen.Size()
	var b strings.Builder
	for x := 0; x < w; x++ {
		mainc, combc, _, _ := screen.GetContent(x, y) //nolint:staticcheck // GetContent is the correct API
		b.WriteRune(mainc)
		for _, c := range combc {
			b.WriteRune(c)
		}
	}
	return strings.TrimRight(b.String(), " ")
}

func cellStyle(screen tcell.SimulationScreen, x, y int) tcell.Style {
	_, _, style, _ := screen.GetContent(x, y) //nolint:staticcheck // GetContent is the correct API
	return style
}

// ==========================================================================
// Layout Tests
// ==========================================================================

func TestLayoutRowsFollowLines(t *testing.T) {
	e, _, _ := newEditor(t, 40, 10)
	open(t, e, "Hi John\n\nbye", world(), config.DefaultPreferences())

	if got := len(e.layout.rows); got != 3 {
		t.Fatalf("expected 3 rows, got %d", got)
	}
	doc := e.sess.Document()
	end, ok := e.layout.rowEnd(0)
	if !ok {
		t.Fatal("expected an end for row 0")
	}
	if row, col, _ := e.layout.cell(doc, end); row != 0 || col != 7 {
		t.Errorf("expected row 0 col 7, got %d %d", row, col)
	}

	p, exact, ok := e.layout.locate(0, 4)
	if !ok || !exact {
		t.Fatalf("expected an exact hit, got %v %v", exact, ok)
	}
	if m, found := doc.MarkerAt(p); !found || m.Link.EntityID != 3 {
		t.Errorf("expected column 4 on the John link, got %v", p)
	}

	if _, exact, ok := e.layout.locate(2, 30); !ok || exact {
		t.Errorf("expected an inexact hit past the end, got %v %v", exact, ok)
	}
	if _, _, ok := e.layout.locate(5, 0); ok {
		t.Error("expected no hit below the text")
	}
}

func TestOffsetAtWideCharacters(t *testing.T) {
	tests := []struct {
		name string
		text string
		col  int
		want int
	}{
		{"ascii", "abc", 1, 1},
		{"first half of wide", "日本", 0, 0},
		{"second half of wide", "日本", 1, 0},
		{"second wide", "日本", 2, 3},
		{"past end", "ab", 9, 2},
		{"combining mark", "e\u0301x", 1, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := offsetAt(tt.text, tt.col); got != tt.want {
				t.Errorf("offsetAt(%q, %d) = %d, want %d", tt.text, tt.col, got, tt.want)
			}
		})
	}
}

// ==========================================================================
// Drawing Tests
// ==========================================================================

func TestDrawShowsTextAndCaret(t *testing.T) {
	e, m, screen := newEditor(t, 20, 4)
	open(t, e, "Hello\nworld", catalog.Snapshot{}, config.DefaultPreferences())
	m.Frame()

	if got := rowText(screen, 0); got != "Hello" {
		t.Errorf("row 0: expected %q, got %q", "Hello", got)
	}
	if got := rowText(screen, 1); got != "world" {
		t.Errorf("row 1: expected %q, got %q", "world", got)
	}
	x, y, visible := screen.GetCursor()
	if !visible || x != 0 || y != 0 {
		t.Errorf("expected visible cursor at 0,0, got %d,%d %v", x, y, visible)
	}
	if _, _, attr := cellStyle(screen, 0, 3).Decompose(); attr&tcell.AttrReverse == 0 {
		t.Error("expected a reversed status line")
	}
}

func TestLinkVisibility(t *testing.T) {
	tests := []struct {
		name     string
		visual   config.LinkVisual
		modifier bool
		want     bool
	}{
		{"full", config.VisualFull, false, true},
		{"reveal without modifier", config.VisualReveal, false, false},
		{"reveal with modifier", config.VisualReveal, true, true},
		{"minimal with modifier", config.VisualMinimal, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, m, screen := newEditor(t, 20, 4)
			prefs := config.DefaultPreferences()
			prefs.LinkVisual = tt.visual
			open(t, e, "Hi John", world(), prefs)

			mod := tcell.ModNone
			if tt.modifier {
				mod = tcell.ModCtrl
			}
			e.Handle(tcell.NewEventMouse(15, 2, tcell.ButtonNone, mod))
			m.Frame()

			_, _, attr := cellStyle(screen, 4, 0).Decompose()
			if got := attr&tcell.AttrUnderline != 0; got != tt.want {
				t.Errorf("expected underline %v, got %v", tt.want, got)
			}
			if _, _, attr := cellStyle(screen, 1, 0).Decompose(); attr&tcell.AttrUnderline != 0 {
				t.Error("plain text should not be underlined")
			}
		})
	}
}

// ==========================================================================
// Editing Tests
// ==========================================================================

func TestTypingEditsSession(t *testing.T) {
	e, m, screen := newEditor(t, 20, 4)
	open(t, e, "Hi", catalog.Snapshot{}, config.DefaultPreferences())

	e.Handle(key(tcell.KeyEnd))
	typeText(e, "!")
	m.Frame()

	if got := e.sess.LineText(); got != "Hi!" {
		t.Errorf("expected %q, got %q", "Hi!", got)
	}
	if got := rowText(screen, 0); got != "Hi!" {
		t.Errorf("expected row %q, got %q", "Hi!", got)
	}
	if got := rowText(screen, 3); !strings.HasPrefix(got, "*") {
		t.Errorf("expected a dirty marker on the status line, got %q", got)
	}

	e.Handle(key(tcell.KeyBackspace2))
	e.Handle(key(tcell.KeyHome))
	e.Handle(key(tcell.KeyDelete))
	if got := e.sess.LineText(); got != "i" {
		t.Errorf("expected %q, got %q", "i", got)
	}
}

func TestEnterBreaksLineAfterLink(t *testing.T) {
	e, m, screen := newEditor(t, 20, 4)
	open(t, e, "Hi John", world(), config.DefaultPreferences())

	e.Handle(key(tcell.KeyEnd))
	e.Handle(key(tcell.KeyEnter))
	typeText(e, "x")
	m.Frame()

	if got := e.sess.LineText(); got != "Hi John\nx" {
		t.Errorf("expected %q, got %q", "Hi John\nx", got)
	}
	if got := rowText(screen, 1); got != "x" {
		t.Errorf("expected row 1 %q, got %q", "x", got)
	}
	if got := len(e.sess.Document().Markers()); got != 1 {
		t.Errorf("expected the link to survive, got %d markers", got)
	}
}

func TestCaretMovement(t *testing.T) {
	tests := []struct {
		name string
		text string
		keys []tcell.Key
		col  int
		row  int
	}{
		{"right", "ab\ncd", []tcell.Key{tcell.KeyRight}, 1, 0},
		{"right wraps to next line", "ab\ncd", []tcell.Key{tcell.KeyRight, tcell.KeyRight, tcell.KeyRight}, 0, 1},
		{"left wraps to line end", "ab\ncd", []tcell.Key{tcell.KeyDown, tcell.KeyHome, tcell.KeyLeft}, 2, 0},
		{"down keeps column", "ab\ncd", []tcell.Key{tcell.KeyRight, tcell.KeyDown}, 1, 1},
		{"up from second line", "ab\ncd", []tcell.Key{tcell.KeyDown, tcell.KeyEnd, tcell.KeyUp}, 2, 0},
		{"left at start stays", "ab", []tcell.Key{tcell.KeyLeft}, 0, 0},
		{"right across link", "Hi John", []tcell.Key{tcell.KeyRight, tcell.KeyRight, tcell.KeyRight, tcell.KeyRight}, 4, 0},
		{"left across link", "Hi John", []tcell.Key{tcell.KeyEnd, tcell.KeyLeft, tcell.KeyLeft, tcell.KeyLeft, tcell.KeyLeft, tcell.KeyLeft}, 2, 0},
		{"wide characters", "日本", []tcell.Key{tcell.KeyRight}, 2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, m, screen := newEditor(t, 20, 4)
			open(t, e, tt.text, world(), config.DefaultPreferences())
			for _, k := range tt.keys {
				e.Handle(key(k))
			}
			m.Frame()
			x, y, visible := screen.GetCursor()
			if !visible || x != tt.col || y != tt.row {
				t.Errorf("expected cursor at %d,%d, got %d,%d (visible %v)", tt.col, tt.row, x, y, visible)
			}
		})
	}
}

// ==========================================================================
// Find Tests
// ==========================================================================

func countBackground(screen tcell.SimulationScreen, y int, bg tcell.Color) int {
	w, _ := screen.Size()
	n := 0
	for x := 0; x < w; x++ {
		if _, b, _ := cellStyle(screen, x, y).Decompose(); b == bg {
			n++
		}
	}
	return n
}

func TestFindHighlightsMatches(t *testing.T) {
	e, m, screen := newEditor(t, 20, 4)
	open(t, e, "abc abc abc", catalog.Snapshot{}, config.DefaultPreferences())

	e.Handle(key(tcell.KeyCtrlF))
	typeText(e, "abc")
	m.Settle()

	if got := e.sess.Find().Status(); got != "1 of 3" {
		t.Fatalf("expected %q, got %q", "1 of 3", got)
	}
	if got := rowText(screen, 3); !strings.HasPrefix(got, "find: abc  1 of 3") {
		t.Errorf("unexpected status line %q", got)
	}
	if got := countBackground(screen, 0, tcell.ColorYellow); got != 3 {
		t.Errorf("expected 3 current-match cells, got %d", got)
	}
	if got := countBackground(screen, 0, tcell.ColorGray); got != 6 {
		t.Errorf("expected 6 other-match cells, got %d", got)
	}

	e.Handle(key(tcell.KeyEnter))
	m.Settle()
	if got := e.sess.Find().Status(); got != "2 of 3" {
		t.Errorf("expected %q after next, got %q", "2 of 3", got)
	}

	e.Handle(key(tcell.KeyEscape))
	m.Settle()
	if e.mode != modeEdit {
		t.Error("expected edit mode after closing find")
	}
	if got := countBackground(screen, 0, tcell.ColorYellow); got != 0 {
		t.Errorf("expected highlights cleared, got %d", got)
	}
	if p, _ := e.sess.Caret(); p != (document.Position{Run: 0, Offset: 7}) {
		t.Errorf("expected caret after the closed match, got %v", p)
	}
	if _, _, attr := cellStyle(screen, 5, 0).Decompose(); attr&tcell.AttrReverse == 0 {
		t.Error("expected the closed match to be selected")
	}
}

func TestFindBackspaceEditsQuery(t *testing.T) {
	e, m, _ := newEditor(t, 20, 4)
	open(t, e, "cat car", catalog.Snapshot{}, config.DefaultPreferences())

	e.Handle(key(tcell.KeyCtrlF))
	typeText(e, "cat")
	m.Settle()
	if got := e.sess.Find().Total(); got != 1 {
		t.Fatalf("expected 1 match, got %d", got)
	}
	e.Handle(key(tcell.KeyBackspace2))
	m.Settle()
	if got := e.sess.Find().Total(); got != 2 {
		t.Errorf("expected 2 matches for %q, got %d", e.query, got)
	}
}

func TestScrollIntoViewKeepsClearance(t *testing.T) {
	e, _, _ := newEditor(t, 20, 6)
	lines := make([]string, 20)
	for i := range lines {
		lines[i] = "line"
	}
	open(t, e, strings.Join(lines, "\n"), catalog.Snapshot{}, config.DefaultPreferences())

	e.ScrollIntoView(document.Range{Run: 15, Start: 0, End: 4}, 2*rowPixels)
	if e.top != 11 {
		t.Fatalf("expected match on the last row, got top %d", e.top)
	}
	e.ScrollIntoView(document.Range{Run: 12, Start: 0, End: 4}, 2*rowPixels)
	if e.top != 10 {
		t.Errorf("expected two rows of clearance, got top %d", e.top)
	}
	e.Handle(tcell.NewEventMouse(0, 0, tcell.WheelUp, tcell.ModNone))
	if e.top != 9 {
		t.Errorf("expected top 9 after wheel, got %d", e.top)
	}
}

// ==========================================================================
// Pointer Tests
// ==========================================================================

func TestClickFollowsLink(t *testing.T) {
	e, _, _ := newEditor(t, 20, 4)
	prefs := config.DefaultPreferences()
	prefs.LinkFollow = config.FollowClick
	open(t, e, "Hi John", world(), prefs)

	e.Handle(tcell.NewEventMouse(4, 0, tcell.Button1, tcell.ModNone))
	if got := e.Status(); got != "open wikilink 3: John" {
		t.Errorf("unexpected status %q", got)
	}
}

func TestClickWithoutFollowPlacesCaret(t *testing.T) {
	e, _, _ := newEditor(t, 20, 4)
	open(t, e, "Hi John", world(), config.DefaultPreferences())

	e.Handle(tcell.NewEventMouse(5, 0, tcell.Button1, tcell.ModNone))
	e.Handle(tcell.NewEventMouse(5, 0, tcell.ButtonNone, tcell.ModNone))
	if e.Status() != "" {
		t.Errorf("expected no link interaction, got %q", e.Status())
	}
	p, ok := e.sess.Caret()
	if !ok {
		t.Fatal("expected a caret")
	}
	if m, found := e.sess.Document().MarkerAt(p); !found || p.Offset != 2 || m.Link.EntityID != 3 {
		t.Errorf("expected caret inside the link at offset 2, got %v", p)
	}
}

func TestSecondaryClickSendsContextAction(t *testing.T) {
	tests := []struct {
		name string
		x    int
		want string
	}{
		{"on link", 4, "menu wikilink 3: John"},
		{"plain text", 1, "menu at 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _, _ := newEditor(t, 20, 4)
			open(t, e, "Hi John", world(), config.DefaultPreferences())

			e.Handle(tcell.NewEventMouse(tt.x, 0, tcell.Button2, tcell.ModNone))
			if got := e.Status(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
			if p, _ := e.sess.Caret(); p != (document.Position{}) {
				t.Errorf("secondary click should not move the caret, got %v", p)
			}
		})
	}
}

func TestHoverShowsLink(t *testing.T) {
	e, m, _ := newEditor(t, 20, 4)
	open(t, e, "Hi John", world(), config.DefaultPreferences())

	e.Handle(tcell.NewEventMouse(4, 0, tcell.ButtonNone, tcell.ModNone))
	if e.Status() != "" {
		t.Fatalf("expected no hover before the intent delay, got %q", e.Status())
	}
	m.Advance(250 * time.Millisecond)
	if got := e.Status(); got != "wikilink 3: John" {
		t.Errorf("unexpected hover status %q", got)
	}

	e.Handle(tcell.NewEventMouse(0, 0, tcell.ButtonNone, tcell.ModNone))
	if e.Status() != "" {
		t.Errorf("expected hover to end, got %q", e.Status())
	}
}

// ==========================================================================
// Save Tests
// ==========================================================================

func TestSaveWritesLineText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "note.txt")
	e, _, _ := newEditor(t, 20, 4, WithPath(path))
	open(t, e, "Hi John", world(), config.DefaultPreferences())

	e.Handle(key(tcell.KeyEnd))
	typeText(e, "!")
	e.Handle(key(tcell.KeyCtrlS))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(data) != "Hi John!" {
		t.Errorf("expected %q, got %q", "Hi John!", data)
	}
	if e.sess.Dirty() {
		t.Error("expected clean session after save")
	}
	if !strings.HasPrefix(e.Status(), "saved ") {
		t.Errorf("unexpected status %q", e.Status())
	}
}

func TestSaveWithoutPath(t *testing.T) {
	e, _, _ := newEditor(t, 20, 4)
	open(t, e, "x", catalog.Snapshot{}, config.DefaultPreferences())
	e.Handle(key(tcell.KeyCtrlS))
	if got := e.Status(); got != "nothing to save to" {
		t.Errorf("unexpected status %q", got)
	}
}

func TestNewRequiresScreen(t *testing.T) {
	if _, err := New(nil, schedule.NewManual()); err != ErrNoScreen {
		t.Errorf("expected ErrNoScreen, got %v", err)
	}
}
