package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/inkwell/internal/catalog"
	"github.com/dshills/inkwell/internal/config"
	"github.com/dshills/inkwell/internal/document"
	"github.com/dshills/inkwell/internal/find"
	"github.com/dshills/inkwell/internal/host"
	"github.com/dshills/inkwell/internal/logging"
	"github.com/dshills/inkwell/internal/schedule"
	"github.com/dshills/inkwell/internal/session"
)

// rowPixels converts the find engine's pixel clearance into rows.
const rowPixels = 16

type mode uint8

const (
	modeEdit mode = iota
	modeFind
)

// Editor is an interactive editing session on a terminal screen. All
// methods must be called from the scheduler's goroutine.
type Editor struct {
	screen   tcell.Screen
	sess     *session.Session
	log      *logging.Logger
	settings config.Settings
	path     string

	layout   *layout
	layers   map[find.LayerKind][]document.Range
	selected *document.Range
	top      int
	mode     mode
	query    string
	status   string
	buttons  tcell.ButtonMask
	redraw   *schedule.Frame
	quit     context.CancelFunc
}

// Option configures an Editor.
type Option func(*Editor)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Editor) {
		e.log = l
	}
}

// WithSettings sets the engine settings passed to the session.
func WithSettings(cfg config.Settings) Option {
	return func(e *Editor) {
		e.settings = cfg
	}
}

// WithPath sets the file that save requests write the line text to.
func WithPath(path string) Option {
	return func(e *Editor) {
		e.path = path
	}
}

// New creates an editor drawing on screen. The screen must already be
// initialised.
func New(screen tcell.Screen, sched schedule.Scheduler, opts ...Option) (*Editor, error) {
	if screen == nil {
		return nil, ErrNoScreen
	}
	e := &Editor{
		screen:   screen,
		settings: config.Default(),
		layers:   make(map[find.LayerKind][]document.Range),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = logging.OrNull(e.log).WithComponent("tui")
	e.redraw = schedule.NewFrame(sched)
	e.sess = session.New(sched,
		session.WithLogger(e.log),
		session.WithSettings(e.settings),
		session.WithHost(e),
		session.WithView(e),
	)
	e.layout = buildLayout(e.sess.Document())
	return e, nil
}

// Session returns the underlying editing session.
func (e *Editor) Session() *session.Session {
	return e.sess
}

// Status returns the status line message.
func (e *Editor) Status() string {
	return e.status
}

// Open loads a document and places the caret at its start.
func (e *Editor) Open(cfg config.LoadConfig) error {
	if err := e.sess.Load(cfg); err != nil {
		return err
	}
	e.relayout()
	e.top = 0
	e.selected = nil
	_ = e.sess.SetCaret(e.sess.Document().Start())
	e.invalidate()
	return nil
}

// UpdateCatalog re-annotates the document against a new catalog.
func (e *Editor) UpdateCatalog(snap catalog.Snapshot) {
	e.sess.UpdateCatalog(snap)
	e.relayout()
	e.invalidate()
}

// Run feeds screen events into loop until the editor quits or ctx ends.
// The caller owns the screen and finalises it afterwards.
func (e *Editor) Run(ctx context.Context, loop *schedule.Loop) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	loop.Post(func() {
		e.quit = cancel
		e.sess.FocusGained()
		e.Draw()
	})

	go func() {
		for {
			ev := e.screen.PollEvent()
			if ev == nil {
				return
			}
			if loop.Do(ctx, func() { e.Handle(ev) }) != nil {
				return
			}
		}
	}()

	err := loop.Run(ctx)
	e.sess.Close()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Quit ends Run.
func (e *Editor) Quit() {
	if e.quit != nil {
		e.quit()
	}
}

// Handle processes one screen event.
func (e *Editor) Handle(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if e.mode == modeFind {
			e.handleFindKey(ev)
		} else {
			e.handleKey(ev)
		}
	case *tcell.EventMouse:
		e.handleMouse(ev)
	case *tcell.EventFocus:
		if ev.Focused {
			e.sess.FocusGained()
		} else {
			e.sess.FocusLost()
		}
	case *tcell.EventResize:
		e.screen.Sync()
	}
	e.invalidate()
}

// ctrl reports whether ev is Ctrl plus the letter c.
func ctrl(ev *tcell.EventKey, c rune) bool {
	if ev.Key() == tcell.KeyCtrlA+tcell.Key(c-'a') {
		return true
	}
	return ev.Key() == tcell.KeyRune && ev.Modifiers()&tcell.ModCtrl != 0 && unicode.ToLower(ev.Rune()) == c
}

func (e *Editor) handleKey(ev *tcell.EventKey) {
	var err error
	switch {
	case ctrl(ev, 'q'), ctrl(ev, 'c'):
		e.Quit()
		return
	case ctrl(ev, 's'):
		e.sess.RequestSave()
		return
	case ctrl(ev, 'f'):
		e.mode = modeFind
		e.sess.Find().Open(e.query)
		return
	}

	switch ev.Key() {
	case tcell.KeyRune:
		err = e.sess.InsertText(string(ev.Rune()))
	case tcell.KeyEnter:
		err = e.sess.InsertLineBreak()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		err = e.sess.DeleteBackward()
	case tcell.KeyDelete:
		err = e.sess.DeleteForward()
	case tcell.KeyLeft, tcell.KeyRight, tcell.KeyUp, tcell.KeyDown, tcell.KeyHome, tcell.KeyEnd:
		e.move(ev.Key())
		e.sess.KeyUp()
		return
	default:
		return
	}
	if err != nil {
		e.log.Debug("edit ignored: %v", err)
		return
	}
	e.selected = nil
	e.relayout()
	e.followCaret()
}

func (e *Editor) handleFindKey(ev *tcell.EventKey) {
	f := e.sess.Find()
	switch {
	case ev.Key() == tcell.KeyEscape, ctrl(ev, 'f'):
		e.mode = modeEdit
		f.Close()
		e.followCaret()
		return
	case ev.Key() == tcell.KeyEnter, ev.Key() == tcell.KeyDown, ctrl(ev, 'n'):
		f.Next()
		return
	case ev.Key() == tcell.KeyUp, ctrl(ev, 'p'):
		f.Prev()
		return
	}
	switch ev.Key() {
	case tcell.KeyRune:
		e.query += string(ev.Rune())
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if e.query == "" {
			return
		}
		_, size := lastGrapheme(e.query)
		e.query = e.query[:len(e.query)-size]
	default:
		return
	}
	f.SetQuery(e.query)
}

func (e *Editor) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	buttons := ev.Buttons()
	pressed := buttons&tcell.Button1 != 0 && e.buttons&tcell.Button1 == 0
	secondary := buttons&tcell.Button2 != 0 && e.buttons&tcell.Button2 == 0
	e.buttons = buttons
	modifier := ev.Modifiers()&(tcell.ModCtrl|tcell.ModMeta) != 0
	e.sess.ModifierDown(modifier)

	switch {
	case buttons&tcell.WheelUp != 0:
		e.scroll(-1)
		return
	case buttons&tcell.WheelDown != 0:
		e.scroll(1)
		return
	}

	p, exact, ok := e.hit(x, y)
	e.sess.PointerMove(p, ok && exact)
	if secondary && ok {
		e.sess.ContextAction(p, "menu")
		return
	}
	if !pressed || !ok {
		return
	}
	if exact && e.sess.Click(p, modifier) {
		return
	}
	e.selected = nil
	if err := e.sess.SetCaret(p); err == nil {
		e.sess.KeyUp()
	}
}

// hit maps a screen cell to a document position.
func (e *Editor) hit(x, y int) (document.Position, bool, bool) {
	if y >= e.textRows() {
		return document.Position{}, false, false
	}
	return e.layout.locate(e.top+y, x)
}

func (e *Editor) scroll(delta int) {
	top := e.top + delta
	if top > len(e.layout.rows)-1 {
		top = len(e.layout.rows) - 1
	}
	if top < 0 {
		top = 0
	}
	if top != e.top {
		e.top = top
		e.sess.Scrolled()
	}
}

func (e *Editor) relayout() {
	e.layout = buildLayout(e.sess.Document())
}

func (e *Editor) invalidate() {
	e.redraw.Request(e.Draw)
}

// textRows is the number of rows available for text above the status line.
func (e *Editor) textRows() int {
	_, h := e.screen.Size()
	if h <= 1 {
		return h
	}
	return h - 1
}

// followCaret scrolls the caret into view.
func (e *Editor) followCaret() {
	p, ok := e.sess.Caret()
	if !ok {
		return
	}
	row, _, ok := e.layout.cell(e.sess.Document(), p)
	if ok {
		e.reveal(row, 0)
	}
}

// reveal scrolls so row is visible with clearance rows above it.
func (e *Editor) reveal(row, clearance int) {
	rows := e.textRows()
	if clearance >= rows {
		clearance = rows - 1
	}
	if clearance < 0 {
		clearance = 0
	}
	top := e.top
	switch {
	case row < top+clearance:
		top = max(row-clearance, 0)
	case row >= top+rows:
		top = row - rows + 1
	}
	if top != e.top {
		e.top = top
		e.sess.Scrolled()
	}
}

// PaintLayer replaces a find highlight layer.
func (e *Editor) PaintLayer(kind find.LayerKind, ranges []document.Range) {
	e.layers[kind] = ranges
	e.invalidate()
}

// ScrollIntoView scrolls the match r into view.
func (e *Editor) ScrollIntoView(r document.Range, clearance int) {
	row, _, ok := e.layout.cell(e.sess.Document(), r.StartPos())
	if !ok {
		return
	}
	e.reveal(row, clearance/rowPixels)
	e.invalidate()
}

// Select highlights r as the selection.
func (e *Editor) Select(r document.Range) {
	e.selected = &r
	e.invalidate()
}

// FocusDocument returns keyboard input to the text.
func (e *Editor) FocusDocument() {
	e.mode = modeEdit
	e.invalidate()
}

// FocusFind directs keyboard input to the find query.
func (e *Editor) FocusFind() {
	e.mode = modeFind
	e.invalidate()
}

// LinkInteraction shows hovered and clicked links on the status line.
func (e *Editor) LinkInteraction(li host.LinkInteraction) {
	switch li.Trigger {
	case host.TriggerHoverEnd:
		e.status = ""
	case host.TriggerClick:
		e.status = fmt.Sprintf("open %s %d: %s", li.Kind, li.EntityID, li.Text)
	default:
		e.status = fmt.Sprintf("%s %d: %s", li.Kind, li.EntityID, li.Text)
	}
	e.invalidate()
}

// ContextAction shows the context-menu target on the status line.
func (e *Editor) ContextAction(a host.ContextAction) {
	if a.OnLink {
		e.status = fmt.Sprintf("%s %s %d: %s", a.Action, a.Kind, a.EntityID, a.Text)
	} else {
		e.status = fmt.Sprintf("%s at %d", a.Action, a.Offset)
	}
	e.invalidate()
}

// RequestSave writes the line text to the editor's file, if it has one.
func (e *Editor) RequestSave(r host.SaveRequest) {
	if e.path == "" {
		e.status = "nothing to save to"
		e.invalidate()
		return
	}
	if err := os.WriteFile(e.path, []byte(r.LineText), 0o644); err != nil {
		e.log.Error("save %s: %v", e.path, err)
		e.status = "save failed: " + err.Error()
	} else {
		e.log.Info("saved %s", e.path)
		e.status = "saved " + e.path
	}
	e.invalidate()
}

// Diagnostic shows a problem report on the status line.
func (e *Editor) Diagnostic(d host.Diagnostic) {
	e.status = fmt.Sprintf("%s: %s", d.Severity, d.Message)
	e.invalidate()
}
