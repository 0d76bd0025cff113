package find

import (
	"fmt"
	"time"

	"github.com/dshills/inkwell/internal/document"
	"github.com/dshills/inkwell/internal/logging"
	"github.com/dshills/inkwell/internal/schedule"
)

// Defaults for engine options.
const (
	DefaultHighlightCap    = 500
	DefaultScrollClearance = 48
	DefaultRefreshDelay    = 60 * time.Millisecond
)

// State is the find engine state.
type State uint8

const (
	// StateClosed means no find session exists.
	StateClosed State = iota
	// StateEmpty means a session exists with an empty query.
	StateEmpty
	// StateMatched means a session exists with a non-empty query.
	StateMatched
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateEmpty:
		return "empty"
	case StateMatched:
		return "matched"
	default:
		return "unknown"
	}
}

// Session is the state of one open find surface.
type Session struct {
	Query   string
	Set     *MatchSet
	Current int

	Anchor    document.Position
	HasAnchor bool
	AnchorSeq uint64
	MoveSeq   uint64

	last    Match
	hasLast bool
}

// Engine indexes query occurrences in a live document, tracks the current
// match and drives the two highlight layers.
type Engine struct {
	doc     *document.Document
	surface Surface
	log     *logging.Logger

	cap       int
	clearance int

	refresh      *schedule.Debouncer
	paintAll     *schedule.Frame
	paintCurrent *schedule.Frame
	scroll       *schedule.Frame

	session *Session
	stale   bool
	seq     uint64

	layers map[LayerKind][]document.Range
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) {
		e.log = logging.OrNull(l).WithComponent("find")
	}
}

// WithHighlightCap sets the match count above which the all-matches layer
// is not painted.
func WithHighlightCap(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.cap = n
		}
	}
}

// WithScrollClearance sets the reserved space at the top of the viewport.
func WithScrollClearance(px int) Option {
	return func(e *Engine) {
		if px >= 0 {
			e.clearance = px
		}
	}
}

// WithRefreshDelay sets the debounce applied after edits.
func WithRefreshDelay(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.refresh.SetDelay(d)
		}
	}
}

// New creates a find engine over doc. A nil surface is replaced by
// NopSurface.
func New(doc *document.Document, s schedule.Scheduler, surface Surface, opts ...Option) *Engine {
	if surface == nil {
		surface = NopSurface{}
	}
	e := &Engine{
		doc:          doc,
		surface:      surface,
		log:          logging.Null(),
		cap:          DefaultHighlightCap,
		clearance:    DefaultScrollClearance,
		refresh:      schedule.NewDebouncer(s, DefaultRefreshDelay),
		paintAll:     schedule.NewFrame(s),
		paintCurrent: schedule.NewFrame(s),
		scroll:       schedule.NewFrame(s),
		layers:       make(map[LayerKind][]document.Range),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetDocument points the engine at a new document. An open session is
// refreshed against it without scrolling.
func (e *Engine) SetDocument(doc *document.Document) {
	e.doc = doc
	e.stale = true
	if e.session != nil {
		e.session.hasLast = false
		e.session.HasAnchor = false
		e.refreshNow()
	}
}

// State returns the current state.
func (e *Engine) State() State {
	switch {
	case e.session == nil:
		return StateClosed
	case e.session.Query == "":
		return StateEmpty
	default:
		return StateMatched
	}
}

// Session returns the open session, or nil.
func (e *Engine) Session() *Session {
	return e.session
}

// Open starts a session, capturing the caret as the anchor before taking
// focus. A non-empty prefill is applied as the query.
func (e *Engine) Open(prefill string) {
	if e.session == nil {
		e.session = &Session{Current: -1}
		e.log.Debug("opened")
	}
	if p, ok := e.surface.Caret(); ok {
		e.CaptureAnchor(p)
	}
	e.surface.FocusFind()
	if prefill != "" {
		e.SetQuery(prefill)
	}
}

// Close ends the session, clears both layers and returns focus to the
// document with the current match selected.
func (e *Engine) Close() {
	if e.session == nil {
		return
	}
	current, ok := e.Current()
	query := e.session.Query
	e.refresh.Cancel()
	e.paintAll.Cancel()
	e.paintCurrent.Cancel()
	e.scroll.Cancel()
	e.session = nil
	e.paint(LayerAll, nil)
	e.paint(LayerCurrent, nil)
	if ok && live(e.doc, current, query) {
		e.surface.Select(current.Range())
	}
	e.surface.FocusDocument()
	e.log.Debug("closed")
}

// CaptureAnchor records p as the place to resume searching from. It
// reports false when no session is open.
func (e *Engine) CaptureAnchor(p document.Position) bool {
	if e.session == nil {
		return false
	}
	e.seq++
	e.session.Anchor = p
	e.session.HasAnchor = true
	e.session.AnchorSeq = e.seq
	return true
}

// SetQuery updates the query. The match set is rebuilt when the query,
// the text version or the run cache changed. A non-empty query selects the
// first match at or after the anchor.
func (e *Engine) SetQuery(q string) {
	s := e.session
	if s == nil {
		return
	}
	changed := q != s.Query
	s.Query = q

	if q == "" {
		e.refresh.Cancel()
		s.Set = nil
		s.Current = -1
		s.hasLast = false
		e.requestPaintAll()
		e.requestPaintCurrent()
		return
	}

	if !changed && !e.needsRebuild() {
		return
	}
	e.rebuild()
	e.requestPaintAll()

	s.hasLast = false
	if s.Set.Len() == 0 {
		s.Current = -1
		e.requestPaintCurrent()
		return
	}
	start, inclusive := e.startPosition(false, false)
	if s.HasAnchor && e.doc.Valid(s.Anchor) {
		start, inclusive = s.Anchor, true
	}
	if !e.selectFrom(start, inclusive, false) {
		s.Current = -1
		e.requestPaintCurrent()
	}
}

// Next selects the next match.
func (e *Engine) Next() bool {
	return e.Navigate(false, false)
}

// Prev selects the previous match.
func (e *Engine) Prev() bool {
	return e.Navigate(true, false)
}

// Navigate selects the next match in the given direction. It reports false
// when there is no session, no query or no live match.
func (e *Engine) Navigate(backwards, fromTop bool) bool {
	s := e.session
	if s == nil || s.Query == "" {
		return false
	}
	if e.needsRebuild() {
		e.rebuild()
		e.requestPaintAll()
	}
	if s.Set.Len() == 0 {
		s.Current = -1
		e.requestPaintCurrent()
		return false
	}
	start, inclusive := e.startPosition(backwards, fromTop)
	return e.selectFrom(start, inclusive, backwards)
}

// startPosition picks where a navigation begins, and whether a match
// exactly at that position may be selected.
func (e *Engine) startPosition(backwards, fromTop bool) (document.Position, bool) {
	s := e.session
	edge := e.doc.Start()
	if backwards {
		edge = e.doc.End()
	}
	switch {
	case fromTop:
		return edge, true
	case s.HasAnchor && s.AnchorSeq > s.MoveSeq && e.doc.Valid(s.Anchor):
		return s.Anchor, true
	case s.hasLast:
		return s.last.Position(), false
	}
	if p, ok := e.surface.Caret(); ok && e.doc.Valid(p) {
		return p, true
	}
	return edge, true
}

// selectFrom searches from start towards the document edge, then wraps
// over the opposite segment excluding the starting run, then snaps to the
// first or last live match.
func (e *Engine) selectFrom(start document.Position, inclusive, backwards bool) bool {
	s := e.session
	matches := s.Set.Matches()

	accept := func(i int) bool {
		if !live(e.doc, matches[i], s.Query) {
			e.log.Debug("skipping stale match %v", matches[i].Position())
			return false
		}
		e.choose(i)
		return true
	}

	if !backwards {
		for i, m := range matches {
			c := m.Position().Compare(start)
			if (c > 0 || (c == 0 && inclusive)) && accept(i) {
				return true
			}
		}
		for i, m := range matches {
			if !m.Position().Before(start) {
				break
			}
			if m.Run != start.Run && accept(i) {
				return true
			}
		}
		for i := range matches {
			if accept(i) {
				return true
			}
		}
		return false
	}

	for i := len(matches) - 1; i >= 0; i-- {
		c := matches[i].Position().Compare(start)
		if (c < 0 || (c == 0 && inclusive)) && accept(i) {
			return true
		}
	}
	for i := len(matches) - 1; i >= 0; i-- {
		if !matches[i].Position().After(start) {
			break
		}
		if matches[i].Run != start.Run && accept(i) {
			return true
		}
	}
	for i := len(matches) - 1; i >= 0; i-- {
		if accept(i) {
			return true
		}
	}
	return false
}

// choose makes match i current, paints it and scrolls to it.
func (e *Engine) choose(i int) {
	s := e.session
	m, _ := s.Set.At(i)
	s.Current = i
	s.last = m
	s.hasLast = true
	s.MoveSeq = s.AnchorSeq
	e.requestPaintCurrent()
	r := m.Range()
	e.scroll.Request(func() {
		if e.session == nil || !e.doc.Valid(r.StartPos()) || !e.doc.Valid(r.EndPos()) {
			return
		}
		e.surface.ScrollIntoView(r, e.clearance)
	})
}

// NoteMutation records that the document text changed. An open session
// refreshes after a short debounce, keeping the ordinal current index.
func (e *Engine) NoteMutation() {
	e.stale = true
	if e.session == nil || e.session.Query == "" {
		return
	}
	e.refresh.Trigger(e.refreshNow)
}

// RefreshPending reports whether a debounced refresh is scheduled.
func (e *Engine) RefreshPending() bool {
	return e.refresh.Pending()
}

// refreshNow rebuilds the match set and keeps the current ordinal, clamped
// to the new count. It never scrolls or moves focus.
func (e *Engine) refreshNow() {
	s := e.session
	if s == nil {
		return
	}
	if s.Query == "" {
		e.stale = false
		return
	}
	prev := s.Current
	e.rebuild()
	n := s.Set.Len()
	switch {
	case n == 0:
		s.Current = -1
		s.hasLast = false
	case prev >= 0:
		if prev >= n {
			prev = n - 1
		}
		s.Current = prev
		s.last, _ = s.Set.At(prev)
		s.hasLast = true
	}
	e.requestPaintAll()
	e.requestPaintCurrent()
}

func (e *Engine) needsRebuild() bool {
	s := e.session
	return e.stale || s.Set == nil || s.Set.Query != s.Query || s.Set.Version != e.doc.Version()
}

func (e *Engine) rebuild() {
	s := e.session
	s.Set = Build(e.doc, s.Query)
	e.stale = false
	e.refresh.Cancel()
	e.log.Debug("indexed %d matches for %q at version %d", s.Set.Len(), s.Query, s.Set.Version)
}

func (e *Engine) requestPaintAll() {
	e.paintAll.Request(func() {
		s := e.session
		if s == nil || s.Query == "" || s.Set.Len() > e.cap {
			e.paint(LayerAll, nil)
			return
		}
		e.paint(LayerAll, s.Set.Ranges())
	})
}

func (e *Engine) requestPaintCurrent() {
	e.paintCurrent.Request(func() {
		m, ok := e.Current()
		if !ok || !live(e.doc, m, e.session.Query) {
			e.paint(LayerCurrent, nil)
			return
		}
		e.paint(LayerCurrent, []document.Range{m.Range()})
	})
}

func (e *Engine) paint(kind LayerKind, ranges []document.Range) {
	if len(ranges) == 0 {
		ranges = nil
	}
	e.layers[kind] = ranges
	e.surface.PaintLayer(kind, ranges)
}

// Layer returns the ranges last painted on a layer.
func (e *Engine) Layer(kind LayerKind) []document.Range {
	return e.layers[kind]
}

// Current returns the current match.
func (e *Engine) Current() (Match, bool) {
	s := e.session
	if s == nil {
		return Match{}, false
	}
	return s.Set.At(s.Current)
}

// Total returns the number of matches in the current set.
func (e *Engine) Total() int {
	if e.session == nil {
		return 0
	}
	return e.session.Set.Len()
}

// Status returns "{current} of {total}", with current 1-based or 0.
func (e *Engine) Status() string {
	current := 0
	if _, ok := e.Current(); ok {
		current = e.session.Current + 1
	}
	return fmt.Sprintf("%d of %d", current, e.Total())
}
