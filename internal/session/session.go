package session

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/dshills/inkwell/internal/alias"
	"github.com/dshills/inkwell/internal/catalog"
	"github.com/dshills/inkwell/internal/config"
	"github.com/dshills/inkwell/internal/document"
	"github.com/dshills/inkwell/internal/find"
	"github.com/dshills/inkwell/internal/host"
	"github.com/dshills/inkwell/internal/linker"
	"github.com/dshills/inkwell/internal/logging"
	"github.com/dshills/inkwell/internal/markup"
	"github.com/dshills/inkwell/internal/schedule"
)

// Session is one open document in one editing surface.
type Session struct {
	id       uuid.UUID
	log      *logging.Logger
	bridge   *host.Bridge
	view     View
	settings config.Settings
	prefs    config.Preferences

	doc        *document.Document
	index      *alias.Index
	catalog    catalog.Snapshot
	catalogSet bool
	find       *find.Engine

	docType   string
	docID     string
	versionID int64

	caret    document.Position
	hasCaret bool
	dirty    bool
	modifier bool

	changed     *schedule.Debouncer
	hoverIntent *schedule.Debouncer
	hovered     *document.Inline
	pending     *document.Inline

	hostValue any
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Session) {
		s.log = logging.OrNull(l)
	}
}

// WithHost sets the host that receives reports. The host implements any
// subset of the capability interfaces in package host.
func WithHost(h any) Option {
	return func(s *Session) {
		s.hostValue = h
	}
}

// WithView sets the visible editing surface.
func WithView(v View) Option {
	return func(s *Session) {
		if v != nil {
			s.view = v
		}
	}
}

// WithSettings replaces the default settings.
func WithSettings(cfg config.Settings) Option {
	return func(s *Session) {
		s.settings = cfg
	}
}

// WithID sets the session identity instead of a random one.
func WithID(id uuid.UUID) Option {
	return func(s *Session) {
		s.id = id
	}
}

// New creates a session with an empty document. Deferred work is scheduled
// on sched.
func New(sched schedule.Scheduler, opts ...Option) *Session {
	s := &Session{
		id:       uuid.New(),
		log:      logging.Null(),
		view:     nopView{},
		settings: config.Default(),
		doc:      document.New(nil),
		index:    alias.Empty,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithComponent("session").WithField("session", s.id.String())
	s.prefs = s.settings.Preferences
	s.bridge = host.NewBridge(s.hostValue, host.WithLogger(s.log))

	t := s.settings.Timing
	s.changed = schedule.NewDebouncer(sched, t.DocChanged.Duration)
	s.hoverIntent = schedule.NewDebouncer(sched, t.HoverIntent.Duration)
	s.find = find.New(s.doc, sched, surface{s: s, view: s.view},
		find.WithLogger(s.log),
		find.WithHighlightCap(s.settings.Find.HighlightCap),
		find.WithScrollClearance(s.settings.Find.ScrollClearance),
		find.WithRefreshDelay(t.FindRefresh.Duration),
	)
	return s
}

// ID returns the session identity.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Load replaces the document with the one described by cfg. A structured
// snapshot takes precedence over line text. Known mentions are annotated
// and, when a catalog is supplied, stale markers are removed. On error the
// current document is left untouched and a diagnostic is reported.
func (s *Session) Load(cfg config.LoadConfig) error {
	root, err := s.parse(cfg)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrLoadFailed, err)
		s.diagnose(host.SeverityError, "could not load document", err)
		return err
	}

	doc := document.New(root)
	idx := cfg.Catalog.Index()
	catalogSet := !cfg.Catalog.Empty()
	removed := 0
	if catalogSet {
		removed = linker.SweepStale(doc, idx)
	}
	added := linker.AnnotateDocument(doc, idx)

	s.PointerLeave()
	s.changed.Cancel()
	s.doc = doc
	s.index = idx
	s.catalog = cfg.Catalog
	s.catalogSet = catalogSet
	s.docType = cfg.DocType
	s.docID = cfg.DocumentID
	s.versionID = cfg.VersionID
	s.prefs = cfg.Preferences
	s.caret = doc.Start()
	s.hasCaret = false
	s.dirty = false
	s.find.SetDocument(doc)

	s.log.Info("loaded document %q version %d: %d runs, %d markers added, %d stale removed",
		s.docID, s.versionID, doc.RunCount(), added, removed)
	return nil
}

func (s *Session) parse(cfg config.LoadConfig) (*document.Fragment, error) {
	if cfg.HasSnapshot() {
		return markup.Parse(cfg.Snapshot)
	}
	return markup.ToDisplayForm(cfg.LineText), nil
}

// LoadJSON parses a JSON load configuration and loads it. Preferences
// absent from data keep their current values.
func (s *Session) LoadJSON(data []byte) error {
	cfg, err := config.ParseLoadConfig(data, s.prefs)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrLoadFailed, err)
		s.diagnose(host.SeverityError, "invalid load configuration", err)
		return err
	}
	return s.Load(cfg)
}

// UpdateCatalog rebuilds the alias index from snap, removes markers that no
// longer resolve and annotates new mentions. The caret stays on the same
// character.
func (s *Session) UpdateCatalog(snap catalog.Snapshot) {
	s.catalog = snap
	s.catalogSet = true
	s.index = snap.Index()

	removed := s.restructure(func() int { return linker.SweepStale(s.doc, s.index) })
	added := s.restructure(func() int { return linker.AnnotateDocument(s.doc, s.index) })
	if removed+added > 0 {
		s.find.NoteMutation()
		s.dropDetachedHover()
	}
	s.log.Debug("catalog updated: %d entries, %d markers added, %d removed",
		s.index.Len(), added, removed)
}

// restructure runs fn, which may split or unwrap runs without changing the
// text, and maps the caret to the same character afterwards.
func (s *Session) restructure(fn func() int) int {
	off, ok := s.doc.Offset(s.caret)
	n := fn()
	if n > 0 && ok {
		s.caret = s.doc.PositionAt(off)
	}
	return n
}

// SetCaret moves the caret. The position must address a live run, or be
// the start of an empty document.
func (s *Session) SetCaret(p document.Position) error {
	empty := s.doc.RunCount() == 0 && p == s.doc.Start()
	if !empty && !s.doc.Valid(p) {
		return document.ErrInvalidPosition
	}
	s.caret = p
	s.hasCaret = true
	return nil
}

// ClearCaret removes the caret from the document, as when the selection
// moves to another control.
func (s *Session) ClearCaret() {
	s.hasCaret = false
}

// Caret returns the caret and whether it is in the document.
func (s *Session) Caret() (document.Position, bool) {
	if !s.hasCaret || !s.doc.Valid(s.caret) {
		return s.caret, false
	}
	return s.caret, true
}

func (s *Session) editCaret() (document.Position, error) {
	if !s.hasCaret {
		return document.Position{}, ErrNoCaret
	}
	if s.doc.RunCount() == 0 {
		return document.Position{}, nil
	}
	if !s.doc.Valid(s.caret) {
		return s.caret, document.ErrInvalidPosition
	}
	return s.caret, nil
}

// InsertText types text at the caret.
func (s *Session) InsertText(text string) error {
	if text == "" {
		return nil
	}
	caret, err := s.editCaret()
	if err != nil {
		return err
	}
	pos, err := s.doc.Insert(caret, text)
	if err != nil {
		return err
	}
	s.caret = pos
	s.afterEdit()
	return nil
}

// InsertLineBreak starts a new line at the caret. Links never span lines:
// a link around the caret is unwrapped, the line is split and mentions on
// both halves are annotated again.
func (s *Session) InsertLineBreak() error {
	caret, err := s.editCaret()
	if err != nil {
		return err
	}
	unwrapped := linker.UnwrapAt(s.doc, caret)
	pos, err := s.doc.InsertLineBreak(caret)
	if err != nil {
		return err
	}
	s.caret = pos
	if unwrapped {
		s.restructure(func() int { return linker.AnnotateDocument(s.doc, s.index) })
	}
	s.afterEdit()
	return nil
}

// DeleteBackward deletes the character before the caret.
func (s *Session) DeleteBackward() error {
	return s.deleteWith(s.doc.DeleteBackward)
}

// DeleteForward deletes the character after the caret.
func (s *Session) DeleteForward() error {
	return s.deleteWith(s.doc.DeleteForward)
}

func (s *Session) deleteWith(del func(document.Position) (document.Position, error)) error {
	caret, err := s.editCaret()
	if err != nil {
		return err
	}
	before := s.doc.Version()
	pos, err := del(caret)
	if err != nil {
		return err
	}
	s.caret = pos
	if s.doc.Version() != before {
		s.afterEdit()
	}
	return nil
}

// Mutation edits the document directly and returns the new caret.
type Mutation func(doc *document.Document, caret document.Position) (document.Position, error)

// ApplyMutation runs an arbitrary edit, such as a paste, and then performs
// the same link repair and reporting as typed edits. If fn changed the
// document and failed, the repair still runs before the error is returned.
func (s *Session) ApplyMutation(fn Mutation) error {
	before := s.doc.Version()
	pos, err := fn(s.doc, s.caret)
	if err == nil {
		s.caret = pos
		s.hasCaret = true
	}
	if s.doc.Version() != before {
		if !s.doc.Valid(s.caret) {
			s.caret = s.doc.End()
		}
		s.afterEdit()
	}
	return err
}

// afterEdit repairs links around the caret first, then lets the find
// engine and the host know.
func (s *Session) afterEdit() {
	caret, outcome := linker.ReconcileEdit(s.doc, s.caret, s.index)
	s.caret = caret
	if outcome != linker.Untouched {
		s.log.Debug("marker %s at %s", outcome, caret)
	}
	if n := linker.UnwrapDamaged(s.doc); n > 0 {
		s.log.Debug("unwrapped %d damaged markers", n)
	}
	s.dropDetachedHover()
	s.find.NoteMutation()

	s.dirty = true
	s.bridge.Activity(host.ActivityTyping)
	s.changed.Trigger(s.reportChange)
}

func (s *Session) reportChange() {
	s.bridge.DocumentChanged(host.DocumentChange{
		DocumentID: s.docID,
		VersionID:  s.versionID,
		Dirty:      s.dirty,
	})
}

// FocusGained reports that the editing surface received focus.
func (s *Session) FocusGained() {
	s.bridge.FocusGained()
	s.bridge.Activity(host.ActivityFocus)
}

// FocusLost reports that the editing surface lost focus. The caret is kept
// as the anchor for the next find.
func (s *Session) FocusLost() {
	s.captureAnchor()
	s.bridge.FocusLost()
	s.bridge.Activity(host.ActivityBlur)
}

// KeyUp records the caret as the find anchor.
func (s *Session) KeyUp() {
	s.captureAnchor()
}

// Scrolled reports that the surface was scrolled.
func (s *Session) Scrolled() {
	s.bridge.Activity(host.ActivityScrolling)
}

func (s *Session) captureAnchor() {
	if p, ok := s.Caret(); ok {
		s.find.CaptureAnchor(p)
	}
}

// RequestSave removes stale markers and hands both representations of the
// document to the host. The session is clean afterwards.
func (s *Session) RequestSave() host.SaveRequest {
	if s.catalogSet {
		if n := s.restructure(func() int { return linker.SweepStale(s.doc, s.index) }); n > 0 {
			s.log.Debug("save removed %d stale markers", n)
			s.find.NoteMutation()
			s.dropDetachedHover()
		}
	} else {
		s.log.Debug("no catalog set; stale sweep skipped on save")
	}
	req := host.SaveRequest{
		DocumentID: s.docID,
		VersionID:  s.versionID,
		LineText:   s.LineText(),
		Snapshot:   s.Snapshot(),
	}
	s.bridge.RequestSave(req)
	s.dirty = false
	return req
}

// Close ends any hover and delivers a pending change report immediately.
func (s *Session) Close() {
	s.PointerLeave()
	if s.changed.Pending() {
		s.changed.Cancel()
		s.reportChange()
	}
}

// LineText returns the line form of the document.
func (s *Session) LineText() string {
	return markup.ToLineForm(s.doc.Root())
}

// Snapshot returns the structured snapshot of the document.
func (s *Session) Snapshot() string {
	return markup.Render(s.doc.Root())
}

// Document returns the live document. Callers that mutate it directly must
// go through ApplyMutation instead.
func (s *Session) Document() *document.Document {
	return s.doc
}

// Find returns the find engine.
func (s *Session) Find() *find.Engine {
	return s.find
}

// Index returns the current alias index.
func (s *Session) Index() *alias.Index {
	return s.index
}

// Catalog returns the catalog snapshot the index was built from.
func (s *Session) Catalog() catalog.Snapshot {
	return s.catalog
}

// Bridge returns the host bridge.
func (s *Session) Bridge() *host.Bridge {
	return s.bridge
}

// Dirty reports whether the document changed since it was loaded or last
// saved.
func (s *Session) Dirty() bool {
	return s.dirty
}

// DocumentID returns the host's document id.
func (s *Session) DocumentID() string {
	return s.docID
}

// DocType returns the host's document type.
func (s *Session) DocType() string {
	return s.docType
}

// VersionID returns the host's version id.
func (s *Session) VersionID() int64 {
	return s.versionID
}

// Preferences returns the link preferences in effect.
func (s *Session) Preferences() config.Preferences {
	return s.prefs
}

// SetPreferences replaces the link preferences.
func (s *Session) SetPreferences(p config.Preferences) {
	s.prefs = p
	s.log.Debug("preferences: follow=%s visual=%s", p.LinkFollow, p.LinkVisual)
}

// ModifierDown records the link modifier key state and reports whether
// links are highlighted as a result.
func (s *Session) ModifierDown(down bool) bool {
	s.modifier = down
	return s.LinksVisible()
}

// LinksVisible reports whether link chrome is drawn right now.
func (s *Session) LinksVisible() bool {
	return s.prefs.LinksVisible(s.modifier)
}

func (s *Session) diagnose(sev host.Severity, msg string, err error) {
	if sev == host.SeverityError {
		s.log.Error("%s: %v", msg, err)
	} else {
		s.log.Warn("%s: %v", msg, err)
	}
	s.bridge.Diagnostic(host.Diagnostic{Severity: sev, Message: msg, Err: err})
}
