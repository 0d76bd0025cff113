package session

import (
	"github.com/dshills/inkwell/internal/document"
	"github.com/dshills/inkwell/internal/host"
)

// PointerMove reports the pointer over position p, or outside the text when
// ok is false. Resting on a link for the hover-intent delay reports
// hoverStart; moving to another link ends the current hover at once.
func (s *Session) PointerMove(p document.Position, ok bool) {
	var m *document.Inline
	if ok {
		if w, found := s.doc.MarkerAt(p); found {
			m = w
		}
	}
	if m == nil {
		s.PointerLeave()
		return
	}
	if m == s.hovered || m == s.pending {
		return
	}

	s.endHoverNow()
	s.pending = m
	s.hoverIntent.Trigger(func() {
		if s.pending != m {
			return
		}
		s.pending = nil
		if !s.attached(m) {
			return
		}
		s.hovered = m
		s.bridge.LinkInteraction(s.interaction(m, host.TriggerHoverStart))
	})
}

// PointerLeave reports that the pointer left the text.
func (s *Session) PointerLeave() {
	s.hoverIntent.Cancel()
	s.pending = nil
	s.endHoverNow()
}

// Hovered returns the link currently reported as hovered.
func (s *Session) Hovered() (*document.Inline, bool) {
	return s.hovered, s.hovered != nil
}

// Click reports a click at p. It returns whether a link interaction was
// delivered, which depends on the link-follow preference and the modifier
// state.
func (s *Session) Click(p document.Position, modifier bool) bool {
	m, ok := s.doc.MarkerAt(p)
	if !ok {
		return false
	}
	if !s.prefs.LinkFollow.Follows(modifier) {
		s.log.Debug("click on %s link ignored (follow=%s, modifier=%v)",
			m.Link.Kind, s.prefs.LinkFollow, modifier)
		return false
	}
	return s.bridge.LinkInteraction(s.interaction(m, host.TriggerClick))
}

// ContextAction forwards a context-menu action at p to the host, carrying
// the identity of the link under p when there is one. It returns false when
// p is not in the document or the host does not take context actions.
func (s *Session) ContextAction(p document.Position, action string) bool {
	off, ok := s.doc.Offset(p)
	if !ok {
		return false
	}
	a := host.ContextAction{
		Action:     action,
		Offset:     off,
		DocumentID: s.docID,
		VersionID:  s.versionID,
	}
	if m, found := s.doc.MarkerAt(p); found {
		l := m.Link
		a.OnLink = true
		a.Kind = l.Kind
		a.EntityID = l.EntityID
		a.AliasID = l.AliasID
		a.CandidateID = l.CandidateID
		a.Href = l.Href
		a.Text = document.TextContent(m)
	}
	s.log.Debug("context action %q at %d (link=%v)", action, off, a.OnLink)
	return s.bridge.ContextAction(a)
}

func (s *Session) endHoverNow() {
	if s.hovered == nil {
		return
	}
	m := s.hovered
	s.hovered = nil
	s.bridge.LinkInteraction(s.interaction(m, host.TriggerHoverEnd))
}

// dropDetachedHover ends hover state for links an edit removed.
func (s *Session) dropDetachedHover() {
	if s.pending != nil && !s.attached(s.pending) {
		s.hoverIntent.Cancel()
		s.pending = nil
	}
	if s.hovered != nil && !s.attached(s.hovered) {
		s.endHoverNow()
	}
}

func (s *Session) attached(m *document.Inline) bool {
	_, _, ok := s.doc.ParentOf(m)
	return ok
}

func (s *Session) interaction(m *document.Inline, trigger host.Trigger) host.LinkInteraction {
	l := m.Link
	return host.LinkInteraction{
		Kind:        l.Kind,
		Trigger:     trigger,
		EntityID:    l.EntityID,
		AliasID:     l.AliasID,
		CandidateID: l.CandidateID,
		Href:        l.Href,
		Text:        document.TextContent(m),
		DocumentID:  s.docID,
		VersionID:   s.versionID,
	}
}
