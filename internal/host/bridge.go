package host

import (
	"github.com/dshills/inkwell/internal/logging"
)

// Bridge delivers reports to a host, skipping capabilities the host does
// not implement. A nil host accepts nothing.
type Bridge struct {
	host    any
	log     *logging.Logger
	missing map[string]bool
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the bridge logger.
func WithLogger(l *logging.Logger) Option {
	return func(b *Bridge) {
		b.log = logging.OrNull(l).WithComponent("host")
	}
}

// NewBridge wraps host.
func NewBridge(host any, opts ...Option) *Bridge {
	b := &Bridge{
		host:    host,
		log:     logging.Null(),
		missing: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Host returns the wrapped host.
func (b *Bridge) Host() any {
	return b.host
}

// skip logs a missing capability once per method name.
func (b *Bridge) skip(method string) bool {
	if !b.missing[method] {
		b.missing[method] = true
		b.log.Debug("host does not implement %s; skipped", method)
	}
	return false
}

// Missing reports whether a call to method was skipped for lack of a
// capability.
func (b *Bridge) Missing(method string) bool {
	return b.missing[method]
}

// DocumentChanged reports a change. It returns false when skipped.
func (b *Bridge) DocumentChanged(c DocumentChange) bool {
	h, ok := b.host.(DocumentChangedHandler)
	if !ok {
		return b.skip("DocumentChanged")
	}
	h.DocumentChanged(c)
	return true
}

// FocusGained reports that the document took focus.
func (b *Bridge) FocusGained() bool {
	h, ok := b.host.(FocusGainedHandler)
	if !ok {
		return b.skip("FocusGained")
	}
	h.FocusGained()
	return true
}

// FocusLost reports that the document lost focus.
func (b *Bridge) FocusLost() bool {
	h, ok := b.host.(FocusLostHandler)
	if !ok {
		return b.skip("FocusLost")
	}
	h.FocusLost()
	return true
}

// Activity sends an activity ping.
func (b *Bridge) Activity(kind ActivityKind) bool {
	h, ok := b.host.(ActivityHandler)
	if !ok {
		return b.skip("Activity")
	}
	h.Activity(kind)
	return true
}

// LinkInteraction reports a link click or hover.
func (b *Bridge) LinkInteraction(li LinkInteraction) bool {
	h, ok := b.host.(LinkInteractionHandler)
	if !ok {
		return b.skip("LinkInteraction")
	}
	h.LinkInteraction(li)
	return true
}

// ContextAction forwards a context-menu action.
func (b *Bridge) ContextAction(a ContextAction) bool {
	h, ok := b.host.(ContextActionHandler)
	if !ok {
		return b.skip("ContextAction")
	}
	h.ContextAction(a)
	return true
}

// RequestSave hands both document representations to the host.
func (b *Bridge) RequestSave(r SaveRequest) bool {
	h, ok := b.host.(SaveHandler)
	if !ok {
		return b.skip("RequestSave")
	}
	h.RequestSave(r)
	return true
}

// Diagnostic reports a problem. Without a capability it is logged at the
// matching level instead.
func (b *Bridge) Diagnostic(d Diagnostic) bool {
	h, ok := b.host.(DiagnosticHandler)
	if !ok {
		switch d.Severity {
		case SeverityError:
			b.log.Error("%s: %v", d.Message, d.Err)
		case SeverityWarning:
			b.log.Warn("%s: %v", d.Message, d.Err)
		default:
			b.log.Info("%s", d.Message)
		}
		return b.skip("Diagnostic")
	}
	h.Diagnostic(d)
	return true
}
