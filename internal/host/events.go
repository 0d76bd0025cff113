package host

import "github.com/dshills/inkwell/internal/document"

// ActivityKind is the kind of a lightweight activity ping.
type ActivityKind uint8

const (
	ActivityFocus ActivityKind = iota
	ActivityBlur
	ActivityTyping
	ActivityScrolling
)

// String returns the wire name of the activity.
func (k ActivityKind) String() string {
	switch k {
	case ActivityFocus:
		return "focus"
	case ActivityBlur:
		return "blur"
	case ActivityTyping:
		return "typing"
	case ActivityScrolling:
		return "scrolling"
	default:
		return "unknown"
	}
}

// Trigger is what caused a link interaction.
type Trigger uint8

const (
	TriggerClick Trigger = iota
	TriggerHoverStart
	TriggerHoverEnd
)

// String returns the wire name of the trigger.
func (t Trigger) String() string {
	switch t {
	case TriggerClick:
		return "click"
	case TriggerHoverStart:
		return "hoverStart"
	case TriggerHoverEnd:
		return "hoverEnd"
	default:
		return "unknown"
	}
}

// DocumentChange reports that the document text changed.
type DocumentChange struct {
	DocumentID string
	VersionID  int64
	Dirty      bool
}

// LinkInteraction reports a click or hover on a link.
type LinkInteraction struct {
	Kind        document.LinkKind
	Trigger     Trigger
	EntityID    document.ID
	AliasID     document.ID
	CandidateID document.ID
	Href        string
	Text        string
	DocumentID  string
	VersionID   int64
}

// ContextAction reports a context-menu action at a document offset. The
// link fields are set only when OnLink is true.
type ContextAction struct {
	Action      string
	Offset      int
	OnLink      bool
	Kind        document.LinkKind
	EntityID    document.ID
	AliasID     document.ID
	CandidateID document.ID
	Href        string
	Text        string
	DocumentID  string
	VersionID   int64
}

// SaveRequest carries both representations of the document.
type SaveRequest struct {
	DocumentID string
	VersionID  int64
	LineText   string
	Snapshot   string
}

// Severity grades a diagnostic.
type Severity uint8

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// String returns the severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Diagnostic is a host-visible problem report, such as a configuration
// that failed to load.
type Diagnostic struct {
	Severity Severity
	Message  string
	Err      error
}

// Capability interfaces. A host implements any subset.
type (
	DocumentChangedHandler interface {
		DocumentChanged(DocumentChange)
	}
	FocusGainedHandler interface {
		FocusGained()
	}
	FocusLostHandler interface {
		FocusLost()
	}
	ActivityHandler interface {
		Activity(ActivityKind)
	}
	LinkInteractionHandler interface {
		LinkInteraction(LinkInteraction)
	}
	ContextActionHandler interface {
		ContextAction(ContextAction)
	}
	SaveHandler interface {
		RequestSave(SaveRequest)
	}
	DiagnosticHandler interface {
		Diagnostic(Diagnostic)
	}
)
