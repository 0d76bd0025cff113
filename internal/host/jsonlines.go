package host

import (
	"io"
	"sort"
	"sync"
	"time"

	"github.com/tidwall/sjson"
)

// JSONLines is a host that writes each report as a single JSON object
// followed by a newline. It implements every capability interface and is
// safe for concurrent use.
//
//	{"event":"documentChanged","docId":"12","versionId":3,"dirty":true}
type JSONLines struct {
	mu     sync.Mutex
	w      io.Writer
	fields map[string]any
	now    func() time.Time
	stamp  bool
	err    error
}

// JSONLinesOption configures a JSONLines host.
type JSONLinesOption func(*JSONLines)

// WithStaticField adds a field written on every line, such as a session id.
func WithStaticField(key string, value any) JSONLinesOption {
	return func(j *JSONLines) {
		j.fields[key] = value
	}
}

// WithTimestamps adds an RFC 3339 "ts" field to every line.
func WithTimestamps(now func() time.Time) JSONLinesOption {
	return func(j *JSONLines) {
		if now == nil {
			now = time.Now
		}
		j.now = now
		j.stamp = true
	}
}

// NewJSONLines creates a JSON-lines host writing to w.
func NewJSONLines(w io.Writer, opts ...JSONLinesOption) *JSONLines {
	j := &JSONLines{w: w, fields: make(map[string]any), now: time.Now}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Err returns the first encoding or write error, if any.
func (j *JSONLines) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

// kv is one ordered key/value pair of a line.
type kv struct {
	key   string
	value any
}

func (j *JSONLines) emit(event string, pairs ...kv) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.err != nil {
		return
	}

	line, err := sjson.Set("", "event", event)
	if err != nil {
		j.err = err
		return
	}
	if j.stamp {
		if line, err = sjson.Set(line, "ts", j.now().UTC().Format(time.RFC3339Nano)); err != nil {
			j.err = err
			return
		}
	}

	keys := make([]string, 0, len(j.fields))
	for k := range j.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		pairs = append(pairs, kv{k, j.fields[k]})
	}

	for _, p := range pairs {
		if line, err = sjson.Set(line, p.key, p.value); err != nil {
			j.err = err
			return
		}
	}
	if _, err := io.WriteString(j.w, line+"\n"); err != nil {
		j.err = err
	}
}

// DocumentChanged implements DocumentChangedHandler.
func (j *JSONLines) DocumentChanged(c DocumentChange) {
	j.emit("documentChanged",
		kv{"docId", c.DocumentID},
		kv{"versionId", c.VersionID},
		kv{"dirty", c.Dirty},
	)
}

// FocusGained implements FocusGainedHandler.
func (j *JSONLines) FocusGained() {
	j.emit("focusGained")
}

// FocusLost implements FocusLostHandler.
func (j *JSONLines) FocusLost() {
	j.emit("focusLost")
}

// Activity implements ActivityHandler.
func (j *JSONLines) Activity(kind ActivityKind) {
	j.emit("activity", kv{"kind", kind.String()})
}

// LinkInteraction implements LinkInteractionHandler.
func (j *JSONLines) LinkInteraction(li LinkInteraction) {
	pairs := []kv{
		{"kind", li.Kind.String()},
		{"trigger", li.Trigger.String()},
		{"entityId", li.EntityID},
		{"aliasId", li.AliasID},
	}
	if li.CandidateID != 0 {
		pairs = append(pairs, kv{"candidateId", li.CandidateID})
	}
	if li.Href != "" {
		pairs = append(pairs, kv{"href", li.Href})
	}
	pairs = append(pairs,
		kv{"text", li.Text},
		kv{"docId", li.DocumentID},
		kv{"versionId", li.VersionID},
	)
	j.emit("linkInteraction", pairs...)
}

// ContextAction implements ContextActionHandler.
func (j *JSONLines) ContextAction(a ContextAction) {
	pairs := []kv{
		{"action", a.Action},
		{"offset", a.Offset},
	}
	if a.OnLink {
		pairs = append(pairs,
			kv{"kind", a.Kind.String()},
			kv{"entityId", a.EntityID},
			kv{"aliasId", a.AliasID},
		)
		if a.CandidateID != 0 {
			pairs = append(pairs, kv{"candidateId", a.CandidateID})
		}
		if a.Href != "" {
			pairs = append(pairs, kv{"href", a.Href})
		}
		pairs = append(pairs, kv{"text", a.Text})
	}
	pairs = append(pairs,
		kv{"docId", a.DocumentID},
		kv{"versionId", a.VersionID},
	)
	j.emit("contextAction", pairs...)
}

// RequestSave implements SaveHandler.
func (j *JSONLines) RequestSave(r SaveRequest) {
	j.emit("requestSave",
		kv{"docId", r.DocumentID},
		kv{"versionId", r.VersionID},
		kv{"lineText", r.LineText},
		kv{"snapshot", r.Snapshot},
	)
}

// Diagnostic implements DiagnosticHandler.
func (j *JSONLines) Diagnostic(d Diagnostic) {
	pairs := []kv{
		{"severity", d.Severity.String()},
		{"message", d.Message},
	}
	if d.Err != nil {
		pairs = append(pairs, kv{"error", d.Err.Error()})
	}
	j.emit("diagnostic", pairs...)
}
