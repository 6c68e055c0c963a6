package tracer

import (
	"strconv"
	"sync"
	"time"
)

// Span is a single operation inside a trace. Identifiers are fixed-width
// lowercase hex strings: 16 chars for span ids, 32 for trace ids.
type Span struct {
	SpanID       string
	TraceID      string
	ParentSpanID string
	Op           string
	Description  string
	Status       SpanStatus
	StartTime    time.Time
	EndTime      time.Time
	Tags         map[string]string
	Data         map[string]any

	mu       sync.Mutex
	finished bool
	root     *Transaction
}

// Transaction is the root span of a trace. It carries trace-wide context
// and collects every descendant span started through it.
type Transaction struct {
	Span

	Name          string
	Baggage       string
	ParentSampled *bool
	Environment   string
	Release       string
	Contexts      map[string]map[string]any

	spansMu sync.Mutex
	spans   []*Span

	client *Client
}

// StartChild starts a child span under s with an explicit id and start time.
func (s *Span) StartChild(spanID, description string, start time.Time) *Span {
	child := &Span{
		SpanID:       spanID,
		TraceID:      s.TraceID,
		ParentSpanID: s.SpanID,
		Op:           description,
		Description:  description,
		StartTime:    start,
		Tags:         map[string]string{},
		Data:         map[string]any{},
		root:         s.root,
	}

	if s.root != nil {
		s.root.recordSpan(child)
	}

	return child
}

// SetData attaches an arbitrary value to the span.
func (s *Span) SetData(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Data == nil {
		s.Data = map[string]any{}
	}
	s.Data[key] = value
}

// SetTag sets an indexed string tag on the span.
func (s *Span) SetTag(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Tags == nil {
		s.Tags = map[string]string{}
	}
	s.Tags[key] = value
}

// SetHTTPStatus records an HTTP response code as both the http.status_code
// tag and the span's semantic status.
func (s *Span) SetHTTPStatus(code int) {
	s.SetTag("http.status_code", strconv.Itoa(code))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.Status = SpanStatusFromHTTPCode(code)
}

// Finish seals the span with an explicit end time. Finishing is terminal;
// repeated calls are no-ops.
func (s *Span) Finish(end time.Time) {
	s.finish(end)
}

func (s *Span) finish(end time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished {
		return false
	}
	s.finished = true
	s.EndTime = end

	return true
}

// Finished reports whether the span has been sealed.
func (s *Span) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}

// SetName overwrites the transaction's trace-wide name.
func (t *Transaction) SetName(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Name = name
}

// SetContext attaches a named context block to the transaction.
func (t *Transaction) SetContext(key string, values map[string]any) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.Contexts == nil {
		t.Contexts = map[string]map[string]any{}
	}
	t.Contexts[key] = values
}

// Finish seals the transaction and hands it to the client for recording.
func (t *Transaction) Finish(end time.Time) {
	if !t.Span.finish(end) {
		return
	}

	if t.client != nil {
		t.client.CaptureTransaction(t)
	}
}

// Spans returns the descendant spans recorded so far.
func (t *Transaction) Spans() []*Span {
	t.spansMu.Lock()
	defer t.spansMu.Unlock()

	out := make([]*Span, len(t.spans))
	copy(out, t.spans)
	return out
}

func (t *Transaction) recordSpan(s *Span) {
	t.spansMu.Lock()
	defer t.spansMu.Unlock()
	t.spans = append(t.spans, s)
}
