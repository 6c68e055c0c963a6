package tracer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultBufferSize = 1000

// TransactionRecorder receives finished transactions. Implementations own
// delivery; the client only buffers.
type TransactionRecorder interface {
	RecordTransaction(*Transaction)
}

// ClientOptions configures a Client.
type ClientOptions struct {
	// Environment and Release are stamped onto every transaction.
	Environment string
	Release     string

	// BufferSize bounds the number of finished transactions waiting for
	// the recorder. Zero selects the default.
	BufferSize int

	Logger   *zap.Logger
	Recorder TransactionRecorder
}

// Validate checks if the client configuration is valid.
func (o *ClientOptions) Validate() error {
	if o.BufferSize < 0 {
		return fmt.Errorf("buffer size must be greater or equal to 0, got %d", o.BufferSize)
	}
	return nil
}

type queueItem struct {
	txn     *Transaction
	flushed chan struct{}
}

// Client buffers finished transactions and drives them to the recorder on
// a background goroutine. When the buffer is full, transactions are
// dropped with a warning rather than blocking the caller.
type Client struct {
	opts     ClientOptions
	logger   *zap.Logger
	recorder TransactionRecorder

	queue     chan queueItem
	closeOnce sync.Once
	done      chan struct{}
}

// NewClient creates a client and starts its recording loop.
func NewClient(opts ClientOptions) (*Client, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid client options: %w", err)
	}

	if opts.BufferSize == 0 {
		opts.BufferSize = defaultBufferSize
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Recorder == nil {
		opts.Recorder = NewRingRecorder(opts.BufferSize)
	}

	c := &Client{
		opts:     opts,
		logger:   opts.Logger,
		recorder: opts.Recorder,
		queue:    make(chan queueItem, opts.BufferSize),
		done:     make(chan struct{}),
	}

	go c.loop()

	return c, nil
}

// Options returns the options the client was built with.
func (c *Client) Options() ClientOptions {
	return c.opts
}

// CaptureTransaction enqueues a finished transaction for recording.
func (c *Client) CaptureTransaction(t *Transaction) {
	if t == nil {
		return
	}

	t.Environment = c.opts.Environment
	t.Release = c.opts.Release

	select {
	case c.queue <- queueItem{txn: t}:
	default:
		c.logger.Warn("transaction buffer full, dropping transaction",
			zap.String("trace_id", t.TraceID),
			zap.String("span_id", t.SpanID),
			zap.String("name", t.Name),
		)
	}
}

// Flush blocks until every transaction enqueued before the call has been
// handed to the recorder, or the context is done. It reports whether the
// drain completed.
func (c *Client) Flush(ctx context.Context) bool {
	marker := queueItem{flushed: make(chan struct{})}

	select {
	case c.queue <- marker:
	case <-ctx.Done():
		return false
	case <-c.done:
		return true
	}

	select {
	case <-marker.flushed:
		return true
	case <-ctx.Done():
		return false
	}
}

// Close stops the recording loop. Transactions captured after Close are
// dropped silently.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

func (c *Client) loop() {
	for {
		select {
		case item := <-c.queue:
			if item.flushed != nil {
				close(item.flushed)
				continue
			}
			c.recorder.RecordTransaction(item.txn)
		case <-c.done:
			return
		}
	}
}

// Hub ties a tracing session to a client. A hub with no bound client means
// no session is active.
type Hub struct {
	mu     sync.RWMutex
	client *Client
}

// NewHub creates a hub bound to the given client. A nil client is valid
// and leaves the hub inactive until BindClient.
func NewHub(client *Client) *Hub {
	return &Hub{client: client}
}

// Client returns the bound client, or nil when no session is active.
func (h *Hub) Client() *Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.client
}

// BindClient attaches a client to the hub, activating the session.
func (h *Hub) BindClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.client = client
}

// TransactionOptions carries the explicit identity and continuation data a
// transaction starts with.
type TransactionOptions struct {
	Name          string
	SpanID        string
	ParentSpanID  string
	TraceID       string
	ParentSampled *bool
	Baggage       string
	StartTime     time.Time
}

// StartTransaction starts a trace root. Identity is taken verbatim from
// the options; a non-empty ParentSpanID links the transaction into a
// distributed trace started upstream.
func (h *Hub) StartTransaction(opts TransactionOptions) *Transaction {
	t := &Transaction{
		Span: Span{
			SpanID:       opts.SpanID,
			TraceID:      opts.TraceID,
			ParentSpanID: opts.ParentSpanID,
			Op:           opts.Name,
			Description:  opts.Name,
			StartTime:    opts.StartTime,
			Tags:         map[string]string{},
			Data:         map[string]any{},
		},
		Name:          opts.Name,
		Baggage:       opts.Baggage,
		ParentSampled: opts.ParentSampled,
		client:        h.Client(),
	}
	t.root = t

	return t
}
