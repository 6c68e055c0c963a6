package tracer

import "sync"

// RingRecorder keeps the most recent finished transactions in memory. It
// is the default recorder and the one the tests use.
type RingRecorder struct {
	mu       sync.Mutex
	capacity int
	txns     []*Transaction
}

// NewRingRecorder creates a recorder retaining at most capacity
// transactions.
func NewRingRecorder(capacity int) *RingRecorder {
	if capacity <= 0 {
		capacity = defaultBufferSize
	}
	return &RingRecorder{capacity: capacity}
}

// RecordTransaction implements TransactionRecorder.
func (r *RingRecorder) RecordTransaction(t *Transaction) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.txns = append(r.txns, t)
	if len(r.txns) > r.capacity {
		r.txns = r.txns[len(r.txns)-r.capacity:]
	}
}

// Transactions returns the recorded transactions, oldest first.
func (r *RingRecorder) Transactions() []*Transaction {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Transaction, len(r.txns))
	copy(out, r.txns)
	return out
}
