package journal

import "sync"

// Ledger stores receipts in memory for quick inspection.
type Ledger struct {
	mu       sync.Mutex
	receipts []Receipt
}

// NewLedger creates an empty ledger optionally pre-sizing storage.
func NewLedger(capacity int) *Ledger {
	if capacity < 0 {
		capacity = 0
	}
	return &Ledger{receipts: make([]Receipt, 0, capacity)}
}

func (l *Ledger) Record(r Receipt) {
	l.mu.Lock()
	l.receipts = append(l.receipts, r)
	l.mu.Unlock()
}

// Snapshot returns a copy of the recorded receipts.
func (l *Ledger) Snapshot() []Receipt {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Receipt, len(l.receipts))
	copy(out, l.receipts)
	return out
}

// Last returns the most recent receipt of kind, if any.
func (l *Ledger) Last(kind string) (Receipt, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := len(l.receipts) - 1; i >= 0; i-- {
		if l.receipts[i].Kind == kind {
			return l.receipts[i], true
		}
	}
	return Receipt{}, false
}
