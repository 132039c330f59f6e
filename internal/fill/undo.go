package fill

import (
	"container/list"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/applyfill/internal/dom"
	"github.com/spigell/applyfill/internal/fields"
)

// DefaultUndoCap bounds the ledger.
const DefaultUndoCap = 100

// Entry is one reversible write.
type Entry struct {
	Element   dom.Element
	Field     fields.Field
	Original  string
	New       string
	Timestamp time.Time
}

// Ledger keeps at most one entry per element, newest last. Recording past the
// capacity evicts the oldest entry. It is safe for concurrent use.
type Ledger struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	index    map[dom.Handle]*list.Element

	writer *Writer
	logger *zap.Logger
	now    func() time.Time
}

// NewLedger builds a ledger restoring values through writer. A non-positive
// capacity selects DefaultUndoCap.
func NewLedger(writer *Writer, capacity int, logger *zap.Logger) *Ledger {
	if capacity <= 0 {
		capacity = DefaultUndoCap
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if writer == nil {
		writer = NewWriter(logger)
	}
	return &Ledger{
		capacity: capacity,
		order:    list.New(),
		index:    make(map[dom.Handle]*list.Element),
		writer:   writer,
		logger:   logger,
		now:      time.Now,
	}
}

// Record stores the value a field held before a write. A second record for the
// same element replaces the first one, so only the latest original survives.
func (l *Ledger) Record(f fields.Field, original, value string) {
	if f.Element == nil {
		return
	}
	h := f.Element.Handle()

	l.mu.Lock()
	defer l.mu.Unlock()

	if old, ok := l.index[h]; ok {
		l.order.Remove(old)
	}
	l.index[h] = l.order.PushBack(Entry{
		Element:   f.Element,
		Field:     f,
		Original:  original,
		New:       value,
		Timestamp: l.now(),
	})

	for l.order.Len() > l.capacity {
		oldest := l.order.Front()
		e := l.order.Remove(oldest).(Entry)
		delete(l.index, e.Element.Handle())
		l.logger.Debug("undo entry evicted", zap.String("field", e.Field.Describe()))
	}
}

// Has reports whether el has a live entry.
func (l *Ledger) Has(el dom.Element) bool {
	if el == nil {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.index[el.Handle()]
	return ok
}

func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.order.Len()
}

// Entries returns a copy of the ledger, oldest first.
func (l *Ledger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Entry, 0, l.order.Len())
	for e := l.order.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(Entry))
	}
	return out
}

// Undo restores the original value of el. It reports false without error when
// el has no entry. The entry is removed only when the restore succeeds.
func (l *Ledger) Undo(ctx context.Context, el dom.Element) (bool, error) {
	if el == nil {
		return false, nil
	}
	h := el.Handle()

	l.mu.Lock()
	item, ok := l.index[h]
	l.mu.Unlock()
	if !ok {
		return false, nil
	}
	entry := item.Value.(Entry)

	if err := l.writer.Restore(ctx, entry.Field, entry.Original); err != nil {
		return false, fmt.Errorf("undoing %s: %w", entry.Field.Describe(), err)
	}

	l.mu.Lock()
	// The entry may have been replaced while restoring.
	if cur, ok := l.index[h]; ok && cur == item {
		l.order.Remove(item)
		delete(l.index, h)
	}
	l.mu.Unlock()

	return true, nil
}

// UndoAll restores every entry, newest first, and empties the ledger whatever
// the outcome. It returns the number of restored fields and the joined errors
// of the failed ones.
func (l *Ledger) UndoAll(ctx context.Context) (int, error) {
	l.mu.Lock()
	entries := make([]Entry, 0, l.order.Len())
	for e := l.order.Back(); e != nil; e = e.Prev() {
		entries = append(entries, e.Value.(Entry))
	}
	l.order.Init()
	l.index = make(map[dom.Handle]*list.Element)
	l.mu.Unlock()

	var (
		restored int
		errs     []error
	)
	for _, e := range entries {
		if err := l.writer.Restore(ctx, e.Field, e.Original); err != nil {
			l.logger.Warn("undo failed", zap.String("field", e.Field.Describe()), zap.Error(err))
			errs = append(errs, fmt.Errorf("undoing %s: %w", e.Field.Describe(), err))
			continue
		}
		restored++
	}
	return restored, errors.Join(errs...)
}
