// Package editor owns the invoice being edited.
//
// A Session holds the single current record. Every operation goes through a pure handler from
// internal/domain/invoice, commits the resulting record, re-derives the totals and then notifies
// observers, in commit order, before the operation returns.
package editor

import (
	"context"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/garyjia/invoice-editor/internal/domain/entity"
	"github.com/garyjia/invoice-editor/internal/domain/event"
	"github.com/garyjia/invoice-editor/internal/domain/invoice"
	"github.com/garyjia/invoice-editor/internal/domain/totals"
	"github.com/garyjia/invoice-editor/internal/snapshot"
)

// ResetPrompt is shown by confirmation gates before the record is reset.
const ResetPrompt = "Reset the invoice to the default? All changes will be lost."

// Observer is notified after every committed change with the full current record.
// Observers run synchronously, in commit order, on the goroutine that committed.
// They may read the session. Calling SetField, UpdateLine, AddLine, RemoveLine,
// Replace, Reset or Import from OnChange deadlocks: that commit waits for the
// notification it is part of. Hand such follow-up edits to another goroutine.
type Observer interface {
	OnChange(ev *event.Event, inv entity.Invoice, t totals.Totals)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ev *event.Event, inv entity.Invoice, t totals.Totals)

// OnChange calls f.
func (f ObserverFunc) OnChange(ev *event.Event, inv entity.Invoice, t totals.Totals) {
	f(ev, inv, t)
}

// ConfirmFunc asks the user a yes/no question. Only true lets a destructive action proceed.
type ConfirmFunc func(prompt string) bool

// Session is the record store of one editing session. It is safe for concurrent use;
// commits are serialized and the last one wins.
type Session struct {
	mu        sync.RWMutex
	invoice   entity.Invoice
	totals    totals.Totals
	observers map[int]Observer
	nextID    int

	// Commits take a ticket under mu; notifications run in ticket order without holding mu,
	// so observers may read the session.
	committed  uint64
	notified   uint64
	notifyMu   sync.Mutex
	notifyCond *sync.Cond

	logger *zap.Logger
}

// NewSession starts a session from initial, or from the default invoice when initial is nil.
func NewSession(initial *entity.Invoice, logger *zap.Logger) *Session {
	inv := entity.DefaultInvoice()
	if initial != nil {
		inv = initial.Clone()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{
		invoice:   inv,
		totals:    totals.Derive(inv),
		observers: make(map[int]Observer),
		logger:    logger,
	}
	s.notifyCond = sync.NewCond(&s.notifyMu)
	return s
}

// Subscribe registers o and returns a function that removes it.
func (s *Session) Subscribe(o Observer) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subscribeLocked(o)
}

// Watch registers o and returns the state current at that moment. o is notified of
// every commit after the returned state and of none already contained in it.
func (s *Session) Watch(o Observer) (entity.Invoice, totals.Totals, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.invoice.Clone(), s.totals, s.subscribeLocked(o)
}

func (s *Session) subscribeLocked(o Observer) func() {
	id := s.nextID
	s.nextID++
	s.observers[id] = o

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// Invoice returns a copy of the current record.
func (s *Session) Invoice() entity.Invoice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.invoice.Clone()
}

// Totals returns the figures derived from the current record.
func (s *Session) Totals() totals.Totals {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totals
}

// State returns the record together with its totals, read atomically.
func (s *Session) State() (entity.Invoice, totals.Totals) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.invoice.Clone(), s.totals
}

// SetField edits one record field. Reports false when the edit was ignored.
func (s *Session) SetField(name string, value interface{}) bool {
	return s.apply(event.NewFieldEvent(name), func(inv entity.Invoice) (entity.Invoice, bool) {
		return invoice.SetField(inv, name, value)
	})
}

// UpdateLine edits one field of the product line at index.
func (s *Session) UpdateLine(index int, field, value string) bool {
	return s.apply(event.NewLineEvent(event.TypeLineUpdated, index, field), func(inv entity.Invoice) (entity.Invoice, bool) {
		return invoice.UpdateLine(inv, index, field, value)
	})
}

// AddLine appends an empty product line and returns its index.
func (s *Session) AddLine() int {
	index := -1
	ev := event.NewEvent(event.TypeLineAdded)
	s.apply(ev, func(inv entity.Invoice) (entity.Invoice, bool) {
		out := invoice.AddLine(inv)
		index = len(out.ProductLines) - 1
		ev.Index = index
		return out, true
	})
	return index
}

// RemoveLine deletes the product line at index. Out-of-range indexes are ignored.
func (s *Session) RemoveLine(index int) bool {
	return s.apply(event.NewLineEvent(event.TypeLineRemoved, index, ""), func(inv entity.Invoice) (entity.Invoice, bool) {
		return invoice.RemoveLine(inv, index)
	})
}

// Replace swaps in a whole new record.
func (s *Session) Replace(inv entity.Invoice) {
	s.replace(event.NewEvent(event.TypeReplaced), inv)
}

// Reset restores the default invoice once confirm agrees. Declining changes nothing.
func (s *Session) Reset(confirm ConfirmFunc) bool {
	if confirm == nil || !confirm(ResetPrompt) {
		s.logger.Debug("Reset declined")
		return false
	}
	s.replace(event.NewEvent(event.TypeReset), entity.DefaultInvoice())
	s.logger.Info("Invoice reset to default")
	return true
}

// Export serializes the current record and names the file after its title.
func (s *Session) Export() (data []byte, filename string, err error) {
	inv := s.Invoice()
	data, err = snapshot.Encode(inv)
	if err != nil {
		return nil, "", err
	}
	return data, snapshot.FileName(inv.Title), nil
}

// Import reads a snapshot from r and, if it is valid, replaces the record with it.
// On any error the record is left exactly as it was.
func (s *Session) Import(ctx context.Context, r io.Reader) (entity.Invoice, error) {
	inv, err := snapshot.Decode(r)
	if err != nil {
		s.logger.Error("Failed to import snapshot", zap.Error(err))
		return entity.Invoice{}, fmt.Errorf("import failed: %w", err)
	}

	// The upload may have outlived its caller.
	if err := ctx.Err(); err != nil {
		s.logger.Warn("Snapshot import cancelled", zap.Error(err))
		return entity.Invoice{}, fmt.Errorf("import cancelled: %w", err)
	}

	s.replace(event.NewEvent(event.TypeImported), inv)
	s.logger.Info("Snapshot imported",
		zap.String("title", inv.Title),
		zap.Int("product_lines", len(inv.ProductLines)))
	return inv.Clone(), nil
}

func (s *Session) replace(ev *event.Event, inv entity.Invoice) {
	next := inv.Clone()
	s.apply(ev, func(entity.Invoice) (entity.Invoice, bool) {
		return next, true
	})
}

// apply commits the record produced by fn, re-derives the totals and notifies observers.
func (s *Session) apply(ev *event.Event, fn func(entity.Invoice) (entity.Invoice, bool)) bool {
	s.mu.Lock()
	next, ok := fn(s.invoice)
	if !ok {
		s.mu.Unlock()
		s.logger.Debug("Edit ignored",
			zap.String("type", ev.Type.String()),
			zap.String("field", ev.Field),
			zap.Int("index", ev.Index))
		return false
	}

	s.invoice = next
	s.totals = totals.Derive(next)
	current, derived := next.Clone(), s.totals
	observers := make([]Observer, 0, len(s.observers))
	for id := 0; id < s.nextID; id++ {
		if o, ok := s.observers[id]; ok {
			observers = append(observers, o)
		}
	}

	ticket := s.committed
	s.committed++
	s.mu.Unlock()

	s.notify(ticket, observers, ev, current, derived)
	return true
}

func (s *Session) notify(ticket uint64, observers []Observer, ev *event.Event, inv entity.Invoice, t totals.Totals) {
	s.notifyMu.Lock()
	for s.notified != ticket {
		s.notifyCond.Wait()
	}
	s.notifyMu.Unlock()

	defer func() {
		s.notifyMu.Lock()
		s.notified++
		s.notifyCond.Broadcast()
		s.notifyMu.Unlock()
	}()

	for _, o := range observers {
		o.OnChange(ev, inv.Clone(), t)
	}
}
