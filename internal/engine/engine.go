// Package engine implements the flashcard lifecycle: it owns the in-memory
// ordered list of translation records and the single edit session, and it
// keeps the durable vocabulary table and the derived calendar aggregate
// consistent through save, delete, and load operations.
package engine

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ksaito/kotoba/internal/card"
	"github.com/ksaito/kotoba/internal/errors"
	"github.com/ksaito/kotoba/internal/store"
)

// Notifier receives user-facing success/failure notifications.
// Fire-and-forget: the engine never consumes a return value.
type Notifier interface {
	Success(title, message string)
	Failure(title, message string)
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) Success(string, string) {}
func (NopNotifier) Failure(string, string) {}

// editSession is the single in-flight editable copy of one record.
// snapshot holds the record exactly as it was before the edit began, so
// cancel can restore the true persisted status that BeginEdit cleared.
type editSession struct {
	key      string
	snapshot card.Record
	input    string
	output   string
}

// Engine is the stateful flashcard lifecycle core. It is the only writer to
// the durable store. The mutex guards the in-memory structures only; store
// I/O runs outside the lock, and same-key races are prevented by a per-key
// in-flight token instead of global serialization.
type Engine struct {
	store    store.Store
	log      *zap.Logger
	notifier Notifier
	clock    func() time.Time

	mu       sync.Mutex
	order    []string // timestamp keys, newest first
	recs     map[string]*card.Record
	edit     *editSession
	inflight map[string]struct{}
	repairs  map[string]struct{} // dates with a possibly stale aggregate
}

// New creates an engine on top of the given store. logger and notifier may
// be nil.
func New(st store.Store, logger *zap.Logger, notifier Notifier) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Engine{
		store:    st,
		log:      logger,
		notifier: notifier,
		clock:    time.Now,
		recs:     make(map[string]*card.Record),
		inflight: make(map[string]struct{}),
		repairs:  make(map[string]struct{}),
	}
}

// Cards returns a snapshot of the in-memory list, newest first.
func (e *Engine) Cards() []card.Record {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]card.Record, 0, len(e.order))
	for _, key := range e.order {
		out = append(out, *e.recs[key])
	}
	return out
}

// Card returns the in-memory record for key, or nil.
func (e *Engine) Card(key string) *card.Record {
	e.mu.Lock()
	defer e.mu.Unlock()

	rec, ok := e.recs[key]
	if !ok {
		return nil
	}
	c := *rec
	return &c
}

// EditingKey returns the key of the record currently in edit mode, or "".
func (e *Engine) EditingKey() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.edit == nil {
		return ""
	}
	return e.edit.key
}

// acquire claims the per-key in-flight token. A second mutating operation
// on the same record while one is still resolving fails fast.
func (e *Engine) acquire(key string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, busy := e.inflight[key]; busy {
		return errors.NewConflict(key)
	}
	e.inflight[key] = struct{}{}
	return nil
}

// release returns the per-key token.
func (e *Engine) release(key string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.inflight, key)
}

// removeLocked drops key from the ordered list and the index.
// Caller holds e.mu.
func (e *Engine) removeLocked(key string) {
	delete(e.recs, key)
	for i, k := range e.order {
		if k == key {
			e.order = append(e.order[:i], e.order[i+1:]...)
			return
		}
	}
}
