package engine

import (
	"context"

	"github.com/ksaito/kotoba/internal/card"
)

// LoadByDatePrefix replaces the in-memory list wholesale with the stored
// rows whose timestamp starts with prefix, newest first. This is the one
// read path that bypasses the optimistic-write model: a full
// resynchronization from the durable source of truth. Any active edit
// session is dropped. Loaded records start saved, not editing, and visible.
func (e *Engine) LoadByDatePrefix(ctx context.Context, prefix string) ([]card.Record, error) {
	rows, err := e.store.QueryRecordsByPrefix(ctx, prefix)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.edit = nil
	e.order = e.order[:0]
	e.recs = make(map[string]*card.Record, len(rows))

	out := make([]card.Record, 0, len(rows))
	for _, row := range rows {
		rec := card.FromRow(row)
		e.recs[rec.Timestamp] = &rec
		e.order = append(e.order, rec.Timestamp)
		out = append(out, rec)
	}
	return out, nil
}

// DayCounts returns all calendar aggregate rows, newest date first.
func (e *Engine) DayCounts(ctx context.Context) ([]card.DayCount, error) {
	return e.store.QueryDayCounts(ctx)
}
