package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ksaito/kotoba/internal/card"
)

// SaveAll commits every currently-unsaved record in one bulk insert, then
// recomputes the calendar aggregate once per distinct affected date rather
// than once per record. A pending edit buffer matching one of the records is
// merged first. If the bulk insert fails, no record is marked saved; the
// store itself inserts the batch transactionally, so its observable effect
// matches the engine's bookkeeping.
func (e *Engine) SaveAll(ctx context.Context) error {
	e.tryRepairs(ctx)

	e.mu.Lock()
	var keys []string
	var rows []card.Row
	for _, key := range e.order {
		rec := e.recs[key]
		if rec.Saved {
			continue
		}
		row := rec.ToRow()
		if e.edit != nil && e.edit.key == key {
			row.Input = e.edit.input
			row.Output = e.edit.output
		}
		keys = append(keys, key)
		rows = append(rows, row)
	}
	e.mu.Unlock()

	if len(rows) == 0 {
		return nil
	}

	acquired := make([]string, 0, len(keys))
	for _, key := range keys {
		if err := e.acquire(key); err != nil {
			for _, k := range acquired {
				e.release(k)
			}
			return err
		}
		acquired = append(acquired, key)
	}
	defer func() {
		for _, k := range acquired {
			e.release(k)
		}
	}()

	if err := e.store.BulkAddRecords(ctx, rows); err != nil {
		e.log.Warn("bulk insert failed", zap.Int("rows", len(rows)), zap.Error(err))
		e.notifier.Failure("Save All Error",
			fmt.Sprintf("Failed to save all translations: %v", err))
		return err
	}

	e.mu.Lock()
	for i, key := range keys {
		if rec, ok := e.recs[key]; ok {
			rec.Input = rows[i].Input
			rec.Output = rows[i].Output
			rec.Saved = true
			rec.Editing = false
		}
		if e.edit != nil && e.edit.key == key {
			e.edit = nil
		}
	}
	e.mu.Unlock()

	// One recount per distinct date, preserving insertion order.
	var firstErr error
	seen := make(map[string]bool)
	for _, row := range rows {
		date := card.DateOf(row.Timestamp)
		if seen[date] {
			continue
		}
		seen[date] = true
		if err := e.recountDate(ctx, date); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		e.notifier.Failure("Save All Error",
			fmt.Sprintf("Failed to update calendar: %v", firstErr))
		return firstErr
	}

	e.notifier.Success("All Translations Saved", "All translations have been saved.")
	return nil
}
