package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ksaito/kotoba/internal/card"
	"github.com/ksaito/kotoba/internal/errors"
)

// Save commits the record identified by key to the durable store. A pending
// edit buffer whose key matches is merged into the persisted projection and,
// on success, into the record itself. The vocabulary put must resolve before
// the calendar count is taken so the count reflects the newly written row.
//
// Failure post-conditions: if the vocabulary put fails, in-memory state is
// left unchanged and no retry is attempted. If the calendar step fails after
// the vocabulary put succeeded, the record is durably saved and marked so;
// the date is queued for aggregate repair.
func (e *Engine) Save(ctx context.Context, key string) error {
	e.tryRepairs(ctx)

	if err := e.acquire(key); err != nil {
		return err
	}
	defer e.release(key)

	e.mu.Lock()
	rec, ok := e.recs[key]
	if !ok {
		e.mu.Unlock()
		return errors.NewNotFound(key)
	}
	row := rec.ToRow()
	if e.edit != nil && e.edit.key == key {
		row.Input = e.edit.input
		row.Output = e.edit.output
	}
	e.mu.Unlock()

	if err := e.store.PutRecord(ctx, row); err != nil {
		e.log.Warn("vocabulary put failed", zap.String("key", key), zap.Error(err))
		e.notifier.Failure("Vocabulary Addition Error",
			fmt.Sprintf("Failed to add vocabulary: %v", err))
		return err
	}

	// The row is durable from here on: commit the in-memory transition even
	// if the aggregate step below fails.
	e.mu.Lock()
	if rec, ok := e.recs[key]; ok {
		rec.Input = row.Input
		rec.Output = row.Output
		rec.Saved = true
		rec.Editing = false
	}
	if e.edit != nil && e.edit.key == key {
		e.edit = nil
	}
	e.mu.Unlock()

	if err := e.recountDate(ctx, card.DateOf(key)); err != nil {
		e.notifier.Failure("Vocabulary Addition Error",
			fmt.Sprintf("Failed to update calendar: %v", err))
		return err
	}

	e.notifier.Success("Translation Saved", "The translation has been saved.")
	return nil
}

// recountDate recomputes the calendar aggregate for date from the vocabulary
// table and upserts it (or deletes the row when the count is zero). On
// failure the date is queued for repair so the drift is bounded rather than
// permanent.
func (e *Engine) recountDate(ctx context.Context, date string) error {
	if err := e.repairDate(ctx, date); err != nil {
		e.queueRepair(date, err)
		return err
	}
	return nil
}
