package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ksaito/kotoba/internal/card"
	"github.com/ksaito/kotoba/internal/errors"
)

// Delete removes the record identified by key. The in-memory removal is
// optimistic and unconditional: if the subsequent store delete fails, the
// card is already gone from the list and only a failure notification
// surfaces the stale durable row. An active edit on this record is
// implicitly cancelled; the persisted status snapshotted at edit start
// decides whether store I/O is needed at all.
func (e *Engine) Delete(ctx context.Context, key string) error {
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

	wasSaved := rec.Saved
	if e.edit != nil && e.edit.key == key {
		// BeginEdit cleared the saved flag; the snapshot has the truth.
		wasSaved = e.edit.snapshot.Saved
		e.edit = nil
	}
	e.removeLocked(key)
	e.mu.Unlock()

	if !wasSaved {
		e.notifier.Success("Translation Deleted", "The translation has been removed.")
		return nil
	}

	if err := e.store.DeleteRecord(ctx, key); err != nil {
		e.log.Warn("vocabulary delete failed", zap.String("key", key), zap.Error(err))
		e.notifier.Failure("Deletion Error",
			fmt.Sprintf("Failed to delete translation: %v", err))
		return err
	}

	if err := e.decrementDate(ctx, card.DateOf(key)); err != nil {
		e.notifier.Failure("Deletion Error",
			fmt.Sprintf("Failed to update calendar: %v", err))
		return err
	}

	e.notifier.Success("Translation Deleted", "The translation has been removed from database.")
	return nil
}

// decrementDate decrements the calendar aggregate for date, deleting the row
// outright when the count would reach zero. A missing aggregate is left
// missing. Failures queue the date for repair.
func (e *Engine) decrementDate(ctx context.Context, date string) error {
	dc, err := e.store.GetDayCount(ctx, date)
	if err != nil {
		e.queueRepair(date, err)
		return err
	}
	if dc == nil {
		return nil
	}

	if dc.Count > 1 {
		if err := e.store.PutDayCount(ctx, card.DayCount{Date: date, Count: dc.Count - 1}); err != nil {
			e.queueRepair(date, err)
			return err
		}
		return nil
	}

	// Never leave a zero-count row.
	if err := e.store.DeleteDayCount(ctx, date); err != nil {
		e.queueRepair(date, err)
		return err
	}
	return nil
}

// DeleteAllForDatePrefix removes every vocabulary row whose timestamp starts
// with prefix, then every calendar row whose date starts with prefix. The
// in-memory list is not touched; callers observe the change on their next
// load. Returns the number of vocabulary rows removed.
func (e *Engine) DeleteAllForDatePrefix(ctx context.Context, prefix string) (int, error) {
	deleted, err := e.store.DeleteRecordsByPrefix(ctx, prefix)
	if err != nil {
		e.log.Warn("bulk vocabulary delete failed", zap.String("prefix", prefix), zap.Error(err))
		e.notifier.Failure("Deletion Error",
			fmt.Sprintf("Failed to delete all translations: %v", err))
		return 0, err
	}

	if _, err := e.store.DeleteDayCountsByPrefix(ctx, prefix); err != nil {
		e.log.Warn("bulk calendar delete failed", zap.String("prefix", prefix), zap.Error(err))
		e.notifier.Failure("Deletion Error",
			fmt.Sprintf("Failed to delete all translations: %v", err))
		return deleted, err
	}

	e.notifier.Success("All Translations Deleted", "All translations have been removed from database.")
	return deleted, nil
}
