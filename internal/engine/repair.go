package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/ksaito/kotoba/internal/card"
)

// The calendar aggregate is maintained with non-atomic two-table writes, so
// a failed calendar step after a successful vocabulary write leaves drift.
// Instead of letting that drift persist, the affected date is queued here
// and recomputed before later mutating operations (and on demand).

// queueRepair marks a date as possibly stale.
func (e *Engine) queueRepair(date string, cause error) {
	e.mu.Lock()
	e.repairs[date] = struct{}{}
	e.mu.Unlock()

	e.log.Warn("calendar aggregate queued for repair",
		zap.String("date", date), zap.Error(cause))
}

// PendingRepairs returns the dates currently queued for aggregate repair.
func (e *Engine) PendingRepairs() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]string, 0, len(e.repairs))
	for date := range e.repairs {
		out = append(out, date)
	}
	return out
}

// RepairAggregates recomputes the calendar aggregate for every queued date
// from the vocabulary table. Dates that repair cleanly leave the queue;
// failures stay queued. Returns the first error encountered.
func (e *Engine) RepairAggregates(ctx context.Context) error {
	e.mu.Lock()
	dates := make([]string, 0, len(e.repairs))
	for date := range e.repairs {
		dates = append(dates, date)
	}
	e.mu.Unlock()

	var firstErr error
	for _, date := range dates {
		if err := e.repairDate(ctx, date); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		e.mu.Lock()
		delete(e.repairs, date)
		e.mu.Unlock()
		e.log.Info("calendar aggregate repaired", zap.String("date", date))
	}
	return firstErr
}

// tryRepairs drains the repair queue best-effort before a mutating
// operation. Errors stay queued and are not surfaced to the caller.
func (e *Engine) tryRepairs(ctx context.Context) {
	e.mu.Lock()
	pending := len(e.repairs)
	e.mu.Unlock()
	if pending == 0 {
		return
	}
	_ = e.RepairAggregates(ctx)
}

// repairDate recomputes one date's aggregate without touching the queue.
func (e *Engine) repairDate(ctx context.Context, date string) error {
	count, err := e.store.CountRecordsByPrefix(ctx, date)
	if err != nil {
		return err
	}
	if count == 0 {
		return e.store.DeleteDayCount(ctx, date)
	}
	return e.store.PutDayCount(ctx, card.DayCount{Date: date, Count: count})
}
