// Package store provides the durable persistence layer for vocabulary
// records and the derived calendar aggregate. The two tables are independent:
// no operation here spans both, and no cross-table transaction is offered.
// Keeping them consistent is the engine's job.
package store

import (
	"context"

	"github.com/ksaito/kotoba/internal/card"
)

// Store is the durable store contract consumed by the lifecycle engine.
// Every call may fail independently. Put operations are upserts; BulkAdd
// fails on a duplicate key.
type Store interface {
	// PutRecord writes a vocabulary row, overwriting any row with the same
	// timestamp key.
	PutRecord(ctx context.Context, row card.Row) error

	// GetRecord returns the vocabulary row for the given timestamp key.
	GetRecord(ctx context.Context, timestamp string) (*card.Row, error)

	// DeleteRecord removes the vocabulary row for the given timestamp key.
	// Deleting a missing row is not an error.
	DeleteRecord(ctx context.Context, timestamp string) error

	// BulkAddRecords inserts rows in one statement batch. Duplicate keys
	// fail the whole batch.
	BulkAddRecords(ctx context.Context, rows []card.Row) error

	// QueryRecordsByPrefix returns vocabulary rows whose timestamp starts
	// with prefix, newest first.
	QueryRecordsByPrefix(ctx context.Context, prefix string) ([]card.Row, error)

	// CountRecordsByPrefix counts vocabulary rows whose timestamp starts
	// with prefix.
	CountRecordsByPrefix(ctx context.Context, prefix string) (int, error)

	// DeleteRecordsByPrefix removes vocabulary rows whose timestamp starts
	// with prefix and returns the number removed.
	DeleteRecordsByPrefix(ctx context.Context, prefix string) (int, error)

	// PutDayCount writes a calendar row, overwriting any row for the same date.
	PutDayCount(ctx context.Context, dc card.DayCount) error

	// GetDayCount returns the calendar row for date, or nil if absent.
	GetDayCount(ctx context.Context, date string) (*card.DayCount, error)

	// DeleteDayCount removes the calendar row for date.
	// Deleting a missing row is not an error.
	DeleteDayCount(ctx context.Context, date string) error

	// QueryDayCounts returns all calendar rows, newest date first.
	QueryDayCounts(ctx context.Context) ([]card.DayCount, error)

	// DeleteDayCountsByPrefix removes calendar rows whose date starts with
	// prefix and returns the number removed.
	DeleteDayCountsByPrefix(ctx context.Context, prefix string) (int, error)
}
