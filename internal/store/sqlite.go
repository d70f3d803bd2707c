package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/ksaito/kotoba/internal/card"
	"github.com/ksaito/kotoba/internal/errors"
)

// SQLiteStore implements Store on an embedded SQLite database opened by
// the db package.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a store backed by the given database handle.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// PutRecord upserts a vocabulary row keyed by timestamp.
func (s *SQLiteStore) PutRecord(ctx context.Context, row card.Row) error {
	query := `
		INSERT INTO vocabulary (timestamp, input, output, source_lang, target_lang)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(timestamp) DO UPDATE SET
			input = excluded.input,
			output = excluded.output,
			source_lang = excluded.source_lang,
			target_lang = excluded.target_lang
	`
	_, err := s.db.ExecContext(ctx, query,
		row.Timestamp, row.Input, row.Output, string(row.SourceLang), string(row.TargetLang))
	if err != nil {
		return mapSQLiteError(err, row.Timestamp)
	}
	return nil
}

// GetRecord fetches a vocabulary row by timestamp key.
func (s *SQLiteStore) GetRecord(ctx context.Context, timestamp string) (*card.Row, error) {
	query := `
		SELECT timestamp, input, output, source_lang, target_lang
		FROM vocabulary
		WHERE timestamp = ?
	`
	row := s.db.QueryRowContext(ctx, query, timestamp)
	r, err := scanRow(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(timestamp)
	}
	if err != nil {
		return nil, mapSQLiteError(err, timestamp)
	}
	return r, nil
}

// DeleteRecord removes a vocabulary row. Missing rows are not an error.
func (s *SQLiteStore) DeleteRecord(ctx context.Context, timestamp string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM vocabulary WHERE timestamp = ?", timestamp)
	if err != nil {
		return mapSQLiteError(err, timestamp)
	}
	return nil
}

// BulkAddRecords inserts rows inside a single transaction so the batch is
// all-or-nothing. Duplicate timestamps fail the whole batch.
func (s *SQLiteStore) BulkAddRecords(ctx context.Context, rows []card.Row) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return mapSQLiteError(err, "")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO vocabulary (timestamp, input, output, source_lang, target_lang)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return mapSQLiteError(err, "")
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx,
			row.Timestamp, row.Input, row.Output, string(row.SourceLang), string(row.TargetLang)); err != nil {
			return mapSQLiteError(err, row.Timestamp)
		}
	}

	if err := tx.Commit(); err != nil {
		return mapSQLiteError(err, "")
	}
	return nil
}

// QueryRecordsByPrefix returns matching rows newest first.
func (s *SQLiteStore) QueryRecordsByPrefix(ctx context.Context, prefix string) ([]card.Row, error) {
	query := `
		SELECT timestamp, input, output, source_lang, target_lang
		FROM vocabulary
		WHERE timestamp LIKE ? ESCAPE '\'
		ORDER BY timestamp DESC
	`
	rows, err := s.db.QueryContext(ctx, query, likePrefix(prefix))
	if err != nil {
		return nil, mapSQLiteError(err, prefix)
	}
	defer rows.Close()

	var result []card.Row
	for rows.Next() {
		var r card.Row
		var src, tgt string
		if err := rows.Scan(&r.Timestamp, &r.Input, &r.Output, &src, &tgt); err != nil {
			return nil, errors.NewInternal(err)
		}
		r.SourceLang = card.LanguageCode(src)
		r.TargetLang = card.LanguageCode(tgt)
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, mapSQLiteError(err, prefix)
	}
	return result, nil
}

// CountRecordsByPrefix counts rows whose timestamp starts with prefix.
func (s *SQLiteStore) CountRecordsByPrefix(ctx context.Context, prefix string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM vocabulary WHERE timestamp LIKE ? ESCAPE '\'`
	if err := s.db.QueryRowContext(ctx, query, likePrefix(prefix)).Scan(&count); err != nil {
		return 0, mapSQLiteError(err, prefix)
	}
	return count, nil
}

// DeleteRecordsByPrefix removes rows whose timestamp starts with prefix.
func (s *SQLiteStore) DeleteRecordsByPrefix(ctx context.Context, prefix string) (int, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM vocabulary WHERE timestamp LIKE ? ESCAPE '\'`, likePrefix(prefix))
	if err != nil {
		return 0, mapSQLiteError(err, prefix)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return int(affected), nil
}

// PutDayCount upserts a calendar row keyed by date.
func (s *SQLiteStore) PutDayCount(ctx context.Context, dc card.DayCount) error {
	query := `
		INSERT INTO calendar (date, count)
		VALUES (?, ?)
		ON CONFLICT(date) DO UPDATE SET count = excluded.count
	`
	_, err := s.db.ExecContext(ctx, query, dc.Date, dc.Count)
	if err != nil {
		return mapSQLiteError(err, dc.Date)
	}
	return nil
}

// GetDayCount returns the calendar row for date, or nil if absent.
// Absence is a normal outcome here, not an error: the engine distinguishes
// "no aggregate yet" from store failure.
func (s *SQLiteStore) GetDayCount(ctx context.Context, date string) (*card.DayCount, error) {
	var dc card.DayCount
	err := s.db.QueryRowContext(ctx,
		"SELECT date, count FROM calendar WHERE date = ?", date).Scan(&dc.Date, &dc.Count)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, mapSQLiteError(err, date)
	}
	return &dc, nil
}

// DeleteDayCount removes the calendar row for date.
func (s *SQLiteStore) DeleteDayCount(ctx context.Context, date string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM calendar WHERE date = ?", date)
	if err != nil {
		return mapSQLiteError(err, date)
	}
	return nil
}

// QueryDayCounts returns all calendar rows, newest date first.
func (s *SQLiteStore) QueryDayCounts(ctx context.Context) ([]card.DayCount, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT date, count FROM calendar ORDER BY date DESC")
	if err != nil {
		return nil, mapSQLiteError(err, "")
	}
	defer rows.Close()

	var result []card.DayCount
	for rows.Next() {
		var dc card.DayCount
		if err := rows.Scan(&dc.Date, &dc.Count); err != nil {
			return nil, errors.NewInternal(err)
		}
		result = append(result, dc)
	}
	if err := rows.Err(); err != nil {
		return nil, mapSQLiteError(err, "")
	}
	return result, nil
}

// DeleteDayCountsByPrefix removes calendar rows whose date starts with prefix.
func (s *SQLiteStore) DeleteDayCountsByPrefix(ctx context.Context, prefix string) (int, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM calendar WHERE date LIKE ? ESCAPE '\'`, likePrefix(prefix))
	if err != nil {
		return 0, mapSQLiteError(err, prefix)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return int(affected), nil
}

// scanRow scans a single vocabulary row.
func scanRow(row *sql.Row) (*card.Row, error) {
	var r card.Row
	var src, tgt string
	if err := row.Scan(&r.Timestamp, &r.Input, &r.Output, &src, &tgt); err != nil {
		return nil, err
	}
	r.SourceLang = card.LanguageCode(src)
	r.TargetLang = card.LanguageCode(tgt)
	return &r, nil
}

// likePrefix escapes LIKE metacharacters and appends the wildcard so a
// timestamp prefix match behaves like startsWith.
func likePrefix(prefix string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(prefix)
	return escaped + "%"
}

// mapSQLiteError converts driver errors into the store error taxonomy.
func mapSQLiteError(err error, key string) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return errors.NewUniqueConstraint(key)
	case strings.Contains(msg, "database or disk is full"):
		return errors.NewQuotaExceeded(err)
	case strings.Contains(msg, "database is locked"), strings.Contains(msg, "unable to open"):
		return errors.NewStoreUnavailable(err)
	default:
		return errors.NewInternal(err)
	}
}
