package card

import (
	"strings"
	"time"
)

// Timestamp and date layouts. The date layout must be a prefix of the
// timestamp layout so that date-prefix range queries match record keys.
const (
	TimestampFormat = "2006-01-02 15:04:05"
	DateFormat      = "2006-01-02"
)

// NewTimestamp formats t as a record key. Second resolution; collisions
// within the same second are the engine's concern (it appends a ULID
// disambiguator when the key is already taken).
func NewTimestamp(t time.Time) string {
	return t.Format(TimestampFormat)
}

// DateOf truncates a record timestamp to its date portion. The result is a
// prefix of the timestamp, so counting rows for a date is a startsWith match.
func DateOf(timestamp string) string {
	if len(timestamp) < len(DateFormat) {
		return timestamp
	}
	return timestamp[:len(DateFormat)]
}

// DeriveDayCount counts the rows whose timestamp has date as a prefix.
func DeriveDayCount(date string, rows []Row) DayCount {
	count := 0
	for _, row := range rows {
		if strings.HasPrefix(row.Timestamp, date) {
			count++
		}
	}
	return DayCount{Date: date, Count: count}
}

// ValidDate reports whether s parses as a DateFormat date.
func ValidDate(s string) bool {
	_, err := time.Parse(DateFormat, s)
	return err == nil
}
