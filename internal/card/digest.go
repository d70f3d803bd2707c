package card

import (
	"fmt"
	"strings"
)

// Digest renders records as a markdown vocabulary digest. Rows are emitted
// in the order given (the engine supplies reverse-chronological order).
func Digest(title string, rows []Row) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("# Vocabulary: %s\n\n", title))

	if len(rows) == 0 {
		b.WriteString("_No saved translations._\n")
		return b.String()
	}

	b.WriteString("| Time | Input | Output | Languages |\n")
	b.WriteString("|------|-------|--------|-----------|\n")
	for _, row := range rows {
		b.WriteString(fmt.Sprintf("| %s | %s | %s | %s → %s |\n",
			row.Timestamp,
			escapeCell(row.Input),
			escapeCell(row.Output),
			row.SourceLang, row.TargetLang,
		))
	}

	b.WriteString(fmt.Sprintf("\n%d entries\n", len(rows)))
	return b.String()
}

// escapeCell keeps user text from breaking the markdown table.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
