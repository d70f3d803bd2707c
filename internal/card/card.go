package card

// LanguageCode identifies a supported language.
type LanguageCode string

const (
	LangEnglish  LanguageCode = "en"
	LangJapanese LanguageCode = "ja"
)

// Languages maps each supported code to its display name.
var Languages = map[LanguageCode]string{
	LangEnglish:  "English",
	LangJapanese: "Japanese",
}

// Valid reports whether the code is one of the supported languages.
func (l LanguageCode) Valid() bool {
	_, ok := Languages[l]
	return ok
}

// Record represents one translation episode held by the lifecycle engine.
// Timestamp doubles as the unique identifier and the persistence key; it is
// immutable once assigned. Editing and Visible are UI-only and never persisted.
type Record struct {
	// Input is the source text
	Input string `json:"input"`

	// Output is the translated text
	Output string `json:"output"`

	// SourceLang is the language of Input
	SourceLang LanguageCode `json:"source_lang"`

	// TargetLang is the language of Output
	TargetLang LanguageCode `json:"target_lang"`

	// Timestamp is the creation moment, formatted as TimestampFormat.
	// Lexicographic order equals chronological order.
	Timestamp string `json:"timestamp"`

	// Saved reports whether a corresponding row exists in the vocabulary table
	Saved bool `json:"saved"`

	// Editing reports whether the record is being interactively edited
	Editing bool `json:"editing"`

	// Visible controls whether the translated half is shown during self-study
	Visible bool `json:"visible"`
}

// Row is the persisted projection of a Record: everything except the
// UI-only flags. This is the exact shape written to the vocabulary table.
type Row struct {
	Input      string       `json:"input"`
	Output     string       `json:"output"`
	SourceLang LanguageCode `json:"source_lang"`
	TargetLang LanguageCode `json:"target_lang"`
	Timestamp  string       `json:"timestamp"`
}

// ToRow strips the UI-only flags from a Record.
func (r *Record) ToRow() Row {
	return Row{
		Input:      r.Input,
		Output:     r.Output,
		SourceLang: r.SourceLang,
		TargetLang: r.TargetLang,
		Timestamp:  r.Timestamp,
	}
}

// FromRow rebuilds a Record from its persisted projection. Loaded records
// start saved, not editing, and visible.
func FromRow(row Row) Record {
	return Record{
		Input:      row.Input,
		Output:     row.Output,
		SourceLang: row.SourceLang,
		TargetLang: row.TargetLang,
		Timestamp:  row.Timestamp,
		Saved:      true,
		Editing:    false,
		Visible:    true,
	}
}

// DayCount is the calendar aggregate: the number of vocabulary rows whose
// timestamp starts with Date. Dates with zero rows have no DayCount row.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}
