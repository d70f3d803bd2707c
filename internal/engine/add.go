package engine

import (
	"github.com/oklog/ulid/v2"

	"github.com/ksaito/kotoba/internal/card"
)

// AddDraft promotes a translation to the in-memory history as an unsaved
// draft at the head of the list. No I/O, no failure mode. Callers are
// trusted to supply non-empty text; the engine does not reject empty input
// to keep this path synchronous.
func (e *Engine) AddDraft(input, output string, sourceLang, targetLang card.LanguageCode) card.Record {
	e.mu.Lock()
	defer e.mu.Unlock()

	key := e.newKeyLocked()
	rec := &card.Record{
		Input:      input,
		Output:     output,
		SourceLang: sourceLang,
		TargetLang: targetLang,
		Timestamp:  key,
		Saved:      false,
		Editing:    false,
		Visible:    true,
	}
	e.recs[key] = rec
	e.order = append([]string{key}, e.order...)

	return *rec
}

// newKeyLocked generates a fresh timestamp key. Second resolution; when two
// drafts land in the same second the key gains a ULID suffix, which keeps
// lexicographic ordering and date-prefix matching intact.
// Caller holds e.mu.
func (e *Engine) newKeyLocked() string {
	key := card.NewTimestamp(e.clock())
	if _, taken := e.recs[key]; !taken {
		return key
	}
	return key + " " + ulid.Make().String()
}

// ToggleVisible flips the display flag used to hide the translated half
// during self-study. Never persisted.
func (e *Engine) ToggleVisible(key string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if rec, ok := e.recs[key]; ok {
		rec.Visible = !rec.Visible
	}
}

// SetAllVisible sets the display flag on every record.
func (e *Engine) SetAllVisible(visible bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, rec := range e.recs {
		rec.Visible = visible
	}
}
