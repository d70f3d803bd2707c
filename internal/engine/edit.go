package engine

import (
	"github.com/ksaito/kotoba/internal/errors"
)

// BeginEdit opens an edit session on the record identified by key.
// At most one record may be in edit mode system-wide: an active session on
// a different record is implicitly cancelled first. The record's saved flag
// is cleared as a "needs re-save" signal even though the persisted row is
// untouched until commit; the pre-edit state is snapshotted so cancel can
// restore it.
func (e *Engine) BeginEdit(key string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	rec, ok := e.recs[key]
	if !ok {
		return errors.NewNotFound(key)
	}

	if e.edit != nil {
		if e.edit.key == key {
			return nil
		}
		e.cancelEditLocked()
	}

	e.edit = &editSession{
		key:      key,
		snapshot: *rec,
		input:    rec.Input,
		output:   rec.Output,
	}
	rec.Editing = true
	rec.Saved = false

	return nil
}

// UpdateEdit mutates the pending edit buffer. The list item itself is not
// touched until the edit is committed by Save. Nil fields are left as-is.
func (e *Engine) UpdateEdit(input, output *string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.edit == nil {
		return errors.NewInvalidRequest("no active edit session")
	}
	if input != nil {
		e.edit.input = *input
	}
	if output != nil {
		e.edit.output = *output
	}
	return nil
}

// CancelEdit discards the edit buffer and restores the record to its
// pre-edit state, including the true persisted status that BeginEdit
// cleared. Idempotent: with no active session it is a no-op.
func (e *Engine) CancelEdit() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelEditLocked()
}

// cancelEditLocked restores the edited record from its snapshot and clears
// the session. Caller holds e.mu.
func (e *Engine) cancelEditLocked() {
	if e.edit == nil {
		return
	}
	if rec, ok := e.recs[e.edit.key]; ok {
		*rec = e.edit.snapshot
	}
	e.edit = nil
}
