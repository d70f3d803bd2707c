package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ksaito/kotoba/internal/card"
	"github.com/ksaito/kotoba/internal/config"
	"github.com/ksaito/kotoba/internal/engine"
	"github.com/ksaito/kotoba/internal/errors"
	"github.com/ksaito/kotoba/internal/store"
	"github.com/ksaito/kotoba/internal/translate"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	engine     *engine.Engine
	store      store.Store
	translator translate.Translator
	cfg        *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(eng *engine.Engine, st store.Store, tr translate.Translator, cfg *config.Config) *Handlers {
	return &Handlers{engine: eng, store: st, translator: tr, cfg: cfg}
}

// Request types for each tool

// TranslateRequest represents the arguments for translate.
type TranslateRequest struct {
	Text   string `json:"text"`
	Source string `json:"source,omitempty"`
	Target string `json:"target,omitempty"`
	Save   bool   `json:"save,omitempty"`
}

// SaveRequest represents the arguments for vocab_save.
type SaveRequest struct {
	Timestamp string `json:"timestamp,omitempty"`
}

// ListRequest represents the arguments for vocab_list.
type ListRequest struct {
	Date string `json:"date,omitempty"`
}

// DeleteRequest represents the arguments for vocab_delete.
type DeleteRequest struct {
	Timestamp string `json:"timestamp"`
}

// PurgeRequest represents the arguments for vocab_purge.
type PurgeRequest struct {
	Prefix  string `json:"prefix"`
	Confirm bool   `json:"confirm,omitempty"`
}

// Handler implementations

// HandleTranslate handles the translate tool call.
func (h *Handlers) HandleTranslate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TranslateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Text == "" {
		return errorResult(errors.NewInvalidRequest("text is required")), nil
	}
	if h.translator == nil {
		return errorResult(errors.NewInvalidRequest("no translation backend is configured")), nil
	}

	source := card.LanguageCode(input.Source)
	if input.Source == "" {
		source = card.LanguageCode(h.cfg.DefaultSourceLang)
	}
	target := card.LanguageCode(input.Target)
	if input.Target == "" {
		target = card.LanguageCode(h.cfg.DefaultTargetLang)
	}
	if !source.Valid() || !target.Valid() {
		return errorResult(errors.NewInvalidRequest("language codes must be one of: en, ja")), nil
	}

	output, err := h.translator.Translate(ctx, input.Text, source, target)
	if err != nil {
		return errorResult(err), nil
	}

	rec := h.engine.AddDraft(input.Text, output, source, target)
	if input.Save {
		if err := h.engine.Save(ctx, rec.Timestamp); err != nil {
			return errorResult(err), nil
		}
		rec = *h.engine.Card(rec.Timestamp)
	}

	return successResult(rec)
}

// HandleSave handles the vocab_save tool call.
func (h *Handlers) HandleSave(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SaveRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	if input.Timestamp != "" {
		if err := h.engine.Save(ctx, input.Timestamp); err != nil {
			return errorResult(err), nil
		}
		return successResult(map[string]any{"saved": 1, "timestamp": input.Timestamp})
	}

	unsaved := 0
	for _, rec := range h.engine.Cards() {
		if !rec.Saved {
			unsaved++
		}
	}
	if err := h.engine.SaveAll(ctx); err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"saved": unsaved})
}

// HandleList handles the vocab_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	rows, err := h.store.QueryRecordsByPrefix(ctx, input.Date)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(map[string]any{
		"items": rows,
		"count": len(rows),
	})
}

// HandleDelete handles the vocab_delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DeleteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Timestamp == "" {
		return errorResult(errors.NewInvalidRequest("timestamp is required")), nil
	}

	// Pull the card's day into the working list so deletion runs
	// through the usual lifecycle, calendar bookkeeping included.
	if h.engine.Card(input.Timestamp) == nil {
		if _, err := h.engine.LoadByDatePrefix(ctx, card.DateOf(input.Timestamp)); err != nil {
			return errorResult(err), nil
		}
	}

	if err := h.engine.Delete(ctx, input.Timestamp); err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"deleted": true, "timestamp": input.Timestamp})
}

// HandlePurge handles the vocab_purge tool call.
func (h *Handlers) HandlePurge(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PurgeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Prefix == "" {
		return errorResult(errors.NewInvalidRequest("prefix is required")), nil
	}
	if !input.Confirm {
		return errorResult(errors.NewInvalidRequest("confirm parameter must be true")), nil
	}

	removed, err := h.engine.DeleteAllForDatePrefix(ctx, input.Prefix)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"purged": removed, "prefix": input.Prefix})
}

// HandleCalendar handles the calendar_list tool call.
func (h *Handlers) HandleCalendar(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	days, err := h.engine.DayCounts(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{
		"days":  days,
		"count": len(days),
	})
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if kErr, ok := err.(*errors.KotobaError); ok {
		errorObj := map[string]any{
			"code":    kErr.Code,
			"message": kErr.Message,
			"status":  kErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if kErr.Code != errors.ErrInternal && kErr.Details != nil {
			errorObj["details"] = kErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
