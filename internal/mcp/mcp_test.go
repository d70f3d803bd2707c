package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ksaito/kotoba/internal/card"
	"github.com/ksaito/kotoba/internal/config"
	"github.com/ksaito/kotoba/internal/db"
	"github.com/ksaito/kotoba/internal/engine"
	"github.com/ksaito/kotoba/internal/store"
)

// stubTranslator returns a fixed translation without network access.
type stubTranslator struct {
	output string
	err    error
}

func (s *stubTranslator) Translate(ctx context.Context, text string, source, target card.LanguageCode) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.output, nil
}

// testSetup creates handlers backed by a temporary database.
func testSetup(t *testing.T) *Handlers {
	t.Helper()

	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("failed to init db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	st := store.NewSQLiteStore(database)
	eng := engine.New(st, nil, nil)
	cfg := config.DefaultConfig()
	tr := &stubTranslator{output: "こんにちは"}

	return NewHandlers(eng, st, tr, cfg)
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func TestHandleTranslate(t *testing.T) {
	h := testSetup(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		args      map[string]any
		wantError bool
		errorCode string
	}{
		{
			name:      "translate with defaults",
			args:      map[string]any{"text": "hello"},
			wantError: false,
		},
		{
			name: "translate with explicit languages",
			args: map[string]any{
				"text":   "hello",
				"source": "en",
				"target": "ja",
			},
			wantError: false,
		},
		{
			name:      "translate without text",
			args:      map[string]any{},
			wantError: true,
			errorCode: "INVALID_REQUEST",
		},
		{
			name: "translate with unknown language",
			args: map[string]any{
				"text":   "hello",
				"source": "fr",
			},
			wantError: true,
			errorCode: "INVALID_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := h.HandleTranslate(ctx, makeRequest(tt.args))
			if err != nil {
				t.Fatalf("handler returned error: %v", err)
			}

			if tt.wantError {
				if !result.IsError {
					t.Errorf("expected error result, got success")
				}
				if tt.errorCode != "" {
					assertErrorCode(t, result, tt.errorCode)
				}
			} else if result.IsError {
				t.Errorf("expected success, got error: %v", extractErrorMessage(result))
			}
		})
	}
}

func TestHandleTranslate_SavePersists(t *testing.T) {
	h := testSetup(t)
	ctx := context.Background()

	result, err := h.HandleTranslate(ctx, makeRequest(map[string]any{
		"text": "hello",
		"save": true,
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got error: %v", extractErrorMessage(result))
	}

	rows, err := h.store.QueryRecordsByPrefix(ctx, "")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 persisted row, got %d", len(rows))
	}
	if rows[0].Input != "hello" || rows[0].Output != "こんにちは" {
		t.Errorf("unexpected row content: %+v", rows[0])
	}
}

func TestHandleSave_All(t *testing.T) {
	h := testSetup(t)
	ctx := context.Background()

	h.engine.AddDraft("hello", "こんにちは", card.LangEnglish, card.LangJapanese)
	h.engine.AddDraft("world", "世界", card.LangEnglish, card.LangJapanese)

	result, err := h.HandleSave(ctx, makeRequest(map[string]any{}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got error: %v", extractErrorMessage(result))
	}

	payload := decodeResult(t, result)
	if payload["saved"] != float64(2) {
		t.Errorf("saved = %v, want 2", payload["saved"])
	}
}

func TestHandleSave_One(t *testing.T) {
	h := testSetup(t)
	ctx := context.Background()

	rec := h.engine.AddDraft("hello", "こんにちは", card.LangEnglish, card.LangJapanese)

	result, err := h.HandleSave(ctx, makeRequest(map[string]any{"timestamp": rec.Timestamp}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got error: %v", extractErrorMessage(result))
	}

	stored, err := h.store.GetRecord(ctx, rec.Timestamp)
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if stored.Input != "hello" {
		t.Errorf("stored input = %q, want hello", stored.Input)
	}
}

func TestHandleSave_UnknownKey(t *testing.T) {
	h := testSetup(t)

	result, err := h.HandleSave(context.Background(), makeRequest(map[string]any{
		"timestamp": "2026-09-01 10:00:00",
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result for unknown key")
	}
	assertErrorCode(t, result, "NOT_FOUND")
}

func TestHandleList(t *testing.T) {
	h := testSetup(t)
	ctx := context.Background()

	rec := h.engine.AddDraft("hello", "こんにちは", card.LangEnglish, card.LangJapanese)
	if err := h.engine.Save(ctx, rec.Timestamp); err != nil {
		t.Fatalf("save: %v", err)
	}

	result, err := h.HandleList(ctx, makeRequest(map[string]any{}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got error: %v", extractErrorMessage(result))
	}

	payload := decodeResult(t, result)
	if payload["count"] != float64(1) {
		t.Errorf("count = %v, want 1", payload["count"])
	}
}

func TestHandleDelete(t *testing.T) {
	h := testSetup(t)
	ctx := context.Background()

	rec := h.engine.AddDraft("hello", "こんにちは", card.LangEnglish, card.LangJapanese)
	if err := h.engine.Save(ctx, rec.Timestamp); err != nil {
		t.Fatalf("save: %v", err)
	}

	result, err := h.HandleDelete(ctx, makeRequest(map[string]any{"timestamp": rec.Timestamp}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got error: %v", extractErrorMessage(result))
	}

	if stored, _ := h.store.GetRecord(ctx, rec.Timestamp); stored != nil {
		t.Error("expected record deleted from store")
	}
	date := card.DateOf(rec.Timestamp)
	dc, err := h.store.GetDayCount(ctx, date)
	if err != nil {
		t.Fatalf("get day count: %v", err)
	}
	if dc != nil {
		t.Error("expected calendar entry removed with last card")
	}
}

func TestHandleDelete_NotInWorkingList(t *testing.T) {
	h := testSetup(t)
	ctx := context.Background()

	// Persist a card, then reset the working list so the handler has
	// to load it from the store before deleting.
	rec := h.engine.AddDraft("hello", "こんにちは", card.LangEnglish, card.LangJapanese)
	if err := h.engine.Save(ctx, rec.Timestamp); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := h.engine.LoadByDatePrefix(ctx, "1999-01-01"); err != nil {
		t.Fatalf("reset working list: %v", err)
	}

	result, err := h.HandleDelete(ctx, makeRequest(map[string]any{"timestamp": rec.Timestamp}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got error: %v", extractErrorMessage(result))
	}
}

func TestHandleDelete_MissingTimestamp(t *testing.T) {
	h := testSetup(t)

	result, err := h.HandleDelete(context.Background(), makeRequest(map[string]any{}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result")
	}
	assertErrorCode(t, result, "INVALID_REQUEST")
}

func TestHandlePurge(t *testing.T) {
	h := testSetup(t)
	ctx := context.Background()

	h.engine.AddDraft("hello", "こんにちは", card.LangEnglish, card.LangJapanese)
	h.engine.AddDraft("world", "世界", card.LangEnglish, card.LangJapanese)
	if err := h.engine.SaveAll(ctx); err != nil {
		t.Fatalf("save all: %v", err)
	}

	result, err := h.HandlePurge(ctx, makeRequest(map[string]any{
		"prefix":  card.DateOf(card.NewTimestamp(time.Now())),
		"confirm": true,
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got error: %v", extractErrorMessage(result))
	}

	payload := decodeResult(t, result)
	if payload["purged"] != float64(2) {
		t.Errorf("purged = %v, want 2", payload["purged"])
	}
}

func TestHandlePurge_RequiresConfirm(t *testing.T) {
	h := testSetup(t)

	result, err := h.HandlePurge(context.Background(), makeRequest(map[string]any{
		"prefix": "2026-09",
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result without confirm")
	}
	assertErrorCode(t, result, "INVALID_REQUEST")
}

func TestHandleCalendar(t *testing.T) {
	h := testSetup(t)
	ctx := context.Background()

	rec := h.engine.AddDraft("hello", "こんにちは", card.LangEnglish, card.LangJapanese)
	if err := h.engine.Save(ctx, rec.Timestamp); err != nil {
		t.Fatalf("save: %v", err)
	}

	result, err := h.HandleCalendar(ctx, makeRequest(nil))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got error: %v", extractErrorMessage(result))
	}

	payload := decodeResult(t, result)
	if payload["count"] != float64(1) {
		t.Errorf("count = %v, want 1", payload["count"])
	}
}

func TestServerRegistration(t *testing.T) {
	h := testSetup(t)

	s := NewServer(h.engine, h.store, h.translator, h.cfg, "test")
	tools := s.ListTools()
	if tools == nil {
		t.Fatal("expected tools to be registered, got nil")
	}

	expectedTools := []string{
		"translate",
		"vocab_save",
		"vocab_list",
		"vocab_delete",
		"vocab_purge",
		"calendar_list",
	}

	if len(tools) != len(expectedTools) {
		t.Errorf("registered tool count = %d, want %d", len(tools), len(expectedTools))
	}

	for _, name := range expectedTools {
		if _, ok := tools[name]; !ok {
			t.Errorf("missing registered tool: %s", name)
		}
	}
}

func TestServerRegistration_WithDisabledTools(t *testing.T) {
	h := testSetup(t)

	h.cfg.DisabledTools = []string{"vocab_purge", "vocab_delete"}
	s := NewServer(h.engine, h.store, h.translator, h.cfg, "test")
	tools := s.ListTools()

	if len(tools) != 4 {
		t.Errorf("registered tool count = %d, want 4", len(tools))
	}
	for _, name := range []string{"vocab_purge", "vocab_delete"} {
		if _, ok := tools[name]; ok {
			t.Errorf("disabled tool %q should not be registered", name)
		}
	}
	for _, name := range []string{"translate", "vocab_save", "vocab_list", "calendar_list"} {
		if _, ok := tools[name]; !ok {
			t.Errorf("core tool %q should be registered", name)
		}
	}
}

func TestValidateDisabledTools(t *testing.T) {
	unknown := ValidateDisabledTools([]string{"translate", "does_not_exist", "vocab_save"})
	if len(unknown) != 1 || unknown[0] != "does_not_exist" {
		t.Errorf("unknown = %v, want [does_not_exist]", unknown)
	}
}

func TestErrorResult_InternalDoesNotExposeDetails(t *testing.T) {
	h := testSetup(t)
	h.translator = &stubTranslator{err: context.DeadlineExceeded}

	result, err := h.HandleTranslate(context.Background(), makeRequest(map[string]any{
		"text": "hello",
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result")
	}
	assertErrorCode(t, result, "INTERNAL")

	payload := decodeResult(t, result)
	errObj := payload["error"].(map[string]any)
	if _, ok := errObj["details"]; ok {
		t.Error("internal errors must not expose details")
	}
}

// --- helpers ---

func assertErrorCode(t *testing.T, result *mcp.CallToolResult, expectedCode string) {
	t.Helper()

	payload := decodeResult(t, result)
	errorObj, ok := payload["error"].(map[string]any)
	if !ok {
		t.Errorf("no error object in payload")
		return
	}
	code, ok := errorObj["code"].(string)
	if !ok {
		t.Errorf("no code in error object")
		return
	}
	if code != expectedCode {
		t.Errorf("error code = %q, want %q", code, expectedCode)
	}
}

func decodeResult(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()

	if len(result.Content) == 0 {
		t.Fatal("no content in result")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("content is not TextContent")
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(text.Text), &payload); err != nil {
		t.Fatalf("failed to unmarshal payload: %v", err)
	}
	return payload
}

func extractErrorMessage(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return "<no content>"
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		return "<not text content>"
	}
	return text.Text
}
