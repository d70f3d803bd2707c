package web

import (
	"context"
	"encoding/json"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ksaito/kotoba/internal/card"
	"github.com/ksaito/kotoba/internal/db"
	"github.com/ksaito/kotoba/internal/store"
)

func setupTest(t *testing.T) *Handlers {
	t.Helper()
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("db.Init: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		t.Fatalf("template sub-FS: %v", err)
	}
	renderer := NewRenderer(templateSub, "test")

	return &Handlers{
		store:    store.NewSQLiteStore(database),
		renderer: renderer,
	}
}

// seedCard stores a card row and keeps the calendar aggregate in step.
func seedCard(t *testing.T, h *Handlers, timestamp, input, output string) {
	t.Helper()
	ctx := context.Background()
	row := card.Row{
		Timestamp:  timestamp,
		Input:      input,
		Output:     output,
		SourceLang: card.LangEnglish,
		TargetLang: card.LangJapanese,
	}
	if err := h.store.PutRecord(ctx, row); err != nil {
		t.Fatalf("seed card %q: %v", timestamp, err)
	}
	date := card.DateOf(timestamp)
	n, err := h.store.CountRecordsByPrefix(ctx, date)
	if err != nil {
		t.Fatalf("count records for %q: %v", date, err)
	}
	if err := h.store.PutDayCount(ctx, card.DayCount{Date: date, Count: n}); err != nil {
		t.Fatalf("seed day count %q: %v", date, err)
	}
}

// --- HandleCalendar ---

func TestHandleCalendar(t *testing.T) {
	h := setupTest(t)
	seedCard(t, h, "2026-09-01 10:00:00", "hello", "こんにちは")
	seedCard(t, h, "2026-09-01 10:00:01", "world", "世界")
	seedCard(t, h, "2026-08-31 09:00:00", "cat", "猫")

	req := httptest.NewRequest("GET", "/vocabulary", nil)
	rec := httptest.NewRecorder()
	h.HandleCalendar(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "2026-09-01") || !strings.Contains(body, "2026-08-31") {
		t.Error("expected both dates in calendar")
	}
	if !strings.Contains(body, "3 cards over 2 days") {
		t.Error("expected totals summary in calendar")
	}
}

func TestHandleCalendar_Empty(t *testing.T) {
	h := setupTest(t)

	req := httptest.NewRequest("GET", "/vocabulary", nil)
	rec := httptest.NewRecorder()
	h.HandleCalendar(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No saved vocabulary yet") {
		t.Error("expected empty-state message")
	}
}

// --- HandleDay ---

func dayRequest(method, date, suffix string) *http.Request {
	req := httptest.NewRequest(method, "/vocabulary/"+date+suffix, nil)
	req.SetPathValue("date", date)
	return req
}

func TestHandleDay(t *testing.T) {
	h := setupTest(t)
	seedCard(t, h, "2026-09-01 10:00:00", "hello", "こんにちは")
	seedCard(t, h, "2026-08-31 09:00:00", "cat", "猫")

	rec := httptest.NewRecorder()
	h.HandleDay(rec, dayRequest("GET", "2026-09-01", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "hello") || !strings.Contains(body, "こんにちは") {
		t.Error("expected card content for the requested day")
	}
	if strings.Contains(body, "cat") {
		t.Error("did not expect cards from another day")
	}
	if !strings.Contains(body, "English") || !strings.Contains(body, "Japanese") {
		t.Error("expected language names in listing")
	}
}

func TestHandleDay_InvalidDate(t *testing.T) {
	h := setupTest(t)

	rec := httptest.NewRecorder()
	h.HandleDay(rec, dayRequest("GET", "not-a-date", ""))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleDay_NotFound(t *testing.T) {
	h := setupTest(t)

	rec := httptest.NewRecorder()
	h.HandleDay(rec, dayRequest("GET", "2026-09-01", ""))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

// --- HandleDigest ---

func TestHandleDigest(t *testing.T) {
	h := setupTest(t)
	seedCard(t, h, "2026-09-01 10:00:00", "hello", "こんにちは")

	rec := httptest.NewRecorder()
	h.HandleDigest(rec, dayRequest("GET", "2026-09-01", "/digest"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<table>") {
		t.Error("expected rendered markdown table")
	}
	if !strings.Contains(body, "hello") {
		t.Error("expected card content in digest")
	}
}

func TestHandleDigest_NotFound(t *testing.T) {
	h := setupTest(t)

	rec := httptest.NewRecorder()
	h.HandleDigest(rec, dayRequest("GET", "2026-09-01", "/digest"))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

// --- HandleDeleteDay ---

func TestHandleDeleteDay(t *testing.T) {
	h := setupTest(t)
	seedCard(t, h, "2026-09-01 10:00:00", "hello", "こんにちは")
	seedCard(t, h, "2026-09-01 10:00:01", "world", "世界")
	seedCard(t, h, "2026-08-31 09:00:00", "cat", "猫")

	req := dayRequest("DELETE", "2026-09-01", "")
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	h.HandleDeleteDay(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["deleted"] != float64(2) {
		t.Errorf("deleted = %v, want 2", resp["deleted"])
	}

	ctx := context.Background()
	rows, err := h.store.QueryRecordsByPrefix(ctx, "2026-09-01")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected day cleared, got %d rows", len(rows))
	}
	dc, err := h.store.GetDayCount(ctx, "2026-09-01")
	if err != nil {
		t.Fatalf("get day count: %v", err)
	}
	if dc != nil {
		t.Error("expected calendar entry removed")
	}
	remaining, err := h.store.QueryRecordsByPrefix(ctx, "2026-08-31")
	if err != nil {
		t.Fatalf("query other day: %v", err)
	}
	if len(remaining) != 1 {
		t.Error("expected other day untouched")
	}
}

func TestHandleDeleteDay_Redirects(t *testing.T) {
	h := setupTest(t)
	seedCard(t, h, "2026-09-01 10:00:00", "hello", "こんにちは")

	rec := httptest.NewRecorder()
	h.HandleDeleteDay(rec, dayRequest("DELETE", "2026-09-01", ""))

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/vocabulary" {
		t.Errorf("Location = %q, want /vocabulary", loc)
	}
}

func TestHandleDeleteDay_HTMXRedirect(t *testing.T) {
	h := setupTest(t)
	seedCard(t, h, "2026-09-01 10:00:00", "hello", "こんにちは")

	req := dayRequest("DELETE", "2026-09-01", "")
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	h.HandleDeleteDay(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Header().Get("HX-Redirect") != "/vocabulary" {
		t.Error("expected HX-Redirect header")
	}
}

// --- server wiring ---

func TestNewServer_Routes(t *testing.T) {
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("db.Init: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	st := store.NewSQLiteStore(database)

	srv := NewServer(st, "test", "127.0.0.1", 0)

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/vocabulary" {
		t.Errorf("Location = %q, want /vocabulary", loc)
	}
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("expected security headers on responses")
	}
}
