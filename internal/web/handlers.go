package web

import (
	"net/http"
	"strings"

	"github.com/ksaito/kotoba/internal/card"
	"github.com/ksaito/kotoba/internal/errors"
	"github.com/ksaito/kotoba/internal/store"
)

// Handlers contains HTTP route handlers for the vocabulary UI.
type Handlers struct {
	store    store.Store
	renderer *Renderer
}

// HandleCalendar handles GET /vocabulary: list days with saved cards.
func (h *Handlers) HandleCalendar(w http.ResponseWriter, r *http.Request) {
	days, err := h.store.QueryDayCounts(r.Context())
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	total := 0
	for _, d := range days {
		total += d.Count
	}

	h.renderer.renderPage(w, r, "calendar", CalendarPageData{
		PageData: PageData{
			Title:   "Vocabulary",
			Version: h.renderer.version,
			Nav:     "calendar",
		},
		Days:  days,
		Total: total,
	})
}

// HandleDay handles GET /vocabulary/{date}: list cards saved on a day.
func (h *Handlers) HandleDay(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("date")
	if !card.ValidDate(date) {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("date must be formatted as YYYY-MM-DD"))
		return
	}

	rows, err := h.store.QueryRecordsByPrefix(r.Context(), date)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	if len(rows) == 0 {
		h.renderer.renderError(w, r, errors.NewNotFound(date))
		return
	}

	h.renderer.renderPage(w, r, "day", DayPageData{
		PageData: PageData{
			Title:   date,
			Version: h.renderer.version,
			Nav:     "day",
		},
		Date: date,
		Rows: rows,
	})
}

// HandleDigest handles GET /vocabulary/{date}/digest: render a day's
// cards as a markdown digest.
func (h *Handlers) HandleDigest(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("date")
	if !card.ValidDate(date) {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("date must be formatted as YYYY-MM-DD"))
		return
	}

	rows, err := h.store.QueryRecordsByPrefix(r.Context(), date)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	if len(rows) == 0 {
		h.renderer.renderError(w, r, errors.NewNotFound(date))
		return
	}

	md := card.Digest(date, rows)

	h.renderer.renderPage(w, r, "digest", DigestPageData{
		PageData: PageData{
			Title:   date + " digest",
			Version: h.renderer.version,
			Nav:     "day",
		},
		Date:         date,
		RenderedHTML: renderMarkdown(md),
	})
}

// HandleDeleteDay handles DELETE /vocabulary/{date}: remove all cards
// saved on a day along with its calendar entry.
func (h *Handlers) HandleDeleteDay(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("date")
	if !card.ValidDate(date) {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("date must be formatted as YYYY-MM-DD"))
		return
	}

	removed, err := h.store.DeleteRecordsByPrefix(r.Context(), date)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	if _, err := h.store.DeleteDayCountsByPrefix(r.Context(), date); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	// HTMX request: redirect via HX-Redirect header
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/vocabulary")
		w.WriteHeader(http.StatusOK)
		return
	}

	// JSON request
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		renderJSON(w, http.StatusOK, map[string]any{
			"deleted": removed,
			"date":    date,
		})
		return
	}

	// Default: redirect
	http.Redirect(w, r, "/vocabulary", http.StatusFound)
}
