package handlers

import (
	"net/http"
	"strconv"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/vessel-ops/internal/db"
)

const (
	defaultJournalLimit = 50
	maxJournalLimit     = 500
)

// JournalHandler serves the mutation journal
type JournalHandler struct {
	journal db.JournalCollection
}

// NewJournalHandler creates a new journal handler. A nil journal answers 503.
func NewJournalHandler(journal db.JournalCollection) *JournalHandler {
	return &JournalHandler{journal: journal}
}

// List returns the newest journal entries, optionally for one operation.
// limit is capped at maxJournalLimit.
func (h *JournalHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.journal == nil {
		http.Error(w, "Mutation journal is not configured", http.StatusServiceUnavailable)
		return
	}

	limit := int64(defaultJournalLimit)
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = min(n, maxJournalLimit)
	}

	entries, err := db.RecentEntries(r.Context(), h.journal, r.URL.Query().Get("operation"), limit)
	if err != nil {
		log.WithError(err).Error("Failed to read mutation journal")
		http.Error(w, "Failed to read mutation journal", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
