package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/vessel-ops/internal/db"
	"github.com/ukydev/vessel-ops/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MockJournalCollection is a mock implementation of db.JournalCollection
type MockJournalCollection struct {
	mock.Mock
}

func (m *MockJournalCollection) InsertEntry(ctx context.Context, entry models.JournalEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockJournalCollection) FindEntries(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (db.JournalCursor, error) {
	args := m.Called(ctx, filter, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(db.JournalCursor), args.Error(1)
}

type entryCursor struct {
	entries []models.JournalEntry
}

func (c *entryCursor) All(ctx context.Context, out interface{}) error {
	*(out.(*[]models.JournalEntry)) = c.entries
	return nil
}

func (c *entryCursor) Close(ctx context.Context) error { return nil }

func TestJournalHandler_List(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		h := NewJournalHandler(nil)
		w := httptest.NewRecorder()
		h.List(w, httptest.NewRequest(http.MethodGet, "/api/journal", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("filters by operation", func(t *testing.T) {
		journal := new(MockJournalCollection)
		journal.On("FindEntries", mock.Anything, bson.M{"operation": models.OpCompleteJob}, mock.Anything).
			Return(&entryCursor{entries: []models.JournalEntry{{Operation: models.OpCompleteJob, TargetID: "12", Success: true}}}, nil).Once()

		h := NewJournalHandler(journal)
		w := httptest.NewRecorder()
		h.List(w, httptest.NewRequest(http.MethodGet, "/api/journal?operation=complete_maintenance_job&limit=5", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var entries []models.JournalEntry
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
		require.Len(t, entries, 1)
		assert.Equal(t, "12", entries[0].TargetID)
		journal.AssertExpectations(t)
	})

	t.Run("invalid limit", func(t *testing.T) {
		h := NewJournalHandler(new(MockJournalCollection))
		w := httptest.NewRecorder()
		h.List(w, httptest.NewRequest(http.MethodGet, "/api/journal?limit=-3", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("limit is capped", func(t *testing.T) {
		journal := new(MockJournalCollection)
		journal.On("FindEntries", mock.Anything, bson.M{}, mock.MatchedBy(func(opts []*options.FindOptions) bool {
			return len(opts) == 1 && opts[0].Limit != nil && *opts[0].Limit == maxJournalLimit
		})).Return(&entryCursor{}, nil).Once()

		h := NewJournalHandler(journal)
		w := httptest.NewRecorder()
		h.List(w, httptest.NewRequest(http.MethodGet, "/api/journal?limit=1000000000", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		journal.AssertExpectations(t)
	})

	t.Run("database error", func(t *testing.T) {
		journal := new(MockJournalCollection)
		journal.On("FindEntries", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("db error")).Once()

		h := NewJournalHandler(journal)
		w := httptest.NewRecorder()
		h.List(w, httptest.NewRequest(http.MethodGet, "/api/journal", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
