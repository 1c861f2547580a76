package db

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/vessel-ops/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func TestConnectMongo_EmptyURI(t *testing.T) {
	client, err := ConnectMongo(context.Background(), "")
	assert.Error(t, err)
	assert.Nil(t, client)
}

func TestConnectMongo_BadURI(t *testing.T) {
	client, err := ConnectMongo(context.Background(), "mongodb://bad:uri")
	assert.Error(t, err)
	assert.Nil(t, client)
}

func TestInsertEntry_NilCollection(t *testing.T) {
	coll := &MongoJournal{Collection: nil}
	err := coll.InsertEntry(context.Background(), models.JournalEntry{Operation: models.OpRegisterVessel})
	assert.Error(t, err)

	_, err = coll.FindEntries(context.Background(), bson.M{})
	assert.Error(t, err)
}

// MockJournalCollection is a mock implementation of JournalCollection
type MockJournalCollection struct {
	mock.Mock
}

func (m *MockJournalCollection) InsertEntry(ctx context.Context, entry models.JournalEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockJournalCollection) FindEntries(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (JournalCursor, error) {
	args := m.Called(ctx, filter, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(JournalCursor), args.Error(1)
}

type sliceCursor struct {
	entries []models.JournalEntry
	err     error
	closed  bool
}

func (c *sliceCursor) All(ctx context.Context, out interface{}) error {
	if c.err != nil {
		return c.err
	}
	*(out.(*[]models.JournalEntry)) = c.entries
	return nil
}

func (c *sliceCursor) Close(ctx context.Context) error {
	c.closed = true
	return nil
}

func TestRecentEntries(t *testing.T) {
	t.Run("filters by operation and sorts newest first", func(t *testing.T) {
		coll := new(MockJournalCollection)
		cursor := &sliceCursor{entries: []models.JournalEntry{{Operation: models.OpCompleteJob, Success: true}}}

		coll.On("FindEntries", mock.Anything, bson.M{"operation": models.OpCompleteJob}, mock.MatchedBy(func(opts []*options.FindOptions) bool {
			if len(opts) != 1 || opts[0].Limit == nil || *opts[0].Limit != 5 {
				return false
			}
			sort, ok := opts[0].Sort.(bson.D)
			return ok && len(sort) == 1 && sort[0].Key == "created_at" && sort[0].Value == -1
		})).Return(cursor, nil)

		entries, err := RecentEntries(context.Background(), coll, models.OpCompleteJob, 5)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
		assert.True(t, cursor.closed)
		coll.AssertExpectations(t)
	})

	t.Run("no operation matches everything", func(t *testing.T) {
		coll := new(MockJournalCollection)
		coll.On("FindEntries", mock.Anything, bson.M{}, mock.Anything).Return(&sliceCursor{}, nil)

		entries, err := RecentEntries(context.Background(), coll, "", 0)
		require.NoError(t, err)
		assert.NotNil(t, entries)
		assert.Empty(t, entries)
	})

	t.Run("find error", func(t *testing.T) {
		coll := new(MockJournalCollection)
		coll.On("FindEntries", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

		_, err := RecentEntries(context.Background(), coll, "", 10)
		assert.ErrorContains(t, err, "db down")
	})

	t.Run("decode error", func(t *testing.T) {
		coll := new(MockJournalCollection)
		coll.On("FindEntries", mock.Anything, mock.Anything, mock.Anything).Return(&sliceCursor{err: errors.New("bad document")}, nil)

		_, err := RecentEntries(context.Background(), coll, "", 10)
		assert.ErrorContains(t, err, "decode journal entries")
	})
}

// Integration test (requires running MongoDB)
func TestJournal_Integration(t *testing.T) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" || uri == "uri" {
		t.Skip("MONGO_URI not set or invalid, skipping integration test")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := ConnectMongo(ctx, uri)
	if err != nil {
		t.Skipf("failed to connect: %v, skipping integration test", err)
		return
	}
	defer client.Disconnect(context.Background())

	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "vessel_ops_test"
	}
	journal := NewMongoJournal(client, dbName)
	require.NoError(t, journal.DeleteAll(ctx))

	entry := models.JournalEntry{
		Operation:  models.OpRegisterVessel,
		Collection: models.Vessels,
		Payload:    map[string]interface{}{"name": "Atlantic Star"},
		Success:    true,
	}
	require.NoError(t, journal.InsertEntry(ctx, entry))

	entries, err := RecentEntries(ctx, journal, models.OpRegisterVessel, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Atlantic Star", entries[0].Payload["name"])
	assert.False(t, entries[0].CreatedAt.IsZero())
}
