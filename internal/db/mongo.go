package db

import (
	"context"
	"fmt"
	"time"

	"github.com/ukydev/vessel-ops/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// JournalCollectionName is the MongoDB collection holding mutation entries.
const JournalCollectionName = "mutation_journal"

// ConnectMongo connects to MongoDB and verifies the connection with a ping.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo uri is empty")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// MongoJournal wraps a MongoDB collection for journal operations.
type MongoJournal struct {
	Collection *mongo.Collection
}

// NewMongoJournal returns the journal stored in database dbName.
func NewMongoJournal(client *mongo.Client, dbName string) *MongoJournal {
	return &MongoJournal{Collection: client.Database(dbName).Collection(JournalCollectionName)}
}

// InsertEntry inserts a journal entry into the collection.
func (c *MongoJournal) InsertEntry(ctx context.Context, entry models.JournalEntry) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	_, err := c.Collection.InsertOne(ctx, entry)
	return err
}

// mongoJournalCursor wraps a MongoDB cursor for journal queries.
type mongoJournalCursor struct {
	cursor *mongo.Cursor
}

// All retrieves all results from the cursor.
func (m *mongoJournalCursor) All(ctx context.Context, out interface{}) error {
	return m.cursor.All(ctx, out)
}

func (m *mongoJournalCursor) Close(ctx context.Context) error {
	return m.cursor.Close(ctx)
}

// FindEntries queries journal entries from the collection.
func (c *MongoJournal) FindEntries(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (JournalCursor, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	cursor, err := c.Collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	return &mongoJournalCursor{cursor: cursor}, nil
}

// RecentEntries returns the newest entries first. An empty operation matches
// every operation.
func RecentEntries(ctx context.Context, coll JournalCollection, operation string, limit int64) ([]models.JournalEntry, error) {
	filter := bson.M{}
	if operation != "" {
		filter["operation"] = operation
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := coll.FindEntries(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find journal entries: %w", err)
	}
	defer cursor.Close(ctx)

	entries := []models.JournalEntry{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("decode journal entries: %w", err)
	}
	return entries, nil
}

// DeleteAll deletes all journal entries from the collection.
func (c *MongoJournal) DeleteAll(ctx context.Context) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	_, err := c.Collection.DeleteMany(ctx, bson.M{})
	return err
}
