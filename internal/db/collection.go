package db

import (
	"context"

	"github.com/ukydev/vessel-ops/internal/models"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// JournalCollection defines the interface for mutation journal operations.
type JournalCollection interface {
	InsertEntry(ctx context.Context, entry models.JournalEntry) error
	FindEntries(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (JournalCursor, error)
}

// JournalCursor defines the interface for journal cursor operations.
type JournalCursor interface {
	All(ctx context.Context, out interface{}) error
	Close(ctx context.Context) error
}
