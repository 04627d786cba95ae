package migrations

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

// isIndexExistsError checks if error is due to index already existing
func isIndexExistsError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return mongo.IsDuplicateKeyError(err) ||
		strings.Contains(errStr, "already exists") ||
		strings.Contains(errStr, "IndexKeySpecsConflict") ||
		strings.Contains(errStr, "IndexOptionsConflict")
}

// createIndexes creates indexes on collection, tolerating ones that exist
func createIndexes(ctx context.Context, db *mongo.Database, collection string, indexes []mongo.IndexModel) error {
	_, err := db.Collection(collection).Indexes().CreateMany(ctx, indexes)
	if err != nil && !isIndexExistsError(err) {
		return err
	}
	return nil
}

// dropIndexes drops the named indexes of collection
func dropIndexes(ctx context.Context, db *mongo.Database, collection string, names ...string) error {
	for _, name := range names {
		if _, err := db.Collection(collection).Indexes().DropOne(ctx, name); err != nil {
			return err
		}
	}
	return nil
}
