package migrations

import (
	"context"

	"stormbringer/internal/character/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func init() {
	Register(Migration{
		Version:     "002_create_characters_indexes",
		Description: "Create indexes for characters collection",
		Up:          up002,
		Down:        down002,
	})
}

func up002(ctx context.Context, db *mongo.Database) error {
	return createIndexes(ctx, db, models.CharactersCollection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "ownerId", Value: 1}, {Key: "updatedAt", Value: -1}},
			Options: options.Index().SetName("idx_owner_updated"),
		},
	})
}

func down002(ctx context.Context, db *mongo.Database) error {
	return dropIndexes(ctx, db, models.CharactersCollection, "idx_owner_updated")
}
