package migrations

import (
	"context"

	"stormbringer/internal/users/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func init() {
	Register(Migration{
		Version:     "001_create_users_indexes",
		Description: "Create indexes for users collection",
		Up:          up001,
		Down:        down001,
	})
}

func up001(ctx context.Context, db *mongo.Database) error {
	return createIndexes(ctx, db, models.UsersCollection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "usernameKey", Value: 1}},
			Options: options.Index().SetName("idx_username_key").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("idx_created_at"),
		},
	})
}

func down001(ctx context.Context, db *mongo.Database) error {
	return dropIndexes(ctx, db, models.UsersCollection, "idx_username_key", "idx_created_at")
}
