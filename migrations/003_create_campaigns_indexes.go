package migrations

import (
	"context"

	"stormbringer/internal/campaign/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func init() {
	Register(Migration{
		Version:     "003_create_campaigns_indexes",
		Description: "Create indexes for campaigns collection",
		Up:          up003,
		Down:        down003,
	})
}

func up003(ctx context.Context, db *mongo.Database) error {
	return createIndexes(ctx, db, models.CampaignsCollection, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "accessLink", Value: 1}},
			Options: options.Index().
				SetName("idx_access_link").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"accessLink": bson.M{"$type": "string"}}),
		},
		{
			Keys:    bson.D{{Key: "players", Value: 1}, {Key: "updatedAt", Value: -1}},
			Options: options.Index().SetName("idx_players_updated"),
		},
		{
			// reminder sweep
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "nextSessionDate", Value: 1}},
			Options: options.Index().SetName("idx_status_next_session"),
		},
	})
}

func down003(ctx context.Context, db *mongo.Database) error {
	return dropIndexes(ctx, db, models.CampaignsCollection,
		"idx_access_link", "idx_players_updated", "idx_status_next_session")
}
