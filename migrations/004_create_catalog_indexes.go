package migrations

import (
	"context"

	"stormbringer/internal/catalog/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func init() {
	Register(Migration{
		Version:     "004_create_catalog_indexes",
		Description: "Create indexes for catalog collections",
		Up:          up004,
		Down:        down004,
	})
}

var catalogNameIndexed = []string{
	models.ClassesCollection,
	models.NationalitiesCollection,
	models.DeitiesCollection,
	models.WeaponsCollection,
}

func up004(ctx context.Context, db *mongo.Database) error {
	for _, coll := range catalogNameIndexed {
		err := createIndexes(ctx, db, coll, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "name", Value: 1}},
				Options: options.Index().SetName("idx_name"),
			},
		})
		if err != nil {
			return err
		}
	}

	return createIndexes(ctx, db, models.ClassesCollection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "parentClassId", Value: 1}},
			Options: options.Index().SetName("idx_parent_class").SetSparse(true),
		},
	})
}

func down004(ctx context.Context, db *mongo.Database) error {
	for _, coll := range catalogNameIndexed {
		if err := dropIndexes(ctx, db, coll, "idx_name"); err != nil {
			return err
		}
	}
	return dropIndexes(ctx, db, models.ClassesCollection, "idx_parent_class")
}
