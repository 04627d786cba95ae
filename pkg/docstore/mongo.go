package docstore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements Store on a MongoDB database. Documents use string
// ids stored in _id.
type MongoStore struct {
	db           *mongo.Database
	transactions bool
}

// NewMongoStore wraps db. With transactions disabled RunTransaction returns
// ErrTransactionsUnsupported instead of running fn non-atomically.
func NewMongoStore(db *mongo.Database, transactions bool) *MongoStore {
	return &MongoStore{db: db, transactions: transactions}
}

func (s *MongoStore) NewID() string {
	return primitive.NewObjectID().Hex()
}

func (s *MongoStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	var m bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}
	return toDocument(m), nil
}

func (s *MongoStore) Query(ctx context.Context, collection string, filters ...Where) ([]Document, error) {
	filter := bson.M{}
	for _, f := range filters {
		filter[f.Field] = f.Value
	}

	cursor, err := s.db.Collection(collection).Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	var results []bson.M
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode %s query results: %w", collection, err)
	}

	docs := make([]Document, 0, len(results))
	for _, m := range results {
		docs = append(docs, *toDocument(m))
	}
	return docs, nil
}

func (s *MongoStore) Set(ctx context.Context, collection, id string, fields map[string]any) error {
	kept, _ := splitUnset(fields)
	doc := bson.M(kept)
	doc["_id"] = id

	_, err := s.db.Collection(collection).ReplaceOne(ctx, bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *MongoStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return s.updateOne(ctx, collection, id, withSet(bson.M{}, fields))
}

func (s *MongoStore) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *MongoStore) ArrayAppend(ctx context.Context, collection, id, field string, value any, extra map[string]any) error {
	return s.updateOne(ctx, collection, id, withSet(bson.M{"$push": bson.M{field: value}}, extra))
}

func (s *MongoStore) ArrayUnion(ctx context.Context, collection, id, field string, value any, extra map[string]any) error {
	return s.updateOne(ctx, collection, id, withSet(bson.M{"$addToSet": bson.M{field: value}}, extra))
}

func (s *MongoStore) ArrayRemove(ctx context.Context, collection, id, field string, value any, extra map[string]any) error {
	return s.updateOne(ctx, collection, id, withSet(bson.M{"$pull": bson.M{field: value}}, extra))
}

func (s *MongoStore) RunTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !s.transactions {
		return ErrTransactionsUnsupported
	}

	session, err := s.db.Client().StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

func (s *MongoStore) updateOne(ctx context.Context, collection, id string, update bson.M) error {
	result, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func withSet(update bson.M, extra map[string]any) bson.M {
	set, unset := splitUnset(extra)
	if len(set) > 0 {
		update["$set"] = bson.M(set)
	}
	if len(unset) > 0 {
		paths := bson.M{}
		for _, p := range unset {
			paths[p] = ""
		}
		update["$unset"] = paths
	}
	return update
}

func toDocument(m bson.M) *Document {
	id, _ := m["_id"].(string)
	if oid, ok := m["_id"].(primitive.ObjectID); ok {
		id = oid.Hex()
	}
	delete(m, "_id")
	return &Document{ID: id, Fields: map[string]any(m)}
}
