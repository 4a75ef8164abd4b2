package projections

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoReadStore keeps one projection's records in a mongo collection,
// keyed by _id. Records must marshal their key into the _id field.
type MongoReadStore[T Keyed] struct {
	collection *mongo.Collection
}

func NewMongoReadStore[T Keyed](collection *mongo.Collection) *MongoReadStore[T] {
	return &MongoReadStore[T]{collection: collection}
}

func (s *MongoReadStore[T]) Upsert(ctx context.Context, record T) error {
	filter := bson.D{{Key: "_id", Value: record.RecordKey()}}
	opts := options.Replace().SetUpsert(true)

	_, err := s.collection.ReplaceOne(ctx, filter, record, opts)
	return err
}

func (s *MongoReadStore[T]) Delete(ctx context.Context, key string) error {
	filter := bson.D{{Key: "_id", Value: key}}

	_, err := s.collection.DeleteOne(ctx, filter)
	return err
}

func (s *MongoReadStore[T]) List(ctx context.Context) ([]T, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})

	cursor, err := s.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}

	var records []T
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}

	return records, nil
}

func (s *MongoReadStore[T]) Get(ctx context.Context, key string) (T, bool, error) {
	var record T

	filter := bson.D{{Key: "_id", Value: key}}

	err := s.collection.FindOne(ctx, filter).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return record, false, nil
	}
	if err != nil {
		return record, false, err
	}

	return record, true, nil
}
