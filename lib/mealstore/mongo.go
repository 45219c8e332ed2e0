package mealstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"babnet-backend/lib/meal"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoOptions struct {
	Uri        string `json:"uri"`
	Database   string `json:"database"`
	Collection string `json:"collection"`
}

func DefaultMongoOptions() MongoOptions {
	return MongoOptions{
		Uri:        "mongodb://localhost:27017",
		Database:   "bab",
		Collection: "meal_data",
	}
}

// MongoStore is the production Store. the connection is process-wide,
// lazily established and shared by all callers.
type MongoStore struct {
	opts MongoOptions

	mu     sync.Mutex
	client *mongo.Client
	col    *mongo.Collection
}

func NewMongoStore(opts MongoOptions) *MongoStore {
	return &MongoStore{opts: opts}
}

// Connect is idempotent: a no-op when already connected.
func (s *MongoStore) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(s.opts.Uri))
	if err != nil {
		return fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("mongo ping: %w", err)
	}

	col := client.Database(s.opts.Database).Collection(s.opts.Collection)
	_, err = col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "documentId", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: 1}}},
		{Keys: bson.D{{Key: "updatedAt", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("mongo create indexes: %w", err)
	}

	s.client = client
	s.col = col
	slog.InfoContext(ctx, "connected to mongodb", "database", s.opts.Database)
	return nil
}

func (s *MongoStore) Disconnect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil {
		return nil
	}
	err := s.client.Disconnect(ctx)
	s.client = nil
	s.col = nil
	return err
}

func (s *MongoStore) collection() (*mongo.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.col == nil {
		return nil, errors.New("mealstore: not connected")
	}
	return s.col, nil
}

func (s *MongoStore) SaveMealData(ctx context.Context, date string, data meal.CafeteriaData, documentId string) error {
	col, err := s.collection()
	if err != nil {
		return err
	}

	now := time.Now()
	_, err = col.UpdateOne(
		ctx,
		bson.M{"_id": date},
		bson.M{
			"$set": bson.M{
				"data":       data,
				"documentId": documentId,
				"updatedAt":  now,
			},
			"$setOnInsert": bson.M{"createdAt": now},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "saved meal data", "date", date)
	return nil
}

func (s *MongoStore) GetMealData(ctx context.Context, date string) (*meal.CafeteriaData, error) {
	col, err := s.collection()
	if err != nil {
		return nil, err
	}

	var doc Document
	err = col.FindOne(ctx, bson.M{"_id": date}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc.Data, nil
}

func (s *MongoStore) GetDateRange(ctx context.Context) (DateRange, error) {
	col, err := s.collection()
	if err != nil {
		return DateRange{}, err
	}

	var earliest, latest Document

	err = col.FindOne(ctx, bson.M{}, options.FindOne().SetSort(bson.D{{Key: "_id", Value: 1}})).Decode(&earliest)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return DateRange{}, nil
	}
	if err != nil {
		return DateRange{}, err
	}

	err = col.FindOne(ctx, bson.M{}, options.FindOne().SetSort(bson.D{{Key: "_id", Value: -1}})).Decode(&latest)
	if err != nil {
		return DateRange{}, err
	}

	return DateRange{Earliest: earliest.Date, Latest: latest.Date}, nil
}

func (s *MongoStore) GetDocumentId(ctx context.Context, date string) (string, error) {
	col, err := s.collection()
	if err != nil {
		return "", err
	}

	var doc Document
	err = col.FindOne(
		ctx,
		bson.M{"_id": date},
		options.FindOne().SetProjection(bson.M{"documentId": 1}),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return doc.DocumentId, nil
}

func (s *MongoStore) SearchLatestFoodImage(ctx context.Context, foodName string) (*FoodImage, error) {
	col, err := s.collection()
	if err != nil {
		return nil, err
	}

	cursor, err := col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var doc Document
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		if found, ok := searchDocument(doc, foodName); ok {
			return &found, nil
		}
	}
	return nil, cursor.Err()
}

func (s *MongoStore) Stats(ctx context.Context) (Stats, error) {
	col, err := s.collection()
	if err != nil {
		return Stats{}, err
	}

	total, err := col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return Stats{}, err
	}

	var last Document
	err = col.FindOne(ctx, bson.M{}, options.FindOne().SetSort(bson.D{{Key: "updatedAt", Value: -1}})).Decode(&last)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Stats{TotalMealData: total}, nil
	}
	if err != nil {
		return Stats{}, err
	}

	updated := last.UpdatedAt
	return Stats{TotalMealData: total, LastUpdated: &updated}, nil
}
