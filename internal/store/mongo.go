package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/portfolio-site/internal/apperr"
)

// MongoStore handles user, skill and project documents in MongoDB.
type MongoStore struct {
	users    *mongo.Collection
	skills   *mongo.Collection
	projects *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		users:    db.Collection("users"),
		skills:   db.Collection("skills"),
		projects: db.Collection("projects"),
	}
}

// EnsureIndexes creates the unique indexes the stores rely on for conflict
// detection, plus the reverse index used when counting skill references.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	if _, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "username", Value: 1}}, Options: unique,
	}); err != nil {
		return fmt.Errorf("users index: %w", err)
	}
	if _, err := s.skills.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "name", Value: 1}}, Options: unique,
	}); err != nil {
		return fmt.Errorf("skills index: %w", err)
	}
	if _, err := s.projects.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "technologies", Value: 1}},
	}); err != nil {
		return fmt.Errorf("projects index: %w", err)
	}
	return nil
}

// objectID parses a hex id; malformed ids can never match a document.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperr.ErrNotFound
	}
	return oid, nil
}

// notFound converts the driver's empty-result error.
func notFound(err error) error {
	if err == mongo.ErrNoDocuments {
		return apperr.ErrNotFound
	}
	return err
}
