package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/portfolio-site/internal/apperr"
	"github.com/ayush/portfolio-site/internal/models"
)

func (s *MongoStore) InsertSkill(ctx context.Context, sk *models.Skill) error {
	sk.ID = primitive.NilObjectID
	sk.CreatedAt = time.Now().UTC()
	res, err := s.skills.InsertOne(ctx, sk)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.Wrap(apperr.ErrConflict, "Skill already exists")
		}
		return fmt.Errorf("mongo insert skill: %w", err)
	}
	sk.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *MongoStore) ListSkills(ctx context.Context) ([]models.Skill, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := s.skills.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var skills []models.Skill
	if err := cur.All(ctx, &skills); err != nil {
		return nil, err
	}
	return skills, nil
}

func (s *MongoStore) GetSkill(ctx context.Context, id string) (*models.Skill, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var sk models.Skill
	if err := s.skills.FindOne(ctx, bson.M{"_id": oid}).Decode(&sk); err != nil {
		return nil, notFound(err)
	}
	return &sk, nil
}

// ReplaceSkill overwrites name, level and type and returns the stored document.
func (s *MongoStore) ReplaceSkill(ctx context.Context, sk *models.Skill) (*models.Skill, error) {
	update := bson.M{"$set": bson.M{"name": sk.Name, "level": sk.Level, "type": sk.Type}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var out models.Skill
	err := s.skills.FindOneAndUpdate(ctx, bson.M{"_id": sk.ID}, update, opts).Decode(&out)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperr.Wrap(apperr.ErrConflict, "Skill already exists")
		}
		return nil, notFound(err)
	}
	return &out, nil
}

func (s *MongoStore) DeleteSkill(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := s.skills.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// CountProjectsUsingSkill counts projects whose technologies contain id.
func (s *MongoStore) CountProjectsUsingSkill(ctx context.Context, id string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, nil
	}
	return s.projects.CountDocuments(ctx, bson.M{"technologies": oid})
}

func (s *MongoStore) FindSkillsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Skill, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.skills.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var skills []models.Skill
	if err := cur.All(ctx, &skills); err != nil {
		return nil, err
	}
	return skills, nil
}
