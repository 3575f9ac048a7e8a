package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/portfolio-site/internal/apperr"
	"github.com/ayush/portfolio-site/internal/models"
)

func (s *MongoStore) InsertProject(ctx context.Context, p *models.Project) error {
	now := time.Now().UTC()
	p.ID = primitive.NilObjectID
	p.Views = 0
	p.CreatedAt, p.UpdatedAt = now, now
	res, err := s.projects.InsertOne(ctx, p)
	if err != nil {
		return fmt.Errorf("mongo insert project: %w", err)
	}
	p.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *MongoStore) ListProjects(ctx context.Context) ([]models.Project, error) {
	opts := options.Find().SetSort(bson.D{{Key: "start_date", Value: -1}})
	cur, err := s.projects.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var projects []models.Project
	if err := cur.All(ctx, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (s *MongoStore) GetProject(ctx context.Context, id string) (*models.Project, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var p models.Project
	if err := s.projects.FindOne(ctx, bson.M{"_id": oid}).Decode(&p); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// ReplaceProject overwrites every editable field, including the full
// technologies list. Views, image and creation time are preserved.
func (s *MongoStore) ReplaceProject(ctx context.Context, p *models.Project) (*models.Project, error) {
	update := bson.M{"$set": bson.M{
		"title":        p.Title,
		"company_name": p.CompanyName,
		"description":  p.Description,
		"technologies": p.Technologies,
		"start_date":   p.StartDate,
		"end_date":     p.EndDate,
		"is_current":   p.IsCurrent,
		"is_featured":  p.IsFeatured,
		"updated_at":   time.Now().UTC(),
	}}
	return s.findAndUpdate(ctx, p.ID, update)
}

func (s *MongoStore) DeleteProject(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := s.projects.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (s *MongoStore) SetFeatured(ctx context.Context, id string, featured bool) (*models.Project, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return s.findAndUpdate(ctx, oid, bson.M{"$set": bson.M{"is_featured": featured}})
}

// IncrementViews bumps the counter atomically and returns the new value.
func (s *MongoStore) IncrementViews(ctx context.Context, id string) (int64, error) {
	oid, err := objectID(id)
	if err != nil {
		return 0, err
	}
	p, err := s.findAndUpdate(ctx, oid, bson.M{"$inc": bson.M{"views": 1}})
	if err != nil {
		return 0, err
	}
	return p.Views, nil
}

func (s *MongoStore) SetImageKey(ctx context.Context, id, key string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	_, err = s.findAndUpdate(ctx, oid, bson.M{"$set": bson.M{"image_key": key, "updated_at": time.Now().UTC()}})
	return err
}

func (s *MongoStore) findAndUpdate(ctx context.Context, oid primitive.ObjectID, update bson.M) (*models.Project, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p models.Project
	if err := s.projects.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&p); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}
