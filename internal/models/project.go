package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Project is a portfolio entry stored in the projects collection.
// Technologies holds weak references to Skill documents.
type Project struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty"`
	Title        string               `bson:"title"`
	CompanyName  string               `bson:"company_name"`
	Description  string               `bson:"description"`
	Technologies []primitive.ObjectID `bson:"technologies"`
	StartDate    time.Time            `bson:"start_date"`
	EndDate      *time.Time           `bson:"end_date"`
	IsCurrent    bool                 `bson:"is_current"`
	IsFeatured   bool                 `bson:"is_featured"`
	Views        int64                `bson:"views"`
	ImageKey     string               `bson:"image_key,omitempty"`
	CreatedAt    time.Time            `bson:"created_at"`
	UpdatedAt    time.Time            `bson:"updated_at"`
}
