package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Skill is a named competency stored in the skills collection.
type Skill struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Level     Level              `bson:"level"`
	Type      string             `bson:"type"`
	CreatedAt time.Time          `bson:"created_at"`
}
