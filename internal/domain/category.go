package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category groups products. Products reference a category by ID; a product
// with no category carries a nil reference.
type Category struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Slug      string             `bson:"slug" json:"slug"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
