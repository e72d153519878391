package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Image is a hosted image reference. PublicID identifies the asset at the
// image host so it can be destroyed when the owning record goes away.
type Image struct {
	PublicID string `bson:"publicId" json:"publicId"`
	URL      string `bson:"url" json:"url"`
}

// Review is a customer review embedded in its product document. A user may
// review a product at most once.
type Review struct {
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Name      string             `bson:"name" json:"name"`
	Rating    float64            `bson:"rating" json:"rating"`
	Comment   string             `bson:"comment" json:"comment"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Product is a catalog item. Reviews live inside the product document;
// Rating and NumReviews are denormalized aggregates kept consistent with the
// Reviews array on every review write.
type Product struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name        string              `bson:"name" json:"name"`
	Slug        string              `bson:"slug" json:"slug"`
	Description string              `bson:"description" json:"description"`
	Price       float64             `bson:"price" json:"price"`
	Stock       int                 `bson:"stock" json:"stock"`
	Images      []Image             `bson:"images" json:"images"`
	CategoryID  *primitive.ObjectID `bson:"categoryId,omitempty" json:"categoryId,omitempty"`
	Rating      float64             `bson:"rating" json:"rating"`
	NumReviews  int                 `bson:"numReviews" json:"numReviews"`
	Reviews     []Review            `bson:"reviews" json:"reviews"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// AverageRating computes the arithmetic mean of the given review ratings.
// Returns 0 for an empty slice.
func AverageRating(reviews []Review) float64 {
	if len(reviews) == 0 {
		return 0
	}

	var sum float64
	for _, r := range reviews {
		sum += r.Rating
	}
	return sum / float64(len(reviews))
}

// HasReviewBy reports whether the product already carries a review from the
// given user.
func (p *Product) HasReviewBy(userID primitive.ObjectID) bool {
	for _, r := range p.Reviews {
		if r.UserID == userID {
			return true
		}
	}
	return false
}
