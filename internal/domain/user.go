package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role determines what a user is allowed to do.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

// User is an account holder. Password holds the bcrypt hash and Answer the
// security answer used for password resets; neither is serialized to JSON.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name       string             `bson:"name" json:"name"`
	Email      string             `bson:"email" json:"email"`
	Password   string             `bson:"password" json:"-"`
	Address    string             `bson:"address" json:"address"`
	City       string             `bson:"city" json:"city"`
	Country    string             `bson:"country" json:"country"`
	Phone      string             `bson:"phone" json:"phone"`
	Answer     string             `bson:"answer" json:"-"`
	Role       Role               `bson:"role" json:"role"`
	ProfilePic *Image             `bson:"profilePic,omitempty" json:"profilePic,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}
