package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// User represents a user of the store.
type User struct {
	ID       primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Username string             `json:"username" bson:"username" validate:"required,min=3,max=100"`
	Email    string             `json:"email" bson:"email" validate:"required,email"`
	Password string             `bson:"password" validate:"required,min=6"` // No json tag for security
}
