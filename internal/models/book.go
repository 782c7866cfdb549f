package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Book represents a book in the catalog.
type Book struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Title        string             `json:"title" bson:"title" validate:"required"`
	Author       string             `json:"author" bson:"author" validate:"required"`
	Genre        string             `json:"genre" bson:"genre" validate:"required"`
	Description  string             `json:"description,omitempty" bson:"description,omitempty"`
	Availability bool               `json:"availability" bson:"availability"`
	Stock        int                `json:"stock,omitempty" bson:"stock,omitempty"`
	Image        string             `json:"image,omitempty" bson:"image,omitempty"`
}

// CreateBookRequest is the payload for creating a book. Availability
// defaults to true when omitted.
type CreateBookRequest struct {
	Title        string `json:"title" validate:"required"`
	Author       string `json:"author" validate:"required"`
	Genre        string `json:"genre" validate:"required"`
	Description  string `json:"description"`
	Availability *bool  `json:"availability"`
	Stock        int    `json:"stock" validate:"gte=0"`
	Image        string `json:"image"`
}

// UpdateBookRequest carries the updatable book fields. Nil pointers leave
// the stored value untouched.
type UpdateBookRequest struct {
	Title        *string `json:"title,omitempty" validate:"omitempty,min=1"`
	Author       *string `json:"author,omitempty" validate:"omitempty,min=1"`
	Genre        *string `json:"genre,omitempty" validate:"omitempty,min=1"`
	Description  *string `json:"description,omitempty"`
	Availability *bool   `json:"availability,omitempty"`
	Stock        *int    `json:"stock,omitempty" validate:"omitempty,gte=0"`
	Image        *string `json:"image,omitempty"`
}
