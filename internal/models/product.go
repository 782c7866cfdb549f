package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Product represents a product in the store. CreatedBy is the identifier of
// the authenticated user who created it and is set exactly once at creation.
type Product struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name" validate:"required"`
	Description string             `json:"description" bson:"description" validate:"required"`
	Price       float64            `json:"price" bson:"price" validate:"required,gt=0"`
	SellPrice   float64            `json:"sellPrice" bson:"sellPrice" validate:"required,gt=0,ltefield=Price"`
	Stock       int                `json:"stock" bson:"stock" validate:"gte=0"`
	Category    string             `json:"category" bson:"category" validate:"required"`
	CreatedBy   string             `json:"createdBy" bson:"createdBy" validate:"required"`
}

// CreateProductRequest is the payload for creating a product.
type CreateProductRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description" validate:"required"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	SellPrice   float64 `json:"sellPrice" validate:"required,gt=0,ltefield=Price"`
	Stock       int     `json:"stock" validate:"gte=0"`
	Category    string  `json:"category" validate:"required"`
}

// UpdateProductRequest carries the updatable product fields. Nil pointers
// leave the stored value untouched. CreatedBy is deliberately absent: it is
// immutable after creation.
type UpdateProductRequest struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,min=1"`
	Description *string  `json:"description,omitempty" validate:"omitempty,min=1"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gt=0"`
	SellPrice   *float64 `json:"sellPrice,omitempty" validate:"omitempty,gt=0"`
	Stock       *int     `json:"stock,omitempty" validate:"omitempty,gte=0"`
	Category    *string  `json:"category,omitempty" validate:"omitempty,min=1"`
}
