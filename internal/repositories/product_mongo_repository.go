package repositories

import (
	"context"
	"fmt"

	"tokobuku/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoProductRepository is a MongoDB implementation of ProductRepository.
type MongoProductRepository struct {
	collection *mongo.Collection
}

// NewMongoProductRepository creates a new instance of MongoProductRepository.
func NewMongoProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{
		collection: db.Collection("products"),
	}
}

// GetAll retrieves all products from the database.
func (r *MongoProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single product by its ID from the database.
func (r *MongoProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid product ID %s: %w", id, err)
	}

	var product models.Product
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&product); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// Create creates a new product in the database and fills in its assigned ID.
func (r *MongoProductRepository) Create(ctx context.Context, product *models.Product) error {
	res, err := r.collection.InsertOne(ctx, product)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		product.ID = oid
	}
	return nil
}

// CreateMany inserts the products as one ordered batch. The insert stops at
// the first document the store rejects; documents written before it stay
// written and are not rolled back here.
func (r *MongoProductRepository) CreateMany(ctx context.Context, products []models.Product) ([]models.Product, error) {
	docs := make([]interface{}, len(products))
	for i := range products {
		docs[i] = products[i]
	}

	res, err := r.collection.InsertMany(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("failed to insert products: %w", err)
	}
	for i, insertedID := range res.InsertedIDs {
		if oid, ok := insertedID.(primitive.ObjectID); ok {
			products[i].ID = oid
		}
	}
	return products, nil
}

// Update applies the non-nil fields of updates to the product and returns
// the post-update document. CreatedBy is never part of the update document.
func (r *MongoProductRepository) Update(ctx context.Context, id string, updates *models.UpdateProductRequest) (*models.Product, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid product ID %s: %w", id, err)
	}

	set := bson.M{}
	if updates.Name != nil {
		set["name"] = *updates.Name
	}
	if updates.Description != nil {
		set["description"] = *updates.Description
	}
	if updates.Price != nil {
		set["price"] = *updates.Price
	}
	if updates.SellPrice != nil {
		set["sellPrice"] = *updates.SellPrice
	}
	if updates.Stock != nil {
		set["stock"] = *updates.Stock
	}
	if updates.Category != nil {
		set["category"] = *updates.Category
	}

	// MongoDB rejects an empty $set; a payload with no fields is a no-op
	// that returns the current document.
	if len(set) == 0 {
		return r.GetByID(ctx, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var product models.Product
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, bson.M{"$set": set}, opts).Decode(&product)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product %s: %w", id, err)
	}
	return &product, nil
}

// Delete deletes a product by its ID from the database.
func (r *MongoProductRepository) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid product ID %s: %w", id, err)
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete product %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrProductNotFound
	}
	return nil
}
