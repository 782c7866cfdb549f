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

// MongoBookRepository is a MongoDB implementation of BookRepository.
type MongoBookRepository struct {
	collection *mongo.Collection
}

// NewMongoBookRepository creates a new instance of MongoBookRepository.
func NewMongoBookRepository(db *mongo.Database) *MongoBookRepository {
	return &MongoBookRepository{
		collection: db.Collection("books"),
	}
}

// GetAll retrieves all books from the database.
func (r *MongoBookRepository) GetAll(ctx context.Context) ([]models.Book, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to get all books: %w", err)
	}
	defer cursor.Close(ctx)

	books := []models.Book{}
	if err := cursor.All(ctx, &books); err != nil {
		return nil, fmt.Errorf("failed to decode books: %w", err)
	}
	return books, nil
}

// GetByID retrieves a single book by its ID from the database. A
// malformed identifier surfaces as a plain error, not a not-found.
func (r *MongoBookRepository) GetByID(ctx context.Context, id string) (*models.Book, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid book ID %s: %w", id, err)
	}

	var book models.Book
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&book); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get book by ID %s: %w", id, err)
	}
	return &book, nil
}

// SearchByTitle retrieves books whose title contains the given text,
// case-insensitively.
func (r *MongoBookRepository) SearchByTitle(ctx context.Context, title string) ([]models.Book, error) {
	filter := bson.M{"title": primitive.Regex{Pattern: title, Options: "i"}}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to search books by title %q: %w", title, err)
	}
	defer cursor.Close(ctx)

	books := []models.Book{}
	if err := cursor.All(ctx, &books); err != nil {
		return nil, fmt.Errorf("failed to decode books: %w", err)
	}
	return books, nil
}

// Create creates a new book in the database and fills in its assigned ID.
func (r *MongoBookRepository) Create(ctx context.Context, book *models.Book) error {
	res, err := r.collection.InsertOne(ctx, book)
	if err != nil {
		return fmt.Errorf("failed to create book: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		book.ID = oid
	}
	return nil
}

// Update applies the non-nil fields of updates to the book and returns the
// post-update document.
func (r *MongoBookRepository) Update(ctx context.Context, id string, updates *models.UpdateBookRequest) (*models.Book, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid book ID %s: %w", id, err)
	}

	set := bson.M{}
	if updates.Title != nil {
		set["title"] = *updates.Title
	}
	if updates.Author != nil {
		set["author"] = *updates.Author
	}
	if updates.Genre != nil {
		set["genre"] = *updates.Genre
	}
	if updates.Description != nil {
		set["description"] = *updates.Description
	}
	if updates.Availability != nil {
		set["availability"] = *updates.Availability
	}
	if updates.Stock != nil {
		set["stock"] = *updates.Stock
	}
	if updates.Image != nil {
		set["image"] = *updates.Image
	}

	// MongoDB rejects an empty $set; a payload with no fields is a no-op
	// that returns the current document.
	if len(set) == 0 {
		return r.GetByID(ctx, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var book models.Book
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, bson.M{"$set": set}, opts).Decode(&book)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to update book %s: %w", id, err)
	}
	return &book, nil
}

// Delete deletes a book by its ID from the database.
func (r *MongoBookRepository) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid book ID %s: %w", id, err)
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete book %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrBookNotFound
	}
	return nil
}
