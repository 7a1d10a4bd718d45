package repository

import (
	"context"
	"fmt"
	"time"

	"formsapi/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ResultRepo handles MongoDB operations for form results
type ResultRepo interface {
	Create(ctx context.Context, result *model.Result) error
	ListByForm(ctx context.Context, formID primitive.ObjectID) ([]*model.Result, error)
	EnsureIndexes(ctx context.Context) error
}

type resultRepo struct {
	collection *mongo.Collection
}

// NewResultRepo creates a new result repository
func NewResultRepo(db *mongo.Database) ResultRepo {
	return &resultRepo{
		collection: db.Collection(CollectionResults),
	}
}

func (r *resultRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "form", Value: 1}, {Key: "submittedAt", Value: 1}},
	})
	return err
}

func (r *resultRepo) Create(ctx context.Context, result *model.Result) error {
	if result.ID.IsZero() {
		result.ID = primitive.NewObjectID()
	}
	if result.SubmittedAt.IsZero() {
		result.SubmittedAt = time.Now().UTC()
	}
	if _, err := r.collection.InsertOne(ctx, result); err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

// ListByForm returns the results of a form in submission order
func (r *resultRepo) ListByForm(ctx context.Context, formID primitive.ObjectID) ([]*model.Result, error) {
	opts := options.Find().SetSort(bson.D{{Key: "submittedAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"form": formID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	results := []*model.Result{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}
