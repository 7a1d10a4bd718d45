package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"formsapi/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FormRepo handles MongoDB operations for forms
type FormRepo interface {
	Create(ctx context.Context, form *model.Form) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Form, error)
	List(ctx context.Context) ([]*model.Form, error)
}

type formRepo struct {
	collection *mongo.Collection
}

// NewFormRepo creates a new form repository
func NewFormRepo(db *mongo.Database) FormRepo {
	return &formRepo{
		collection: db.Collection(CollectionForms),
	}
}

func (r *formRepo) Create(ctx context.Context, form *model.Form) error {
	if form.ID.IsZero() {
		form.ID = primitive.NewObjectID()
	}
	form.CreatedAt = time.Now().UTC()

	if _, err := r.collection.InsertOne(ctx, form); err != nil {
		return fmt.Errorf("insert form: %w", err)
	}
	return nil
}

func (r *formRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Form, error) {
	var form model.Form
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&form)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &form, nil
}

// List returns all forms, oldest first, without stored answers
func (r *formRepo) List(ctx context.Context) ([]*model.Form, error) {
	opts := options.Find().
		SetProjection(bson.M{"questions.answer": 0}).
		SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	forms := []*model.Form{}
	if err := cursor.All(ctx, &forms); err != nil {
		return nil, err
	}
	return forms, nil
}
