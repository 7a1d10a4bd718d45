package repository

import (
	"context"
	"errors"
	"time"

	"formsapi/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TokenRepo handles MongoDB operations for auth tokens
type TokenRepo interface {
	// GetOrCreate returns the user's token, storing candidate if the user
	// has none. Concurrent callers for one user all get the same record.
	GetOrCreate(ctx context.Context, userID primitive.ObjectID, candidate string) (*model.AuthToken, error)
	GetByToken(ctx context.Context, token string) (*model.AuthToken, error)
	EnsureIndexes(ctx context.Context) error
}

type tokenRepo struct {
	collection *mongo.Collection
}

// NewTokenRepo creates a new token repository
func NewTokenRepo(db *mongo.Database) TokenRepo {
	return &tokenRepo{
		collection: db.Collection(CollectionTokens),
	}
}

func (r *tokenRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	return err
}

func (r *tokenRepo) GetOrCreate(ctx context.Context, userID primitive.ObjectID, candidate string) (*model.AuthToken, error) {
	filter := bson.M{"userId": userID}
	update := bson.M{"$setOnInsert": bson.M{
		"token":     candidate,
		"createdAt": time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var tok model.AuthToken
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&tok)
	if err == nil {
		return &tok, nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return nil, err
	}

	// Lost an upsert race on the unique userId index: the winner's record is
	// there now.
	err = r.collection.FindOne(ctx, filter).Decode(&tok)
	if err != nil {
		return nil, err
	}
	return &tok, nil
}

func (r *tokenRepo) GetByToken(ctx context.Context, token string) (*model.AuthToken, error) {
	var tok model.AuthToken
	err := r.collection.FindOne(ctx, bson.M{"token": token}).Decode(&tok)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tok, nil
}
