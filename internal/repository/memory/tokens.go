package memory

import (
	"context"

	"formsapi/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TokenRepo is the in-memory token repository
type TokenRepo struct {
	s *Store
}

func (r *TokenRepo) EnsureIndexes(ctx context.Context) error { return nil }

// GetOrCreate checks and inserts under the write lock, so one user never
// ends up with two tokens.
func (r *TokenRepo) GetOrCreate(ctx context.Context, userID primitive.ObjectID, candidate string) (*model.AuthToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if tok, ok := r.s.tokens[userID]; ok {
		c := *tok
		return &c, nil
	}
	tok := &model.AuthToken{
		ID:        primitive.NewObjectID(),
		Token:     candidate,
		UserID:    userID,
		CreatedAt: r.s.now(),
	}
	r.s.tokens[userID] = tok
	r.s.tokenIndex[candidate] = userID
	c := *tok
	return &c, nil
}

func (r *TokenRepo) GetByToken(ctx context.Context, token string) (*model.AuthToken, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	userID, ok := r.s.tokenIndex[token]
	if !ok {
		return nil, nil
	}
	c := *r.s.tokens[userID]
	return &c, nil
}

// Len reports how many tokens are stored
func (r *TokenRepo) Len() int {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.tokens)
}
