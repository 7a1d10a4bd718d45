package memory

import (
	"context"

	"formsapi/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRepo is the in-memory user repository
type UserRepo struct {
	s *Store
}

func (r *UserRepo) EnsureIndexes(ctx context.Context) error { return nil }

func (r *UserRepo) Create(ctx context.Context, user *model.User) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.usernames[user.Username]; taken {
		return model.Errorf(model.ErrUsernameTaken, "%q", user.Username)
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	now := s.now()
	user.CreatedAt = now
	user.UpdatedAt = now

	s.users[user.ID] = copyUser(user)
	s.usernames[user.Username] = user.ID
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return copyUser(u), nil
}

func (r *UserRepo) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	users := []*model.User{}
	seen := map[primitive.ObjectID]bool{}
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if u, ok := r.s.users[id]; ok {
			users = append(users, copyUser(u))
		}
	}
	return users, nil
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.usernames[username]
	if !ok {
		return nil, nil
	}
	return copyUser(r.s.users[id]), nil
}

func (r *UserRepo) List(ctx context.Context) ([]*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	users := make([]*model.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		users = append(users, copyUser(u))
	}
	sortUsers(users)
	return users, nil
}

func (r *UserRepo) Update(ctx context.Context, id primitive.ObjectID, patch model.UserPatch) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	if patch.FirstName != nil {
		v := *patch.FirstName
		u.FirstName = &v
	}
	if patch.LastName != nil {
		v := *patch.LastName
		u.LastName = &v
	}
	if patch.Email != nil {
		v := *patch.Email
		u.Email = &v
	}
	u.UpdatedAt = r.s.now()
	return copyUser(u), nil
}
