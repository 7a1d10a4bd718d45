// Package memory keeps the repositories in process memory. It backs
// STORE=memory runs and the service and transport tests.
package memory

import (
	"sort"
	"sync"
	"time"

	"formsapi/internal/model"
	"formsapi/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store holds every collection behind one lock
type Store struct {
	mu         sync.RWMutex
	users      map[primitive.ObjectID]*model.User
	usernames  map[string]primitive.ObjectID
	forms      map[primitive.ObjectID]*model.Form
	formOrder  []primitive.ObjectID
	results    []*model.Result
	tokens     map[primitive.ObjectID]*model.AuthToken
	tokenIndex map[string]primitive.ObjectID
	now        func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		users:      map[primitive.ObjectID]*model.User{},
		usernames:  map[string]primitive.ObjectID{},
		forms:      map[primitive.ObjectID]*model.Form{},
		tokens:     map[primitive.ObjectID]*model.AuthToken{},
		tokenIndex: map[string]primitive.ObjectID{},
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Users returns the user repository view of the store
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

// Forms returns the form repository view of the store
func (s *Store) Forms() *FormRepo { return &FormRepo{s: s} }

// Results returns the result repository view of the store
func (s *Store) Results() *ResultRepo { return &ResultRepo{s: s} }

// Tokens returns the token repository view of the store
func (s *Store) Tokens() *TokenRepo { return &TokenRepo{s: s} }

func copyUser(u *model.User) *model.User {
	c := *u
	c.PasswordHash = append([]byte(nil), u.PasswordHash...)
	return &c
}

func copyForm(f *model.Form) *model.Form {
	c := *f
	c.Questions = append([]model.Question(nil), f.Questions...)
	return &c
}

func copyResult(r *model.Result) *model.Result {
	c := *r
	c.Answers = append([]model.Answer(nil), r.Answers...)
	return &c
}

func sortUsers(users []*model.User) {
	sort.Slice(users, func(i, j int) bool {
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.Before(users[j].CreatedAt)
		}
		return users[i].ID.Hex() < users[j].ID.Hex()
	})
}

var (
	_ repository.UserRepo   = (*UserRepo)(nil)
	_ repository.FormRepo   = (*FormRepo)(nil)
	_ repository.ResultRepo = (*ResultRepo)(nil)
	_ repository.TokenRepo  = (*TokenRepo)(nil)
)
