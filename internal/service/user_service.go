package service

import (
	"context"
	"fmt"
	"strings"

	"formsapi/internal/model"
	"formsapi/internal/repository"

	"github.com/jinzhu/copier"
	"golang.org/x/crypto/bcrypt"
)

// UserService handles account registration, lookup and profile updates
type UserService struct {
	users repository.UserRepo
}

// NewUserService creates a new user service
func NewUserService(users repository.UserRepo) *UserService {
	return &UserService{users: users}
}

// SignUp registers a user. The username is unique and cannot change later.
func (s *UserService) SignUp(ctx context.Context, req model.SignUpRequest) (*model.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	username, email := req.Username, req.Email

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     username,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        &email,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// List returns every user as a summary
func (s *UserService) List(ctx context.Context) ([]model.UserSummary, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]model.UserSummary, len(users))
	for i, u := range users {
		if err := copier.Copy(&out[i], u); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Get returns the summary of one user
func (s *UserService) Get(ctx context.Context, id string) (*model.UserSummary, error) {
	oid, err := model.ParseID(id)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, oid)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, model.ErrUserNotFound
	}
	var summary model.UserSummary
	if err := copier.Copy(&summary, user); err != nil {
		return nil, err
	}
	return &summary, nil
}

// Update applies patch to user. A patch naming the username is refused
// whatever its value.
func (s *UserService) Update(ctx context.Context, user *model.User, patch model.UserPatch) (*model.User, error) {
	if patch.Username != nil {
		return nil, model.ErrImmutableField
	}
	if patch.Empty() {
		return user, nil
	}
	updated, err := s.users.Update(ctx, user.ID, patch)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	if updated == nil {
		return nil, model.ErrUserNotFound
	}
	return updated, nil
}
