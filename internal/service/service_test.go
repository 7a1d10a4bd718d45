package service

import (
	"context"
	"sync"
	"testing"

	"formsapi/internal/model"
	"formsapi/internal/repository"
	"formsapi/internal/repository/memory"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSignKey = "test-sign-key"

type countingFormRepo struct {
	repository.FormRepo
	mu   sync.Mutex
	gets int
}

func (r *countingFormRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Form, error) {
	r.mu.Lock()
	r.gets++
	r.mu.Unlock()
	return r.FormRepo.GetByID(ctx, id)
}

type countingUserRepo struct {
	repository.UserRepo
	mu       sync.Mutex
	batches  int
	requests [][]primitive.ObjectID
}

func (r *countingUserRepo) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*model.User, error) {
	r.mu.Lock()
	r.batches++
	r.requests = append(r.requests, ids)
	r.mu.Unlock()
	return r.UserRepo.GetByIDs(ctx, ids)
}

type countingTokenRepo struct {
	repository.TokenRepo
	mu      sync.Mutex
	lookups int
}

func (r *countingTokenRepo) GetByToken(ctx context.Context, token string) (*model.AuthToken, error) {
	r.mu.Lock()
	r.lookups++
	r.mu.Unlock()
	return r.TokenRepo.GetByToken(ctx, token)
}

type recordingBroadcaster struct {
	mu      sync.Mutex
	formIDs []string
	results []*model.ExpandedResult
}

func (b *recordingBroadcaster) BroadcastResult(formID string, result *model.ExpandedResult) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.formIDs = append(b.formIDs, formID)
	b.results = append(b.results, result)
}

type fixture struct {
	store   *memory.Store
	forms   *countingFormRepo
	users   *countingUserRepo
	tokens  *countingTokenRepo
	userSvc *UserService
	authSvc *AuthService
	formSvc *FormService
	results *ResultService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	f := &fixture{
		store:  store,
		forms:  &countingFormRepo{FormRepo: store.Forms()},
		users:  &countingUserRepo{UserRepo: store.Users()},
		tokens: &countingTokenRepo{TokenRepo: store.Tokens()},
	}
	f.userSvc = NewUserService(f.users)
	f.authSvc = NewAuthService(f.users, f.tokens, nil, testSignKey)
	f.formSvc = NewFormService(f.forms, nil)
	f.results = NewResultService(f.formSvc, store.Results(), f.users)
	return f
}

func (f *fixture) signUp(t *testing.T, username string) *model.User {
	t.Helper()
	u, err := f.userSvc.SignUp(context.Background(), model.SignUpRequest{
		Username: username,
		Password: "secret-" + username,
		Email:    username + "@example.com",
	})
	if err != nil {
		t.Fatalf("sign up %s: %v", username, err)
	}
	return u
}

func (f *fixture) createForm(t *testing.T, req model.CreateFormRequest) *model.Form {
	t.Helper()
	form, err := f.formSvc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("create form: %v", err)
	}
	return form
}

func rawJSON(s string) []byte { return []byte(s) }
