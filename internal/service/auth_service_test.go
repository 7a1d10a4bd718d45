package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"formsapi/internal/cache"
	"formsapi/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	f.signUp(t, "ada")
	ctx := context.Background()

	if _, err := f.authSvc.Authenticate(ctx, "ada", "secret-ada"); err != nil {
		t.Fatalf("valid credentials rejected: %v", err)
	}
	if _, err := f.authSvc.Authenticate(ctx, "ada", "wrong"); !errors.Is(err, model.ErrUnauthenticated) {
		t.Fatalf("wrong password: %v", err)
	}
	if _, err := f.authSvc.Authenticate(ctx, "nobody", "secret-ada"); !errors.Is(err, model.ErrUnauthenticated) {
		t.Fatalf("unknown user: %v", err)
	}
}

func TestSignInReusesToken(t *testing.T) {
	f := newFixture(t)
	f.signUp(t, "ada")
	ctx := context.Background()

	first, err := f.authSvc.SignIn(ctx, "ada", "secret-ada")
	if err != nil {
		t.Fatal(err)
	}
	second, err := f.authSvc.SignIn(ctx, "ada", "secret-ada")
	if err != nil {
		t.Fatal(err)
	}
	if first.Token == "" || first.Token != second.Token {
		t.Fatalf("tokens differ: %q vs %q", first.Token, second.Token)
	}
}

func TestConcurrentSignInCreatesOneToken(t *testing.T) {
	f := newFixture(t)
	u := f.signUp(t, "ada")
	ctx := context.Background()

	const n = 16
	tokens := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tok, err := f.authSvc.IssueOrReuseToken(ctx, u)
			if err != nil {
				t.Error(err)
				return
			}
			tokens[i] = tok
		}(i)
	}
	wg.Wait()

	for i := range tokens {
		if tokens[i] != tokens[0] {
			t.Fatalf("caller %d got a different token", i)
		}
	}
	if got := f.store.Tokens().Len(); got != 1 {
		t.Fatalf("expected 1 stored token, got %d", got)
	}
}

func TestResolveBearer(t *testing.T) {
	f := newFixture(t)
	u := f.signUp(t, "ada")
	ctx := context.Background()

	token, err := f.authSvc.IssueOrReuseToken(ctx, u)
	if err != nil {
		t.Fatal(err)
	}
	got, err := f.authSvc.ResolveBearer(ctx, token)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != u.ID {
		t.Fatalf("resolved to %s, want %s", got.ID.Hex(), u.ID.Hex())
	}
}

func TestResolveBearerRejectsForgedAndUnknown(t *testing.T) {
	f := newFixture(t)
	u := f.signUp(t, "ada")
	ctx := context.Background()

	// signed with another key
	other := NewAuthService(f.users, f.tokens, nil, "other-key")
	forged, _ := other.sign(u.ID)

	// correctly signed but never stored
	unstored, _ := f.authSvc.sign(u.ID)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &model.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: u.ID.Hex()},
	})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)

	for name, tok := range map[string]string{
		"garbage":  "not-a-token",
		"forged":   forged,
		"unstored": unstored,
		"unsigned": unsigned,
		"empty":    "",
	} {
		if _, err := f.authSvc.ResolveBearer(ctx, tok); !errors.Is(err, model.ErrUnauthenticated) {
			t.Errorf("%s: expected ErrUnauthenticated, got %v", name, err)
		}
	}
}

func TestResolveBearerUsesTokenCache(t *testing.T) {
	f := newFixture(t)
	u := f.signUp(t, "ada")
	ctx := context.Background()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	auth := NewAuthService(f.users, f.tokens, cache.NewTokenCache(client, time.Minute), testSignKey)

	token, err := auth.IssueOrReuseToken(ctx, u)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if _, err := auth.ResolveBearer(ctx, token); err != nil {
			t.Fatal(err)
		}
	}
	if f.tokens.lookups != 1 {
		t.Fatalf("expected one store lookup, got %d", f.tokens.lookups)
	}
}

func TestResolveBearerDropsMismatchedCacheEntry(t *testing.T) {
	f := newFixture(t)
	u := f.signUp(t, "ada")
	ctx := context.Background()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	tc := cache.NewTokenCache(client, time.Minute)
	auth := NewAuthService(f.users, f.tokens, tc, testSignKey)

	unstored, err := auth.sign(u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if err := tc.SetUser(ctx, unstored, primitive.NewObjectID()); err != nil {
		t.Fatal(err)
	}

	if _, err := auth.ResolveBearer(ctx, unstored); !errors.Is(err, model.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if mr.Exists("token:" + unstored) {
		t.Fatal("mismatched cache entry kept")
	}
}
