package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"formsapi/internal/cache"
	"formsapi/internal/model"
	"formsapi/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles sign-in and bearer token resolution
type AuthService struct {
	users      repository.UserRepo
	tokens     repository.TokenRepo
	tokenCache cache.TokenCache // optional
	signKey    []byte
}

// NewAuthService creates a new auth service. tokenCache may be nil.
func NewAuthService(users repository.UserRepo, tokens repository.TokenRepo, tokenCache cache.TokenCache, signKey string) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		tokenCache: tokenCache,
		signKey:    []byte(signKey),
	}
}

// Authenticate checks a username/password pair
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, model.ErrUnauthenticated
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, model.ErrUnauthenticated
	}
	return user, nil
}

// IssueOrReuseToken returns the user's token, creating it on first sign-in
func (s *AuthService) IssueOrReuseToken(ctx context.Context, user *model.User) (string, error) {
	candidate, err := s.sign(user.ID)
	if err != nil {
		return "", err
	}
	tok, err := s.tokens.GetOrCreate(ctx, user.ID, candidate)
	if err != nil {
		return "", fmt.Errorf("get or create token: %w", err)
	}
	return tok.Token, nil
}

// SignIn authenticates and returns the user with their bearer token
func (s *AuthService) SignIn(ctx context.Context, username, password string) (*model.SignInResponse, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	token, err := s.IssueOrReuseToken(ctx, user)
	if err != nil {
		return nil, err
	}
	return &model.SignInResponse{User: user, Token: token}, nil
}

func (s *AuthService) sign(userID primitive.ObjectID) (string, error) {
	claims := &model.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  userID.Hex(),
			ID:       uuid.NewString(),
			IssuedAt: jwt.NewNumericDate(time.Now()),
			// no expiry: the stored token record decides validity
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signKey)
}

// ResolveBearer maps a bearer token to its user. Forged, unknown or orphaned
// tokens are ErrUnauthenticated; store failures are returned as is.
func (s *AuthService) ResolveBearer(ctx context.Context, token string) (*model.User, error) {
	userID, err := s.parse(token)
	if err != nil {
		return nil, model.ErrUnauthenticated
	}

	cached := false
	if s.tokenCache != nil {
		id, ok, err := s.tokenCache.GetUser(ctx, token)
		if err != nil {
			slog.WarnContext(ctx, "token cache lookup failed", "error", err)
		}
		cached = ok && id == userID
		if ok && !cached {
			// entry disagrees with the signed subject
			if err := s.tokenCache.Delete(ctx, token); err != nil {
				slog.WarnContext(ctx, "token cache delete failed", "error", err)
			}
		}
	}

	if !cached {
		tok, err := s.tokens.GetByToken(ctx, token)
		if err != nil {
			return nil, fmt.Errorf("load token: %w", err)
		}
		if tok == nil || tok.UserID != userID {
			return nil, model.ErrUnauthenticated
		}
		if s.tokenCache != nil {
			if err := s.tokenCache.SetUser(ctx, token, userID); err != nil {
				slog.WarnContext(ctx, "token cache write failed", "error", err)
			}
		}
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, model.ErrUnauthenticated
	}
	return user, nil
}

func (s *AuthService) parse(token string) (primitive.ObjectID, error) {
	claims := &model.TokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.signKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return primitive.NilObjectID, err
	}
	if !parsed.Valid {
		return primitive.NilObjectID, errors.New("invalid token")
	}
	return primitive.ObjectIDFromHex(claims.Subject)
}
