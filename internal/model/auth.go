package model

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuthToken is the single reusable bearer credential of a user
type AuthToken struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Token     string             `json:"token" bson:"token"`
	UserID    primitive.ObjectID `json:"userId" bson:"userId"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// TokenClaims are the claims signed into a bearer token. Tokens carry no
// expiry; revocation is deleting the stored AuthToken.
type TokenClaims struct {
	jwt.RegisteredClaims
}

// SignInResponse is returned by POST /users/signin
type SignInResponse struct {
	*User
	Token string `json:"token"`
}
