package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account. PasswordHash never leaves the process in JSON.
type User struct {
	ID           primitive.ObjectID `json:"id" bson:"_id"`
	Username     string             `json:"username" bson:"username"`
	PasswordHash []byte             `json:"-" bson:"passwordHash"`
	FirstName    *string            `json:"firstName,omitempty" bson:"firstName,omitempty"`
	LastName     *string            `json:"lastName,omitempty" bson:"lastName,omitempty"`
	Email        *string            `json:"email,omitempty" bson:"email,omitempty"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// UserSummary is the view of another user: no email, no password
type UserSummary struct {
	ID        primitive.ObjectID `json:"id"`
	Username  string             `json:"username"`
	FirstName *string            `json:"firstName,omitempty"`
	LastName  *string            `json:"lastName,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
}

// SignUpRequest is the request body for POST /users
type SignUpRequest struct {
	Username  string  `json:"username" validate:"required"`
	Password  string  `json:"password" validate:"required"`
	Email     string  `json:"email" validate:"required"`
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
}

// UserPatch holds the mutable user fields of PATCH /users. Username is kept
// only to detect attempts to change it.
type UserPatch struct {
	Username  *string `json:"username,omitempty"`
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Email     *string `json:"email,omitempty"`
}

// Empty reports whether the patch changes nothing
func (p UserPatch) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Email == nil
}
