package model

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ParseID parses a hex object id coming from a path or request body
func ParseID(s string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(s))
	if err != nil {
		return primitive.NilObjectID, Errorf(ErrMalformedID, "%q", s)
	}
	return oid, nil
}
