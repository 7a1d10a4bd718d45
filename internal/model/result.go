package model

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Result is one stored submission of answers against a form
type Result struct {
	ID          primitive.ObjectID `json:"id" bson:"_id"`
	FormID      primitive.ObjectID `json:"form" bson:"form"`
	UserID      primitive.ObjectID `json:"user" bson:"user"`
	Answers     []Answer           `json:"answers" bson:"answers"`
	SubmittedAt time.Time          `json:"submittedAt" bson:"submittedAt"`
}

// Answer pairs a question reference with its value
type Answer struct {
	QuestionID primitive.ObjectID `json:"question" bson:"question"`
	Value      Value              `json:"value" bson:"value"`
}

// ExpandedResult is a result with its user and question definitions inlined
type ExpandedResult struct {
	ID          primitive.ObjectID `json:"id"`
	FormID      primitive.ObjectID `json:"form"`
	User        *User              `json:"user"`
	Answers     []ExpandedAnswer   `json:"answers"`
	SubmittedAt time.Time          `json:"submittedAt"`
}

// ExpandedAnswer carries the full question definition next to the value
type ExpandedAnswer struct {
	Question Question `json:"question"`
	Value    Value    `json:"value"`
}

// SubmitResultRequest is the request body for POST /forms/{id}/results
type SubmitResultRequest struct {
	Answers []AnswerInput `json:"answers" validate:"required,min=1,dive"`
}

// AnswerInput is a submitted answer. Type is optional; when present it must
// match the question. Value is decoded against the question's kind.
type AnswerInput struct {
	Question string          `json:"question" validate:"required"`
	Type     Kind            `json:"type,omitempty"`
	Value    json.RawMessage `json:"value" validate:"required"`
}
