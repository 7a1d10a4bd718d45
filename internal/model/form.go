package model

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Form is an ordered, immutable set of questions
type Form struct {
	ID        primitive.ObjectID `json:"id" bson:"_id"`
	Title     string             `json:"title" bson:"title"`
	Questions []Question         `json:"questions" bson:"questions"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// NewForm validates and assembles a form, keeping question order
func NewForm(title string, questions []Question) (*Form, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if len(questions) == 0 {
		return nil, ErrEmptyForm
	}
	qs := make([]Question, len(questions))
	for i, q := range questions {
		qs[i] = q.Definition()
	}
	return &Form{
		ID:        primitive.NewObjectID(),
		Title:     title,
		Questions: qs,
	}, nil
}

// QuestionIndex maps question ids to the form's questions
func (f *Form) QuestionIndex() map[primitive.ObjectID]Question {
	idx := make(map[primitive.ObjectID]Question, len(f.Questions))
	for _, q := range f.Questions {
		idx[q.ID] = q
	}
	return idx
}

// WithoutAnswers returns a copy whose questions carry no answers
func (f *Form) WithoutAnswers() *Form {
	out := *f
	out.Questions = make([]Question, len(f.Questions))
	for i, q := range f.Questions {
		out.Questions[i] = q.Definition()
	}
	return &out
}

// CreateFormRequest is the request body for POST /forms
type CreateFormRequest struct {
	Title     string          `json:"title" validate:"required"`
	Questions []QuestionInput `json:"questions" validate:"required,min=1,dive"`
}

// QuestionInput is one question of a form creation request
type QuestionInput struct {
	Type    Kind     `json:"type" validate:"required"`
	Title   string   `json:"title" validate:"required"`
	Options []string `json:"options,omitempty"`
}
