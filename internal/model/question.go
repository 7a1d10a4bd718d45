package model

import (
	"encoding/json"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Question is a typed prompt owned by a form. Answer stays nil on stored
// form definitions; answered copies are produced with AttachAnswer.
type Question struct {
	ID      primitive.ObjectID `json:"id" bson:"_id"`
	Title   string             `json:"title" bson:"title"`
	Kind    Kind               `json:"type" bson:"type"`
	Options []string           `json:"options,omitempty" bson:"options,omitempty"` // choice kinds only
	Answer  *Value             `json:"answer,omitempty" bson:"answer,omitempty"`
}

// NewQuestion validates a question definition and assigns it an id
func NewQuestion(title string, kind Kind, options []string) (Question, error) {
	q := Question{
		ID:    primitive.NewObjectID(),
		Title: strings.TrimSpace(title),
		Kind:  kind,
	}
	if len(options) > 0 {
		q.Options = dedupe(options)
	}
	if err := q.validateDefinition(); err != nil {
		return Question{}, err
	}
	return q, nil
}

func (q Question) validateDefinition() error {
	if strings.TrimSpace(q.Title) == "" {
		return ErrEmptyTitle
	}
	if !q.Kind.Valid() {
		return Errorf(ErrInvalidKind, "%q", q.Kind)
	}
	if q.Kind.IsChoice() && len(q.Options) == 0 {
		return Errorf(ErrInvalidOptions, "%s question needs options", q.Kind)
	}
	if !q.Kind.IsChoice() && len(q.Options) > 0 {
		return Errorf(ErrInvalidOptions, "%s question takes no options", q.Kind)
	}
	return nil
}

// CheckValue validates v against the question's kind and option set
func (q Question) CheckValue(v Value) error {
	if v.Kind() != q.Kind {
		return Errorf(ErrTypeMismatch, "question %s is %s, got %s", q.ID.Hex(), q.Kind, v.Kind())
	}
	if !q.Kind.IsChoice() {
		return nil
	}
	allowed := make(map[string]struct{}, len(q.Options))
	for _, o := range q.Options {
		allowed[o] = struct{}{}
	}
	for _, c := range v.Choices() {
		if _, ok := allowed[c]; !ok {
			return Errorf(ErrOptionNotAllowed, "%q", c)
		}
	}
	return nil
}

// AttachAnswer returns a copy of q answered with v
func (q Question) AttachAnswer(v Value) (Question, error) {
	if err := q.CheckValue(v); err != nil {
		return Question{}, err
	}
	answered := q.Definition()
	answered.Answer = &v
	return answered, nil
}

// Definition returns a copy of q without its answer
func (q Question) Definition() Question {
	def := q
	def.Answer = nil
	if q.Options != nil {
		def.Options = append([]string(nil), q.Options...)
	}
	return def
}

// Equal compares every field, including the absent-answer state
func (q Question) Equal(o Question) bool {
	if q.ID != o.ID || q.Title != o.Title || q.Kind != o.Kind {
		return false
	}
	if len(q.Options) != len(o.Options) {
		return false
	}
	for i := range q.Options {
		if q.Options[i] != o.Options[i] {
			return false
		}
	}
	if (q.Answer == nil) != (o.Answer == nil) {
		return false
	}
	return q.Answer == nil || q.Answer.Equal(*o.Answer)
}

// DecodeQuestion parses and validates the JSON form of a question
func DecodeQuestion(data []byte) (Question, error) {
	var q Question
	if err := json.Unmarshal(data, &q); err != nil {
		if e, ok := AsError(err); ok {
			return Question{}, e
		}
		return Question{}, Errorf(ErrMalformedValue, "%v", err)
	}
	if err := q.validateDefinition(); err != nil {
		return Question{}, err
	}
	if q.Answer != nil {
		if err := q.CheckValue(*q.Answer); err != nil {
			return Question{}, err
		}
	}
	return q, nil
}
