package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"formsapi/internal/model"
	"formsapi/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FormLoader loads a stored form by id
type FormLoader interface {
	Load(ctx context.Context, id primitive.ObjectID) (*model.Form, error)
}

// ResultService stores submissions and expands them for display
type ResultService struct {
	forms       FormLoader
	results     repository.ResultRepo
	users       repository.UserRepo
	broadcaster Broadcaster // optional
}

// NewResultService creates a new result service
func NewResultService(forms FormLoader, results repository.ResultRepo, users repository.UserRepo) *ResultService {
	return &ResultService{
		forms:   forms,
		results: results,
		users:   users,
	}
}

// SetBroadcaster sets the live result broadcaster
func (s *ResultService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Expand returns every result of a form with its user and question
// definitions inlined, in submission order. A dangling reference or a value
// that no longer fits its question fails the whole call.
func (s *ResultService) Expand(ctx context.Context, formID string) ([]model.ExpandedResult, error) {
	oid, err := model.ParseID(formID)
	if err != nil {
		return nil, err
	}
	form, err := s.forms.Load(ctx, oid)
	if err != nil {
		return nil, err
	}

	results, err := s.results.ListByForm(ctx, oid)
	if err != nil {
		if errors.Is(err, model.ErrMalformedValue) || errors.Is(err, model.ErrTypeMismatch) {
			return nil, model.Errorf(model.ErrCorruptValue, "form %s: %v", formID, err)
		}
		return nil, fmt.Errorf("list results: %w", err)
	}

	users, err := s.loadUsers(ctx, results)
	if err != nil {
		return nil, err
	}

	index := form.QuestionIndex()
	expanded := make([]model.ExpandedResult, 0, len(results))
	for _, r := range results {
		user, ok := users[r.UserID]
		if !ok {
			return nil, model.Errorf(model.ErrDanglingUserReference, "result %s user %s", r.ID.Hex(), r.UserID.Hex())
		}
		er, err := expand(r, user, index)
		if err != nil {
			return nil, err
		}
		expanded = append(expanded, *er)
	}
	return expanded, nil
}

// loadUsers fetches every distinct submitter in one batch
func (s *ResultService) loadUsers(ctx context.Context, results []*model.Result) (map[primitive.ObjectID]*model.User, error) {
	seen := make(map[primitive.ObjectID]struct{}, len(results))
	ids := make([]primitive.ObjectID, 0, len(results))
	for _, r := range results {
		if _, ok := seen[r.UserID]; ok {
			continue
		}
		seen[r.UserID] = struct{}{}
		ids = append(ids, r.UserID)
	}
	if len(ids) == 0 {
		return map[primitive.ObjectID]*model.User{}, nil
	}

	users, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	byID := make(map[primitive.ObjectID]*model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return byID, nil
}

func expand(r *model.Result, user *model.User, index map[primitive.ObjectID]model.Question) (*model.ExpandedResult, error) {
	answers := make([]model.ExpandedAnswer, 0, len(r.Answers))
	for _, a := range r.Answers {
		q, ok := index[a.QuestionID]
		if !ok {
			return nil, model.Errorf(model.ErrDanglingQuestionReference, "result %s question %s", r.ID.Hex(), a.QuestionID.Hex())
		}
		if err := q.CheckValue(a.Value); err != nil {
			return nil, model.Errorf(model.ErrCorruptValue, "result %s question %s: %v", r.ID.Hex(), a.QuestionID.Hex(), err)
		}
		answers = append(answers, model.ExpandedAnswer{
			Question: q.Definition(),
			Value:    a.Value,
		})
	}
	return &model.ExpandedResult{
		ID:          r.ID,
		FormID:      r.FormID,
		User:        user,
		Answers:     answers,
		SubmittedAt: r.SubmittedAt,
	}, nil
}

// Submit validates answers against the form and stores them as a result of
// user. Live subscribers of the form receive the expanded result.
func (s *ResultService) Submit(ctx context.Context, formID string, user *model.User, req model.SubmitResultRequest) (*model.Result, error) {
	oid, err := model.ParseID(formID)
	if err != nil {
		return nil, err
	}
	form, err := s.forms.Load(ctx, oid)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	index := form.QuestionIndex()
	answered := make(map[primitive.ObjectID]struct{}, len(req.Answers))
	answers := make([]model.Answer, 0, len(req.Answers))
	for _, in := range req.Answers {
		qid, err := model.ParseID(in.Question)
		if err != nil {
			return nil, err
		}
		q, ok := index[qid]
		if !ok {
			return nil, model.Errorf(model.ErrUnknownQuestion, "%s", in.Question)
		}
		if _, dup := answered[qid]; dup {
			return nil, model.Errorf(model.ErrDuplicateAnswer, "%s", in.Question)
		}
		answered[qid] = struct{}{}

		v, err := decodeAnswer(in, q.Kind)
		if err != nil {
			return nil, err
		}
		if err := q.CheckValue(v); err != nil {
			return nil, err
		}
		answers = append(answers, model.Answer{QuestionID: qid, Value: v})
	}

	result := &model.Result{
		FormID:      oid,
		UserID:      user.ID,
		Answers:     answers,
		SubmittedAt: time.Now().UTC(),
	}
	if err := s.results.Create(ctx, result); err != nil {
		return nil, fmt.Errorf("create result: %w", err)
	}

	if s.broadcaster != nil {
		er, err := expand(result, user, index)
		if err != nil {
			slog.WarnContext(ctx, "expand submitted result", "result", result.ID.Hex(), "error", err)
		} else {
			s.broadcaster.BroadcastResult(form.ID.Hex(), er)
		}
	}
	return result, nil
}

// decodeAnswer accepts either a bare payload ("Alice", 3, ["a","b"]) or a
// full {type, value} document.
func decodeAnswer(in model.AnswerInput, expected model.Kind) (model.Value, error) {
	if len(bytes.TrimSpace(in.Value)) == 0 {
		return model.Value{}, model.Errorf(model.ErrMissingField, "value of question %s", in.Question)
	}

	var raw interface{}
	dec := json.NewDecoder(bytes.NewReader(in.Value))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return model.Value{}, model.Errorf(model.ErrMalformedValue, "%v", err)
	}

	enc := model.EncodedValue{Type: in.Type, Value: raw}
	if doc, ok := raw.(map[string]interface{}); ok {
		tag, _ := doc["type"].(string)
		if in.Type != "" && tag != "" && model.Kind(tag) != in.Type {
			return model.Value{}, model.Errorf(model.ErrTypeMismatch, "answer tagged %s and %s", in.Type, tag)
		}
		if tag != "" {
			enc.Type = model.Kind(tag)
		}
		enc.Value = doc["value"]
	}
	return model.DecodeValue(enc, expected)
}
