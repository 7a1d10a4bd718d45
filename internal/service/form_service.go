package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"formsapi/internal/cache"
	"formsapi/internal/model"
	"formsapi/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FormService handles form authoring and lookup
type FormService struct {
	forms     repository.FormRepo
	formCache cache.FormCache // optional
}

// NewFormService creates a new form service. formCache may be nil.
func NewFormService(forms repository.FormRepo, formCache cache.FormCache) *FormService {
	return &FormService{
		forms:     forms,
		formCache: formCache,
	}
}

// Create validates and stores a new form
func (s *FormService) Create(ctx context.Context, req model.CreateFormRequest) (*model.Form, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	questions := make([]model.Question, 0, len(req.Questions))
	for i, in := range req.Questions {
		q, err := model.NewQuestion(in.Title, in.Type, in.Options)
		if err != nil {
			if e, ok := model.AsError(err); ok {
				return nil, model.Errorf(e, "question %d", i)
			}
			return nil, err
		}
		questions = append(questions, q)
	}

	form, err := model.NewForm(req.Title, questions)
	if err != nil {
		return nil, err
	}
	if err := s.forms.Create(ctx, form); err != nil {
		return nil, fmt.Errorf("create form: %w", err)
	}
	s.remember(ctx, form)
	return form, nil
}

// List returns all forms without answers
func (s *FormService) List(ctx context.Context) ([]*model.Form, error) {
	forms, err := s.forms.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list forms: %w", err)
	}
	return forms, nil
}

// Get returns one form without answers
func (s *FormService) Get(ctx context.Context, id string) (*model.Form, error) {
	oid, err := model.ParseID(id)
	if err != nil {
		return nil, err
	}
	form, err := s.Load(ctx, oid)
	if err != nil {
		return nil, err
	}
	return form.WithoutAnswers(), nil
}

// Load returns the stored form, consulting the cache first
func (s *FormService) Load(ctx context.Context, id primitive.ObjectID) (*model.Form, error) {
	if s.formCache != nil {
		form, err := s.formCache.Get(ctx, id)
		if err != nil {
			slog.WarnContext(ctx, "form cache lookup failed", "form", id.Hex(), "error", err)
		}
		if form != nil {
			return form, nil
		}
	}

	form, err := s.forms.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get form: %w", err)
	}
	if form == nil {
		return nil, model.ErrFormNotFound
	}
	s.remember(ctx, form)
	return form, nil
}

func (s *FormService) remember(ctx context.Context, form *model.Form) {
	if s.formCache == nil {
		return
	}
	if err := s.formCache.Set(ctx, form); err != nil {
		slog.WarnContext(ctx, "form cache write failed", "form", form.ID.Hex(), "error", err)
	}
}
