package memory

import (
	"context"

	"formsapi/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FormRepo is the in-memory form repository
type FormRepo struct {
	s *Store
}

func (r *FormRepo) Create(ctx context.Context, form *model.Form) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if form.ID.IsZero() {
		form.ID = primitive.NewObjectID()
	}
	form.CreatedAt = r.s.now()
	r.s.forms[form.ID] = copyForm(form)
	r.s.formOrder = append(r.s.formOrder, form.ID)
	return nil
}

func (r *FormRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Form, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	f, ok := r.s.forms[id]
	if !ok {
		return nil, nil
	}
	return copyForm(f), nil
}

// List returns forms in creation order with answers stripped
func (r *FormRepo) List(ctx context.Context) ([]*model.Form, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	forms := make([]*model.Form, 0, len(r.s.formOrder))
	for _, id := range r.s.formOrder {
		forms = append(forms, r.s.forms[id].WithoutAnswers())
	}
	return forms, nil
}
