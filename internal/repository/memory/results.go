package memory

import (
	"context"
	"sort"

	"formsapi/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ResultRepo is the in-memory result repository
type ResultRepo struct {
	s *Store
}

func (r *ResultRepo) EnsureIndexes(ctx context.Context) error { return nil }

func (r *ResultRepo) Create(ctx context.Context, result *model.Result) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if result.ID.IsZero() {
		result.ID = primitive.NewObjectID()
	}
	if result.SubmittedAt.IsZero() {
		result.SubmittedAt = r.s.now()
	}
	r.s.results = append(r.s.results, copyResult(result))
	return nil
}

func (r *ResultRepo) ListByForm(ctx context.Context, formID primitive.ObjectID) ([]*model.Result, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*model.Result{}
	for _, res := range r.s.results {
		if res.FormID == formID {
			out = append(out, copyResult(res))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].SubmittedAt.Before(out[j].SubmittedAt)
		}
		return out[i].ID.Hex() < out[j].ID.Hex()
	})
	return out, nil
}
