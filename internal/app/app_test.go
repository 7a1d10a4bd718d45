package app

import (
	"context"
	"testing"

	"formsapi/internal/config"
	"formsapi/internal/model"

	"github.com/alicebob/miniredis/v2"
)

func TestNewMemoryWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.Default()
	cfg.Store = config.StoreMemory
	cfg.Redis.Addr = mr.Addr()

	ctx := context.Background()
	a, err := New(ctx, cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close(ctx)

	if a.TokenCache == nil || a.FormCache == nil {
		t.Fatal("caches not wired")
	}

	form, err := a.FormService.Create(ctx, model.CreateFormRequest{
		Title:     "Survey",
		Questions: []model.QuestionInput{{Type: model.KindText, Title: "Name?"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !mr.Exists("form:" + form.ID.Hex()) {
		t.Fatal("created form not cached")
	}
}

func TestNewMemoryWithoutRedis(t *testing.T) {
	cfg := config.Default()
	cfg.Store = config.StoreMemory
	cfg.Redis.Addr = ""

	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if a.TokenCache != nil || a.FormCache != nil {
		t.Fatal("caches should be disabled")
	}
}
