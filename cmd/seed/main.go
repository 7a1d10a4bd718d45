package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"formsapi/internal/app"
	"formsapi/internal/config"
	"formsapi/internal/logging"
	"formsapi/internal/model"
)

func firstForm() model.CreateFormRequest {
	return model.CreateFormRequest{
		Title: "My First Form",
		Questions: []model.QuestionInput{
			{Type: model.KindText, Title: "What is your name?"},
			{Type: model.KindInteger, Title: "How old are you?"},
			{Type: model.KindDecimal, Title: "How tall are you in meters?"},
			{Type: model.KindSingleChoice, Title: "Which hand do you write with?", Options: []string{"Left", "Right"}},
			{Type: model.KindMultipleChoice, Title: "Which colors do you like?", Options: []string{"Red", "Blue", "Green"}},
		},
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logging.Init(cfg.Logging)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer a.Close(context.Background())

	if err := seed(ctx, a); err != nil {
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func seed(ctx context.Context, a *app.App) error {
	user, err := a.UserService.SignUp(ctx, model.SignUpRequest{
		Username: "demo",
		Password: "demo",
		Email:    "demo@example.com",
	})
	if errors.Is(err, model.ErrUsernameTaken) {
		user, err = a.AuthService.Authenticate(ctx, "demo", "demo")
	}
	if err != nil {
		return err
	}

	form, err := a.FormService.Create(ctx, firstForm())
	if err != nil {
		return err
	}

	q := form.Questions
	_, err = a.ResultService.Submit(ctx, form.ID.Hex(), user, model.SubmitResultRequest{
		Answers: []model.AnswerInput{
			{Question: q[0].ID.Hex(), Value: []byte(`"Demo"`)},
			{Question: q[1].ID.Hex(), Value: []byte(`30`)},
			{Question: q[2].ID.Hex(), Value: []byte(`1.75`)},
			{Question: q[3].ID.Hex(), Value: []byte(`"Right"`)},
			{Question: q[4].ID.Hex(), Value: []byte(`["Red","Blue"]`)},
		},
	})
	if err != nil {
		return err
	}

	slog.Info("seeded form", "form", form.ID.Hex(), "title", form.Title, "user", user.Username)
	return nil
}
