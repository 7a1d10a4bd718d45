package service

import (
	"errors"
	"reflect"
	"strings"

	"formsapi/internal/model"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report fields by their JSON names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateRequest checks the validate tags of a request struct and maps the
// first failure onto the domain error for that field.
func validateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	path := fe.Namespace()
	if i := strings.IndexByte(path, '.'); i >= 0 {
		path = path[i+1:]
	}
	switch fe.Field() {
	case "title":
		return model.Errorf(model.ErrEmptyTitle, "%s", path)
	case "questions":
		return model.Errorf(model.ErrEmptyForm, "%s", path)
	}
	return model.Errorf(model.ErrMissingField, "%s", path)
}
