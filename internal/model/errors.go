package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an error for the transport layer
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindNotFound     ErrorKind = "not_found"
	KindUnauthorized ErrorKind = "unauthorized"
	KindForbidden    ErrorKind = "forbidden"
	KindConflict     ErrorKind = "conflict"
	KindConsistency  ErrorKind = "consistency"
)

// Error is a classified domain error. Two errors match with errors.Is when
// their codes are equal, so details can be added without losing identity.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Value / question / form
var (
	ErrTypeMismatch     = &Error{Kind: KindValidation, Code: "type_mismatch", Message: "value type does not match question type"}
	ErrMalformedValue   = &Error{Kind: KindValidation, Code: "malformed_value", Message: "value payload is malformed"}
	ErrInvalidKind      = &Error{Kind: KindValidation, Code: "invalid_type", Message: "unknown question type"}
	ErrInvalidOptions   = &Error{Kind: KindValidation, Code: "invalid_options", Message: "options do not fit question type"}
	ErrOptionNotAllowed = &Error{Kind: KindValidation, Code: "option_not_allowed", Message: "value is not one of the question options"}
	ErrEmptyTitle       = &Error{Kind: KindValidation, Code: "empty_title", Message: "title is required"}
	ErrEmptyForm        = &Error{Kind: KindValidation, Code: "empty_form", Message: "form needs at least one question"}
)

// Requests and lookups
var (
	ErrMalformedID     = &Error{Kind: KindValidation, Code: "malformed_id", Message: "malformed id"}
	ErrMissingField    = &Error{Kind: KindValidation, Code: "missing_field", Message: "required field missing"}
	ErrUnknownQuestion = &Error{Kind: KindValidation, Code: "unknown_question", Message: "question does not belong to form"}
	ErrDuplicateAnswer = &Error{Kind: KindValidation, Code: "duplicate_answer", Message: "question answered more than once"}
	ErrFormNotFound    = &Error{Kind: KindNotFound, Code: "form_not_found", Message: "form not found"}
	ErrUserNotFound    = &Error{Kind: KindNotFound, Code: "user_not_found", Message: "user not found"}
	ErrUnauthenticated = &Error{Kind: KindUnauthorized, Code: "unauthenticated", Message: "invalid or missing credentials"}
	ErrImmutableField  = &Error{Kind: KindForbidden, Code: "immutable_field", Message: "username cannot be changed"}
	ErrUsernameTaken   = &Error{Kind: KindConflict, Code: "username_taken", Message: "username already in use"}
)

// Stored data
var (
	ErrDanglingQuestionReference = &Error{Kind: KindConsistency, Code: "dangling_question_reference", Message: "result references a missing question"}
	ErrDanglingUserReference     = &Error{Kind: KindConsistency, Code: "dangling_user_reference", Message: "result references a missing user"}
	ErrCorruptValue              = &Error{Kind: KindConsistency, Code: "corrupt_value", Message: "stored value does not match its question"}
)

// Errorf derives a detailed error from a sentinel. The result keeps the
// sentinel's kind and code.
func Errorf(base *Error, format string, args ...interface{}) error {
	return &Error{
		Kind:    base.Kind,
		Code:    base.Code,
		Message: base.Message + ": " + fmt.Sprintf(format, args...),
	}
}

// AsError unwraps err into a classified error if it carries one
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
