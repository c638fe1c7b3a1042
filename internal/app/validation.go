package app

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"quizctl/internal/domain"
)

// Validator checks requests before they are sent.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("quiz_status", func(fl validator.FieldLevel) bool {
		s := domain.QuizStatus(fl.Field().String())
		return s == domain.QuizDraft || s == domain.QuizPublished
	})
	_ = v.RegisterValidation("question_type", func(fl validator.FieldLevel) bool {
		t := domain.QuestionType(fl.Field().String())
		return t == domain.QuestionMCQ || t == domain.QuestionTrueFalse
	})
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return domain.Role(fl.Field().String()).Valid()
	})
	v.RegisterStructValidation(questionRules, domain.AddQuestionRequest{})
	return &Validator{validate: v}
}

// questionRules covers the option-set constraints tags cannot express.
func questionRules(sl validator.StructLevel) {
	req := sl.Current().Interface().(domain.AddQuestionRequest)
	if len(req.Options) == 0 {
		return
	}
	switch req.Type {
	case domain.QuestionTrueFalse:
		if len(req.Options) != 2 {
			sl.ReportError(req.Options, "options", "Options", "true_false_options", "")
		}
	case domain.QuestionMCQ:
		if len(req.Options) < 2 {
			sl.ReportError(req.Options, "options", "Options", "mcq_options", "")
		}
	}
	for _, o := range req.Options {
		if o.IsCorrect {
			return
		}
	}
	sl.ReportError(req.Options, "options", "Options", "one_correct", "")
}

// Validate returns domain.ValidationErrors describing every invalid field.
func (v *Validator) Validate(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := make(domain.ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, domain.ValidationError{Field: fieldPath(fe), Message: messageFor(fe)})
	}
	return out
}

// fieldPath drops the leading struct name from the namespace ("AddQuestionRequest.options[0].text").
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "gt":
		return "must be greater than " + fe.Param()
	case "quiz_status":
		return "must be DRAFT or PUBLISHED"
	case "question_type":
		return "must be MCQ or TRUE_FALSE"
	case "role":
		return "must be STUDENT or ADMIN"
	case "true_false_options":
		return "TRUE_FALSE questions need exactly 2 options"
	case "mcq_options":
		return "MCQ questions need at least 2 options"
	case "one_correct":
		return "mark at least one option as correct"
	}
	return "is invalid (" + fe.Tag() + ")"
}
