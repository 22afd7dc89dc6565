package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/erazemk/foodbank/internal/apperr"
	"github.com/erazemk/foodbank/internal/model"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterStructValidation(func(sl validator.StructLevel) {
		a := sl.Current().Interface().(model.Availability)
		if a.StartTime != "" && a.EndTime != "" && a.EndTime <= a.StartTime {
			sl.ReportError(a.EndTime, "end_time", "EndTime", "after_start", "")
		}
	}, model.Availability{})

	return v
}

type bodyKey struct{}

// ValidateBody decodes the JSON request body into a T and checks it against
// T's validate tags. Malformed bodies are rejected with 400 before next runs;
// next reads the value with bodyFrom.
func ValidateBody[T any](next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := new(T)
		if err := decodeJSON(r, body); err != nil {
			writeError(w, r, apperr.Validation("Invalid request body"))
			return
		}
		if err := validate.Struct(body); err != nil {
			writeError(w, r, validationError(err))
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), bodyKey{}, body)))
	})
}

// bodyFrom returns the body decoded by ValidateBody.
func bodyFrom[T any](r *http.Request) *T {
	body, _ := r.Context().Value(bodyKey{}).(*T)
	return body
}

func validationError(err error) *apperr.Error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Validation("Invalid input data")
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fe.Field()+" "+describe(fe))
	}
	return apperr.Validation("Invalid input data: " + strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte", "min":
		return "must be at least " + fe.Param()
	case "lte", "max":
		return "must be at most " + fe.Param()
	case "datetime":
		return "must use the format " + fe.Param()
	case "after_start":
		return "must be after start_time"
	}
	return fmt.Sprintf("failed %s validation", fe.Tag())
}
