// Package validation rejects malformed request payloads before they reach
// the services, using the validator engine behind gin's binding.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	apierrors "github.com/yukikurage/taskboard/internal/errors"
	"github.com/yukikurage/taskboard/internal/models"
)

const (
	MaxTitleLength = 255
	MaxNameLength  = 100
	MinPassword    = 6
)

var registerOnce sync.Once

// Register installs the task rules on gin's validator engine. Safe to call
// more than once.
func Register() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(jsonFieldName)
		_ = v.RegisterValidation("taskstatus", func(fl validator.FieldLevel) bool {
			return models.TaskStatus(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("taskpriority", func(fl validator.FieldLevel) bool {
			return models.TaskPriority(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
			_, err := ParseDueDate(fl.Field().String())
			return err == nil
		})
	})
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

// FieldErrors converts a binding error into the per-field list returned to
// clients. Errors that are not validation failures (e.g. malformed JSON)
// yield a single entry for the body.
func FieldErrors(err error) []apierrors.FieldError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]apierrors.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, apierrors.FieldError{
				Field:   fe.Field(),
				Message: message(fe),
			})
		}
		return out
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return []apierrors.FieldError{{
			Field:   typeErr.Field,
			Message: fmt.Sprintf("Expected %s", typeErr.Type.String()),
		}}
	}

	return []apierrors.FieldError{{Field: "body", Message: "Invalid request body"}}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", label(fe.Field()))
	case "max":
		return fmt.Sprintf("%s cannot exceed %s characters", label(fe.Field()), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", label(fe.Field()), fe.Param())
	case "email":
		return "Please include a valid email address"
	case "taskstatus":
		return "Invalid status value"
	case "taskpriority":
		return "Invalid priority value"
	case "isodate":
		return "Invalid date format for due_date"
	}
	return fmt.Sprintf("%s is invalid", label(fe.Field()))
}

func label(field string) string {
	if field == "" {
		return field
	}
	return strings.ToUpper(field[:1]) + strings.ReplaceAll(field[1:], "_", " ")
}

var dueDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
}

// ParseDueDate accepts an ISO 8601 calendar date or timestamp and returns the
// UTC calendar day it names.
func ParseDueDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return models.DateOnly(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid due date %q", value)
}
