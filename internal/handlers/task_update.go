package handlers

import (
	"bytes"
	"encoding/json"
	"unicode/utf8"

	apierrors "github.com/yukikurage/taskboard/internal/errors"
	"github.com/yukikurage/taskboard/internal/models"
	"github.com/yukikurage/taskboard/internal/services"
	"github.com/yukikurage/taskboard/internal/validation"
)

var nullJSON = []byte("null")

// parseUpdateInput reads the whitelisted keys of a PUT body. A key is present
// when it appears in the body; explicit null clears description and due_date.
func parseUpdateInput(raw map[string]json.RawMessage) (services.UpdateTaskInput, []apierrors.FieldError) {
	var (
		input services.UpdateTaskInput
		errs  []apierrors.FieldError
	)

	if v, ok := raw[services.FieldTitle]; ok {
		var title string
		switch {
		case json.Unmarshal(v, &title) != nil:
			errs = append(errs, apierrors.FieldError{Field: "title", Message: "Title must be a string"})
		case utf8.RuneCountInString(title) > validation.MaxTitleLength:
			errs = append(errs, apierrors.FieldError{Field: "title", Message: "Title cannot exceed 255 characters"})
		default:
			input.Title = &title
		}
	}

	if v, ok := raw[services.FieldDescription]; ok {
		var description string
		if isNull(v) {
			input.Description = &description
		} else if json.Unmarshal(v, &description) != nil {
			errs = append(errs, apierrors.FieldError{Field: "description", Message: "Description must be a string"})
		} else {
			input.Description = &description
		}
	}

	if v, ok := raw[services.FieldStatus]; ok {
		var s string
		if json.Unmarshal(v, &s) != nil || !models.TaskStatus(s).Valid() {
			errs = append(errs, apierrors.FieldError{Field: "status", Message: "Invalid status value"})
		} else {
			status := models.TaskStatus(s)
			input.Status = &status
		}
	}

	if v, ok := raw[services.FieldPriority]; ok {
		var p string
		if json.Unmarshal(v, &p) != nil || !models.TaskPriority(p).Valid() {
			errs = append(errs, apierrors.FieldError{Field: "priority", Message: "Invalid priority value"})
		} else {
			priority := models.TaskPriority(p)
			input.Priority = &priority
		}
	}

	if v, ok := raw[services.FieldDueDate]; ok {
		var s string
		switch {
		case isNull(v):
			input.DueDatePresent = true
		case json.Unmarshal(v, &s) != nil:
			errs = append(errs, apierrors.FieldError{Field: "due_date", Message: "Invalid date format for due_date"})
		case s == "":
			input.DueDatePresent = true
		default:
			due, err := validation.ParseDueDate(s)
			if err != nil {
				errs = append(errs, apierrors.FieldError{Field: "due_date", Message: "Invalid date format for due_date"})
				break
			}
			input.DueDatePresent = true
			input.DueDate = &due
		}
	}

	return input, errs
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), nullJSON)
}
