package client

import (
	"encoding/json"
)

// TaskInput is a create or update body. Nil fields are left out, so an
// update only touches what is set. ClearDueDate sends an explicit null.
type TaskInput struct {
	Title        *string
	Description  *string
	Status       *string
	Priority     *string
	DueDate      *string
	ClearDueDate bool
}

func (in TaskInput) MarshalJSON() ([]byte, error) {
	body := make(map[string]any)
	if in.Title != nil {
		body["title"] = *in.Title
	}
	if in.Description != nil {
		body["description"] = *in.Description
	}
	if in.Status != nil {
		body["status"] = *in.Status
	}
	if in.Priority != nil {
		body["priority"] = *in.Priority
	}
	switch {
	case in.ClearDueDate:
		body["due_date"] = nil
	case in.DueDate != nil:
		body["due_date"] = *in.DueDate
	}
	return json.Marshal(body)
}

// Empty reports whether no field is set.
func (in TaskInput) Empty() bool {
	return in.Title == nil && in.Description == nil && in.Status == nil &&
		in.Priority == nil && in.DueDate == nil && !in.ClearDueDate
}
