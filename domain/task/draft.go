package task

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/NathanHodgkiss447/smart-tasks/domain/validation"
)

// Draft holds the fields a caller may supply when creating a task.
type Draft struct {
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description"`
	DueAt       *time.Time `json:"dueAt,omitempty"`
	Priority    Priority   `json:"priority,omitempty" validate:"omitempty,oneof=low med high"`
	Completed   bool       `json:"completed"`
}

// Normalize trims the title and fills defaults.
func (d *Draft) Normalize() {
	d.Title = strings.TrimSpace(d.Title)
	if d.Priority == "" {
		d.Priority = PriorityMed
	}
}

// Validate checks a normalized draft.
func (d Draft) Validate() error {
	return validation.Struct(d)
}

// Patch is a partial update. Nil pointers leave the field untouched.
// ClearDueAt removes the due date and takes precedence over DueAt.
//
// Its JSON form is the wire form: {"dueAt": null} clears the date, and an
// absent key leaves it alone.
type Patch struct {
	Title       *string
	Description *string
	DueAt       *time.Time
	ClearDueAt  bool
	Priority    *Priority
	Completed   *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.DueAt == nil && !p.ClearDueAt &&
		p.Priority == nil && p.Completed == nil
}

// Apply copies the patch onto t and advances UpdatedAt, never moving it
// backwards.
func (p Patch) Apply(t *Task, now time.Time) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	switch {
	case p.ClearDueAt:
		t.DueAt = nil
	case p.DueAt != nil:
		due := p.DueAt.UTC()
		t.DueAt = &due
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if now.After(t.UpdatedAt) {
		t.UpdatedAt = now
	}
}

// MarshalJSON encodes the patch in wire form.
func (p Patch) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, 5)
	if p.Title != nil {
		out["title"] = *p.Title
	}
	if p.Description != nil {
		out["description"] = *p.Description
	}
	if p.ClearDueAt {
		out["dueAt"] = nil
	} else if p.DueAt != nil {
		out["dueAt"] = p.DueAt.UTC()
	}
	if p.Priority != nil {
		out["priority"] = *p.Priority
	}
	if p.Completed != nil {
		out["completed"] = *p.Completed
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes and validates the wire form.
func (p *Patch) UnmarshalJSON(data []byte) error {
	decoded, err := DecodePatch(data)
	if err != nil {
		return err
	}
	*p = decoded
	return nil
}

// DecodePatch parses a partial update body. Unknown keys are ignored; known
// keys with the wrong type or an invalid value produce a validation error
// naming every offending field.
func DecodePatch(data []byte) (Patch, error) {
	raw, err := decodeObject(data)
	if err != nil {
		return Patch{}, err
	}

	var (
		p      Patch
		fields []validation.FieldError
	)
	reject := func(field, msg string) {
		fields = append(fields, validation.FieldError{Field: field, Message: msg})
	}

	if v, ok := raw["title"]; ok {
		var s string
		if json.Unmarshal(v, &s) != nil {
			reject("title", "must be a string")
		} else if s = strings.TrimSpace(s); s == "" {
			reject("title", "must not be empty")
		} else {
			p.Title = &s
		}
	}
	if v, ok := raw["description"]; ok {
		var s string
		if json.Unmarshal(v, &s) != nil {
			reject("description", "must be a string")
		} else {
			p.Description = &s
		}
	}
	if v, ok := raw["dueAt"]; ok {
		if isNull(v) {
			p.ClearDueAt = true
		} else if due, ok := decodeTime(v); ok {
			p.DueAt = &due
		} else {
			reject("dueAt", "must be an ISO 8601 datetime")
		}
	}
	if v, ok := raw["priority"]; ok {
		var s string
		if json.Unmarshal(v, &s) != nil || !Priority(s).Valid() {
			reject("priority", "must be one of low, med, high")
		} else {
			pr := Priority(s)
			p.Priority = &pr
		}
	}
	if v, ok := raw["completed"]; ok {
		var b bool
		if json.Unmarshal(v, &b) != nil {
			reject("completed", "must be a boolean")
		} else {
			p.Completed = &b
		}
	}

	if len(fields) > 0 {
		return Patch{}, validation.New(fields...)
	}
	return p, nil
}

// DecodeDraft parses a create body with the same type checks as DecodePatch,
// then normalizes and validates the result.
func DecodeDraft(data []byte) (Draft, error) {
	raw, err := decodeObject(data)
	if err != nil {
		return Draft{}, err
	}
	if _, ok := raw["title"]; !ok {
		return Draft{}, validation.Field("title", "is required")
	}
	// dueAt: null on create means "no due date", not "clear".
	if v, ok := raw["dueAt"]; ok && isNull(v) {
		delete(raw, "dueAt")
	}
	cleaned, err := json.Marshal(raw)
	if err != nil {
		return Draft{}, err
	}
	p, err := DecodePatch(cleaned)
	if err != nil {
		return Draft{}, err
	}

	d := Draft{Title: *p.Title, DueAt: p.DueAt}
	if p.Description != nil {
		d.Description = *p.Description
	}
	if p.Priority != nil {
		d.Priority = *p.Priority
	}
	if p.Completed != nil {
		d.Completed = *p.Completed
	}
	d.Normalize()
	if err := d.Validate(); err != nil {
		return Draft{}, err
	}
	return d, nil
}

func decodeObject(data []byte) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return nil, validation.Field("body", "must be a JSON object")
	}
	return raw, nil
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

func decodeTime(v json.RawMessage) (time.Time, bool) {
	var s string
	if json.Unmarshal(v, &s) != nil {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
