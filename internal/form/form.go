// Package form validates the new task form before it is sent to the server.
package form

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/javiermolinar/taskdesk/internal/dateutil"
	"github.com/javiermolinar/taskdesk/internal/task"
)

// Field names, as posted to the server.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldStatus      = "status"
	FieldPriority    = "priority"
	FieldDue         = "due_date"
)

// Fields lists every form field in display order.
var Fields = []string{FieldTitle, FieldDescription, FieldStatus, FieldPriority, FieldDue}

// Messages shown next to invalid fields.
const (
	MsgInvalidFormat = "The entered format is not valid."
	MsgInvalidValue  = "Invalid value."
	MsgDueInPast     = "The due date cannot be in the past."
)

// TaskForm is the raw input of the new task form.
type TaskForm struct {
	Title       string `form:"title" label:"Title" validate:"required,min=3,max=200"`
	Description string `form:"description" label:"Description" validate:"max=5000"`
	Status      string `form:"status" label:"Status" validate:"omitempty,oneof=todo doing done"`
	Priority    string `form:"priority" label:"Priority" validate:"omitempty,oneof=low medium high urgent"`
	Due         string `form:"due_date" label:"Due date" validate:"omitempty,due"`
}

// FromMap builds a TaskForm from field values keyed by field name.
func FromMap(m map[string]string) TaskForm {
	return TaskForm{
		Title:       m[FieldTitle],
		Description: m[FieldDescription],
		Status:      m[FieldStatus],
		Priority:    m[FieldPriority],
		Due:         m[FieldDue],
	}
}

// Map returns the field values keyed by field name.
func (f TaskForm) Map() map[string]string {
	return map[string]string{
		FieldTitle:       f.Title,
		FieldDescription: f.Description,
		FieldStatus:      f.Status,
		FieldPriority:    f.Priority,
		FieldDue:         f.Due,
	}
}

// Errors maps field names to their messages.
type Errors map[string][]string

func (e Errors) Error() string {
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+strings.Join(e[name], " "))
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

// First returns the first message for field, or "".
func (e Errors) First(field string) string {
	if msgs := e[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

func (e Errors) add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Validator checks TaskForms.
type Validator struct {
	v   *validator.Validate
	now func() time.Time
}

// NewValidator creates a Validator. A nil now uses time.Now.
func NewValidator(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("form")
	})
	val := &Validator{v: v, now: now}
	// only the format is checked here; past dates get their own message
	_ = v.RegisterValidation("due", func(fl validator.FieldLevel) bool {
		_, err := dateutil.ParseDue(fl.Field().String(), val.now())
		return err == nil || errors.Is(err, dateutil.ErrDateInPast)
	})
	return val
}

// Validate checks f and converts it to a task.Draft. Invalid input returns
// an Errors value.
func (v *Validator) Validate(f TaskForm) (task.Draft, error) {
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	f.Status = strings.ToLower(strings.TrimSpace(f.Status))
	f.Priority = strings.ToLower(strings.TrimSpace(f.Priority))
	f.Due = strings.TrimSpace(f.Due)

	errs := Errors{}
	if err := v.v.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return task.Draft{}, fmt.Errorf("validating form: %w", err)
		}
		for _, fe := range verrs {
			errs.add(fe.Field(), message(f, fe))
		}
	}

	var due *time.Time
	if f.Due != "" && errs[FieldDue] == nil {
		d, err := dateutil.ParseDue(f.Due, v.now())
		if errors.Is(err, dateutil.ErrDateInPast) {
			errs.add(FieldDue, MsgDueInPast)
		}
		due = d
	}

	if len(errs) > 0 {
		return task.Draft{}, errs
	}

	d := task.Draft{
		Title:       f.Title,
		Description: f.Description,
		Status:      task.StatusTodo,
		Priority:    task.PriorityMedium,
		Due:         dateutil.FormatDue(due),
	}
	if f.Status != "" {
		d.Status = task.Status(f.Status)
	}
	if f.Priority != "" {
		d.Priority = task.Priority(f.Priority)
	}
	return d, nil
}

func message(f TaskForm, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The field %q is required.", label(f, fe.StructField()))
	case "min":
		return fmt.Sprintf("Minimum %s characters required.", fe.Param())
	case "max":
		return fmt.Sprintf("Maximum %s characters allowed.", fe.Param())
	case "due":
		return MsgInvalidFormat
	default:
		return MsgInvalidValue
	}
}

func label(f TaskForm, structField string) string {
	sf, ok := reflect.TypeOf(f).FieldByName(structField)
	if !ok {
		return structField
	}
	if l := sf.Tag.Get("label"); l != "" {
		return l
	}
	return structField
}
