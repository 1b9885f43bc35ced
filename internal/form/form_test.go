package form

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javiermolinar/taskdesk/internal/task"
)

var fixedNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func newValidator() *Validator {
	return NewValidator(func() time.Time { return fixedNow })
}

func TestValidateValidForm(t *testing.T) {
	d, err := newValidator().Validate(TaskForm{
		Title:       "  Write report  ",
		Description: "quarterly numbers",
		Status:      "Doing",
		Priority:    "high",
		Due:         "2025-03-12 14:30",
	})
	require.NoError(t, err)
	assert.Equal(t, task.Draft{
		Title:       "Write report",
		Description: "quarterly numbers",
		Status:      task.StatusDoing,
		Priority:    task.PriorityHigh,
		Due:         "2025-03-12 14:30",
	}, d)
}

func TestValidateDefaults(t *testing.T) {
	d, err := newValidator().Validate(TaskForm{Title: "Buy milk", Due: "tomorrow"})
	require.NoError(t, err)
	assert.Equal(t, task.StatusTodo, d.Status)
	assert.Equal(t, task.PriorityMedium, d.Priority)
	assert.Equal(t, "2025-03-11 23:59", d.Due)
}

func TestValidateMessages(t *testing.T) {
	tests := []struct {
		name  string
		form  TaskForm
		field string
		want  string
	}{
		{"missing title", TaskForm{}, FieldTitle, `The field "Title" is required.`},
		{"blank title", TaskForm{Title: "   "}, FieldTitle, `The field "Title" is required.`},
		{"short title", TaskForm{Title: "ab"}, FieldTitle, "Minimum 3 characters required."},
		{"long title", TaskForm{Title: strings.Repeat("a", 201)}, FieldTitle, "Maximum 200 characters allowed."},
		{"bad status", TaskForm{Title: "Valid", Status: "blocked"}, FieldStatus, MsgInvalidValue},
		{"bad priority", TaskForm{Title: "Valid", Priority: "asap"}, FieldPriority, MsgInvalidValue},
		{"bad due", TaskForm{Title: "Valid", Due: "someday"}, FieldDue, MsgInvalidFormat},
		{"past due", TaskForm{Title: "Valid", Due: "2025-03-01 10:00"}, FieldDue, MsgDueInPast},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newValidator().Validate(tt.form)
			var errs Errors
			require.ErrorAs(t, err, &errs)
			assert.Equal(t, tt.want, errs.First(tt.field))
		})
	}
}

func TestErrorsError(t *testing.T) {
	errs := Errors{"title": {"a."}, "due_date": {"b.", "c."}}
	assert.Equal(t, "invalid form: due_date: b. c.; title: a.", errs.Error())
	assert.Empty(t, errs.First("status"))
}

func TestMapRoundTrip(t *testing.T) {
	f := TaskForm{Title: "T", Description: "D", Status: "todo", Priority: "low", Due: "today"}
	assert.Equal(t, f, FromMap(f.Map()))
	assert.Len(t, f.Map(), len(Fields))
}
