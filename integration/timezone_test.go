package integration

import (
	"testing"
	"time"

	"github.com/javiermolinar/taskdesk/internal/form"
)

// Due dates are wall clock times: the value typed in the form is the value
// posted, whatever the local zone.
func TestDueDateKeepsWallClock(t *testing.T) {
	zones := []string{"UTC", "America/New_York", "Europe/Madrid", "Asia/Tokyo"}

	for _, name := range zones {
		t.Run(name, func(t *testing.T) {
			loc, err := time.LoadLocation(name)
			if err != nil {
				t.Skipf("zone %s unavailable: %v", name, err)
			}
			now := time.Date(2025, 3, 10, 9, 0, 0, 0, loc)
			v := form.NewValidator(func() time.Time { return now })

			d, err := v.Validate(form.TaskForm{Title: "Pay rent", Due: "2025-03-31 08:30"})
			if err != nil {
				t.Fatalf("Validate failed: %v", err)
			}
			if d.Due != "2025-03-31 08:30" {
				t.Errorf("Due = %q, want 2025-03-31 08:30", d.Due)
			}

			d, err = v.Validate(form.TaskForm{Title: "Pay rent", Due: "2025-03-10"})
			if err != nil {
				t.Fatalf("Validate date only failed: %v", err)
			}
			if d.Due != "2025-03-10 23:59" {
				t.Errorf("Due = %q, want end of day", d.Due)
			}
		})
	}
}

func TestDueDateInPastAcrossMidnight(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skipf("zone unavailable: %v", err)
	}
	// 00:30 in Tokyo is still the previous day in UTC
	now := time.Date(2025, 3, 11, 0, 30, 0, 0, loc)
	v := form.NewValidator(func() time.Time { return now })

	_, err = v.Validate(form.TaskForm{Title: "Pay rent", Due: "2025-03-10"})
	errs, ok := err.(form.Errors)
	if !ok {
		t.Fatalf("err = %v, want form errors", err)
	}
	if got := errs.First(form.FieldDue); got != form.MsgDueInPast {
		t.Errorf("due message = %q, want %q", got, form.MsgDueInPast)
	}
}
