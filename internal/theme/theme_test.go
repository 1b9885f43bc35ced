package theme

import (
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/taskdesk/internal/notify"
	"github.com/javiermolinar/taskdesk/internal/task"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"light", Light},
		{"dark", Dark},
		{"DARK", Dark},
		{"", Light},
		{"mocha", Light},
	}
	for _, tt := range tests {
		th, err := Load(tt.in)
		if err != nil {
			t.Fatalf("Load(%q) error: %v", tt.in, err)
		}
		if th.Name != tt.want {
			t.Errorf("Load(%q).Name = %q, want %q", tt.in, th.Name, tt.want)
		}
		if th.Bg == "" || th.Fg == "" || th.Success == "" || th.Done == "" {
			t.Errorf("Load(%q) has empty colors: %+v", tt.in, th)
		}
	}
}

func TestOpposite(t *testing.T) {
	if Opposite(Light) != Dark || Opposite(Dark) != Light || Opposite("weird") != Dark {
		t.Error("Opposite does not alternate between light and dark")
	}
}

func TestApplyDefaults(t *testing.T) {
	th := &Theme{Bg: "#000000", Fg: "#ffffff", Accent: "#ff0000", Success: "#00ff00"}
	th.applyDefaults()

	if th.BgHighlight != "#000000" || th.BgSelection != "#000000" {
		t.Errorf("background fallbacks = %q, %q", th.BgHighlight, th.BgSelection)
	}
	if th.Info != "#ff0000" || th.Doing != "#ff0000" {
		t.Errorf("accent fallbacks = %q, %q", th.Info, th.Doing)
	}
	if th.Done != "#00ff00" || th.Todo != "#ffffff" {
		t.Errorf("status fallbacks = %q, %q", th.Done, th.Todo)
	}
}

func TestNewPalette(t *testing.T) {
	light := NewPalette(MustLoad(Light))
	dark := NewPalette(MustLoad(Dark))

	if light.Dark {
		t.Error("light palette reported as dark")
	}
	if !dark.Dark {
		t.Error("dark palette reported as light")
	}
	if light.GlamourStyle() != "light" || dark.GlamourStyle() != "dark" {
		t.Error("unexpected glamour styles")
	}

	if got := light.Severity(notify.SeveritySuccess); got != lipgloss.Color("#198754") {
		t.Errorf("success color = %q", got)
	}
	if light.Severity("bogus") != light.Severity(notify.SeverityInfo) {
		t.Error("unknown severity should use the info color")
	}
	if light.ToastBg(notify.SeverityError) == light.Severity(notify.SeverityError) {
		t.Error("toast background should be tinted, not the raw accent")
	}

	bg, fg := light.Status(task.StatusDone)
	if bg != lipgloss.Color("#198754") {
		t.Errorf("done badge bg = %q", bg)
	}
	if fg != lipgloss.Color("#f8f9fa") {
		t.Errorf("done badge fg = %q, want the light text", fg)
	}
	if light.Priority(task.PriorityUrgent) != lipgloss.Color("#dc3545") {
		t.Errorf("urgent color = %q", light.Priority(task.PriorityUrgent))
	}
}

func TestTint(t *testing.T) {
	if got := tint("#ff0000", "#ffffff", false); got == "#ff0000" || got == "#ffffff" {
		t.Errorf("tint() = %q, want a blend", got)
	}
	if got := tint("bad", "#ffffff", false); got != "#ffffff" {
		t.Errorf("tint() with invalid accent = %q, want bg", got)
	}
}

func TestChooseText(t *testing.T) {
	if got := chooseText("#000000", "#ffffff", "#000000"); got != "#ffffff" {
		t.Errorf("chooseText on black = %q", got)
	}
	if got := chooseText("#ffffff", "#ffffff", "#000000"); got != "#000000" {
		t.Errorf("chooseText on white = %q", got)
	}
}
