// Package theme provides the light and dark color themes and the
// controller that switches between them.
package theme

import (
	"embed"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed embedded/*.toml
var embeddedThemes embed.FS

// Theme names.
const (
	Light = "light"
	Dark  = "dark"
)

// Theme holds all colors for a theme.
type Theme struct {
	Name        string `toml:"name"`
	Bg          string `toml:"bg"`
	BgHighlight string `toml:"bg_highlight"` // cards, toasts
	BgSelection string `toml:"bg_selection"` // cursor row
	Fg          string `toml:"fg"`
	FgMuted     string `toml:"fg_muted"`
	Accent      string `toml:"accent"` // title, borders, spinner

	// Notification severities.
	Success string `toml:"success"`
	Error   string `toml:"error"`
	Warning string `toml:"warning"`
	Info    string `toml:"info"`

	// Status badges.
	Todo  string `toml:"todo"`
	Doing string `toml:"doing"`
	Done  string `toml:"done"`

	PriorityLow    string `toml:"priority_low"`
	PriorityMedium string `toml:"priority_medium"`
	PriorityHigh   string `toml:"priority_high"`
	PriorityUrgent string `toml:"priority_urgent"`
}

// Normalize returns the theme name for s. Anything but "dark" is light.
func Normalize(s string) string {
	if strings.EqualFold(strings.TrimSpace(s), Dark) {
		return Dark
	}
	return Light
}

// Opposite returns the other theme name.
func Opposite(name string) string {
	if Normalize(name) == Dark {
		return Light
	}
	return Dark
}

// Load loads a theme by name from the embedded files. Unknown names load
// the light theme.
func Load(name string) (*Theme, error) {
	name = Normalize(name)
	data, err := embeddedThemes.ReadFile("embedded/" + name + ".toml")
	if err != nil {
		return nil, fmt.Errorf("loading theme %q: %w", name, err)
	}

	var t Theme
	if err := toml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing theme %q: %w", name, err)
	}
	t.applyDefaults()
	return &t, nil
}

// MustLoad is Load for the embedded themes, which are known to parse.
func MustLoad(name string) *Theme {
	t, err := Load(name)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Theme) applyDefaults() {
	t.BgHighlight = coalesce(t.BgHighlight, t.Bg)
	t.BgSelection = coalesce(t.BgSelection, t.BgHighlight)
	t.FgMuted = coalesce(t.FgMuted, t.Fg)
	t.Info = coalesce(t.Info, t.Accent)
	t.Todo = coalesce(t.Todo, t.FgMuted)
	t.Doing = coalesce(t.Doing, t.Accent)
	t.Done = coalesce(t.Done, t.Success)
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
