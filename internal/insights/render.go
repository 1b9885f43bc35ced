package insights

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"gopkg.in/yaml.v3"
)

// Format selects how a report is written.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat parses an --output value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (use text, json or yaml)", s)
	}
}

// Markdown returns the report as a markdown document.
func Markdown(r *Report) string {
	var b strings.Builder
	b.WriteString("# Task insights\n\n")
	fmt.Fprintf(&b, "*Generated on %s with %s*\n\n", r.GeneratedAt, r.ModelUsed)

	if len(r.Stats) > 0 {
		keys := make([]string, 0, len(r.Stats))
		for k := range r.Stats {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("| Metric | Count |\n|---|---|\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "| %s | %d |\n", k, r.Stats[k])
		}
		b.WriteString("\n")
	}

	b.WriteString(r.Analysis)
	b.WriteString("\n")
	return b.String()
}

// RenderMarkdown renders the report for a terminal of the given width.
// style is a glamour style name ("dark", "light") or "" for auto.
func RenderMarkdown(r *Report, width int, style string) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(max(width, 20))}
	if style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}

	renderer, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("creating markdown renderer: %w", err)
	}
	out, err := renderer.Render(Markdown(r))
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return out, nil
}

// Write writes the report to w in format f.
func Write(w io.Writer, r *Report, f Format, width int) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	default:
		out, err := RenderMarkdown(r, width, "")
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	}
}
