package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// toastMargin is the gap between the toast stack and the screen edges.
const toastMargin = 1

// placeCenter draws box in the middle of base.
func placeCenter(base string, width, height int, box string) string {
	w, h := blockSize(box)
	return place(base, width, height, box, (height-h)/2, (width-w)/2)
}

// placeTopRight draws box in the top-right corner of base.
func placeTopRight(base string, width, height int, box string) string {
	w, _ := blockSize(box)
	return place(base, width, height, box, toastMargin, width-w-toastMargin)
}

// place draws box over base with its top-left corner at (top, left). The
// result is always height lines of width cells; parts of box outside the
// screen are cut.
func place(base string, width, height int, box string, top, left int) string {
	if width <= 0 || height <= 0 {
		return base
	}
	lines := normalizeBase(base, width, height)
	if box == "" {
		return strings.Join(lines, "\n")
	}
	top = max(top, 0)
	left = max(left, 0)

	for i, boxLine := range strings.Split(box, "\n") {
		row := top + i
		if row >= height {
			break
		}
		avail := width - left
		if avail <= 0 {
			break
		}
		if lipgloss.Width(boxLine) > avail {
			boxLine = ansi.Truncate(boxLine, avail, "")
		}
		bw := lipgloss.Width(boxLine)
		leftSlice := ansi.Cut(lines[row], 0, left)
		rightSlice := ansi.Cut(lines[row], left+bw, width)
		lines[row] = leftSlice + ansi.ResetStyle + boxLine + ansi.ResetStyle + rightSlice
	}
	return strings.Join(lines, "\n")
}

// keepBackground re-applies bg after every reset inside line so nested
// styled text (glamour output, badges) does not punch holes in a box.
func keepBackground(line string, bg lipgloss.Color) string {
	if bg == "" || line == "" {
		return line
	}
	bgSeq := ansi.Style{}.BackgroundColor(ansi.HexColor(string(bg))).String()
	line = strings.ReplaceAll(line, ansi.ResetStyle, ansi.ResetStyle+bgSeq)
	line = strings.ReplaceAll(line, "\x1b[49m", "\x1b[49m"+bgSeq)
	return bgSeq + line
}

func blockSize(s string) (int, int) {
	if s == "" {
		return 0, 0
	}
	lines := strings.Split(s, "\n")
	w := 0
	for _, l := range lines {
		w = max(w, lipgloss.Width(l))
	}
	return w, len(lines)
}

func normalizeBase(base string, width, height int) []string {
	lines := strings.Split(base, "\n")
	for len(lines) < height {
		lines = append(lines, "")
	}
	if len(lines) > height {
		lines = lines[:height]
	}

	for i, line := range lines {
		lineWidth := lipgloss.Width(line)
		if lineWidth > width {
			lines[i] = ansi.Cut(line, 0, width)
			continue
		}
		if lineWidth < width {
			lines[i] = line + strings.Repeat(" ", width-lineWidth)
		}
	}
	return lines
}
