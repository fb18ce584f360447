package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// overlayCenter draws box over the middle of base. When width or height is
// unknown the size of base is used.
func overlayCenter(base, box string, width, height int) string {
	canvas := splitLines(base)
	if width <= 0 {
		width = maxLineWidth(canvas)
	}
	if height <= 0 {
		height = len(canvas)
	}
	for len(canvas) < height {
		canvas = append(canvas, "")
	}

	boxLines := splitLines(box)
	boxWidth := maxLineWidth(boxLines)
	x := max(0, (width-boxWidth)/2)
	y := max(0, (height-len(boxLines))/2)
	for i, line := range boxLines {
		if y+i >= height {
			break
		}
		canvas[y+i] = spliceLine(canvas[y+i], padRight(line, boxWidth), x, width)
	}
	return strings.Join(canvas, "\n")
}

// spliceLine writes seg over line starting at cell x. Styled text on both
// sides of seg survives; the result is at least width cells wide.
func spliceLine(line, seg string, x, width int) string {
	line = padRight(line, max(width, x))
	left := padRight(ansi.Truncate(line, x, ""), x)
	right := ansi.TruncateLeft(line, x+ansi.StringWidth(seg), "")
	return left + seg + right
}

func splitLines(s string) []string {
	if s == "" {
		return []string{""}
	}
	return strings.Split(s, "\n")
}

func maxLineWidth(lines []string) int {
	m := 0
	for _, line := range lines {
		if w := ansi.StringWidth(line); w > m {
			m = w
		}
	}
	return m
}

// padRight pads s with spaces to the given visual width.
func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	w := ansi.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// truncate shortens s to width cells, ending in an ellipsis when cut.
func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	return ansi.Truncate(s, width, "…")
}
