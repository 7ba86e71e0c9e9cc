package story

import (
	"fmt"
	"strings"
)

const (
	maxPromptRunes = 80
	defaultTitle   = "Your story"
	inkColor       = "#111"
)

// FromPrompt lays out the fixed whiteboard template for a prompt: a title,
// the board frame, a speech bubble, an arrow into a box and two captions.
// The prompt only feeds the title.
func FromPrompt(prompt string, width, height int) *Storyboard {
	w, h := float64(width), float64(height)
	padding := 80.0
	right := w - padding
	bottom := h - padding

	title := defaultTitle
	if p := truncateRunes(strings.TrimSpace(prompt), maxPromptRunes); p != "" {
		title = `"` + p + `"`
	}

	// Speech bubble: two half-arcs around the center
	cx, cy, r := padding+220, padding+150, 70.0

	// Box on the right, the arrow ends in the middle of its left edge
	boxX, boxY := w-padding-240, padding+140
	boxW, boxH := 200.0, 120.0
	arrowX, arrowY := cx+r, cy

	steps := []Step{
		TextStep("title", w/2, 70, title, 28, AnchorMiddle, 800),
		PathStep("board",
			fmt.Sprintf("M %s %s H %s V %s H %s Z", num(padding), num(padding+40), num(right), num(bottom), num(padding)),
			inkColor, 3, 1800),
		PathStep("bubble",
			fmt.Sprintf("M %s %s A %s %s 0 1 0 %s %s A %s %s 0 1 0 %s %s",
				num(cx-r), num(cy), num(r), num(r), num(cx+r), num(cy), num(r), num(r), num(cx-r), num(cy)),
			inkColor, 3, 1400),
		PathStep("arrow",
			fmt.Sprintf("M %s %s C %s %s, %s %s, %s %s",
				num(arrowX), num(arrowY), num(arrowX+80), num(arrowY-80), num(boxX-80), num(boxY+boxH+40), num(boxX), num(boxY+boxH/2)),
			inkColor, 3, 1100),
		PathStep("box",
			fmt.Sprintf("M %s %s H %s V %s H %s Z", num(boxX), num(boxY), num(boxX+boxW), num(boxY+boxH), num(boxX)),
			inkColor, 3, 1200),
		TextStep("caption-left", cx, cy+r+36, "Idea / Input", 18, AnchorMiddle, 600),
		TextStep("caption-right", boxX+boxW/2, boxY+boxH+36, "Scene / Output", 18, AnchorMiddle, 600),
	}

	return &Storyboard{
		Version: "1.0",
		Width:   width,
		Height:  height,
		Steps:   steps,
	}
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s
}

// num formats a coordinate without a trailing ".0"
func num(v float64) string {
	return fmt.Sprintf("%g", v)
}
