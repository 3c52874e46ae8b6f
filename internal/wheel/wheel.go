// Package wheel models the twelve-hue color wheel the game is played on.
// Hues are indices 0..11 and adjacency wraps modulo 12.
package wheel

import (
	"fmt"
	"strings"
)

// Size is the number of hues on the wheel.
const Size = 12

// Hue is a position on the wheel.
type Hue int

// Color is the display data for a hue.
type Color struct {
	Hue  Hue    `json:"id"`
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

var colors = [Size]Color{
	{0, "Red", "#FF0000"},
	{1, "Red-Orange", "#FF4000"},
	{2, "Orange", "#FF8000"},
	{3, "Yellow-Orange", "#FFC000"},
	{4, "Yellow", "#FFFF00"},
	{5, "Yellow-Green", "#99CC33"},
	{6, "Green", "#009933"},
	{7, "Blue-Green", "#009999"},
	{8, "Blue", "#0066FF"},
	{9, "Blue-Violet", "#3333CC"},
	{10, "Violet", "#660099"},
	{11, "Red-Violet", "#CC0099"},
}

// Valid reports whether h is one of the twelve wheel positions.
func (h Hue) Valid() bool {
	return h >= 0 && h < Size
}

// Step returns the hue n positions clockwise from h. Negative n steps
// counter-clockwise.
func (h Hue) Step(n int) Hue {
	return Hue(((int(h)+n)%Size + Size) % Size)
}

// Complement returns the hue directly opposite h.
func (h Hue) Complement() Hue {
	return h.Step(Size / 2)
}

// Name returns the display name, or a placeholder for hues off the wheel.
func (h Hue) Name() string {
	if !h.Valid() {
		return fmt.Sprintf("Hue(%d)", int(h))
	}
	return colors[h].Name
}

// Hex returns the display color as #RRGGBB.
func (h Hue) Hex() string {
	if !h.Valid() {
		return ""
	}
	return colors[h].Hex
}

func (h Hue) String() string {
	return h.Name()
}

// Colors returns the wheel in index order.
func Colors() []Color {
	out := make([]Color, Size)
	copy(out, colors[:])
	return out
}

// Parse accepts a hue index ("7") or a display name ("blue-green",
// case-insensitive).
func Parse(s string) (Hue, error) {
	s = strings.TrimSpace(s)
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err == nil && fmt.Sprint(n) == s {
		h := Hue(n)
		if !h.Valid() {
			return 0, fmt.Errorf("hue %d out of range 0..%d", n, Size-1)
		}
		return h, nil
	}
	for _, c := range colors {
		if strings.EqualFold(c.Name, s) {
			return c.Hue, nil
		}
	}
	return 0, fmt.Errorf("unknown hue %q", s)
}

// Names joins the display names of hs with ", ".
func Names(hs []Hue) string {
	names := make([]string, len(hs))
	for i, h := range hs {
		names[i] = h.Name()
	}
	return strings.Join(names, ", ")
}
