package render

import (
	"github.com/gdamore/tcell/v2"
	"github.com/lixenwraith/attention-era/content"
	"github.com/lucasb-eyer/go-colorful"
)

// Neon palette
var (
	NeonCyan    = colorful.Color{R: 0, G: 1, B: 0.976}         // #00FFF9
	NeonMagenta = colorful.Color{R: 1, G: 0, B: 0.757}         // #FF00C1
	NeonYellow  = colorful.Color{R: 1, G: 0.902, B: 0}         // #FFE600
	NeonGreen   = colorful.Color{R: 0, G: 1, B: 0.624}         // #00FF9F
	NeonRed     = colorful.Color{R: 1, G: 0.165, B: 0.427}     // #FF2A6D
	Backdrop    = colorful.Color{R: 0.051, G: 0.008, B: 0.129} // #0D0221
	TextBright  = colorful.Color{R: 0.92, G: 0.92, B: 0.95}
	TextDim     = colorful.Color{R: 0.55, G: 0.55, B: 0.62}
)

// Tcell converts a palette color to a terminal color
func Tcell(c colorful.Color) tcell.Color {
	r, g, b := c.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// ColorFor maps a named content color, default text when unnamed
func ColorFor(name content.Color) colorful.Color {
	switch name {
	case content.ColorCyan:
		return NeonCyan
	case content.ColorMagenta:
		return NeonMagenta
	case content.ColorYellow:
		return NeonYellow
	case content.ColorGreen:
		return NeonGreen
	case content.ColorRed:
		return NeonRed
	}
	return TextBright
}

// Fade blends c toward the backdrop; intensity 1 keeps c, 0 is the backdrop
func Fade(c colorful.Color, intensity float64) colorful.Color {
	if intensity >= 1 {
		return c
	}
	if intensity <= 0 {
		return Backdrop
	}
	return Backdrop.BlendLab(c, intensity).Clamped()
}

// Invert returns the complementary color used by the storm flash
func Invert(c colorful.Color) colorful.Color {
	return colorful.Color{R: 1 - c.R, G: 1 - c.G, B: 1 - c.B}
}

// Style builds a foreground style over the backdrop
func Style(fg colorful.Color) tcell.Style {
	return tcell.StyleDefault.Foreground(Tcell(fg)).Background(Tcell(Backdrop))
}
