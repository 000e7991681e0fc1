package render

import (
	"math/rand/v2"
	"unicode"

	"github.com/gdamore/tcell/v2"
	"github.com/lixenwraith/attention-era/cursor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-runewidth"
)

var glitchGlyphs = []rune(`█▓▒░#$%&@!?<>/\|`)

// Corrupt replaces roughly ratio of the letters in s with noise glyphs
// Spaces and column widths are preserved
func Corrupt(s string, rng *rand.Rand, ratio float64) string {
	out := []rune(s)
	for i, r := range out {
		if unicode.IsSpace(r) || runewidth.RuneWidth(r) != 1 {
			continue
		}
		if rng.Float64() < ratio {
			out[i] = glitchGlyphs[rng.IntN(len(glitchGlyphs))]
		}
	}
	return string(out)
}

// GlitchText draws s in base; while glitching it adds a split magenta and cyan ghost
// and corrupts a few letters
func (c *Canvas) GlitchText(x, y int, s string, base colorful.Color, glitching bool, rng *rand.Rand) {
	if !glitching {
		c.Text(x, y, s, Style(base))
		return
	}
	c.Text(x-1, y, s, Style(Fade(NeonMagenta, 0.6)))
	c.Text(x+1, y, s, Style(Fade(NeonCyan, 0.6)))
	c.Text(x, y, Corrupt(s, rng, 0.15), Style(base).Bold(true))
}

// Cursor glyphs
const (
	glyphCursor   = '◉'
	glyphHover    = '◎'
	glyphClicking = '•'
	glyphTrail    = '∙'
)

// DrawCursor paints the trail, oldest first, then the cursor; coordinates are screen cells
func (c *Canvas) DrawCursor(pos cursor.Point, trail []cursor.TrailPoint, hovering, clicking bool) {
	for i := len(trail) - 1; i >= 0; i-- {
		tp := trail[i]
		if tp.Point == pos {
			continue
		}
		c.PutScreen(tp.X, tp.Y, glyphTrail, Style(Fade(NeonCyan, tp.Intensity)))
	}

	glyph, color := glyphCursor, NeonCyan
	switch {
	case clicking:
		glyph = glyphClicking
	case hovering:
		glyph, color = glyphHover, NeonMagenta
	}
	c.PutScreen(pos.X, pos.Y, glyph, Style(color).Bold(true))
}

// Highlight draws the storm phrase letters, lit ones in the inverse palette
func (c *Canvas) Highlight(x, y int, phrase string, lit func(rune) bool) {
	for _, r := range phrase {
		st := Style(TextDim)
		if lit(r) {
			st = tcell.StyleDefault.Foreground(Tcell(Backdrop)).Background(Tcell(NeonYellow)).Bold(true)
		}
		x += c.Put(x, y, r, st)
	}
}
