// Package render draws the page onto a tcell screen.
package render

import (
	"strings"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// Canvas is a clipped, scrollable view of a tcell screen
// With Inverted set every color is swapped for its complement
type Canvas struct {
	screen   tcell.Screen
	width    int
	height   int
	offset   int // rows scrolled off the top
	Inverted bool
}

// NewCanvas wraps screen at its current size
func NewCanvas(screen tcell.Screen) *Canvas {
	w, h := screen.Size()
	return &Canvas{screen: screen, width: w, height: h}
}

// Sync re-reads the screen size
func (c *Canvas) Sync() {
	c.width, c.height = c.screen.Size()
}

func (c *Canvas) Size() (int, int) {
	return c.width, c.height
}

// Screen returns the underlying screen
func (c *Canvas) Screen() tcell.Screen {
	return c.screen
}

// SetOffset sets the number of document rows scrolled past
func (c *Canvas) SetOffset(rows int) {
	c.offset = rows
}

// Offset returns the scroll offset
func (c *Canvas) Offset() int {
	return c.offset
}

// Clear fills the screen with the backdrop
func (c *Canvas) Clear() {
	c.screen.SetStyle(c.style(Style(TextBright)))
	c.screen.Clear()
}

func (c *Canvas) style(s tcell.Style) tcell.Style {
	if !c.Inverted {
		return s
	}
	fg, bg, attrs := s.Decompose()
	return tcell.StyleDefault.
		Foreground(invertTcell(fg)).
		Background(invertTcell(bg)).
		Attributes(attrs)
}

func invertTcell(c tcell.Color) tcell.Color {
	if !c.Valid() {
		return c
	}
	r, g, b := c.RGB()
	return tcell.NewRGBColor(255-r, 255-g, 255-b)
}

// Put draws one rune at document row y, returns the columns used
func (c *Canvas) Put(x, y int, r rune, s tcell.Style) int {
	w := runewidth.RuneWidth(r)
	if w == 0 {
		w = 1
	}
	sy := y - c.offset
	if x < 0 || x+w > c.width || sy < 0 || sy >= c.height {
		return w
	}
	c.screen.SetContent(x, sy, r, nil, c.style(s))
	return w
}

// PutScreen draws at screen coordinates, ignoring the scroll offset
func (c *Canvas) PutScreen(x, y int, r rune, s tcell.Style) {
	if x < 0 || x >= c.width || y < 0 || y >= c.height {
		return
	}
	c.screen.SetContent(x, y, r, nil, c.style(s))
}

// Text draws s at document row y and returns the columns used
func (c *Canvas) Text(x, y int, s string, st tcell.Style) int {
	col := x
	for _, r := range s {
		col += c.Put(col, y, r, st)
	}
	return col - x
}

// TextScreen draws s at screen coordinates
func (c *Canvas) TextScreen(x, y int, s string, st tcell.Style) {
	for _, r := range s {
		c.PutScreen(x, y, r, st)
		w := runewidth.RuneWidth(r)
		if w == 0 {
			w = 1
		}
		x += w
	}
}

// Centered draws s centered within [x, x+width) and returns its start column
func (c *Canvas) Centered(x, width, y int, s string, st tcell.Style) int {
	start := x + (width-runewidth.StringWidth(s))/2
	if start < x {
		start = x
	}
	c.Text(start, y, runewidth.Truncate(s, width, ""), st)
	return start
}

// Fill paints a rectangle in document coordinates
func (c *Canvas) Fill(x, y, w, h int, r rune, st tcell.Style) {
	for row := y; row < y+h; row++ {
		for col := x; col < x+w; col++ {
			c.Put(col, row, r, st)
		}
	}
}

// Visible reports whether document row y is on screen
func (c *Canvas) Visible(y int) bool {
	sy := y - c.offset
	return sy >= 0 && sy < c.height
}

// ToScreen converts a document row to a screen row
func (c *Canvas) ToScreen(y int) int {
	return y - c.offset
}

// ToDocument converts a screen row to a document row
func (c *Canvas) ToDocument(y int) int {
	return y + c.offset
}

// Wrap breaks s into lines no wider than width columns, on spaces where possible
func Wrap(s string, width int) []string {
	if width <= 0 {
		return nil
	}
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		var line strings.Builder
		lineW := 0
		for _, word := range words {
			ww := runewidth.StringWidth(word)
			for ww > width {
				if lineW > 0 {
					lines = append(lines, line.String())
					line.Reset()
					lineW = 0
				}
				head := runewidth.Truncate(word, width, "")
				if head == "" {
					_, size := utf8.DecodeRuneInString(word)
					head = word[:size]
				}
				lines = append(lines, head)
				word = word[len(head):]
				ww = runewidth.StringWidth(word)
			}
			switch {
			case lineW == 0:
			case lineW+1+ww > width:
				lines = append(lines, line.String())
				line.Reset()
				lineW = 0
			default:
				line.WriteByte(' ')
				lineW++
			}
			line.WriteString(word)
			lineW += ww
		}
		if lineW > 0 {
			lines = append(lines, line.String())
		}
	}
	return lines
}
