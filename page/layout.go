package page

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/lixenwraith/attention-era/constants"
	"github.com/lixenwraith/attention-era/console"
	"github.com/lixenwraith/attention-era/cursor"
	"github.com/lixenwraith/attention-era/render"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-runewidth"
)

const (
	navHeight     = 1
	consoleHeight = 5
	formHeight    = 9

	anchorHero      = "hero"
	anchorAbout     = "about"
	anchorLore      = "lore"
	anchorMemes     = "memes"
	anchorManifesto = "manifesto"
	anchorContact   = "contact"
	anchorForm      = "form"
)

var navLinks = []struct{ label, anchor string }{
	{"ABOUT", anchorAbout},
	{"LORE", anchorLore},
	{"MEMES", anchorMemes},
	{"MANIFESTO", anchorManifesto},
	{"CONTACT", anchorContact},
}

// layout walks the document top to bottom, y is the next free document row
type layout struct {
	p    *Page
	c    *render.Canvas
	root *cursor.Node
	x, w int
	y    int
}

// sy converts a document row to a screen row
func (p *Page) sy(row int) int {
	return row - p.scroll + navHeight
}

// Draw renders the whole frame and rebuilds the hit-test tree
func (p *Page) Draw() {
	p.canvas.Sync()
	w, h := p.canvas.Size()
	p.canvas.Inverted = p.Storming()
	p.canvas.Clear()
	p.canvas.SetOffset(p.scroll - navHeight)

	cw := constants.ContentWidth
	if cw > w-4 {
		cw = w - 4
	}
	if cw < 16 {
		cw = w
	}
	root := cursor.NewNode("page", cursor.RoleSection, cursor.Rect{X: 0, Y: 0, W: w, H: h})

	l := &layout{p: p, c: p.canvas, root: root, x: (w - cw) / 2, w: cw, y: 1}
	l.hero()
	l.about()
	l.lore()
	l.memes()
	l.manifesto()
	l.contact()
	l.footer()
	p.docH = l.y + 1

	p.drawNav(root, w)
	p.drawConsole(root, w, h)
	if p.cursor.Visible() {
		p.canvas.DrawCursor(p.cursor.Position(), p.cursor.Trail(), p.cursor.Hovering(), p.cursor.Clicking())
	}

	p.root = root
	p.screen.Show()
}

// section opens a full-width region; close fixes its height
func (l *layout) section(anchor string) *cursor.Node {
	l.p.anchors[anchor] = l.y
	w, _ := l.c.Size()
	return l.root.Add(cursor.NewNode(anchor, cursor.RoleSection,
		cursor.Rect{X: 0, Y: l.p.sy(l.y), W: w}))
}

func (l *layout) close(n *cursor.Node) {
	n.Rect.H = l.p.sy(l.y) - n.Rect.Y
	l.y += 2
}

// title draws a glitching, centered heading with an underline
func (l *layout) title(text string, color colorful.Color, target int) {
	g := l.p.glitches[target]
	start := l.x + (l.w-runewidth.StringWidth(text))/2
	l.c.GlitchText(start, l.y, text, color, g.Glitching(), l.p.rng)
	l.y++
	rule := strings.Repeat("─", min(24, l.w))
	l.c.Centered(l.x, l.w, l.y, rule, render.Style(render.Fade(color, 0.7)))
	l.y++
}

// para draws wrapped text and returns the rows used
func (l *layout) para(x, width int, text string, st tcell.Style) int {
	lines := render.Wrap(text, width)
	for _, line := range lines {
		l.c.Text(x, l.y, line, st)
		l.y++
	}
	return len(lines)
}

// button draws a bracketed label and registers it as clickable
func (l *layout) button(parent *cursor.Node, id string, x int, label string, color colorful.Color, focused bool, action func()) int {
	text := "[ " + label + " ]"
	st := render.Style(color)
	if focused {
		st = tcell.StyleDefault.Foreground(render.Tcell(render.Backdrop)).Background(render.Tcell(color)).Bold(true)
	}
	width := l.c.Text(x, l.y, text, st)
	n := parent.Add(cursor.NewNode(id, cursor.RoleButton,
		cursor.Rect{X: x, Y: l.p.sy(l.y), W: width, H: 1}))
	n.Action = action
	return width
}

func (l *layout) hero() {
	p := l.p
	doc := p.doc.Hero
	sec := l.section(anchorHero)
	l.y++

	l.title(doc.Title, render.NeonCyan, targetHero)
	l.y++
	tag := doc.Tagline + " " + doc.Emphasis
	start := l.c.Centered(l.x, l.w, l.y, tag, render.Style(render.TextBright))
	l.c.Text(start+runewidth.StringWidth(doc.Tagline)+1, l.y, doc.Emphasis, render.Style(render.NeonMagenta))
	l.y += 2

	score := doc.ScoreLabel + " " + p.score.Formatted()
	start = l.c.Centered(l.x, l.w, l.y, score, render.Style(render.NeonGreen))
	l.c.Text(start+runewidth.StringWidth(doc.ScoreLabel)+1, l.y, p.score.Formatted(), render.Style(render.TextBright).Bold(true))
	l.y += 2

	total := 0
	for _, a := range doc.Actions {
		total += runewidth.StringWidth(a.Label) + 6
	}
	x := l.x + (l.w-total)/2
	colors := []colorful.Color{render.NeonCyan, render.NeonMagenta}
	for i, a := range doc.Actions {
		target := a.Target
		x += l.button(sec, "hero-"+target, x, a.Label, colors[i%len(colors)], false, func() { p.jump(target) }) + 2
	}
	l.y++
	l.close(sec)
}

func (l *layout) about() {
	doc := l.p.doc.About
	sec := l.section(anchorAbout)
	l.title(doc.Title, render.NeonCyan, targetAbout)
	l.c.Centered(l.x, l.w, l.y, doc.Subtitle, render.Style(render.TextDim))
	l.y += 2

	for i, card := range doc.Cards {
		color := render.ColorFor(card.Color)
		top := l.y
		l.c.Text(l.x, l.y, "▌ "+strings.ToUpper(card.Title), render.Style(color).Bold(true))
		l.y++
		l.para(l.x+2, l.w-2, card.Body, render.Style(render.TextDim))
		sec.Add(cursor.NewNode(fmt.Sprintf("card-%d", i), cursor.RoleSection,
			cursor.Rect{X: l.x, Y: l.p.sy(top), W: l.w, H: l.y - top}).WithAttr("role", "button"))
		l.y++
	}
	l.close(sec)
}

func (l *layout) lore() {
	doc := l.p.doc.Lore
	sec := l.section(anchorLore)
	l.title(doc.Title, render.NeonMagenta, targetLore)
	l.c.Centered(l.x, l.w, l.y, doc.Subtitle, render.Style(render.TextDim))
	l.y += 2

	for _, e := range doc.Entries {
		color := render.ColorFor(e.Color)
		top := l.y
		l.c.Text(l.x, l.y, "● "+e.Title, render.Style(color).Bold(true))
		l.y++
		l.para(l.x+3, l.w-3, e.Body, render.Style(render.TextDim))
		l.para(l.x+3, l.w-5, "> "+e.Log, render.Style(render.Fade(color, 0.8)))
		for row := top + 1; row < l.y; row++ {
			l.c.Put(l.x, row, '│', render.Style(render.Fade(color, 0.4)))
		}
		l.y++
	}
	l.close(sec)
}

func (l *layout) memes() {
	doc := l.p.doc.Memes
	sec := l.section(anchorMemes)
	l.title(doc.Title, render.NeonYellow, targetMemes)
	l.c.Centered(l.x, l.w, l.y, doc.Subtitle, render.Style(render.TextDim))
	l.y += 2

	cols := 2
	if l.w < 48 {
		cols = 1
	}
	colW := l.w / cols
	for i, item := range doc.Items {
		col := i % cols
		x := l.x + col*colW
		label := runewidth.Truncate("▣ "+item, colW-2, "…")
		l.c.Text(x, l.y, label, render.Style(render.NeonCyan))
		sec.Add(cursor.NewNode(fmt.Sprintf("meme-%d", i), cursor.RoleText,
			cursor.Rect{X: x, Y: l.p.sy(l.y), W: runewidth.StringWidth(label), H: 1}).WithAttr("role", "button"))
		if col == cols-1 || i == len(doc.Items)-1 {
			l.y++
		}
	}
	l.close(sec)
}

func (l *layout) manifesto() {
	p := l.p
	doc := p.doc.Manifesto
	sec := l.section(anchorManifesto)
	l.title(doc.Title, render.NeonYellow, targetManifesto)
	l.y++

	l.c.Text(l.x, l.y, "● ● ●", render.Style(render.NeonRed))
	l.c.Centered(l.x, l.w, l.y, "manifesto.txt", render.Style(render.TextDim))
	l.y++
	l.c.Text(l.x, l.y, "$ ", render.Style(render.NeonYellow))
	l.c.Text(l.x+2, l.y, doc.Command, render.Style(render.TextBright))
	l.y += 2

	for _, b := range doc.Blocks[:p.typewriter.Visible()] {
		l.para(l.x, l.w, b.Text, render.Style(render.ColorFor(b.Color)))
		for _, item := range b.List {
			top := l.y
			l.para(l.x+4, l.w-4, item, render.Style(render.TextBright))
			l.c.Put(l.x+2, top, '•', render.Style(render.NeonYellow))
		}
		l.y++
	}
	if p.typewriter.Done() {
		l.c.Text(l.x, l.y, "$ _", render.Style(render.NeonYellow))
	} else {
		l.c.Text(l.x, l.y, "press any key to skip", render.Style(render.TextDim))
	}
	l.y++
	l.close(sec)
}

func (l *layout) contact() {
	p := l.p
	doc := p.doc.Contact
	sec := l.section(anchorContact)
	l.title(doc.Title, render.NeonGreen, targetContact)
	l.c.Centered(l.x, l.w, l.y, doc.Subtitle, render.Style(render.TextDim))
	l.y += 2

	p.anchors[anchorForm] = l.y
	fields := []struct {
		focus       Focus
		label, hint string
	}{
		{FocusCodename, "CODENAME", doc.Fields.Codename},
		{FocusEmail, "EMAIL", doc.Fields.Email},
		{FocusMessage, "MESSAGE", doc.Fields.Message},
	}
	for _, f := range fields {
		focus := f.focus
		l.field(sec, f.label, f.hint, string(*p.form.field(focus)), p.focus == focus, func() { p.setFocus(focus) })
	}

	l.button(sec, "submit", l.x, doc.Submit, render.NeonGreen, p.focus == FocusSubmit, func() {
		p.setFocus(FocusSubmit)
		p.submitForm()
	})
	l.y++
	if p.form.status != "" {
		color := render.NeonGreen
		if p.form.failed {
			color = render.NeonRed
		}
		l.para(l.x, l.w, p.form.status, render.Style(color))
	}
	l.y++

	for _, ch := range doc.Channels {
		l.c.Text(l.x, l.y, ch.Title, render.Style(render.ColorFor(ch.Color)).Bold(true))
		l.c.Text(l.x+24, l.y, ch.Handle, render.Style(render.TextDim))
		l.y++
	}
	l.close(sec)
}

// field draws one labelled input box; the value is clipped from the left while typing
func (l *layout) field(parent *cursor.Node, label, hint, value string, focused bool, action func()) {
	st := render.Style(render.TextDim)
	if focused {
		st = render.Style(render.NeonGreen)
	}
	l.c.Text(l.x, l.y, label, st.Bold(true))

	boxW := max(l.w-12, 1)
	text, textSt := value, render.Style(render.TextBright)
	if value == "" && !focused {
		text, textSt = hint, render.Style(render.TextDim)
	}
	for text != "" && runewidth.StringWidth(text) > boxW-1 {
		_, text = firstRune(text)
	}
	box := cursor.Rect{X: l.x + 11, Y: l.p.sy(l.y), W: boxW + 2, H: 1}
	l.c.Put(box.X, l.y, '[', st)
	l.c.Text(box.X+1, l.y, text, textSt)
	if focused {
		l.c.Put(box.X+1+runewidth.StringWidth(text), l.y, '▏', render.Style(render.NeonGreen))
	}
	l.c.Put(box.X+boxW+1, l.y, ']', st)

	n := parent.Add(cursor.NewNode("field-"+strings.ToLower(label), cursor.RoleButton, box))
	n.Action = action
	l.y += 2
}

func firstRune(s string) (rune, string) {
	for i, r := range s {
		if i > 0 {
			return r, s[i:]
		}
	}
	return 0, ""
}

func (l *layout) footer() {
	p := l.p
	target := p.detector.Target()
	hint := "type the phrase to break the feed: "
	width := runewidth.StringWidth(hint) + len(target)*2
	x := l.x + (l.w-width)/2
	x += l.c.Text(x, l.y, hint, render.Style(render.TextDim))
	spaced := strings.Join(strings.Split(target, ""), " ")
	l.c.Highlight(x, l.y, spaced, func(r rune) bool { return r != ' ' && p.detector.Lit(r) })
	l.y++
	if p.detector.Active() {
		l.c.Centered(l.x, l.w, l.y, "⚠ GLITCH STORM ⚠", render.Style(render.NeonRed).Bold(true))
	}
	l.y++
}

// drawNav paints the fixed top bar with section links and the sound control
func (p *Page) drawNav(root *cursor.Node, w int) {
	bar := render.Style(render.TextBright)
	for x := 0; x < w; x++ {
		p.canvas.PutScreen(x, 0, ' ', bar)
	}
	x := 1
	brand := p.doc.Hero.Title
	p.canvas.TextScreen(x, 0, brand, render.Style(render.NeonCyan).Bold(true))
	x += runewidth.StringWidth(brand) + 2

	for _, link := range navLinks {
		if x+len(link.label) >= w-16 {
			break
		}
		anchor := link.anchor
		st := render.Style(render.TextDim)
		if p.currentSection() == anchor {
			st = render.Style(render.NeonMagenta)
		}
		p.canvas.TextScreen(x, 0, link.label, st)
		n := root.Add(cursor.NewNode("nav-"+anchor, cursor.RoleLink,
			cursor.Rect{X: x, Y: 0, W: len(link.label), H: 1}))
		n.Action = func() { p.jump(anchor) }
		x += len(link.label) + 2
	}

	label, color := p.soundLabel()
	if label != "" {
		lx := w - runewidth.StringWidth(label) - 1
		p.canvas.TextScreen(lx, 0, label, render.Style(color))
		n := root.Add(cursor.NewNode("sound", cursor.RoleButton,
			cursor.Rect{X: lx, Y: 0, W: runewidth.StringWidth(label), H: 1}))
		n.Action = p.soundControl
	}
}

func (p *Page) soundLabel() (string, colorful.Color) {
	if p.audio == nil {
		return "", render.TextDim
	}
	st := p.audio.State()
	switch {
	case st.Playing && st.Muted:
		return "[F3 ♪ OFF]", render.TextDim
	case st.Playing:
		return "[F3 ♪ ON]", render.NeonGreen
	case st.NeedsGesture:
		return "[F3 ENABLE SOUND]", render.NeonYellow
	}
	return "", render.TextDim
}

// currentSection is the last anchor at or above the top of the view
func (p *Page) currentSection() string {
	current := anchorHero
	best := -1
	for _, link := range navLinks {
		if row, ok := p.anchors[link.anchor]; ok && row <= p.scroll+1 && row > best {
			best, current = row, link.anchor
		}
	}
	return current
}

// jump scrolls a section to the top of the view
func (p *Page) jump(anchor string) {
	if row, ok := p.anchors[anchor]; ok {
		p.scrollTo(row)
	}
}

// drawConsole paints the fixed terminal at the bottom of the screen
func (p *Page) drawConsole(root *cursor.Node, w, h int) {
	top := h - consoleHeight
	if top <= navHeight {
		return
	}
	bg := render.Style(render.TextBright)
	for y := top; y < h; y++ {
		for x := 0; x < w; x++ {
			p.canvas.PutScreen(x, y, ' ', bg)
		}
	}
	border := render.Style(render.Fade(render.NeonCyan, 0.4))
	for x := 0; x < w; x++ {
		p.canvas.PutScreen(x, top, '─', border)
	}
	p.canvas.TextScreen(1, top, " ● ● ● ", render.Style(render.NeonRed))
	title := " " + p.console.Title() + " "
	p.canvas.TextScreen(w-runewidth.StringWidth(title)-1, top, title, render.Style(render.TextDim))

	rows := consoleHeight - 2
	out := p.console.Output()
	if len(out) == 0 {
		p.canvas.TextScreen(1, top+1, p.console.Greeting(), render.Style(render.TextDim))
	}
	if len(out) > rows {
		out = out[len(out)-rows:]
	}
	storm := p.detector.Active() && !p.motion.Enabled()
	for i, line := range out {
		text := runewidth.Truncate(line.Text, w-2, "…")
		st := render.Style(render.TextBright)
		if line.Kind == console.LinePrompt {
			st = render.Style(render.NeonCyan)
		}
		if storm {
			text = render.Corrupt(text, p.rng, 0.1)
		}
		p.canvas.TextScreen(1, top+1+i, text, st)
	}

	prompt := "> " + p.console.Input()
	if p.focus == FocusConsole {
		prompt += "▏"
	}
	if over := runewidth.StringWidth(prompt) - (w - 2); over > 0 {
		prompt = "…" + runewidth.TruncateLeft(prompt, over+1, "")
	}
	p.canvas.TextScreen(1, h-1, prompt, render.Style(render.NeonCyan))

	n := root.Add(cursor.NewNode("console", cursor.RoleSection,
		cursor.Rect{X: 0, Y: top, W: w, H: consoleHeight}).WithAttr("role", "button"))
	n.Action = func() { p.setFocus(FocusConsole) }
}
