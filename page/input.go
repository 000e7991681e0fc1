package page

import (
	"github.com/gdamore/tcell/v2"
	"github.com/lixenwraith/attention-era/constants"
	"github.com/lixenwraith/attention-era/cursor"
	"go.uber.org/zap"
)

// HandleEvent applies one terminal event, returns true when the user asked to quit
func (p *Page) HandleEvent(ev tcell.Event) bool {
	if !p.active {
		return false
	}
	switch ev := ev.(type) {
	case *tcell.EventResize:
		p.canvas.Sync()
		w, _ := p.canvas.Size()
		p.cursor.Resize(w)
		p.clampScroll()
		p.screen.Sync()
		p.dirty = true
	case *tcell.EventKey:
		return p.handleKey(ev)
	case *tcell.EventMouse:
		p.handleMouse(ev)
	}
	return false
}

func (p *Page) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyF3:
		p.soundControl()
		return false
	}

	p.gesture()
	if p.focus == FocusNone {
		p.typewriter.Skip()
	}

	switch ev.Key() {
	case tcell.KeyTab:
		p.cycleFocus(false)
	case tcell.KeyBacktab:
		p.cycleFocus(true)
	case tcell.KeyF2:
		p.motion.Toggle()
	case tcell.KeyPgUp:
		p.scrollBy(-p.viewHeight() + 1)
	case tcell.KeyPgDn:
		p.scrollBy(p.viewHeight() - 1)
	case tcell.KeyHome:
		p.scrollTo(0)
	case tcell.KeyEnd:
		p.scrollTo(p.docH)
	case tcell.KeyUp:
		p.scrollBy(-1)
	case tcell.KeyDown:
		p.scrollBy(1)
	case tcell.KeyEnter:
		p.enter()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		p.backspace()
	case tcell.KeyRune:
		r := ev.Rune()
		p.detector.Feed(r)
		p.typeRune(r)
	}
	p.dirty = true
	return false
}

func (p *Page) enter() {
	switch p.focus {
	case FocusConsole:
		p.console.Submit()
	case FocusCodename, FocusEmail, FocusMessage:
		p.focus++
		p.ensureFocusVisible()
	case FocusSubmit:
		p.submitForm()
	}
}

// gesture records a user interaction for the score and the audio gate
func (p *Page) gesture() {
	p.stats.gestures.Add(1)
	p.score.Increment()
	if p.audio != nil {
		p.audio.NoteInteraction()
	}
}

// soundControl is the enable-sound call-to-action while blocked, mute toggle otherwise
func (p *Page) soundControl() {
	if p.audio == nil {
		return
	}
	st := p.audio.State()
	if st.Playing {
		muted := p.audio.ToggleMute()
		p.logger.Debug("sound toggled", zap.Bool("muted", muted))
	} else if st.NeedsGesture {
		res := p.audio.EnableFromGesture()
		p.logger.Debug("enable sound", zap.Stringer("outcome", res.Outcome))
	}
	p.dirty = true
}

func (p *Page) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	pt := cursor.Point{X: x, Y: y}
	btn := ev.Buttons()

	switch {
	case btn&tcell.WheelUp != 0:
		p.scrollBy(-constants.ScrollStep)
		p.score.Increment()
		return
	case btn&tcell.WheelDown != 0:
		p.scrollBy(constants.ScrollStep)
		p.score.Increment()
		return
	}

	target := p.root.HitTest(pt)
	p.cursor.Move(pt, target)
	p.dirty = true

	// Motion rolls the score; a press rolls it once through gesture, a release not at all
	down := btn&tcell.Button1 != 0
	switch {
	case down == p.pressed:
		p.score.Increment()
	case down && !p.pressed:
		p.pressed = true
		p.cursor.Press()
		p.gesture()
		if n := cursor.InteractiveAncestor(target); n != nil && n.Action != nil {
			n.Action()
		} else if p.focus != FocusConsole {
			p.setFocus(FocusNone)
		}
	case !down && p.pressed:
		p.pressed = false
		p.cursor.Release()
	}
}

// viewHeight is the number of document rows between the nav bar and the console
func (p *Page) viewHeight() int {
	_, h := p.canvas.Size()
	v := h - navHeight - consoleHeight
	if v < 1 {
		v = 1
	}
	return v
}

func (p *Page) scrollBy(d int) {
	p.scrollTo(p.scroll + d)
}

func (p *Page) scrollTo(row int) {
	p.scroll = row
	p.clampScroll()
	p.dirty = true
}

func (p *Page) clampScroll() {
	maxScroll := p.docH - p.viewHeight()
	if maxScroll < 0 {
		maxScroll = 0
	}
	if p.scroll > maxScroll {
		p.scroll = maxScroll
	}
	if p.scroll < 0 {
		p.scroll = 0
	}
}

// ensureFocusVisible scrolls the contact form into view when a field takes focus
func (p *Page) ensureFocusVisible() {
	if p.focus < FocusCodename || p.focus > FocusSubmit {
		return
	}
	row, ok := p.anchors[anchorForm]
	if !ok {
		return
	}
	if row < p.scroll || row >= p.scroll+p.viewHeight()-formHeight {
		p.scrollTo(row - 2)
	}
}
